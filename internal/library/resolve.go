package library

import (
	"fmt"

	"github.com/samber/lo"

	"github.com/jaki95/dj-collection-server/internal/collection"
)

// Location is a resolved tree position: the node, its parent folder, and
// its index within the parent. The root has a nil parent.
type Location struct {
	Node   *collection.Node
	Parent *collection.Node
	Index  int
}

// Locate resolves a sidebar path to its tree position. Raw names may
// contain the separator character, so resolution walks the whole tree
// comparing canonical paths instead of splitting the input.
func Locate(doc *collection.Document, path string) (Location, error) {
	if path == "" {
		return Location{Node: doc.Root}, nil
	}

	var walk func(n *collection.Node, prefix string) (Location, bool)
	walk = func(n *collection.Node, prefix string) (Location, bool) {
		segs := childSegments(n.Children)
		for i, c := range n.Children {
			childPath := prefix + PathSeparator + segs[i]
			if childPath == path {
				return Location{Node: c, Parent: n, Index: i}, true
			}
			if found, ok := walk(c, childPath); ok {
				return found, true
			}
		}
		return Location{}, false
	}

	if loc, ok := walk(doc.Root, ""); ok {
		return loc, nil
	}
	return Location{}, fmt.Errorf("%w: path %q", collection.ErrNotFound, path)
}

// FindNode resolves a sidebar path to its node.
func FindNode(doc *collection.Document, path string) (*collection.Node, error) {
	loc, err := Locate(doc, path)
	if err != nil {
		return nil, err
	}
	return loc.Node, nil
}

// ResolvedTrack is one playlist entry: either a materialized pool track or
// an orphaned marker for a key with no pool record. Orphans are ordinary
// data, not failures; dropping them would shift positions the user can see.
type ResolvedTrack struct {
	Key      string            `json:"key"`
	Orphaned bool              `json:"orphaned"`
	Title    string            `json:"title,omitempty"`
	Artist   string            `json:"artist,omitempty"`
	Fields   map[string]string `json:"fields,omitempty"`
}

// ResolveTracks materializes a playlist's entries in stored order,
// duplicates preserved. It fails with ErrNotFound when the path does not
// resolve or addresses a folder.
func ResolveTracks(doc *collection.Document, path string) ([]ResolvedTrack, error) {
	node, err := FindNode(doc, path)
	if err != nil {
		return nil, err
	}
	if node.Type != collection.NodePlaylist {
		return nil, fmt.Errorf("%w: path %q is not a playlist", collection.ErrNotFound, path)
	}

	resolved := lo.Map(node.Refs, func(ref collection.TrackRef, _ int) ResolvedTrack {
		track, ok := doc.Pool.Lookup(ref.Key)
		if !ok {
			return ResolvedTrack{Key: ref.Key, Orphaned: true}
		}
		return ResolvedTrack{
			Key:    ref.Key,
			Title:  track.Get("Name"),
			Artist: track.Get("Artist"),
			Fields: trackFields(track),
		}
	})
	return resolved, nil
}

func trackFields(t *collection.Track) map[string]string {
	fields := make(map[string]string, len(t.Attrs))
	for _, a := range t.Attrs {
		fields[a.Name] = a.Value
	}
	return fields
}
