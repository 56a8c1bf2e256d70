// Package library provides read-only projections over a collection
// document: the sidebar tree the UI renders and playlist track resolution.
package library

import (
	"fmt"

	"github.com/samber/lo"

	"github.com/jaki95/dj-collection-server/internal/collection"
)

// PathSeparator joins raw ancestor names into a sidebar path.
const PathSeparator = "/"

// SidebarNode is the UI-facing projection of a tree node. Path is a stable
// address derived from raw ancestor names; callers persist it (for example
// as a "last opened" preference), so it must not change across reloads of
// an unchanged document.
type SidebarNode struct {
	Path        string         `json:"path"`
	Type        string         `json:"type"`
	DisplayName string         `json:"displayName"`
	Children    []*SidebarNode `json:"children,omitempty"`
}

// Sidebar builds the full materialized sidebar projection of a document.
// Children appear in document order; display names are the raw names,
// whitespace included.
func Sidebar(doc *collection.Document) *SidebarNode {
	return project(doc.Root, "")
}

func project(n *collection.Node, path string) *SidebarNode {
	out := &SidebarNode{
		Path:        path,
		Type:        n.Type.String(),
		DisplayName: n.Name,
	}
	segs := childSegments(n.Children)
	for i, c := range n.Children {
		out.Children = append(out.Children, project(c, path+PathSeparator+segs[i]))
	}
	return out
}

// childSegments assigns a path segment to each child. A unique raw name is
// its own segment; when several siblings share the exact same raw name,
// every one of them gets a "#<n>" occurrence suffix, counting up from zero
// and skipping any value that would collide with another sibling's raw name
// or an already assigned segment. The assignment is deterministic, so paths
// stay stable as long as order and names are unchanged.
func childSegments(children []*collection.Node) []string {
	names := lo.Map(children, func(c *collection.Node, _ int) string { return c.Name })
	total := lo.CountValues(names)

	taken := make(map[string]struct{}, len(names))
	for _, name := range names {
		if total[name] == 1 {
			taken[name] = struct{}{}
		}
	}

	next := make(map[string]int, len(total))
	segs := make([]string, len(children))
	for i, name := range names {
		if total[name] == 1 {
			segs[i] = name
			continue
		}
		seg := fmt.Sprintf("%s#%d", name, next[name])
		for {
			if _, clash := taken[seg]; !clash {
				break
			}
			next[name]++
			seg = fmt.Sprintf("%s#%d", name, next[name])
		}
		next[name]++
		taken[seg] = struct{}{}
		segs[i] = seg
	}
	return segs
}

// FirstPlaylist returns the first playlist of a sidebar tree in document
// order, or nil when the tree has none. Callers fall back to it when a
// remembered path no longer resolves.
func FirstPlaylist(root *SidebarNode) *SidebarNode {
	if root == nil {
		return nil
	}
	if root.Type == collection.NodePlaylist.String() {
		return root
	}
	for _, c := range root.Children {
		if p := FirstPlaylist(c); p != nil {
			return p
		}
	}
	return nil
}
