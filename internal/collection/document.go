package collection

// Attr is a single markup attribute. Values are kept as raw text; the engine
// never type-coerces attributes it does not explicitly model.
type Attr struct {
	Name  string
	Value string
}

// AttrBag is an ordered collection of passthrough attributes. Order is
// preserved from the source document and honored on serialization.
type AttrBag []Attr

// Get returns the value of the first attribute with the given name.
func (b AttrBag) Get(name string) (string, bool) {
	for _, a := range b {
		if a.Name == name {
			return a.Value, true
		}
	}
	return "", false
}

// RawElement is a node the engine does not model (tempo grids, cue markers,
// and whatever future exports add). It is carried verbatim and re-emitted on
// serialization. A node with a Name is an element; a node with an empty Name
// is a run of character data, kept in place among its siblings so mixed
// content survives in order.
type RawElement struct {
	Name     string
	Attrs    AttrBag
	Text     string
	Children []*RawElement
}

// NodeType discriminates the playlist-tree node variants.
type NodeType int

const (
	NodeFolder NodeType = iota
	NodePlaylist
)

func (t NodeType) String() string {
	if t == NodePlaylist {
		return "playlist"
	}
	return "folder"
}

// Node is a folder or playlist in the playlist tree.
//
// Name is the raw name exactly as received: the hosting application uses
// leading/trailing whitespace as a manual sort key, so it is never trimmed,
// case-folded, or collapsed. Children and Refs are in document order, which
// the hosting application renders as-is; the engine never sorts them.
type Node struct {
	Type NodeType
	Name string

	// Extra holds attributes the engine does not model.
	Extra AttrBag

	// Children is the ordered child sequence of a folder.
	Children []*Node

	// Refs is the ordered track reference sequence of a playlist.
	// Duplicate keys are permitted.
	Refs []TrackRef

	// Payload holds unmodeled child elements.
	Payload []*RawElement
}

// TrackRef is a playlist entry referencing a track pool key.
type TrackRef struct {
	Key   string
	Extra AttrBag
}

// NewFolder creates an empty folder node with the given raw name.
func NewFolder(rawName string) *Node {
	return &Node{Type: NodeFolder, Name: rawName}
}

// NewPlaylist creates an empty playlist node with the given raw name.
func NewPlaylist(rawName string) *Node {
	return &Node{Type: NodePlaylist, Name: rawName}
}

// Track is a track pool record. All attributes, including the keying
// Location, live in Attrs in document order and are re-emitted verbatim.
type Track struct {
	Key     string
	Attrs   AttrBag
	Payload []*RawElement
}

// Get returns a track attribute value, or "" when absent.
func (t *Track) Get(name string) string {
	v, _ := t.Attrs.Get(name)
	return v
}

// TrackPool is the global key-to-track table referenced by playlists.
// Tracks keeps document order for serialization; duplicate keys are
// tolerated (all re-emitted, last wins for lookup).
type TrackPool struct {
	Tracks []*Track

	// Extra holds unmodeled attributes of the pool container.
	Extra AttrBag

	// Payload holds unmodeled child elements of the pool container.
	Payload []*RawElement

	index map[string]*Track
}

// NewTrackPool creates an empty track pool.
func NewTrackPool() *TrackPool {
	return &TrackPool{index: make(map[string]*Track)}
}

// Add appends a track to the pool.
func (p *TrackPool) Add(t *Track) {
	p.Tracks = append(p.Tracks, t)
	p.index[t.Key] = t
}

// Lookup returns the track for a key.
func (p *TrackPool) Lookup(key string) (*Track, bool) {
	t, ok := p.index[key]
	return t, ok
}

// Remove drops every pool entry with the given key. It reports whether
// anything was removed.
func (p *TrackPool) Remove(key string) bool {
	if _, ok := p.index[key]; !ok {
		return false
	}

	kept := p.Tracks[:0]
	for _, t := range p.Tracks {
		if t.Key != key {
			kept = append(kept, t)
		}
	}
	p.Tracks = kept
	delete(p.index, key)
	return true
}

// Len returns the number of pool entries.
func (p *TrackPool) Len() int {
	return len(p.Tracks)
}

// Document is a parsed collection export: the playlist tree plus the global
// track pool. A document is owned by exactly one user instance.
type Document struct {
	// Version is the format version tag of the export.
	Version string

	// RootExtra holds unmodeled attributes of the root element.
	RootExtra AttrBag

	// Root is the playlist-tree root folder.
	Root *Node

	// Pool is the global track table.
	Pool *TrackPool

	// Payload holds unmodeled root-level elements.
	Payload []*RawElement

	// knownOrphans are reference keys that were already dangling at parse
	// time or were appended deliberately. They are legal passthrough; a
	// dangling key outside this set at serialize time is an internal bug.
	knownOrphans map[string]struct{}
}

// Orphan reports whether a key is a known orphaned reference.
func (d *Document) Orphan(key string) bool {
	_, ok := d.knownOrphans[key]
	return ok
}

func (d *Document) markOrphan(key string) {
	if d.knownOrphans == nil {
		d.knownOrphans = make(map[string]struct{})
	}
	d.knownOrphans[key] = struct{}{}
}

// Walk visits every node of the playlist tree in document order.
func (d *Document) Walk(visit func(n *Node)) {
	var walk func(n *Node)
	walk = func(n *Node) {
		visit(n)
		for _, c := range n.Children {
			walk(c)
		}
	}
	if d.Root != nil {
		walk(d.Root)
	}
}
