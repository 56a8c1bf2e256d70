package collection

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"strconv"
)

// Serialize converts a Document back into export bytes.
//
// Output is a pure function of the in-memory tree: children and references
// are emitted in stored order, raw names verbatim, folder and playlist
// counts recomputed from live content, and two serializations of an
// untouched document are byte-identical. It fails with ErrConsistency when
// a playlist references a pool key that is neither present nor a known
// orphan, which indicates a pool mutation that skipped reference cleanup.
func Serialize(doc *Document) ([]byte, error) {
	if doc.Root == nil || doc.Pool == nil {
		return nil, fmt.Errorf("%w: document without root or pool", ErrConsistency)
	}
	if err := checkReferences(doc); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	buf.WriteString(xml.Header)
	enc := xml.NewEncoder(&buf)
	w := &writer{enc: enc}

	rootAttrs := []xml.Attr{attr(attrVersion, doc.Version)}
	rootAttrs = appendBag(rootAttrs, doc.RootExtra)
	w.start(elemRoot, rootAttrs)

	writeCollection(w, doc.Pool)
	writePlaylists(w, doc.Root)
	for _, raw := range doc.Payload {
		writeRaw(w, raw)
	}

	w.end(elemRoot)
	if w.err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConsistency, w.err)
	}
	if err := enc.Flush(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConsistency, err)
	}
	return buf.Bytes(), nil
}

func checkReferences(doc *Document) error {
	var dangling string
	found := false
	doc.Walk(func(n *Node) {
		if found || n.Type != NodePlaylist {
			return
		}
		for _, ref := range n.Refs {
			if _, ok := doc.Pool.Lookup(ref.Key); ok {
				continue
			}
			if doc.Orphan(ref.Key) {
				continue
			}
			dangling = ref.Key
			found = true
			return
		}
	})
	if found {
		return fmt.Errorf("%w: reference to removed pool key %q", ErrConsistency, dangling)
	}
	return nil
}

func writeCollection(w *writer, pool *TrackPool) {
	attrs := []xml.Attr{attr(attrEntries, strconv.Itoa(pool.Len()))}
	attrs = appendBag(attrs, pool.Extra)
	w.start(elemCollection, attrs)

	for _, t := range pool.Tracks {
		w.start(elemTrack, appendBag(nil, t.Attrs))
		for _, raw := range t.Payload {
			writeRaw(w, raw)
		}
		w.end(elemTrack)
	}
	for _, raw := range pool.Payload {
		writeRaw(w, raw)
	}

	w.end(elemCollection)
}

func writePlaylists(w *writer, root *Node) {
	w.start(elemPlaylists, nil)
	writeNode(w, root)
	w.end(elemPlaylists)
}

func writeNode(w *writer, n *Node) {
	switch n.Type {
	case NodeFolder:
		attrs := []xml.Attr{
			attr(attrType, typeFolder),
			attr(attrName, n.Name),
			attr(attrCount, strconv.Itoa(len(n.Children))),
		}
		attrs = appendBag(attrs, n.Extra)
		w.start(elemNode, attrs)
		for _, c := range n.Children {
			writeNode(w, c)
		}
	case NodePlaylist:
		attrs := []xml.Attr{
			attr(attrType, typePlaylist),
			attr(attrName, n.Name),
			attr(attrEntries, strconv.Itoa(len(n.Refs))),
		}
		attrs = appendBag(attrs, n.Extra)
		w.start(elemNode, attrs)
		for _, ref := range n.Refs {
			refAttrs := []xml.Attr{attr(attrKey, ref.Key)}
			refAttrs = appendBag(refAttrs, ref.Extra)
			w.start(elemTrack, refAttrs)
			w.end(elemTrack)
		}
	}
	for _, raw := range n.Payload {
		writeRaw(w, raw)
	}
	w.end(elemNode)
}

func writeRaw(w *writer, raw *RawElement) {
	w.start(raw.Name, appendBag(nil, raw.Attrs))
	for _, c := range raw.Children {
		if c.Name == "" {
			w.text(c.Text)
			continue
		}
		writeRaw(w, c)
	}
	w.end(raw.Name)
}

func attr(name, value string) xml.Attr {
	return xml.Attr{Name: xml.Name{Local: name}, Value: value}
}

func appendBag(attrs []xml.Attr, bag AttrBag) []xml.Attr {
	for _, a := range bag {
		attrs = append(attrs, attr(a.Name, a.Value))
	}
	return attrs
}

// writer wraps an xml.Encoder with first-error capture, keeping the token
// emission paths free of error plumbing.
type writer struct {
	enc *xml.Encoder
	err error
}

func (w *writer) start(name string, attrs []xml.Attr) {
	if w.err != nil {
		return
	}
	w.err = w.enc.EncodeToken(xml.StartElement{Name: xml.Name{Local: name}, Attr: attrs})
}

func (w *writer) end(name string) {
	if w.err != nil {
		return
	}
	w.err = w.enc.EncodeToken(xml.EndElement{Name: xml.Name{Local: name}})
}

func (w *writer) text(s string) {
	if w.err != nil {
		return
	}
	w.err = w.enc.EncodeToken(xml.CharData(s))
}
