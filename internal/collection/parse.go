package collection

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
)

// Markup vocabulary of the export format.
const (
	elemRoot       = "DJ_PLAYLISTS"
	elemCollection = "COLLECTION"
	elemPlaylists  = "PLAYLISTS"
	elemNode       = "NODE"
	elemTrack      = "TRACK"

	attrVersion  = "Version"
	attrName     = "Name"
	attrType     = "Type"
	attrCount    = "Count"
	attrEntries  = "Entries"
	attrLocation = "Location"
	attrKey      = "Key"

	typeFolder   = "0"
	typePlaylist = "1"
)

// Parse converts exported collection bytes into a Document.
//
// Structure it does not model (unknown attributes, unknown elements) is
// captured for verbatim re-emission, never discarded. It fails with
// ErrFormat when the required containers are missing or the node grammar is
// violated; it never returns a partially parsed document.
func Parse(data []byte) (*Document, error) {
	dec := xml.NewDecoder(bytes.NewReader(data))

	root, err := nextStart(dec)
	if err != nil {
		return nil, fmt.Errorf("%w: no root element: %v", ErrFormat, err)
	}
	if root.Name.Local != elemRoot {
		return nil, fmt.Errorf("%w: unexpected root element <%s>", ErrFormat, root.Name.Local)
	}

	doc := &Document{
		Pool:         NewTrackPool(),
		knownOrphans: make(map[string]struct{}),
	}
	for _, a := range root.Attr {
		if a.Name.Local == attrVersion {
			doc.Version = a.Value
			continue
		}
		doc.RootExtra = append(doc.RootExtra, Attr{Name: a.Name.Local, Value: a.Value})
	}

	var sawCollection, sawPlaylists bool
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			return nil, fmt.Errorf("%w: unterminated <%s>", ErrFormat, elemRoot)
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrFormat, err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case elemCollection:
				if sawCollection {
					return nil, fmt.Errorf("%w: duplicate <%s>", ErrFormat, elemCollection)
				}
				sawCollection = true
				if err := parseCollection(dec, t, doc); err != nil {
					return nil, err
				}
			case elemPlaylists:
				if sawPlaylists {
					return nil, fmt.Errorf("%w: duplicate <%s>", ErrFormat, elemPlaylists)
				}
				sawPlaylists = true
				if err := parsePlaylists(dec, doc); err != nil {
					return nil, err
				}
			default:
				raw, err := parseRawElement(dec, t)
				if err != nil {
					return nil, err
				}
				doc.Payload = append(doc.Payload, raw)
			}
		case xml.CharData:
			if strings.TrimSpace(string(t)) != "" {
				return nil, fmt.Errorf("%w: unexpected text in <%s>", ErrFormat, elemRoot)
			}
		case xml.EndElement:
			if !sawCollection {
				return nil, fmt.Errorf("%w: missing <%s>", ErrFormat, elemCollection)
			}
			if doc.Root == nil {
				return nil, fmt.Errorf("%w: missing playlist tree root", ErrFormat)
			}
			markParseOrphans(doc)
			return doc, nil
		}
	}
}

// markParseOrphans records references that were already dangling in the
// source document. These are legal and pass through unchanged.
func markParseOrphans(doc *Document) {
	doc.Walk(func(n *Node) {
		if n.Type != NodePlaylist {
			return
		}
		for _, ref := range n.Refs {
			if _, ok := doc.Pool.Lookup(ref.Key); !ok {
				doc.markOrphan(ref.Key)
			}
		}
	})
}

func parseCollection(dec *xml.Decoder, start xml.StartElement, doc *Document) error {
	declared := -1
	for _, a := range start.Attr {
		if a.Name.Local == attrEntries {
			if n, err := strconv.Atoi(a.Value); err == nil {
				declared = n
			}
			continue
		}
		doc.Pool.Extra = append(doc.Pool.Extra, Attr{Name: a.Name.Local, Value: a.Value})
	}

	for {
		tok, err := dec.Token()
		if err != nil {
			return fmt.Errorf("%w: unterminated <%s>: %v", ErrFormat, elemCollection, err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Local == elemTrack {
				track, err := parseTrack(dec, t)
				if err != nil {
					return err
				}
				doc.Pool.Add(track)
				continue
			}
			raw, err := parseRawElement(dec, t)
			if err != nil {
				return err
			}
			doc.Pool.Payload = append(doc.Pool.Payload, raw)
		case xml.CharData:
			if strings.TrimSpace(string(t)) != "" {
				return fmt.Errorf("%w: unexpected text in <%s>", ErrFormat, elemCollection)
			}
		case xml.EndElement:
			// Declared entry counts are a sanity check only; the live
			// content always wins.
			if declared >= 0 && declared != doc.Pool.Len() {
				slog.Warn("Collection entry count mismatch", "declared", declared, "actual", doc.Pool.Len())
			}
			return nil
		}
	}
}

func parseTrack(dec *xml.Decoder, start xml.StartElement) (*Track, error) {
	track := &Track{}
	for _, a := range start.Attr {
		track.Attrs = append(track.Attrs, Attr{Name: a.Name.Local, Value: a.Value})
		if a.Name.Local == attrLocation {
			track.Key = a.Value
		}
	}
	if track.Key == "" {
		return nil, fmt.Errorf("%w: collection track without %s", ErrFormat, attrLocation)
	}

	for {
		tok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("%w: unterminated collection track: %v", ErrFormat, err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			raw, err := parseRawElement(dec, t)
			if err != nil {
				return nil, err
			}
			track.Payload = append(track.Payload, raw)
		case xml.CharData:
			if strings.TrimSpace(string(t)) != "" {
				return nil, fmt.Errorf("%w: unexpected text in collection track", ErrFormat)
			}
		case xml.EndElement:
			return track, nil
		}
	}
}

func parsePlaylists(dec *xml.Decoder, doc *Document) error {
	for {
		tok, err := dec.Token()
		if err != nil {
			return fmt.Errorf("%w: unterminated <%s>: %v", ErrFormat, elemPlaylists, err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Local != elemNode {
				return fmt.Errorf("%w: unexpected <%s> in <%s>", ErrFormat, t.Name.Local, elemPlaylists)
			}
			if doc.Root != nil {
				return fmt.Errorf("%w: multiple playlist tree roots", ErrFormat)
			}
			node, err := parseNode(dec, t)
			if err != nil {
				return err
			}
			if node.Type != NodeFolder {
				return fmt.Errorf("%w: playlist tree root must be a folder", ErrFormat)
			}
			doc.Root = node
		case xml.CharData:
			if strings.TrimSpace(string(t)) != "" {
				return fmt.Errorf("%w: unexpected text in <%s>", ErrFormat, elemPlaylists)
			}
		case xml.EndElement:
			return nil
		}
	}
}

func parseNode(dec *xml.Decoder, start xml.StartElement) (*Node, error) {
	node := &Node{}
	var sawType, sawName bool
	declared := -1

	for _, a := range start.Attr {
		switch a.Name.Local {
		case attrType:
			sawType = true
			switch a.Value {
			case typeFolder:
				node.Type = NodeFolder
			case typePlaylist:
				node.Type = NodePlaylist
			default:
				return nil, fmt.Errorf("%w: unknown node type %q", ErrFormat, a.Value)
			}
		case attrName:
			// Raw value, whitespace and casing included. The hosting
			// application sorts by it manually.
			sawName = true
			node.Name = a.Value
		case attrCount, attrEntries:
			if n, err := strconv.Atoi(a.Value); err == nil {
				declared = n
			}
		default:
			node.Extra = append(node.Extra, Attr{Name: a.Name.Local, Value: a.Value})
		}
	}
	if !sawType {
		return nil, fmt.Errorf("%w: node without %s", ErrFormat, attrType)
	}
	if !sawName {
		return nil, fmt.Errorf("%w: node without %s", ErrFormat, attrName)
	}

	for {
		tok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("%w: unterminated node %q: %v", ErrFormat, node.Name, err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			switch {
			case t.Name.Local == elemNode && node.Type == NodeFolder:
				child, err := parseNode(dec, t)
				if err != nil {
					return nil, err
				}
				node.Children = append(node.Children, child)
			case t.Name.Local == elemTrack && node.Type == NodePlaylist:
				ref, err := parseTrackRef(dec, t)
				if err != nil {
					return nil, err
				}
				node.Refs = append(node.Refs, ref)
			case t.Name.Local == elemNode || t.Name.Local == elemTrack:
				return nil, fmt.Errorf("%w: <%s> not allowed in %s %q", ErrFormat, t.Name.Local, node.Type, node.Name)
			default:
				raw, err := parseRawElement(dec, t)
				if err != nil {
					return nil, err
				}
				node.Payload = append(node.Payload, raw)
			}
		case xml.CharData:
			if strings.TrimSpace(string(t)) != "" {
				return nil, fmt.Errorf("%w: unexpected text in node %q", ErrFormat, node.Name)
			}
		case xml.EndElement:
			actual := len(node.Children)
			if node.Type == NodePlaylist {
				actual = len(node.Refs)
			}
			if declared >= 0 && declared != actual {
				slog.Warn("Node count mismatch", "node", node.Name, "declared", declared, "actual", actual)
			}
			return node, nil
		}
	}
}

func parseTrackRef(dec *xml.Decoder, start xml.StartElement) (TrackRef, error) {
	ref := TrackRef{}
	for _, a := range start.Attr {
		if a.Name.Local == attrKey {
			ref.Key = a.Value
			continue
		}
		ref.Extra = append(ref.Extra, Attr{Name: a.Name.Local, Value: a.Value})
	}
	if ref.Key == "" {
		return ref, fmt.Errorf("%w: playlist track reference without %s", ErrFormat, attrKey)
	}

	for {
		tok, err := dec.Token()
		if err != nil {
			return ref, fmt.Errorf("%w: unterminated track reference: %v", ErrFormat, err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			return ref, fmt.Errorf("%w: unexpected <%s> in track reference", ErrFormat, t.Name.Local)
		case xml.CharData:
			if strings.TrimSpace(string(t)) != "" {
				return ref, fmt.Errorf("%w: unexpected text in track reference", ErrFormat)
			}
		case xml.EndElement:
			return ref, nil
		}
	}
}

// parseRawElement captures an unmodeled element subtree verbatim. Character
// data becomes text-run children in place, so mixed content keeps its
// interleaving. Adjacent runs are coalesced for a canonical shape.
func parseRawElement(dec *xml.Decoder, start xml.StartElement) (*RawElement, error) {
	raw := &RawElement{Name: start.Name.Local}
	for _, a := range start.Attr {
		raw.Attrs = append(raw.Attrs, Attr{Name: a.Name.Local, Value: a.Value})
	}

	for {
		tok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("%w: unterminated <%s>: %v", ErrFormat, raw.Name, err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			child, err := parseRawElement(dec, t)
			if err != nil {
				return nil, err
			}
			raw.Children = append(raw.Children, child)
		case xml.CharData:
			if n := len(raw.Children); n > 0 && raw.Children[n-1].Name == "" {
				raw.Children[n-1].Text += string(t)
			} else {
				raw.Children = append(raw.Children, &RawElement{Text: string(t)})
			}
		case xml.EndElement:
			return raw, nil
		}
	}
}

func nextStart(dec *xml.Decoder) (xml.StartElement, error) {
	for {
		tok, err := dec.Token()
		if err != nil {
			return xml.StartElement{}, err
		}
		if start, ok := tok.(xml.StartElement); ok {
			return start, nil
		}
	}
}
