package collection

import "fmt"

// Tree mutations. Every operation preserves document order and raw names by
// construction: nothing here trims, normalizes, or sorts. Folder counts are
// not stored on nodes at all; they are recomputed from live content at
// serialization, so they can never drift.

// InsertChild inserts a node into a folder's children at index.
func (d *Document) InsertChild(folder *Node, index int, child *Node) error {
	if folder.Type != NodeFolder {
		return fmt.Errorf("%w: insert target is not a folder", ErrValidation)
	}
	if child == nil {
		return fmt.Errorf("%w: nil child", ErrValidation)
	}
	if index < 0 || index > len(folder.Children) {
		return fmt.Errorf("%w: insert index %d out of range", ErrValidation, index)
	}

	folder.Children = append(folder.Children, nil)
	copy(folder.Children[index+1:], folder.Children[index:])
	folder.Children[index] = child
	return nil
}

// RemoveChild removes and returns the child of a folder at index.
func (d *Document) RemoveChild(folder *Node, index int) (*Node, error) {
	if folder.Type != NodeFolder {
		return nil, fmt.Errorf("%w: remove target is not a folder", ErrValidation)
	}
	if index < 0 || index >= len(folder.Children) {
		return nil, fmt.Errorf("%w: remove index %d out of range", ErrValidation, index)
	}

	child := folder.Children[index]
	folder.Children = append(folder.Children[:index], folder.Children[index+1:]...)
	return child, nil
}

// Rename replaces a node's name with the given raw string. The value is
// stored exactly as supplied; callers own any whitespace in it.
func (d *Document) Rename(node *Node, rawName string) {
	node.Name = rawName
}

// AppendTrackRef appends a track reference to a playlist. A key absent from
// the pool is permitted and recorded as a known orphan.
func (d *Document) AppendTrackRef(playlist *Node, key string) error {
	if playlist.Type != NodePlaylist {
		return fmt.Errorf("%w: append target is not a playlist", ErrValidation)
	}
	if key == "" {
		return fmt.Errorf("%w: empty track key", ErrValidation)
	}

	if _, ok := d.Pool.Lookup(key); !ok {
		d.markOrphan(key)
	}
	playlist.Refs = append(playlist.Refs, TrackRef{Key: key})
	return nil
}

// ReorderTrackRefs rearranges a playlist's references. order must be a
// permutation of the current indices.
func (d *Document) ReorderTrackRefs(playlist *Node, order []int) error {
	if playlist.Type != NodePlaylist {
		return fmt.Errorf("%w: reorder target is not a playlist", ErrValidation)
	}
	if len(order) != len(playlist.Refs) {
		return fmt.Errorf("%w: order has %d entries, playlist has %d", ErrValidation, len(order), len(playlist.Refs))
	}

	seen := make([]bool, len(order))
	reordered := make([]TrackRef, len(order))
	for pos, idx := range order {
		if idx < 0 || idx >= len(playlist.Refs) || seen[idx] {
			return fmt.Errorf("%w: order is not a permutation", ErrValidation)
		}
		seen[idx] = true
		reordered[pos] = playlist.Refs[idx]
	}
	playlist.Refs = reordered
	return nil
}

// MoveNode relocates a child between folders as remove-then-insert. The
// moved node's own name and contents are untouched. When from and to are
// the same folder, toIndex addresses the sequence after removal.
func (d *Document) MoveNode(from *Node, fromIndex int, to *Node, toIndex int) error {
	if to.Type != NodeFolder {
		return fmt.Errorf("%w: move target is not a folder", ErrValidation)
	}
	if fromIndex >= 0 && fromIndex < len(from.Children) && contains(from.Children[fromIndex], to) {
		return fmt.Errorf("%w: cannot move a folder into its own subtree", ErrValidation)
	}

	child, err := d.RemoveChild(from, fromIndex)
	if err != nil {
		return err
	}
	if err := d.InsertChild(to, toIndex, child); err != nil {
		// Put it back where it was.
		_ = d.InsertChild(from, fromIndex, child)
		return err
	}
	return nil
}

func contains(root, target *Node) bool {
	if root == target {
		return true
	}
	for _, c := range root.Children {
		if contains(c, target) {
			return true
		}
	}
	return false
}

// RemoveTrack drops a track from the pool and prunes every playlist
// reference to it, keeping the pool and the tree consistent in one step.
// It reports whether the key existed.
func (d *Document) RemoveTrack(key string) bool {
	if !d.Pool.Remove(key) {
		return false
	}

	d.Walk(func(n *Node) {
		if n.Type != NodePlaylist {
			return
		}
		kept := n.Refs[:0]
		for _, ref := range n.Refs {
			if ref.Key != key {
				kept = append(kept, ref)
			}
		}
		n.Refs = kept
	})
	delete(d.knownOrphans, key)
	return true
}
