package instance

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/jaki95/dj-collection-server/internal/collection"
	"github.com/jaki95/dj-collection-server/internal/library"
)

// Instance is one user's loaded collection: the parsed document plus where
// it came from. All operations are serialized on the instance mutex, so a
// mutation followed by a read within one logical request observes the
// mutation, and mutations never interleave with persistence.
type Instance struct {
	ID      string
	UserID  string
	Locator Locator

	mu      sync.Mutex
	doc     *collection.Document
	dirty   bool
	persist func(ctx context.Context, data []byte) error
}

func newInstance(userID string, loc Locator, doc *collection.Document, persist func(ctx context.Context, data []byte) error) *Instance {
	return &Instance{
		ID:      uuid.NewString(),
		UserID:  userID,
		Locator: loc,
		doc:     doc,
		persist: persist,
	}
}

// Sidebar builds the UI projection of the current tree.
func (inst *Instance) Sidebar() *library.SidebarNode {
	inst.mu.Lock()
	defer inst.mu.Unlock()
	return library.Sidebar(inst.doc)
}

// PlaylistTracks resolves the playlist at path into its ordered track list.
func (inst *Instance) PlaylistTracks(path string) ([]library.ResolvedTrack, error) {
	inst.mu.Lock()
	defer inst.mu.Unlock()
	return library.ResolveTracks(inst.doc, path)
}

// RawDocument serializes the current tree back into export bytes.
func (inst *Instance) RawDocument() ([]byte, error) {
	inst.mu.Lock()
	defer inst.mu.Unlock()
	return collection.Serialize(inst.doc)
}

// RenameNode renames the node at path to the given raw name, verbatim.
func (inst *Instance) RenameNode(ctx context.Context, path, rawName string) error {
	inst.mu.Lock()
	defer inst.mu.Unlock()

	loc, err := library.Locate(inst.doc, path)
	if err != nil {
		return err
	}
	inst.doc.Rename(loc.Node, rawName)
	return inst.flush(ctx)
}

// CreatePlaylist appends a new empty playlist to the folder at parentPath.
func (inst *Instance) CreatePlaylist(ctx context.Context, parentPath, rawName string) error {
	return inst.createNode(ctx, parentPath, collection.NewPlaylist(rawName))
}

// CreateFolder appends a new empty folder to the folder at parentPath.
func (inst *Instance) CreateFolder(ctx context.Context, parentPath, rawName string) error {
	return inst.createNode(ctx, parentPath, collection.NewFolder(rawName))
}

func (inst *Instance) createNode(ctx context.Context, parentPath string, node *collection.Node) error {
	inst.mu.Lock()
	defer inst.mu.Unlock()

	loc, err := library.Locate(inst.doc, parentPath)
	if err != nil {
		return err
	}
	if err := inst.doc.InsertChild(loc.Node, len(loc.Node.Children), node); err != nil {
		return err
	}
	return inst.flush(ctx)
}

// RemoveNode removes the node at path from its parent.
func (inst *Instance) RemoveNode(ctx context.Context, path string) error {
	inst.mu.Lock()
	defer inst.mu.Unlock()

	loc, err := library.Locate(inst.doc, path)
	if err != nil {
		return err
	}
	if loc.Parent == nil {
		return fmt.Errorf("%w: cannot remove the tree root", collection.ErrValidation)
	}
	if _, err := inst.doc.RemoveChild(loc.Parent, loc.Index); err != nil {
		return err
	}
	return inst.flush(ctx)
}

// MoveNode relocates the node at path into the folder at toPath at index.
func (inst *Instance) MoveNode(ctx context.Context, path, toPath string, index int) error {
	inst.mu.Lock()
	defer inst.mu.Unlock()

	from, err := library.Locate(inst.doc, path)
	if err != nil {
		return err
	}
	if from.Parent == nil {
		return fmt.Errorf("%w: cannot move the tree root", collection.ErrValidation)
	}
	to, err := library.Locate(inst.doc, toPath)
	if err != nil {
		return err
	}
	if err := inst.doc.MoveNode(from.Parent, from.Index, to.Node, index); err != nil {
		return err
	}
	return inst.flush(ctx)
}

// AppendTrack appends a track reference to the playlist at path.
func (inst *Instance) AppendTrack(ctx context.Context, path, key string) error {
	inst.mu.Lock()
	defer inst.mu.Unlock()

	loc, err := library.Locate(inst.doc, path)
	if err != nil {
		return err
	}
	if loc.Node.Type != collection.NodePlaylist {
		return fmt.Errorf("%w: path %q is not a playlist", collection.ErrNotFound, path)
	}
	if err := inst.doc.AppendTrackRef(loc.Node, key); err != nil {
		return err
	}
	return inst.flush(ctx)
}

// ReorderPlaylist rearranges the references of the playlist at path.
func (inst *Instance) ReorderPlaylist(ctx context.Context, path string, order []int) error {
	inst.mu.Lock()
	defer inst.mu.Unlock()

	loc, err := library.Locate(inst.doc, path)
	if err != nil {
		return err
	}
	if loc.Node.Type != collection.NodePlaylist {
		return fmt.Errorf("%w: path %q is not a playlist", collection.ErrNotFound, path)
	}
	if err := inst.doc.ReorderTrackRefs(loc.Node, order); err != nil {
		return err
	}
	return inst.flush(ctx)
}

// flush serializes the mutated tree and writes it to the active backing
// store. The dirty flag stays set until a write succeeds, so a failed
// persist is retried by the next mutation. Callers hold the mutex.
func (inst *Instance) flush(ctx context.Context) error {
	inst.dirty = true
	data, err := collection.Serialize(inst.doc)
	if err != nil {
		return err
	}
	if err := inst.persist(ctx, data); err != nil {
		return err
	}
	inst.dirty = false
	return nil
}
