package instance

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/jaki95/dj-collection-server/internal/collection"
	"github.com/jaki95/dj-collection-server/internal/storage"
)

// Manager hands out per-user collection instances. Instances are
// independent across users; within one user key, loads are single-flight:
// concurrent callers for a not-yet-ready instance all observe the result of
// one underlying fetch-and-parse, and failed loads cache nothing.
type Manager struct {
	durable          storage.Store
	memory           *storage.MemoryStore
	maxDocumentBytes int64

	mu        sync.RWMutex
	instances map[string]*Instance
	gen       map[string]uint64

	group singleflight.Group
}

// NewManager creates a manager over the given durable store and memory
// table.
func NewManager(durable storage.Store, memory *storage.MemoryStore, maxDocumentBytes int64) *Manager {
	return &Manager{
		durable:          durable,
		memory:           memory,
		maxDocumentBytes: maxDocumentBytes,
		instances:        make(map[string]*Instance),
		gen:              make(map[string]uint64),
	}
}

// StoragePath returns the deterministic durable object path for a user's
// collection. Pure function, no side effects.
func (m *Manager) StoragePath(userID string) string {
	return path.Join("collections", userID, "collection.xml")
}

// GetService returns the user's instance for the given locator, loading it
// if needed. A Ready instance with a matching locator is returned
// immediately; otherwise one load runs regardless of how many callers are
// waiting.
func (m *Manager) GetService(ctx context.Context, userID string, loc Locator) (*Instance, error) {
	if inst := m.current(userID); inst != nil && inst.Locator == loc {
		return inst, nil
	}

	key := userID + "|" + loc.String()
	v, err, _ := m.group.Do(key, func() (interface{}, error) {
		// A racing loader may have published while we queued.
		if inst := m.current(userID); inst != nil && inst.Locator == loc {
			return inst, nil
		}
		return m.load(ctx, userID, loc)
	})
	if err != nil {
		return nil, err
	}
	return v.(*Instance), nil
}

func (m *Manager) current(userID string) *Instance {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.instances[userID]
}

func (m *Manager) load(ctx context.Context, userID string, loc Locator) (*Instance, error) {
	startGen := m.generation(userID)

	data, err := m.fetch(ctx, userID, loc)
	if err != nil {
		return nil, err
	}

	doc, err := collection.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoad, err)
	}

	inst := newInstance(userID, loc, doc, m.persister(userID, loc))
	slog.Debug("Loaded collection instance", "user", userID, "instance", inst.ID, "backing", loc.Mode)

	m.mu.Lock()
	defer m.mu.Unlock()
	// Publish only if nobody replaced or invalidated the user while this
	// load was in flight; the caller still gets a consistent snapshot.
	if m.gen[userID] == startGen {
		m.instances[userID] = inst
	}
	return inst, nil
}

func (m *Manager) generation(userID string) uint64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.gen[userID]
}

func (m *Manager) fetch(ctx context.Context, userID string, loc Locator) ([]byte, error) {
	switch loc.Mode {
	case BackingMemory:
		data, ok := m.memory.Get(userID)
		if !ok {
			return nil, fmt.Errorf("%w: user %s", ErrExpired, userID)
		}
		return data, nil
	case BackingDurable:
		data, err := m.durable.Fetch(ctx, loc.Path)
		if err != nil {
			if errors.Is(err, storage.ErrObjectNotFound) {
				return nil, fmt.Errorf("%w: user %s", ErrNoCollection, userID)
			}
			return nil, fmt.Errorf("%w: %v", ErrLoad, err)
		}
		return data, nil
	default:
		return nil, fmt.Errorf("%w: unknown backing mode %q", ErrLoad, loc.Mode)
	}
}

func (m *Manager) persister(userID string, loc Locator) func(ctx context.Context, data []byte) error {
	switch loc.Mode {
	case BackingMemory:
		return func(_ context.Context, data []byte) error {
			m.memory.Set(userID, data)
			return nil
		}
	default:
		return func(ctx context.Context, data []byte) error {
			return m.durable.Put(ctx, loc.Path, data)
		}
	}
}

// ReplaceDocument parses the uploaded bytes eagerly and replaces the user's
// instance wholesale, regardless of prior state. For a durable locator the
// bytes are written through to the durable store first.
func (m *Manager) ReplaceDocument(ctx context.Context, userID string, data []byte, loc Locator) (*Instance, error) {
	if m.maxDocumentBytes > 0 && int64(len(data)) > m.maxDocumentBytes {
		return nil, fmt.Errorf("%w: document of %d bytes exceeds limit of %d", collection.ErrValidation, len(data), m.maxDocumentBytes)
	}

	doc, err := collection.Parse(data)
	if err != nil {
		return nil, err
	}

	switch loc.Mode {
	case BackingMemory:
		m.memory.Set(userID, data)
	case BackingDurable:
		if err := m.durable.Put(ctx, loc.Path, data); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("%w: unknown backing mode %q", collection.ErrValidation, loc.Mode)
	}

	inst := newInstance(userID, loc, doc, m.persister(userID, loc))
	slog.Info("Replaced collection instance", "user", userID, "instance", inst.ID, "backing", loc.Mode)

	m.mu.Lock()
	m.gen[userID]++
	m.instances[userID] = inst
	m.mu.Unlock()
	return inst, nil
}

// SetFromMemory stores an uploaded document in the in-memory table and
// replaces the user's instance.
func (m *Manager) SetFromMemory(ctx context.Context, userID string, data []byte) (*Instance, error) {
	return m.ReplaceDocument(ctx, userID, data, MemoryLocator())
}

// HasMemoryInstance reports whether a memory-backed instance or live
// memory-table entry exists for the user. Callers use it to distinguish
// "never uploaded" from "evicted, please re-upload".
func (m *Manager) HasMemoryInstance(userID string) bool {
	if inst := m.current(userID); inst != nil && inst.Locator.Mode == BackingMemory {
		return true
	}
	return m.memory.Has(userID)
}

// HasCollection reports whether any document exists for the user, and
// where.
func (m *Manager) HasCollection(ctx context.Context, userID string) (bool, BackingMode) {
	if m.HasMemoryInstance(userID) {
		return true, BackingMemory
	}
	if m.durable.Exists(ctx, m.StoragePath(userID)) {
		return true, BackingDurable
	}
	return false, ""
}

// Invalidate drops the user's cached instance. Backing bytes are left in
// place, so the next GetService performs a fresh load from them instead of
// serving the stale tree.
func (m *Manager) Invalidate(userID string) {
	m.mu.Lock()
	m.gen[userID]++
	delete(m.instances, userID)
	m.mu.Unlock()
	slog.Debug("Invalidated collection instance", "user", userID)
}

// Evict discards the user's collection: the cached instance and the
// in-memory document bytes. Durable objects are not touched.
func (m *Manager) Evict(userID string) {
	m.Invalidate(userID)
	m.memory.Delete(userID)
	slog.Debug("Evicted collection", "user", userID)
}
