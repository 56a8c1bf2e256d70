package storage

import (
	"sync"
	"time"

	"github.com/karlseguin/ccache/v3"
)

// DefaultMemoryTTL bounds the lifetime of a memory-backed document when the
// caller does not configure one.
var DefaultMemoryTTL = 2 * time.Hour

// MemoryStore holds memory-backed document bytes per user. Entries are
// inherently non-durable: the cache evicts under size pressure and on TTL
// expiry, and callers are expected to treat a miss as an ordinary
// "re-upload" condition.
type MemoryStore struct {
	c   *ccache.Cache[[]byte]
	ttl time.Duration
	mux sync.Mutex
}

// NewMemoryStore creates a memory store holding at most maxDocuments
// entries, each living for ttl.
func NewMemoryStore(maxDocuments int64, ttl time.Duration) *MemoryStore {
	if ttl <= 0 {
		ttl = DefaultMemoryTTL
	}
	return &MemoryStore{
		c: ccache.New(
			ccache.Configure[[]byte]().
				MaxSize(maxDocuments).
				GetsPerPromote(3).
				ItemsToPrune(1),
		),
		ttl: ttl,
	}
}

// Set stores a user's document bytes, replacing any previous entry.
func (s *MemoryStore) Set(userID string, data []byte) {
	s.mux.Lock()
	defer s.mux.Unlock()
	s.c.Set(userID, data, s.ttl)
}

// Get returns a user's document bytes. A missing or expired entry reports
// false.
func (s *MemoryStore) Get(userID string) ([]byte, bool) {
	s.mux.Lock()
	defer s.mux.Unlock()

	item := s.c.Get(userID)
	if item == nil || item.Expired() {
		return nil, false
	}
	return item.Value(), true
}

// Has reports whether a live entry exists for the user.
func (s *MemoryStore) Has(userID string) bool {
	_, ok := s.Get(userID)
	return ok
}

// Delete removes a user's entry.
func (s *MemoryStore) Delete(userID string) {
	s.mux.Lock()
	defer s.mux.Unlock()
	s.c.Delete(userID)
}
