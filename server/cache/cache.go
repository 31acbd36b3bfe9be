// Package cache implements the in-memory response cache for generated
// recipes. Keys are the exact prompt text, byte for byte: no whitespace or
// case normalization, so "Eggs" and "eggs" are distinct entries. Entries
// expire after a TTL and are evicted lazily on lookup; there is no size cap
// and no background sweep.
package cache

import (
	"sync"
	"time"

	"github.com/recipegen/recipegen/server/processing"
)

// entry pairs a cached envelope with its insertion time.
type entry struct {
	value     *processing.Response
	createdAt time.Time
}

// Store maps prompt text to a previously generated envelope. Access is
// read-mostly; concurrent inserts for the same key are not deduplicated,
// the last writer wins. Values for equal keys are expected to be
// equivalent, so this is tolerable rather than a correctness guarantee.
type Store struct {
	mu      sync.RWMutex
	entries map[string]entry
	ttl     time.Duration
	now     func() time.Time
}

// New creates a Store whose entries expire after ttl.
func New(ttl time.Duration) *Store {
	return &Store{
		entries: make(map[string]entry),
		ttl:     ttl,
		now:     time.Now,
	}
}

// Lookup returns the cached envelope for key. An entry whose age has reached
// the TTL is treated as a miss and dropped.
func (s *Store) Lookup(key string) (*processing.Response, bool) {
	s.mu.RLock()
	e, ok := s.entries[key]
	s.mu.RUnlock()

	if !ok {
		return nil, false
	}

	if s.now().Sub(e.createdAt) >= s.ttl {
		s.mu.Lock()
		// Re-check under the write lock; a concurrent insert may have
		// refreshed the entry.
		if cur, ok := s.entries[key]; ok && s.now().Sub(cur.createdAt) >= s.ttl {
			delete(s.entries, key)
		}
		s.mu.Unlock()
		return nil, false
	}

	return e.value, true
}

// Insert stores value under key, overwriting any existing entry.
func (s *Store) Insert(key string, value *processing.Response) {
	s.mu.Lock()
	s.entries[key] = entry{value: value, createdAt: s.now()}
	s.mu.Unlock()
}

// Len returns the number of entries currently held, including any that have
// expired but not yet been looked up.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}
