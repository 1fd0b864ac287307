// Package localclient implements the built-in, always-registered client:
// a pure-Go key-value store speaking the facade's newest protocol version
// natively, so the facade always has a usable backend even when no
// external shared library loads successfully.
package localclient

import (
	"sort"
	"sync"

	"github.com/sajjadrahnama/foundationdb/internal/capi"
)

// entry is one version of a key. A chain of entries, sorted by version
// ascending, is how the store answers a read "as of" a given version
// without needing a full copy-on-write tree.
type entry struct {
	version int64
	value   []byte
	deleted bool
}

// store is a single mutex-guarded map with a version chain per key —
// simplified from a sharded engine (the pack's ValentinKolb-dKV maple
// engine shards by key hash and tracks a logical write index per entry)
// down to the facade's actual requirement: a correct, always-available
// backend, not a high-throughput one.
type store struct {
	mu      sync.RWMutex
	data    map[string][]entry
	version int64
}

func newStore() *store {
	return &store{data: make(map[string][]entry)}
}

// readVersion returns the latest committed version, handed out as a
// transaction's initial read version.
func (s *store) readVersion() int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.version
}

// get resolves key as of version asOf, walking the chain backwards to
// the newest entry no later than asOf.
func (s *store) get(key []byte, asOf int64) ([]byte, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.getLocked(key, asOf)
}

func (s *store) getLocked(key []byte, asOf int64) ([]byte, bool) {
	chain := s.data[string(key)]
	for i := len(chain) - 1; i >= 0; i-- {
		if chain[i].version <= asOf {
			if chain[i].deleted {
				return nil, false
			}
			return chain[i].value, true
		}
	}
	return nil, false
}

// getRange returns up to limit rows with key in [beginKey, endKey) as of
// version asOf, in ascending or descending key order. limit <= 0 means
// unbounded.
func (s *store) getRange(beginKey, endKey []byte, asOf int64, limit int, reverse bool) ([]capi.KeyValue, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	keys := make([]string, 0, len(s.data))
	for k := range s.data {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var rows []capi.KeyValue
	for _, k := range keys {
		if k < string(beginKey) {
			continue
		}
		if len(endKey) > 0 && k >= string(endKey) {
			continue
		}
		if v, ok := s.getLocked([]byte(k), asOf); ok {
			rows = append(rows, capi.KeyValue{Key: []byte(k), Value: v})
		}
	}

	if reverse {
		for i, j := 0, len(rows)-1; i < j; i, j = i+1, j-1 {
			rows[i], rows[j] = rows[j], rows[i]
		}
	}
	more := limit > 0 && len(rows) > limit
	if more {
		rows = rows[:limit]
	}
	return rows, more
}

// write is one pending mutation inside a transaction: deleted means the
// key is cleared (a nil value with deleted unset is an empty value).
type write struct {
	value   []byte
	deleted bool
}

// commit applies writes atomically under a single new version number and
// returns it.
func (s *store) commit(order []string, writes map[string]write) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.version++
	v := s.version
	for _, k := range order {
		w := writes[k]
		s.data[k] = append(s.data[k], entry{version: v, value: w.value, deleted: w.deleted})
	}
	return v
}
