package store

import (
	"container/list"
	"sort"
	"strings"
	"sync"
)

type memoryEntry struct {
	key   string
	value []byte
}

// MemoryStore is a concurrency-safe in-memory KV with an optional
// least-recently-used bound on the number of entries.
type MemoryStore struct {
	mu sync.Mutex

	// key -> element of order holding a *memoryEntry
	data  map[string]*list.Element
	order *list.List // front is most recently used

	maxEntries int
}

// NewMemoryStore creates a new MemoryStore.
// If maxEntries is <= 0, it is treated as unlimited.
func NewMemoryStore(maxEntries int) *MemoryStore {
	return &MemoryStore{
		data:       make(map[string]*list.Element),
		order:      list.New(),
		maxEntries: maxEntries,
	}
}

// Get returns a copy of the value stored under key and marks it recently used.
func (s *MemoryStore) Get(key string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	elem, ok := s.data[key]
	if !ok {
		return nil, ErrNotFound
	}
	s.order.MoveToFront(elem)

	v := elem.Value.(*memoryEntry).value
	return append([]byte(nil), v...), nil
}

// Put stores value under key and evicts the least recently used entries
// beyond the configured bound.
func (s *MemoryStore) Put(key string, value []byte) error {
	v := append([]byte(nil), value...)

	s.mu.Lock()
	defer s.mu.Unlock()

	if elem, ok := s.data[key]; ok {
		elem.Value.(*memoryEntry).value = v
		s.order.MoveToFront(elem)
		return nil
	}

	s.data[key] = s.order.PushFront(&memoryEntry{key: key, value: v})

	for s.maxEntries > 0 && s.order.Len() > s.maxEntries {
		oldest := s.order.Back()
		s.order.Remove(oldest)
		delete(s.data, oldest.Value.(*memoryEntry).key)
	}
	return nil
}

// Delete removes key. Deleting a missing key is not an error.
func (s *MemoryStore) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if elem, ok := s.data[key]; ok {
		s.order.Remove(elem)
		delete(s.data, key)
	}
	return nil
}

// Keys returns the sorted keys starting with prefix.
func (s *MemoryStore) Keys(prefix string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var keys []string
	for k := range s.data {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys, nil
}

// Len reports the number of stored entries.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.order.Len()
}
