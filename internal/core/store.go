package core

import (
	"slices"
	"sync"
	"time"
)

// RecordStore holds the raw, unfiltered record collection. It is written
// once per load and read concurrently afterwards.
type RecordStore struct {
	mu       sync.RWMutex
	records  []Record
	loadedAt time.Time
}

// NewRecordStore creates a store holding a copy of records.
func NewRecordStore(records []Record) *RecordStore {
	s := &RecordStore{}
	if len(records) > 0 {
		s.Replace(records)
	}
	return s
}

// Snapshot returns the records in load order. The slice is a copy and may
// be modified by the caller without affecting the store.
func (s *RecordStore) Snapshot() []Record {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.records)
}

// Len returns the number of stored records.
func (s *RecordStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

// LoadedAt returns when the store was last replaced. Zero if never loaded.
func (s *RecordStore) LoadedAt() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loadedAt
}

// Replace swaps in a new record collection.
func (s *RecordStore) Replace(records []Record) {
	cp := slices.Clone(records)
	s.mu.Lock()
	s.records = cp
	s.loadedAt = time.Now()
	s.mu.Unlock()
}
