// Package model provides RecordStore, the ordered collection of row records
// backing a grid.
//
// The store never returns errors and never panics on bad input: invalid
// indexes and empty records are silently ignored. Intent is validated by the
// grid controller that drives it.
package model

import (
	"sync"
)

// ToEnd is the Slice count meaning "up to the last record".
const ToEnd = -1

// Row is one opaque record. Keys correspond to column names.
type Row map[string]interface{}

// Clone returns a shallow copy of the row.
func (r Row) Clone() Row {
	if r == nil {
		return nil
	}
	out := make(Row, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// RecordStore is an ordered, index-addressable list of rows.
type RecordStore struct {
	rows  []Row
	mutex sync.RWMutex
}

// NewRecordStore creates a store holding rows. Empty rows are dropped.
func NewRecordStore(rows ...Row) *RecordStore {
	s := &RecordStore{rows: make([]Row, 0, len(rows))}
	s.AddAll(rows...)
	return s
}

// Len returns the number of records.
func (s *RecordStore) Len() int {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return len(s.rows)
}

// Slice returns up to count records starting at start. A negative start is
// treated as 0 and a negative count (ToEnd) returns everything from start.
func (s *RecordStore) Slice(start, count int) []Row {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	if start < 0 {
		start = 0
	}
	if start >= len(s.rows) {
		return []Row{}
	}
	end := len(s.rows)
	if count >= 0 && count < end-start {
		end = start + count
	}

	out := make([]Row, end-start)
	copy(out, s.rows[start:end])
	return out
}

// Rows returns every record in order.
func (s *RecordStore) Rows() []Row {
	return s.Slice(0, ToEnd)
}

// Get returns the record at index i.
func (s *RecordStore) Get(i int) (Row, bool) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	if !s.inRange(i) {
		return nil, false
	}
	return s.rows[i], true
}

// Set replaces the record at index i. Out of range indexes and empty rows are
// ignored.
func (s *RecordStore) Set(i int, row Row) {
	if len(row) == 0 {
		return
	}
	s.mutex.Lock()
	defer s.mutex.Unlock()
	if s.inRange(i) {
		s.rows[i] = row
	}
}

// Add appends row unless it is nil or empty.
func (s *RecordStore) Add(row Row) {
	if len(row) == 0 {
		return
	}
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.rows = append(s.rows, row)
}

// AddAll appends every non-empty row.
func (s *RecordStore) AddAll(rows ...Row) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	for _, row := range rows {
		if len(row) == 0 {
			continue
		}
		s.rows = append(s.rows, row)
	}
}

// RemoveAt deletes the record at index i.
func (s *RecordStore) RemoveAt(i int) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	if !s.inRange(i) {
		return
	}
	copy(s.rows[i:], s.rows[i+1:])
	s.rows[len(s.rows)-1] = nil
	s.rows = s.rows[:len(s.rows)-1]
}

// Exchange swaps the records at i and j.
func (s *RecordStore) Exchange(i, j int) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	if !s.inRange(i) || !s.inRange(j) {
		return
	}
	s.rows[i], s.rows[j] = s.rows[j], s.rows[i]
}

// Clear removes every record.
func (s *RecordStore) Clear() {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.rows = nil
}

func (s *RecordStore) inRange(i int) bool {
	return i >= 0 && i < len(s.rows)
}
