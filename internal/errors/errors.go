// Package errors provides the structured error taxonomy used by the grid
// packages.
//
// Two families are distinguished. Contract violations (an empty header,
// paging before load, an option naming an unknown column, a duplicate column)
// are returned immediately and never retried. Data errors describe a single
// bad entry inside a batch, are collected per entry by a Collector and logged
// without aborting the rest of the batch.
package errors

import (
	"sort"
	"strings"
	"sync"
	"time"
)

// EntryError records the failure of one keyed entry inside a batch.
type EntryError struct {
	Key       string
	Err       error
	Timestamp time.Time
}

// Error implements the error interface
func (ee *EntryError) Error() string {
	return ee.Key + ": " + ee.Err.Error()
}

// Unwrap returns the entry's cause.
func (ee *EntryError) Unwrap() error {
	return ee.Err
}

// Collector collects per-entry errors of a batch operation.
type Collector struct {
	entries []EntryError
	mutex   sync.RWMutex
}

// NewCollector creates a new error collector
func NewCollector() *Collector {
	return &Collector{
		entries: make([]EntryError, 0),
	}
}

// Add records err against key. Nil errors are ignored.
func (c *Collector) Add(key string, err error) {
	if err == nil {
		return
	}
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.entries = append(c.entries, EntryError{Key: key, Err: err, Timestamp: time.Now()})
}

// Entries returns a copy of the collected entry errors.
func (c *Collector) Entries() []EntryError {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	result := make([]EntryError, len(c.entries))
	copy(result, c.entries)
	return result
}

// Keys returns the sorted keys that failed.
func (c *Collector) Keys() []string {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	keys := make([]string, 0, len(c.entries))
	for _, e := range c.entries {
		keys = append(keys, e.Key)
	}
	sort.Strings(keys)
	return keys
}

// HasErrors returns true if there are any errors
func (c *Collector) HasErrors() bool {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	return len(c.entries) > 0
}

// Clear clears all errors
func (c *Collector) Clear() {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.entries = c.entries[:0]
}

// Err folds the collected entries into a single error, or nil when empty.
func (c *Collector) Err() error {
	entries := c.Entries()
	if len(entries) == 0 {
		return nil
	}
	msgs := make([]string, len(entries))
	for i := range entries {
		msgs[i] = entries[i].Error()
	}
	return &GridError{
		Type:        ErrorTypeData,
		Code:        CodeInvalidDescriptor,
		Message:     strings.Join(msgs, "; "),
		Cause:       &entries[0],
		Recoverable: true,
	}
}
