package store

import (
	"context"
	"sort"
	"sync"

	"github.com/fitlogapp/fitlog/internal/records"
)

// MemoryStore implements Store in process memory.
// Records of one kind and user are kept ascending by time.
type MemoryStore struct {
	mu     sync.RWMutex
	series map[string][]Entry
}

func newMemoryStore() *MemoryStore {
	return &MemoryStore{series: make(map[string][]Entry)}
}

func seriesKey(kind records.Kind, userID string) string {
	return string(kind) + "/" + userID
}

// Put inserts or replaces a record
func (s *MemoryStore) Put(_ context.Context, e Entry) error {
	e.Data = append([]byte(nil), e.Data...)
	key := seriesKey(e.Kind, e.UserID)

	s.mu.Lock()
	defer s.mu.Unlock()

	entries := removeIDs(s.series[key], map[string]struct{}{e.ID: {}})
	i := sort.Search(len(entries), func(i int) bool {
		return entries[i].Time.After(e.Time)
	})
	entries = append(entries, Entry{})
	copy(entries[i+1:], entries[i:])
	entries[i] = e
	s.series[key] = entries
	return nil
}

// Get returns a single record
func (s *MemoryStore) Get(_ context.Context, kind records.Kind, userID, id string) (Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, e := range s.series[seriesKey(kind, userID)] {
		if e.ID == id {
			return e, nil
		}
	}
	return Entry{}, ErrNotFound
}

// List returns matching records newest first
func (s *MemoryStore) List(_ context.Context, q Query) (Page, error) {
	q = q.normalize()

	s.mu.RLock()
	entries := s.series[seriesKey(q.Kind, q.UserID)]
	matched := make([]Entry, 0, len(entries))
	for i := len(entries) - 1; i >= 0; i-- {
		e := entries[i]
		if !q.From.IsZero() && e.Time.Before(q.From) {
			continue
		}
		if !q.To.IsZero() && e.Time.After(q.To) {
			continue
		}
		matched = append(matched, e)
	}
	s.mu.RUnlock()

	start, end := q.window(len(matched))
	return Page{
		Entries:  matched[start:end],
		Total:    len(matched),
		Page:     q.Page,
		PageSize: q.PageSize,
	}, nil
}

// Delete removes ids and returns how many existed
func (s *MemoryStore) Delete(_ context.Context, kind records.Kind, userID string, ids []string) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	drop := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		drop[id] = struct{}{}
	}

	key := seriesKey(kind, userID)

	s.mu.Lock()
	defer s.mu.Unlock()

	before := len(s.series[key])
	remaining := removeIDs(s.series[key], drop)
	if len(remaining) == 0 {
		delete(s.series, key)
	} else {
		s.series[key] = remaining
	}
	return before - len(remaining), nil
}

// Close is a no-op
func (s *MemoryStore) Close() error {
	return nil
}

// removeIDs filters entries in place
func removeIDs(entries []Entry, drop map[string]struct{}) []Entry {
	out := entries[:0]
	for _, e := range entries {
		if _, ok := drop[e.ID]; ok {
			continue
		}
		out = append(out, e)
	}
	// clear the tail so dropped payloads can be collected
	for i := len(out); i < len(entries); i++ {
		entries[i] = Entry{}
	}
	return out
}
