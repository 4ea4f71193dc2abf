// Package store keeps raw log records per kind and user, ordered by their
// timestamp.
package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/fitlogapp/fitlog/internal/aggregation"
	"github.com/fitlogapp/fitlog/internal/records"
)

// ErrNotFound is returned when a record does not exist
var ErrNotFound = errors.New("record not found")

// Entry is one stored log record
type Entry struct {
	Kind   records.Kind
	UserID string
	ID     string
	Time   time.Time // Bucketing timestamp of the record
	Data   []byte    // JSON encoded record
}

// NewEntry encodes a record for storage. The record must carry an id and a
// timestamp that parses in loc.
func NewEntry(l records.Log, loc *time.Location) (Entry, error) {
	if l.LogID() == "" {
		return Entry{}, fmt.Errorf("%s record has no id", l.Kind())
	}
	ts, ok := aggregation.ParseTimestamp(l.Timestamp(), loc)
	if !ok {
		return Entry{}, fmt.Errorf("%s record %s has unreadable timestamp %q", l.Kind(), l.LogID(), l.Timestamp())
	}
	data, err := records.Encode(l)
	if err != nil {
		return Entry{}, err
	}
	return Entry{
		Kind:   l.Kind(),
		UserID: l.Owner(),
		ID:     l.LogID(),
		Time:   ts,
		Data:   data,
	}, nil
}

// Query selects the records of one kind and user.
// Zero From/To leave that side of the range open; From and To are inclusive.
// PageSize 0 returns every matching record.
type Query struct {
	Kind     records.Kind
	UserID   string
	From     time.Time
	To       time.Time
	Page     int // 1-based
	PageSize int
}

// Page is one page of records, newest first
type Page struct {
	Entries  []Entry
	Total    int
	Page     int
	PageSize int
}

// HasMore reports whether records exist beyond this page
func (p Page) HasMore() bool {
	if p.PageSize <= 0 {
		return false
	}
	return p.Page*p.PageSize < p.Total
}

// Payloads returns the raw JSON of every entry, in page order
func (p Page) Payloads() [][]byte {
	out := make([][]byte, len(p.Entries))
	for i, e := range p.Entries {
		out[i] = e.Data
	}
	return out
}

// Store persists log records
type Store interface {
	// Put inserts or replaces a record (matched by kind, user and id)
	Put(ctx context.Context, e Entry) error

	// Get returns a single record or ErrNotFound
	Get(ctx context.Context, kind records.Kind, userID, id string) (Entry, error)

	// List returns the records matching q, newest first
	List(ctx context.Context, q Query) (Page, error)

	// Delete removes the given ids and returns how many existed
	Delete(ctx context.Context, kind records.Kind, userID string, ids []string) (int, error)

	// Close releases backend resources
	Close() error
}

// normalize fills paging defaults
func (q Query) normalize() Query {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.PageSize < 0 {
		q.PageSize = 0
	}
	return q
}

// window returns the [start, end) slice bounds of the requested page over
// total matching records
func (q Query) window(total int) (int, int) {
	if q.PageSize == 0 {
		return 0, total
	}
	start := (q.Page - 1) * q.PageSize
	if start > total {
		start = total
	}
	end := start + q.PageSize
	if end > total {
		end = total
	}
	return start, end
}
