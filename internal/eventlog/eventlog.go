// Package eventlog holds the broker's in-process event history.
//
// The log is volatile: it does not survive a restart even when the bus hop
// is durable. Those are independent durability domains.
package eventlog

import (
	"sync"

	"github.com/groblegark/relay/internal/model"
)

// DefaultLimit is the query window size when no limit is given.
const DefaultLimit = 50

// Query selects records from the log. All string fields are optional;
// empty means "any".
type Query struct {
	SourceSystem  string
	EventType     string
	CorrelationID string
	Limit         int

	// FilterFirst applies the field filters to the whole log before
	// truncating to Limit. The default (false) truncates to the last
	// Limit records first and filters only within that window, so a
	// query can return fewer matches than exist in total. That is the
	// historical behavior and callers depend on it; set FilterFirst to
	// opt into the more intuitive ordering.
	FilterFirst bool
}

// Log is an append-only, mutex-guarded record of events. When capacity is
// positive the log is a ring: appending beyond capacity silently evicts
// the oldest records.
type Log struct {
	mu       sync.RWMutex
	records  []*model.Record
	capacity int
}

// New creates a Log bounded to capacity records. capacity <= 0 means
// unbounded growth for the process lifetime.
func New(capacity int) *Log {
	return &Log{capacity: capacity}
}

// Append adds a record to the log, evicting the oldest record when the
// capacity bound is reached. Records are never mutated after append.
func (l *Log) Append(rec *model.Record) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.capacity > 0 && len(l.records) >= l.capacity {
		n := copy(l.records, l.records[len(l.records)-l.capacity+1:])
		l.records = l.records[:n]
	}
	l.records = append(l.records, rec)
}

// Len returns the number of records currently held.
func (l *Log) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.records)
}

// Query returns matching records, most recent first, never more than
// q.Limit of them. See Query.FilterFirst for the truncation order.
func (l *Log) Query(q Query) []*model.Record {
	limit := q.Limit
	if limit <= 0 {
		limit = DefaultLimit
	}

	l.mu.RLock()
	defer l.mu.RUnlock()

	if q.FilterFirst {
		out := make([]*model.Record, 0, limit)
		for i := len(l.records) - 1; i >= 0 && len(out) < limit; i-- {
			if matches(l.records[i], q) {
				out = append(out, l.records[i])
			}
		}
		return out
	}

	// Historical order of operations: window to the last limit records,
	// then filter within the window.
	start := len(l.records) - limit
	if start < 0 {
		start = 0
	}
	window := l.records[start:]
	out := make([]*model.Record, 0, len(window))
	for i := len(window) - 1; i >= 0; i-- {
		if matches(window[i], q) {
			out = append(out, window[i])
		}
	}
	return out
}

func matches(rec *model.Record, q Query) bool {
	if q.SourceSystem != "" && rec.Event.Source != q.SourceSystem {
		return false
	}
	if q.EventType != "" && rec.Event.Type != q.EventType {
		return false
	}
	if q.CorrelationID != "" && rec.Event.CorrelationID != q.CorrelationID {
		return false
	}
	return true
}
