package audit

import (
	"context"
	"sync"
	"time"
)

// MemoryStore keeps the most recent records in memory. When full, the
// oldest record is evicted.
type MemoryStore struct {
	mu         sync.RWMutex
	records    []*Record
	maxRecords int
	closed     bool
}

// NewMemoryStore creates a store holding at most maxRecords records.
// A non-positive maxRecords means unbounded.
func NewMemoryStore(maxRecords int) *MemoryStore {
	return &MemoryStore{maxRecords: maxRecords}
}

// Store implements Store.
func (m *MemoryStore) Store(ctx context.Context, record *Record) error {
	if record == nil {
		return NewStorageError("memory", "store", errNilRecord)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return NewStorageError("memory", "store", ErrClosed)
	}

	cp := *record
	m.records = append(m.records, &cp)
	if m.maxRecords > 0 && len(m.records) > m.maxRecords {
		evict := len(m.records) - m.maxRecords
		clear(m.records[:evict])
		m.records = m.records[evict:]
	}
	return nil
}

// Query implements Store.
func (m *MemoryStore) Query(ctx context.Context, query *Query) ([]*Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return nil, NewStorageError("memory", "query", ErrClosed)
	}

	limit := query.limit()
	var out []*Record
	for i := len(m.records) - 1; i >= 0 && len(out) < limit; i-- {
		r := m.records[i]
		if !matches(r, query) {
			continue
		}
		cp := *r
		out = append(out, &cp)
	}
	return out, nil
}

// Count implements Store.
func (m *MemoryStore) Count(ctx context.Context) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return int64(len(m.records)), nil
}

// DeleteBefore implements Store.
func (m *MemoryStore) DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	kept := m.records[:0]
	var deleted int64
	for _, r := range m.records {
		if r.StartedAt.Before(cutoff) {
			deleted++
			continue
		}
		kept = append(kept, r)
	}
	clear(m.records[len(kept):])
	m.records = kept
	return deleted, nil
}

// Ping implements Store.
func (m *MemoryStore) Ping(ctx context.Context) error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return ErrClosed
	}
	return nil
}

// Close implements Store.
func (m *MemoryStore) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	m.records = nil
	return nil
}

func matches(r *Record, q *Query) bool {
	if q == nil {
		return true
	}
	if q.SessionID != "" && r.SessionID != q.SessionID {
		return false
	}
	if !q.Since.IsZero() && r.StartedAt.Before(q.Since) {
		return false
	}
	return true
}
