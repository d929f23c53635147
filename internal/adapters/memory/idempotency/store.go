package idempotency

import (
	"context"
	"sync"
	"time"

	"github.com/yatra-labs/pilgrimage-planner-api/internal/ports/out/idempotency"
)

// Store is an in-memory implementation of idempotency.Store.
// It is safe for concurrent use. Records older than ttl are treated as absent;
// a zero ttl keeps records forever.
type Store struct {
	mu  sync.RWMutex
	m   map[idempotency.Fingerprint]idempotency.Record
	ttl time.Duration
	now func() time.Time
}

func NewStore() *Store {
	return &Store{
		m:   make(map[idempotency.Fingerprint]idempotency.Record),
		now: func() time.Time { return time.Now().UTC() },
	}
}

// NewStoreWithTTL returns a store that expires records after ttl, measured with now.
func NewStoreWithTTL(ttl time.Duration, now func() time.Time) *Store {
	s := NewStore()
	s.ttl = ttl
	if now != nil {
		s.now = now
	}
	return s
}

func (s *Store) Get(ctx context.Context, fp idempotency.Fingerprint) (idempotency.Record, bool, error) {
	_ = ctx
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.m[fp]
	if !ok {
		return idempotency.Record{}, false, nil
	}
	if rec.Expired(s.now(), s.ttl) {
		return idempotency.Record{}, false, nil
	}
	rec.Body = append([]byte(nil), rec.Body...)
	return rec, true, nil
}

func (s *Store) Put(ctx context.Context, fp idempotency.Fingerprint, rec idempotency.Record) error {
	_ = ctx
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = s.now()
	}
	rec.Body = append([]byte(nil), rec.Body...)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.m[fp] = rec
	return nil
}
