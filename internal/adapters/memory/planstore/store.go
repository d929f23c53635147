package planstore

import (
	"context"
	"sort"
	"sync"

	"github.com/yatra-labs/pilgrimage-planner-api/internal/domain"
	"github.com/yatra-labs/pilgrimage-planner-api/internal/ports/out/planstore"
)

// Store is an in-memory implementation of planstore.Store.
// It is safe for concurrent use.
type Store struct {
	mu   sync.RWMutex
	byID map[domain.PlanID]planstore.Record
}

var _ planstore.Store = (*Store)(nil)

func NewStore() *Store {
	return &Store{
		byID: make(map[domain.PlanID]planstore.Record),
	}
}

func (s *Store) Insert(ctx context.Context, owner domain.OwnerID, rec planstore.Record) (domain.PlanID, error) {
	_ = ctx
	if rec.ID == "" {
		return "", planstore.ErrAlreadyExists // treat empty ID as invalid
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byID[rec.ID]; ok {
		return "", planstore.ErrAlreadyExists
	}
	cp := planstore.CloneRecord(rec)
	cp.OwnerID = owner
	s.byID[rec.ID] = cp
	return rec.ID, nil
}

func (s *Store) Update(ctx context.Context, id domain.PlanID, owner domain.OwnerID, rec planstore.Record) error {
	_ = ctx
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.byID[id]
	if !ok || cur.OwnerID != owner {
		return planstore.ErrNotFound
	}
	cp := planstore.CloneRecord(rec)
	cp.ID = id
	cp.OwnerID = owner
	cp.CreatedAt = cur.CreatedAt
	s.byID[id] = cp
	return nil
}

func (s *Store) List(ctx context.Context, owner domain.OwnerID) ([]planstore.Summary, error) {
	_ = ctx
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]planstore.Summary, 0)
	for _, rec := range s.byID {
		if rec.OwnerID == owner {
			out = append(out, planstore.SummaryOf(rec))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (s *Store) Delete(ctx context.Context, id domain.PlanID, owner domain.OwnerID) error {
	_ = ctx
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.byID[id]
	if !ok || cur.OwnerID != owner {
		return planstore.ErrNotFound
	}
	delete(s.byID, id)
	return nil
}

func (s *Store) Get(ctx context.Context, id domain.PlanID) (planstore.Record, error) {
	_ = ctx
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.byID[id]
	if !ok {
		return planstore.Record{}, planstore.ErrNotFound
	}
	return planstore.CloneRecord(rec), nil
}
