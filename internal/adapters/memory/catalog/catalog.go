package catalog

import (
	"context"
	"sort"
	"sync"

	"github.com/yatra-labs/pilgrimage-planner-api/internal/domain"
	"github.com/yatra-labs/pilgrimage-planner-api/internal/ports/out/catalog"
)

// Catalog is an in-memory implementation of catalog.Catalog.
// It is safe for concurrent use.
type Catalog struct {
	mu     sync.RWMutex
	cities []domain.City
	places []domain.Place
	routes []domain.Route
	events []domain.Event
}

var _ catalog.Catalog = (*Catalog)(nil)

func New() *Catalog {
	return &Catalog{}
}

// NewFromSeed builds a catalog holding the seed entities.
func NewFromSeed(s Seed) (*Catalog, error) {
	c := New()
	cities, places, routes, events, err := s.Entities()
	if err != nil {
		return nil, err
	}
	c.Replace(cities, places, routes, events)
	return c, nil
}

// Replace swaps the whole catalog content.
func (c *Catalog) Replace(cities []domain.City, places []domain.Place, routes []domain.Route, events []domain.Event) {
	cs := append([]domain.City(nil), cities...)
	ps := append([]domain.Place(nil), places...)
	rs := append([]domain.Route(nil), routes...)
	es := append([]domain.Event(nil), events...)
	sortCities(cs)
	sortPlaces(ps)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.cities, c.places, c.routes, c.events = cs, ps, rs, es
}

func (c *Catalog) ListCities(ctx context.Context) ([]domain.City, error) {
	_ = ctx
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]domain.City, 0, len(c.cities))
	for i := range c.cities {
		out = append(out, *domain.CloneEntity(&c.cities[i]).(*domain.City))
	}
	return out, nil
}

func (c *Catalog) ListPlacesByCity(ctx context.Context, cityID domain.EntityID) ([]domain.Place, error) {
	_ = ctx
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]domain.Place, 0)
	for i := range c.places {
		if c.places[i].CityID == cityID {
			out = append(out, *domain.CloneEntity(&c.places[i]).(*domain.Place))
		}
	}
	return out, nil
}

func (c *Catalog) ListEventsAll(ctx context.Context) ([]domain.Event, error) {
	_ = ctx
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]domain.Event, 0, len(c.events))
	for i := range c.events {
		out = append(out, *domain.CloneEntity(&c.events[i]).(*domain.Event))
	}
	return out, nil
}

func (c *Catalog) ListRoutesAll(ctx context.Context) ([]domain.Route, error) {
	_ = ctx
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]domain.Route, 0, len(c.routes))
	for i := range c.routes {
		out = append(out, *domain.CloneEntity(&c.routes[i]).(*domain.Route))
	}
	return out, nil
}

func (c *Catalog) GetEntitiesByIDs(ctx context.Context, kind domain.EntityKind, ids []domain.EntityID) ([]domain.Entity, error) {
	_ = ctx
	want := make(map[domain.EntityID]struct{}, len(ids))
	for _, id := range ids {
		want[id] = struct{}{}
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]domain.Entity, 0, len(ids))
	c.each(kind, func(e domain.Entity) {
		if _, ok := want[e.EntityID()]; ok {
			out = append(out, domain.CloneEntity(e))
		}
	})
	return out, nil
}

func (c *Catalog) Search(ctx context.Context, query string, limit int) ([]domain.Entity, error) {
	_ = ctx
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]domain.Entity, 0)
	for _, kind := range domain.AllKinds {
		c.each(kind, func(e domain.Entity) {
			if limit > 0 && len(out) >= limit {
				return
			}
			if e.LocalizedName().Matches(query) {
				out = append(out, domain.CloneEntity(e))
			}
		})
	}
	return out, nil
}

// each calls fn for every entity of kind in catalog order. Callers hold the read lock.
func (c *Catalog) each(kind domain.EntityKind, fn func(domain.Entity)) {
	switch kind {
	case domain.KindCity:
		for i := range c.cities {
			fn(&c.cities[i])
		}
	case domain.KindPlace:
		for i := range c.places {
			fn(&c.places[i])
		}
	case domain.KindRoute:
		for i := range c.routes {
			fn(&c.routes[i])
		}
	case domain.KindEvent:
		for i := range c.events {
			fn(&c.events[i])
		}
	}
}

func sortCities(cs []domain.City) {
	sort.SliceStable(cs, func(i, j int) bool {
		ni, nj := domain.Localize(cs[i].Name, domain.DefaultLanguage), domain.Localize(cs[j].Name, domain.DefaultLanguage)
		if ni != nj {
			return ni < nj
		}
		return cs[i].ID < cs[j].ID
	})
}

func sortPlaces(ps []domain.Place) {
	sort.SliceStable(ps, func(i, j int) bool {
		if ps[i].Rating != ps[j].Rating {
			return ps[i].Rating > ps[j].Rating
		}
		return domain.Localize(ps[i].Name, domain.DefaultLanguage) < domain.Localize(ps[j].Name, domain.DefaultLanguage)
	})
}
