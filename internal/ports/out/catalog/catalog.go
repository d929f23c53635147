package catalog

import (
	"context"
	"errors"

	"github.com/yatra-labs/pilgrimage-planner-api/internal/domain"
)

// ErrUnavailable indicates the catalog backend could not be reached or failed mid-read.
var ErrUnavailable = errors.New("catalog unavailable")

// Catalog is the read-only source of normalized entities.
//
// Result ordering expectations:
// - List methods return entities in a stable order (cities by name, places by rating desc then name).
// - GetEntitiesByIDs returns only the IDs it found; missing IDs are simply absent.
type Catalog interface {
	ListCities(ctx context.Context) ([]domain.City, error)
	ListPlacesByCity(ctx context.Context, cityID domain.EntityID) ([]domain.Place, error)
	ListEventsAll(ctx context.Context) ([]domain.Event, error)
	ListRoutesAll(ctx context.Context) ([]domain.Route, error)

	GetEntitiesByIDs(ctx context.Context, kind domain.EntityKind, ids []domain.EntityID) ([]domain.Entity, error)

	// Search returns entities of any kind whose localized name contains query (case-insensitive).
	Search(ctx context.Context, query string, limit int) ([]domain.Entity, error)
}
