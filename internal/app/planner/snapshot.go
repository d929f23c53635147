package planner

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/yatra-labs/pilgrimage-planner-api/internal/domain"
	"github.com/yatra-labs/pilgrimage-planner-api/internal/ports/out/catalog"
)

// placeFetchLimit bounds concurrent per-city place reads.
const placeFetchLimit = 4

// FetchSnapshot loads the catalog data SelectCandidates needs for f.
// Only the content types f selects are fetched. Places are read per city:
// the selected cities, or every city when there is no city filter.
func FetchSnapshot(ctx context.Context, cat catalog.Catalog, f Filters) (Snapshot, error) {
	var snap Snapshot

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		cs, err := cat.ListCities(gctx)
		if err != nil {
			return fmt.Errorf("list cities: %w", err)
		}
		snap.Cities = cs
		return nil
	})
	if len(f.EventTypes) > 0 {
		g.Go(func() error {
			es, err := cat.ListEventsAll(gctx)
			if err != nil {
				return fmt.Errorf("list events: %w", err)
			}
			snap.Events = es
			return nil
		})
	}
	if f.IncludeRoutes {
		g.Go(func() error {
			rs, err := cat.ListRoutesAll(gctx)
			if err != nil {
				return fmt.Errorf("list routes: %w", err)
			}
			snap.Routes = rs
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Snapshot{}, err
	}

	if len(f.PlaceTypes) == 0 {
		return snap, nil
	}

	cityIDs := f.CityIDs
	if len(cityIDs) == 0 {
		cityIDs = make([]domain.EntityID, 0, len(snap.Cities))
		for _, c := range snap.Cities {
			cityIDs = append(cityIDs, c.ID)
		}
	}

	perCity := make([][]domain.Place, len(cityIDs))
	pg, pctx := errgroup.WithContext(ctx)
	pg.SetLimit(placeFetchLimit)
	for i, id := range cityIDs {
		pg.Go(func() error {
			ps, err := cat.ListPlacesByCity(pctx, id)
			if err != nil {
				return fmt.Errorf("list places for city %s: %w", id, err)
			}
			perCity[i] = ps
			return nil
		})
	}
	if err := pg.Wait(); err != nil {
		return Snapshot{}, err
	}
	for _, ps := range perCity {
		snap.Places = append(snap.Places, ps...)
	}
	return snap, nil
}
