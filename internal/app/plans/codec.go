package plans

import (
	"context"
	"fmt"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/yatra-labs/pilgrimage-planner-api/internal/app/planner"
	"github.com/yatra-labs/pilgrimage-planner-api/internal/domain"
	"github.com/yatra-labs/pilgrimage-planner-api/internal/ports/out/catalog"
	"github.com/yatra-labs/pilgrimage-planner-api/internal/ports/out/planstore"
)

// Serialize converts a plan into its stored form. Entities are reduced to stubs
// carrying the id and the display name in lang; items are stored in the
// canonical order of the plan's view with contiguous OrderIndex values.
func Serialize(p domain.Plan, lang string) planstore.Record {
	by := p.GroupBy.OrDefault()
	items := planner.Canonicalize(p.Items, by)
	stubs := make([]planstore.StubItem, 0, len(items))
	for _, it := range items {
		if it.Data == nil {
			continue
		}
		stubs = append(stubs, planstore.StubItem{
			Type:              it.Type,
			Data:              planstore.Stub{ID: it.ID(), Name: it.Name(lang)},
			CityIDForGrouping: it.CityIDForGrouping,
			Date:              domain.DateOnlyPtr(it.Date),
			Time:              domain.CloneStringPtr(it.Time),
			OrderIndex:        it.Index(),
			Pinned:            it.Pinned,
		})
	}
	return planstore.Record{
		ID:        p.ID,
		OwnerID:   p.OwnerID,
		Title:     p.Title,
		GroupBy:   by,
		Items:     stubs,
		StartDate: domain.DateOnlyPtr(p.StartDate),
		EndDate:   domain.DateOnlyPtr(p.EndDate),
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
}

// Deserialize rebuilds a plan from its stored form, resolving stubs through cat
// with one batched lookup per entity kind.
//
// Stubs whose entity no longer exists are dropped and reported in dropped; the
// rest of the plan is unaffected. If any lookup fails, Deserialize returns an
// empty plan and an error wrapping ErrPlanNotFullyLoaded.
func Deserialize(ctx context.Context, rec planstore.Record, cat catalog.Catalog) (p domain.Plan, dropped []domain.ItemRef, err error) {
	items, dropped, err := resolveStubs(ctx, rec.Items, cat)
	if err != nil {
		return domain.Plan{}, nil, fmt.Errorf("%w: %w", ErrPlanNotFullyLoaded, err)
	}
	by := rec.GroupBy.OrDefault()
	return domain.Plan{
		ID:        rec.ID,
		OwnerID:   rec.OwnerID,
		Title:     rec.Title,
		GroupBy:   by,
		Items:     planner.Canonicalize(items, by),
		StartDate: domain.DateOnlyPtr(rec.StartDate),
		EndDate:   domain.DateOnlyPtr(rec.EndDate),
		CreatedAt: rec.CreatedAt,
		UpdatedAt: rec.UpdatedAt,
	}, dropped, nil
}

// ResolveItems turns client references into planned items carrying fresh
// catalog copies. Items without an OrderIndex take their position in in.
// Unknown entities are reported in dropped; lookup failures are returned as is.
// The result is in OrderIndex order, not canonicalized.
func ResolveItems(ctx context.Context, cat catalog.Catalog, in []ItemInput) (items []domain.PlannedItem, dropped []domain.ItemRef, err error) {
	stubs := make([]planstore.StubItem, 0, len(in))
	for i, it := range in {
		if !it.Type.Valid() {
			return nil, nil, validation("invalid item", map[string]any{"index": i, "type": string(it.Type)})
		}
		st := planstore.StubItem{
			Type:              it.Type,
			Data:              planstore.Stub{ID: it.ID},
			CityIDForGrouping: it.CityIDForGrouping,
			Date:              domain.DateOnlyPtr(it.Date),
			OrderIndex:        i,
			Pinned:            it.Pinned,
		}
		if it.OrderIndex != nil {
			st.OrderIndex = *it.OrderIndex
		}
		if it.Time != nil {
			clock, err := domain.NormalizeClock(*it.Time)
			if err != nil {
				return nil, nil, validation("invalid time", map[string]any{"index": i, "time": *it.Time})
			}
			st.Time = &clock
		}
		stubs = append(stubs, st)
	}
	items, dropped, err = resolveStubs(ctx, stubs, cat)
	if err != nil {
		return nil, nil, err
	}
	sort.SliceStable(items, func(i, j int) bool { return items[i].Index() < items[j].Index() })
	return items, dropped, nil
}

func resolveStubs(ctx context.Context, stubs []planstore.StubItem, cat catalog.Catalog) (items []domain.PlannedItem, dropped []domain.ItemRef, err error) {
	ids := make(map[domain.EntityKind][]domain.EntityID)
	seen := make(map[domain.ItemRef]struct{})
	for _, st := range stubs {
		ref := domain.ItemRef{Kind: st.Type, ID: st.Data.ID}
		if _, ok := seen[ref]; ok || !st.Type.Valid() {
			continue
		}
		seen[ref] = struct{}{}
		ids[st.Type] = append(ids[st.Type], st.Data.ID)
	}

	found := make([]map[domain.EntityID]domain.Entity, len(domain.AllKinds))
	g, gctx := errgroup.WithContext(ctx)
	for i, kind := range domain.AllKinds {
		want := ids[kind]
		if len(want) == 0 {
			continue
		}
		g.Go(func() error {
			es, err := cat.GetEntitiesByIDs(gctx, kind, want)
			if err != nil {
				return fmt.Errorf("get %s entities: %w", kind, err)
			}
			m := make(map[domain.EntityID]domain.Entity, len(es))
			for _, e := range es {
				m[e.EntityID()] = e
			}
			found[i] = m
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	byKind := make(map[domain.EntityKind]map[domain.EntityID]domain.Entity, len(domain.AllKinds))
	for i, kind := range domain.AllKinds {
		byKind[kind] = found[i]
	}

	items = make([]domain.PlannedItem, 0, len(stubs))
	placed := make(map[domain.ItemRef]struct{}, len(stubs))
	for _, st := range stubs {
		ref := domain.ItemRef{Kind: st.Type, ID: st.Data.ID}
		e, ok := byKind[st.Type][st.Data.ID]
		if !ok {
			dropped = append(dropped, ref)
			continue
		}
		if _, dup := placed[ref]; dup {
			continue
		}
		placed[ref] = struct{}{}

		it := domain.NewPlannedItem(e)
		if st.Type != domain.KindCity && st.CityIDForGrouping != "" {
			it.CityIDForGrouping = st.CityIDForGrouping
		}
		it.Date = domain.DateOnlyPtr(st.Date)
		it.Time = domain.CloneStringPtr(st.Time)
		idx := st.OrderIndex
		it.OrderIndex = &idx
		it.Pinned = st.Pinned
		items = append(items, it)
	}
	return items, dropped, nil
}
