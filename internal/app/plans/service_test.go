package plans_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	memcatalog "github.com/yatra-labs/pilgrimage-planner-api/internal/adapters/memory/catalog"
	memclock "github.com/yatra-labs/pilgrimage-planner-api/internal/adapters/memory/clock"
	memplanstore "github.com/yatra-labs/pilgrimage-planner-api/internal/adapters/memory/planstore"
	"github.com/yatra-labs/pilgrimage-planner-api/internal/app/plans"
	"github.com/yatra-labs/pilgrimage-planner-api/internal/domain"
	"github.com/yatra-labs/pilgrimage-planner-api/internal/ports/out/planstore"
)

type brokenCatalog struct {
	*memcatalog.Catalog
}

func (brokenCatalog) GetEntitiesByIDs(context.Context, domain.EntityKind, []domain.EntityID) ([]domain.Entity, error) {
	return nil, errors.New("catalog timeout")
}

func en(s string) domain.LocalizedText { return domain.LocalizedText{"en": s, "ru": s + " (ru)"} }

func newCatalog() *memcatalog.Catalog {
	c := memcatalog.New()
	c.Replace(
		[]domain.City{
			{ID: "varanasi", Name: en("Varanasi")},
			{ID: "mathura", Name: en("Mathura")},
		},
		[]domain.Place{
			{ID: "kashi-vishwanath", Name: en("Kashi Vishwanath"), CityID: "varanasi", Type: domain.PlaceTypeTemple, Rating: 4.9},
			{ID: "janmabhoomi", Name: en("Krishna Janmabhoomi"), CityID: "mathura", Type: domain.PlaceTypeTemple, Rating: 4.8},
		},
		nil,
		[]domain.Event{
			{ID: "holi", Name: en("Holi"), CityID: "mathura", EventType: domain.EventTypeFestival},
		},
	)
	return c
}

func dateP(t *testing.T, s string) *time.Time {
	t.Helper()
	d, err := domain.ParseDate(s)
	require.NoError(t, err)
	return &d
}

func item(e domain.Entity, idx int, date *time.Time) domain.PlannedItem {
	it := domain.NewPlannedItem(e)
	it.OrderIndex = &idx
	it.Date = date
	return it
}

func samplePlan(t *testing.T) plans.SavePlanInput {
	t.Helper()
	return plans.SavePlanInput{
		Title: "  Braj   Yatra ",
		Items: []domain.PlannedItem{
			item(&domain.City{ID: "mathura", Name: en("Mathura")}, 0, nil),
			item(&domain.Place{ID: "janmabhoomi", Name: en("Krishna Janmabhoomi"), CityID: "mathura"}, 1, dateP(t, "2025-01-01")),
			item(&domain.Event{ID: "holi", Name: en("Holi"), CityID: "mathura", EventType: domain.EventTypeFestival}, 2, dateP(t, "2025-01-02")),
			item(&domain.City{ID: "varanasi", Name: en("Varanasi")}, 3, nil),
			item(&domain.Place{ID: "kashi-vishwanath", Name: en("Kashi Vishwanath"), CityID: "varanasi"}, 4, dateP(t, "2025-01-03")),
		},
		StartDate: dateP(t, "2025-01-01"),
		EndDate:   dateP(t, "2025-01-03"),
	}
}

func newService(t *testing.T, cat *memcatalog.Catalog) (*plans.Service, *memplanstore.Store, *memclock.ManualClock) {
	t.Helper()
	store := memplanstore.NewStore()
	clk := memclock.NewManualClock(time.Unix(100, 0).UTC())
	svc := plans.NewService(store, cat, clk, zap.NewNop(), "ru")
	svc.SetNewPlanIDForTest(func() domain.PlanID { return "p1" })
	return svc, store, clk
}

func itemRefs(items []domain.PlannedItem) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.Ref().String()
	}
	return out
}

func itemDates(items []domain.PlannedItem) []string {
	out := make([]string, len(items))
	for i, it := range items {
		if it.Date != nil {
			out[i] = domain.FormatDate(*it.Date)
		}
	}
	return out
}

func TestService_CreateAndGet_RoundTrip(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	svc, store, _ := newService(t, newCatalog())
	created, err := svc.CreatePlan(ctx, "owner-a", samplePlan(t))
	require.NoError(t, err)
	assert.Equal(t, domain.PlanID("p1"), created.ID)
	assert.Equal(t, "Braj Yatra", created.Title)

	rec, err := store.Get(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, domain.OwnerID("owner-a"), rec.OwnerID)
	require.Len(t, rec.Items, 5)
	assert.Equal(t, "Krishna Janmabhoomi (ru)", rec.Items[1].Data.Name, "stubs cache the display name")

	got, err := svc.GetPlan(ctx, "owner-a", "p1")
	require.NoError(t, err)
	assert.Equal(t, itemRefs(created.Items), itemRefs(got.Items))
	assert.Equal(t, itemDates(created.Items), itemDates(got.Items))
	assert.Equal(t, "2025-01-01", domain.FormatDate(*got.StartDate))
	assert.Equal(t, "2025-01-03", domain.FormatDate(*got.EndDate))
}

func TestService_GetPlan_DropsEntitiesMissingFromCatalog(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	cat := newCatalog()
	svc, _, _ := newService(t, cat)
	_, err := svc.CreatePlan(ctx, "owner-a", samplePlan(t))
	require.NoError(t, err)

	// holi is removed upstream.
	cities, _ := cat.ListCities(ctx)
	var places []domain.Place
	for _, c := range cities {
		ps, _ := cat.ListPlacesByCity(ctx, c.ID)
		places = append(places, ps...)
	}
	cat.Replace(cities, places, nil, nil)

	got, err := svc.GetPlan(ctx, "owner-a", "p1")
	require.NoError(t, err)
	assert.Equal(t, []string{
		"city:mathura", "place:janmabhoomi",
		"city:varanasi", "place:kashi-vishwanath",
	}, itemRefs(got.Items))
	assert.Equal(t, []string{"", "2025-01-01", "", "2025-01-03"}, itemDates(got.Items))
	for i, it := range got.Items {
		assert.Equal(t, i, it.Index())
	}
}

func TestService_GetPlan_CatalogFailureYieldsEmptyPlan(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	store := memplanstore.NewStore()
	clk := memclock.NewManualClock(time.Unix(100, 0).UTC())
	writer := plans.NewService(store, newCatalog(), clk, zap.NewNop(), "en")
	writer.SetNewPlanIDForTest(func() domain.PlanID { return "p1" })
	_, err := writer.CreatePlan(ctx, "owner-a", samplePlan(t))
	require.NoError(t, err)

	reader := plans.NewService(store, brokenCatalog{newCatalog()}, clk, zap.NewNop(), "en")
	got, err := reader.GetPlan(ctx, "owner-a", "p1")
	require.Error(t, err)
	assert.ErrorIs(t, err, plans.ErrPlanNotFullyLoaded)

	var appErr *plans.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, 502, appErr.Status)
	assert.Empty(t, got.Items)
	assert.Empty(t, got.ID)
}

func TestService_OwnerScoping(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	svc, store, _ := newService(t, newCatalog())
	_, err := svc.CreatePlan(ctx, "owner-a", samplePlan(t))
	require.NoError(t, err)

	assertNotFound := func(err error) {
		t.Helper()
		var appErr *plans.Error
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, 404, appErr.Status)
		assert.Equal(t, "PLAN_NOT_FOUND", appErr.Code)
	}

	_, err = svc.GetPlan(ctx, "owner-b", "p1")
	assertNotFound(err)
	_, err = svc.ReplacePlan(ctx, "owner-b", "p1", samplePlan(t))
	assertNotFound(err)
	_, err = svc.UpdatePlanMeta(ctx, "owner-b", "p1", plans.UpdatePlanMetaInput{Title: plans.Some("Stolen")})
	assertNotFound(err)
	assertNotFound(svc.DeletePlan(ctx, "owner-b", "p1"))

	// The store itself filters mutations by owner too.
	assert.ErrorIs(t, store.Update(ctx, "p1", "owner-b", planstore.Record{Title: "x"}), planstore.ErrNotFound)

	list, err := svc.ListPlans(ctx, "owner-b")
	require.NoError(t, err)
	assert.Empty(t, list)

	rec, err := store.Get(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, "Braj Yatra", rec.Title)
}

func TestService_ReplacePlan_KeepsCreatedAt(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	svc, _, clk := newService(t, newCatalog())
	created, err := svc.CreatePlan(ctx, "owner-a", samplePlan(t))
	require.NoError(t, err)

	clk.Advance(time.Hour)
	in := samplePlan(t)
	in.Title = "Varanasi only"
	in.Items = in.Items[3:]
	replaced, err := svc.ReplacePlan(ctx, "owner-a", "p1", in)
	require.NoError(t, err)
	assert.Equal(t, created.CreatedAt, replaced.CreatedAt)
	assert.Equal(t, created.CreatedAt.Add(time.Hour), replaced.UpdatedAt)

	got, err := svc.GetPlan(ctx, "owner-a", "p1")
	require.NoError(t, err)
	assert.Equal(t, "Varanasi only", got.Title)
	assert.Equal(t, []string{"city:varanasi", "place:kashi-vishwanath"}, itemRefs(got.Items))
}

func TestService_UpdatePlanMeta_TriState(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	svc, _, _ := newService(t, newCatalog())
	_, err := svc.CreatePlan(ctx, "owner-a", samplePlan(t))
	require.NoError(t, err)

	sum, err := svc.UpdatePlanMeta(ctx, "owner-a", "p1", plans.UpdatePlanMetaInput{
		StartDate: plans.Null[time.Time](),
	})
	require.NoError(t, err)
	assert.Equal(t, "Braj Yatra", sum.Title)
	assert.Nil(t, sum.StartDate)
	require.NotNil(t, sum.EndDate)
	assert.Equal(t, 5, sum.ItemCount)

	_, err = svc.UpdatePlanMeta(ctx, "owner-a", "p1", plans.UpdatePlanMetaInput{
		StartDate: plans.Some(*dateP(t, "2025-02-01")),
	})
	var appErr *plans.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, 422, appErr.Status)

	_, err = svc.UpdatePlanMeta(ctx, "owner-a", "p1", plans.UpdatePlanMetaInput{Title: plans.Null[string]()})
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "VALIDATION_ERROR", appErr.Code)
}

func TestService_CreatePlan_Validation(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	svc, _, _ := newService(t, newCatalog())

	in := samplePlan(t)
	in.Title = "   "
	_, err := svc.CreatePlan(ctx, "owner-a", in)
	var appErr *plans.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, 422, appErr.Status)

	in = samplePlan(t)
	in.StartDate, in.EndDate = in.EndDate, in.StartDate
	_, err = svc.CreatePlan(ctx, "owner-a", in)
	require.ErrorAs(t, err, &appErr)

	in = samplePlan(t)
	in.Items = append(in.Items, in.Items[1])
	_, err = svc.CreatePlan(ctx, "owner-a", in)
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "duplicate item", appErr.Message)

	in = samplePlan(t)
	in.GroupBy = "country"
	_, err = svc.CreatePlan(ctx, "owner-a", in)
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "invalid groupBy", appErr.Message)
}

func TestService_EventTypePlanKeepsItsOrder(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	mathura := &domain.City{ID: "mathura", Name: en("Mathura")}
	varanasi := &domain.City{ID: "varanasi", Name: en("Varanasi")}
	kirtan := &domain.Event{ID: "ganga-kirtan", Name: en("Ganga Kirtan"), CityID: "varanasi", EventType: domain.EventTypeKirtan}
	holi := &domain.Event{ID: "holi", Name: en("Holi"), CityID: "mathura", EventType: domain.EventTypeFestival}
	janm := &domain.Event{ID: "janmashtami", Name: en("Janmashtami"), CityID: "mathura", EventType: domain.EventTypeFestival}

	cat := memcatalog.New()
	cat.Replace([]domain.City{*mathura, *varanasi}, nil, nil, []domain.Event{*kirtan, *holi, *janm})
	svc, store, _ := newService(t, cat)

	// The kirtan group was dragged ahead of the festival group.
	in := plans.SavePlanInput{
		Title:   "Festivals",
		GroupBy: domain.GroupByEventType,
		Items: []domain.PlannedItem{
			item(kirtan, 0, dateP(t, "2025-01-01")),
			item(holi, 1, dateP(t, "2025-01-02")),
			item(janm, 2, dateP(t, "2025-01-03")),
			item(mathura, 3, nil),
			item(varanasi, 4, nil),
		},
	}
	want := []string{"event:ganga-kirtan", "event:holi", "event:janmashtami", "city:mathura", "city:varanasi"}

	created, err := svc.CreatePlan(ctx, "owner-a", in)
	require.NoError(t, err)
	assert.Equal(t, domain.GroupByEventType, created.GroupBy)
	assert.Equal(t, want, itemRefs(created.Items))

	rec, err := store.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.GroupByEventType, rec.GroupBy)

	got, err := svc.GetPlan(ctx, "owner-a", created.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.GroupByEventType, got.GroupBy)
	assert.Equal(t, want, itemRefs(got.Items))
	assert.Equal(t, []string{"2025-01-01", "2025-01-02", "2025-01-03", "", ""}, itemDates(got.Items))

	// A plan saved without a view is ordered by city.
	in.GroupBy = ""
	replaced, err := svc.ReplacePlan(ctx, "owner-a", created.ID, in)
	require.NoError(t, err)
	assert.Equal(t, domain.GroupByCity, replaced.GroupBy)
	assert.Equal(t, []string{"city:mathura", "event:holi", "event:janmashtami", "city:varanasi", "event:ganga-kirtan"}, itemRefs(replaced.Items))
}

func TestService_ListAndDelete(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	svc, _, clk := newService(t, newCatalog())
	ids := []domain.PlanID{"p1", "p2"}
	n := 0
	svc.SetNewPlanIDForTest(func() domain.PlanID {
		id := ids[n]
		n++
		return id
	})

	_, err := svc.CreatePlan(ctx, "owner-a", samplePlan(t))
	require.NoError(t, err)
	clk.Advance(time.Minute)
	_, err = svc.CreatePlan(ctx, "owner-a", samplePlan(t))
	require.NoError(t, err)

	list, err := svc.ListPlans(ctx, "owner-a")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, domain.PlanID("p2"), list[0].ID, "newest first")

	require.NoError(t, svc.DeletePlan(ctx, "owner-a", "p2"))
	list, err = svc.ListPlans(ctx, "owner-a")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, domain.PlanID("p1"), list[0].ID)
}
