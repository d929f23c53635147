package contracttest

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/yatra-labs/pilgrimage-planner-api/internal/domain"
	catalogport "github.com/yatra-labs/pilgrimage-planner-api/internal/ports/out/catalog"
	idempotencyport "github.com/yatra-labs/pilgrimage-planner-api/internal/ports/out/idempotency"
	planstoreport "github.com/yatra-labs/pilgrimage-planner-api/internal/ports/out/planstore"
)

type CleanupFunc = func()

// CatalogFixture is the content a catalog factory must serve.
type CatalogFixture struct {
	Cities []domain.City
	Places []domain.Place
	Routes []domain.Route
	Events []domain.Event
}

type CatalogFactory func(t *testing.T, fx CatalogFixture) (catalogport.Catalog, CleanupFunc)
type PlanStoreFactory func(t *testing.T) (planstoreport.Store, CleanupFunc)
type IdemStoreFactory func(t *testing.T) (idempotencyport.Store, CleanupFunc)

func RunIdempotencyStore(t *testing.T, newStore IdemStoreFactory) {
	t.Helper()
	ctx := context.Background()

	store, cleanup := newStore(t)
	if cleanup != nil {
		t.Cleanup(cleanup)
	}

	fp := idempotencyport.Fingerprint{
		Key:      idempotencyport.Key("k-" + uuid.NewString()),
		Owner:    domain.OwnerID("sub-1"),
		Method:   "POST",
		Route:    "/plans",
		BodyHash: "",
	}
	rec := idempotencyport.Record{
		StatusCode:  201,
		ContentType: "application/json",
		Body:        []byte(`{"id":"p-1"}`),
		CreatedAt:   time.Now().UTC().Truncate(time.Second),
	}
	if _, ok, err := store.Get(ctx, fp); err != nil || ok {
		t.Fatalf("Get before Put: ok=%v err=%v", ok, err)
	}
	if err := store.Put(ctx, fp, rec); err != nil {
		t.Fatalf("Put: %v", err)
	}
	got, ok, err := store.Get(ctx, fp)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !ok {
		t.Fatalf("expected ok=true")
	}
	if string(got.Body) != `{"id":"p-1"}` || got.ContentType != "application/json" || got.StatusCode != 201 {
		t.Fatalf("unexpected record: %+v", got)
	}

	// Fingerprints are owner-scoped.
	other := fp
	other.Owner = "sub-2"
	if _, ok, err := store.Get(ctx, other); err != nil || ok {
		t.Fatalf("expected miss for other owner, got ok=%v err=%v", ok, err)
	}

	// Overwrite semantics.
	rec2 := rec
	rec2.Body = []byte(`{"id":"p-2"}`)
	if err := store.Put(ctx, fp, rec2); err != nil {
		t.Fatalf("Put overwrite: %v", err)
	}
	got, ok, err = store.Get(ctx, fp)
	if err != nil || !ok || string(got.Body) != `{"id":"p-2"}` {
		t.Fatalf("expected overwritten record, got ok=%v err=%v body=%q", ok, err, string(got.Body))
	}
}

func RunPlanStore(t *testing.T, newStore PlanStoreFactory) {
	t.Helper()
	ctx := context.Background()

	store, cleanup := newStore(t)
	if cleanup != nil {
		t.Cleanup(cleanup)
	}

	owner := domain.OwnerID("owner-" + uuid.NewString())
	intruder := domain.OwnerID("intruder-" + uuid.NewString())
	t0 := time.Unix(1_700_000_000, 0).UTC()
	day := func(s string) *time.Time {
		d, err := domain.ParseDate(s)
		if err != nil {
			t.Fatalf("ParseDate: %v", err)
		}
		return &d
	}
	clock := "07:30"

	first := planstoreport.Record{
		ID:      domain.PlanID(uuid.NewString()),
		Title:   "Braj Yatra",
		GroupBy: domain.GroupByEventType,
		Items: []planstoreport.StubItem{
			{Type: domain.KindCity, Data: planstoreport.Stub{ID: "mathura", Name: "Mathura"}, CityIDForGrouping: "mathura", OrderIndex: 0},
			{Type: domain.KindPlace, Data: planstoreport.Stub{ID: "janmabhoomi", Name: "Krishna Janmabhoomi"}, CityIDForGrouping: "mathura", Date: day("2025-01-01"), Time: &clock, OrderIndex: 1, Pinned: true},
		},
		StartDate: day("2025-01-01"),
		EndDate:   day("2025-01-03"),
		CreatedAt: t0,
		UpdatedAt: t0,
	}
	id, err := store.Insert(ctx, owner, first)
	if err != nil {
		t.Fatalf("Insert: %v", err)
	}
	if id != first.ID {
		t.Fatalf("Insert id=%s, want %s", id, first.ID)
	}
	if _, err := store.Insert(ctx, owner, first); !errors.Is(err, planstoreport.ErrAlreadyExists) {
		t.Fatalf("duplicate Insert err=%v, want ErrAlreadyExists", err)
	}

	got, err := store.Get(ctx, id)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.OwnerID != owner || got.Title != "Braj Yatra" || len(got.Items) != 2 {
		t.Fatalf("unexpected record: %+v", got)
	}
	if got.GroupBy != domain.GroupByEventType {
		t.Fatalf("groupBy=%q, want %q", got.GroupBy, domain.GroupByEventType)
	}
	it := got.Items[1]
	if it.Type != domain.KindPlace || it.Data.ID != "janmabhoomi" || it.Data.Name != "Krishna Janmabhoomi" || !it.Pinned || it.OrderIndex != 1 {
		t.Fatalf("unexpected item: %+v", it)
	}
	if it.Date == nil || domain.FormatDate(*it.Date) != "2025-01-01" || it.Time == nil || *it.Time != "07:30" {
		t.Fatalf("unexpected schedule: date=%v time=%v", it.Date, it.Time)
	}
	if got.StartDate == nil || domain.FormatDate(*got.StartDate) != "2025-01-01" || got.EndDate == nil || domain.FormatDate(*got.EndDate) != "2025-01-03" {
		t.Fatalf("unexpected range: %v..%v", got.StartDate, got.EndDate)
	}
	if !got.CreatedAt.Equal(t0) {
		t.Fatalf("createdAt=%v, want %v", got.CreatedAt, t0)
	}

	if _, err := store.Get(ctx, domain.PlanID(uuid.NewString())); !errors.Is(err, planstoreport.ErrNotFound) {
		t.Fatalf("Get missing err=%v, want ErrNotFound", err)
	}

	// Mutations filter by owner.
	upd := got
	upd.Title = "Hijacked"
	if err := store.Update(ctx, id, intruder, upd); !errors.Is(err, planstoreport.ErrNotFound) {
		t.Fatalf("Update by other owner err=%v, want ErrNotFound", err)
	}
	if err := store.Delete(ctx, id, intruder); !errors.Is(err, planstoreport.ErrNotFound) {
		t.Fatalf("Delete by other owner err=%v, want ErrNotFound", err)
	}
	if err := store.Update(ctx, domain.PlanID(uuid.NewString()), owner, upd); !errors.Is(err, planstoreport.ErrNotFound) {
		t.Fatalf("Update missing err=%v, want ErrNotFound", err)
	}

	upd.Title = "Braj Yatra (revised)"
	upd.GroupBy = domain.GroupByCity
	upd.Items = upd.Items[:1]
	upd.StartDate = nil
	upd.UpdatedAt = t0.Add(time.Hour)
	if err := store.Update(ctx, id, owner, upd); err != nil {
		t.Fatalf("Update: %v", err)
	}
	got, err = store.Get(ctx, id)
	if err != nil {
		t.Fatalf("Get after update: %v", err)
	}
	if got.Title != "Braj Yatra (revised)" || got.GroupBy != domain.GroupByCity || len(got.Items) != 1 || got.StartDate != nil || got.EndDate == nil {
		t.Fatalf("unexpected updated record: %+v", got)
	}
	if !got.UpdatedAt.Equal(t0.Add(time.Hour)) || !got.CreatedAt.Equal(t0) {
		t.Fatalf("timestamps created=%v updated=%v", got.CreatedAt, got.UpdatedAt)
	}

	// List ordering: CreatedAt desc.
	second := planstoreport.Record{
		ID:        domain.PlanID(uuid.NewString()),
		Title:     "Kashi",
		CreatedAt: t0.Add(time.Minute),
		UpdatedAt: t0.Add(time.Minute),
	}
	if _, err := store.Insert(ctx, owner, second); err != nil {
		t.Fatalf("Insert second: %v", err)
	}
	list, err := store.List(ctx, owner)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(list) != 2 || list[0].ID != second.ID || list[1].ID != id {
		t.Fatalf("unexpected list: %+v", list)
	}
	if list[1].ItemCount != 1 || list[0].ItemCount != 0 {
		t.Fatalf("unexpected item counts: %+v", list)
	}
	if others, err := store.List(ctx, intruder); err != nil || len(others) != 0 {
		t.Fatalf("List other owner=%v err=%v", others, err)
	}

	if err := store.Delete(ctx, id, owner); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := store.Get(ctx, id); !errors.Is(err, planstoreport.ErrNotFound) {
		t.Fatalf("Get after delete err=%v, want ErrNotFound", err)
	}
	if err := store.Delete(ctx, id, owner); !errors.Is(err, planstoreport.ErrNotFound) {
		t.Fatalf("second Delete err=%v, want ErrNotFound", err)
	}
}

// DefaultCatalogFixture is a small catalog used by RunCatalog.
func DefaultCatalogFixture() CatalogFixture {
	holi := time.Date(2025, time.March, 14, 0, 0, 0, 0, time.UTC)
	at := "18:00"
	km := 10.5
	return CatalogFixture{
		Cities: []domain.City{
			{ID: "vrindavan", Name: domain.LocalizedText{"en": "Vrindavan", "ru": "Вриндаван"}, Country: "IN"},
			{ID: "mathura", Name: domain.LocalizedText{"en": "Mathura"}, Country: "IN"},
		},
		Places: []domain.Place{
			{ID: "vishram-ghat", Name: domain.LocalizedText{"en": "Vishram Ghat"}, CityID: "mathura", Type: domain.PlaceTypeSacredSite, Rating: 4.0},
			{ID: "janmabhoomi", Name: domain.LocalizedText{"en": "Krishna Janmabhoomi"}, CityID: "mathura", Type: domain.PlaceTypeTemple, Rating: 4.8},
			{ID: "banke-bihari", Name: domain.LocalizedText{"en": "Banke Bihari"}, CityID: "vrindavan", Type: domain.PlaceTypeTemple, Rating: 4.7},
		},
		Routes: []domain.Route{
			{ID: "parikrama", Name: domain.LocalizedText{"en": "Vrindavan Parikrama"}, CityID: "vrindavan", PlaceIDs: []domain.EntityID{"banke-bihari"}, DistanceKm: &km},
		},
		Events: []domain.Event{
			{ID: "holi", Name: domain.LocalizedText{"en": "Holi"}, CityID: "mathura", EventType: domain.EventTypeFestival, HasOnlineStream: true, Date: &holi, Time: &at},
		},
	}
}

func RunCatalog(t *testing.T, newCatalog CatalogFactory) {
	t.Helper()
	ctx := context.Background()

	cat, cleanup := newCatalog(t, DefaultCatalogFixture())
	if cleanup != nil {
		t.Cleanup(cleanup)
	}

	cities, err := cat.ListCities(ctx)
	if err != nil {
		t.Fatalf("ListCities: %v", err)
	}
	if len(cities) != 2 || cities[0].ID != "mathura" || cities[1].ID != "vrindavan" {
		t.Fatalf("cities not ordered by name: %+v", cities)
	}
	if cities[1].Name["ru"] != "Вриндаван" {
		t.Fatalf("localized name lost: %+v", cities[1].Name)
	}

	places, err := cat.ListPlacesByCity(ctx, "mathura")
	if err != nil {
		t.Fatalf("ListPlacesByCity: %v", err)
	}
	if len(places) != 2 || places[0].ID != "janmabhoomi" || places[1].ID != "vishram-ghat" {
		t.Fatalf("places not ordered by rating: %+v", places)
	}
	if places[0].Type != domain.PlaceTypeTemple || places[0].Rating != 4.8 {
		t.Fatalf("unexpected place: %+v", places[0])
	}
	none, err := cat.ListPlacesByCity(ctx, "kolkata")
	if err != nil || len(none) != 0 {
		t.Fatalf("ListPlacesByCity unknown city=%v err=%v", none, err)
	}

	events, err := cat.ListEventsAll(ctx)
	if err != nil {
		t.Fatalf("ListEventsAll: %v", err)
	}
	if len(events) != 1 || events[0].Date == nil || domain.FormatDate(*events[0].Date) != "2025-03-14" || events[0].Time == nil || *events[0].Time != "18:00" || !events[0].HasOnlineStream {
		t.Fatalf("unexpected events: %+v", events)
	}

	routes, err := cat.ListRoutesAll(ctx)
	if err != nil {
		t.Fatalf("ListRoutesAll: %v", err)
	}
	if len(routes) != 1 || len(routes[0].PlaceIDs) != 1 || routes[0].DistanceKm == nil || *routes[0].DistanceKm != 10.5 {
		t.Fatalf("unexpected routes: %+v", routes)
	}

	got, err := cat.GetEntitiesByIDs(ctx, domain.KindPlace, []domain.EntityID{"banke-bihari", "missing", "janmabhoomi"})
	if err != nil {
		t.Fatalf("GetEntitiesByIDs: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("GetEntitiesByIDs returned %d entities, want 2", len(got))
	}
	for _, e := range got {
		if e.Kind() != domain.KindPlace {
			t.Fatalf("unexpected kind %s", e.Kind())
		}
	}
	// IDs are scoped by kind.
	if got, err := cat.GetEntitiesByIDs(ctx, domain.KindCity, []domain.EntityID{"janmabhoomi"}); err != nil || len(got) != 0 {
		t.Fatalf("cross-kind lookup=%v err=%v", got, err)
	}

	found, err := cat.Search(ctx, "вринда", 10)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(found) != 1 || found[0].EntityID() != "vrindavan" {
		t.Fatalf("unexpected search result: %+v", found)
	}
	found, err = cat.Search(ctx, "a", 2)
	if err != nil || len(found) != 2 {
		t.Fatalf("Search limit: n=%d err=%v", len(found), err)
	}
}
