package planner_test

import (
	"testing"
	"time"

	memcatalog "github.com/yatra-labs/pilgrimage-planner-api/internal/adapters/memory/catalog"
	"github.com/yatra-labs/pilgrimage-planner-api/internal/app/planner"
	"github.com/yatra-labs/pilgrimage-planner-api/internal/domain"
)

func name(en string) domain.LocalizedText { return domain.LocalizedText{"en": en} }

func day(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := domain.ParseDate(s)
	if err != nil {
		t.Fatalf("ParseDate(%q): %v", s, err)
	}
	return d
}

func fixtureCities() []domain.City {
	return []domain.City{
		{ID: "varanasi", Name: name("Varanasi"), Country: "IN"},
		{ID: "mathura", Name: name("Mathura"), Country: "IN"},
		{ID: "vrindavan", Name: name("Vrindavan"), Country: "IN"},
	}
}

func fixturePlaces() []domain.Place {
	return []domain.Place{
		{ID: "kashi-vishwanath", Name: name("Kashi Vishwanath"), CityID: "varanasi", Type: domain.PlaceTypeTemple, Rating: 4.9},
		{ID: "manikarnika", Name: name("Manikarnika Ghat"), CityID: "varanasi", Type: domain.PlaceTypeSacredSite, Rating: 4.5},
		{ID: "durga-mandir", Name: name("Durga Mandir"), CityID: "varanasi", Type: domain.PlaceTypeTemple, Rating: 4.2},
		{ID: "janmabhoomi", Name: name("Krishna Janmabhoomi"), CityID: "mathura", Type: domain.PlaceTypeTemple, Rating: 4.8},
		{ID: "vishram-ghat", Name: name("Vishram Ghat"), CityID: "mathura", Type: domain.PlaceTypeSacredSite, Rating: 4.0},
		{ID: "banke-bihari", Name: name("Banke Bihari"), CityID: "vrindavan", Type: domain.PlaceTypeTemple, Rating: 4.7},
	}
}

func fixtureRoutes() []domain.Route {
	return []domain.Route{
		{ID: "parikrama", Name: name("Vrindavan Parikrama"), CityID: "vrindavan", PlaceIDs: []domain.EntityID{"banke-bihari"}},
	}
}

func fixtureEvents() []domain.Event {
	holi := time.Date(2025, time.March, 14, 0, 0, 0, 0, time.UTC)
	janm := time.Date(2025, time.August, 16, 0, 0, 0, 0, time.UTC)
	return []domain.Event{
		{ID: "holi", Name: name("Holi"), CityID: "mathura", EventType: domain.EventTypeFestival, HasOnlineStream: true, Date: &holi},
		{ID: "janmashtami", Name: name("Janmashtami"), CityID: "vrindavan", EventType: domain.EventTypeFestival, HasTranslation: true, Date: &janm},
		{ID: "ganga-kirtan", Name: name("Ganga Kirtan"), CityID: "varanasi", EventType: domain.EventTypeKirtan, HasTranslation: true},
	}
}

func newFixtureCatalog() *memcatalog.Catalog {
	c := memcatalog.New()
	c.Replace(fixtureCities(), fixturePlaces(), fixtureRoutes(), fixtureEvents())
	return c
}

func fixtureSnapshot() planner.Snapshot {
	return planner.Snapshot{
		Cities: fixtureCities(),
		Places: fixturePlaces(),
		Routes: fixtureRoutes(),
		Events: fixtureEvents(),
	}
}

func cityItem(id domain.EntityID, idx int) domain.PlannedItem {
	it := domain.NewPlannedItem(&domain.City{ID: id, Name: name(string(id))})
	it.OrderIndex = &idx
	return it
}

func placeItem(id, city domain.EntityID, idx int) domain.PlannedItem {
	it := domain.NewPlannedItem(&domain.Place{ID: id, Name: name(string(id)), CityID: city, Type: domain.PlaceTypeTemple})
	it.OrderIndex = &idx
	return it
}

func eventItem(id, city domain.EntityID, et domain.EventType, idx int) domain.PlannedItem {
	it := domain.NewPlannedItem(&domain.Event{ID: id, Name: name(string(id)), CityID: city, EventType: et})
	it.OrderIndex = &idx
	return it
}

func refs(items []domain.PlannedItem) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.Ref().String()
	}
	return out
}

func indexes(items []domain.PlannedItem) []int {
	out := make([]int, len(items))
	for i, it := range items {
		out[i] = it.Index()
	}
	return out
}

func dates(items []domain.PlannedItem) []string {
	out := make([]string, len(items))
	for i, it := range items {
		if it.Date != nil {
			out[i] = domain.FormatDate(*it.Date)
		}
	}
	return out
}

func seq(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = i
	}
	return out
}
