package planner

import (
	"github.com/yatra-labs/pilgrimage-planner-api/internal/domain"
)

// Filters is the candidate-selection state.
//
// An empty CityIDs set means "no city restriction". An empty subtype set means
// "none of this type": places are only candidates when PlaceTypes is non-empty,
// events only when EventTypes is non-empty, routes only when IncludeRoutes is set.
// Nil boolean flags do not filter.
type Filters struct {
	CityIDs       []domain.EntityID
	PlaceTypes    []domain.PlaceType
	EventTypes    []domain.EventType
	IncludeRoutes bool

	// Range restricts dated events to the inclusive range. Undated events always pass.
	Range *DateRange

	HasOnlineStream *bool
	HasTranslation  *bool
}

// HasContentFilters reports whether any content type is selected.
func (f Filters) HasContentFilters() bool {
	return len(f.PlaceTypes) > 0 || len(f.EventTypes) > 0 || f.IncludeRoutes
}

// Snapshot is the catalog data candidate selection runs over.
type Snapshot struct {
	Cities []domain.City
	Places []domain.Place
	Routes []domain.Route
	Events []domain.Event
}

// SelectCandidates derives the candidate set for f.
//
// Output order: cities first (catalog order), then for each city its places,
// routes and events, each in catalog order. Content whose city is not in the
// snapshot follows, grouped by city key in first-appearance order.
//
// With a non-empty city filter the selected cities are always emitted, so a
// filter matching no content still yields the bare city shells.
func SelectCandidates(snap Snapshot, f Filters) []domain.Entity {
	cityFilter := toSet(f.CityIDs)
	cityAllowed := func(id domain.EntityID) bool {
		if len(cityFilter) == 0 {
			return true
		}
		_, ok := cityFilter[id]
		return ok
	}

	if len(cityFilter) > 0 && !f.HasContentFilters() {
		return cityShells(snap.Cities, cityFilter)
	}

	placeTypes := toSet(f.PlaceTypes)
	eventTypes := toSet(f.EventTypes)

	var places []domain.Place
	if len(placeTypes) > 0 {
		for _, p := range snap.Places {
			if _, ok := placeTypes[p.Type]; ok && cityAllowed(p.CityID) {
				places = append(places, p)
			}
		}
	}

	var routes []domain.Route
	if f.IncludeRoutes {
		for _, r := range snap.Routes {
			if cityAllowed(r.CityID) {
				routes = append(routes, r)
			}
		}
	}

	var events []domain.Event
	if len(eventTypes) > 0 {
		for _, e := range snap.Events {
			if _, ok := eventTypes[e.EventType]; !ok || !cityAllowed(e.CityID) {
				continue
			}
			if !eventMatchesFlags(e, f) || !eventInRange(e, f.Range) {
				continue
			}
			events = append(events, e)
		}
	}

	// Cities to emit: every selected city, or, without a city filter, the parents of matched content.
	emit := make(map[domain.EntityID]struct{})
	if len(cityFilter) > 0 {
		emit = cityFilter
	} else {
		for _, p := range places {
			emit[p.CityID] = struct{}{}
		}
		for _, r := range routes {
			emit[r.CityID] = struct{}{}
		}
		for _, e := range events {
			emit[e.CityID] = struct{}{}
		}
	}

	out := make([]domain.Entity, 0, len(emit)+len(places)+len(routes)+len(events))
	var keys []domain.EntityID
	known := make(map[domain.EntityID]struct{}, len(snap.Cities))
	for _, c := range snap.Cities {
		known[c.ID] = struct{}{}
		if _, ok := emit[c.ID]; !ok {
			continue
		}
		out = append(out, domain.CloneEntity(&c))
		keys = append(keys, c.ID)
	}

	// Content of cities missing from the snapshot is kept, keyed in first-appearance order.
	appendKey := func(id domain.EntityID) {
		if _, ok := known[id]; ok {
			return
		}
		known[id] = struct{}{}
		keys = append(keys, id)
	}
	for _, p := range places {
		appendKey(p.CityID)
	}
	for _, r := range routes {
		appendKey(r.CityID)
	}
	for _, e := range events {
		appendKey(e.CityID)
	}

	for _, key := range keys {
		for i := range places {
			if places[i].CityID == key {
				out = append(out, domain.CloneEntity(&places[i]))
			}
		}
		for i := range routes {
			if routes[i].CityID == key {
				out = append(out, domain.CloneEntity(&routes[i]))
			}
		}
		for i := range events {
			if events[i].CityID == key {
				out = append(out, domain.CloneEntity(&events[i]))
			}
		}
	}
	return out
}

func cityShells(cities []domain.City, selected map[domain.EntityID]struct{}) []domain.Entity {
	out := make([]domain.Entity, 0, len(selected))
	for i := range cities {
		if _, ok := selected[cities[i].ID]; ok {
			out = append(out, domain.CloneEntity(&cities[i]))
		}
	}
	return out
}

func eventMatchesFlags(e domain.Event, f Filters) bool {
	if f.HasOnlineStream != nil && e.HasOnlineStream != *f.HasOnlineStream {
		return false
	}
	if f.HasTranslation != nil && e.HasTranslation != *f.HasTranslation {
		return false
	}
	return true
}

func eventInRange(e domain.Event, r *DateRange) bool {
	if r == nil || !r.Valid() || e.Date == nil {
		return true
	}
	return r.Contains(*e.Date)
}

func toSet[T comparable](vs []T) map[T]struct{} {
	out := make(map[T]struct{}, len(vs))
	for _, v := range vs {
		out[v] = struct{}{}
	}
	return out
}
