package catalog

import (
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/yatra-labs/pilgrimage-planner-api/internal/domain"
)

// Seed is the YAML shape of a catalog fixture file.
//
//	cities:
//	  - id: varanasi
//	    name: {en: Varanasi, ru: Варанаси}
//	places:
//	  - id: kashi-vishwanath
//	    cityId: varanasi
//	    type: temple
//	    rating: 4.9
type Seed struct {
	Cities []SeedCity  `yaml:"cities"`
	Places []SeedPlace `yaml:"places"`
	Routes []SeedRoute `yaml:"routes"`
	Events []SeedEvent `yaml:"events"`
}

type SeedCity struct {
	ID        string            `yaml:"id"`
	Name      map[string]string `yaml:"name"`
	Country   string            `yaml:"country"`
	Latitude  *float64          `yaml:"lat"`
	Longitude *float64          `yaml:"lng"`
}

type SeedPlace struct {
	ID        string            `yaml:"id"`
	Name      map[string]string `yaml:"name"`
	CityID    string            `yaml:"cityId"`
	Type      string            `yaml:"type"`
	Rating    float64           `yaml:"rating"`
	Latitude  *float64          `yaml:"lat"`
	Longitude *float64          `yaml:"lng"`
}

type SeedRoute struct {
	ID         string            `yaml:"id"`
	Name       map[string]string `yaml:"name"`
	CityID     string            `yaml:"cityId"`
	PlaceIDs   []string          `yaml:"placeIds"`
	DistanceKm *float64          `yaml:"distanceKm"`
}

type SeedEvent struct {
	ID              string            `yaml:"id"`
	Name            map[string]string `yaml:"name"`
	CityID          string            `yaml:"cityId"`
	EventType       string            `yaml:"eventType"`
	Culture         string            `yaml:"culture"`
	HasOnlineStream bool              `yaml:"hasOnlineStream"`
	HasTranslation  bool              `yaml:"hasTranslation"`
	Date            string            `yaml:"date"`
	Time            string            `yaml:"time"`
}

// LoadSeedFile reads a YAML seed file from disk.
func LoadSeedFile(path string) (Seed, error) {
	f, err := os.Open(path)
	if err != nil {
		return Seed{}, fmt.Errorf("open seed file: %w", err)
	}
	defer f.Close()
	return DecodeSeed(f)
}

func DecodeSeed(r io.Reader) (Seed, error) {
	var s Seed
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&s); err != nil && err != io.EOF {
		return Seed{}, fmt.Errorf("decode seed: %w", err)
	}
	return s, nil
}

// Entities validates the seed and converts it to domain entities.
func (s Seed) Entities() ([]domain.City, []domain.Place, []domain.Route, []domain.Event, error) {
	cities := make([]domain.City, 0, len(s.Cities))
	for _, c := range s.Cities {
		if strings.TrimSpace(c.ID) == "" {
			return nil, nil, nil, nil, fmt.Errorf("city without id")
		}
		cities = append(cities, domain.City{
			ID:        domain.EntityID(c.ID),
			Name:      domain.LocalizedText(c.Name),
			Country:   c.Country,
			Latitude:  c.Latitude,
			Longitude: c.Longitude,
		})
	}

	places := make([]domain.Place, 0, len(s.Places))
	for _, p := range s.Places {
		if strings.TrimSpace(p.ID) == "" || strings.TrimSpace(p.CityID) == "" {
			return nil, nil, nil, nil, fmt.Errorf("place %q: id and cityId are required", p.ID)
		}
		pt := domain.PlaceType(p.Type)
		if !pt.Valid() {
			return nil, nil, nil, nil, fmt.Errorf("place %q: unknown type %q", p.ID, p.Type)
		}
		places = append(places, domain.Place{
			ID:        domain.EntityID(p.ID),
			Name:      domain.LocalizedText(p.Name),
			CityID:    domain.EntityID(p.CityID),
			Type:      pt,
			Rating:    p.Rating,
			Latitude:  p.Latitude,
			Longitude: p.Longitude,
		})
	}

	routes := make([]domain.Route, 0, len(s.Routes))
	for _, r := range s.Routes {
		if strings.TrimSpace(r.ID) == "" || strings.TrimSpace(r.CityID) == "" {
			return nil, nil, nil, nil, fmt.Errorf("route %q: id and cityId are required", r.ID)
		}
		ids := make([]domain.EntityID, 0, len(r.PlaceIDs))
		for _, id := range r.PlaceIDs {
			ids = append(ids, domain.EntityID(id))
		}
		routes = append(routes, domain.Route{
			ID:         domain.EntityID(r.ID),
			Name:       domain.LocalizedText(r.Name),
			CityID:     domain.EntityID(r.CityID),
			PlaceIDs:   ids,
			DistanceKm: r.DistanceKm,
		})
	}

	events := make([]domain.Event, 0, len(s.Events))
	for _, e := range s.Events {
		if strings.TrimSpace(e.ID) == "" || strings.TrimSpace(e.CityID) == "" {
			return nil, nil, nil, nil, fmt.Errorf("event %q: id and cityId are required", e.ID)
		}
		ev := domain.Event{
			ID:              domain.EntityID(e.ID),
			Name:            domain.LocalizedText(e.Name),
			CityID:          domain.EntityID(e.CityID),
			EventType:       domain.EventType(e.EventType),
			Culture:         e.Culture,
			HasOnlineStream: e.HasOnlineStream,
			HasTranslation:  e.HasTranslation,
		}
		if e.Date != "" {
			d, err := domain.ParseDate(e.Date)
			if err != nil {
				return nil, nil, nil, nil, fmt.Errorf("event %q: %w", e.ID, err)
			}
			ev.Date = &d
		}
		if e.Time != "" {
			t, err := domain.NormalizeClock(e.Time)
			if err != nil {
				return nil, nil, nil, nil, fmt.Errorf("event %q: %w", e.ID, err)
			}
			ev.Time = &t
		}
		events = append(events, ev)
	}

	return cities, places, routes, events, nil
}
