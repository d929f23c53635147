package domain

import "time"

// EntityKind is the discriminant of the catalog entity sum type.
type EntityKind string

const (
	KindCity  EntityKind = "city"
	KindPlace EntityKind = "place"
	KindRoute EntityKind = "route"
	KindEvent EntityKind = "event"
)

// Valid reports whether k is one of the known entity kinds.
func (k EntityKind) Valid() bool {
	switch k {
	case KindCity, KindPlace, KindRoute, KindEvent:
		return true
	default:
		return false
	}
}

// AllKinds lists every entity kind in canonical display order.
var AllKinds = []EntityKind{KindCity, KindPlace, KindRoute, KindEvent}

type PlaceType string

const (
	PlaceTypeTemple     PlaceType = "temple"
	PlaceTypeSamadhi    PlaceType = "samadhi"
	PlaceTypeKunda      PlaceType = "kunda"
	PlaceTypeSacredSite PlaceType = "sacred_site"
)

func (t PlaceType) Valid() bool {
	switch t {
	case PlaceTypeTemple, PlaceTypeSamadhi, PlaceTypeKunda, PlaceTypeSacredSite:
		return true
	default:
		return false
	}
}

// EventType is an open set; the constants below are the ones the catalog ships with.
type EventType string

const (
	EventTypeFestival EventType = "festival"
	EventTypeKirtan   EventType = "kirtan"
	EventTypeLecture  EventType = "lecture"
	EventTypeRetreat  EventType = "retreat"
	EventTypeYatra    EventType = "yatra"
)

// Entity is a read-only catalog record. The set of implementations is closed:
// *City, *Place, *Route and *Event. Code branching on the concrete type should
// switch on Kind() and handle every case.
type Entity interface {
	EntityID() EntityID
	Kind() EntityKind
	LocalizedName() LocalizedText
	// ParentCityID is the city an entity belongs to. Cities return their own ID.
	ParentCityID() EntityID

	isEntity()
}

type City struct {
	ID      EntityID
	Name    LocalizedText
	Country string

	Latitude  *float64
	Longitude *float64
}

type Place struct {
	ID     EntityID
	Name   LocalizedText
	CityID EntityID
	Type   PlaceType
	// Rating drives candidate rotation (highest first).
	Rating float64

	Latitude  *float64
	Longitude *float64
}

type Route struct {
	ID         EntityID
	Name       LocalizedText
	CityID     EntityID
	PlaceIDs   []EntityID
	DistanceKm *float64
}

type Event struct {
	ID              EntityID
	Name            LocalizedText
	CityID          EntityID
	EventType       EventType
	Culture         string
	HasOnlineStream bool
	HasTranslation  bool

	Date *time.Time // date-only semantics
	Time *string    // HH:MM
}

func (c *City) EntityID() EntityID { return c.ID }
func (c *City) Kind() EntityKind { return KindCity }
func (c *City) LocalizedName() LocalizedText { return c.Name }
func (c *City) ParentCityID() EntityID { return c.ID }
func (*City) isEntity() {}
func (p *Place) EntityID() EntityID { return p.ID }
func (p *Place) Kind() EntityKind { return KindPlace }
func (p *Place) LocalizedName() LocalizedText { return p.Name }
func (p *Place) ParentCityID() EntityID { return p.CityID }
func (*Place) isEntity() {}
func (r *Route) EntityID() EntityID { return r.ID }
func (r *Route) Kind() EntityKind { return KindRoute }
func (r *Route) LocalizedName() LocalizedText { return r.Name }
func (r *Route) ParentCityID() EntityID { return r.CityID }
func (*Route) isEntity() {}
func (e *Event) EntityID() EntityID { return e.ID }
func (e *Event) Kind() EntityKind { return KindEvent }
func (e *Event) LocalizedName() LocalizedText { return e.Name }
func (e *Event) ParentCityID() EntityID { return e.CityID }
func (*Event) isEntity() {}

// CloneEntity returns a deep copy of e. A nil entity clones to nil.
func CloneEntity(e Entity) Entity {
	switch v := e.(type) {
	case *City:
		if v == nil {
			return nil
		}
		cp := *v
		cp.Name = v.Name.Clone()
		cp.Latitude = cloneFloatPtr(v.Latitude)
		cp.Longitude = cloneFloatPtr(v.Longitude)
		return &cp
	case *Place:
		if v == nil {
			return nil
		}
		cp := *v
		cp.Name = v.Name.Clone()
		cp.Latitude = cloneFloatPtr(v.Latitude)
		cp.Longitude = cloneFloatPtr(v.Longitude)
		return &cp
	case *Route:
		if v == nil {
			return nil
		}
		cp := *v
		cp.Name = v.Name.Clone()
		if v.PlaceIDs != nil {
			cp.PlaceIDs = append([]EntityID(nil), v.PlaceIDs...)
		}
		cp.DistanceKm = cloneFloatPtr(v.DistanceKm)
		return &cp
	case *Event:
		if v == nil {
			return nil
		}
		cp := *v
		cp.Name = v.Name.Clone()
		cp.Date = CloneTimePtr(v.Date)
		cp.Time = CloneStringPtr(v.Time)
		return &cp
	default:
		return nil
	}
}

func cloneFloatPtr(p *float64) *float64 {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func CloneStringPtr(p *string) *string {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func CloneTimePtr(p *time.Time) *time.Time {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
