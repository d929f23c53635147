package domain

import "time"

// ItemRef addresses one planned item within a plan. Entity IDs are unique per kind.
type ItemRef struct {
	Kind EntityKind
	ID   EntityID
}

func (r ItemRef) String() string { return string(r.Kind) + ":" + string(r.ID) }

// PlannedItem wraps a copy of a catalog entity with planning metadata.
//
// Every non-city item carries a CityIDForGrouping matching the Data ID of a city
// item in the same collection; items without a match are orphans and are not
// shown in grouped views.
type PlannedItem struct {
	Type EntityKind
	Data Entity

	CityIDForGrouping EntityID

	Date *time.Time // date-only semantics
	Time *string    // HH:MM
	// OrderIndex is nil until the item has been placed; nil sorts last.
	OrderIndex *int

	// Pinned marks a manually edited date that automatic distribution must not overwrite.
	Pinned bool
}

// NewPlannedItem wraps a private copy of e. Event dates and times seed the item schedule.
func NewPlannedItem(e Entity) PlannedItem {
	data := CloneEntity(e)
	it := PlannedItem{
		Type:              e.Kind(),
		Data:              data,
		CityIDForGrouping: e.ParentCityID(),
	}
	if ev, ok := data.(*Event); ok {
		it.Date = DateOnlyPtr(ev.Date)
		it.Time = CloneStringPtr(ev.Time)
	}
	return it
}

func (it PlannedItem) ID() EntityID {
	if it.Data == nil {
		return ""
	}
	return it.Data.EntityID()
}

func (it PlannedItem) Ref() ItemRef { return ItemRef{Kind: it.Type, ID: it.ID()} }

// Index returns OrderIndex or -1 when unset.
func (it PlannedItem) Index() int {
	if it.OrderIndex == nil {
		return -1
	}
	return *it.OrderIndex
}

// Clone returns a deep copy, including the wrapped entity.
func (it PlannedItem) Clone() PlannedItem {
	cp := it
	cp.Data = CloneEntity(it.Data)
	cp.Date = CloneTimePtr(it.Date)
	cp.Time = CloneStringPtr(it.Time)
	if it.OrderIndex != nil {
		v := *it.OrderIndex
		cp.OrderIndex = &v
	}
	return cp
}

// Name resolves the entity display name for lang.
func (it PlannedItem) Name(lang string) string {
	if it.Data == nil {
		return ""
	}
	return Localize(it.Data.LocalizedName(), lang)
}

// EventType returns the event type of an event item, or "" for other kinds.
func (it PlannedItem) EventType() EventType {
	if ev, ok := it.Data.(*Event); ok && ev != nil {
		return ev.EventType
	}
	return ""
}

// CloneItems deep-copies a slice of items.
func CloneItems(in []PlannedItem) []PlannedItem {
	if in == nil {
		return nil
	}
	out := make([]PlannedItem, len(in))
	for i, it := range in {
		out[i] = it.Clone()
	}
	return out
}

// GroupBy selects how a plan is partitioned for display and reordering.
type GroupBy string

const (
	GroupByCity      GroupBy = "city"
	GroupByEventType GroupBy = "event_type"
)

func (g GroupBy) Valid() bool { return g == GroupByCity || g == GroupByEventType }

// OrDefault returns g, or GroupByCity when g is not a known view.
func (g GroupBy) OrDefault() GroupBy {
	if g.Valid() {
		return g
	}
	return GroupByCity
}

// Group is an ordered bucket of planned items sharing a parent key.
// City groups carry the city item as Header; event-type groups have no header
// and expose a TitleKey for localized rendering.
type Group struct {
	ID       string
	By       GroupBy
	Header   *PlannedItem
	TitleKey string
	Items    []PlannedItem
	Order    int
}

func (g Group) Clone() Group {
	cp := g
	if g.Header != nil {
		h := g.Header.Clone()
		cp.Header = &h
	}
	cp.Items = CloneItems(g.Items)
	return cp
}

// EventTypeTitleKey is the i18n key for an event-type group title.
func EventTypeTitleKey(t EventType) string { return "eventTypes." + string(t) }
