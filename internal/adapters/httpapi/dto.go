package httpapi

import (
	"time"

	"github.com/oapi-codegen/nullable"
	openapi_types "github.com/oapi-codegen/runtime/types"

	"github.com/yatra-labs/pilgrimage-planner-api/internal/app/planner"
	"github.com/yatra-labs/pilgrimage-planner-api/internal/app/plans"
	"github.com/yatra-labs/pilgrimage-planner-api/internal/domain"
)

// Entity is the wire form of any catalog entity. Kind-specific fields are
// omitted for the other kinds.
type Entity struct {
	Id    string            `json:"id"`
	Kind  string            `json:"kind"`
	Name  string            `json:"name"`
	Names map[string]string `json:"names,omitempty"`

	CityId    *string  `json:"cityId,omitempty"`
	Country   *string  `json:"country,omitempty"`
	Latitude  *float64 `json:"lat,omitempty"`
	Longitude *float64 `json:"lng,omitempty"`

	PlaceType *string  `json:"placeType,omitempty"`
	Rating    *float64 `json:"rating,omitempty"`

	PlaceIds   []string `json:"placeIds,omitempty"`
	DistanceKm *float64 `json:"distanceKm,omitempty"`

	EventType       *string             `json:"eventType,omitempty"`
	Culture         *string             `json:"culture,omitempty"`
	HasOnlineStream *bool               `json:"hasOnlineStream,omitempty"`
	HasTranslation  *bool               `json:"hasTranslation,omitempty"`
	Date            *openapi_types.Date `json:"date,omitempty"`
	Time            *string             `json:"time,omitempty"`
}

// ItemRef is a planned item as sent by clients: a catalog reference plus
// planning metadata.
type ItemRef struct {
	Type              string              `json:"type"`
	Id                string              `json:"id"`
	CityIdForGrouping string              `json:"cityIdForGrouping,omitempty"`
	Date              *openapi_types.Date `json:"date,omitempty"`
	Time              *string             `json:"time,omitempty"`
	OrderIndex        *int                `json:"orderIndex,omitempty"`
	Pinned            bool                `json:"pinned,omitempty"`
}

// PlannedItem is a planned item as returned to clients.
type PlannedItem struct {
	Type              string              `json:"type"`
	Id                string              `json:"id"`
	Name              string              `json:"name"`
	CityIdForGrouping string              `json:"cityIdForGrouping"`
	Date              *openapi_types.Date `json:"date,omitempty"`
	Time              *string             `json:"time,omitempty"`
	OrderIndex        *int                `json:"orderIndex,omitempty"`
	Pinned            bool                `json:"pinned"`
	Data              Entity              `json:"data"`
}

type Group struct {
	Id       string        `json:"id"`
	By       string        `json:"by"`
	Header   *PlannedItem  `json:"header,omitempty"`
	TitleKey string        `json:"titleKey,omitempty"`
	Items    []PlannedItem `json:"items"`
}

type Filters struct {
	CityIds         []string            `json:"cityIds,omitempty"`
	PlaceTypes      []string            `json:"placeTypes,omitempty"`
	EventTypes      []string            `json:"eventTypes,omitempty"`
	IncludeRoutes   bool                `json:"includeRoutes,omitempty"`
	From            *openapi_types.Date `json:"from,omitempty"`
	To              *openapi_types.Date `json:"to,omitempty"`
	HasOnlineStream *bool               `json:"hasOnlineStream,omitempty"`
	HasTranslation  *bool               `json:"hasTranslation,omitempty"`
}

type CandidatesResponse struct {
	Candidates []Entity `json:"candidates"`
}

type GroupsRequest struct {
	Items   []ItemRef `json:"items"`
	GroupBy string    `json:"groupBy,omitempty"`
}

type GroupsResponse struct {
	Groups  []Group       `json:"groups"`
	Orphans []PlannedItem `json:"orphans"`
}

type DistributeRequest struct {
	Items []ItemRef          `json:"items"`
	From  openapi_types.Date `json:"from"`
	To    openapi_types.Date `json:"to"`
	// Mode is per_item (default) or per_group.
	Mode string `json:"mode,omitempty"`
	// GroupBy is the view dates follow: city (default) or event_type.
	GroupBy string `json:"groupBy,omitempty"`
}

type DistributeResponse struct {
	Items   []PlannedItem `json:"items"`
	Changed bool          `json:"changed"`
}

type Move struct {
	Kind          string `json:"kind"`
	SourceGroupId string `json:"sourceGroupId"`
	SourceIndex   int    `json:"sourceIndex"`
	DestGroupId   string `json:"destGroupId"`
	DestIndex     int    `json:"destIndex"`
}

type ReorderRequest struct {
	Items   []ItemRef `json:"items"`
	GroupBy string    `json:"groupBy,omitempty"`
	Move    Move      `json:"move"`
}

type ReorderResponse struct {
	Items []PlannedItem `json:"items"`
	// Applied is false when the move referenced a stale view and was ignored.
	Applied bool `json:"applied"`
}

type Plan struct {
	PlanId    string              `json:"planId"`
	Title     string              `json:"title"`
	GroupBy   string              `json:"groupBy"`
	StartDate *openapi_types.Date `json:"startDate,omitempty"`
	EndDate   *openapi_types.Date `json:"endDate,omitempty"`
	Items     []PlannedItem       `json:"items"`
	CreatedAt time.Time           `json:"createdAt"`
	UpdatedAt time.Time           `json:"updatedAt"`
}

type PlanSummary struct {
	PlanId    string              `json:"planId"`
	Title     string              `json:"title"`
	StartDate *openapi_types.Date `json:"startDate,omitempty"`
	EndDate   *openapi_types.Date `json:"endDate,omitempty"`
	ItemCount int                 `json:"itemCount"`
	CreatedAt time.Time           `json:"createdAt"`
	UpdatedAt time.Time           `json:"updatedAt"`
}

type PlanResponse struct {
	Plan Plan `json:"plan"`
}

type PlanSummaryResponse struct {
	Plan PlanSummary `json:"plan"`
}

type ListPlansResponse struct {
	Plans []PlanSummary `json:"plans"`
}

type SavePlanRequest struct {
	Title     string              `json:"title"`
	GroupBy   string              `json:"groupBy,omitempty"`
	StartDate *openapi_types.Date `json:"startDate,omitempty"`
	EndDate   *openapi_types.Date `json:"endDate,omitempty"`
	Items     []ItemRef           `json:"items"`
}

// UpdatePlanMetaRequest distinguishes omitted fields from explicit nulls.
type UpdatePlanMetaRequest struct {
	Title     nullable.Nullable[string]             `json:"title,omitempty"`
	StartDate nullable.Nullable[openapi_types.Date] `json:"startDate,omitempty"`
	EndDate   nullable.Nullable[openapi_types.Date] `json:"endDate,omitempty"`
}

func entityFromDomain(e domain.Entity, lang string) Entity {
	out := Entity{
		Id:    string(e.EntityID()),
		Kind:  string(e.Kind()),
		Name:  domain.Localize(e.LocalizedName(), lang),
		Names: e.LocalizedName().Clone(),
	}
	switch v := e.(type) {
	case *domain.City:
		out.Country = strPtr(v.Country)
		out.Latitude, out.Longitude = v.Latitude, v.Longitude
	case *domain.Place:
		out.CityId = strPtr(string(v.CityID))
		out.PlaceType = strPtr(string(v.Type))
		rating := v.Rating
		out.Rating = &rating
		out.Latitude, out.Longitude = v.Latitude, v.Longitude
	case *domain.Route:
		out.CityId = strPtr(string(v.CityID))
		out.PlaceIds = make([]string, 0, len(v.PlaceIDs))
		for _, id := range v.PlaceIDs {
			out.PlaceIds = append(out.PlaceIds, string(id))
		}
		out.DistanceKm = v.DistanceKm
	case *domain.Event:
		out.CityId = strPtr(string(v.CityID))
		out.EventType = strPtr(string(v.EventType))
		out.Culture = strPtr(v.Culture)
		online, translated := v.HasOnlineStream, v.HasTranslation
		out.HasOnlineStream = &online
		out.HasTranslation = &translated
		out.Date = datePtrToOAS(v.Date)
		out.Time = domain.CloneStringPtr(v.Time)
	}
	return out
}

func entitiesFromDomain(es []domain.Entity, lang string) []Entity {
	out := make([]Entity, 0, len(es))
	for _, e := range es {
		out = append(out, entityFromDomain(e, lang))
	}
	return out
}

func itemFromDomain(it domain.PlannedItem, lang string) PlannedItem {
	out := PlannedItem{
		Type:              string(it.Type),
		Id:                string(it.ID()),
		Name:              it.Name(lang),
		CityIdForGrouping: string(it.CityIDForGrouping),
		Date:              datePtrToOAS(it.Date),
		Time:              domain.CloneStringPtr(it.Time),
		Pinned:            it.Pinned,
	}
	if it.OrderIndex != nil {
		idx := *it.OrderIndex
		out.OrderIndex = &idx
	}
	if it.Data != nil {
		out.Data = entityFromDomain(it.Data, lang)
	}
	return out
}

func itemsFromDomain(items []domain.PlannedItem, lang string) []PlannedItem {
	out := make([]PlannedItem, 0, len(items))
	for _, it := range items {
		out = append(out, itemFromDomain(it, lang))
	}
	return out
}

func groupsFromDomain(groups []domain.Group, lang string) []Group {
	out := make([]Group, 0, len(groups))
	for _, g := range groups {
		dto := Group{
			Id:       g.ID,
			By:       string(g.By),
			TitleKey: g.TitleKey,
			Items:    itemsFromDomain(g.Items, lang),
		}
		if g.Header != nil {
			h := itemFromDomain(*g.Header, lang)
			dto.Header = &h
		}
		out = append(out, dto)
	}
	return out
}

func itemInputsFromOAS(in []ItemRef) []plans.ItemInput {
	out := make([]plans.ItemInput, 0, len(in))
	for _, r := range in {
		out = append(out, plans.ItemInput{
			Type:              domain.EntityKind(r.Type),
			ID:                domain.EntityID(r.Id),
			CityIDForGrouping: domain.EntityID(r.CityIdForGrouping),
			Date:              datePtrFromOAS(r.Date),
			Time:              r.Time,
			OrderIndex:        r.OrderIndex,
			Pinned:            r.Pinned,
		})
	}
	return out
}

func filtersFromOAS(f Filters) planner.Filters {
	out := planner.Filters{
		IncludeRoutes:   f.IncludeRoutes,
		HasOnlineStream: f.HasOnlineStream,
		HasTranslation:  f.HasTranslation,
	}
	for _, id := range f.CityIds {
		out.CityIDs = append(out.CityIDs, domain.EntityID(id))
	}
	for _, t := range f.PlaceTypes {
		out.PlaceTypes = append(out.PlaceTypes, domain.PlaceType(t))
	}
	for _, t := range f.EventTypes {
		out.EventTypes = append(out.EventTypes, domain.EventType(t))
	}
	if f.From != nil && f.To != nil {
		out.Range = &planner.DateRange{From: f.From.Time, To: f.To.Time}
	}
	return out
}

func planFromDomain(p domain.Plan, lang string) Plan {
	return Plan{
		PlanId:    string(p.ID),
		Title:     p.Title,
		GroupBy:   string(p.GroupBy.OrDefault()),
		StartDate: datePtrToOAS(p.StartDate),
		EndDate:   datePtrToOAS(p.EndDate),
		Items:     itemsFromDomain(p.Items, lang),
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
}

func planSummaryFromDomain(p domain.PlanSummary) PlanSummary {
	return PlanSummary{
		PlanId:    string(p.ID),
		Title:     p.Title,
		StartDate: datePtrToOAS(p.StartDate),
		EndDate:   datePtrToOAS(p.EndDate),
		ItemCount: p.ItemCount,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
}

func updatePlanMetaInputFromOAS(req UpdatePlanMetaRequest) plans.UpdatePlanMetaInput {
	var in plans.UpdatePlanMetaInput
	if req.Title.IsSpecified() {
		if req.Title.IsNull() {
			in.Title = plans.Null[string]()
		} else {
			in.Title = plans.Some(req.Title.MustGet())
		}
	}
	in.StartDate = optionalDate(req.StartDate)
	in.EndDate = optionalDate(req.EndDate)
	return in
}

func optionalDate(n nullable.Nullable[openapi_types.Date]) plans.Optional[time.Time] {
	if !n.IsSpecified() {
		return plans.Unspecified[time.Time]()
	}
	if n.IsNull() {
		return plans.Null[time.Time]()
	}
	return plans.Some(n.MustGet().Time)
}

func datePtrToOAS(t *time.Time) *openapi_types.Date {
	if t == nil {
		return nil
	}
	return &openapi_types.Date{Time: domain.DateOnly(*t)}
}

func datePtrFromOAS(d *openapi_types.Date) *time.Time {
	if d == nil {
		return nil
	}
	t := domain.DateOnly(d.Time)
	return &t
}

func strPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
