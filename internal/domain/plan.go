package domain

import "time"

// Plan is a named, persisted itinerary belonging to one owner.
type Plan struct {
	ID      PlanID
	OwnerID OwnerID
	Title   string

	// GroupBy is the view Items are ordered for. Empty means GroupByCity.
	GroupBy GroupBy

	// Items is the canonical flat list for GroupBy: grouped items in group
	// order, then items outside the view, OrderIndex contiguous from 0.
	Items []PlannedItem

	StartDate *time.Time // date-only semantics at the edges
	EndDate   *time.Time // date-only semantics at the edges

	CreatedAt time.Time
	UpdatedAt time.Time
}

// PlanSummary is the list view of a plan.
type PlanSummary struct {
	ID        PlanID
	Title     string
	StartDate *time.Time
	EndDate   *time.Time
	ItemCount int

	CreatedAt time.Time
	UpdatedAt time.Time
}
