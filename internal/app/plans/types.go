package plans

import (
	"time"

	"github.com/yatra-labs/pilgrimage-planner-api/internal/domain"
)

// Optional is a tri-state field used to distinguish:
// - unspecified (omitted)
// - specified as null
// - specified with a value
type Optional[T any] struct {
	specified bool
	isNull    bool
	value     T
}

func Unspecified[T any]() Optional[T] { return Optional[T]{} }
func Null[T any]() Optional[T]        { return Optional[T]{specified: true, isNull: true} }
func Some[T any](v T) Optional[T]     { return Optional[T]{specified: true, value: v} }

func (o Optional[T]) IsSpecified() bool { return o.specified }
func (o Optional[T]) IsNull() bool      { return o.specified && o.isNull }
func (o Optional[T]) Value() T          { return o.value }

// SavePlanInput is the full content of a plan, used by create and replace.
type SavePlanInput struct {
	Title string
	// GroupBy is the view Items are ordered for; empty means city grouping.
	GroupBy   domain.GroupBy
	Items     []domain.PlannedItem
	StartDate *time.Time
	EndDate   *time.Time
}

// UpdatePlanMetaInput patches plan metadata without touching items.
type UpdatePlanMetaInput struct {
	// Title is optional and cannot be null.
	Title Optional[string]

	StartDate Optional[time.Time]
	EndDate   Optional[time.Time]
}

// ItemInput references a catalog entity by kind and id, with the planning
// metadata a client may set. The entity itself is read from the catalog.
type ItemInput struct {
	Type              domain.EntityKind
	ID                domain.EntityID
	CityIDForGrouping domain.EntityID
	Date              *time.Time
	Time              *string
	OrderIndex        *int
	Pinned            bool
}
