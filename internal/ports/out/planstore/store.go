package planstore

import (
	"context"
	"time"

	"github.com/yatra-labs/pilgrimage-planner-api/internal/domain"
)

// Stub is the persisted reference to a catalog entity: never the full payload.
type Stub struct {
	ID   domain.EntityID
	Name string // cached display name
}

// StubItem is the persistence shape of one planned item.
type StubItem struct {
	Type              domain.EntityKind
	Data              Stub
	CityIDForGrouping domain.EntityID
	Date              *time.Time
	Time              *string
	OrderIndex        int
	Pinned            bool
}

// Record is the persistence shape used by the plan store.
// It is not an HTTP DTO.
type Record struct {
	ID      domain.PlanID
	OwnerID domain.OwnerID
	Title   string

	// GroupBy is the view Items were canonicalized for.
	GroupBy domain.GroupBy
	Items   []StubItem

	StartDate *time.Time
	EndDate   *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Summary is the list-view projection of a Record.
type Summary struct {
	ID        domain.PlanID
	Title     string
	StartDate *time.Time
	EndDate   *time.Time
	ItemCount int
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Store persists plans scoped by owner.
//
// Mutations filter on both id and owner: a mismatch behaves exactly like a missing
// plan and returns ErrNotFound, so one owner can never modify another owner's plan.
//
// Result ordering expectations:
// - List returns plans ordered by CreatedAt descending, then ID ascending.
type Store interface {
	Insert(ctx context.Context, owner domain.OwnerID, rec Record) (domain.PlanID, error)
	Update(ctx context.Context, id domain.PlanID, owner domain.OwnerID, rec Record) error
	List(ctx context.Context, owner domain.OwnerID) ([]Summary, error)
	Delete(ctx context.Context, id domain.PlanID, owner domain.OwnerID) error

	// Get loads a plan by id regardless of owner; callers enforce ownership.
	Get(ctx context.Context, id domain.PlanID) (Record, error)
}

// CloneRecord deep-copies rec so adapters never share slices with callers.
func CloneRecord(rec Record) Record {
	cp := rec
	cp.StartDate = domain.CloneTimePtr(rec.StartDate)
	cp.EndDate = domain.CloneTimePtr(rec.EndDate)
	if rec.Items != nil {
		cp.Items = make([]StubItem, len(rec.Items))
		for i, it := range rec.Items {
			c := it
			c.Date = domain.CloneTimePtr(it.Date)
			c.Time = domain.CloneStringPtr(it.Time)
			cp.Items[i] = c
		}
	}
	return cp
}

// SummaryOf projects rec into a Summary.
func SummaryOf(rec Record) Summary {
	return Summary{
		ID:        rec.ID,
		Title:     rec.Title,
		StartDate: domain.CloneTimePtr(rec.StartDate),
		EndDate:   domain.CloneTimePtr(rec.EndDate),
		ItemCount: len(rec.Items),
		CreatedAt: rec.CreatedAt,
		UpdatedAt: rec.UpdatedAt,
	}
}
