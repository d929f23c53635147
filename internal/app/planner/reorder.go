package planner

import (
	"fmt"

	"github.com/yatra-labs/pilgrimage-planner-api/internal/domain"
)

type MoveKind string

const (
	MoveGroup MoveKind = "group"
	MoveItem  MoveKind = "item"
)

// Move is a drag-and-drop result expressed in plain data.
// For MoveGroup the indices address the group sequence; for MoveItem they
// address the children of the source and destination groups.
type Move struct {
	Kind          MoveKind
	SourceGroupID string
	SourceIndex   int
	DestGroupID   string
	DestIndex     int
}

func (m Move) isNoop() bool {
	return m.SourceGroupID == m.DestGroupID && m.SourceIndex == m.DestIndex
}

// ApplyReorder applies mv to the grouped view of items and returns the new
// canonical flat list. Items outside the view are kept after the grouped ones.
//
// A move referencing an unknown group or a missing source position leaves the
// list unchanged and reports ErrUnknownGroup or ErrIndexOutOfRange; the returned
// items are then a copy of the input.
func ApplyReorder(items []domain.PlannedItem, groups []domain.Group, mv Move) ([]domain.PlannedItem, error) {
	if mv.isNoop() {
		return domain.CloneItems(items), nil
	}

	work := make([]domain.Group, len(groups))
	for i, g := range groups {
		work[i] = g.Clone()
	}

	switch mv.Kind {
	case MoveGroup:
		if mv.SourceIndex < 0 || mv.SourceIndex >= len(work) {
			return domain.CloneItems(items), fmt.Errorf("group position %d: %w", mv.SourceIndex, ErrIndexOutOfRange)
		}
		work = moveElem(work, mv.SourceIndex, mv.DestIndex)
		for i := range work {
			work[i].Order = i
		}

	case MoveItem:
		src := groupIndex(work, mv.SourceGroupID)
		if src < 0 {
			return domain.CloneItems(items), fmt.Errorf("source group %q: %w", mv.SourceGroupID, ErrUnknownGroup)
		}
		dst := groupIndex(work, mv.DestGroupID)
		if dst < 0 {
			return domain.CloneItems(items), fmt.Errorf("destination group %q: %w", mv.DestGroupID, ErrUnknownGroup)
		}
		if mv.SourceIndex < 0 || mv.SourceIndex >= len(work[src].Items) {
			return domain.CloneItems(items), fmt.Errorf("item position %d in group %q: %w", mv.SourceIndex, mv.SourceGroupID, ErrIndexOutOfRange)
		}

		if src == dst {
			work[src].Items = moveElem(work[src].Items, mv.SourceIndex, mv.DestIndex)
			Renumber(work[src].Items)
			break
		}

		moved := work[src].Items[mv.SourceIndex]
		work[src].Items = append(work[src].Items[:mv.SourceIndex:mv.SourceIndex], work[src].Items[mv.SourceIndex+1:]...)
		rekey(&moved, work[dst])
		work[dst].Items = insertElem(work[dst].Items, mv.DestIndex, moved)
		Renumber(work[src].Items)
		Renumber(work[dst].Items)

	default:
		return domain.CloneItems(items), fmt.Errorf("unknown move kind %q", mv.Kind)
	}

	return withOrphans(Flatten(work), items, groups), nil
}

// rekey points the moved item at its new group.
func rekey(it *domain.PlannedItem, dst domain.Group) {
	switch dst.By {
	case domain.GroupByEventType:
		if ev, ok := it.Data.(*domain.Event); ok && ev != nil {
			cp := domain.CloneEntity(ev).(*domain.Event)
			cp.EventType = domain.EventType(dst.ID)
			it.Data = cp
		}
	default:
		it.CityIDForGrouping = domain.EntityID(dst.ID)
	}
}

func groupIndex(groups []domain.Group, id string) int {
	for i, g := range groups {
		if g.ID == id {
			return i
		}
	}
	return -1
}

// moveElem removes s[from] and reinserts it so that it ends up at index to (clamped).
func moveElem[T any](s []T, from, to int) []T {
	v := s[from]
	rest := append(append(make([]T, 0, len(s)), s[:from]...), s[from+1:]...)
	return insertElem(rest, to, v)
}

func insertElem[T any](s []T, at int, v T) []T {
	if at < 0 {
		at = 0
	}
	if at > len(s) {
		at = len(s)
	}
	out := make([]T, 0, len(s)+1)
	out = append(out, s[:at]...)
	out = append(out, v)
	return append(out, s[at:]...)
}
