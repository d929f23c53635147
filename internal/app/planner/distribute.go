package planner

import (
	"time"

	"github.com/yatra-labs/pilgrimage-planner-api/internal/domain"
)

// DateRange is an inclusive range of calendar days.
type DateRange struct {
	From time.Time
	To   time.Time
}

// Valid reports whether both ends are set and From is not after To.
func (r DateRange) Valid() bool {
	if r.From.IsZero() || r.To.IsZero() {
		return false
	}
	return !domain.DateOnly(r.From).After(domain.DateOnly(r.To))
}

// Days lists every calendar day from From to To inclusive. It is empty for an invalid range.
func (r DateRange) Days() []time.Time {
	if !r.Valid() {
		return nil
	}
	from, to := domain.DateOnly(r.From), domain.DateOnly(r.To)
	var days []time.Time
	for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
		days = append(days, d)
	}
	return days
}

// Contains reports whether t falls on a day within the range.
func (r DateRange) Contains(t time.Time) bool {
	if !r.Valid() {
		return false
	}
	d := domain.DateOnly(t)
	return !d.Before(domain.DateOnly(r.From)) && !d.After(domain.DateOnly(r.To))
}

// Mode selects whether automatic distribution assigns dates per item or per group.
type Mode string

const (
	ModePerItem  Mode = "per_item"
	ModePerGroup Mode = "per_group"
)

// DistributeDates assigns one day of r to each item, by position, and returns new items.
//
// With n items and d days: when n <= d, item i gets day floor(i*d/n), spreading
// items over the whole range; when n > d, days take ceil(n/d) consecutive items
// each and the last day absorbs the remainder. The input is never mutated.
func DistributeDates(items []domain.PlannedItem, r DateRange) ([]domain.PlannedItem, error) {
	days := r.Days()
	if len(days) == 0 {
		return domain.CloneItems(items), ErrRangeRequired
	}
	out := domain.CloneItems(items)
	for i, di := range dayIndexes(len(out), len(days)) {
		d := days[di]
		out[i].Date = &d
	}
	return out, nil
}

// dayIndexes maps n positions onto d days.
func dayIndexes(n, d int) []int {
	idx := make([]int, n)
	if n == 0 || d == 0 {
		return idx
	}
	if n <= d {
		for i := range idx {
			idx[i] = min(i*d/n, d-1)
		}
		return idx
	}
	perDay := (n + d - 1) / d
	for i := range idx {
		idx[i] = min(i/perDay, d-1)
	}
	return idx
}

// AutoDistribute distributes r over the plan in the canonical order of the
// by view, so dates ascend in displayed group order.
//
// City headers are not scheduled in ModePerItem; items outside the view follow
// the grouped ones. In ModePerGroup every group (header included) receives one
// day and items outside the view take the last day of the range. Pinned items
// keep their date and are left out of the sequence entirely. The returned list
// is canonical for by; changed reports whether any date differs from the input,
// so callers can skip redundant writes.
func AutoDistribute(items []domain.PlannedItem, r DateRange, mode Mode, by domain.GroupBy) (out []domain.PlannedItem, changed bool, err error) {
	days := r.Days()
	if len(days) == 0 {
		return domain.CloneItems(items), false, ErrRangeRequired
	}

	by = by.OrDefault()
	before := Canonicalize(items, by)
	out = domain.CloneItems(before)

	switch mode {
	case ModePerGroup:
		groups := Group(out, by)
		pos := make(map[domain.ItemRef]int, len(out))
		for i, it := range out {
			pos[it.Ref()] = i
		}
		for gi, di := range dayIndexes(len(groups), len(days)) {
			d := days[di]
			g := groups[gi]
			if g.Header != nil {
				setUnpinned(out, pos[g.Header.Ref()], d)
			}
			for _, it := range g.Items {
				setUnpinned(out, pos[it.Ref()], d)
			}
		}
		last := days[len(days)-1]
		for _, it := range Orphans(out, groups) {
			if it.Type == domain.KindCity {
				continue
			}
			setUnpinned(out, pos[it.Ref()], last)
		}
	default:
		var targets []int
		for i, it := range out {
			if it.Type == domain.KindCity || it.Pinned {
				continue
			}
			targets = append(targets, i)
		}
		for ti, di := range dayIndexes(len(targets), len(days)) {
			d := days[di]
			out[targets[ti]].Date = &d
		}
	}

	return out, !SameDates(before, out), nil
}

func setUnpinned(items []domain.PlannedItem, i int, d time.Time) {
	if items[i].Pinned {
		return
	}
	items[i].Date = &d
}

// SameDates compares the dates of a and b elementwise.
func SameDates(a, b []domain.PlannedItem) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !sameDate(a[i].Date, b[i].Date) {
			return false
		}
	}
	return true
}

func sameDate(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.Equal(*b)
}
