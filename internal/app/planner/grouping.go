package planner

import (
	"math"
	"sort"

	"github.com/yatra-labs/pilgrimage-planner-api/internal/domain"
)

// Group partitions items according to by.
func Group(items []domain.PlannedItem, by domain.GroupBy) []domain.Group {
	if by == domain.GroupByEventType {
		return GroupByEventType(items)
	}
	return GroupByParent(items)
}

// GroupByParent builds one group per city item, in first-appearance order, and
// attaches every non-city item to the group keyed by its CityIDForGrouping.
// Items without a matching city are left out of the view (they stay in the flat list).
// Children are sorted by OrderIndex ascending; unset indices sort last, ties keep input order.
func GroupByParent(items []domain.PlannedItem) []domain.Group {
	var groups []domain.Group
	byKey := make(map[domain.EntityID]int)

	for _, it := range items {
		if it.Type != domain.KindCity {
			continue
		}
		key := it.ID()
		if _, dup := byKey[key]; dup || key == "" {
			continue
		}
		h := it.Clone()
		byKey[key] = len(groups)
		groups = append(groups, domain.Group{
			ID:     string(key),
			By:     domain.GroupByCity,
			Header: &h,
			Order:  len(groups),
		})
	}

	for _, it := range items {
		if it.Type == domain.KindCity {
			continue
		}
		gi, ok := byKey[it.CityIDForGrouping]
		if !ok {
			continue
		}
		groups[gi].Items = append(groups[gi].Items, it.Clone())
	}

	for i := range groups {
		sortByOrderIndex(groups[i].Items)
	}
	return groups
}

// GroupByEventType groups event items by event type, in order of first appearance.
// Non-event items are not part of this view.
func GroupByEventType(items []domain.PlannedItem) []domain.Group {
	var groups []domain.Group
	byKey := make(map[domain.EventType]int)

	for _, it := range items {
		if it.Type != domain.KindEvent {
			continue
		}
		et := it.EventType()
		gi, ok := byKey[et]
		if !ok {
			gi = len(groups)
			byKey[et] = gi
			groups = append(groups, domain.Group{
				ID:       string(et),
				By:       domain.GroupByEventType,
				TitleKey: domain.EventTypeTitleKey(et),
				Order:    gi,
			})
		}
		groups[gi].Items = append(groups[gi].Items, it.Clone())
	}

	for i := range groups {
		sortByOrderIndex(groups[i].Items)
	}
	return groups
}

// Flatten concatenates each group's header and children in group order and
// assigns contiguous OrderIndex values starting at 0.
func Flatten(groups []domain.Group) []domain.PlannedItem {
	n := 0
	for _, g := range groups {
		n += len(g.Items)
		if g.Header != nil {
			n++
		}
	}
	out := make([]domain.PlannedItem, 0, n)
	for _, g := range groups {
		if g.Header != nil {
			out = append(out, g.Header.Clone())
		}
		for _, it := range g.Items {
			out = append(out, it.Clone())
		}
	}
	Renumber(out)
	return out
}

// Canonicalize rebuilds the flat list through the grouped view: grouped items
// come first in group order, items outside the view follow in OrderIndex order.
// Input is read in OrderIndex order, so stored lists need not be sorted.
// The result has contiguous OrderIndex values.
func Canonicalize(items []domain.PlannedItem, by domain.GroupBy) []domain.PlannedItem {
	sorted := domain.CloneItems(items)
	sortByOrderIndex(sorted)
	groups := Group(sorted, by)
	return withOrphans(Flatten(groups), sorted, groups)
}

// Orphans returns the items of the flat list that are not part of groups, in list order.
func Orphans(items []domain.PlannedItem, groups []domain.Group) []domain.PlannedItem {
	inView := make(map[domain.ItemRef]struct{})
	for _, g := range groups {
		if g.Header != nil {
			inView[g.Header.Ref()] = struct{}{}
		}
		for _, it := range g.Items {
			inView[it.Ref()] = struct{}{}
		}
	}
	var out []domain.PlannedItem
	for _, it := range items {
		if _, ok := inView[it.Ref()]; ok {
			continue
		}
		out = append(out, it.Clone())
	}
	return out
}

func withOrphans(flat []domain.PlannedItem, items []domain.PlannedItem, groups []domain.Group) []domain.PlannedItem {
	orphans := Orphans(items, groups)
	if len(orphans) == 0 {
		return flat
	}
	sortByOrderIndex(orphans)
	out := append(flat, orphans...)
	Renumber(out)
	return out
}

// Renumber assigns OrderIndex 0..len-1 in slice order.
func Renumber(items []domain.PlannedItem) {
	for i := range items {
		v := i
		items[i].OrderIndex = &v
	}
}

func sortByOrderIndex(items []domain.PlannedItem) {
	sort.SliceStable(items, func(i, j int) bool {
		return orderKey(items[i]) < orderKey(items[j])
	})
}

func orderKey(it domain.PlannedItem) int {
	if it.OrderIndex == nil {
		return math.MaxInt
	}
	return *it.OrderIndex
}
