package planner

import (
	"sort"

	"github.com/yatra-labs/pilgrimage-planner-api/internal/domain"
)

// Rotator hands out places of a city one at a time, best rated first.
// It keeps one cursor per city; the cursor only moves forward, past both
// returned places and places skipped because they were already planned.
type Rotator struct {
	cursors map[domain.EntityID]int
}

func NewRotator() *Rotator {
	return &Rotator{cursors: make(map[domain.EntityID]int)}
}

// Next returns the next place of cityID not present in planned.
// It returns ErrCandidatesExhausted once the cursor reaches the end of the list.
func (r *Rotator) Next(cityID domain.EntityID, places []domain.Place, planned map[domain.EntityID]struct{}) (domain.Place, error) {
	ranked := RankPlaces(places)
	i := r.cursors[cityID]
	for ; i < len(ranked); i++ {
		if _, ok := planned[ranked[i].ID]; ok {
			continue
		}
		r.cursors[cityID] = i + 1
		return ranked[i], nil
	}
	r.cursors[cityID] = len(ranked)
	return domain.Place{}, ErrCandidatesExhausted
}

// Reset rewinds the cursor of cityID.
func (r *Rotator) Reset(cityID domain.EntityID) {
	delete(r.cursors, cityID)
}

// RankPlaces returns places sorted by rating descending, then by default-language
// name and id, so the order does not depend on how the catalog lists them.
func RankPlaces(places []domain.Place) []domain.Place {
	out := append([]domain.Place(nil), places...)
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Rating != b.Rating {
			return a.Rating > b.Rating
		}
		an, bn := domain.Localize(a.Name, domain.DefaultLanguage), domain.Localize(b.Name, domain.DefaultLanguage)
		if an != bn {
			return an < bn
		}
		return a.ID < b.ID
	})
	return out
}
