package planner

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/yatra-labs/pilgrimage-planner-api/internal/domain"
	"github.com/yatra-labs/pilgrimage-planner-api/internal/ports/out/catalog"
)

// Session is the state of one planner front-end: filters, candidates, the
// working item list and the selected date range. Every planner view drives
// the same Session; views differ only in GroupBy.
//
// Catalog fetches run without holding the lock. Each fetch is tagged with a
// generation number and its result is dropped if a newer fetch has started.
type Session struct {
	catalog catalog.Catalog
	logger  *zap.Logger

	mu         sync.Mutex
	groupBy    domain.GroupBy
	filters    Filters
	candidates []domain.Entity
	fetchGen   uint64
	items      []domain.PlannedItem
	dateRange  DateRange
	rotator    *Rotator
	planID     domain.PlanID
	title      string
}

func NewSession(cat catalog.Catalog, logger *zap.Logger) *Session {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Session{
		catalog: cat,
		logger:  logger.Named("planner"),
		groupBy: domain.GroupByCity,
		rotator: NewRotator(),
	}
}

// SetGroupBy switches the view configuration and re-canonicalizes the item list.
func (s *Session) SetGroupBy(by domain.GroupBy) {
	if !by.Valid() {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.groupBy = by
	s.items = Canonicalize(s.items, by)
}

func (s *Session) GroupBy() domain.GroupBy {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.groupBy
}

// ApplyFilters fetches catalog data for f and recomputes the candidate set.
// On failure the previous filters and candidates are kept. A fetch overtaken by
// a newer ApplyFilters call returns ErrSuperseded without touching state.
func (s *Session) ApplyFilters(ctx context.Context, f Filters) ([]domain.Entity, error) {
	s.mu.Lock()
	s.fetchGen++
	gen := s.fetchGen
	s.mu.Unlock()

	snap, err := FetchSnapshot(ctx, s.catalog, f)

	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.fetchGen {
		s.logger.Debug("Discarding superseded catalog fetch",
			zap.Uint64("generation", gen),
			zap.Uint64("latest", s.fetchGen))
		return nil, ErrSuperseded
	}
	if err != nil {
		s.logger.Error("Catalog fetch failed", zap.Error(err))
		return nil, fmt.Errorf("%w: %w", catalog.ErrUnavailable, err)
	}
	s.filters = f
	s.candidates = SelectCandidates(snap, f)
	return cloneEntities(s.candidates), nil
}

func (s *Session) Filters() Filters {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.filters
}

func (s *Session) Candidates() []domain.Entity {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneEntities(s.candidates)
}

// AddCandidates adds every current candidate not already in the plan.
// It returns the number of items added.
func (s *Session) AddCandidates() (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.candidates) == 0 {
		return 0, ErrNoCandidates
	}
	added := 0
	for _, e := range s.candidates {
		if s.addLocked(e) {
			added++
		}
	}
	s.items = Canonicalize(s.items, s.groupBy)
	return added, nil
}

// AddEntity adds a single entity. It reports false if the entity is already planned.
func (s *Session) AddEntity(e domain.Entity) bool {
	if e == nil {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.addLocked(e) {
		return false
	}
	s.items = Canonicalize(s.items, s.groupBy)
	return true
}

func (s *Session) addLocked(e domain.Entity) bool {
	ref := domain.ItemRef{Kind: e.Kind(), ID: e.EntityID()}
	if s.indexLocked(ref) >= 0 {
		return false
	}
	s.items = append(s.items, NewPlannedItem(e, len(s.items)))
	return true
}

// NewPlannedItem wraps e and places it after the existing n items.
func NewPlannedItem(e domain.Entity, n int) domain.PlannedItem {
	it := domain.NewPlannedItem(e)
	it.OrderIndex = &n
	return it
}

// AddNextPlace adds the next best-rated place of cityID that is not planned yet,
// adding the city itself first when needed. Once the city's places run out it
// returns ErrCandidatesExhausted and leaves the plan unchanged.
func (s *Session) AddNextPlace(ctx context.Context, cityID domain.EntityID) (domain.Place, error) {
	s.mu.Lock()
	hasCity := s.indexLocked(domain.ItemRef{Kind: domain.KindCity, ID: cityID}) >= 0
	s.mu.Unlock()

	var city domain.Entity
	if !hasCity {
		es, err := s.catalog.GetEntitiesByIDs(ctx, domain.KindCity, []domain.EntityID{cityID})
		if err != nil {
			return domain.Place{}, fmt.Errorf("%w: %w", catalog.ErrUnavailable, err)
		}
		if len(es) == 0 {
			return domain.Place{}, fmt.Errorf("city %s: %w", cityID, ErrUnknownItem)
		}
		city = es[0]
	}
	places, err := s.catalog.ListPlacesByCity(ctx, cityID)
	if err != nil {
		return domain.Place{}, fmt.Errorf("%w: %w", catalog.ErrUnavailable, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	planned := make(map[domain.EntityID]struct{})
	for _, it := range s.items {
		if it.Type == domain.KindPlace {
			planned[it.ID()] = struct{}{}
		}
	}
	p, err := s.rotator.Next(cityID, places, planned)
	if err != nil {
		return domain.Place{}, err
	}
	if city != nil {
		s.addLocked(city)
	}
	s.addLocked(&p)
	s.items = Canonicalize(s.items, s.groupBy)
	return p, nil
}

// Remove deletes the referenced item. Removing a city also removes the items grouped under it.
func (s *Session) Remove(ref domain.ItemRef) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.indexLocked(ref) < 0 {
		return fmt.Errorf("%s: %w", ref, ErrUnknownItem)
	}
	kept := s.items[:0:0]
	for _, it := range s.items {
		if it.Ref() == ref {
			continue
		}
		if ref.Kind == domain.KindCity && it.Type != domain.KindCity && it.CityIDForGrouping == ref.ID {
			continue
		}
		kept = append(kept, it)
	}
	if ref.Kind == domain.KindCity {
		s.rotator.Reset(ref.ID)
	}
	s.items = Canonicalize(kept, s.groupBy)
	return nil
}

func (s *Session) SetRange(r DateRange) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dateRange = r
}

func (s *Session) Range() DateRange {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dateRange
}

// AutoDistribute spreads the session range over unpinned items. It writes only
// when at least one date changes and reports whether it did.
func (s *Session) AutoDistribute(mode Mode) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out, changed, err := AutoDistribute(s.items, s.dateRange, mode, s.groupBy)
	if err != nil {
		return false, err
	}
	if !changed {
		return false, nil
	}
	s.items = out
	return true, nil
}

// ManualSetDate sets the date of one item and pins it against automatic
// distribution. A nil date clears the date and the pin.
func (s *Session) ManualSetDate(ref domain.ItemRef, date *time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexLocked(ref)
	if i < 0 {
		return fmt.Errorf("%s: %w", ref, ErrUnknownItem)
	}
	s.items[i].Date = domain.DateOnlyPtr(date)
	s.items[i].Pinned = date != nil
	return nil
}

// Unpin releases a manual date so the next automatic distribution may move it.
func (s *Session) Unpin(ref domain.ItemRef) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexLocked(ref)
	if i < 0 {
		return fmt.Errorf("%s: %w", ref, ErrUnknownItem)
	}
	s.items[i].Pinned = false
	return nil
}

// ManualSetTime sets the HH:MM time of one item; an empty string clears it.
func (s *Session) ManualSetTime(ref domain.ItemRef, clock string) error {
	var t *string
	if clock != "" {
		v, err := domain.NormalizeClock(clock)
		if err != nil {
			return err
		}
		t = &v
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexLocked(ref)
	if i < 0 {
		return fmt.Errorf("%s: %w", ref, ErrUnknownItem)
	}
	s.items[i].Time = t
	return nil
}

// Reorder applies a drag-and-drop move to the current view. Moves that
// reference stale groups or positions are logged and leave the plan unchanged.
func (s *Session) Reorder(mv Move) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	groups := Group(s.items, s.groupBy)
	out, err := ApplyReorder(s.items, groups, mv)
	if err != nil {
		if errors.Is(err, ErrUnknownGroup) || errors.Is(err, ErrIndexOutOfRange) {
			s.logger.Warn("Ignoring stale reorder move",
				zap.String("kind", string(mv.Kind)),
				zap.String("source_group", mv.SourceGroupID),
				zap.String("dest_group", mv.DestGroupID),
				zap.Error(err))
		}
		return err
	}
	s.items = out
	return nil
}

// Items returns a copy of the canonical flat list.
func (s *Session) Items() []domain.PlannedItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	return domain.CloneItems(s.items)
}

// Groups returns the grouped view of the current items.
func (s *Session) Groups() []domain.Group {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Group(s.items, s.groupBy)
}

// Load replaces the session contents with a persisted plan. A plan saved from
// another view switches the session to that view.
func (s *Session) Load(p domain.Plan) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.planID = p.ID
	s.title = p.Title
	if p.GroupBy.Valid() {
		s.groupBy = p.GroupBy
	}
	s.items = Canonicalize(p.Items, s.groupBy)
	s.dateRange = DateRange{}
	if p.StartDate != nil && p.EndDate != nil {
		s.dateRange = DateRange{From: *p.StartDate, To: *p.EndDate}
	}
	s.rotator = NewRotator()
}

// Plan returns the session contents as a plan ready to save. ID is empty until
// the session has been loaded from or saved to the store.
func (s *Session) Plan() domain.Plan {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := domain.Plan{
		ID:      s.planID,
		Title:   s.title,
		GroupBy: s.groupBy,
		Items:   domain.CloneItems(s.items),
	}
	if s.dateRange.Valid() {
		from, to := domain.DateOnly(s.dateRange.From), domain.DateOnly(s.dateRange.To)
		p.StartDate, p.EndDate = &from, &to
	}
	return p
}

// Attach records the identity of the stored plan after a save.
func (s *Session) Attach(id domain.PlanID, title string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.planID = id
	s.title = title
}

func (s *Session) indexLocked(ref domain.ItemRef) int {
	for i, it := range s.items {
		if it.Ref() == ref {
			return i
		}
	}
	return -1
}

func cloneEntities(in []domain.Entity) []domain.Entity {
	out := make([]domain.Entity, len(in))
	for i, e := range in {
		out[i] = domain.CloneEntity(e)
	}
	return out
}
