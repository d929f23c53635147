package httpapi

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/yatra-labs/pilgrimage-planner-api/internal/app/planner"
	"github.com/yatra-labs/pilgrimage-planner-api/internal/domain"
)

func parseGroupBy(raw string) (domain.GroupBy, bool) {
	if raw == "" {
		return domain.GroupByCity, true
	}
	by := domain.GroupBy(raw)
	return by, by.Valid()
}

func (s *Server) SelectCandidates(w http.ResponseWriter, r *http.Request) {
	var req Filters
	if !decodeJSON(w, r, &req) {
		return
	}
	for _, t := range req.PlaceTypes {
		if !domain.PlaceType(t).Valid() {
			writeError(w, r, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "invalid place type", map[string]any{"placeType": t})
			return
		}
	}
	if (req.From == nil) != (req.To == nil) {
		writeError(w, r, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "from and to must be given together", nil)
		return
	}
	f := filtersFromOAS(req)
	if f.Range != nil && !f.Range.Valid() {
		writeError(w, r, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "invalid date range", map[string]any{"to": "must not be before from"})
		return
	}

	sess := planner.NewSession(s.catalog, s.logger)
	cands, err := sess.ApplyFilters(r.Context(), f)
	if err != nil {
		s.writeAppError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, CandidatesResponse{Candidates: entitiesFromDomain(cands, s.language(r))})
}

func (s *Server) GroupItems(w http.ResponseWriter, r *http.Request) {
	var req GroupsRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	by, ok := parseGroupBy(req.GroupBy)
	if !ok {
		writeError(w, r, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "invalid groupBy", map[string]any{"groupBy": req.GroupBy})
		return
	}
	items, ok := s.resolveItems(w, r, req.Items)
	if !ok {
		return
	}
	groups := planner.Group(items, by)
	orphans := planner.Orphans(items, groups)

	lang := s.language(r)
	writeJSON(w, http.StatusOK, GroupsResponse{
		Groups:  groupsFromDomain(groups, lang),
		Orphans: itemsFromDomain(orphans, lang),
	})
}

func (s *Server) DistributeDates(w http.ResponseWriter, r *http.Request) {
	var req DistributeRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	mode := planner.ModePerItem
	switch planner.Mode(req.Mode) {
	case "", planner.ModePerItem:
	case planner.ModePerGroup:
		mode = planner.ModePerGroup
	default:
		writeError(w, r, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "invalid mode", map[string]any{"mode": req.Mode})
		return
	}
	by, ok := parseGroupBy(req.GroupBy)
	if !ok {
		writeError(w, r, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "invalid groupBy", map[string]any{"groupBy": req.GroupBy})
		return
	}
	items, ok := s.resolveItems(w, r, req.Items)
	if !ok {
		return
	}

	out, changed, err := planner.AutoDistribute(items, planner.DateRange{From: req.From.Time, To: req.To.Time}, mode, by)
	if err != nil {
		s.writeAppError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, DistributeResponse{Items: itemsFromDomain(out, s.language(r)), Changed: changed})
}

func (s *Server) ReorderItems(w http.ResponseWriter, r *http.Request) {
	var req ReorderRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	by, ok := parseGroupBy(req.GroupBy)
	if !ok {
		writeError(w, r, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "invalid groupBy", map[string]any{"groupBy": req.GroupBy})
		return
	}
	kind := planner.MoveKind(req.Move.Kind)
	if kind != planner.MoveGroup && kind != planner.MoveItem {
		writeError(w, r, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "invalid move kind", map[string]any{"kind": req.Move.Kind})
		return
	}
	items, ok := s.resolveItems(w, r, req.Items)
	if !ok {
		return
	}

	mv := planner.Move{
		Kind:          kind,
		SourceGroupID: req.Move.SourceGroupId,
		SourceIndex:   req.Move.SourceIndex,
		DestGroupID:   req.Move.DestGroupId,
		DestIndex:     req.Move.DestIndex,
	}
	out, err := planner.ApplyReorder(items, planner.Group(items, by), mv)
	applied := true
	if err != nil {
		if !errors.Is(err, planner.ErrUnknownGroup) && !errors.Is(err, planner.ErrIndexOutOfRange) {
			s.writeAppError(w, r, err)
			return
		}
		s.logger.Warn("Ignoring stale reorder",
			zap.String("kind", string(mv.Kind)),
			zap.String("source_group", mv.SourceGroupID),
			zap.String("dest_group", mv.DestGroupID),
			zap.Error(err))
		applied = false
	}
	writeJSON(w, http.StatusOK, ReorderResponse{Items: itemsFromDomain(out, s.language(r)), Applied: applied})
}
