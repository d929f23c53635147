package httpapi

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/yatra-labs/pilgrimage-planner-api/internal/domain"
)

const (
	defaultSearchLimit = 20
	maxSearchLimit     = 100
)

type CitiesResponse struct {
	Cities []Entity `json:"cities"`
}

type EntitiesResponse struct {
	Items []Entity `json:"items"`
}

func (s *Server) ListCities(w http.ResponseWriter, r *http.Request) {
	cities, err := s.catalog.ListCities(r.Context())
	if err != nil {
		s.writeAppError(w, r, err)
		return
	}
	lang := s.language(r)
	out := make([]Entity, 0, len(cities))
	for i := range cities {
		out = append(out, entityFromDomain(&cities[i], lang))
	}
	writeJSON(w, http.StatusOK, CitiesResponse{Cities: out})
}

func (s *Server) ListPlacesByCity(w http.ResponseWriter, r *http.Request) {
	cityID := domain.EntityID(strings.TrimSpace(chi.URLParam(r, "cityId")))
	if cityID == "" {
		writeError(w, r, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "missing cityId", nil)
		return
	}
	places, err := s.catalog.ListPlacesByCity(r.Context(), cityID)
	if err != nil {
		s.writeAppError(w, r, err)
		return
	}
	lang := s.language(r)
	out := make([]Entity, 0, len(places))
	for i := range places {
		out = append(out, entityFromDomain(&places[i], lang))
	}
	writeJSON(w, http.StatusOK, EntitiesResponse{Items: out})
}

func (s *Server) ListEvents(w http.ResponseWriter, r *http.Request) {
	events, err := s.catalog.ListEventsAll(r.Context())
	if err != nil {
		s.writeAppError(w, r, err)
		return
	}
	lang := s.language(r)
	out := make([]Entity, 0, len(events))
	for i := range events {
		out = append(out, entityFromDomain(&events[i], lang))
	}
	writeJSON(w, http.StatusOK, EntitiesResponse{Items: out})
}

func (s *Server) ListRoutes(w http.ResponseWriter, r *http.Request) {
	routes, err := s.catalog.ListRoutesAll(r.Context())
	if err != nil {
		s.writeAppError(w, r, err)
		return
	}
	lang := s.language(r)
	out := make([]Entity, 0, len(routes))
	for i := range routes {
		out = append(out, entityFromDomain(&routes[i], lang))
	}
	writeJSON(w, http.StatusOK, EntitiesResponse{Items: out})
}

// SearchCatalog matches names in any language, case-insensitively.
func (s *Server) SearchCatalog(w http.ResponseWriter, r *http.Request) {
	q := strings.TrimSpace(r.URL.Query().Get("q"))
	if q == "" {
		writeError(w, r, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "missing query", map[string]any{"q": "must be non-empty"})
		return
	}
	limit := defaultSearchLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > maxSearchLimit {
			writeError(w, r, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "invalid limit", map[string]any{"limit": "must be between 1 and 100"})
			return
		}
		limit = n
	}
	es, err := s.catalog.Search(r.Context(), q, limit)
	if err != nil {
		s.writeAppError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, EntitiesResponse{Items: entitiesFromDomain(es, s.language(r))})
}
