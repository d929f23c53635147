package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/oapi-codegen/nullable"
	"go.uber.org/zap"

	"github.com/yatra-labs/pilgrimage-planner-api/internal/app/planner"
	"github.com/yatra-labs/pilgrimage-planner-api/internal/app/plans"
	"github.com/yatra-labs/pilgrimage-planner-api/internal/ports/out/catalog"
)

type ErrorBody struct {
	Code      string                            `json:"code"`
	Message   string                            `json:"message"`
	Details   nullable.Nullable[map[string]any] `json:"details,omitempty"`
	RequestId nullable.Nullable[string]         `json:"requestId,omitempty"`
}

type ErrorResponse struct {
	Error ErrorBody `json:"error"`
}

func writeError(w http.ResponseWriter, r *http.Request, status int, code string, message string, details map[string]any) {
	var er ErrorResponse
	er.Error.Code = code
	er.Error.Message = message
	if details != nil {
		er.Error.Details = nullable.NewNullableWithValue(details)
	}
	if rid := middleware.GetReqID(r.Context()); rid != "" {
		er.Error.RequestId = nullable.NewNullableWithValue(rid)
	}
	writeJSON(w, status, er)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeAppError maps service and engine errors onto the JSON envelope.
// Anything unrecognized is logged and reported as a 500.
func (s *Server) writeAppError(w http.ResponseWriter, r *http.Request, err error) {
	if ae := (*plans.Error)(nil); errors.As(err, &ae) {
		writeError(w, r, ae.Status, ae.Code, ae.Message, ae.Details)
		return
	}
	switch {
	case errors.Is(err, planner.ErrRangeRequired):
		writeError(w, r, http.StatusUnprocessableEntity, "RANGE_REQUIRED", "a valid date range is required", nil)
	case errors.Is(err, catalog.ErrUnavailable):
		writeError(w, r, http.StatusServiceUnavailable, "CATALOG_UNAVAILABLE", "catalog is unavailable", nil)
	case errors.Is(err, planner.ErrSuperseded):
		writeError(w, r, http.StatusConflict, "SUPERSEDED", err.Error(), nil)
	default:
		s.logger.Error("Request failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Error(err))
		writeError(w, r, http.StatusInternalServerError, "INTERNAL", "internal error", nil)
	}
}
