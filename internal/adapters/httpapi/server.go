package httpapi

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/yatra-labs/pilgrimage-planner-api/internal/app/plans"
	"github.com/yatra-labs/pilgrimage-planner-api/internal/domain"
	"github.com/yatra-labs/pilgrimage-planner-api/internal/ports/out/catalog"
	"github.com/yatra-labs/pilgrimage-planner-api/internal/ports/out/clock"
	"github.com/yatra-labs/pilgrimage-planner-api/internal/ports/out/idempotency"
)

// maxBodyBytes bounds request bodies; plans with a few hundred items fit easily.
const maxBodyBytes = 1 << 20

// Server holds the HTTP handlers.
type Server struct {
	catalog catalog.Catalog
	plans   *plans.Service
	idem    idempotency.Store
	clock   clock.Clock
	logger  *zap.Logger

	defaultLang string
}

type ServerOptions struct {
	Catalog         catalog.Catalog
	Plans           *plans.Service
	Idem            idempotency.Store
	Clock           clock.Clock
	Logger          *zap.Logger
	DefaultLanguage string
}

func NewServer(opts ServerOptions) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	lang := opts.DefaultLanguage
	if lang == "" {
		lang = domain.DefaultLanguage
	}
	return &Server{
		catalog:     opts.Catalog,
		plans:       opts.Plans,
		idem:        opts.Idem,
		clock:       opts.Clock,
		logger:      logger.Named("httpapi"),
		defaultLang: lang,
	}
}

// language is the language resolved by RequestLanguage, or the server default.
func (s *Server) language(r *http.Request) string {
	if lang, ok := LanguageFromContext(r.Context()); ok {
		return lang
	}
	return s.defaultLang
}

func (s *Server) owner(w http.ResponseWriter, r *http.Request) (domain.OwnerID, bool) {
	sub, ok := SubjectFromContext(r.Context())
	if !ok {
		writeError(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "missing subject", nil)
		return "", false
	}
	return domain.OwnerFromSubject(domain.SubjectID(sub)), true
}

// readBody reads the raw request body, bounded by maxBodyBytes.
func readBody(w http.ResponseWriter, r *http.Request) ([]byte, bool) {
	b, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, r, http.StatusRequestEntityTooLarge, "BODY_TOO_LARGE", "request body too large", nil)
			return nil, false
		}
		writeError(w, r, http.StatusBadRequest, "BAD_REQUEST", "could not read request body", nil)
		return nil, false
	}
	return b, true
}

func decodeBody(w http.ResponseWriter, r *http.Request, raw []byte, v any) bool {
	if len(strings.TrimSpace(string(raw))) == 0 {
		writeError(w, r, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "missing request body", nil)
		return false
	}
	if err := json.Unmarshal(raw, v); err != nil {
		writeError(w, r, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "invalid JSON body", map[string]any{"reason": err.Error()})
		return false
	}
	return true
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	raw, ok := readBody(w, r)
	if !ok {
		return false
	}
	return decodeBody(w, r, raw, v)
}

// resolveItems turns client item references into planned items.
// It writes the error response itself and reports false on failure.
func (s *Server) resolveItems(w http.ResponseWriter, r *http.Request, refs []ItemRef) ([]domain.PlannedItem, bool) {
	items, dropped, err := plans.ResolveItems(r.Context(), s.catalog, itemInputsFromOAS(refs))
	if err != nil {
		if ae := (*plans.Error)(nil); errors.As(err, &ae) {
			writeError(w, r, ae.Status, ae.Code, ae.Message, ae.Details)
			return nil, false
		}
		s.logger.Error("Failed to resolve items", zap.Error(err))
		writeError(w, r, http.StatusServiceUnavailable, "CATALOG_UNAVAILABLE", "catalog is unavailable", nil)
		return nil, false
	}
	if len(dropped) > 0 {
		unknown := make([]string, 0, len(dropped))
		for _, ref := range dropped {
			unknown = append(unknown, ref.String())
		}
		writeError(w, r, http.StatusUnprocessableEntity, "UNKNOWN_ITEMS", "items reference unknown catalog entities", map[string]any{"items": unknown})
		return nil, false
	}
	return items, true
}
