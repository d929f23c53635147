package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// RouterOptions configures optional router behavior.
type RouterOptions struct {
	// AuthMiddleware authenticates API routes. /healthz is always public.
	AuthMiddleware func(http.Handler) http.Handler

	// RateLimiter throttles authenticated requests per subject. Nil disables it.
	RateLimiter *RateLimiter

	// Logger enables request logging at DEBUG level.
	Logger *zap.Logger
}

// NewRouter constructs the API HTTP router without authentication.
func NewRouter(api *Server) http.Handler {
	return NewRouterWithOptions(api, RouterOptions{})
}

// NewRouterWithOptions constructs the API HTTP router.
//
// This is a thin adapter: handlers decode JSON, call the planner engine or the
// plans service, and encode the result.
func NewRouterWithOptions(api *Server, opts RouterOptions) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(RequestLanguage)
	r.Use(RequestLogger(opts.Logger))
	r.Use(middleware.Recoverer)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, r, http.StatusNotFound, "NOT_FOUND", "route not found", nil)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, r, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "method not allowed", nil)
	})

	// Health endpoint is unauthenticated (used for infra checks).
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Group(func(r chi.Router) {
		if opts.AuthMiddleware != nil {
			r.Use(opts.AuthMiddleware)
		}
		r.Use(opts.RateLimiter.Middleware)

		r.Route("/catalog", func(r chi.Router) {
			r.Get("/cities", api.ListCities)
			r.Get("/cities/{cityId}/places", api.ListPlacesByCity)
			r.Get("/events", api.ListEvents)
			r.Get("/routes", api.ListRoutes)
			r.Get("/search", api.SearchCatalog)
		})

		r.Route("/planner", func(r chi.Router) {
			r.Post("/candidates", api.SelectCandidates)
			r.Post("/groups", api.GroupItems)
			r.Post("/distribute", api.DistributeDates)
			r.Post("/reorder", api.ReorderItems)
		})

		r.Route("/plans", func(r chi.Router) {
			r.Get("/", api.ListPlans)
			r.Post("/", api.CreatePlan)
			r.Get("/{planId}", api.GetPlan)
			r.Put("/{planId}", api.ReplacePlan)
			r.Patch("/{planId}", api.UpdatePlanMeta)
			r.Delete("/{planId}", api.DeletePlan)
		})
	})

	return r
}
