package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/tripdesk/tripdesk/internal/auth"
	"github.com/tripdesk/tripdesk/internal/leaders"
	"github.com/tripdesk/tripdesk/internal/observability"
	"github.com/tripdesk/tripdesk/internal/platform/httpx"
	"github.com/tripdesk/tripdesk/internal/rooms"
	"github.com/tripdesk/tripdesk/internal/transport"
	"github.com/tripdesk/tripdesk/internal/trips"
	"github.com/tripdesk/tripdesk/jobs"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger           *slog.Logger
	Config           *Config
	Metrics          *observability.Metrics
	Guard            *auth.Guard
	AuthHandler      *auth.Handler
	TripsHandler     *trips.Handler
	TransportHandler *transport.Handler
	RoomsHandler     *rooms.Handler
	LeadersHandler   *leaders.Handler
	JobHandler       *jobs.Handler
}

// NewRouter constructs the chi.Router with Tripdesk defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:  params.Logger,
		Config:  params.Config,
		Metrics: params.Metrics,
	}) {
		r.Use(mw)
	}

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		httpx.Problem(w, http.StatusNotFound, "Not Found", "no route for "+r.URL.Path)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		httpx.Problem(w, http.StatusMethodNotAllowed, "Method Not Allowed", r.Method+" is not supported here")
	})

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		httpx.JSON(w, http.StatusOK, map[string]string{"message": "Welcome to Tripdesk"})
	})
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())

	if params.AuthHandler != nil {
		r.Route("/auth", func(ar chi.Router) {
			ar.Use(CredentialRateLimit(params.Config))
			params.AuthHandler.MountRoutes(ar, params.Guard)
		})
		r.Route("/admin", func(ar chi.Router) {
			ar.Use(params.Guard.RequireRole(auth.RoleAdmin))
			params.AuthHandler.MountAdminRoutes(ar)
			if params.JobHandler != nil {
				ar.Route("/jobs", params.JobHandler.MountRoutes)
			}
		})
	}
	if params.TripsHandler != nil {
		r.Route("/trips", params.TripsHandler.MountRoutes)
	}
	if params.TransportHandler != nil {
		r.Route("/transport", params.TransportHandler.MountRoutes)
	}
	if params.RoomsHandler != nil {
		r.Route("/rooms", params.RoomsHandler.MountRoutes)
	}
	if params.LeadersHandler != nil {
		r.Route("/leaders", params.LeadersHandler.MountRoutes)
	}

	return r
}
