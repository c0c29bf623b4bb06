package trips

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/tripdesk/tripdesk/internal/auth"
	"github.com/tripdesk/tripdesk/internal/platform/httpx"
)

// Handler wires HTTP endpoints for trips.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	guard     *auth.Guard
	validator *validator.Validate
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service *Service, guard *auth.Guard) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{logger: logger, service: service, guard: guard, validator: validator.New()}
}

// MountRoutes registers trip routes with their role policies.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.guard.Authenticated)
		r.Get("/", h.list)
		r.Get("/{id}", h.get)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.guard.RequireRole(auth.RoleAdmin))
		r.Post("/", h.create)
		r.Delete("/{id}", h.delete)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.guard.RequireRole(auth.RoleUser))
		r.Post("/{id}/applications", h.apply)
	})
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var input CreateTripInput
	if err := httpx.DecodeJSON(w, r, &input); err != nil {
		httpx.RespondError(w, err)
		return
	}
	if err := httpx.Validate(h.validator, input); err != nil {
		httpx.RespondError(w, err)
		return
	}
	id, err := h.service.Create(r.Context(), input)
	if err != nil {
		h.fail(w, "create trip", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, map[string]string{
		"message": "trip created successfully",
		"trip_id": id,
	})
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	trips, err := h.service.List(r.Context())
	if err != nil {
		h.fail(w, "list trips", err)
		return
	}
	httpx.JSON(w, http.StatusOK, trips)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	trip, err := h.service.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, "get trip", err)
		return
	}
	httpx.JSON(w, http.StatusOK, trip)
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.fail(w, "delete trip", err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"message": "trip deleted successfully"})
}

func (h *Handler) apply(w http.ResponseWriter, r *http.Request) {
	identity, _ := auth.IdentityFromContext(r.Context())
	app, err := h.service.Apply(r.Context(), chi.URLParam(r, "id"), identity.Subject)
	if err != nil {
		h.fail(w, "apply to trip", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, map[string]any{
		"message":        "individual application submitted",
		"application_id": app.ID,
		"status":         app.Status,
	})
}

func (h *Handler) fail(w http.ResponseWriter, op string, err error) {
	if !httpx.IsClientError(err) {
		h.logger.Error(op, slog.Any("error", err))
	}
	httpx.RespondError(w, err)
}
