package transport

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/tripdesk/tripdesk/internal/auth"
	"github.com/tripdesk/tripdesk/internal/platform/httpx"
)

// Handler wires the transport selection endpoint.
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

// MountRoutes registers transport routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.With(h.guard.RequireRole(auth.RoleUser)).Post("/select", h.selectMode)
}

type selectRequest struct {
	TripID string `json:"trip_id" validate:"required,max=64"`
	Mode   string `json:"mode" validate:"required,oneof=bus flight train"`
}

func (h *Handler) selectMode(w http.ResponseWriter, r *http.Request) {
	var req selectRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	if err := httpx.Validate(h.validator, req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	identity, _ := auth.IdentityFromContext(r.Context())
	sel, err := h.service.Select(r.Context(), identity.Subject, req.TripID, Mode(req.Mode))
	if err != nil {
		if !httpx.IsClientError(err) {
			h.logger.Error("select transport", slog.Any("error", err))
		}
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, map[string]any{
		"message": "transport mode '" + string(sel.Mode) + "' selected for " + sel.Email,
		"id":      sel.ID,
		"details": sel.Details,
	})
}
