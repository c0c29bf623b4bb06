package rooms

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/tripdesk/tripdesk/internal/auth"
	"github.com/tripdesk/tripdesk/internal/platform/httpx"
)

// Handler wires the room allotment endpoint.
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

// MountRoutes registers room routes. Admins and leaders may allot.
func (h *Handler) MountRoutes(r chi.Router) {
	r.With(h.guard.RequireAnyRole(auth.RoleAdmin, auth.RoleLeader)).Post("/allot", h.allot)
}

func (h *Handler) allot(w http.ResponseWriter, r *http.Request) {
	var req Allotment
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	if err := httpx.Validate(h.validator, req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	identity, _ := auth.IdentityFromContext(r.Context())
	allotment, err := h.service.Allot(r.Context(), req, identity.Subject)
	if err != nil {
		if !httpx.IsClientError(err) {
			h.logger.Error("allot room", slog.Any("error", err))
		}
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, map[string]any{
		"message":      "room " + allotment.RoomNumber + " allotted successfully for " + allotment.Email,
		"room_details": allotment,
	})
}
