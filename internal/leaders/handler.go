package leaders

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/tripdesk/tripdesk/internal/auth"
	"github.com/tripdesk/tripdesk/internal/platform/httpx"
)

// Handler wires leader roster endpoints.
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

// MountRoutes registers leader routes. All of them are admin-only.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.guard.RequireRole(auth.RoleAdmin))
		r.Post("/bulk", h.registerBulk)
		r.Delete("/{id}", h.delete)
	})
}

type bulkRequest struct {
	Leaders []Leader `validate:"required,min=1,max=500,dive"`
}

func (h *Handler) registerBulk(w http.ResponseWriter, r *http.Request) {
	var req bulkRequest
	if err := httpx.DecodeJSON(w, r, &req.Leaders); err != nil {
		httpx.RespondError(w, err)
		return
	}
	if err := httpx.Validate(h.validator, req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	ids, err := h.service.RegisterBulk(r.Context(), req.Leaders)
	if err != nil {
		h.fail(w, "register leaders", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, map[string]any{
		"message":    "leaders registered successfully",
		"leader_ids": ids,
	})
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.fail(w, "delete leader", err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"message": "leader deleted successfully"})
}

func (h *Handler) fail(w http.ResponseWriter, op string, err error) {
	if !httpx.IsClientError(err) {
		h.logger.Error(op, slog.Any("error", err))
	}
	httpx.RespondError(w, err)
}
