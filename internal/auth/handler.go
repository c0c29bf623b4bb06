package auth

import (
	"errors"
	"log/slog"
	"mime"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/tripdesk/tripdesk/internal/platform/httpx"
	"github.com/tripdesk/tripdesk/internal/shared"
)

// Handler wires HTTP endpoints for authentication flows.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	validator *validator.Validate
	events    EventRecorder
}

// NewHandler constructs a Handler instance. events may be nil.
func NewHandler(logger *slog.Logger, service *Service, events EventRecorder) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		logger:    logger,
		service:   service,
		validator: validator.New(),
		events:    events,
	}
}

// MountRoutes registers public auth routes and the identity endpoint.
func (h *Handler) MountRoutes(r chi.Router, guard *Guard) {
	r.Post("/login", h.handleLogin)
	r.Post("/register", h.handleRegister)
	r.With(guard.Authenticated).Get("/me", h.handleMe)
}

// MountAdminRoutes registers credential management routes. Callers must gate
// them behind the admin role.
func (h *Handler) MountAdminRoutes(r chi.Router) {
	r.Post("/users", h.handleAdminCreateUser)
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,max=254"`
	Password string `json:"password" validate:"required,max=72"`
}

type registerRequest struct {
	Email    string `json:"email" validate:"required,email,max=254"`
	Password string `json:"password" validate:"required,min=8,max=72"`
	Role     string `json:"role" validate:"omitempty,oneof=user leader"`
	Profile
}

type adminUserRequest struct {
	Email    string `json:"email" validate:"required,email,max=254"`
	Password string `json:"password" validate:"required,min=8,max=72"`
	Role     string `json:"role" validate:"required,oneof=admin user leader"`
	Profile
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	req, err := h.decodeLogin(w, r)
	if err == nil {
		err = httpx.Validate(h.validator, req)
	}
	if err != nil {
		h.record("login", "rejected")
		httpx.RespondError(w, err)
		return
	}

	session, err := h.service.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, shared.ErrInvalidCredentials):
			// A wrapped cause means the stored hash is corrupt.
			if err != shared.ErrInvalidCredentials { //nolint:errorlint
				h.logger.Warn("login with unreadable credential", slog.Any("error", err))
			}
			h.record("login", "invalid_credentials")
		default:
			h.record("login", "error")
			h.logger.Error("login", slog.Any("error", err))
		}
		httpx.RespondError(w, err)
		return
	}
	h.record("login", "ok")
	httpx.JSON(w, http.StatusOK, session)
}

// decodeLogin accepts a JSON body or an OAuth2 password form.
func (h *Handler) decodeLogin(w http.ResponseWriter, r *http.Request) (loginRequest, error) {
	var req loginRequest
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "application/x-www-form-urlencoded" || mediaType == "multipart/form-data" {
		if err := httpx.DecodeForm(w, r, mediaType); err != nil {
			return req, err
		}
		if r.MultipartForm != nil {
			defer func() { _ = r.MultipartForm.RemoveAll() }()
		}
		req.Email = r.PostFormValue("username")
		if req.Email == "" {
			req.Email = r.PostFormValue("email")
		}
		req.Password = r.PostFormValue("password")
		return req, nil
	}
	err := httpx.DecodeJSON(w, r, &req)
	return req, err
}

func (h *Handler) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	if err := httpx.Validate(h.validator, req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	role := RoleUser
	if req.Role != "" {
		role = Role(req.Role)
	}
	h.register(w, r, RegisterInput{
		Email:    req.Email,
		Password: req.Password,
		Role:     role,
		Profile:  req.Profile,
	}, "register")
}

func (h *Handler) handleAdminCreateUser(w http.ResponseWriter, r *http.Request) {
	var req adminUserRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	if err := httpx.Validate(h.validator, req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	h.register(w, r, RegisterInput{
		Email:    req.Email,
		Password: req.Password,
		Role:     Role(req.Role),
		Profile:  req.Profile,
	}, "admin_create_user")
}

func (h *Handler) register(w http.ResponseWriter, r *http.Request, input RegisterInput, event string) {
	registered, err := h.service.Register(r.Context(), input)
	if err != nil {
		switch {
		case errors.Is(err, shared.ErrAlreadyRegistered):
			h.record(event, "duplicate")
		case httpx.IsClientError(err):
			h.record(event, "rejected")
		default:
			h.record(event, "error")
			h.logger.Error(event, slog.Any("error", err))
		}
		httpx.RespondError(w, err)
		return
	}
	h.record(event, "ok")
	h.logger.Info("credential registered",
		slog.String("identity_key", registered.IdentityKey),
		slog.String("role", registered.Role.String()))
	httpx.JSON(w, http.StatusCreated, map[string]any{
		"message":      "registered successfully",
		"id":           registered.ID,
		"identity_key": registered.IdentityKey,
		"role":         registered.Role,
	})
}

func (h *Handler) handleMe(w http.ResponseWriter, r *http.Request) {
	identity, ok := IdentityFromContext(r.Context())
	if !ok {
		httpx.RespondError(w, shared.ErrInvalidToken)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"message": "Hello, " + identity.Role.String() + "!",
		"subject": identity.Subject,
		"role":    identity.Role,
	})
}

func (h *Handler) record(event, outcome string) {
	if h.events != nil {
		h.events.RecordAuthEvent(event, outcome)
	}
}
