package auth

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"slices"
	"strings"

	"github.com/tripdesk/tripdesk/internal/platform/httpx"
	"github.com/tripdesk/tripdesk/internal/shared"
)

// EventRecorder counts authentication outcomes.
type EventRecorder interface {
	RecordAuthEvent(event, outcome string)
}

// Guard authenticates bearer tokens and enforces role policy.
type Guard struct {
	codec  *Codec
	logger *slog.Logger
	events EventRecorder
}

// NewGuard constructs a Guard. logger and events may be nil.
func NewGuard(codec *Codec, logger *slog.Logger, events EventRecorder) *Guard {
	if logger == nil {
		logger = slog.Default()
	}
	return &Guard{codec: codec, logger: logger, events: events}
}

// Authenticate decodes a presented token into an identity. Codec errors pass
// through unchanged.
func (g *Guard) Authenticate(token string) (Identity, error) {
	if strings.TrimSpace(token) == "" {
		return Identity{}, shared.ErrInvalidToken
	}
	claims, err := g.codec.Decode(token)
	if err != nil {
		return Identity{}, err
	}
	return claims.Identity(), nil
}

// Authorize requires an exact role match. Roles do not inherit from each other.
func Authorize(identity Identity, required Role) error {
	if identity.Role != required {
		return shared.ErrForbidden
	}
	return nil
}

// AuthorizeAny requires the identity's role to be one of allowed.
func AuthorizeAny(identity Identity, allowed ...Role) error {
	if slices.Contains(allowed, identity.Role) {
		return nil
	}
	return shared.ErrForbidden
}

// BearerToken extracts the token from an Authorization header value.
func BearerToken(header string) (string, bool) {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

// Authenticated rejects requests without a valid bearer token and stores the
// caller's identity in the request context.
func (g *Guard) Authenticated(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := IdentityFromContext(r.Context()); ok {
			next.ServeHTTP(w, r)
			return
		}
		token, ok := BearerToken(r.Header.Get("Authorization"))
		if !ok {
			g.record("authenticate", "missing")
			httpx.RespondError(w, shared.ErrInvalidToken)
			return
		}
		identity, err := g.Authenticate(token)
		if err != nil {
			outcome := "invalid"
			if errors.Is(err, shared.ErrExpiredToken) {
				outcome = "expired"
			}
			g.record("authenticate", outcome)
			httpx.RespondError(w, err)
			return
		}
		g.record("authenticate", "ok")
		next.ServeHTTP(w, r.WithContext(ContextWithIdentity(r.Context(), identity)))
	})
}

// RequireRole authenticates the caller then requires an exact role match.
func (g *Guard) RequireRole(role Role) func(http.Handler) http.Handler {
	return g.RequireAnyRole(role)
}

// RequireAnyRole authenticates the caller then requires one of roles.
func (g *Guard) RequireAnyRole(roles ...Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		authorized := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity, _ := IdentityFromContext(r.Context())
			if err := AuthorizeAny(identity, roles...); err != nil {
				g.record("authorize", "forbidden")
				g.logger.Debug("role check failed",
					slog.String("subject", identity.Subject),
					slog.String("role", identity.Role.String()),
					slog.String("path", r.URL.Path))
				httpx.RespondError(w, err)
				return
			}
			next.ServeHTTP(w, r)
		})
		return g.Authenticated(authorized)
	}
}

func (g *Guard) record(event, outcome string) {
	if g.events != nil {
		g.events.RecordAuthEvent(event, outcome)
	}
}

type identityContextKey struct{}

// ContextWithIdentity stores a verified identity in context.
func ContextWithIdentity(ctx context.Context, identity Identity) context.Context {
	return context.WithValue(ctx, identityContextKey{}, identity)
}

// IdentityFromContext returns the identity placed by the guard.
func IdentityFromContext(ctx context.Context) (Identity, bool) {
	identity, ok := ctx.Value(identityContextKey{}).(Identity)
	return identity, ok
}
