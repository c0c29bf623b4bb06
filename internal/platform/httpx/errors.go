// Package httpx provides HTTP response utilities.
package httpx

import (
	"errors"
	"net/http"

	"github.com/tripdesk/tripdesk/internal/shared"
)

// RespondError maps domain errors to HTTP responses using RFC7807.
// Authentication failures use fixed details so wrapped causes never reach the client.
func RespondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, shared.ErrInvalidCredentials):
		Problem(w, http.StatusUnauthorized, "Invalid Credentials", "invalid credentials")
	case errors.Is(err, shared.ErrExpiredToken):
		w.Header().Set("WWW-Authenticate", `Bearer error="invalid_token", error_description="token expired"`)
		Problem(w, http.StatusUnauthorized, "Expired Token", "token expired")
	case errors.Is(err, shared.ErrInvalidToken):
		w.Header().Set("WWW-Authenticate", `Bearer error="invalid_token"`)
		Problem(w, http.StatusUnauthorized, "Invalid Token", "invalid token")
	case errors.Is(err, shared.ErrForbidden):
		Problem(w, http.StatusForbidden, "Forbidden", "insufficient role")
	case errors.Is(err, shared.ErrAlreadyRegistered):
		Problem(w, http.StatusConflict, "Already Registered", "identity already registered")
	case errors.Is(err, shared.ErrConflict):
		Problem(w, http.StatusConflict, "Conflict", err.Error())
	case errors.Is(err, shared.ErrValidation):
		Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
	case errors.Is(err, shared.ErrNotFound):
		Problem(w, http.StatusNotFound, "Not Found", err.Error())
	default:
		Problem(w, http.StatusInternalServerError, "Internal Error", "")
	}
}

// IsClientError reports whether err maps to a 4xx response.
func IsClientError(err error) bool {
	for _, target := range []error{
		shared.ErrInvalidCredentials,
		shared.ErrExpiredToken,
		shared.ErrInvalidToken,
		shared.ErrForbidden,
		shared.ErrAlreadyRegistered,
		shared.ErrConflict,
		shared.ErrValidation,
		shared.ErrNotFound,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
