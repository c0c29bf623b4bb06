package shared

import "errors"

var (
	// ErrNotFound indicates resource not found.
	ErrNotFound = errors.New("not found")
	// ErrInvalidCredentials indicates login failure. Unknown accounts and wrong
	// passwords both map here.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrAlreadyRegistered indicates the identity key is taken.
	ErrAlreadyRegistered = errors.New("already registered")
	// ErrInvalidToken covers malformed, unsigned, tampered or wrong-algorithm tokens.
	ErrInvalidToken = errors.New("invalid token")
	// ErrExpiredToken indicates a correctly signed token past its expiry.
	ErrExpiredToken = errors.New("token expired")
	// ErrForbidden indicates an authenticated caller lacking the required role.
	ErrForbidden = errors.New("forbidden")
	// ErrConflict indicates a uniqueness violation on a non-credential record.
	ErrConflict = errors.New("conflict")
	// ErrValidation indicates malformed input.
	ErrValidation = errors.New("validation failed")
)
