package auth

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/tripdesk/tripdesk/internal/shared"
)

// Service wraps authentication business rules.
type Service struct {
	repo   Repository
	hasher Hasher
	codec  *Codec
	now    func() time.Time

	dummyOnce sync.Once
	dummyHash string
}

// NewService constructs a new Service.
func NewService(repo Repository, hasher Hasher, codec *Codec) *Service {
	return &Service{repo: repo, hasher: hasher, codec: codec, now: time.Now}
}

// Codec exposes the token codec shared with the guard.
func (s *Service) Codec() *Codec { return s.codec }

// Login validates email/password credentials and issues a bearer token.
// Unknown accounts and wrong passwords fail identically.
func (s *Service) Login(ctx context.Context, email, password string) (Session, error) {
	key := NormalizeIdentityKey(email)
	cred, err := s.repo.FindByEmail(ctx, key)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			s.burnCompare(password)
			return Session{}, shared.ErrInvalidCredentials
		}
		return Session{}, fmt.Errorf("auth: lookup credential: %w", err)
	}

	ok, err := s.hasher.Verify(password, cred.PasswordHash)
	if err != nil {
		return Session{}, fmt.Errorf("%w: %v", shared.ErrInvalidCredentials, err)
	}
	if !ok {
		return Session{}, shared.ErrInvalidCredentials
	}

	token, expiresAt, err := s.codec.Encode(cred.Email, cred.Role)
	if err != nil {
		return Session{}, err
	}
	return Session{
		AccessToken: token,
		TokenType:   TokenTypeBearer,
		ExpiresAt:   expiresAt,
		Role:        cred.Role,
	}, nil
}

// burnCompare spends one bcrypt comparison so unknown accounts take as long
// as known ones.
func (s *Service) burnCompare(password string) {
	s.dummyOnce.Do(func() {
		s.dummyHash, _ = s.hasher.Hash("tripdesk-dummy-password")
	})
	if s.dummyHash != "" {
		_, _ = s.hasher.Verify(password, s.dummyHash)
	}
}

// Register creates a credential. Exactly one store write happens on success.
func (s *Service) Register(ctx context.Context, input RegisterInput) (Registered, error) {
	key := NormalizeIdentityKey(input.Email)
	if key == "" {
		return Registered{}, fmt.Errorf("%w: email required", shared.ErrValidation)
	}
	if input.Password == "" {
		return Registered{}, fmt.Errorf("%w: password required", shared.ErrValidation)
	}
	role := input.Role
	if role == "" {
		role = RoleUser
	}
	if !role.Valid() {
		return Registered{}, fmt.Errorf("%w: unknown role %q", shared.ErrValidation, role)
	}

	if _, err := s.repo.FindByEmail(ctx, key); err == nil {
		return Registered{}, shared.ErrAlreadyRegistered
	} else if !errors.Is(err, shared.ErrNotFound) {
		return Registered{}, fmt.Errorf("auth: lookup credential: %w", err)
	}

	hash, err := s.hasher.Hash(input.Password)
	if err != nil {
		return Registered{}, err
	}
	id, err := s.repo.Create(ctx, Credential{
		Email:        key,
		PasswordHash: hash,
		Role:         role,
		Profile:      input.Profile,
		CreatedAt:    s.now().UTC(),
	})
	if err != nil {
		return Registered{}, err
	}
	return Registered{ID: id, IdentityKey: key, Role: role}, nil
}

// EnsureAdmin registers an admin credential unless one already exists for email.
// It reports whether a credential was created.
func (s *Service) EnsureAdmin(ctx context.Context, email, password string) (bool, error) {
	_, err := s.Register(ctx, RegisterInput{
		Email:    email,
		Password: password,
		Role:     RoleAdmin,
		Profile:  Profile{FullName: "Administrator"},
	})
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, shared.ErrAlreadyRegistered):
		return false, nil
	default:
		return false, err
	}
}
