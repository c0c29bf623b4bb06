package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/tripdesk/tripdesk/internal/shared"
)

// DefaultTokenTTL applies when the codec is built with a non-positive TTL.
const DefaultTokenTTL = 30 * time.Minute

var signingMethod = jwt.SigningMethodHS256

type tokenClaims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// Codec signs and verifies HS256 tokens with one process-wide secret.
type Codec struct {
	secret []byte
	ttl    time.Duration
	issuer string
	now    func() time.Time
}

// CodecOption customises a Codec.
type CodecOption func(*Codec)

// WithClock overrides the time source.
func WithClock(now func() time.Time) CodecOption {
	return func(c *Codec) {
		if now != nil {
			c.now = now
		}
	}
}

// WithIssuer stamps and requires the iss claim.
func WithIssuer(issuer string) CodecOption {
	return func(c *Codec) { c.issuer = issuer }
}

// NewCodec builds a Codec. The secret must not be empty.
func NewCodec(secret string, ttl time.Duration, opts ...CodecOption) (*Codec, error) {
	if secret == "" {
		return nil, errors.New("auth: signing secret required")
	}
	if ttl < 0 {
		ttl = DefaultTokenTTL
	}
	c := &Codec{secret: []byte(secret), ttl: ttl, now: time.Now}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// TTL returns the configured token lifetime.
func (c *Codec) TTL() time.Duration { return c.ttl }

// Encode signs subject and role with an expiry of now plus the TTL.
func (c *Codec) Encode(subject string, role Role) (string, time.Time, error) {
	if subject == "" || !role.Valid() {
		return "", time.Time{}, fmt.Errorf("auth: encode: %w", shared.ErrValidation)
	}
	issuedAt := c.now()
	expiresAt := issuedAt.Add(c.ttl)
	claims := tokenClaims{
		Role: string(role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			Issuer:    c.issuer,
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}
	signed, err := jwt.NewWithClaims(signingMethod, claims).SignedString(c.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("auth: sign token: %w", err)
	}
	return signed, claims.ExpiresAt.Time, nil
}

// Decode verifies the signature and then the expiry of token. A correctly
// signed token at or past its expiry yields shared.ErrExpiredToken; every other
// failure yields shared.ErrInvalidToken.
func (c *Codec) Decode(token string) (Claims, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{signingMethod.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(c.now),
	}
	if c.issuer != "" {
		opts = append(opts, jwt.WithIssuer(c.issuer))
	}

	var parsed tokenClaims
	_, err := jwt.ParseWithClaims(token, &parsed, func(t *jwt.Token) (any, error) {
		if t.Method != signingMethod {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return c.secret, nil
	}, opts...)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return Claims{}, shared.ErrExpiredToken
		}
		return Claims{}, shared.ErrInvalidToken
	}

	role := Role(parsed.Role)
	if parsed.Subject == "" || !role.Valid() {
		return Claims{}, shared.ErrInvalidToken
	}
	out := Claims{
		Subject:   parsed.Subject,
		Role:      role,
		ExpiresAt: parsed.ExpiresAt.Time,
	}
	if parsed.IssuedAt != nil {
		out.IssuedAt = parsed.IssuedAt.Time
	}
	return out, nil
}
