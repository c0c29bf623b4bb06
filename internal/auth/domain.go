package auth

import (
	"fmt"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/tripdesk/tripdesk/internal/shared"
)

// Role is the closed set of roles a credential can hold.
type Role string

const (
	RoleAdmin  Role = "admin"
	RoleUser   Role = "user"
	RoleLeader Role = "leader"
)

// TokenTypeBearer is the token type marker returned on login.
const TokenTypeBearer = "bearer"

// Valid reports whether r is a recognised role.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleUser, RoleLeader:
		return true
	}
	return false
}

func (r Role) String() string { return string(r) }

// ParseRole converts raw input into a Role, rejecting unknown values.
func ParseRole(raw string) (Role, error) {
	role := Role(strings.TrimSpace(raw))
	if !role.Valid() {
		return "", fmt.Errorf("%w: unknown role %q", shared.ErrValidation, raw)
	}
	return role, nil
}

// NormalizeIdentityKey trims and lowercases an identity key so lookups and
// uniqueness checks ignore letter case. Lowercasing keeps characters such as
// ß intact, so distinct mailboxes never share a key. A Caser is stateful and
// is built per call.
func NormalizeIdentityKey(raw string) string {
	return cases.Lower(language.Und).String(strings.TrimSpace(raw))
}

// Profile holds the personal details captured at registration.
type Profile struct {
	FullName    string `json:"full_name" validate:"required,max=200"`
	FamilyName  string `json:"family_name,omitempty" validate:"max=200"`
	FatherName  string `json:"father_name,omitempty" validate:"max=200"`
	MotherName  string `json:"mother_name,omitempty" validate:"max=200"`
	PhoneNumber string `json:"phone_number,omitempty" validate:"max=32"`
	Address     string `json:"address,omitempty" validate:"max=500"`
	Gothra      string `json:"gothra,omitempty" validate:"max=100"`
	Age         int    `json:"age,omitempty" validate:"gte=0,lte=150"`
	Gender      string `json:"gender,omitempty" validate:"max=32"`
	BloodGroup  string `json:"blood_group,omitempty" validate:"max=8"`
	Occupation  string `json:"occupation,omitempty" validate:"max=100"`
}

// Credential is the persisted login record. PasswordHash is never serialised
// outside the store.
type Credential struct {
	ID           string    `json:"-"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"password_hash"`
	Role         Role      `json:"role"`
	Profile      Profile   `json:"profile"`
	CreatedAt    time.Time `json:"created_at"`
}

// Identity is the authenticated caller derived from a verified token.
type Identity struct {
	Subject string `json:"subject"`
	Role    Role   `json:"role"`
}

// Claims is the payload signed into a token.
type Claims struct {
	Subject   string
	Role      Role
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// Identity returns the identity carried by the claims.
func (c Claims) Identity() Identity {
	return Identity{Subject: c.Subject, Role: c.Role}
}

// Session is the result of a successful login.
type Session struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	ExpiresAt   time.Time `json:"expires_at"`
	Role        Role      `json:"role"`
}

// RegisterInput carries a registration request.
type RegisterInput struct {
	Email    string
	Password string
	Role     Role
	Profile  Profile
}

// Registered confirms a created credential. It never carries the password or hash.
type Registered struct {
	ID          string `json:"id"`
	IdentityKey string `json:"identity_key"`
	Role        Role   `json:"role"`
}
