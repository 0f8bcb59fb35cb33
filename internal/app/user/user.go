/*
Package user defines the user record, its normalization and validation rules,
and the store capability the rest of the application depends on.
*/
package user

import (
	"context"
	"errors"
	"net/url"
	"regexp"
	"strings"
	"time"
)

// usernameRegex allows 3-30 characters: letters, numbers, spaces, underscores
// and hyphens, with an alphanumeric first and last character.
var usernameRegex = regexp.MustCompile(`^[a-zA-Z0-9]([a-zA-Z0-9_\- ]{1,28})[a-zA-Z0-9]$`)

// emailRegex is a deliberately loose shape check; the address is never mailed.
var emailRegex = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// Store errors. The Postgres implementation maps constraint violations onto
// these so handlers never inspect driver errors.
var (
	ErrNotFound          = errors.New("user not found")
	ErrDuplicateUsername = errors.New("username already in use")
	ErrDuplicateEmail    = errors.New("email already in use")
	ErrDuplicateGoogleID = errors.New("google account already linked")
)

// User is a persisted account record. A record carries a password hash, an
// external Google identity, or both; never neither.
type User struct {
	ID           int64
	Username     string
	Email        string
	PasswordHash string // empty for Google-only accounts
	GoogleID     string // empty for password-only accounts
	AvatarURL    string
	Bio          string
	Role         Role
	CreatedAt    time.Time
}

// HasPassword reports whether the account can authenticate with a password.
func (u *User) HasPassword() bool {
	return u.PasswordHash != ""
}

// PublicProfile is the restricted projection served to unauthenticated
// profile reads. It never includes the email or any credential material.
type PublicProfile struct {
	Username  string    `json:"username"`
	AvatarURL string    `json:"avatarUrl,omitempty"`
	Bio       string    `json:"bio,omitempty"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
}

// Public returns the restricted field projection of the user.
func (u *User) Public() PublicProfile {
	return PublicProfile{
		Username:  u.Username,
		AvatarURL: u.AvatarURL,
		Bio:       u.Bio,
		Role:      u.Role.String(),
		CreatedAt: u.CreatedAt,
	}
}

// Store is the persistence capability for user records.
type Store interface {
	// Create inserts the record and fills in ID and CreatedAt. Uniqueness
	// violations surface as ErrDuplicateUsername, ErrDuplicateEmail or
	// ErrDuplicateGoogleID.
	Create(ctx context.Context, u *User) error

	// GetByID returns the user or ErrNotFound.
	GetByID(ctx context.Context, id int64) (*User, error)

	// GetByUsername returns the user or ErrNotFound.
	GetByUsername(ctx context.Context, username string) (*User, error)

	// GetByIdentifier looks the user up by username or email.
	GetByIdentifier(ctx context.Context, identifier string) (*User, error)

	// GetByGoogleID returns the user linked to the Google identity, or ErrNotFound.
	GetByGoogleID(ctx context.Context, googleID string) (*User, error)

	// Update persists username, avatar, bio, role and password hash changes.
	Update(ctx context.Context, u *User) error
}

// NormalizeUsername trims surrounding whitespace; the canonical form is what
// gets persisted and compared.
func NormalizeUsername(username string) string {
	return strings.TrimSpace(username)
}

// NormalizeEmail trims and lowercases the address before persistence.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ValidUsername reports whether the (already normalized) username matches the
// allowed format.
func ValidUsername(username string) bool {
	return usernameRegex.MatchString(username)
}

// ValidEmail reports whether the (already normalized) address looks like an
// email address.
func ValidEmail(email string) bool {
	return emailRegex.MatchString(email)
}

// ValidAvatarURL accepts empty references and absolute http(s) URLs.
func ValidAvatarURL(avatarURL string) bool {
	if avatarURL == "" {
		return true
	}

	parsed, err := url.Parse(avatarURL)
	if err != nil {
		return false
	}

	return (parsed.Scheme == "http" || parsed.Scheme == "https") && parsed.Host != ""
}

// DefaultAvatarURL returns the generated avatar assigned to accounts created
// without one, seeded by the username.
func DefaultAvatarURL(username string) string {
	seed := url.QueryEscape(username)
	return "https://api.dicebear.com/9.x/adventurer-neutral/svg?seed=" + seed
}
