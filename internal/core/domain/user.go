package domain

import (
	"fmt"
	"strings"
	"time"
)

// Role is the permission level of an account.
type Role string

const (
	RoleUser     Role = "user"
	RoleUploader Role = "uploader"
	RoleAdmin    Role = "admin"
)

// Roles lists every assignable role in ascending order of privilege.
func Roles() []Role {
	return []Role{RoleUser, RoleUploader, RoleAdmin}
}

// ParseRole converts text into a Role. Matching is exact; anything outside
// the closed set returns ErrInvalidRole.
func ParseRole(s string) (Role, error) {
	for _, r := range Roles() {
		if string(r) == s {
			return r, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidRole, s)
}

// RoleList renders the role set for prompts, e.g. "user, uploader, admin".
func RoleList() string {
	names := make([]string, 0, len(Roles()))
	for _, r := range Roles() {
		names = append(names, string(r))
	}
	return strings.Join(names, ", ")
}

// MaxPasswordBytes is the longest password the digest accepts. bcrypt
// rejects anything longer.
const MaxPasswordBytes = 72

// ValidatePassword checks a plaintext password before it is hashed.
func ValidatePassword(password string) error {
	if len(password) > MaxPasswordBytes {
		return fmt.Errorf("%w: %d bytes, at most %d allowed", ErrPasswordTooLong, len(password), MaxPasswordBytes)
	}
	return nil
}

// AccountField names a single mutable attribute of an account.
type AccountField string

const (
	FieldRole            AccountField = "role"
	FieldPasswordHash    AccountField = "password_hash"
	FieldExplicitConsent AccountField = "explicit_consent"
	FieldAPIKey          AccountField = "api_key"
)

// User models an account of the podcast server.
//
// Username is the natural key: every dependent store references the account
// by username rather than by ID, so a username must not change while any
// dependent row still references it.
type User struct {
	ID              int64     `json:"id" validate:"gte=0"`
	Username        string    `json:"username" validate:"required,max=255"`
	Role            Role      `json:"role" validate:"required,oneof=user uploader admin"`
	PasswordHash    string    `json:"-" validate:"required"`
	ExplicitConsent bool      `json:"explicit_consent"`
	CreatedAt       time.Time `json:"created_at" validate:"required"`
	APIKey          string    `json:"api_key,omitempty" validate:"omitempty,len=32,hexadecimal"`
}

// HasPassword reports whether a password digest has been set.
func (u *User) HasPassword() bool {
	return u.PasswordHash != ""
}
