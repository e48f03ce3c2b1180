package domain

import (
	"slices"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// Password rules. The upper bound is bcrypt's input limit.
const (
	MinPasswordLength = 6
	MaxPasswordLength = 72

	forbiddenPasswordFragment = "password"
)

var validate = validator.New()

// User represents a registered account.
type User struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Email string    `json:"email"`
	Age   int       `json:"age"`

	// Password is the plaintext password, only set between input parsing
	// and hashing. It is never persisted.
	Password       string `json:"-"`
	HashedPassword string `json:"-"`

	// Tokens is the set of live session tokens.
	Tokens []string `json:"-"`

	// Avatar holds the canonical PNG bytes. Stores populate it only when the
	// avatar is explicitly requested.
	Avatar []byte `json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// PublicUser is the only representation of a user that leaves the service.
type PublicUser struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Age       int       `json:"age"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewUser builds a validated user from registration input. Name and email
// are trimmed and the email is lower-cased. The plaintext password must be
// hashed by the caller before the user is stored.
func NewUser(name, email, password string, age int) (*User, error) {
	now := time.Now().UTC()
	user := &User{
		ID:        uuid.New(),
		Name:      strings.TrimSpace(name),
		Email:     NormalizeEmail(email),
		Age:       age,
		Password:  strings.TrimSpace(password),
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := user.Validate(); err != nil {
		return nil, err
	}
	return user, nil
}

// NormalizeEmail trims and lower-cases an email address so that lookups and
// the uniqueness constraint are case-insensitive.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Validate checks every user invariant.
func (u *User) Validate() error {
	if u.ID == uuid.Nil {
		return NewValidationError("id", "is required", ErrInvalidID)
	}
	if u.Name == "" {
		return NewValidationError("name", "is required", ErrEmptyContent)
	}
	if u.Email == "" {
		return NewValidationError("email", "is required", ErrInvalidEmail)
	}
	if err := validate.Var(u.Email, "email"); err != nil {
		return NewValidationError("email", "Email is invalid", ErrInvalidEmail)
	}
	if u.Age < 0 {
		return NewValidationError("age", "Age must be a positive number", ErrValidation)
	}

	if u.Password != "" {
		return ValidatePassword(u.Password)
	}
	if u.HashedPassword == "" {
		return NewValidationError("password", "is required", ErrInvalidPassword)
	}
	return nil
}

// ValidatePassword enforces the password rules on an already trimmed value.
func ValidatePassword(password string) error {
	switch {
	case len(password) < MinPasswordLength:
		return NewValidationError("password", "must be at least 6 characters long", ErrInvalidPassword)
	case len(password) > MaxPasswordLength:
		return NewValidationError("password", "must be at most 72 characters long", ErrInvalidPassword)
	case strings.Contains(strings.ToLower(password), forbiddenPasswordFragment):
		return NewValidationError("password", `Password cannot contain "password"`, ErrInvalidPassword)
	}
	return nil
}

// HasToken reports whether token is in the live set.
func (u *User) HasToken(token string) bool {
	return slices.Contains(u.Tokens, token)
}

// Public returns the redacted view of the user.
func (u *User) Public() PublicUser {
	return PublicUser{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Age:       u.Age,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

// UserPatch lists the profile fields a user may change. A nil field is left
// untouched.
type UserPatch struct {
	Name     *string
	Email    *string
	Password *string
	Age      *int
}

// IsEmpty reports whether the patch changes nothing.
func (p UserPatch) IsEmpty() bool {
	return p.Name == nil && p.Email == nil && p.Password == nil && p.Age == nil
}

// ApplyPatch returns a copy of u with the patch applied and validated. The
// receiver is never modified, so a rejected patch leaves no partial change.
func (u *User) ApplyPatch(p UserPatch) (*User, error) {
	updated := *u
	updated.Password = ""
	if p.Name != nil {
		updated.Name = strings.TrimSpace(*p.Name)
	}
	if p.Email != nil {
		updated.Email = NormalizeEmail(*p.Email)
	}
	if p.Password != nil {
		updated.Password = strings.TrimSpace(*p.Password)
		if updated.Password == "" {
			return nil, NewValidationError("password", "is required", ErrInvalidPassword)
		}
	}
	if p.Age != nil {
		updated.Age = *p.Age
	}

	if err := updated.Validate(); err != nil {
		return nil, err
	}
	updated.UpdatedAt = time.Now().UTC()
	return &updated, nil
}
