package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/phrazzld/task-manager-api/internal/domain"
)

// UserStore defines the interface for user data persistence, including the
// user's set of live session tokens and the stored avatar.
type UserStore interface {
	// Create saves a new user. The caller must have set HashedPassword.
	// Returns ErrEmailExists if the email is already taken.
	Create(ctx context.Context, user *domain.User) error

	// GetByID retrieves a user by their unique ID, with its live tokens.
	// The avatar is not loaded.
	// Returns ErrUserNotFound if the user does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)

	// GetByEmail retrieves a user by their (normalized) email address.
	// Returns ErrUserNotFound if the user does not exist.
	GetByEmail(ctx context.Context, email string) (*domain.User, error)

	// GetByIDAndToken retrieves a user only if token is in its live set.
	// Returns ErrUserNotFound if either the user or the token is missing.
	GetByIDAndToken(ctx context.Context, id uuid.UUID, token string) (*domain.User, error)

	// Update persists name, email, age and hashed password.
	// Returns ErrUserNotFound if the user does not exist.
	// Returns ErrEmailExists if updating to an email that already exists.
	Update(ctx context.Context, user *domain.User) error

	// Delete removes a user and, through the schema, its tokens.
	// Returns ErrUserNotFound if the user does not exist.
	Delete(ctx context.Context, id uuid.UUID) error

	// AddToken appends a session token to the user's live set.
	AddToken(ctx context.Context, userID uuid.UUID, token string) error

	// RemoveToken removes exactly one token from the live set.
	// Returns ErrTokenNotFound if it was not present.
	RemoveToken(ctx context.Context, userID uuid.UUID, token string) error

	// ClearTokens empties the user's live set.
	ClearTokens(ctx context.Context, userID uuid.UUID) error

	// SetAvatar stores the canonical avatar bytes. A nil avatar clears it.
	// Returns ErrUserNotFound if the user does not exist.
	SetAvatar(ctx context.Context, userID uuid.UUID, avatar []byte) error

	// GetAvatar returns the stored avatar bytes.
	// Returns ErrAvatarNotFound if the user does not exist or has no avatar.
	GetAvatar(ctx context.Context, userID uuid.UUID) ([]byte, error)

	// WithTx returns a new UserStore instance that uses the provided transaction.
	WithTx(tx *sql.Tx) UserStore
}
