package auth

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// JWTService issues and verifies signed session tokens. Verification only
// proves the token was minted here for a user id; whether the session is
// still live is decided against the user's stored token set.
type JWTService interface {
	// GenerateToken creates a signed token bound to userID.
	GenerateToken(ctx context.Context, userID uuid.UUID) (string, error)

	// ValidateToken checks the signature (and expiry, when present) and
	// returns the decoded claims.
	ValidateToken(ctx context.Context, tokenString string) (*Claims, error)
}

// Claims is the decoded content of a session token.
type Claims struct {
	UserID   uuid.UUID
	Subject  string
	IssuedAt time.Time
	// ExpiresAt is zero for tokens issued without a lifetime.
	ExpiresAt time.Time
	ID        string
}
