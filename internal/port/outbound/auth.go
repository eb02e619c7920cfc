package outbound

import (
	"time"

	"github.com/google/uuid"
)

// AccessClaims are the claims carried by a user access token.
type AccessClaims struct {
	UserID  uuid.UUID
	Email   string
	IsStaff bool
}

// AccessTokenPort issues and validates user access tokens.
type AccessTokenPort interface {
	// GenerateAccessToken issues a token for the user and returns its expiry.
	GenerateAccessToken(userID uuid.UUID, email string, isStaff bool) (string, time.Time, error)

	// ValidateAccessToken parses a token and returns its claims.
	ValidateAccessToken(token string) (*AccessClaims, error)
}
