package token

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/uniedit/checkout/internal/port/outbound"
)

// AccessConfig holds access token configuration.
type AccessConfig struct {
	Secret string
	Expiry time.Duration
}

// DefaultAccessConfig returns default access token configuration.
func DefaultAccessConfig() *AccessConfig {
	return &AccessConfig{
		Expiry: 15 * time.Minute,
	}
}

// accessManager implements outbound.AccessTokenPort.
type accessManager struct {
	secret []byte
	expiry time.Duration
}

// NewAccessManager creates a new access token manager.
func NewAccessManager(cfg *AccessConfig) outbound.AccessTokenPort {
	if cfg == nil {
		cfg = DefaultAccessConfig()
	}
	return &accessManager{
		secret: []byte(cfg.Secret),
		expiry: cfg.Expiry,
	}
}

// GenerateAccessToken generates an access token.
func (m *accessManager) GenerateAccessToken(userID uuid.UUID, email string, isStaff bool) (string, time.Time, error) {
	expiresAt := time.Now().Add(m.expiry)

	claims := jwt.MapClaims{
		"sub":      userID.String(),
		"email":    email,
		"is_staff": isStaff,
		"exp":      expiresAt.Unix(),
		"iat":      time.Now().Unix(),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return signed, expiresAt, nil
}

// ValidateAccessToken validates an access token.
func (m *accessManager) ValidateAccessToken(tokenString string) (*outbound.AccessClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return m.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("parse token: %w", err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}

	sub, _ := claims["sub"].(string)
	email, _ := claims["email"].(string)
	isStaff, _ := claims["is_staff"].(bool)

	userID, err := uuid.Parse(sub)
	if err != nil {
		return nil, fmt.Errorf("invalid user ID in token")
	}

	return &outbound.AccessClaims{
		UserID:  userID,
		Email:   email,
		IsStaff: isStaff,
	}, nil
}

// Compile-time check
var _ outbound.AccessTokenPort = (*accessManager)(nil)
