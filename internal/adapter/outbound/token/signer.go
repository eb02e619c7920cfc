package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/uniedit/checkout/internal/port/outbound"
)

// ErrInvalidToken is returned when a token fails verification.
var ErrInvalidToken = errors.New("invalid token")

// SignerConfig holds token signing configuration.
type SignerConfig struct {
	Secret string
	// TTL bounds the lifetime of signed tokens. Zero issues tokens without expiry.
	TTL time.Duration
}

// jwtSigner implements outbound.SignerPort with HS256 tokens.
// The salt is carried as the audience, the value as the subject.
type jwtSigner struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewSigner creates a token signer.
func NewSigner(cfg *SignerConfig) outbound.SignerPort {
	return &jwtSigner{
		secret: []byte(cfg.Secret),
		ttl:    cfg.TTL,
		now:    time.Now,
	}
}

// Sign returns a token carrying value under salt.
func (s *jwtSigner) Sign(salt, value string) (string, error) {
	now := s.now()
	claims := jwt.RegisteredClaims{
		Subject:  value,
		Audience: jwt.ClaimStrings{salt},
		IssuedAt: jwt.NewNumericDate(now),
	}
	if s.ttl > 0 {
		claims.ExpiresAt = jwt.NewNumericDate(now.Add(s.ttl))
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Unsign verifies a token signed under salt and returns its value.
func (s *jwtSigner) Unsign(salt, token string) (string, error) {
	claims := &jwt.RegisteredClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithAudience(salt),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !parsed.Valid {
		return "", ErrInvalidToken
	}
	return claims.Subject, nil
}

// Compile-time check
var _ outbound.SignerPort = (*jwtSigner)(nil)
