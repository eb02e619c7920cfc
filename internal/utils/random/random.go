package random

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"math/big"
)

// Charsets for random codes.
const (
	CharsetAlphanumeric  = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"
	CharsetUpperAlphaNum = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
)

// String generates a random string of length characters drawn from charset.
// An empty charset falls back to CharsetAlphanumeric.
func String(length int, charset string) (string, error) {
	if length <= 0 {
		return "", nil
	}
	if charset == "" {
		charset = CharsetAlphanumeric
	}

	result := make([]byte, length)
	charsetLen := big.NewInt(int64(len(charset)))
	for i := range result {
		n, err := rand.Int(rand.Reader, charsetLen)
		if err != nil {
			return "", fmt.Errorf("generate random index: %w", err)
		}
		result[i] = charset[n.Int64()]
	}
	return string(result), nil
}

// OrderCode generates an uppercase alphanumeric code for order numbers.
func OrderCode(length int) (string, error) {
	return String(length, CharsetUpperAlphaNum)
}

// SecureToken generates a URL-safe token of exactly length characters.
func SecureToken(length int) (string, error) {
	if length <= 0 {
		return "", nil
	}
	bytes := make([]byte, base64.RawURLEncoding.DecodedLen(length)+1)
	if _, err := rand.Read(bytes); err != nil {
		return "", fmt.Errorf("generate random bytes: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(bytes)[:length], nil
}
