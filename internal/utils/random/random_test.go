package random

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestString(t *testing.T) {
	t.Run("uses the charset", func(t *testing.T) {
		s, err := String(64, "ab")
		require.NoError(t, err)
		assert.Len(t, s, 64)
		assert.Empty(t, strings.Trim(s, "ab"))
	})

	t.Run("zero length", func(t *testing.T) {
		s, err := String(0, "")
		require.NoError(t, err)
		assert.Empty(t, s)
	})
}

func TestOrderCode(t *testing.T) {
	code, err := OrderCode(5)
	require.NoError(t, err)
	assert.Len(t, code, 5)
	assert.Empty(t, strings.Trim(code, CharsetUpperAlphaNum))
}

func TestSecureToken(t *testing.T) {
	for _, n := range []int{1, 16, 32, 33} {
		token, err := SecureToken(n)
		require.NoError(t, err)
		assert.Len(t, token, n)
		assert.NotContains(t, token, "=")
	}

	a, err := SecureToken(32)
	require.NoError(t, err)
	b, err := SecureToken(32)
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}
