package service

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHashPassword(t *testing.T) {
	t.Run("hash verifies against the original", func(t *testing.T) {
		hash, err := HashPassword("trailmix99")
		require.NoError(t, err)
		require.NotEqual(t, "trailmix99", hash)
		require.True(t, VerifyPassword(hash, "trailmix99"))
		require.False(t, VerifyPassword(hash, "trailmix98"))
	})

	t.Run("same password hashes differently", func(t *testing.T) {
		a, err := HashPassword("trailmix99")
		require.NoError(t, err)
		b, err := HashPassword("trailmix99")
		require.NoError(t, err)
		require.NotEqual(t, a, b)
	})

	t.Run("short password rejected", func(t *testing.T) {
		_, err := HashPassword("short")
		require.ErrorIs(t, err, ErrInvalidPassword)
	})
}
