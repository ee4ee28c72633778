package crypto

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGenerateSessionToken(t *testing.T) {
	token, err := GenerateSessionToken()
	require.NoError(t, err)
	require.Len(t, token, SessionTokenBytes*2)
	require.True(t, ValidSessionToken(token))

	other, err := GenerateSessionToken()
	require.NoError(t, err)
	require.NotEqual(t, token, other)
}

func TestValidSessionToken(t *testing.T) {
	require.False(t, ValidSessionToken(""))
	require.False(t, ValidSessionToken("abc"))
	require.False(t, ValidSessionToken(string(make([]byte, SessionTokenBytes*2))))

	// Uppercase hex is rejected: tokens are emitted lowercase.
	token, err := GenerateSessionToken()
	require.NoError(t, err)
	upper := make([]byte, len(token))
	for i := range token {
		c := token[i]
		if c >= 'a' && c <= 'f' {
			c -= 'a' - 'A'
		}
		upper[i] = c
	}
	if string(upper) != token {
		require.False(t, ValidSessionToken(string(upper)))
	}
}
