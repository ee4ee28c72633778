package crypto

import (
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHashReader(t *testing.T) {
	t.Run("matches direct hash and tracks size", func(t *testing.T) {
		content := "campground photo bytes"
		hr := NewHashReader(strings.NewReader(content))

		read, err := io.ReadAll(hr)
		require.NoError(t, err)
		require.Equal(t, content, string(read))

		require.Equal(t, ComputeSHA256([]byte(content)), hr.SHA256())
		require.Equal(t, int64(len(content)), hr.Size())
	})

	t.Run("empty input", func(t *testing.T) {
		hr := NewHashReader(strings.NewReader(""))
		_, err := io.ReadAll(hr)
		require.NoError(t, err)

		require.Equal(t, ComputeSHA256(nil), hr.SHA256())
		require.Zero(t, hr.Size())
	})
}
