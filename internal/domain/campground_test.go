package domain

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/require"
)

func TestCampground_IsOwnedBy(t *testing.T) {
	cg := &Campground{AuthorID: 7}
	require.True(t, cg.IsOwnedBy(7))
	require.False(t, cg.IsOwnedBy(8))

	// Legacy rows without an author are owned by no one.
	orphan := &Campground{AuthorID: 0}
	require.False(t, orphan.IsOwnedBy(0))
}

func TestCampground_Caption(t *testing.T) {
	t.Run("short description passes through", func(t *testing.T) {
		cg := &Campground{Description: "Tall trees."}
		require.Equal(t, "Tall trees.", cg.Caption())
	})

	t.Run("long description truncates at a word boundary", func(t *testing.T) {
		cg := &Campground{Description: strings.Repeat("granite walls ", 20)}
		caption := cg.Caption()
		require.LessOrEqual(t, len(caption), 83)
		require.True(t, strings.HasSuffix(caption, "..."))
		require.False(t, strings.HasSuffix(strings.TrimSuffix(caption, "..."), " "))
	})

	t.Run("multi-byte runes are never split", func(t *testing.T) {
		// No spaces, so truncation cannot fall back to a word boundary.
		cg := &Campground{Description: strings.Repeat("åäö", 40)}
		caption := cg.Caption()
		require.True(t, utf8.ValidString(caption))
		require.True(t, strings.HasSuffix(caption, "..."))
		require.Equal(t, 83, len([]rune(caption)))
	})
}

func TestValidRating(t *testing.T) {
	require.False(t, ValidRating(0))
	require.True(t, ValidRating(1))
	require.True(t, ValidRating(5))
	require.False(t, ValidRating(6))
	require.False(t, ValidRating(-1))
}
