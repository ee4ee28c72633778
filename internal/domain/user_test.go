package domain

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDeriveDisplayName(t *testing.T) {
	tests := []struct {
		email string
		want  string
	}{
		{"hiker@example.com", "hiker"},
		{"first.last@example.com", "first.last"},
		{"@example.com", ""},
		{"no-at-sign", ""},
		{"", ""},
	}

	for _, tt := range tests {
		require.Equal(t, tt.want, DeriveDisplayName(tt.email), "email %q", tt.email)
	}
}

func TestUser_Handle(t *testing.T) {
	name := "hiker"

	u := &User{Email: "hiker@example.com", DisplayName: &name}
	require.Equal(t, "hiker", u.Handle())

	u.DisplayName = nil
	require.Equal(t, "hiker@example.com", u.Handle())

	empty := ""
	u.DisplayName = &empty
	require.Equal(t, "hiker@example.com", u.Handle())
}
