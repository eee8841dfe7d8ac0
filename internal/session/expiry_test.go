package session

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestExpiry(t *testing.T) {
	t.Parallel()

	exp := fixedNow.Add(30 * 24 * time.Hour).Truncate(time.Second)

	tests := []struct {
		name  string
		token string
		want  time.Time
	}{
		{"jwt_with_exp", signed(t, exp), exp},
		{"opaque", "not-a-jwt", fixedNow.Add(time.Hour)},
		{"empty", "", fixedNow.Add(time.Hour)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Expiry(tt.token, fixedNow, time.Hour)
			require.True(t, tt.want.Equal(got), "want %v, got %v", tt.want, got)
		})
	}
}
