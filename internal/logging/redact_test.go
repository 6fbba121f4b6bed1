package logging

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRedact(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "channel auth key",
			input:    "Authorization: authkey 0987654321",
			expected: "Authorization: [REDACTED]",
		},
		{
			name:     "bearer token",
			input:    "using Bearer eyJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9",
			expected: "using [REDACTED]",
		},
		{
			name:     "key assignment",
			input:    "auth_key=abcdef0123456789",
			expected: "auth_[REDACTED]",
		},
		{
			name:     "no sensitive data",
			input:    "hi **team**",
			expected: "hi **team**",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.expected, Redact(tt.input))
		})
	}
}

func TestRedactHeaders(t *testing.T) {
	h := http.Header{}
	h.Set("Authorization", "authkey 0987654321")
	h.Set("Content-Type", "application/json")

	got := RedactHeaders(h)
	require.Equal(t, RedactedValue, got["Authorization"])
	require.Equal(t, "application/json", got["Content-Type"])
}

func TestIsSensitiveField(t *testing.T) {
	require.True(t, IsSensitiveField("Authorization"))
	require.True(t, IsSensitiveField("feed.auth_key"))
	require.False(t, IsSensitiveField("Content-Type"))
}

func TestParseLevel(t *testing.T) {
	require.Equal(t, "debug", ParseLevel("debug").String())
	require.Equal(t, "warn", ParseLevel("warning").String())
	require.Equal(t, "info", ParseLevel("bogus").String())
	require.Equal(t, "info", ParseLevel("").String())
	require.Equal(t, "disabled", ParseLevel(" OFF ").String())
}
