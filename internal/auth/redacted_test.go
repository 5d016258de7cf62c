package auth

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedactedTokenNeverPrints(t *testing.T) {
	token := NewRedactedToken("super-secret-value-123456")

	assert.Equal(t, "[REDACTED]", token.String())
	assert.Equal(t, "[REDACTED]", fmt.Sprintf("%s", token))
	assert.Equal(t, "[REDACTED]", fmt.Sprintf("%v", token))
	assert.NotContains(t, fmt.Sprintf("%#v", token), "super-secret")
}

func TestRedactedTokenValue(t *testing.T) {
	token := NewRedactedToken("super-secret")
	assert.Equal(t, "super-secret", token.Value())
	assert.False(t, token.IsEmpty())
	assert.True(t, NewRedactedToken("").IsEmpty())
}

func TestRedactedTokenJSON(t *testing.T) {
	payload := struct {
		Token RedactedToken `json:"token"`
	}{Token: NewRedactedToken("super-secret")}

	data, err := json.Marshal(payload)
	require.NoError(t, err)
	assert.JSONEq(t, `{"token":"[REDACTED]"}`, string(data))
}

func TestPreview(t *testing.T) {
	tests := []struct {
		name  string
		value string
		want  string
	}{
		{"empty", "", "[unset]"},
		{"short", "abc", "[REDACTED]"},
		{"boundary", "0123456789abcdef", "[REDACTED]"},
		{"long", "eyJhbGciOiJSUzI1NiJ9.payload.signature", "eyJhbGci...ture"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NewRedactedToken(tt.value).Preview())
		})
	}
}
