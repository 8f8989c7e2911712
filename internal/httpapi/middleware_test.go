package httpapi

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsLocalOrigin(t *testing.T) {
	tests := []struct {
		origin string
		want   bool
	}{
		{"http://localhost", true},
		{"http://localhost:8501", true},
		{"http://127.0.0.1:3000", true},
		{"http://[::1]:8501", true},
		{"https://LOCALHOST", true},
		{"", false},
		{"localhost", false},
		{"http://localhost.attacker.example", false},
		{"http://127.0.0.1.evil.example", false},
		{"https://evil.example/?127.0.0.1", false},
		{"https://evil.example/localhost", false},
		{"http://localhost@evil.example", false},
		{"http://%zz", false},
	}

	for _, tt := range tests {
		t.Run(tt.origin, func(t *testing.T) {
			assert.Equal(t, tt.want, isLocalOrigin(tt.origin))
		})
	}
}

func TestIsSameOrigin(t *testing.T) {
	r := httptest.NewRequest("GET", "http://dash.internal:8501/ws", nil)

	assert.True(t, isSameOrigin("http://dash.internal:8501", r))
	assert.True(t, isSameOrigin("https://dash.internal:8501", r))
	assert.False(t, isSameOrigin("http://dash.internal", r))
	assert.False(t, isSameOrigin("http://dash.internal:8501.evil.example", r))
	assert.False(t, isSameOrigin("http://evil.example/?dash.internal:8501", r))
	assert.False(t, isSameOrigin("", r))
}
