package http_test

import (
	"net/http/httptest"
	"strings"
	"testing"

	pkghttp "github.com/BradenHooton/frontdesk/pkg/http"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractClientIP(t *testing.T) {
	trusted := &pkghttp.IPConfig{TrustedProxies: []string{"10.0.0.0/8", "::1/128"}}

	tests := []struct {
		name       string
		remoteAddr string
		xff        string
		xri        string
		config     *pkghttp.IPConfig
		want       string
	}{
		{"direct client ignores headers", "203.0.113.10:54321", "1.2.3.4", "192.168.1.1", trusted, "203.0.113.10"},
		{"trusted proxy uses forwarded for", "10.0.0.5:54321", "203.0.113.42, 10.0.0.5", "", trusted, "203.0.113.42"},
		{"trusted proxy falls back to real ip", "10.0.0.5:1", "", "203.0.113.7", trusted, "203.0.113.7"},
		{"trusted proxy skips garbage", "10.0.0.5:1", "not-an-ip", "", trusted, "10.0.0.5"},
		{"ipv6 proxy", "[::1]:54321", "2001:db8::1", "", trusted, "2001:db8::1"},
		{"nil config", "203.0.113.10:1", "1.2.3.4", "", nil, "203.0.113.10"},
		{"no port", "203.0.113.11", "", "", nil, "203.0.113.11"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/", nil)
			req.RemoteAddr = tt.remoteAddr
			if tt.xff != "" {
				req.Header.Set("X-Forwarded-For", tt.xff)
			}
			if tt.xri != "" {
				req.Header.Set("X-Real-IP", tt.xri)
			}
			assert.Equal(t, tt.want, pkghttp.ExtractClientIP(req, tt.config))
		})
	}
}

func TestDecodeJSON(t *testing.T) {
	var dst struct {
		Pin string `json:"pin"`
	}

	req := httptest.NewRequest("POST", "/", strings.NewReader(`{"pin":"1997"}`))
	require.NoError(t, pkghttp.DecodeJSON(httptest.NewRecorder(), req, &dst))
	assert.Equal(t, "1997", dst.Pin)

	req = httptest.NewRequest("POST", "/", strings.NewReader(""))
	err := pkghttp.DecodeJSON(httptest.NewRecorder(), req, &dst)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "empty")

	req = httptest.NewRequest("POST", "/", strings.NewReader("{"))
	assert.Error(t, pkghttp.DecodeJSON(httptest.NewRecorder(), req, &dst))
}
