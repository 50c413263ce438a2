package middleware

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	pkghttp "github.com/BradenHooton/frontdesk/pkg/http"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRateLimitByIP_ChatLimit(t *testing.T) {
	handler := RateLimitByIP(RateLimitConfig{RequestsPerMinute: 3})(okHandler())

	for i := 0; i < 3; i++ {
		req := httptest.NewRequest("POST", "/api/chatbot", nil)
		req.RemoteAddr = "203.0.113.9:5555"
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)
		require.Equal(t, http.StatusOK, w.Code, "request %d", i+1)
	}

	req := httptest.NewRequest("POST", "/api/chatbot", nil)
	req.RemoteAddr = "203.0.113.9:5555"
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "rate_limit_exceeded", body["error"])
	assert.Equal(t, float64(60), body["retry_after"])
	assert.Equal(t, "60", w.Header().Get("Retry-After"))

	// other clients are unaffected
	other := httptest.NewRequest("POST", "/api/chatbot", nil)
	other.RemoteAddr = "198.51.100.2:5555"
	w = httptest.NewRecorder()
	handler.ServeHTTP(w, other)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRateLimitByIP_TrustedProxyKey(t *testing.T) {
	handler := RateLimitByIP(RateLimitConfig{
		RequestsPerMinute: 1,
		IPConfig:          &pkghttp.IPConfig{TrustedProxies: []string{"10.0.0.0/8"}},
	})(okHandler())

	send := func(forwardedFor string) int {
		req := httptest.NewRequest("POST", "/api/verify-pin", nil)
		req.RemoteAddr = "10.0.0.1:443"
		req.Header.Set("X-Forwarded-For", forwardedFor)
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)
		return w.Code
	}

	assert.Equal(t, http.StatusOK, send("203.0.113.1"))
	assert.Equal(t, http.StatusOK, send("203.0.113.2"), "clients behind the proxy are keyed separately")
	assert.Equal(t, http.StatusTooManyRequests, send("203.0.113.1"))
}

func TestCORS(t *testing.T) {
	handler := CORS(DefaultCORSConfig([]string{"https://panel.example.es"}))(okHandler())

	req := httptest.NewRequest("GET", "/api/appointments", nil)
	req.Header.Set("Origin", "https://panel.example.es")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	assert.Equal(t, "https://panel.example.es", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))

	req = httptest.NewRequest("GET", "/api/appointments", nil)
	req.Header.Set("Origin", "https://evil.example")
	w = httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest("OPTIONS", "/api/appointments/1", nil)
	req.Header.Set("Origin", "https://panel.example.es")
	req.Header.Set("Access-Control-Request-Method", "PUT")
	w = httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestOriginGuard(t *testing.T) {
	handler := OriginGuard([]string{"https://panel.example.es/"}, slog.New(slog.NewJSONHandler(io.Discard, nil)))(okHandler())

	tests := []struct {
		name    string
		method  string
		origin  string
		referer string
		want    int
	}{
		{"safe method", "GET", "https://evil.example", "", http.StatusOK},
		{"no origin", "POST", "", "", http.StatusOK},
		{"allowed origin", "DELETE", "https://panel.example.es", "", http.StatusOK},
		{"same host", "PUT", "http://example.com", "", http.StatusOK},
		{"cross origin", "POST", "https://evil.example", "", http.StatusForbidden},
		{"cross referer", "POST", "", "https://evil.example/page", http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, "http://example.com/api/appointments/1", nil)
			if tt.origin != "" {
				req.Header.Set("Origin", tt.origin)
			}
			if tt.referer != "" {
				req.Header.Set("Referer", tt.referer)
			}
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, req)
			assert.Equal(t, tt.want, w.Code)
		})
	}
}

func TestSecureLogger_RedactsSensitiveQuery(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))
	handler := SecureLogger(logger, nil)(okHandler())

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/api/check-session?pin=1997", nil))

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "http_request", entry["msg"])
	assert.Equal(t, "/api/check-session?[REDACTED]", entry["path"])
	assert.NotContains(t, buf.String(), "1997")
	assert.Equal(t, float64(200), entry["status"])
}

func TestRateLimitConfig_Or(t *testing.T) {
	ipCfg := &pkghttp.IPConfig{}

	set := RateLimitConfig{RequestsPerMinute: 5, IPConfig: ipCfg}
	assert.Equal(t, 5, set.Or(DefaultGateRateLimit()).RequestsPerMinute)

	got := RateLimitConfig{IPConfig: ipCfg}.Or(DefaultChatRateLimit())
	assert.Equal(t, DefaultChatRateLimit().RequestsPerMinute, got.RequestsPerMinute)
	assert.Same(t, ipCfg, got.IPConfig)
}
