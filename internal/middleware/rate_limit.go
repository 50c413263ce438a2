package middleware

import (
	"net/http"
	"strconv"
	"time"

	pkghttp "github.com/BradenHooton/frontdesk/pkg/http"
	"github.com/go-chi/httprate"
)

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	RequestsPerMinute int
	IPConfig          *pkghttp.IPConfig
}

// DefaultGateRateLimit caps PIN submissions. The lockout counts wrong PINs;
// this bounds raw request volume on top of it.
func DefaultGateRateLimit() RateLimitConfig {
	return RateLimitConfig{RequestsPerMinute: 20}
}

// DefaultChatRateLimit is the chatbot's 30 messages per minute per IP.
func DefaultChatRateLimit() RateLimitConfig {
	return RateLimitConfig{RequestsPerMinute: 30}
}

// Or returns c, or def with c's IP settings when c sets no usable limit.
func (c RateLimitConfig) Or(def RateLimitConfig) RateLimitConfig {
	if c.RequestsPerMinute > 0 {
		return c
	}
	def.IPConfig = c.IPConfig
	return def
}

type rateLimitResponse struct {
	Error      string `json:"error"`
	Message    string `json:"message"`
	RetryAfter int    `json:"retry_after"`
}

// RateLimitByIP limits requests per client IP over a one minute window. The
// 429 carries Retry-After both as a header and in the body.
func RateLimitByIP(config RateLimitConfig) func(next http.Handler) http.Handler {
	const window = time.Minute
	return httprate.Limit(
		config.RequestsPerMinute,
		window,
		httprate.WithKeyFuncs(func(r *http.Request) (string, error) {
			return pkghttp.ExtractClientIP(r, config.IPConfig), nil
		}),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Retry-After", strconv.Itoa(int(window.Seconds())))
			pkghttp.WriteJSON(w, http.StatusTooManyRequests, rateLimitResponse{
				Error:      "rate_limit_exceeded",
				Message:    "Too many requests. Please slow down.",
				RetryAfter: int(window.Seconds()),
			})
		}),
	)
}
