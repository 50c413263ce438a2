package gate

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// SessionCookieName is the cookie the server keeps the gate session in.
const SessionCookieName = "frontdesk_session"

const verifyPath = "/api/verify-pin"

// SessionStatus is the body of GET /api/check-session.
type SessionStatus struct {
	Authenticated  bool `json:"authenticated"`
	RememberMe     bool `json:"remember_me,omitempty"`
	SessionExpired bool `json:"session_expired,omitempty"`
}

// VerifyResult is a successful POST /api/verify-pin.
type VerifyResult struct {
	Success    bool   `json:"success"`
	RememberMe bool   `json:"remember_me"`
	Error      string `json:"error,omitempty"`
}

// HTTPError is any other non-2xx answer from the API.
type HTTPError struct {
	StatusCode int
	Code       string
	Message    string
	Fields     map[string]string
}

func (e *HTTPError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("HTTP %d", e.StatusCode)
}

// errorBody covers both the gate's {success, error} shape and the
// {error, message, validation_errors} shape of the other endpoints.
type errorBody struct {
	Error            string            `json:"error"`
	Message          string            `json:"message"`
	ValidationErrors map[string]string `json:"validation_errors"`
	RetryAfter       int               `json:"retry_after"`
}

func (b errorBody) text() string {
	if b.Message != "" {
		return b.Message
	}
	return b.Error
}

// Client talks to the frontdesk API. The session cookie lives in its jar, so
// one Client is one browser tab.
type Client struct {
	baseURL *url.URL
	http    *http.Client
}

// NewClient returns a Client for baseURL. A nil httpClient gets a fresh one
// with its own cookie jar.
func NewClient(baseURL string, httpClient *http.Client) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("base url %q must be absolute", baseURL)
	}

	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}
	if httpClient.Jar == nil {
		jar, err := cookiejar.New(nil)
		if err != nil {
			return nil, err
		}
		httpClient.Jar = jar
	}

	return &Client{baseURL: u, http: httpClient}, nil
}

// SessionCookie returns the current session token, or "".
func (c *Client) SessionCookie() string {
	for _, ck := range c.http.Jar.Cookies(c.baseURL) {
		if ck.Name == SessionCookieName {
			return ck.Value
		}
	}
	return ""
}

// RestoreSessionCookie puts a previously saved token back into the jar.
func (c *Client) RestoreSessionCookie(value string) {
	if value == "" {
		return
	}
	c.http.Jar.SetCookies(c.baseURL, []*http.Cookie{{Name: SessionCookieName, Value: value, Path: "/"}})
}

func (c *Client) CheckSession(ctx context.Context) (*SessionStatus, error) {
	var status SessionStatus
	if err := c.DoJSON(ctx, http.MethodGet, "/api/check-session", nil, &status); err != nil {
		return nil, err
	}
	return &status, nil
}

// VerifyPIN submits the secret. A lockout comes back as *RateLimitError and a
// wrong secret as *AuthError.
func (c *Client) VerifyPIN(ctx context.Context, secret string, rememberMe bool) (*VerifyResult, error) {
	req := map[string]any{"pin": secret, "remember_me": rememberMe}

	var result VerifyResult
	err := c.DoJSON(ctx, http.MethodPost, verifyPath, req, &result)

	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return nil, &AuthError{StatusCode: httpErr.StatusCode, Message: httpErr.Message}
	}
	if err != nil {
		return nil, err
	}

	if !result.Success {
		switch {
		case IsLockoutMessage(result.Error):
			return nil, rateLimitError(result.Error, 0)
		case result.Error == "":
			return nil, &AuthError{StatusCode: http.StatusOK, Message: "Invalid PIN"}
		default:
			return nil, &AuthError{StatusCode: http.StatusOK, Message: result.Error}
		}
	}
	return &result, nil
}

func (c *Client) Logout(ctx context.Context) error {
	return c.DoJSON(ctx, http.MethodPost, "/api/logout", nil, nil)
}

// DoJSON sends in as JSON and decodes a 2xx body into out. Failures map onto
// the gate error types.
func (c *Client) DoJSON(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL.String()+path, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return &NetworkError{Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return &NetworkError{Err: err}
	}

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		if out == nil || len(raw) == 0 {
			return nil
		}
		if err := json.Unmarshal(raw, out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
		return nil
	}

	var eb errorBody
	_ = json.Unmarshal(raw, &eb)

	switch {
	// on verify-pin a 401 is a wrong secret, not an expired session
	case resp.StatusCode == http.StatusUnauthorized && path != verifyPath:
		return &SessionExpiredError{Path: path}
	case resp.StatusCode == http.StatusTooManyRequests || IsLockoutMessage(eb.text()):
		retryAfter := eb.RetryAfter
		if secs, err := strconv.Atoi(resp.Header.Get("Retry-After")); err == nil {
			retryAfter = secs
		}
		return rateLimitError(eb.text(), retryAfter)
	case resp.StatusCode >= 500:
		return &NetworkError{StatusCode: resp.StatusCode, Err: errors.New(eb.text())}
	default:
		return &HTTPError{
			StatusCode: resp.StatusCode,
			Code:       eb.Error,
			Message:    eb.text(),
			Fields:     eb.ValidationErrors,
		}
	}
}

func rateLimitError(message string, retryAfterSecs int) *RateLimitError {
	if message == "" {
		message = "Too many attempts. Please try again later."
	}
	minutes, ok := ParseLockoutMinutes(message)
	if !ok && retryAfterSecs > 0 {
		minutes = int(math.Ceil(float64(retryAfterSecs) / 60))
	}
	return &RateLimitError{Minutes: minutes, Message: message}
}
