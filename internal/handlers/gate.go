package handlers

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/BradenHooton/frontdesk/internal/auth"
	"github.com/BradenHooton/frontdesk/internal/models"
	"github.com/BradenHooton/frontdesk/internal/services"
	pkgauth "github.com/BradenHooton/frontdesk/pkg/auth"
	pkghttp "github.com/BradenHooton/frontdesk/pkg/http"
)

// GateServiceInterface defines the session gate business logic
type GateServiceInterface interface {
	Policy() pkgauth.SecretPolicy
	VerifySecret(ctx context.Context, secret string, rememberMe bool, ipAddress, userAgent string) (*services.GateResult, error)
	CheckSession(ctx context.Context, token string) (*models.SessionStatus, error)
	Logout(ctx context.Context, token, ipAddress string) error
}

// GateHandler serves the PIN gate in front of the dashboard
type GateHandler struct {
	service  GateServiceInterface
	cookies  auth.CookieConfig
	ipConfig *pkghttp.IPConfig
	logger   *slog.Logger
}

func NewGateHandler(service GateServiceInterface, cookies auth.CookieConfig, ipConfig *pkghttp.IPConfig, logger *slog.Logger) *GateHandler {
	return &GateHandler{
		service:  service,
		cookies:  cookies,
		ipConfig: ipConfig,
		logger:   logger,
	}
}

// VerifyPINRequest is the body of POST /api/verify-pin
type VerifyPINRequest struct {
	PIN        string `json:"pin"`
	RememberMe bool   `json:"remember_me"`
}

// GateResponse is the {success, remember_me?, error?} shape of the gate endpoints
type GateResponse struct {
	Success    bool   `json:"success"`
	RememberMe *bool  `json:"remember_me,omitempty"`
	Error      string `json:"error,omitempty"`
}

func writeGateError(w http.ResponseWriter, status int, message string) {
	pkghttp.WriteJSON(w, status, GateResponse{Success: false, Error: message})
}

// VerifyPIN handles POST /api/verify-pin
func (h *GateHandler) VerifyPIN(w http.ResponseWriter, r *http.Request) {
	var req VerifyPINRequest
	if err := pkghttp.DecodeJSON(w, r, &req); err != nil {
		writeGateError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	ipAddress := pkghttp.ExtractClientIP(r, h.ipConfig)
	userAgent := r.Header.Get("User-Agent")

	result, err := h.service.VerifySecret(r.Context(), req.PIN, req.RememberMe, ipAddress, userAgent)
	if err != nil {
		var lockout *services.LockoutError
		var policyErr *pkgauth.PolicyError
		switch {
		case errors.As(err, &lockout):
			w.Header().Set("Retry-After", strconv.Itoa(int(lockout.Remaining.Seconds())+1))
			writeGateError(w, http.StatusTooManyRequests, lockout.Error())
		case errors.As(err, &policyErr):
			writeGateError(w, http.StatusBadRequest, policyErr.Message)
		case errors.Is(err, models.ErrInvalidSecret):
			// a wrong secret is a normal answer; non-2xx is kept for lockout and bad input
			writeGateError(w, http.StatusOK, fmt.Sprintf("Invalid %s", secretNoun(h.service.Policy())))
		default:
			h.logger.Error("pin verification failed", slog.Any("error", err))
			writeGateError(w, http.StatusInternalServerError, "Internal server error")
		}
		return
	}

	auth.SetSessionCookie(w, result.Token, result.Claims, h.cookies)

	rememberMe := result.Claims.RememberMe
	pkghttp.WriteJSON(w, http.StatusOK, GateResponse{Success: true, RememberMe: &rememberMe})
}

// CheckSession handles GET /api/check-session
func (h *GateHandler) CheckSession(w http.ResponseWriter, r *http.Request) {
	status, err := h.service.CheckSession(r.Context(), auth.GetSessionCookie(r))
	if err != nil {
		h.logger.Error("session check failed", slog.Any("error", err))
		pkghttp.WriteError(w, http.StatusServiceUnavailable, "service_unavailable", "Unable to verify session")
		return
	}

	if status.SessionExpired {
		auth.ClearSessionCookie(w, h.cookies)
	}

	pkghttp.WriteJSON(w, http.StatusOK, status)
}

// Logout handles POST /api/logout
func (h *GateHandler) Logout(w http.ResponseWriter, r *http.Request) {
	ipAddress := pkghttp.ExtractClientIP(r, h.ipConfig)

	if err := h.service.Logout(r.Context(), auth.GetSessionCookie(r), ipAddress); err != nil {
		h.logger.Error("logout failed", slog.Any("error", err))
		writeGateError(w, http.StatusInternalServerError, "Logout failed")
		return
	}

	auth.ClearSessionCookie(w, h.cookies)
	pkghttp.WriteJSON(w, http.StatusOK, GateResponse{Success: true})
}

func secretNoun(p pkgauth.SecretPolicy) string {
	switch p {
	case pkgauth.PolicyShortNumeric:
		return "PIN"
	case pkgauth.PolicyFullPassword:
		return "password"
	default:
		return "secret"
	}
}
