package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/BradenHooton/frontdesk/internal/auth"
	"github.com/BradenHooton/frontdesk/internal/models"
	pkgauth "github.com/BradenHooton/frontdesk/pkg/auth"
	pkglogger "github.com/BradenHooton/frontdesk/pkg/logger"
)

// SessionRevocationRepository persists logged-out session IDs.
type SessionRevocationRepository interface {
	RevokeSession(ctx context.Context, jti string, expiresAt time.Time) error
	IsSessionRevoked(ctx context.Context, jti string) (bool, error)
}

// GateResult is a successful verification: the token to set as cookie and its claims.
type GateResult struct {
	Token  string
	Claims *models.SessionClaims
}

// GateService verifies the shared dashboard secret and manages gate sessions.
type GateService struct {
	policy      pkgauth.SecretPolicy
	verifier    auth.SecretVerifier
	rateLimit   *RateLimitService
	tm          *auth.TokenManager
	revokeRepo  SessionRevocationRepository
	timing      *auth.TimingDelay
	logger      *slog.Logger
	auditLogger *pkglogger.AuditLogger
}

func NewGateService(
	policy pkgauth.SecretPolicy,
	verifier auth.SecretVerifier,
	rateLimit *RateLimitService,
	tm *auth.TokenManager,
	revokeRepo SessionRevocationRepository,
	timing *auth.TimingDelay,
	logger *slog.Logger,
	auditLogger *pkglogger.AuditLogger,
) *GateService {
	return &GateService{
		policy:      policy,
		verifier:    verifier,
		rateLimit:   rateLimit,
		tm:          tm,
		revokeRepo:  revokeRepo,
		timing:      timing,
		logger:      logger,
		auditLogger: auditLogger,
	}
}

// Policy is the secret policy the gate enforces.
func (s *GateService) Policy() pkgauth.SecretPolicy { return s.policy }

// VerifySecret checks secret for the client at ipAddress. Policy violations
// wrap models.ErrBadRequest, a wrong secret is models.ErrInvalidSecret, and an
// active lockout (including the one this attempt triggers) is a *LockoutError.
func (s *GateService) VerifySecret(ctx context.Context, secret string, rememberMe bool, ipAddress, userAgent string) (*GateResult, error) {
	if err := s.policy.Validate(secret); err != nil {
		return nil, fmt.Errorf("%w: %w", models.ErrBadRequest, err)
	}

	start := time.Now()

	status, err := s.rateLimit.CheckLockout(ctx, ipAddress)
	if err != nil {
		return nil, err
	}
	if status.Locked {
		s.timing.WaitFrom(start, false)
		s.audit("pin_verify", ipAddress, userAgent, false, "locked_out")
		return nil, &LockoutError{Remaining: status.Remaining}
	}

	if !s.verifier.Verify(secret) {
		reason := "invalid_secret"
		if err := s.rateLimit.RecordAttempt(ctx, ipAddress, userAgent, false, &reason); err != nil {
			s.logger.Error("failed to record gate attempt", slog.Any("error", err))
		}
		s.timing.WaitFrom(start, false)
		s.audit("pin_verify", ipAddress, userAgent, false, reason)

		// the attempt that reaches the limit is already answered as a lockout
		after, err := s.rateLimit.CheckLockout(ctx, ipAddress)
		if err == nil && after.Locked {
			s.audit("gate_lockout", ipAddress, userAgent, false, "max_attempts_reached")
			return nil, &LockoutError{Remaining: after.Remaining}
		}
		return nil, models.ErrInvalidSecret
	}

	if err := s.rateLimit.RecordAttempt(ctx, ipAddress, userAgent, true, nil); err != nil {
		s.logger.Error("failed to record gate attempt", slog.Any("error", err))
	}

	token, claims, err := s.tm.IssueSession(rememberMe)
	if err != nil {
		s.logger.Error("failed to issue session", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	s.audit("pin_verify", ipAddress, userAgent, true, "")
	s.logger.Info("gate session issued", slog.Bool("remember_me", rememberMe))

	return &GateResult{Token: token, Claims: claims}, nil
}

// CheckSession reports the state of the session token from the cookie.
// A presented token that is expired or revoked sets SessionExpired.
func (s *GateService) CheckSession(ctx context.Context, token string) (*models.SessionStatus, error) {
	if token == "" {
		return &models.SessionStatus{Authenticated: false}, nil
	}

	claims, err := s.tm.ValidateSession(token)
	if err != nil {
		if errors.Is(err, models.ErrSessionExpired) {
			return &models.SessionStatus{SessionExpired: true}, nil
		}
		return &models.SessionStatus{Authenticated: false}, nil
	}

	revoked, err := s.revokeRepo.IsSessionRevoked(ctx, claims.ID)
	if err != nil {
		s.logger.Error("session revocation check failed", slog.Any("error", err))
		return nil, fmt.Errorf("check session revocation: %w", err)
	}
	if revoked {
		return &models.SessionStatus{SessionExpired: true}, nil
	}

	return &models.SessionStatus{
		Authenticated: true,
		RememberMe:    claims.RememberMe,
	}, nil
}

// Logout revokes the session behind token. Unknown or expired tokens are a no-op.
func (s *GateService) Logout(ctx context.Context, token, ipAddress string) error {
	if token == "" {
		return nil
	}

	claims, err := s.tm.ValidateSession(token)
	if err != nil {
		return nil
	}

	if err := s.revokeRepo.RevokeSession(ctx, claims.ID, claims.ExpiresAt.Time); err != nil {
		s.logger.Error("failed to revoke session", slog.Any("error", err))
		return fmt.Errorf("revoke session: %w", err)
	}

	s.audit("logout", ipAddress, "", true, "")
	return nil
}

func (s *GateService) audit(event, ip, ua string, success bool, reason string) {
	if s.auditLogger == nil {
		return
	}
	s.auditLogger.LogGateAttempt(pkglogger.AuditEvent{
		EventType:     event,
		IPAddress:     ip,
		UserAgent:     ua,
		Success:       success,
		FailureReason: reason,
	})
}
