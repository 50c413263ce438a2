package services

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/BradenHooton/frontdesk/internal/models"
)

// RateLimitRepository is the attempt store behind the gate lockout.
type RateLimitRepository interface {
	RecordAttempt(ctx context.Context, attempt *models.LoginAttempt) error
	GetFailedAttemptCountByIP(ctx context.Context, ipAddress string, since time.Time) (int, error)
	GetRecentFailureTimeByIP(ctx context.Context, ipAddress string, since time.Time) (*time.Time, error)
	GetLastSuccessTimeByIP(ctx context.Context, ipAddress string) (*time.Time, error)
}

type RateLimitConfig struct {
	MaxFailedAttempts int
	LockoutDuration   time.Duration
	LookbackWindow    time.Duration
	AttemptRetention  time.Duration
}

// LockoutStatus describes one IP's standing with the gate.
type LockoutStatus struct {
	Locked         bool
	FailedAttempts int
	Remaining      time.Duration
}

// RemainingMinutes rounds the lockout up to whole minutes, never below one.
func (l *LockoutStatus) RemainingMinutes() int {
	return RemainingMinutes(l.Remaining)
}

func RemainingMinutes(d time.Duration) int {
	m := int(math.Ceil(d.Minutes()))
	if m < 1 {
		return 1
	}
	return m
}

// LockoutError is returned while an IP is locked out of the gate.
type LockoutError struct {
	Remaining time.Duration
}

func (e *LockoutError) Error() string {
	m := RemainingMinutes(e.Remaining)
	unit := "minutes"
	if m == 1 {
		unit = "minute"
	}
	return fmt.Sprintf("Too many failed attempts. Please try again in %d %s.", m, unit)
}

func (e *LockoutError) Unwrap() error { return models.ErrRateLimitExceeded }

// RateLimitService counts failed gate attempts per IP. Failures only count
// since the last success inside the lookback window; a lockout ends
// LockoutDuration after the most recent failure.
type RateLimitService struct {
	repo   RateLimitRepository
	config RateLimitConfig
	logger *slog.Logger
	now    func() time.Time
}

func NewRateLimitService(repo RateLimitRepository, config RateLimitConfig, logger *slog.Logger) *RateLimitService {
	if config.AttemptRetention < config.LookbackWindow {
		config.AttemptRetention = config.LookbackWindow * 2
	}
	return &RateLimitService{
		repo:   repo,
		config: config,
		logger: logger,
		now:    time.Now,
	}
}

// CheckLockout reports whether ipAddress may try a secret now. Store errors
// fail open so a database hiccup does not lock the owner out.
func (s *RateLimitService) CheckLockout(ctx context.Context, ipAddress string) (*LockoutStatus, error) {
	now := s.now()
	since := now.Add(-s.config.LookbackWindow)

	lastSuccess, err := s.repo.GetLastSuccessTimeByIP(ctx, ipAddress)
	if err != nil {
		s.logger.Error("failed to read last successful attempt", slog.Any("error", err))
		return &LockoutStatus{}, nil
	}
	if lastSuccess != nil && lastSuccess.After(since) {
		since = *lastSuccess
	}

	failed, err := s.repo.GetFailedAttemptCountByIP(ctx, ipAddress, since)
	if err != nil {
		s.logger.Error("failed to count failed attempts", slog.Any("error", err))
		return &LockoutStatus{}, nil
	}

	status := &LockoutStatus{FailedAttempts: failed}
	if failed < s.config.MaxFailedAttempts {
		return status, nil
	}

	recent, err := s.repo.GetRecentFailureTimeByIP(ctx, ipAddress, since)
	if err != nil {
		s.logger.Error("failed to read recent failure", slog.Any("error", err))
		return status, nil
	}
	if recent == nil {
		return status, nil
	}

	until := recent.Add(s.config.LockoutDuration)
	if !now.Before(until) {
		return status, nil
	}

	status.Locked = true
	status.Remaining = until.Sub(now)

	s.logger.Warn("gate locked for ip",
		slog.String("ip_address", ipAddress),
		slog.Int("failed_attempts", failed),
		slog.Duration("remaining", status.Remaining))

	return status, nil
}

// RecordAttempt stores the outcome of one verification.
func (s *RateLimitService) RecordAttempt(ctx context.Context, ipAddress, userAgent string, success bool, failureReason *string) error {
	now := s.now()
	return s.repo.RecordAttempt(ctx, &models.LoginAttempt{
		IPAddress:     ipAddress,
		UserAgent:     userAgent,
		AttemptTime:   now,
		Success:       success,
		FailureReason: failureReason,
		ExpiresAt:     now.Add(s.config.AttemptRetention),
	})
}
