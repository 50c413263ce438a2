package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/BradenHooton/frontdesk/internal/database"
	"github.com/BradenHooton/frontdesk/internal/models"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// LoginAttemptRepository stores gate attempts per client IP.
type LoginAttemptRepository struct {
	pool *pgxpool.Pool
}

func NewLoginAttemptRepository(db *database.DB) *LoginAttemptRepository {
	return &LoginAttemptRepository{pool: db.Pool}
}

func (r *LoginAttemptRepository) RecordAttempt(ctx context.Context, attempt *models.LoginAttempt) error {
	query := `
		INSERT INTO login_attempts (ip_address, user_agent, attempt_time, success, failure_reason, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	attemptTime := attempt.AttemptTime
	if attemptTime.IsZero() {
		attemptTime = time.Now()
	}

	_, err := r.pool.Exec(ctx, query,
		attempt.IPAddress,
		attempt.UserAgent,
		attemptTime,
		attempt.Success,
		attempt.FailureReason,
		attempt.ExpiresAt,
	)
	return database.MapPostgresError(err)
}

// GetFailedAttemptCountByIP counts failures from ipAddress at or after since.
func (r *LoginAttemptRepository) GetFailedAttemptCountByIP(ctx context.Context, ipAddress string, since time.Time) (int, error) {
	query := `
		SELECT COUNT(*) FROM login_attempts
		WHERE ip_address = $1 AND success = false AND attempt_time >= $2
	`

	return database.RetryRead(ctx, database.DefaultReadAttempts, database.DefaultReadBackoff,
		func(ctx context.Context) (int, error) {
			var count int
			err := r.pool.QueryRow(ctx, query, ipAddress, since).Scan(&count)
			return count, err
		})
}

// GetRecentFailureTimeByIP returns the most recent failure at or after since, or nil.
func (r *LoginAttemptRepository) GetRecentFailureTimeByIP(ctx context.Context, ipAddress string, since time.Time) (*time.Time, error) {
	query := `
		SELECT attempt_time FROM login_attempts
		WHERE ip_address = $1 AND success = false AND attempt_time >= $2
		ORDER BY attempt_time DESC
		LIMIT 1
	`
	return r.latest(ctx, query, ipAddress, since)
}

// GetLastSuccessTimeByIP returns the most recent successful verification, or nil.
func (r *LoginAttemptRepository) GetLastSuccessTimeByIP(ctx context.Context, ipAddress string) (*time.Time, error) {
	query := `
		SELECT attempt_time FROM login_attempts
		WHERE ip_address = $1 AND success = true
		ORDER BY attempt_time DESC
		LIMIT 1
	`
	return r.latest(ctx, query, ipAddress)
}

func (r *LoginAttemptRepository) latest(ctx context.Context, query string, args ...any) (*time.Time, error) {
	var t time.Time
	err := r.pool.QueryRow(ctx, query, args...).Scan(&t)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// DeleteExpiredAttempts removes attempts past their retention.
func (r *LoginAttemptRepository) DeleteExpiredAttempts(ctx context.Context) (int64, error) {
	result, err := r.pool.Exec(ctx, `DELETE FROM login_attempts WHERE expires_at <= CURRENT_TIMESTAMP`)
	if err != nil {
		return 0, database.MapPostgresError(err)
	}
	return result.RowsAffected(), nil
}
