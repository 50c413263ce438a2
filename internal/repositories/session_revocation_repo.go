package repositories

import (
	"context"
	"time"

	"github.com/BradenHooton/frontdesk/internal/database"
	"github.com/jackc/pgx/v5/pgxpool"
)

type SessionRevocationRepository struct {
	pool *pgxpool.Pool
}

func NewSessionRevocationRepository(db *database.DB) *SessionRevocationRepository {
	return &SessionRevocationRepository{pool: db.Pool}
}

// RevokeSession blacklists a session JTI until the token would have expired anyway.
func (r *SessionRevocationRepository) RevokeSession(ctx context.Context, jti string, expiresAt time.Time) error {
	query := `
		INSERT INTO revoked_sessions (jti, expires_at)
		VALUES ($1, $2)
		ON CONFLICT (jti) DO NOTHING
	`

	_, err := r.pool.Exec(ctx, query, jti, expiresAt)
	return database.MapPostgresError(err)
}

func (r *SessionRevocationRepository) IsSessionRevoked(ctx context.Context, jti string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM revoked_sessions WHERE jti = $1)`

	return database.RetryRead(ctx, database.DefaultReadAttempts, database.DefaultReadBackoff,
		func(ctx context.Context) (bool, error) {
			var exists bool
			if err := r.pool.QueryRow(ctx, query, jti).Scan(&exists); err != nil {
				return false, database.MapPostgresError(err)
			}
			return exists, nil
		})
}

// CleanupExpiredSessions removes revocations whose tokens have expired (call periodically)
func (r *SessionRevocationRepository) CleanupExpiredSessions(ctx context.Context) (int64, error) {
	result, err := r.pool.Exec(ctx, `DELETE FROM revoked_sessions WHERE expires_at < $1`, time.Now())
	if err != nil {
		return 0, database.MapPostgresError(err)
	}
	return result.RowsAffected(), nil
}
