package integration

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/BradenHooton/frontdesk/internal/database"
	"github.com/BradenHooton/frontdesk/pkg/dto"
)

// TestDB manages PostgreSQL testcontainer and database operations
type TestDB struct {
	Container  testcontainers.Container
	ConnString string
	Pool       *pgxpool.Pool
	DB         *database.DB
}

// SetupTestDatabase creates a PostgreSQL testcontainer, runs migrations, returns TestDB
func SetupTestDatabase(ctx context.Context) (*TestDB, error) {
	container, err := postgres.RunContainer(ctx,
		testcontainers.WithImage("postgres:16-alpine"),
		postgres.WithDatabase("frontdesk"),
		postgres.WithUsername("postgres"),
		postgres.WithPassword("postgres"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to start postgres container: %w", err)
	}

	connStr, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		container.Terminate(ctx)
		return nil, fmt.Errorf("failed to get connection string: %w", err)
	}

	pool, err := pgxpool.New(ctx, connStr)
	if err != nil {
		container.Terminate(ctx)
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		container.Terminate(ctx)
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	quiet := slog.New(slog.NewTextHandler(io.Discard, nil))
	if err := database.MigratePool(ctx, pool, quiet); err != nil {
		pool.Close()
		container.Terminate(ctx)
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &TestDB{
		Container:  container,
		ConnString: connStr,
		Pool:       pool,
		DB:         database.NewFromPool(pool, quiet),
	}, nil
}

// Teardown stops the container and closes the connection pool
func (db *TestDB) Teardown(ctx context.Context) error {
	if db.Pool != nil {
		db.Pool.Close()
	}
	if db.Container != nil {
		return db.Container.Terminate(ctx)
	}
	return nil
}

// CleanupTables truncates all tables for test isolation
func (db *TestDB) CleanupTables(ctx context.Context) error {
	tables := []string{
		"appointments",
		"contact_submissions",
		"login_attempts",
		"revoked_sessions",
	}

	for _, table := range tables {
		if _, err := db.Pool.Exec(ctx, fmt.Sprintf("TRUNCATE TABLE %s RESTART IDENTITY CASCADE", table)); err != nil {
			return fmt.Errorf("failed to truncate table %s: %w", table, err)
		}
	}

	return nil
}

// SeedAppointment inserts a booking directly, bypassing service validation.
func SeedAppointment(ctx context.Context, pool *pgxpool.Pool, a *dto.Appointment) (int64, error) {
	if a.Status == "" {
		a.Status = dto.AppointmentStatusPending
	}

	var id int64
	err := pool.QueryRow(ctx, `
		INSERT INTO appointments (name, email, phone, appointment_date, appointment_time, service, status)
		VALUES ($1, $2, $3, $4::date, $5::time, $6, $7)
		RETURNING id`,
		a.Name, a.Email, a.Phone, a.Date, a.Time, a.Service, a.Status,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to insert appointment: %w", err)
	}
	return id, nil
}

// SeedContact inserts a contact submission directly.
func SeedContact(ctx context.Context, pool *pgxpool.Pool, c *dto.ContactSubmission) (int64, error) {
	if c.Status == "" {
		c.Status = dto.ContactStatusNew
	}

	var id int64
	err := pool.QueryRow(ctx, `
		INSERT INTO contact_submissions (name, email, phone, postal_code, city, province, inquiry, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id`,
		c.Name, c.Email, c.Phone, c.PostalCode, c.City, c.Province, c.Inquiry, c.Status,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to insert contact: %w", err)
	}
	return id, nil
}

// CountRows returns the number of rows in table.
func CountRows(ctx context.Context, pool *pgxpool.Pool, table string) (int, error) {
	var n int
	err := pool.QueryRow(ctx, fmt.Sprintf("SELECT COUNT(*) FROM %s", table)).Scan(&n)
	return n, err
}
