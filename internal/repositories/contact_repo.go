package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/BradenHooton/frontdesk/internal/database"
	"github.com/BradenHooton/frontdesk/pkg/dto"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type ContactRepository struct {
	pool *pgxpool.Pool
}

func NewContactRepository(db *database.DB) *ContactRepository {
	return &ContactRepository{pool: db.Pool}
}

// UnknownProvince labels submissions that left the province blank.
const UnknownProvince = "Sin indicar"

const contactColumns = `id, name, email, phone, postal_code, city, province, inquiry, status, created_at`

func scanContactRow(scanner rowScanner) (*dto.ContactSubmission, error) {
	var c dto.ContactSubmission
	err := scanner.Scan(
		&c.ID, &c.Name, &c.Email, &c.Phone,
		&c.PostalCode, &c.City, &c.Province, &c.Inquiry,
		&c.Status, &c.CreatedAt,
	)
	if err != nil {
		return nil, database.MapPostgresError(err)
	}
	return &c, nil
}

func (r *ContactRepository) Create(ctx context.Context, c *dto.ContactSubmission) (*dto.ContactSubmission, error) {
	if c.Status == "" {
		c.Status = dto.ContactStatusNew
	}

	query := `
		INSERT INTO contact_submissions (name, email, phone, postal_code, city, province, inquiry, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING ` + contactColumns

	return scanContactRow(r.pool.QueryRow(ctx, query,
		c.Name, c.Email, c.Phone, c.PostalCode, c.City, c.Province, c.Inquiry, c.Status,
	))
}

func (r *ContactRepository) List(ctx context.Context) ([]*dto.ContactSubmission, error) {
	query := `SELECT ` + contactColumns + ` FROM contact_submissions ORDER BY created_at DESC`

	return database.RetryRead(ctx, database.DefaultReadAttempts, database.DefaultReadBackoff,
		func(ctx context.Context) ([]*dto.ContactSubmission, error) {
			rows, err := r.pool.Query(ctx, query)
			if err != nil {
				return nil, fmt.Errorf("failed to query contacts: %w", err)
			}
			return scanContactRows(rows)
		})
}

func scanContactRows(rows pgx.Rows) ([]*dto.ContactSubmission, error) {
	defer rows.Close()

	contacts := make([]*dto.ContactSubmission, 0)
	for rows.Next() {
		c, err := scanContactRow(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan contact: %w", err)
		}
		contacts = append(contacts, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}
	return contacts, nil
}

func (r *ContactRepository) UpdateStatus(ctx context.Context, id int64, status string) (*dto.ContactSubmission, error) {
	query := `UPDATE contact_submissions SET status = $2 WHERE id = $1 RETURNING ` + contactColumns
	return scanContactRow(r.pool.QueryRow(ctx, query, id, status))
}

// Summary gathers the counters behind the inquiry analytics endpoint. The
// breakdowns cover submissions created since since.
func (r *ContactRepository) Summary(ctx context.Context, since time.Time) (*dto.InquiryAnalytics, error) {
	out := &dto.InquiryAnalytics{
		Recent:         make([]dto.ContactSubmission, 0),
		StatusLabels:   make([]string, 0),
		StatusCounts:   make([]int, 0),
		ProvinceLabels: make([]string, 0),
		ProvinceCounts: make([]int, 0),
	}

	err := database.WithTx(ctx, r.pool, database.SnapshotRead, func(tx pgx.Tx) error {
		counts := `
			SELECT
				COUNT(*),
				COUNT(*) FILTER (WHERE created_at >= $1),
				COUNT(*) FILTER (WHERE status <> $2)
			FROM contact_submissions`
		if err := tx.QueryRow(ctx, counts, since, dto.ContactStatusCompleted).Scan(
			&out.Total, &out.Monthly, &out.Open,
		); err != nil {
			return fmt.Errorf("failed to count contacts: %w", database.MapPostgresError(err))
		}

		rows, err := tx.Query(ctx, `SELECT `+contactColumns+`
			FROM contact_submissions ORDER BY created_at DESC LIMIT 5`)
		if err != nil {
			return fmt.Errorf("failed to query recent contacts: %w", err)
		}
		recent, err := scanContactRows(rows)
		if err != nil {
			return err
		}
		for _, c := range recent {
			out.Recent = append(out.Recent, *c)
		}

		rows, err = tx.Query(ctx, `
			SELECT status, COUNT(*) FROM contact_submissions
			WHERE created_at >= $1
			GROUP BY status ORDER BY COUNT(*) DESC, status`, since)
		if err != nil {
			return fmt.Errorf("failed to group by status: %w", err)
		}
		if err := collectLabelCounts(rows, &out.StatusLabels, &out.StatusCounts); err != nil {
			return err
		}

		rows, err = tx.Query(ctx, `
			SELECT COALESCE(NULLIF(province, ''), $2::text), COUNT(*) FROM contact_submissions
			WHERE created_at >= $1
			GROUP BY 1 ORDER BY COUNT(*) DESC, 1`, since, UnknownProvince)
		if err != nil {
			return fmt.Errorf("failed to group by province: %w", err)
		}
		return collectLabelCounts(rows, &out.ProvinceLabels, &out.ProvinceCounts)
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
