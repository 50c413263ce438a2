package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/BradenHooton/frontdesk/internal/database"
	"github.com/BradenHooton/frontdesk/internal/models"
	"github.com/BradenHooton/frontdesk/pkg/dto"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type AppointmentRepository struct {
	pool *pgxpool.Pool
}

func NewAppointmentRepository(db *database.DB) *AppointmentRepository {
	return &AppointmentRepository{pool: db.Pool}
}

const appointmentColumns = `
	id, name, email, phone,
	to_char(appointment_date, 'YYYY-MM-DD'), to_char(appointment_time, 'HH24:MI'),
	service, status, reminder_sent_at, created_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAppointmentRow(scanner rowScanner) (*dto.Appointment, error) {
	var a dto.Appointment
	err := scanner.Scan(
		&a.ID, &a.Name, &a.Email, &a.Phone,
		&a.Date, &a.Time,
		&a.Service, &a.Status, &a.ReminderSentAt, &a.CreatedAt,
	)
	if err != nil {
		return nil, database.MapPostgresError(err)
	}
	return &a, nil
}

func scanAppointmentRows(rows pgx.Rows) ([]*dto.Appointment, error) {
	defer rows.Close()

	appointments := make([]*dto.Appointment, 0)
	for rows.Next() {
		a, err := scanAppointmentRow(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan appointment: %w", err)
		}
		appointments = append(appointments, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}
	return appointments, nil
}

// mapSlotError turns the active-slot unique index into ErrSlotTaken.
func mapSlotError(err error) error {
	err = database.MapPostgresError(err)
	if errors.Is(err, models.ErrConflict) {
		return models.ErrSlotTaken
	}
	return err
}

func (r *AppointmentRepository) List(ctx context.Context) ([]*dto.Appointment, error) {
	query := `SELECT ` + appointmentColumns + `
		FROM appointments
		ORDER BY appointment_date DESC, appointment_time DESC`

	return database.RetryRead(ctx, database.DefaultReadAttempts, database.DefaultReadBackoff,
		func(ctx context.Context) ([]*dto.Appointment, error) {
			rows, err := r.pool.Query(ctx, query)
			if err != nil {
				return nil, fmt.Errorf("failed to query appointments: %w", err)
			}
			return scanAppointmentRows(rows)
		})
}

func (r *AppointmentRepository) GetByID(ctx context.Context, id int64) (*dto.Appointment, error) {
	query := `SELECT ` + appointmentColumns + ` FROM appointments WHERE id = $1`
	return scanAppointmentRow(r.pool.QueryRow(ctx, query, id))
}

func (r *AppointmentRepository) Create(ctx context.Context, a *dto.Appointment) (*dto.Appointment, error) {
	if a.Status == "" {
		a.Status = dto.AppointmentStatusPending
	}

	query := `
		INSERT INTO appointments (name, email, phone, appointment_date, appointment_time, service, status)
		VALUES ($1, $2, $3, $4::date, $5::time, $6, $7)
		RETURNING ` + appointmentColumns

	created, err := scanAppointmentRow(r.pool.QueryRow(ctx, query,
		a.Name, a.Email, a.Phone, a.Date, a.Time, a.Service, a.Status,
	))
	if err != nil {
		return nil, mapSlotError(err)
	}
	return created, nil
}

// Update applies the non-nil fields of upd.
func (r *AppointmentRepository) Update(ctx context.Context, id int64, upd *models.AppointmentUpdate) (*dto.Appointment, error) {
	query := `
		UPDATE appointments SET
			name             = COALESCE($2, name),
			email            = COALESCE($3, email),
			phone            = COALESCE($4, phone),
			appointment_date = COALESCE($5::date, appointment_date),
			appointment_time = COALESCE($6::time, appointment_time),
			service          = COALESCE($7, service),
			status           = COALESCE($8, status),
			reminder_sent_at = CASE
				WHEN $5::date IS NOT NULL OR $6::time IS NOT NULL THEN NULL
				ELSE reminder_sent_at END
		WHERE id = $1
		RETURNING ` + appointmentColumns

	updated, err := scanAppointmentRow(r.pool.QueryRow(ctx, query,
		id, upd.Name, upd.Email, upd.Phone, upd.Date, upd.Time, upd.Service, upd.Status,
	))
	if err != nil {
		return nil, mapSlotError(err)
	}
	return updated, nil
}

func (r *AppointmentRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM appointments WHERE id = $1`, id)
	if err != nil {
		return database.MapPostgresError(err)
	}
	if result.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}

// BookedTimes lists the HH:MM times already taken on date by active bookings.
func (r *AppointmentRepository) BookedTimes(ctx context.Context, date string) ([]string, error) {
	query := `
		SELECT to_char(appointment_time, 'HH24:MI') FROM appointments
		WHERE appointment_date = $1::date AND status <> 'Cancelada'`

	return database.RetryRead(ctx, database.DefaultReadAttempts, database.DefaultReadBackoff,
		func(ctx context.Context) ([]string, error) {
			rows, err := r.pool.Query(ctx, query, date)
			if err != nil {
				return nil, database.MapPostgresError(err)
			}
			return pgx.CollectRows(rows, pgx.RowTo[string])
		})
}

// DueReminders returns active bookings starting between from and to that have no reminder yet.
func (r *AppointmentRepository) DueReminders(ctx context.Context, from, to time.Time) ([]*dto.Appointment, error) {
	query := `SELECT ` + appointmentColumns + `
		FROM appointments
		WHERE reminder_sent_at IS NULL
		  AND status IN ('Pendiente', 'Confirmada')
		  AND (appointment_date + appointment_time) BETWEEN $1::timestamp AND $2::timestamp
		ORDER BY appointment_date, appointment_time`

	rows, err := r.pool.Query(ctx, query,
		from.Format("2006-01-02 15:04:05"), to.Format("2006-01-02 15:04:05"))
	if err != nil {
		return nil, fmt.Errorf("failed to query due reminders: %w", err)
	}
	return scanAppointmentRows(rows)
}

func (r *AppointmentRepository) MarkReminderSent(ctx context.Context, id int64, at time.Time) error {
	_, err := r.pool.Exec(ctx, `UPDATE appointments SET reminder_sent_at = $2 WHERE id = $1`, id, at)
	return database.MapPostgresError(err)
}

// Summary gathers the counters behind the analytics endpoint. today is YYYY-MM-DD
// in the booking timezone; since bounds the monthly and chart figures. All
// queries read one snapshot so the counters agree with each other.
func (r *AppointmentRepository) Summary(ctx context.Context, today string, since time.Time) (*dto.AppointmentAnalytics, error) {
	out := &dto.AppointmentAnalytics{
		Recent:         make([]dto.Appointment, 0),
		ServiceLabels:  make([]string, 0),
		ServiceCounts:  make([]int, 0),
		TimelineLabels: make([]string, 0),
		TimelineCounts: make([]int, 0),
	}

	err := database.WithTx(ctx, r.pool, database.SnapshotRead, func(tx pgx.Tx) error {
		counts := `
			SELECT
				COUNT(*),
				COUNT(*) FILTER (WHERE created_at >= $2),
				COUNT(*) FILTER (WHERE appointment_date = $1::date),
				COUNT(*) FILTER (WHERE appointment_date > $1::date AND status <> 'Cancelada')
			FROM appointments`
		if err := tx.QueryRow(ctx, counts, today, since).Scan(
			&out.Total, &out.Monthly, &out.Today, &out.Upcoming,
		); err != nil {
			return fmt.Errorf("failed to count appointments: %w", database.MapPostgresError(err))
		}

		rows, err := tx.Query(ctx, `SELECT `+appointmentColumns+`
			FROM appointments ORDER BY created_at DESC LIMIT 5`)
		if err != nil {
			return fmt.Errorf("failed to query recent appointments: %w", err)
		}
		recent, err := scanAppointmentRows(rows)
		if err != nil {
			return err
		}
		for _, a := range recent {
			out.Recent = append(out.Recent, *a)
		}

		rows, err = tx.Query(ctx, `
			SELECT service, COUNT(*) FROM appointments
			WHERE created_at >= $1
			GROUP BY service ORDER BY COUNT(*) DESC, service`, since)
		if err != nil {
			return fmt.Errorf("failed to group by service: %w", err)
		}
		if err := collectLabelCounts(rows, &out.ServiceLabels, &out.ServiceCounts); err != nil {
			return err
		}

		rows, err = tx.Query(ctx, `
			SELECT to_char(appointment_date, 'YYYY-MM-DD'), COUNT(*) FROM appointments
			WHERE created_at >= $1
			GROUP BY appointment_date ORDER BY appointment_date`, since)
		if err != nil {
			return fmt.Errorf("failed to group by date: %w", err)
		}
		return collectLabelCounts(rows, &out.TimelineLabels, &out.TimelineCounts)
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func collectLabelCounts(rows pgx.Rows, labels *[]string, counts *[]int) error {
	defer rows.Close()
	for rows.Next() {
		var label string
		var count int
		if err := rows.Scan(&label, &count); err != nil {
			return fmt.Errorf("failed to scan group: %w", err)
		}
		*labels = append(*labels, label)
		*counts = append(*counts, count)
	}
	return rows.Err()
}
