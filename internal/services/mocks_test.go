package services

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/BradenHooton/frontdesk/internal/models"
	"github.com/BradenHooton/frontdesk/pkg/dto"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

// memoryAttemptRepo is an in-memory RateLimitRepository.
type memoryAttemptRepo struct {
	mu       sync.Mutex
	attempts []models.LoginAttempt
	err      error
}

func (m *memoryAttemptRepo) RecordAttempt(ctx context.Context, attempt *models.LoginAttempt) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.attempts = append(m.attempts, *attempt)
	return nil
}

func (m *memoryAttemptRepo) GetFailedAttemptCountByIP(ctx context.Context, ip string, since time.Time) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return 0, m.err
	}
	n := 0
	for _, a := range m.attempts {
		if a.IPAddress == ip && !a.Success && !a.AttemptTime.Before(since) {
			n++
		}
	}
	return n, nil
}

func (m *memoryAttemptRepo) GetRecentFailureTimeByIP(ctx context.Context, ip string, since time.Time) (*time.Time, error) {
	return m.latest(func(a models.LoginAttempt) bool {
		return a.IPAddress == ip && !a.Success && !a.AttemptTime.Before(since)
	})
}

func (m *memoryAttemptRepo) GetLastSuccessTimeByIP(ctx context.Context, ip string) (*time.Time, error) {
	return m.latest(func(a models.LoginAttempt) bool { return a.IPAddress == ip && a.Success })
}

func (m *memoryAttemptRepo) latest(match func(models.LoginAttempt) bool) (*time.Time, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	var out *time.Time
	for _, a := range m.attempts {
		if match(a) && (out == nil || a.AttemptTime.After(*out)) {
			t := a.AttemptTime
			out = &t
		}
	}
	return out, nil
}

// MockSessionRevocationRepository implements SessionRevocationRepository for testing
type MockSessionRevocationRepository struct {
	RevokeSessionFunc    func(ctx context.Context, jti string, expiresAt time.Time) error
	IsSessionRevokedFunc func(ctx context.Context, jti string) (bool, error)
}

func (m *MockSessionRevocationRepository) RevokeSession(ctx context.Context, jti string, expiresAt time.Time) error {
	if m.RevokeSessionFunc != nil {
		return m.RevokeSessionFunc(ctx, jti, expiresAt)
	}
	return nil
}

func (m *MockSessionRevocationRepository) IsSessionRevoked(ctx context.Context, jti string) (bool, error) {
	if m.IsSessionRevokedFunc != nil {
		return m.IsSessionRevokedFunc(ctx, jti)
	}
	return false, nil
}

// MockAppointmentRepository implements AppointmentRepository for testing
type MockAppointmentRepository struct {
	ListFunc             func(ctx context.Context) ([]*dto.Appointment, error)
	GetByIDFunc          func(ctx context.Context, id int64) (*dto.Appointment, error)
	CreateFunc           func(ctx context.Context, a *dto.Appointment) (*dto.Appointment, error)
	UpdateFunc           func(ctx context.Context, id int64, upd *models.AppointmentUpdate) (*dto.Appointment, error)
	DeleteFunc           func(ctx context.Context, id int64) error
	BookedTimesFunc      func(ctx context.Context, date string) ([]string, error)
	DueRemindersFunc     func(ctx context.Context, from, to time.Time) ([]*dto.Appointment, error)
	MarkReminderSentFunc func(ctx context.Context, id int64, at time.Time) error
	SummaryFunc          func(ctx context.Context, today string, since time.Time) (*dto.AppointmentAnalytics, error)
}

func (m *MockAppointmentRepository) List(ctx context.Context) ([]*dto.Appointment, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx)
	}
	return []*dto.Appointment{}, nil
}

func (m *MockAppointmentRepository) GetByID(ctx context.Context, id int64) (*dto.Appointment, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, models.ErrNotFound
}

func (m *MockAppointmentRepository) Create(ctx context.Context, a *dto.Appointment) (*dto.Appointment, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, a)
	}
	created := *a
	created.ID = 1
	return &created, nil
}

func (m *MockAppointmentRepository) Update(ctx context.Context, id int64, upd *models.AppointmentUpdate) (*dto.Appointment, error) {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, id, upd)
	}
	return nil, models.ErrNotFound
}

func (m *MockAppointmentRepository) Delete(ctx context.Context, id int64) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, id)
	}
	return nil
}

func (m *MockAppointmentRepository) BookedTimes(ctx context.Context, date string) ([]string, error) {
	if m.BookedTimesFunc != nil {
		return m.BookedTimesFunc(ctx, date)
	}
	return nil, nil
}

func (m *MockAppointmentRepository) DueReminders(ctx context.Context, from, to time.Time) ([]*dto.Appointment, error) {
	if m.DueRemindersFunc != nil {
		return m.DueRemindersFunc(ctx, from, to)
	}
	return nil, nil
}

func (m *MockAppointmentRepository) MarkReminderSent(ctx context.Context, id int64, at time.Time) error {
	if m.MarkReminderSentFunc != nil {
		return m.MarkReminderSentFunc(ctx, id, at)
	}
	return nil
}

func (m *MockAppointmentRepository) Summary(ctx context.Context, today string, since time.Time) (*dto.AppointmentAnalytics, error) {
	if m.SummaryFunc != nil {
		return m.SummaryFunc(ctx, today, since)
	}
	return &dto.AppointmentAnalytics{}, nil
}

// recordingMailer counts the emails it was asked to send.
type recordingMailer struct {
	mu            sync.Mutex
	confirmations []int64
	reminders     []int64
	err           error
}

func (r *recordingMailer) SendAppointmentConfirmation(ctx context.Context, a *dto.Appointment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.confirmations = append(r.confirmations, a.ID)
	return r.err
}

func (r *recordingMailer) SendAppointmentReminder(ctx context.Context, a *dto.Appointment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.reminders = append(r.reminders, a.ID)
	return r.err
}

// MockContactRepository implements ContactRepository for testing
type MockContactRepository struct {
	CreateFunc       func(ctx context.Context, c *dto.ContactSubmission) (*dto.ContactSubmission, error)
	ListFunc         func(ctx context.Context) ([]*dto.ContactSubmission, error)
	UpdateStatusFunc func(ctx context.Context, id int64, status string) (*dto.ContactSubmission, error)
	SummaryFunc      func(ctx context.Context, since time.Time) (*dto.InquiryAnalytics, error)
}

func (m *MockContactRepository) Create(ctx context.Context, c *dto.ContactSubmission) (*dto.ContactSubmission, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, c)
	}
	created := *c
	created.ID = 1
	return &created, nil
}

func (m *MockContactRepository) List(ctx context.Context) ([]*dto.ContactSubmission, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx)
	}
	return []*dto.ContactSubmission{}, nil
}

func (m *MockContactRepository) UpdateStatus(ctx context.Context, id int64, status string) (*dto.ContactSubmission, error) {
	if m.UpdateStatusFunc != nil {
		return m.UpdateStatusFunc(ctx, id, status)
	}
	return nil, models.ErrNotFound
}

func (m *MockContactRepository) Summary(ctx context.Context, since time.Time) (*dto.InquiryAnalytics, error) {
	if m.SummaryFunc != nil {
		return m.SummaryFunc(ctx, since)
	}
	return &dto.InquiryAnalytics{}, nil
}
