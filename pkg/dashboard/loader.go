// Package dashboard loads and edits the gated appointment and contact lists.
// Reads retry on network failures; a 401 hands control back to the gate.
package dashboard

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/BradenHooton/frontdesk/pkg/dto"
	"github.com/BradenHooton/frontdesk/pkg/gate"
)

// Persistent warnings shown after the retries are exhausted.
const (
	MsgAppointmentsUnavailable = "Error al cargar las citas. Por favor, intente nuevamente."
	MsgContactsUnavailable     = "Error al cargar los contactos. Por favor, intente nuevamente."
	MsgAnalyticsUnavailable    = "Error al cargar las estadísticas. Por favor, intente nuevamente."
)

// API is the authenticated transport. *gate.Client implements it.
type API interface {
	DoJSON(ctx context.Context, method, path string, in, out any) error
}

// Gatekeeper takes over when the session is rejected. *gate.Gate implements it.
type Gatekeeper interface {
	Reinvoke(ctx context.Context, err error) bool
}

// LoadError is a read that kept failing until the retry policy ran out.
type LoadError struct {
	Resource string
	Attempts int
	Err      error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("loading %s failed after %d attempts: %v", e.Resource, e.Attempts, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// AppointmentChanges is a partial appointment edit; nil fields are left alone.
type AppointmentChanges struct {
	Name    *string `json:"name,omitempty"`
	Email   *string `json:"email,omitempty"`
	Phone   *string `json:"phone,omitempty"`
	Date    *string `json:"date,omitempty"`
	Time    *string `json:"time,omitempty"`
	Service *string `json:"service,omitempty"`
	Status  *string `json:"status,omitempty"`
}

// Loader holds the dashboard's data for one session.
type Loader struct {
	api    API
	gate   Gatekeeper
	policy RetryPolicy
	logger *slog.Logger
	sleep  sleepFunc

	mu           sync.Mutex
	busy         bool
	appointments []*dto.Appointment
	contacts     []*dto.ContactSubmission
	warning      string
}

func NewLoader(api API, gk Gatekeeper, policy RetryPolicy, logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Loader{
		api:    api,
		gate:   gk,
		policy: policy.withDefaults(),
		logger: logger,
		sleep:  sleepContext,
	}
}

// Warning is the last terminal load failure, or "".
func (l *Loader) Warning() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.warning
}

func (l *Loader) Appointments() []*dto.Appointment {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]*dto.Appointment(nil), l.appointments...)
}

func (l *Loader) Contacts() []*dto.ContactSubmission {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]*dto.ContactSubmission(nil), l.contacts...)
}

func (l *Loader) acquire() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.busy {
		return gate.ErrBusy
	}
	l.busy = true
	return nil
}

func (l *Loader) release() {
	l.mu.Lock()
	l.busy = false
	l.mu.Unlock()
}

// LoadAppointments fetches GET /api/appointments.
func (l *Loader) LoadAppointments(ctx context.Context) ([]*dto.Appointment, error) {
	var body struct {
		Appointments []*dto.Appointment `json:"appointments"`
	}
	if err := l.load(ctx, "appointments", "/api/appointments", MsgAppointmentsUnavailable, &body); err != nil {
		return nil, err
	}

	l.mu.Lock()
	l.appointments = body.Appointments
	l.mu.Unlock()
	return body.Appointments, nil
}

// LoadContacts fetches GET /api/contacts.
func (l *Loader) LoadContacts(ctx context.Context) ([]*dto.ContactSubmission, error) {
	var body struct {
		Contacts []*dto.ContactSubmission `json:"contacts"`
	}
	if err := l.load(ctx, "contacts", "/api/contacts", MsgContactsUnavailable, &body); err != nil {
		return nil, err
	}

	l.mu.Lock()
	l.contacts = body.Contacts
	l.mu.Unlock()
	return body.Contacts, nil
}

// LoadAnalytics fetches the server-side appointment summary.
func (l *Loader) LoadAnalytics(ctx context.Context) (*dto.AppointmentAnalytics, error) {
	var stats dto.AppointmentAnalytics
	if err := l.load(ctx, "analytics", "/api/analytics/appointments", MsgAnalyticsUnavailable, &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}

// LoadInquiryAnalytics fetches the contact submission summary.
func (l *Loader) LoadInquiryAnalytics(ctx context.Context) (*dto.InquiryAnalytics, error) {
	var stats dto.InquiryAnalytics
	if err := l.load(ctx, "inquiry analytics", "/api/analytics/inquiries", MsgAnalyticsUnavailable, &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}

// Refresh reloads both lists, stopping at the first failure.
func (l *Loader) Refresh(ctx context.Context) error {
	if _, err := l.LoadAppointments(ctx); err != nil {
		return err
	}
	_, err := l.LoadContacts(ctx)
	return err
}

func (l *Loader) load(ctx context.Context, resource, path, warning string, out any) error {
	if err := l.acquire(); err != nil {
		return err
	}
	defer l.release()

	attempts, err := withRetry(ctx, l.policy, l.sleep, func(ctx context.Context) error {
		return l.api.DoJSON(ctx, http.MethodGet, path, nil, out)
	})
	if err == nil {
		l.mu.Lock()
		l.warning = ""
		l.mu.Unlock()
		return nil
	}

	if l.rejected(ctx, err) {
		return err
	}

	if retryable(err) {
		l.logger.Error("dashboard load failed",
			slog.String("resource", resource),
			slog.Int("attempts", attempts),
			slog.Any("error", err),
		)
		l.mu.Lock()
		l.warning = warning
		l.mu.Unlock()
		return &LoadError{Resource: resource, Attempts: attempts, Err: err}
	}
	return err
}

// rejected drops the cached data and reinvokes the gate on a 401.
func (l *Loader) rejected(ctx context.Context, err error) bool {
	if !gate.IsSessionExpired(err) {
		return false
	}
	l.mu.Lock()
	l.appointments = nil
	l.contacts = nil
	l.mu.Unlock()

	if l.gate != nil {
		l.gate.Reinvoke(ctx, err)
	}
	return true
}

// mutate sends a write once; writes are never retried.
func (l *Loader) mutate(ctx context.Context, method, path string, in, out any) error {
	if err := l.acquire(); err != nil {
		return err
	}
	defer l.release()

	err := l.api.DoJSON(ctx, method, path, in, out)
	if err != nil {
		l.rejected(ctx, err)
	}
	return err
}

// UpdateAppointment edits one appointment and patches the cached list.
func (l *Loader) UpdateAppointment(ctx context.Context, id int64, changes AppointmentChanges) (*dto.Appointment, error) {
	var body struct {
		Appointment *dto.Appointment `json:"appointment"`
	}
	if err := l.mutate(ctx, http.MethodPut, fmt.Sprintf("/api/appointments/%d", id), changes, &body); err != nil {
		return nil, err
	}
	if body.Appointment == nil {
		return nil, errors.New("server returned no appointment")
	}

	l.mu.Lock()
	for i, a := range l.appointments {
		if a.ID == id {
			l.appointments[i] = body.Appointment
		}
	}
	l.mu.Unlock()
	return body.Appointment, nil
}

func (l *Loader) DeleteAppointment(ctx context.Context, id int64) error {
	if err := l.mutate(ctx, http.MethodDelete, fmt.Sprintf("/api/appointments/%d", id), nil, nil); err != nil {
		return err
	}

	l.mu.Lock()
	kept := l.appointments[:0]
	for _, a := range l.appointments {
		if a.ID != id {
			kept = append(kept, a)
		}
	}
	l.appointments = kept
	l.mu.Unlock()
	return nil
}

// UpdateContactStatus moves a contact submission to status.
func (l *Loader) UpdateContactStatus(ctx context.Context, id int64, status string) (*dto.ContactSubmission, error) {
	if !dto.ValidContactStatus(status) {
		return nil, fmt.Errorf("unknown contact status %q", status)
	}

	var body struct {
		Contact *dto.ContactSubmission `json:"contact"`
	}
	if err := l.mutate(ctx, http.MethodPut, fmt.Sprintf("/api/contacts/%d", id), map[string]string{"status": status}, &body); err != nil {
		return nil, err
	}
	if body.Contact == nil {
		return nil, errors.New("server returned no contact")
	}

	l.mu.Lock()
	for i, c := range l.contacts {
		if c.ID == id {
			l.contacts[i] = body.Contact
		}
	}
	l.mu.Unlock()
	return body.Contact, nil
}

// Summary are the dashboard's headline counts.
type Summary struct {
	Total    int
	Today    int
	Upcoming int
}

// Summarize counts appointments on today's date and after it.
func Summarize(appointments []*dto.Appointment, today time.Time) Summary {
	day := today.Format(dto.DateLayout)
	s := Summary{Total: len(appointments)}
	for _, a := range appointments {
		switch {
		case a.Date == day:
			s.Today++
		case a.Date > day:
			s.Upcoming++
		}
	}
	return s
}
