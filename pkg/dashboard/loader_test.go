package dashboard

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BradenHooton/frontdesk/pkg/dto"
	"github.com/BradenHooton/frontdesk/pkg/gate"
)

// scriptedAPI answers each path from a queue of results; the last one repeats.
type scriptedAPI struct {
	mu      sync.Mutex
	results map[string][]any
	calls   map[string]int
	bodies  []any
}

func newScriptedAPI() *scriptedAPI {
	return &scriptedAPI{results: map[string][]any{}, calls: map[string]int{}}
}

func (s *scriptedAPI) on(path string, results ...any) {
	s.results[path] = results
}

func (s *scriptedAPI) DoJSON(ctx context.Context, method, path string, in, out any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.calls[method+" "+path]++
	s.bodies = append(s.bodies, in)

	queue := s.results[path]
	if len(queue) == 0 {
		return nil
	}
	next := queue[0]
	if len(queue) > 1 {
		s.results[path] = queue[1:]
	}

	if err, ok := next.(error); ok {
		return err
	}
	if out == nil {
		return nil
	}
	data, err := json.Marshal(next)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, out)
}

type recordingGate struct {
	reinvoked []error
}

func (g *recordingGate) Reinvoke(ctx context.Context, err error) bool {
	if !gate.IsSessionExpired(err) {
		return false
	}
	g.reinvoked = append(g.reinvoked, err)
	return true
}

func newTestLoader(api API, gk Gatekeeper, policy RetryPolicy) (*Loader, *[]time.Duration) {
	l := NewLoader(api, gk, policy, nil)
	var waits []time.Duration
	l.sleep = func(ctx context.Context, d time.Duration) error {
		waits = append(waits, d)
		return ctx.Err()
	}
	return l, &waits
}

func appointmentsBody(appts ...dto.Appointment) map[string]any {
	return map[string]any{"appointments": appts}
}

var unavailable = &gate.NetworkError{StatusCode: http.StatusServiceUnavailable, Err: errors.New("down")}

func TestLoader_LoadAppointments(t *testing.T) {
	api := newScriptedAPI()
	api.on("/api/appointments", appointmentsBody(
		dto.Appointment{ID: 1, Name: "Ana", Date: "2026-03-02", Time: "10:00"},
		dto.Appointment{ID: 2, Name: "Luis", Date: "2026-03-03", Time: "11:00"},
	))
	l, waits := newTestLoader(api, &recordingGate{}, DefaultRetryPolicy())

	got, err := l.LoadAppointments(context.Background())
	require.NoError(t, err)
	assert.Len(t, got, 2)
	assert.Len(t, l.Appointments(), 2)
	assert.Empty(t, *waits)
	assert.Equal(t, 1, api.calls["GET /api/appointments"])
}

func TestLoader_RetriesThenRecovers(t *testing.T) {
	api := newScriptedAPI()
	api.on("/api/appointments", unavailable, unavailable, appointmentsBody(dto.Appointment{ID: 1}))
	l, waits := newTestLoader(api, &recordingGate{}, RetryPolicy{MaxRetries: 3, Base: 100 * time.Millisecond, Backoff: BackoffLinear})

	got, err := l.LoadAppointments(context.Background())
	require.NoError(t, err)
	assert.Len(t, got, 1)
	assert.Equal(t, []time.Duration{100 * time.Millisecond, 200 * time.Millisecond}, *waits)
	assert.Empty(t, l.Warning())
}

func TestLoader_GivesUpAfterMaxRetries(t *testing.T) {
	for _, backoff := range []Backoff{BackoffLinear, BackoffExponential} {
		t.Run(string(backoff), func(t *testing.T) {
			api := newScriptedAPI()
			api.on("/api/appointments", unavailable)
			l, waits := newTestLoader(api, &recordingGate{}, RetryPolicy{MaxRetries: 3, Base: 50 * time.Millisecond, Backoff: backoff})

			_, err := l.LoadAppointments(context.Background())

			var loadErr *LoadError
			require.ErrorAs(t, err, &loadErr)
			assert.Equal(t, 3, loadErr.Attempts)
			assert.Equal(t, 3, api.calls["GET /api/appointments"])
			require.Len(t, *waits, 2)
			assert.LessOrEqual(t, (*waits)[0], (*waits)[1])
			assert.Equal(t, MsgAppointmentsUnavailable, l.Warning())
		})
	}
}

func TestLoader_LoadAnalytics(t *testing.T) {
	api := newScriptedAPI()
	api.on("/api/analytics/appointments", unavailable, dto.AppointmentAnalytics{Total: 5, Today: 1})
	api.on("/api/analytics/inquiries", dto.InquiryAnalytics{Total: 3, Open: 2})
	l, waits := newTestLoader(api, &recordingGate{}, DefaultRetryPolicy())

	appts, err := l.LoadAnalytics(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 5, appts.Total)
	assert.Equal(t, 1, appts.Today)
	assert.Len(t, *waits, 1)

	inquiries, err := l.LoadInquiryAnalytics(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, inquiries.Total)
	assert.Equal(t, 2, inquiries.Open)
	assert.Equal(t, 1, api.calls["GET /api/analytics/inquiries"])
}

func TestLoader_AnalyticsUnavailable(t *testing.T) {
	api := newScriptedAPI()
	api.on("/api/analytics/inquiries", unavailable)
	l, _ := newTestLoader(api, &recordingGate{}, RetryPolicy{MaxRetries: 2, Base: time.Millisecond, Backoff: BackoffLinear})

	_, err := l.LoadInquiryAnalytics(context.Background())

	var loadErr *LoadError
	require.ErrorAs(t, err, &loadErr)
	assert.Equal(t, "inquiry analytics", loadErr.Resource)
	assert.Equal(t, MsgAnalyticsUnavailable, l.Warning())
}

func TestLoader_UnauthorizedReinvokesGate(t *testing.T) {
	api := newScriptedAPI()
	api.on("/api/appointments", appointmentsBody(dto.Appointment{ID: 1}), &gate.SessionExpiredError{Path: "/api/appointments"})
	gk := &recordingGate{}
	l, waits := newTestLoader(api, gk, DefaultRetryPolicy())

	_, err := l.LoadAppointments(context.Background())
	require.NoError(t, err)
	require.Len(t, l.Appointments(), 1)

	_, err = l.LoadAppointments(context.Background())
	assert.True(t, gate.IsSessionExpired(err))
	assert.Len(t, gk.reinvoked, 1)
	assert.Empty(t, l.Appointments(), "stale rows must not survive a 401")
	assert.Empty(t, *waits)
	assert.Empty(t, l.Warning())
}

func TestLoader_ClientErrorNotRetried(t *testing.T) {
	api := newScriptedAPI()
	api.on("/api/contacts", &gate.HTTPError{StatusCode: http.StatusBadRequest, Message: "bad"})
	l, waits := newTestLoader(api, &recordingGate{}, DefaultRetryPolicy())

	_, err := l.LoadContacts(context.Background())
	var httpErr *gate.HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, 1, api.calls["GET /api/contacts"])
	assert.Empty(t, *waits)
}

func TestLoader_CancelledContextStopsRetry(t *testing.T) {
	api := newScriptedAPI()
	api.on("/api/appointments", unavailable)
	l, _ := newTestLoader(api, &recordingGate{}, DefaultRetryPolicy())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := l.LoadAppointments(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, api.calls["GET /api/appointments"])
}

func TestLoader_Mutations(t *testing.T) {
	api := newScriptedAPI()
	api.on("/api/appointments", appointmentsBody(
		dto.Appointment{ID: 1, Status: dto.AppointmentStatusPending},
		dto.Appointment{ID: 2, Status: dto.AppointmentStatusPending},
	))
	api.on("/api/appointments/1", map[string]any{
		"appointment": dto.Appointment{ID: 1, Status: dto.AppointmentStatusConfirmed},
	})
	api.on("/api/contacts", map[string]any{"contacts": []dto.ContactSubmission{{ID: 7, Status: dto.ContactStatusNew}}})
	api.on("/api/contacts/7", map[string]any{"contact": dto.ContactSubmission{ID: 7, Status: dto.ContactStatusCompleted}})

	l, _ := newTestLoader(api, &recordingGate{}, DefaultRetryPolicy())
	require.NoError(t, l.Refresh(context.Background()))

	status := dto.AppointmentStatusConfirmed
	updated, err := l.UpdateAppointment(context.Background(), 1, AppointmentChanges{Status: &status})
	require.NoError(t, err)
	assert.Equal(t, dto.AppointmentStatusConfirmed, updated.Status)
	assert.Equal(t, dto.AppointmentStatusConfirmed, l.Appointments()[0].Status)

	require.NoError(t, l.DeleteAppointment(context.Background(), 2))
	assert.Len(t, l.Appointments(), 1)
	assert.Equal(t, 1, api.calls["DELETE /api/appointments/2"])

	contact, err := l.UpdateContactStatus(context.Background(), 7, dto.ContactStatusCompleted)
	require.NoError(t, err)
	assert.Equal(t, dto.ContactStatusCompleted, contact.Status)
	assert.Equal(t, dto.ContactStatusCompleted, l.Contacts()[0].Status)

	_, err = l.UpdateContactStatus(context.Background(), 7, "Archivado")
	assert.Error(t, err)
}

func TestRetryPolicy_Delay(t *testing.T) {
	linear := RetryPolicy{Base: time.Second, Backoff: BackoffLinear}
	assert.Equal(t, []time.Duration{time.Second, 2 * time.Second, 3 * time.Second},
		[]time.Duration{linear.Delay(1), linear.Delay(2), linear.Delay(3)})

	exp := RetryPolicy{Base: time.Second, Backoff: BackoffExponential}
	assert.Equal(t, []time.Duration{time.Second, 2 * time.Second, 4 * time.Second},
		[]time.Duration{exp.Delay(1), exp.Delay(2), exp.Delay(3)})
}

func TestSummarize(t *testing.T) {
	today := time.Date(2026, 3, 4, 12, 0, 0, 0, time.UTC)
	s := Summarize([]*dto.Appointment{
		{Date: "2026-03-02"},
		{Date: "2026-03-04"},
		{Date: "2026-03-04"},
		{Date: "2026-03-10"},
	}, today)
	assert.Equal(t, Summary{Total: 4, Today: 2, Upcoming: 1}, s)
}

func TestPaginate(t *testing.T) {
	items := make([]int, 23)
	for i := range items {
		items[i] = i
	}

	p := Paginate(items, 1, PageSize)
	assert.Len(t, p.Items, 10)
	assert.Equal(t, 3, p.TotalPages)
	assert.False(t, p.HasPrev())
	assert.True(t, p.HasNext())

	p = Paginate(items, 3, PageSize)
	assert.Equal(t, []int{20, 21, 22}, p.Items)
	assert.False(t, p.HasNext())

	p = Paginate(items, 99, PageSize)
	assert.Equal(t, 3, p.Number)

	empty := Paginate([]int{}, 1, PageSize)
	assert.Empty(t, empty.Items)
	assert.Equal(t, 1, empty.TotalPages)
}

func TestFilterContacts(t *testing.T) {
	contacts := []*dto.ContactSubmission{
		{ID: 1, Status: dto.ContactStatusNew},
		{ID: 2, Status: dto.ContactStatusInProgress},
		{ID: 3, Status: dto.ContactStatusNew},
	}
	assert.Len(t, FilterContacts(contacts, FilterAll), 3)
	assert.Len(t, FilterContacts(contacts, dto.ContactStatusNew), 2)
	assert.Empty(t, FilterContacts(contacts, dto.ContactStatusCompleted))
}

func TestFormatPhone(t *testing.T) {
	assert.Equal(t, "612 345 678", FormatPhone("612345678"))
	assert.Equal(t, "+34612345678", FormatPhone("+34612345678"))
	assert.Equal(t, "-", FormatPhone(""))
}
