package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/BradenHooton/frontdesk/internal/models"
	"github.com/BradenHooton/frontdesk/pkg/dto"
	pkglogger "github.com/BradenHooton/frontdesk/pkg/logger"
)

type AppointmentRepository interface {
	List(ctx context.Context) ([]*dto.Appointment, error)
	GetByID(ctx context.Context, id int64) (*dto.Appointment, error)
	Create(ctx context.Context, a *dto.Appointment) (*dto.Appointment, error)
	Update(ctx context.Context, id int64, upd *models.AppointmentUpdate) (*dto.Appointment, error)
	Delete(ctx context.Context, id int64) error
	BookedTimes(ctx context.Context, date string) ([]string, error)
	DueReminders(ctx context.Context, from, to time.Time) ([]*dto.Appointment, error)
	MarkReminderSent(ctx context.Context, id int64, at time.Time) error
	Summary(ctx context.Context, today string, since time.Time) (*dto.AppointmentAnalytics, error)
}

// SlotTimes are the bookable start times of a weekday.
var SlotTimes = []string{"10:30", "11:00", "11:30", "12:00", "12:30", "13:00", "13:30", "14:00"}

type BookingRules struct {
	Location      *time.Location
	MaxDaysAhead  int // furthest bookable day from today
	AvailableDays int // days offered by the slot listing
	ScanDays      int // how far ahead the listing looks to fill AvailableDays
}

func (r BookingRules) withDefaults() BookingRules {
	if r.Location == nil {
		r.Location = time.Local
	}
	if r.MaxDaysAhead <= 0 {
		r.MaxDaysAhead = 30
	}
	if r.AvailableDays <= 0 {
		r.AvailableDays = 7
	}
	if r.ScanDays <= 0 {
		r.ScanDays = 14
	}
	return r
}

type AppointmentService struct {
	repo   AppointmentRepository
	mailer EmailService
	rules  BookingRules
	logger *slog.Logger
	now    func() time.Time
}

func NewAppointmentService(repo AppointmentRepository, mailer EmailService, rules BookingRules, logger *slog.Logger) *AppointmentService {
	return &AppointmentService{
		repo:   repo,
		mailer: mailer,
		rules:  rules.withDefaults(),
		logger: logger,
		now:    time.Now,
	}
}

func (s *AppointmentService) today() time.Time {
	n := s.now().In(s.rules.Location)
	return time.Date(n.Year(), n.Month(), n.Day(), 0, 0, 0, 0, s.rules.Location)
}

func (s *AppointmentService) List(ctx context.Context) ([]*dto.Appointment, error) {
	return s.repo.List(ctx)
}

func (s *AppointmentService) Get(ctx context.Context, id int64) (*dto.Appointment, error) {
	return s.repo.GetByID(ctx, id)
}

// Create books a new appointment after the full customer-facing checks and
// sends the confirmation email. Email failures are logged, not returned.
func (s *AppointmentService) Create(ctx context.Context, a *dto.Appointment) (*dto.Appointment, error) {
	a.Name = strings.TrimSpace(a.Name)
	a.Email = strings.TrimSpace(a.Email)
	a.Phone = strings.TrimSpace(a.Phone)

	if err := s.validateBooking(a); err != nil {
		return nil, err
	}

	booked, err := s.repo.BookedTimes(ctx, a.Date)
	if err != nil {
		return nil, fmt.Errorf("check availability: %w", err)
	}
	for _, t := range booked {
		if t == a.Time {
			return nil, models.ErrSlotTaken
		}
	}

	a.Status = dto.AppointmentStatusPending
	created, err := s.repo.Create(ctx, a)
	if err != nil {
		return nil, err
	}

	s.logger.Info("appointment created",
		slog.Int64("appointment_id", created.ID),
		slog.String("date", created.Date),
		slog.String("time", created.Time),
		slog.String("email", pkglogger.SanitizedEmail(created.Email)))

	if err := s.mailer.SendAppointmentConfirmation(ctx, created); err != nil {
		s.logger.Warn("confirmation email not sent", slog.Int64("appointment_id", created.ID), slog.Any("error", err))
	}

	return created, nil
}

func (s *AppointmentService) validateBooking(a *dto.Appointment) error {
	errs := fieldErrors{}

	if !ValidName(a.Name) {
		errs.add("name", "Name must be 2-100 letters")
	}
	if !ValidEmail(a.Email) {
		errs.add("email", "Invalid email format")
	}
	if a.Phone != "" && !ValidPhone(a.Phone) {
		errs.add("phone", "Invalid Spanish phone number")
	}
	if !dto.ValidService(a.Service) {
		errs.add("service", "Invalid service selected")
	}
	if msg := s.checkDate(a.Date); msg != "" {
		errs.add("date", msg)
	}
	if msg := checkTime(a.Time); msg != "" {
		errs.add("time", msg)
	}

	return errs.err()
}

func (s *AppointmentService) checkDate(date string) string {
	d, err := time.ParseInLocation(dto.DateLayout, date, s.rules.Location)
	if err != nil {
		return "Invalid date format"
	}
	today := s.today()
	switch {
	case d.Before(today):
		return "Cannot book appointments in the past"
	case d.After(today.AddDate(0, 0, s.rules.MaxDaysAhead)):
		return fmt.Sprintf("Cannot book appointments more than %d days in advance", s.rules.MaxDaysAhead)
	case d.Weekday() == time.Saturday || d.Weekday() == time.Sunday:
		return "Appointments are only available on weekdays"
	}
	return ""
}

func checkTime(t string) string {
	parsed, err := time.Parse(dto.TimeLayout, t)
	if err != nil {
		return "Invalid time format"
	}
	mins := parsed.Hour()*60 + parsed.Minute()
	if mins < 10*60+30 || mins > 14*60 {
		return "Appointments are only available between 10:30 and 14:00"
	}
	if parsed.Minute() != 0 && parsed.Minute() != 30 {
		return "Appointments must be scheduled at 30-minute intervals"
	}
	return ""
}

// Update applies an admin edit. Fields are format-checked only, so past
// bookings can still be corrected. A missing status resets to Pendiente.
func (s *AppointmentService) Update(ctx context.Context, id int64, upd *models.AppointmentUpdate) (*dto.Appointment, error) {
	errs := fieldErrors{}

	if upd.Name != nil && strings.TrimSpace(*upd.Name) == "" {
		errs.add("name", "Name is required")
	}
	if upd.Email != nil && !ValidEmail(*upd.Email) {
		errs.add("email", "Invalid email format")
	}
	if upd.Date != nil {
		if _, err := time.Parse(dto.DateLayout, *upd.Date); err != nil {
			errs.add("date", "Invalid date format")
		}
	}
	if upd.Time != nil {
		if _, err := time.Parse(dto.TimeLayout, *upd.Time); err != nil {
			errs.add("time", "Invalid time format")
		}
	}
	if upd.Status == nil {
		pending := dto.AppointmentStatusPending
		upd.Status = &pending
	} else if !dto.ValidAppointmentStatus(*upd.Status) {
		errs.add("status", "Invalid status")
	}
	if err := errs.err(); err != nil {
		return nil, err
	}

	updated, err := s.repo.Update(ctx, id, upd)
	if err != nil {
		return nil, err
	}

	s.logger.Info("appointment updated", slog.Int64("appointment_id", id), slog.String("status", updated.Status))
	return updated, nil
}

func (s *AppointmentService) Delete(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("appointment deleted", slog.Int64("appointment_id", id))
	return nil
}

// AvailableSlots lists up to AvailableDays weekdays, starting today, that
// still have free times. Times already past today are not offered.
func (s *AppointmentService) AvailableSlots(ctx context.Context) ([]models.DaySlots, error) {
	slots := make([]models.DaySlots, 0, s.rules.AvailableDays)
	now := s.now().In(s.rules.Location)
	today := s.today()

	for i := 0; i < s.rules.ScanDays && len(slots) < s.rules.AvailableDays; i++ {
		day := today.AddDate(0, 0, i)
		if day.Weekday() == time.Saturday || day.Weekday() == time.Sunday {
			continue
		}

		date := day.Format(dto.DateLayout)
		booked, err := s.repo.BookedTimes(ctx, date)
		if err != nil {
			return nil, fmt.Errorf("load booked times for %s: %w", date, err)
		}
		taken := make(map[string]bool, len(booked))
		for _, t := range booked {
			taken[t] = true
		}

		free := make([]string, 0, len(SlotTimes))
		for _, t := range SlotTimes {
			if taken[t] {
				continue
			}
			if i == 0 {
				start, _ := time.ParseInLocation(dto.DateLayout+" "+dto.TimeLayout, date+" "+t, s.rules.Location)
				if !start.After(now) {
					continue
				}
			}
			free = append(free, t)
		}

		if len(free) > 0 {
			slots = append(slots, models.DaySlots{Date: date, Label: FormatSpanishDate(date), Times: free})
		}
	}

	return slots, nil
}

// Analytics summarises the last 30 days of bookings.
func (s *AppointmentService) Analytics(ctx context.Context) (*dto.AppointmentAnalytics, error) {
	today := s.today()
	return s.repo.Summary(ctx, today.Format(dto.DateLayout), today.AddDate(0, 0, -30))
}

// SendDueReminders emails every active booking starting within lead from now.
// It returns how many reminders went out.
func (s *AppointmentService) SendDueReminders(ctx context.Context, lead time.Duration) (int, error) {
	now := s.now().In(s.rules.Location)
	due, err := s.repo.DueReminders(ctx, now, now.Add(lead))
	if err != nil {
		return 0, err
	}

	sent := 0
	for _, a := range due {
		if err := s.mailer.SendAppointmentReminder(ctx, a); err != nil {
			s.logger.Warn("reminder not sent", slog.Int64("appointment_id", a.ID), slog.Any("error", err))
			continue
		}
		if err := s.repo.MarkReminderSent(ctx, a.ID, s.now()); err != nil {
			s.logger.Error("failed to mark reminder sent", slog.Int64("appointment_id", a.ID), slog.Any("error", err))
			continue
		}
		sent++
	}
	return sent, nil
}

var spanishMonths = [...]string{
	"enero", "febrero", "marzo", "abril", "mayo", "junio",
	"julio", "agosto", "septiembre", "octubre", "noviembre", "diciembre",
}

// FormatSpanishDate renders YYYY-MM-DD as "2 de marzo de 2026".
func FormatSpanishDate(date string) string {
	d, err := time.Parse(dto.DateLayout, date)
	if err != nil {
		return date
	}
	return fmt.Sprintf("%d de %s de %d", d.Day(), spanishMonths[d.Month()-1], d.Year())
}
