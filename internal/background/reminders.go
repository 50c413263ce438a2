package background

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// ReminderSender sends reminders for bookings starting within lead.
type ReminderSender interface {
	SendDueReminders(ctx context.Context, lead time.Duration) (int, error)
}

// ReminderDispatcher emails appointment reminders ahead of the booking.
type ReminderDispatcher struct {
	sender   ReminderSender
	lead     time.Duration
	interval time.Duration
	logger   *slog.Logger
	stopCh   chan struct{}
	stopOnce sync.Once
}

func NewReminderDispatcher(sender ReminderSender, lead, interval time.Duration, logger *slog.Logger) *ReminderDispatcher {
	return &ReminderDispatcher{
		sender:   sender,
		lead:     lead,
		interval: interval,
		logger:   logger,
		stopCh:   make(chan struct{}),
	}
}

func (d *ReminderDispatcher) Start(ctx context.Context) {
	ticker := time.NewTicker(d.interval)
	defer ticker.Stop()

	d.RunOnce(ctx)

	for {
		select {
		case <-ticker.C:
			d.RunOnce(ctx)
		case <-d.stopCh:
			d.logger.Info("reminder dispatcher stopped")
			return
		case <-ctx.Done():
			d.logger.Info("reminder dispatcher context cancelled")
			return
		}
	}
}

// RunOnce sends whatever reminders are due right now.
func (d *ReminderDispatcher) RunOnce(ctx context.Context) {
	runCtx, cancel := context.WithTimeout(ctx, d.interval)
	defer cancel()

	sent, err := d.sender.SendDueReminders(runCtx, d.lead)
	if err != nil {
		d.logger.Error("failed to dispatch reminders", slog.Any("error", err))
		return
	}
	if sent > 0 {
		d.logger.Info("appointment reminders sent", slog.Int("count", sent))
	}
}

func (d *ReminderDispatcher) Stop() {
	d.stopOnce.Do(func() { close(d.stopCh) })
}
