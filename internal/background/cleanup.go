package background

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// PurgeFunc deletes expired rows and reports how many went.
type PurgeFunc func(ctx context.Context) (int64, error)

// CleanupTask is one named purge run on every tick.
type CleanupTask struct {
	Name  string
	Purge PurgeFunc
}

// CleanupManager periodically purges expired gate data: old login attempts
// and revoked sessions past their expiry.
type CleanupManager struct {
	tasks    []CleanupTask
	logger   *slog.Logger
	interval time.Duration
	timeout  time.Duration
	stopCh   chan struct{}
	stopOnce sync.Once
}

// NewCleanupManager creates a new cleanup manager
func NewCleanupManager(logger *slog.Logger, interval time.Duration, tasks ...CleanupTask) *CleanupManager {
	return &CleanupManager{
		tasks:    tasks,
		logger:   logger,
		interval: interval,
		timeout:  30 * time.Second,
		stopCh:   make(chan struct{}),
	}
}

// Start begins the periodic cleanup task
func (cm *CleanupManager) Start(ctx context.Context) {
	ticker := time.NewTicker(cm.interval)
	defer ticker.Stop()

	// Run immediately on startup
	cm.RunOnce(ctx)

	for {
		select {
		case <-ticker.C:
			cm.RunOnce(ctx)
		case <-cm.stopCh:
			cm.logger.Info("cleanup manager stopped")
			return
		case <-ctx.Done():
			cm.logger.Info("cleanup manager context cancelled")
			return
		}
	}
}

// RunOnce runs every task once. A failing task does not stop the others.
func (cm *CleanupManager) RunOnce(ctx context.Context) {
	for _, task := range cm.tasks {
		cleanupCtx, cancel := context.WithTimeout(ctx, cm.timeout)
		rowsDeleted, err := task.Purge(cleanupCtx)
		cancel()

		if err != nil {
			cm.logger.Error("cleanup failed", slog.String("task", task.Name), slog.Any("error", err))
			continue
		}
		if rowsDeleted > 0 {
			cm.logger.Info("cleanup completed", slog.String("task", task.Name), slog.Int64("rows_deleted", rowsDeleted))
		}
	}
}

// Stop signals the cleanup manager to stop
func (cm *CleanupManager) Stop() {
	cm.stopOnce.Do(func() { close(cm.stopCh) })
}
