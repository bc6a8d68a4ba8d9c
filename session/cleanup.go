package session

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// DefaultCleanupInterval is the default interval between cleanup runs.
const DefaultCleanupInterval = 10 * time.Minute

// CleanupJob periodically removes stale sessions from a tracker.
type CleanupJob struct {
	tracker  TrackerService
	interval time.Duration

	mu       sync.Mutex
	running  bool
	stopChan chan struct{}
}

// NewCleanupJob creates a cleanup job.
func NewCleanupJob(tracker TrackerService, interval time.Duration) *CleanupJob {
	if interval <= 0 {
		interval = DefaultCleanupInterval
	}
	return &CleanupJob{
		tracker:  tracker,
		interval: interval,
	}
}

// Start begins the periodic cleanup job.
// This method is non-blocking and starts the cleanup in a goroutine.
func (j *CleanupJob) Start(ctx context.Context) {
	j.mu.Lock()
	defer j.mu.Unlock()

	if j.running {
		return
	}

	j.running = true
	j.stopChan = make(chan struct{})

	go j.run(ctx)

	slog.Info("session cleanup job started", "interval", j.interval)
}

// Stop stops the cleanup job.
func (j *CleanupJob) Stop() {
	j.mu.Lock()
	defer j.mu.Unlock()

	if !j.running {
		return
	}

	close(j.stopChan)
	j.running = false

	slog.Info("session cleanup job stopped")
}

// RunOnce executes a single cleanup pass immediately.
// Useful for testing or manual cleanup.
func (j *CleanupJob) RunOnce() int {
	return j.tracker.CleanupStale()
}

// IsRunning returns whether the cleanup job is currently running.
func (j *CleanupJob) IsRunning() bool {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.running
}

func (j *CleanupJob) run(ctx context.Context) {
	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-j.stopChan:
			return
		case <-ticker.C:
			if removed := j.tracker.CleanupStale(); removed > 0 {
				slog.Debug("session cleanup pass completed", "removed", removed)
			}
		}
	}
}
