// Package jobs contains implementations of scheduled jobs for the Smart LMS
// Platform.
package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/Mdsadique5522/smart-lms-platform/internal/application/command"
	"github.com/Mdsadique5522/smart-lms-platform/internal/domain/learning"
	"github.com/Mdsadique5522/smart-lms-platform/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// RECONCILE SNAPSHOTS JOB
// ══════════════════════════════════════════════════════════════════════════════

// ReconcileSnapshotsJob sweeps for (user, course) pairs whose snapshot lags
// behind the event stream and recomputes them. The synchronous recompute on
// ingestion is best-effort, so this job is what guarantees snapshots
// eventually converge on the event stream.
type ReconcileSnapshotsJob struct {
	eventRepo      learning.Repository
	recompute      *command.RecomputeProgressHandler
	eventPublisher shared.EventPublisher
	logger         *slog.Logger

	config ReconcileConfig

	lastRunStats atomic.Value // *ReconcileStats
}

// ReconcileConfig contains configuration for the reconcile job.
type ReconcileConfig struct {
	// BatchSize is the maximum number of stale pairs processed per run.
	BatchSize int

	// Timeout is the maximum duration for a single run.
	Timeout time.Duration
}

// DefaultReconcileConfig returns sensible defaults.
func DefaultReconcileConfig() ReconcileConfig {
	return ReconcileConfig{
		BatchSize: 500,
		Timeout:   5 * time.Minute,
	}
}

// ReconcileStats contains statistics from a reconcile run.
type ReconcileStats struct {
	StartedAt       time.Time
	CompletedAt     time.Time
	Duration        time.Duration
	PairsChecked    int
	PairsRecomputed int
	Failures        int
}

// NewReconcileSnapshotsJob creates a new reconcile snapshots job.
func NewReconcileSnapshotsJob(
	eventRepo learning.Repository,
	recompute *command.RecomputeProgressHandler,
	eventPublisher shared.EventPublisher,
	logger *slog.Logger,
	config ReconcileConfig,
) *ReconcileSnapshotsJob {
	if logger == nil {
		logger = slog.Default()
	}
	if config.BatchSize <= 0 {
		config.BatchSize = DefaultReconcileConfig().BatchSize
	}

	return &ReconcileSnapshotsJob{
		eventRepo:      eventRepo,
		recompute:      recompute,
		eventPublisher: eventPublisher,
		logger:         logger,
		config:         config,
	}
}

// Name returns the job name.
func (j *ReconcileSnapshotsJob) Name() string {
	return "reconcile_snapshots"
}

// Description returns a human-readable description.
func (j *ReconcileSnapshotsJob) Description() string {
	return "Recomputes progress snapshots that lag behind the learning event stream"
}

// Run executes the reconcile job.
func (j *ReconcileSnapshotsJob) Run(ctx context.Context) error {
	startedAt := time.Now()
	stats := &ReconcileStats{StartedAt: startedAt}

	j.logger.Info("starting reconcile_snapshots job")

	if j.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, j.config.Timeout)
		defer cancel()
	}

	pairs, err := j.eventRepo.FindStalePairs(ctx, j.config.BatchSize)
	if err != nil {
		return fmt.Errorf("failed to find stale pairs: %w", err)
	}

	stats.PairsChecked = len(pairs)

	for _, pair := range pairs {
		if ctx.Err() != nil {
			break
		}

		_, err := j.recompute.Handle(ctx, command.RecomputeProgressCommand{
			UserID:   pair.UserID.String(),
			CourseID: pair.CourseID.String(),
		})
		if err != nil {
			stats.Failures++
			j.logger.Warn("failed to reconcile pair",
				"user_id", pair.UserID.String(),
				"course_id", pair.CourseID.String(),
				"newest_event", pair.NewestEvent,
				"error", err,
			)
			continue
		}
		stats.PairsRecomputed++
	}

	stats.CompletedAt = time.Now()
	stats.Duration = stats.CompletedAt.Sub(startedAt)
	j.lastRunStats.Store(stats)

	if j.eventPublisher != nil {
		event := shared.NewReconcileCompletedEvent(stats.PairsChecked, stats.PairsRecomputed, stats.Failures)
		if err := j.eventPublisher.Publish(event); err != nil {
			j.logger.Warn("failed to publish reconcile event", "error", err)
		}
	}

	j.logger.Info("reconcile_snapshots job completed",
		"duration", stats.Duration.String(),
		"pairs_checked", stats.PairsChecked,
		"pairs_recomputed", stats.PairsRecomputed,
		"failures", stats.Failures,
	)

	if stats.Failures > 0 {
		return fmt.Errorf("reconcile completed with %d failures", stats.Failures)
	}

	return nil
}

// LastRunStats returns statistics from the last run.
func (j *ReconcileSnapshotsJob) LastRunStats() *ReconcileStats {
	stats := j.lastRunStats.Load()
	if stats == nil {
		return nil
	}
	return stats.(*ReconcileStats)
}
