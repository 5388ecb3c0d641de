// Package command contains write operations (CQRS - Commands).
package command

import (
	"context"
	"time"

	"github.com/Mdsadique5522/smart-lms-platform/internal/domain/course"
	"github.com/Mdsadique5522/smart-lms-platform/internal/domain/learning"
	"github.com/Mdsadique5522/smart-lms-platform/internal/domain/progress"
	"github.com/Mdsadique5522/smart-lms-platform/internal/domain/shared"
	"github.com/Mdsadique5522/smart-lms-platform/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// RECOMPUTE PROGRESS COMMAND
// Rebuilds the progress snapshot for a (user, course) pair from scratch:
// load the course structure, load the full event stream, fold, replace the
// stored snapshot wholesale. There is no incremental path; idempotence comes
// from always recomputing everything.
// ══════════════════════════════════════════════════════════════════════════════

// RecomputeProgressCommand identifies the pair to rebuild.
type RecomputeProgressCommand struct {
	UserID   string
	CourseID string
}

// RecomputeProgressHandler handles the RecomputeProgressCommand.
type RecomputeProgressHandler struct {
	courseRepo     course.Repository
	eventRepo      learning.Repository
	snapshots      progress.SnapshotStore
	eventPublisher shared.EventPublisher
	log            *logger.Logger

	// now is swappable for deterministic tests.
	now func() time.Time
}

// NewRecomputeProgressHandler creates a new RecomputeProgressHandler.
func NewRecomputeProgressHandler(
	courseRepo course.Repository,
	eventRepo learning.Repository,
	snapshots progress.SnapshotStore,
	eventPublisher shared.EventPublisher,
	log *logger.Logger,
) *RecomputeProgressHandler {
	if log == nil {
		log = logger.Default()
	}
	return &RecomputeProgressHandler{
		courseRepo:     courseRepo,
		eventRepo:      eventRepo,
		snapshots:      snapshots,
		eventPublisher: eventPublisher,
		log:            log.With(logger.Component("recompute_progress")),
		now:            time.Now,
	}
}

// WithClock overrides the handler's clock. Intended for tests.
func (h *RecomputeProgressHandler) WithClock(now func() time.Time) *RecomputeProgressHandler {
	h.now = now
	return h
}

// Handle executes the recompute. A missing course is fatal and nothing is
// written; any other failure also leaves the previous snapshot untouched
// because the write is a single wholesale upsert.
func (h *RecomputeProgressHandler) Handle(ctx context.Context, cmd RecomputeProgressCommand) (*progress.Snapshot, error) {
	userID, err := shared.NewUserID(cmd.UserID)
	if err != nil {
		return nil, err
	}
	courseID, err := shared.NewCourseID(cmd.CourseID)
	if err != nil {
		return nil, err
	}

	crs, err := h.courseRepo.GetByID(ctx, courseID)
	if err != nil {
		return nil, shared.WrapError("progress", "Recompute", shared.ErrNotFound, "course structure unavailable", err)
	}

	events, err := h.eventRepo.ListByUserAndCourse(ctx, userID, courseID)
	if err != nil {
		return nil, shared.WrapError("progress", "Recompute", shared.ErrStorageUnavailable, "failed to load events", err)
	}

	// Previous snapshot is only needed to detect completion transitions for
	// domain events; its absence is not an error.
	previous, err := h.snapshots.Get(ctx, userID, courseID)
	if err != nil && !shared.IsNotFound(err) {
		h.log.Warn("failed to load previous snapshot",
			logger.UserID(userID.String()),
			logger.CourseID(courseID.String()),
			logger.Err(err),
		)
		previous = nil
	}

	snap := progress.BuildSnapshot(userID, crs, events, h.now())

	if err := h.snapshots.Upsert(ctx, snap); err != nil {
		return nil, shared.WrapError("progress", "Recompute", shared.ErrStorageUnavailable, "failed to store snapshot", err)
	}

	h.publishTransitions(previous, snap, len(events))

	h.log.Debug("snapshot recomputed",
		logger.UserID(userID.String()),
		logger.CourseID(courseID.String()),
		logger.OverallProgress(snap.OverallProgress),
		logger.Int("event_count", len(events)),
	)

	return snap, nil
}

// publishTransitions emits domain events for the recompute and for any
// content or course that newly completed. Best effort only.
func (h *RecomputeProgressHandler) publishTransitions(previous, current *progress.Snapshot, eventCount int) {
	if h.eventPublisher == nil {
		return
	}

	h.publish(shared.NewProgressRecomputedEvent(
		current.UserID.String(),
		current.CourseID.String(),
		current.OverallProgress,
		current.TotalTimeSpent,
		eventCount,
	))

	for _, m := range current.Modules {
		for _, c := range m.Contents {
			if c.Status != progress.StatusCompleted {
				continue
			}
			if previous != nil {
				if prev, ok := previous.FindContent(m.ModuleID, c.ContentID); ok && prev.Status == progress.StatusCompleted {
					continue
				}
			}
			h.publish(shared.NewContentCompletedEvent(
				current.UserID.String(),
				current.CourseID.String(),
				m.ModuleID.String(),
				c.ContentID.String(),
				c.ContentType.String(),
			))
		}
	}

	if current.IsCourseCompleted() && (previous == nil || !previous.IsCourseCompleted()) {
		h.publish(shared.NewCourseCompletedEvent(
			current.UserID.String(),
			current.CourseID.String(),
			current.TotalTimeSpent,
			len(current.Modules),
		))
	}
}

func (h *RecomputeProgressHandler) publish(event shared.Event) {
	if err := h.eventPublisher.Publish(event); err != nil {
		h.log.Warn("failed to publish domain event",
			logger.String("type", string(event.EventType())),
			logger.Err(err),
		)
	}
}
