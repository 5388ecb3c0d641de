// Package eventhandler contains subscribers for domain events published on
// the in-memory bus.
package eventhandler

import (
	"context"
	"log/slog"

	"github.com/Mdsadique5522/smart-lms-platform/internal/application/query"
	"github.com/Mdsadique5522/smart-lms-platform/internal/domain/shared"
)

// ═══════════════════════════════════════════════════════════════════════════
// ON PROGRESS RECOMPUTED HANDLER
// Drops the cached snapshot for the recomputed pair so the next read goes to
// storage and re-populates the cache with the fresh value.
// ═══════════════════════════════════════════════════════════════════════════

// OnProgressRecomputedHandler invalidates the snapshot cache after recompute.
type OnProgressRecomputedHandler struct {
	cache  query.SnapshotCache
	logger *slog.Logger
}

// NewOnProgressRecomputedHandler creates the handler. The cache may be nil
// when Redis is disabled; the handler then does nothing.
func NewOnProgressRecomputedHandler(cache query.SnapshotCache, logger *slog.Logger) *OnProgressRecomputedHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &OnProgressRecomputedHandler{
		cache:  cache,
		logger: logger.With("handler", "on_progress_recomputed"),
	}
}

// Handle implements shared.EventHandler.
func (h *OnProgressRecomputedHandler) Handle(event shared.Event) error {
	recomputed, ok := event.(shared.ProgressRecomputedEvent)
	if !ok {
		h.logger.Warn("received unexpected event type", "event_type", event.EventType())
		return nil
	}

	if h.cache == nil {
		return nil
	}

	ctx := context.Background()
	userID := shared.UserID(recomputed.UserID)
	courseID := shared.CourseID(recomputed.CourseID)
	if err := h.cache.Invalidate(ctx, userID, courseID); err != nil {
		h.logger.Warn("failed to invalidate snapshot cache",
			"user_id", recomputed.UserID,
			"course_id", recomputed.CourseID,
			"error", err,
		)
		return nil
	}

	h.logger.Debug("snapshot cache invalidated",
		"user_id", recomputed.UserID,
		"course_id", recomputed.CourseID,
		"overall_progress", recomputed.OverallProgress,
	)
	return nil
}

// EventType returns the event type this handler subscribes to.
func (h *OnProgressRecomputedHandler) EventType() shared.EventType {
	return shared.EventProgressRecomputed
}
