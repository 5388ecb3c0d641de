// Package eventhandler contains subscribers for domain events published on
// the in-memory bus.
package eventhandler

import (
	"log/slog"

	"github.com/Mdsadique5522/smart-lms-platform/internal/domain/shared"
)

// ═══════════════════════════════════════════════════════════════════════════
// ON COURSE COMPLETED HANDLER
// Records course completions in the operational log. Downstream consumers
// (certificates, notifications) hang off this event; none are in scope here,
// so the audit trail is the whole job.
// ═══════════════════════════════════════════════════════════════════════════

// OnCourseCompletedHandler logs course completion transitions.
type OnCourseCompletedHandler struct {
	logger *slog.Logger
}

// NewOnCourseCompletedHandler creates the handler.
func NewOnCourseCompletedHandler(logger *slog.Logger) *OnCourseCompletedHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &OnCourseCompletedHandler{
		logger: logger.With("handler", "on_course_completed"),
	}
}

// Handle implements shared.EventHandler.
func (h *OnCourseCompletedHandler) Handle(event shared.Event) error {
	completed, ok := event.(shared.CourseCompletedEvent)
	if !ok {
		h.logger.Warn("received unexpected event type", "event_type", event.EventType())
		return nil
	}

	h.logger.Info("course completed",
		"user_id", completed.UserID,
		"course_id", completed.CourseID,
		"total_time_spent", completed.TotalTimeSpent,
		"module_count", completed.ModuleCount,
		"occurred_at", completed.OccurredAt(),
	)
	return nil
}

// EventType returns the event type this handler subscribes to.
func (h *OnCourseCompletedHandler) EventType() shared.EventType {
	return shared.EventCourseCompleted
}
