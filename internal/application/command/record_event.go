// Package command contains write operations (CQRS - Commands).
package command

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/Mdsadique5522/smart-lms-platform/internal/domain/course"
	"github.com/Mdsadique5522/smart-lms-platform/internal/domain/learning"
	"github.com/Mdsadique5522/smart-lms-platform/internal/domain/shared"
	"github.com/Mdsadique5522/smart-lms-platform/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// RECORD EVENT COMMAND
// Ingests a single learning event: validate, append to the immutable stream,
// then synchronously refresh the derived snapshot. Aggregation failures are
// logged and swallowed so the accepted event is never lost.
// ══════════════════════════════════════════════════════════════════════════════

// RecordEventCommand contains the data to ingest a learning event.
type RecordEventCommand struct {
	// UserID is the learner performing the interaction.
	UserID string

	// CourseID identifies the course the interaction belongs to.
	CourseID string

	// ModuleID identifies the module within the course.
	ModuleID string

	// ContentID identifies the content item within the module.
	ContentID string

	// ContentType is the kind of content: video, reading, or quiz.
	ContentType string

	// EventType is the interaction kind: watch, scroll, or submit.
	EventType string

	// Percentage is the observed progress (0-100). Defaults to 0.
	Percentage float64

	// TimeSpent is seconds spent in this interaction. Defaults to 0.
	TimeSpent int

	// Metadata carries opaque client payload.
	Metadata map[string]interface{}

	// Timestamp is when the interaction occurred (defaults to now if zero).
	Timestamp time.Time
}

// RecordEventResult contains the result of ingesting an event.
type RecordEventResult struct {
	// ID is the identifier assigned to the stored event.
	ID string

	// ContentType echoes the validated content type.
	ContentType string

	// EventType echoes the validated event type.
	EventType string

	// Percentage echoes the stored percentage.
	Percentage float64

	// Timestamp is the stored event timestamp.
	Timestamp time.Time
}

// ══════════════════════════════════════════════════════════════════════════════
// HANDLER
// ══════════════════════════════════════════════════════════════════════════════

// RecordEventHandler handles the RecordEventCommand.
type RecordEventHandler struct {
	eventRepo      learning.Repository
	recompute      *RecomputeProgressHandler
	eventPublisher shared.EventPublisher
	log            *logger.Logger
}

// NewRecordEventHandler creates a new RecordEventHandler.
func NewRecordEventHandler(
	eventRepo learning.Repository,
	recompute *RecomputeProgressHandler,
	eventPublisher shared.EventPublisher,
	log *logger.Logger,
) *RecordEventHandler {
	if log == nil {
		log = logger.Default()
	}
	return &RecordEventHandler{
		eventRepo:      eventRepo,
		recompute:      recompute,
		eventPublisher: eventPublisher,
		log:            log.With(logger.Component("record_event")),
	}
}

// Handle executes the record event command.
func (h *RecordEventHandler) Handle(ctx context.Context, cmd RecordEventCommand) (*RecordEventResult, error) {
	userID, err := shared.NewUserID(cmd.UserID)
	if err != nil {
		return nil, err
	}
	courseID, err := shared.NewCourseID(cmd.CourseID)
	if err != nil {
		return nil, err
	}

	// NewEvent enforces the rest: required fields, pairing, ranges.
	event, err := learning.NewEvent(
		uuid.New().String(),
		userID,
		courseID,
		shared.ModuleID(cmd.ModuleID),
		shared.ContentID(cmd.ContentID),
		course.ContentType(cmd.ContentType),
		learning.ActionType(cmd.EventType),
		cmd.Percentage,
		cmd.TimeSpent,
		cmd.Metadata,
		cmd.Timestamp,
	)
	if err != nil {
		return nil, err
	}

	if err := h.eventRepo.Append(ctx, event); err != nil {
		return nil, shared.WrapError("learning", "Record", shared.ErrStorageUnavailable, "failed to append event", err)
	}

	h.publishRecorded(event)

	// Synchronous refresh of the derived snapshot. A failure here must not
	// fail the ingestion: the event is already durable and the
	// reconciliation worker will repair the snapshot later.
	if h.recompute != nil {
		if _, err := h.recompute.Handle(ctx, RecomputeProgressCommand{
			UserID:   userID.String(),
			CourseID: courseID.String(),
		}); err != nil {
			h.log.Error("snapshot recompute failed after event ingestion",
				logger.UserID(userID.String()),
				logger.CourseID(courseID.String()),
				logger.EventID(event.ID),
				logger.Err(err),
			)
		}
	}

	return &RecordEventResult{
		ID:          event.ID,
		ContentType: event.ContentType.String(),
		EventType:   event.Action.String(),
		Percentage:  event.Percentage.Float64(),
		Timestamp:   event.Timestamp,
	}, nil
}

// publishRecorded emits the learning.event_recorded domain event.
// Bus failures never affect the command outcome.
func (h *RecordEventHandler) publishRecorded(event *learning.Event) {
	if h.eventPublisher == nil {
		return
	}
	domainEvent := shared.NewLearningEventRecordedEvent(
		event.ID,
		event.UserID.String(),
		event.CourseID.String(),
		event.ModuleID.String(),
		event.ContentID.String(),
		event.ContentType.String(),
		event.Action.String(),
		event.Percentage.Float64(),
		event.TimeSpent.Int(),
	)
	if err := h.eventPublisher.Publish(domainEvent); err != nil {
		h.log.Warn("failed to publish event_recorded",
			logger.EventID(event.ID),
			logger.Err(err),
		)
	}
}
