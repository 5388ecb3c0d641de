// Package query contains read operations (CQRS - Queries).
package query

import (
	"context"

	"github.com/Mdsadique5522/smart-lms-platform/internal/domain/course"
	"github.com/Mdsadique5522/smart-lms-platform/internal/domain/learning"
	"github.com/Mdsadique5522/smart-lms-platform/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// GET EVENTS QUERY
// Lists the caller's raw learning events, newest first, optionally narrowed
// by course and content type.
// ══════════════════════════════════════════════════════════════════════════════

// DefaultEventsLimit is applied when the caller does not specify one.
const DefaultEventsLimit = 50

// MaxEventsLimit caps caller-specified limits.
const MaxEventsLimit = 200

// GetEventsQuery narrows the event listing.
type GetEventsQuery struct {
	UserID      string
	CourseID    string // optional
	ContentType string // optional
	Limit       int    // optional, defaults to DefaultEventsLimit
}

// GetEventsHandler handles event listings.
type GetEventsHandler struct {
	eventRepo learning.Repository
}

// NewGetEventsHandler creates a new GetEventsHandler.
func NewGetEventsHandler(eventRepo learning.Repository) *GetEventsHandler {
	return &GetEventsHandler{eventRepo: eventRepo}
}

// Handle returns the caller's events, newest first.
func (h *GetEventsHandler) Handle(ctx context.Context, q GetEventsQuery) ([]*learning.Event, error) {
	userID, err := shared.NewUserID(q.UserID)
	if err != nil {
		return nil, err
	}

	filter := learning.Filter{Limit: q.Limit}
	if filter.Limit <= 0 {
		filter.Limit = DefaultEventsLimit
	}
	if filter.Limit > MaxEventsLimit {
		filter.Limit = MaxEventsLimit
	}

	if q.CourseID != "" {
		courseID, err := shared.NewCourseID(q.CourseID)
		if err != nil {
			return nil, err
		}
		filter.CourseID = courseID
	}

	if q.ContentType != "" {
		ct := course.ContentType(q.ContentType)
		if !ct.IsValid() {
			return nil, shared.ErrInvalidContentType
		}
		filter.ContentType = ct
	}

	return h.eventRepo.ListByUser(ctx, userID, filter)
}
