// Package learning contains the immutable learning event entity and its
// append-only store.
package learning

import (
	"context"
	"time"

	"github.com/Mdsadique5522/smart-lms-platform/internal/domain/course"
	"github.com/Mdsadique5522/smart-lms-platform/internal/domain/shared"
)

// Filter narrows event listings. Zero values mean "no constraint".
type Filter struct {
	CourseID    shared.CourseID
	ContentType course.ContentType
	Limit       int
}

// StalePair identifies a (user, course) pair whose snapshot lags behind the
// event stream, or that has events but no snapshot at all.
type StalePair struct {
	UserID       shared.UserID
	CourseID     shared.CourseID
	NewestEvent  time.Time
	LastActivity *time.Time // nil when no snapshot exists yet
}

// Repository defines the append-only store for learning events.
// There are no update or delete operations.
type Repository interface {
	// Append persists a new event. The event is never modified afterwards.
	Append(ctx context.Context, event *Event) error

	// ListByUserAndCourse returns all events for the pair, newest first.
	// This is the aggregation engine's read path and has no limit.
	ListByUserAndCourse(ctx context.Context, userID shared.UserID, courseID shared.CourseID) ([]*Event, error)

	// ListRecent returns the newest events for the pair, newest first,
	// bounded by limit.
	ListRecent(ctx context.Context, userID shared.UserID, courseID shared.CourseID, limit int) ([]*Event, error)

	// ListByUser returns events for a user across courses, newest first,
	// narrowed by the filter.
	ListByUser(ctx context.Context, userID shared.UserID, filter Filter) ([]*Event, error)

	// FindStalePairs returns (user, course) pairs whose newest event is more
	// recent than the stored snapshot's last activity, or that have events
	// but no snapshot. Used by the reconciliation worker.
	FindStalePairs(ctx context.Context, limit int) ([]StalePair, error)
}
