// Package learning contains the immutable learning event entity and its
// append-only store. Events are the raw facts of the system: once written
// they are never updated or deleted, and all progress is derived from them.
// This is a pure domain layer with zero external dependencies.
package learning

import (
	"time"

	"github.com/Mdsadique5522/smart-lms-platform/internal/domain/course"
	"github.com/Mdsadique5522/smart-lms-platform/internal/domain/shared"
)

// ActionType is the kind of interaction a learning event records.
type ActionType string

const (
	// ActionWatch is video playback progress.
	ActionWatch ActionType = "watch"
	// ActionScroll is reading scroll progress.
	ActionScroll ActionType = "scroll"
	// ActionSubmit is a quiz submission.
	ActionSubmit ActionType = "submit"
)

// IsValid checks if the action type is one of the known kinds.
func (a ActionType) IsValid() bool {
	switch a {
	case ActionWatch, ActionScroll, ActionSubmit:
		return true
	}
	return false
}

// String returns the string representation.
func (a ActionType) String() string {
	return string(a)
}

// ValidFor reports whether the action is a legal interaction with the given
// content type. Exactly one action is valid per content type: watch for
// video, scroll for reading, submit for quiz.
func (a ActionType) ValidFor(ct course.ContentType) bool {
	switch ct {
	case course.ContentTypeVideo:
		return a == ActionWatch
	case course.ContentTypeReading:
		return a == ActionScroll
	case course.ContentTypeQuiz:
		return a == ActionSubmit
	}
	return false
}

// Event is a single immutable learning interaction. The
// (ModuleID, ContentID, ContentType) triple ties the event to a position in
// the course structure; events whose triple matches nothing in the current
// structure are kept but ignored by aggregation.
type Event struct {
	ID          string
	UserID      shared.UserID
	CourseID    shared.CourseID
	ModuleID    shared.ModuleID
	ContentID   shared.ContentID
	ContentType course.ContentType
	Action      ActionType
	Percentage  shared.Percentage
	TimeSpent   shared.TimeSpent
	Metadata    map[string]any
	Timestamp   time.Time
}

// NewEvent constructs a validated learning event. Percentage and timeSpent
// default to zero when the caller passes zero values; metadata may be nil.
func NewEvent(id string, userID shared.UserID, courseID shared.CourseID, moduleID shared.ModuleID, contentID shared.ContentID, contentType course.ContentType, action ActionType, percentage float64, timeSpent int, metadata map[string]any, timestamp time.Time) (*Event, error) {
	e := &Event{
		ID:          id,
		UserID:      userID,
		CourseID:    courseID,
		ModuleID:    moduleID,
		ContentID:   contentID,
		ContentType: contentType,
		Action:      action,
		Metadata:    metadata,
		Timestamp:   timestamp,
	}

	if id == "" {
		return nil, shared.NewDomainError("learning", "NewEvent", shared.ErrInvalidID, "event ID is empty")
	}
	if !userID.IsValid() {
		return nil, shared.ErrInvalidUserID
	}
	if !courseID.IsValid() {
		return nil, shared.ErrInvalidCourseID
	}
	if !moduleID.IsValid() {
		return nil, shared.ErrMissingEventField
	}
	if !contentID.IsValid() {
		return nil, shared.ErrMissingEventField
	}
	if !contentType.IsValid() {
		return nil, shared.ErrInvalidContentType
	}
	if !action.IsValid() {
		return nil, shared.ErrInvalidEventType
	}
	if !action.ValidFor(contentType) {
		return nil, shared.ErrInvalidEventPairing
	}

	p, err := shared.NewPercentage(percentage)
	if err != nil {
		return nil, err
	}
	e.Percentage = p

	ts, err := shared.NewTimeSpent(timeSpent)
	if err != nil {
		return nil, err
	}
	e.TimeSpent = ts

	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now()
	}

	return e, nil
}

// MatchesContent reports whether the event's triple matches the given
// structure position.
func (e *Event) MatchesContent(moduleID shared.ModuleID, key course.ContentKey) bool {
	return e.ModuleID == moduleID && e.ContentID == key.ContentID && e.ContentType == key.Type
}

// IsSubmission reports whether the event is a quiz submission.
func (e *Event) IsSubmission() bool {
	return e.ContentType == course.ContentTypeQuiz && e.Action == ActionSubmit
}
