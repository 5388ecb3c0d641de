// Package shared contains common domain types, errors, events, and value objects
// that are used across all domain packages.
package shared

import (
	"encoding/json"
	"time"
)

// EventType represents the type of domain event.
type EventType string

// Domain event types - these drive the event-driven architecture.
// Each event represents something significant that happened in the domain.
const (
	// Learning events
	EventLearningEventRecorded EventType = "learning.event_recorded"

	// Progress events
	EventProgressRecomputed EventType = "progress.recomputed"
	EventContentCompleted   EventType = "progress.content_completed"
	EventCourseCompleted    EventType = "progress.course_completed"

	// System events
	EventReconcileCompleted EventType = "system.reconcile_completed"
)

// Event is the base interface for all domain events.
type Event interface {
	// EventType returns the type of the event.
	EventType() EventType

	// OccurredAt returns when the event occurred.
	OccurredAt() time.Time

	// AggregateID returns the ID of the aggregate that produced this event.
	AggregateID() string

	// Payload returns the event data as a map for serialization.
	Payload() map[string]interface{}
}

// BaseEvent provides common event functionality.
type BaseEvent struct {
	Type          EventType `json:"type"`
	Timestamp     time.Time `json:"timestamp"`
	AggregateId   string    `json:"aggregate_id"`
	Version       int       `json:"version"`
	CorrelationID string    `json:"correlation_id,omitempty"`
}

// EventType implements Event interface.
func (e BaseEvent) EventType() EventType {
	return e.Type
}

// OccurredAt implements Event interface.
func (e BaseEvent) OccurredAt() time.Time {
	return e.Timestamp
}

// AggregateID implements Event interface.
func (e BaseEvent) AggregateID() string {
	return e.AggregateId
}

// NewBaseEvent creates a new base event.
func NewBaseEvent(eventType EventType, aggregateID string) BaseEvent {
	return BaseEvent{
		Type:        eventType,
		Timestamp:   time.Now(),
		AggregateId: aggregateID,
		Version:     1,
	}
}

// WithCorrelationID sets the correlation ID for tracing.
func (e BaseEvent) WithCorrelationID(id string) BaseEvent {
	e.CorrelationID = id
	return e
}

// ═══════════════════════════════════════════════════════════════════════════
// Learning Events
// ═══════════════════════════════════════════════════════════════════════════

// LearningEventRecordedEvent is emitted when a raw learning event is persisted.
type LearningEventRecordedEvent struct {
	BaseEvent
	UserID      string  `json:"user_id"`
	CourseID    string  `json:"course_id"`
	ModuleID    string  `json:"module_id"`
	ContentID   string  `json:"content_id"`
	ContentType string  `json:"content_type"`
	ActionType  string  `json:"action_type"`
	Percentage  float64 `json:"percentage"`
	TimeSpent   int     `json:"time_spent"`
}

// Payload implements Event interface.
func (e LearningEventRecordedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"user_id":      e.UserID,
		"course_id":    e.CourseID,
		"module_id":    e.ModuleID,
		"content_id":   e.ContentID,
		"content_type": e.ContentType,
		"action_type":  e.ActionType,
		"percentage":   e.Percentage,
		"time_spent":   e.TimeSpent,
	}
}

// NewLearningEventRecordedEvent creates a new LearningEventRecordedEvent.
func NewLearningEventRecordedEvent(eventID, userID, courseID, moduleID, contentID, contentType, actionType string, percentage float64, timeSpent int) LearningEventRecordedEvent {
	return LearningEventRecordedEvent{
		BaseEvent:   NewBaseEvent(EventLearningEventRecorded, eventID),
		UserID:      userID,
		CourseID:    courseID,
		ModuleID:    moduleID,
		ContentID:   contentID,
		ContentType: contentType,
		ActionType:  actionType,
		Percentage:  percentage,
		TimeSpent:   timeSpent,
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// Progress Events
// ═══════════════════════════════════════════════════════════════════════════

// ProgressRecomputedEvent is emitted after a snapshot is rebuilt and stored.
type ProgressRecomputedEvent struct {
	BaseEvent
	UserID          string  `json:"user_id"`
	CourseID        string  `json:"course_id"`
	OverallProgress float64 `json:"overall_progress"`
	TotalTimeSpent  int     `json:"total_time_spent"`
	EventCount      int     `json:"event_count"`
}

// Payload implements Event interface.
func (e ProgressRecomputedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"user_id":          e.UserID,
		"course_id":        e.CourseID,
		"overall_progress": e.OverallProgress,
		"total_time_spent": e.TotalTimeSpent,
		"event_count":      e.EventCount,
	}
}

// NewProgressRecomputedEvent creates a new ProgressRecomputedEvent.
func NewProgressRecomputedEvent(userID, courseID string, overall float64, totalTime, eventCount int) ProgressRecomputedEvent {
	return ProgressRecomputedEvent{
		BaseEvent:       NewBaseEvent(EventProgressRecomputed, userID),
		UserID:          userID,
		CourseID:        courseID,
		OverallProgress: overall,
		TotalTimeSpent:  totalTime,
		EventCount:      eventCount,
	}
}

// ContentCompletedEvent is emitted when a content item transitions to completed.
type ContentCompletedEvent struct {
	BaseEvent
	UserID      string `json:"user_id"`
	CourseID    string `json:"course_id"`
	ModuleID    string `json:"module_id"`
	ContentID   string `json:"content_id"`
	ContentType string `json:"content_type"`
}

// Payload implements Event interface.
func (e ContentCompletedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"user_id":      e.UserID,
		"course_id":    e.CourseID,
		"module_id":    e.ModuleID,
		"content_id":   e.ContentID,
		"content_type": e.ContentType,
	}
}

// NewContentCompletedEvent creates a new ContentCompletedEvent.
func NewContentCompletedEvent(userID, courseID, moduleID, contentID, contentType string) ContentCompletedEvent {
	return ContentCompletedEvent{
		BaseEvent:   NewBaseEvent(EventContentCompleted, userID),
		UserID:      userID,
		CourseID:    courseID,
		ModuleID:    moduleID,
		ContentID:   contentID,
		ContentType: contentType,
	}
}

// CourseCompletedEvent is emitted when overall progress reaches 100 percent.
type CourseCompletedEvent struct {
	BaseEvent
	UserID         string `json:"user_id"`
	CourseID       string `json:"course_id"`
	TotalTimeSpent int    `json:"total_time_spent"`
	ModuleCount    int    `json:"module_count"`
}

// Payload implements Event interface.
func (e CourseCompletedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"user_id":          e.UserID,
		"course_id":        e.CourseID,
		"total_time_spent": e.TotalTimeSpent,
		"module_count":     e.ModuleCount,
	}
}

// NewCourseCompletedEvent creates a new CourseCompletedEvent.
func NewCourseCompletedEvent(userID, courseID string, totalTime, moduleCount int) CourseCompletedEvent {
	return CourseCompletedEvent{
		BaseEvent:      NewBaseEvent(EventCourseCompleted, userID),
		UserID:         userID,
		CourseID:       courseID,
		TotalTimeSpent: totalTime,
		ModuleCount:    moduleCount,
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// System Events
// ═══════════════════════════════════════════════════════════════════════════

// ReconcileCompletedEvent is emitted when a reconciliation sweep finishes.
type ReconcileCompletedEvent struct {
	BaseEvent
	PairsChecked    int `json:"pairs_checked"`
	PairsRecomputed int `json:"pairs_recomputed"`
	Failures        int `json:"failures"`
}

// Payload implements Event interface.
func (e ReconcileCompletedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"pairs_checked":    e.PairsChecked,
		"pairs_recomputed": e.PairsRecomputed,
		"failures":         e.Failures,
	}
}

// NewReconcileCompletedEvent creates a new ReconcileCompletedEvent.
func NewReconcileCompletedEvent(checked, recomputed, failures int) ReconcileCompletedEvent {
	return ReconcileCompletedEvent{
		BaseEvent:       NewBaseEvent(EventReconcileCompleted, "reconciler"),
		PairsChecked:    checked,
		PairsRecomputed: recomputed,
		Failures:        failures,
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// Event Envelope (for serialization and transport)
// ═══════════════════════════════════════════════════════════════════════════

// EventEnvelope wraps an event for transport/storage.
type EventEnvelope struct {
	ID            string          `json:"id"`
	Type          EventType       `json:"type"`
	AggregateID   string          `json:"aggregate_id"`
	Timestamp     time.Time       `json:"timestamp"`
	Version       int             `json:"version"`
	CorrelationID string          `json:"correlation_id,omitempty"`
	Payload       json.RawMessage `json:"payload"`
}

// EventHandler is a function that handles an event.
type EventHandler func(event Event) error

// EventPublisher defines the interface for publishing events.
type EventPublisher interface {
	// Publish sends an event to subscribers.
	Publish(event Event) error
}

// EventSubscriber defines the interface for subscribing to events.
type EventSubscriber interface {
	// Subscribe registers a handler for an event type.
	Subscribe(eventType EventType, handler EventHandler) error

	// SubscribeAll registers a handler for all events.
	SubscribeAll(handler EventHandler) error
}

// EventBus combines publishing and subscribing.
type EventBus interface {
	EventPublisher
	EventSubscriber
}
