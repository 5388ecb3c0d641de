package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/Mdsadique5522/smart-lms-platform/internal/domain/course"
	"github.com/Mdsadique5522/smart-lms-platform/internal/domain/learning"
	"github.com/Mdsadique5522/smart-lms-platform/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// EVENT REPOSITORY IMPLEMENTATION
// Append-only: INSERT and SELECT only, no UPDATE or DELETE statements.
// ══════════════════════════════════════════════════════════════════════════════

// EventRepository implements learning.Repository for PostgreSQL.
type EventRepository struct {
	conn *Connection
}

// NewEventRepository creates a new EventRepository.
func NewEventRepository(conn *Connection) *EventRepository {
	return &EventRepository{conn: conn}
}

const eventColumns = `id, user_id, course_id, module_id, content_id, content_type,
	   event_type, percentage, time_spent, metadata, occurred_at`

// Append persists a new event.
func (r *EventRepository) Append(ctx context.Context, e *learning.Event) error {
	query := `
		INSERT INTO learning_events (
			id, user_id, course_id, module_id, content_id, content_type,
			event_type, percentage, time_spent, metadata, occurred_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	var metadataJSON []byte
	if e.Metadata != nil {
		var err error
		metadataJSON, err = json.Marshal(e.Metadata)
		if err != nil {
			return fmt.Errorf("failed to marshal event metadata: %w", err)
		}
	}

	_, err := r.conn.Exec(ctx, query,
		e.ID,
		e.UserID.String(),
		e.CourseID.String(),
		e.ModuleID.String(),
		e.ContentID.String(),
		e.ContentType.String(),
		e.Action.String(),
		e.Percentage.Float64(),
		e.TimeSpent.Int(),
		metadataJSON,
		e.Timestamp,
	)
	if err != nil {
		if IsUniqueViolation(err) {
			return shared.ErrAlreadyProcessed
		}
		return fmt.Errorf("failed to append event: %w", err)
	}

	return nil
}

// ListByUserAndCourse returns all events for the pair, newest first.
func (r *EventRepository) ListByUserAndCourse(ctx context.Context, userID shared.UserID, courseID shared.CourseID) ([]*learning.Event, error) {
	query := `
		SELECT ` + eventColumns + `
		FROM learning_events
		WHERE user_id = $1 AND course_id = $2
		ORDER BY occurred_at DESC, created_at DESC
	`

	rows, err := r.conn.Query(ctx, query, userID.String(), courseID.String())
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}
	defer rows.Close()

	return scanEvents(rows)
}

// ListRecent returns the newest events for the pair, newest first.
func (r *EventRepository) ListRecent(ctx context.Context, userID shared.UserID, courseID shared.CourseID, limit int) ([]*learning.Event, error) {
	query := `
		SELECT ` + eventColumns + `
		FROM learning_events
		WHERE user_id = $1 AND course_id = $2
		ORDER BY occurred_at DESC, created_at DESC
		LIMIT $3
	`

	rows, err := r.conn.Query(ctx, query, userID.String(), courseID.String(), limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list recent events: %w", err)
	}
	defer rows.Close()

	return scanEvents(rows)
}

// ListByUser returns events for a user across courses, newest first.
func (r *EventRepository) ListByUser(ctx context.Context, userID shared.UserID, filter learning.Filter) ([]*learning.Event, error) {
	query := `
		SELECT ` + eventColumns + `
		FROM learning_events
		WHERE user_id = $1
	`
	args := []interface{}{userID.String()}

	if filter.CourseID != "" {
		args = append(args, filter.CourseID.String())
		query += fmt.Sprintf(" AND course_id = $%d", len(args))
	}
	if filter.ContentType != "" {
		args = append(args, filter.ContentType.String())
		query += fmt.Sprintf(" AND content_type = $%d", len(args))
	}

	query += " ORDER BY occurred_at DESC, created_at DESC"

	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}

	rows, err := r.conn.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list events by user: %w", err)
	}
	defer rows.Close()

	return scanEvents(rows)
}

// FindStalePairs returns (user, course) pairs whose newest event is more
// recent than the stored snapshot, or that have events but no snapshot.
func (r *EventRepository) FindStalePairs(ctx context.Context, limit int) ([]learning.StalePair, error) {
	query := `
		SELECT e.user_id, e.course_id, MAX(e.occurred_at) AS newest_event, s.last_activity
		FROM learning_events e
		LEFT JOIN progress_snapshots s
			ON s.user_id = e.user_id AND s.course_id = e.course_id
		GROUP BY e.user_id, e.course_id, s.last_activity
		HAVING s.last_activity IS NULL OR MAX(e.occurred_at) > s.last_activity
		ORDER BY MAX(e.occurred_at) ASC
		LIMIT $1
	`

	rows, err := r.conn.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to find stale pairs: %w", err)
	}
	defer rows.Close()

	var pairs []learning.StalePair
	for rows.Next() {
		var (
			userID       string
			courseID     string
			newestEvent  time.Time
			lastActivity *time.Time
		)
		if err := rows.Scan(&userID, &courseID, &newestEvent, &lastActivity); err != nil {
			return nil, fmt.Errorf("failed to scan stale pair: %w", err)
		}
		pairs = append(pairs, learning.StalePair{
			UserID:       shared.UserID(userID),
			CourseID:     shared.CourseID(courseID),
			NewestEvent:  newestEvent,
			LastActivity: lastActivity,
		})
	}

	return pairs, rows.Err()
}

// ─────────────────────────────────────────────────────────────────────────────
// Scanning helpers
// ─────────────────────────────────────────────────────────────────────────────

func scanEvents(rows pgx.Rows) ([]*learning.Event, error) {
	var events []*learning.Event
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

func scanEvent(row pgx.Row) (*learning.Event, error) {
	var (
		e            learning.Event
		userID       string
		courseID     string
		moduleID     string
		contentID    string
		contentType  string
		eventType    string
		percentage   float64
		timeSpent    int
		metadataJSON []byte
	)

	err := row.Scan(
		&e.ID,
		&userID,
		&courseID,
		&moduleID,
		&contentID,
		&contentType,
		&eventType,
		&percentage,
		&timeSpent,
		&metadataJSON,
		&e.Timestamp,
	)
	if err != nil {
		if IsNoRows(err) {
			return nil, shared.ErrEventNotFound
		}
		return nil, fmt.Errorf("failed to scan event: %w", err)
	}

	e.UserID = shared.UserID(userID)
	e.CourseID = shared.CourseID(courseID)
	e.ModuleID = shared.ModuleID(moduleID)
	e.ContentID = shared.ContentID(contentID)
	e.ContentType = course.ContentType(contentType)
	e.Action = learning.ActionType(eventType)
	e.Percentage = shared.Percentage(percentage)
	e.TimeSpent = shared.TimeSpent(timeSpent)

	if len(metadataJSON) > 0 {
		if err := json.Unmarshal(metadataJSON, &e.Metadata); err != nil {
			return nil, fmt.Errorf("failed to unmarshal event metadata: %w", err)
		}
	}

	return &e, nil
}
