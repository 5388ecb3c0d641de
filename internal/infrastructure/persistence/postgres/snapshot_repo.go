package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Mdsadique5522/smart-lms-platform/internal/domain/course"
	"github.com/Mdsadique5522/smart-lms-platform/internal/domain/progress"
	"github.com/Mdsadique5522/smart-lms-platform/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// SNAPSHOT REPOSITORY IMPLEMENTATION
// Snapshots are replaced wholesale on every write; the module tree is stored
// as a single JSONB document since it is never queried piecemeal.
// ══════════════════════════════════════════════════════════════════════════════

// SnapshotRepository implements progress.SnapshotStore for PostgreSQL.
type SnapshotRepository struct {
	conn *Connection
}

// NewSnapshotRepository creates a new SnapshotRepository.
func NewSnapshotRepository(conn *Connection) *SnapshotRepository {
	return &SnapshotRepository{conn: conn}
}

// Upsert stores the snapshot, replacing any existing one for the pair.
func (r *SnapshotRepository) Upsert(ctx context.Context, snap *progress.Snapshot) error {
	query := `
		INSERT INTO progress_snapshots (
			user_id, course_id, modules, overall_progress, total_time_spent, last_activity, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (user_id, course_id) DO UPDATE SET
			modules = EXCLUDED.modules,
			overall_progress = EXCLUDED.overall_progress,
			total_time_spent = EXCLUDED.total_time_spent,
			last_activity = EXCLUDED.last_activity,
			updated_at = EXCLUDED.updated_at
	`

	modulesJSON, err := json.Marshal(modulesToRows(snap.Modules))
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot modules: %w", err)
	}

	_, err = r.conn.Exec(ctx, query,
		snap.UserID.String(),
		snap.CourseID.String(),
		modulesJSON,
		snap.OverallProgress,
		snap.TotalTimeSpent,
		snap.LastActivity,
		snap.UpdatedAt,
	)
	if err != nil {
		if IsUniqueViolation(err) {
			return shared.ErrSnapshotConflict
		}
		return fmt.Errorf("failed to upsert snapshot: %w", err)
	}

	return nil
}

// Get returns the snapshot for the pair.
func (r *SnapshotRepository) Get(ctx context.Context, userID shared.UserID, courseID shared.CourseID) (*progress.Snapshot, error) {
	query := `
		SELECT user_id, course_id, modules, overall_progress, total_time_spent, last_activity, updated_at
		FROM progress_snapshots
		WHERE user_id = $1 AND course_id = $2
	`

	row := r.conn.QueryRow(ctx, query, userID.String(), courseID.String())
	snap, err := scanSnapshot(row)
	if err != nil {
		return nil, err
	}
	return snap, nil
}

// ListByUser returns all snapshots for a user, most recently active first.
func (r *SnapshotRepository) ListByUser(ctx context.Context, userID shared.UserID) ([]*progress.Snapshot, error) {
	query := `
		SELECT user_id, course_id, modules, overall_progress, total_time_spent, last_activity, updated_at
		FROM progress_snapshots
		WHERE user_id = $1
		ORDER BY last_activity DESC
	`

	rows, err := r.conn.Query(ctx, query, userID.String())
	if err != nil {
		return nil, fmt.Errorf("failed to list snapshots: %w", err)
	}
	defer rows.Close()

	var snapshots []*progress.Snapshot
	for rows.Next() {
		snap, err := scanSnapshot(rows)
		if err != nil {
			return nil, err
		}
		snapshots = append(snapshots, snap)
	}

	return snapshots, rows.Err()
}

// GetCourseStats returns the analytics rollup for a course.
func (r *SnapshotRepository) GetCourseStats(ctx context.Context, courseID shared.CourseID) (*progress.CourseStats, error) {
	query := `
		SELECT
			COUNT(*),
			COALESCE(AVG(overall_progress), 0),
			COUNT(*) FILTER (WHERE overall_progress >= 100)
		FROM progress_snapshots
		WHERE course_id = $1
	`

	stats := &progress.CourseStats{CourseID: courseID}
	err := r.conn.QueryRow(ctx, query, courseID.String()).Scan(
		&stats.EnrolledUsers,
		&stats.AverageProgress,
		&stats.CompletedUsers,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get course stats: %w", err)
	}

	return stats, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// JSONB document mapping
// ─────────────────────────────────────────────────────────────────────────────

// moduleRow is the stored form of a module's derived progress.
type moduleRow struct {
	ModuleID             string       `json:"module_id"`
	Status               string       `json:"status"`
	CompletionPercentage float64      `json:"completion_percentage"`
	Contents             []contentRow `json:"contents"`
}

// contentRow is the stored form of a content item's derived progress.
type contentRow struct {
	ContentID    string    `json:"content_id"`
	ContentType  string    `json:"content_type"`
	Status       string    `json:"status"`
	Percentage   float64   `json:"percentage"`
	TimeSpent    int       `json:"time_spent"`
	Submitted    bool      `json:"submitted"`
	LastUpdated  time.Time `json:"last_updated"`
	RevisitCount int       `json:"revisit_count"`
}

func modulesToRows(modules []progress.ModuleProgress) []moduleRow {
	rows := make([]moduleRow, 0, len(modules))
	for _, m := range modules {
		mr := moduleRow{
			ModuleID:             m.ModuleID.String(),
			Status:               m.Status.String(),
			CompletionPercentage: m.CompletionPercentage,
			Contents:             make([]contentRow, 0, len(m.Contents)),
		}
		for _, c := range m.Contents {
			mr.Contents = append(mr.Contents, contentRow{
				ContentID:    c.ContentID.String(),
				ContentType:  c.ContentType.String(),
				Status:       c.Status.String(),
				Percentage:   c.Percentage,
				TimeSpent:    c.TimeSpent,
				Submitted:    c.Submitted,
				LastUpdated:  c.LastUpdated,
				RevisitCount: c.RevisitCount,
			})
		}
		rows = append(rows, mr)
	}
	return rows
}

func rowsToModules(rows []moduleRow) []progress.ModuleProgress {
	modules := make([]progress.ModuleProgress, 0, len(rows))
	for _, mr := range rows {
		m := progress.ModuleProgress{
			ModuleID:             shared.ModuleID(mr.ModuleID),
			Status:               progress.Status(mr.Status),
			CompletionPercentage: mr.CompletionPercentage,
			Contents:             make([]progress.ContentProgress, 0, len(mr.Contents)),
		}
		for _, cr := range mr.Contents {
			m.Contents = append(m.Contents, progress.ContentProgress{
				ContentID:    shared.ContentID(cr.ContentID),
				ContentType:  course.ContentType(cr.ContentType),
				Status:       progress.Status(cr.Status),
				Percentage:   cr.Percentage,
				TimeSpent:    cr.TimeSpent,
				Submitted:    cr.Submitted,
				LastUpdated:  cr.LastUpdated,
				RevisitCount: cr.RevisitCount,
			})
		}
		modules = append(modules, m)
	}
	return modules
}

// scanner covers pgx.Row and pgx.Rows for single-row scans.
type scanner interface {
	Scan(dest ...interface{}) error
}

func scanSnapshot(row scanner) (*progress.Snapshot, error) {
	var (
		snap        progress.Snapshot
		userID      string
		courseID    string
		modulesJSON []byte
	)

	err := row.Scan(
		&userID,
		&courseID,
		&modulesJSON,
		&snap.OverallProgress,
		&snap.TotalTimeSpent,
		&snap.LastActivity,
		&snap.UpdatedAt,
	)
	if err != nil {
		if IsNoRows(err) {
			return nil, shared.ErrSnapshotNotFound
		}
		return nil, fmt.Errorf("failed to scan snapshot: %w", err)
	}

	snap.UserID = shared.UserID(userID)
	snap.CourseID = shared.CourseID(courseID)

	var rows []moduleRow
	if len(modulesJSON) > 0 {
		if err := json.Unmarshal(modulesJSON, &rows); err != nil {
			return nil, fmt.Errorf("failed to unmarshal snapshot modules: %w", err)
		}
	}
	snap.Modules = rowsToModules(rows)

	return &snap, nil
}
