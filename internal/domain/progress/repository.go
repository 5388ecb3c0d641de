// Package progress contains the derived side of the system.
package progress

import (
	"context"

	"github.com/Mdsadique5522/smart-lms-platform/internal/domain/shared"
)

// CourseStats is the per-course rollup used by instructor analytics.
type CourseStats struct {
	CourseID        shared.CourseID
	EnrolledUsers   int
	AverageProgress float64
	CompletedUsers  int
}

// SnapshotStore defines persistence for derived progress snapshots.
// A snapshot is always replaced wholesale; there are no partial updates.
// Storage enforces uniqueness on the (user, course) pair.
type SnapshotStore interface {
	// Upsert stores the snapshot, replacing any existing one for the pair.
	Upsert(ctx context.Context, snapshot *Snapshot) error

	// Get returns the snapshot for the pair, or a not-found error.
	Get(ctx context.Context, userID shared.UserID, courseID shared.CourseID) (*Snapshot, error)

	// ListByUser returns all snapshots for a user, most recently active first.
	ListByUser(ctx context.Context, userID shared.UserID) ([]*Snapshot, error)

	// GetCourseStats returns the analytics rollup for a course.
	GetCourseStats(ctx context.Context, courseID shared.CourseID) (*CourseStats, error)
}
