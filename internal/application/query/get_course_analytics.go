// Package query contains read operations (CQRS - Queries).
package query

import (
	"context"

	"github.com/Mdsadique5522/smart-lms-platform/internal/domain/course"
	"github.com/Mdsadique5522/smart-lms-platform/internal/domain/progress"
	"github.com/Mdsadique5522/smart-lms-platform/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// COURSE ANALYTICS QUERY
// Per-course enrollment, average progress, and completion counts for an
// instructor's courses, derived entirely from stored snapshots.
// ══════════════════════════════════════════════════════════════════════════════

// CourseAnalytics pairs a course with its snapshot-derived rollup.
type CourseAnalytics struct {
	Course *course.Course
	Stats  *progress.CourseStats
}

// GetCourseAnalyticsQuery identifies the instructor.
type GetCourseAnalyticsQuery struct {
	InstructorID string
}

// GetCourseAnalyticsHandler handles instructor analytics reads.
type GetCourseAnalyticsHandler struct {
	courseRepo course.Repository
	snapshots  progress.SnapshotStore
}

// NewGetCourseAnalyticsHandler creates a new GetCourseAnalyticsHandler.
func NewGetCourseAnalyticsHandler(courseRepo course.Repository, snapshots progress.SnapshotStore) *GetCourseAnalyticsHandler {
	return &GetCourseAnalyticsHandler{courseRepo: courseRepo, snapshots: snapshots}
}

// Handle returns analytics for every course the instructor teaches.
func (h *GetCourseAnalyticsHandler) Handle(ctx context.Context, q GetCourseAnalyticsQuery) ([]CourseAnalytics, error) {
	instructorID, err := shared.NewUserID(q.InstructorID)
	if err != nil {
		return nil, err
	}

	courses, err := h.courseRepo.ListByInstructor(ctx, instructorID)
	if err != nil {
		return nil, shared.WrapError("course", "ListByInstructor", shared.ErrStorageUnavailable, "failed to list courses", err)
	}

	analytics := make([]CourseAnalytics, 0, len(courses))
	for _, c := range courses {
		stats, err := h.snapshots.GetCourseStats(ctx, c.ID)
		if err != nil {
			return nil, shared.WrapError("progress", "GetCourseStats", shared.ErrStorageUnavailable, "failed to load course stats", err)
		}
		analytics = append(analytics, CourseAnalytics{Course: c, Stats: stats})
	}

	return analytics, nil
}
