// Package query contains read operations (CQRS - Queries).
package query

import (
	"context"

	"github.com/Mdsadique5522/smart-lms-platform/internal/domain/course"
	"github.com/Mdsadique5522/smart-lms-platform/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// COURSE STRUCTURE QUERIES
// Read-only access to the structure the engine folds against.
// ══════════════════════════════════════════════════════════════════════════════

// ListCoursesHandler lists all courses with their structure.
type ListCoursesHandler struct {
	courseRepo course.Repository
}

// NewListCoursesHandler creates a new ListCoursesHandler.
func NewListCoursesHandler(courseRepo course.Repository) *ListCoursesHandler {
	return &ListCoursesHandler{courseRepo: courseRepo}
}

// Handle returns all courses.
func (h *ListCoursesHandler) Handle(ctx context.Context) ([]*course.Course, error) {
	return h.courseRepo.List(ctx)
}

// GetCourseHandler fetches one course with its full structure.
type GetCourseHandler struct {
	courseRepo course.Repository
}

// NewGetCourseHandler creates a new GetCourseHandler.
func NewGetCourseHandler(courseRepo course.Repository) *GetCourseHandler {
	return &GetCourseHandler{courseRepo: courseRepo}
}

// Handle returns the course, or a not-found error.
func (h *GetCourseHandler) Handle(ctx context.Context, id string) (*course.Course, error) {
	courseID, err := shared.NewCourseID(id)
	if err != nil {
		return nil, err
	}
	return h.courseRepo.GetByID(ctx, courseID)
}
