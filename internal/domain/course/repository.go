// Package course contains domain entities for course structure.
package course

import (
	"context"

	"github.com/Mdsadique5522/smart-lms-platform/internal/domain/shared"
)

// Repository defines the interface for course structure persistence.
// The progress engine only ever reads structure; authoring happens in a
// separate system that owns writes.
type Repository interface {
	// GetByID returns a course with its full module and content tree.
	// Modules and contents are ordered by position.
	GetByID(ctx context.Context, id shared.CourseID) (*Course, error)

	// List returns all courses with their full structure, ordered by title.
	List(ctx context.Context) ([]*Course, error)

	// ListByInstructor returns courses taught by the given instructor.
	ListByInstructor(ctx context.Context, instructorID shared.UserID) ([]*Course, error)

	// Exists reports whether a course with the given ID exists.
	Exists(ctx context.Context, id shared.CourseID) (bool, error)
}
