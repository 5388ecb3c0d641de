package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/Mdsadique5522/smart-lms-platform/internal/domain/course"
	"github.com/Mdsadique5522/smart-lms-platform/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// COURSE REPOSITORY IMPLEMENTATION
// Read-only: course structure is authored elsewhere and only consumed here.
// ══════════════════════════════════════════════════════════════════════════════

// CourseRepository implements course.Repository for PostgreSQL.
type CourseRepository struct {
	conn *Connection
}

// NewCourseRepository creates a new CourseRepository.
func NewCourseRepository(conn *Connection) *CourseRepository {
	return &CourseRepository{conn: conn}
}

// GetByID returns a course with its full module and content structure.
func (r *CourseRepository) GetByID(ctx context.Context, id shared.CourseID) (*course.Course, error) {
	query := `
		SELECT id, title, description, instructor_id, created_at, updated_at
		FROM courses
		WHERE id = $1
	`

	var (
		c            course.Course
		courseID     string
		instructorID string
	)
	err := r.conn.QueryRow(ctx, query, id.String()).Scan(
		&courseID,
		&c.Title,
		&c.Description,
		&instructorID,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	if err != nil {
		if IsNoRows(err) {
			return nil, shared.ErrCourseNotFound
		}
		return nil, fmt.Errorf("failed to get course: %w", err)
	}
	c.ID = shared.CourseID(courseID)
	c.InstructorID = shared.UserID(instructorID)

	if err := r.loadStructure(ctx, &c); err != nil {
		return nil, err
	}

	return &c, nil
}

// List returns all courses with their structure.
func (r *CourseRepository) List(ctx context.Context) ([]*course.Course, error) {
	query := `
		SELECT id, title, description, instructor_id, created_at, updated_at
		FROM courses
		ORDER BY created_at DESC
	`

	rows, err := r.conn.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list courses: %w", err)
	}
	defer rows.Close()

	var courses []*course.Course
	for rows.Next() {
		var (
			c            course.Course
			courseID     string
			instructorID string
		)
		if err := rows.Scan(&courseID, &c.Title, &c.Description, &instructorID, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan course: %w", err)
		}
		c.ID = shared.CourseID(courseID)
		c.InstructorID = shared.UserID(instructorID)
		courses = append(courses, &c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for _, c := range courses {
		if err := r.loadStructure(ctx, c); err != nil {
			return nil, err
		}
	}

	return courses, nil
}

// ListByInstructor returns the courses taught by the given instructor.
func (r *CourseRepository) ListByInstructor(ctx context.Context, instructorID shared.UserID) ([]*course.Course, error) {
	query := `
		SELECT id, title, description, instructor_id, created_at, updated_at
		FROM courses
		WHERE instructor_id = $1
		ORDER BY created_at DESC
	`

	rows, err := r.conn.Query(ctx, query, instructorID.String())
	if err != nil {
		return nil, fmt.Errorf("failed to list courses by instructor: %w", err)
	}
	defer rows.Close()

	var courses []*course.Course
	for rows.Next() {
		var (
			c        course.Course
			courseID string
			instID   string
		)
		if err := rows.Scan(&courseID, &c.Title, &c.Description, &instID, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan course: %w", err)
		}
		c.ID = shared.CourseID(courseID)
		c.InstructorID = shared.UserID(instID)
		courses = append(courses, &c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for _, c := range courses {
		if err := r.loadStructure(ctx, c); err != nil {
			return nil, err
		}
	}

	return courses, nil
}

// Exists reports whether a course with the given ID exists.
func (r *CourseRepository) Exists(ctx context.Context, id shared.CourseID) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM courses WHERE id = $1)`

	var exists bool
	if err := r.conn.QueryRow(ctx, query, id.String()).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check course existence: %w", err)
	}
	return exists, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Structure loading
// ─────────────────────────────────────────────────────────────────────────────

// loadStructure fills in the ordered modules and their content items.
func (r *CourseRepository) loadStructure(ctx context.Context, c *course.Course) error {
	moduleQuery := `
		SELECT module_id, title, position
		FROM course_modules
		WHERE course_id = $1
		ORDER BY position ASC
	`

	rows, err := r.conn.Query(ctx, moduleQuery, c.ID.String())
	if err != nil {
		return fmt.Errorf("failed to load modules: %w", err)
	}

	var modules []course.Module
	for rows.Next() {
		var (
			m        course.Module
			moduleID string
		)
		if err := rows.Scan(&moduleID, &m.Title, &m.Position); err != nil {
			rows.Close()
			return fmt.Errorf("failed to scan module: %w", err)
		}
		m.ID = shared.ModuleID(moduleID)
		modules = append(modules, m)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}

	contentQuery := `
		SELECT module_id, content_id, content_type, title, position, metadata
		FROM module_contents
		WHERE course_id = $1
		ORDER BY position ASC
	`

	rows, err = r.conn.Query(ctx, contentQuery, c.ID.String())
	if err != nil {
		return fmt.Errorf("failed to load contents: %w", err)
	}
	defer rows.Close()

	byModule := make(map[shared.ModuleID][]course.ContentItem)
	for rows.Next() {
		var (
			item         course.ContentItem
			moduleID     string
			contentID    string
			contentType  string
			metadataJSON []byte
		)
		if err := rows.Scan(&moduleID, &contentID, &contentType, &item.Title, &item.Position, &metadataJSON); err != nil {
			return fmt.Errorf("failed to scan content item: %w", err)
		}
		item.ID = shared.ContentID(contentID)
		item.Type = course.ContentType(contentType)
		if len(metadataJSON) > 0 {
			if err := json.Unmarshal(metadataJSON, &item.Metadata); err != nil {
				return fmt.Errorf("failed to unmarshal content metadata: %w", err)
			}
		}
		mid := shared.ModuleID(moduleID)
		byModule[mid] = append(byModule[mid], item)
	}
	if err := rows.Err(); err != nil {
		return err
	}

	for i := range modules {
		modules[i].Contents = byModule[modules[i].ID]
	}
	c.Modules = modules

	return nil
}
