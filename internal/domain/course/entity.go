// Package course contains domain entities for course structure: courses,
// ordered modules, and the content items inside them. The structure is the
// read-only backbone the progress engine folds learning events against.
// This is a pure domain layer with zero external dependencies.
package course

import (
	"time"

	"github.com/Mdsadique5522/smart-lms-platform/internal/domain/shared"
)

// ContentType classifies a content item and determines which learning
// event type is valid for it.
type ContentType string

const (
	ContentTypeVideo   ContentType = "video"
	ContentTypeReading ContentType = "reading"
	ContentTypeQuiz    ContentType = "quiz"
)

// IsValid checks if the content type is one of the known kinds.
func (c ContentType) IsValid() bool {
	switch c {
	case ContentTypeVideo, ContentTypeReading, ContentTypeQuiz:
		return true
	}
	return false
}

// String returns the string representation.
func (c ContentType) String() string {
	return string(c)
}

// ContentItem is a single piece of learnable material inside a module.
// Metadata carries authoring-system payload (file references, duration,
// question counts) that the progress engine treats as opaque.
type ContentItem struct {
	ID       shared.ContentID
	Type     ContentType
	Title    string
	Position int
	Metadata map[string]any
}

// Key returns the identity pair used to match learning events to this item.
func (c ContentItem) Key() ContentKey {
	return ContentKey{ContentID: c.ID, Type: c.Type}
}

// ContentKey is the (contentID, contentType) half of the matching triple.
type ContentKey struct {
	ContentID shared.ContentID
	Type      ContentType
}

// Module is an ordered group of content items within a course.
type Module struct {
	ID       shared.ModuleID
	Title    string
	Position int
	Contents []ContentItem
}

// ContentCount returns the number of content items in the module.
func (m Module) ContentCount() int {
	return len(m.Contents)
}

// FindContent returns the content item matching the key, if present.
func (m Module) FindContent(key ContentKey) (ContentItem, bool) {
	for _, item := range m.Contents {
		if item.ID == key.ContentID && item.Type == key.Type {
			return item, true
		}
	}
	return ContentItem{}, false
}

// Course is the aggregate root for course structure.
type Course struct {
	ID           shared.CourseID
	Title        string
	Description  string
	InstructorID shared.UserID
	Modules      []Module
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// ModuleCount returns the number of modules in the course.
func (c *Course) ModuleCount() int {
	return len(c.Modules)
}

// TotalContentCount returns the number of content items across all modules.
func (c *Course) TotalContentCount() int {
	total := 0
	for _, m := range c.Modules {
		total += len(m.Contents)
	}
	return total
}

// FindModule returns the module with the given ID, if present.
func (c *Course) FindModule(id shared.ModuleID) (Module, bool) {
	for _, m := range c.Modules {
		if m.ID == id {
			return m, true
		}
	}
	return Module{}, false
}

// HasContent reports whether the (moduleID, contentID, contentType) triple
// exists in the course structure.
func (c *Course) HasContent(moduleID shared.ModuleID, key ContentKey) bool {
	m, ok := c.FindModule(moduleID)
	if !ok {
		return false
	}
	_, ok = m.FindContent(key)
	return ok
}

// Validate checks structural invariants: a valid ID, at least one module,
// valid module and content IDs, known content types.
func (c *Course) Validate() error {
	if !c.ID.IsValid() {
		return shared.ErrInvalidCourseID
	}
	if len(c.Modules) == 0 {
		return shared.ErrEmptyCourse
	}
	for _, m := range c.Modules {
		if !m.ID.IsValid() {
			return shared.NewDomainError("course", "Validate", shared.ErrInvalidID, "module ID is empty")
		}
		for _, item := range m.Contents {
			if !item.ID.IsValid() {
				return shared.NewDomainError("course", "Validate", shared.ErrInvalidID, "content ID is empty")
			}
			if !item.Type.IsValid() {
				return shared.ErrInvalidContentType
			}
		}
	}
	return nil
}
