// Package http implements the REST API for the Smart LMS Platform.
package http

import (
	"time"

	"github.com/Mdsadique5522/smart-lms-platform/internal/application/query"
	"github.com/Mdsadique5522/smart-lms-platform/internal/domain/course"
	"github.com/Mdsadique5522/smart-lms-platform/internal/domain/learning"
	"github.com/Mdsadique5522/smart-lms-platform/internal/domain/progress"
)

// Domain types carry no serialization concerns, so every response body goes
// through the view structs below.

// ══════════════════════════════════════════════════════════════════════════════
// EVENT VIEWS
// ══════════════════════════════════════════════════════════════════════════════

type eventView struct {
	ID          string         `json:"id"`
	UserID      string         `json:"user_id"`
	CourseID    string         `json:"course_id"`
	ModuleID    string         `json:"module_id"`
	ContentID   string         `json:"content_id"`
	ContentType string         `json:"content_type"`
	EventType   string         `json:"event_type"`
	Percentage  float64        `json:"percentage"`
	TimeSpent   int            `json:"time_spent"`
	Metadata    map[string]any `json:"metadata,omitempty"`
	Timestamp   time.Time      `json:"timestamp"`
}

func newEventView(e *learning.Event) eventView {
	return eventView{
		ID:          e.ID,
		UserID:      e.UserID.String(),
		CourseID:    e.CourseID.String(),
		ModuleID:    e.ModuleID.String(),
		ContentID:   e.ContentID.String(),
		ContentType: e.ContentType.String(),
		EventType:   e.Action.String(),
		Percentage:  e.Percentage.Float64(),
		TimeSpent:   e.TimeSpent.Int(),
		Metadata:    e.Metadata,
		Timestamp:   e.Timestamp,
	}
}

func newEventListView(events []*learning.Event) []eventView {
	views := make([]eventView, 0, len(events))
	for _, e := range events {
		views = append(views, newEventView(e))
	}
	return views
}

type recordEventView struct {
	ID          string    `json:"id"`
	ContentType string    `json:"content_type"`
	EventType   string    `json:"event_type"`
	Percentage  float64   `json:"percentage"`
	Timestamp   time.Time `json:"timestamp"`
}

// ══════════════════════════════════════════════════════════════════════════════
// PROGRESS VIEWS
// ══════════════════════════════════════════════════════════════════════════════

type contentProgressView struct {
	ContentID    string    `json:"content_id"`
	ContentType  string    `json:"content_type"`
	Status       string    `json:"status"`
	Percentage   float64   `json:"percentage"`
	TimeSpent    int       `json:"time_spent"`
	Submitted    bool      `json:"submitted"`
	LastUpdated  time.Time `json:"last_updated"`
	RevisitCount int       `json:"revisit_count"`
}

type moduleProgressView struct {
	ModuleID             string                `json:"module_id"`
	Status               string                `json:"status"`
	CompletionPercentage float64               `json:"completion_percentage"`
	Contents             []contentProgressView `json:"contents"`
}

type snapshotView struct {
	UserID          string               `json:"user_id"`
	CourseID        string               `json:"course_id"`
	Modules         []moduleProgressView `json:"modules"`
	OverallProgress float64              `json:"overall_progress"`
	TotalTimeSpent  int                  `json:"total_time_spent"`
	LastActivity    time.Time            `json:"last_activity"`
	UpdatedAt       time.Time            `json:"updated_at"`
}

func newSnapshotView(s *progress.Snapshot) *snapshotView {
	if s == nil {
		return nil
	}
	modules := make([]moduleProgressView, 0, len(s.Modules))
	for _, m := range s.Modules {
		contents := make([]contentProgressView, 0, len(m.Contents))
		for _, c := range m.Contents {
			contents = append(contents, contentProgressView{
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
		modules = append(modules, moduleProgressView{
			ModuleID:             m.ModuleID.String(),
			Status:               m.Status.String(),
			CompletionPercentage: m.CompletionPercentage,
			Contents:             contents,
		})
	}
	return &snapshotView{
		UserID:          s.UserID.String(),
		CourseID:        s.CourseID.String(),
		Modules:         modules,
		OverallProgress: s.OverallProgress,
		TotalTimeSpent:  s.TotalTimeSpent,
		LastActivity:    s.LastActivity,
		UpdatedAt:       s.UpdatedAt,
	}
}

type progressSummaryView struct {
	OverallProgress  float64   `json:"overall_progress"`
	TotalModules     int       `json:"total_modules"`
	CompletedModules int       `json:"completed_modules"`
	TotalTimeSpent   int       `json:"total_time_spent"`
	LastActivity     time.Time `json:"last_activity"`
}

type progressView struct {
	Snapshot     *snapshotView       `json:"snapshot"`
	RecentEvents []eventView         `json:"recent_events"`
	Summary      progressSummaryView `json:"summary"`
}

func newProgressView(v *query.ProgressView) progressView {
	return progressView{
		Snapshot:     newSnapshotView(v.Snapshot),
		RecentEvents: newEventListView(v.RecentEvents),
		Summary: progressSummaryView{
			OverallProgress:  v.Summary.OverallProgress,
			TotalModules:     v.Summary.TotalModules,
			CompletedModules: v.Summary.CompletedModules,
			TotalTimeSpent:   v.Summary.TotalTimeSpent,
			LastActivity:     v.Summary.LastActivity,
		},
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// COURSE VIEWS
// ══════════════════════════════════════════════════════════════════════════════

type contentItemView struct {
	ID       string         `json:"id"`
	Type     string         `json:"type"`
	Title    string         `json:"title"`
	Position int            `json:"position"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

type moduleView struct {
	ID       string            `json:"id"`
	Title    string            `json:"title"`
	Position int               `json:"position"`
	Contents []contentItemView `json:"contents"`
}

type courseView struct {
	ID           string       `json:"id"`
	Title        string       `json:"title"`
	Description  string       `json:"description,omitempty"`
	InstructorID string       `json:"instructor_id"`
	Modules      []moduleView `json:"modules"`
	CreatedAt    time.Time    `json:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at"`
}

func newCourseView(c *course.Course) *courseView {
	if c == nil {
		return nil
	}
	modules := make([]moduleView, 0, len(c.Modules))
	for _, m := range c.Modules {
		contents := make([]contentItemView, 0, len(m.Contents))
		for _, item := range m.Contents {
			contents = append(contents, contentItemView{
				ID:       item.ID.String(),
				Type:     item.Type.String(),
				Title:    item.Title,
				Position: item.Position,
				Metadata: item.Metadata,
			})
		}
		modules = append(modules, moduleView{
			ID:       m.ID.String(),
			Title:    m.Title,
			Position: m.Position,
			Contents: contents,
		})
	}
	return &courseView{
		ID:           c.ID.String(),
		Title:        c.Title,
		Description:  c.Description,
		InstructorID: c.InstructorID.String(),
		Modules:      modules,
		CreatedAt:    c.CreatedAt,
		UpdatedAt:    c.UpdatedAt,
	}
}

func newCourseListView(courses []*course.Course) []*courseView {
	views := make([]*courseView, 0, len(courses))
	for _, c := range courses {
		views = append(views, newCourseView(c))
	}
	return views
}

// ══════════════════════════════════════════════════════════════════════════════
// DASHBOARD VIEWS
// ══════════════════════════════════════════════════════════════════════════════

type courseProgressView struct {
	Course   *courseView   `json:"course"`
	Snapshot *snapshotView `json:"snapshot"` // null when the learner never touched the course
}

type dashboardStatsView struct {
	TotalCourses       int       `json:"total_courses"`
	CompletedCourses   int       `json:"completed_courses"`
	InProgressCourses  int       `json:"in_progress_courses"`
	TotalTimeSpent     int       `json:"total_time_spent"`
	AverageProgress    float64   `json:"average_progress"`
	LastActivity       time.Time `json:"last_activity"`
	ActiveDaysThisWeek int       `json:"active_days_this_week"`
}

type studentDashboardView struct {
	Courses          []courseProgressView `json:"courses"`
	Stats            dashboardStatsView   `json:"stats"`
	RecentEvents     []eventView          `json:"recent_events"`
	ActivityTimeline []string             `json:"activity_timeline"`
}

func newStudentDashboardView(d *query.StudentDashboard) studentDashboardView {
	courses := make([]courseProgressView, 0, len(d.Courses))
	for _, cp := range d.Courses {
		courses = append(courses, courseProgressView{
			Course:   newCourseView(cp.Course),
			Snapshot: newSnapshotView(cp.Snapshot),
		})
	}
	return studentDashboardView{
		Courses: courses,
		Stats: dashboardStatsView{
			TotalCourses:       d.Stats.TotalCourses,
			CompletedCourses:   d.Stats.CompletedCourses,
			InProgressCourses:  d.Stats.InProgressCourses,
			TotalTimeSpent:     d.Stats.TotalTimeSpent,
			AverageProgress:    d.Stats.AverageProgress,
			LastActivity:       d.Stats.LastActivity,
			ActiveDaysThisWeek: d.Stats.ActiveDaysThisWeek,
		},
		RecentEvents:     newEventListView(d.RecentEvents),
		ActivityTimeline: d.ActivityTimeline,
	}
}

type courseStatsView struct {
	CourseID        string  `json:"course_id"`
	EnrolledUsers   int     `json:"enrolled_users"`
	AverageProgress float64 `json:"average_progress"`
	CompletedUsers  int     `json:"completed_users"`
}

type courseAnalyticsView struct {
	Course *courseView     `json:"course"`
	Stats  courseStatsView `json:"stats"`
}

func newCourseAnalyticsListView(analytics []query.CourseAnalytics) []courseAnalyticsView {
	views := make([]courseAnalyticsView, 0, len(analytics))
	for _, a := range analytics {
		view := courseAnalyticsView{Course: newCourseView(a.Course)}
		if a.Stats != nil {
			view.Stats = courseStatsView{
				CourseID:        a.Stats.CourseID.String(),
				EnrolledUsers:   a.Stats.EnrolledUsers,
				AverageProgress: a.Stats.AverageProgress,
				CompletedUsers:  a.Stats.CompletedUsers,
			}
		}
		views = append(views, view)
	}
	return views
}
