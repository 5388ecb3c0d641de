// Package query contains read operations (CQRS - Queries).
package query

import (
	"context"
	"time"

	"github.com/Mdsadique5522/smart-lms-platform/internal/domain/course"
	"github.com/Mdsadique5522/smart-lms-platform/internal/domain/learning"
	"github.com/Mdsadique5522/smart-lms-platform/internal/domain/progress"
	"github.com/Mdsadique5522/smart-lms-platform/internal/domain/shared"
	"github.com/Mdsadique5522/smart-lms-platform/pkg/logger"
	"github.com/Mdsadique5522/smart-lms-platform/pkg/timeutil"
)

// ══════════════════════════════════════════════════════════════════════════════
// STUDENT DASHBOARD QUERY
// Joins every course with the caller's snapshot for it. Courses the learner
// never touched appear with a nil snapshot so the client can render them as
// not started without a second round trip.
// ══════════════════════════════════════════════════════════════════════════════

// DashboardRecentEvents bounds the recent-activity list on the dashboard.
const DashboardRecentEvents = 10

// DashboardCache caches assembled dashboards. Best-effort: a miss or failure
// falls through to assembly, and a short TTL bounds staleness.
type DashboardCache interface {
	Get(ctx context.Context, userID shared.UserID) (*StudentDashboard, error)
	Set(ctx context.Context, userID shared.UserID, dashboard *StudentDashboard) error
	Invalidate(ctx context.Context, userID shared.UserID) error
}

// CourseProgress pairs a course with the caller's snapshot, if any.
type CourseProgress struct {
	Course   *course.Course
	Snapshot *progress.Snapshot // nil when the learner never touched the course
}

// DashboardStats summarizes the learner's standing across all courses.
type DashboardStats struct {
	TotalCourses      int
	CompletedCourses  int
	InProgressCourses int
	TotalTimeSpent    int
	AverageProgress   float64
	LastActivity      time.Time

	// ActiveDaysThisWeek counts the distinct UTC calendar days since Monday
	// with at least one recent event.
	ActiveDaysThisWeek int
}

// StudentDashboard is the full dashboard answer.
type StudentDashboard struct {
	Courses      []CourseProgress
	Stats        DashboardStats
	RecentEvents []*learning.Event

	// ActivityTimeline lists the distinct UTC day keys of the recent events
	// in ascending order.
	ActivityTimeline []string
}

// GetStudentDashboardQuery identifies the learner.
type GetStudentDashboardQuery struct {
	UserID string
}

// GetStudentDashboardHandler handles dashboard reads.
type GetStudentDashboardHandler struct {
	courseRepo course.Repository
	eventRepo  learning.Repository
	snapshots  progress.SnapshotStore
	cache      DashboardCache
	log        *logger.Logger
	now        func() time.Time
}

// NewGetStudentDashboardHandler creates a new GetStudentDashboardHandler.
// The cache may be nil when Redis is disabled.
func NewGetStudentDashboardHandler(
	courseRepo course.Repository,
	eventRepo learning.Repository,
	snapshots progress.SnapshotStore,
	cache DashboardCache,
	log *logger.Logger,
) *GetStudentDashboardHandler {
	if log == nil {
		log = logger.Default()
	}
	return &GetStudentDashboardHandler{
		courseRepo: courseRepo,
		eventRepo:  eventRepo,
		snapshots:  snapshots,
		cache:      cache,
		log:        log.With(logger.Component("student_dashboard")),
		now:        time.Now,
	}
}

// WithClock overrides the handler's clock. Intended for tests.
func (h *GetStudentDashboardHandler) WithClock(now func() time.Time) *GetStudentDashboardHandler {
	h.now = now
	return h
}

// Handle builds the dashboard for a learner.
func (h *GetStudentDashboardHandler) Handle(ctx context.Context, q GetStudentDashboardQuery) (*StudentDashboard, error) {
	userID, err := shared.NewUserID(q.UserID)
	if err != nil {
		return nil, err
	}

	if h.cache != nil {
		if cached, err := h.cache.Get(ctx, userID); err == nil && cached != nil {
			return cached, nil
		}
	}

	courses, err := h.courseRepo.List(ctx)
	if err != nil {
		return nil, shared.WrapError("course", "List", shared.ErrStorageUnavailable, "failed to list courses", err)
	}

	snaps, err := h.snapshots.ListByUser(ctx, userID)
	if err != nil {
		return nil, shared.WrapError("progress", "ListByUser", shared.ErrStorageUnavailable, "failed to list snapshots", err)
	}
	byCourse := make(map[shared.CourseID]*progress.Snapshot, len(snaps))
	for _, s := range snaps {
		byCourse[s.CourseID] = s
	}

	dashboard := &StudentDashboard{
		Courses: make([]CourseProgress, 0, len(courses)),
	}
	dashboard.Stats.TotalCourses = len(courses)

	progressSum := 0.0
	for _, c := range courses {
		snap := byCourse[c.ID]
		dashboard.Courses = append(dashboard.Courses, CourseProgress{Course: c, Snapshot: snap})
		if snap == nil {
			continue
		}

		progressSum += snap.OverallProgress
		dashboard.Stats.TotalTimeSpent += snap.TotalTimeSpent
		if snap.LastActivity.After(dashboard.Stats.LastActivity) {
			dashboard.Stats.LastActivity = snap.LastActivity
		}
		switch {
		case snap.IsCourseCompleted():
			dashboard.Stats.CompletedCourses++
		case snap.OverallProgress > 0:
			dashboard.Stats.InProgressCourses++
		}
	}
	if len(courses) > 0 {
		dashboard.Stats.AverageProgress = progressSum / float64(len(courses))
	}

	recent, err := h.eventRepo.ListByUser(ctx, userID, learning.Filter{Limit: DashboardRecentEvents})
	if err != nil {
		h.log.Warn("failed to load recent events", logger.UserID(userID.String()), logger.Err(err))
		recent = nil
	}
	dashboard.RecentEvents = recent

	timestamps := make([]time.Time, 0, len(recent))
	for _, e := range recent {
		timestamps = append(timestamps, e.Timestamp)
	}
	dashboard.ActivityTimeline = timeutil.SortedDayKeys(timestamps)

	weekStart := timeutil.StartOfWeek(h.now())
	thisWeek := timestamps[:0]
	for _, ts := range timestamps {
		if !ts.Before(weekStart) {
			thisWeek = append(thisWeek, ts)
		}
	}
	dashboard.Stats.ActiveDaysThisWeek = timeutil.DistinctDays(thisWeek)

	if h.cache != nil {
		if err := h.cache.Set(ctx, userID, dashboard); err != nil {
			h.log.Debug("dashboard cache set failed", logger.Err(err))
		}
	}

	return dashboard, nil
}
