package query

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Mdsadique5522/smart-lms-platform/internal/domain/course"
	"github.com/Mdsadique5522/smart-lms-platform/internal/domain/learning"
	"github.com/Mdsadique5522/smart-lms-platform/internal/domain/progress"
	"github.com/Mdsadique5522/smart-lms-platform/internal/domain/shared"
)

const secondCourseID = "3b9a7c12-8e4d-4f6a-9b2c-1d5e7f8a9b0c"

type stubDashboardCache struct {
	entries map[shared.UserID]*StudentDashboard
	sets    int
}

func newStubDashboardCache() *stubDashboardCache {
	return &stubDashboardCache{entries: make(map[shared.UserID]*StudentDashboard)}
}

func (c *stubDashboardCache) Get(_ context.Context, u shared.UserID) (*StudentDashboard, error) {
	return c.entries[u], nil
}

func (c *stubDashboardCache) Set(_ context.Context, u shared.UserID, d *StudentDashboard) error {
	c.sets++
	c.entries[u] = d
	return nil
}

func (c *stubDashboardCache) Invalidate(_ context.Context, u shared.UserID) error {
	delete(c.entries, u)
	return nil
}

func dashboardCourses() map[shared.CourseID]*course.Course {
	return map[shared.CourseID]*course.Course{
		shared.CourseID(testCourseID):   stubCourse(),
		shared.CourseID(secondCourseID): {ID: shared.CourseID(secondCourseID), Title: "Untouched"},
	}
}

func TestDashboard_JoinsCoursesWithSnapshots(t *testing.T) {
	snaps := newStubSnapshotStore()
	require.NoError(t, snaps.Upsert(context.Background(), &progress.Snapshot{
		UserID:          shared.UserID(testUserID),
		CourseID:        shared.CourseID(testCourseID),
		OverallProgress: 100,
		TotalTimeSpent:  600,
		LastActivity:    testNow,
	}))

	handler := NewGetStudentDashboardHandler(&stubCourseRepo{courses: dashboardCourses()}, &stubEventRepo{}, snaps, nil, nil)
	dashboard, err := handler.Handle(context.Background(), GetStudentDashboardQuery{UserID: testUserID})
	require.NoError(t, err)

	require.Len(t, dashboard.Courses, 2)
	touched := 0
	for _, cp := range dashboard.Courses {
		if cp.Snapshot != nil {
			touched++
			assert.Equal(t, shared.CourseID(testCourseID), cp.Course.ID)
		}
	}
	assert.Equal(t, 1, touched)

	assert.Equal(t, 2, dashboard.Stats.TotalCourses)
	assert.Equal(t, 1, dashboard.Stats.CompletedCourses)
	assert.Equal(t, 0, dashboard.Stats.InProgressCourses)
	assert.Equal(t, 600, dashboard.Stats.TotalTimeSpent)
	assert.Equal(t, 50.0, dashboard.Stats.AverageProgress)
	assert.Equal(t, testNow, dashboard.Stats.LastActivity)
}

func TestDashboard_InvalidUserID(t *testing.T) {
	handler := NewGetStudentDashboardHandler(&stubCourseRepo{}, &stubEventRepo{}, newStubSnapshotStore(), nil, nil)

	_, err := handler.Handle(context.Background(), GetStudentDashboardQuery{UserID: "not-a-uuid"})
	require.Error(t, err)
	assert.True(t, shared.IsValidation(err))
}

func TestDashboard_CacheReadThrough(t *testing.T) {
	cache := newStubDashboardCache()
	handler := NewGetStudentDashboardHandler(&stubCourseRepo{courses: dashboardCourses()}, &stubEventRepo{}, newStubSnapshotStore(), cache, nil)

	first, err := handler.Handle(context.Background(), GetStudentDashboardQuery{UserID: testUserID})
	require.NoError(t, err)
	assert.Equal(t, 1, cache.sets)

	// The second read is served from the cache without reassembly.
	second, err := handler.Handle(context.Background(), GetStudentDashboardQuery{UserID: testUserID})
	require.NoError(t, err)
	assert.Equal(t, 1, cache.sets)
	assert.Same(t, first, second)
}

func dashboardEvent(t *testing.T, id string, ts time.Time) *learning.Event {
	t.Helper()
	e, err := learning.NewEvent(
		id,
		shared.UserID(testUserID),
		shared.CourseID(testCourseID),
		"mod-1",
		"vid-1",
		course.ContentTypeVideo,
		learning.ActionWatch,
		50,
		60,
		nil,
		ts,
	)
	require.NoError(t, err)
	return e
}

func TestDashboard_ActivityTimeline(t *testing.T) {
	// testNow is Thursday 2025-03-20; the week starts Monday 2025-03-17.
	events := &stubEventRepo{recent: []*learning.Event{
		dashboardEvent(t, "e1", testNow),
		dashboardEvent(t, "e2", testNow.Add(-24*time.Hour)),
		dashboardEvent(t, "e3", testNow.Add(-25*time.Hour)),
		dashboardEvent(t, "e4", testNow.Add(-10*24*time.Hour)),
	}}

	handler := NewGetStudentDashboardHandler(&stubCourseRepo{courses: dashboardCourses()}, events, newStubSnapshotStore(), nil, nil).
		WithClock(func() time.Time { return testNow })

	dashboard, err := handler.Handle(context.Background(), GetStudentDashboardQuery{UserID: testUserID})
	require.NoError(t, err)

	assert.Equal(t, []string{"2025-03-10", "2025-03-19", "2025-03-20"}, dashboard.ActivityTimeline)
	assert.Equal(t, 2, dashboard.Stats.ActiveDaysThisWeek)
}

func TestDashboard_InProgressBucket(t *testing.T) {
	snaps := newStubSnapshotStore()
	require.NoError(t, snaps.Upsert(context.Background(), &progress.Snapshot{
		UserID:          shared.UserID(testUserID),
		CourseID:        shared.CourseID(testCourseID),
		OverallProgress: 40,
		LastActivity:    testNow.Add(-2 * time.Hour),
	}))

	handler := NewGetStudentDashboardHandler(&stubCourseRepo{courses: dashboardCourses()}, &stubEventRepo{}, snaps, nil, nil)
	dashboard, err := handler.Handle(context.Background(), GetStudentDashboardQuery{UserID: testUserID})
	require.NoError(t, err)

	assert.Equal(t, 0, dashboard.Stats.CompletedCourses)
	assert.Equal(t, 1, dashboard.Stats.InProgressCourses)
}
