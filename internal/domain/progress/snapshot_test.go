package progress

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Mdsadique5522/smart-lms-platform/internal/domain/course"
	"github.com/Mdsadique5522/smart-lms-platform/internal/domain/learning"
	"github.com/Mdsadique5522/smart-lms-platform/internal/domain/shared"
)

const (
	snapUserID   = shared.UserID("7b0c9f7e-5a24-4f53-9e41-2f3a8c1d6b90")
	snapCourseID = shared.CourseID("0f8fad5b-d9cb-469f-a165-70867728950e")
)

var snapNow = time.Date(2025, 3, 20, 12, 0, 0, 0, time.UTC)

// twoModuleCourse has one video+quiz module and one reading module.
func twoModuleCourse() *course.Course {
	return &course.Course{
		ID:    snapCourseID,
		Title: "Intro to Distributed Systems",
		Modules: []course.Module{
			{
				ID:       "mod-1",
				Position: 1,
				Contents: []course.ContentItem{
					{ID: "vid-1", Type: course.ContentTypeVideo, Position: 1},
					{ID: "quiz-1", Type: course.ContentTypeQuiz, Position: 2},
				},
			},
			{
				ID:       "mod-2",
				Position: 2,
				Contents: []course.ContentItem{
					{ID: "read-1", Type: course.ContentTypeReading, Position: 1},
				},
			},
		},
	}
}

// mustEvent builds a valid event or fails the test.
func mustEvent(t *testing.T, id string, moduleID shared.ModuleID, contentID shared.ContentID, ct course.ContentType, action learning.ActionType, pct float64, timeSpent int, ts time.Time) *learning.Event {
	t.Helper()
	e, err := learning.NewEvent(id, snapUserID, snapCourseID, moduleID, contentID, ct, action, pct, timeSpent, nil, ts)
	require.NoError(t, err)
	return e
}

// newestFirst sorts nothing; it documents that callers pass events in the
// order the store returns them, newest first.
func newestFirst(events ...*learning.Event) []*learning.Event {
	return events
}

func TestBuildSnapshot_NoEvents(t *testing.T) {
	snap := BuildSnapshot(snapUserID, twoModuleCourse(), nil, snapNow)

	assert.Equal(t, snapUserID, snap.UserID)
	assert.Equal(t, snapCourseID, snap.CourseID)
	assert.Equal(t, 0.0, snap.OverallProgress)
	assert.Equal(t, 0, snap.TotalTimeSpent)
	assert.Equal(t, snapNow, snap.LastActivity)
	require.Len(t, snap.Modules, 2)

	for _, m := range snap.Modules {
		assert.Equal(t, StatusNotStarted, m.Status)
		assert.Equal(t, 0.0, m.CompletionPercentage)
		for _, c := range m.Contents {
			assert.Equal(t, StatusNotStarted, c.Status)
			assert.Equal(t, 0.0, c.Percentage)
			assert.Equal(t, 0, c.TimeSpent)
			assert.Equal(t, 0, c.RevisitCount)
			assert.Equal(t, snapNow, c.LastUpdated)
		}
	}
}

func TestBuildSnapshot_MaxPercentageAndSummedTime(t *testing.T) {
	c := twoModuleCourse()
	events := newestFirst(
		mustEvent(t, "e3", "mod-1", "vid-1", course.ContentTypeVideo, learning.ActionWatch, 40, 120, snapNow.Add(-1*time.Hour)),
		mustEvent(t, "e2", "mod-1", "vid-1", course.ContentTypeVideo, learning.ActionWatch, 75, 300, snapNow.Add(-2*time.Hour)),
		mustEvent(t, "e1", "mod-1", "vid-1", course.ContentTypeVideo, learning.ActionWatch, 20, 60, snapNow.Add(-3*time.Hour)),
	)

	snap := BuildSnapshot(snapUserID, c, events, snapNow)

	cp, ok := snap.FindContent("mod-1", "vid-1")
	require.True(t, ok)
	// Percentage is the max across events, not the latest; rewinding a video
	// never loses progress.
	assert.Equal(t, 75.0, cp.Percentage)
	assert.Equal(t, 480, cp.TimeSpent)
	assert.Equal(t, StatusInProgress, cp.Status)
	assert.Equal(t, snapNow.Add(-1*time.Hour), cp.LastUpdated)
	assert.Equal(t, 480, snap.TotalTimeSpent)
}

func TestBuildSnapshot_UnmatchedEventsIgnored(t *testing.T) {
	c := twoModuleCourse()
	events := newestFirst(
		// Right content ID, wrong module: structure moved, event is stale.
		mustEvent(t, "e2", "mod-2", "vid-1", course.ContentTypeVideo, learning.ActionWatch, 100, 500, snapNow.Add(-1*time.Hour)),
		// Unknown content entirely.
		mustEvent(t, "e1", "mod-1", "ghost", course.ContentTypeVideo, learning.ActionWatch, 100, 500, snapNow.Add(-2*time.Hour)),
	)

	snap := BuildSnapshot(snapUserID, c, events, snapNow)

	assert.Equal(t, 0.0, snap.OverallProgress)
	assert.Equal(t, 0, snap.TotalTimeSpent)
	// Unmatched events still drive overall last activity.
	assert.Equal(t, snapNow.Add(-1*time.Hour), snap.LastActivity)
}

func TestBuildSnapshot_QuizSubmissionCompletes(t *testing.T) {
	c := twoModuleCourse()
	events := newestFirst(
		mustEvent(t, "e1", "mod-1", "quiz-1", course.ContentTypeQuiz, learning.ActionSubmit, 0, 200, snapNow.Add(-1*time.Hour)),
	)

	snap := BuildSnapshot(snapUserID, c, events, snapNow)

	cp, ok := snap.FindContent("mod-1", "quiz-1")
	require.True(t, ok)
	assert.True(t, cp.Submitted)
	assert.Equal(t, StatusCompleted, cp.Status)
}

func TestBuildSnapshot_ModuleAndCourseRounding(t *testing.T) {
	// mod-1: 1 of 2 contents completed -> 50%. mod-2: 0 of 1 -> 0%.
	// Course overall: mean(50, 0) = 25.
	c := twoModuleCourse()
	events := newestFirst(
		mustEvent(t, "e1", "mod-1", "quiz-1", course.ContentTypeQuiz, learning.ActionSubmit, 0, 0, snapNow.Add(-1*time.Hour)),
	)

	snap := BuildSnapshot(snapUserID, c, events, snapNow)

	require.Len(t, snap.Modules, 2)
	assert.Equal(t, 50.0, snap.Modules[0].CompletionPercentage)
	assert.Equal(t, StatusInProgress, snap.Modules[0].Status)
	assert.Equal(t, 0.0, snap.Modules[1].CompletionPercentage)
	assert.Equal(t, 25.0, snap.OverallProgress)
}

func TestBuildSnapshot_RoundingHalfUp(t *testing.T) {
	// Three contents, one completed: 100/3 = 33.33 -> 33.
	// Two completed: 200/3 = 66.67 -> 67.
	c := &course.Course{
		ID: snapCourseID,
		Modules: []course.Module{
			{
				ID: "mod-1",
				Contents: []course.ContentItem{
					{ID: "q-1", Type: course.ContentTypeQuiz},
					{ID: "q-2", Type: course.ContentTypeQuiz},
					{ID: "q-3", Type: course.ContentTypeQuiz},
				},
			},
		},
	}

	one := newestFirst(
		mustEvent(t, "e1", "mod-1", "q-1", course.ContentTypeQuiz, learning.ActionSubmit, 0, 0, snapNow),
	)
	snap := BuildSnapshot(snapUserID, c, one, snapNow)
	assert.Equal(t, 33.0, snap.Modules[0].CompletionPercentage)

	two := newestFirst(
		mustEvent(t, "e2", "mod-1", "q-2", course.ContentTypeQuiz, learning.ActionSubmit, 0, 0, snapNow),
		mustEvent(t, "e1", "mod-1", "q-1", course.ContentTypeQuiz, learning.ActionSubmit, 0, 0, snapNow),
	)
	snap = BuildSnapshot(snapUserID, c, two, snapNow)
	assert.Equal(t, 67.0, snap.Modules[0].CompletionPercentage)
}

func TestBuildSnapshot_RevisitCountsDistinctUTCDays(t *testing.T) {
	c := twoModuleCourse()
	day1 := time.Date(2025, 3, 17, 23, 30, 0, 0, time.UTC)
	// 20:30 in UTC-4 is 00:30 next day in UTC, so a different calendar day.
	loc := time.FixedZone("UTC-4", -4*60*60)
	day2 := time.Date(2025, 3, 17, 20, 30, 0, 0, loc)
	day2Again := time.Date(2025, 3, 18, 9, 0, 0, 0, time.UTC)

	events := newestFirst(
		mustEvent(t, "e3", "mod-2", "read-1", course.ContentTypeReading, learning.ActionScroll, 30, 60, day2Again),
		mustEvent(t, "e2", "mod-2", "read-1", course.ContentTypeReading, learning.ActionScroll, 20, 60, day2),
		mustEvent(t, "e1", "mod-2", "read-1", course.ContentTypeReading, learning.ActionScroll, 10, 60, day1),
	)

	snap := BuildSnapshot(snapUserID, c, events, snapNow)

	cp, ok := snap.FindContent("mod-2", "read-1")
	require.True(t, ok)
	assert.Equal(t, 2, cp.RevisitCount)
}

func TestBuildSnapshot_FullCompletion(t *testing.T) {
	c := twoModuleCourse()
	events := newestFirst(
		mustEvent(t, "e3", "mod-2", "read-1", course.ContentTypeReading, learning.ActionScroll, 95, 400, snapNow.Add(-1*time.Hour)),
		mustEvent(t, "e2", "mod-1", "quiz-1", course.ContentTypeQuiz, learning.ActionSubmit, 0, 150, snapNow.Add(-2*time.Hour)),
		mustEvent(t, "e1", "mod-1", "vid-1", course.ContentTypeVideo, learning.ActionWatch, 92, 600, snapNow.Add(-3*time.Hour)),
	)

	snap := BuildSnapshot(snapUserID, c, events, snapNow)

	assert.Equal(t, 100.0, snap.OverallProgress)
	assert.True(t, snap.IsCourseCompleted())
	assert.Equal(t, 2, snap.CompletedModules())
	assert.Equal(t, 1150, snap.TotalTimeSpent)
	assert.Equal(t, snapNow.Add(-1*time.Hour), snap.LastActivity)
}

func TestBuildSnapshot_Idempotent(t *testing.T) {
	c := twoModuleCourse()
	events := newestFirst(
		mustEvent(t, "e2", "mod-1", "vid-1", course.ContentTypeVideo, learning.ActionWatch, 60, 200, snapNow.Add(-1*time.Hour)),
		mustEvent(t, "e1", "mod-2", "read-1", course.ContentTypeReading, learning.ActionScroll, 50, 100, snapNow.Add(-2*time.Hour)),
	)

	first := BuildSnapshot(snapUserID, c, events, snapNow)
	second := BuildSnapshot(snapUserID, c, events, snapNow)

	assert.Equal(t, first, second)
}
