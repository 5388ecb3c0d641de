package learning

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Mdsadique5522/smart-lms-platform/internal/domain/course"
	"github.com/Mdsadique5522/smart-lms-platform/internal/domain/shared"
)

const (
	testUserID   = shared.UserID("7b0c9f7e-5a24-4f53-9e41-2f3a8c1d6b90")
	testCourseID = shared.CourseID("0f8fad5b-d9cb-469f-a165-70867728950e")
)

func validEventArgs() (string, shared.UserID, shared.CourseID, shared.ModuleID, shared.ContentID, course.ContentType, ActionType) {
	return "evt-1", testUserID, testCourseID, "mod-1", "vid-1", course.ContentTypeVideo, ActionWatch
}

func TestNewEvent_Valid(t *testing.T) {
	id, uid, cid, mid, contentID, ct, action := validEventArgs()
	now := time.Date(2025, 3, 14, 10, 0, 0, 0, time.UTC)

	e, err := NewEvent(id, uid, cid, mid, contentID, ct, action, 42.5, 300, map[string]any{"player": "html5"}, now)
	require.NoError(t, err)

	assert.Equal(t, "evt-1", e.ID)
	assert.Equal(t, shared.Percentage(42.5), e.Percentage)
	assert.Equal(t, shared.TimeSpent(300), e.TimeSpent)
	assert.Equal(t, now, e.Timestamp)
}

func TestNewEvent_DefaultsZeroTimestampToNow(t *testing.T) {
	id, uid, cid, mid, contentID, ct, action := validEventArgs()

	before := time.Now()
	e, err := NewEvent(id, uid, cid, mid, contentID, ct, action, 0, 0, nil, time.Time{})
	require.NoError(t, err)

	assert.False(t, e.Timestamp.Before(before))
	assert.Equal(t, shared.Percentage(0), e.Percentage)
	assert.Equal(t, shared.TimeSpent(0), e.TimeSpent)
}

func TestNewEvent_RequiredFields(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*string, *shared.UserID, *shared.CourseID, *shared.ModuleID, *shared.ContentID)
		wantErr error
	}{
		{
			name:    "empty event ID",
			mutate:  func(id *string, _ *shared.UserID, _ *shared.CourseID, _ *shared.ModuleID, _ *shared.ContentID) { *id = "" },
			wantErr: shared.ErrInvalidID,
		},
		{
			name: "invalid user ID",
			mutate: func(_ *string, uid *shared.UserID, _ *shared.CourseID, _ *shared.ModuleID, _ *shared.ContentID) {
				*uid = "not-a-uuid"
			},
			wantErr: shared.ErrInvalidID,
		},
		{
			name: "invalid course ID",
			mutate: func(_ *string, _ *shared.UserID, cid *shared.CourseID, _ *shared.ModuleID, _ *shared.ContentID) {
				*cid = ""
			},
			wantErr: shared.ErrInvalidID,
		},
		{
			name: "empty module ID",
			mutate: func(_ *string, _ *shared.UserID, _ *shared.CourseID, mid *shared.ModuleID, _ *shared.ContentID) {
				*mid = ""
			},
			wantErr: shared.ErrEmptyValue,
		},
		{
			name: "empty content ID",
			mutate: func(_ *string, _ *shared.UserID, _ *shared.CourseID, _ *shared.ModuleID, contentID *shared.ContentID) {
				*contentID = ""
			},
			wantErr: shared.ErrEmptyValue,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, uid, cid, mid, contentID, ct, action := validEventArgs()
			tt.mutate(&id, &uid, &cid, &mid, &contentID)

			_, err := NewEvent(id, uid, cid, mid, contentID, ct, action, 0, 0, nil, time.Now())
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestNewEvent_PairingMatrix(t *testing.T) {
	tests := []struct {
		contentType course.ContentType
		action      ActionType
		valid       bool
	}{
		{course.ContentTypeVideo, ActionWatch, true},
		{course.ContentTypeVideo, ActionScroll, false},
		{course.ContentTypeVideo, ActionSubmit, false},
		{course.ContentTypeReading, ActionScroll, true},
		{course.ContentTypeReading, ActionWatch, false},
		{course.ContentTypeReading, ActionSubmit, false},
		{course.ContentTypeQuiz, ActionSubmit, true},
		{course.ContentTypeQuiz, ActionWatch, false},
		{course.ContentTypeQuiz, ActionScroll, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.contentType)+"_"+string(tt.action), func(t *testing.T) {
			_, err := NewEvent("evt-1", testUserID, testCourseID, "mod-1", "c-1", tt.contentType, tt.action, 0, 0, nil, time.Now())
			if tt.valid {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, shared.ErrInvalidEventPairing)
			}
		})
	}
}

func TestNewEvent_RejectsUnknownKinds(t *testing.T) {
	_, err := NewEvent("evt-1", testUserID, testCourseID, "mod-1", "c-1", course.ContentType("podcast"), ActionWatch, 0, 0, nil, time.Now())
	assert.ErrorIs(t, err, shared.ErrInvalidContentType)

	_, err = NewEvent("evt-1", testUserID, testCourseID, "mod-1", "c-1", course.ContentTypeVideo, ActionType("skip"), 0, 0, nil, time.Now())
	assert.ErrorIs(t, err, shared.ErrInvalidEventType)
}

func TestNewEvent_RangeValidation(t *testing.T) {
	_, err := NewEvent("evt-1", testUserID, testCourseID, "mod-1", "c-1", course.ContentTypeVideo, ActionWatch, 101, 0, nil, time.Now())
	assert.ErrorIs(t, err, shared.ErrValueOutOfRange)

	_, err = NewEvent("evt-1", testUserID, testCourseID, "mod-1", "c-1", course.ContentTypeVideo, ActionWatch, -1, 0, nil, time.Now())
	assert.ErrorIs(t, err, shared.ErrValueOutOfRange)

	_, err = NewEvent("evt-1", testUserID, testCourseID, "mod-1", "c-1", course.ContentTypeVideo, ActionWatch, 50, -10, nil, time.Now())
	assert.ErrorIs(t, err, shared.ErrNegativeValue)
}

func TestEvent_MatchesContent(t *testing.T) {
	e, err := NewEvent("evt-1", testUserID, testCourseID, "mod-1", "vid-1", course.ContentTypeVideo, ActionWatch, 50, 0, nil, time.Now())
	require.NoError(t, err)

	assert.True(t, e.MatchesContent("mod-1", course.ContentKey{ContentID: "vid-1", Type: course.ContentTypeVideo}))
	assert.False(t, e.MatchesContent("mod-2", course.ContentKey{ContentID: "vid-1", Type: course.ContentTypeVideo}))
	assert.False(t, e.MatchesContent("mod-1", course.ContentKey{ContentID: "vid-2", Type: course.ContentTypeVideo}))
	assert.False(t, e.MatchesContent("mod-1", course.ContentKey{ContentID: "vid-1", Type: course.ContentTypeReading}))
}

func TestEvent_IsSubmission(t *testing.T) {
	quiz, err := NewEvent("evt-1", testUserID, testCourseID, "mod-1", "q-1", course.ContentTypeQuiz, ActionSubmit, 0, 0, nil, time.Now())
	require.NoError(t, err)
	assert.True(t, quiz.IsSubmission())

	video, err := NewEvent("evt-2", testUserID, testCourseID, "mod-1", "v-1", course.ContentTypeVideo, ActionWatch, 95, 0, nil, time.Now())
	require.NoError(t, err)
	assert.False(t, video.IsSubmission())
}
