package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Mdsadique5522/smart-lms-platform/internal/application/command"
	"github.com/Mdsadique5522/smart-lms-platform/internal/application/query"
	"github.com/Mdsadique5522/smart-lms-platform/internal/domain/course"
	"github.com/Mdsadique5522/smart-lms-platform/internal/domain/learning"
	"github.com/Mdsadique5522/smart-lms-platform/internal/domain/progress"
	"github.com/Mdsadique5522/smart-lms-platform/internal/domain/shared"
	"github.com/Mdsadique5522/smart-lms-platform/internal/interface/http/handlers"
)

const (
	testUserID   = "7b0c9f7e-5a24-4f53-9e41-2f3a8c1d6b90"
	testCourseID = "0f8fad5b-d9cb-469f-a165-70867728950e"
)

type stubCourseRepo struct {
	courses map[shared.CourseID]*course.Course
}

func (r *stubCourseRepo) GetByID(_ context.Context, id shared.CourseID) (*course.Course, error) {
	c, ok := r.courses[id]
	if !ok {
		return nil, shared.ErrCourseNotFound
	}
	return c, nil
}

func (r *stubCourseRepo) List(_ context.Context) ([]*course.Course, error) {
	out := make([]*course.Course, 0, len(r.courses))
	for _, c := range r.courses {
		out = append(out, c)
	}
	return out, nil
}

func (r *stubCourseRepo) ListByInstructor(_ context.Context, _ shared.UserID) ([]*course.Course, error) {
	return nil, nil
}

func (r *stubCourseRepo) Exists(_ context.Context, id shared.CourseID) (bool, error) {
	_, ok := r.courses[id]
	return ok, nil
}

type stubEventRepo struct {
	appended []*learning.Event
}

func (r *stubEventRepo) Append(_ context.Context, e *learning.Event) error {
	r.appended = append(r.appended, e)
	return nil
}

func (r *stubEventRepo) ListByUserAndCourse(_ context.Context, _ shared.UserID, _ shared.CourseID) ([]*learning.Event, error) {
	return r.appended, nil
}

func (r *stubEventRepo) ListRecent(_ context.Context, _ shared.UserID, _ shared.CourseID, _ int) ([]*learning.Event, error) {
	return r.appended, nil
}

func (r *stubEventRepo) ListByUser(_ context.Context, _ shared.UserID, _ learning.Filter) ([]*learning.Event, error) {
	return r.appended, nil
}

func (r *stubEventRepo) FindStalePairs(_ context.Context, _ int) ([]learning.StalePair, error) {
	return nil, nil
}

type stubSnapshotStore struct {
	snapshots map[string]*progress.Snapshot
}

func newStubSnapshotStore() *stubSnapshotStore {
	return &stubSnapshotStore{snapshots: make(map[string]*progress.Snapshot)}
}

func snapKey(u shared.UserID, c shared.CourseID) string { return u.String() + ":" + c.String() }

func (s *stubSnapshotStore) Upsert(_ context.Context, snap *progress.Snapshot) error {
	s.snapshots[snapKey(snap.UserID, snap.CourseID)] = snap
	return nil
}

func (s *stubSnapshotStore) Get(_ context.Context, u shared.UserID, c shared.CourseID) (*progress.Snapshot, error) {
	snap, ok := s.snapshots[snapKey(u, c)]
	if !ok {
		return nil, shared.ErrSnapshotNotFound
	}
	return snap, nil
}

func (s *stubSnapshotStore) ListByUser(_ context.Context, u shared.UserID) ([]*progress.Snapshot, error) {
	var out []*progress.Snapshot
	for _, snap := range s.snapshots {
		if snap.UserID == u {
			out = append(out, snap)
		}
	}
	return out, nil
}

func (s *stubSnapshotStore) GetCourseStats(_ context.Context, c shared.CourseID) (*progress.CourseStats, error) {
	return &progress.CourseStats{CourseID: c}, nil
}

func stubCourse() *course.Course {
	return &course.Course{
		ID:           shared.CourseID(testCourseID),
		Title:        "Go Fundamentals",
		InstructorID: shared.UserID(testUserID),
		Modules: []course.Module{
			{
				ID: "mod-1",
				Contents: []course.ContentItem{
					{ID: "vid-1", Type: course.ContentTypeVideo},
					{ID: "read-1", Type: course.ContentTypeReading},
				},
			},
		},
	}
}

// newTestServer wires a Server over in-memory stubs. Rate limiting is off so
// tests cannot trip it.
func newTestServer(t *testing.T) (*Server, *stubEventRepo) {
	t.Helper()

	courses := &stubCourseRepo{courses: map[shared.CourseID]*course.Course{
		shared.CourseID(testCourseID): stubCourse(),
	}}
	events := &stubEventRepo{}
	snaps := newStubSnapshotStore()

	cfg := DefaultConfig()
	cfg.RateLimitPerMinute = 0

	deps := Dependencies{
		RecordEventHandler:         command.NewRecordEventHandler(events, nil, nil, nil),
		GetProgressHandler:         query.NewGetProgressHandler(courses, events, snaps, nil, nil),
		GetEventsHandler:           query.NewGetEventsHandler(events),
		GetStudentDashboardHandler: query.NewGetStudentDashboardHandler(courses, events, snaps, nil, nil),
		GetCourseAnalyticsHandler:  query.NewGetCourseAnalyticsHandler(courses, snaps),
		ListCoursesHandler:         query.NewListCoursesHandler(courses),
		GetCourseHandler:           query.NewGetCourseHandler(courses),
		HealthChecker:              handlers.NewNoopHealthChecker(),
	}

	return NewServer(cfg, deps), events
}

func doRequest(s *Server, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	s.httpServer.Handler.ServeHTTP(rec, req)
	return rec
}

func decodeResponse(t *testing.T, rec *httptest.ResponseRecorder) JSONResponse {
	t.Helper()
	var resp JSONResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func TestHealthEndpoint(t *testing.T) {
	s, _ := newTestServer(t)

	rec := doRequest(s, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	resp := decodeResponse(t, rec)
	assert.True(t, resp.Success)
}

func TestRecordEvent(t *testing.T) {
	s, events := newTestServer(t)

	body := `{
		"course_id": "` + testCourseID + `",
		"module_id": "mod-1",
		"content_id": "vid-1",
		"content_type": "video",
		"event_type": "watch",
		"percentage": 95,
		"time_spent": 120
	}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/events", strings.NewReader(body))
	req.Header.Set(headerUserID, testUserID)

	rec := doRequest(s, req)

	assert.Equal(t, http.StatusCreated, rec.Code)
	resp := decodeResponse(t, rec)
	assert.True(t, resp.Success)
	require.Len(t, events.appended, 1)
	assert.Equal(t, shared.UserID(testUserID), events.appended[0].UserID)
	assert.Equal(t, learning.ActionWatch, events.appended[0].Action)
}

func TestRecordEvent_MissingIdentity(t *testing.T) {
	s, _ := newTestServer(t)

	body := `{"course_id": "` + testCourseID + `"}`
	rec := doRequest(s, httptest.NewRequest(http.MethodPost, "/api/v1/events", strings.NewReader(body)))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	resp := decodeResponse(t, rec)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "unauthenticated", resp.Error.Code)
}

func TestRecordEvent_ValidationFailure(t *testing.T) {
	s, _ := newTestServer(t)

	// scroll is not a valid interaction with a video
	body := `{
		"course_id": "` + testCourseID + `",
		"module_id": "mod-1",
		"content_id": "vid-1",
		"content_type": "video",
		"event_type": "scroll"
	}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/events", strings.NewReader(body))
	req.Header.Set(headerUserID, testUserID)

	rec := doRequest(s, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	resp := decodeResponse(t, rec)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "invalid_request", resp.Error.Code)
}

func TestGetProgress_LazyInit(t *testing.T) {
	s, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/progress/"+testUserID+"/"+testCourseID, nil)
	rec := doRequest(s, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	resp := decodeResponse(t, rec)
	require.True(t, resp.Success)

	raw, err := json.Marshal(resp.Data)
	require.NoError(t, err)
	var view progressView
	require.NoError(t, json.Unmarshal(raw, &view))

	require.NotNil(t, view.Snapshot)
	assert.Equal(t, testUserID, view.Snapshot.UserID)
	assert.Equal(t, 0.0, view.Snapshot.OverallProgress)
	assert.Equal(t, 1, view.Summary.TotalModules)
}

func TestGetMyProgress_UsesHeaderIdentity(t *testing.T) {
	s, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/progress/me/"+testCourseID, nil)
	req.Header.Set(headerUserID, testUserID)
	rec := doRequest(s, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	// Without the header the same route is rejected.
	rec = doRequest(s, httptest.NewRequest(http.MethodGet, "/api/v1/progress/me/"+testCourseID, nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestGetProgress_UnknownCourse(t *testing.T) {
	s, _ := newTestServer(t)

	otherCourse := "11111111-2222-4333-8444-555555555555"
	req := httptest.NewRequest(http.MethodGet, "/api/v1/progress/"+testUserID+"/"+otherCourse, nil)
	rec := doRequest(s, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	resp := decodeResponse(t, rec)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "not_found", resp.Error.Code)
}

func TestListCourses(t *testing.T) {
	s, _ := newTestServer(t)

	rec := doRequest(s, httptest.NewRequest(http.MethodGet, "/api/v1/courses", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	resp := decodeResponse(t, rec)
	require.NotNil(t, resp.Meta)
	assert.Equal(t, 1, resp.Meta.TotalCount)
}

func TestGetCourse_InvalidID(t *testing.T) {
	s, _ := newTestServer(t)

	rec := doRequest(s, httptest.NewRequest(http.MethodGet, "/api/v1/courses/not-a-uuid", nil))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRequestIDPropagation(t *testing.T) {
	s, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("X-Request-ID", "req-42")
	rec := doRequest(s, req)

	assert.Equal(t, "req-42", rec.Header().Get("X-Request-ID"))
}

func TestRateLimiter(t *testing.T) {
	rl := newRateLimiter(2, time.Minute)

	assert.True(t, rl.Allow("1.2.3.4"))
	assert.True(t, rl.Allow("1.2.3.4"))
	assert.False(t, rl.Allow("1.2.3.4"))

	// Other clients are unaffected.
	assert.True(t, rl.Allow("5.6.7.8"))
}
