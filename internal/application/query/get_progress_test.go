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

const (
	testUserID   = "7b0c9f7e-5a24-4f53-9e41-2f3a8c1d6b90"
	testCourseID = "0f8fad5b-d9cb-469f-a165-70867728950e"
)

var testNow = time.Date(2025, 3, 20, 12, 0, 0, 0, time.UTC)

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
	recent []*learning.Event
}

func (r *stubEventRepo) Append(_ context.Context, _ *learning.Event) error { return nil }

func (r *stubEventRepo) ListByUserAndCourse(_ context.Context, _ shared.UserID, _ shared.CourseID) ([]*learning.Event, error) {
	return r.recent, nil
}

func (r *stubEventRepo) ListRecent(_ context.Context, _ shared.UserID, _ shared.CourseID, limit int) ([]*learning.Event, error) {
	if len(r.recent) > limit {
		return r.recent[:limit], nil
	}
	return r.recent, nil
}

func (r *stubEventRepo) ListByUser(_ context.Context, _ shared.UserID, filter learning.Filter) ([]*learning.Event, error) {
	if filter.Limit > 0 && len(r.recent) > filter.Limit {
		return r.recent[:filter.Limit], nil
	}
	return r.recent, nil
}

func (r *stubEventRepo) FindStalePairs(_ context.Context, _ int) ([]learning.StalePair, error) {
	return nil, nil
}

type stubSnapshotStore struct {
	snapshots map[string]*progress.Snapshot
	upserts   int
}

func newStubSnapshotStore() *stubSnapshotStore {
	return &stubSnapshotStore{snapshots: make(map[string]*progress.Snapshot)}
}

func key(u shared.UserID, c shared.CourseID) string { return u.String() + ":" + c.String() }

func (s *stubSnapshotStore) Upsert(_ context.Context, snap *progress.Snapshot) error {
	s.upserts++
	s.snapshots[key(snap.UserID, snap.CourseID)] = snap
	return nil
}

func (s *stubSnapshotStore) Get(_ context.Context, u shared.UserID, c shared.CourseID) (*progress.Snapshot, error) {
	snap, ok := s.snapshots[key(u, c)]
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

type stubCache struct {
	entries     map[string]*progress.Snapshot
	gets, hits  int
	sets        int
	invalidated int
}

func newStubCache() *stubCache { return &stubCache{entries: make(map[string]*progress.Snapshot)} }

func (c *stubCache) Get(_ context.Context, u shared.UserID, cid shared.CourseID) (*progress.Snapshot, error) {
	c.gets++
	snap, ok := c.entries[key(u, cid)]
	if !ok {
		return nil, shared.ErrSnapshotNotFound
	}
	c.hits++
	return snap, nil
}

func (c *stubCache) Set(_ context.Context, snap *progress.Snapshot) error {
	c.sets++
	c.entries[key(snap.UserID, snap.CourseID)] = snap
	return nil
}

func (c *stubCache) Invalidate(_ context.Context, u shared.UserID, cid shared.CourseID) error {
	c.invalidated++
	delete(c.entries, key(u, cid))
	return nil
}

func stubCourse() *course.Course {
	return &course.Course{
		ID: shared.CourseID(testCourseID),
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

func TestGetProgress_LazyInitialization(t *testing.T) {
	courses := &stubCourseRepo{courses: map[shared.CourseID]*course.Course{
		shared.CourseID(testCourseID): stubCourse(),
	}}
	snaps := newStubSnapshotStore()
	handler := NewGetProgressHandler(courses, &stubEventRepo{}, snaps, nil, nil).
		WithClock(func() time.Time { return testNow })

	view, err := handler.Handle(context.Background(), GetProgressQuery{UserID: testUserID, CourseID: testCourseID})
	require.NoError(t, err)

	// An all-zero snapshot was derived from structure and persisted.
	assert.Equal(t, 1, snaps.upserts)
	assert.Equal(t, 0.0, view.Snapshot.OverallProgress)
	require.Len(t, view.Snapshot.Modules, 1)
	assert.Len(t, view.Snapshot.Modules[0].Contents, 2)

	assert.Equal(t, 0.0, view.Summary.OverallProgress)
	assert.Equal(t, 1, view.Summary.TotalModules)
	assert.Equal(t, 0, view.Summary.CompletedModules)
	assert.Equal(t, testNow, view.Summary.LastActivity)

	// A second read finds the stored snapshot and does not re-initialize.
	_, err = handler.Handle(context.Background(), GetProgressQuery{UserID: testUserID, CourseID: testCourseID})
	require.NoError(t, err)
	assert.Equal(t, 1, snaps.upserts)
}

func TestGetProgress_UnknownCourse(t *testing.T) {
	handler := NewGetProgressHandler(&stubCourseRepo{courses: map[shared.CourseID]*course.Course{}}, &stubEventRepo{}, newStubSnapshotStore(), nil, nil)

	_, err := handler.Handle(context.Background(), GetProgressQuery{UserID: testUserID, CourseID: testCourseID})
	require.Error(t, err)
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestGetProgress_SummaryFromStoredSnapshot(t *testing.T) {
	snaps := newStubSnapshotStore()
	stored := &progress.Snapshot{
		UserID:   shared.UserID(testUserID),
		CourseID: shared.CourseID(testCourseID),
		Modules: []progress.ModuleProgress{
			{ModuleID: "mod-1", CompletionPercentage: 100, Status: progress.StatusCompleted},
			{ModuleID: "mod-2", CompletionPercentage: 50, Status: progress.StatusInProgress},
		},
		OverallProgress: 75,
		TotalTimeSpent:  900,
		LastActivity:    testNow.Add(-time.Hour),
	}
	require.NoError(t, snaps.Upsert(context.Background(), stored))

	handler := NewGetProgressHandler(&stubCourseRepo{}, &stubEventRepo{}, snaps, nil, nil)
	view, err := handler.Handle(context.Background(), GetProgressQuery{UserID: testUserID, CourseID: testCourseID})
	require.NoError(t, err)

	assert.Equal(t, 75.0, view.Summary.OverallProgress)
	assert.Equal(t, 2, view.Summary.TotalModules)
	assert.Equal(t, 1, view.Summary.CompletedModules)
	assert.Equal(t, 900, view.Summary.TotalTimeSpent)
	assert.Equal(t, testNow.Add(-time.Hour), view.Summary.LastActivity)
}

func TestGetProgress_CacheReadThrough(t *testing.T) {
	snaps := newStubSnapshotStore()
	cache := newStubCache()
	stored := &progress.Snapshot{
		UserID:          shared.UserID(testUserID),
		CourseID:        shared.CourseID(testCourseID),
		OverallProgress: 40,
		LastActivity:    testNow,
	}
	require.NoError(t, snaps.Upsert(context.Background(), stored))
	snaps.upserts = 0

	handler := NewGetProgressHandler(&stubCourseRepo{}, &stubEventRepo{}, snaps, cache, nil)

	// First read misses the cache, hits storage, and populates the cache.
	_, err := handler.Handle(context.Background(), GetProgressQuery{UserID: testUserID, CourseID: testCourseID})
	require.NoError(t, err)
	assert.Equal(t, 0, cache.hits)
	assert.Equal(t, 1, cache.sets)

	// Second read is served from the cache.
	_, err = handler.Handle(context.Background(), GetProgressQuery{UserID: testUserID, CourseID: testCourseID})
	require.NoError(t, err)
	assert.Equal(t, 1, cache.hits)
}
