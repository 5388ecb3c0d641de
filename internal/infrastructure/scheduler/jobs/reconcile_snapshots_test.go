package jobs

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Mdsadique5522/smart-lms-platform/internal/application/command"
	"github.com/Mdsadique5522/smart-lms-platform/internal/domain/course"
	"github.com/Mdsadique5522/smart-lms-platform/internal/domain/learning"
	"github.com/Mdsadique5522/smart-lms-platform/internal/domain/progress"
	"github.com/Mdsadique5522/smart-lms-platform/internal/domain/shared"
)

const (
	testUserID    = "7b0c9f7e-5a24-4f53-9e41-2f3a8c1d6b90"
	testCourseID  = "0f8fad5b-d9cb-469f-a165-70867728950e"
	orphanCourse = "11111111-2222-4333-8444-555555555555"
)

var testNow = time.Date(2025, 3, 20, 12, 0, 0, 0, time.UTC)

type fakeCourseRepo struct {
	courses map[shared.CourseID]*course.Course
}

func (r *fakeCourseRepo) GetByID(_ context.Context, id shared.CourseID) (*course.Course, error) {
	c, ok := r.courses[id]
	if !ok {
		return nil, shared.ErrCourseNotFound
	}
	return c, nil
}

func (r *fakeCourseRepo) List(_ context.Context) ([]*course.Course, error) { return nil, nil }

func (r *fakeCourseRepo) ListByInstructor(_ context.Context, _ shared.UserID) ([]*course.Course, error) {
	return nil, nil
}

func (r *fakeCourseRepo) Exists(_ context.Context, id shared.CourseID) (bool, error) {
	_, ok := r.courses[id]
	return ok, nil
}

type fakeEventRepo struct {
	events     []*learning.Event
	stalePairs []learning.StalePair
	staleLimit int
}

func (r *fakeEventRepo) Append(_ context.Context, e *learning.Event) error {
	r.events = append(r.events, e)
	return nil
}

func (r *fakeEventRepo) ListByUserAndCourse(_ context.Context, userID shared.UserID, courseID shared.CourseID) ([]*learning.Event, error) {
	var out []*learning.Event
	for _, e := range r.events {
		if e.UserID == userID && e.CourseID == courseID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (r *fakeEventRepo) ListRecent(ctx context.Context, userID shared.UserID, courseID shared.CourseID, limit int) ([]*learning.Event, error) {
	return r.ListByUserAndCourse(ctx, userID, courseID)
}

func (r *fakeEventRepo) ListByUser(_ context.Context, _ shared.UserID, _ learning.Filter) ([]*learning.Event, error) {
	return nil, nil
}

func (r *fakeEventRepo) FindStalePairs(_ context.Context, limit int) ([]learning.StalePair, error) {
	r.staleLimit = limit
	return r.stalePairs, nil
}

type fakeSnapshotStore struct {
	snapshots map[string]*progress.Snapshot
	upserts   int
}

func newFakeSnapshotStore() *fakeSnapshotStore {
	return &fakeSnapshotStore{snapshots: make(map[string]*progress.Snapshot)}
}

func (s *fakeSnapshotStore) Upsert(_ context.Context, snap *progress.Snapshot) error {
	s.upserts++
	s.snapshots[snap.UserID.String()+":"+snap.CourseID.String()] = snap
	return nil
}

func (s *fakeSnapshotStore) Get(_ context.Context, userID shared.UserID, courseID shared.CourseID) (*progress.Snapshot, error) {
	snap, ok := s.snapshots[userID.String()+":"+courseID.String()]
	if !ok {
		return nil, shared.ErrSnapshotNotFound
	}
	return snap, nil
}

func (s *fakeSnapshotStore) ListByUser(_ context.Context, _ shared.UserID) ([]*progress.Snapshot, error) {
	return nil, nil
}

func (s *fakeSnapshotStore) GetCourseStats(_ context.Context, courseID shared.CourseID) (*progress.CourseStats, error) {
	return &progress.CourseStats{CourseID: courseID}, nil
}

type fakePublisher struct {
	events []shared.Event
}

func (p *fakePublisher) Publish(event shared.Event) error {
	p.events = append(p.events, event)
	return nil
}

func testCourse() *course.Course {
	return &course.Course{
		ID: shared.CourseID(testCourseID),
		Modules: []course.Module{
			{
				ID: "mod-1",
				Contents: []course.ContentItem{
					{ID: "vid-1", Type: course.ContentTypeVideo},
				},
			},
		},
	}
}

func mustEvent(t *testing.T) *learning.Event {
	t.Helper()
	e, err := learning.NewEvent(
		"e1",
		shared.UserID(testUserID),
		shared.CourseID(testCourseID),
		"mod-1",
		"vid-1",
		course.ContentTypeVideo,
		learning.ActionWatch,
		95,
		120,
		nil,
		testNow.Add(-time.Hour),
	)
	require.NoError(t, err)
	return e
}

func TestReconcile_RecomputesStalePairs(t *testing.T) {
	courses := &fakeCourseRepo{courses: map[shared.CourseID]*course.Course{
		shared.CourseID(testCourseID): testCourse(),
	}}
	events := &fakeEventRepo{
		events: []*learning.Event{mustEvent(t)},
		stalePairs: []learning.StalePair{
			{UserID: shared.UserID(testUserID), CourseID: shared.CourseID(testCourseID), NewestEvent: testNow},
		},
	}
	snaps := newFakeSnapshotStore()
	pub := &fakePublisher{}

	recompute := command.NewRecomputeProgressHandler(courses, events, snaps, nil, nil)
	job := NewReconcileSnapshotsJob(events, recompute, pub, nil, ReconcileConfig{BatchSize: 100})

	require.NoError(t, job.Run(context.Background()))

	assert.Equal(t, 100, events.staleLimit)
	assert.Equal(t, 1, snaps.upserts)

	snap, err := snaps.Get(context.Background(), shared.UserID(testUserID), shared.CourseID(testCourseID))
	require.NoError(t, err)
	assert.Equal(t, 100.0, snap.OverallProgress)

	stats := job.LastRunStats()
	require.NotNil(t, stats)
	assert.Equal(t, 1, stats.PairsChecked)
	assert.Equal(t, 1, stats.PairsRecomputed)
	assert.Equal(t, 0, stats.Failures)

	require.Len(t, pub.events, 1)
	assert.Equal(t, shared.EventReconcileCompleted, pub.events[0].EventType())
}

func TestReconcile_NoStalePairsIsQuiet(t *testing.T) {
	events := &fakeEventRepo{}
	snaps := newFakeSnapshotStore()
	pub := &fakePublisher{}

	recompute := command.NewRecomputeProgressHandler(&fakeCourseRepo{}, events, snaps, nil, nil)
	job := NewReconcileSnapshotsJob(events, recompute, pub, nil, ReconcileConfig{BatchSize: 100})

	require.NoError(t, job.Run(context.Background()))

	assert.Equal(t, 0, snaps.upserts)
	stats := job.LastRunStats()
	require.NotNil(t, stats)
	assert.Equal(t, 0, stats.PairsChecked)
}

func TestReconcile_CountsFailuresAndContinues(t *testing.T) {
	courses := &fakeCourseRepo{courses: map[shared.CourseID]*course.Course{
		shared.CourseID(testCourseID): testCourse(),
	}}
	events := &fakeEventRepo{
		events: []*learning.Event{mustEvent(t)},
		stalePairs: []learning.StalePair{
			// Course deleted after its events were recorded; recompute fails.
			{UserID: shared.UserID(testUserID), CourseID: shared.CourseID(orphanCourse), NewestEvent: testNow},
			{UserID: shared.UserID(testUserID), CourseID: shared.CourseID(testCourseID), NewestEvent: testNow},
		},
	}
	snaps := newFakeSnapshotStore()

	recompute := command.NewRecomputeProgressHandler(courses, events, snaps, nil, nil)
	job := NewReconcileSnapshotsJob(events, recompute, nil, nil, ReconcileConfig{BatchSize: 100})

	err := job.Run(context.Background())
	require.Error(t, err)

	// The healthy pair is still reconciled.
	assert.Equal(t, 1, snaps.upserts)

	stats := job.LastRunStats()
	require.NotNil(t, stats)
	assert.Equal(t, 2, stats.PairsChecked)
	assert.Equal(t, 1, stats.PairsRecomputed)
	assert.Equal(t, 1, stats.Failures)
}
