package eventhandler

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Mdsadique5522/smart-lms-platform/internal/domain/progress"
	"github.com/Mdsadique5522/smart-lms-platform/internal/domain/shared"
)

type fakeCache struct {
	invalidated []string
	failWith    error
}

func (c *fakeCache) Get(_ context.Context, _ shared.UserID, _ shared.CourseID) (*progress.Snapshot, error) {
	return nil, nil
}

func (c *fakeCache) Set(_ context.Context, _ *progress.Snapshot) error {
	return nil
}

func (c *fakeCache) Invalidate(_ context.Context, userID shared.UserID, courseID shared.CourseID) error {
	if c.failWith != nil {
		return c.failWith
	}
	c.invalidated = append(c.invalidated, userID.String()+":"+courseID.String())
	return nil
}

func TestOnProgressRecomputed_InvalidatesPair(t *testing.T) {
	cache := &fakeCache{}
	h := NewOnProgressRecomputedHandler(cache, nil)

	event := shared.NewProgressRecomputedEvent("user-1", "course-1", 42, 300, 5)
	require.NoError(t, h.Handle(event))

	require.Len(t, cache.invalidated, 1)
	assert.Equal(t, "user-1:course-1", cache.invalidated[0])
}

func TestOnProgressRecomputed_IgnoresOtherEventTypes(t *testing.T) {
	cache := &fakeCache{}
	h := NewOnProgressRecomputedHandler(cache, nil)

	require.NoError(t, h.Handle(shared.NewCourseCompletedEvent("user-1", "course-1", 600, 2)))

	assert.Empty(t, cache.invalidated)
}

func TestOnProgressRecomputed_NilCacheIsNoop(t *testing.T) {
	h := NewOnProgressRecomputedHandler(nil, nil)

	assert.NoError(t, h.Handle(shared.NewProgressRecomputedEvent("user-1", "course-1", 42, 300, 5)))
}

func TestOnProgressRecomputed_CacheFailureIsSwallowed(t *testing.T) {
	cache := &fakeCache{failWith: errors.New("redis down")}
	h := NewOnProgressRecomputedHandler(cache, nil)

	// Invalidation is best-effort; a cache failure never propagates to the bus.
	assert.NoError(t, h.Handle(shared.NewProgressRecomputedEvent("user-1", "course-1", 42, 300, 5)))
}

func TestOnProgressRecomputed_EventType(t *testing.T) {
	h := NewOnProgressRecomputedHandler(nil, nil)
	assert.Equal(t, shared.EventProgressRecomputed, h.EventType())
}
