package messaging

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Mdsadique5522/smart-lms-platform/internal/domain/shared"
)

// recorder collects delivered events behind a mutex so async tests stay safe.
type recorder struct {
	mu     sync.Mutex
	events []shared.Event
}

func (r *recorder) handle(event shared.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
	return nil
}

func (r *recorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.events)
}

func syncBus() *InMemoryEventBus {
	return NewInMemoryEventBus(EventBusConfig{AsyncMode: false, EnableMetrics: true})
}

func TestPublish_DeliversToTypeSubscriber(t *testing.T) {
	bus := syncBus()
	defer bus.Close()

	rec := &recorder{}
	require.NoError(t, bus.Subscribe(shared.EventProgressRecomputed, rec.handle))

	event := shared.NewProgressRecomputedEvent("user-1", "course-1", 50, 120, 3)
	require.NoError(t, bus.Publish(event))

	require.Equal(t, 1, rec.count())
	assert.Equal(t, shared.EventProgressRecomputed, rec.events[0].EventType())
}

func TestPublish_SkipsOtherEventTypes(t *testing.T) {
	bus := syncBus()
	defer bus.Close()

	rec := &recorder{}
	require.NoError(t, bus.Subscribe(shared.EventCourseCompleted, rec.handle))

	require.NoError(t, bus.Publish(shared.NewProgressRecomputedEvent("user-1", "course-1", 50, 120, 3)))

	assert.Equal(t, 0, rec.count())
}

func TestPublish_GlobalSubscriberSeesEverything(t *testing.T) {
	bus := syncBus()
	defer bus.Close()

	rec := &recorder{}
	require.NoError(t, bus.SubscribeAll(rec.handle))

	require.NoError(t, bus.Publish(shared.NewProgressRecomputedEvent("user-1", "course-1", 50, 120, 3)))
	require.NoError(t, bus.Publish(shared.NewCourseCompletedEvent("user-1", "course-1", 600, 2)))

	assert.Equal(t, 2, rec.count())
}

func TestPublish_HandlerErrorDoesNotFailPublish(t *testing.T) {
	bus := syncBus()
	defer bus.Close()

	require.NoError(t, bus.Subscribe(shared.EventProgressRecomputed, func(shared.Event) error {
		return errors.New("boom")
	}))

	assert.NoError(t, bus.Publish(shared.NewProgressRecomputedEvent("user-1", "course-1", 50, 120, 3)))
}

func TestSubscribe_NilHandlerRejected(t *testing.T) {
	bus := syncBus()
	defer bus.Close()

	assert.ErrorIs(t, bus.Subscribe(shared.EventProgressRecomputed, nil), ErrNilHandler)
	assert.ErrorIs(t, bus.SubscribeAll(nil), ErrNilHandler)
}

func TestClosedBus_RejectsOperations(t *testing.T) {
	bus := syncBus()
	require.NoError(t, bus.Close())
	// Close is idempotent.
	require.NoError(t, bus.Close())

	rec := &recorder{}
	assert.ErrorIs(t, bus.Subscribe(shared.EventProgressRecomputed, rec.handle), ErrEventBusClosed)
	assert.ErrorIs(t, bus.Publish(shared.NewProgressRecomputedEvent("user-1", "course-1", 50, 120, 3)), ErrEventBusClosed)
}

func TestAsyncPublish_CompletesBeforeClose(t *testing.T) {
	bus := NewInMemoryEventBus(EventBusConfig{AsyncMode: true, WorkerPoolSize: 2})

	rec := &recorder{}
	require.NoError(t, bus.Subscribe(shared.EventProgressRecomputed, rec.handle))

	for i := 0; i < 5; i++ {
		require.NoError(t, bus.Publish(shared.NewProgressRecomputedEvent("user-1", "course-1", 50, 120, 3)))
	}

	// Close waits for in-flight handlers.
	require.NoError(t, bus.Close())
	assert.Equal(t, 5, rec.count())
}

func TestMetrics_TrackPublishAndExecution(t *testing.T) {
	bus := syncBus()
	defer bus.Close()

	rec := &recorder{}
	require.NoError(t, bus.Subscribe(shared.EventProgressRecomputed, rec.handle))
	require.NoError(t, bus.Publish(shared.NewProgressRecomputedEvent("user-1", "course-1", 50, 120, 3)))

	require.NotNil(t, bus.Metrics())
	snap := bus.Metrics().Snapshot()
	assert.Equal(t, int64(1), snap.TotalPublished)
	assert.Equal(t, int64(1), snap.TotalHandlerExecs)
	assert.Equal(t, 1.0, snap.HandlerSuccessRate)
}
