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
)

// ══════════════════════════════════════════════════════════════════════════════
// GET PROGRESS QUERY
// The snapshot read path. When no snapshot exists yet for a known course the
// query lazily persists an all-zero snapshot derived from the structure, so
// a learner who has never produced an event still gets a fully-shaped answer.
// ══════════════════════════════════════════════════════════════════════════════

// RecentEventsLimit bounds the recent-activity list on progress reads.
const RecentEventsLimit = 10

// SnapshotCache is a read-through cache over the snapshot store. Implemented
// by the Redis layer; every method is best-effort and a miss or failure just
// falls through to storage.
type SnapshotCache interface {
	Get(ctx context.Context, userID shared.UserID, courseID shared.CourseID) (*progress.Snapshot, error)
	Set(ctx context.Context, snapshot *progress.Snapshot) error
	Invalidate(ctx context.Context, userID shared.UserID, courseID shared.CourseID) error
}

// ProgressSummary is the rollup block included with every progress read.
type ProgressSummary struct {
	OverallProgress  float64
	TotalModules     int
	CompletedModules int
	TotalTimeSpent   int
	LastActivity     time.Time
}

// ProgressView is the full answer to a progress read.
type ProgressView struct {
	Snapshot     *progress.Snapshot
	RecentEvents []*learning.Event
	Summary      ProgressSummary
}

// GetProgressQuery identifies the pair to read.
type GetProgressQuery struct {
	UserID   string
	CourseID string
}

// GetProgressHandler handles progress reads.
type GetProgressHandler struct {
	courseRepo course.Repository
	eventRepo  learning.Repository
	snapshots  progress.SnapshotStore
	cache      SnapshotCache
	log        *logger.Logger
	now        func() time.Time
}

// NewGetProgressHandler creates a new GetProgressHandler. The cache may be
// nil when Redis is disabled.
func NewGetProgressHandler(
	courseRepo course.Repository,
	eventRepo learning.Repository,
	snapshots progress.SnapshotStore,
	cache SnapshotCache,
	log *logger.Logger,
) *GetProgressHandler {
	if log == nil {
		log = logger.Default()
	}
	return &GetProgressHandler{
		courseRepo: courseRepo,
		eventRepo:  eventRepo,
		snapshots:  snapshots,
		cache:      cache,
		log:        log.With(logger.Component("get_progress")),
		now:        time.Now,
	}
}

// WithClock overrides the handler's clock. Intended for tests.
func (h *GetProgressHandler) WithClock(now func() time.Time) *GetProgressHandler {
	h.now = now
	return h
}

// Handle returns the progress view, lazily initializing the snapshot when
// the course exists but no snapshot does. A missing course is a not-found
// error.
func (h *GetProgressHandler) Handle(ctx context.Context, q GetProgressQuery) (*ProgressView, error) {
	userID, err := shared.NewUserID(q.UserID)
	if err != nil {
		return nil, err
	}
	courseID, err := shared.NewCourseID(q.CourseID)
	if err != nil {
		return nil, err
	}

	snap, err := h.loadOrInit(ctx, userID, courseID)
	if err != nil {
		return nil, err
	}

	recent, err := h.eventRepo.ListRecent(ctx, userID, courseID, RecentEventsLimit)
	if err != nil {
		// Recent activity decorates the view; the snapshot is the answer.
		h.log.Warn("failed to load recent events",
			logger.UserID(userID.String()),
			logger.CourseID(courseID.String()),
			logger.Err(err),
		)
		recent = nil
	}

	return &ProgressView{
		Snapshot:     snap,
		RecentEvents: recent,
		Summary:      summarize(snap),
	}, nil
}

// loadOrInit fetches the snapshot through the cache, falling back to storage
// and finally to lazy initialization from course structure.
func (h *GetProgressHandler) loadOrInit(ctx context.Context, userID shared.UserID, courseID shared.CourseID) (*progress.Snapshot, error) {
	if h.cache != nil {
		if snap, err := h.cache.Get(ctx, userID, courseID); err == nil && snap != nil {
			return snap, nil
		}
	}

	snap, err := h.snapshots.Get(ctx, userID, courseID)
	if err == nil {
		h.cacheSet(ctx, snap)
		return snap, nil
	}
	if !shared.IsNotFound(err) {
		return nil, shared.WrapError("progress", "Get", shared.ErrStorageUnavailable, "failed to load snapshot", err)
	}

	crs, err := h.courseRepo.GetByID(ctx, courseID)
	if err != nil {
		return nil, shared.WrapError("progress", "Get", shared.ErrNotFound, "course not found", err)
	}

	snap = progress.BuildSnapshot(userID, crs, nil, h.now())
	if err := h.snapshots.Upsert(ctx, snap); err != nil {
		// A concurrent reader may have initialized the pair first; their row
		// is equivalent, so re-read instead of failing.
		if shared.IsConflict(err) {
			return h.snapshots.Get(ctx, userID, courseID)
		}
		return nil, shared.WrapError("progress", "Init", shared.ErrStorageUnavailable, "failed to store initial snapshot", err)
	}

	h.cacheSet(ctx, snap)
	return snap, nil
}

func (h *GetProgressHandler) cacheSet(ctx context.Context, snap *progress.Snapshot) {
	if h.cache == nil {
		return
	}
	if err := h.cache.Set(ctx, snap); err != nil {
		h.log.Debug("snapshot cache set failed", logger.Err(err))
	}
}

// summarize builds the rollup block from a snapshot.
func summarize(snap *progress.Snapshot) ProgressSummary {
	return ProgressSummary{
		OverallProgress:  snap.OverallProgress,
		TotalModules:     len(snap.Modules),
		CompletedModules: snap.CompletedModules(),
		TotalTimeSpent:   snap.TotalTimeSpent,
		LastActivity:     snap.LastActivity,
	}
}
