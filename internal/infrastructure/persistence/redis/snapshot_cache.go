package redis

import (
	"context"
	"errors"

	"github.com/Mdsadique5522/smart-lms-platform/internal/domain/progress"
	"github.com/Mdsadique5522/smart-lms-platform/internal/domain/shared"
)

// SnapshotCache implements query.SnapshotCache using the generic Redis Cache.
// Entries are invalidated on every recompute; the TTL only bounds staleness
// if an invalidation is missed.
type SnapshotCache struct {
	cache *Cache
}

// NewSnapshotCache creates a new SnapshotCache.
func NewSnapshotCache(cache *Cache) *SnapshotCache {
	return &SnapshotCache{
		cache: cache,
	}
}

// Get returns the cached snapshot for the pair, or ErrSnapshotNotFound on a
// miss.
func (s *SnapshotCache) Get(ctx context.Context, userID shared.UserID, courseID shared.CourseID) (*progress.Snapshot, error) {
	var snap progress.Snapshot
	key := ProgressKey(userID.String(), courseID.String())
	if err := s.cache.Get(ctx, key, &snap); err != nil {
		if errors.Is(err, ErrCacheMiss) {
			return nil, shared.ErrSnapshotNotFound
		}
		return nil, err
	}
	return &snap, nil
}

// Set stores a snapshot in the cache.
func (s *SnapshotCache) Set(ctx context.Context, snap *progress.Snapshot) error {
	if snap == nil {
		return nil
	}
	key := ProgressKey(snap.UserID.String(), snap.CourseID.String())
	return s.cache.Set(ctx, key, snap, TTLProgressSnapshot)
}

// Invalidate removes the cached snapshot for the pair.
func (s *SnapshotCache) Invalidate(ctx context.Context, userID shared.UserID, courseID shared.CourseID) error {
	key := ProgressKey(userID.String(), courseID.String())
	return s.cache.Delete(ctx, key)
}

// InvalidateUser removes every cached snapshot for a user.
func (s *SnapshotCache) InvalidateUser(ctx context.Context, userID shared.UserID) error {
	return s.cache.DeleteByPattern(ctx, PrefixProgress+userID.String()+":*")
}
