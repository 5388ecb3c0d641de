package redis

import (
	"context"
	"errors"

	"github.com/Mdsadique5522/smart-lms-platform/internal/application/query"
	"github.com/Mdsadique5522/smart-lms-platform/internal/domain/shared"
)

// DashboardCache implements query.DashboardCache using the generic Redis
// Cache. Dashboards aggregate every course, so they are expensive to build
// and cheap to serve stale; a short TTL is the only freshness mechanism.
type DashboardCache struct {
	cache *Cache
}

// NewDashboardCache creates a new DashboardCache.
func NewDashboardCache(cache *Cache) *DashboardCache {
	return &DashboardCache{
		cache: cache,
	}
}

// Get returns the cached dashboard for the user, or (nil, nil) on a miss.
func (d *DashboardCache) Get(ctx context.Context, userID shared.UserID) (*query.StudentDashboard, error) {
	var dashboard query.StudentDashboard
	if err := d.cache.Get(ctx, DashboardKey(userID.String()), &dashboard); err != nil {
		if errors.Is(err, ErrCacheMiss) {
			return nil, nil
		}
		return nil, err
	}
	return &dashboard, nil
}

// Set stores a dashboard in the cache.
func (d *DashboardCache) Set(ctx context.Context, userID shared.UserID, dashboard *query.StudentDashboard) error {
	if dashboard == nil {
		return nil
	}
	return d.cache.Set(ctx, DashboardKey(userID.String()), dashboard, TTLDashboard)
}

// Invalidate removes the cached dashboard for the user.
func (d *DashboardCache) Invalidate(ctx context.Context, userID shared.UserID) error {
	return d.cache.Delete(ctx, DashboardKey(userID.String()))
}
