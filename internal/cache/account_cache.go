package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/noteduco342/om-receipts/internal/metrics"
	"github.com/noteduco342/om-receipts/internal/models"
	"github.com/vmihailenco/msgpack/v5"
)

// AccountStatusTTL bounds how long a stale status can be served if an
// invalidation is lost.
const AccountStatusTTL = 30 * time.Second

// AccountCache caches per-user activation and privacy flags for request
// middleware. A nil AccountCache, or one without Redis, is a no-op.
//
// Read receipts never consult this cache; they filter on the database
// columns so a toggle is visible to the very next query.
type AccountCache struct {
	redis *RedisCache
}

func NewAccountCache(redis *RedisCache) *AccountCache {
	return &AccountCache{redis: redis}
}

func accountKey(userID uint) string {
	return fmt.Sprintf("account:%d", userID)
}

func (ac *AccountCache) enabled() bool {
	return ac != nil && ac.redis != nil
}

// Get returns the cached status and whether it was found.
func (ac *AccountCache) Get(ctx context.Context, userID uint) (models.AccountStatus, bool) {
	if !ac.enabled() {
		return models.AccountStatus{}, false
	}
	data, err := ac.redis.Get(ctx, accountKey(userID))
	if err != nil || data == nil {
		metrics.AccountCacheLookups.WithLabelValues("miss").Inc()
		return models.AccountStatus{}, false
	}

	var status models.AccountStatus
	if err := msgpack.Unmarshal(data, &status); err != nil {
		metrics.AccountCacheLookups.WithLabelValues("miss").Inc()
		return models.AccountStatus{}, false
	}
	metrics.AccountCacheLookups.WithLabelValues("hit").Inc()
	return status, true
}

func (ac *AccountCache) Set(ctx context.Context, status models.AccountStatus) error {
	if !ac.enabled() {
		return nil
	}
	data, err := msgpack.Marshal(status)
	if err != nil {
		return err
	}
	return ac.redis.Set(ctx, accountKey(status.UserID), data, AccountStatusTTL)
}

func (ac *AccountCache) Invalidate(ctx context.Context, userID uint) error {
	if !ac.enabled() {
		return nil
	}
	return ac.redis.Delete(ctx, accountKey(userID))
}
