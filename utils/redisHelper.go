package utils

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/bsm/redislock"
	"github.com/growship/commerce_backend/config"
)

// GetSequence returns the next number of a per-brand counter, e.g. for
// order and purchase order numbering. Falls back to a db COUNT when redis
// is unavailable so numbering survives cache loss (gaps are acceptable,
// duplicates within a brand are not once redis is back).
func GetSequence[T any](ctx context.Context, brandId string, name string) (int64, error) {
	key := fmt.Sprintf("seq:%s:%s", brandId, name)
	seq, err := config.GetRedisCounter(ctx, key)
	if err == nil {
		return seq, nil
	}

	count, countErr := ResourceCountWhere[T](ctx, brandId, "1 = 1")
	if countErr != nil {
		return 0, countErr
	}
	return count + 1, nil
}

// ProductLock serializes stock mutations per product. Best effort by
// default: when redis is down the caller proceeds without the lock unless
// STRICT_STOCK_LOCK is set, the row updates themselves stay atomic.
func ProductLock(ctx context.Context, brandId string, productId int) (*redislock.Lock, error) {
	locker := config.GetRedisLock()
	if locker == nil {
		if config.StrictStockLock() {
			return nil, errors.New("stock lock unavailable")
		}
		return nil, nil
	}

	key := fmt.Sprintf("lock:stock:%s:%d", brandId, productId)
	lock, err := locker.Obtain(ctx, key, 10*time.Second, &redislock.Options{
		RetryStrategy: redislock.LimitRetry(redislock.LinearBackoff(100*time.Millisecond), 30),
	})
	if err != nil {
		if config.StrictStockLock() {
			return nil, err
		}
		return nil, nil
	}
	return lock, nil
}

func ReleaseLock(ctx context.Context, lock *redislock.Lock) {
	if lock == nil {
		return
	}
	if err := lock.Release(ctx); err != nil && err != redislock.ErrLockNotHeld {
		config.LogWarn(config.GetLogger(), "utils", "ReleaseLock", "release", err.Error())
	}
}

/* settings cache */

func SettingsCacheKey(brandId string, parts ...string) string {
	return "notify:settings:" + brandId + ":" + strings.Join(parts, ":")
}

func GetCachedSettings[T any](ctx context.Context, key string) (*T, bool) {
	var value T
	found, err := config.GetRedisObject(key, &value)
	if err != nil || !found {
		return nil, false
	}
	return &value, true
}

func SetCachedSettings[T any](ctx context.Context, key string, value *T) {
	ttl := config.NotifySettingsCacheTTL()
	if err := config.SetRedisObject(key, value, ttl); err != nil {
		config.LogWarn(config.GetLogger(), "utils", "SetCachedSettings", key, err.Error())
	}
}

func InvalidateCachedSettings(ctx context.Context, pattern string) {
	if err := config.RemoveRedisKeysByPattern(ctx, pattern); err != nil {
		config.LogWarn(config.GetLogger(), "utils", "InvalidateCachedSettings", pattern, err.Error())
	}
}
