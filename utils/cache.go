package utils

import (
	"context"
	"strconv"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// SnapshotCache keeps the most recent fetch result for a fixed time window.
// Entries are keyed by epoch (now / ttl), so a new epoch always triggers a
// fresh fetch. Concurrent callers in the same epoch share one fetch, which
// runs detached from any single caller's cancellation.
type SnapshotCache[T any] struct {
	ttl     time.Duration
	timeout time.Duration
	now     func() time.Time

	mu      sync.RWMutex
	epoch   int64
	gen     uint64
	value   T
	present bool

	group singleflight.Group
}

// NewSnapshotCache creates a cache with the given window. A ttl of zero
// disables caching. A positive timeout bounds each shared fetch.
func NewSnapshotCache[T any](ttl, timeout time.Duration) *SnapshotCache[T] {
	return &SnapshotCache[T]{ttl: ttl, timeout: timeout, now: time.Now}
}

// Epoch returns the cache epoch for the current time.
func (c *SnapshotCache[T]) Epoch() int64 {
	if c.ttl <= 0 {
		return c.now().UnixNano()
	}
	return c.now().UnixNano() / int64(c.ttl)
}

// lookup returns the cached value for epoch and the current generation.
func (c *SnapshotCache[T]) lookup(epoch int64) (T, bool, uint64) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.present && c.epoch == epoch && c.ttl > 0 {
		return c.value, true, c.gen
	}
	var zero T
	return zero, false, c.gen
}

// Get returns the cached value for the current epoch, calling fetch when there
// is none. Failed fetches are not cached. A caller whose ctx ends stops
// waiting without cancelling the fetch for the others.
func (c *SnapshotCache[T]) Get(ctx context.Context, fetch func(ctx context.Context) (T, error)) (T, error) {
	epoch := c.Epoch()
	v, ok, gen := c.lookup(epoch)
	if ok {
		return v, nil
	}

	key := strconv.FormatInt(epoch, 10) + "/" + strconv.FormatUint(gen, 10)
	ch := c.group.DoChan(key, func() (any, error) {
		if cached, ok, _ := c.lookup(epoch); ok {
			return cached, nil
		}

		fetchCtx := context.WithoutCancel(ctx)
		if c.timeout > 0 {
			var cancel context.CancelFunc
			fetchCtx, cancel = context.WithTimeout(fetchCtx, c.timeout)
			defer cancel()
		}

		val, err := fetch(fetchCtx)
		if err != nil {
			return val, err
		}
		c.mu.Lock()
		if c.gen == gen {
			c.epoch = epoch
			c.value = val
			c.present = true
		}
		c.mu.Unlock()
		return val, nil
	})

	select {
	case res := <-ch:
		return res.Val.(T), res.Err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// Invalidate drops the cached value. A fetch already running when Invalidate
// is called still answers its callers but is not stored.
func (c *SnapshotCache[T]) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()

	var zero T
	c.value = zero
	c.present = false
	c.gen++
}
