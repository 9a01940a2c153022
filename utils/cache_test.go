package utils

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (f *fakeClock) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.t
}

func (f *fakeClock) Advance(d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.t = f.t.Add(d)
}

func newTestCache(ttl time.Duration) (*SnapshotCache[int], *fakeClock) {
	clock := &fakeClock{t: time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)}
	c := NewSnapshotCache[int](ttl, 0)
	c.now = clock.Now
	return c, clock
}

func TestSnapshotCacheReusesWithinEpoch(t *testing.T) {
	c, clock := newTestCache(5 * time.Minute)
	var calls int
	fetch := func(context.Context) (int, error) {
		calls++
		return calls, nil
	}

	v, err := c.Get(context.Background(), fetch)
	require.NoError(t, err)
	assert.Equal(t, 1, v)

	clock.Advance(time.Minute)
	v, err = c.Get(context.Background(), fetch)
	require.NoError(t, err)
	assert.Equal(t, 1, v)
	assert.Equal(t, 1, calls)
}

func TestSnapshotCacheRefetchesInNewEpoch(t *testing.T) {
	c, clock := newTestCache(5 * time.Minute)
	var calls int
	fetch := func(context.Context) (int, error) {
		calls++
		return calls, nil
	}

	_, err := c.Get(context.Background(), fetch)
	require.NoError(t, err)

	clock.Advance(5 * time.Minute)
	v, err := c.Get(context.Background(), fetch)
	require.NoError(t, err)
	assert.Equal(t, 2, v)
}

func TestSnapshotCacheDoesNotKeepErrors(t *testing.T) {
	c, _ := newTestCache(5 * time.Minute)
	boom := errors.New("boom")

	_, err := c.Get(context.Background(), func(context.Context) (int, error) { return 0, boom })
	assert.ErrorIs(t, err, boom)

	v, err := c.Get(context.Background(), func(context.Context) (int, error) { return 7, nil })
	require.NoError(t, err)
	assert.Equal(t, 7, v)
}

func TestSnapshotCacheZeroTTLAlwaysFetches(t *testing.T) {
	c, _ := newTestCache(0)
	var calls int
	fetch := func(context.Context) (int, error) {
		calls++
		return calls, nil
	}
	_, _ = c.Get(context.Background(), fetch)
	_, _ = c.Get(context.Background(), fetch)
	assert.Equal(t, 2, calls)
}

func TestSnapshotCacheInvalidate(t *testing.T) {
	c, _ := newTestCache(time.Hour)
	var calls int
	fetch := func(context.Context) (int, error) {
		calls++
		return calls, nil
	}
	_, _ = c.Get(context.Background(), fetch)
	c.Invalidate()
	v, _ := c.Get(context.Background(), fetch)
	assert.Equal(t, 2, v)
}

func TestSnapshotCacheConcurrentCallersShareFetch(t *testing.T) {
	c, _ := newTestCache(time.Hour)
	var calls int64
	release := make(chan struct{})
	fetch := func(context.Context) (int, error) {
		atomic.AddInt64(&calls, 1)
		<-release
		return 42, nil
	}

	var wg sync.WaitGroup
	results := make([]int, 10)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			v, _ := c.Get(context.Background(), fetch)
			results[i] = v
		}(i)
	}
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.Equal(t, int64(1), atomic.LoadInt64(&calls))
	for _, v := range results {
		assert.Equal(t, 42, v)
	}
}

func TestSnapshotCacheCancelledCallerDoesNotFailOthers(t *testing.T) {
	c, _ := newTestCache(time.Hour)
	started := make(chan struct{})
	release := make(chan struct{})
	var calls int64
	fetch := func(ctx context.Context) (int, error) {
		atomic.AddInt64(&calls, 1)
		close(started)
		<-release
		if err := ctx.Err(); err != nil {
			return 0, err
		}
		return 42, nil
	}

	firstCtx, cancelFirst := context.WithCancel(context.Background())
	firstErr := make(chan error, 1)
	go func() {
		_, err := c.Get(firstCtx, fetch)
		firstErr <- err
	}()
	<-started

	second := make(chan int, 1)
	go func() {
		v, err := c.Get(context.Background(), fetch)
		assert.NoError(t, err)
		second <- v
	}()
	time.Sleep(20 * time.Millisecond)

	cancelFirst()
	assert.ErrorIs(t, <-firstErr, context.Canceled)

	close(release)
	assert.Equal(t, 42, <-second)
	assert.Equal(t, int64(1), atomic.LoadInt64(&calls))
}

func TestSnapshotCacheInvalidateDuringFetch(t *testing.T) {
	c, _ := newTestCache(time.Hour)
	started := make(chan struct{}, 1)
	release := make(chan struct{})
	var calls int64
	fetch := func(context.Context) (int, error) {
		n := atomic.AddInt64(&calls, 1)
		if n == 1 {
			started <- struct{}{}
			<-release
		}
		return int(n), nil
	}

	done := make(chan int, 1)
	go func() {
		v, _ := c.Get(context.Background(), fetch)
		done <- v
	}()
	<-started
	c.Invalidate()
	close(release)
	assert.Equal(t, 1, <-done)

	v, err := c.Get(context.Background(), fetch)
	require.NoError(t, err)
	assert.Equal(t, 2, v, "value fetched before Invalidate is not kept")
}

func TestSnapshotCacheFetchTimeout(t *testing.T) {
	c := NewSnapshotCache[int](time.Hour, 10*time.Millisecond)
	_, err := c.Get(context.Background(), func(ctx context.Context) (int, error) {
		<-ctx.Done()
		return 0, ctx.Err()
	})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
