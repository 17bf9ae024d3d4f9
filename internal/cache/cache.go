// Package cache is a keyed query cache. Reads of the same key share one
// in-flight fetch, stay fresh for a staleness window and retry on failure.
package cache

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/julianstephens/habitual/internal/constants"
	"github.com/julianstephens/habitual/internal/logger"
)

// ErrDisabled is returned by reads while the enabled predicate is false
var ErrDisabled = errors.New("cache: reads are disabled")

type Key string

type entry struct {
	value     any
	fetchedAt time.Time
	stale     bool
	// gen is the key generation the value was fetched under
	gen uint64
}

type Cache struct {
	mu      sync.Mutex
	entries map[Key]*entry
	// generation counts invalidations per key so a fetch that raced an
	// invalidation is stored as stale
	generation map[Key]uint64
	// epoch counts clears; a fetch that raced a clear is never stored
	epoch uint64
	group singleflight.Group

	staleTime  time.Duration
	retries    int
	retryDelay time.Duration
	now        func() time.Time
	enabled    func() bool
}

type Option func(*Cache)

func WithStaleTime(d time.Duration) Option {
	return func(c *Cache) { c.staleTime = d }
}

// WithRetries sets how many times a failed fetch is retried
func WithRetries(n int) Option {
	return func(c *Cache) { c.retries = n }
}

func WithRetryDelay(d time.Duration) Option {
	return func(c *Cache) { c.retryDelay = d }
}

func WithClock(now func() time.Time) Option {
	return func(c *Cache) { c.now = now }
}

// WithEnabled gates reads. Invalidation and clearing still work while
// disabled.
func WithEnabled(enabled func() bool) Option {
	return func(c *Cache) { c.enabled = enabled }
}

func New(opts ...Option) *Cache {
	c := &Cache{
		entries:    map[Key]*entry{},
		generation: map[Key]uint64{},
		staleTime:  constants.StaleTime,
		retries:    constants.FetchRetries,
		retryDelay: constants.RetryDelay,
		now:        time.Now,
		enabled:    func() bool { return true },
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get returns the cached value for key while it is fresh, otherwise fetches
// it. Concurrent callers for the same key share one fetch. Errors are never
// cached.
func Get[T any](ctx context.Context, c *Cache, key Key, fetch func(context.Context) (T, error)) (T, error) {
	var zero T
	if !c.enabled() {
		return zero, ErrDisabled
	}

	if v, ok := c.fresh(key); ok {
		if typed, ok := v.(T); ok {
			return typed, nil
		}
	}

	// reads issued after an invalidation or clear never join an older flight
	c.mu.Lock()
	gen, epoch := c.generation[key], c.epoch
	c.mu.Unlock()
	flight := fmt.Sprintf("%s@%d.%d", key, epoch, gen)

	ch := c.group.DoChan(flight, func() (any, error) {
		// detached so one caller giving up does not fail the others
		v, err := c.fetchWithRetry(context.WithoutCancel(ctx), key, func(ctx context.Context) (any, error) {
			return fetch(ctx)
		})
		if err != nil {
			return nil, err
		}

		c.mu.Lock()
		defer c.mu.Unlock()
		if c.epoch != epoch {
			logger.Debug("discarding fetch that raced a clear", "key", key)
			return v, nil
		}
		if cur, ok := c.entries[key]; ok && cur.gen > gen {
			return v, nil
		}
		c.entries[key] = &entry{
			value:     v,
			fetchedAt: c.now(),
			stale:     c.generation[key] != gen,
			gen:       gen,
		}
		return v, nil
	})

	select {
	case <-ctx.Done():
		return zero, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return zero, res.Err
		}
		typed, ok := res.Val.(T)
		if !ok {
			return zero, fmt.Errorf("cache: value for %q has type %T", key, res.Val)
		}
		return typed, nil
	}
}

func (c *Cache) fetchWithRetry(ctx context.Context, key Key, fetch func(context.Context) (any, error)) (any, error) {
	var lastErr error
	for attempt := 0; attempt <= c.retries; attempt++ {
		if attempt > 0 {
			logger.Debug("retrying fetch", "key", key, "attempt", attempt, "err", lastErr)
			if c.retryDelay > 0 {
				select {
				case <-ctx.Done():
					return nil, ctx.Err()
				case <-time.After(c.retryDelay):
				}
			}
		}
		v, err := fetch(ctx)
		if err == nil {
			return v, nil
		}
		lastErr = err
	}
	logger.Warn("fetch failed", "key", key, "attempts", c.retries+1, "err", lastErr)
	return nil, lastErr
}

func (c *Cache) fresh(key Key) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	if !ok || e.stale || c.now().Sub(e.fetchedAt) >= c.staleTime {
		return nil, false
	}
	return e.value, true
}

// Peek returns the last fetched value for key, fresh or not
func Peek[T any](c *Cache, key Key) (T, bool) {
	var zero T
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	if !ok {
		return zero, false
	}
	v, ok := e.value.(T)
	return v, ok
}

// Invalidate marks keys stale; the next read refetches even while an older
// fetch of the same key is still running
func (c *Cache) Invalidate(keys ...Key) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, k := range keys {
		c.generation[k]++
		if e, ok := c.entries[k]; ok {
			e.stale = true
		}
	}
}

// Clear drops every entry, for example after logout. Fetches still in
// flight complete for their callers but are not stored.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.epoch++
	c.entries = map[Key]*entry{}
}

// IsFresh reports whether a read of key would be served without fetching
func (c *Cache) IsFresh(key Key) bool {
	_, ok := c.fresh(key)
	return ok
}
