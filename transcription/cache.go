package transcription

import (
	"context"
	"sync"

	"golang.org/x/sync/singleflight"

	apperrors "github.com/skillsenselab/callscribe/errors"
	"github.com/skillsenselab/callscribe/logger"
)

// Cache memoizes transcription outcomes by cache key. Concurrent callers for
// the same key share a single in-flight computation (singleflight), so the
// backend is invoked at most once per key.
//
// Successful results and UNINTELLIGIBLE verdicts are cached: both are
// deterministic for a given audio/model/language. Retryable failures
// (BACKEND_UNAVAILABLE) and unclassified ones (UNKNOWN) are never cached, so
// a later retry can reach the backend again.
//
// MaxEntries > 0 bounds the cache with least-recently-used eviction; 0 keeps
// it unbounded, matching session-scoped use.
type Cache struct {
	log   *logger.Logger
	group singleflight.Group

	mu      sync.Mutex
	entries map[string]*cacheEntry
	order   []string // LRU order, least recent first
	max     int
}

type cacheEntry struct {
	res *Result
	err *apperrors.AppError
}

// NewCache creates a Cache. maxEntries of 0 means unbounded.
func NewCache(maxEntries int, log *logger.Logger) *Cache {
	return &Cache{
		log:     log.WithComponent("cache"),
		entries: make(map[string]*cacheEntry),
		max:     maxEntries,
	}
}

// GetOrCompute returns the cached outcome for key, or runs compute exactly
// once (across concurrent callers) and caches the outcome when it is
// deterministic. Entries are immutable once inserted.
func (c *Cache) GetOrCompute(ctx context.Context, key string, compute func(context.Context) (*Result, error)) (*Result, error) {
	if res, cachedErr, ok := c.lookup(key); ok {
		c.log.Debug("Cache hit", logger.Fields(logger.FieldFingerprint, key))
		// cachedErr is a concrete *errors.AppError; returning it directly
		// would make a nil pointer a non-nil error interface.
		if cachedErr != nil {
			return nil, cachedErr
		}
		return res, nil
	}

	v, err, _ := c.group.Do(key, func() (interface{}, error) {
		// Double-check: another caller may have populated the key between the
		// lookup above and entering the singleflight group.
		if res, cachedErr, ok := c.lookup(key); ok {
			return &cacheEntry{res: res, err: cachedErr}, nil
		}

		res, computeErr := compute(ctx)
		entry := &cacheEntry{res: res}
		if computeErr != nil {
			appErr, ok := apperrors.AsAppError(computeErr)
			if !ok {
				return nil, computeErr
			}
			entry.err = appErr
			if appErr.Code != apperrors.ErrCodeUnintelligible {
				return nil, appErr
			}
		}
		c.store(key, entry)
		return entry, nil
	})
	if err != nil {
		return nil, err
	}

	entry := v.(*cacheEntry)
	if entry.err != nil {
		return nil, entry.err
	}
	return entry.res, nil
}

// Len returns the number of cached outcomes.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Clear empties the cache.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]*cacheEntry)
	c.order = nil
}

func (c *Cache) lookup(key string) (*Result, *apperrors.AppError, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	entry, ok := c.entries[key]
	if !ok {
		return nil, nil, false
	}
	c.touch(key)
	return entry.res, entry.err, true
}

func (c *Cache) store(key string, entry *cacheEntry) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, exists := c.entries[key]; exists {
		return // first insertion wins; entries are immutable
	}
	c.entries[key] = entry
	c.order = append(c.order, key)

	if c.max > 0 && len(c.entries) > c.max {
		evict := c.order[0]
		c.order = c.order[1:]
		delete(c.entries, evict)
		c.log.Debug("Evicted cache entry", logger.Fields(logger.FieldFingerprint, evict))
	}
}

// touch moves key to the most-recently-used end. Callers hold c.mu.
func (c *Cache) touch(key string) {
	if c.max <= 0 {
		return
	}
	for i, k := range c.order {
		if k == key {
			c.order = append(c.order[:i], c.order[i+1:]...)
			c.order = append(c.order, key)
			return
		}
	}
}
