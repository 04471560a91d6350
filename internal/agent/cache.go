package agent

import (
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/FelixWang119/WeightManagementAgent-sub000/internal/logging"
	"github.com/FelixWang119/WeightManagementAgent-sub000/internal/store"
	"github.com/FelixWang119/WeightManagementAgent-sub000/internal/telemetry"
)

// CheckinReader is the storage surface the cache refreshes from.
// *store.Store satisfies it.
type CheckinReader interface {
	CheckinsSince(userID string, since time.Time) ([]store.Checkin, error)
}

type cacheEntry struct {
	checkins    []store.Checkin
	lastRefresh time.Time
}

// ContextCache holds a per-user snapshot of recent checkins, refreshed at
// most once per TTL window unless forced. TTL is evaluated lazily on
// access; refresh is read-then-write with last-writer-wins semantics,
// acceptable because checkin data is append-only and staleness inside the
// window is a design tolerance.
type ContextCache struct {
	mu      sync.Mutex
	entries map[string]*cacheEntry

	reader    CheckinReader
	ttl       time.Duration
	window    time.Duration
	group     singleflight.Group
	telemetry *telemetry.Collector
}

// NewContextCache creates a cache over the given reader.
func NewContextCache(reader CheckinReader, ttl, window time.Duration, collector *telemetry.Collector) *ContextCache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	if window <= 0 {
		window = 7 * 24 * time.Hour
	}
	return &ContextCache{
		entries:   make(map[string]*cacheEntry),
		reader:    reader,
		ttl:       ttl,
		window:    window,
		telemetry: collector,
	}
}

// GetOrRefresh returns the cached checkins for a user. A hit requires
// !force, age below the TTL, and a non-empty snapshot; anything else
// triggers a storage read over the trailing window. Concurrent refreshes
// for the same user are collapsed into a single storage read.
func (c *ContextCache) GetOrRefresh(userID string, force bool) ([]store.Checkin, time.Time, bool, error) {
	if !force {
		c.mu.Lock()
		entry, ok := c.entries[userID]
		if ok && time.Since(entry.lastRefresh) < c.ttl && len(entry.checkins) > 0 {
			checkins, at := entry.checkins, entry.lastRefresh
			c.mu.Unlock()
			c.telemetry.RecordCache(true)
			logging.CacheDebug("Cache hit for %s (age=%v)", userID, time.Since(at))
			return checkins, at, true, nil
		}
		c.mu.Unlock()
	}

	v, err, _ := c.group.Do(userID, func() (interface{}, error) {
		return c.refresh(userID)
	})
	c.telemetry.RecordCache(false)
	if err != nil {
		return nil, time.Time{}, false, fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}

	entry := v.(*cacheEntry)
	return entry.checkins, entry.lastRefresh, false, nil
}

func (c *ContextCache) refresh(userID string) (*cacheEntry, error) {
	timer := logging.StartTimer(logging.CategoryCache, "cache refresh")
	defer timer.Stop()

	since := time.Now().Add(-c.window)
	checkins, err := c.reader.CheckinsSince(userID, since)
	if err != nil {
		logging.Get(logging.CategoryCache).Error("Refresh failed for %s: %v", userID, err)
		return nil, err
	}

	entry := &cacheEntry{checkins: checkins, lastRefresh: time.Now()}
	c.mu.Lock()
	c.entries[userID] = entry
	c.mu.Unlock()

	logging.Cache("Refreshed %d checkins for %s", len(checkins), userID)
	return entry, nil
}

// Invalidate drops the cached snapshot for a user. Used after out-of-band
// writes (REST checkin CRUD) so the next turn sees them immediately.
func (c *ContextCache) Invalidate(userID string) {
	c.mu.Lock()
	delete(c.entries, userID)
	c.mu.Unlock()
}
