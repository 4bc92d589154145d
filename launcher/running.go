package launcher

import (
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

type runningEntry struct {
	running bool
	checked time.Time
}

// runningCache memoises "is this instance running" answers for ttl and
// collapses concurrent checks of the same instance into one.
type runningCache struct {
	ttl   time.Duration
	now   func() time.Time
	group singleflight.Group

	mu      sync.Mutex
	entries map[string]runningEntry
}

func newRunningCache(ttl time.Duration) *runningCache {
	return &runningCache{ttl: ttl, now: time.Now, entries: make(map[string]runningEntry)}
}

// get returns the cached answer for id, calling check on a miss.
func (c *runningCache) get(id string, check func() (bool, error)) (bool, error) {
	c.mu.Lock()
	if e, ok := c.entries[id]; ok && c.now().Sub(e.checked) < c.ttl {
		c.mu.Unlock()
		return e.running, nil
	}
	c.mu.Unlock()

	v, err, _ := c.group.Do(id, func() (any, error) {
		running, err := check()
		if err != nil {
			return false, err
		}
		c.set(id, running)
		return running, nil
	})
	if err != nil {
		return false, err
	}
	return v.(bool), nil
}

// set records a known state, e.g. right after a launch.
func (c *runningCache) set(id string, running bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[id] = runningEntry{running: running, checked: c.now()}
}

func (c *runningCache) forget(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, id)
}
