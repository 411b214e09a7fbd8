package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/welth/backend/internal/domain/shared"
)

// userViews holds one user's cached views, their shared expiry and the
// version they were stored under. An invalidated user keeps an empty entry
// for one TTL so the new version outlives any reader still holding the old one.
type userViews struct {
	views     map[string][]byte
	expiresAt time.Time
	version   shared.ViewVersion
}

// InMemoryViewCache implements ViewCache using an in-memory map.
// Suitable for single-instance deployments and testing.
type InMemoryViewCache struct {
	mu        sync.RWMutex
	users     map[uuid.UUID]*userViews
	ttl       time.Duration
	clock     shared.ViewVersion
	now       func() time.Time
	stopChan  chan struct{}
	wg        sync.WaitGroup
	closeOnce sync.Once
}

// NewInMemoryViewCache creates a new in-memory view cache.
// It starts a background goroutine to clean up expired entries.
func NewInMemoryViewCache(ttl time.Duration) *InMemoryViewCache {
	c := &InMemoryViewCache{
		users:    make(map[uuid.UUID]*userViews),
		ttl:      ttl,
		now:      time.Now,
		stopChan: make(chan struct{}),
	}

	c.wg.Add(1)
	go c.cleanupLoop()

	return c
}

// Get loads a cached view into dest
func (c *InMemoryViewCache) Get(ctx context.Context, userID uuid.UUID, view string, dest any) (shared.ViewVersion, bool, error) {
	c.mu.RLock()
	var (
		version shared.ViewVersion
		raw     []byte
		ok      bool
	)
	if u, found := c.users[userID]; found {
		version = u.version
		if c.now().Before(u.expiresAt) {
			raw, ok = u.views[view]
		}
	}
	c.mu.RUnlock()

	if !ok {
		return version, false, nil
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return version, false, fmt.Errorf("failed to decode cached view %s: %w", view, err)
	}
	return version, true, nil
}

// Set stores a view read at version. The user's entry expires ttl after its
// first view was cached.
func (c *InMemoryViewCache) Set(ctx context.Context, userID uuid.UUID, view string, version shared.ViewVersion, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to encode view %s: %w", view, err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	u, ok := c.users[userID]
	var current shared.ViewVersion
	if ok {
		current = u.version
	}
	if current != version {
		return nil
	}
	if !ok || !now.Before(u.expiresAt) || len(u.views) == 0 {
		u = &userViews{views: make(map[string][]byte), expiresAt: now.Add(c.ttl), version: current}
		c.users[userID] = u
	}
	u.views[view] = raw
	return nil
}

// Invalidate drops every cached view of the user
func (c *InMemoryViewCache) Invalidate(ctx context.Context, userID uuid.UUID) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.clock++
	c.users[userID] = &userViews{
		views:     make(map[string][]byte),
		expiresAt: c.now().Add(c.ttl),
		version:   c.clock,
	}
	return nil
}

// Close stops the cleanup goroutine. Safe to call multiple times.
func (c *InMemoryViewCache) Close() error {
	c.closeOnce.Do(func() {
		close(c.stopChan)
		c.wg.Wait()
	})
	return nil
}

func (c *InMemoryViewCache) cleanupLoop() {
	defer c.wg.Done()

	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-c.stopChan:
			return
		case <-ticker.C:
			c.cleanup()
		}
	}
}

func (c *InMemoryViewCache) cleanup() {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	for id, u := range c.users {
		if !now.Before(u.expiresAt) {
			delete(c.users, id)
		}
	}
}

// Size returns the number of users with cached views
func (c *InMemoryViewCache) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	n := 0
	for _, u := range c.users {
		if len(u.views) > 0 {
			n++
		}
	}
	return n
}

var _ shared.ViewCache = (*InMemoryViewCache)(nil)
