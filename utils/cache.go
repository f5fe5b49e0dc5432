package utils

import (
	"time"

	"github.com/patrickmn/go-cache"
)

// Cooldowns tracks the last XP grant per user.
// Entries expire on their own once the window has passed.
type Cooldowns struct {
	window  time.Duration
	entries *cache.Cache
}

// NewCooldowns creates a tracker with the given window
func NewCooldowns(window time.Duration) *Cooldowns {
	if window <= 0 {
		window = XPCooldown
	}
	return &Cooldowns{
		window:  window,
		entries: cache.New(window, 5*time.Minute),
	}
}

// Allow reports whether userID is off cooldown and, if so, starts a new window.
// Check and set happen in one step so concurrent messages grant at most once.
func (c *Cooldowns) Allow(userID string) bool {
	return c.entries.Add(userID, time.Now(), c.window) == nil
}

// Reset clears the cooldown for userID
func (c *Cooldowns) Reset(userID string) {
	c.entries.Delete(userID)
}

// Remaining returns how long userID must wait before the next grant
func (c *Cooldowns) Remaining(userID string) time.Duration {
	v, ok := c.entries.Get(userID)
	if !ok {
		return 0
	}
	started, _ := v.(time.Time)
	left := c.window - time.Since(started)
	if left < 0 {
		return 0
	}
	return left
}

// RoleCache remembers role ids per guild for a short time
type RoleCache struct {
	entries *cache.Cache
}

// NewRoleCache creates a role id cache with the given TTL
func NewRoleCache(ttl time.Duration) *RoleCache {
	return &RoleCache{entries: cache.New(ttl, 2*ttl)}
}

// Get returns the cached role id for name in guildID
func (rc *RoleCache) Get(guildID, name string) (string, bool) {
	v, ok := rc.entries.Get(guildID + "/" + name)
	if !ok {
		return "", false
	}
	id, ok := v.(string)
	return id, ok
}

// Set stores the role id for name in guildID
func (rc *RoleCache) Set(guildID, name, roleID string) {
	rc.entries.Set(guildID+"/"+name, roleID, cache.DefaultExpiration)
}

// Forget drops a cached role id, e.g. after the role was deleted
func (rc *RoleCache) Forget(guildID, name string) {
	rc.entries.Delete(guildID + "/" + name)
}
