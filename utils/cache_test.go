package utils

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCooldownsAllowOncePerWindow(t *testing.T) {
	c := NewCooldowns(50 * time.Millisecond)

	assert.True(t, c.Allow("u1"))
	assert.False(t, c.Allow("u1"))
	assert.True(t, c.Allow("u2"), "cooldowns are per user")
	assert.Greater(t, c.Remaining("u1"), time.Duration(0))

	assert.Eventually(t, func() bool { return c.Allow("u1") }, time.Second, 10*time.Millisecond)

	c.Reset("u1")
	assert.Zero(t, c.Remaining("u1"))
	assert.True(t, c.Allow("u1"))
}

func TestCooldownsConcurrentGrantsOnce(t *testing.T) {
	c := NewCooldowns(time.Minute)

	var granted int32
	var wg sync.WaitGroup
	for n := 0; n < 50; n++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if c.Allow("u1") {
				atomic.AddInt32(&granted, 1)
			}
		}()
	}
	wg.Wait()
	assert.EqualValues(t, 1, granted)
}

func TestRoleCache(t *testing.T) {
	rc := NewRoleCache(time.Minute)

	_, ok := rc.Get("g1", MutedRoleName)
	assert.False(t, ok)

	rc.Set("g1", MutedRoleName, "r1")
	id, ok := rc.Get("g1", MutedRoleName)
	assert.True(t, ok)
	assert.Equal(t, "r1", id)

	_, ok = rc.Get("g2", MutedRoleName)
	assert.False(t, ok, "entries are per guild")

	rc.Forget("g1", MutedRoleName)
	_, ok = rc.Get("g1", MutedRoleName)
	assert.False(t, ok)
}
