package flow

import (
	"time"

	"github.com/puzpuzpuz/xsync/v4"
	"github.com/robfig/cron/v3"

	"pitwall-go/utils"
)

// Tracked is what the registry needs to know about a live session
type Tracked interface {
	Key() Key
	Deadline() time.Time
	Closed() bool
	Expire() bool
}

// Registry maps session keys to the single live session holding them
type Registry struct {
	sessions *xsync.Map[Key, Tracked]
	grace    time.Duration
	cron     *cron.Cron
}

// NewRegistry creates an empty registry. Sessions whose deadline passed more
// than grace ago are reclaimed by Sweep.
func NewRegistry(grace time.Duration) *Registry {
	if grace <= 0 {
		grace = time.Minute
	}
	return &Registry{
		sessions: xsync.NewMap[Key, Tracked](),
		grace:    grace,
	}
}

// TryAcquire registers t under its key, or fails with ErrAlreadyActive
func (r *Registry) TryAcquire(t Tracked) error {
	if _, loaded := r.sessions.LoadOrStore(t.Key(), t); loaded {
		return ErrAlreadyActive
	}
	return nil
}

// Release removes t if it still holds its key
func (r *Registry) Release(t Tracked) {
	r.sessions.Compute(t.Key(), func(current Tracked, loaded bool) (Tracked, xsync.ComputeOp) {
		if loaded && current == t {
			return current, xsync.DeleteOp
		}
		return current, xsync.CancelOp
	})
}

// Lookup returns the live session for key
func (r *Registry) Lookup(key Key) (Tracked, bool) {
	return r.sessions.Load(key)
}

// Len returns the number of live sessions
func (r *Registry) Len() int {
	return r.sessions.Size()
}

// Sweep expires and removes sessions that are closed or long past their deadline
func (r *Registry) Sweep(now time.Time) int {
	var stale []Tracked
	r.sessions.Range(func(_ Key, t Tracked) bool {
		deadline := t.Deadline()
		if t.Closed() || (!deadline.IsZero() && now.After(deadline.Add(r.grace))) {
			stale = append(stale, t)
		}
		return true
	})

	for _, t := range stale {
		if t.Expire() {
			utils.BotWarnf("FLOW", "Reclaimed stale session %s", t.Key())
		}
		r.Release(t)
	}
	return len(stale)
}

// StartSweeper runs Sweep on the given cron schedule until Stop
func (r *Registry) StartSweeper(spec string) error {
	c := cron.New()
	if _, err := c.AddFunc(spec, func() {
		if n := r.Sweep(time.Now()); n > 0 {
			utils.BotLogf("FLOW", "Session sweep removed %d entries, %d live", n, r.Len())
		}
	}); err != nil {
		return err
	}
	c.Start()
	r.cron = c
	return nil
}

// Stop halts the sweeper
func (r *Registry) Stop() {
	if r.cron != nil {
		<-r.cron.Stop().Done()
	}
}
