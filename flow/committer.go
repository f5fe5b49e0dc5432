package flow

import (
	"context"

	"github.com/Southclaws/fault"
	"github.com/Southclaws/fault/fctx"

	"pitwall-go/utils"
)

// Ledger is the chip balance store a commit can mutate
type Ledger interface {
	GetChips(ctx context.Context, userID string) (int64, error)
	SetChips(ctx context.Context, userID string, chips int64) error
}

// Terminable is a tracked session that can be closed exactly once
type Terminable interface {
	Tracked
	Finish(final Step) bool
}

// Effect is one terminal side effect of a flow
type Effect func(ctx context.Context) error

// Committer applies the terminal effects of flows and tears their sessions down
type Committer struct {
	registry *Registry
	ledger   Ledger
}

func NewCommitter(registry *Registry, ledger Ledger) *Committer {
	return &Committer{registry: registry, ledger: ledger}
}

// Commit completes t and runs effects in order, stopping at the first failure.
// A second commit of the same session is a no-op. The registry entry is
// released once the commit is issued, whether or not the effects succeed.
func (c *Committer) Commit(ctx context.Context, t Terminable, effects ...Effect) error {
	return c.finish(ctx, t, Complete, effects)
}

// Fail closes t as Failed and runs effects (usually a failure notice)
func (c *Committer) Fail(ctx context.Context, t Terminable, effects ...Effect) error {
	return c.finish(ctx, t, Failed, effects)
}

// Expire closes t as Expired and runs effects (usually a timeout notice)
func (c *Committer) Expire(ctx context.Context, t Terminable, effects ...Effect) error {
	return c.finish(ctx, t, Expired, effects)
}

func (c *Committer) finish(ctx context.Context, t Terminable, final Step, effects []Effect) error {
	if !t.Finish(final) {
		utils.BotDebugf("FLOW", "Ignoring duplicate %s for session %s", final, t.Key())
		return nil
	}
	defer c.registry.Release(t)

	ctx = fctx.WithMeta(ctx, "session", t.Key().String(), "outcome", string(final))
	for _, effect := range effects {
		if effect == nil {
			continue
		}
		if err := effect(ctx); err != nil {
			return fault.Wrap(err, fctx.With(ctx))
		}
	}
	return nil
}

// Abort closes t at step without running any effect
func (c *Committer) Abort(t Terminable, step Step) bool {
	defer c.registry.Release(t)
	return t.Finish(step)
}

// Release drops t from the registry without closing it
func (c *Committer) Release(t Tracked) {
	c.registry.Release(t)
}

// ChipDelta returns an effect that adds delta to userID's balance.
// The balance never goes below zero. The new balance is stored in result when non-nil.
func (c *Committer) ChipDelta(userID string, delta int64, result *int64) Effect {
	return func(ctx context.Context) error {
		if c.ledger == nil {
			return fault.New("no ledger configured")
		}

		old, err := c.ledger.GetChips(ctx, userID)
		if err != nil {
			return fault.Wrap(err, fctx.With(ctx))
		}

		updated := old + delta
		if updated < 0 {
			utils.BotWarnf("FLOW", "Clamping balance of %s at zero (old %d, delta %d)", userID, old, delta)
			updated = 0
		}

		if err := c.ledger.SetChips(ctx, userID, updated); err != nil {
			return fault.Wrap(err, fctx.With(ctx))
		}
		if result != nil {
			*result = updated
		}
		utils.BotLogf("FLOW", "Ledger %s: %d -> %d (%+d)", userID, old, updated, delta)
		return nil
	}
}
