package flow

import (
	"context"
	"sync"
	"time"

	"github.com/Southclaws/fault"
	"github.com/Southclaws/fault/fmsg"
	"github.com/Southclaws/fault/ftag"
	"github.com/bwmarrin/discordgo"
	"github.com/samber/lo"

	"pitwall-go/utils"
)

// Verdict is a listener's decision about an incoming interaction
type Verdict int

const (
	Ignore Verdict = iota
	Accept
	Reject
)

// Predicate inspects an interaction without consuming it
type Predicate func(*discordgo.InteractionCreate) Verdict

// Outcome is the single resolution of a wait: an event or a timeout, never both
type Outcome struct {
	Event    *discordgo.InteractionCreate
	TimedOut bool
}

// RejectFunc is told about interactions a listener refused, with the reason
type RejectFunc func(i *discordgo.InteractionCreate, reason error)

type listener struct {
	match  Predicate
	reject func(*discordgo.InteractionCreate) error
	ch     chan *discordgo.InteractionCreate
}

// Gate delivers component and modal interactions to the flows waiting for them
type Gate struct {
	mu        sync.Mutex
	next      uint64
	listeners map[uint64]*listener
	onReject  RejectFunc
}

// NewGate creates a gate; onReject may be nil
func NewGate(onReject RejectFunc) *Gate {
	return &Gate{
		listeners: make(map[uint64]*listener),
		onReject:  onReject,
	}
}

// AwaitOne waits for the next interaction accepted by match.
// The listener is removed as soon as the wait resolves, whichever way it resolves.
func (g *Gate) AwaitOne(ctx context.Context, match Predicate, timeout time.Duration) (Outcome, error) {
	return g.await(ctx, &listener{match: match}, timeout)
}

func (g *Gate) await(ctx context.Context, l *listener, timeout time.Duration) (Outcome, error) {
	if timeout <= 0 {
		return Outcome{TimedOut: true}, ErrTimedOut
	}

	l.ch = make(chan *discordgo.InteractionCreate, 1)
	id := g.add(l)

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case ev := <-l.ch:
		return Outcome{Event: ev}, nil
	case <-timer.C:
	case <-ctx.Done():
	}

	if !g.remove(id) {
		// Publish claimed the listener first; its event is already on the way.
		return Outcome{Event: <-l.ch}, nil
	}
	if err := ctx.Err(); err != nil {
		return Outcome{}, err
	}
	return Outcome{TimedOut: true}, ErrTimedOut
}

func (g *Gate) add(l *listener) uint64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.next++
	g.listeners[g.next] = l
	return g.next
}

func (g *Gate) remove(id uint64) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, ok := g.listeners[id]; !ok {
		return false
	}
	delete(g.listeners, id)
	return true
}

// Publish offers an interaction to the waiting flows.
// It returns false when no listener recognised the interaction at all.
func (g *Gate) Publish(i *discordgo.InteractionCreate) bool {
	var accepted, refused *listener

	g.mu.Lock()
	for id, l := range g.listeners {
		switch l.match(i) {
		case Accept:
			accepted = l
			delete(g.listeners, id)
		case Reject:
			refused = l
		}
		if accepted != nil {
			break
		}
	}
	g.mu.Unlock()

	if accepted != nil {
		accepted.ch <- i
		return true
	}
	if refused != nil {
		reason := mismatch(i, "")
		if refused.reject != nil {
			reason = refused.reject(i)
		}
		utils.BotDebugf("FLOW", "Rejected %s from %s: %v", utils.InteractionCustomID(i), utils.InteractionUserID(i), reason)
		if g.onReject != nil {
			g.onReject(i, reason)
		}
		return true
	}
	return false
}

// Pending returns the number of armed listeners
func (g *Gate) Pending() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.listeners)
}

// Match describes an identity-filtered wait
type Match struct {
	// IDs are the exact custom ids that satisfy the wait
	IDs []string
	// Responder is the only user allowed to act; empty lets any member act
	Responder string
	// RejectMessage is shown to anyone else who clicks
	RejectMessage string
}

// Predicate builds the custom id and identity filter for m
func (m Match) Predicate() Predicate {
	return func(i *discordgo.InteractionCreate) Verdict {
		if !lo.Contains(m.IDs, utils.InteractionCustomID(i)) {
			return Ignore
		}
		if m.Responder != "" && utils.InteractionUserID(i) != m.Responder {
			return Reject
		}
		return Accept
	}
}

// AwaitInteraction waits for an interaction matching m.
// Interactions with a matching id from another user are refused with m.RejectMessage and the wait stays armed.
func (g *Gate) AwaitInteraction(ctx context.Context, m Match, timeout time.Duration) (*discordgo.InteractionCreate, error) {
	l := &listener{
		match: m.Predicate(),
		reject: func(i *discordgo.InteractionCreate) error {
			return mismatch(i, m.RejectMessage)
		},
	}
	out, err := g.await(ctx, l, timeout)
	if err != nil {
		return nil, err
	}
	return out.Event, nil
}

func mismatch(i *discordgo.InteractionCreate, message string) error {
	if message == "" {
		message = utils.NotYourInteractionMessage
	}
	return fault.New("interaction from unexpected user",
		ftag.With(KindIdentityMismatch),
		fmsg.WithDesc("user "+utils.InteractionUserID(i)+" is not the expected responder", message),
	)
}
