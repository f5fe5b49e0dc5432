package flow

import (
	"context"
	"sync"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/xid"
	"github.com/samber/lo"
)

// Step is a position in a flow's step graph
type Step string

const (
	Created              Step = "created"
	AwaitingSelection    Step = "awaiting_selection"
	AwaitingModal        Step = "awaiting_modal"
	AwaitingBranch       Step = "awaiting_branch"
	AwaitingPlayerAction Step = "awaiting_player_action"
	AwaitingProtest      Step = "awaiting_protest"
	Protested            Step = "protested"
	Complete             Step = "complete"
	Expired              Step = "expired"
	Failed               Step = "failed"
)

// Terminal reports whether a session at step is finished
func (s Step) Terminal() bool {
	return s == Complete || s == Expired || s == Failed
}

// Graph lists the forward edges of a flow. Expired and Failed are reachable from every live step.
type Graph map[Step][]Step

func (g Graph) allows(from, to Step) bool {
	if from.Terminal() {
		return false
	}
	if to == Expired || to == Failed {
		return true
	}
	return lo.Contains(g[from], to)
}

// Step graphs of the command flows
var (
	SelectThenModal = Graph{
		Created:           {AwaitingSelection},
		AwaitingSelection: {AwaitingModal},
		AwaitingModal:     {Complete},
	}
	SingleModal = Graph{
		Created:       {AwaitingModal},
		AwaitingModal: {Complete},
	}
	RepeatableModal = Graph{
		Created:        {AwaitingModal},
		AwaitingModal:  {AwaitingBranch},
		AwaitingBranch: {AwaitingModal, Complete},
	}
	PlayerActions = Graph{
		Created:              {AwaitingPlayerAction},
		AwaitingPlayerAction: {AwaitingPlayerAction, Complete},
	}
	ProtestWindow = Graph{
		Created:         {AwaitingProtest},
		AwaitingProtest: {Protested, Complete},
		Protested:       {Complete},
	}
)

// Session is one live instance of a flow
type Session[T any] struct {
	key       Key
	token     string
	graph     Graph
	createdAt time.Time

	mu        sync.Mutex
	step      Step
	deadline  time.Time
	responder string
	data      T
}

// NewSession creates a session in the Created step owned by responder
func NewSession[T any](key Key, graph Graph, responder string, initial T) *Session[T] {
	return &Session[T]{
		key:       key,
		token:     xid.New().String(),
		graph:     graph,
		createdAt: time.Now(),
		step:      Created,
		responder: responder,
		data:      initial,
	}
}

func (s *Session[T]) Key() Key {
	return s.key
}

func (s *Session[T]) Token() string {
	return s.token
}

func (s *Session[T]) Step() Step {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.step
}

func (s *Session[T]) Deadline() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.deadline
}

// Responder returns the user allowed to advance the session
func (s *Session[T]) Responder() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.responder
}

// Closed reports whether the session reached a terminal step
func (s *Session[T]) Closed() bool {
	return s.Step().Terminal()
}

// ID builds the custom id of one of this session's components
func (s *Session[T]) ID(step string, seq int) CustomID {
	return CustomID{Flow: s.key.Flow, Step: step, Token: s.token, Seq: seq}
}

// Advance moves the session along its graph and starts the step's window
func (s *Session[T]) Advance(to Step, window time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.step.Terminal() {
		return ErrSessionClosed
	}
	if to.Terminal() || !s.graph.allows(s.step, to) {
		return ErrInvalidStep
	}
	s.step = to
	s.deadline = time.Now().Add(window)
	return nil
}

// AdvanceUntil moves the session along its graph keeping an absolute deadline
func (s *Session[T]) AdvanceUntil(to Step, deadline time.Time) error {
	if err := s.Advance(to, time.Until(deadline)); err != nil {
		return err
	}
	s.mu.Lock()
	s.deadline = deadline
	s.mu.Unlock()
	return nil
}

// Finish moves the session to a terminal step. Only the first call wins.
func (s *Session[T]) Finish(final Step) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.step.Terminal() || !final.Terminal() {
		return false
	}
	if final == Complete && !s.graph.allows(s.step, Complete) {
		return false
	}
	s.step = final
	return true
}

// Expire closes the session as Expired if it is still live
func (s *Session[T]) Expire() bool {
	return s.Finish(Expired)
}

// Update mutates the accumulated payload of a live session
func (s *Session[T]) Update(fn func(*T)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.step.Terminal() {
		return ErrSessionClosed
	}
	fn(&s.data)
	return nil
}

// Data returns a copy of the accumulated payload
func (s *Session[T]) Data() T {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.data
}

// Await waits for one of ids from the session's responder until the step deadline
func (s *Session[T]) Await(ctx context.Context, gate *Gate, ids ...CustomID) (*discordgo.InteractionCreate, error) {
	return s.await(ctx, gate, s.Responder(), "", ids)
}

// AwaitWithNotice is Await with a custom message for other users who click
func (s *Session[T]) AwaitWithNotice(ctx context.Context, gate *Gate, notice string, ids ...CustomID) (*discordgo.InteractionCreate, error) {
	return s.await(ctx, gate, s.Responder(), notice, ids)
}

// AwaitAnyone waits for one of ids from any member until the step deadline
func (s *Session[T]) AwaitAnyone(ctx context.Context, gate *Gate, ids ...CustomID) (*discordgo.InteractionCreate, error) {
	return s.await(ctx, gate, "", "", ids)
}

func (s *Session[T]) await(ctx context.Context, gate *Gate, responder, notice string, ids []CustomID) (*discordgo.InteractionCreate, error) {
	if s.Closed() {
		return nil, ErrSessionClosed
	}
	m := Match{
		IDs:           lo.Map(ids, func(id CustomID, _ int) string { return id.String() }),
		Responder:     responder,
		RejectMessage: notice,
	}
	return gate.AwaitInteraction(ctx, m, time.Until(s.Deadline()))
}
