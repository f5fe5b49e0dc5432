package flow

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func click(customID, userID string) *discordgo.InteractionCreate {
	return &discordgo.InteractionCreate{Interaction: &discordgo.Interaction{
		Type:    discordgo.InteractionMessageComponent,
		GuildID: "g1",
		Member:  &discordgo.Member{User: &discordgo.User{ID: userID, Username: "user-" + userID}},
		Data:    discordgo.MessageComponentInteractionData{CustomID: customID},
	}}
}

func submit(customID, userID string, values map[string]string) *discordgo.InteractionCreate {
	var rows []discordgo.MessageComponent
	for k, v := range values {
		rows = append(rows, &discordgo.ActionsRow{Components: []discordgo.MessageComponent{
			&discordgo.TextInput{CustomID: k, Value: v},
		}})
	}
	return &discordgo.InteractionCreate{Interaction: &discordgo.Interaction{
		Type:    discordgo.InteractionModalSubmit,
		GuildID: "g1",
		Member:  &discordgo.Member{User: &discordgo.User{ID: userID}},
		Data:    discordgo.ModalSubmitInteractionData{CustomID: customID, Components: rows},
	}}
}

func TestGateDeliversMatchingEvent(t *testing.T) {
	g := NewGate(nil)
	done := make(chan *discordgo.InteractionCreate, 1)

	go func() {
		ev, err := g.AwaitInteraction(context.Background(), Match{IDs: []string{"a:b:c"}, Responder: "u1"}, time.Second)
		assert.NoError(t, err)
		done <- ev
	}()

	require.Eventually(t, func() bool { return g.Pending() == 1 }, time.Second, 5*time.Millisecond)
	require.False(t, g.Publish(click("other", "u1")))
	require.True(t, g.Publish(click("a:b:c", "u1")))

	select {
	case ev := <-done:
		require.Equal(t, "a:b:c", ev.MessageComponentData().CustomID)
	case <-time.After(time.Second):
		t.Fatal("wait never resolved")
	}
	require.Zero(t, g.Pending())
}

func TestGateTimeoutRemovesListener(t *testing.T) {
	g := NewGate(nil)

	ev, err := g.AwaitInteraction(context.Background(), Match{IDs: []string{"x"}}, 20*time.Millisecond)
	require.Nil(t, ev)
	require.True(t, IsTimeout(err))
	require.Zero(t, g.Pending())

	// a late event finds nobody waiting
	require.False(t, g.Publish(click("x", "u1")))
}

func TestGateContextCancel(t *testing.T) {
	g := NewGate(nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := g.AwaitInteraction(ctx, Match{IDs: []string{"x"}}, time.Minute)
	require.ErrorIs(t, err, context.Canceled)
	require.Zero(t, g.Pending())
}

func TestGateZeroTimeout(t *testing.T) {
	g := NewGate(nil)
	_, err := g.AwaitInteraction(context.Background(), Match{IDs: []string{"x"}}, 0)
	require.True(t, IsTimeout(err))
}

func TestGateRejectsOtherUser(t *testing.T) {
	var mu sync.Mutex
	var notices []string
	g := NewGate(func(i *discordgo.InteractionCreate, reason error) {
		mu.Lock()
		defer mu.Unlock()
		notices = append(notices, UserMessage(reason, ""))
	})

	done := make(chan *discordgo.InteractionCreate, 1)
	go func() {
		ev, err := g.AwaitInteraction(context.Background(), Match{IDs: []string{"bj:hit:t"}, Responder: "owner", RejectMessage: "not yours"}, time.Second)
		assert.NoError(t, err)
		done <- ev
	}()

	require.Eventually(t, func() bool { return g.Pending() == 1 }, time.Second, 5*time.Millisecond)
	require.True(t, g.Publish(click("bj:hit:t", "intruder")))
	require.Equal(t, 1, g.Pending(), "rejection must keep the wait armed")

	require.True(t, g.Publish(click("bj:hit:t", "owner")))
	ev := <-done
	require.Equal(t, "owner", ev.Member.User.ID)

	mu.Lock()
	defer mu.Unlock()
	require.Equal(t, []string{"not yours"}, notices)
}

func TestGateDefaultRejectNotice(t *testing.T) {
	var got error
	g := NewGate(func(_ *discordgo.InteractionCreate, reason error) { got = reason })

	go func() {
		_, _ = g.AwaitInteraction(context.Background(), Match{IDs: []string{"x"}, Responder: "owner"}, 200*time.Millisecond)
	}()
	require.Eventually(t, func() bool { return g.Pending() == 1 }, time.Second, 5*time.Millisecond)

	g.Publish(click("x", "someone"))
	require.Error(t, got)
	require.Equal(t, "This isn't your interaction.", UserMessage(got, ""))
}

func TestGateResolvesExactlyOnce(t *testing.T) {
	for n := 0; n < 50; n++ {
		g := NewGate(nil)
		var delivered atomic.Int32
		result := make(chan error, 1)

		go func() {
			ev, err := g.AwaitInteraction(context.Background(), Match{IDs: []string{"race"}}, 2*time.Millisecond)
			if ev != nil {
				delivered.Add(1)
			}
			result <- err
		}()

		// racing publishers around the deadline
		var wg sync.WaitGroup
		for p := 0; p < 4; p++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				time.Sleep(time.Millisecond)
				g.Publish(click("race", "u"))
			}()
		}
		wg.Wait()

		err := <-result
		if err == nil {
			require.EqualValues(t, 1, delivered.Load())
		} else {
			require.True(t, IsTimeout(err))
			require.Zero(t, delivered.Load())
		}
		require.Zero(t, g.Pending())
	}
}

func TestMatchPredicate(t *testing.T) {
	m := Match{IDs: []string{"a", "b"}, Responder: "u1"}
	p := m.Predicate()

	assert.Equal(t, Accept, p(click("a", "u1")))
	assert.Equal(t, Accept, p(click("b", "u1")))
	assert.Equal(t, Reject, p(click("a", "u2")))
	assert.Equal(t, Ignore, p(click("c", "u1")))
	assert.Equal(t, Accept, p(submit("b", "u1", nil)))

	anyone := Match{IDs: []string{"a"}}.Predicate()
	assert.Equal(t, Accept, anyone(click("a", "whoever")))
}

func TestGateAwaitOneAcceptsAnyUser(t *testing.T) {
	g := NewGate(nil)
	votes := func(i *discordgo.InteractionCreate) Verdict {
		if i.Type == discordgo.InteractionMessageComponent && i.MessageComponentData().CustomID == "protest:vote:tok" {
			return Accept
		}
		return Ignore
	}

	done := make(chan Outcome, 1)
	go func() {
		out, err := g.AwaitOne(context.Background(), votes, time.Second)
		assert.NoError(t, err)
		done <- out
	}()

	require.Eventually(t, func() bool { return g.Pending() == 1 }, time.Second, 5*time.Millisecond)
	require.False(t, g.Publish(submit("protest:vote:tok", "u7", nil)))
	require.True(t, g.Publish(click("protest:vote:tok", "u7")))

	select {
	case out := <-done:
		require.False(t, out.TimedOut)
		require.NotNil(t, out.Event)
		require.Equal(t, "u7", out.Event.Member.User.ID)
	case <-time.After(time.Second):
		t.Fatal("wait never resolved")
	}
	require.Zero(t, g.Pending())
}

func TestGateAwaitOneTimesOut(t *testing.T) {
	g := NewGate(nil)
	never := func(*discordgo.InteractionCreate) Verdict { return Ignore }

	out, err := g.AwaitOne(context.Background(), never, 20*time.Millisecond)
	require.ErrorIs(t, err, ErrTimedOut)
	require.True(t, out.TimedOut)
	require.Nil(t, out.Event)
	require.Zero(t, g.Pending())

	out, err = g.AwaitOne(context.Background(), never, 0)
	require.ErrorIs(t, err, ErrTimedOut)
	require.True(t, out.TimedOut)
}
