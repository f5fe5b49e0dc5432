package cogs

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pitwall-go/flow"
	"pitwall-go/utils"
)

func TestMultiQuoteBuildsConversation(t *testing.T) {
	f := newFakeSession()
	b, _ := newTestBot(t, f, Options{})
	ctx := context.Background()

	cmd := command("multiquote", "u1")
	done := run(b, cmd)

	first := waitResponse(t, f, cmd)
	require.Equal(t, discordgo.InteractionResponseModal, first.Type)
	assert.Equal(t, "Conversation Exchange 1", first.Data.Title)
	assert.Len(t, first.Data.Components, 3, "year is asked on the first exchange")
	waitArmed(t, b, 1)

	sub1 := submit(first.Data.CustomID, "u1", map[string]string{"quote": "Box box", "speaker": "Bono", "year": "2021"})
	b.HandleInteraction(ctx, sub1)
	branch := waitResponse(t, f, sub1)
	assert.Equal(t, "Exchange 1 added! Would you like to add another exchange or finish the conversation?", branch.Data.Content)
	ids := componentIDs(branch.Data.Components)
	require.Len(t, ids, 2)
	waitArmed(t, b, 1)

	cont := click(ids[0], "u1")
	b.HandleInteraction(ctx, cont)
	second := waitResponse(t, f, cont)
	require.Equal(t, discordgo.InteractionResponseModal, second.Type)
	assert.Equal(t, "Conversation Exchange 2", second.Data.Title)
	assert.Len(t, second.Data.Components, 2)
	assert.NotEqual(t, first.Data.CustomID, second.Data.CustomID)
	waitArmed(t, b, 1)

	sub2 := submit(second.Data.CustomID, "u1", map[string]string{"quote": "Copy", "speaker": "Lewis"})
	b.HandleInteraction(ctx, sub2)
	ids = componentIDs(waitResponse(t, f, sub2).Data.Components)
	waitArmed(t, b, 1)

	finish := click(ids[1], "u1")
	b.HandleInteraction(ctx, finish)
	waitDone(t, done)

	post, ok := f.sentAt(0)
	require.True(t, ok)
	assert.Equal(t, "c1", post.ChannelID)
	require.Len(t, post.Message.Embeds, 1)
	embed := post.Message.Embeds[0]
	assert.Equal(t, "Quoted Conversation", embed.Title)
	assert.Equal(t, "\"Box box\" - Bono\n\"Copy\" - Lewis", embed.Description)
	assert.Equal(t, "2 exchange(s) • 2021", embed.Footer.Text)
	assert.Equal(t, utils.QuoteColor, embed.Color)
	assert.Zero(t, b.Registry.Len())
}

func TestMultiQuoteBranchTimeout(t *testing.T) {
	f := newFakeSession()
	timeouts := fastTimeouts()
	timeouts.Modal = 200 * time.Millisecond
	b, _ := newTestBot(t, f, Options{Timeouts: timeouts})

	cmd := command("multiquote", "u1")
	done := run(b, cmd)
	first := waitResponse(t, f, cmd)
	waitArmed(t, b, 1)

	sub := submit(first.Data.CustomID, "u1", map[string]string{"quote": "Box box", "speaker": "Bono", "year": "2021"})
	b.HandleInteraction(context.Background(), sub)
	waitDone(t, done)

	assert.Equal(t, utils.ConversationTimeout, f.lastEditContent())
	assert.Empty(t, f.sentContents())
	assert.Zero(t, b.Registry.Len())
}

func TestFinishEmptyConversation(t *testing.T) {
	f := newFakeSession()
	b, _ := newTestBot(t, f, Options{})

	sess := flow.NewSession(flow.UserKey("multiquote", "u1"), flow.RepeatableModal, "u1", conversation{})
	require.NoError(t, b.Registry.TryAcquire(sess))
	require.NoError(t, sess.Advance(flow.AwaitingModal, time.Second))
	require.NoError(t, sess.Advance(flow.AwaitingBranch, time.Second))

	finish := click("multiquote:finish:x:1", "u1")
	b.finishConversation(context.Background(), sess, finish)

	resp := f.responseTo(finish)
	require.NotNil(t, resp)
	assert.Equal(t, noConversationMessage, resp.Data.Content)
	assert.Empty(t, resp.Data.Embeds)
	assert.Empty(t, f.sentContents())
	assert.Equal(t, flow.Complete, sess.Step())
	assert.Zero(t, b.Registry.Len())
}

func TestQuotePostsEmbed(t *testing.T) {
	f := newFakeSession()
	b, _ := newTestBot(t, f, Options{})

	cmd := command("quote", "u1")
	done := run(b, cmd)
	modal := waitResponse(t, f, cmd)
	require.Equal(t, discordgo.InteractionResponseModal, modal.Type)
	waitArmed(t, b, 1)

	sub := submit(modal.Data.CustomID, "u1", map[string]string{
		"quote": "Leave me alone, I know what I'm doing", "author": "u1", "source": "Kimi", "year": "2012",
	})
	b.HandleInteraction(context.Background(), sub)
	waitDone(t, done)

	resp := f.responseTo(sub)
	require.NotNil(t, resp)
	assert.Zero(t, resp.Data.Flags, "quote is public")
	require.Len(t, resp.Data.Embeds, 1)
	assert.Equal(t, "Leave me alone, I know what I'm doing", resp.Data.Embeds[0].Title)
	assert.Equal(t, "Kimi (2012) \n\nQuoted by u1", resp.Data.Embeds[0].Description)
}

func TestQuoteTimeoutReleasesSession(t *testing.T) {
	f := newFakeSession()
	timeouts := fastTimeouts()
	timeouts.Modal = 30 * time.Millisecond
	b, _ := newTestBot(t, f, Options{Timeouts: timeouts})

	waitDone(t, run(b, command("quote", "u1")))
	assert.Zero(t, b.Registry.Len())
	assert.Zero(t, b.Gate.Pending())

	// a fresh quote can start right away
	done := run(b, command("quote", "u1"))
	waitDone(t, done)
	assert.Len(t, f.responses, 2)
}
