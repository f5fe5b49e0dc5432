package cogs

import (
	"context"
	"fmt"

	"github.com/bwmarrin/discordgo"

	"pitwall-go/flow"
	"pitwall-go/utils"
)

const noConversationMessage = "No conversation data to display."

type conversation struct {
	Exchanges []utils.Exchange
	Year      string
}

func (b *Bot) handleMultiQuote(ctx context.Context, i *discordgo.InteractionCreate) {
	userID := utils.InteractionUserID(i)
	sess := flow.NewSession(flow.UserKey("multiquote", userID), flow.RepeatableModal, userID, conversation{})
	if !b.acquire(i, sess, "You are already building a conversation. Finish it first.") {
		return
	}
	defer b.Committer.Abort(sess, flow.Failed)

	// trigger answers with the next modal, prompt holds the continue/finish buttons
	trigger := i
	var prompt *discordgo.InteractionCreate

	for n := 1; ; n++ {
		modalID := sess.ID("modal", n)
		_ = sess.Advance(flow.AwaitingModal, b.Timeouts.Modal)
		if err := utils.RespondModal(b.Session, trigger, modalID.String(), fmt.Sprintf("Conversation Exchange %d", n), exchangeFields(n)...); err != nil {
			return
		}

		submitted, err := sess.Await(ctx, b.Gate, modalID)
		if err != nil {
			_ = b.Committer.Expire(ctx, sess, b.conversationTimedOut(trigger, prompt))
			return
		}
		values := utils.ModalValues(submitted)
		_ = sess.Update(func(c *conversation) {
			c.Exchanges = append(c.Exchanges, utils.Exchange{Quote: values["quote"], Speaker: values["speaker"]})
			if n == 1 {
				c.Year = values["year"]
			}
		})
		if prompt != nil {
			_ = utils.EditOriginalContent(b.Session, prompt, fmt.Sprintf("Exchange %d added.", n-1))
		}
		prompt = submitted

		continueID, finishID := sess.ID("continue", n), sess.ID("finish", n)
		_ = sess.Advance(flow.AwaitingBranch, b.Timeouts.Modal)
		if err := utils.RespondContent(b.Session, submitted,
			fmt.Sprintf("Exchange %d added! Would you like to add another exchange or finish the conversation?", n),
			[]discordgo.MessageComponent{utils.CreateActionRow(
				utils.CreateButton(continueID.String(), "Add Another Exchange", discordgo.PrimaryButton, false, nil),
				utils.CreateButton(finishID.String(), "Finish Conversation", discordgo.SuccessButton, false, nil),
			)}, true); err != nil {
			return
		}

		choice, err := sess.Await(ctx, b.Gate, continueID, finishID)
		if err != nil {
			_ = b.Committer.Expire(ctx, sess, b.editReply(prompt, utils.ConversationTimeout))
			return
		}
		if utils.InteractionCustomID(choice) == finishID.String() {
			b.finishConversation(ctx, sess, choice)
			return
		}
		trigger = choice
	}
}

func exchangeFields(n int) []utils.TextField {
	fields := []utils.TextField{
		{CustomID: "quote", Label: "Quote/Statement", Style: discordgo.TextInputParagraph, Required: true},
		{CustomID: "speaker", Label: "Speaker Name", Required: true},
	}
	if n == 1 {
		fields = append(fields, utils.TextField{CustomID: "year", Label: "Year", Required: true})
	}
	return fields
}

// conversationTimedOut tells the user building stopped. Before the first
// exchange there is no reply to edit, so a followup is sent instead.
func (b *Bot) conversationTimedOut(trigger, prompt *discordgo.InteractionCreate) flow.Effect {
	if prompt != nil {
		return b.editReply(prompt, utils.ConversationTimeout)
	}
	return func(context.Context) error {
		if err := utils.TryEphemeralFollowup(b.Session, trigger, utils.ConversationTimeout); err != nil {
			utils.BotDebugf("QUOTE", "Timeout notice for %s not delivered: %v", utils.InteractionUserID(trigger), err)
		}
		return nil
	}
}

func (b *Bot) finishConversation(ctx context.Context, sess *flow.Session[conversation], choice *discordgo.InteractionCreate) {
	data := sess.Data()
	embed, ok := utils.ConversationEmbed(data.Exchanges, data.Year)
	if !ok {
		_ = b.Committer.Commit(ctx, sess, func(context.Context) error {
			return utils.UpdateComponentInteraction(b.Session, choice, noConversationMessage, nil, []discordgo.MessageComponent{})
		})
		return
	}

	err := b.Committer.Commit(ctx, sess,
		func(context.Context) error {
			return utils.UpdateComponentInteraction(b.Session, choice, "", embed, []discordgo.MessageComponent{})
		},
		func(context.Context) error {
			_, err := b.Session.ChannelMessageSendComplex(choice.ChannelID, &discordgo.MessageSend{
				Embeds: []*discordgo.MessageEmbed{embed},
			})
			return err
		},
	)
	if err != nil {
		utils.BotErrorf("QUOTE", "Posting conversation of %d exchanges: %v", len(data.Exchanges), err)
		return
	}
	utils.BotLogf("QUOTE", "%s posted a conversation of %d exchanges", utils.InteractionUserID(choice), len(data.Exchanges))
}
