package cogs

import (
	"context"

	"github.com/bwmarrin/discordgo"

	"pitwall-go/flow"
	"pitwall-go/utils"
)

func (b *Bot) handleQuote(ctx context.Context, i *discordgo.InteractionCreate) {
	userID := utils.InteractionUserID(i)
	sess := flow.NewSession(flow.UserKey("quote", userID), flow.SingleModal, userID, struct{}{})
	if !b.acquire(i, sess, "You already have a quote open. Finish it first.") {
		return
	}
	defer b.Committer.Abort(sess, flow.Failed)

	modalID := sess.ID("modal", 0)
	_ = sess.Advance(flow.AwaitingModal, b.Timeouts.Modal)
	if err := utils.RespondModal(b.Session, i, modalID.String(), "Quote",
		utils.TextField{CustomID: "quote", Label: "Quote", Style: discordgo.TextInputParagraph, Required: true},
		utils.TextField{CustomID: "author", Label: "Author", Required: true},
		utils.TextField{CustomID: "source", Label: "Person Quoted", Required: true},
		utils.TextField{CustomID: "year", Label: "Year", Required: true},
	); err != nil {
		return
	}

	submitted, err := sess.Await(ctx, b.Gate, modalID)
	if err != nil {
		utils.BotLogf("QUOTE", "Quote creation by %s timed out", userID)
		_ = b.Committer.Expire(ctx, sess)
		return
	}

	v := utils.ModalValues(submitted)
	embed := utils.QuoteEmbed(v["quote"], v["author"], v["source"], v["year"])
	if err := b.Committer.Commit(ctx, sess, func(context.Context) error {
		return utils.SendInteractionResponse(b.Session, submitted, embed, nil, false)
	}); err != nil {
		utils.BotErrorf("QUOTE", "Posting quote: %v", err)
	}
}
