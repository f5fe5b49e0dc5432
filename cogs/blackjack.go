package cogs

import (
	"context"
	"fmt"

	"github.com/bwmarrin/discordgo"

	"pitwall-go/flow"
	"pitwall-go/games/blackjack"
	"pitwall-go/utils"
)

const activeGameMessage = "❌ You already have an active blackjack game! Finish it first."

func (b *Bot) handleBlackjack(ctx context.Context, i *discordgo.InteractionCreate) {
	user := utils.InteractionUser(i)
	if user == nil {
		return
	}
	bet := commandInt(i, "bet")

	if err := b.Store.EnsureUser(ctx, user.ID, user.Username, user.Discriminator); err != nil {
		utils.BotErrorf("BLACKJACK", "Ensuring user %s: %v", user.ID, err)
		_ = utils.RespondEphemeral(b.Session, i, utils.GenericFailureMessage)
		return
	}
	chips, err := b.Store.GetChips(ctx, user.ID)
	if err != nil {
		utils.BotErrorf("BLACKJACK", "Reading balance of %s: %v", user.ID, err)
		_ = utils.RespondEphemeral(b.Session, i, utils.GenericFailureMessage)
		return
	}
	if err := blackjack.ValidateBet(bet, chips); err != nil {
		_ = utils.RespondEphemeral(b.Session, i, flow.UserMessage(err, utils.GenericFailureMessage))
		return
	}

	game := blackjack.NewBlackjackGame(bet, b.newDeck())
	sess := flow.NewSession(flow.UserKey("blackjack", user.ID), flow.PlayerActions, user.ID, game)
	if !b.acquire(i, sess, activeGameMessage) {
		return
	}
	defer b.Committer.Abort(sess, flow.Failed)

	hitID, standID := sess.ID("hit", 0), sess.ID("stand", 0)
	_ = sess.Advance(flow.AwaitingPlayerAction, b.Timeouts.Action)
	if err := utils.SendInteractionResponse(b.Session, i, game.GameEmbed(), game.Buttons(hitID.String(), standID.String()), false); err != nil {
		return
	}
	utils.BotLogf("BLACKJACK", "%s started a game betting %d", user.ID, bet)

	for {
		ev, err := sess.AwaitWithNotice(ctx, b.Gate, utils.NotYourGameMessage, hitID, standID)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			b.forfeitGame(ctx, sess, i, user.ID)
			return
		}

		var t flow.Transition
		if utils.InteractionCustomID(ev) == hitID.String() {
			t = game.HandleHit()
		} else {
			t = game.HandleStand()
		}

		switch t.Action {
		case flow.RejectEvent:
			_ = utils.RespondEphemeral(b.Session, ev, flow.UserMessage(t.Reason, utils.GenericFailureMessage))
		case flow.PresentNext:
			_ = sess.Advance(t.Next, b.Timeouts.Action)
			_ = utils.UpdateComponentInteraction(b.Session, ev, "", game.GameEmbed(), game.Buttons(hitID.String(), standID.String()))
		case flow.CommitOutcome:
			b.settleGame(ctx, sess, ev, user.ID)
			return
		}
	}
}

func (b *Bot) settleGame(ctx context.Context, sess *flow.Session[*blackjack.BlackjackGame], ev *discordgo.InteractionCreate, userID string) {
	game := sess.Data()
	result := game.Settle()

	var balance int64
	err := b.Committer.Commit(ctx, sess,
		b.Committer.ChipDelta(userID, result.Delta, &balance),
		func(context.Context) error {
			return utils.UpdateComponentInteraction(b.Session, ev, "", game.ResultEmbed(result, balance), []discordgo.MessageComponent{})
		},
	)
	if err != nil {
		utils.BotErrorf("BLACKJACK", "Settling game of %s: %v", userID, err)
		_ = utils.RespondEphemeral(b.Session, ev, utils.GenericFailureMessage)
		return
	}
	utils.BotLogf("BLACKJACK", "%s: %s (%+d), balance %d", userID, result.Outcome, result.Delta, balance)
}

func (b *Bot) forfeitGame(ctx context.Context, sess *flow.Session[*blackjack.BlackjackGame], i *discordgo.InteractionCreate, userID string) {
	game := sess.Data()
	result := game.Forfeit()

	var balance int64
	err := b.Committer.Expire(ctx, sess,
		b.Committer.ChipDelta(userID, result.Delta, &balance),
		func(context.Context) error {
			content := fmt.Sprintf(utils.GameTimeoutMessage, game.Bet)
			return utils.UpdateInteractionResponseWithRetry(b.Session, i, content, game.ResultEmbed(result, balance), []discordgo.MessageComponent{}, 2)
		},
	)
	if err != nil {
		utils.BotErrorf("BLACKJACK", "Forfeiting game of %s: %v", userID, err)
		return
	}
	utils.BotLogf("BLACKJACK", "%s timed out and forfeited %d, balance %d", userID, game.Bet, balance)
}

// commandInt returns an integer option of a slash command, 0 when absent
func commandInt(i *discordgo.InteractionCreate, name string) int64 {
	for _, opt := range i.ApplicationCommandData().Options {
		if opt.Name == name {
			return opt.IntValue()
		}
	}
	return 0
}
