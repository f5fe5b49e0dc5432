package cogs

import (
	"context"
	"errors"
	"fmt"

	"github.com/bwmarrin/discordgo"

	"pitwall-go/database"
	"pitwall-go/utils"
)

const (
	noLevelSelfMessage  = "You haven't sent any messages in this server yet! Send some messages to start earning XP and levels."
	noLevelOtherMessage = "%s hasn't sent any messages in this server yet, so they don't have any XP or levels to display."
	levelErrorMessage   = "There was an error retrieving level information!"
)

func (b *Bot) handleLevel(ctx context.Context, i *discordgo.InteractionCreate) {
	if !guildOnly(b, i) {
		return
	}
	requester := utils.InteractionUser(i)
	target, _ := commandUser(i, "user")
	if target == nil {
		target = requester
	}

	member, err := b.Session.GuildMember(i.GuildID, target.ID)
	if err != nil || member == nil {
		_ = utils.RespondEphemeral(b.Session, i, fmt.Sprintf("%s is not a member of this server!", target.Username))
		return
	}
	name := utils.DisplayName(member, target)

	stats, err := b.Store.GetUserGuild(ctx, target.ID, i.GuildID)
	switch {
	case errors.Is(err, database.ErrNotFound):
		if target.ID == requester.ID {
			_ = utils.RespondEphemeral(b.Session, i, noLevelSelfMessage)
		} else {
			_ = utils.RespondEphemeral(b.Session, i, fmt.Sprintf(noLevelOtherMessage, name))
		}
		return
	case err != nil:
		utils.BotErrorf("LEVEL", "Reading stats of %s in %s: %v", target.ID, i.GuildID, err)
		_ = utils.RespondEphemeral(b.Session, i, levelErrorMessage)
		return
	}

	_ = utils.SendInteractionResponse(b.Session, i, utils.LevelEmbed(name, target, stats, utils.DisplayName(i.Member, requester)), nil, false)
}

func (b *Bot) handleBalance(ctx context.Context, i *discordgo.InteractionCreate) {
	user := utils.InteractionUser(i)
	if user == nil {
		return
	}
	if err := b.Store.EnsureUser(ctx, user.ID, user.Username, user.Discriminator); err != nil {
		utils.BotErrorf("DATABASE", "Ensuring user %s: %v", user.ID, err)
		_ = utils.RespondEphemeral(b.Session, i, "❌ Error accessing user data. Database may be unavailable.")
		return
	}
	chips, err := b.Store.GetChips(ctx, user.ID)
	if err != nil {
		utils.BotErrorf("DATABASE", "Reading balance of %s: %v", user.ID, err)
		_ = utils.RespondEphemeral(b.Session, i, "❌ Error accessing user data. Database may be unavailable.")
		return
	}
	_ = utils.SendInteractionResponse(b.Session, i, utils.BalanceEmbed(user.Username, chips), nil, false)
}
