package cogs

import (
	"github.com/bwmarrin/discordgo"

	"pitwall-go/games/blackjack"
	"pitwall-go/utils"
)

// Commands returns every slash command the bot answers
func Commands() []*discordgo.ApplicationCommand {
	moderate := int64(discordgo.PermissionModerateMembers)
	manageMessages := int64(discordgo.PermissionManageMessages)
	guildOnly := false
	minAmount := 1.0

	return []*discordgo.ApplicationCommand{
		{
			Name:                     "mute",
			Description:              "Mutes a user",
			DefaultMemberPermissions: &moderate,
			DMPermission:             &guildOnly,
		},
		{
			Name:                     "unmute",
			Description:              "Unmutes a user",
			DefaultMemberPermissions: &moderate,
			DMPermission:             &guildOnly,
		},
		{
			Name:         "report",
			Description:  "Report a driver for an incident",
			DMPermission: &guildOnly,
		},
		{
			Name:        "multiquote",
			Description: "Creates a beautiful quoted conversation",
		},
		{
			Name:        "quote",
			Description: "Creates a beautiful quote",
		},
		blackjack.RegisterBlackjackCommands(),
		{
			Name:                     "purge",
			Description:              "Purges a number of messages from the channel",
			DefaultMemberPermissions: &manageMessages,
			DMPermission:             &guildOnly,
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionInteger,
					Name:        "amount",
					Description: "The number of messages to purge",
					Required:    true,
					MinValue:    &minAmount,
					MaxValue:    utils.MaxFetchBatch,
				},
				{
					Type:        discordgo.ApplicationCommandOptionUser,
					Name:        "user",
					Description: "The user to purge messages from",
				},
			},
		},
		{
			Name:         "level",
			Description:  "Check your current level and XP progress",
			DMPermission: &guildOnly,
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionUser,
					Name:        "user",
					Description: "User to check level for (optional)",
				},
			},
		},
		{
			Name:        "balance",
			Description: "Check your current chip balance",
		},
	}
}
