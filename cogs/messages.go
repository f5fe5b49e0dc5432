package cogs

import (
	"context"
	"fmt"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/samber/lo"

	"pitwall-go/models"
	"pitwall-go/utils"
)

// HandleMessage enforces mutes and grants message XP
func (b *Bot) HandleMessage(ctx context.Context, m *discordgo.MessageCreate) {
	if m.Author == nil || m.Author.Bot || m.GuildID == "" {
		return
	}

	if b.isMuted(m) {
		b.silence(m)
		return
	}

	if !b.Cooldowns.Allow(m.Author.ID) {
		return
	}
	if err := b.Store.EnsureUser(ctx, m.Author.ID, m.Author.Username, m.Author.Discriminator); err != nil {
		utils.BotErrorf("XP", "Ensuring user %s: %v", m.Author.ID, err)
		return
	}
	gain, err := b.Store.AddXP(ctx, m.Author.ID, m.GuildID, b.randomXP())
	if err != nil {
		utils.BotErrorf("XP", "Granting XP to %s in %s: %v", m.Author.ID, m.GuildID, err)
		return
	}
	utils.BotDebugf("XP", "%s +%d XP in %s", m.Author.ID, gain.Amount, m.GuildID)

	for _, msg := range levelUpAnnouncements(m.Author.ID, gain) {
		if _, err := b.Session.ChannelMessageSend(m.ChannelID, msg); err != nil {
			utils.BotWarnf("XP", "Announcing level up in %s: %v", m.ChannelID, err)
		}
	}
}

func levelUpAnnouncements(userID string, gain models.XPGain) []string {
	var out []string
	if gain.GuildLevelUp() {
		out = append(out, fmt.Sprintf("🎉 Congratulations <@%s>! You've reached **Guild Level %d**!", userID, gain.GuildLevelAfter))
	}
	if gain.OverallLevelUp() {
		out = append(out, fmt.Sprintf("🌟 Amazing <@%s>! You've reached **Overall Level %d**!", userID, gain.OverallLevelAfter))
	}
	return out
}

// isMuted reports whether the author of m holds the guild's muted role
func (b *Bot) isMuted(m *discordgo.MessageCreate) bool {
	if m.Member == nil || len(m.Member.Roles) == 0 {
		return false
	}
	roleID, ok := b.Roles.Get(m.GuildID, utils.MutedRoleName)
	if !ok {
		roles, err := b.Session.GuildRoles(m.GuildID)
		if err != nil {
			utils.BotWarnf("MUTE", "Reading roles of %s: %v", m.GuildID, err)
			return false
		}
		if roleID, ok = b.findMutedRole(m.GuildID, roles); !ok {
			return false
		}
	}
	return lo.Contains(m.Member.Roles, roleID)
}

// silence removes a muted member's message and leaves a short-lived notice
func (b *Bot) silence(m *discordgo.MessageCreate) {
	if err := b.Session.ChannelMessageDelete(m.ChannelID, m.ID); err != nil {
		utils.BotWarnf("MUTE", "Deleting message of muted %s: %v", m.Author.ID, err)
	}
	notice, err := b.Session.ChannelMessageSend(m.ChannelID, fmt.Sprintf("%s is muted and cannot send messages in the server.", m.Author.String()))
	if err != nil {
		utils.BotWarnf("MUTE", "Posting mute notice in %s: %v", m.ChannelID, err)
		return
	}
	time.AfterFunc(b.NoticeLifetime, func() {
		if err := b.Session.ChannelMessageDelete(m.ChannelID, notice.ID); err != nil {
			utils.BotDebugf("MUTE", "Deleting mute notice %s: %v", notice.ID, err)
		}
	})
}

// HandleGuildCreate records a guild the bot joined or reconnected to
func (b *Bot) HandleGuildCreate(ctx context.Context, g *discordgo.GuildCreate) {
	if g.Guild == nil || g.Unavailable {
		return
	}
	err := b.Store.UpsertGuild(ctx, models.Guild{
		GuildID:     g.ID,
		Name:        g.Name,
		OwnerID:     g.OwnerID,
		MemberCount: g.MemberCount,
	})
	if err != nil {
		utils.BotErrorf("DATABASE", "Recording guild %s: %v", g.ID, err)
		return
	}
	utils.BotLogf("DISCORD_API", "Tracking guild %s (%s), %d members", g.Name, g.ID, g.MemberCount)
}
