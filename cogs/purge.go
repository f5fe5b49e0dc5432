package cogs

import (
	"context"
	"fmt"

	"github.com/bwmarrin/discordgo"
	"github.com/samber/lo"

	"pitwall-go/utils"
)

const purgeFailedMessage = "Failed to purge messages. Please check bot permissions and try again."

// PurgeResult counts what a purge removed
type PurgeResult struct {
	Deleted int
	Failed  int
}

func (b *Bot) handlePurge(ctx context.Context, i *discordgo.InteractionCreate) {
	if !guildOnly(b, i) {
		return
	}
	amount := int(commandInt(i, "amount"))
	if amount < 1 || amount > utils.MaxFetchBatch {
		_ = utils.RespondEphemeral(b.Session, i, fmt.Sprintf("Amount must be between 1 and %d.", utils.MaxFetchBatch))
		return
	}

	if err := b.Session.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{Flags: discordgo.MessageFlagsEphemeral},
	}); err != nil {
		utils.BotErrorf("PURGE", "Deferring purge: %v", err)
		return
	}

	target, member := commandUser(i, "user")
	if target == nil {
		res, err := b.PurgeLatest(i.ChannelID, amount)
		if err != nil {
			utils.BotErrorf("PURGE", "Purging %d in %s: %v", amount, i.ChannelID, err)
			_ = utils.EditOriginalContent(b.Session, i, purgeFailedMessage)
			return
		}
		utils.BotLogf("PURGE", "%s purged %d messages in %s", utils.InteractionUserID(i), res.Deleted, i.ChannelID)
		_ = utils.EditOriginalContent(b.Session, i, fmt.Sprintf("Purged %d messages", res.Deleted))
		return
	}

	res := b.PurgeFrom(i.ChannelID, target.ID, amount)
	message := fmt.Sprintf("Purged %d messages from %s", res.Deleted, utils.DisplayName(member, target))
	if res.Failed > 0 {
		message += fmt.Sprintf(" (%d failed)", res.Failed)
	}
	utils.BotLogf("PURGE", "%s purged %d messages of %s in %s", utils.InteractionUserID(i), res.Deleted, target.ID, i.ChannelID)
	_ = utils.EditOriginalContent(b.Session, i, message)
}

// PurgeLatest deletes the newest amount messages of a channel in one bulk request
func (b *Bot) PurgeLatest(channelID string, amount int) (PurgeResult, error) {
	msgs, err := b.Session.ChannelMessages(channelID, amount, "", "", "")
	if err != nil {
		return PurgeResult{}, err
	}
	ids := lo.Map(msgs, func(m *discordgo.Message, _ int) string { return m.ID })

	switch len(ids) {
	case 0:
		return PurgeResult{}, nil
	case 1:
		if err := b.Session.ChannelMessageDelete(channelID, ids[0]); err != nil {
			return PurgeResult{}, err
		}
		return PurgeResult{Deleted: 1}, nil
	}

	if err := b.Session.ChannelMessagesBulkDelete(channelID, ids); err != nil {
		return PurgeResult{}, err
	}
	return PurgeResult{Deleted: len(ids)}, nil
}

// PurgeFrom pages backwards through a channel deleting userID's messages one by one until amount are gone.
// Messages that fail to delete are skipped and counted.
func (b *Bot) PurgeFrom(channelID, userID string, amount int) PurgeResult {
	var res PurgeResult
	batch := purgeBatchSize(amount)
	before := ""

	for res.Deleted < amount {
		msgs, err := b.Session.ChannelMessages(channelID, batch, before, "", "")
		if err != nil {
			utils.BotWarnf("PURGE", "Fetching messages before %q in %s: %v", before, channelID, err)
			break
		}
		if len(msgs) == 0 {
			break
		}

		own := lo.Filter(msgs, func(m *discordgo.Message, _ int) bool {
			return m.Author != nil && m.Author.ID == userID
		})
		for _, m := range own {
			if res.Deleted >= amount {
				break
			}
			if err := b.Session.ChannelMessageDelete(channelID, m.ID); err != nil {
				utils.BotDebugf("PURGE", "Deleting %s: %v", m.ID, err)
				res.Failed++
				continue
			}
			res.Deleted++
		}

		before = msgs[len(msgs)-1].ID
		if len(msgs) < batch {
			break
		}
	}
	return res
}

func purgeBatchSize(amount int) int {
	return min(utils.MaxFetchBatch, 2*amount)
}

// commandUser returns a user option of a slash command with its resolved member
func commandUser(i *discordgo.InteractionCreate, name string) (*discordgo.User, *discordgo.Member) {
	data := i.ApplicationCommandData()
	for _, opt := range data.Options {
		if opt.Name != name {
			continue
		}
		id, ok := opt.Value.(string)
		if !ok {
			return nil, nil
		}
		var user *discordgo.User
		var member *discordgo.Member
		if data.Resolved != nil {
			user = data.Resolved.Users[id]
			member = data.Resolved.Members[id]
		}
		if user == nil {
			user = &discordgo.User{ID: id, Username: id}
		}
		return user, member
	}
	return nil, nil
}
