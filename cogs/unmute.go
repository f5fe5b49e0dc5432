package cogs

import (
	"context"
	"fmt"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/samber/lo"

	"pitwall-go/flow"
	"pitwall-go/utils"
)

const unmuteFailedMessage = "An error occurred while unmuting the user. Please check bot permissions and try again."

func (b *Bot) handleUnmute(ctx context.Context, i *discordgo.InteractionCreate) {
	if !guildOnly(b, i) {
		return
	}

	invoker := utils.InteractionUserID(i)
	sess := flow.NewSession(flow.GuildKey("unmute", invoker, i.GuildID), flow.SelectThenModal, invoker, struct{}{})
	if !b.acquire(i, sess, "You already have an unmute in progress. Finish it first.") {
		return
	}
	defer b.Committer.Abort(sess, flow.Failed)

	selectID := sess.ID("select", 0)
	_ = sess.Advance(flow.AwaitingSelection, b.Timeouts.Select)
	if err := utils.RespondContent(b.Session, i, "Please select a user to unmute.", []discordgo.MessageComponent{
		utils.CreateActionRow(utils.CreateUserSelect(selectID.String(), "Select a user to unmute")),
	}, true); err != nil {
		return
	}

	picked, err := sess.Await(ctx, b.Gate, selectID)
	if err != nil {
		_ = b.Committer.Expire(ctx, sess, b.editReply(i, "No user was selected. Unmute command timed out."))
		return
	}
	user, member := selectedUser(picked)
	if user == nil {
		_ = b.Committer.Fail(ctx, sess, b.reply(picked, memberMissingMessage))
		return
	}
	name := utils.DisplayName(member, user)

	modalID := sess.ID("modal", 0)
	_ = sess.Advance(flow.AwaitingModal, b.Timeouts.Modal)
	if err := utils.RespondModal(b.Session, picked, modalID.String(), "Unmute "+name,
		utils.TextField{CustomID: "reason", Label: "Reason (optional)"},
	); err != nil {
		return
	}
	_ = utils.EditOriginalContent(b.Session, i, fmt.Sprintf("User %s has been selected for unmuting.", name))

	submitted, err := sess.Await(ctx, b.Gate, modalID)
	if err != nil {
		_ = b.Committer.Expire(ctx, sess, b.editReply(i, "Unmute timed out. Run the command again."))
		return
	}
	reason := optionalText(utils.ModalValues(submitted)["reason"])

	message, err := b.RemoveMute(i.GuildID, user.ID, name, reason.Or("No reason provided"))
	if err != nil {
		b.failWith(ctx, "MUTE", sess, submitted, err)
		return
	}
	if r, ok := reason.Get(); ok {
		message += " Reason: " + r
	}

	utils.BotLogf("MUTE", "%s (%s) unmuted by %s, reason %q", name, user.ID, invoker, reason.OrZero())
	_ = b.Committer.Commit(ctx, sess, b.reply(submitted, message))
}

// RemoveMute takes the muted role off a member and lifts any active timeout
func (b *Bot) RemoveMute(guildID, userID, name, auditReason string) (string, error) {
	member, err := b.Session.GuildMember(guildID, userID)
	if err != nil || member == nil {
		return "", flow.Validation(memberMissingMessage)
	}
	roles, err := b.Session.GuildRoles(guildID)
	if err != nil {
		return "", flow.External(err, unmuteFailedMessage)
	}

	roleID, ok := b.findMutedRole(guildID, roles)
	if !ok {
		return "", flow.Validation("Muted role not found. User may not be muted.")
	}
	if !lo.Contains(member.Roles, roleID) {
		return "", flow.Validation(fmt.Sprintf("%s is not currently muted.", name))
	}

	if err := b.Session.GuildMemberRoleRemove(guildID, userID, roleID, discordgo.WithAuditLogReason(auditReason)); err != nil {
		return "", flow.External(err, unmuteFailedMessage)
	}
	if member.CommunicationDisabledUntil != nil && member.CommunicationDisabledUntil.After(time.Now()) {
		if err := b.Session.GuildMemberTimeout(guildID, userID, nil, discordgo.WithAuditLogReason(auditReason)); err != nil {
			return "", flow.External(err, unmuteFailedMessage)
		}
	}
	return fmt.Sprintf("Successfully unmuted %s.", name), nil
}
