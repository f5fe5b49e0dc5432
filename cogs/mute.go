package cogs

import (
	"context"
	"fmt"
	"time"

	"github.com/Southclaws/opt"
	"github.com/bwmarrin/discordgo"

	"pitwall-go/flow"
	"pitwall-go/utils"
)

const (
	noManageRolesMessage = "I don't have permission to manage roles. Please give me the 'Manage Roles' permission."
	muteFailedMessage    = "An error occurred while muting the user. Please check bot permissions and try again."
	higherRoleMessage    = "I cannot mute this user because they have a higher or equal role than me."
	memberMissingMessage = "User not found in this server."
)

type muteTarget struct {
	User        *discordgo.User
	Name        string
	RawDuration string
	Duration    time.Duration
	Reason      opt.Optional[string]
}

// MuteRequest is a validated mute ready to apply
type MuteRequest struct {
	GuildID        string
	Target         *discordgo.User
	Name           string
	RawDuration    string
	Duration       time.Duration
	Reason         opt.Optional[string]
	AppPermissions int64
}

func (b *Bot) handleMute(ctx context.Context, i *discordgo.InteractionCreate) {
	if !guildOnly(b, i) {
		return
	}
	if i.AppPermissions&discordgo.PermissionManageRoles == 0 {
		_ = utils.RespondEphemeral(b.Session, i, noManageRolesMessage)
		return
	}

	invoker := utils.InteractionUserID(i)
	sess := flow.NewSession(flow.GuildKey("mute", invoker, i.GuildID), flow.SelectThenModal, invoker, muteTarget{})
	if !b.acquire(i, sess, "You already have a mute in progress. Finish it first.") {
		return
	}
	defer b.Committer.Abort(sess, flow.Failed)

	selectID := sess.ID("select", 0)
	_ = sess.Advance(flow.AwaitingSelection, b.Timeouts.Select)
	if err := utils.RespondContent(b.Session, i, "Please select a user to mute.", []discordgo.MessageComponent{
		utils.CreateActionRow(utils.CreateUserSelect(selectID.String(), "Select a user to mute")),
	}, true); err != nil {
		return
	}

	picked, err := sess.Await(ctx, b.Gate, selectID)
	if err != nil {
		_ = b.Committer.Expire(ctx, sess, b.editReply(i, "No user selected. Mute command cancelled."))
		return
	}

	user, member := selectedUser(picked)
	if user == nil {
		_ = b.Committer.Fail(ctx, sess, b.reply(picked, memberMissingMessage))
		return
	}
	name := utils.DisplayName(member, user)

	// two moderators cannot mute the same member at once
	targetLock := flow.NewSession(flow.TargetKey("mute-target", user.ID, i.GuildID), flow.SingleModal, invoker, struct{}{})
	if err := b.Registry.TryAcquire(targetLock); err != nil {
		_ = b.Committer.Fail(ctx, sess, b.reply(picked, fmt.Sprintf("%s is already being muted by another moderator.", name)))
		return
	}
	defer b.Registry.Release(targetLock)

	modalID := sess.ID("modal", 0)
	_ = sess.Update(func(t *muteTarget) { t.User, t.Name = user, name })
	_ = sess.Advance(flow.AwaitingModal, b.Timeouts.Modal)
	if err := utils.RespondModal(b.Session, picked, modalID.String(), "Mute "+name,
		utils.TextField{CustomID: "duration", Label: "Duration (ex. 1d 2h 3m 4s)", Required: true},
		utils.TextField{CustomID: "reason", Label: "Reason"},
	); err != nil {
		return
	}
	_ = utils.EditOriginalContent(b.Session, i, fmt.Sprintf("User %s has been selected.", name))

	submitted, err := sess.Await(ctx, b.Gate, modalID)
	if err != nil {
		_ = b.Committer.Expire(ctx, sess, b.editReply(i, "Mute timed out. Run the command again."))
		return
	}

	values := utils.ModalValues(submitted)
	req := MuteRequest{
		GuildID:        i.GuildID,
		Target:         user,
		Name:           name,
		RawDuration:    values["duration"],
		Duration:       utils.ParseMuteDuration(values["duration"]),
		Reason:         optionalText(values["reason"]),
		AppPermissions: i.AppPermissions,
	}

	message, err := b.ApplyMute(req)
	if err != nil {
		b.failWith(ctx, "MUTE", sess, submitted, err)
		return
	}

	utils.BotLogf("MUTE", "%s (%s) muted by %s for %s, reason %q", name, user.ID, invoker, utils.FormatDuration(req.Duration), req.Reason.OrZero())
	if err := b.Committer.Commit(ctx, sess, b.reply(submitted, message)); err != nil {
		utils.BotErrorf("MUTE", "Sending mute confirmation: %v", err)
	}
}

// ApplyMute adds the muted role and, for short durations, a platform timeout.
// It returns the confirmation shown to the moderator.
func (b *Bot) ApplyMute(req MuteRequest) (string, error) {
	member, err := b.Session.GuildMember(req.GuildID, req.Target.ID)
	if err != nil || member == nil {
		return "", flow.Validation(memberMissingMessage)
	}

	roles, err := b.Session.GuildRoles(req.GuildID)
	if err != nil {
		return "", flow.External(err, muteFailedMessage)
	}
	self, err := b.Session.GuildMember(req.GuildID, b.SelfID())
	if err != nil {
		return "", flow.External(err, muteFailedMessage)
	}
	if highestRolePosition(roles, member.Roles) >= highestRolePosition(roles, self.Roles) {
		return "", flow.Permission(higherRoleMessage)
	}

	roleID, err := b.ensureMutedRole(req.GuildID, roles)
	if err != nil {
		return "", flow.External(err, muteFailedMessage)
	}

	auditReason := req.Reason.Or("No reason provided")
	if err := b.Session.GuildMemberRoleAdd(req.GuildID, req.Target.ID, roleID, discordgo.WithAuditLogReason(auditReason)); err != nil {
		return "", flow.External(err, muteFailedMessage)
	}

	timeoutApplied := false
	note := ""
	if req.Duration > 0 && req.Duration <= utils.MaxTimeoutDuration {
		if req.AppPermissions&discordgo.PermissionModerateMembers != 0 {
			until := time.Now().Add(req.Duration)
			if err := b.Session.GuildMemberTimeout(req.GuildID, req.Target.ID, &until, discordgo.WithAuditLogReason(auditReason)); err != nil {
				utils.BotWarnf("MUTE", "Timeout for %s failed: %v", req.Target.ID, err)
				note = "Failed to apply timeout: " + err.Error()
			} else {
				timeoutApplied = true
			}
		} else {
			note = "Bot lacks 'Moderate Members' permission for timeout."
		}
	}

	message := fmt.Sprintf("Successfully muted %s.", req.Name)
	if req.Duration > 0 {
		message += " Duration: " + req.RawDuration
	}
	if reason, ok := req.Reason.Get(); ok {
		message += " Reason: " + reason
	}
	if req.Duration > 0 && !timeoutApplied {
		if note == "" {
			note = "Discord timeout not applied."
		}
		message += fmt.Sprintf("\n⚠️ Note: %s Only role-based mute is active.", note)
	}
	return message, nil
}

func optionalText(s string) opt.Optional[string] {
	return opt.NewIf(s, func(s string) bool { return s != "" })
}
