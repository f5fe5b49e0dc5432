package cogs

import (
	"context"
	"fmt"

	"github.com/bwmarrin/discordgo"

	"pitwall-go/flow"
	"pitwall-go/utils"
)

// Report is a filed driver report
type Report struct {
	GuildID     string
	ThreadID    string
	MessageID   string
	Target      *discordgo.User
	TargetName  string
	Reporter    *discordgo.User
	Reason      string
	Explanation string
	Session     string
	Evidence    string
}

type reportSelection struct {
	Target *discordgo.User
	Name   string
}

func (b *Bot) handleReport(ctx context.Context, i *discordgo.InteractionCreate) {
	if !guildOnly(b, i) {
		return
	}

	reporter := utils.InteractionUser(i)
	sess := flow.NewSession(flow.GuildKey("report", reporter.ID, i.GuildID), flow.SelectThenModal, reporter.ID, reportSelection{})
	if !b.acquire(i, sess, "You already have a report in progress. Finish it first.") {
		return
	}
	defer b.Committer.Abort(sess, flow.Failed)

	selectID := sess.ID("select", 0)
	_ = sess.Advance(flow.AwaitingSelection, b.Timeouts.Select)
	if err := utils.RespondContent(b.Session, i, "Please select a user to report.", []discordgo.MessageComponent{
		utils.CreateActionRow(utils.CreateUserSelect(selectID.String(), "Select a user")),
	}, true); err != nil {
		return
	}

	picked, err := sess.Await(ctx, b.Gate, selectID)
	if err != nil {
		_ = b.Committer.Expire(ctx, sess, b.editReply(i, "No user selected or time ran out!"))
		return
	}
	target, member := selectedUser(picked)
	if target == nil {
		_ = b.Committer.Fail(ctx, sess, b.reply(picked, memberMissingMessage))
		return
	}
	name := utils.DisplayName(member, target)
	_ = sess.Update(func(r *reportSelection) { r.Target, r.Name = target, name })

	modalID := sess.ID("modal", 0)
	_ = sess.Advance(flow.AwaitingModal, b.Timeouts.ReportModal)
	if err := utils.RespondModal(b.Session, picked, modalID.String(), "Reporting driver: "+name,
		utils.TextField{CustomID: "reason", Label: "Reason", Required: true, MaxLength: 200},
		utils.TextField{CustomID: "explanation", Label: "Explanation", Style: discordgo.TextInputParagraph, Required: true},
		utils.TextField{CustomID: "session", Label: "Session", Required: true, MaxLength: 60},
		utils.TextField{CustomID: "evidence", Label: "Evidence"},
	); err != nil {
		return
	}
	_ = utils.EditOriginalContent(b.Session, i, "User selected!")

	submitted, err := sess.Await(ctx, b.Gate, modalID)
	if err != nil {
		_ = b.Committer.Expire(ctx, sess, b.editReply(i, "Report timed out. Use the command again to start over."))
		return
	}

	values := utils.ModalValues(submitted)
	report := &Report{
		GuildID:     i.GuildID,
		Target:      target,
		TargetName:  name,
		Reporter:    reporter,
		Reason:      values["reason"],
		Explanation: values["explanation"],
		Session:     values["session"],
		Evidence:    values["evidence"],
	}

	thread, err := b.Session.ThreadStart(submitted.ChannelID, fmt.Sprintf("Report: %s (%s)", name, report.Session),
		discordgo.ChannelTypeGuildPublicThread, utils.ThreadArchiveMinute)
	if err != nil {
		utils.BotWarnf("REPORT", "Thread creation in %s failed: %v", submitted.ChannelID, err)
		b.failWith(ctx, "REPORT", sess, submitted, flow.External(err, "Thread creation is not supported in this channel."))
		return
	}
	report.ThreadID = thread.ID

	window := b.openProtestWindow(report)
	if err := b.Committer.Commit(ctx, sess,
		b.addThreadMembers(report),
		b.reply(submitted, "Thread created!"),
		b.postReport(report, window),
	); err != nil {
		utils.BotErrorf("REPORT", "Filing report in thread %s: %v", report.ThreadID, err)
		b.Committer.Abort(window, flow.Failed)
		return
	}

	utils.BotLogf("REPORT", "%s reported %s in thread %s", reporter.ID, target.ID, report.ThreadID)
	b.runProtestWindow(ctx, window, report)
}

func (b *Bot) addThreadMembers(report *Report) flow.Effect {
	return func(context.Context) error {
		for _, id := range []string{report.Target.ID, report.Reporter.ID} {
			if err := b.Session.ThreadMemberAdd(report.ThreadID, id); err != nil {
				utils.BotWarnf("REPORT", "Adding %s to thread %s: %v", id, report.ThreadID, err)
			}
		}
		return nil
	}
}

func (b *Bot) postReport(report *Report, window *flow.Session[protestState]) flow.Effect {
	return func(context.Context) error {
		embed := utils.ReportEmbed(report.TargetName, report.Reporter, report.Reason, report.Explanation, report.Session)
		msg, err := b.Session.ChannelMessageSendComplex(report.ThreadID, &discordgo.MessageSend{
			Embeds:     []*discordgo.MessageEmbed{embed},
			Components: reportComponents(report, window, false),
		})
		if err != nil {
			return err
		}
		report.MessageID = msg.ID
		return nil
	}
}

// reportComponents renders the evidence row and the protest button of a report post
func reportComponents(report *Report, window *flow.Session[protestState], protestClosed bool) []discordgo.MessageComponent {
	var rows []discordgo.MessageComponent
	if btn, ok := evidenceButton(report.Evidence, window.ID("evidence", reportEvidenceSeq)); ok {
		rows = append(rows, utils.CreateActionRow(btn))
	}
	rows = append(rows, utils.CreateActionRow(
		utils.CreateButton(window.ID("protest", 0).String(), "Protest", discordgo.DangerButton, protestClosed, nil),
	))
	return rows
}
