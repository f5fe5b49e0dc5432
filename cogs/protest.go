package cogs

import (
	"context"
	"errors"

	"github.com/bwmarrin/discordgo"

	"pitwall-go/flow"
	"pitwall-go/utils"
)

const (
	reportEvidenceSeq  = 1
	protestEvidenceSeq = 2

	protestClosedMessage  = "🔒 The protest window for this report has closed."
	protestFiledMessage   = "Your protest has been filed."
	protestTakenMessage   = "A protest has already been filed for this report."
	protestPendingMessage = "Someone is already filing a protest for this report. Try again in a few minutes."
)

type protestState struct {
	Protested bool
	Pending   bool
	Protester string
	Evidence  string
}

// openProtestWindow creates the session that owns a report thread for the protest window
func (b *Bot) openProtestWindow(report *Report) *flow.Session[protestState] {
	win := flow.NewSession(flow.Key{Flow: "protest", Scope: report.ThreadID}, flow.ProtestWindow, "", protestState{})
	_ = win.Advance(flow.AwaitingProtest, b.Timeouts.Protest)
	if err := b.Registry.TryAcquire(win); err != nil {
		utils.BotWarnf("REPORT", "Protest window for thread %s already registered", report.ThreadID)
	}
	return win
}

// runProtestWindow answers protest and evidence clicks until the window closes, then archives the thread
func (b *Bot) runProtestWindow(ctx context.Context, win *flow.Session[protestState], report *Report) {
	protestID := win.ID("protest", 0)
	reportEvidenceID := win.ID("evidence", reportEvidenceSeq)
	protestEvidenceID := win.ID("evidence", protestEvidenceSeq)

	for {
		ev, err := win.AwaitAnyone(ctx, b.Gate, protestID, reportEvidenceID, protestEvidenceID)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, flow.ErrSessionClosed) {
				b.Committer.Abort(win, flow.Failed)
				return
			}
			break
		}

		switch utils.InteractionCustomID(ev) {
		case reportEvidenceID.String():
			_ = utils.RespondEphemeral(b.Session, ev, "Evidence: "+report.Evidence)
		case protestEvidenceID.String():
			_ = utils.RespondEphemeral(b.Session, ev, "Evidence: "+win.Data().Evidence)
		case protestID.String():
			b.onProtestClick(ctx, win, report, ev)
		}
	}

	err := b.Committer.Commit(ctx, win,
		func(context.Context) error {
			_, err := b.Session.ChannelMessageSend(report.ThreadID, protestClosedMessage)
			return err
		},
		b.archiveThread(report.ThreadID),
	)
	if err != nil {
		utils.BotErrorf("REPORT", "Closing protest window of %s: %v", report.ThreadID, err)
		return
	}
	utils.BotLogf("REPORT", "Protest window of thread %s closed", report.ThreadID)
}

func (b *Bot) onProtestClick(ctx context.Context, win *flow.Session[protestState], report *Report, ev *discordgo.InteractionCreate) {
	notice := ""
	if err := win.Update(func(s *protestState) {
		switch {
		case s.Protested:
			notice = protestTakenMessage
		case s.Pending:
			notice = protestPendingMessage
		default:
			s.Pending = true
		}
	}); err != nil {
		notice = protestClosedMessage
	}
	if notice != "" {
		_ = utils.RespondEphemeral(b.Session, ev, notice)
		return
	}
	go b.collectProtest(ctx, win, report, ev)
}

// collectProtest runs the protest modal for the member who clicked Protest
func (b *Bot) collectProtest(ctx context.Context, win *flow.Session[protestState], report *Report, click *discordgo.InteractionCreate) {
	protester := utils.InteractionUser(click)
	defer func() {
		_ = win.Update(func(s *protestState) { s.Pending = false })
	}()

	sess := flow.NewSession(flow.Key{Flow: "protest-modal", UserID: protester.ID, Scope: report.ThreadID}, flow.SingleModal, protester.ID, struct{}{})
	if !b.acquire(click, sess, protestPendingMessage) {
		return
	}
	defer b.Committer.Abort(sess, flow.Failed)

	modalID := sess.ID("modal", 0)
	_ = sess.Advance(flow.AwaitingModal, b.Timeouts.ReportModal)
	if err := utils.RespondModal(b.Session, click, modalID.String(), "Protest: "+report.TargetName,
		utils.TextField{CustomID: "reason", Label: "Reason", Required: true, MaxLength: 200},
		utils.TextField{CustomID: "explanation", Label: "Explanation", Style: discordgo.TextInputParagraph, Required: true},
		utils.TextField{CustomID: "evidence", Label: "Evidence"},
	); err != nil {
		utils.BotErrorf("REPORT", "Opening protest modal in %s: %v", report.ThreadID, err)
		return
	}

	submitted, err := sess.Await(ctx, b.Gate, modalID)
	if err != nil {
		utils.BotDebugf("REPORT", "Protest modal of %s in %s abandoned: %v", protester.ID, report.ThreadID, err)
		_ = b.Committer.Expire(ctx, sess)
		return
	}

	values := utils.ModalValues(submitted)
	evidence := values["evidence"]
	if err := win.Update(func(s *protestState) {
		s.Protested = true
		s.Protester = protester.ID
		s.Evidence = evidence
	}); err != nil {
		_ = b.Committer.Fail(ctx, sess, b.reply(submitted, protestClosedMessage))
		return
	}
	_ = win.AdvanceUntil(flow.Protested, win.Deadline())

	err = b.Committer.Commit(ctx, sess,
		b.postProtest(report, win, protester, values["reason"], values["explanation"], evidence),
		b.disableProtestButton(report, win),
		b.reply(submitted, protestFiledMessage),
	)
	if err != nil {
		utils.BotErrorf("REPORT", "Filing protest in %s: %v", report.ThreadID, err)
		return
	}
	utils.BotLogf("REPORT", "%s protested report in thread %s", protester.ID, report.ThreadID)
}

func (b *Bot) postProtest(report *Report, win *flow.Session[protestState], protester *discordgo.User, reason, explanation, evidence string) flow.Effect {
	return func(context.Context) error {
		msg := &discordgo.MessageSend{
			Embeds: []*discordgo.MessageEmbed{utils.ProtestEmbed(report.TargetName, protester, reason, explanation)},
		}
		if btn, ok := evidenceButton(evidence, win.ID("evidence", protestEvidenceSeq)); ok {
			msg.Components = []discordgo.MessageComponent{utils.CreateActionRow(btn)}
		}
		_, err := b.Session.ChannelMessageSendComplex(report.ThreadID, msg)
		return err
	}
}

func (b *Bot) disableProtestButton(report *Report, win *flow.Session[protestState]) flow.Effect {
	return func(context.Context) error {
		if report.MessageID == "" {
			return nil
		}
		components := reportComponents(report, win, true)
		if _, err := b.Session.ChannelMessageEditComplex(&discordgo.MessageEdit{
			ID:         report.MessageID,
			Channel:    report.ThreadID,
			Components: &components,
		}); err != nil {
			utils.BotWarnf("REPORT", "Disabling protest button in %s: %v", report.ThreadID, err)
		}
		return nil
	}
}

func (b *Bot) archiveThread(threadID string) flow.Effect {
	return func(context.Context) error {
		archived := true
		if _, err := b.Session.ChannelEdit(threadID, &discordgo.ChannelEdit{Archived: &archived}); err != nil {
			utils.BotWarnf("REPORT", "Archiving thread %s: %v", threadID, err)
		}
		return nil
	}
}
