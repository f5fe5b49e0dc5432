package cogs

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strconv"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/require"

	"pitwall-go/database"
	"pitwall-go/utils"
)

var interactionSeq atomic.Int64

type recordedResponse struct {
	InteractionID string
	Response      *discordgo.InteractionResponse
}

type sentMessage struct {
	ChannelID string
	Message   *discordgo.MessageSend
}

// fakeSession records every REST call a flow makes
type fakeSession struct {
	mu sync.Mutex

	responses     []recordedResponse
	edits         []*discordgo.WebhookEdit
	followups     []*discordgo.WebhookParams
	sent          []sentMessage
	messageEdits  []*discordgo.MessageEdit
	deleted       []string
	bulkDeleted   [][]string
	channelEdits  []*discordgo.ChannelEdit
	threads       []string
	threadMembers []string
	roleAdds      []string
	roleRemoves   []string
	timeouts      []*time.Time
	createdRoles  []*discordgo.RoleParams

	history   []*discordgo.Message
	members   map[string]*discordgo.Member
	roles     []*discordgo.Role
	deleteErr map[string]error
	threadErr error
	nextID    int
}

var _ utils.Session = (*fakeSession)(nil)

func newFakeSession() *fakeSession {
	return &fakeSession{
		members:   map[string]*discordgo.Member{},
		deleteErr: map[string]error{},
	}
}

func (f *fakeSession) id(prefix string) string {
	f.nextID++
	return prefix + strconv.Itoa(f.nextID)
}

func (f *fakeSession) InteractionRespond(i *discordgo.Interaction, resp *discordgo.InteractionResponse, _ ...discordgo.RequestOption) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.responses = append(f.responses, recordedResponse{InteractionID: i.ID, Response: resp})
	return nil
}

func (f *fakeSession) InteractionResponseEdit(_ *discordgo.Interaction, edit *discordgo.WebhookEdit, _ ...discordgo.RequestOption) (*discordgo.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.edits = append(f.edits, edit)
	return &discordgo.Message{}, nil
}

func (f *fakeSession) FollowupMessageCreate(_ *discordgo.Interaction, _ bool, data *discordgo.WebhookParams, _ ...discordgo.RequestOption) (*discordgo.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.followups = append(f.followups, data)
	return &discordgo.Message{}, nil
}

func (f *fakeSession) ChannelMessageSend(channelID, content string, _ ...discordgo.RequestOption) (*discordgo.Message, error) {
	return f.ChannelMessageSendComplex(channelID, &discordgo.MessageSend{Content: content})
}

func (f *fakeSession) ChannelMessageSendComplex(channelID string, data *discordgo.MessageSend, _ ...discordgo.RequestOption) (*discordgo.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, sentMessage{ChannelID: channelID, Message: data})
	return &discordgo.Message{ID: f.id("m"), ChannelID: channelID, Content: data.Content}, nil
}

func (f *fakeSession) ChannelMessageEditComplex(m *discordgo.MessageEdit, _ ...discordgo.RequestOption) (*discordgo.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.messageEdits = append(f.messageEdits, m)
	return &discordgo.Message{ID: m.ID, ChannelID: m.Channel}, nil
}

func (f *fakeSession) ChannelMessageDelete(_, messageID string, _ ...discordgo.RequestOption) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.deleteErr[messageID]; err != nil {
		return err
	}
	f.deleted = append(f.deleted, messageID)
	return nil
}

func (f *fakeSession) ChannelMessagesBulkDelete(_ string, messages []string, _ ...discordgo.RequestOption) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.bulkDeleted = append(f.bulkDeleted, messages)
	return nil
}

// ChannelMessages pages through history, which is ordered newest first
func (f *fakeSession) ChannelMessages(_ string, limit int, beforeID, _, _ string, _ ...discordgo.RequestOption) ([]*discordgo.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	start := 0
	if beforeID != "" {
		start = len(f.history)
		for idx, m := range f.history {
			if m.ID == beforeID {
				start = idx + 1
				break
			}
		}
	}
	end := min(start+limit, len(f.history))
	return f.history[start:end], nil
}

func (f *fakeSession) ThreadStart(channelID, name string, _ discordgo.ChannelType, _ int, _ ...discordgo.RequestOption) (*discordgo.Channel, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.threadErr != nil {
		return nil, f.threadErr
	}
	f.threads = append(f.threads, name)
	return &discordgo.Channel{ID: "thread-" + channelID, Name: name}, nil
}

func (f *fakeSession) ThreadMemberAdd(_, memberID string, _ ...discordgo.RequestOption) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.threadMembers = append(f.threadMembers, memberID)
	return nil
}

func (f *fakeSession) ChannelEdit(channelID string, data *discordgo.ChannelEdit, _ ...discordgo.RequestOption) (*discordgo.Channel, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.channelEdits = append(f.channelEdits, data)
	return &discordgo.Channel{ID: channelID}, nil
}

func (f *fakeSession) GuildMember(_, userID string, _ ...discordgo.RequestOption) (*discordgo.Member, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	m, ok := f.members[userID]
	if !ok {
		return nil, errors.New("HTTP 404 Not Found, Unknown Member")
	}
	return m, nil
}

func (f *fakeSession) GuildRoles(string, ...discordgo.RequestOption) ([]*discordgo.Role, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]*discordgo.Role(nil), f.roles...), nil
}

func (f *fakeSession) GuildRoleCreate(_ string, data *discordgo.RoleParams, _ ...discordgo.RequestOption) (*discordgo.Role, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	role := &discordgo.Role{ID: f.id("role"), Name: data.Name}
	f.roles = append(f.roles, role)
	f.createdRoles = append(f.createdRoles, data)
	return role, nil
}

func (f *fakeSession) GuildMemberRoleAdd(_, userID, roleID string, _ ...discordgo.RequestOption) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.roleAdds = append(f.roleAdds, userID+"/"+roleID)
	return nil
}

func (f *fakeSession) GuildMemberRoleRemove(_, userID, roleID string, _ ...discordgo.RequestOption) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.roleRemoves = append(f.roleRemoves, userID+"/"+roleID)
	return nil
}

func (f *fakeSession) GuildMemberTimeout(_, _ string, until *time.Time, _ ...discordgo.RequestOption) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.timeouts = append(f.timeouts, until)
	return nil
}

// responseTo returns the response recorded for an interaction
func (f *fakeSession) responseTo(i *discordgo.InteractionCreate) *discordgo.InteractionResponse {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.responses {
		if r.InteractionID == i.ID {
			return r.Response
		}
	}
	return nil
}

func (f *fakeSession) editCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.edits)
}

func (f *fakeSession) lastEditContent() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.edits) == 0 || f.edits[len(f.edits)-1].Content == nil {
		return ""
	}
	return *f.edits[len(f.edits)-1].Content
}

func (f *fakeSession) sentContents() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, 0, len(f.sent))
	for _, s := range f.sent {
		out = append(out, s.Message.Content)
	}
	return out
}

func (f *fakeSession) sentAt(idx int) (sentMessage, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if idx >= len(f.sent) {
		return sentMessage{}, false
	}
	return f.sent[idx], true
}

func newInteraction(typ discordgo.InteractionType, userID string, data discordgo.InteractionData) *discordgo.InteractionCreate {
	return &discordgo.InteractionCreate{Interaction: &discordgo.Interaction{
		ID:             fmt.Sprintf("i%d", interactionSeq.Add(1)),
		Type:           typ,
		GuildID:        "g1",
		ChannelID:      "c1",
		AppPermissions: discordgo.PermissionManageRoles | discordgo.PermissionModerateMembers,
		Member:         &discordgo.Member{User: &discordgo.User{ID: userID, Username: "user-" + userID}},
		Data:           data,
	}}
}

func command(name, userID string, options ...*discordgo.ApplicationCommandInteractionDataOption) *discordgo.InteractionCreate {
	return newInteraction(discordgo.InteractionApplicationCommand, userID, discordgo.ApplicationCommandInteractionData{
		Name:    name,
		Options: options,
	})
}

func intOption(name string, v int64) *discordgo.ApplicationCommandInteractionDataOption {
	return &discordgo.ApplicationCommandInteractionDataOption{
		Name:  name,
		Type:  discordgo.ApplicationCommandOptionInteger,
		Value: float64(v),
	}
}

func click(customID, userID string) *discordgo.InteractionCreate {
	return newInteraction(discordgo.InteractionMessageComponent, userID, discordgo.MessageComponentInteractionData{
		CustomID:      customID,
		ComponentType: discordgo.ButtonComponent,
	})
}

func pickUser(customID, userID string, picked *discordgo.User) *discordgo.InteractionCreate {
	return newInteraction(discordgo.InteractionMessageComponent, userID, discordgo.MessageComponentInteractionData{
		CustomID:      customID,
		ComponentType: discordgo.UserSelectMenuComponent,
		Values:        []string{picked.ID},
		Resolved: discordgo.MessageComponentInteractionDataResolved{
			Users: map[string]*discordgo.User{picked.ID: picked},
		},
	})
}

func submit(customID, userID string, values map[string]string) *discordgo.InteractionCreate {
	var rows []discordgo.MessageComponent
	for k, v := range values {
		rows = append(rows, &discordgo.ActionsRow{Components: []discordgo.MessageComponent{
			&discordgo.TextInput{CustomID: k, Value: v},
		}})
	}
	return newInteraction(discordgo.InteractionModalSubmit, userID, discordgo.ModalSubmitInteractionData{
		CustomID:   customID,
		Components: rows,
	})
}

// componentIDs lists the custom ids of every button and select in rows, in order
func componentIDs(rows []discordgo.MessageComponent) []string {
	var ids []string
	for _, row := range rows {
		ar, ok := row.(discordgo.ActionsRow)
		if !ok {
			continue
		}
		for _, c := range ar.Components {
			switch v := c.(type) {
			case discordgo.Button:
				if v.CustomID != "" {
					ids = append(ids, v.CustomID)
				}
			case discordgo.SelectMenu:
				ids = append(ids, v.CustomID)
			}
		}
	}
	return ids
}

func fastTimeouts() utils.Timeouts {
	return utils.Timeouts{
		Select:      time.Second,
		Modal:       time.Second,
		ReportModal: time.Second,
		Protest:     time.Second,
		Action:      time.Second,
	}
}

func newTestBot(t *testing.T, f *fakeSession, opts Options) (*Bot, *database.MemoryStore) {
	t.Helper()
	if opts.Timeouts == (utils.Timeouts{}) {
		opts.Timeouts = fastTimeouts()
	}
	if opts.Rand == nil {
		opts.Rand = rand.New(rand.NewSource(1))
	}
	store := database.NewMemoryStore(100)
	b := NewBot(f, store, opts)
	b.SetSelfID("bot")
	return b, store
}

// run starts a command flow and returns a channel closed when the handler returns
func run(b *Bot, i *discordgo.InteractionCreate) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)
		b.HandleInteraction(context.Background(), i)
	}()
	return done
}

func waitDone(t *testing.T, done <-chan struct{}) {
	t.Helper()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("flow did not finish")
	}
}

func waitResponse(t *testing.T, f *fakeSession, i *discordgo.InteractionCreate) *discordgo.InteractionResponse {
	t.Helper()
	require.Eventually(t, func() bool { return f.responseTo(i) != nil }, 2*time.Second, 5*time.Millisecond)
	return f.responseTo(i)
}

// waitArmed waits until the gate has n listeners
func waitArmed(t *testing.T, b *Bot, n int) {
	t.Helper()
	require.Eventually(t, func() bool { return b.Gate.Pending() == n }, 2*time.Second, 5*time.Millisecond)
}
