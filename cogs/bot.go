package cogs

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"github.com/bwmarrin/discordgo"

	"pitwall-go/database"
	"pitwall-go/flow"
	"pitwall-go/utils"
)

// Bot wires the command flows to the gateway session and the ledger
type Bot struct {
	Session   utils.Session
	Store     database.Store
	Gate      *flow.Gate
	Registry  *flow.Registry
	Committer *flow.Committer
	Cooldowns *utils.Cooldowns
	Roles     *utils.RoleCache
	Timeouts  utils.Timeouts

	// NoticeLifetime is how long the muted-author notice stays up
	NoticeLifetime time.Duration

	mu     sync.Mutex
	selfID string
	rng    *rand.Rand
	deck   func() *utils.Deck

	handlers map[string]func(ctx context.Context, i *discordgo.InteractionCreate)
}

// Options configures NewBot
type Options struct {
	Timeouts   utils.Timeouts
	XPCooldown time.Duration
	// Registry may be shared with a sweeper; a fresh one is created when nil
	Registry *flow.Registry
	Rand     *rand.Rand
	// Deck deals the cards of a new blackjack game; a shuffled deck when nil
	Deck func() *utils.Deck
}

func NewBot(s utils.Session, store database.Store, opts Options) *Bot {
	if opts.Registry == nil {
		opts.Registry = flow.NewRegistry(time.Minute)
	}
	if opts.Rand == nil {
		opts.Rand = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if opts.Timeouts == (utils.Timeouts{}) {
		opts.Timeouts = utils.DefaultTimeouts()
	}

	b := &Bot{
		Session:        s,
		Store:          store,
		Registry:       opts.Registry,
		Committer:      flow.NewCommitter(opts.Registry, store),
		Cooldowns:      utils.NewCooldowns(opts.XPCooldown),
		Roles:          utils.NewRoleCache(10 * time.Minute),
		Timeouts:       opts.Timeouts,
		NoticeLifetime: utils.MuteNoticeLifetime,
		rng:            opts.Rand,
		deck:           opts.Deck,
	}
	b.Gate = flow.NewGate(b.onReject)

	b.handlers = map[string]func(context.Context, *discordgo.InteractionCreate){
		"mute":       b.handleMute,
		"unmute":     b.handleUnmute,
		"report":     b.handleReport,
		"multiquote": b.handleMultiQuote,
		"quote":      b.handleQuote,
		"blackjack":  b.handleBlackjack,
		"purge":      b.handlePurge,
		"level":      b.handleLevel,
		"balance":    b.handleBalance,
	}
	return b
}

// SetSelfID records the bot's own user id once the gateway is ready
func (b *Bot) SetSelfID(id string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.selfID = id
}

func (b *Bot) SelfID() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.selfID
}

func (b *Bot) randomXP() int64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return int64(utils.MinXPPerMessage + b.rng.Intn(utils.MaxXPPerMessage-utils.MinXPPerMessage+1))
}

// newDeck returns a deck for one game, seeded from the bot rng
func (b *Bot) newDeck() *utils.Deck {
	if b.deck != nil {
		return b.deck()
	}
	b.mu.Lock()
	seed := b.rng.Int63()
	b.mu.Unlock()
	return utils.NewDeck(rand.New(rand.NewSource(seed)))
}

// HandleInteraction routes slash commands to their flow and everything else to the waiting flows
func (b *Bot) HandleInteraction(ctx context.Context, i *discordgo.InteractionCreate) {
	switch i.Type {
	case discordgo.InteractionApplicationCommand:
		name := i.ApplicationCommandData().Name
		handler, ok := b.handlers[name]
		if !ok {
			utils.BotWarnf("DISCORD_API", "Unknown command %q", name)
			return
		}
		start := time.Now()
		handler(ctx, i)
		utils.BotDebugf("FLOW", "/%s finished after %s", name, time.Since(start).Round(time.Millisecond))

	case discordgo.InteractionMessageComponent, discordgo.InteractionModalSubmit:
		if b.Gate.Publish(i) {
			return
		}
		utils.BotDebugf("FLOW", "No flow waiting for %s", utils.InteractionCustomID(i))
		_ = utils.RespondEphemeral(b.Session, i, utils.ExpiredComponentMessage)
	}
}

func (b *Bot) onReject(i *discordgo.InteractionCreate, reason error) {
	_ = utils.RespondEphemeral(b.Session, i, flow.UserMessage(reason, utils.NotYourInteractionMessage))
}

// acquire registers t or tells the user a flow of the same kind is already running
func (b *Bot) acquire(i *discordgo.InteractionCreate, t flow.Tracked, notice string) bool {
	if err := b.Registry.TryAcquire(t); err != nil {
		utils.BotDebugf("FLOW", "Duplicate session %s", t.Key())
		_ = utils.RespondEphemeral(b.Session, i, notice)
		return false
	}
	return true
}

// editReply returns an effect replacing the text of the original command reply
func (b *Bot) editReply(i *discordgo.InteractionCreate, content string) flow.Effect {
	return func(context.Context) error {
		return utils.EditOriginalContent(b.Session, i, content)
	}
}

// reply returns an effect answering i privately
func (b *Bot) reply(i *discordgo.InteractionCreate, content string) flow.Effect {
	return func(context.Context) error {
		return utils.RespondEphemeral(b.Session, i, content)
	}
}

// failWith answers i with the user-facing part of err and closes t as failed
func (b *Bot) failWith(ctx context.Context, area string, t flow.Terminable, i *discordgo.InteractionCreate, err error) {
	utils.BotErrorf(area, "Session %s failed: %v", t.Key(), err)
	if ferr := b.Committer.Fail(ctx, t, b.reply(i, flow.UserMessage(err, utils.GenericFailureMessage))); ferr != nil {
		utils.BotErrorf(area, "Reporting failure for %s: %v", t.Key(), ferr)
	}
}

func guildOnly(b *Bot, i *discordgo.InteractionCreate) bool {
	if i.GuildID == "" {
		_ = utils.RespondEphemeral(b.Session, i, "This command can only be used in a server.")
		return false
	}
	return true
}

// selectedUser returns the user picked in a user select menu
func selectedUser(i *discordgo.InteractionCreate) (*discordgo.User, *discordgo.Member) {
	data := i.MessageComponentData()
	if len(data.Values) == 0 {
		return nil, nil
	}
	id := data.Values[0]
	user := data.Resolved.Users[id]
	member := data.Resolved.Members[id]
	if user == nil {
		user = &discordgo.User{ID: id, Username: id}
	}
	return user, member
}
