package database

import (
	"context"
	"sync"
	"time"

	"pitwall-go/models"
	"pitwall-go/utils"
)

type guildMember struct {
	userID  string
	guildID string
}

// MemoryStore keeps the ledger in process memory
type MemoryStore struct {
	mu            sync.Mutex
	startingChips int64
	nextID        int64
	users         map[string]*models.User
	guilds        map[string]*models.Guild
	members       map[guildMember]*models.UserGuild
}

func NewMemoryStore(startingChips int64) *MemoryStore {
	return &MemoryStore{
		startingChips: startingChips,
		users:         make(map[string]*models.User),
		guilds:        make(map[string]*models.Guild),
		members:       make(map[guildMember]*models.UserGuild),
	}
}

// ensureUser must be called with mu held
func (m *MemoryStore) ensureUser(userID, username, discriminator string, rename bool) *models.User {
	now := time.Now()
	u, ok := m.users[userID]
	if !ok {
		u = &models.User{
			UserID:        userID,
			Username:      unknownName(username),
			Discriminator: discriminator,
			Chips:         m.startingChips,
			OverallLevel:  1,
			CreatedAt:     now,
			UpdatedAt:     now,
		}
		m.users[userID] = u
		return u
	}
	if rename {
		u.Username = unknownName(username)
		u.Discriminator = discriminator
		u.UpdatedAt = now
	}
	return u
}

func (m *MemoryStore) EnsureUser(_ context.Context, userID, username, discriminator string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ensureUser(userID, username, discriminator, true)
	return nil
}

func (m *MemoryStore) GetUser(_ context.Context, userID string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[userID]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (m *MemoryStore) GetChips(_ context.Context, userID string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[userID]
	if !ok {
		return 0, ErrNotFound
	}
	return u.Chips, nil
}

func (m *MemoryStore) SetChips(_ context.Context, userID string, chips int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[userID]
	if !ok {
		return ErrNotFound
	}
	u.Chips = chips
	u.UpdatedAt = time.Now()
	return nil
}

func (m *MemoryStore) UpsertGuild(_ context.Context, guild models.Guild) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := time.Now()
	if existing, ok := m.guilds[guild.GuildID]; ok {
		guild.CreatedAt = existing.CreatedAt
	} else {
		guild.CreatedAt = now
	}
	guild.UpdatedAt = now
	m.guilds[guild.GuildID] = &guild
	return nil
}

// Guild returns a stored guild record
func (m *MemoryStore) Guild(guildID string) (models.Guild, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	g, ok := m.guilds[guildID]
	if !ok {
		return models.Guild{}, false
	}
	return *g, true
}

func (m *MemoryStore) GetUserGuild(_ context.Context, userID, guildID string) (*models.UserGuildStats, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ug, ok := m.members[guildMember{userID, guildID}]
	if !ok {
		return nil, ErrNotFound
	}
	u := m.users[userID]
	return &models.UserGuildStats{
		UserGuild:    *ug,
		Username:     u.Username,
		TotalXP:      u.TotalXP,
		OverallLevel: u.OverallLevel,
		Chips:        u.Chips,
	}, nil
}

func (m *MemoryStore) AddXP(_ context.Context, userID, guildID string, amount int64) (models.XPGain, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now()
	u := m.ensureUser(userID, "", "0", false)
	key := guildMember{userID, guildID}
	ug, ok := m.members[key]
	if !ok {
		m.nextID++
		ug = &models.UserGuild{
			ID:         m.nextID,
			UserID:     userID,
			GuildID:    guildID,
			GuildLevel: 1,
			JoinedAt:   now,
			CreatedAt:  now,
		}
		m.members[key] = ug
	}

	gain := models.XPGain{
		Amount:             amount,
		GuildLevelBefore:   ug.GuildLevel,
		OverallLevelBefore: u.OverallLevel,
	}

	ug.GuildXP += amount
	ug.GuildLevel = utils.LevelForXP(ug.GuildXP)
	ug.GuildMessages++
	ug.LastMessageAt = &now
	ug.UpdatedAt = now

	u.TotalXP += amount
	u.OverallLevel = utils.LevelForXP(u.TotalXP)
	u.UpdatedAt = now

	gain.GuildLevelAfter = ug.GuildLevel
	gain.OverallLevelAfter = u.OverallLevel
	return gain, nil
}

func (m *MemoryStore) Ping(context.Context) error {
	return nil
}

func (m *MemoryStore) Close() {}
