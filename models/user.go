package models

import (
	"time"
)

// User represents a Discord user in the ledger
type User struct {
	UserID        string    `json:"id"`
	Username      string    `json:"username"`
	Discriminator string    `json:"discriminator"`
	Chips         int64     `json:"chips"`
	TotalXP       int64     `json:"total_xp"`
	OverallLevel  int       `json:"overall_level"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// Guild represents a server the bot has joined
type Guild struct {
	GuildID     string    `json:"id"`
	Name        string    `json:"name"`
	OwnerID     string    `json:"owner_id"`
	MemberCount int       `json:"member_count"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// UserGuild holds per-guild progress for a user
type UserGuild struct {
	ID            int64      `json:"id"`
	UserID        string     `json:"user_id"`
	GuildID       string     `json:"guild_id"`
	GuildXP       int64      `json:"guild_xp"`
	GuildLevel    int        `json:"guild_level"`
	GuildMessages int64      `json:"guild_messages"`
	JoinedAt      time.Time  `json:"joined_at"`
	LastMessageAt *time.Time `json:"last_message_at"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// UserGuildStats is a UserGuild joined with the owning user's overall totals
type UserGuildStats struct {
	UserGuild
	Username     string `json:"username"`
	TotalXP      int64  `json:"total_xp"`
	OverallLevel int    `json:"overall_level"`
	Chips        int64  `json:"chips"`
}

// XPGain describes the level state around a single XP grant
type XPGain struct {
	Amount             int64
	GuildLevelBefore   int
	GuildLevelAfter    int
	OverallLevelBefore int
	OverallLevelAfter  int
}

// GuildLevelUp reports whether the grant crossed a guild level boundary
func (g XPGain) GuildLevelUp() bool {
	return g.GuildLevelAfter > g.GuildLevelBefore
}

// OverallLevelUp reports whether the grant crossed an overall level boundary
func (g XPGain) OverallLevelUp() bool {
	return g.OverallLevelAfter > g.OverallLevelBefore
}
