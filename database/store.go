// Package database holds the chips and XP ledger behind the bot.
package database

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"pitwall-go/models"
	"pitwall-go/utils"
)

// ErrNotFound is returned when a ledger record does not exist
var ErrNotFound = errors.New("record not found")

// Store is the ledger consumed by the command flows
type Store interface {
	// EnsureUser creates the user with the starting balance, or refreshes its name
	EnsureUser(ctx context.Context, userID, username, discriminator string) error
	GetUser(ctx context.Context, userID string) (*models.User, error)
	GetChips(ctx context.Context, userID string) (int64, error)
	SetChips(ctx context.Context, userID string, chips int64) error
	UpsertGuild(ctx context.Context, guild models.Guild) error
	GetUserGuild(ctx context.Context, userID, guildID string) (*models.UserGuildStats, error)
	// AddXP grants amount to both the guild and overall totals and counts one message
	AddXP(ctx context.Context, userID, guildID string, amount int64) (models.XPGain, error)
	Ping(ctx context.Context) error
	Close()
}

// Open connects the ledger selected by driver
func Open(ctx context.Context, driver, url string, startingChips int64) (Store, error) {
	switch strings.ToLower(driver) {
	case "postgres":
		if url == "" {
			return nil, fmt.Errorf("DATABASE_URL is required for the postgres driver")
		}
		return NewPostgresStore(ctx, url, startingChips)
	case "sqlite":
		if url == "" {
			url = "pitwall.db"
		}
		return NewSQLiteStore(ctx, url, startingChips)
	case "memory":
		utils.BotWarnf("DATABASE", "Using in-memory ledger, balances are lost on restart")
		return NewMemoryStore(startingChips), nil
	default:
		return nil, fmt.Errorf("unknown database driver %q", driver)
	}
}

func unknownName(name string) string {
	if strings.TrimSpace(name) == "" {
		return "Unknown"
	}
	return name
}
