package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"pitwall-go/models"
	"pitwall-go/utils"
)

// SQLiteStore is the embedded ledger. Timestamps are stored as unix milliseconds.
type SQLiteStore struct {
	db            *sql.DB
	startingChips int64
}

func toMillis(value time.Time) int64 {
	return value.UTC().UnixMilli()
}

func fromMillis(value int64) time.Time {
	return time.UnixMilli(value).UTC()
}

// NewSQLiteStore opens (creating if needed) the database file at path
func NewSQLiteStore(ctx context.Context, path string, startingChips int64) (*SQLiteStore, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	dsn := filepath.Clean(path) + "?_pragma=foreign_keys(ON)&_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	// one writer at a time
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}

	s := &SQLiteStore{db: db, startingChips: startingChips}
	if err := s.createTables(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}

	utils.BotLogf("DATABASE", "Opened SQLite ledger at %s", path)
	return s, nil
}

func (s *SQLiteStore) createTables(ctx context.Context) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id TEXT PRIMARY KEY,
			username TEXT NOT NULL,
			discriminator TEXT NOT NULL DEFAULT '0',
			chips INTEGER NOT NULL DEFAULT 100,
			total_xp INTEGER NOT NULL DEFAULT 0,
			overall_level INTEGER NOT NULL DEFAULT 1,
			created_at INTEGER NOT NULL,
			updated_at INTEGER NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS guilds (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			owner_id TEXT NOT NULL,
			member_count INTEGER NOT NULL DEFAULT 0,
			created_at INTEGER NOT NULL,
			updated_at INTEGER NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS user_guilds (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			guild_id TEXT NOT NULL,
			guild_xp INTEGER NOT NULL DEFAULT 0,
			guild_level INTEGER NOT NULL DEFAULT 1,
			guild_messages INTEGER NOT NULL DEFAULT 0,
			joined_at INTEGER NOT NULL,
			last_message_at INTEGER,
			created_at INTEGER NOT NULL,
			updated_at INTEGER NOT NULL,
			UNIQUE (user_id, guild_id)
		)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to create ledger tables: %w", err)
		}
	}
	return nil
}

func (s *SQLiteStore) EnsureUser(ctx context.Context, userID, username, discriminator string) error {
	now := toMillis(time.Now())
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO users (id, username, discriminator, chips, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE
		SET username = excluded.username,
		    discriminator = excluded.discriminator,
		    updated_at = excluded.updated_at`,
		userID, unknownName(username), discriminator, s.startingChips, now, now)
	if err != nil {
		return fmt.Errorf("failed to ensure user: %w", err)
	}
	return nil
}

func (s *SQLiteStore) GetUser(ctx context.Context, userID string) (*models.User, error) {
	var u models.User
	var created, updated int64
	err := s.db.QueryRowContext(ctx, `
		SELECT id, username, discriminator, chips, total_xp, overall_level, created_at, updated_at
		FROM users WHERE id = ?`, userID).Scan(
		&u.UserID, &u.Username, &u.Discriminator, &u.Chips, &u.TotalXP, &u.OverallLevel, &created, &updated,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	u.CreatedAt, u.UpdatedAt = fromMillis(created), fromMillis(updated)
	return &u, nil
}

func (s *SQLiteStore) GetChips(ctx context.Context, userID string) (int64, error) {
	var chips int64
	err := s.db.QueryRowContext(ctx, `SELECT chips FROM users WHERE id = ?`, userID).Scan(&chips)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, ErrNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("failed to get chips: %w", err)
	}
	return chips, nil
}

func (s *SQLiteStore) SetChips(ctx context.Context, userID string, chips int64) error {
	res, err := s.db.ExecContext(ctx, `UPDATE users SET chips = ?, updated_at = ? WHERE id = ?`,
		chips, toMillis(time.Now()), userID)
	if err != nil {
		return fmt.Errorf("failed to update chips: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *SQLiteStore) UpsertGuild(ctx context.Context, guild models.Guild) error {
	now := toMillis(time.Now())
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO guilds (id, name, owner_id, member_count, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE
		SET name = excluded.name,
		    owner_id = excluded.owner_id,
		    member_count = excluded.member_count,
		    updated_at = excluded.updated_at`,
		guild.GuildID, guild.Name, guild.OwnerID, guild.MemberCount, now, now)
	if err != nil {
		return fmt.Errorf("failed to upsert guild: %w", err)
	}
	return nil
}

func (s *SQLiteStore) GetUserGuild(ctx context.Context, userID, guildID string) (*models.UserGuildStats, error) {
	var st models.UserGuildStats
	var joined, created, updated int64
	var lastMessage sql.NullInt64
	err := s.db.QueryRowContext(ctx, `
		SELECT ug.id, ug.user_id, ug.guild_id, ug.guild_xp, ug.guild_level, ug.guild_messages,
		       ug.joined_at, ug.last_message_at, ug.created_at, ug.updated_at,
		       u.username, u.total_xp, u.overall_level, u.chips
		FROM user_guilds ug
		JOIN users u ON ug.user_id = u.id
		WHERE ug.user_id = ? AND ug.guild_id = ?`, userID, guildID).Scan(
		&st.ID, &st.UserID, &st.GuildID, &st.GuildXP, &st.GuildLevel, &st.GuildMessages,
		&joined, &lastMessage, &created, &updated,
		&st.Username, &st.TotalXP, &st.OverallLevel, &st.Chips,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user guild: %w", err)
	}
	st.JoinedAt, st.CreatedAt, st.UpdatedAt = fromMillis(joined), fromMillis(created), fromMillis(updated)
	if lastMessage.Valid {
		at := fromMillis(lastMessage.Int64)
		st.LastMessageAt = &at
	}
	return &st, nil
}

func (s *SQLiteStore) AddXP(ctx context.Context, userID, guildID string, amount int64) (gain models.XPGain, err error) {
	gain.Amount = amount
	now := toMillis(time.Now())

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return models.XPGain{}, fmt.Errorf("failed to begin xp transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, `
		INSERT INTO users (id, username, discriminator, chips, created_at, updated_at)
		VALUES (?, 'Unknown', '0', ?, ?, ?)
		ON CONFLICT (id) DO NOTHING`, userID, s.startingChips, now, now); err != nil {
		return models.XPGain{}, fmt.Errorf("failed to ensure user: %w", err)
	}
	if _, err = tx.ExecContext(ctx, `
		INSERT INTO user_guilds (user_id, guild_id, joined_at, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (user_id, guild_id) DO NOTHING`, userID, guildID, now, now, now); err != nil {
		return models.XPGain{}, fmt.Errorf("failed to ensure user guild: %w", err)
	}

	var guildXP int64
	if err = tx.QueryRowContext(ctx, `
		SELECT guild_xp, guild_level FROM user_guilds WHERE user_id = ? AND guild_id = ?`,
		userID, guildID).Scan(&guildXP, &gain.GuildLevelBefore); err != nil {
		return models.XPGain{}, fmt.Errorf("failed to read guild xp: %w", err)
	}
	guildXP += amount
	gain.GuildLevelAfter = utils.LevelForXP(guildXP)
	if _, err = tx.ExecContext(ctx, `
		UPDATE user_guilds
		SET guild_xp = ?, guild_level = ?, guild_messages = guild_messages + 1,
		    last_message_at = ?, updated_at = ?
		WHERE user_id = ? AND guild_id = ?`,
		guildXP, gain.GuildLevelAfter, now, now, userID, guildID); err != nil {
		return models.XPGain{}, fmt.Errorf("failed to add guild xp: %w", err)
	}

	var totalXP int64
	if err = tx.QueryRowContext(ctx, `SELECT total_xp, overall_level FROM users WHERE id = ?`, userID).
		Scan(&totalXP, &gain.OverallLevelBefore); err != nil {
		return models.XPGain{}, fmt.Errorf("failed to read overall xp: %w", err)
	}
	totalXP += amount
	gain.OverallLevelAfter = utils.LevelForXP(totalXP)
	if _, err = tx.ExecContext(ctx, `UPDATE users SET total_xp = ?, overall_level = ?, updated_at = ? WHERE id = ?`,
		totalXP, gain.OverallLevelAfter, now, userID); err != nil {
		return models.XPGain{}, fmt.Errorf("failed to add overall xp: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return models.XPGain{}, fmt.Errorf("failed to commit xp transaction: %w", err)
	}
	return gain, nil
}

func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *SQLiteStore) Close() {
	if err := s.db.Close(); err != nil {
		utils.BotWarnf("DATABASE", "Closing SQLite ledger: %v", err)
	}
}
