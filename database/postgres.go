package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"pitwall-go/models"
	"pitwall-go/utils"
)

// PostgresStore is the ledger backed by a pgx connection pool
type PostgresStore struct {
	pool          *pgxpool.Pool
	startingChips int64
}

// NewPostgresStore opens the pool and ensures the schema exists
func NewPostgresStore(ctx context.Context, databaseURL string, startingChips int64) (*PostgresStore, error) {
	config, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database URL: %w", err)
	}

	config.MaxConns = 10
	config.MinConns = 2
	config.MaxConnLifetime = 45 * time.Minute
	config.MaxConnIdleTime = 5 * time.Minute
	config.HealthCheckPeriod = 30 * time.Second
	config.ConnConfig.RuntimeParams = map[string]string{
		"application_name":                    "pitwall-bot",
		"timezone":                            "UTC",
		"statement_timeout":                   "30s",
		"idle_in_transaction_session_timeout": "60s",
	}

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	conn, err := pool.Acquire(ctx)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to acquire connection: %w", err)
	}
	conn.Release()

	s := &PostgresStore{pool: pool, startingChips: startingChips}
	if err := s.createTables(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	utils.BotLogf("DATABASE", "Connected to PostgreSQL ledger")
	return s, nil
}

func (s *PostgresStore) createTables(ctx context.Context) error {
	query := `
	CREATE TABLE IF NOT EXISTS users (
		id TEXT PRIMARY KEY,
		username TEXT NOT NULL,
		discriminator TEXT NOT NULL DEFAULT '0',
		chips BIGINT NOT NULL DEFAULT 100,
		total_xp BIGINT NOT NULL DEFAULT 0,
		overall_level INTEGER NOT NULL DEFAULT 1,
		created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
	);
	CREATE TABLE IF NOT EXISTS guilds (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		owner_id TEXT NOT NULL,
		member_count INTEGER NOT NULL DEFAULT 0,
		created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
	);
	CREATE TABLE IF NOT EXISTS user_guilds (
		id BIGSERIAL PRIMARY KEY,
		user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		guild_id TEXT NOT NULL,
		guild_xp BIGINT NOT NULL DEFAULT 0,
		guild_level INTEGER NOT NULL DEFAULT 1,
		guild_messages BIGINT NOT NULL DEFAULT 0,
		joined_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
		last_message_at TIMESTAMPTZ,
		created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
		UNIQUE (user_id, guild_id)
	);
	CREATE INDEX IF NOT EXISTS idx_user_guilds_guild ON user_guilds(guild_id, guild_level DESC, guild_xp DESC);
	CREATE INDEX IF NOT EXISTS idx_users_overall ON users(overall_level DESC, total_xp DESC);`

	if _, err := s.pool.Exec(ctx, query); err != nil {
		return fmt.Errorf("failed to create ledger tables: %w", err)
	}
	return nil
}

func (s *PostgresStore) EnsureUser(ctx context.Context, userID, username, discriminator string) error {
	query := `
		INSERT INTO users (id, username, discriminator, chips)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO UPDATE
		SET username = EXCLUDED.username,
		    discriminator = EXCLUDED.discriminator,
		    updated_at = CURRENT_TIMESTAMP`
	if _, err := s.pool.Exec(ctx, query, userID, unknownName(username), discriminator, s.startingChips); err != nil {
		return fmt.Errorf("failed to ensure user: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetUser(ctx context.Context, userID string) (*models.User, error) {
	var u models.User
	err := s.pool.QueryRow(ctx, `
		SELECT id, username, discriminator, chips, total_xp, overall_level, created_at, updated_at
		FROM users WHERE id = $1`, userID).Scan(
		&u.UserID, &u.Username, &u.Discriminator, &u.Chips, &u.TotalXP, &u.OverallLevel, &u.CreatedAt, &u.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &u, nil
}

func (s *PostgresStore) GetChips(ctx context.Context, userID string) (int64, error) {
	var chips int64
	err := s.pool.QueryRow(ctx, `SELECT chips FROM users WHERE id = $1`, userID).Scan(&chips)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, ErrNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("failed to get chips: %w", err)
	}
	return chips, nil
}

func (s *PostgresStore) SetChips(ctx context.Context, userID string, chips int64) error {
	tag, err := s.pool.Exec(ctx, `UPDATE users SET chips = $2, updated_at = CURRENT_TIMESTAMP WHERE id = $1`, userID, chips)
	if err != nil {
		return fmt.Errorf("failed to update chips: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresStore) UpsertGuild(ctx context.Context, guild models.Guild) error {
	query := `
		INSERT INTO guilds (id, name, owner_id, member_count)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO UPDATE
		SET name = EXCLUDED.name,
		    owner_id = EXCLUDED.owner_id,
		    member_count = EXCLUDED.member_count,
		    updated_at = CURRENT_TIMESTAMP`
	if _, err := s.pool.Exec(ctx, query, guild.GuildID, guild.Name, guild.OwnerID, guild.MemberCount); err != nil {
		return fmt.Errorf("failed to upsert guild: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetUserGuild(ctx context.Context, userID, guildID string) (*models.UserGuildStats, error) {
	var st models.UserGuildStats
	err := s.pool.QueryRow(ctx, `
		SELECT ug.id, ug.user_id, ug.guild_id, ug.guild_xp, ug.guild_level, ug.guild_messages,
		       ug.joined_at, ug.last_message_at, ug.created_at, ug.updated_at,
		       u.username, u.total_xp, u.overall_level, u.chips
		FROM user_guilds ug
		JOIN users u ON ug.user_id = u.id
		WHERE ug.user_id = $1 AND ug.guild_id = $2`, userID, guildID).Scan(
		&st.ID, &st.UserID, &st.GuildID, &st.GuildXP, &st.GuildLevel, &st.GuildMessages,
		&st.JoinedAt, &st.LastMessageAt, &st.CreatedAt, &st.UpdatedAt,
		&st.Username, &st.TotalXP, &st.OverallLevel, &st.Chips,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user guild: %w", err)
	}
	return &st, nil
}

func (s *PostgresStore) AddXP(ctx context.Context, userID, guildID string, amount int64) (models.XPGain, error) {
	gain := models.XPGain{Amount: amount}

	err := pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `
			INSERT INTO users (id, username, discriminator, chips) VALUES ($1, 'Unknown', '0', $2)
			ON CONFLICT (id) DO NOTHING`, userID, s.startingChips); err != nil {
			return fmt.Errorf("failed to ensure user: %w", err)
		}
		if _, err := tx.Exec(ctx, `
			INSERT INTO user_guilds (user_id, guild_id) VALUES ($1, $2)
			ON CONFLICT (user_id, guild_id) DO NOTHING`, userID, guildID); err != nil {
			return fmt.Errorf("failed to ensure user guild: %w", err)
		}

		var guildXP int64
		if err := tx.QueryRow(ctx, `
			UPDATE user_guilds
			SET guild_xp = guild_xp + $3,
			    guild_messages = guild_messages + 1,
			    last_message_at = CURRENT_TIMESTAMP,
			    updated_at = CURRENT_TIMESTAMP
			WHERE user_id = $1 AND guild_id = $2
			RETURNING guild_xp, guild_level`, userID, guildID, amount).Scan(&guildXP, &gain.GuildLevelBefore); err != nil {
			return fmt.Errorf("failed to add guild xp: %w", err)
		}
		gain.GuildLevelAfter = utils.LevelForXP(guildXP)
		if _, err := tx.Exec(ctx, `UPDATE user_guilds SET guild_level = $3 WHERE user_id = $1 AND guild_id = $2`,
			userID, guildID, gain.GuildLevelAfter); err != nil {
			return fmt.Errorf("failed to update guild level: %w", err)
		}

		var totalXP int64
		if err := tx.QueryRow(ctx, `
			UPDATE users SET total_xp = total_xp + $2, updated_at = CURRENT_TIMESTAMP
			WHERE id = $1
			RETURNING total_xp, overall_level`, userID, amount).Scan(&totalXP, &gain.OverallLevelBefore); err != nil {
			return fmt.Errorf("failed to add overall xp: %w", err)
		}
		gain.OverallLevelAfter = utils.LevelForXP(totalXP)
		if _, err := tx.Exec(ctx, `UPDATE users SET overall_level = $2 WHERE id = $1`, userID, gain.OverallLevelAfter); err != nil {
			return fmt.Errorf("failed to update overall level: %w", err)
		}
		return nil
	})
	if err != nil {
		return models.XPGain{}, err
	}
	return gain, nil
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

func (s *PostgresStore) Close() {
	s.pool.Close()
}
