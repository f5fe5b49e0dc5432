package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("DISCORD_TOKEN", "token")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "postgres", cfg.DatabaseDriver)
	assert.Equal(t, "8080", cfg.Port)
	assert.EqualValues(t, StartingChips, cfg.StartingChips)
	assert.Equal(t, XPCooldown, cfg.XPCooldown)
	assert.Equal(t, "@every 90s", cfg.SweepSpec)
	assert.Equal(t, DefaultTimeouts(), cfg.Timeouts)
}

func TestLoadConfigOverrides(t *testing.T) {
	t.Setenv("DISCORD_TOKEN", "token")
	t.Setenv("DATABASE_DRIVER", "sqlite")
	t.Setenv("DATABASE_URL", "file:test.db")
	t.Setenv("FLOW_PROTEST_WINDOW", "10m")
	t.Setenv("XP_COOLDOWN", "5s")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "sqlite", cfg.DatabaseDriver)
	assert.Equal(t, 10*time.Minute, cfg.Timeouts.Protest)
	assert.Equal(t, ModalTimeout, cfg.Timeouts.Modal)
	assert.Equal(t, 5*time.Second, cfg.XPCooldown)
}

func TestLoadConfigRejects(t *testing.T) {
	t.Run("missing token", func(t *testing.T) {
		t.Setenv("DISCORD_TOKEN", "")
		_, err := LoadConfig()
		assert.Error(t, err)
	})
	t.Run("unknown driver", func(t *testing.T) {
		t.Setenv("DISCORD_TOKEN", "token")
		t.Setenv("DATABASE_DRIVER", "mongo")
		_, err := LoadConfig()
		assert.ErrorContains(t, err, "mongo")
	})
	t.Run("negative chips", func(t *testing.T) {
		t.Setenv("DISCORD_TOKEN", "token")
		t.Setenv("STARTING_CHIPS", "-1")
		_, err := LoadConfig()
		assert.Error(t, err)
	})
}
