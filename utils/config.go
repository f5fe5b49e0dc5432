package utils

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Timeouts holds the wall-clock window of every flow step
type Timeouts struct {
	Select      time.Duration `env:"FLOW_SELECT_TIMEOUT" envDefault:"120s"`
	Modal       time.Duration `env:"FLOW_MODAL_TIMEOUT" envDefault:"60s"`
	ReportModal time.Duration `env:"FLOW_REPORT_MODAL_TIMEOUT" envDefault:"600s"`
	Protest     time.Duration `env:"FLOW_PROTEST_WINDOW" envDefault:"72h"`
	Action      time.Duration `env:"FLOW_ACTION_TIMEOUT" envDefault:"60s"`
}

// DefaultTimeouts returns the production step windows
func DefaultTimeouts() Timeouts {
	return Timeouts{
		Select:      SelectTimeout,
		Modal:       ModalTimeout,
		ReportModal: ReportModalTimeout,
		Protest:     ProtestWindow,
		Action:      ActionTimeout,
	}
}

// Config is the process configuration read from the environment
type Config struct {
	Token    string `env:"DISCORD_TOKEN,required,notEmpty"`
	ClientID string `env:"DISCORD_CLIENT_ID"`
	GuildID  string `env:"DISCORD_GUILD_ID"`

	DatabaseDriver string `env:"DATABASE_DRIVER" envDefault:"postgres"`
	DatabaseURL    string `env:"DATABASE_URL"`

	Port          string        `env:"PORT" envDefault:"8080"`
	StartingChips int64         `env:"STARTING_CHIPS" envDefault:"100"`
	XPCooldown    time.Duration `env:"XP_COOLDOWN" envDefault:"60s"`
	SweepSpec     string        `env:"SESSION_SWEEP_SPEC" envDefault:"@every 90s"`

	Timeouts Timeouts
}

// LoadEnvFile loads a .env file into the process environment if one exists
func LoadEnvFile(paths ...string) {
	if err := godotenv.Load(paths...); err != nil {
		BotLogf("STARTUP", "No .env file found, using system environment variables")
	}
}

// LoadConfig parses the environment into a Config
func LoadConfig() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}

	switch cfg.DatabaseDriver {
	case "postgres", "sqlite", "memory":
	default:
		return Config{}, fmt.Errorf("unsupported DATABASE_DRIVER %q", cfg.DatabaseDriver)
	}

	if cfg.StartingChips < 0 {
		return Config{}, fmt.Errorf("STARTING_CHIPS must not be negative")
	}

	return cfg, nil
}
