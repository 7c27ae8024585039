package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config keeps runtime settings for the planner.
type Config struct {
	TelegramToken  string `yaml:"telegram_token" env:"TELEGRAM_TOKEN"`
	OwnerChatID    int64  `yaml:"owner_chat_id" env:"OWNER_CHAT_ID"`
	DatabaseURL    string `yaml:"database_url" env:"DATABASE_URL" env-default:"taskflow.db"`
	LogLevel       string `yaml:"log_level" env:"LOG_LEVEL" env-default:"info"`
	LogDevelopment bool   `yaml:"log_development" env:"LOG_DEVELOPMENT" env-default:"false"`
	Timezone       string `yaml:"timezone" env:"TIMEZONE" env-default:"Local"`
	WeekStart      string `yaml:"week_start" env:"WEEK_START" env-default:"sunday"`
}

// Load reads configuration from the YAML file at path, falling back to
// environment variables alone when the file does not exist.
func Load(path string) (Config, error) {
	var cfg Config

	if path == "" {
		if err := cleanenv.ReadEnv(&cfg); err != nil {
			return cfg, fmt.Errorf("read env: %w", err)
		}
	} else if err := cleanenv.ReadConfig(path, &cfg); err != nil {
		var pe *os.PathError
		if !errors.As(err, &pe) {
			return cfg, fmt.Errorf("read config %q: %w", path, err)
		}
		if err := cleanenv.ReadEnv(&cfg); err != nil {
			return cfg, fmt.Errorf("read env: %w", err)
		}
	}

	cfg.TelegramToken = strings.TrimSpace(cfg.TelegramToken)
	cfg.DatabaseURL = strings.TrimSpace(cfg.DatabaseURL)
	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = "taskflow.db"
	}

	if _, err := cfg.Location(); err != nil {
		return cfg, err
	}
	if _, err := cfg.FirstWeekday(); err != nil {
		return cfg, err
	}

	return cfg, nil
}

// Location resolves the configured timezone.
func (c Config) Location() (*time.Location, error) {
	name := strings.TrimSpace(c.Timezone)
	if name == "" || strings.EqualFold(name, "local") {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

// FirstWeekday returns the day the "This Week" summary range starts on.
func (c Config) FirstWeekday() (time.Weekday, error) {
	switch strings.ToLower(strings.TrimSpace(c.WeekStart)) {
	case "", "sunday", "sun":
		return time.Sunday, nil
	case "monday", "mon":
		return time.Monday, nil
	default:
		return time.Sunday, fmt.Errorf("invalid week start %q, expected sunday or monday", c.WeekStart)
	}
}

// BotEnabled reports whether the Telegram front-end should run.
func (c Config) BotEnabled() bool {
	return c.TelegramToken != ""
}
