package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	// Core
	BotToken    string `env:"BOT_TOKEN,required"`
	DatabaseURL string `env:"DATABASE_URL,required"`

	// Provider credentials
	OpenRouterKey string `env:"OPENROUTER_API_KEY"`
	FalKey        string `env:"FAL_API_KEY"`
	ReplicateKey  string `env:"REPLICATE_API_TOKEN"`

	// Streaming server
	StreamAddr   string `env:"STREAM_ADDR" envDefault:":8080"`
	StreamSecret string `env:"STREAM_SECRET,required"`

	// Admin
	AdminIDs []int64 `env:"ADMIN_IDS" envSeparator:","`

	// Bot behavior
	DropPendingUpdates bool `env:"BOT_DROP_PENDING_UPDATES" envDefault:"false"`
}

func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}

func (c *Config) IsAdmin(telegramID int64) bool {
	for _, id := range c.AdminIDs {
		if id == telegramID {
			return true
		}
	}
	return false
}
