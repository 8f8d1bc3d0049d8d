package config

import (
	"encoding/hex"
	"fmt"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	AppEnv    string `env:"APP_ENV" envDefault:"development"`
	Port      string `env:"PORT" envDefault:"8080"`
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"text"`

	TwitchBotToken string `env:"TWITCH_BOT_TOKEN"`
	TwitchNick     string `env:"TWITCH_NICK"`
	TwitchChannel  string `env:"TWITCH_CHANNEL"`

	WebhookSecret string `env:"WEBHOOK_SECRET"`

	TwitchClientID        string `env:"TWITCH_CLIENT_ID"`
	TwitchUserAccessToken string `env:"TWITCH_USER_ACCESS_TOKEN"`
	TwitchBroadcasterID   string `env:"TWITCH_BROADCASTER_ID"`

	DiscordBotToken  string `env:"DISCORD_BOT_TOKEN"`
	DiscordChannelID string `env:"DISCORD_CHANNEL_ID"`

	DatabaseURL        string `env:"DATABASE_URL"`
	RedisURL           string `env:"REDIS_URL"`
	TokenEncryptionKey string `env:"TOKEN_ENCRYPTION_KEY"`
}

func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}

	if cfg.TwitchBotToken == "" {
		return nil, fmt.Errorf("TWITCH_BOT_TOKEN is required")
	}
	if cfg.TwitchNick == "" {
		return nil, fmt.Errorf("TWITCH_NICK is required")
	}
	if cfg.TwitchChannel == "" {
		return nil, fmt.Errorf("TWITCH_CHANNEL is required")
	}
	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	if cfg.WebhookSecret == "" {
		return nil, fmt.Errorf("WEBHOOK_SECRET is required")
	}
	if len(cfg.WebhookSecret) < 10 || len(cfg.WebhookSecret) > 100 {
		return nil, fmt.Errorf("WEBHOOK_SECRET must be between 10 and 100 characters")
	}

	// Helix config: all three must be set together
	if cfg.TwitchClientID != "" || cfg.TwitchUserAccessToken != "" || cfg.TwitchBroadcasterID != "" {
		if cfg.TwitchClientID == "" {
			return nil, fmt.Errorf("TWITCH_CLIENT_ID is required when helix access is configured")
		}
		if cfg.TwitchUserAccessToken == "" {
			return nil, fmt.Errorf("TWITCH_USER_ACCESS_TOKEN is required when helix access is configured")
		}
		if cfg.TwitchBroadcasterID == "" {
			return nil, fmt.Errorf("TWITCH_BROADCASTER_ID is required when helix access is configured")
		}
	}

	// Discord config: both must be set together
	if cfg.DiscordBotToken != "" || cfg.DiscordChannelID != "" {
		if cfg.DiscordBotToken == "" {
			return nil, fmt.Errorf("DISCORD_BOT_TOKEN is required when DISCORD_CHANNEL_ID is set")
		}
		if cfg.DiscordChannelID == "" {
			return nil, fmt.Errorf("DISCORD_CHANNEL_ID is required when DISCORD_BOT_TOKEN is set")
		}
	}

	if cfg.TokenEncryptionKey != "" {
		keyBytes, err := hex.DecodeString(cfg.TokenEncryptionKey)
		if err != nil {
			return nil, fmt.Errorf("TOKEN_ENCRYPTION_KEY must be valid hex: %w", err)
		}
		if len(keyBytes) != 32 {
			return nil, fmt.Errorf("TOKEN_ENCRYPTION_KEY must be exactly 64 hex characters (32 bytes), got %d bytes", len(keyBytes))
		}
	}

	return cfg, nil
}
