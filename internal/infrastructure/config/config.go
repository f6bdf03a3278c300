package config

import (
	"context"
	"log/slog"

	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Port     string `env:"PORT,      default=8080"`
	Env      string `env:"ENV,       default=development"`
	LogLevel string `env:"LOG_LEVEL, default=info"`

	// BotAPIBase is the chat transport API endpoint, including the bot
	// token, e.g. "https://api.telegram.org/bot<token>".
	BotAPIBase string `env:"BOT_API_BASE"`
	// WebhookSecret guards the inbound webhook; the transport echoes it in
	// a header with every delivery.
	WebhookSecret string `env:"WEBHOOK_SECRET"`

	// AdminIDs is the static operator allow-list (comma-separated caller
	// ids).
	AdminIDs []int64 `env:"ADMIN_IDS"`
	// ResetPassword gates the destructive store wipe. When empty the reset
	// sub-flow refuses to start.
	ResetPassword string `env:"RESET_PASSWORD"`

	Mongo MongoConfig
	Redis RedisConfig
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=registration_system"`
}

type RedisConfig struct {
	Addr string `env:"REDIS_ADDR, default=localhost:6379"`
	DB   int    `env:"REDIS_DB,   default=0"`
}

// Load reads configuration from environment variables using go-envconfig.
func Load(logger *slog.Logger) *Config {
	var cfg Config
	if err := envconfig.Process(context.Background(), &cfg); err != nil {
		logger.Error("Failed to load configuration", "error", err)
		panic(err)
	}
	return &cfg
}
