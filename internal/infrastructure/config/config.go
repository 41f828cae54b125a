package config

import (
	"context"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Port      string `env:"PORT,      default=8080"`
	Env       string `env:"ENV,       default=development"`
	JWTSecret string `env:"JWT_SECRET"`
	LogLevel  string `env:"LOG_LEVEL, default=info"`

	// DailyFeedLimit is the per-user per-day feed allowance, the game's
	// sole anti-abuse throttle.
	DailyFeedLimit int `env:"DAILY_FEED_LIMIT, default=10"`
	// PlayerTokenTTL is how long a player session token stays valid.
	PlayerTokenTTL time.Duration `env:"PLAYER_TOKEN_TTL, default=720h"`
	// StaffTokenTTL is the staff JWT lifetime.
	StaffTokenTTL time.Duration `env:"STAFF_TOKEN_TTL, default=24h"`

	Mongo MongoConfig
	Redis RedisConfig
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=fishpond"`
}

type RedisConfig struct {
	Addr string `env:"REDIS_ADDR, default=localhost:6379"`
	DB   int    `env:"REDIS_DB,   default=0"`
}

// Load reads configuration from environment variables using go-envconfig.
func Load() *Config {
	var cfg Config
	if err := envconfig.Process(context.Background(), &cfg); err != nil {
		panic(fmt.Sprintf("config: failed to load configuration: %v", err))
	}
	return &cfg
}
