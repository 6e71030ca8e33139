package config

import (
	"context"
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Env        string `env:"ENV,         default=development"`
	LogLevel   string `env:"LOG_LEVEL,   default=info"`
	LogPretty  bool   `env:"LOG_PRETTY,  default=true"`
	BcryptCost int    `env:"BCRYPT_COST, default=10"`

	Mongo   MongoConfig
	Redis   RedisConfig
	Feed    FeedConfig
	Metrics MetricsConfig
}

type MongoConfig struct {
	URI      string        `env:"MONGO_URI,     default=mongodb://localhost:27017/?replicaSet=rs0"`
	Database string        `env:"MONGO_DB,      default=podcast_server"`
	Timeout  time.Duration `env:"MONGO_TIMEOUT, default=10s"`
}

type RedisConfig struct {
	Addr     string        `env:"REDIS_ADDR,         default=localhost:6379"`
	DB       int           `env:"REDIS_DB,           default=0"`
	Password string        `env:"REDIS_PASSWORD"`
	Timeout  time.Duration `env:"REDIS_TIMEOUT,      default=5s"`
	QueueKey string        `env:"DOWNLOAD_QUEUE_KEY, default=downloads:queue"`
	DedupTTL time.Duration `env:"DOWNLOAD_DEDUP_TTL, default=24h"`
}

type FeedConfig struct {
	Timeout   time.Duration `env:"FEED_TIMEOUT,    default=30s"`
	UserAgent string        `env:"FEED_USER_AGENT, default=podcast-console/1.0"`
}

type MetricsConfig struct {
	PushgatewayURL string `env:"PUSHGATEWAY_URL"`
	Job            string `env:"METRICS_JOB, default=podcast_console"`
}

// Load reads configuration from environment variables using go-envconfig,
// after merging a .env file from the working directory when one exists.
func Load() *Config {
	_ = godotenv.Load()

	cfg, err := LoadWith(context.Background(), envconfig.OsLookuper())
	if err != nil {
		panic(fmt.Sprintf("config: failed to load configuration: %v", err))
	}
	return cfg
}

// LoadWith reads configuration from an arbitrary lookuper.
func LoadWith(ctx context.Context, l envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{Target: &cfg, Lookuper: l}); err != nil {
		return nil, err
	}
	return &cfg, nil
}
