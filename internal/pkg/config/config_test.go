package config

import (
	"context"
	"testing"
	"time"

	"github.com/sethvargo/go-envconfig"
)

func TestLoadWith_Defaults(t *testing.T) {
	cfg, err := LoadWith(context.Background(), envconfig.MapLookuper(map[string]string{}))
	if err != nil {
		t.Fatalf("LoadWith returned error: %v", err)
	}
	if cfg.LogLevel != "info" || cfg.Mongo.Database != "podcast_server" {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if cfg.Redis.QueueKey != "downloads:queue" || cfg.Redis.DedupTTL != 24*time.Hour || cfg.Redis.Timeout != 5*time.Second {
		t.Fatalf("unexpected redis defaults: %+v", cfg.Redis)
	}
	if cfg.Metrics.PushgatewayURL != "" || cfg.Metrics.Job != "podcast_console" {
		t.Fatalf("unexpected metrics defaults: %+v", cfg.Metrics)
	}
}

func TestLoadWith_Overrides(t *testing.T) {
	cfg, err := LoadWith(context.Background(), envconfig.MapLookuper(map[string]string{
		"LOG_LEVEL":       "debug",
		"LOG_PRETTY":      "false",
		"MONGO_URI":       "mongodb://db:27017",
		"REDIS_DB":        "3",
		"FEED_TIMEOUT":    "5s",
		"PUSHGATEWAY_URL": "http://gateway:9091",
	}))
	if err != nil {
		t.Fatalf("LoadWith returned error: %v", err)
	}
	if cfg.LogLevel != "debug" || cfg.LogPretty {
		t.Fatalf("unexpected log settings: %+v", cfg)
	}
	if cfg.Mongo.URI != "mongodb://db:27017" || cfg.Redis.DB != 3 || cfg.Feed.Timeout != 5*time.Second {
		t.Fatalf("unexpected overrides: %+v", cfg)
	}
	if cfg.Metrics.PushgatewayURL != "http://gateway:9091" {
		t.Fatalf("unexpected pushgateway url: %q", cfg.Metrics.PushgatewayURL)
	}
}

func TestLoadWith_InvalidValue(t *testing.T) {
	_, err := LoadWith(context.Background(), envconfig.MapLookuper(map[string]string{
		"REDIS_DB": "not-a-number",
	}))
	if err == nil {
		t.Fatalf("expected parse error")
	}
}
