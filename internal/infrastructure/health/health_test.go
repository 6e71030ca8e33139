package health

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func TestChecker_Check(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rdb.Close()

	failing := Probe{Name: "mongodb", Ping: func(context.Context) error {
		return errors.New("no reachable servers")
	}}
	c := NewChecker(time.Second, failing, RedisProbe(rdb))

	got := c.Check(context.Background())
	if len(got) != 2 {
		t.Fatalf("expected 2 statuses, got %d", len(got))
	}
	if got[0].Name != "mongodb" || got[0].Status != "unhealthy" || got[0].Error != "no reachable servers" {
		t.Fatalf("unexpected mongodb status: %+v", got[0])
	}
	if got[1].Name != "redis" || got[1].Status != "ok" || got[1].Error != "" {
		t.Fatalf("unexpected redis status: %+v", got[1])
	}
}

func TestChecker_RedisDown(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	defer rdb.Close()
	mr.Close()

	got := NewChecker(0, RedisProbe(rdb)).Check(context.Background())
	if got[0].Status != "unhealthy" {
		t.Fatalf("expected unhealthy redis, got %+v", got[0])
	}
}
