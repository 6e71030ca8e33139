// Package health checks that the console's backing services answer.
package health

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/podserver/console/internal/core/ports"
)

const defaultTimeout = 3 * time.Second

// Probe pings one dependency.
type Probe struct {
	Name string
	Ping func(ctx context.Context) error
}

// MongoProbe checks the server and that the database accepts commands.
func MongoProbe(db *mongo.Database) Probe {
	return Probe{Name: "mongodb", Ping: func(ctx context.Context) error {
		if err := db.Client().Ping(ctx, nil); err != nil {
			return err
		}
		return db.RunCommand(ctx, bson.D{{Key: "ping", Value: 1}}).Err()
	}}
}

func RedisProbe(rdb *redis.Client) Probe {
	return Probe{Name: "redis", Ping: func(ctx context.Context) error {
		return rdb.Ping(ctx).Err()
	}}
}

// Checker runs every probe under a shared timeout.
type Checker struct {
	probes  []Probe
	timeout time.Duration
}

func NewChecker(timeout time.Duration, probes ...Probe) *Checker {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Checker{probes: probes, timeout: timeout}
}

// Check reports the status of each probe in registration order.
func (c *Checker) Check(ctx context.Context) []ports.DependencyStatus {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	out := make([]ports.DependencyStatus, 0, len(c.probes))
	for _, p := range c.probes {
		st := ports.DependencyStatus{Name: p.Name, Status: "ok"}
		if err := p.Ping(ctx); err != nil {
			st.Status = "unhealthy"
			st.Error = err.Error()
		}
		out = append(out, st)
	}
	return out
}
