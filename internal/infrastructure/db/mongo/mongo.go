package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const defaultTimeout = 10 * time.Second

// Collection names shared with the podcast server.
const (
	collectionAccounts       = "accounts"
	collectionCounters       = "counters"
	collectionPodcasts       = "podcasts"
	collectionPodcastEpisode = "podcast_episodes"
	collectionEpisodeHistory = "podcast_history_items"
	collectionDevices        = "devices"
	collectionEpisodes       = "episodes"
	collectionFavorites      = "favorites"
	collectionSessions       = "sessions"
	collectionSubscriptions  = "subscriptions"
)

// Config captures the minimal settings required to establish a MongoDB connection.
type Config struct {
	URI      string
	Database string
	Timeout  time.Duration
}

// Connect establishes a MongoDB client, verifies connectivity with a ping, and
// returns both the client and the selected database. A default timeout is
// applied when none is provided.
//
// Account mutations run in multi-document transactions, so the deployment
// must be a replica set or sharded cluster.
func Connect(ctx context.Context, cfg Config) (*mongo.Client, *mongo.Database, error) {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	connectCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, nil, fmt.Errorf("mongo connect: %w", err)
	}

	if err := client.Ping(connectCtx, nil); err != nil {
		_ = client.Disconnect(connectCtx)
		return nil, nil, fmt.Errorf("mongo ping: %w", err)
	}

	db := client.Database(cfg.Database)
	return client, db, nil
}

// EnsureIndexes creates the unique indexes the console relies on. Username
// uniqueness is enforced here, not by the console.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	unique := options.Index().SetUnique(true)
	specs := map[string][]mongo.IndexModel{
		collectionAccounts: {
			{Keys: bson.D{{Key: "username", Value: 1}}, Options: unique},
			{
				Keys: bson.D{{Key: "api_key", Value: 1}},
				Options: options.Index().SetUnique(true).
					SetPartialFilterExpression(bson.M{"api_key": bson.M{"$type": "string"}}),
			},
		},
		collectionPodcasts: {
			{Keys: bson.D{{Key: "rssfeed", Value: 1}}, Options: unique},
		},
		collectionPodcastEpisode: {
			{Keys: bson.D{{Key: "podcast_id", Value: 1}, {Key: "episode_id", Value: 1}}, Options: unique},
			{Keys: bson.D{{Key: "podcast_id", Value: 1}, {Key: "downloaded", Value: 1}}},
		},
	}
	for _, name := range []string{
		collectionEpisodeHistory, collectionDevices, collectionEpisodes,
		collectionFavorites, collectionSessions, collectionSubscriptions,
	} {
		specs[name] = []mongo.IndexModel{{Keys: bson.D{{Key: "username", Value: 1}}}}
	}

	for coll, indexes := range specs {
		if _, err := db.Collection(coll).Indexes().CreateMany(ctx, indexes); err != nil {
			return fmt.Errorf("ensure indexes on %s: %w", coll, err)
		}
	}
	return nil
}
