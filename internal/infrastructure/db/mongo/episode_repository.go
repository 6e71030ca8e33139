package mongo

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/podserver/console/internal/core/domain"
)

type EpisodeRepository struct {
	col *mongo.Collection
}

func NewEpisodeRepository(db *mongo.Database) *EpisodeRepository {
	return &EpisodeRepository{col: db.Collection(collectionPodcastEpisode)}
}

// Upsert inserts episodes keyed by (podcast_id, episode_id) with
// $setOnInsert, so episodes already stored keep their download state.
func (r *EpisodeRepository) Upsert(ctx context.Context, episodes []domain.PodcastEpisode) (int, error) {
	if len(episodes) == 0 {
		return 0, nil
	}
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	models := make([]mongo.WriteModel, 0, len(episodes))
	for _, e := range episodes {
		models = append(models, mongo.NewUpdateOneModel().
			SetFilter(bson.M{"podcast_id": e.PodcastID, "episode_id": e.EpisodeID}).
			SetUpdate(bson.M{"$setOnInsert": e}).
			SetUpsert(true))
	}

	res, err := r.col.BulkWrite(ctx, models, options.BulkWrite().SetOrdered(false))
	if err != nil {
		return 0, domain.Persistence("upsert episodes", err)
	}
	return int(res.UpsertedCount), nil
}

// FindUndownloaded lists a podcast's episodes that were never downloaded,
// newest first.
func (r *EpisodeRepository) FindUndownloaded(ctx context.Context, podcastID int64) ([]domain.PodcastEpisode, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cur, err := r.col.Find(ctx,
		bson.M{"podcast_id": podcastID, "downloaded": false},
		options.Find().SetSort(bson.D{{Key: "date", Value: -1}}),
	)
	if err != nil {
		return nil, domain.Persistence("find episodes", err)
	}
	defer cur.Close(ctx)

	var out []domain.PodcastEpisode
	if err := cur.All(ctx, &out); err != nil {
		return nil, domain.Persistence("decode episodes", err)
	}
	return out, nil
}
