package mongo

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/podserver/console/internal/core/domain"
)

type PodcastRepository struct {
	col *mongo.Collection
}

func NewPodcastRepository(db *mongo.Database) *PodcastRepository {
	return &PodcastRepository{col: db.Collection(collectionPodcasts)}
}

// FindByFeed retrieves a podcast by its RSS feed URL.
func (r *PodcastRepository) FindByFeed(ctx context.Context, rssFeed string) (*domain.Podcast, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var p domain.Podcast
	err := r.col.FindOne(ctx, bson.M{"rssfeed": rssFeed}).Decode(&p)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrPodcastNotFound
		}
		return nil, domain.Persistence("find podcast", err)
	}
	return &p, nil
}

// FindAll returns every podcast ordered by ID.
func (r *PodcastRepository) FindAll(ctx context.Context) ([]domain.Podcast, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cur, err := r.col.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, domain.Persistence("find podcasts", err)
	}
	defer cur.Close(ctx)

	var out []domain.Podcast
	if err := cur.All(ctx, &out); err != nil {
		return nil, domain.Persistence("decode podcasts", err)
	}
	return out, nil
}
