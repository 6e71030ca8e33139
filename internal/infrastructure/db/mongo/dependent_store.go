package mongo

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/podserver/console/internal/core/domain"
	"github.com/podserver/console/internal/core/ports"
)

// UsernameStore is a collection whose documents reference an account
// through their "username" field.
type UsernameStore struct {
	coll *mongo.Collection
}

func newUsernameStore(db *mongo.Database, name string) *UsernameStore {
	return &UsernameStore{coll: db.Collection(name)}
}

// DeleteByUsername removes every document of username.
func (s *UsernameStore) DeleteByUsername(ctx context.Context, username string) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := s.coll.DeleteMany(ctx, bson.M{"username": username})
	if err != nil {
		return 0, domain.Persistence("delete from "+s.coll.Name(), err)
	}
	return res.DeletedCount, nil
}

// NewDependentStores wires every username-keyed collection of db.
func NewDependentStores(db *mongo.Database) ports.DependentStores {
	return ports.DependentStores{
		EpisodeHistory: newUsernameStore(db, collectionEpisodeHistory),
		Devices:        newUsernameStore(db, collectionDevices),
		Episodes:       newUsernameStore(db, collectionEpisodes),
		Favorites:      newUsernameStore(db, collectionFavorites),
		Sessions:       newUsernameStore(db, collectionSessions),
		Subscriptions:  newUsernameStore(db, collectionSubscriptions),
	}
}
