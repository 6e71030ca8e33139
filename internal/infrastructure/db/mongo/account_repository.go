package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/podserver/console/internal/core/domain"
)

type AccountRepository struct {
	coll     *mongo.Collection
	counters *mongo.Collection
}

func NewAccountRepository(db *mongo.Database) *AccountRepository {
	return &AccountRepository{
		coll:     db.Collection(collectionAccounts),
		counters: db.Collection(collectionCounters),
	}
}

type mongoAccount struct {
	ID              int64     `bson:"_id"`
	Username        string    `bson:"username"`
	Role            string    `bson:"role"`
	PasswordHash    string    `bson:"password_hash,omitempty"`
	ExplicitConsent bool      `bson:"explicit_consent"`
	CreatedAt       time.Time `bson:"created_at"`
	APIKey          string    `bson:"api_key,omitempty"`
}

func toDomain(ma mongoAccount) domain.User {
	return domain.User{
		ID:              ma.ID,
		Username:        ma.Username,
		Role:            domain.Role(ma.Role),
		PasswordHash:    ma.PasswordHash,
		ExplicitConsent: ma.ExplicitConsent,
		CreatedAt:       ma.CreatedAt.UTC(),
		APIKey:          ma.APIKey,
	}
}

// Insert allocates the next numeric account ID and stores the account.
func (r *AccountRepository) Insert(ctx context.Context, user *domain.User) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	id, err := r.nextID(ctx)
	if err != nil {
		return err
	}

	doc := mongoAccount{
		ID:              id,
		Username:        user.Username,
		Role:            string(user.Role),
		PasswordHash:    user.PasswordHash,
		ExplicitConsent: user.ExplicitConsent,
		CreatedAt:       user.CreatedAt.UTC(),
		APIKey:          user.APIKey,
	}
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.ErrUserExists
		}
		return domain.Persistence("insert account", err)
	}
	user.ID = id
	return nil
}

func (r *AccountRepository) nextID(ctx context.Context) (int64, error) {
	var counter struct {
		Seq int64 `bson:"seq"`
	}
	err := r.counters.FindOneAndUpdate(ctx,
		bson.M{"_id": collectionAccounts},
		bson.M{"$inc": bson.M{"seq": 1}},
		options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After),
	).Decode(&counter)
	if err != nil {
		return 0, domain.Persistence("allocate account id", err)
	}
	return counter.Seq, nil
}

// UpdateField sets one attribute of the account. Roles are stored as plain
// strings.
func (r *AccountRepository) UpdateField(ctx context.Context, username string, field domain.AccountField, value any) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	switch field {
	case domain.FieldRole:
		if role, ok := value.(domain.Role); ok {
			value = string(role)
		}
	case domain.FieldPasswordHash, domain.FieldExplicitConsent, domain.FieldAPIKey:
	default:
		return fmt.Errorf("%w: %s", domain.ErrFieldNotRecognized, field)
	}

	res, err := r.coll.UpdateOne(ctx,
		bson.M{"username": username},
		bson.M{"$set": bson.M{string(field): value}},
	)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.Persistence("update account", fmt.Errorf("duplicate %s", field))
		}
		return domain.Persistence("update account", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

func (r *AccountRepository) FindByUsername(ctx context.Context, username string) (*domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var ma mongoAccount
	if err := r.coll.FindOne(ctx, bson.M{"username": username}).Decode(&ma); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrUserNotFound
		}
		return nil, domain.Persistence("find account", err)
	}
	u := toDomain(ma)
	return &u, nil
}

// FindAll returns every account in ID order.
func (r *AccountRepository) FindAll(ctx context.Context) ([]domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cur, err := r.coll.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, domain.Persistence("find accounts", err)
	}
	defer cur.Close(ctx)

	var docs []mongoAccount
	if err := cur.All(ctx, &docs); err != nil {
		return nil, domain.Persistence("decode accounts", err)
	}
	users := make([]domain.User, 0, len(docs))
	for _, d := range docs {
		users = append(users, toDomain(d))
	}
	return users, nil
}

func (r *AccountRepository) DeleteByUsername(ctx context.Context, username string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.coll.DeleteOne(ctx, bson.M{"username": username})
	if err != nil {
		return domain.Persistence("delete account", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}
