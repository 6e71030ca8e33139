package mongo

import (
	"context"
	"errors"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/podserver/console/internal/core/domain"
	"github.com/podserver/console/internal/core/ports"
	"github.com/podserver/console/internal/core/service"
)

// These tests need a replica set on MongoDB 4.4 or later, e.g.
// MONGO_TEST_URI="mongodb://localhost:27017/?replicaSet=rs0".
func testDatabase(t *testing.T) (*mongo.Client, *mongo.Database) {
	t.Helper()
	uri := os.Getenv("MONGO_TEST_URI")
	if uri == "" {
		t.Skip("MONGO_TEST_URI not set")
	}

	ctx := context.Background()
	name := fmt.Sprintf("console_test_%d", time.Now().UnixNano())
	client, db, err := Connect(ctx, Config{URI: uri, Database: name})
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	t.Cleanup(func() {
		_ = db.Drop(context.Background())
		_ = client.Disconnect(context.Background())
	})
	if err := EnsureIndexes(ctx, db); err != nil {
		t.Fatalf("ensure indexes: %v", err)
	}
	return client, db
}

type staticDigest struct{}

func (staticDigest) Hash(p string) (string, error) { return "digest:" + p, nil }

type seqKeys struct{ n int }

func (k *seqKeys) NewAPIKey() string {
	k.n++
	return fmt.Sprintf("%032x", k.n)
}

// brokenStore fails after the wrapped delete has run inside the transaction.
type brokenStore struct {
	ports.DependentStore
}

func (s brokenStore) DeleteByUsername(ctx context.Context, username string) (int64, error) {
	if _, err := s.DependentStore.DeleteByUsername(ctx, username); err != nil {
		return 0, err
	}
	return 0, domain.Persistence("delete favorites", errors.New("disk full"))
}

var dependentCollections = []string{
	collectionEpisodeHistory,
	collectionDevices,
	collectionEpisodes,
	collectionFavorites,
	collectionSessions,
	collectionSubscriptions,
}

func seedDependents(t *testing.T, db *mongo.Database, username string) {
	t.Helper()
	for _, name := range dependentCollections {
		// Collections must exist before a transaction writes to them.
		if _, err := db.Collection(name).InsertMany(context.Background(), []interface{}{
			bson.M{"username": username},
			bson.M{"username": username},
		}); err != nil {
			t.Fatalf("seed %s: %v", name, err)
		}
	}
}

func countRows(t *testing.T, db *mongo.Database, name, username string) int64 {
	t.Helper()
	n, err := db.Collection(name).CountDocuments(context.Background(), bson.M{"username": username})
	if err != nil {
		t.Fatalf("count %s: %v", name, err)
	}
	return n
}

func newService(client *mongo.Client, db *mongo.Database, dependents ports.DependentStores) *service.AccountService {
	return service.NewAccountService(
		NewAccountRepository(db), dependents, NewTxManager(client),
		staticDigest{}, &seqKeys{}, zerolog.Nop(),
	)
}

func TestTxManager_RemoveAccount_Commits(t *testing.T) {
	client, db := testDatabase(t)
	svc := newService(client, db, NewDependentStores(db))
	ctx := context.Background()

	if _, err := svc.CreateAccount(ctx, svc.DraftAccount("alice", domain.RoleUser), "pw"); err != nil {
		t.Fatalf("create: %v", err)
	}
	seedDependents(t, db, "alice")

	report, err := svc.RemoveAccount(ctx, "alice")
	if err != nil {
		t.Fatalf("RemoveAccount returned error: %v", err)
	}
	if len(report.Steps) != 7 {
		t.Fatalf("expected 7 steps, got %d", len(report.Steps))
	}
	for _, name := range dependentCollections {
		if n := countRows(t, db, name, "alice"); n != 0 {
			t.Fatalf("%s: expected no rows, got %d", name, n)
		}
	}
	if _, err := NewAccountRepository(db).FindByUsername(ctx, "alice"); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected account gone, got %v", err)
	}
}

func TestTxManager_RemoveAccount_RollsBackMidCascade(t *testing.T) {
	client, db := testDatabase(t)
	dependents := NewDependentStores(db)
	dependents.Favorites = brokenStore{dependents.Favorites}
	svc := newService(client, db, dependents)
	ctx := context.Background()

	if _, err := svc.CreateAccount(ctx, svc.DraftAccount("alice", domain.RoleUser), "pw"); err != nil {
		t.Fatalf("create: %v", err)
	}
	seedDependents(t, db, "alice")

	if _, err := svc.RemoveAccount(ctx, "alice"); err == nil {
		t.Fatalf("expected RemoveAccount to fail")
	}
	for _, name := range dependentCollections {
		if n := countRows(t, db, name, "alice"); n != 2 {
			t.Fatalf("%s: expected 2 rows after rollback, got %d", name, n)
		}
	}
	if _, err := NewAccountRepository(db).FindByUsername(ctx, "alice"); err != nil {
		t.Fatalf("expected account to survive, got %v", err)
	}
}

func TestAccountRepository_DuplicateUsername(t *testing.T) {
	client, db := testDatabase(t)
	svc := newService(client, db, NewDependentStores(db))
	ctx := context.Background()

	if _, err := svc.CreateAccount(ctx, svc.DraftAccount("alice", domain.RoleUser), "pw"); err != nil {
		t.Fatalf("create: %v", err)
	}
	_, err := svc.CreateAccount(ctx, svc.DraftAccount("alice", domain.RoleAdmin), "pw")
	if !errors.Is(err, domain.ErrUserExists) {
		t.Fatalf("expected ErrUserExists, got %v", err)
	}
}
