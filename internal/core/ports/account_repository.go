package ports

import (
	"context"

	"github.com/podserver/console/internal/core/domain"
)

// AccountRepository defines persistence operations for accounts.
type AccountRepository interface {
	// Insert assigns the account its numeric ID and stores it. A username that
	// is already taken yields domain.ErrUserExists.
	Insert(ctx context.Context, user *domain.User) error
	// UpdateField sets a single attribute of the account identified by username.
	UpdateField(ctx context.Context, username string, field domain.AccountField, value any) error
	FindByUsername(ctx context.Context, username string) (*domain.User, error)
	FindAll(ctx context.Context) ([]domain.User, error)
	DeleteByUsername(ctx context.Context, username string) error
}

// DependentStore is any collection whose rows reference an account by username.
type DependentStore interface {
	// DeleteByUsername removes every row for username and reports how many went.
	DeleteByUsername(ctx context.Context, username string) (int64, error)
}

// DependentStores groups the stores that must be emptied for a username
// before the account itself may be removed.
type DependentStores struct {
	EpisodeHistory DependentStore
	Devices        DependentStore
	Episodes       DependentStore
	Favorites      DependentStore
	Sessions       DependentStore
	Subscriptions  DependentStore
}

// TxManager runs fn inside a single transactional scope. Every repository
// call made with the ctx handed to fn joins the transaction; a non-nil error
// from fn rolls all of them back. fn may be invoked more than once when the
// storage layer retries a transient conflict, so it must be idempotent.
type TxManager interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}
