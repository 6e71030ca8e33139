package ports

import (
	"context"

	"github.com/podserver/console/internal/core/domain"
)

// AccountService is the account lifecycle use-case boundary used by the console.
type AccountService interface {
	ListAccounts(ctx context.Context) ([]domain.User, error)
	FindAccount(ctx context.Context, username string) (*domain.User, error)
	AccountExists(ctx context.Context, username string) (bool, error)
	// DraftAccount assembles an unsaved account with a fresh API key. The
	// password is supplied separately to CreateAccount and never stored raw.
	DraftAccount(username string, role domain.Role) *domain.User
	CreateAccount(ctx context.Context, draft *domain.User, password string) (*domain.User, error)
	RegenerateAPIKeys(ctx context.Context) (int, error)
	RemoveAccount(ctx context.Context, username string) (*RemovalReport, error)
	UpdateRole(ctx context.Context, username string, role domain.Role) error
	UpdatePassword(ctx context.Context, username, password string) error
	ToggleConsent(ctx context.Context, username string) (bool, error)
}

// RemovalReport lists how many rows each cascade step deleted, in order.
type RemovalReport struct {
	Username string
	Steps    []RemovalStep
}

// RemovalStep is one step of the cascading delete.
type RemovalStep struct {
	Store   string
	Deleted int64
}
