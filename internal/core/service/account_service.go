package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/podserver/console/internal/core/domain"
	"github.com/podserver/console/internal/core/ports"
	"github.com/podserver/console/internal/metrics"
)

var _ ports.AccountService = (*AccountService)(nil)

// AccountService implements the account lifecycle. Every mutation runs in a
// single transaction obtained from tx.
type AccountService struct {
	accounts   ports.AccountRepository
	dependents ports.DependentStores
	tx         ports.TxManager
	digest     ports.PasswordDigest
	keys       ports.KeyGenerator
	validator  *accountValidator
	now        func() time.Time
	log        zerolog.Logger
}

func NewAccountService(
	accounts ports.AccountRepository,
	dependents ports.DependentStores,
	tx ports.TxManager,
	digest ports.PasswordDigest,
	keys ports.KeyGenerator,
	log zerolog.Logger,
) *AccountService {
	return &AccountService{
		accounts:   accounts,
		dependents: dependents,
		tx:         tx,
		digest:     digest,
		keys:       keys,
		validator:  newAccountValidator(),
		now:        func() time.Time { return time.Now().UTC() },
		log:        log,
	}
}

func (s *AccountService) ListAccounts(ctx context.Context) ([]domain.User, error) {
	users, err := s.accounts.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	return users, nil
}

func (s *AccountService) FindAccount(ctx context.Context, username string) (*domain.User, error) {
	return s.accounts.FindByUsername(ctx, username)
}

// AccountExists reports whether username is taken. It only informs the
// operator; the repository's unique index is what rejects duplicates.
func (s *AccountService) AccountExists(ctx context.Context, username string) (bool, error) {
	_, err := s.accounts.FindByUsername(ctx, username)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, domain.ErrUserNotFound):
		return false, nil
	default:
		return false, err
	}
}

func (s *AccountService) DraftAccount(username string, role domain.Role) *domain.User {
	return &domain.User{
		Username:        username,
		Role:            role,
		ExplicitConsent: false,
		CreatedAt:       s.now(),
		APIKey:          s.keys.NewAPIKey(),
	}
}

// CreateAccount hashes password into the draft and stores it.
func (s *AccountService) CreateAccount(ctx context.Context, draft *domain.User, password string) (*domain.User, error) {
	if err := domain.ValidatePassword(password); err != nil {
		return nil, fmt.Errorf("create account: %w", err)
	}
	hash, err := s.digest.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("create account: hash password: %w", err)
	}

	user := *draft
	user.ID = 0
	user.PasswordHash = hash
	if err := s.validator.Validate(&user); err != nil {
		return nil, err
	}

	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		user.ID = 0
		return s.accounts.Insert(ctx, &user)
	})
	if err != nil {
		s.log.Error().Err(err).Str("username", user.Username).Msg("failed to create account")
		return nil, fmt.Errorf("create account: %w", err)
	}

	metrics.AccountMutationsTotal.WithLabelValues("create").Inc()
	s.log.Info().Str("username", user.Username).Str("role", string(user.Role)).Int64("id", user.ID).Msg("account created")
	return &user, nil
}

// RegenerateAPIKeys assigns every account a fresh API key. Either all
// accounts receive a new key or, on the first failure, none do.
func (s *AccountService) RegenerateAPIKeys(ctx context.Context) (int, error) {
	var updated int
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		updated = 0
		users, err := s.accounts.FindAll(ctx)
		if err != nil {
			return err
		}
		for _, u := range users {
			s.log.Debug().Str("username", u.Username).Msg("updating api key")
			if err := s.accounts.UpdateField(ctx, u.Username, domain.FieldAPIKey, s.keys.NewAPIKey()); err != nil {
				return fmt.Errorf("account %q: %w", u.Username, err)
			}
			updated++
		}
		return nil
	})
	if err != nil {
		s.log.Error().Err(err).Msg("api key regeneration rolled back")
		return 0, fmt.Errorf("regenerate api keys: %w", err)
	}

	metrics.AccountMutationsTotal.WithLabelValues("regenerate_api_key").Add(float64(updated))
	s.log.Info().Int("accounts", updated).Msg("api keys regenerated")
	return updated, nil
}

type cascadeStep struct {
	name  string
	store ports.DependentStore
}

// cascade lists the dependent stores in removal order. Every row that
// references the username goes before the account row itself.
func (s *AccountService) cascade() []cascadeStep {
	return []cascadeStep{
		{"episode_history", s.dependents.EpisodeHistory},
		{"devices", s.dependents.Devices},
		{"episodes", s.dependents.Episodes},
		{"favorites", s.dependents.Favorites},
		{"sessions", s.dependents.Sessions},
		{"subscriptions", s.dependents.Subscriptions},
	}
}

// RemoveAccount deletes the account and every dependent row referencing it
// in one transaction: the first failing step rolls back all earlier ones.
func (s *AccountService) RemoveAccount(ctx context.Context, username string) (*ports.RemovalReport, error) {
	var report *ports.RemovalReport
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		report = &ports.RemovalReport{Username: username}

		if _, err := s.accounts.FindByUsername(ctx, username); err != nil {
			return err
		}
		for _, step := range s.cascade() {
			n, err := step.store.DeleteByUsername(ctx, username)
			if err != nil {
				return fmt.Errorf("delete %s: %w", step.name, err)
			}
			report.Steps = append(report.Steps, ports.RemovalStep{Store: step.name, Deleted: n})
		}
		if err := s.accounts.DeleteByUsername(ctx, username); err != nil {
			return fmt.Errorf("delete account: %w", err)
		}
		report.Steps = append(report.Steps, ports.RemovalStep{Store: "accounts", Deleted: 1})
		return nil
	})
	if err != nil {
		s.log.Error().Err(err).Str("username", username).Msg("account removal rolled back")
		return nil, fmt.Errorf("remove account: %w", err)
	}

	for _, step := range report.Steps {
		metrics.CascadeRowsDeletedTotal.WithLabelValues(step.Store).Add(float64(step.Deleted))
		s.log.Debug().Str("username", username).Str("store", step.Store).Int64("deleted", step.Deleted).Msg("cascade step committed")
	}
	metrics.AccountMutationsTotal.WithLabelValues("remove").Inc()
	s.log.Info().Str("username", username).Msg("account removed")
	return report, nil
}

func (s *AccountService) UpdateRole(ctx context.Context, username string, role domain.Role) error {
	if _, err := domain.ParseRole(string(role)); err != nil {
		return err
	}
	return s.updateField(ctx, "update_role", username, domain.FieldRole, role)
}

func (s *AccountService) UpdatePassword(ctx context.Context, username, password string) error {
	if err := domain.ValidatePassword(password); err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	hash, err := s.digest.Hash(password)
	if err != nil {
		return fmt.Errorf("update password: hash password: %w", err)
	}
	return s.updateField(ctx, "update_password", username, domain.FieldPasswordHash, hash)
}

// ToggleConsent flips the explicit consent flag and returns its new value.
func (s *AccountService) ToggleConsent(ctx context.Context, username string) (bool, error) {
	var consent bool
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		u, err := s.accounts.FindByUsername(ctx, username)
		if err != nil {
			return err
		}
		consent = !u.ExplicitConsent
		return s.accounts.UpdateField(ctx, username, domain.FieldExplicitConsent, consent)
	})
	if err != nil {
		return false, fmt.Errorf("toggle consent: %w", err)
	}

	metrics.AccountMutationsTotal.WithLabelValues("toggle_consent").Inc()
	s.log.Info().Str("username", username).Bool("explicit_consent", consent).Msg("consent switched")
	return consent, nil
}

func (s *AccountService) updateField(ctx context.Context, op, username string, field domain.AccountField, value any) error {
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		return s.accounts.UpdateField(ctx, username, field, value)
	})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	metrics.AccountMutationsTotal.WithLabelValues(op).Inc()
	s.log.Info().Str("username", username).Str("field", string(field)).Msg("account updated")
	return nil
}
