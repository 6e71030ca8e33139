// Package memory implements the console's repositories in memory for
// development and testing. Transactions are emulated by snapshotting the
// whole store and restoring it when the transactional function fails.
package memory

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/podserver/console/internal/core/domain"
	"github.com/podserver/console/internal/core/ports"
)

// Dependent store names, in the order account removal empties them.
const (
	StoreEpisodeHistory = "episode_history"
	StoreDevices        = "devices"
	StoreEpisodes       = "episodes"
	StoreFavorites      = "favorites"
	StoreSessions       = "sessions"
	StoreSubscriptions  = "subscriptions"
)

// Store is an in-memory database.
type Store struct {
	mu         sync.Mutex
	users      map[string]domain.User
	userSeq    int64
	dependents map[string]map[string]int
	podcasts   []domain.Podcast
	episodes   []domain.PodcastEpisode
	faults     map[string]error
}

// New creates an empty store.
func New() *Store {
	return &Store{
		users:      make(map[string]domain.User),
		dependents: make(map[string]map[string]int),
		faults:     make(map[string]error),
	}
}

// Ensure interfaces are met.
var _ ports.AccountRepository = (*AccountRepo)(nil)
var _ ports.DependentStore = (*DependentRepo)(nil)
var _ ports.PodcastRepository = (*PodcastRepo)(nil)
var _ ports.EpisodeRepository = (*EpisodeRepo)(nil)
var _ ports.TxManager = (*Store)(nil)

// InjectFault makes the next call of op fail with err. Ops are named
// "<verb>:<target>", e.g. "insert:accounts", "update:api_key",
// "delete:devices", "delete:accounts".
func (s *Store) InjectFault(op string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.faults[op] = err
}

// fault must be called with mu held.
func (s *Store) fault(op string) error {
	if err, ok := s.faults[op]; ok {
		delete(s.faults, op)
		return err
	}
	return nil
}

// --- TxManager ---

type snapshot struct {
	users      map[string]domain.User
	userSeq    int64
	dependents map[string]map[string]int
	episodes   []domain.PodcastEpisode
}

func (s *Store) snapshot() snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := snapshot{
		users:      make(map[string]domain.User, len(s.users)),
		userSeq:    s.userSeq,
		dependents: make(map[string]map[string]int, len(s.dependents)),
		episodes:   append([]domain.PodcastEpisode(nil), s.episodes...),
	}
	for k, v := range s.users {
		snap.users[k] = v
	}
	for store, rows := range s.dependents {
		cp := make(map[string]int, len(rows))
		for u, n := range rows {
			cp[u] = n
		}
		snap.dependents[store] = cp
	}
	return snap
}

func (s *Store) restore(snap snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users = snap.users
	s.userSeq = snap.userSeq
	s.dependents = snap.dependents
	s.episodes = snap.episodes
}

// WithinTx runs fn and rolls every change back if it returns an error.
func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	snap := s.snapshot()
	if err := fn(ctx); err != nil {
		s.restore(snap)
		return err
	}
	return nil
}

// --- Seeding and inspection helpers ---

// AddDependentRows records n rows for username in the named dependent store.
func (s *Store) AddDependentRows(store, username string, n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rows, ok := s.dependents[store]
	if !ok {
		rows = make(map[string]int)
		s.dependents[store] = rows
	}
	rows[username] += n
}

// DependentRows returns how many rows the named store holds for username.
func (s *Store) DependentRows(store, username string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dependents[store][username]
}

// AddPodcast registers a podcast.
func (s *Store) AddPodcast(p domain.Podcast) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.podcasts = append(s.podcasts, p)
}

// Episodes returns a copy of every stored episode.
func (s *Store) Episodes() []domain.PodcastEpisode {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.PodcastEpisode(nil), s.episodes...)
}

// MarkDownloaded flags an episode as downloaded.
func (s *Store) MarkDownloaded(podcastID int64, episodeID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.episodes {
		if s.episodes[i].PodcastID == podcastID && s.episodes[i].EpisodeID == episodeID {
			s.episodes[i].Downloaded = true
		}
	}
}

// --- AccountRepository ---

// AccountRepo is the account store view of a Store.
type AccountRepo struct{ s *Store }

// Accounts returns the account repository.
func (s *Store) Accounts() *AccountRepo { return &AccountRepo{s: s} }

// Insert stores the account and assigns its ID.
func (r *AccountRepo) Insert(ctx context.Context, user *domain.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if err := r.s.fault("insert:accounts"); err != nil {
		return domain.Persistence("insert account", err)
	}
	if _, exists := r.s.users[user.Username]; exists {
		return domain.ErrUserExists
	}
	if user.APIKey != "" {
		for _, u := range r.s.users {
			if u.APIKey == user.APIKey {
				return domain.Persistence("insert account", errors.New("duplicate api key"))
			}
		}
	}
	r.s.userSeq++
	user.ID = r.s.userSeq
	r.s.users[user.Username] = *user
	return nil
}

// UpdateField sets one attribute of an account.
func (r *AccountRepo) UpdateField(ctx context.Context, username string, field domain.AccountField, value any) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if err := r.s.fault("update:" + string(field)); err != nil {
		return domain.Persistence("update account", err)
	}
	u, ok := r.s.users[username]
	if !ok {
		return domain.ErrUserNotFound
	}

	var typeOK bool
	switch field {
	case domain.FieldRole:
		u.Role, typeOK = value.(domain.Role)
	case domain.FieldPasswordHash:
		u.PasswordHash, typeOK = value.(string)
	case domain.FieldExplicitConsent:
		u.ExplicitConsent, typeOK = value.(bool)
	case domain.FieldAPIKey:
		u.APIKey, typeOK = value.(string)
	default:
		return fmt.Errorf("%w: %s", domain.ErrFieldNotRecognized, field)
	}
	if !typeOK {
		return fmt.Errorf("update %s: unexpected value type %T", field, value)
	}
	r.s.users[username] = u
	return nil
}

// FindByUsername returns a copy of the account.
func (r *AccountRepo) FindByUsername(ctx context.Context, username string) (*domain.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	u, ok := r.s.users[username]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return &u, nil
}

// FindAll returns every account ordered by ID.
func (r *AccountRepo) FindAll(ctx context.Context) ([]domain.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if err := r.s.fault("find:accounts"); err != nil {
		return nil, domain.Persistence("find accounts", err)
	}
	out := make([]domain.User, 0, len(r.s.users))
	for _, u := range r.s.users {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// DeleteByUsername removes the account row.
func (r *AccountRepo) DeleteByUsername(ctx context.Context, username string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if err := r.s.fault("delete:accounts"); err != nil {
		return domain.Persistence("delete account", err)
	}
	if _, ok := r.s.users[username]; !ok {
		return domain.ErrUserNotFound
	}
	delete(r.s.users, username)
	return nil
}

// --- DependentStore ---

// DependentRepo is one named dependent store of a Store.
type DependentRepo struct {
	s    *Store
	name string
}

// Dependent returns the dependent store called name.
func (s *Store) Dependent(name string) *DependentRepo { return &DependentRepo{s: s, name: name} }

// DependentStores returns every dependent store wired for account removal.
func (s *Store) DependentStores() ports.DependentStores {
	return ports.DependentStores{
		EpisodeHistory: s.Dependent(StoreEpisodeHistory),
		Devices:        s.Dependent(StoreDevices),
		Episodes:       s.Dependent(StoreEpisodes),
		Favorites:      s.Dependent(StoreFavorites),
		Sessions:       s.Dependent(StoreSessions),
		Subscriptions:  s.Dependent(StoreSubscriptions),
	}
}

// DeleteByUsername removes every row of username from the store.
func (r *DependentRepo) DeleteByUsername(ctx context.Context, username string) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if err := r.s.fault("delete:" + r.name); err != nil {
		return 0, domain.Persistence("delete "+r.name, err)
	}
	rows := r.s.dependents[r.name]
	n := rows[username]
	delete(rows, username)
	return int64(n), nil
}

// --- PodcastRepository ---

// PodcastRepo is the podcast store view of a Store.
type PodcastRepo struct{ s *Store }

// Podcasts returns the podcast repository.
func (s *Store) Podcasts() *PodcastRepo { return &PodcastRepo{s: s} }

// FindByFeed returns the podcast registered under rssFeed.
func (r *PodcastRepo) FindByFeed(ctx context.Context, rssFeed string) (*domain.Podcast, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, p := range r.s.podcasts {
		if p.RSSFeed == rssFeed {
			p := p
			return &p, nil
		}
	}
	return nil, domain.ErrPodcastNotFound
}

// FindAll returns every podcast in registration order.
func (r *PodcastRepo) FindAll(ctx context.Context) ([]domain.Podcast, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if err := r.s.fault("find:podcasts"); err != nil {
		return nil, domain.Persistence("find podcasts", err)
	}
	return append([]domain.Podcast(nil), r.s.podcasts...), nil
}

// --- EpisodeRepository ---

// EpisodeRepo is the episode store view of a Store.
type EpisodeRepo struct{ s *Store }

// EpisodeRepository returns the episode repository.
func (s *Store) EpisodeRepository() *EpisodeRepo { return &EpisodeRepo{s: s} }

// Upsert stores episodes whose (podcast, episode) pair is new.
func (r *EpisodeRepo) Upsert(ctx context.Context, episodes []domain.PodcastEpisode) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if err := r.s.fault("upsert:episodes"); err != nil {
		return 0, domain.Persistence("upsert episodes", err)
	}
	inserted := 0
	for _, e := range episodes {
		if r.s.hasEpisode(e.PodcastID, e.EpisodeID) {
			continue
		}
		r.s.episodes = append(r.s.episodes, e)
		inserted++
	}
	return inserted, nil
}

func (s *Store) hasEpisode(podcastID int64, episodeID string) bool {
	for _, e := range s.episodes {
		if e.PodcastID == podcastID && e.EpisodeID == episodeID {
			return true
		}
	}
	return false
}

// FindUndownloaded lists a podcast's episodes not yet downloaded, newest first.
func (r *EpisodeRepo) FindUndownloaded(ctx context.Context, podcastID int64) ([]domain.PodcastEpisode, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var out []domain.PodcastEpisode
	for _, e := range r.s.episodes {
		if e.PodcastID == podcastID && !e.Downloaded {
			out = append(out, e)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.After(out[j].Date) })
	return out, nil
}
