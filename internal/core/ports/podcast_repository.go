package ports

import (
	"context"

	"github.com/podserver/console/internal/core/domain"
)

// PodcastRepository defines read access to registered podcasts.
type PodcastRepository interface {
	FindByFeed(ctx context.Context, rssFeed string) (*domain.Podcast, error)
	FindAll(ctx context.Context) ([]domain.Podcast, error)
}

// EpisodeRepository stores episodes pulled from podcast feeds.
type EpisodeRepository interface {
	// Upsert inserts episodes not yet known for their podcast and returns how
	// many were new. Known episodes are left untouched.
	Upsert(ctx context.Context, episodes []domain.PodcastEpisode) (int, error)
	FindUndownloaded(ctx context.Context, podcastID int64) ([]domain.PodcastEpisode, error)
}

// IngestionService pulls new episodes for a podcast from its feed.
type IngestionService interface {
	IngestEpisodes(ctx context.Context, podcast domain.Podcast) (int, error)
}

// SchedulingService queues the downloads of a podcast's pending episodes.
type SchedulingService interface {
	ScheduleDownloads(ctx context.Context, podcast domain.Podcast) (int, error)
}
