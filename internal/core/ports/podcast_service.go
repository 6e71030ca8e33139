package ports

import (
	"context"

	"github.com/podserver/console/internal/core/domain"
)

// RefreshResult reports the outcome of refreshing a single podcast.
type RefreshResult struct {
	Podcast   domain.Podcast
	Ingested  int
	Scheduled int
	Err       error
}

// PodcastService is the podcast refresh use-case boundary used by the console.
type PodcastService interface {
	// Refresh normalizes rawFeed, resolves the podcast and runs ingestion then
	// download scheduling for it.
	Refresh(ctx context.Context, rawFeed string) (*RefreshResult, error)
	// RefreshAll refreshes every registered podcast in listing order. Results
	// carry per-podcast errors; the returned error joins all of them.
	RefreshAll(ctx context.Context) ([]RefreshResult, error)
	ListPodcasts(ctx context.Context) ([]domain.Podcast, error)
}
