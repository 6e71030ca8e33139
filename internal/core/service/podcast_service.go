package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/podserver/console/internal/core/domain"
	"github.com/podserver/console/internal/core/ports"
	"github.com/podserver/console/internal/metrics"
)

type podcastService struct {
	podcasts  ports.PodcastRepository
	ingestion ports.IngestionService
	scheduler ports.SchedulingService
	log       zerolog.Logger
}

// NewPodcastService returns a PodcastService implementation.
func NewPodcastService(
	podcasts ports.PodcastRepository,
	ingestion ports.IngestionService,
	scheduler ports.SchedulingService,
	log zerolog.Logger,
) ports.PodcastService {
	return &podcastService{
		podcasts:  podcasts,
		ingestion: ingestion,
		scheduler: scheduler,
		log:       log,
	}
}

// Refresh resolves the podcast behind rawFeed and refreshes it.
func (s *podcastService) Refresh(ctx context.Context, rawFeed string) (*ports.RefreshResult, error) {
	feed := domain.NormalizeFeedURL(rawFeed)
	podcast, err := s.podcasts.FindByFeed(ctx, feed)
	if err != nil {
		return nil, fmt.Errorf("refresh %s: %w", feed, err)
	}

	res := s.refresh(ctx, *podcast)
	if res.Err != nil {
		return &res, res.Err
	}
	return &res, nil
}

// RefreshAll refreshes each podcast independently: a failing feed is
// recorded in its result and the remaining podcasts are still processed.
func (s *podcastService) RefreshAll(ctx context.Context) ([]ports.RefreshResult, error) {
	podcasts, err := s.podcasts.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("refresh all: %w", err)
	}

	results := make([]ports.RefreshResult, 0, len(podcasts))
	var errs []error
	for _, p := range podcasts {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}
		res := s.refresh(ctx, p)
		if res.Err != nil {
			errs = append(errs, res.Err)
		}
		results = append(results, res)
	}
	return results, errors.Join(errs...)
}

func (s *podcastService) ListPodcasts(ctx context.Context) ([]domain.Podcast, error) {
	podcasts, err := s.podcasts.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list podcasts: %w", err)
	}
	return podcasts, nil
}

// refresh runs ingestion then scheduling; scheduling is skipped when
// ingestion fails.
func (s *podcastService) refresh(ctx context.Context, p domain.Podcast) ports.RefreshResult {
	res := ports.RefreshResult{Podcast: p}
	log := s.log.With().Int64("podcast_id", p.ID).Str("feed", p.RSSFeed).Logger()

	ingested, err := s.ingestion.IngestEpisodes(ctx, p)
	if err != nil {
		res.Err = fmt.Errorf("refresh %q: ingest episodes: %w", p.Name, err)
		log.Error().Err(err).Msg("episode ingestion failed")
		metrics.PodcastRefreshesTotal.WithLabelValues("error").Inc()
		return res
	}
	res.Ingested = ingested

	scheduled, err := s.scheduler.ScheduleDownloads(ctx, p)
	if err != nil {
		res.Err = fmt.Errorf("refresh %q: schedule downloads: %w", p.Name, err)
		log.Error().Err(err).Msg("download scheduling failed")
		metrics.PodcastRefreshesTotal.WithLabelValues("error").Inc()
		return res
	}
	res.Scheduled = scheduled

	metrics.PodcastRefreshesTotal.WithLabelValues("ok").Inc()
	log.Info().Int("ingested", ingested).Int("scheduled", scheduled).Msg("podcast refreshed")
	return res
}
