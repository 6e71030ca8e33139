// Package feed pulls podcast episodes from RSS and Atom feeds.
package feed

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/mmcdole/gofeed"
	"github.com/rs/zerolog"

	"github.com/podserver/console/internal/core/domain"
	"github.com/podserver/console/internal/core/ports"
	"github.com/podserver/console/internal/metrics"
)

// Ingester implements ports.IngestionService on top of gofeed.
type Ingester struct {
	parser   *gofeed.Parser
	episodes ports.EpisodeRepository
	timeout  time.Duration
	log      zerolog.Logger
}

// NewIngester returns an Ingester fetching feeds with the given timeout and
// User-Agent.
func NewIngester(episodes ports.EpisodeRepository, timeout time.Duration, userAgent string, log zerolog.Logger) *Ingester {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	p := gofeed.NewParser()
	p.UserAgent = userAgent
	p.Client = &http.Client{Timeout: timeout}
	return &Ingester{parser: p, episodes: episodes, timeout: timeout, log: log}
}

// IngestEpisodes fetches the podcast's feed and stores episodes not seen
// before. Items without a downloadable enclosure are skipped.
func (i *Ingester) IngestEpisodes(ctx context.Context, podcast domain.Podcast) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, i.timeout)
	defer cancel()

	f, err := i.parser.ParseURLWithContext(podcast.RSSFeed, ctx)
	if err != nil {
		return 0, fmt.Errorf("fetch feed %s: %w", podcast.RSSFeed, err)
	}

	episodes := make([]domain.PodcastEpisode, 0, len(f.Items))
	for _, item := range f.Items {
		ep, ok := toEpisode(podcast, f, item)
		if !ok {
			i.log.Debug().Str("feed", podcast.RSSFeed).Str("title", item.Title).Msg("skipping item without enclosure")
			continue
		}
		episodes = append(episodes, ep)
	}

	n, err := i.episodes.Upsert(ctx, episodes)
	if err != nil {
		return 0, err
	}
	metrics.EpisodesIngestedTotal.Add(float64(n))
	i.log.Debug().Str("feed", podcast.RSSFeed).Int("items", len(f.Items)).Int("new", n).Msg("feed ingested")
	return n, nil
}

func toEpisode(podcast domain.Podcast, f *gofeed.Feed, item *gofeed.Item) (domain.PodcastEpisode, bool) {
	var url string
	for _, enc := range item.Enclosures {
		if enc != nil && enc.URL != "" {
			url = enc.URL
			break
		}
	}
	if url == "" {
		return domain.PodcastEpisode{}, false
	}

	id := item.GUID
	if id == "" {
		id = url
	}

	ep := domain.PodcastEpisode{
		PodcastID:   podcast.ID,
		EpisodeID:   id,
		Name:        item.Title,
		URL:         url,
		Description: item.Description,
	}
	switch {
	case item.PublishedParsed != nil:
		ep.Date = item.PublishedParsed.UTC()
	case item.UpdatedParsed != nil:
		ep.Date = item.UpdatedParsed.UTC()
	default:
		ep.Date = time.Now().UTC()
	}
	switch {
	case item.Image != nil && item.Image.URL != "":
		ep.ImageURL = item.Image.URL
	case item.ITunesExt != nil && item.ITunesExt.Image != "":
		ep.ImageURL = item.ITunesExt.Image
	case f.Image != nil:
		ep.ImageURL = f.Image.URL
	}
	return ep, true
}
