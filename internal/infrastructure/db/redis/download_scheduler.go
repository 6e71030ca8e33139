package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/podserver/console/internal/core/domain"
	"github.com/podserver/console/internal/core/ports"
	"github.com/podserver/console/internal/metrics"
)

const (
	defaultQueueKey = "downloads:queue"
	defaultDedupTTL = 24 * time.Hour
)

// DownloadJob is the payload pushed onto the download queue.
type DownloadJob struct {
	PodcastID int64     `json:"podcast_id"`
	EpisodeID string    `json:"episode_id"`
	URL       string    `json:"url"`
	QueuedAt  time.Time `json:"queued_at"`
}

// DownloadScheduler queues pending episode downloads on a Redis list.
// Each episode is queued at most once per dedup TTL.
// Key format: downloads:scheduled:<podcast_id>:<episode_id>
type DownloadScheduler struct {
	client   *redis.Client
	episodes ports.EpisodeRepository
	queueKey string
	ttl      time.Duration
	log      zerolog.Logger
}

// NewDownloadScheduler creates a DownloadScheduler. Empty queueKey and
// non-positive ttl fall back to defaults.
func NewDownloadScheduler(client *redis.Client, episodes ports.EpisodeRepository, queueKey string, ttl time.Duration, log zerolog.Logger) *DownloadScheduler {
	if queueKey == "" {
		queueKey = defaultQueueKey
	}
	if ttl <= 0 {
		ttl = defaultDedupTTL
	}
	return &DownloadScheduler{client: client, episodes: episodes, queueKey: queueKey, ttl: ttl, log: log}
}

// ScheduleDownloads queues every undownloaded episode of podcast that is not
// already queued and returns how many were added.
func (d *DownloadScheduler) ScheduleDownloads(ctx context.Context, podcast domain.Podcast) (int, error) {
	pending, err := d.episodes.FindUndownloaded(ctx, podcast.ID)
	if err != nil {
		return 0, err
	}

	queued := 0
	for _, e := range pending {
		ok, err := d.client.SetNX(ctx, d.key(e), "1", d.ttl).Result()
		if err != nil {
			return queued, fmt.Errorf("schedule download: %w", err)
		}
		if !ok {
			d.log.Debug().Int64("podcast_id", e.PodcastID).Str("episode_id", e.EpisodeID).Msg("download already queued")
			continue
		}

		payload, err := json.Marshal(DownloadJob{PodcastID: e.PodcastID, EpisodeID: e.EpisodeID, URL: e.URL, QueuedAt: time.Now().UTC()})
		if err != nil {
			return queued, fmt.Errorf("schedule download: %w", err)
		}
		if err := d.client.RPush(ctx, d.queueKey, payload).Err(); err != nil {
			_ = d.client.Del(ctx, d.key(e)).Err()
			return queued, fmt.Errorf("schedule download: %w", err)
		}
		queued++
	}

	metrics.DownloadsScheduledTotal.Add(float64(queued))
	return queued, nil
}

func (d *DownloadScheduler) key(e domain.PodcastEpisode) string {
	return fmt.Sprintf("downloads:scheduled:%d:%s", e.PodcastID, e.EpisodeID)
}
