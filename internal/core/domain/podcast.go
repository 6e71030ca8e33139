package domain

import (
	"strings"
	"time"
)

// Podcast is a registered feed.
type Podcast struct {
	ID      int64  `json:"id" bson:"_id"`
	Name    string `json:"name" bson:"name"`
	RSSFeed string `json:"rssfeed" bson:"rssfeed"`
}

// PodcastEpisode is a single item ingested from a podcast feed.
type PodcastEpisode struct {
	PodcastID   int64     `json:"podcast_id" bson:"podcast_id"`
	EpisodeID   string    `json:"episode_id" bson:"episode_id"`
	Name        string    `json:"name" bson:"name"`
	URL         string    `json:"url" bson:"url"`
	ImageURL    string    `json:"image_url,omitempty" bson:"image_url,omitempty"`
	Description string    `json:"description,omitempty" bson:"description,omitempty"`
	Date        time.Time `json:"date" bson:"date"`
	Downloaded  bool      `json:"downloaded" bson:"downloaded"`
}

// NormalizeFeedURL strips the quote and space characters operators tend to
// paste around a feed URL on the command line.
func NormalizeFeedURL(raw string) string {
	return strings.NewReplacer("'", "", `"`, "", " ", "").Replace(raw)
}
