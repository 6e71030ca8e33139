// Package metrics defines the Prometheus metrics of the admin console. It is
// the single source of truth for metric names, labels and help strings.
//
// Metrics live on a dedicated Registry instead of the default one: the
// console is a short-lived process, so they are pushed to a Pushgateway on
// exit (see Push) rather than scraped.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "podcast_console"

// Registry holds every console metric.
var Registry = prometheus.NewRegistry()

var factory = promauto.With(Registry)

// ── Command metrics ───────────────────────────────────────────────────────────

// CommandsTotal counts dispatched commands.
// Labels:
//   - domain: top-level token ("users", "podcasts", "debug", "help")
//   - action: second-level token, empty for single-level commands
//   - result: "ok", "error" or "unknown"
var CommandsTotal = factory.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "commands_total",
		Help:      "Total number of console commands dispatched, by outcome.",
	},
	[]string{"domain", "action", "result"},
)

// CommandDuration measures how long a command ran, prompts included.
var CommandDuration = factory.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "command_duration_seconds",
		Help:      "Wall-clock duration of console commands.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"domain", "action"},
)

// ── Account metrics ───────────────────────────────────────────────────────────

// AccountMutationsTotal counts committed account mutations.
// Label:
//   - operation: "create", "update_role", "update_password", "toggle_consent",
//     "remove" or "regenerate_api_key"
var AccountMutationsTotal = factory.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "account_mutations_total",
		Help:      "Total number of committed account mutations.",
	},
	[]string{"operation"},
)

// CascadeRowsDeletedTotal counts dependent rows removed by committed
// account removals.
// Label:
//   - store: dependent store name (e.g. "devices", "sessions")
var CascadeRowsDeletedTotal = factory.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "cascade_rows_deleted_total",
		Help:      "Total number of dependent rows deleted by account removal.",
	},
	[]string{"store"},
)

// ── Podcast metrics ───────────────────────────────────────────────────────────

// PodcastRefreshesTotal counts podcast refreshes.
// Label:
//   - result: "ok" or "error"
var PodcastRefreshesTotal = factory.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "podcast_refreshes_total",
		Help:      "Total number of podcast refreshes, by outcome.",
	},
	[]string{"result"},
)

// EpisodesIngestedTotal counts episodes newly stored by ingestion.
var EpisodesIngestedTotal = factory.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "episodes_ingested_total",
		Help:      "Total number of new episodes stored from podcast feeds.",
	},
)

// DownloadsScheduledTotal counts episode downloads pushed onto the queue.
var DownloadsScheduledTotal = factory.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "downloads_scheduled_total",
		Help:      "Total number of episode downloads queued.",
	},
)
