// Package console implements the operator command line of the podcast
// server: argument routing, interactive prompts and table rendering.
package console

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/rs/zerolog"
	"github.com/shirou/gopsutil/v3/host"

	"github.com/podserver/console/internal/core/ports"
	"github.com/podserver/console/internal/metrics"
)

const (
	domainHelp     = "help"
	domainPodcasts = "podcasts"
	domainUsers    = "users"
	domainDebug    = "debug"
)

// errMissingFeed is the only command failure that changes the exit status.
var errMissingFeed = errors.New("missing podcast rss feed url")

// exitInterrupted is returned when the context is cancelled, usually by
// SIGINT or SIGTERM, following the shell's 128+SIGINT convention.
const exitInterrupted = 130

// HostInfoFunc reports information about the machine, for the debug command.
type HostInfoFunc func(ctx context.Context) (*host.InfoStat, error)

// App routes a command line to the matching handler.
type App struct {
	out      io.Writer
	prompt   *Prompter
	accounts ports.AccountService
	podcasts ports.PodcastService
	hostInfo HostInfoFunc
	health   ports.HealthChecker
	log      zerolog.Logger
}

// NewApp wires an App. accounts and podcasts may be nil when the command line
// only asks for help (see NeedsBackend).
func NewApp(out io.Writer, prompt *Prompter, accounts ports.AccountService, podcasts ports.PodcastService, log zerolog.Logger) *App {
	return &App{
		out:      out,
		prompt:   prompt,
		accounts: accounts,
		podcasts: podcasts,
		hostInfo: host.InfoWithContext,
		log:      log,
	}
}

// WithHealth makes debug report the status of backing services.
func (a *App) WithHealth(h ports.HealthChecker) *App {
	a.health = h
	return a
}

// WithHostInfo replaces the host information source used by debug.
func (a *App) WithHostInfo(fn HostInfoFunc) *App {
	a.hostInfo = fn
	return a
}

func isHelp(s string) bool {
	return s == "help" || s == "--help"
}

// NeedsBackend reports whether args reach a handler that talks to storage.
// Help requests and unknown commands are served without connecting.
func NeedsBackend(args []string) bool {
	if len(args) < 2 {
		return false
	}
	if args[1] == domainDebug {
		return true
	}
	if len(args) < 3 {
		return false
	}
	switch args[1] {
	case domainPodcasts:
		switch args[2] {
		case "refresh", "refresh-all", "list":
			return true
		}
	case domainUsers:
		switch args[2] {
		case "add", "remove", "update", "list":
			return true
		case "generate":
			return len(args) > 3 && args[3] == "apiKey"
		}
	}
	return false
}

// Run executes the command line args (args[0] is the program name) and
// returns the process exit status.
func (a *App) Run(ctx context.Context, args []string) int {
	if len(args) < 2 {
		a.log.Error().Msg("no command given")
		printUsage(a.out)
		return 0
	}

	domain, action := args[1], ""
	if len(args) > 2 {
		action = args[2]
	}

	start := time.Now()
	result, code := a.dispatch(ctx, domain, action, args[2:])
	metrics.CommandsTotal.WithLabelValues(domain, action, result).Inc()
	metrics.CommandDuration.WithLabelValues(domain, action).Observe(time.Since(start).Seconds())
	return code
}

func (a *App) dispatch(ctx context.Context, domain, action string, rest []string) (string, int) {
	var err error
	switch {
	case isHelp(domain):
		printUsage(a.out)
		return "help", 0
	case domain == domainDebug:
		err = a.printDebug(ctx)
	case domain == domainPodcasts:
		err = a.runPodcasts(ctx, action, rest)
	case domain == domainUsers:
		err = a.runUsers(ctx, action, rest)
	default:
		err = errCommandNotFound
	}

	switch {
	case err == nil:
		return "ok", 0
	case errors.Is(err, errHelpShown):
		return "help", 0
	case errors.Is(err, errCommandNotFound):
		a.log.Error().Str("domain", domain).Str("action", action).Msg("command not found")
		return "unknown", 0
	case errors.Is(err, errMissingFeed):
		return "error", 1
	case errors.Is(err, context.Canceled):
		a.report(err)
		return "interrupted", exitInterrupted
	}
	a.report(err)
	return "error", 0
}

var (
	errCommandNotFound = errors.New("command not found")
	errHelpShown       = errors.New("help shown")
)

func (a *App) runPodcasts(ctx context.Context, action string, rest []string) error {
	switch {
	case isHelp(action):
		printPodcastUsage(a.out)
		return errHelpShown
	case action == "refresh":
		return a.refreshPodcast(ctx, rest[1:])
	case action == "refresh-all":
		return a.refreshAllPodcasts(ctx)
	case action == "list":
		return a.listPodcasts(ctx)
	}
	if action == "" {
		printPodcastUsage(a.out)
	}
	return errCommandNotFound
}

func (a *App) runUsers(ctx context.Context, action string, rest []string) error {
	switch {
	case isHelp(action):
		printUserUsage(a.out)
		return errHelpShown
	case action == "add":
		return a.addAccount(ctx)
	case action == "generate":
		if len(rest) > 1 && rest[1] == "apiKey" {
			return a.regenerateAPIKeys(ctx)
		}
		return errCommandNotFound
	case action == "remove":
		return a.removeAccount(ctx)
	case action == "update":
		return a.updateAccount(ctx)
	case action == "list":
		_, err := a.listAccounts(ctx)
		return err
	}
	if action == "" {
		printUserUsage(a.out)
	}
	return errCommandNotFound
}
