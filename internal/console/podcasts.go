package console

import (
	"context"
	"errors"
	"fmt"
	"text/tabwriter"

	"github.com/podserver/console/internal/core/domain"
)

var errRefreshIncomplete = errors.New("some podcasts failed to refresh")

func (a *App) refreshPodcast(ctx context.Context, args []string) error {
	if len(args) == 0 {
		fmt.Fprintln(a.out, "Please provide a podcast rss feed url")
		return errMissingFeed
	}

	fmt.Fprintf(a.out, "Refreshing podcast %s\n", domain.NormalizeFeedURL(args[0]))
	res, err := a.podcasts.Refresh(ctx, args[0])
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "%s: %d new episodes, %d downloads queued\n", res.Podcast.Name, res.Ingested, res.Scheduled)
	return nil
}

func (a *App) refreshAllPodcasts(ctx context.Context) error {
	results, err := a.podcasts.RefreshAll(ctx)
	if results == nil && err != nil {
		return err
	}

	var failed int
	for _, r := range results {
		if r.Err != nil {
			failed++
			fmt.Fprintf(a.out, "Refreshing podcast %s failed: %v\n", r.Podcast.Name, r.Err)
			continue
		}
		fmt.Fprintf(a.out, "Refreshed podcast %s: %d new episodes, %d downloads queued\n", r.Podcast.Name, r.Ingested, r.Scheduled)
	}
	fmt.Fprintf(a.out, "%d of %d podcasts refreshed\n", len(results)-failed, len(results))

	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	if err != nil {
		a.log.Warn().Err(err).Int("failed", failed).Msg("refresh-all finished with failures")
		return fmt.Errorf("%w: %d of %d", errRefreshIncomplete, failed, len(results))
	}
	return nil
}

func (a *App) listPodcasts(ctx context.Context) error {
	podcasts, err := a.podcasts.ListPodcasts(ctx)
	if err != nil {
		a.log.Error().Err(err).Msg("listing podcasts failed")
		fmt.Fprintln(a.out, "Error getting podcasts")
		return nil
	}

	tw := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tRSS FEED")
	for _, p := range podcasts {
		fmt.Fprintf(tw, "%d\t%s\t%s\n", p.ID, p.Name, p.RSSFeed)
	}
	return tw.Flush()
}
