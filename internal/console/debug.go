package console

import (
	"context"
	"fmt"
	"runtime"
	"runtime/debug"
)

// printDebug prints build, host and dependency information followed by
// every podcast.
func (a *App) printDebug(ctx context.Context) error {
	fmt.Fprintf(a.out, "OS: %s\n", runtime.GOOS)
	fmt.Fprintf(a.out, "Arch: %s\n", runtime.GOARCH)
	fmt.Fprintf(a.out, "Go Version: %s\n", runtime.Version())

	if info, ok := debug.ReadBuildInfo(); ok {
		fmt.Fprintf(a.out, "Module: %s\n", info.Main.Path)
		fmt.Fprintf(a.out, "Version: %s\n", info.Main.Version)
		for _, s := range info.Settings {
			switch s.Key {
			case "vcs.revision", "vcs.time", "vcs.modified":
				fmt.Fprintf(a.out, "%s: %s\n", s.Key, s.Value)
			}
		}
	}

	if a.hostInfo != nil {
		h, err := a.hostInfo(ctx)
		if err != nil {
			a.log.Warn().Err(err).Msg("host information unavailable")
		} else {
			fmt.Fprintf(a.out, "Host: %s\n", h.Hostname)
			fmt.Fprintf(a.out, "Platform: %s %s\n", h.Platform, h.PlatformVersion)
			fmt.Fprintf(a.out, "Kernel: %s\n", h.KernelVersion)
			fmt.Fprintf(a.out, "Uptime: %ds\n", h.Uptime)
		}
	}

	if a.health != nil {
		for _, d := range a.health.Check(ctx) {
			if d.Error != "" {
				fmt.Fprintf(a.out, "Dependency %s: %s (%s)\n", d.Name, d.Status, d.Error)
				continue
			}
			fmt.Fprintf(a.out, "Dependency %s: %s\n", d.Name, d.Status)
		}
	}

	podcasts, err := a.podcasts.ListPodcasts(ctx)
	if err != nil {
		return err
	}
	for _, p := range podcasts {
		fmt.Fprintf(a.out, "Podcast: %d %s %s\n", p.ID, p.Name, p.RSSFeed)
	}
	return nil
}
