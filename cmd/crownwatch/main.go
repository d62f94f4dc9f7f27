package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/deltacrown/crownwatch/internal/app"
)

func main() {
	os.Exit(run())
}

func run() int {
	configPath := flag.String("config", "", "override config path (optional, defaults to ~/.config/crownwatch/config.toml)")
	slug := flag.String("tournament", "", "tournament slug to watch (overrides tournament_slug)")
	pollSeconds := flag.Int("poll", 0, "pull interval in seconds for every sync (optional)")
	flag.Parse()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	opts := app.Options{ConfigPath: *configPath, TournamentSlug: *slug}
	if poll := *pollSeconds; poll > 0 {
		opts.PollEvery = poll
	}

	if err := app.Run(ctx, opts); err != nil {
		fmt.Fprintf(os.Stderr, "crownwatch: %v\n", err)
		if errors.Is(err, app.ErrNothingToWatch) {
			return 2
		}
		return 1
	}
	return 0
}
