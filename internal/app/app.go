package app

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/deltacrown/crownwatch/internal/config"
	"github.com/deltacrown/crownwatch/internal/deltacrown"
	"github.com/deltacrown/crownwatch/internal/events"
	"github.com/deltacrown/crownwatch/internal/logging"
	"github.com/deltacrown/crownwatch/internal/metrics"
	"github.com/deltacrown/crownwatch/internal/notify"
	"github.com/deltacrown/crownwatch/internal/prefs"
	"github.com/deltacrown/crownwatch/internal/state"
	"github.com/deltacrown/crownwatch/internal/ui"
)

// ErrNothingToWatch is returned when neither sync can run: there is no
// session cookie for notifications and no tournament slug.
var ErrNothingToWatch = errors.New("nothing to watch: set session_cookie or tournament_slug")

// Options configure the crownwatch application.
type Options struct {
	ConfigPath     string
	PrefsPath      string // empty uses default ~/.config/crownwatch/prefs.toml
	TournamentSlug string // overrides tournament_slug from the config
	PollEvery      int    // seconds; zero keeps the configured intervals
}

// Run boots crownwatch until the UI exits or the context is cancelled.
func Run(ctx context.Context, opts Options) error {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	applyOverrides(&cfg, opts)

	logger, closeLog, err := logging.New(cfg.LogFile, cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("init logging: %w", err)
	}
	defer func() { _ = closeLog() }()

	userPrefs, err := prefs.Load(opts.PrefsPath)
	if err != nil {
		logger.Warn("load prefs failed, using defaults", zap.Error(err))
	}

	client, err := deltacrown.NewClient(cfg.BaseURL, cfg.SessionCookie)
	if err != nil {
		return fmt.Errorf("init deltacrown client: %w", err)
	}

	bus := events.NewBus()
	defer bus.Close()

	bell := notify.NewBell(os.Stderr)
	bell.SetEnabled(userPrefs.Sound)

	deps := syncDeps{
		Store: &state.Store{},
		Bus:   bus,
		Center: notify.NewCenter(
			notify.ParsePermission(userPrefs.Notifications),
			notify.WithPersist(func(p notify.Permission) error {
				return prefs.Update(opts.PrefsPath, func(pr *prefs.Prefs) { pr.Notifications = string(p) })
			}),
			notify.WithLogger(logger.Named("notify")),
		),
		Bell:    bell,
		Focus:   &notify.Focus{},
		Metrics: metrics.New(),
		Logger:  logger,
	}

	syncs, err := buildSyncs(cfg, client, deps)
	if err != nil {
		return err
	}
	if len(syncs) == 0 {
		return ErrNothingToWatch
	}

	logger.Info("crownwatch starting",
		zap.String("base_url", client.BaseURL()),
		zap.Bool("authenticated", client.Authenticated()),
		zap.String("tournament", cfg.TournamentSlug),
		zap.Int("syncs", len(syncs)),
	)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return deps.Metrics.Serve(gctx, cfg.MetricsAddr, logger.Named("metrics"))
	})

	if err := startSyncs(gctx, syncs); err != nil {
		cancel()
		_ = g.Wait()
		return err
	}
	defer stopSyncs(syncs)

	uiSyncs := make([]ui.Sync, 0, len(syncs))
	for _, s := range syncs {
		uiSyncs = append(uiSyncs, s)
	}

	g.Go(func() error {
		// Leaving the UI ends the run.
		defer cancel()
		return ui.Run(ui.Options{
			Context:           gctx,
			Store:             deps.Store,
			Bus:               bus,
			Center:            deps.Center,
			Bell:              bell,
			Focus:             deps.Focus,
			Syncs:             uiSyncs,
			Title:             siteTitle(client.BaseURL()),
			ThemeName:         userPrefs.Theme,
			PrefsPath:         opts.PrefsPath,
			LogPath:           cfg.LogFile,
			SuspendWhenHidden: cfg.SuspendWhenHidden,
			Logger:            logger.Named("ui"),
		})
	})

	err = g.Wait()
	logger.Info("crownwatch stopped", zap.Error(err))
	return err
}

func applyOverrides(cfg *config.Config, opts Options) {
	if opts.TournamentSlug != "" {
		cfg.TournamentSlug = opts.TournamentSlug
	}
	if opts.PollEvery > 0 {
		d := time.Duration(opts.PollEvery) * time.Second
		cfg.Notifications.PollInterval = d
		cfg.Tournament.PollInterval = d
	}
}

func siteTitle(baseURL string) string {
	u, err := url.Parse(baseURL)
	if err != nil || u.Host == "" {
		return baseURL
	}
	return u.Host
}
