package app

import (
	"context"
	"fmt"

	"github.com/cenkalti/backoff/v5"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/deltacrown/crownwatch/internal/config"
	"github.com/deltacrown/crownwatch/internal/deltacrown"
	"github.com/deltacrown/crownwatch/internal/dispatch"
	"github.com/deltacrown/crownwatch/internal/events"
	"github.com/deltacrown/crownwatch/internal/livesync"
	"github.com/deltacrown/crownwatch/internal/metrics"
	"github.com/deltacrown/crownwatch/internal/notify"
	"github.com/deltacrown/crownwatch/internal/reconcile"
	"github.com/deltacrown/crownwatch/internal/state"
	"github.com/deltacrown/crownwatch/internal/transport"
)

const (
	syncNotifications = "notifications"
	syncTournament    = "tournament"
)

// syncDeps are the shared collaborators every live sync writes to.
type syncDeps struct {
	Store   *state.Store
	Bus     *events.Bus
	Center  *notify.Center
	Bell    *notify.Bell
	Focus   *notify.Focus
	Metrics *metrics.Metrics
	Logger  *zap.Logger
}

func (d syncDeps) dispatchDeps() dispatch.Deps {
	return dispatch.Deps{
		Doc:     d.Store,
		Bus:     d.Bus,
		Logger:  d.Logger.Named("dispatch"),
		Metrics: d.Metrics,
	}
}

// buildSyncs creates one client per configured live sync and mounts the
// targets it renders into. Notifications need a session; the tournament
// sync needs a slug.
func buildSyncs(cfg config.Config, client *deltacrown.Client, d syncDeps) ([]*livesync.Client, error) {
	if d.Logger == nil {
		d.Logger = zap.NewNop()
	}
	var syncs []*livesync.Client

	switch {
	case !cfg.Notifications.Enabled:
		d.Logger.Info("notification sync disabled")
	case !client.Authenticated():
		d.Logger.Info("notification sync skipped: no session cookie")
	default:
		d.Store.Mount(dispatch.NotificationSelectors...)
		c, err := livesync.New(livesync.Options{
			Name:       syncNotifications,
			Pull:       deltacrown.NotificationPull{Fetcher: client},
			Push:       deltacrown.NewNotificationPush(client),
			Dispatcher: dispatch.NewNotifications(d.dispatchDeps()),
			Transport:  transportOptions(cfg.Notifications, true),
			AllowStale: cfg.AllowStale,
			Logger:     d.Logger.Named(syncNotifications),
			Metrics:    d.Metrics,
			Status:     d.Store,
		})
		if err != nil {
			return nil, fmt.Errorf("init notification sync: %w", err)
		}
		syncs = append(syncs, c)
	}

	switch {
	case !cfg.Tournament.Enabled:
		d.Logger.Info("tournament sync disabled")
	case cfg.TournamentSlug == "":
		d.Logger.Info("tournament sync skipped: no tournament slug")
	default:
		d.Store.Mount(dispatch.TournamentSelectors...)
		c, err := livesync.New(livesync.Options{
			Name:       syncTournament,
			Pull:       deltacrown.TournamentPull{Fetcher: client, Slug: cfg.TournamentSlug},
			Reconciler: reconcile.Reconciler{Derive: reconcile.CapacitySignals},
			Dispatcher: dispatch.NewTournament(d.dispatchDeps(), cfg.TournamentSlug, d.Center, d.Bell, d.Focus),
			Transport:  transportOptions(cfg.Tournament, false),
			AllowStale: cfg.AllowStale,
			Logger:     d.Logger.Named(syncTournament),
			Metrics:    d.Metrics,
			Status:     d.Store,
		})
		if err != nil {
			return nil, fmt.Errorf("init tournament sync: %w", err)
		}
		syncs = append(syncs, c)
	}

	return syncs, nil
}

// transportOptions maps a sync section onto transport options. Push tuning
// only applies when the sync has a push source.
func transportOptions(sc config.SyncConfig, push bool) []transport.Option {
	var opts []transport.Option
	if sc.PollInterval > 0 {
		opts = append(opts, transport.WithPollInterval(sc.PollInterval))
	}
	if !push {
		return opts
	}
	if sc.PushGrace > 0 {
		opts = append(opts, transport.WithPushGrace(sc.PushGrace))
	}
	if sc.MaxRetries > 0 {
		opts = append(opts, transport.WithMaxRetries(sc.MaxRetries))
	}
	if sc.PushBackoff > 0 {
		opts = append(opts, transport.WithBackOff(backoff.NewConstantBackOff(sc.PushBackoff)))
	}
	return opts
}

// startSyncs starts every client. If one fails the ones already started are
// stopped again.
func startSyncs(ctx context.Context, syncs []*livesync.Client) error {
	for i, s := range syncs {
		if err := s.Start(ctx); err != nil {
			stopSyncs(syncs[:i])
			return fmt.Errorf("start %s sync: %w", s.Name(), err)
		}
	}
	return nil
}

// stopSyncs stops all clients concurrently and waits for them to release
// their connections.
func stopSyncs(syncs []*livesync.Client) {
	var g errgroup.Group
	for _, s := range syncs {
		g.Go(func() error {
			s.Stop()
			return nil
		})
	}
	_ = g.Wait()
}
