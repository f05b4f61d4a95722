package main

import (
	"context"
	"database/sql"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/hpungsan/pastedock/internal/capture"
	"github.com/hpungsan/pastedock/internal/config"
	"github.com/hpungsan/pastedock/internal/db"
	"github.com/hpungsan/pastedock/internal/history"
	"github.com/hpungsan/pastedock/internal/logging"
	"github.com/hpungsan/pastedock/internal/macos"
	"github.com/hpungsan/pastedock/internal/monitor"
	"github.com/hpungsan/pastedock/internal/ops"
	"github.com/hpungsan/pastedock/internal/paste"
	"github.com/hpungsan/pastedock/internal/payload"
	"github.com/hpungsan/pastedock/internal/privacy"
	"github.com/hpungsan/pastedock/internal/toast"
)

// app owns the long-lived resources shared by every command.
type app struct {
	baseDir string
	db      *sql.DB
	events  *logging.EventLog
	policy  *privacy.LivePolicy
	deps    *ops.Deps

	source   *macos.Source
	apps     *macos.Apps
	paster   *macos.AutoPaster
	notifier *macos.Notifier

	// confirm asks the user a yes/no question; nil when stdin is not a terminal.
	confirm func(question string) bool

	mu  sync.RWMutex
	cfg *config.Config
}

// newApp opens the history database and payload area under baseDir and
// wires the capture and paste paths to the macOS collaborators behind r.
func newApp(baseDir string, cfg *config.Config, r macos.Runner) (*app, error) {
	database, err := db.Init(baseDir)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	db.ConfigurePool(database, cfg)

	area, err := payload.Open(baseDir)
	if err != nil {
		database.Close()
		return nil, fmt.Errorf("failed to open payload area: %w", err)
	}

	events, err := logging.OpenEventLog(baseDir, cfg.LogMaxBytes, cfg.LogMaxFiles)
	if err != nil {
		database.Close()
		return nil, fmt.Errorf("failed to open event log: %w", err)
	}

	a := &app{
		baseDir:  baseDir,
		db:       database,
		events:   events,
		cfg:      cfg,
		source:   macos.NewSource(r),
		apps:     macos.NewApps(r),
		paster:   macos.NewAutoPaster(r),
		notifier: macos.NewNotifier(r, "pastedock"),
	}
	a.policy = privacy.NewLivePolicy(cfg.Settings().ExcludedBundleIDs)

	store := history.NewSQLStore(database)
	toasts := toast.NewQueue(cfg.ToastCapacity)
	a.deps = &ops.Deps{
		Store:    store,
		Pipeline: capture.New(store, a.policy, capture.WithLogger(events), capture.WithToasts(toasts)),
		Engine:   paste.NewEngine(store, paste.NewPayloadRestorer(macos.NewPasteboard(r)), a.paster, toasts),
		Payloads: area,
		Toasts:   toasts,
		Settings: a.Settings,
		Target:   a.apps.Target,
	}
	return a, nil
}

// Config returns the current configuration.
func (a *app) Config() *config.Config {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.cfg
}

// Settings returns the current settings snapshot.
func (a *app) Settings() config.Settings {
	return a.Config().Settings()
}

// reload swaps in a re-read configuration.
func (a *app) reload(cfg *config.Config) {
	a.mu.Lock()
	a.cfg = cfg
	a.mu.Unlock()

	s := cfg.Settings()
	a.policy.Update(s.ExcludedBundleIDs)
	logging.L("app").Info().
		Int("max_items", s.MaxItems).
		Int("excluded_apps", len(s.ExcludedBundleIDs)).
		Int("monitoring_interval_ms", s.MonitoringIntervalMs).
		Msg("settings applied")
}

// Close releases the database and event log.
func (a *app) Close() error {
	a.events.Close()
	return a.db.Close()
}

// watch runs the pasteboard monitor, the config watcher and the toast
// presenter until ctx is done or one of them fails.
func (a *app) watch(ctx context.Context) error {
	log := logging.L("watch")

	m := monitor.New(a.source, a.deps.Payloads, a.deps.Pipeline, a.Settings,
		monitor.WithFrontmost(a.apps),
		monitor.WithDecisionHook(func(d capture.Decision) {
			log.Debug().Str("decision", d.String()).Msg("capture")
		}),
	)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return m.Run(ctx) })
	g.Go(func() error { return config.Watch(ctx, a.baseDir, a.reload) })
	g.Go(func() error { return a.presentToasts(ctx) })

	log.Info().
		Str("base_dir", a.baseDir).
		Dur("interval", a.Settings().MonitoringInterval()).
		Msg("watching pasteboard")
	return g.Wait()
}

// presentToasts drains the toast queue into Notification Center.
func (a *app) presentToasts(ctx context.Context) error {
	log := logging.L("toast")
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-a.deps.Toasts.Ready():
			for _, t := range a.deps.Toasts.Drain() {
				log.Debug().Str("style", string(t.Style)).Msg(t.Message)
				if err := a.notifier.Show(ctx, t); err != nil {
					log.Warn().Err(err).Msg("notification failed")
				}
			}
		}
	}
}
