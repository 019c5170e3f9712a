package app

import (
	"context"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/five82/oneearth/internal/config"
	"github.com/five82/oneearth/internal/logging"
	"github.com/five82/oneearth/internal/metrics"
	"github.com/five82/oneearth/internal/poll"
	"github.com/five82/oneearth/internal/prefs"
	"github.com/five82/oneearth/internal/state"
	"github.com/five82/oneearth/internal/theme"
	"github.com/five82/oneearth/internal/ui"
)

const (
	uiTick        = time.Second
	healthTimeout = 3 * time.Second
	maxBackoff    = 30 * time.Second
)

// Options configure the oneearth application.
type Options struct {
	Config  config.Config
	Version string
	// SiteURL is the build-time public site URL. Config.SiteURL wins when set.
	SiteURL string
}

// Run boots the dashboard until the user quits or the context is cancelled.
func Run(ctx context.Context, opts Options) error {
	cfg := opts.Config

	logger, err := logging.New(cfg.LogFile, cfg.Debug)
	if err != nil {
		return fmt.Errorf("init logging: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	themes := NewThemeStore(cfg, logger)
	themes.InitMode()
	defer themes.Close()

	client, err := NewClient(cfg, opts.Version, logger)
	if err != nil {
		return fmt.Errorf("init metrics client: %w", err)
	}
	logger.Info("starting dashboard",
		zap.String("origin", client.Origin()),
		zap.Duration("poll_interval", cfg.PollInterval),
		zap.Int("series_days", cfg.SeriesDays),
		zap.Int("retries", cfg.Retries))

	checkHealth(ctx, client, logger)

	cache := poll.New(
		poll.WithRetryPolicy(RetryPolicy(cfg)),
		poll.WithLogger(logger.Named("poll")),
	)
	defer cache.Close()

	store := &state.Store{}
	poller := StartPoller(ctx, store, client, cache, PollerConfig{
		Interval: cfg.PollInterval,
		Days:     cfg.SeriesDays,
		Logger:   logger.Named("poller"),
	})
	defer poller.Stop()

	siteURL := cfg.SiteURL
	if siteURL == "" {
		siteURL = opts.SiteURL
	}

	return ui.Run(ui.Options{
		Context:   ctx,
		Store:     store,
		Theme:     themes,
		Refetch:   poller.Refetch,
		PollTick:  uiTick,
		Origin:    client.Origin(),
		HealthURL: client.HealthURL(),
		SiteURL:   siteURL,
		Days:      cfg.SeriesDays,
		Logger:    logger.Named("ui"),
	})
}

// NewClient builds the metrics client described by cfg.
func NewClient(cfg config.Config, version string, logger *zap.Logger) (*metrics.Client, error) {
	if version == "" {
		version = "dev"
	}
	return metrics.NewClient(cfg.APIOrigin,
		metrics.WithTimeout(cfg.RequestTimeout),
		metrics.WithUserAgent("oneearth/"+version),
		metrics.WithLogger(logger.Named("metrics")),
	)
}

// NewThemeStore returns a theme store persisted to cfg.PrefsPath, or held
// in memory when cfg.NoPersist is set. The system signal is the terminal
// background, read here once, when stdout is a terminal and light otherwise.
// Call it before the UI starts.
func NewThemeStore(cfg config.Config, logger *zap.Logger) *theme.Store {
	var signal theme.SystemSignal
	if term.IsTerminal(int(os.Stdout.Fd())) {
		signal = theme.NewTerminalSignal()
	} else {
		signal = theme.NewManualSignal(false)
	}
	var storage theme.Storage = prefs.File{Path: cfg.PrefsPath}
	if cfg.NoPersist {
		storage = theme.NewMemoryStorage("")
	}
	return theme.NewStore(
		theme.WithStorage(storage),
		theme.WithSignal(signal),
		theme.WithLogger(logger.Named("theme")),
	)
}

// RetryPolicy maps the configured retry budget onto the poll cache policy.
func RetryPolicy(cfg config.Config) poll.RetryPolicy {
	p := poll.DefaultRetryPolicy()
	p.Retries = cfg.Retries
	p.MaxInterval = maxBackoff
	return p
}

// checkHealth probes the liveness endpoint once. The dashboard starts either
// way and keeps retrying in the background.
func checkHealth(ctx context.Context, client metrics.Fetcher, logger *zap.Logger) {
	ctx, cancel := context.WithTimeout(ctx, healthTimeout)
	defer cancel()

	if err := client.CheckHealth(ctx); err != nil {
		logger.Warn("metrics API health check failed", zap.Error(err))
		return
	}
	logger.Debug("metrics API healthy")
}
