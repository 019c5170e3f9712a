package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/five82/oneearth/internal/app"
	"github.com/five82/oneearth/internal/config"
)

// Build information set via ldflags in main.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
	siteURL = ""
)

// SetVersionInfo sets the build information (called from main).
func SetVersionInfo(v, c, d, site string) {
	version = v
	commit = c
	date = d
	siteURL = site
}

// NewRootCmd builds the command tree. The root command runs the dashboard.
func NewRootCmd() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:   "oneearth",
		Short: "Live atmospheric CO2 dashboard",
		Long: `Show the latest atmospheric CO2 reading and its recent history in the terminal.

The dashboard polls the metrics API every poll interval and retries failed
requests with backoff. Settings come from flags, ONEEARTH_* environment
variables and ~/.config/oneearth/config.toml, in that order.

Examples:
  oneearth
  oneearth --api-origin https://api.one-earth.info --days 90
  ONEEARTH_POLL_INTERVAL=30s oneearth`,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, configPath)
			if err != nil {
				return err
			}
			return app.Run(cmd.Context(), app.Options{
				Config:  cfg,
				Version: version,
				SiteURL: siteURL,
			})
		},
	}

	root.PersistentFlags().StringVar(&configPath, "config", "", "config file (default "+config.DefaultPath()+")")
	config.RegisterFlags(root.PersistentFlags())

	root.AddCommand(newSnapshotCmd(&configPath))
	root.AddCommand(newThemeCmd(&configPath))
	root.AddCommand(newVersionCmd())
	return root
}

// Execute runs the root command and exits non-zero on error.
func Execute() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := NewRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "oneearth: %v\n", err)
		cancel()
		os.Exit(1)
	}
}

func loadConfig(cmd *cobra.Command, path string) (config.Config, error) {
	cfg, err := config.Load(path, cmd.Flags())
	if err != nil {
		return config.Config{}, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}
