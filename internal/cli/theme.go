package cli

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/five82/oneearth/internal/app"
	"github.com/five82/oneearth/internal/theme"
)

func newThemeCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "theme [light|dark|system]",
		Short: "Show or set the persisted theme mode",
		Long: `Print the persisted theme mode and the appearance it resolves to, or set it.

System mode follows the terminal background.

Examples:
  oneearth theme
  oneearth theme dark`,
		Args:      cobra.MaximumNArgs(1),
		ValidArgs: []string{string(theme.Light), string(theme.Dark), string(theme.System)},
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, *configPath)
			if err != nil {
				return err
			}
			store := app.NewThemeStore(cfg, zap.NewNop())
			defer store.Close()
			store.InitMode()

			if len(args) == 1 {
				mode, err := theme.ParseMode(args[0])
				if err != nil {
					return err
				}
				store.SetMode(mode)
			}

			cmd.Printf("%s (%s)\n", store.Mode(), store.ColorScheme())
			return nil
		},
	}
}
