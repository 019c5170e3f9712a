package cli

import (
	"runtime"

	"github.com/spf13/cobra"
)

func newVersionCmd() *cobra.Command {
	var short bool

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Long:  `Print the version, commit hash, build date and public site URL of oneearth.`,
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			if short {
				cmd.Println(version)
				return
			}

			site := siteURL
			if site == "" {
				site = "(not set)"
			}
			cmd.Printf("oneearth %s\n", formatVersion(version))
			cmd.Printf("commit: %s\n", commit)
			cmd.Printf("built: %s\n", date)
			cmd.Printf("site: %s\n", site)
			cmd.Printf("go: %s\n", runtime.Version())
			cmd.Printf("os/arch: %s/%s\n", runtime.GOOS, runtime.GOARCH)
		},
	}
	cmd.Flags().BoolVar(&short, "short", false, "Print only the version number")
	return cmd
}

// formatVersion ensures version has a 'v' prefix for display
func formatVersion(v string) string {
	if v == "" || v == "dev" {
		return v
	}
	if v[0] != 'v' {
		return "v" + v
	}
	return v
}
