package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/five82/oneearth/internal/app"
	"github.com/five82/oneearth/internal/present"
)

const (
	formatText = "text"
	formatJSON = "json"
	formatYAML = "yaml"
)

func newSnapshotCmd(configPath *string) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Print the current reading once and exit",
		Long: `Fetch the latest reading, the series and the API banner once and print them.

No retries are made; a failed request exits non-zero.

Examples:
  oneearth snapshot
  oneearth snapshot --format json
  oneearth snapshot --format yaml --days 7`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			switch format {
			case formatText, formatJSON, formatYAML:
			default:
				return fmt.Errorf("unknown format %q (want text, json or yaml)", format)
			}

			cfg, err := loadConfig(cmd, *configPath)
			if err != nil {
				return err
			}
			client, err := app.NewClient(cfg, version, zap.NewNop())
			if err != nil {
				return fmt.Errorf("init metrics client: %w", err)
			}
			report, err := app.FetchReport(cmd.Context(), client, client.Origin(), cfg.SeriesDays, time.Now)
			if err != nil {
				return err
			}
			return writeReport(cmd.OutOrStdout(), report, format)
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", formatText, "output format: text, json or yaml")
	return cmd
}

func writeReport(w io.Writer, r app.Report, format string) error {
	switch format {
	case formatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(r)
	case formatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(r); err != nil {
			return fmt.Errorf("encode yaml: %w", err)
		}
		return enc.Close()
	default:
		return writeText(w, r)
	}
}

func writeText(w io.Writer, r app.Report) error {
	var b strings.Builder
	fmt.Fprintf(&b, "CO2          %s\n", r.Readout.Value)
	fmt.Fprintf(&b, "Last updated %s\n", r.Readout.Updated)
	if len(r.Series) > 0 {
		fmt.Fprintf(&b, "%d-day range  %s to %s (%d points)\n", r.Days, present.FormatValue(r.Min), present.FormatValue(r.Max), len(r.Series))
	} else {
		fmt.Fprintf(&b, "%d-day range  no data\n", r.Days)
	}
	fmt.Fprintf(&b, "API says     %s\n", r.Hello)
	fmt.Fprintf(&b, "API          %s\n", r.Origin)
	fmt.Fprintf(&b, "%s\n", present.Attribution)
	_, err := io.WriteString(w, b.String())
	return err
}
