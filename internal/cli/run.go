package cli

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/mediabench/mediabench/internal/bench"
	"github.com/mediabench/mediabench/internal/geo"
	"github.com/mediabench/mediabench/internal/metrics"
	"github.com/mediabench/mediabench/internal/provider"
	"github.com/mediabench/mediabench/internal/survey"
	"github.com/mediabench/mediabench/pkg/types"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the full benchmark survey",
	Long: `Run the full benchmark survey against the configured provider.

Resolves the client location, selects and validates the cases to
present, measures every asset, and writes the CSV report to the
configured output directory.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		p, err := provider.New(ctx, cfg)
		if err != nil {
			return fmt.Errorf("failed to build provider: %w", err)
		}

		var instr *metrics.Instrumentation
		if cfg.Metrics.EnablePrometheus {
			instr = metrics.NewInstrumentation()
		}

		resolver := geo.NewResolver(cfg.Geo.Endpoint, cfg.Geo.Timeout)
		runner := bench.NewRunner(p, resolver, instr, nil)

		report, err := runner.Run(ctx, bench.Options{
			Selection: survey.Options{
				UsePreconfigured: cfg.Survey.UsePreconfigured,
				Path:             cfg.Survey.CasesPath,
				Preset:           cfg.Survey.PresetCases,
				Shuffle:          types.ShuffleMode(cfg.Survey.Shuffle),
			},
			Manifests: cfg.Survey.Manifests,
			OutputDir: cfg.Metrics.OutputDir,
		})
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintf(w, "Session:\t%s\n", report.SessionID)
		fmt.Fprintf(w, "Provider:\t%s\n", p.Name())
		fmt.Fprintf(w, "Location:\t%s / %s\n", report.Location.Country, report.Location.Continent)
		fmt.Fprintf(w, "Cases:\t%d\n", len(report.Cases))
		fmt.Fprintf(w, "Records:\t%d\n", report.Records)
		if len(report.Failed) > 0 {
			fmt.Fprintf(w, "Failed cases:\t%v\n", report.Failed)
		}
		if report.ExportPath != "" {
			fmt.Fprintf(w, "Report:\t%s\n", report.ExportPath)
		}
		return w.Flush()
	},
}
