package cli

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/mediabench/mediabench/internal/provider"
	"github.com/mediabench/mediabench/internal/survey"
	"github.com/mediabench/mediabench/pkg/types"
)

var casesCmd = &cobra.Command{
	Use:   "cases",
	Short: "List candidate cases and their validity",
	Long: `List the candidate cases visible to the configured provider along
with their detected type, required asset count, and whether they pass
validation.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		p, err := provider.New(ctx, cfg)
		if err != nil {
			return fmt.Errorf("failed to build provider: %w", err)
		}

		names := cfg.Survey.PresetCases
		if !cfg.Survey.UsePreconfigured {
			names, err = p.ListFolders(ctx, cfg.Survey.CasesPath)
			if err != nil {
				return fmt.Errorf("failed to list cases: %w", err)
			}
		}
		if len(names) == 0 {
			fmt.Println("No candidate cases found.")
			return nil
		}

		results := survey.NewValidator(p).ValidateCases(ctx, cfg.Survey.CasesPath, names)

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "CASE\tTYPE\tREQUIRED\tVALID")
		for i, name := range names {
			caseType := types.CaseTypeOf(name)
			fmt.Fprintf(w, "%s\t%s\t%d\t%t\n", name, caseType, types.RequiredAssets[caseType], results[i])
		}
		return w.Flush()
	},
}
