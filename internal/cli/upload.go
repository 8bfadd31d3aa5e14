package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/mediabench/mediabench/internal/provider"
	"github.com/mediabench/mediabench/pkg/utils"
)

var uploadCmd = &cobra.Command{
	Use:   "upload <case-dir> <file>...",
	Short: "Seed asset files into a case directory on the provider",
	Long: `Seed one or more local asset files into a case directory on the
configured provider. Backends with optimistic concurrency use a
conditional write keyed on the last observed version; a missing prior
version creates the object.`,
	Args: cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		caseDir := args[0]

		p, err := provider.New(ctx, cfg)
		if err != nil {
			return fmt.Errorf("failed to build provider: %w", err)
		}

		for _, file := range args[1:] {
			data, err := os.ReadFile(file)
			if err != nil {
				return fmt.Errorf("failed to read %s: %w", file, err)
			}

			target := utils.JoinKey(caseDir, filepath.Base(file))
			result, err := p.Upload(ctx, target, data)
			if err != nil {
				return fmt.Errorf("failed to upload %s: %w", file, err)
			}

			fmt.Printf("uploaded %s -> %s (%s)\n", file, result.Path, humanize.Bytes(uint64(result.Size)))
		}
		return nil
	},
}
