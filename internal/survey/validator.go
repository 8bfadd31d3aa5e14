// Package survey selects and validates the cases a benchmark run presents.
package survey

import (
	"context"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/mediabench/mediabench/pkg/types"
	"github.com/mediabench/mediabench/pkg/utils"
)

// Validator decides whether a case folder holds enough assets to present.
type Validator struct {
	provider types.Provider
	logger   *slog.Logger
}

// NewValidator creates a validator backed by the active provider.
func NewValidator(p types.Provider) *Validator {
	return &Validator{
		provider: p,
		logger:   slog.Default().With("component", "case-validator"),
	}
}

// CheckAssets reports whether the folder satisfies the minimum asset count
// for its case type. Unknown case types are always invalid, and a failed
// listing counts as invalid rather than aborting the batch.
func (v *Validator) CheckAssets(ctx context.Context, folderPath string, caseType types.CaseType) bool {
	required, ok := types.RequiredAssets[caseType]
	if !ok {
		return false
	}

	files, err := v.provider.ListFiles(ctx, folderPath, "")
	if err != nil {
		v.logger.Warn("listing failed, case treated as invalid",
			"path", folderPath, "error", err)
		return false
	}

	return len(files) >= required
}

// ValidateCases checks every candidate case concurrently, since each
// validation is an independent remote listing, and returns results
// order-aligned with the input names.
func (v *Validator) ValidateCases(ctx context.Context, basePath string, names []string) []bool {
	results := make([]bool, len(names))

	g, gctx := errgroup.WithContext(ctx)
	for i, name := range names {
		i, name := i, name
		g.Go(func() error {
			results[i] = v.CheckAssets(gctx, utils.JoinKey(basePath, name), types.CaseTypeOf(name))
			return nil
		})
	}
	// Workers never return errors; failures are already folded into results.
	_ = g.Wait()

	return results
}
