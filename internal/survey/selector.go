package survey

import (
	"context"
	"log/slog"
	"math/rand"
	"time"

	"github.com/mediabench/mediabench/pkg/types"
)

// categoryOrder is the fixed bucket concatenation order for categorized
// shuffling. The priority is a policy choice; do not reorder.
var categoryOrder = []types.CaseType{
	types.CaseImage,
	types.CaseHybrid,
	types.CaseVideo,
	types.CaseAudio,
	types.CaseText,
}

// Selector produces the ordered (or shuffled) set of valid cases to present.
type Selector struct {
	provider  types.Provider
	validator *Validator
	rng       *rand.Rand
	logger    *slog.Logger
}

// Options configures one case-selection pass.
type Options struct {
	// UsePreconfigured presents Preset instead of a live folder listing.
	UsePreconfigured bool
	// Path is the folder listed (and the validation base) on the provider.
	Path string
	// Preset is the preconfigured candidate list.
	Preset []string
	// Shuffle is the presentation-order policy.
	Shuffle types.ShuffleMode
}

// NewSelector creates a selector with a time-seeded RNG.
func NewSelector(p types.Provider, v *Validator) *Selector {
	return NewSelectorWithRand(p, v, rand.New(rand.NewSource(time.Now().UnixNano())))
}

// NewSelectorWithRand creates a selector with an injected RNG so shuffle
// behavior is reproducible in tests.
func NewSelectorWithRand(p types.Provider, v *Validator, rng *rand.Rand) *Selector {
	return &Selector{
		provider:  p,
		validator: v,
		rng:       rng,
		logger:    slog.Default().With("component", "case-selector"),
	}
}

// FetchCases gathers the candidate cases, keeps the valid ones in their
// original relative order, and applies the shuffle policy.
func (s *Selector) FetchCases(ctx context.Context, opts Options) ([]string, error) {
	candidates := opts.Preset
	if !opts.UsePreconfigured {
		listed, err := s.provider.ListFolders(ctx, opts.Path)
		if err != nil {
			return nil, err
		}
		candidates = listed
	}

	valid := s.validator.ValidateCases(ctx, opts.Path, candidates)

	filtered := make([]string, 0, len(candidates))
	for i, name := range candidates {
		if valid[i] {
			filtered = append(filtered, name)
		}
	}
	s.logger.Debug("cases validated",
		"candidates", len(candidates), "valid", len(filtered), "shuffle", opts.Shuffle)

	switch opts.Shuffle {
	case types.ShuffleFull:
		s.rng.Shuffle(len(filtered), func(i, j int) {
			filtered[i], filtered[j] = filtered[j], filtered[i]
		})
		return filtered, nil
	case types.ShuffleCategorized:
		return s.categorized(filtered), nil
	default:
		return filtered, nil
	}
}

// categorized buckets the names by case type, permutes each bucket
// independently, and concatenates the buckets in the fixed priority order.
func (s *Selector) categorized(names []string) []string {
	buckets := make(map[types.CaseType][]string, len(categoryOrder))
	for _, name := range names {
		t := types.CaseTypeOf(name)
		buckets[t] = append(buckets[t], name)
	}

	out := make([]string, 0, len(names))
	for _, t := range categoryOrder {
		bucket := buckets[t]
		s.rng.Shuffle(len(bucket), func(i, j int) {
			bucket[i], bucket[j] = bucket[j], bucket[i]
		})
		out = append(out, bucket...)
	}
	return out
}
