// Package bench drives one full survey pass: resolve the client
// location, select the cases to present, measure every case route in
// order, and export the session report on reaching the terminal route.
package bench

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/mediabench/mediabench/internal/geo"
	"github.com/mediabench/mediabench/internal/metrics"
	"github.com/mediabench/mediabench/internal/survey"
	"github.com/mediabench/mediabench/pkg/types"
)

// Options configures one survey run.
type Options struct {
	Selection survey.Options
	// Manifests maps a case name to its fixed asset filenames. Cases
	// without an entry are measured from a live listing.
	Manifests map[string][]string
	OutputDir string
}

// Report summarizes a completed run.
type Report struct {
	SessionID  string
	Location   types.GeoLocation
	Cases      []string
	Records    int
	Failed     []string
	ExportPath string
}

// Runner wires the survey components around one provider.
type Runner struct {
	provider types.Provider
	resolver *geo.Resolver
	instr    *metrics.Instrumentation
	client   *http.Client
	logger   *slog.Logger
}

// NewRunner creates a runner. instr and client may be nil; a nil client
// measures with a default no-timeout client.
func NewRunner(provider types.Provider, resolver *geo.Resolver, instr *metrics.Instrumentation, client *http.Client) *Runner {
	return &Runner{
		provider: provider,
		resolver: resolver,
		instr:    instr,
		client:   client,
		logger:   slog.Default().With("component", "bench"),
	}
}

// Run executes the whole survey flow and returns its report. A failed
// case is recorded in Report.Failed and the run moves on to the next
// case; only selection errors and context cancellation abort the run.
func (r *Runner) Run(ctx context.Context, opts Options) (*Report, error) {
	location := r.resolver.Resolve(ctx)
	session := metrics.NewSession(r.provider.Name(), location)

	r.logger.Info("survey starting",
		"session", session.ID,
		"provider", session.Provider,
		"country", location.Country,
		"continent", location.Continent)

	selector := survey.NewSelector(r.provider, survey.NewValidator(r.provider))
	cases, err := selector.FetchCases(ctx, opts.Selection)
	if err != nil {
		return nil, fmt.Errorf("case selection failed: %w", err)
	}
	if len(cases) == 0 {
		r.logger.Warn("no valid cases to present")
	}

	collector := metrics.NewCollector(r.provider, session, r.instr, r.client)

	report := &Report{
		SessionID: session.ID,
		Location:  location,
		Cases:     cases,
	}

	for i, caseDir := range cases {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		route := fmt.Sprintf("/case/%d", i+1)
		if err := collector.CollectCase(ctx, route, caseDir, opts.Manifests[caseDir]); err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			r.logger.Warn("case measurement failed", "case", caseDir, "error", err)
			report.Failed = append(report.Failed, caseDir)
		}
	}

	exporter := metrics.NewExporter(opts.OutputDir, r.instr)
	path, err := exporter.Export(session)
	if err != nil {
		return nil, fmt.Errorf("report export failed: %w", err)
	}

	report.Records = session.Len()
	report.ExportPath = path

	r.logger.Info("survey complete",
		"session", session.ID,
		"cases", len(cases),
		"records", report.Records,
		"failed", len(report.Failed),
		"report", path)
	return report, nil
}
