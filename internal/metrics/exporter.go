package metrics

import (
	"encoding/csv"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"

	mberrors "github.com/mediabench/mediabench/pkg/errors"
	"github.com/mediabench/mediabench/pkg/types"
)

// Exporter materializes a session's record log as a CSV report. The
// export fires at most once per session; later calls are no-ops.
type Exporter struct {
	outputDir string
	instr     *Instrumentation
	logger    *slog.Logger
}

// NewExporter creates an exporter writing into outputDir.
func NewExporter(outputDir string, instr *Instrumentation) *Exporter {
	return &Exporter{
		outputDir: outputDir,
		instr:     instr,
		logger:    slog.Default().With("component", "exporter"),
	}
}

// Export writes the session's records to <provider>_complete_metrics.csv
// in arrival order. It returns the written path, or "" when the session
// is empty or was already exported.
func (e *Exporter) Export(session *Session) (string, error) {
	if session.Len() == 0 {
		e.logger.Debug("session log empty, nothing to export", "session", session.ID)
		return "", nil
	}
	if !session.BeginExport() {
		e.logger.Debug("session already exported", "session", session.ID)
		return "", nil
	}

	if err := os.MkdirAll(e.outputDir, 0o755); err != nil {
		return "", mberrors.Wrap(mberrors.ErrCodeExportFailed, "export", e.outputDir, err)
	}

	path := filepath.Join(e.outputDir, session.Provider+"_complete_metrics.csv")
	f, err := os.Create(path)
	if err != nil {
		return "", mberrors.Wrap(mberrors.ErrCodeExportFailed, "export", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(types.MetricColumns); err != nil {
		return "", mberrors.Wrap(mberrors.ErrCodeExportFailed, "export", path, err)
	}
	for _, record := range session.Records() {
		if err := w.Write(rowOf(record)); err != nil {
			return "", mberrors.Wrap(mberrors.ErrCodeExportFailed, "export", path, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", mberrors.Wrap(mberrors.ErrCodeExportFailed, "export", path, err)
	}

	if e.instr != nil {
		e.instr.recordExport(session.Provider)
	}
	e.logger.Info("report exported", "path", path, "records", session.Len())
	return path, nil
}

// rowOf serializes one record in the column order of MetricColumns.
func rowOf(r types.MetricRecord) []string {
	return []string{
		r.Route,
		r.Provider,
		r.Country,
		r.Continent,
		r.FileURL,
		r.FileName,
		r.FileType,
		r.SizeLabel,
		r.FileSizeHuman,
		strconv.FormatFloat(r.FetchTimeMs, 'f', 2, 64),
		strconv.FormatFloat(r.ThroughputKBps, 'f', 2, 64),
		strconv.FormatFloat(r.PayloadKB, 'f', 2, 64),
		strconv.FormatInt(r.HeaderSizeBytes, 10),
		r.MemoryDeltaHuman,
	}
}
