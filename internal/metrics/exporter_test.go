package metrics

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mediabench/mediabench/pkg/types"
)

func seededSession(provider string, n int) *Session {
	s := NewSession(provider, types.GeoLocation{Country: "Japan", Continent: "Asia"})
	for i := 0; i < n; i++ {
		s.Append(types.MetricRecord{
			Route:            "/case/1",
			Provider:         provider,
			Country:          "Japan",
			Continent:        "Asia",
			FileURL:          "http://origin/a.png",
			FileName:         "a.png",
			FileType:         "png",
			SizeLabel:        "small",
			FileSizeHuman:    "2.0 kB",
			FetchTimeMs:      12.34,
			ThroughputKBps:   162.07,
			PayloadKB:        2.0,
			HeaderSizeBytes:  118,
			MemoryDeltaHuman: "4.1 kB",
		})
	}
	return s
}

func TestExportWritesReport(t *testing.T) {
	dir := t.TempDir()
	session := seededSession("dropbox", 3)

	path, err := NewExporter(dir, nil).Export(session)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "dropbox_complete_metrics.csv"), path)

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 4) // header + 3 records
	assert.Equal(t, types.MetricColumns, rows[0])
	assert.Equal(t, "12.34", rows[1][9])
	assert.Equal(t, "118", rows[1][12])
}

func TestExportFiresOnce(t *testing.T) {
	dir := t.TempDir()
	session := seededSession("s3", 1)
	exporter := NewExporter(dir, nil)

	first, err := exporter.Export(session)
	require.NoError(t, err)
	assert.NotEmpty(t, first)

	// Revisiting the terminal route never re-exports.
	for i := 0; i < 3; i++ {
		path, err := exporter.Export(session)
		require.NoError(t, err)
		assert.Empty(t, path)
	}
}

func TestExportSkipsEmptySession(t *testing.T) {
	dir := t.TempDir()
	session := NewSession("local", types.UnknownLocation)

	path, err := NewExporter(dir, nil).Export(session)
	require.NoError(t, err)
	assert.Empty(t, path)

	// The one-shot flag stays unset so a later non-empty visit can export.
	assert.False(t, session.Exported())
}
