package bench

import (
	"context"
	"encoding/csv"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mediabench/mediabench/internal/config"
	"github.com/mediabench/mediabench/internal/geo"
	"github.com/mediabench/mediabench/internal/metrics"
	"github.com/mediabench/mediabench/internal/origin"
	"github.com/mediabench/mediabench/internal/provider/local"
	"github.com/mediabench/mediabench/internal/survey"
	"github.com/mediabench/mediabench/pkg/types"
)

func seedAssets(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	write := func(dir string, names ...string) {
		require.NoError(t, os.MkdirAll(filepath.Join(root, dir), 0o755))
		for _, n := range names {
			require.NoError(t, os.WriteFile(filepath.Join(root, dir, n), []byte("asset-body"), 0o644))
		}
	}
	write("image-case1", "small_a.png", "small_b.png", "small_c.png")
	write("audio-case2", "medium_a.mp3", "medium_b.mp3")
	write("text-case3", "small_a.txt") // below threshold, must be filtered out
	return root
}

func newGeoServer(t *testing.T) *geo.Resolver {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"country_name":"Portugal","continent_code":"EU"}`))
	}))
	t.Cleanup(srv.Close)
	return geo.NewResolver(srv.URL, 5*time.Second)
}

func TestRunFullSurvey(t *testing.T) {
	root := seedAssets(t)

	ts := httptest.NewServer(origin.NewServer(":0", root, nil).Handler())
	defer ts.Close()

	provider, err := local.NewBackend(config.LocalConfig{Root: root, BaseURL: ts.URL})
	require.NoError(t, err)

	outDir := t.TempDir()
	runner := NewRunner(provider, newGeoServer(t), nil, ts.Client())

	report, err := runner.Run(context.Background(), Options{
		Selection: survey.Options{Shuffle: types.ShuffleNone},
		OutputDir: outDir,
	})
	require.NoError(t, err)

	// text-case3 has one asset and is below its threshold of two.
	assert.ElementsMatch(t, []string{"image-case1", "audio-case2"}, report.Cases)
	assert.Empty(t, report.Failed)
	assert.Equal(t, 5, report.Records)
	assert.Equal(t, types.GeoLocation{Country: "Portugal", Continent: "Europe"}, report.Location)

	require.NotEmpty(t, report.ExportPath)
	assert.Equal(t, filepath.Join(outDir, "local_complete_metrics.csv"), report.ExportPath)

	f, err := os.Open(report.ExportPath)
	require.NoError(t, err)
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	assert.Len(t, rows, 6) // header + five records
	assert.Equal(t, types.MetricColumns, rows[0])
}

func TestRunWithManifests(t *testing.T) {
	root := seedAssets(t)

	ts := httptest.NewServer(origin.NewServer(":0", root, nil).Handler())
	defer ts.Close()

	provider, err := local.NewBackend(config.LocalConfig{Root: root, BaseURL: ts.URL})
	require.NoError(t, err)

	runner := NewRunner(provider, newGeoServer(t), metrics.NewInstrumentation(), ts.Client())

	report, err := runner.Run(context.Background(), Options{
		Selection: survey.Options{
			UsePreconfigured: true,
			Preset:           []string{"image-case1"},
			Shuffle:          types.ShuffleNone,
		},
		Manifests: map[string][]string{
			"image-case1": {"small_a.png"},
		},
		OutputDir: t.TempDir(),
	})
	require.NoError(t, err)

	// The manifest pins a single asset, overriding the live listing.
	assert.Equal(t, []string{"image-case1"}, report.Cases)
	assert.Equal(t, 1, report.Records)
}

func TestRunCanceledContext(t *testing.T) {
	root := seedAssets(t)

	ts := httptest.NewServer(origin.NewServer(":0", root, nil).Handler())
	defer ts.Close()

	provider, err := local.NewBackend(config.LocalConfig{Root: root, BaseURL: ts.URL})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	runner := NewRunner(provider, newGeoServer(t), nil, ts.Client())
	_, err = runner.Run(ctx, Options{
		Selection: survey.Options{Shuffle: types.ShuffleNone},
		OutputDir: t.TempDir(),
	})
	assert.Error(t, err)
}
