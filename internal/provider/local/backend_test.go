package local

import (
	"context"
	"net/url"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mediabench/mediabench/internal/config"
	"github.com/mediabench/mediabench/pkg/types"
)

func newTestBackend(t *testing.T) *Backend {
	t.Helper()
	root := t.TempDir()

	for _, dir := range []string{"image-case1", "audio-case2", "video-case3"} {
		require.NoError(t, os.MkdirAll(filepath.Join(root, dir), 0o755))
	}
	files := map[string]string{
		"image-case1/small.jpg":  "aa",
		"image-case1/medium.jpg": "bbbb",
		"image-case1/large.jpg":  "cccccc",
		"audio-case2/small.mp3":  "dd",
	}
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(root, name), []byte(content), 0o644))
	}

	b, err := NewBackend(config.LocalConfig{Root: root, BaseURL: "http://localhost:8380/"})
	require.NoError(t, err)
	return b
}

func TestNewBackendMissingRoot(t *testing.T) {
	_, err := NewBackend(config.LocalConfig{Root: "/nonexistent/assets", BaseURL: "http://x"})
	assert.Error(t, err)
}

func TestListFolders(t *testing.T) {
	b := newTestBackend(t)

	folders, err := b.ListFolders(context.Background(), "")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"image-case1", "audio-case2", "video-case3"}, folders)
}

func TestListFilesSubstring(t *testing.T) {
	b := newTestBackend(t)
	ctx := context.Background()

	all, err := b.ListFiles(ctx, "image-case1", "")
	require.NoError(t, err)
	assert.Len(t, all, 3)

	small, err := b.ListFiles(ctx, "image-case1", "small")
	require.NoError(t, err)
	require.Len(t, small, 1)
	assert.Equal(t, "small.jpg", small[0].Name)
	assert.Equal(t, "image-case1/small.jpg", small[0].Path)
}

func TestListFilesError(t *testing.T) {
	b := newTestBackend(t)
	_, err := b.ListFiles(context.Background(), "missing-case", "")
	assert.Error(t, err)
}

func TestDownloadURL(t *testing.T) {
	b := newTestBackend(t)

	ref := types.AssetReference{Path: "image-case1/small.jpg", Name: "small.jpg"}
	raw, err := b.DownloadURL(context.Background(), ref)
	require.NoError(t, err)

	u, err := url.Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, "/assets/image-case1/small.jpg", u.Path)
	assert.Equal(t, "small.jpg", u.Query().Get("filename"))
	assert.Equal(t, "jpg", u.Query().Get("filetype"))
}

func TestUploadOverwrite(t *testing.T) {
	b := newTestBackend(t)
	ctx := context.Background()

	res, err := b.Upload(ctx, "text-case4/new.txt", []byte("v1"))
	require.NoError(t, err)
	assert.Equal(t, int64(2), res.Size)

	// Re-uploading replaces prior content.
	_, err = b.Upload(ctx, "text-case4/new.txt", []byte("longer v2"))
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(b.root, "text-case4", "new.txt"))
	require.NoError(t, err)
	assert.Equal(t, "longer v2", string(data))
}
