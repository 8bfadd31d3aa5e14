// Package local implements the client-local origin provider: assets live in
// a filesystem tree and are served over HTTP by the origin server.
package local

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mediabench/mediabench/internal/config"
	bencherrors "github.com/mediabench/mediabench/pkg/errors"
	"github.com/mediabench/mediabench/pkg/types"
	"github.com/mediabench/mediabench/pkg/utils"
)

// Backend implements types.Provider over a local asset directory.
type Backend struct {
	root    string
	baseURL string
}

// NewBackend creates a local provider rooted at cfg.Root; download URLs are
// built against cfg.BaseURL (the origin server address).
func NewBackend(cfg config.LocalConfig) (*Backend, error) {
	if cfg.Root == "" {
		return nil, fmt.Errorf("asset root cannot be empty")
	}
	info, err := os.Stat(cfg.Root)
	if err != nil {
		return nil, fmt.Errorf("asset root not accessible: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("asset root %s is not a directory", cfg.Root)
	}

	return &Backend{
		root:    cfg.Root,
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
	}, nil
}

// Name returns the provider identifier used in reports.
func (b *Backend) Name() string { return "local" }

// ListFolders returns the directories directly under path.
func (b *Backend) ListFolders(_ context.Context, path string) ([]string, error) {
	entries, err := os.ReadDir(filepath.Join(b.root, filepath.FromSlash(path)))
	if err != nil {
		return nil, bencherrors.Wrap(bencherrors.ErrCodeListFailed, "ListFolders", path, err)
	}

	var folders []string
	for _, entry := range entries {
		if entry.IsDir() {
			folders = append(folders, entry.Name())
		}
	}
	return folders, nil
}

// ListFiles returns references to the regular files directly under path
// whose names contain substring.
func (b *Backend) ListFiles(_ context.Context, path, substring string) ([]types.AssetReference, error) {
	entries, err := os.ReadDir(filepath.Join(b.root, filepath.FromSlash(path)))
	if err != nil {
		return nil, bencherrors.Wrap(bencherrors.ErrCodeListFailed, "ListFiles", path, err)
	}

	var refs []types.AssetReference
	for _, entry := range entries {
		if entry.IsDir() || !utils.MatchName(entry.Name(), substring) {
			continue
		}
		rel := strings.Trim(path, "/")
		key := entry.Name()
		if rel != "" {
			key = rel + "/" + entry.Name()
		}
		refs = append(refs, types.AssetReference{Path: key, Name: entry.Name()})
	}
	return refs, nil
}

// DownloadURL builds the origin-server URL for the asset.
func (b *Backend) DownloadURL(_ context.Context, ref types.AssetReference) (string, error) {
	raw := b.baseURL + "/assets/" + strings.TrimLeft(ref.Path, "/")
	decorated, err := utils.DecorateURL(raw, ref.Name)
	if err != nil {
		return "", bencherrors.Wrap(bencherrors.ErrCodeURLFailed, "DownloadURL", ref.Path, err)
	}
	return decorated, nil
}

// Upload writes data into the asset tree, creating parent directories as
// needed. Overwrites are idempotent.
func (b *Backend) Upload(_ context.Context, path string, data []byte) (*types.UploadResult, error) {
	target := filepath.Join(b.root, filepath.FromSlash(strings.Trim(path, "/")))
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return nil, bencherrors.Wrap(bencherrors.ErrCodeUploadFailed, "Upload", path, err)
	}
	if err := os.WriteFile(target, data, 0o644); err != nil {
		return nil, bencherrors.Wrap(bencherrors.ErrCodeUploadFailed, "Upload", path, err)
	}
	return &types.UploadResult{Path: strings.Trim(path, "/"), Size: int64(len(data))}, nil
}
