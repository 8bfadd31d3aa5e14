// Package dropbox implements the consumer-drive provider on the Dropbox
// content API.
package dropbox

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/dropbox/dropbox-sdk-go-unofficial/v6/dropbox"
	"github.com/dropbox/dropbox-sdk-go-unofficial/v6/dropbox/files"

	"github.com/mediabench/mediabench/internal/config"
	bencherrors "github.com/mediabench/mediabench/pkg/errors"
	"github.com/mediabench/mediabench/pkg/types"
	"github.com/mediabench/mediabench/pkg/utils"
)

// Backend implements types.Provider on a Dropbox app folder.
type Backend struct {
	client   files.Client
	rootPath string
	logger   *slog.Logger
}

// NewBackend creates a Dropbox provider from a pre-supplied access token.
func NewBackend(cfg config.DropboxConfig) (*Backend, error) {
	if cfg.AccessToken == "" {
		return nil, fmt.Errorf("access token cannot be empty")
	}

	client := files.New(dropbox.Config{
		Token:    cfg.AccessToken,
		LogLevel: dropbox.LogOff,
	})

	return &Backend{
		client:   client,
		rootPath: normalize(cfg.RootPath),
		logger:   slog.Default().With("component", "dropbox-provider"),
	}, nil
}

// Name returns the provider identifier used in reports.
func (b *Backend) Name() string { return "dropbox" }

// ListFolders returns folder names directly under path, following the
// listing cursor until has_more is exhausted.
func (b *Backend) ListFolders(ctx context.Context, path string) ([]string, error) {
	entries, err := b.listAll(b.join(path))
	if err != nil {
		return nil, bencherrors.Wrap(bencherrors.ErrCodeListFailed, "ListFolders", path, err)
	}

	var folders []string
	for _, entry := range entries {
		if folder, ok := entry.(*files.FolderMetadata); ok {
			folders = append(folders, folder.Name)
		}
	}
	return folders, nil
}

// ListFiles returns file references directly under path whose names contain
// substring.
func (b *Backend) ListFiles(ctx context.Context, path, substring string) ([]types.AssetReference, error) {
	entries, err := b.listAll(b.join(path))
	if err != nil {
		return nil, bencherrors.Wrap(bencherrors.ErrCodeListFailed, "ListFiles", path, err)
	}

	var refs []types.AssetReference
	for _, entry := range entries {
		file, ok := entry.(*files.FileMetadata)
		if !ok || !utils.MatchName(file.Name, substring) {
			continue
		}
		refs = append(refs, types.AssetReference{Path: file.PathDisplay, Name: file.Name})
	}
	return refs, nil
}

// DownloadURL resolves a temporary direct link for the asset.
func (b *Backend) DownloadURL(_ context.Context, ref types.AssetReference) (string, error) {
	res, err := b.client.GetTemporaryLink(files.NewGetTemporaryLinkArg(normalize(ref.Path)))
	if err != nil {
		return "", bencherrors.Wrap(bencherrors.ErrCodeURLFailed, "DownloadURL", ref.Path, err)
	}

	decorated, err := utils.DecorateURL(res.Link, ref.Name)
	if err != nil {
		return "", bencherrors.Wrap(bencherrors.ErrCodeURLFailed, "DownloadURL", ref.Path, err)
	}
	return decorated, nil
}

// Upload writes data at path in overwrite mode; re-uploading to the same
// path replaces prior content.
func (b *Backend) Upload(_ context.Context, path string, data []byte) (*types.UploadResult, error) {
	arg := files.NewUploadArg(b.join(path))
	arg.Mode = &files.WriteMode{Tagged: dropbox.Tagged{Tag: files.WriteModeOverwrite}}
	arg.Mute = true

	meta, err := b.client.Upload(arg, bytes.NewReader(data))
	if err != nil {
		return nil, bencherrors.Wrap(bencherrors.ErrCodeUploadFailed, "Upload", path, err)
	}

	return &types.UploadResult{
		Path: meta.PathDisplay,
		ETag: meta.Rev,
		Size: int64(meta.Size),
	}, nil
}

// listAll exhausts the folder listing cursor so a partial page never
// undercounts.
func (b *Backend) listAll(path string) ([]files.IsMetadata, error) {
	res, err := b.client.ListFolder(files.NewListFolderArg(path))
	if err != nil {
		return nil, err
	}

	entries := res.Entries
	for res.HasMore {
		res, err = b.client.ListFolderContinue(files.NewListFolderContinueArg(res.Cursor))
		if err != nil {
			return nil, err
		}
		entries = append(entries, res.Entries...)
	}
	return entries, nil
}

func (b *Backend) join(path string) string {
	path = normalize(path)
	if b.rootPath == "" || b.rootPath == "/" {
		return path
	}
	if path == "" || path == "/" {
		return b.rootPath
	}
	return b.rootPath + path
}

// normalize forces the leading slash the Dropbox API requires; the API root
// itself is the empty string.
func normalize(path string) string {
	path = strings.Trim(path, "/")
	if path == "" {
		return ""
	}
	return "/" + path
}
