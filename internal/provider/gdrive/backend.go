// Package gdrive implements the consumer-drive provider on the Google Drive
// v3 API. Paths are slash-separated folder names resolved to Drive file IDs
// under a configured root folder.
package gdrive

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"golang.org/x/oauth2"
	drive "google.golang.org/api/drive/v3"
	"google.golang.org/api/option"

	"github.com/mediabench/mediabench/internal/config"
	bencherrors "github.com/mediabench/mediabench/pkg/errors"
	"github.com/mediabench/mediabench/pkg/types"
	"github.com/mediabench/mediabench/pkg/utils"
)

const folderMimeType = "application/vnd.google-apps.folder"

// Backend implements types.Provider on a Google Drive folder tree.
type Backend struct {
	service *drive.Service
	rootID  string
	logger  *slog.Logger

	// folderIDs caches path → folder ID resolutions for the session.
	mu        sync.Mutex
	folderIDs map[string]string
}

// NewBackend creates a Drive provider from a pre-supplied OAuth access token
// and root folder ID.
func NewBackend(ctx context.Context, cfg config.GDriveConfig) (*Backend, error) {
	if cfg.AccessToken == "" {
		return nil, fmt.Errorf("access token cannot be empty")
	}
	if cfg.RootFolderID == "" {
		return nil, fmt.Errorf("root folder id cannot be empty")
	}

	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: cfg.AccessToken})
	service, err := drive.NewService(ctx, option.WithTokenSource(ts))
	if err != nil {
		return nil, fmt.Errorf("failed to create drive service: %w", err)
	}

	return &Backend{
		service:   service,
		rootID:    cfg.RootFolderID,
		logger:    slog.Default().With("component", "gdrive-provider"),
		folderIDs: map[string]string{"": cfg.RootFolderID},
	}, nil
}

// Name returns the provider identifier used in reports.
func (b *Backend) Name() string { return "gdrive" }

// ListFolders returns the names of the folders directly under path.
func (b *Backend) ListFolders(ctx context.Context, path string) ([]string, error) {
	parentID, err := b.resolveFolder(ctx, path)
	if err != nil {
		return nil, bencherrors.Wrap(bencherrors.ErrCodeListFailed, "ListFolders", path, err)
	}

	items, err := b.listChildren(ctx, parentID, true)
	if err != nil {
		return nil, bencherrors.Wrap(bencherrors.ErrCodeListFailed, "ListFolders", path, err)
	}

	folders := make([]string, 0, len(items))
	for _, f := range items {
		folders = append(folders, f.Name)
	}
	return folders, nil
}

// ListFiles returns references to the files directly under path whose names
// contain substring. The reference path carries the Drive file ID alongside
// the logical path so DownloadURL needs no second lookup.
func (b *Backend) ListFiles(ctx context.Context, path, substring string) ([]types.AssetReference, error) {
	parentID, err := b.resolveFolder(ctx, path)
	if err != nil {
		return nil, bencherrors.Wrap(bencherrors.ErrCodeListFailed, "ListFiles", path, err)
	}

	items, err := b.listChildren(ctx, parentID, false)
	if err != nil {
		return nil, bencherrors.Wrap(bencherrors.ErrCodeListFailed, "ListFiles", path, err)
	}

	var refs []types.AssetReference
	for _, f := range items {
		if !utils.MatchName(f.Name, substring) {
			continue
		}
		refs = append(refs, types.AssetReference{Path: f.Id, Name: f.Name})
	}
	return refs, nil
}

// DownloadURL builds the direct-download URL for the asset's Drive file ID.
func (b *Backend) DownloadURL(_ context.Context, ref types.AssetReference) (string, error) {
	raw := "https://drive.google.com/uc?export=download&id=" + ref.Path
	decorated, err := utils.DecorateURL(raw, ref.Name)
	if err != nil {
		return "", bencherrors.Wrap(bencherrors.ErrCodeURLFailed, "DownloadURL", ref.Path, err)
	}
	return decorated, nil
}

// Upload writes data at path (folder/.../name). An existing file with the
// same name in the target folder is updated in place, so re-uploading is
// idempotent.
func (b *Backend) Upload(ctx context.Context, path string, data []byte) (*types.UploadResult, error) {
	dir, name := splitPath(path)
	parentID, err := b.resolveFolder(ctx, dir)
	if err != nil {
		return nil, bencherrors.Wrap(bencherrors.ErrCodeUploadFailed, "Upload", path, err)
	}

	existing, err := b.findChild(ctx, parentID, name, false)
	if err != nil {
		return nil, bencherrors.Wrap(bencherrors.ErrCodeUploadFailed, "Upload", path, err)
	}

	var file *drive.File
	if existing != "" {
		file, err = b.service.Files.Update(existing, &drive.File{}).
			Media(bytes.NewReader(data)).Context(ctx).Do()
	} else {
		file, err = b.service.Files.Create(&drive.File{Name: name, Parents: []string{parentID}}).
			Media(bytes.NewReader(data)).Context(ctx).Do()
	}
	if err != nil {
		return nil, bencherrors.Wrap(bencherrors.ErrCodeUploadFailed, "Upload", path, err)
	}

	return &types.UploadResult{Path: file.Id, Size: int64(len(data))}, nil
}

// resolveFolder walks the slash-separated path from the root folder, one
// name lookup per segment, caching resolved IDs.
func (b *Backend) resolveFolder(ctx context.Context, path string) (string, error) {
	path = strings.Trim(path, "/")

	b.mu.Lock()
	if id, ok := b.folderIDs[path]; ok {
		b.mu.Unlock()
		return id, nil
	}
	b.mu.Unlock()

	id := b.rootID
	if path != "" {
		for _, segment := range strings.Split(path, "/") {
			child, err := b.findChild(ctx, id, segment, true)
			if err != nil {
				return "", err
			}
			if child == "" {
				return "", fmt.Errorf("folder %q not found", segment)
			}
			id = child
		}
	}

	b.mu.Lock()
	b.folderIDs[path] = id
	b.mu.Unlock()
	return id, nil
}

// listChildren pages through a folder's children, exhausting nextPageToken.
func (b *Backend) listChildren(ctx context.Context, parentID string, foldersOnly bool) ([]*drive.File, error) {
	query := fmt.Sprintf("'%s' in parents and trashed = false", parentID)
	if foldersOnly {
		query += fmt.Sprintf(" and mimeType = '%s'", folderMimeType)
	} else {
		query += fmt.Sprintf(" and mimeType != '%s'", folderMimeType)
	}

	var items []*drive.File
	pageToken := ""
	for {
		call := b.service.Files.List().
			Q(query).
			Fields("nextPageToken, files(id, name, mimeType)").
			Context(ctx)
		if pageToken != "" {
			call = call.PageToken(pageToken)
		}

		res, err := call.Do()
		if err != nil {
			return nil, err
		}

		items = append(items, res.Files...)
		if res.NextPageToken == "" {
			break
		}
		pageToken = res.NextPageToken
	}
	return items, nil
}

func (b *Backend) findChild(ctx context.Context, parentID, name string, folder bool) (string, error) {
	mimeOp := "!="
	if folder {
		mimeOp = "="
	}
	query := fmt.Sprintf("'%s' in parents and name = '%s' and mimeType %s '%s' and trashed = false",
		parentID, strings.ReplaceAll(name, "'", `\'`), mimeOp, folderMimeType)

	res, err := b.service.Files.List().Q(query).Fields("files(id)").PageSize(1).Context(ctx).Do()
	if err != nil {
		return "", err
	}
	if len(res.Files) == 0 {
		return "", nil
	}
	return res.Files[0].Id, nil
}

func splitPath(path string) (dir, name string) {
	path = strings.Trim(path, "/")
	if i := strings.LastIndex(path, "/"); i >= 0 {
		return path[:i], path[i+1:]
	}
	return "", path
}
