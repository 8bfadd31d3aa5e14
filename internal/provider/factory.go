// Package provider composes the configured storage backend behind the
// types.Provider contract. The backend is chosen exactly once here; call
// sites never branch on provider identity.
package provider

import (
	"context"
	"fmt"

	"github.com/mediabench/mediabench/internal/config"
	"github.com/mediabench/mediabench/internal/provider/dropbox"
	"github.com/mediabench/mediabench/internal/provider/gdrive"
	"github.com/mediabench/mediabench/internal/provider/gridfs"
	"github.com/mediabench/mediabench/internal/provider/local"
	"github.com/mediabench/mediabench/internal/provider/s3"
	"github.com/mediabench/mediabench/pkg/types"
)

// New builds the active provider named by the configuration.
func New(ctx context.Context, cfg *config.Configuration) (types.Provider, error) {
	switch cfg.Provider.Active {
	case "s3":
		return s3.NewBackend(ctx, cfg.Provider.S3)
	case "dropbox":
		return dropbox.NewBackend(cfg.Provider.Dropbox)
	case "gdrive":
		return gdrive.NewBackend(ctx, cfg.Provider.GDrive)
	case "gridfs":
		return gridfs.NewBackend(ctx, cfg.Provider.GridFS)
	case "local":
		return local.NewBackend(cfg.Provider.Local)
	default:
		return nil, fmt.Errorf("unknown provider %q", cfg.Provider.Active)
	}
}
