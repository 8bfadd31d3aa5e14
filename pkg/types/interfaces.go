package types

import "context"

// Provider defines the uniform contract every storage backend satisfies.
// Exactly one implementation is selected at composition time; no
// backend-specific type crosses this boundary.
type Provider interface {
	// Name returns the provider's short identifier (used in report filenames
	// and record fields).
	Name() string

	// ListFolders returns the names of the folders directly under path.
	// Implementations must exhaust pagination so a partial page never
	// yields an undercount.
	ListFolders(ctx context.Context, path string) ([]string, error)

	// ListFiles returns references to the files directly under path whose
	// names contain substring. An empty substring matches everything.
	ListFiles(ctx context.Context, path, substring string) ([]AssetReference, error)

	// DownloadURL resolves an absolute URL for the asset, with `filename`
	// and `filetype` appended as query parameters.
	DownloadURL(ctx context.Context, ref AssetReference) (string, error)

	// Upload stores data at path, replacing any prior content. Backends
	// that expose entity tags issue a conditional write with the most
	// recently observed tag; a "not found" precondition means "no prior
	// version" and is not an error.
	Upload(ctx context.Context, path string, data []byte) (*UploadResult, error)
}
