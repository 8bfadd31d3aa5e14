// Package gridfs implements the NoSQL-backed file store provider on MongoDB
// GridFS. Assets are stored under slash-separated filenames; an external HTTP
// gateway serves their content by filename.
package gridfs

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/gridfs"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/mediabench/mediabench/internal/config"
	bencherrors "github.com/mediabench/mediabench/pkg/errors"
	"github.com/mediabench/mediabench/pkg/types"
	"github.com/mediabench/mediabench/pkg/utils"
)

// Backend implements types.Provider on a GridFS bucket.
type Backend struct {
	client     *mongo.Client
	bucket     *gridfs.Bucket
	filesCol   *mongo.Collection
	rootPath   string
	gatewayURL string
	logger     *slog.Logger
}

// NewBackend connects to MongoDB and opens the configured GridFS bucket.
func NewBackend(ctx context.Context, cfg config.GridFSConfig) (*Backend, error) {
	if cfg.URI == "" {
		return nil, fmt.Errorf("connection URI cannot be empty")
	}

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}

	db := client.Database(cfg.Database)
	bucketName := cfg.Bucket
	if bucketName == "" {
		bucketName = "fs"
	}
	bucket, err := gridfs.NewBucket(db, options.GridFSBucket().SetName(bucketName))
	if err != nil {
		return nil, fmt.Errorf("failed to open gridfs bucket: %w", err)
	}

	return &Backend{
		client:     client,
		bucket:     bucket,
		filesCol:   db.Collection(bucketName + ".files"),
		rootPath:   strings.Trim(cfg.RootPath, "/"),
		gatewayURL: strings.TrimRight(cfg.GatewayBaseURL, "/"),
		logger:     slog.Default().With("component", "gridfs-provider", "bucket", bucketName),
	}, nil
}

// Close disconnects the underlying MongoDB client.
func (b *Backend) Close(ctx context.Context) error {
	return b.client.Disconnect(ctx)
}

// Name returns the provider identifier used in reports.
func (b *Backend) Name() string { return "gridfs" }

// ListFolders derives the distinct path segments directly under path from
// the stored filenames. The cursor-backed Distinct call returns the full
// result set, so no pagination undercount is possible.
func (b *Backend) ListFolders(ctx context.Context, path string) ([]string, error) {
	prefix := b.key(path)
	if prefix != "" {
		prefix += "/"
	}

	values, err := b.filesCol.Distinct(ctx, "filename", prefixFilter(prefix))
	if err != nil {
		return nil, bencherrors.Wrap(bencherrors.ErrCodeListFailed, "ListFolders", path, err)
	}

	seen := make(map[string]bool)
	var folders []string
	for _, v := range values {
		filename, ok := v.(string)
		if !ok {
			continue
		}
		rest := strings.TrimPrefix(filename, prefix)
		i := strings.Index(rest, "/")
		if i <= 0 {
			continue // file directly under path, not a folder
		}
		name := rest[:i]
		if !seen[name] {
			seen[name] = true
			folders = append(folders, name)
		}
	}
	return folders, nil
}

// ListFiles returns references to the files directly under path whose names
// contain substring.
func (b *Backend) ListFiles(ctx context.Context, path, substring string) ([]types.AssetReference, error) {
	prefix := b.key(path)
	if prefix != "" {
		prefix += "/"
	}

	cursor, err := b.bucket.Find(prefixFilter(prefix))
	if err != nil {
		return nil, bencherrors.Wrap(bencherrors.ErrCodeListFailed, "ListFiles", path, err)
	}
	defer cursor.Close(ctx)

	var refs []types.AssetReference
	for cursor.Next(ctx) {
		var doc struct {
			Filename string `bson:"filename"`
		}
		if err := cursor.Decode(&doc); err != nil {
			return nil, bencherrors.Wrap(bencherrors.ErrCodeListFailed, "ListFiles", path, err)
		}

		rest := strings.TrimPrefix(doc.Filename, prefix)
		if rest == "" || strings.Contains(rest, "/") {
			continue // nested deeper than one level
		}
		if !utils.MatchName(rest, substring) {
			continue
		}
		refs = append(refs, types.AssetReference{Path: doc.Filename, Name: rest})
	}
	if err := cursor.Err(); err != nil {
		return nil, bencherrors.Wrap(bencherrors.ErrCodeListFailed, "ListFiles", path, err)
	}
	return refs, nil
}

// DownloadURL builds the gateway URL that serves the stored file.
func (b *Backend) DownloadURL(_ context.Context, ref types.AssetReference) (string, error) {
	raw := b.gatewayURL + "/" + strings.TrimLeft(ref.Path, "/")
	decorated, err := utils.DecorateURL(raw, ref.Name)
	if err != nil {
		return "", bencherrors.Wrap(bencherrors.ErrCodeURLFailed, "DownloadURL", ref.Path, err)
	}
	return decorated, nil
}

// Upload stores data under path, deleting any prior revisions of the same
// filename first so overwrites stay idempotent.
func (b *Backend) Upload(ctx context.Context, path string, data []byte) (*types.UploadResult, error) {
	key := b.key(path)

	cursor, err := b.bucket.Find(bson.M{"filename": key})
	if err != nil {
		return nil, bencherrors.Wrap(bencherrors.ErrCodeUploadFailed, "Upload", path, err)
	}
	var prior []primitive.ObjectID
	for cursor.Next(ctx) {
		var doc struct {
			ID primitive.ObjectID `bson:"_id"`
		}
		if err := cursor.Decode(&doc); err != nil {
			cursor.Close(ctx)
			return nil, bencherrors.Wrap(bencherrors.ErrCodeUploadFailed, "Upload", path, err)
		}
		prior = append(prior, doc.ID)
	}
	cursor.Close(ctx)

	for _, id := range prior {
		if err := b.bucket.Delete(id); err != nil {
			return nil, bencherrors.Wrap(bencherrors.ErrCodeUploadFailed, "Upload", path, err)
		}
	}

	id, err := b.bucket.UploadFromStream(key, bytes.NewReader(data))
	if err != nil {
		return nil, bencherrors.Wrap(bencherrors.ErrCodeUploadFailed, "Upload", path, err)
	}

	return &types.UploadResult{Path: key, ETag: id.Hex(), Size: int64(len(data))}, nil
}

func (b *Backend) key(path string) string {
	return utils.JoinKey(b.rootPath, path)
}

func prefixFilter(prefix string) bson.M {
	if prefix == "" {
		return bson.M{}
	}
	return bson.M{"filename": primitive.Regex{Pattern: "^" + escapeRegex(prefix)}}
}

// escapeRegex quotes regex metacharacters in a literal path prefix.
func escapeRegex(s string) string {
	var sb strings.Builder
	for _, r := range s {
		if strings.ContainsRune(`\.+*?()|[]{}^$`, r) {
			sb.WriteByte('\\')
		}
		sb.WriteRune(r)
	}
	return sb.String()
}
