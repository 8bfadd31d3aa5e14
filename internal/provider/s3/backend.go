// Package s3 implements the object-store provider on AWS S3 (or any
// S3-compatible endpoint).
package s3

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/smithy-go"

	"github.com/mediabench/mediabench/internal/config"
	bencherrors "github.com/mediabench/mediabench/pkg/errors"
	"github.com/mediabench/mediabench/pkg/types"
	"github.com/mediabench/mediabench/pkg/utils"
)

// Backend implements types.Provider on top of an S3 bucket.
type Backend struct {
	client        *s3.Client
	bucket        string
	rootPath      string
	publicBaseURL string
	logger        *slog.Logger

	// etags holds the most recently observed entity tag per key, used for
	// conditional overwrites.
	mu    sync.Mutex
	etags map[string]string
}

// NewBackend creates an S3 provider from externally supplied configuration.
// Static credentials are used when present; otherwise the default chain.
func NewBackend(ctx context.Context, cfg config.S3Config) (*Backend, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("bucket name cannot be empty")
	}

	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.Region),
	}
	if cfg.AccessKeyID != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, cfg.SessionToken),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		if cfg.ForcePathStyle {
			o.UsePathStyle = true
		}
	})

	return &Backend{
		client:        client,
		bucket:        cfg.Bucket,
		rootPath:      strings.Trim(cfg.RootPath, "/"),
		publicBaseURL: strings.TrimRight(cfg.PublicBaseURL, "/"),
		logger:        slog.Default().With("component", "s3-provider", "bucket", cfg.Bucket),
		etags:         make(map[string]string),
	}, nil
}

// Name returns the provider identifier used in reports.
func (b *Backend) Name() string { return "s3" }

// ListFolders lists the common prefixes directly under path, exhausting
// continuation tokens so a partial page never yields an undercount.
func (b *Backend) ListFolders(ctx context.Context, path string) ([]string, error) {
	prefix := b.key(path)
	if prefix != "" {
		prefix += "/"
	}

	var folders []string
	var token *string
	for {
		out, err := b.client.ListObjectsV2(ctx, &s3.ListObjectsV2Input{
			Bucket:            aws.String(b.bucket),
			Prefix:            aws.String(prefix),
			Delimiter:         aws.String("/"),
			ContinuationToken: token,
		})
		if err != nil {
			return nil, bencherrors.Wrap(bencherrors.ErrCodeListFailed, "ListFolders", path, err)
		}

		for _, cp := range out.CommonPrefixes {
			name := strings.TrimSuffix(strings.TrimPrefix(aws.ToString(cp.Prefix), prefix), "/")
			if name != "" {
				folders = append(folders, name)
			}
		}

		if !aws.ToBool(out.IsTruncated) {
			break
		}
		token = out.NextContinuationToken
	}

	return folders, nil
}

// ListFiles lists the objects directly under path whose names contain
// substring.
func (b *Backend) ListFiles(ctx context.Context, path, substring string) ([]types.AssetReference, error) {
	prefix := b.key(path)
	if prefix != "" {
		prefix += "/"
	}

	var refs []types.AssetReference
	var token *string
	for {
		out, err := b.client.ListObjectsV2(ctx, &s3.ListObjectsV2Input{
			Bucket:            aws.String(b.bucket),
			Prefix:            aws.String(prefix),
			Delimiter:         aws.String("/"),
			ContinuationToken: token,
		})
		if err != nil {
			return nil, bencherrors.Wrap(bencherrors.ErrCodeListFailed, "ListFiles", path, err)
		}

		for _, obj := range out.Contents {
			key := aws.ToString(obj.Key)
			name := utils.BaseName(key)
			if name == "" || !utils.MatchName(name, substring) {
				continue
			}
			refs = append(refs, types.AssetReference{Path: key, Name: name})
		}

		if !aws.ToBool(out.IsTruncated) {
			break
		}
		token = out.NextContinuationToken
	}

	return refs, nil
}

// DownloadURL builds the public URL for an asset.
func (b *Backend) DownloadURL(_ context.Context, ref types.AssetReference) (string, error) {
	raw := b.publicBaseURL + "/" + strings.TrimLeft(ref.Path, "/")
	decorated, err := utils.DecorateURL(raw, ref.Name)
	if err != nil {
		return "", bencherrors.Wrap(bencherrors.ErrCodeURLFailed, "DownloadURL", ref.Path, err)
	}
	return decorated, nil
}

// Upload writes data at path. When an entity tag from a previous write is
// known, the put is conditional on it: a not-found precondition means no
// prior version and falls back to an unconditional create; a genuine
// precondition mismatch is retried once with a freshly fetched tag.
func (b *Backend) Upload(ctx context.Context, path string, data []byte) (*types.UploadResult, error) {
	key := b.key(path)

	out, err := b.put(ctx, key, data, b.lastETag(key))
	if err != nil {
		switch {
		case isAPIError(err, "NoSuchKey", "NotFound"):
			// No prior version behind the conditional write; create new.
			b.logger.Debug("conditional put found no prior version", "key", key)
			out, err = b.put(ctx, key, data, "")
		case isAPIError(err, "PreconditionFailed"):
			b.logger.Debug("conditional put lost the tag race, refreshing", "key", key)
			fresh, herr := b.headETag(ctx, key)
			if herr != nil {
				return nil, bencherrors.Wrap(bencherrors.ErrCodePrecondition, "Upload", path, herr)
			}
			out, err = b.put(ctx, key, data, fresh)
		}
	}
	if err != nil {
		return nil, bencherrors.Wrap(bencherrors.ErrCodeUploadFailed, "Upload", path, err)
	}

	etag := aws.ToString(out.ETag)
	b.storeETag(key, etag)

	return &types.UploadResult{Path: key, ETag: etag, Size: int64(len(data))}, nil
}

func (b *Backend) put(ctx context.Context, key string, data []byte, ifMatch string) (*s3.PutObjectOutput, error) {
	input := &s3.PutObjectInput{
		Bucket:        aws.String(b.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(data),
		ContentLength: aws.Int64(int64(len(data))),
		ContentType:   aws.String(detectContentType(key)),
	}
	if ifMatch != "" {
		input.IfMatch = aws.String(ifMatch)
	}
	return b.client.PutObject(ctx, input)
}

func (b *Backend) headETag(ctx context.Context, key string) (string, error) {
	out, err := b.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(b.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return "", err
	}
	return aws.ToString(out.ETag), nil
}

func (b *Backend) key(path string) string {
	return utils.JoinKey(b.rootPath, path)
}

func (b *Backend) lastETag(key string) string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.etags[key]
}

func (b *Backend) storeETag(key, etag string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.etags[key] = etag
}

func isAPIError(err error, codes ...string) bool {
	var apiErr smithy.APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	for _, code := range codes {
		if apiErr.ErrorCode() == code {
			return true
		}
	}
	return false
}

func detectContentType(key string) string {
	switch {
	case strings.HasSuffix(key, ".jpg"), strings.HasSuffix(key, ".jpeg"):
		return "image/jpeg"
	case strings.HasSuffix(key, ".png"):
		return "image/png"
	case strings.HasSuffix(key, ".mp3"):
		return "audio/mpeg"
	case strings.HasSuffix(key, ".mp4"):
		return "video/mp4"
	case strings.HasSuffix(key, ".txt"):
		return "text/plain"
	case strings.HasSuffix(key, ".json"):
		return "application/json"
	default:
		return "application/octet-stream"
	}
}
