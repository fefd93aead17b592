package backup

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"go.uber.org/zap"

	"github.com/quarrylabs/quarry-cli/internal/config"
)

// Uploader pushes backup archives to an S3-compatible bucket.
type Uploader struct {
	client *minio.Client
	bucket string
	logger *zap.Logger
}

// NewUploader creates an Uploader from the storage configuration. It is
// an error if no endpoint is configured.
func NewUploader(cfg config.StorageConfig, logger *zap.Logger) (*Uploader, error) {
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("no storage endpoint configured, set storage.endpoint in the config file")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create storage client: %w", err)
	}

	return &Uploader{client: client, bucket: cfg.Bucket, logger: logger}, nil
}

// Upload pushes the archive at path to the bucket, creating the bucket
// if needed, and returns the object name.
func (u *Uploader) Upload(ctx context.Context, path string) (string, error) {
	exists, err := u.client.BucketExists(ctx, u.bucket)
	if err != nil {
		return "", fmt.Errorf("failed to check bucket %s: %w", u.bucket, err)
	}
	if !exists {
		if err := u.client.MakeBucket(ctx, u.bucket, minio.MakeBucketOptions{}); err != nil {
			return "", fmt.Errorf("failed to create bucket %s: %w", u.bucket, err)
		}
	}

	object := filepath.Base(path)
	info, err := u.client.FPutObject(ctx, u.bucket, object, path, minio.PutObjectOptions{
		ContentType: "application/gzip",
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload %s: %w", object, err)
	}

	u.logger.Debug("backup uploaded",
		zap.String("bucket", u.bucket),
		zap.String("object", object),
		zap.Int64("size", info.Size))
	return object, nil
}
