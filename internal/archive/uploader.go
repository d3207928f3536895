// internal/archive/uploader.go
package archive

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"go.uber.org/zap"
)

// Uploader ships exported fault snapshots to an S3-compatible bucket for
// long-term retention. Exports stay an explicit, out-of-hot-path operation;
// the uploader only ever runs when a caller asks for an archive.
type Uploader struct {
	client *s3.Client
	bucket string
	logger *zap.Logger
}

// NewUploader builds an uploader for an S3-compatible endpoint using static
// credentials and path-style addressing.
func NewUploader(endpoint, region, bucket, accessKey, secretKey string, logger *zap.Logger) (*Uploader, error) {
	if endpoint == "" {
		return nil, fmt.Errorf("archive: endpoint required")
	}
	if bucket == "" {
		return nil, fmt.Errorf("archive: bucket required")
	}
	if accessKey == "" || secretKey == "" {
		return nil, fmt.Errorf("archive: credentials required")
	}
	if region == "" {
		region = "us-east-1"
	}

	cfg, err := awsconfig.LoadDefaultConfig(context.Background(),
		awsconfig.WithRegion(region),
		awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(accessKey, secretKey, ""),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("archive: load aws config: %w", err)
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(endpoint)
		o.UsePathStyle = true
	})

	logger.Info("snapshot archive initialized",
		zap.String("endpoint", endpoint),
		zap.String("bucket", bucket),
		zap.String("region", region))

	return &Uploader{client: client, bucket: bucket, logger: logger}, nil
}

// Upload stores r under key in the archive bucket.
func (u *Uploader) Upload(ctx context.Context, key string, r io.Reader) error {
	_, err := u.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(u.bucket),
		Key:    aws.String(key),
		Body:   r,
	})
	if err != nil {
		return fmt.Errorf("archive: put %s: %w", key, err)
	}
	u.logger.Info("snapshot archived", zap.String("key", key))
	return nil
}

// ArchiveSnapshot uploads an exported snapshot file, keyed by its export
// time, and returns the object key.
func (u *Uploader) ArchiveSnapshot(ctx context.Context, path string) (string, error) {
	f, err := os.Open(path) //nolint:gosec // path is our own export
	if err != nil {
		return "", fmt.Errorf("archive: open snapshot %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	key := SnapshotKey(time.Now().UTC(), filepath.Base(path))
	if err := u.Upload(ctx, key, f); err != nil {
		return "", err
	}
	return key, nil
}

// SnapshotKey lays snapshots out by year and month so bucket listings stay
// navigable as history accumulates.
func SnapshotKey(t time.Time, filename string) string {
	return fmt.Sprintf("faults/%04d/%02d/%s", t.Year(), int(t.Month()), filename)
}
