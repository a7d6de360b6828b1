// Package upload pushes finished audit artifacts to S3-compatible
// object storage.
package upload

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// Config contains the upload target. Endpoint is optional and supports
// S3-compatible stores (R2, MinIO) via a custom base endpoint.
type Config struct {
	Endpoint        string
	Region          string
	Bucket          string
	AccessKeyID     string
	SecretAccessKey string
}

// S3Uploader stores artifacts in a bucket under the audit/ prefix.
type S3Uploader struct {
	client *s3.Client
	bucket string
	log    *slog.Logger
}

// New creates an uploader with static credentials.
func New(ctx context.Context, cfg Config, log *slog.Logger) (*S3Uploader, error) {
	if log == nil {
		log = slog.Default()
	}

	region := cfg.Region
	if region == "" {
		region = "auto"
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AccessKeyID,
			cfg.SecretAccessKey,
			"",
		)),
		awsconfig.WithRegion(region),
	)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
	})

	return &S3Uploader{client: client, bucket: cfg.Bucket, log: log}, nil
}

// Key returns the object key used for an artifact file.
func Key(path string) string {
	return "audit/" + filepath.Base(path)
}

// Upload stores each file under its Key in the bucket. The first failure
// stops the batch; files already on disk are unaffected.
func (u *S3Uploader) Upload(ctx context.Context, paths ...string) error {
	for _, path := range paths {
		f, err := os.Open(path)
		if err != nil {
			return fmt.Errorf("open %s: %w", path, err)
		}
		_, err = u.client.PutObject(ctx, &s3.PutObjectInput{
			Bucket:      aws.String(u.bucket),
			Key:         aws.String(Key(path)),
			Body:        f,
			ContentType: aws.String(contentType(path)),
		})
		f.Close()
		if err != nil {
			return fmt.Errorf("upload %s: %w", path, err)
		}
		u.log.Info("uploaded artifact", "key", Key(path), "bucket", u.bucket)
	}
	return nil
}

func contentType(path string) string {
	if strings.HasSuffix(path, ".gz") {
		return "application/gzip"
	}
	return "text/plain; charset=utf-8"
}
