package resume

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// Downloader fetches an object's bytes from blob storage.
type Downloader interface {
	Download(ctx context.Context, bucket, key string) ([]byte, error)
}

// R2Config holds Cloudflare R2 credentials.
type R2Config struct {
	AccountID string
	Bucket    string
	AccessKey string
	SecretKey string
}

// Enabled reports whether enough settings are present to build a client.
func (c R2Config) Enabled() bool {
	return c.AccountID != "" && c.Bucket != "" && c.AccessKey != "" && c.SecretKey != ""
}

// ObjectStore downloads resumes from an S3-compatible bucket.
type ObjectStore struct {
	client *s3.Client
	bucket string
}

// NewR2Store creates an ObjectStore pointed at the account's R2 endpoint.
func NewR2Store(ctx context.Context, cfg R2Config) (*ObjectStore, error) {
	if !cfg.Enabled() {
		return nil, errors.New("r2 account id, bucket, access key and secret key are required")
	}
	awsConfig, err := config.LoadDefaultConfig(ctx,
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, "")),
		config.WithRegion("auto"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load aws config: %w", err)
	}
	client := s3.NewFromConfig(awsConfig, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(fmt.Sprintf("https://%s.r2.cloudflarestorage.com", cfg.AccountID))
	})
	return &ObjectStore{client: client, bucket: cfg.Bucket}, nil
}

// Bucket returns the default bucket.
func (s *ObjectStore) Bucket() string { return s.bucket }

// Download reads key from bucket, or from the default bucket when bucket is empty.
func (s *ObjectStore) Download(ctx context.Context, bucket, key string) ([]byte, error) {
	if bucket == "" {
		bucket = s.bucket
	}
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get object: %w", err)
	}
	defer func() { _ = out.Body.Close() }()

	buf := new(bytes.Buffer)
	if _, err := io.Copy(buf, out.Body); err != nil {
		return nil, fmt.Errorf("failed to read object body: %w", err)
	}
	return buf.Bytes(), nil
}
