// Package storage stores uploaded images in an S3-compatible backend.
package storage

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/gofrs/uuid/v5"
)

// S3Store persists image blobs and hands out opaque object keys.
type S3Store struct {
	client   *s3.Client
	bucket   string
	endpoint string
}

// Options configure the S3-compatible backend (MinIO in development).
type Options struct {
	Endpoint  string
	Region    string
	Bucket    string
	AccessKey string
	SecretKey string
	Timeout   time.Duration // per-call timeout; zero means no limit
}

// New builds an S3Store. UsePathStyle is required for MinIO-style endpoints.
func New(ctx context.Context, opts Options) (*S3Store, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(opts.Region),
		awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(opts.AccessKey, opts.SecretKey, ""),
		),
		awsconfig.WithHTTPClient(&http.Client{Timeout: opts.Timeout}),
	)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(opts.Endpoint)
		o.UsePathStyle = true
	})
	return &S3Store{client: client, bucket: opts.Bucket, endpoint: strings.TrimRight(opts.Endpoint, "/")}, nil
}

// Store uploads the image and returns its object key.
func (s *S3Store) Store(ctx context.Context, data []byte, contentType string) (string, error) {
	key := newKey()
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("put object: %w", err)
	}
	return key, nil
}

// Delete removes a stored image. Callers treat failures as best-effort.
func (s *S3Store) Delete(ctx context.Context, key string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("delete object: %w", err)
	}
	return nil
}

// URL returns the public URL for a stored key, for response bodies.
func (s *S3Store) URL(key string) string {
	return fmt.Sprintf("%s/%s/%s", s.endpoint, s.bucket, key)
}

// newKey produces a date-partitioned random object key.
func newKey() string {
	d := time.Now()
	return fmt.Sprintf("images/%d/%02d/%02d/%s", d.Year(), d.Month(), d.Day(), uuid.Must(uuid.NewV4()))
}
