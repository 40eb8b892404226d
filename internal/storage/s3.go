package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/smithy-go"
	cfg "github.com/templui/securedocs/internal/config"
)

// S3Storage reads document files from S3-compatible storage
// Works with AWS S3, MinIO, DigitalOcean Spaces, Cloudflare R2, etc.
type S3Storage struct {
	client       *s3.Client
	bucket       string
	probeTimeout time.Duration
	fetchTimeout time.Duration
}

// S3Config holds configuration for S3 storage
type S3Config struct {
	Region       string
	Bucket       string
	AccessKey    string
	SecretKey    string
	Endpoint     string // Optional: for S3-compatible services
	ProbeTimeout time.Duration
	FetchTimeout time.Duration
}

// New creates an S3-compatible storage instance from app config.
// Returns nil without error when no bucket is configured.
func New(c *cfg.Config) (*S3Storage, error) {
	if c.S3Bucket == "" {
		slog.Info("S3 storage disabled, s3:// file references will be unavailable")
		return nil, nil
	}

	slog.Info("initializing S3 storage",
		"bucket", c.S3Bucket,
		"region", c.S3Region,
		"endpoint", c.S3Endpoint,
	)
	return NewS3Storage(S3Config{
		Region:       c.S3Region,
		Bucket:       c.S3Bucket,
		AccessKey:    c.S3AccessKey,
		SecretKey:    c.S3SecretKey,
		Endpoint:     c.S3Endpoint,
		ProbeTimeout: c.RemoteProbeTimeout,
		FetchTimeout: c.RemoteFetchTimeout,
	})
}

// NewS3Storage creates a new S3 storage instance
func NewS3Storage(cfg S3Config) (*S3Storage, error) {
	ctx := context.Background()

	var opts []func(*config.LoadOptions) error
	opts = append(opts, config.WithRegion(cfg.Region))

	// Add static credentials if provided
	if cfg.AccessKey != "" && cfg.SecretKey != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	// Create S3 client with optional custom endpoint
	var client *s3.Client
	if cfg.Endpoint != "" {
		client = s3.NewFromConfig(awsCfg, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true // Required for MinIO and some S3-compatible services
		})
	} else {
		client = s3.NewFromConfig(awsCfg)
	}

	storage := &S3Storage{
		client:       client,
		bucket:       cfg.Bucket,
		probeTimeout: cfg.ProbeTimeout,
		fetchTimeout: cfg.FetchTimeout,
	}

	storage.checkBucket(ctx)

	return storage, nil
}

// Bucket returns the bucket this storage reads from.
func (s *S3Storage) Bucket() string {
	return s.bucket
}

// checkBucket only warns: delivery reports per-request unavailability anyway.
func (s *S3Storage) checkBucket(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, s.probeTimeout)
	defer cancel()

	_, err := s.client.HeadBucket(ctx, &s3.HeadBucketInput{
		Bucket: aws.String(s.bucket),
	})
	if err != nil {
		slog.Warn("S3 bucket not reachable", "bucket", s.bucket, "error", err)
	}
}

// Stat issues a HeadObject probe.
func (s *S3Storage) Stat(ctx context.Context, key string) (*ObjectInfo, error) {
	ctx, cancel := context.WithTimeout(ctx, s.probeTimeout)
	defer cancel()

	out, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, fmt.Errorf("%w: head %s: %s", ErrUnavailable, key, apiErrorCode(err))
	}

	info := &ObjectInfo{
		Name:        path.Base(key),
		Size:        -1,
		ContentType: aws.ToString(out.ContentType),
	}
	if out.ContentLength != nil {
		info.Size = *out.ContentLength
	}
	if out.LastModified != nil {
		info.ModTime = *out.LastModified
	}

	return info, nil
}

// Open streams the object body. The fetch timeout covers the whole body read.
func (s *S3Storage) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	ctx, cancel := context.WithTimeout(ctx, s.fetchTimeout)

	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		cancel()
		return nil, fmt.Errorf("%w: get %s: %s", ErrUnavailable, key, apiErrorCode(err))
	}

	return &cancelOnClose{ReadCloser: out.Body, cancel: cancel}, nil
}

func apiErrorCode(err error) string {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		return apiErr.ErrorCode()
	}
	return err.Error()
}
