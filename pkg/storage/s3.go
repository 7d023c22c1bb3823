// Package storage provides the S3-compatible blob store for warning images.
package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	"github.com/google/uuid"

	"github.com/Jochem-W/lemonbot-warns-sub000/pkg/config"
	"github.com/Jochem-W/lemonbot-warns-sub000/pkg/logger"
)

// Store wraps an S3-compatible bucket with the three operations the
// pipeline needs: upload, download and prefix search.
type Store struct {
	client   *s3.Client
	bucket   string
	endpoint string
}

// New creates a Store from the application configuration
func New(cfg *config.Config) (*Store, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(),
		awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.S3KeyID, cfg.S3KeySecret, ""),
		),
		awsconfig.WithRegion(cfg.S3Region),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load S3 config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.S3Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.S3Endpoint)
		}
		o.UsePathStyle = true
	})

	return &Store{
		client:   client,
		bucket:   cfg.S3Bucket,
		endpoint: strings.TrimSuffix(cfg.S3Endpoint, "/"),
	}, nil
}

// ImageKey builds the object key for one warning image. Keys are prefixed
// for Search and carry a uuid so repeated uploads of the same filename never
// collide.
func ImageKey(filename string) string {
	return fmt.Sprintf("warnings/%s-%s", uuid.New().String(), sanitizeFilename(filename))
}

func sanitizeFilename(filename string) string {
	if filename == "" {
		return "unnamed"
	}
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == '.' || r == '-' || r == '_':
			return r
		default:
			return '_'
		}
	}, filename)
}

// Upload stores a public-read object and returns its URL
func (s *Store) Upload(ctx context.Context, key string, content []byte, contentType string) (string, error) {
	if len(content) == 0 {
		return "", errors.New("no bytes of data were provided")
	}

	put := func() error {
		_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
			Bucket:      &s.bucket,
			Key:         &key,
			Body:        bytes.NewReader(content),
			ACL:         types.ObjectCannedACLPublicRead,
			ContentType: &contentType,
		})
		return err
	}

	err := put()
	if err != nil {
		var apiError smithy.APIError
		if errors.As(err, &apiError) && apiError.ErrorCode() == "NoSuchBucket" {
			logger.Warn("El bucket no existe, creándolo...", "Storage")
			if _, err := s.client.CreateBucket(ctx, &s3.CreateBucketInput{Bucket: &s.bucket}); err != nil {
				return "", fmt.Errorf("failed to create bucket: %w", err)
			}
			err = put()
		}
		if err != nil {
			return "", fmt.Errorf("failed to upload %q: %w", key, err)
		}
	}

	return s.URL(key), nil
}

// Download retrieves an object's bytes
func (s *Store) Download(ctx context.Context, key string) ([]byte, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: &s.bucket,
		Key:    &key,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to download %q: %w", key, err)
	}
	defer out.Body.Close()

	return io.ReadAll(out.Body)
}

// Search lists object keys under a prefix
func (s *Store) Search(ctx context.Context, prefix string) ([]string, error) {
	var keys []string

	paginator := s3.NewListObjectsV2Paginator(s.client, &s3.ListObjectsV2Input{
		Bucket: &s.bucket,
		Prefix: &prefix,
	})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list %q: %w", prefix, err)
		}
		for _, obj := range page.Contents {
			keys = append(keys, *obj.Key)
		}
	}

	return keys, nil
}

// URL returns the public URL for a stored object
func (s *Store) URL(key string) string {
	if s.endpoint != "" {
		return fmt.Sprintf("%s/%s/%s", s.endpoint, s.bucket, key)
	}
	return fmt.Sprintf("https://%s.s3.amazonaws.com/%s", s.bucket, key)
}
