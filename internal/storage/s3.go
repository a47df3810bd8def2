package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/rs/zerolog/log"
)

// projectTag is the URL-encoded S3 object tagging string for cost allocation.
const projectTag = "Project=photo-album-pipeline"

// S3API is the subset of *s3.Client used by S3Store.
type S3API interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetObject(ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// S3Store stores objects in one bucket. Refs are object keys.
type S3Store struct {
	client  S3API
	presign *s3.PresignClient
	bucket  string
}

// NewS3Store wraps an S3 client for bucket.
func NewS3Store(client *s3.Client, bucket string) *S3Store {
	return &S3Store{
		client:  client,
		presign: s3.NewPresignClient(client),
		bucket:  bucket,
	}
}

// newS3StoreWithAPI is used by tests to inject a fake client.
func newS3StoreWithAPI(api S3API, bucket string) *S3Store {
	return &S3Store{client: api, bucket: bucket}
}

// Bucket returns the bucket name.
func (s *S3Store) Bucket() string { return s.bucket }

// Put implements Store.
func (s *S3Store) Put(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	log.Debug().Str("bucket", s.bucket).Str("key", key).Int("size", len(data)).Msg("Uploading to S3")

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
		Tagging:     aws.String(projectTag),
	})
	if err != nil {
		return "", fmt.Errorf("S3 PutObject %s: %w", key, err)
	}
	return key, nil
}

// Get implements Store.
func (s *S3Store) Get(ctx context.Context, ref string) ([]byte, error) {
	result, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(ref),
	})
	if err != nil {
		var nsk *s3types.NoSuchKey
		if errors.As(err, &nsk) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, ref)
		}
		return nil, fmt.Errorf("S3 GetObject %s: %w", ref, err)
	}
	defer result.Body.Close()

	data, err := io.ReadAll(result.Body)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", ref, err)
	}
	return data, nil
}

// PresignURL creates a pre-signed GET URL for a stored ref.
func (s *S3Store) PresignURL(ctx context.Context, ref string, expiry time.Duration) (string, error) {
	if s.presign == nil {
		return "", fmt.Errorf("presigning not configured")
	}
	result, err := s.presign.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(ref),
	}, func(opts *s3.PresignOptions) {
		opts.Expires = expiry
	})
	if err != nil {
		return "", fmt.Errorf("presign GetObject: %w", err)
	}
	return result.URL, nil
}
