// internal/objectstore/objectstore.go
//
// Image storage in an S3-compatible bucket.
//
// Context
// -------
// Supabase Storage exposes an S3 endpoint
// (https://<ref>.supabase.co/storage/v1/s3) that accepts path-style
// requests signed with a project access key.  Any other S3 implementation
// (AWS, MinIO) works with the same settings.
//
// Public URLs are PublicBaseURL + "/" + key when configured, otherwise
// <endpoint>/<bucket>/<key> (path style) or the AWS virtual-host form.
package objectstore

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/ispora/ispora-api/internal/config"
)

// Object describes a stored upload.
type Object struct {
	Key         string `json:"key"`
	URL         string `json:"url"`
	ContentType string `json:"content_type"`
	Size        int64  `json:"size"`
}

// Store puts objects.  Handlers depend on this, not on *Bucket.
type Store interface {
	Put(ctx context.Context, key, contentType string, body io.Reader, size int64) (Object, error)
}

// PutObjectAPI is the slice of *s3.Client the bucket uses.
type PutObjectAPI interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// Bucket implements Store on S3.
type Bucket struct {
	client PutObjectAPI
	name   string
	base   string
}

// New builds a Bucket from cfg.  It returns (nil, nil) when storage is
// not configured.
func New(ctx context.Context, cfg config.Storage) (*Bucket, error) {
	if !cfg.Enabled() {
		return nil, nil
	}

	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(cfg.Region)}
	if cfg.AccessKeyID != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, "")))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})
	return NewWithClient(client, cfg), nil
}

// NewWithClient wires an existing client (tests, custom transports).
func NewWithClient(client PutObjectAPI, cfg config.Storage) *Bucket {
	return &Bucket{client: client, name: cfg.Bucket, base: publicBase(cfg)}
}

func publicBase(cfg config.Storage) string {
	switch {
	case cfg.PublicBaseURL != "":
		return strings.TrimRight(cfg.PublicBaseURL, "/")
	case cfg.Endpoint != "":
		return strings.TrimRight(cfg.Endpoint, "/") + "/" + cfg.Bucket
	default:
		return fmt.Sprintf("https://%s.s3.%s.amazonaws.com", cfg.Bucket, cfg.Region)
	}
}

// Put uploads body under key.
func (b *Bucket) Put(ctx context.Context, key, contentType string, body io.Reader, size int64) (Object, error) {
	_, err := b.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(b.name),
		Key:           aws.String(key),
		Body:          body,
		ContentType:   aws.String(contentType),
		ContentLength: aws.Int64(size),
		CacheControl:  aws.String("public, max-age=31536000, immutable"),
	})
	if err != nil {
		return Object{}, fmt.Errorf("put %s/%s: %w", b.name, key, err)
	}
	return Object{Key: key, URL: b.base + "/" + key, ContentType: contentType, Size: size}, nil
}
