package ml

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// ErrArtifactNotFound is returned when no artifact exists at the location.
var ErrArtifactNotFound = errors.New("model artifact not found")

const s3Scheme = "s3://"

// Source fetches raw artifact bytes.
type Source interface {
	Fetch(ctx context.Context) ([]byte, error)
	Location() string
}

// S3Config configures the S3 client for s3:// locations.
type S3Config struct {
	Region   string
	Endpoint string // optional, for MinIO or LocalStack
}

// OpenSource returns a file source, or an S3 source for s3://bucket/key.
func OpenSource(ctx context.Context, location string, cfg S3Config) (Source, error) {
	if !strings.HasPrefix(location, s3Scheme) {
		return FileSource{Path: location}, nil
	}

	bucket, key, ok := strings.Cut(strings.TrimPrefix(location, s3Scheme), "/")
	if !ok || bucket == "" || key == "" {
		return nil, fmt.Errorf("invalid s3 location %q", location)
	}

	var opts []func(*config.LoadOptions) error
	if cfg.Region != "" {
		opts = append(opts, config.WithRegion(cfg.Region))
	}
	awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})
	return &S3Source{client: client, bucket: bucket, key: key}, nil
}

// FileSource reads an artifact from the local filesystem.
type FileSource struct {
	Path string
}

func (s FileSource) Location() string { return s.Path }

func (s FileSource) Fetch(context.Context) ([]byte, error) {
	data, err := os.ReadFile(s.Path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrArtifactNotFound, s.Path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read model artifact: %w", err)
	}
	return data, nil
}

// ObjectGetter is the subset of the S3 client used by S3Source.
type ObjectGetter interface {
	GetObject(ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// S3Source reads an artifact from an S3 object.
type S3Source struct {
	client ObjectGetter
	bucket string
	key    string
}

// NewS3Source creates an S3Source over an existing client.
func NewS3Source(client ObjectGetter, bucket, key string) *S3Source {
	return &S3Source{client: client, bucket: bucket, key: key}
}

func (s *S3Source) Location() string { return s3Scheme + s.bucket + "/" + s.key }

func (s *S3Source) Fetch(ctx context.Context) ([]byte, error) {
	result, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key),
	})
	if err != nil {
		var noKey *types.NoSuchKey
		var noBucket *types.NoSuchBucket
		if errors.As(err, &noKey) || errors.As(err, &noBucket) {
			return nil, fmt.Errorf("%w: %s", ErrArtifactNotFound, s.Location())
		}
		return nil, fmt.Errorf("s3 get failed for %s: %w", s.Location(), err)
	}
	defer func() { _ = result.Body.Close() }()

	data, err := io.ReadAll(result.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", s.Location(), err)
	}
	return data, nil
}
