package assets

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/smithy-go"

	"batchbook/internal/config"
	"batchbook/internal/exceptions"
)

// S3Store writes objects to an S3-compatible service.
type S3Store struct {
	client    *s3.Client
	baseURL   string
	endpoint  string
	region    string
	pathStyle bool
}

// NewS3Store builds a client from cfg. Static credentials are used when
// configured, otherwise the default AWS credential chain applies.
func NewS3Store(ctx context.Context, cfg config.StorageConfig) (*S3Store, error) {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.Region),
	}
	if cfg.AccessKeyID != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		o.UsePathStyle = cfg.UsePathStyle
	})

	baseURL := strings.TrimRight(cfg.PublicBaseURL, "/")
	if !strings.HasPrefix(baseURL, "http://") && !strings.HasPrefix(baseURL, "https://") {
		baseURL = ""
	}

	return &S3Store{
		client:    client,
		baseURL:   baseURL,
		endpoint:  strings.TrimRight(cfg.Endpoint, "/"),
		region:    cfg.Region,
		pathStyle: cfg.UsePathStyle,
	}, nil
}

func (s *S3Store) Upload(ctx context.Context, bucket, key string, body io.Reader, size int64, opts UploadOptions) error {
	input := &s3.PutObjectInput{
		Bucket:        aws.String(bucket),
		Key:           aws.String(key),
		Body:          body,
		ContentLength: aws.Int64(size),
		ContentType:   aws.String(opts.ContentType),
		CacheControl:  aws.String(opts.CacheControl),
	}
	if !opts.Upsert {
		input.IfNoneMatch = aws.String("*")
	}

	if _, err := s.client.PutObject(ctx, input); err != nil {
		var apiErr smithy.APIError
		if errors.As(err, &apiErr) && apiErr.ErrorCode() == "PreconditionFailed" {
			return exceptions.Conflict("object", bucket+"/"+key)
		}
		return fmt.Errorf("put object %s/%s: %w", bucket, key, err)
	}
	return nil
}

func (s *S3Store) PublicURL(bucket, key string) string {
	return publicObjectURL(s.baseURL, s.endpoint, s.region, s.pathStyle, bucket, key)
}

func publicObjectURL(baseURL, endpoint, region string, pathStyle bool, bucket, key string) string {
	switch {
	case baseURL != "":
		return fmt.Sprintf("%s/%s/%s", baseURL, bucket, key)
	case endpoint != "" && pathStyle:
		return fmt.Sprintf("%s/%s/%s", endpoint, bucket, key)
	case endpoint != "":
		scheme, host, found := strings.Cut(endpoint, "://")
		if !found {
			return fmt.Sprintf("https://%s.%s/%s", bucket, endpoint, key)
		}
		return fmt.Sprintf("%s://%s.%s/%s", scheme, bucket, host, key)
	default:
		return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", bucket, region, key)
	}
}
