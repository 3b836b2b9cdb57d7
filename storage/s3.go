package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// Credential environment variables, compatible with self-hosted
// S3-compatible endpoints.
const (
	EnvAccessKey   = "AWS_S3_ACCESS_KEY"
	EnvSecretKey   = "AWS_S3_SECRET_KEY"
	EnvEndpointURL = "AWS_S3_ENDPOINT_URL"
)

// S3Store reads and writes objects in one bucket.
type S3Store struct {
	client *s3.Client
	bucket string
}

// NewS3 builds a store from the environment. A custom endpoint switches the
// client to path-style addressing, which MinIO and friends require.
func NewS3(ctx context.Context, bucket string) (*S3Store, error) {
	accessKey := os.Getenv(EnvAccessKey)
	secretKey := os.Getenv(EnvSecretKey)
	if accessKey == "" || secretKey == "" {
		return nil, fmt.Errorf("s3: %s and %s must be set", EnvAccessKey, EnvSecretKey)
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(accessKey, secretKey, ""),
		),
		awsconfig.WithRegion("us-east-1"),
	)
	if err != nil {
		return nil, fmt.Errorf("s3: load config: %w", err)
	}

	endpoint := os.Getenv(EnvEndpointURL)
	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
			o.UsePathStyle = true
		}
	})

	return &S3Store{client: client, bucket: bucket}, nil
}

func (s *S3Store) Get(ctx context.Context, key string) ([]byte, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, fmt.Errorf("s3: get %s: %w", key, err)
	}
	defer out.Body.Close()

	body, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("s3: read %s: %w", key, err)
	}
	return body, nil
}

func (s *S3Store) Put(ctx context.Context, key string, body []byte) error {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
		Body:   bytes.NewReader(body),
	})
	if err != nil {
		return fmt.Errorf("s3: put %s: %w", key, err)
	}
	return nil
}
