package upload

import (
	"bytes"
	"context"
	"fmt"
	"path"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3 puts artifacts into a bucket.
type S3 struct {
	client *s3.Client
	bucket string
	prefix string
}

// NewS3 creates an S3 sink from the default AWS configuration chain.
func NewS3(ctx context.Context, s Settings) (*S3, error) {
	if s.S3Bucket == "" {
		return nil, fmt.Errorf("%w: s3 bucket is required", ErrConfig)
	}
	loadOpts := []func(*config.LoadOptions) error{config.WithRegion(s.S3Region)}
	if s.S3AccessKey != "" {
		loadOpts = append(loadOpts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(s.S3AccessKey, s.S3SecretKey, "")))
	}
	cfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("%w: aws config: %w", ErrConfig, err)
	}
	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if s.S3Endpoint != "" {
			o.BaseEndpoint = aws.String(s.S3Endpoint)
			o.UsePathStyle = true
		}
	})
	return &S3{client: client, bucket: s.S3Bucket, prefix: s.S3Prefix}, nil
}

func (u *S3) Name() string { return SinkS3 }

// Key returns the object key for name.
func (u *S3) Key(name string) string {
	if u.prefix == "" {
		return name
	}
	return path.Join(u.prefix, name)
}

func (u *S3) Upload(ctx context.Context, name, contentType string, data []byte) error {
	_, err := u.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(u.bucket),
		Key:           aws.String(u.Key(name)),
		Body:          bytes.NewReader(data),
		ContentType:   aws.String(contentType),
		ContentLength: aws.Int64(int64(len(data))),
	})
	if err != nil {
		return fmt.Errorf("%w: s3 %s: %w", ErrUpload, name, err)
	}
	return nil
}
