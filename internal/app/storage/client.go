package storage

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"mikuchat/internal/pkg/logx"
)

// s3Client implements Service against any S3-compatible endpoint.
type s3Client struct {
	cfg    ServiceConfig
	client *s3.Client
}

func newS3Client(cfg ServiceConfig) (*s3Client, error) {
	sdkCfg, err := config.LoadDefaultConfig(context.Background(),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.S3AccessKeyID,
			cfg.S3SecretAccessKey,
			"",
		)),
		config.WithRegion("auto"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load S3 SDK config: %w", err)
	}

	client := s3.NewFromConfig(sdkCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(cfg.S3Endpoint)
		o.UsePathStyle = true
	})

	return &s3Client{cfg: cfg, client: client}, nil
}

// PresignUpload generates a presigned PUT URL bound to the declared MIME
// type and content length.
func (c *s3Client) PresignUpload(ctx context.Context, key, mimeType string, fileSize int64, duration time.Duration) (string, error) {
	presignClient := s3.NewPresignClient(c.client)

	input := &s3.PutObjectInput{
		Bucket:        &c.cfg.S3BucketName,
		Key:           &key,
		ContentType:   &mimeType,
		ContentLength: &fileSize,
	}

	result, err := presignClient.PresignPutObject(ctx, input, s3.WithPresignExpires(duration))
	if err != nil {
		logx.Error(err, "failed to generate presigned upload URL", "key", key)
		return "", fmt.Errorf("failed to generate presigned upload URL: %w", err)
	}

	return result.URL, nil
}

// Delete removes the object at key.
func (c *s3Client) Delete(ctx context.Context, key string) error {
	_, err := c.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: &c.cfg.S3BucketName,
		Key:    &key,
	})
	if err != nil {
		return fmt.Errorf("failed to delete object %q: %w", key, err)
	}

	return nil
}

// PublicURL builds the public read URL for an object key.
func (c *s3Client) PublicURL(key string) string {
	if c.cfg.S3PublicBaseURL != "" {
		return strings.TrimSuffix(c.cfg.S3PublicBaseURL, "/") + "/" + key
	}

	return fmt.Sprintf("%s/%s/%s", strings.TrimSuffix(c.cfg.S3Endpoint, "/"), c.cfg.S3BucketName, key)
}

// ObjectKey reverses PublicURL for URLs this service minted.
func (c *s3Client) ObjectKey(publicURL string) (string, bool) {
	base := c.PublicURL("")
	if !strings.HasPrefix(publicURL, base) {
		return "", false
	}

	key := strings.TrimPrefix(publicURL, base)
	if key == "" {
		return "", false
	}

	return key, true
}
