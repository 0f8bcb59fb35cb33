/*
Package storage provides the object storage capability used for uploaded
avatars. Clients upload directly through presigned URLs; the server never
proxies file bytes.
*/
package storage

import (
	"context"
	"time"
)

// ServiceConfig holds the connection settings for the storage backend.
type ServiceConfig struct {
	S3BucketName      string
	S3Endpoint        string
	S3AccessKeyID     string
	S3SecretAccessKey string

	// S3PublicBaseURL is the base URL objects are publicly readable from.
	// Empty means path-style access through the endpoint.
	S3PublicBaseURL string
}

// Service is the object storage capability.
type Service interface {
	// PresignUpload generates a presigned PUT URL for the given key.
	PresignUpload(ctx context.Context, key, mimeType string, fileSize int64, duration time.Duration) (string, error)

	// Delete removes the object at key. Deleting a missing object is not an error.
	Delete(ctx context.Context, key string) error

	// PublicURL returns the public read URL for an object key.
	PublicURL(key string) string

	// ObjectKey extracts the object key from a public URL minted by this
	// service; it returns ("", false) for foreign URLs.
	ObjectKey(publicURL string) (string, bool)
}

// NewService builds the storage service. Only S3-compatible backends are
// supported.
func NewService(cfg ServiceConfig) (Service, error) {
	return newS3Client(cfg)
}
