// Package media stores gallery and cover images in S3-compatible object
// storage and hands back public URLs.
package media

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"hitched/api/internal/util"
)

// Config holds object storage settings.
type Config struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
	// PublicBaseURL is the externally reachable URL prefix for objects.
	// Defaults to the endpoint when empty.
	PublicBaseURL string
}

// Service uploads images and produces public URLs for them.
type Service struct {
	client        *minio.Client
	bucket        string
	publicBaseURL string
}

// New connects to object storage and makes sure the bucket exists.
func New(ctx context.Context, cfg Config) (*Service, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("create storage client: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("check bucket: %w", err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("create bucket: %w", err)
		}
	}

	base := cfg.PublicBaseURL
	if base == "" {
		scheme := "http"
		if cfg.UseSSL {
			scheme = "https"
		}
		base = fmt.Sprintf("%s://%s", scheme, cfg.Endpoint)
	}

	return &Service{
		client:        client,
		bucket:        cfg.Bucket,
		publicBaseURL: strings.TrimRight(base, "/"),
	}, nil
}

var allowedImageTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
	"image/gif":  ".gif",
}

// ErrUnsupportedType is returned for uploads that are not images.
var ErrUnsupportedType = fmt.Errorf("unsupported image type")

// Upload stores an image under the project's prefix and returns its
// public URL.
func (s *Service) Upload(ctx context.Context, projectID, contentType string, r io.Reader, size int64) (string, error) {
	ext, ok := allowedImageTypes[contentType]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnsupportedType, contentType)
	}

	objectName := path.Join(projectID, util.NewID("img")+ext)

	_, err := s.client.PutObject(ctx, s.bucket, objectName, r, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", fmt.Errorf("upload object: %w", err)
	}

	return fmt.Sprintf("%s/%s/%s", s.publicBaseURL, s.bucket, objectName), nil
}

// Delete removes an object given its public URL. URLs that do not point
// at this service's bucket are ignored.
func (s *Service) Delete(ctx context.Context, objectURL string) error {
	prefix := fmt.Sprintf("%s/%s/", s.publicBaseURL, s.bucket)
	if !strings.HasPrefix(objectURL, prefix) {
		return nil
	}
	objectName := strings.TrimPrefix(objectURL, prefix)

	if err := s.client.RemoveObject(ctx, s.bucket, objectName, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("remove object: %w", err)
	}
	return nil
}
