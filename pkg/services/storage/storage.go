// Package storage is the object-store gateway in front of Google Cloud
// Storage. Uploaded objects are keyed by fresh uuids; client-supplied
// filenames are never used.
package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	gcs "cloud.google.com/go/storage"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"google.golang.org/api/option"

	"nota-scan/pkg/apperr"
	"nota-scan/pkg/config"
)

type Gateway struct {
	client *gcs.Client
	bucket string
	logger *logrus.Logger
}

func NewGateway(ctx context.Context, bucket string, logger *logrus.Logger, opts ...option.ClientOption) (*Gateway, error) {
	if bucket == "" {
		return nil, errors.New("bucket name is required")
	}
	client, err := gcs.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("storage.NewClient: %w", err)
	}
	return &Gateway{client: client, bucket: bucket, logger: logger}, nil
}

func (g *Gateway) Close() error {
	return g.client.Close()
}

// Upload writes the bytes under a fresh uuid object name and returns the
// public URL. Failures are surfaced as ExternalServiceError; nothing is
// retried.
func (g *Gateway) Upload(ctx context.Context, data []byte, contentType string) (string, error) {
	objectName := uuid.New().String()

	wc := g.client.Bucket(g.bucket).Object(objectName).NewWriter(ctx)
	wc.ContentType = contentType
	if _, err := io.Copy(wc, bytes.NewReader(data)); err != nil {
		_ = wc.Close()
		config.LogError(g.logger, "storage.go", "Upload", "write object", objectName, err)
		return "", apperr.External("storage", fmt.Errorf("write object %s: %w", objectName, err))
	}
	if err := wc.Close(); err != nil {
		config.LogError(g.logger, "storage.go", "Upload", "finalize object", objectName, err)
		return "", apperr.External("storage", fmt.Errorf("finalize object %s: %w", objectName, err))
	}

	g.logger.WithFields(logrus.Fields{
		"bucket":       g.bucket,
		"object":       objectName,
		"content_type": contentType,
		"size":         len(data),
	}).Info("[storage.upload]")

	return g.objectURL(objectName), nil
}

// Delete removes the object named by the final path segment of url. A
// missing object reports NotFoundError so reject-flow cleanup can treat an
// already-deleted image as settled.
func (g *Gateway) Delete(ctx context.Context, url string) error {
	objectName := ObjectName(url)
	if objectName == "" {
		return apperr.Validation("cannot derive object name from %q", url)
	}

	err := g.client.Bucket(g.bucket).Object(objectName).Delete(ctx)
	if errors.Is(err, gcs.ErrObjectNotExist) {
		return &apperr.NotFoundError{Resource: "object " + objectName}
	}
	if err != nil {
		config.LogError(g.logger, "storage.go", "Delete", "delete object", objectName, err)
		return apperr.External("storage", fmt.Errorf("delete object %s: %w", objectName, err))
	}
	return nil
}

// SignedURL produces a time-limited read URL for an object.
func (g *Gateway) SignedURL(objectName string, ttl time.Duration) (string, error) {
	url, err := g.client.Bucket(g.bucket).SignedURL(objectName, &gcs.SignedURLOptions{
		Scheme:  gcs.SigningSchemeV4,
		Method:  "GET",
		Expires: time.Now().Add(ttl),
	})
	if err != nil {
		return "", apperr.External("storage", fmt.Errorf("sign object %s: %w", objectName, err))
	}
	return url, nil
}

func (g *Gateway) objectURL(objectName string) string {
	return fmt.Sprintf("https://storage.googleapis.com/%s/%s", g.bucket, objectName)
}

// ObjectName derives the object name from a stored URL: the final path
// segment, with any query string dropped.
func ObjectName(url string) string {
	url = strings.TrimSpace(url)
	if i := strings.IndexByte(url, '?'); i >= 0 {
		url = url[:i]
	}
	url = strings.TrimRight(url, "/")
	if url == "" {
		return ""
	}
	if i := strings.LastIndexByte(url, '/'); i >= 0 {
		return url[i+1:]
	}
	return url
}
