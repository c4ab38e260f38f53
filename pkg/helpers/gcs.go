package helpers

import (
	"context"
	"errors"
	"fmt"
	"io"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"
)

// NewGCSClient creates a Google Cloud Storage client. If credsPath is empty, ADC is used.
func NewGCSClient(ctx context.Context, credsPath string, opts ...option.ClientOption) (*storage.Client, error) {
	if credsPath != "" {
		opts = append(opts, option.WithCredentialsFile(credsPath))
	}
	return storage.NewClient(ctx, opts...)
}

// GCSStorage uploads objects into a single bucket.
type GCSStorage struct {
	Client *storage.Client
	Bucket string
}

func NewGCSStorage(client *storage.Client, bucket string) *GCSStorage {
	return &GCSStorage{Client: client, Bucket: bucket}
}

// Upload copies r into bucket/objectPath and returns its public URL.
func (g *GCSStorage) Upload(ctx context.Context, objectPath, contentType string, r io.Reader) (string, error) {
	if g == nil || g.Client == nil || g.Bucket == "" {
		return "", errors.New("gcs not configured")
	}
	wc := g.Client.Bucket(g.Bucket).Object(objectPath).NewWriter(ctx)
	wc.ContentType = contentType
	wc.ChunkSize = 0 // disable chunking for small files
	if _, err := io.Copy(wc, r); err != nil {
		_ = wc.Close()
		return "", err
	}
	if err := wc.Close(); err != nil {
		return "", err
	}
	return PublicURL(g.Bucket, objectPath), nil
}

// PublicURL builds a public URL for an object (assuming public read access or signed URLs)
func PublicURL(bucket, objectPath string) string {
	return fmt.Sprintf("https://storage.googleapis.com/%s/%s", bucket, objectPath)
}
