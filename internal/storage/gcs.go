package storage

import (
	"context"
	"errors"
	"io"
	"strings"

	"cloud.google.com/go/storage"
	"github.com/schoolroster/roster/config"
	"google.golang.org/api/option"
)

// GCSPages keeps the roster pages in a Google Cloud Storage bucket.
type GCSPages struct {
	client    *storage.Client
	bucket    string
	projectID string
	prefix    string
}

// NewGCSPages builds a client from application default credentials, or
// from cfg.CredentialsFile when set.
func NewGCSPages(ctx context.Context, cfg config.GCSConfig, prefix string) (*GCSPages, error) {
	if strings.TrimSpace(cfg.Bucket) == "" {
		return nil, errors.New("gcs bucket is required")
	}

	var opts []option.ClientOption
	if file := strings.TrimSpace(cfg.CredentialsFile); file != "" {
		opts = append(opts, option.WithCredentialsFile(file))
	}
	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, err
	}
	return &GCSPages{client: client, bucket: cfg.Bucket, projectID: cfg.ProjectID, prefix: prefix}, nil
}

// EnsureBucket creates the bucket under cfg.ProjectID when it is missing.
func (g *GCSPages) EnsureBucket(ctx context.Context) error {
	bucket := g.client.Bucket(g.bucket)
	_, err := bucket.Attrs(ctx)
	switch {
	case err == nil:
		return nil
	case !errors.Is(err, storage.ErrBucketNotExist):
		return err
	case strings.TrimSpace(g.projectID) == "":
		return errors.New("gcs project id is required to create bucket")
	}
	return bucket.Create(ctx, g.projectID, nil)
}

func (g *GCSPages) Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error {
	writer := g.client.Bucket(g.bucket).Object(objectKey(g.prefix, key)).NewWriter(ctx)
	writer.ContentType = contentTypeOrDefault(contentType)
	writer.CacheControl = "no-cache"
	if _, err := io.Copy(writer, r); err != nil {
		_ = writer.Close()
		return err
	}
	return writer.Close()
}

func (g *GCSPages) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	reader, err := g.client.Bucket(g.bucket).Object(objectKey(g.prefix, key)).NewReader(ctx)
	if errors.Is(err, storage.ErrObjectNotExist) {
		return nil, ErrObjectNotFound
	}
	if err != nil {
		return nil, err
	}
	return reader, nil
}

func (g *GCSPages) Bucket() string {
	return g.bucket
}

// Close releases the SDK client.
func (g *GCSPages) Close() error {
	return g.client.Close()
}
