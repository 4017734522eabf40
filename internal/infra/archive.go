package infra

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"
)

// ── Document archive ──────────────────────────────────────────────────────────
// Exported workbooks are kept for the accountant. A bucket wins over a local
// directory when both are configured.

// Archive stores a finished document and returns where it went.
type Archive interface {
	Save(ctx context.Context, name string, data []byte) (string, error)
}

// ArchiveName is prefix_YYYYMMDD_HHMMSS.ext in UTC.
func ArchiveName(prefix string, at time.Time, ext string) string {
	return fmt.Sprintf("%s_%s%s", prefix, at.UTC().Format("20060102_150405"), ext)
}

// DirArchive writes into a local directory, creating it on first use.
type DirArchive struct {
	Dir string
}

func (a DirArchive) Save(_ context.Context, name string, data []byte) (string, error) {
	if err := os.MkdirAll(a.Dir, 0o755); err != nil {
		return "", fmt.Errorf("archive: create dir: %w", err)
	}
	p := filepath.Join(a.Dir, name)
	if err := os.WriteFile(p, data, 0o644); err != nil {
		return "", fmt.Errorf("archive: write: %w", err)
	}
	return p, nil
}

// GCSArchive uploads into a Cloud Storage bucket under an optional prefix.
type GCSArchive struct {
	client *storage.Client
	bucket string
	prefix string
}

// NewGCSArchive uses inline JSON credentials when given and Application
// Default Credentials otherwise.
func NewGCSArchive(ctx context.Context, bucket, prefix, credentialsJSON string) (*GCSArchive, error) {
	var opts []option.ClientOption
	if strings.TrimSpace(credentialsJSON) != "" {
		opts = append(opts, option.WithCredentialsJSON([]byte(credentialsJSON)))
	}
	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("archive: gcs client: %w", err)
	}
	if _, err := client.Bucket(bucket).Attrs(ctx); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("archive: bucket %q not accessible: %w", bucket, err)
	}
	return &GCSArchive{client: client, bucket: bucket, prefix: strings.Trim(prefix, "/")}, nil
}

func (a *GCSArchive) Save(ctx context.Context, name string, data []byte) (string, error) {
	object := name
	if a.prefix != "" {
		object = path.Join(a.prefix, name)
	}
	wc := a.client.Bucket(a.bucket).Object(object).NewWriter(ctx)
	wc.ContentType = contentTypeFor(name)
	if _, err := wc.Write(data); err != nil {
		_ = wc.Close()
		return "", fmt.Errorf("archive: upload: %w", err)
	}
	if err := wc.Close(); err != nil {
		return "", fmt.Errorf("archive: upload: %w", err)
	}
	return "gs://" + a.bucket + "/" + object, nil
}

func (a *GCSArchive) Close() error { return a.client.Close() }

func contentTypeFor(name string) string {
	switch filepath.Ext(name) {
	case ".xlsx":
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	case ".pdf":
		return "application/pdf"
	}
	return "application/octet-stream"
}
