// Package objectstore archives backlog snapshots to a bucket.
package objectstore

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"

	"github.com/yungbote/productforge-backend/internal/platform/logger"
)

type Archiver interface {
	Put(ctx context.Context, key string, body []byte, contentType string) error
	Close() error
}

type Mode string

const (
	ModeGCS         Mode = "gcs"
	ModeGCSEmulator Mode = "gcs_emulator"
)

type Config struct {
	Bucket          string
	Mode            Mode
	CredentialsFile string
	EmulatorHost    string
	Prefix          string
}

type gcsArchiver struct {
	log    *logger.Logger
	client *storage.Client
	bucket string
	prefix string
}

func NewGCS(ctx context.Context, log *logger.Logger, cfg Config) (Archiver, error) {
	if strings.TrimSpace(cfg.Bucket) == "" {
		return nil, fmt.Errorf("missing GCS_BUCKET")
	}
	client, err := newStorageClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("storage client: %w", err)
	}
	prefix := strings.Trim(cfg.Prefix, "/")
	if prefix == "" {
		prefix = "backlogs"
	}
	return &gcsArchiver{
		log:    log.With("service", "GCSArchiver"),
		client: client,
		bucket: cfg.Bucket,
		prefix: prefix,
	}, nil
}

func newStorageClient(ctx context.Context, cfg Config) (*storage.Client, error) {
	switch cfg.Mode {
	case "", ModeGCS:
		opts := []option.ClientOption{option.WithScopes(storage.ScopeReadWrite)}
		if f := strings.TrimSpace(cfg.CredentialsFile); f != "" {
			opts = append(opts, option.WithCredentialsFile(f))
		}
		return storage.NewClient(ctx, opts...)
	case ModeGCSEmulator:
		endpoint := strings.TrimRight(strings.TrimSpace(cfg.EmulatorHost), "/")
		if endpoint == "" {
			return nil, fmt.Errorf("gcs_emulator mode requires an emulator host")
		}
		_ = os.Setenv("STORAGE_EMULATOR_HOST", endpoint)
		return storage.NewClient(ctx, option.WithoutAuthentication())
	default:
		return nil, fmt.Errorf("unsupported object storage mode %q", cfg.Mode)
	}
}

func (a *gcsArchiver) Put(ctx context.Context, key string, body []byte, contentType string) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	w := a.client.Bucket(a.bucket).Object(a.prefix + "/" + strings.TrimLeft(key, "/")).NewWriter(ctx)
	if contentType != "" {
		w.ContentType = contentType
	}
	if _, err := w.Write(body); err != nil {
		_ = w.Close()
		return fmt.Errorf("write to GCS: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("close GCS writer: %w", err)
	}
	return nil
}

func (a *gcsArchiver) Close() error { return a.client.Close() }

type nopArchiver struct{}

// Nop discards every object. It is used when no bucket is configured.
func Nop() Archiver { return nopArchiver{} }

func (nopArchiver) Put(context.Context, string, []byte, string) error { return nil }
func (nopArchiver) Close() error                                        { return nil }

// BacklogKey names the archived object for one refresh.
func BacklogKey(productID string, at time.Time) string {
	return productID + "/" + at.UTC().Format("20060102T150405.000000000Z") + ".json"
}
