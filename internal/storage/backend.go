package storage

import (
	"context"
	"fmt"

	"github.com/schoolroster/roster/config"
)

// NewBackend builds the page storage backend selected in cfg.
func NewBackend(ctx context.Context, cfg config.PagesConfig) (ObjectStorage, error) {
	switch cfg.Backend {
	case "", config.PagesLocal:
		return NewLocalDir(cfg.Dir)
	case config.PagesMinio:
		return NewMinioPages(cfg.Minio, cfg.KeyPrefix)
	case config.PagesGCS:
		return NewGCSPages(ctx, cfg.GCS, cfg.KeyPrefix)
	default:
		return nil, fmt.Errorf("unknown pages backend %q", cfg.Backend)
	}
}
