package session

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/sogawa-yk/Galley/internal/config"
	"github.com/sogawa-yk/Galley/internal/platform/s3"
)

// Root returns the local directory that holds per-session files.
func Root(dataDir string) string {
	return filepath.Join(dataDir, "sessions")
}

// TerraformDir returns the synthesis directory of a session.
func TerraformDir(dataDir, id string) string {
	return filepath.Join(Root(dataDir), id, "terraform")
}

// Open returns the store selected by cfg.
func Open(ctx context.Context, cfg *config.Config) (Store, error) {
	switch cfg.Session.Backend {
	case config.BackendFile, "":
		return NewFileStore(Root(cfg.DataDir)), nil
	case config.BackendS3:
		s3cfg := cfg.Session.S3
		client, err := s3.NewClient(ctx, s3.Options{
			Endpoint:  s3cfg.Endpoint,
			Region:    s3cfg.Region,
			Bucket:    s3cfg.Bucket,
			AccessKey: s3cfg.AccessKey,
			SecretKey: s3cfg.SecretKey,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create session object store: %w", err)
		}
		return NewObjectStore(client, s3cfg.Prefix), nil
	default:
		return nil, fmt.Errorf("unknown session backend %q", cfg.Session.Backend)
	}
}
