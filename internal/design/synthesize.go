package design

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/sogawa-yk/Galley/internal/catalog"
	"github.com/sogawa-yk/Galley/internal/errdefs"
	"github.com/sogawa-yk/Galley/internal/session"
	"github.com/sogawa-yk/Galley/internal/synth"
)

// Synthesis is a bundle written to a session's synthesis directory.
type Synthesis struct {
	Dir       string             `json:"terraform_dir"`
	Files     map[string]string  `json:"terraform_files"`
	Variables []catalog.Variable `json:"variables"`
}

// TerraformDir returns where a session's bundle lives.
func (s *Service) TerraformDir(id string) string {
	return session.TerraformDir(s.dataDir, id)
}

// Synthesize renders the session's architecture and replaces the bundle
// on disk. Edits made with UpdateFile are overwritten.
func (s *Service) Synthesize(ctx context.Context, id string) (*Synthesis, error) {
	_, arch, err := s.loadArchitecture(ctx, id)
	if err != nil {
		return nil, err
	}
	res, err := s.synth.Synthesize(id, arch)
	if err != nil {
		return nil, fmt.Errorf("failed to synthesize session %s: %w", id, err)
	}

	dir := s.TerraformDir(id)
	if err := res.Bundle.Write(dir); err != nil {
		return nil, err
	}
	s.log.Info("bundle written", "session", id, "dir", dir, "files", len(res.Bundle.Files))
	return &Synthesis{Dir: dir, Files: res.Bundle.Map(), Variables: res.Variables}, nil
}

// Bundle returns the files on disk, synthesizing them first when the
// session has none yet.
func (s *Service) Bundle(ctx context.Context, id string) (*Synthesis, error) {
	if _, _, err := s.loadArchitecture(ctx, id); err != nil {
		return nil, err
	}
	dir := s.TerraformDir(id)
	b, err := synth.ReadBundle(dir)
	if errdefs.IsNotFound(err) {
		return s.Synthesize(ctx, id)
	}
	if err != nil {
		return nil, err
	}
	return &Synthesis{Dir: dir, Files: b.Map()}, nil
}

// UpdateFile overwrites one file of a synthesized bundle. path is
// relative to the synthesis directory, which must already exist.
func (s *Service) UpdateFile(ctx context.Context, id, path, content string) (string, error) {
	if _, _, err := s.loadArchitecture(ctx, id); err != nil {
		return "", err
	}
	dir := s.TerraformDir(id)
	target, err := synth.JoinWithin(dir, path)
	if err != nil {
		return "", err
	}
	if _, err := os.Stat(dir); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", errdefs.Precondition("terraform directory does not exist for session %s; run synthesize first", id)
		}
		return "", fmt.Errorf("failed to stat %s: %w", dir, err)
	}

	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return "", fmt.Errorf("failed to create %s: %w", filepath.Dir(target), err)
	}
	if err := os.WriteFile(target, []byte(content), 0o644); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", target, err)
	}
	s.log.Info("bundle file updated", "session", id, "file", path)
	return target, nil
}
