package synth

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/sogawa-yk/Galley/internal/errdefs"
)

// File is one generated file.
type File struct {
	Name    string `json:"name"`
	Content string `json:"content"`
}

// Bundle is an ordered set of generated files.
type Bundle struct {
	Files []File `json:"files"`
}

// Add appends or replaces a file.
func (b *Bundle) Add(name, content string) {
	for i := range b.Files {
		if b.Files[i].Name == name {
			b.Files[i].Content = content
			return
		}
	}
	b.Files = append(b.Files, File{Name: name, Content: content})
}

// Get returns the content of a file.
func (b *Bundle) Get(name string) (string, bool) {
	for _, f := range b.Files {
		if f.Name == name {
			return f.Content, true
		}
	}
	return "", false
}

// Map returns the files keyed by name.
func (b *Bundle) Map() map[string]string {
	m := make(map[string]string, len(b.Files))
	for _, f := range b.Files {
		m[f.Name] = f.Content
	}
	return m
}

// Write replaces the contents of dir with the bundle.
func (b *Bundle) Write(dir string) error {
	if err := os.RemoveAll(dir); err != nil {
		return fmt.Errorf("failed to clear %s: %w", dir, err)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create %s: %w", dir, err)
	}
	for _, f := range b.Files {
		path := filepath.Join(dir, filepath.FromSlash(f.Name))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return fmt.Errorf("failed to create %s: %w", filepath.Dir(path), err)
		}
		if err := os.WriteFile(path, []byte(f.Content), 0o644); err != nil {
			return fmt.Errorf("failed to write %s: %w", f.Name, err)
		}
	}
	return nil
}

// ReadBundle reads the regular files under dir, in name order. Names
// are slash-separated paths relative to dir; hidden directories such as
// .terraform are skipped. A missing or empty directory is reported as
// not found.
func ReadBundle(dir string) (*Bundle, error) {
	if _, err := os.Stat(dir); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, errdefs.NotFound("synthesis directory", dir)
		}
		return nil, fmt.Errorf("failed to read %s: %w", dir, err)
	}

	var names []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != dir && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		names = append(names, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", dir, err)
	}
	if len(names) == 0 {
		return nil, errdefs.NotFound("synthesis directory", dir)
	}
	sort.Strings(names)

	b := &Bundle{}
	for _, name := range names {
		data, err := os.ReadFile(filepath.Join(dir, filepath.FromSlash(name)))
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", name, err)
		}
		b.Add(name, string(data))
	}
	return b, nil
}

// JoinWithin joins a relative file path onto dir and rejects anything
// that would resolve outside dir.
func JoinWithin(dir, rel string) (string, error) {
	if rel == "" || filepath.IsAbs(rel) || strings.HasPrefix(rel, "/") {
		return "", errdefs.InvalidInput("file path %q must be relative", rel)
	}
	for _, part := range strings.FieldsFunc(rel, func(r rune) bool { return r == '/' || r == '\\' }) {
		if part == ".." {
			return "", errdefs.InvalidInput("file path %q must not contain ..", rel)
		}
	}
	full := filepath.Join(dir, rel)
	within, err := filepath.Rel(dir, full)
	if err != nil || within == "." || strings.HasPrefix(within, "..") {
		return "", errdefs.InvalidInput("file path %q escapes the synthesis directory", rel)
	}
	return full, nil
}
