package provisioning

import (
	"archive/zip"
	"bytes"
	"encoding/base64"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// PackageDir zips the Terraform configuration under dir for a stack
// upload. Provider caches under .terraform/ and any state file are left
// out. Entries are in lexical order so unchanged input yields identical
// bytes.
func PackageDir(dir string) ([]byte, error) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)

	count := 0
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if d.Name() == ".terraform" {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() || strings.Contains(d.Name(), "tfstate") {
			return nil
		}

		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		w, err := zw.CreateHeader(&zip.FileHeader{Name: filepath.ToSlash(rel), Method: zip.Deflate})
		if err != nil {
			return err
		}
		// #nosec G304
		f, err := os.Open(path)
		if err != nil {
			return err
		}
		defer f.Close()
		if _, err := io.Copy(w, f); err != nil {
			return err
		}
		count++
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to package %s: %w", dir, err)
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("failed to package %s: %w", dir, err)
	}
	if count == 0 {
		return nil, fmt.Errorf("no Terraform files in %s", dir)
	}
	return buf.Bytes(), nil
}

// EncodeArchive base64-encodes a zip for the Resource Manager API.
func EncodeArchive(data []byte) string {
	return base64.StdEncoding.EncodeToString(data)
}
