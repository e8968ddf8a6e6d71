package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// LocalStore writes objects under a directory served statically by the API.
type LocalStore struct {
	dir     string
	urlBase string
}

// NewLocalStore creates a LocalStore rooted at dir whose files are served at urlBase.
func NewLocalStore(dir, urlBase string) *LocalStore {
	return &LocalStore{dir: dir, urlBase: strings.TrimRight(urlBase, "/")}
}

// Put writes r to dir/key and returns its public path.
func (s *LocalStore) Put(_ context.Context, key string, r io.Reader, _ int64, _ string) (string, error) {
	if key == "" || strings.ContainsAny(key, `/\`) || key == "." || key == ".." {
		return "", fmt.Errorf("invalid object key %q", key)
	}

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", fmt.Errorf("create upload dir: %w", err)
	}

	dst, err := os.Create(filepath.Join(s.dir, key))
	if err != nil {
		return "", fmt.Errorf("create file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, r); err != nil {
		return "", fmt.Errorf("write file: %w", err)
	}

	return s.urlBase + "/" + key, nil
}
