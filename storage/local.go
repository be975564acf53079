package storage

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"

	"classBook/database"
)

// LocalStore writes objects under a directory and hands out URLs below
// baseURL. An existing object with the same name is replaced.
type LocalStore struct {
	dir      string
	baseURL  string
	maxBytes int64
}

func NewLocalStore(dir, baseURL string, maxBytes int64) (*LocalStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrapf(err, "create blob dir %s", dir)
	}
	return &LocalStore{dir: dir, baseURL: strings.TrimRight(baseURL, "/"), maxBytes: maxBytes}, nil
}

func (s *LocalStore) Upload(ctx context.Context, name string, body io.Reader, _ string) (string, error) {
	clean, err := cleanName(name)
	if err != nil {
		return "", database.Rejected("upload", name, err)
	}
	name = clean
	if err := ctx.Err(); err != nil {
		return "", database.Unavailable("upload", name, err)
	}

	dst := filepath.Join(s.dir, filepath.FromSlash(name))
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return "", database.Unavailable("upload", name, err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(dst), ".upload-*")
	if err != nil {
		return "", database.Unavailable("upload", name, err)
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, limitSize(body, s.maxBytes)); err != nil {
		_ = tmp.Close()
		if errors.Is(err, errTooLarge) {
			return "", database.Rejected("upload", name, err)
		}
		return "", database.Unavailable("upload", name, err)
	}
	if err := tmp.Close(); err != nil {
		return "", database.Unavailable("upload", name, err)
	}
	if err := os.Rename(tmp.Name(), dst); err != nil {
		return "", database.Unavailable("upload", name, err)
	}

	return s.baseURL + "/" + escapeName(name), nil
}
