package storage

import (
	"context"
	"io"
	"net/http"

	gcs "cloud.google.com/go/storage"
	"github.com/pkg/errors"
	"google.golang.org/api/googleapi"

	"classBook/database"
)

// GCSStore uploads to a Cloud Storage bucket, usually the Firebase default one,
// and makes every object publicly readable.
type GCSStore struct {
	bucket   *gcs.BucketHandle
	name     string
	maxBytes int64
}

func NewGCSStore(bucket *gcs.BucketHandle, name string, maxBytes int64) *GCSStore {
	return &GCSStore{bucket: bucket, name: name, maxBytes: maxBytes}
}

func (s *GCSStore) Upload(ctx context.Context, name string, body io.Reader, contentType string) (string, error) {
	clean, err := cleanName(name)
	if err != nil {
		return "", database.Rejected("upload", name, err)
	}
	name = clean

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	obj := s.bucket.Object(name)
	w := obj.NewWriter(ctx)
	w.ContentType = contentType

	if _, err := io.Copy(w, limitSize(body, s.maxBytes)); err != nil {
		cancel()
		_ = w.Close()
		if errors.Is(err, errTooLarge) {
			return "", database.Rejected("upload", name, err)
		}
		return "", classifyGCS("upload", name, err)
	}
	if err := w.Close(); err != nil {
		return "", classifyGCS("upload", name, err)
	}

	if err := obj.ACL().Set(ctx, gcs.AllUsers, gcs.RoleReader); err != nil {
		return "", classifyGCS("publish", name, err)
	}

	return s.PublicURL(name), nil
}

func (s *GCSStore) PublicURL(name string) string {
	return "https://storage.googleapis.com/" + s.name + "/" + escapeName(name)
}

func classifyGCS(op, target string, err error) error {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		switch apiErr.Code {
		case http.StatusBadRequest, http.StatusForbidden, http.StatusLengthRequired,
			http.StatusPreconditionFailed, http.StatusRequestEntityTooLarge:
			return database.Rejected(op, target, err)
		}
	}
	return database.Unavailable(op, target, err)
}
