package storage

import (
	"context"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/googleapi"

	"classBook/database"
)

func TestLocalStoreUpload(t *testing.T) {
	dir := t.TempDir()
	store, err := NewLocalStore(dir, "http://files.local/", 1<<10)
	require.NoError(t, err)

	url, err := store.Upload(context.Background(), "plans/수학 계획.pdf", strings.NewReader("%PDF"), "application/pdf")
	require.NoError(t, err)
	assert.Equal(t, "http://files.local/plans/%EC%88%98%ED%95%99%20%EA%B3%84%ED%9A%8D.pdf", url)

	data, err := os.ReadFile(filepath.Join(dir, "plans", "수학 계획.pdf"))
	require.NoError(t, err)
	assert.Equal(t, "%PDF", string(data))
}

func TestLocalStoreOverwritesSameName(t *testing.T) {
	dir := t.TempDir()
	store, err := NewLocalStore(dir, "http://files.local", 1<<10)
	require.NoError(t, err)

	_, err = store.Upload(context.Background(), "plans/a.pdf", strings.NewReader("first"), "")
	require.NoError(t, err)
	_, err = store.Upload(context.Background(), "plans/a.pdf", strings.NewReader("second"), "")
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(dir, "plans", "a.pdf"))
	require.NoError(t, err)
	assert.Equal(t, "second", string(data))

	entries, err := os.ReadDir(filepath.Join(dir, "plans"))
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestLocalStoreRejectsOversizedUpload(t *testing.T) {
	dir := t.TempDir()
	store, err := NewLocalStore(dir, "http://files.local", 4)
	require.NoError(t, err)

	_, err = store.Upload(context.Background(), "plans/big.pdf", strings.NewReader("12345"), "")
	assert.True(t, errors.Is(err, database.ErrWriteRejected), "got %v", err)

	_, statErr := os.Stat(filepath.Join(dir, "plans", "big.pdf"))
	assert.True(t, os.IsNotExist(statErr))

	_, err = store.Upload(context.Background(), "plans/fits.pdf", strings.NewReader("1234"), "")
	assert.NoError(t, err)
}

func TestLocalStoreRejectsEscapingNames(t *testing.T) {
	store, err := NewLocalStore(t.TempDir(), "http://files.local", 1<<10)
	require.NoError(t, err)

	for _, name := range []string{"", "/etc/passwd", "plans/../../x", "plans//a.pdf", "./a"} {
		_, err := store.Upload(context.Background(), name, strings.NewReader("x"), "")
		assert.True(t, errors.Is(err, database.ErrWriteRejected), "name %q: %v", name, err)
	}
}

func TestLocalStoreCanceledContext(t *testing.T) {
	store, err := NewLocalStore(t.TempDir(), "http://files.local", 1<<10)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = store.Upload(ctx, "plans/a.pdf", strings.NewReader("x"), "")
	assert.True(t, errors.Is(err, database.ErrStoreUnavailable))
}

func TestGCSPublicURL(t *testing.T) {
	store := NewGCSStore(nil, "school-1.appspot.com", 1<<10)
	assert.Equal(t, "https://storage.googleapis.com/school-1.appspot.com/plans/a%20b.pdf", store.PublicURL("plans/a b.pdf"))
}

func TestClassifyGCS(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{"forbidden", &googleapi.Error{Code: http.StatusForbidden}, database.ErrWriteRejected},
		{"too large", &googleapi.Error{Code: http.StatusRequestEntityTooLarge}, database.ErrWriteRejected},
		{"server error", &googleapi.Error{Code: http.StatusServiceUnavailable}, database.ErrStoreUnavailable},
		{"rate limited", &googleapi.Error{Code: http.StatusTooManyRequests}, database.ErrStoreUnavailable},
		{"network", errors.New("dial tcp: timeout"), database.ErrStoreUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := classifyGCS("upload", "plans/a.pdf", tt.err)
			assert.True(t, errors.Is(err, tt.want), "got %v", err)
		})
	}
}
