package storage

import (
	"context"
	"net/http"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newFileStore(t *testing.T) *FileStore {
	t.Helper()
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "chodang", "erp"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "chodang", "erp", "soup.csv"), []byte("week,weekday,평균매출수량\n1,0,3\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "secret.txt"), []byte("x"), 0o644))

	store, err := NewFileStore(root)
	require.NoError(t, err)
	return store
}

func TestFileStore_Get(t *testing.T) {
	store := newFileStore(t)

	obj, err := store.Get(context.Background(), "chodang", "erp/soup.csv")
	require.NoError(t, err)
	assert.Equal(t, "chodang", obj.Bucket)
	assert.Equal(t, "erp/soup.csv", obj.Key)
	assert.Contains(t, string(obj.Body), "평균매출수량")
	assert.Equal(t, http.StatusOK, obj.StatusCode)
}

func TestFileStore_Errors(t *testing.T) {
	store := newFileStore(t)

	tests := []struct {
		name   string
		bucket string
		key    string
		status int
	}{
		{"missing object", "chodang", "erp/550.csv", http.StatusNotFound},
		{"missing bucket", "other", "erp/soup.csv", http.StatusNotFound},
		{"parent traversal", "chodang", "../secret.txt", http.StatusBadRequest},
		{"bucket traversal", "..", "secret.txt", http.StatusBadRequest},
		{"absolute key", "chodang", "/etc/passwd", http.StatusBadRequest},
		{"empty key", "chodang", "", http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := store.Get(context.Background(), tt.bucket, tt.key)
			require.Error(t, err)

			var se *StatusError
			require.ErrorAs(t, err, &se)
			assert.Equal(t, tt.status, se.StatusCode)
			assert.Equal(t, BackendFile, se.Backend)
		})
	}
}

func TestFileStore_NotFoundIsErrNotFound(t *testing.T) {
	store := newFileStore(t)

	_, err := store.Get(context.Background(), "chodang", "erp/none.csv")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestFileStore_CanceledContext(t *testing.T) {
	store := newFileStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := store.Get(ctx, "chodang", "erp/soup.csv")
	assert.ErrorIs(t, err, context.Canceled)
}
