package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"mime"
	"net/http"
	"os"
	"path"
	"path/filepath"
)

// FileStore serves objects from a local directory tree laid out as
// <root>/<bucket>/<key>.
type FileStore struct {
	root string
}

// NewFileStore checks that root is a directory.
func NewFileStore(root string) (*FileStore, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("stat storage root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("storage root %s is not a directory", root)
	}
	return &FileStore{root: root}, nil
}

// Get reads <root>/<bucket>/<key>. Keys use forward slashes and may not leave
// the bucket directory.
func (s *FileStore) Get(ctx context.Context, bucket, key string) (*Object, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	rel := filepath.FromSlash(path.Join(bucket, key))
	if bucket == "" || key == "" || !filepath.IsLocal(rel) || !filepath.IsLocal(filepath.FromSlash(key)) {
		return nil, &StatusError{
			Backend:    BackendFile,
			Bucket:     bucket,
			Key:        key,
			StatusCode: http.StatusBadRequest,
			Err:        errors.New("key escapes the bucket"),
		}
	}

	body, err := os.ReadFile(filepath.Join(s.root, rel))
	if err != nil {
		status := http.StatusInternalServerError
		switch {
		case errors.Is(err, fs.ErrNotExist):
			status = http.StatusNotFound
		case errors.Is(err, fs.ErrPermission):
			status = http.StatusForbidden
		}
		return nil, &StatusError{Backend: BackendFile, Bucket: bucket, Key: key, StatusCode: status, Err: err}
	}

	return &Object{
		Bucket:      bucket,
		Key:         key,
		Body:        body,
		ContentType: mime.TypeByExtension(path.Ext(key)),
		StatusCode:  http.StatusOK,
	}, nil
}
