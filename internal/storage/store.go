package storage

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"salesboard/internal/config"
)

// Backend names accepted by Open.
const (
	BackendS3     = "s3"
	BackendGCS    = "gcs"
	BackendSheets = "sheets"
	BackendFile   = "file"
)

// ErrNotFound matches any *StatusError carrying HTTP 404.
var ErrNotFound = errors.New("object not found")

// Object is a fetched blob.
type Object struct {
	Bucket      string
	Key         string
	Body        []byte
	ContentType string
	StatusCode  int
}

// BlobStore fetches whole objects by bucket and key.
type BlobStore interface {
	Get(ctx context.Context, bucket, key string) (*Object, error)
}

// StatusError reports a fetch answered with a non-success status.
type StatusError struct {
	Backend    string
	Bucket     string
	Key        string
	StatusCode int
	Err        error
}

func (e *StatusError) Error() string {
	msg := fmt.Sprintf("%s: get %s/%s: status %d", e.Backend, e.Bucket, e.Key, e.StatusCode)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *StatusError) Unwrap() error { return e.Err }

// Is reports 404 errors as ErrNotFound.
func (e *StatusError) Is(target error) bool {
	return target == ErrNotFound && e.StatusCode == http.StatusNotFound
}

// StatusCodeOf extracts the status code from a *StatusError anywhere in err's
// chain.
func StatusCodeOf(err error) (int, bool) {
	var se *StatusError
	if errors.As(err, &se) {
		return se.StatusCode, true
	}
	return 0, false
}

// Open builds the backend selected by cfg.Backend. Every Get is bounded by
// cfg.Timeout when it is positive.
func Open(ctx context.Context, cfg config.StorageConfig) (BlobStore, error) {
	var (
		store BlobStore
		err   error
	)

	switch cfg.Backend {
	case BackendS3, "":
		store, err = NewS3Store(ctx, cfg)
	case BackendGCS:
		store, err = NewGCSStore(ctx, googleOptions(cfg)...)
	case BackendSheets:
		store, err = NewSheetsStore(ctx, googleOptions(cfg)...)
	case BackendFile:
		store, err = NewFileStore(cfg.BaseDir)
	default:
		return nil, fmt.Errorf("unsupported storage backend: %q", cfg.Backend)
	}
	if err != nil {
		return nil, fmt.Errorf("open %s storage: %w", cfg.Backend, err)
	}

	if cfg.Timeout > 0 {
		store = &timeoutStore{next: store, timeout: cfg.Timeout}
	}
	return store, nil
}

type timeoutStore struct {
	next    BlobStore
	timeout time.Duration
}

func (s *timeoutStore) Get(ctx context.Context, bucket, key string) (*Object, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	return s.next.Get(ctx, bucket, key)
}
