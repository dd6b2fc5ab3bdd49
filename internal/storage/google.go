package storage

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
	gcs "google.golang.org/api/storage/v1"

	"salesboard/internal/config"
)

func googleOptions(cfg config.StorageConfig) []option.ClientOption {
	var opts []option.ClientOption
	if cfg.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
	}
	if cfg.Endpoint != "" {
		opts = append(opts, option.WithEndpoint(cfg.Endpoint))
	}
	return opts
}

// googleStatus converts a *googleapi.Error into a *StatusError.
func googleStatus(backend, bucket, key string, err error) error {
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		return &StatusError{Backend: backend, Bucket: bucket, Key: key, StatusCode: gerr.Code, Err: err}
	}
	return fmt.Errorf("%s: get %s/%s: %w", backend, bucket, key, err)
}

// GCSStore reads objects through the Cloud Storage JSON API.
type GCSStore struct {
	svc *gcs.Service
}

// NewGCSStore creates the service with application default credentials unless
// opts say otherwise.
func NewGCSStore(ctx context.Context, opts ...option.ClientOption) (*GCSStore, error) {
	opts = append([]option.ClientOption{option.WithScopes(gcs.DevstorageReadOnlyScope)}, opts...)
	svc, err := gcs.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create storage service: %w", err)
	}
	return &GCSStore{svc: svc}, nil
}

// Get downloads the object's media.
func (s *GCSStore) Get(ctx context.Context, bucket, key string) (*Object, error) {
	resp, err := s.svc.Objects.Get(bucket, key).Context(ctx).Download()
	if err != nil {
		return nil, googleStatus(BackendGCS, bucket, key, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("gcs: read %s/%s: %w", bucket, key, err)
	}

	return &Object{
		Bucket:      bucket,
		Key:         key,
		Body:        body,
		ContentType: resp.Header.Get("Content-Type"),
		StatusCode:  resp.StatusCode,
	}, nil
}

// SheetsStore reads a spreadsheet range and returns it as CSV. The bucket is
// the spreadsheet ID and the key an A1 range such as "550!A:C".
type SheetsStore struct {
	svc *sheets.Service
}

// NewSheetsStore creates a read-only Sheets client.
func NewSheetsStore(ctx context.Context, opts ...option.ClientOption) (*SheetsStore, error) {
	opts = append([]option.ClientOption{option.WithScopes(sheets.SpreadsheetsReadonlyScope)}, opts...)
	svc, err := sheets.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return &SheetsStore{svc: svc}, nil
}

// Get fetches the formatted values of the range.
func (s *SheetsStore) Get(ctx context.Context, bucket, key string) (*Object, error) {
	resp, err := s.svc.Spreadsheets.Values.Get(bucket, key).Context(ctx).Do()
	if err != nil {
		return nil, googleStatus(BackendSheets, bucket, key, err)
	}

	body, err := valuesToCSV(resp.Values)
	if err != nil {
		return nil, fmt.Errorf("sheets: encode %s/%s: %w", bucket, key, err)
	}

	return &Object{
		Bucket:      bucket,
		Key:         key,
		Body:        body,
		ContentType: "text/csv; charset=utf-8",
		StatusCode:  resp.HTTPStatusCode,
	}, nil
}

// valuesToCSV writes rows padded to the header width; the API drops trailing
// empty cells.
func valuesToCSV(values [][]interface{}) ([]byte, error) {
	if len(values) == 0 {
		return nil, nil
	}

	width := len(values[0])
	var sb strings.Builder
	w := csv.NewWriter(&sb)
	for _, row := range values {
		record := make([]string, width)
		for i := 0; i < width && i < len(row); i++ {
			if row[i] != nil {
				record[i] = fmt.Sprint(row[i])
			}
		}
		if err := w.Write(record); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return []byte(sb.String()), nil
}
