// Package storage fetches sales exports from object stores.
//
// Every backend implements BlobStore and reports a non-success answer from the
// remote service as a *StatusError so callers can show the status code and stop
// before decoding:
//
//	obj, err := store.Get(ctx, "chodang", "erp/550.csv")
//	if code, ok := storage.StatusCodeOf(err); ok {
//	    // fetch failed with HTTP status code
//	}
//
// Backends:
//
//   - s3: Amazon S3 or any S3 compatible service (MinIO) through aws-sdk-go-v2
//   - gcs: Google Cloud Storage JSON API
//   - sheets: Google Sheets; the bucket is a spreadsheet ID and the key an A1
//     range, values are returned as CSV
//   - file: a local directory where the bucket is a sub-directory
//
// Instrumented wraps any backend with OpenTelemetry spans and fetch metrics.
package storage
