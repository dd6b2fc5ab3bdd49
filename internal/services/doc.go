// Package services implements the business logic layer of Salesboard.
// It sits between the HTTP handlers and the storage and dataset packages.
//
// # Available Services
//
//   - ReportService: loads a product's sales table from the blob store and
//     answers exact and windowed lookups, renders the trend chart and encodes
//     window exports
//   - HealthService: health, readiness and liveness checks
//
// # Request flow
//
// Every ReportService call is a fresh pipeline:
//
//	product -> object key -> BlobStore.Get -> dataset.Decode -> Exact / Window
//
// Nothing is cached between calls, so a table updated in the bucket is visible
// on the next request.
//
// # Error Handling
//
// Services return sentinel errors wrapped with %w that handlers map to
// RFC 7807 problems:
//
//   - ErrUnknownProduct: the product is not in the catalog
//   - ErrInvalidRadius: the window radius is outside 0..7
//   - ErrNoWindowData: a chart or export was asked for an empty window
//
// Storage and decode failures pass through unchanged (*storage.StatusError,
// dataset.ErrMissingColumn and friends).
package services
