// Package http implements the HTTP handlers of Salesboard. Handlers stay
// thin: they parse and validate the query, call the report service and format
// the response.
//
// # Routes
//
//	GET /                                 lookup page (HTML)
//	GET /api/v1/products                  product catalog
//	GET /api/v1/report                    JSON report
//	GET /api/v1/report/chart.{png,svg}    window chart
//	GET /api/v1/report/export.{csv,xlsx}  window download
//	GET /api/health[/ready|/live]         health probes
//	GET /api/version                      build information
//	GET /metrics[/runtime]                Prometheus scrape, runtime summary
//
// Report routes share the query parameters product, date (YYYY-MM-DD) and
// days (0..7, defaulting to report.window_days).
//
// # Error Handling
//
// Errors are rendered as RFC 7807 problems by errors.ErrorHandler:
//
//	{
//	    "type": "/errors/storage/fetch-failed",
//	    "title": "Storage Fetch Failed",
//	    "status": 502,
//	    "detail": "파일을 가져오지 못했습니다. HTTP 상태 코드: 403",
//	    "instance": "/api/v1/report",
//	    "status_code": 403
//	}
//
// The page handler shows the same detail text inline instead.
package http
