package http

import (
	"context"

	"salesboard/internal/chart"
	"salesboard/internal/exporter"
	"salesboard/internal/services"
	"salesboard/pkg/contracts/domain"
)

// ReportServiceInterface defines the report operations used by the handlers
type ReportServiceInterface interface {
	Products() []domain.Product
	DefaultDays() int
	Language() string
	Lookup(ctx context.Context, req services.LookupRequest) (*domain.Report, error)
	Chart(ctx context.Context, req services.LookupRequest, format chart.Format) ([]byte, *domain.Report, error)
	Export(ctx context.Context, req services.LookupRequest, format exporter.Format) (*services.ExportFile, error)
}
