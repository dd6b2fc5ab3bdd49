package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/golang/freetype/truetype"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/text/unicode/norm"

	"salesboard/internal/calendar"
	"salesboard/internal/chart"
	"salesboard/internal/config"
	"salesboard/internal/dataset"
	"salesboard/internal/exporter"
	"salesboard/internal/infrastructure"
	"salesboard/internal/storage"
	"salesboard/pkg/contracts/domain"
)

// TracerName is the instrumentation scope of report spans.
const TracerName = "salesboard/services"

// LookupRequest selects the product, the calendar date and the window radius.
type LookupRequest struct {
	Product string
	Date    time.Time
	Days    int
}

// ExportFile is an encoded window download.
type ExportFile struct {
	Filename    string
	ContentType string
	Body        []byte
}

// ReportService loads a product's sales table and answers lookups against it.
// Every call fetches the table again; nothing is cached between calls.
type ReportService struct {
	store    storage.BlobStore
	storage  config.StorageConfig
	report   config.ReportConfig
	exporter *exporter.WindowExporter
	font     *truetype.Font
	tracer   trace.Tracer
	lookups  metric.Int64Counter
	logger   *slog.Logger
}

// NewReportService creates a report service reading from store. A nil meter
// falls back to the global provider.
func NewReportService(store storage.BlobStore, cfg *config.Config, meter metric.Meter, logger *slog.Logger) (*ReportService, error) {
	if store == nil {
		return nil, fmt.Errorf("%w: nil blob store", ErrInvalidInput)
	}
	if cfg == nil {
		cfg = config.Default()
	}
	if logger == nil {
		logger = slog.Default()
	}
	if meter == nil {
		meter = otel.Meter(TracerName)
	}

	lookups, err := meter.Int64Counter(
		"salesboard.report.lookups",
		metric.WithDescription("Report lookups by exact-match result"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create lookup counter: %w", err)
	}

	var font *truetype.Font
	if cfg.Report.FontFile != "" {
		if font, err = chart.LoadFont(cfg.Report.FontFile); err != nil {
			return nil, err
		}
	}

	logger = logger.With(slog.String("component", "report_service"))
	logger.Info("ReportService initialized",
		slog.String("backend", cfg.Storage.Backend),
		slog.String("bucket", cfg.Storage.Bucket),
		slog.Int("products", len(cfg.Storage.Products)),
		slog.Bool("custom_font", font != nil))

	return &ReportService{
		store:    store,
		storage:  cfg.Storage,
		report:   cfg.Report,
		exporter: exporter.NewWindowExporter(logger),
		font:     font,
		tracer:   otel.Tracer(TracerName),
		lookups:  lookups,
		logger:   logger,
	}, nil
}

// Products returns the catalog sorted by name.
func (s *ReportService) Products() []domain.Product {
	names := s.storage.ProductNames()
	products := make([]domain.Product, 0, len(names))
	for _, name := range names {
		products = append(products, domain.Product{Name: name, ObjectKey: s.storage.Products[name]})
	}
	return products
}

// DefaultDays is the radius used when a request does not name one.
func (s *ReportService) DefaultDays() int {
	return s.report.WindowDays
}

// Language is the language of report messages.
func (s *ReportService) Language() string {
	return s.report.Language
}

// Lookup computes the report for req: the exact (week, weekday) value and the
// rows inside the ±Days window. Missing rows are reported through
// Report.Value and Report.Window, never as an error.
func (s *ReportService) Lookup(ctx context.Context, req LookupRequest) (*domain.Report, error) {
	res, err := s.Evaluate(ctx, req)
	if err != nil {
		return nil, err
	}
	return res.Report, nil
}

// Chart renders the window of req as an image. An empty window yields
// ErrNoWindowData together with the report.
func (s *ReportService) Chart(ctx context.Context, req LookupRequest, format chart.Format) ([]byte, *domain.Report, error) {
	res, err := s.Evaluate(ctx, req)
	if err != nil {
		return nil, nil, err
	}
	img, err := s.RenderChart(ctx, res, format)
	return img, res.Report, err
}

// Export encodes the window of req as CSV or XLSX. An empty window yields
// ErrNoWindowData.
func (s *ReportService) Export(ctx context.Context, req LookupRequest, format exporter.Format) (*ExportFile, error) {
	res, err := s.Evaluate(ctx, req)
	if err != nil {
		return nil, err
	}
	return s.EncodeExport(res, format)
}

// Result is an evaluated lookup. It can be charted and exported without
// fetching the table again.
type Result struct {
	Report *domain.Report

	anchor  calendar.DateKey
	window  []calendar.DateKey
	records []dataset.SalesRecord
}

// RenderChart draws the window of an evaluated lookup.
func (s *ReportService) RenderChart(ctx context.Context, res *Result, format chart.Format) ([]byte, error) {
	if !res.Report.HasWindow() {
		return nil, fmt.Errorf("%w: %s around %s", ErrNoWindowData, res.Report.Product, res.Report.Date)
	}

	_, span := s.tracer.Start(ctx, "report.chart", trace.WithAttributes(
		attribute.String("chart.format", string(format)),
		attribute.Int("chart.points", len(res.records)),
	))
	defer span.End()

	points := make([]chart.Point, 0, len(res.records))
	for _, r := range res.records {
		points = append(points, chart.Point{Key: r.Key(), Value: r.AvgQuantity})
	}

	msg := messagesFor(s.report.Language)
	img, err := chart.Render(chart.Input{
		Title:      msg.title(res.Report.Days, res.Report.Date),
		SeriesName: msg.seriesName,
		MarkerName: msg.markerName,
		XAxisName:  msg.xAxisName,
		YAxisName:  msg.yAxisName,
		Window:     res.window,
		Anchor:     res.anchor,
		Points:     points,
		Width:      s.report.ChartWidth,
		Height:     s.report.ChartHeight,
		Font:       s.font,
	}, format)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	return img, nil
}

// EncodeExport encodes the window of an evaluated lookup.
func (s *ReportService) EncodeExport(res *Result, format exporter.Format) (*ExportFile, error) {
	if !res.Report.HasWindow() {
		return nil, fmt.Errorf("%w: %s around %s", ErrNoWindowData, res.Report.Product, res.Report.Date)
	}

	e := exporter.WindowExport{
		Product:  res.Report.Product,
		Date:     res.Report.Date,
		Language: s.report.Language,
		Anchor:   res.anchor,
		Records:  res.records,
	}

	var buf bytes.Buffer
	if err := s.exporter.Write(&buf, e, format); err != nil {
		return nil, fmt.Errorf("export window: %w", err)
	}

	return &ExportFile{
		Filename:    e.Filename(format),
		ContentType: format.ContentType(),
		Body:        buf.Bytes(),
	}, nil
}

// Evaluate fetches the product table once and computes the report for req.
func (s *ReportService) Evaluate(ctx context.Context, req LookupRequest) (*Result, error) {
	if req.Days < 0 || req.Days > calendar.MaxRadius {
		return nil, fmt.Errorf("%w: %d not in 0..%d", ErrInvalidRadius, req.Days, calendar.MaxRadius)
	}
	if req.Date.IsZero() {
		return nil, fmt.Errorf("%w: date is required", ErrInvalidInput)
	}

	date := req.Date.Format(calendar.DateLayout)
	ctx, span := s.tracer.Start(ctx, "report.lookup", trace.WithAttributes(
		attribute.String("report.product", req.Product),
		attribute.String("report.date", date),
		attribute.Int("report.days", req.Days),
	))
	defer span.End()

	product, key, err := s.resolveProduct(req.Product)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	ds, err := s.load(ctx, key)
	if err != nil {
		infrastructure.RecordError(ctx, err)
		s.logger.WarnContext(ctx, "Failed to load sales table",
			slog.String("product", product),
			slog.String("key", key),
			slog.String("error", err.Error()))
		return nil, err
	}

	lang := s.report.Language
	msg := messagesFor(lang)
	anchor := calendar.FromDate(req.Date)
	label := calendar.WeekdayLabel(anchor.Weekday, lang)
	window := calendar.Window(anchor, req.Days)
	records := ds.Window(window)

	report := &domain.Report{
		Product:      product,
		Date:         date,
		Week:         anchor.Week,
		Weekday:      anchor.Weekday,
		WeekdayLabel: label,
		Days:         req.Days,
		Window:       make([]domain.WindowPoint, 0, len(records)),
		Source:       key,
		Rows:         ds.Len(),
		Summary:      msg.summaryLine(anchor.Week, label),
	}
	report.Messages = append(report.Messages, report.Summary)

	result := "miss"
	if rec, ok := ds.Exact(anchor); ok {
		v := rec.AvgQuantity
		report.Value = &v
		report.Messages = append(report.Messages, msg.valueLine(anchor.Week, label, v))
		result = "hit"
	} else {
		report.Messages = append(report.Messages, msg.noValue)
	}

	for _, r := range records {
		report.Window = append(report.Window, domain.WindowPoint{
			Week:        r.Week,
			Weekday:     r.Weekday,
			Label:       r.Key().String(),
			AvgQuantity: r.AvgQuantity,
			Selected:    r.Key() == anchor,
		})
	}
	if len(records) > 0 {
		report.Messages = append(report.Messages, msg.windowLine(req.Days))
	} else {
		report.Messages = append(report.Messages, msg.noWindowLine(req.Days))
	}

	s.lookups.Add(ctx, 1, metric.WithAttributes(attribute.String("result", result)))
	span.SetAttributes(
		attribute.String("report.result", result),
		attribute.Int("report.window_rows", len(records)),
	)

	s.logger.DebugContext(ctx, "Lookup completed",
		slog.String("product", product),
		slog.String("date", date),
		slog.Int("week", anchor.Week),
		slog.Int("weekday", anchor.Weekday),
		slog.String("result", result),
		slog.Int("window_rows", len(records)))

	return &Result{Report: report, anchor: anchor, window: window, records: records}, nil
}

// resolveProduct finds the catalog entry for name. Names are compared in NFC
// so decomposed Hangul input still matches.
func (s *ReportService) resolveProduct(name string) (string, string, error) {
	if key, ok := s.storage.Products[name]; ok {
		return name, key, nil
	}

	want := norm.NFC.String(name)
	for _, candidate := range s.storage.ProductNames() {
		if norm.NFC.String(candidate) == want {
			return candidate, s.storage.Products[candidate], nil
		}
	}
	return "", "", fmt.Errorf("%w: %q", ErrUnknownProduct, name)
}

// load fetches and decodes one product table.
func (s *ReportService) load(ctx context.Context, key string) (*dataset.Dataset, error) {
	obj, err := s.store.Get(ctx, s.storage.Bucket, key)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", key, err)
	}

	ds, err := dataset.Decode(key, obj.Body, dataset.DecodeOptions{
		QuantityColumn: s.storage.QuantityColumn,
		Encoding:       s.storage.Encoding,
	})
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", key, err)
	}

	if ds.Skipped() > 0 {
		s.logger.WarnContext(ctx, "Skipped unreadable rows",
			slog.String("key", key),
			slog.Int("skipped", ds.Skipped()))
	}

	days := len(ds.Keys())
	trace.SpanFromContext(ctx).SetAttributes(
		attribute.Int("report.table_rows", ds.Len()),
		attribute.Int("report.table_days", days),
	)
	s.logger.DebugContext(ctx, "Sales table loaded",
		slog.String("key", key),
		slog.Int("rows", ds.Len()),
		slog.Int("days", days),
		slog.Int("size", len(obj.Body)))
	return ds, nil
}

// IsNotFound reports whether err means the product or its table does not exist.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrUnknownProduct) || errors.Is(err, storage.ErrNotFound)
}
