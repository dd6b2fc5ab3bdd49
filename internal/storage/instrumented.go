package storage

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// TracerName is the instrumentation scope of storage spans.
const TracerName = "salesboard/storage"

// Instrumented decorates a BlobStore with a span per fetch, the
// salesboard.storage.fetch.* metrics and a debug log line.
type Instrumented struct {
	next     BlobStore
	backend  string
	logger   *slog.Logger
	count    metric.Int64Counter
	duration metric.Float64Histogram
}

// NewInstrumented wraps next. A nil meter falls back to the global provider.
func NewInstrumented(next BlobStore, backend string, meter metric.Meter, logger *slog.Logger) (*Instrumented, error) {
	if meter == nil {
		meter = otel.Meter(TracerName)
	}
	if logger == nil {
		logger = slog.Default()
	}

	count, err := meter.Int64Counter(
		"salesboard.storage.fetch.count",
		metric.WithDescription("Number of object fetches by backend and status"),
	)
	if err != nil {
		return nil, err
	}

	duration, err := meter.Float64Histogram(
		"salesboard.storage.fetch.duration",
		metric.WithDescription("Object fetch duration in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	return &Instrumented{
		next:     next,
		backend:  backend,
		logger:   logger.With(slog.String("component", "storage")),
		count:    count,
		duration: duration,
	}, nil
}

// Get forwards to the wrapped store.
func (s *Instrumented) Get(ctx context.Context, bucket, key string) (*Object, error) {
	ctx, span := otel.Tracer(TracerName).Start(ctx, "storage.get",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("storage.backend", s.backend),
			attribute.String("storage.bucket", bucket),
			attribute.String("storage.key", key),
		),
	)
	defer span.End()

	start := time.Now()
	obj, err := s.next.Get(ctx, bucket, key)
	elapsed := time.Since(start)

	status := http.StatusOK
	if err != nil {
		if code, ok := StatusCodeOf(err); ok {
			status = code
		} else {
			status = 0
		}
	}

	attrs := metric.WithAttributes(
		attribute.String("backend", s.backend),
		attribute.String("status", statusLabel(status)),
	)
	s.count.Add(ctx, 1, attrs)
	s.duration.Record(ctx, elapsed.Seconds(), attrs)

	span.SetAttributes(attribute.Int("storage.status_code", status))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		s.logger.WarnContext(ctx, "object fetch failed",
			slog.String("bucket", bucket),
			slog.String("key", key),
			slog.Int("status_code", status),
			slog.Duration("duration", elapsed),
			slog.String("error", err.Error()))
		return nil, err
	}

	span.SetAttributes(attribute.Int("storage.bytes", len(obj.Body)))
	span.SetStatus(codes.Ok, "")
	s.logger.DebugContext(ctx, "object fetched",
		slog.String("bucket", bucket),
		slog.String("key", key),
		slog.Int("bytes", len(obj.Body)),
		slog.Duration("duration", elapsed))
	return obj, nil
}

func statusLabel(code int) string {
	if code == 0 {
		return "error"
	}
	return strconv.Itoa(code)
}
