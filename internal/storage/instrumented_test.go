package storage

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

type stubStore struct {
	obj *Object
	err error
}

func (s stubStore) Get(ctx context.Context, bucket, key string) (*Object, error) {
	return s.obj, s.err
}

func TestInstrumented_RecordsSpansAndMetrics(t *testing.T) {
	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))
	otel.SetTracerProvider(tp)
	defer tp.Shutdown(context.Background())

	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	meter := mp.Meter("test")

	ok, err := NewInstrumented(stubStore{obj: &Object{Body: []byte("abc"), StatusCode: 200}}, BackendS3, meter, nil)
	require.NoError(t, err)
	failing, err := NewInstrumented(stubStore{err: &StatusError{Backend: BackendS3, StatusCode: http.StatusForbidden}}, BackendS3, meter, nil)
	require.NoError(t, err)

	_, err = ok.Get(context.Background(), "chodang", "erp/550.csv")
	require.NoError(t, err)
	_, err = failing.Get(context.Background(), "chodang", "erp/soup.csv")
	require.Error(t, err)

	spans := exporter.GetSpans()
	require.Len(t, spans, 2)
	assert.Equal(t, "storage.get", spans[0].Name)
	assert.Equal(t, codes.Ok, spans[0].Status.Code)
	assert.Contains(t, spans[0].Attributes, attribute.Int("storage.bytes", 3))
	assert.Equal(t, codes.Error, spans[1].Status.Code)
	assert.Contains(t, spans[1].Attributes, attribute.Int("storage.status_code", http.StatusForbidden))

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	counts := map[string]int64{}
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name != "salesboard.storage.fetch.count" {
				continue
			}
			sum, isSum := m.Data.(metricdata.Sum[int64])
			require.True(t, isSum)
			for _, dp := range sum.DataPoints {
				status, _ := dp.Attributes.Value("status")
				counts[status.AsString()] += dp.Value
			}
		}
	}
	assert.Equal(t, map[string]int64{"200": 1, "403": 1}, counts)
}

func TestStatusLabel(t *testing.T) {
	assert.Equal(t, "error", statusLabel(0))
	assert.Equal(t, "404", statusLabel(404))
}
