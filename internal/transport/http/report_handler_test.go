package http

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"salesboard/internal/chart"
	"salesboard/internal/dataset"
	apierrors "salesboard/internal/errors"
	"salesboard/internal/exporter"
	"salesboard/internal/middleware"
	"salesboard/internal/services"
	"salesboard/internal/storage"
	"salesboard/pkg/contracts/domain"
)

// MockReportService is a mock implementation of ReportServiceInterface
type MockReportService struct {
	mock.Mock
}

func (m *MockReportService) Products() []domain.Product {
	args := m.Called()
	return args.Get(0).([]domain.Product)
}

func (m *MockReportService) DefaultDays() int {
	return m.Called().Int(0)
}

func (m *MockReportService) Language() string {
	return m.Called().String(0)
}

func (m *MockReportService) Lookup(ctx context.Context, req services.LookupRequest) (*domain.Report, error) {
	args := m.Called(req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Report), args.Error(1)
}

func (m *MockReportService) Chart(ctx context.Context, req services.LookupRequest, format chart.Format) ([]byte, *domain.Report, error) {
	args := m.Called(req, format)
	var img []byte
	if args.Get(0) != nil {
		img = args.Get(0).([]byte)
	}
	var report *domain.Report
	if args.Get(1) != nil {
		report = args.Get(1).(*domain.Report)
	}
	return img, report, args.Error(2)
}

func (m *MockReportService) Export(ctx context.Context, req services.LookupRequest, format exporter.Format) (*services.ExportFile, error) {
	args := m.Called(req, format)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.ExportFile), args.Error(1)
}

var (
	testProducts = []domain.Product{
		{Name: "550", ObjectKey: "erp/550.csv"},
		{Name: "콩국물", ObjectKey: "erp/soup.csv"},
	}
	wednesday = time.Date(2024, 3, 6, 0, 0, 0, 0, time.UTC)
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

func newMockService() *MockReportService {
	svc := new(MockReportService)
	svc.On("Products").Return(testProducts).Maybe()
	svc.On("DefaultDays").Return(5).Maybe()
	svc.On("Language").Return("ko").Maybe()
	return svc
}

func newTestRouter(svc ReportServiceInterface) http.Handler {
	logger := testLogger()
	h := NewReportHandler(svc, middleware.NewValidator(logger), logger, apierrors.NewErrorHandler(logger, false))
	r := chi.NewRouter()
	r.Mount("/api/v1", h.Routes())
	return r
}

func sampleReport() *domain.Report {
	v := 7.0
	return &domain.Report{
		Product:      "550",
		Date:         "2024-03-06",
		Week:         10,
		Weekday:      2,
		WeekdayLabel: "수",
		Days:         1,
		Value:        &v,
		Window: []domain.WindowPoint{
			{Week: 10, Weekday: 1, Label: "10-1", AvgQuantity: 5},
			{Week: 10, Weekday: 2, Label: "10-2", AvgQuantity: 7, Selected: true},
			{Week: 10, Weekday: 3, Label: "10-3", AvgQuantity: 9},
		},
		Source:   "erp/550.csv",
		Rows:     3,
		Summary:  "선택한 날짜는 10주차, 수요일에 해당합니다.",
		Messages: []string{"선택한 날짜는 10주차, 수요일에 해당합니다.", "선택한 10주차, 수요일의 평균 매출수량은 7입니다."},
	}
}

func decodeProblem(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var problem map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &problem))
	return problem
}

func TestReportHandler_GetProducts(t *testing.T) {
	svc := newMockService()
	w := httptest.NewRecorder()
	newTestRouter(svc).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/products", nil))

	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Products []domain.Product `json:"products"`
		Default  string           `json:"default"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, testProducts, resp.Products)
	assert.Equal(t, "550", resp.Default)
}

func TestReportHandler_GetReport(t *testing.T) {
	svc := newMockService()
	svc.On("Lookup", services.LookupRequest{Product: "550", Date: wednesday, Days: 1}).Return(sampleReport(), nil)

	w := httptest.NewRecorder()
	newTestRouter(svc).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/report?product=550&date=2024-03-06&days=1", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "application/json")

	var report domain.Report
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &report))
	assert.Equal(t, 10, report.Week)
	require.NotNil(t, report.Value)
	assert.Equal(t, 7.0, *report.Value)
	assert.Len(t, report.Window, 3)
	svc.AssertExpectations(t)
}

func TestReportHandler_GetReport_DefaultDays(t *testing.T) {
	svc := newMockService()
	svc.On("Lookup", services.LookupRequest{Product: "콩국물", Date: wednesday, Days: 5}).Return(sampleReport(), nil)

	w := httptest.NewRecorder()
	newTestRouter(svc).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/report?product=%EC%BD%A9%EA%B5%AD%EB%AC%BC&date=2024-03-06", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	svc.AssertExpectations(t)
}

func TestReportHandler_Validation(t *testing.T) {
	tests := []struct {
		name  string
		query string
		field string
	}{
		{"missing product", "date=2024-03-06", "product"},
		{"missing date", "product=550", "date"},
		{"malformed date", "product=550&date=06/03/2024", "date"},
		{"impossible date", "product=550&date=2024-13-01", "date"},
		{"days not a number", "product=550&date=2024-03-06&days=abc", "days"},
		{"days too large", "product=550&date=2024-03-06&days=8", "days"},
		{"days negative", "product=550&date=2024-03-06&days=-1", "days"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newMockService()
			w := httptest.NewRecorder()
			newTestRouter(svc).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/report?"+tt.query, nil))

			require.Equal(t, http.StatusBadRequest, w.Code)
			problem := decodeProblem(t, w)
			assert.Equal(t, apierrors.TypeValidation, problem["type"])
			assert.Contains(t, fmt.Sprint(problem["details"]), tt.field)
			svc.AssertNotCalled(t, "Lookup", mock.Anything)
		})
	}
}

func TestReportHandler_ServiceErrors(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantType   string
		check      func(t *testing.T, problem map[string]interface{})
	}{
		{
			name:       "unknown product",
			err:        fmt.Errorf("%w: %q", services.ErrUnknownProduct, "550"),
			wantStatus: http.StatusNotFound,
			wantType:   apierrors.TypeNotFound,
		},
		{
			name:       "store forbidden",
			err:        fmt.Errorf("fetch erp/550.csv: %w", &storage.StatusError{Backend: "s3", Bucket: "chodang", Key: "erp/550.csv", StatusCode: 403}),
			wantStatus: http.StatusBadGateway,
			wantType:   apierrors.TypeStorageFetchFailed,
			check: func(t *testing.T, problem map[string]interface{}) {
				assert.Equal(t, "파일을 가져오지 못했습니다. HTTP 상태 코드: 403", problem["detail"])
				assert.Equal(t, float64(403), problem["status_code"])
			},
		},
		{
			name:       "object missing",
			err:        &storage.StatusError{Backend: "file", Bucket: "chodang", Key: "erp/550.csv", StatusCode: 404},
			wantStatus: http.StatusNotFound,
			wantType:   apierrors.TypeStorageFetchFailed,
		},
		{
			name:       "corrupted table",
			err:        fmt.Errorf("decode erp/550.csv: %w", dataset.ErrMissingColumn),
			wantStatus: http.StatusUnprocessableEntity,
			wantType:   apierrors.TypeDataCorrupted,
		},
		{
			name:       "radius out of range",
			err:        fmt.Errorf("%w: 9 not in 0..7", services.ErrInvalidRadius),
			wantStatus: http.StatusBadRequest,
			wantType:   apierrors.TypeValidation,
		},
		{
			name:       "timeout",
			err:        context.DeadlineExceeded,
			wantStatus: http.StatusGatewayTimeout,
			wantType:   apierrors.TypeTimeout,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newMockService()
			svc.On("Lookup", mock.Anything).Return(nil, tt.err)

			w := httptest.NewRecorder()
			newTestRouter(svc).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/report?product=550&date=2024-03-06", nil))

			require.Equal(t, tt.wantStatus, w.Code)
			assert.Contains(t, w.Header().Get("Content-Type"), "application/json")
			problem := decodeProblem(t, w)
			assert.Equal(t, tt.wantType, problem["type"])
			if tt.check != nil {
				tt.check(t, problem)
			}
		})
	}
}

func TestReportHandler_GetChart(t *testing.T) {
	req := services.LookupRequest{Product: "550", Date: wednesday, Days: 1}

	t.Run("svg", func(t *testing.T) {
		svc := newMockService()
		svc.On("Chart", req, chart.SVG).Return([]byte("<svg></svg>"), sampleReport(), nil)

		w := httptest.NewRecorder()
		newTestRouter(svc).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/report/chart.svg?product=550&date=2024-03-06&days=1", nil))

		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, chart.SVG.ContentType(), w.Header().Get("Content-Type"))
		assert.Equal(t, "<svg></svg>", w.Body.String())
		svc.AssertExpectations(t)
	})

	t.Run("zero days keeps the radius", func(t *testing.T) {
		svc := newMockService()
		zero := services.LookupRequest{Product: "550", Date: wednesday, Days: 0}
		svc.On("Chart", zero, chart.PNG).Return([]byte("\x89PNG"), sampleReport(), nil)

		w := httptest.NewRecorder()
		newTestRouter(svc).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/report/chart.png?product=550&date=2024-03-06&days=0", nil))

		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, chart.PNG.ContentType(), w.Header().Get("Content-Type"))
		svc.AssertExpectations(t)
	})

	t.Run("empty window", func(t *testing.T) {
		svc := newMockService()
		svc.On("Chart", req, chart.PNG).Return(nil, sampleReport(), fmt.Errorf("%w: 550 around 2024-03-06", services.ErrNoWindowData))

		w := httptest.NewRecorder()
		newTestRouter(svc).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/report/chart.png?product=550&date=2024-03-06&days=1", nil))

		require.Equal(t, http.StatusNotFound, w.Code)
		problem := decodeProblem(t, w)
		assert.Equal(t, apierrors.TypeDataNotFound, problem["type"])
		assert.Equal(t, "DATA_NOT_FOUND", problem["error_code"])
	})

	t.Run("unsupported format", func(t *testing.T) {
		svc := newMockService()
		w := httptest.NewRecorder()
		newTestRouter(svc).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/report/chart.gif?product=550&date=2024-03-06", nil))

		assert.Equal(t, http.StatusBadRequest, w.Code)
		svc.AssertNotCalled(t, "Chart", mock.Anything, mock.Anything)
	})
}

func TestReportHandler_GetExport(t *testing.T) {
	svc := newMockService()
	svc.On("Export", services.LookupRequest{Product: "550", Date: wednesday, Days: 5}, exporter.FormatCSV).Return(&services.ExportFile{
		Filename:    "550_2024-03-06.csv",
		ContentType: exporter.FormatCSV.ContentType(),
		Body:        []byte("\ufeffweek,weekday\n"),
	}, nil)

	w := httptest.NewRecorder()
	newTestRouter(svc).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/report/export.csv?product=550&date=2024-03-06", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/csv; charset=utf-8", w.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename=550_2024-03-06.csv`, w.Header().Get("Content-Disposition"))
	assert.Equal(t, "\ufeffweek,weekday\n", w.Body.String())

	t.Run("unsupported format", func(t *testing.T) {
		w := httptest.NewRecorder()
		newTestRouter(newMockService()).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/report/export.pdf?product=550&date=2024-03-06", nil))
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}
