package http

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	apierrors "salesboard/internal/errors"
	"salesboard/internal/middleware"
	"salesboard/internal/services"
	"salesboard/internal/storage"
	"salesboard/pkg/contracts/domain"
)

func newTestPage(svc ReportServiceInterface) *PageHandler {
	logger := testLogger()
	h := NewPageHandler(svc, middleware.NewValidator(logger), logger, apierrors.NewErrorHandler(logger, false), "/api/v1")
	h.now = func() time.Time { return wednesday }
	return h
}

func TestPageHandler_Defaults(t *testing.T) {
	svc := newMockService()
	svc.On("Lookup", services.LookupRequest{Product: "550", Date: wednesday, Days: 5}).Return(sampleReport(), nil)

	w := httptest.NewRecorder()
	newTestPage(svc).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/html; charset=utf-8", w.Header().Get("Content-Type"))

	body := w.Body.String()
	assert.Contains(t, body, "매출 데이터 조회")
	assert.Contains(t, body, `<option value="550" selected>550</option>`)
	assert.Contains(t, body, `value="2024-03-06"`)
	assert.Contains(t, body, "선택한 10주차, 수요일의 평균 매출수량은 7입니다.")
	assert.Contains(t, body, `/api/v1/report/chart.svg?date=2024-03-06&amp;days=1&amp;product=550`)
	assert.Contains(t, body, `/api/v1/report/export.xlsx?`)
	svc.AssertExpectations(t)
}

func TestPageHandler_EmptyWindow(t *testing.T) {
	report := sampleReport()
	report.Window = []domain.WindowPoint{}
	report.Value = nil
	report.Messages = []string{report.Summary, "선택한 날짜에 대한 데이터가 없습니다.", "선택한 날짜 전후 1일 간의 데이터가 없습니다."}

	svc := newMockService()
	svc.On("Lookup", mock.Anything).Return(report, nil)

	w := httptest.NewRecorder()
	newTestPage(svc).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/?product=550&date=2024-03-06&days=1", nil))

	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, "선택한 날짜 전후 1일 간의 데이터가 없습니다.")
	assert.NotContains(t, body, "<img")
}

func TestPageHandler_StorageError(t *testing.T) {
	svc := newMockService()
	svc.On("Lookup", mock.Anything).Return(nil, fmt.Errorf("fetch erp/550.csv: %w",
		&storage.StatusError{Backend: "s3", Bucket: "chodang", Key: "erp/550.csv", StatusCode: 403}))

	w := httptest.NewRecorder()
	newTestPage(svc).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/?product=550&date=2024-03-06", nil))

	assert.Equal(t, http.StatusBadGateway, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, "파일을 가져오지 못했습니다. HTTP 상태 코드: 403")
	assert.NotContains(t, body, "<img")
	assert.Contains(t, body, "<select")
}

func TestPageHandler_InvalidDays(t *testing.T) {
	svc := newMockService()

	w := httptest.NewRecorder()
	newTestPage(svc).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/?product=550&date=2024-03-06&days=30", nil))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), `class="error"`)
	svc.AssertNotCalled(t, "Lookup", mock.Anything)
}
