package http

import (
	"bytes"
	"embed"
	"html/template"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"salesboard/internal/calendar"
	apierrors "salesboard/internal/errors"
	"salesboard/internal/middleware"
	"salesboard/pkg/contracts"
	"salesboard/pkg/contracts/domain"
)

//go:embed templates/index.html
var templateFS embed.FS

var pageTemplate = template.Must(template.ParseFS(templateFS, "templates/index.html"))

// PageHandler renders the lookup page
type PageHandler struct {
	service      ReportServiceInterface
	validator    *middleware.Validator
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
	apiPrefix    string
	now          func() time.Time
}

// pageData is the template model of the lookup page.
type pageData struct {
	Products []domain.Product
	Product  string
	Date     string
	Days     int
	MaxDays  int
	Report   *domain.Report
	Error    string
	ChartURL string
	CSVURL   string
	XLSXURL  string
	Version  string
}

// NewPageHandler creates the page handler. apiPrefix is where the report
// routes are mounted, e.g. "/api/v1".
func NewPageHandler(service ReportServiceInterface, validator *middleware.Validator, logger *slog.Logger, errorHandler *apierrors.ErrorHandler, apiPrefix string) *PageHandler {
	return &PageHandler{
		service:      service,
		validator:    validator,
		logger:       logger.With(slog.String("component", "page_handler")),
		errorHandler: errorHandler,
		apiPrefix:    apiPrefix,
		now:          time.Now,
	}
}

// ServeHTTP handles GET /. Without a query the first product and today's
// date are shown.
func (h *PageHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	products := h.service.Products()
	data := pageData{
		Products: products,
		Date:     h.now().Format(calendar.DateLayout),
		Days:     h.service.DefaultDays(),
		MaxDays:  calendar.MaxRadius,
		Version:  contracts.GetVersionString(),
	}
	if len(products) > 0 {
		data.Product = products[0].Name
	}

	// Fill in defaults so a bare visit runs a lookup.
	q := r.URL.Query()
	if q.Get("product") == "" {
		q.Set("product", data.Product)
	}
	if q.Get("date") == "" {
		q.Set("date", data.Date)
	}
	data.Product = q.Get("product")
	data.Date = q.Get("date")
	if days, err := strconv.Atoi(q.Get("days")); err == nil {
		data.Days = days
	}
	r.URL.RawQuery = q.Encode()

	status := http.StatusOK
	req, err := parseLookup(r, h.validator, h.service.DefaultDays())
	if err == nil {
		data.Report, err = h.service.Lookup(r.Context(), req)
	}
	if err != nil {
		problem := h.errorHandler.ErrorToProblem(mapServiceError(err), r)
		status = problem.Status
		data.Error = problem.Detail
		h.logger.WarnContext(r.Context(), "Lookup failed",
			slog.String("product", data.Product),
			slog.String("date", data.Date),
			slog.Int("status", status),
			slog.String("error", err.Error()))
	} else {
		params := url.Values{}
		params.Set("product", data.Report.Product)
		params.Set("date", data.Report.Date)
		params.Set("days", strconv.Itoa(data.Report.Days))
		query := params.Encode()
		data.ChartURL = h.apiPrefix + "/report/chart.svg?" + query
		data.CSVURL = h.apiPrefix + "/report/export.csv?" + query
		data.XLSXURL = h.apiPrefix + "/report/export.xlsx?" + query
	}

	var buf bytes.Buffer
	if err := pageTemplate.Execute(&buf, data); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if _, err := w.Write(buf.Bytes()); err != nil {
		h.logger.WarnContext(r.Context(), "Failed to write page", slog.String("error", err.Error()))
	}
}
