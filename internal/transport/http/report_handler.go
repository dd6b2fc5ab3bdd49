package http

import (
	"errors"
	"fmt"
	"log/slog"
	"mime"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"salesboard/internal/calendar"
	"salesboard/internal/chart"
	apierrors "salesboard/internal/errors"
	"salesboard/internal/exporter"
	"salesboard/internal/middleware"
	"salesboard/internal/services"
	api "salesboard/pkg/contracts/api/v1"
)

// ReportHandler serves product lookups, charts and window downloads
type ReportHandler struct {
	service      ReportServiceInterface
	validator    *middleware.Validator
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
}

// NewReportHandler creates a new report handler with RFC 7807 error handling
func NewReportHandler(service ReportServiceInterface, validator *middleware.Validator, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *ReportHandler {
	return &ReportHandler{
		service:      service,
		validator:    validator,
		logger:       logger.With(slog.String("component", "report_handler")),
		errorHandler: errorHandler,
	}
}

// Routes returns the report routes
func (h *ReportHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.With(render.SetContentType(render.ContentTypeJSON)).Get("/products", h.GetProducts)

	r.Route("/report", func(r chi.Router) {
		r.With(render.SetContentType(render.ContentTypeJSON)).Get("/", h.GetReport)
		r.Get("/chart.{format}", h.GetChart)
		r.Get("/export.{format}", h.GetExport)
	})

	return r
}

// GetProducts handles GET /products
func (h *ReportHandler) GetProducts(w http.ResponseWriter, r *http.Request) {
	products := h.service.Products()

	resp := api.ProductsResponse{Products: products}
	if len(products) > 0 {
		resp.Default = products[0].Name
	}
	render.JSON(w, r, resp)
}

// GetReport handles GET /report?product=&date=&days=
func (h *ReportHandler) GetReport(w http.ResponseWriter, r *http.Request) {
	req, err := h.parseRequest(r)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	report, err := h.service.Lookup(r.Context(), req)
	if err != nil {
		h.errorHandler.HandleError(w, r, mapServiceError(err))
		return
	}

	render.JSON(w, r, report)
}

// GetChart handles GET /report/chart.{png,svg}
func (h *ReportHandler) GetChart(w http.ResponseWriter, r *http.Request) {
	format, err := chart.ParseFormat(chi.URLParam(r, "format"))
	if err != nil {
		h.errorHandler.HandleError(w, r, apierrors.ErrValidation("format", "format must be one of: png svg"))
		return
	}

	req, err := h.parseRequest(r)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	img, _, err := h.service.Chart(r.Context(), req, format)
	if err != nil {
		h.errorHandler.HandleError(w, r, mapServiceError(err))
		return
	}

	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Cache-Control", "no-store")
	w.Header().Set("Content-Length", strconv.Itoa(len(img)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(img); err != nil {
		h.logger.WarnContext(r.Context(), "Failed to write chart", slog.String("error", err.Error()))
	}
}

// GetExport handles GET /report/export.{csv,xlsx}
func (h *ReportHandler) GetExport(w http.ResponseWriter, r *http.Request) {
	format, err := exporter.ParseFormat(chi.URLParam(r, "format"))
	if err != nil {
		h.errorHandler.HandleError(w, r, apierrors.ErrValidation("format", "format must be one of: csv xlsx"))
		return
	}

	req, err := h.parseRequest(r)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	file, err := h.service.Export(r.Context(), req, format)
	if err != nil {
		h.errorHandler.HandleError(w, r, mapServiceError(err))
		return
	}

	w.Header().Set("Content-Type", file.ContentType)
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": file.Filename}))
	w.Header().Set("Content-Length", strconv.Itoa(len(file.Body)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(file.Body); err != nil {
		h.logger.WarnContext(r.Context(), "Failed to write export", slog.String("error", err.Error()))
	}
}

// parseRequest reads product, date and days from the query string.
func (h *ReportHandler) parseRequest(r *http.Request) (services.LookupRequest, error) {
	return parseLookup(r, h.validator, h.service.DefaultDays())
}

func parseLookup(r *http.Request, v *middleware.Validator, defaultDays int) (services.LookupRequest, error) {
	q := r.URL.Query()

	days, err := middleware.QueryInt(q, "days", defaultDays)
	if err != nil {
		return services.LookupRequest{}, err
	}

	req := api.ReportRequest{
		Product: q.Get("product"),
		Date:    q.Get("date"),
		Days:    days,
	}
	if err := v.ValidateStruct(req); err != nil {
		return services.LookupRequest{}, err
	}

	date, err := time.Parse(calendar.DateLayout, req.Date)
	if err != nil {
		return services.LookupRequest{}, apierrors.ErrValidation("date", "date must be a date formatted as 2006-01-02")
	}

	return services.LookupRequest{Product: req.Product, Date: date, Days: req.Days}, nil
}

// mapServiceError converts service sentinels to API errors. Storage and
// decode errors are left for the error handler.
func mapServiceError(err error) error {
	switch {
	case errors.Is(err, services.ErrUnknownProduct):
		return apierrors.NotFoundError("product")
	case errors.Is(err, services.ErrInvalidRadius):
		return apierrors.ErrValidation("days", fmt.Sprintf("days must be between 0 and %d", calendar.MaxRadius))
	case errors.Is(err, services.ErrInvalidInput):
		return apierrors.ErrInvalidRequest.WithDetails(err.Error())
	case errors.Is(err, services.ErrNoWindowData):
		return apierrors.ErrDataNotFound
	}
	return err
}
