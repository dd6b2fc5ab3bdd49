package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"salesboard/internal/infrastructure"
)

// MetricsHandler serves the Prometheus scrape endpoint and a runtime summary
type MetricsHandler struct {
	prometheus http.Handler
	startTime  time.Time
}

// NewMetricsHandler creates a new metrics handler. A nil prom handler falls
// back to the default registry.
func NewMetricsHandler(prom http.Handler, startTime time.Time) *MetricsHandler {
	if prom == nil {
		prom = promhttp.Handler()
	}
	return &MetricsHandler{prometheus: prom, startTime: startTime}
}

// Routes sets up the metrics routes
func (h *MetricsHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Handle("/", h.prometheus)
	r.Get("/runtime", h.GetRuntime)
	return r
}

// GetRuntime returns goroutine, memory and uptime figures as JSON
func (h *MetricsHandler) GetRuntime(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, infrastructure.ReadRuntimeStats(h.startTime))
}
