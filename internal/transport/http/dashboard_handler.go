package http

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	apierrors "shippulse/internal/errors"
	"shippulse/internal/services"
)

// DashboardHandler serves the aggregate views behind the dashboard: headline
// KPIs, grouped breakdowns, the monthly trend, and the filter options.
type DashboardHandler struct {
	service      DataServiceInterface
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
}

// NewDashboardHandler creates a new dashboard handler
func NewDashboardHandler(service DataServiceInterface, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *DashboardHandler {
	return &DashboardHandler{
		service:      service,
		logger:       logger.With(slog.String("component", "dashboard_handler")),
		errorHandler: errorHandler,
	}
}

// Routes returns the dashboard routes
func (h *DashboardHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(render.SetContentType(render.ContentTypeJSON))

	r.Get("/kpis", h.GetKPIs)
	r.Get("/delay-rate", h.GetDelayRate)
	r.Get("/avg-delay", h.GetAvgDelay)
	r.Get("/trend", h.GetTrend)
	r.Get("/filters", h.GetFilters)

	return r
}

// GetKPIs handles GET /api/dashboard/kpis
func (h *DashboardHandler) GetKPIs(w http.ResponseWriter, r *http.Request) {
	filter, apiErr := parseFilter(r)
	if apiErr != nil {
		h.errorHandler.HandleError(w, r, apiErr)
		return
	}

	report, err := h.service.KPIs(r.Context(), filter)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	render.JSON(w, r, report)
}

// GetDelayRate handles GET /api/dashboard/delay-rate?by=Courier
func (h *DashboardHandler) GetDelayRate(w http.ResponseWriter, r *http.Request) {
	filter, apiErr := parseFilter(r)
	if apiErr != nil {
		h.errorHandler.HandleError(w, r, apiErr)
		return
	}
	column, apiErr := parseGroupColumn(r)
	if apiErr != nil {
		h.errorHandler.HandleError(w, r, apiErr)
		return
	}

	metrics, err := h.service.DelayRate(r.Context(), filter, column)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"by":      column,
		"metrics": metrics,
	})
}

// GetAvgDelay handles GET /api/dashboard/avg-delay?by=Courier
func (h *DashboardHandler) GetAvgDelay(w http.ResponseWriter, r *http.Request) {
	filter, apiErr := parseFilter(r)
	if apiErr != nil {
		h.errorHandler.HandleError(w, r, apiErr)
		return
	}
	column, apiErr := parseGroupColumn(r)
	if apiErr != nil {
		h.errorHandler.HandleError(w, r, apiErr)
		return
	}

	metrics, err := h.service.AvgDelay(r.Context(), filter, column)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"by":      column,
		"metrics": metrics,
	})
}

// GetTrend handles GET /api/dashboard/trend
func (h *DashboardHandler) GetTrend(w http.ResponseWriter, r *http.Request) {
	filter, apiErr := parseFilter(r)
	if apiErr != nil {
		h.errorHandler.HandleError(w, r, apiErr)
		return
	}

	points, err := h.service.Trend(r.Context(), filter)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"months": points,
	})
}

// GetFilters handles GET /api/dashboard/filters. Options always span the
// full dataset so the client can widen a narrow selection.
func (h *DashboardHandler) GetFilters(w http.ResponseWriter, r *http.Request) {
	options, err := h.service.FilterOptions(r.Context())
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	render.JSON(w, r, options)
}

func (h *DashboardHandler) handleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, services.ErrNoDataset), errors.Is(err, services.ErrDatasetNotFound):
		h.errorHandler.HandleError(w, r, apierrors.ErrDatasetNotFound)
	default:
		h.errorHandler.HandleError(w, r, err)
	}
}
