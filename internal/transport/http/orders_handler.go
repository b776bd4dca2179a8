package http

import (
	"errors"
	"log/slog"
	"net/http"
	"path/filepath"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	apierrors "shippulse/internal/errors"
	"shippulse/internal/infrastructure"
	"shippulse/internal/services"
)

// OrdersHandler handles order upload, listing and download requests with
// RFC 7807 compliant errors.
type OrdersHandler struct {
	service        DataServiceInterface
	logger         *slog.Logger
	errorHandler   *apierrors.ErrorHandler
	maxUploadBytes int64
}

// NewOrdersHandler creates a new orders handler
func NewOrdersHandler(service DataServiceInterface, logger *slog.Logger, errorHandler *apierrors.ErrorHandler, maxUploadBytes int64) *OrdersHandler {
	return &OrdersHandler{
		service:        service,
		logger:         logger.With(slog.String("component", "orders_handler")),
		errorHandler:   errorHandler,
		maxUploadBytes: maxUploadBytes,
	}
}

// Routes returns the order routes
func (h *OrdersHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(render.SetContentType(render.ContentTypeJSON))

	r.Get("/", h.ListOrders)
	r.Post("/upload", h.Upload)
	r.Get("/download", h.Download)

	return r
}

// UploadResponse reports the outcome of an accepted upload.
type UploadResponse struct {
	Filename            string `json:"filename"`
	Rows                int    `json:"rows"`
	Warnings            int    `json:"warnings"`
	ImputedShippingCost int    `json:"imputed_shipping_cost"`
	ImputedOrderValue   int    `json:"imputed_order_value"`
}

// Upload handles POST /api/orders/upload. The uploaded file is saved, run
// through the feature pipeline, and becomes the active dataset on success.
func (h *OrdersHandler) Upload(w http.ResponseWriter, r *http.Request) {
	reqID := infrastructure.GetTraceID(r.Context())

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
	if err := r.ParseMultipartForm(h.maxUploadBytes); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			h.errorHandler.HandleError(w, r, apierrors.ErrUploadTooLarge)
			return
		}
		h.errorHandler.HandleError(w, r, apierrors.ErrValidation("file", "request is not valid multipart form data"))
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		h.errorHandler.HandleError(w, r, apierrors.ErrValidation("file", "file field is required"))
		return
	}
	defer file.Close()

	h.logger.InfoContext(r.Context(), "upload received",
		slog.String("request_id", reqID),
		slog.String("filename", header.Filename),
		slog.Int64("size", header.Size))

	savedPath, err := h.service.SaveUpload(r.Context(), header.Filename, file)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidFileType):
			h.errorHandler.HandleError(w, r, apierrors.ErrValidation("file", "only .csv and .xlsx files are accepted"))
		case errors.Is(err, services.ErrEmptyUpload):
			h.errorHandler.HandleError(w, r, apierrors.ErrValidation("file", "uploaded file is empty"))
		default:
			h.errorHandler.HandleError(w, r, err)
		}
		return
	}

	stats, err := h.service.ProcessUpload(r.Context(), savedPath)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	render.Status(r, http.StatusCreated)
	render.JSON(w, r, UploadResponse{
		Filename:            filepath.Base(savedPath),
		Rows:                stats.Rows,
		Warnings:            stats.Warnings,
		ImputedShippingCost: stats.ImputedShippingCost,
		ImputedOrderValue:   stats.ImputedOrderValue,
	})
}

// ListOrders handles GET /api/orders, returning a preview of the enriched
// rows under the active filter. The limit parameter caps the preview and
// defaults to 20; limit=0 returns every filtered row.
func (h *OrdersHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	filter, apiErr := parseFilter(r)
	if apiErr != nil {
		h.errorHandler.HandleError(w, r, apiErr)
		return
	}

	limit, apiErr := parseLimit(r)
	if apiErr != nil {
		h.errorHandler.HandleError(w, r, apiErr)
		return
	}

	orders, err := h.service.Orders(r.Context(), filter)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	total := len(orders)
	if limit > 0 && len(orders) > limit {
		orders = orders[:limit]
	}

	render.JSON(w, r, map[string]interface{}{
		"orders": orders,
		"count":  len(orders),
		"total":  total,
	})
}

// Download handles GET /api/orders/download, streaming the processed CSV.
func (h *OrdersHandler) Download(w http.ResponseWriter, r *http.Request) {
	path, err := h.service.ProcessedFilePath(r.Context())
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="processed_orders.csv"`)
	http.ServeFile(w, r, path)
}

// handleServiceError maps data service sentinels onto API errors before
// falling through to the generic handler.
func (h *OrdersHandler) handleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, services.ErrNoDataset), errors.Is(err, services.ErrDatasetNotFound):
		h.errorHandler.HandleError(w, r, apierrors.ErrDatasetNotFound)
	default:
		h.errorHandler.HandleError(w, r, err)
	}
}
