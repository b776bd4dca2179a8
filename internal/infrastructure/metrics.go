package infrastructure

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Pipeline metrics.
var (
	UploadsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "shippulse_uploads_total",
		Help: "Number of order files accepted for processing.",
	})

	OrdersProcessedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "shippulse_orders_processed_total",
		Help: "Number of order rows run through the feature pipeline.",
	})

	DataQualityWarningsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "shippulse_data_quality_warnings_total",
		Help: "Row-level data quality issues absorbed by the pipeline (unparseable dates, non-numeric amounts).",
	})

	SchemaRejectionsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "shippulse_schema_rejections_total",
		Help: "Uploads rejected because required columns were missing.",
	})
)

// MetricsHandler exposes the Prometheus metrics endpoint
func MetricsHandler() http.Handler {
	return promhttp.Handler()
}
