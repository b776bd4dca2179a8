package http

import (
	"context"
	"io"

	"shippulse/internal/dataprocessing"
	"shippulse/pkg/contracts/domain"
)

// DataServiceInterface defines the interface for order dataset operations
type DataServiceInterface interface {
	SaveUpload(ctx context.Context, filename string, r io.Reader) (string, error)
	ProcessUpload(ctx context.Context, uploadPath string) (*dataprocessing.PrepareStats, error)
	Orders(ctx context.Context, filter domain.Filter) ([]domain.Order, error)
	KPIs(ctx context.Context, filter domain.Filter) (*dataprocessing.KPIReport, error)
	DelayRate(ctx context.Context, filter domain.Filter, column string) ([]dataprocessing.GroupMetric, error)
	AvgDelay(ctx context.Context, filter domain.Filter, column string) ([]dataprocessing.GroupMetric, error)
	Trend(ctx context.Context, filter domain.Filter) ([]dataprocessing.TrendPoint, error)
	FilterOptions(ctx context.Context) (*dataprocessing.FilterOptions, error)
	ProcessedFilePath(ctx context.Context) (string, error)
}
