package services

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"shippulse/internal/config"
	"shippulse/internal/dataprocessing"
	"shippulse/internal/infrastructure"
	"shippulse/pkg/contracts/domain"
)

// acceptedUploadExtensions are the file types the upload endpoint accepts.
var acceptedUploadExtensions = map[string]bool{
	".csv":  true,
	".xlsx": true,
}

// DataService owns the order dataset: it accepts uploads, runs the feature
// pipeline, and serves filtered rows and aggregates to the transport layer.
// The enriched dataset is cached in memory and re-hydrated from the processed
// file on restart.
type DataService struct {
	config     *config.Config
	paths      *config.Paths
	logger     *slog.Logger
	pipeline   *dataprocessing.Pipeline
	summarizer *dataprocessing.Summarizer

	mu     sync.RWMutex
	orders []domain.Order
	loaded bool
}

// NewDataService creates a new data service using the default logger.
func NewDataService(cfg *config.Config, paths *config.Paths) *DataService {
	return NewDataServiceWithLogger(cfg, paths, slog.Default())
}

// NewDataServiceWithLogger creates a new data service with a specific logger.
func NewDataServiceWithLogger(cfg *config.Config, paths *config.Paths, logger *slog.Logger) *DataService {
	if logger == nil {
		logger = slog.Default()
	}

	logger.Info("data service initialized",
		slog.String("uploads_dir", paths.UploadsDir),
		slog.String("processed_dir", paths.ProcessedDir))

	return &DataService{
		config:     cfg,
		paths:      paths,
		logger:     logger,
		pipeline:   dataprocessing.NewPipeline(logger, dataprocessing.PipelineConfig{LateThresholdDays: cfg.Pipeline.LateThresholdDays}),
		summarizer: dataprocessing.NewSummarizer(),
	}
}

// AcceptsUpload reports whether the filename has an accepted extension.
func AcceptsUpload(filename string) bool {
	return acceptedUploadExtensions[strings.ToLower(filepath.Ext(filename))]
}

// SaveUpload persists an uploaded orders file into the uploads directory and
// returns the saved path. The raw file is kept so a failed pipeline run can
// be retried without a re-upload.
func (ds *DataService) SaveUpload(ctx context.Context, filename string, r io.Reader) (string, error) {
	if !AcceptsUpload(filename) {
		return "", ErrInvalidFileType
	}

	if err := os.MkdirAll(ds.paths.UploadsDir, 0755); err != nil {
		return "", err
	}

	// Flatten any path components a client may have sent
	dst := ds.paths.GetUploadPath(filepath.Base(filename))
	file, err := os.Create(dst)
	if err != nil {
		return "", err
	}
	defer file.Close()

	written, err := io.Copy(file, r)
	if err != nil {
		os.Remove(dst)
		return "", err
	}
	if written == 0 {
		os.Remove(dst)
		return "", ErrEmptyUpload
	}

	logDataInfo(ctx, "save_upload", "upload saved",
		slog.String("path", dst),
		slog.Int64("bytes", written))

	return dst, nil
}

// ProcessUpload runs the feature pipeline over a saved upload and replaces
// the cached dataset with the result.
func (ds *DataService) ProcessUpload(ctx context.Context, uploadPath string) (*dataprocessing.PrepareStats, error) {
	orders, stats, err := ds.pipeline.Prepare(ctx, uploadPath, ds.paths.ProcessedOrdersCSV)
	if err != nil {
		logDataError(ctx, "process_upload", "pipeline run failed",
			slog.String("path", uploadPath),
			slog.String("error", err.Error()))
		return nil, err
	}

	ds.mu.Lock()
	ds.orders = orders
	ds.loaded = true
	ds.mu.Unlock()

	infrastructure.UploadsTotal.Inc()

	return stats, nil
}

// Orders returns the enriched rows matching the filter.
func (ds *DataService) Orders(ctx context.Context, filter domain.Filter) ([]domain.Order, error) {
	orders, err := ds.dataset(ctx)
	if err != nil {
		return nil, err
	}
	return dataprocessing.ApplyFilter(orders, filter), nil
}

// KPIs returns the headline metrics over the filtered rows.
func (ds *DataService) KPIs(ctx context.Context, filter domain.Filter) (*dataprocessing.KPIReport, error) {
	orders, err := ds.Orders(ctx, filter)
	if err != nil {
		return nil, err
	}
	report := ds.summarizer.KPIs(orders)
	return &report, nil
}

// DelayRate returns the delayed fraction per value of the group
// column, over the filtered rows.
func (ds *DataService) DelayRate(ctx context.Context, filter domain.Filter, column string) ([]dataprocessing.GroupMetric, error) {
	orders, err := ds.Orders(ctx, filter)
	if err != nil {
		return nil, err
	}
	return ds.summarizer.RateByGroup(orders, column), nil
}

// AvgDelay returns the mean delivery delay per value of the group column,
// over the filtered rows.
func (ds *DataService) AvgDelay(ctx context.Context, filter domain.Filter, column string) ([]dataprocessing.GroupMetric, error) {
	orders, err := ds.Orders(ctx, filter)
	if err != nil {
		return nil, err
	}
	return ds.summarizer.AvgDelayByGroup(orders, column), nil
}

// Trend returns the monthly delivery performance series over the filtered
// rows.
func (ds *DataService) Trend(ctx context.Context, filter domain.Filter) ([]dataprocessing.TrendPoint, error) {
	orders, err := ds.Orders(ctx, filter)
	if err != nil {
		return nil, err
	}
	return ds.summarizer.MonthlyTrend(orders), nil
}

// FilterOptions returns the selectable filter values over the full dataset.
// Filters always list the whole dataset, not the currently filtered subset,
// so a narrow selection can be widened again.
func (ds *DataService) FilterOptions(ctx context.Context) (*dataprocessing.FilterOptions, error) {
	orders, err := ds.dataset(ctx)
	if err != nil {
		return nil, err
	}
	options := ds.summarizer.Filters(orders)
	return &options, nil
}

// ProcessedFilePath returns the path of the processed dataset for download.
func (ds *DataService) ProcessedFilePath(ctx context.Context) (string, error) {
	if _, err := ds.dataset(ctx); err != nil {
		return "", err
	}
	if !config.FileExists(ds.paths.ProcessedOrdersCSV) {
		return "", ErrDatasetNotFound
	}
	return ds.paths.ProcessedOrdersCSV, nil
}

// HasDataset reports whether a processed dataset is available.
func (ds *DataService) HasDataset() bool {
	ds.mu.RLock()
	loaded := ds.loaded
	ds.mu.RUnlock()
	return loaded || config.FileExists(ds.paths.ProcessedOrdersCSV)
}

// dataset returns the cached rows, hydrating from the processed file after a
// restart. ErrNoDataset when nothing has been processed yet.
func (ds *DataService) dataset(ctx context.Context) ([]domain.Order, error) {
	ds.mu.RLock()
	if ds.loaded {
		orders := ds.orders
		ds.mu.RUnlock()
		return orders, nil
	}
	ds.mu.RUnlock()

	ds.mu.Lock()
	defer ds.mu.Unlock()
	if ds.loaded {
		return ds.orders, nil
	}

	if !config.FileExists(ds.paths.ProcessedOrdersCSV) {
		return nil, ErrNoDataset
	}

	orders, err := ds.loadProcessed(ctx)
	if err != nil {
		return nil, err
	}

	ds.orders = orders
	ds.loaded = true
	return orders, nil
}

// loadProcessed re-reads the persisted dataset. Derived columns are
// recomputed from the raw dates rather than parsed back, which keeps the
// file format forgiving: a processed file edited by hand, or one missing the
// customer column entirely, still loads. A missing customer column gets a
// synthesized row-order ID here, unlike the strict upload path.
func (ds *DataService) loadProcessed(ctx context.Context) ([]domain.Order, error) {
	table, err := dataprocessing.ReadTable(ds.paths.ProcessedOrdersCSV)
	if err != nil {
		return nil, err
	}

	loaded := dataprocessing.ParseOrders(table, dataprocessing.LoadOptions{SynthesizeCustomerID: true})
	ds.pipeline.Derive(ctx, loaded.Orders)

	logDataInfo(ctx, "load_processed", "processed dataset hydrated",
		slog.String("path", ds.paths.ProcessedOrdersCSV),
		slog.Int("rows", len(loaded.Orders)))

	return loaded.Orders, nil
}
