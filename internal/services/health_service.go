package services

import (
	"context"
	"log/slog"
	"runtime"
	"time"
)

// HealthService provides health check functionality
type HealthService struct {
	version   string
	data      *DataService
	startTime time.Time
	logger    *slog.Logger
}

// HealthStatus represents the health status response
type HealthStatus struct {
	Status    string                 `json:"status"`
	Timestamp time.Time              `json:"timestamp"`
	Version   string                 `json:"version"`
	Uptime    string                 `json:"uptime"`
	Runtime   map[string]interface{} `json:"runtime,omitempty"`
	Dataset   DatasetHealth          `json:"dataset"`
}

// DatasetHealth reports whether a processed dataset is loadable.
type DatasetHealth struct {
	Available bool `json:"available"`
}

// NewHealthService creates a new health service.
func NewHealthService(version string, data *DataService, logger *slog.Logger) *HealthService {
	if logger == nil {
		logger = slog.Default()
	}
	return &HealthService{
		version:   version,
		data:      data,
		startTime: time.Now(),
		logger:    logger,
	}
}

// Check returns the current health status. The service is healthy whenever
// it can serve requests; an absent dataset is reported but does not degrade
// the status, since upload is the way the dataset arrives.
func (hs *HealthService) Check(ctx context.Context) *HealthStatus {
	return &HealthStatus{
		Status:    "healthy",
		Timestamp: time.Now().UTC(),
		Version:   hs.version,
		Uptime:    time.Since(hs.startTime).Round(time.Second).String(),
		Runtime: map[string]interface{}{
			"go_version": runtime.Version(),
			"goroutines": runtime.NumGoroutine(),
		},
		Dataset: DatasetHealth{
			Available: hs.data != nil && hs.data.HasDataset(),
		},
	}
}
