package config

import (
	"fmt"
	"os"
	"path/filepath"
)

// Paths contains all the application paths.
// This is the single source of truth for file locations: the raw upload, the
// persisted processed dataset and the log directory all resolve through here.
// Paths are always anchored to an explicit base directory so that tests and
// parallel pipeline instances can run fully isolated.
type Paths struct {
	BaseDir      string
	DataDir      string
	UploadsDir   string
	ProcessedDir string
	LogsDir      string

	// Well-known dataset files
	RawOrdersCSV       string
	ProcessedOrdersCSV string
}

// NewPaths builds the path set under the given base directory.
// Directory structure:
//
//	base/
//	  ├── data/
//	  │   ├── uploads/     (raw order files as uploaded)
//	  │   └── processed/   (enriched dataset written by the pipeline)
//	  └── logs/
func NewPaths(baseDir string) *Paths {
	dataDir := filepath.Join(baseDir, "data")
	uploadsDir := filepath.Join(dataDir, "uploads")
	processedDir := filepath.Join(dataDir, "processed")

	return &Paths{
		BaseDir:      baseDir,
		DataDir:      dataDir,
		UploadsDir:   uploadsDir,
		ProcessedDir: processedDir,
		LogsDir:      filepath.Join(baseDir, "logs"),

		RawOrdersCSV:       filepath.Join(uploadsDir, "uploaded_orders.csv"),
		ProcessedOrdersCSV: filepath.Join(processedDir, "processed_orders.csv"),
	}
}

// GetPaths returns the application paths relative to the executable location,
// never the current working directory.
func GetPaths() (*Paths, error) {
	exe, err := os.Executable()
	if err != nil {
		return nil, fmt.Errorf("failed to get executable path: %v", err)
	}

	exe, err = filepath.EvalSymlinks(exe)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve executable symlinks: %v", err)
	}

	return NewPaths(filepath.Dir(exe)), nil
}

// EnsureDirectories creates all required directories if they don't exist
func (p *Paths) EnsureDirectories() error {
	directories := []string{
		p.DataDir,
		p.UploadsDir,
		p.ProcessedDir,
		p.LogsDir,
	}

	for _, dir := range directories {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %v", dir, err)
		}
	}

	return nil
}

// GetLogPath returns the path of a log file inside the logs directory
func (p *Paths) GetLogPath(filename string) string {
	return filepath.Join(p.LogsDir, filename)
}

// GetUploadPath returns the path of a file inside the uploads directory
func (p *Paths) GetUploadPath(filename string) string {
	return filepath.Join(p.UploadsDir, filename)
}

// FileExists checks if a file exists
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return !os.IsNotExist(err)
}
