package services

import "errors"

// Data service errors
var (
	// Dataset errors
	ErrNoDataset       = errors.New("no processed dataset available")
	ErrDatasetNotFound = errors.New("processed dataset file not found")

	// Upload errors
	ErrEmptyUpload     = errors.New("uploaded file is empty")
	ErrInvalidFileType = errors.New("invalid file type")

	// General errors
	ErrInvalidInput = errors.New("invalid input")
)
