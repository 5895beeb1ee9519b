package image

import "errors"

// Domain errors
var (
	ErrInvalidFilename  = errors.New("invalid filename")
	ErrInvalidFileSize  = errors.New("invalid file size")
	ErrInvalidTimestamp = errors.New("invalid timestamp")
	ErrImageNotFound    = errors.New("image not found")
)

// Constants for validation
const (
	MaxFileSize = 50 * 1024 * 1024 // 50MB
	MinFileSize = 1
)
