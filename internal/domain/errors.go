package domain

import "errors"

var (
	// ErrInvalidRequest is returned when request parameters are invalid
	ErrInvalidRequest = errors.New("invalid request parameters")

	// ErrEmptyImage is returned when a scan is requested without image data
	ErrEmptyImage = errors.New("image payload is empty")

	// ErrOCRFailure is returned by OCR adapters when text recognition fails.
	// The scan service never lets it escape; it degrades to empty text.
	ErrOCRFailure = errors.New("text recognition failed")

	// ErrModelFailure is returned when the model-based engine cannot produce a report
	ErrModelFailure = errors.New("model extraction failed")

	// ErrCameraUnavailable is returned when no camera is configured
	ErrCameraUnavailable = errors.New("camera not configured")

	// ErrCaptureFailed is returned when every capture command failed
	ErrCaptureFailed = errors.New("camera capture failed")

	// ErrCacheMiss is returned when data is not found in cache
	ErrCacheMiss = errors.New("cache miss")

	// ErrRateLimited is returned when rate limit is exceeded
	ErrRateLimited = errors.New("rate limit exceeded")
)
