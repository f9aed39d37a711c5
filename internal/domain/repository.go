package domain

import (
	"context"
	"time"
)

// ImagePreprocessor prepares label photographs for OCR. Implementations must
// not fail: on any error they return a usable, possibly unmodified, image.
type ImagePreprocessor interface {
	Normalize(ctx context.Context, img LabelImage) NormalizedImage
}

// TextRecognizer extracts raw text from an image
type TextRecognizer interface {
	Name() string
	Recognize(ctx context.Context, img NormalizedImage) (string, error)
}

// ComplianceEngine turns raw label text into a compliance report
type ComplianceEngine interface {
	Name() string
	Analyze(ctx context.Context, text string) (*ComplianceReport, error)
}

// ModelClient sends a prompt to a text-completion model
type ModelClient interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// ImageSource acquires a label photograph, e.g. from a camera
type ImageSource interface {
	Capture(ctx context.Context) (LabelImage, error)
}

// TextCache defines the interface for caching OCR output
type TextCache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value string, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}
