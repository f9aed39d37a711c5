package tesseract

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/otiai10/gosseract/v2"

	"github.com/cleartag/labelscan/internal/domain"
)

const defaultLanguage = "eng"

// Config holds configuration for the Tesseract engine
type Config struct {
	// Language is a Tesseract language list such as "eng" or "eng+hin"
	Language string
	// PageSegMode defaults to a single uniform block of text, which suits
	// dense label print better than layout-aware modes
	PageSegMode        int
	EnableDebugLogging bool
}

// Engine implements domain.TextRecognizer using the gosseract client
type Engine struct {
	clientFactory      func() *gosseract.Client
	languages          []string
	pageSegMode        gosseract.PageSegMode
	enableDebugLogging bool
}

// NewEngine constructs a Tesseract-backed OCR engine
func NewEngine(config Config) *Engine {
	return &Engine{
		clientFactory:      gosseract.NewClient,
		languages:          parseLanguages(config.Language),
		pageSegMode:        gosseract.PageSegMode(config.PageSegMode),
		enableDebugLogging: config.EnableDebugLogging,
	}
}

// Version returns the linked Tesseract version
func Version() string {
	return gosseract.Version()
}

func (e *Engine) Name() string { return "tesseract" }

// Recognize performs OCR on a single image and returns the trimmed text
func (e *Engine) Recognize(ctx context.Context, img domain.NormalizedImage) (string, error) {
	if len(img.Data) == 0 {
		return "", fmt.Errorf("%w: %w", domain.ErrOCRFailure, domain.ErrEmptyImage)
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	c := e.clientFactory()
	defer c.Close()

	if err := c.SetLanguage(e.languages...); err != nil {
		return "", fmt.Errorf("%w: set languages: %v", domain.ErrOCRFailure, err)
	}
	if err := c.SetPageSegMode(e.pageSegMode); err != nil {
		return "", fmt.Errorf("%w: set page segmentation mode: %v", domain.ErrOCRFailure, err)
	}
	if err := c.SetImageFromBytes(img.Data); err != nil {
		return "", fmt.Errorf("%w: set image: %v", domain.ErrOCRFailure, err)
	}

	text, err := c.Text()
	if err != nil {
		return "", fmt.Errorf("%w: recognize text: %v", domain.ErrOCRFailure, err)
	}
	plain := strings.TrimSpace(text)

	if e.enableDebugLogging {
		log.Printf("[OCR] Recognized %d characters (psm=%d, lang=%s)", len(plain), e.pageSegMode, strings.Join(e.languages, "+"))
	}

	return plain, nil
}

// parseLanguages splits "eng+hin" style lists, defaulting to English
func parseLanguages(list string) []string {
	var langs []string
	for _, lang := range strings.Split(list, "+") {
		if lang = strings.TrimSpace(lang); lang != "" {
			langs = append(langs, lang)
		}
	}
	if len(langs) == 0 {
		return []string{defaultLanguage}
	}
	return langs
}
