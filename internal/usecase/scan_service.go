package usecase

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"log"
	"time"

	"github.com/cleartag/labelscan/internal/domain"
)

// ScanServiceConfig holds configuration for the scan service
type ScanServiceConfig struct {
	CacheTTL           time.Duration
	EnableDebugLogging bool
}

// ScanService runs the label pipeline: preprocess -> OCR -> compliance engine.
// Steps run sequentially on the caller's goroutine.
type ScanService struct {
	preprocessor       domain.ImagePreprocessor
	recognizer         domain.TextRecognizer
	engine             domain.ComplianceEngine
	cache              domain.TextCache
	cacheTTL           time.Duration
	enableDebugLogging bool
}

// NewScanService creates a new scan service with dependencies.
// cache may be nil to disable OCR caching.
func NewScanService(
	preprocessor domain.ImagePreprocessor,
	recognizer domain.TextRecognizer,
	engine domain.ComplianceEngine,
	cache domain.TextCache,
	config ScanServiceConfig,
) *ScanService {
	cacheTTL := config.CacheTTL
	if cacheTTL == 0 {
		cacheTTL = time.Hour
	}

	return &ScanService{
		preprocessor:       preprocessor,
		recognizer:         recognizer,
		engine:             engine,
		cache:              cache,
		cacheTTL:           cacheTTL,
		enableDebugLogging: config.EnableDebugLogging,
	}
}

// EngineName reports which compliance engine is configured
func (s *ScanService) EngineName() string {
	return s.engine.Name()
}

// Scan analyses a label photograph.
// Flow: check OCR cache -> preprocess -> OCR -> cache text -> analyse.
// Preprocessing and OCR failures degrade to an empty-text report.
func (s *ScanService) Scan(ctx context.Context, img domain.LabelImage) (*domain.ComplianceReport, error) {
	if len(img.Data) == 0 {
		return nil, domain.ErrEmptyImage
	}

	text, err := s.ExtractText(ctx, img)
	if err != nil {
		return nil, err
	}

	return s.AnalyzeText(ctx, text)
}

// ExtractText returns the OCR text for an image. The only error it returns is
// context cancellation; OCR failures yield empty text.
func (s *ScanService) ExtractText(ctx context.Context, img domain.LabelImage) (string, error) {
	cacheKey := generateCacheKey(img.Data)

	if text, ok := s.getFromCache(ctx, cacheKey); ok {
		if s.enableDebugLogging {
			log.Printf("[SCAN] OCR cache hit for %s (%s)", img.Name, cacheKey)
		}
		return text, nil
	}

	normalized := s.preprocessor.Normalize(ctx, img)
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if !normalized.Normalized {
		log.Printf("[SCAN] Preprocessing fell back to source image for %s", img.Name)
	}

	text, err := s.recognizer.Recognize(ctx, normalized)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", ctxErr
		}
		log.Printf("[SCAN] OCR via %s failed for %s, continuing with empty text: %v", s.recognizer.Name(), img.Name, err)
		return "", nil
	}

	if s.enableDebugLogging {
		log.Printf("[SCAN] OCR extracted %d characters from %s", len(text), img.Name)
	}

	// Caching is best effort
	if err := s.setInCache(ctx, cacheKey, text); err != nil {
		log.Printf("[SCAN] Failed to cache OCR text: %v", err)
	}

	return text, nil
}

// AnalyzeText runs the configured compliance engine on raw text
func (s *ScanService) AnalyzeText(ctx context.Context, text string) (*domain.ComplianceReport, error) {
	report, err := s.engine.Analyze(ctx, text)
	if err != nil {
		return nil, err
	}

	if s.enableDebugLogging {
		log.Printf("[SCAN] %s engine: %s (score %d, status %s)", s.engine.Name(), report.Message, report.Score, report.Status)
	}

	return report, nil
}

// generateCacheKey derives the OCR cache key from the image content.
// Format: "ocr:{sha256_hex}"
func generateCacheKey(data []byte) string {
	sum := sha256.Sum256(data)
	return "ocr:" + hex.EncodeToString(sum[:])
}

func (s *ScanService) getFromCache(ctx context.Context, key string) (string, bool) {
	if s.cache == nil {
		return "", false
	}
	text, err := s.cache.Get(ctx, key)
	if err != nil {
		return "", false
	}
	return text, true
}

func (s *ScanService) setInCache(ctx context.Context, key, text string) error {
	if s.cache == nil {
		return nil
	}
	return s.cache.Set(ctx, key, text, s.cacheTTL)
}
