package preprocess

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	"gocv.io/x/gocv"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"

	"github.com/cleartag/labelscan/internal/domain"
)

// Filter parameters, tuned for phone and Pi camera label photos
const (
	blurKernelSize = 5 // sigma is derived from the kernel size

	thresholdMaxValue  = 255
	thresholdBlockSize = 11
	thresholdC         = 2

	denoiseStrength       = 10
	denoiseTemplateWindow = 7
	denoiseSearchWindow   = 21
)

// Config holds configuration for the preprocessor
type Config struct {
	Enabled            bool
	DebugDir           string // diagnostic copies are written here when set
	EnableDebugLogging bool
}

// Preprocessor binarizes label photographs for OCR
type Preprocessor struct {
	enabled            bool
	debugDir           string
	enableDebugLogging bool
}

// NewPreprocessor creates a new preprocessor
func NewPreprocessor(config Config) *Preprocessor {
	return &Preprocessor{
		enabled:            config.Enabled,
		debugDir:           config.DebugDir,
		enableDebugLogging: config.EnableDebugLogging,
	}
}

// Normalize converts a label photo to a denoised binary PNG.
// It never fails. Undecodable input is passed through untouched; a decoded
// image that cannot be processed is passed through re-encoded as PNG.
func (p *Preprocessor) Normalize(ctx context.Context, img domain.LabelImage) (out domain.NormalizedImage) {
	passthrough := domain.NormalizedImage{Data: img.Data}
	if !p.enabled || ctx.Err() != nil {
		return passthrough
	}

	decoded, err := imaging.Decode(bytes.NewReader(img.Data), imaging.AutoOrientation(true))
	if err != nil {
		log.Printf("[PREPROCESS] Cannot decode %s, passing source through: %v", img.Name, err)
		return passthrough
	}

	// The native filters may panic on degenerate input
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[PREPROCESS] Recovered from panic on %s: %v", img.Name, r)
			out = fallback(decoded, img.Data)
		}
	}()

	data, err := binarize(decoded)
	if err != nil {
		log.Printf("[PREPROCESS] Processing %s failed, using decoded image: %v", img.Name, err)
		return fallback(decoded, img.Data)
	}

	bounds := decoded.Bounds()
	if p.enableDebugLogging {
		log.Printf("[PREPROCESS] Normalized %s (%dx%d, %d bytes)", img.Name, bounds.Dx(), bounds.Dy(), len(data))
	}
	p.writeDebugCopy(img.Name, data)

	return domain.NormalizedImage{
		Data:       data,
		Width:      bounds.Dx(),
		Height:     bounds.Dy(),
		Normalized: true,
	}
}

// binarize runs grayscale -> blur -> adaptive threshold -> NL-means denoise
// and returns the result PNG encoded
func binarize(img image.Image) ([]byte, error) {
	bounds := img.Bounds()
	if bounds.Empty() {
		return nil, fmt.Errorf("image has no pixels")
	}

	gray := image.NewGray(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	draw.Draw(gray, gray.Bounds(), img, bounds.Min, draw.Src)

	src, err := gocv.ImageGrayToMatGray(gray)
	if err != nil {
		return nil, fmt.Errorf("convert to mat: %w", err)
	}
	defer src.Close()

	blurred := gocv.NewMat()
	defer blurred.Close()
	gocv.GaussianBlur(src, &blurred, image.Pt(blurKernelSize, blurKernelSize), 0, 0, gocv.BorderDefault)

	binary := gocv.NewMat()
	defer binary.Close()
	gocv.AdaptiveThreshold(blurred, &binary, thresholdMaxValue, gocv.AdaptiveThresholdMean,
		gocv.ThresholdBinary, thresholdBlockSize, thresholdC)

	denoised := gocv.NewMat()
	defer denoised.Close()
	gocv.FastNlMeansDenoisingWithParams(binary, &denoised, denoiseStrength,
		denoiseTemplateWindow, denoiseSearchWindow)

	if denoised.Empty() {
		return nil, fmt.Errorf("filter pipeline produced an empty image")
	}

	buf, err := gocv.IMEncode(gocv.PNGFileExt, denoised)
	if err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	defer buf.Close()

	return append([]byte(nil), buf.GetBytes()...), nil
}

// fallback re-encodes the decoded (auto-oriented) image, or returns the
// source bytes if even that fails
func fallback(decoded image.Image, source []byte) domain.NormalizedImage {
	bounds := decoded.Bounds()
	var buf bytes.Buffer
	if err := png.Encode(&buf, decoded); err != nil {
		return domain.NormalizedImage{Data: source, Width: bounds.Dx(), Height: bounds.Dy()}
	}
	return domain.NormalizedImage{Data: buf.Bytes(), Width: bounds.Dx(), Height: bounds.Dy()}
}

func (p *Preprocessor) writeDebugCopy(name string, data []byte) {
	if p.debugDir == "" {
		return
	}
	if err := os.MkdirAll(p.debugDir, 0o755); err != nil {
		log.Printf("[PREPROCESS] Cannot create debug dir: %v", err)
		return
	}
	path := filepath.Join(p.debugDir, debugFileName(name))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		log.Printf("[PREPROCESS] Cannot write debug copy: %v", err)
	}
}

func debugFileName(name string) string {
	base := filepath.Base(name)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	if base == "" || base == "." || base == string(filepath.Separator) {
		base = "label"
	}
	return base + "_processed.png"
}
