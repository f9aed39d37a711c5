package http

import (
	"context"
	"errors"
	"io"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/cleartag/labelscan/internal/domain"
)

const (
	serviceName    = "cleartag-scanner"
	serviceVersion = "1.0.0"

	uploadField = "file"
)

// ScanUseCase is the label pipeline the handlers drive
type ScanUseCase interface {
	Scan(ctx context.Context, img domain.LabelImage) (*domain.ComplianceReport, error)
	AnalyzeText(ctx context.Context, text string) (*domain.ComplianceReport, error)
	EngineName() string
}

// UploadStorage keeps a copy of uploaded photographs
type UploadStorage interface {
	Save(name string, data []byte) (string, error)
}

// Handler holds dependencies for HTTP handlers
type Handler struct {
	scanner        ScanUseCase
	camera         domain.ImageSource
	uploads        UploadStorage
	maxUploadBytes int64
}

// NewHandler creates a new HTTP handler. camera and uploads may be nil.
func NewHandler(scanner ScanUseCase, camera domain.ImageSource, uploads UploadStorage, maxUploadBytes int64) *Handler {
	if maxUploadBytes <= 0 {
		maxUploadBytes = 10 << 20
	}
	return &Handler{
		scanner:        scanner,
		camera:         camera,
		uploads:        uploads,
		maxUploadBytes: maxUploadBytes,
	}
}

// HealthCheck returns the health status of the API
func (h *Handler) HealthCheck(c *gin.Context) {
	engine := "none"
	if h.scanner != nil {
		engine = h.scanner.EngineName()
	}
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": serviceName,
		"version": serviceVersion,
		"engine":  engine,
	})
}

// ScanLabel handles multipart label photo uploads
func (h *Handler) ScanLabel(c *gin.Context) {
	if h.scanner == nil {
		respondNotConfigured(c)
		return
	}

	if c.Request.ContentLength > h.maxUploadBytes {
		respondTooLarge(c)
		return
	}
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUploadBytes)

	fileHeader, err := c.FormFile(uploadField)
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			respondTooLarge(c)
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "multipart field 'file' is required",
		})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unable to read upload"})
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unable to read upload"})
		return
	}

	if h.uploads != nil && len(data) > 0 {
		if path, err := h.uploads.Save(fileHeader.Filename, data); err != nil {
			// Storage is an audit copy; the scan proceeds without it
			log.Printf("[HTTP] Failed to store upload %q: %v", fileHeader.Filename, err)
		} else {
			log.Printf("[HTTP] Stored upload at %s", path)
		}
	}

	h.scan(c, domain.LabelImage{Name: fileHeader.Filename, Data: data})
}

// CaptureAndScan photographs a label with the attached camera and scans it
func (h *Handler) CaptureAndScan(c *gin.Context) {
	if h.scanner == nil {
		respondNotConfigured(c)
		return
	}
	if h.camera == nil {
		respondError(c, domain.ErrCameraUnavailable)
		return
	}

	img, err := h.camera.Capture(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	h.scan(c, img)
}

// AnalyzeText runs the compliance engine on already extracted text
func (h *Handler) AnalyzeText(c *gin.Context) {
	if h.scanner == nil {
		respondNotConfigured(c)
		return
	}

	var req domain.AnalyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request",
			"details": err.Error(),
		})
		return
	}

	report, err := h.scanner.AnalyzeText(c.Request.Context(), req.Text)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, report)
}

func (h *Handler) scan(c *gin.Context, img domain.LabelImage) {
	report, err := h.scanner.Scan(c.Request.Context(), img)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, report)
}

// respondError maps domain errors to HTTP status codes
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidRequest), errors.Is(err, domain.ErrEmptyImage):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrModelFailure):
		log.Printf("[HTTP] Model engine error: %v", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "Compliance model unavailable"})
	case errors.Is(err, domain.ErrCameraUnavailable), errors.Is(err, domain.ErrCaptureFailed):
		log.Printf("[HTTP] Camera error: %v", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
	default:
		log.Printf("[HTTP] Internal error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}

func respondTooLarge(c *gin.Context) {
	c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "upload exceeds size limit"})
}

func respondNotConfigured(c *gin.Context) {
	c.JSON(http.StatusNotImplemented, gin.H{"error": "scanner not configured"})
}
