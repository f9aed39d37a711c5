package main

import (
	"fmt"
	"log"
	"os"

	"github.com/cleartag/labelscan/config"
	httpDelivery "github.com/cleartag/labelscan/internal/delivery/http"
	"github.com/cleartag/labelscan/internal/domain"
	"github.com/cleartag/labelscan/internal/infrastructure/cache"
	"github.com/cleartag/labelscan/internal/infrastructure/camera"
	"github.com/cleartag/labelscan/internal/infrastructure/llm"
	"github.com/cleartag/labelscan/internal/infrastructure/preprocess"
	"github.com/cleartag/labelscan/internal/infrastructure/storage"
	"github.com/cleartag/labelscan/internal/infrastructure/tesseract"
	"github.com/cleartag/labelscan/internal/usecase"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	debug := cfg.Server.Environment == "development"

	log.Printf("Starting ClearTag Scanner v1.0.0")
	log.Printf("Environment: %s", cfg.Server.Environment)
	log.Printf("Port: %s", cfg.Server.Port)
	log.Printf("Tesseract %s (lang=%s, psm=%d)", tesseract.Version(), cfg.OCR.Language, cfg.OCR.PSM)

	preprocessor := preprocess.NewPreprocessor(preprocess.Config{
		Enabled:            cfg.Preprocess.Enabled,
		DebugDir:           cfg.Preprocess.DebugDir,
		EnableDebugLogging: debug,
	})
	log.Printf("Preprocessing: enabled=%v", cfg.Preprocess.Enabled)

	recognizer := tesseract.NewEngine(tesseract.Config{
		Language:           cfg.OCR.Language,
		PageSegMode:        cfg.OCR.PSM,
		EnableDebugLogging: debug,
	})

	var engine domain.ComplianceEngine
	switch cfg.Extraction.Engine {
	case "model":
		client := llm.NewClient(cfg.LLM.BaseURL, cfg.LLM.MaxTokens, cfg.LLM.Timeout)
		client.SetDebug(debug)
		engine = usecase.NewModelRuleEngine(client, debug)
		log.Printf("Compliance engine: model (%s, max_tokens=%d)", cfg.LLM.BaseURL, cfg.LLM.MaxTokens)
	default:
		engine = usecase.NewRegexRuleEngine()
		log.Printf("Compliance engine: regex")
	}

	var textCache domain.TextCache
	if cfg.Cache.Type == "memory" {
		memoryCache := cache.NewMemoryCache()
		defer memoryCache.Close()
		textCache = memoryCache
		log.Printf("OCR cache: memory (ttl=%s)", cfg.Cache.TTL)
	} else {
		log.Printf("OCR cache: disabled")
	}

	scanService := usecase.NewScanService(
		preprocessor,
		recognizer,
		engine,
		textCache,
		usecase.ScanServiceConfig{
			CacheTTL:           cfg.Cache.TTL,
			EnableDebugLogging: debug,
		},
	)

	// Optional collaborators stay nil interfaces when disabled
	var imageSource domain.ImageSource
	if cfg.Camera.Enabled {
		imageSource = camera.NewCapturer(camera.Config{
			OutputDir:  cfg.Camera.OutputDir,
			Width:      cfg.Camera.Width,
			Height:     cfg.Camera.Height,
			AllowDummy: cfg.Camera.AllowDummy,
		})
		log.Printf("Camera: enabled (%dx%d, dummy=%v)", cfg.Camera.Width, cfg.Camera.Height, cfg.Camera.AllowDummy)
	}

	var uploads httpDelivery.UploadStorage
	if cfg.Server.UploadDir != "" {
		store, err := storage.NewUploadStore(cfg.Server.UploadDir)
		if err != nil {
			log.Fatalf("Failed to prepare upload storage: %v", err)
		}
		uploads = store
		log.Printf("Uploads stored in %s", store.Dir())
	}

	handler := httpDelivery.NewHandler(scanService, imageSource, uploads, cfg.Server.MaxUploadBytes())
	router := httpDelivery.SetupRouter(cfg, handler)

	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	log.Printf("Server listening on %s", addr)

	if err := router.Run(addr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

func init() {
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)
	log.SetOutput(os.Stdout)
}
