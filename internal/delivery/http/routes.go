package http

import (
	"github.com/gin-gonic/gin"

	"github.com/cleartag/labelscan/config"
)

// SetupRouter creates and configures the Gin router
func SetupRouter(cfg *config.Config, handler *Handler) *gin.Engine {
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	// multipart parts beyond this stay on disk instead of memory
	router.MaxMultipartMemory = cfg.Server.MaxUploadBytes()

	// Global middleware
	router.Use(RecoveryMiddleware())
	router.Use(LoggerMiddleware())
	router.Use(CORSMiddleware(cfg.Server.AllowedOrigins))

	router.GET("/health", handler.HealthCheck)

	v1 := router.Group("/api/v1")
	v1.Use(RateLimitMiddleware(cfg.RateLimit.PerIP))
	{
		scan := v1.Group("/scan")
		{
			scan.POST("", handler.ScanLabel)
			scan.POST("/capture", handler.CaptureAndScan)
		}
		v1.POST("/analyze", handler.AnalyzeText)
	}

	return router
}
