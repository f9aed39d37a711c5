package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Server     ServerConfig
	OCR        OCRConfig
	Preprocess PreprocessConfig
	Extraction ExtractionConfig
	LLM        LLMConfig
	Cache      CacheConfig
	RateLimit  RateLimitConfig
	Camera     CameraConfig
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port           string   `mapstructure:"port"`
	Environment    string   `mapstructure:"environment"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
	MaxUploadMB    int      `mapstructure:"max_upload_mb"`
	UploadDir      string   `mapstructure:"upload_dir"` // empty disables upload storage
}

// OCRConfig holds Tesseract configuration
type OCRConfig struct {
	Language string `mapstructure:"language"` // e.g. "eng" or "eng+hin"
	PSM      int    `mapstructure:"psm"`
}

// PreprocessConfig holds image preprocessing configuration
type PreprocessConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	DebugDir string `mapstructure:"debug_dir"`
}

// ExtractionConfig selects the compliance engine
type ExtractionConfig struct {
	Engine string `mapstructure:"engine"` // "regex" or "model"
}

// LLMConfig holds completion server configuration for the model engine
type LLMConfig struct {
	BaseURL   string        `mapstructure:"base_url"`
	MaxTokens int           `mapstructure:"max_tokens"`
	Timeout   time.Duration `mapstructure:"timeout"`
}

// CacheConfig holds OCR text cache configuration
type CacheConfig struct {
	Type string        `mapstructure:"type"` // "memory" or "none"
	TTL  time.Duration `mapstructure:"ttl"`
}

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	PerIP int `mapstructure:"per_ip"` // requests per minute, 0 disables
}

// CameraConfig holds camera capture configuration
type CameraConfig struct {
	Enabled    bool   `mapstructure:"enabled"`
	OutputDir  string `mapstructure:"output_dir"`
	Width      int    `mapstructure:"width"`
	Height     int    `mapstructure:"height"`
	AllowDummy bool   `mapstructure:"allow_dummy"`
}

// MaxUploadBytes returns the upload limit in bytes
func (c ServerConfig) MaxUploadBytes() int64 {
	return int64(c.MaxUploadMB) << 20
}

// Load loads configuration from environment variables and config files
func Load() (*Config, error) {
	v := viper.New()

	// Set config name and paths
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/cleartag/")

	// CLEARTAG_OCR_LANGUAGE -> ocr.language
	v.SetEnvPrefix("CLEARTAG")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	// Config file is optional
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	if err := validate(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.port", "8000")
	v.SetDefault("server.environment", "development")
	v.SetDefault("server.allowed_origins", []string{"http://localhost:*"})
	v.SetDefault("server.max_upload_mb", 10)
	v.SetDefault("server.upload_dir", "uploads")

	// OCR defaults; psm 6 assumes a single uniform block of text
	v.SetDefault("ocr.language", "eng")
	v.SetDefault("ocr.psm", 6)

	v.SetDefault("preprocess.enabled", true)
	v.SetDefault("preprocess.debug_dir", "")

	v.SetDefault("extraction.engine", "regex")

	// Model engine defaults (llama.cpp server)
	v.SetDefault("llm.base_url", "http://127.0.0.1:8080")
	v.SetDefault("llm.max_tokens", 200)
	v.SetDefault("llm.timeout", "60s")

	// Cache defaults
	v.SetDefault("cache.type", "memory")
	v.SetDefault("cache.ttl", "1h")

	v.SetDefault("ratelimit.per_ip", 30)

	// Camera defaults
	v.SetDefault("camera.enabled", false)
	v.SetDefault("camera.output_dir", "uploads")
	v.SetDefault("camera.width", 1920)
	v.SetDefault("camera.height", 1080)
	v.SetDefault("camera.allow_dummy", true)
}

// validate validates the configuration
func validate(config *Config) error {
	switch config.Extraction.Engine {
	case "regex":
	case "model":
		if config.LLM.BaseURL == "" {
			return fmt.Errorf("llm base URL is required when extraction engine is 'model' (set CLEARTAG_LLM_BASE_URL)")
		}
	default:
		return fmt.Errorf("extraction engine must be 'regex' or 'model', got: %s", config.Extraction.Engine)
	}

	if config.Cache.Type != "memory" && config.Cache.Type != "none" {
		return fmt.Errorf("cache type must be 'memory' or 'none', got: %s", config.Cache.Type)
	}

	if config.OCR.PSM < 0 || config.OCR.PSM > 13 {
		return fmt.Errorf("ocr page segmentation mode must be between 0 and 13, got: %d", config.OCR.PSM)
	}

	if config.Server.MaxUploadMB <= 0 {
		return fmt.Errorf("max upload size must be positive, got: %d", config.Server.MaxUploadMB)
	}

	if config.RateLimit.PerIP < 0 {
		return fmt.Errorf("per-IP rate limit must not be negative, got: %d", config.RateLimit.PerIP)
	}

	return nil
}
