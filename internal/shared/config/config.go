package config

import (
	"log"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	DatabaseURL string
	Port        string
	Env         string

	// AI provider settings
	OpenAIKey       string
	VisionModel     string
	ExtractionModel string

	// OCR settings
	OCRLanguages string

	// Document storage
	UploadDir string
}

func LoadConfig() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️ .env file not found, using system environment variables")
	}

	cfg := &Config{
		DatabaseURL:     os.Getenv("DATABASE_URL"),
		Port:            os.Getenv("PORT"),
		Env:             os.Getenv("ENV"),
		OpenAIKey:       ResolveAPIKey(os.Getenv("OPENAI_API_KEY")),
		VisionModel:     os.Getenv("OPENAI_VISION_MODEL"),
		ExtractionModel: os.Getenv("OPENAI_EXTRACTION_MODEL"),
		OCRLanguages:    os.Getenv("OCR_LANGUAGES"),
		UploadDir:       os.Getenv("UPLOAD_DIR"),
	}

	// Default values
	if cfg.Port == "" {
		cfg.Port = "8080"
	}
	if cfg.Env == "" {
		cfg.Env = "development"
	}
	if cfg.VisionModel == "" {
		cfg.VisionModel = "gpt-4o"
	}
	if cfg.ExtractionModel == "" {
		cfg.ExtractionModel = "gpt-4o-mini"
	}
	if cfg.OCRLanguages == "" {
		cfg.OCRLanguages = "tur+eng"
	}
	if cfg.UploadDir == "" {
		cfg.UploadDir = "uploads/documents"
	}

	return cfg
}

// ResolveAPIKey normalizes an API credential taken from settings or the
// environment: trims whitespace, surrounding quotes and a leading "Bearer "
// prefix. Keys pasted from HTTP headers or .env files often carry both.
func ResolveAPIKey(raw string) string {
	key := strings.TrimSpace(raw)
	if len(key) > 1 && strings.HasPrefix(key, `"`) && strings.HasSuffix(key, `"`) {
		key = strings.TrimSpace(key[1 : len(key)-1])
	}
	if len(key) >= 7 && strings.EqualFold(key[:7], "bearer ") {
		key = strings.TrimSpace(key[7:])
	}
	return key
}
