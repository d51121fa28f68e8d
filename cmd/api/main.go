package main

import (
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/swagger"

	"github.com/onmuhasebe/pre-accounting-be/internal/core/ai"
	"github.com/onmuhasebe/pre-accounting-be/internal/core/classify"
	"github.com/onmuhasebe/pre-accounting-be/internal/core/extract"
	"github.com/onmuhasebe/pre-accounting-be/internal/core/imaging"
	"github.com/onmuhasebe/pre-accounting-be/internal/core/ocr"
	"github.com/onmuhasebe/pre-accounting-be/internal/core/storage"
	"github.com/onmuhasebe/pre-accounting-be/internal/modules/documents/handlers"
	"github.com/onmuhasebe/pre-accounting-be/internal/modules/documents/repositories"
	"github.com/onmuhasebe/pre-accounting-be/internal/modules/documents/services"
	"github.com/onmuhasebe/pre-accounting-be/internal/shared/config"
	"github.com/onmuhasebe/pre-accounting-be/internal/shared/database"
	"github.com/onmuhasebe/pre-accounting-be/internal/shared/utils"

	_ "github.com/onmuhasebe/pre-accounting-be/cmd/api/docs"
)

// @title Pre-Accounting Document API
// @version 1.0
// @description Document OCR and structured extraction API for the pre-accounting backend
// @contact.name API Support
// @contact.email support@onmuhasebe.com
// @license.name MIT
// @host localhost:8080
// @BasePath /
func main() {
	// Load config
	cfg := config.LoadConfig()
	utils.InitLogger()
	log.Printf("🚀 Starting api on port %s", cfg.Port)

	// Init database
	db := database.NewDB(cfg.DatabaseURL)
	defer db.Close()

	// Init repositories (use GORM instance)
	documentRepo := repositories.NewDocumentRepo(db.GORM)

	// Init file storage
	store, err := storage.NewLocalStore(cfg.UploadDir)
	if err != nil {
		log.Fatalf("Failed to initialize file storage: %v", err)
	}

	// Init AI service
	if cfg.OpenAIKey == "" {
		log.Printf("⚠️  No OpenAI API key configured, AI features will be degraded")
	}
	aiService := ai.NewService(ai.NewOpenAIProvider(cfg.OpenAIKey, cfg.VisionModel, cfg.ExtractionModel))
	log.Printf("🤖 Using AI provider: %s", aiService.GetProviderName())

	// Init OCR pipeline: local Tesseract first, vision model as fallback
	preprocessor := imaging.NewPreprocessor(imaging.NewProjectionSkewEstimator())
	tesseract := ocr.NewTesseractProvider(cfg.OCRLanguages)
	vision := ocr.NewVisionProvider(aiService)
	orchestrator := ocr.NewOrchestrator(preprocessor, tesseract, vision)
	log.Printf("🔍 OCR providers: %s, %s", tesseract.GetProviderName(), vision.GetProviderName())

	// Init classification and extraction
	classifier := classify.NewClassifier(aiService)
	extractor := extract.NewExtractor(aiService)

	// Init services
	documentService := services.NewDocumentService(documentRepo, store, orchestrator, classifier, extractor)

	maintenance := services.NewMaintenance(documentRepo)
	if err := maintenance.Start(); err != nil {
		log.Fatalf("Failed to start maintenance sweeper: %v", err)
	}
	defer maintenance.Stop()

	// Init handlers
	documentHandler := handlers.NewDocumentHandler(documentService)

	// Init Fiber app
	app := fiber.New(fiber.Config{
		AppName:   "Pre-Accounting Document API",
		BodyLimit: services.MaxFileSize + 1024*1024,
	})

	// Middleware
	app.Use(cors.New())

	// Swagger
	app.Get("/swagger/*", swagger.HandlerDefault)

	// Health check
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	// Document routes
	app.Post("/documents/upload", documentHandler.Upload)
	app.Post("/documents/upload-and-process", documentHandler.UploadAndProcess)
	app.Post("/documents/:id/process", documentHandler.Process)
	app.Get("/documents", documentHandler.List)
	app.Get("/documents/:id", documentHandler.Get)
	app.Delete("/documents/:id", documentHandler.Delete)

	// Start server
	port := cfg.Port
	if port == "" {
		port = "8080"
	}

	log.Printf("✅ api running at :%s", port)
	log.Printf("📄 Swagger UI: http://localhost:%s/swagger/", port)
	log.Fatal(app.Listen(":" + port))
}
