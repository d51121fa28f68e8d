package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/onmuhasebe/pre-accounting-be/internal/core/classify"
	"github.com/onmuhasebe/pre-accounting-be/internal/core/extract"
	"github.com/onmuhasebe/pre-accounting-be/internal/core/imaging"
	"github.com/onmuhasebe/pre-accounting-be/internal/core/ocr"
	"github.com/onmuhasebe/pre-accounting-be/internal/core/storage"
	"github.com/onmuhasebe/pre-accounting-be/internal/modules/documents/models"
	"github.com/onmuhasebe/pre-accounting-be/internal/modules/documents/repositories"
	"github.com/onmuhasebe/pre-accounting-be/internal/shared/utils"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Sentinel errors the handlers map onto HTTP statuses.
var (
	ErrNotFound           = errors.New("document not found")
	ErrValidation         = errors.New("validation failed")
	ErrProcessingConflict = errors.New("document is already being processed")
)

// MaxFileSize is the upload size ceiling (10MB).
const MaxFileSize = 10 * 1024 * 1024

var allowedContentTypes = map[string]bool{
	"image/jpeg":      true,
	"image/jpg":       true,
	"image/png":       true,
	"image/tiff":      true,
	"image/bmp":       true,
	"application/pdf": true,
}

// UploadResponse is returned after a successful upload
type UploadResponse struct {
	DocumentID string `json:"documentId"`
	Filename   string `json:"filename"`
	Status     string `json:"status"`
	Message    string `json:"message"`
}

// ProcessingResult describes the outcome of a processing run. A failed run is
// still a result: Status is ERROR and the Error field carries the reason.
type ProcessingResult struct {
	DocumentID       string                  `json:"documentId"`
	Status           string                  `json:"status"`
	DocumentType     string                  `json:"documentType,omitempty"`
	OCRText          string                  `json:"ocrText,omitempty"`
	OCRConfidence    float64                 `json:"ocrConfidence,omitempty"`
	OCRProvider      string                  `json:"ocrProvider,omitempty"`
	ExtractedData    *extract.DocumentFields `json:"extractedData,omitempty"`
	Error            string                  `json:"error,omitempty"`
	ProcessingTimeMs int64                   `json:"processingTimeMs"` // 0 when served from a finished document
}

// TextRecognizer runs the OCR pipeline over a decoded image.
type TextRecognizer interface {
	Process(ctx context.Context, img image.Image) (*ocr.Result, error)
}

// DocumentClassifier assigns a document type to OCR text.
type DocumentClassifier interface {
	Classify(ctx context.Context, ocrText string) classify.DocumentType
}

// FieldExtractor pulls structured fields out of OCR text.
type FieldExtractor interface {
	Extract(ctx context.Context, ocrText string, docType classify.DocumentType) *extract.DocumentFields
}

// DocumentService owns the document lifecycle: upload, processing, retrieval
// and deletion, all scoped per company.
type DocumentService struct {
	repo       repositories.DocumentRepo
	store      storage.Store
	recognizer TextRecognizer
	classifier DocumentClassifier
	extractor  FieldExtractor
}

// NewDocumentService creates a new document service
func NewDocumentService(repo repositories.DocumentRepo, store storage.Store, recognizer TextRecognizer, classifier DocumentClassifier, extractor FieldExtractor) *DocumentService {
	return &DocumentService{
		repo:       repo,
		store:      store,
		recognizer: recognizer,
		classifier: classifier,
		extractor:  extractor,
	}
}

// Upload validates and stores a document file, creating its database record
// in UPLOADED state. Validation happens before anything is persisted.
func (s *DocumentService) Upload(companyID uuid.UUID, filename, contentType string, data []byte, uploadedBy string) (*UploadResponse, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: file is empty", ErrValidation)
	}
	if int64(len(data)) > MaxFileSize {
		return nil, fmt.Errorf("%w: file size exceeds 10MB limit", ErrValidation)
	}
	normalized := strings.ToLower(strings.TrimSpace(contentType))
	if !allowedContentTypes[normalized] {
		return nil, fmt.Errorf("%w: unsupported content type %q", ErrValidation, contentType)
	}

	path, err := s.store.Save(data, filename)
	if err != nil {
		return nil, fmt.Errorf("failed to store file: %w", err)
	}

	document := &models.Document{
		CompanyID:   companyID,
		Filename:    filename,
		FilePath:    path,
		ContentType: normalized,
		FileSize:    int64(len(data)),
		Status:      models.StatusUploaded,
	}
	if uploadedBy != "" {
		document.UploadedBy = &uploadedBy
	}

	if err := s.repo.Create(document); err != nil {
		// Keep storage consistent with the database on insert failure.
		if delErr := s.store.Delete(path); delErr != nil {
			log.Printf("⚠️ Failed to clean up stored file %s: %v", path, delErr)
		}
		return nil, fmt.Errorf("failed to save document: %w", err)
	}

	log.Printf("📄 Document uploaded: %s (%s, %.2f KB)", document.ID, filename, float64(len(data))/1024)

	return &UploadResponse{
		DocumentID: document.ID.String(),
		Filename:   filename,
		Status:     string(models.StatusUploaded),
		Message:    "Document uploaded successfully",
	}, nil
}

// Process runs the full OCR and extraction pipeline on a document. An already
// PROCESSED or VERIFIED document returns its stored result without touching
// the pipeline. Pipeline failures are recorded on the document and reported
// in the result rather than raised.
func (s *DocumentService) Process(ctx context.Context, id, companyID string) (*ProcessingResult, error) {
	document, err := s.repo.GetByIDAndCompany(id, companyID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to load document: %w", err)
	}

	if document.Status == models.StatusProcessed || document.Status == models.StatusVerified {
		return cachedResult(document), nil
	}

	if err := s.repo.MarkProcessing(id, companyID); err != nil {
		if errors.Is(err, repositories.ErrNotClaimable) {
			return nil, ErrProcessingConflict
		}
		return nil, fmt.Errorf("failed to claim document: %w", err)
	}

	started := time.Now()
	log.Printf("⚙️ Processing document %s (%s)", document.ID, document.Filename)

	data, err := s.store.Load(document.FilePath)
	if err != nil {
		return s.fail(document, fmt.Sprintf("failed to read stored file: %v", err), started)
	}

	img, err := imaging.Decode(data)
	if err != nil {
		return s.fail(document, fmt.Sprintf("failed to decode image: %v", err), started)
	}

	ocrResult, err := s.recognizer.Process(ctx, img)
	if err != nil {
		return s.fail(document, fmt.Sprintf("text extraction failed: %v", err), started)
	}

	log.Printf("✅ OCR done for %s via %s (confidence: %.2f)", document.ID, ocrResult.ProviderName, ocrResult.Confidence)

	docType := s.classifier.Classify(ctx, ocrResult.Text)
	fields := s.extractor.Extract(ctx, ocrResult.Text, docType)

	extractedJSON, err := json.Marshal(fields)
	if err != nil {
		return s.fail(document, fmt.Sprintf("failed to serialize extracted data: %v", err), started)
	}

	now := time.Now()
	typeStr := string(docType)
	document.Status = models.StatusProcessed
	document.DocumentType = &typeStr
	document.OCRText = &ocrResult.Text
	document.OCRConfidence = &ocrResult.Confidence
	document.OCRProvider = &ocrResult.ProviderName
	document.ExtractedData = datatypes.JSON(extractedJSON)
	document.ProcessingError = nil
	document.ProcessedAt = &now

	if err := s.repo.Update(document); err != nil {
		return nil, fmt.Errorf("failed to save processing result: %w", err)
	}

	elapsed := time.Since(started).Milliseconds()
	utils.LogInfo("document processed", map[string]interface{}{
		"document_id":    document.ID.String(),
		"document_type":  typeStr,
		"ocr_provider":   ocrResult.ProviderName,
		"ocr_confidence": ocrResult.Confidence,
		"duration_ms":    elapsed,
	})

	return &ProcessingResult{
		DocumentID:       document.ID.String(),
		Status:           string(models.StatusProcessed),
		DocumentType:     typeStr,
		OCRText:          ocrResult.Text,
		OCRConfidence:    ocrResult.Confidence,
		OCRProvider:      ocrResult.ProviderName,
		ExtractedData:    fields,
		ProcessingTimeMs: elapsed,
	}, nil
}

// fail records a pipeline failure on the document and returns it as data.
func (s *DocumentService) fail(document *models.Document, reason string, started time.Time) (*ProcessingResult, error) {
	utils.LogWarn("document processing failed", map[string]interface{}{
		"document_id": document.ID.String(),
		"reason":      reason,
	})

	document.Status = models.StatusError
	document.ProcessingError = &reason
	if err := s.repo.Update(document); err != nil {
		log.Printf("⚠️ Failed to record processing error for %s: %v", document.ID, err)
	}

	return &ProcessingResult{
		DocumentID:       document.ID.String(),
		Status:           string(models.StatusError),
		Error:            reason,
		ProcessingTimeMs: time.Since(started).Milliseconds(),
	}, nil
}

// cachedResult rebuilds a ProcessingResult from an already processed row.
// ProcessingTimeMs stays 0 on a cache hit: the field measures pipeline work,
// and none ran.
func cachedResult(document *models.Document) *ProcessingResult {
	result := &ProcessingResult{
		DocumentID: document.ID.String(),
		Status:     string(document.Status),
	}
	if document.DocumentType != nil {
		result.DocumentType = *document.DocumentType
	}
	if document.OCRText != nil {
		result.OCRText = *document.OCRText
	}
	if document.OCRConfidence != nil {
		result.OCRConfidence = *document.OCRConfidence
	}
	if document.OCRProvider != nil {
		result.OCRProvider = *document.OCRProvider
	}
	if len(document.ExtractedData) > 0 {
		var fields extract.DocumentFields
		if err := json.Unmarshal(document.ExtractedData, &fields); err == nil {
			result.ExtractedData = &fields
		}
	}
	return result
}

// Get returns a single document scoped by company
func (s *DocumentService) Get(id, companyID string) (*models.Document, error) {
	document, err := s.repo.GetByIDAndCompany(id, companyID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return document, nil
}

// List returns a company's documents, optionally filtered by status
func (s *DocumentService) List(companyID string, status string, limit int) ([]models.Document, error) {
	if status == "" {
		return s.repo.ListByCompany(companyID, limit)
	}

	normalized := models.DocumentStatus(strings.ToUpper(strings.TrimSpace(status)))
	switch normalized {
	case models.StatusUploaded, models.StatusProcessing, models.StatusProcessed, models.StatusVerified, models.StatusError:
	default:
		return nil, fmt.Errorf("%w: unknown status %q", ErrValidation, status)
	}

	return s.repo.ListByCompanyAndStatus(companyID, normalized, limit)
}

// Delete removes a document's file and database row
func (s *DocumentService) Delete(id, companyID string) error {
	document, err := s.repo.GetByIDAndCompany(id, companyID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}

	if err := s.store.Delete(document.FilePath); err != nil {
		log.Printf("⚠️ Failed to delete stored file %s: %v", document.FilePath, err)
	}

	if err := s.repo.Delete(id, companyID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}

	log.Printf("🗑️ Document deleted: %s", id)
	return nil
}
