package handlers

import (
	"errors"
	"io"
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/onmuhasebe/pre-accounting-be/internal/modules/documents/services"
)

// DocumentHandler handles document upload and processing requests
type DocumentHandler struct {
	service *services.DocumentService
}

// NewDocumentHandler creates a new document handler
func NewDocumentHandler(service *services.DocumentService) *DocumentHandler {
	return &DocumentHandler{service: service}
}

// Upload godoc
// @Summary Upload a document
// @Description Upload a business document (invoice, receipt, contract, bank statement) for later processing
// @Tags Documents
// @Accept multipart/form-data
// @Produce json
// @Param company_id formData string true "Company ID"
// @Param uploaded_by formData string false "Uploader identifier"
// @Param file formData file true "Document file (JPEG, PNG, TIFF, BMP or PDF, max 10MB)"
// @Success 201 {object} map[string]interface{}
// @Failure 400 {object} map[string]string
// @Failure 500 {object} map[string]string
// @Router /documents/upload [post]
func (h *DocumentHandler) Upload(c *fiber.Ctx) error {
	companyID, err := companyIDFromForm(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	file, err := c.FormFile("file")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "file is required",
		})
	}

	fileHandle, err := file.Open()
	if err != nil {
		log.Printf("❌ Failed to open uploaded file: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to read uploaded file",
		})
	}
	defer fileHandle.Close()

	data, err := io.ReadAll(fileHandle)
	if err != nil {
		log.Printf("❌ Failed to read uploaded file: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to read uploaded file",
		})
	}

	response, err := h.service.Upload(companyID, file.Filename, file.Header.Get("Content-Type"), data, c.FormValue("uploaded_by"))
	if err != nil {
		return h.mapError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"status": "success",
		"data":   response,
	})
}

// Process godoc
// @Summary Process an uploaded document
// @Description Run OCR, classification and field extraction on a document. A processing failure is reported in the result, not as an HTTP error.
// @Tags Documents
// @Produce json
// @Param id path string true "Document ID"
// @Param company_id query string true "Company ID"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /documents/{id}/process [post]
func (h *DocumentHandler) Process(c *fiber.Ctx) error {
	companyID, err := companyIDFromQuery(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	documentID := c.Params("id")
	if _, err := uuid.Parse(documentID); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid document id format",
		})
	}

	result, err := h.service.Process(c.Context(), documentID, companyID.String())
	if err != nil {
		return h.mapError(c, err)
	}

	return c.JSON(fiber.Map{
		"status": "success",
		"data":   result,
	})
}

// UploadAndProcess godoc
// @Summary Upload and immediately process a document
// @Description Upload a document and run the full OCR and extraction pipeline in one request
// @Tags Documents
// @Accept multipart/form-data
// @Produce json
// @Param company_id formData string true "Company ID"
// @Param uploaded_by formData string false "Uploader identifier"
// @Param file formData file true "Document file (JPEG, PNG, TIFF, BMP or PDF, max 10MB)"
// @Success 201 {object} map[string]interface{}
// @Failure 400 {object} map[string]string
// @Failure 500 {object} map[string]string
// @Router /documents/upload-and-process [post]
func (h *DocumentHandler) UploadAndProcess(c *fiber.Ctx) error {
	companyID, err := companyIDFromForm(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	file, err := c.FormFile("file")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "file is required",
		})
	}

	fileHandle, err := file.Open()
	if err != nil {
		log.Printf("❌ Failed to open uploaded file: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to read uploaded file",
		})
	}
	defer fileHandle.Close()

	data, err := io.ReadAll(fileHandle)
	if err != nil {
		log.Printf("❌ Failed to read uploaded file: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to read uploaded file",
		})
	}

	uploadResp, err := h.service.Upload(companyID, file.Filename, file.Header.Get("Content-Type"), data, c.FormValue("uploaded_by"))
	if err != nil {
		return h.mapError(c, err)
	}

	result, err := h.service.Process(c.Context(), uploadResp.DocumentID, companyID.String())
	if err != nil {
		return h.mapError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"status": "success",
		"data": fiber.Map{
			"upload":     uploadResp,
			"processing": result,
		},
	})
}

// Get godoc
// @Summary Get a document
// @Description Retrieve a single document with its OCR and extraction results
// @Tags Documents
// @Produce json
// @Param id path string true "Document ID"
// @Param company_id query string true "Company ID"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /documents/{id} [get]
func (h *DocumentHandler) Get(c *fiber.Ctx) error {
	companyID, err := companyIDFromQuery(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	document, err := h.service.Get(c.Params("id"), companyID.String())
	if err != nil {
		return h.mapError(c, err)
	}

	return c.JSON(fiber.Map{
		"status": "success",
		"data":   document,
	})
}

// List godoc
// @Summary List documents
// @Description Retrieve a company's documents, newest first, optionally filtered by status
// @Tags Documents
// @Produce json
// @Param company_id query string true "Company ID"
// @Param status query string false "Filter by status (UPLOADED, PROCESSING, PROCESSED, VERIFIED, ERROR)"
// @Param limit query int false "Limit number of results" default(50)
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]string
// @Router /documents [get]
func (h *DocumentHandler) List(c *fiber.Ctx) error {
	companyID, err := companyIDFromQuery(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	limit := c.QueryInt("limit", 50)
	if limit > 100 {
		limit = 100
	}

	documents, err := h.service.List(companyID.String(), c.Query("status"), limit)
	if err != nil {
		return h.mapError(c, err)
	}

	return c.JSON(fiber.Map{
		"status": "success",
		"count":  len(documents),
		"data":   documents,
	})
}

// Delete godoc
// @Summary Delete a document
// @Description Remove a document and its stored file
// @Tags Documents
// @Produce json
// @Param id path string true "Document ID"
// @Param company_id query string true "Company ID"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /documents/{id} [delete]
func (h *DocumentHandler) Delete(c *fiber.Ctx) error {
	companyID, err := companyIDFromQuery(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	if err := h.service.Delete(c.Params("id"), companyID.String()); err != nil {
		return h.mapError(c, err)
	}

	return c.JSON(fiber.Map{
		"status":  "success",
		"message": "Document deleted successfully",
	})
}

func (h *DocumentHandler) mapError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, services.ErrValidation):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	case errors.Is(err, services.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "document not found",
		})
	case errors.Is(err, services.ErrProcessingConflict):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error": "document is already being processed",
		})
	default:
		log.Printf("❌ Unhandled document error: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "internal server error",
		})
	}
}

func companyIDFromForm(c *fiber.Ctx) (uuid.UUID, error) {
	return parseCompanyID(c.FormValue("company_id"))
}

func companyIDFromQuery(c *fiber.Ctx) (uuid.UUID, error) {
	return parseCompanyID(c.Query("company_id"))
}

func parseCompanyID(raw string) (uuid.UUID, error) {
	if raw == "" {
		return uuid.Nil, errors.New("company_id is required")
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, errors.New("invalid company_id format")
	}
	return id, nil
}
