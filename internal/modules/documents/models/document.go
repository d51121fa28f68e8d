package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// DocumentStatus tracks a document through its processing lifecycle.
type DocumentStatus string

const (
	StatusUploaded   DocumentStatus = "UPLOADED"
	StatusProcessing DocumentStatus = "PROCESSING"
	StatusProcessed  DocumentStatus = "PROCESSED"
	StatusVerified   DocumentStatus = "VERIFIED"
	StatusError      DocumentStatus = "ERROR"
)

// Document represents an uploaded business document (invoice, receipt, etc.)
// and the OCR/extraction results produced from it.
type Document struct {
	ID              uuid.UUID      `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	CompanyID       uuid.UUID      `gorm:"type:uuid;not null;index:idx_documents_company" json:"company_id"`
	Filename        string         `gorm:"type:varchar(255);not null" json:"filename"`
	FilePath        string         `gorm:"type:varchar(512);not null" json:"file_path"`
	ContentType     string         `gorm:"type:varchar(100);not null" json:"content_type"`
	FileSize        int64          `gorm:"not null" json:"file_size"`
	Status          DocumentStatus `gorm:"type:varchar(20);not null;default:'UPLOADED';index:idx_documents_status" json:"status"`
	DocumentType    *string        `gorm:"type:varchar(30)" json:"document_type,omitempty"` // INVOICE, RECEIPT, CONTRACT, BANK_STATEMENT, OTHER
	OCRText         *string        `gorm:"type:text" json:"ocr_text,omitempty"`
	OCRConfidence   *float64       `gorm:"type:float" json:"ocr_confidence,omitempty"` // 0-1
	OCRProvider     *string        `gorm:"type:varchar(50)" json:"ocr_provider,omitempty"`
	ExtractedData   datatypes.JSON `gorm:"type:jsonb" json:"extracted_data,omitempty"`
	ProcessingError *string        `gorm:"type:text" json:"processing_error,omitempty"`
	UploadedBy      *string        `gorm:"type:varchar(255)" json:"uploaded_by,omitempty"`
	ProcessedAt     *time.Time     `json:"processed_at,omitempty"`
	CreatedAt       time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
}

// TableName specifies the table name
func (Document) TableName() string {
	return "documents"
}

// BeforeCreate sets UUID before creating
func (d *Document) BeforeCreate(tx *gorm.DB) error {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	return nil
}
