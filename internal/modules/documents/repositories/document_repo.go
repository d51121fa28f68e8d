package repositories

import (
	"errors"
	"time"

	"github.com/onmuhasebe/pre-accounting-be/internal/modules/documents/models"
	"gorm.io/gorm"
)

// ErrNotClaimable is returned by MarkProcessing when the document is not in a
// state that allows a processing run to start (another run owns it, or it has
// already completed).
var ErrNotClaimable = errors.New("document is not in a processable state")

// DocumentRepo interface defines document persistence operations. All lookups
// are scoped by company so one tenant can never see another tenant's rows.
type DocumentRepo interface {
	Create(document *models.Document) error
	GetByIDAndCompany(id, companyID string) (*models.Document, error)
	ListByCompany(companyID string, limit int) ([]models.Document, error)
	ListByCompanyAndStatus(companyID string, status models.DocumentStatus, limit int) ([]models.Document, error)
	Update(document *models.Document) error
	Delete(id, companyID string) error
	MarkProcessing(id, companyID string) error
	ResetStale(olderThan time.Time, reason string) (int64, error)
}

type documentRepo struct {
	db *gorm.DB
}

// NewDocumentRepo creates a new document repository
func NewDocumentRepo(db *gorm.DB) DocumentRepo {
	return &documentRepo{db: db}
}

// Create inserts a new document
func (r *documentRepo) Create(document *models.Document) error {
	return r.db.Create(document).Error
}

// GetByIDAndCompany retrieves a document by ID within a company. A document
// belonging to a different company is indistinguishable from a missing one.
func (r *documentRepo) GetByIDAndCompany(id, companyID string) (*models.Document, error) {
	var document models.Document
	err := r.db.Where("id = ? AND company_id = ?", id, companyID).First(&document).Error
	if err != nil {
		return nil, err
	}
	return &document, nil
}

// ListByCompany retrieves documents for a company, newest first
func (r *documentRepo) ListByCompany(companyID string, limit int) ([]models.Document, error) {
	var documents []models.Document
	query := r.db.Where("company_id = ?", companyID).
		Order("created_at DESC")

	if limit > 0 {
		query = query.Limit(limit)
	}

	err := query.Find(&documents).Error
	if err != nil {
		return nil, err
	}

	return documents, nil
}

// ListByCompanyAndStatus retrieves documents for a company filtered by status
func (r *documentRepo) ListByCompanyAndStatus(companyID string, status models.DocumentStatus, limit int) ([]models.Document, error) {
	var documents []models.Document
	query := r.db.Where("company_id = ? AND status = ?", companyID, status).
		Order("created_at DESC")

	if limit > 0 {
		query = query.Limit(limit)
	}

	err := query.Find(&documents).Error
	if err != nil {
		return nil, err
	}

	return documents, nil
}

// Update saves all fields of the document
func (r *documentRepo) Update(document *models.Document) error {
	return r.db.Save(document).Error
}

// Delete removes a document row within a company
func (r *documentRepo) Delete(id, companyID string) error {
	result := r.db.Where("id = ? AND company_id = ?", id, companyID).Delete(&models.Document{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// MarkProcessing atomically claims a document for a processing run. The
// conditional update only succeeds from UPLOADED or ERROR; zero rows affected
// means the document is already PROCESSING elsewhere or terminal.
func (r *documentRepo) MarkProcessing(id, companyID string) error {
	result := r.db.Model(&models.Document{}).
		Where("id = ? AND company_id = ? AND status IN ?", id, companyID,
			[]models.DocumentStatus{models.StatusUploaded, models.StatusError}).
		Updates(map[string]interface{}{
			"status":           models.StatusProcessing,
			"processing_error": nil,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotClaimable
	}
	return nil
}

// ResetStale flips documents stuck in PROCESSING since before olderThan back
// to ERROR, recording the reason. Returns the number of rows swept.
func (r *documentRepo) ResetStale(olderThan time.Time, reason string) (int64, error) {
	result := r.db.Model(&models.Document{}).
		Where("status = ? AND updated_at < ?", models.StatusProcessing, olderThan).
		Updates(map[string]interface{}{
			"status":           models.StatusError,
			"processing_error": reason,
		})
	return result.RowsAffected, result.Error
}
