package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/inkasso/backend/internal/domain/collection"
	"github.com/inkasso/backend/internal/domain/shared"
	"github.com/inkasso/backend/internal/infrastructure/persistence/models"
)

// GormInquiryRepository implements collection.InquiryRepository using GORM
type GormInquiryRepository struct {
	db *gorm.DB
}

// NewGormInquiryRepository creates a new GormInquiryRepository
func NewGormInquiryRepository(db *gorm.DB) *GormInquiryRepository {
	return &GormInquiryRepository{db: db}
}

// FindByID finds an inquiry by its ID
func (r *GormInquiryRepository) FindByID(ctx context.Context, id uuid.UUID) (*collection.Inquiry, error) {
	var model models.InquiryModel
	if err := r.db.WithContext(ctx).
		First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByCaseID finds all inquiries of a case, oldest first
func (r *GormInquiryRepository) FindByCaseID(ctx context.Context, caseID uuid.UUID) ([]*collection.Inquiry, error) {
	var inquiryModels []models.InquiryModel
	if err := r.db.WithContext(ctx).
		Where("case_id = ?", caseID).
		Order("created_at ASC").
		Find(&inquiryModels).Error; err != nil {
		return nil, err
	}
	return toDomainInquiries(inquiryModels), nil
}

// FindOpenByTenant finds all open inquiries of a creditor, oldest first.
// This backs the staff work queue.
func (r *GormInquiryRepository) FindOpenByTenant(ctx context.Context, tenantID uuid.UUID) ([]*collection.Inquiry, error) {
	var inquiryModels []models.InquiryModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND status = ?", tenantID, collection.InquiryStatusOpen).
		Order("created_at ASC").
		Find(&inquiryModels).Error; err != nil {
		return nil, err
	}
	return toDomainInquiries(inquiryModels), nil
}

// Save creates or updates an inquiry
func (r *GormInquiryRepository) Save(ctx context.Context, i *collection.Inquiry) error {
	model := models.InquiryModelFromDomain(i)
	return r.db.WithContext(ctx).Save(model).Error
}

// SaveWithLock saves an inquiry only if the stored version still matches
// expectedVersion
func (r *GormInquiryRepository) SaveWithLock(ctx context.Context, i *collection.Inquiry, expectedVersion int) error {
	model := models.InquiryModelFromDomain(i)
	result := r.db.WithContext(ctx).
		Model(model).
		Where("id = ? AND version = ?", i.ID, expectedVersion).
		Select("*").
		Updates(model)

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.NewDomainError(shared.CodeConcurrencyConflict, "Inquiry was modified by another transaction")
	}
	return nil
}

func toDomainInquiries(inquiryModels []models.InquiryModel) []*collection.Inquiry {
	inquiries := make([]*collection.Inquiry, len(inquiryModels))
	for i := range inquiryModels {
		inquiries[i] = inquiryModels[i].ToDomain()
	}
	return inquiries
}
