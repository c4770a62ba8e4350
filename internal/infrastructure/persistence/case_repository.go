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

const (
	defaultPageSize = 50
	maxPageSize     = 200
)

// GormCaseRepository implements collection.CaseRepository using GORM
type GormCaseRepository struct {
	db *gorm.DB
}

// NewGormCaseRepository creates a new GormCaseRepository
func NewGormCaseRepository(db *gorm.DB) *GormCaseRepository {
	return &GormCaseRepository{db: db}
}

// FindByID finds a case by its ID
func (r *GormCaseRepository) FindByID(ctx context.Context, id uuid.UUID) (*collection.Case, error) {
	var model models.CaseModel
	if err := r.db.WithContext(ctx).
		First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByIDForTenant finds a case by ID for a specific creditor
func (r *GormCaseRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*collection.Case, error) {
	var model models.CaseModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByCaseNumber finds a case by its case number within a creditor
func (r *GormCaseRepository) FindByCaseNumber(ctx context.Context, tenantID uuid.UUID, caseNumber string) (*collection.Case, error) {
	var model models.CaseModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND case_number = ?", tenantID, caseNumber).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAll finds cases matching the filter, with the total count before
// pagination. Scoping fields in the filter become WHERE clauses so the
// database never returns rows the caller may not see.
func (r *GormCaseRepository) FindAll(ctx context.Context, filter collection.CaseFilter) ([]*collection.Case, int64, error) {
	query := r.applyFilter(r.db.WithContext(ctx).Model(&models.CaseModel{}), filter)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize < 1 {
		pageSize = defaultPageSize
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}

	var caseModels []models.CaseModel
	if err := query.
		Order("case_number ASC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&caseModels).Error; err != nil {
		return nil, 0, err
	}

	cases := make([]*collection.Case, len(caseModels))
	for i := range caseModels {
		cases[i] = caseModels[i].ToDomain()
	}
	return cases, total, nil
}

// Save creates or updates a case
func (r *GormCaseRepository) Save(ctx context.Context, c *collection.Case) error {
	model := models.CaseModelFromDomain(c)
	return r.db.WithContext(ctx).Save(model).Error
}

// SaveWithLock saves a case only if the stored version still matches
// expectedVersion. A lost race surfaces as CONCURRENCY_CONFLICT.
func (r *GormCaseRepository) SaveWithLock(ctx context.Context, c *collection.Case, expectedVersion int) error {
	model := models.CaseModelFromDomain(c)
	result := r.db.WithContext(ctx).
		Model(model).
		Where("id = ? AND version = ?", c.ID, expectedVersion).
		Select("*").
		Updates(model)

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.NewDomainError(shared.CodeConcurrencyConflict, "Case was modified by another transaction")
	}
	return nil
}

func (r *GormCaseRepository) applyFilter(query *gorm.DB, filter collection.CaseFilter) *gorm.DB {
	if filter.KreditorID != nil {
		query = query.Where("tenant_id = ?", *filter.KreditorID)
	}
	if len(filter.KreditorIDs) > 0 {
		query = query.Where("tenant_id IN ?", filter.KreditorIDs)
	}
	if filter.DebtorID != nil {
		query = query.Where("debtor_id = ?", *filter.DebtorID)
	}
	if filter.AgentID != nil {
		query = query.Where("agent_id = ?", *filter.AgentID)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.MinAmount != nil {
		query = query.Where("total_amount >= ?", *filter.MinAmount)
	}
	if filter.MaxAmount != nil {
		query = query.Where("total_amount <= ?", *filter.MaxAmount)
	}
	if filter.NextActionBefore != nil {
		query = query.Where("next_action_date IS NOT NULL AND next_action_date <= ?", *filter.NextActionBefore)
	}
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		query = query.Where("case_number ILIKE ? OR claim_description ILIKE ?", pattern, pattern)
	}
	return query
}
