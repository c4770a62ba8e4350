package persistence

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/inkasso/backend/internal/domain/identity"
	"github.com/inkasso/backend/internal/domain/shared"
	"github.com/inkasso/backend/internal/infrastructure/persistence/models"
)

// GormUserRepository implements identity.UserRepository using GORM.
// AGENT users get their creditor portfolio hydrated from the
// agent_assignments table on every read.
type GormUserRepository struct {
	db *gorm.DB
}

// NewGormUserRepository creates a new GormUserRepository
func NewGormUserRepository(db *gorm.DB) *GormUserRepository {
	return &GormUserRepository{db: db}
}

// FindByID finds a user by ID
func (r *GormUserRepository) FindByID(ctx context.Context, id uuid.UUID) (*identity.User, error) {
	var model models.UserModel
	if err := r.db.WithContext(ctx).
		First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return r.hydrate(ctx, &model)
}

// FindByUsername finds a user by username
func (r *GormUserRepository) FindByUsername(ctx context.Context, username string) (*identity.User, error) {
	var model models.UserModel
	if err := r.db.WithContext(ctx).
		Where("username = ?", strings.ToLower(strings.TrimSpace(username))).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return r.hydrate(ctx, &model)
}

// FindByRole finds all users with the given role
func (r *GormUserRepository) FindByRole(ctx context.Context, role identity.Role) ([]identity.User, error) {
	var userModels []models.UserModel
	if err := r.db.WithContext(ctx).
		Where("role = ?", role).
		Order("username ASC").
		Find(&userModels).Error; err != nil {
		return nil, err
	}

	users := make([]identity.User, len(userModels))
	for i := range userModels {
		u, err := r.hydrate(ctx, &userModels[i])
		if err != nil {
			return nil, err
		}
		users[i] = *u
	}
	return users, nil
}

// Save creates or updates a user together with its assignment rows
func (r *GormUserRepository) Save(ctx context.Context, user *identity.User) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		model := models.UserModelFromDomain(user)
		if err := tx.Save(model).Error; err != nil {
			return err
		}
		return r.syncAssignments(tx, user)
	})
}

// SaveWithLock saves with optimistic locking. The user's Version has already
// been incremented by the domain, so the stored row must carry Version-1.
func (r *GormUserRepository) SaveWithLock(ctx context.Context, user *identity.User) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		model := models.UserModelFromDomain(user)
		result := tx.
			Model(model).
			Where("id = ? AND version = ?", user.ID, user.Version-1).
			Select("*").
			Updates(model)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.NewDomainError(shared.CodeConcurrencyConflict, "User was modified by another transaction")
		}
		return r.syncAssignments(tx, user)
	})
}

// hydrate converts a model and, for agents, loads the portfolio
func (r *GormUserRepository) hydrate(ctx context.Context, model *models.UserModel) (*identity.User, error) {
	user := model.ToDomain()
	if user.Role != identity.RoleAgent {
		return user, nil
	}

	var assignments []models.AgentAssignmentModel
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", user.ID).
		Order("created_at ASC").
		Find(&assignments).Error; err != nil {
		return nil, err
	}
	for _, a := range assignments {
		user.AssignedKreditorIDs = append(user.AssignedKreditorIDs, a.KreditorID)
	}
	return user, nil
}

// syncAssignments replaces the assignment rows with the aggregate's set
func (r *GormUserRepository) syncAssignments(tx *gorm.DB, user *identity.User) error {
	if user.Role != identity.RoleAgent {
		return nil
	}
	if err := tx.
		Where("user_id = ?", user.ID).
		Delete(&models.AgentAssignmentModel{}).Error; err != nil {
		return err
	}
	for _, kreditorID := range user.AssignedKreditorIDs {
		row := models.AgentAssignmentModel{UserID: user.ID, KreditorID: kreditorID}
		if err := tx.Create(&row).Error; err != nil {
			return err
		}
	}
	return nil
}
