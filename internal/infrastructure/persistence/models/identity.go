package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/inkasso/backend/internal/domain/identity"
)

// UserModel is the persistence model for the User aggregate root.
// Agent-to-creditor assignments live in their own table and are hydrated
// by the repository.
type UserModel struct {
	TenantAggregateModel
	Username       string              `gorm:"type:varchar(100);not null;uniqueIndex"`
	Email          string              `gorm:"type:varchar(200)"`
	PasswordHash   string              `gorm:"type:varchar(200);not null"`
	DisplayName    string              `gorm:"type:varchar(200)"`
	Role           identity.Role       `gorm:"type:varchar(20);not null;index"`
	Status         identity.UserStatus `gorm:"type:varchar(20);not null;default:'pending'"`
	LinkedDebtorID *uuid.UUID          `gorm:"type:uuid;index"`
	LastLoginAt    *time.Time
}

// TableName returns the table name for GORM
func (UserModel) TableName() string {
	return "users"
}

// ToDomain converts the persistence model to a domain User aggregate.
// AssignedKreditorIDs must be filled in separately for AGENT users.
func (m *UserModel) ToDomain() *identity.User {
	u := &identity.User{
		Username:            m.Username,
		Email:               m.Email,
		PasswordHash:        m.PasswordHash,
		DisplayName:         m.DisplayName,
		Role:                m.Role,
		Status:              m.Status,
		LinkedDebtorID:      m.LinkedDebtorID,
		AssignedKreditorIDs: make([]uuid.UUID, 0),
		LastLoginAt:         m.LastLoginAt,
	}
	m.PopulateTenantAggregateRoot(&u.TenantAggregateRoot)
	return u
}

// FromDomain populates the persistence model from a domain User aggregate.
func (m *UserModel) FromDomain(u *identity.User) {
	m.FromDomainTenantAggregateRoot(u.TenantAggregateRoot)
	m.Username = u.Username
	m.Email = u.Email
	m.PasswordHash = u.PasswordHash
	m.DisplayName = u.DisplayName
	m.Role = u.Role
	m.Status = u.Status
	m.LinkedDebtorID = u.LinkedDebtorID
	m.LastLoginAt = u.LastLoginAt
}

// UserModelFromDomain creates a persistence model from a domain User
func UserModelFromDomain(u *identity.User) *UserModel {
	m := &UserModel{}
	m.FromDomain(u)
	return m
}

// AgentAssignmentModel maps an AGENT user to one creditor of its portfolio.
type AgentAssignmentModel struct {
	UserID     uuid.UUID `gorm:"type:uuid;primaryKey"`
	KreditorID uuid.UUID `gorm:"type:uuid;primaryKey;index"`
	CreatedAt  time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (AgentAssignmentModel) TableName() string {
	return "agent_assignments"
}
