package collection

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/inkasso/backend/internal/domain/shared"
)

// Event types for the collection domain
const (
	EventTypeCaseCreated      = "collection.case.created"
	EventTypeCaseTransitioned = "collection.case.transitioned"
)

// CaseCreatedEvent is raised when a new case is created
type CaseCreatedEvent struct {
	shared.BaseDomainEvent
	CaseNumber      string          `json:"case_number"`
	DebtorID        uuid.UUID       `json:"debtor_id"`
	PrincipalAmount decimal.Decimal `json:"principal_amount"`
	Status          CaseStatus      `json:"status"`
}

// NewCaseCreatedEvent creates a new CaseCreatedEvent
func NewCaseCreatedEvent(c *Case) *CaseCreatedEvent {
	return &CaseCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeCaseCreated, "Case", c.ID, c.TenantID),
		CaseNumber:      c.CaseNumber,
		DebtorID:        c.DebtorID,
		PrincipalAmount: c.PrincipalAmount,
		Status:          c.Status,
	}
}

// CaseTransitionedEvent is raised when a case moves to a new status
type CaseTransitionedEvent struct {
	shared.BaseDomainEvent
	CaseNumber  string           `json:"case_number"`
	FromStatus  CaseStatus       `json:"from_status"`
	ToStatus    CaseStatus       `json:"to_status"`
	Reason      TransitionReason `json:"reason,omitempty"`
	ActorID     *uuid.UUID       `json:"actor_id,omitempty"`
	TotalAmount decimal.Decimal  `json:"total_amount"`
}

// NewCaseTransitionedEvent creates a new CaseTransitionedEvent
func NewCaseTransitionedEvent(c *Case, from CaseStatus, reason TransitionReason, actorID *uuid.UUID) *CaseTransitionedEvent {
	return &CaseTransitionedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeCaseTransitioned, "Case", c.ID, c.TenantID),
		CaseNumber:      c.CaseNumber,
		FromStatus:      from,
		ToStatus:        c.Status,
		Reason:          reason,
		ActorID:         actorID,
		TotalAmount:     c.TotalAmount,
	}
}
