package collection

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CaseFilter narrows case queries. Nil fields are ignored. Amount bounds
// apply to the derived total amount.
type CaseFilter struct {
	Status           *CaseStatus
	KreditorID       *uuid.UUID
	KreditorIDs      []uuid.UUID // portfolio scoping; ignored when empty
	DebtorID         *uuid.UUID
	AgentID          *uuid.UUID
	MinAmount        *decimal.Decimal
	MaxAmount        *decimal.Decimal
	NextActionBefore *time.Time
	Search           string
	Page             int
	PageSize         int
}

// CaseRepository persists collection cases
type CaseRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Case, error)
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*Case, error)
	FindByCaseNumber(ctx context.Context, tenantID uuid.UUID, caseNumber string) (*Case, error)
	FindAll(ctx context.Context, filter CaseFilter) ([]*Case, int64, error)
	Save(ctx context.Context, c *Case) error
	// SaveWithLock persists the case only if the stored version matches
	// expectedVersion, returning CONCURRENCY_CONFLICT otherwise.
	SaveWithLock(ctx context.Context, c *Case, expectedVersion int) error
}

// InquiryRepository persists case inquiries
type InquiryRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Inquiry, error)
	FindByCaseID(ctx context.Context, caseID uuid.UUID) ([]*Inquiry, error)
	FindOpenByTenant(ctx context.Context, tenantID uuid.UUID) ([]*Inquiry, error)
	Save(ctx context.Context, i *Inquiry) error
	SaveWithLock(ctx context.Context, i *Inquiry, expectedVersion int) error
}
