package collection

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/inkasso/backend/internal/domain/shared"
	"github.com/inkasso/backend/internal/domain/shared/valueobject"
)

// Case is the aggregate root of a collection case. It tracks one claim of a
// creditor (the tenant) against a debtor through the statutory dunning
// procedure. Monetary fields carry fixed 2-decimal precision; TotalAmount is
// derived and recomputed on every mutation, never edited independently.
//
// Status is only ever changed through the StateMachine; no other component
// may assign it.
type Case struct {
	shared.TenantAggregateRoot
	CaseNumber string
	DebtorID   uuid.UUID
	AgentID    *uuid.UUID

	PrincipalAmount decimal.Decimal
	Costs           decimal.Decimal
	Interest        decimal.Decimal
	AdditionalCosts decimal.Decimal
	ProcedureCosts  decimal.Decimal
	TotalAmount     decimal.Decimal
	Currency        valueobject.Currency

	InvoiceNumber string
	InvoiceDate   *time.Time
	DueDate       *time.Time
	DateOfOrigin  *time.Time // when the underlying claim arose

	Status                   CaseStatus
	NextActionDate           *time.Time
	CourtFileNumber          string
	StatuteOfLimitationsDate *time.Time

	InterestRate       *decimal.Decimal // annual percentage, nil = no interest accrual
	IsVariableInterest bool
	InterestStartDate  *time.Time
	InterestEndDate    *time.Time // nil = open-ended; ignored for variable interest
	InterestOnCosts    bool       // whether additional/procedure costs also accrue interest

	ClaimDescription       string
	PaymentAllocationNotes string

	History HistoryEntries
}

// NewCase creates a new collection case. initial must be DRAFT or NEW.
// Derived dates (next action, statute of limitations) are set by the
// state machine, not here.
func NewCase(
	tenantID uuid.UUID,
	caseNumber string,
	debtorID uuid.UUID,
	principal valueobject.Money,
	initial CaseStatus,
) (*Case, error) {
	if caseNumber == "" {
		return nil, shared.NewDomainError("INVALID_CASE_NUMBER", "Case number cannot be empty")
	}
	if len(caseNumber) > 50 {
		return nil, shared.NewDomainError("INVALID_CASE_NUMBER", "Case number cannot exceed 50 characters")
	}
	if debtorID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_DEBTOR", "Debtor ID cannot be empty")
	}
	if principal.IsNegative() {
		return nil, shared.NewDomainError(shared.CodeInvalidFinancialInput, "Principal amount cannot be negative")
	}
	if initial != CaseStatusDraft && initial != CaseStatusNew {
		return nil, shared.NewDomainError("INVALID_INITIAL_STATUS", "Cases are created in DRAFT or NEW status")
	}

	c := &Case{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		CaseNumber:          caseNumber,
		DebtorID:            debtorID,
		PrincipalAmount:     principal.Amount().Round(2),
		Costs:               decimal.Zero,
		Interest:            decimal.Zero,
		AdditionalCosts:     decimal.Zero,
		ProcedureCosts:      decimal.Zero,
		Currency:            principal.Currency(),
		Status:              initial,
		History:             HistoryEntries{},
	}
	c.recomputeTotal()

	c.AddDomainEvent(NewCaseCreatedEvent(c))

	return c, nil
}

// recomputeTotal re-derives TotalAmount from its components, rounding
// half-up at the point of summation only.
func (c *Case) recomputeTotal() {
	c.TotalAmount = c.PrincipalAmount.
		Add(c.Costs).
		Add(c.Interest).
		Add(c.AdditionalCosts).
		Add(c.ProcedureCosts).
		Round(2)
}

// SetCosts sets the cost components of the claim
func (c *Case) SetCosts(costs, additionalCosts, procedureCosts valueobject.Money) error {
	if costs.IsNegative() || additionalCosts.IsNegative() || procedureCosts.IsNegative() {
		return shared.NewDomainError(shared.CodeInvalidFinancialInput, "Cost amounts cannot be negative")
	}

	c.Costs = costs.Amount().Round(2)
	c.AdditionalCosts = additionalCosts.Amount().Round(2)
	c.ProcedureCosts = procedureCosts.Amount().Round(2)
	c.recomputeTotal()
	c.UpdatedAt = time.Now()
	c.IncrementVersion()

	return nil
}

// SetInvoice sets the invoice reference of the underlying claim
func (c *Case) SetInvoice(invoiceNumber string, invoiceDate, dueDate *time.Time) error {
	if len(invoiceNumber) > 100 {
		return shared.NewDomainError("INVALID_INVOICE_NUMBER", "Invoice number cannot exceed 100 characters")
	}
	if invoiceDate != nil && dueDate != nil && dueDate.Before(*invoiceDate) {
		return shared.NewDomainError("INVALID_DUE_DATE", "Due date cannot precede invoice date")
	}

	c.InvoiceNumber = invoiceNumber
	c.InvoiceDate = invoiceDate
	c.DueDate = dueDate
	c.UpdatedAt = time.Now()
	c.IncrementVersion()

	return nil
}

// SetDateOfOrigin records when the underlying claim arose
func (c *Case) SetDateOfOrigin(dateOfOrigin time.Time) {
	c.DateOfOrigin = &dateOfOrigin
	c.UpdatedAt = time.Now()
	c.IncrementVersion()
}

// SetInterestTerms configures interest accrual for the claim
func (c *Case) SetInterestTerms(rate decimal.Decimal, variable bool, start time.Time, end *time.Time, onCosts bool) error {
	if rate.IsNegative() {
		return shared.NewDomainError(shared.CodeInvalidFinancialInput, "Interest rate cannot be negative")
	}
	if end != nil && end.Before(start) {
		return shared.NewDomainError(shared.CodeInvalidFinancialInput, "Interest end date cannot precede interest start date")
	}

	c.InterestRate = &rate
	c.IsVariableInterest = variable
	c.InterestStartDate = &start
	c.InterestEndDate = end
	c.InterestOnCosts = onCosts
	c.UpdatedAt = time.Now()
	c.IncrementVersion()

	return nil
}

// AssignAgent assigns the case to a collection agent
func (c *Case) AssignAgent(agentID uuid.UUID) error {
	if agentID == uuid.Nil {
		return shared.NewDomainError("INVALID_AGENT", "Agent ID cannot be empty")
	}

	c.AgentID = &agentID
	c.UpdatedAt = time.Now()
	c.IncrementVersion()

	return nil
}

// SetCourtFileNumber records the court's file number once a filing exists
func (c *Case) SetCourtFileNumber(fileNumber string) error {
	if len(fileNumber) > 100 {
		return shared.NewDomainError("INVALID_COURT_FILE_NUMBER", "Court file number cannot exceed 100 characters")
	}

	c.CourtFileNumber = fileNumber
	c.UpdatedAt = time.Now()
	c.IncrementVersion()

	return nil
}

// SetClaimDescription sets the free-text claim description
func (c *Case) SetClaimDescription(description string) {
	c.ClaimDescription = description
	c.UpdatedAt = time.Now()
	c.IncrementVersion()
}

// SetPaymentAllocationNotes sets the free-text payment allocation notes
func (c *Case) SetPaymentAllocationNotes(notes string) {
	c.PaymentAllocationNotes = notes
	c.UpdatedAt = time.Now()
	c.IncrementVersion()
}

// IsTerminal returns true if the case has reached a terminal status
func (c *Case) IsTerminal() bool {
	return c.Status.IsTerminal()
}

// InterestBase returns the date interest accrual starts from: the later of
// the configured interest start date and the invoice date. Returns nil when
// no interest is configured.
func (c *Case) InterestBase() *time.Time {
	if c.InterestRate == nil || c.InterestStartDate == nil {
		return nil
	}
	start := *c.InterestStartDate
	if c.InvoiceDate != nil && c.InvoiceDate.After(start) {
		start = *c.InvoiceDate
	}
	return &start
}

// GetPrincipalMoney returns the principal as Money
func (c *Case) GetPrincipalMoney() valueobject.Money {
	m, _ := valueobject.NewMoney(c.PrincipalAmount, c.Currency)
	return m
}

// GetTotalMoney returns the derived total claim as Money
func (c *Case) GetTotalMoney() valueobject.Money {
	m, _ := valueobject.NewMoney(c.TotalAmount, c.Currency)
	return m
}

// GetInterestMoney returns the accrued interest as Money
func (c *Case) GetInterestMoney() valueobject.Money {
	m, _ := valueobject.NewMoney(c.Interest, c.Currency)
	return m
}

// Clone returns a deep copy of the case. The state machine transitions a
// clone so a rejected transition can never leave the input snapshot mutated.
func (c *Case) Clone() *Case {
	clone := *c

	clone.AgentID = clonePtr(c.AgentID)
	clone.InvoiceDate = clonePtr(c.InvoiceDate)
	clone.DueDate = clonePtr(c.DueDate)
	clone.DateOfOrigin = clonePtr(c.DateOfOrigin)
	clone.NextActionDate = clonePtr(c.NextActionDate)
	clone.StatuteOfLimitationsDate = clonePtr(c.StatuteOfLimitationsDate)
	clone.InterestRate = clonePtr(c.InterestRate)
	clone.InterestStartDate = clonePtr(c.InterestStartDate)
	clone.InterestEndDate = clonePtr(c.InterestEndDate)
	clone.CreatedBy = clonePtr(c.CreatedBy)

	clone.History = make(HistoryEntries, len(c.History))
	copy(clone.History, c.History)

	clone.ClearDomainEvents()

	return &clone
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
