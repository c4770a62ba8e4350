package collection

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/inkasso/backend/internal/domain/collection"
	"github.com/inkasso/backend/internal/domain/identity"
	"github.com/inkasso/backend/internal/domain/shared"
	"github.com/inkasso/backend/internal/domain/shared/valueobject"
)

// CaseService provides application-level case operations. All reads and
// writes are scoped through the acting user: a case the actor may not see
// is reported as not found, never as forbidden.
type CaseService struct {
	caseRepo     collection.CaseRepository
	stateMachine *collection.StateMachine
	now          func() time.Time
}

// CaseServiceOption is a functional option for configuring CaseService
type CaseServiceOption func(*CaseService)

// WithStateMachine injects a custom state machine (rate lookup, policy)
func WithStateMachine(sm *collection.StateMachine) CaseServiceOption {
	return func(s *CaseService) {
		s.stateMachine = sm
	}
}

// WithClock injects the time source, used by tests for determinism
func WithClock(now func() time.Time) CaseServiceOption {
	return func(s *CaseService) {
		s.now = now
	}
}

// NewCaseService creates a new CaseService
func NewCaseService(caseRepo collection.CaseRepository, opts ...CaseServiceOption) *CaseService {
	s := &CaseService{
		caseRepo:     caseRepo,
		stateMachine: collection.NewStateMachine(nil, nil),
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CaseResponse represents a collection case in API responses
type CaseResponse struct {
	ID                       uuid.UUID              `json:"id"`
	KreditorID               uuid.UUID              `json:"kreditor_id"`
	CaseNumber               string                 `json:"case_number"`
	DebtorID                 uuid.UUID              `json:"debtor_id"`
	AgentID                  *uuid.UUID             `json:"agent_id,omitempty"`
	PrincipalAmount          decimal.Decimal        `json:"principal_amount"`
	Costs                    decimal.Decimal        `json:"costs"`
	Interest                 decimal.Decimal        `json:"interest"`
	AdditionalCosts          decimal.Decimal        `json:"additional_costs"`
	ProcedureCosts           decimal.Decimal        `json:"procedure_costs"`
	TotalAmount              decimal.Decimal        `json:"total_amount"`
	Currency                 string                 `json:"currency"`
	InvoiceNumber            string                 `json:"invoice_number,omitempty"`
	InvoiceDate              *time.Time             `json:"invoice_date,omitempty"`
	DueDate                  *time.Time             `json:"due_date,omitempty"`
	DateOfOrigin             *time.Time             `json:"date_of_origin,omitempty"`
	Status                   string                 `json:"status"`
	NextActionDate           *time.Time             `json:"next_action_date,omitempty"`
	CourtFileNumber          string                 `json:"court_file_number,omitempty"`
	StatuteOfLimitationsDate *time.Time             `json:"statute_of_limitations_date,omitempty"`
	InterestRate             *decimal.Decimal       `json:"interest_rate,omitempty"`
	IsVariableInterest       bool                   `json:"is_variable_interest"`
	InterestStartDate        *time.Time             `json:"interest_start_date,omitempty"`
	InterestEndDate          *time.Time             `json:"interest_end_date,omitempty"`
	InterestOnCosts          bool                   `json:"interest_on_costs"`
	ClaimDescription         string                 `json:"claim_description,omitempty"`
	PaymentAllocationNotes   string                 `json:"payment_allocation_notes,omitempty"`
	History                  []HistoryEntryResponse `json:"history,omitempty"`
	CreatedAt                time.Time              `json:"created_at"`
	UpdatedAt                time.Time              `json:"updated_at"`
	Version                  int                    `json:"version"`
}

// HistoryEntryResponse represents one audit-trail entry in API responses
type HistoryEntryResponse struct {
	ID         uuid.UUID  `json:"id"`
	Action     string     `json:"action"`
	ActorID    *uuid.UUID `json:"actor_id,omitempty"`
	ActorRole  string     `json:"actor_role"`
	FromStatus string     `json:"from_status,omitempty"`
	ToStatus   string     `json:"to_status,omitempty"`
	Reason     string     `json:"reason,omitempty"`
	Note       string     `json:"note,omitempty"`
	OccurredAt time.Time  `json:"occurred_at"`
}

// CreateCaseRequest carries the data for opening a new case
type CreateCaseRequest struct {
	CaseNumber       string           `json:"case_number" binding:"required,max=50"`
	DebtorID         uuid.UUID        `json:"debtor_id" binding:"required"`
	PrincipalAmount  decimal.Decimal  `json:"principal_amount" binding:"required"`
	InitialStatus    string           `json:"initial_status"`
	InvoiceNumber    string           `json:"invoice_number" binding:"max=100"`
	InvoiceDate      *time.Time       `json:"invoice_date"`
	DueDate          *time.Time       `json:"due_date"`
	DateOfOrigin     *time.Time       `json:"date_of_origin"`
	InterestRate     *decimal.Decimal `json:"interest_rate"`
	VariableInterest bool             `json:"is_variable_interest"`
	InterestStart    *time.Time       `json:"interest_start_date"`
	InterestEnd      *time.Time       `json:"interest_end_date"`
	InterestOnCosts  bool             `json:"interest_on_costs"`
	ClaimDescription string           `json:"claim_description"`
}

// UpdateCaseCostsRequest carries cost component updates
type UpdateCaseCostsRequest struct {
	Costs           decimal.Decimal `json:"costs" binding:"required"`
	AdditionalCosts decimal.Decimal `json:"additional_costs"`
	ProcedureCosts  decimal.Decimal `json:"procedure_costs"`
}

// TransitionCaseRequest carries a status transition command
type TransitionCaseRequest struct {
	TargetStatus string `json:"target_status" binding:"required,casestatus"`
	Reason       string `json:"reason"`
	Note         string `json:"note" binding:"max=2000"`
}

// CaseListFilter defines filtering options for case list queries
type CaseListFilter struct {
	Status           string           `form:"status"`
	DebtorID         *uuid.UUID       `form:"debtor_id"`
	AgentID          *uuid.UUID       `form:"agent_id"`
	MinAmount        *decimal.Decimal `form:"min_amount"`
	MaxAmount        *decimal.Decimal `form:"max_amount"`
	NextActionBefore *time.Time       `form:"next_action_before"`
	Search           string           `form:"search"`
	Page             int              `form:"page"`
	PageSize         int              `form:"page_size"`
}

// CreateCase opens a new collection case for the actor's creditor. Only
// staff may create cases; clients create them for their own creditor.
func (s *CaseService) CreateCase(ctx context.Context, actor collection.Actor, kreditorID uuid.UUID, req CreateCaseRequest) (*CaseResponse, error) {
	switch actor.Role {
	case identity.RoleAdmin, identity.RoleAgent:
	case identity.RoleClient:
		if actor.KreditorID == nil || *actor.KreditorID != kreditorID {
			return nil, shared.NewDomainError(shared.CodeUnauthorizedRole, "Clients may only create cases for their own creditor")
		}
	default:
		return nil, shared.NewDomainError(shared.CodeUnauthorizedRole, "Role "+actor.Role.String()+" may not create cases")
	}

	existing, err := s.caseRepo.FindByCaseNumber(ctx, kreditorID, req.CaseNumber)
	if err != nil && !shared.IsDomainErrorWithCode(err, shared.CodeNotFound) {
		return nil, err
	}
	if existing != nil {
		return nil, shared.NewDomainError("DUPLICATE_CASE_NUMBER", "Case number already exists for this creditor")
	}

	principal := valueobject.NewMoneyEUR(req.PrincipalAmount)

	initial := collection.CaseStatusNew
	if req.InitialStatus != "" {
		initial = collection.CaseStatus(req.InitialStatus)
	}

	c, err := collection.NewCase(kreditorID, req.CaseNumber, req.DebtorID, principal, initial)
	if err != nil {
		return nil, err
	}
	c.SetCreatedBy(actor.UserID)

	if req.InvoiceNumber != "" || req.InvoiceDate != nil || req.DueDate != nil {
		if err := c.SetInvoice(req.InvoiceNumber, req.InvoiceDate, req.DueDate); err != nil {
			return nil, err
		}
	}
	if req.DateOfOrigin != nil {
		c.SetDateOfOrigin(*req.DateOfOrigin)
	}
	if req.InterestRate != nil && req.InterestStart != nil {
		if err := c.SetInterestTerms(*req.InterestRate, req.VariableInterest, *req.InterestStart, req.InterestEnd, req.InterestOnCosts); err != nil {
			return nil, err
		}
	}
	if req.ClaimDescription != "" {
		c.SetClaimDescription(req.ClaimDescription)
	}

	if err := s.caseRepo.Save(ctx, c); err != nil {
		return nil, err
	}

	return toCaseResponse(c), nil
}

// GetCase returns a single case if the actor may see it
func (s *CaseService) GetCase(ctx context.Context, actor collection.Actor, id uuid.UUID) (*CaseResponse, error) {
	c, err := s.visibleCase(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	return toCaseResponse(c), nil
}

// ListCases lists the cases visible to the actor, optionally narrowed by
// filter. Scoping is pushed into the query; an unscoped role sees nothing.
func (s *CaseService) ListCases(ctx context.Context, actor collection.Actor, filter CaseListFilter) ([]CaseResponse, int64, error) {
	domainFilter := collection.CaseFilter{
		DebtorID:         filter.DebtorID,
		AgentID:          filter.AgentID,
		MinAmount:        filter.MinAmount,
		MaxAmount:        filter.MaxAmount,
		NextActionBefore: filter.NextActionBefore,
		Search:           filter.Search,
		Page:             filter.Page,
		PageSize:         filter.PageSize,
	}
	if filter.Status != "" {
		status := collection.CaseStatus(filter.Status)
		if !status.IsValid() {
			return nil, 0, shared.NewDomainError("INVALID_STATUS", "Unknown case status "+filter.Status)
		}
		domainFilter.Status = &status
	}

	switch actor.Role {
	case identity.RoleAdmin:
	case identity.RoleAgent:
		if len(actor.AssignedKreditorIDs) == 0 {
			return []CaseResponse{}, 0, nil
		}
		domainFilter.KreditorIDs = actor.AssignedKreditorIDs
		// Agents see only their own assigned cases within the portfolio.
		agentID := actor.UserID
		domainFilter.AgentID = &agentID
	case identity.RoleClient:
		if actor.KreditorID == nil {
			return []CaseResponse{}, 0, nil
		}
		domainFilter.KreditorID = actor.KreditorID
	case identity.RoleDebtor:
		if actor.LinkedDebtorID == nil {
			return []CaseResponse{}, 0, nil
		}
		domainFilter.DebtorID = actor.LinkedDebtorID
	default:
		return []CaseResponse{}, 0, nil
	}

	cases, total, err := s.caseRepo.FindAll(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	responses := make([]CaseResponse, len(cases))
	for i, c := range cases {
		responses[i] = *toCaseResponse(c)
	}
	return responses, total, nil
}

// TransitionCase moves a case to a new status on behalf of the actor.
// The write is guarded by optimistic locking: a concurrent transition on
// the same snapshot fails with CONCURRENCY_CONFLICT and is never merged.
func (s *CaseService) TransitionCase(ctx context.Context, actor collection.Actor, id uuid.UUID, req TransitionCaseRequest) (*CaseResponse, error) {
	c, err := s.visibleCase(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	target := collection.CaseStatus(req.TargetStatus)
	reason := collection.TransitionReason(req.Reason)
	actorID := actor.UserID

	next, err := s.stateMachine.Transition(c, target, actor.Role, &actorID, reason, s.now())
	if err != nil {
		return nil, err
	}
	if req.Note != "" {
		next.History = append(next.History,
			collection.NewNoteHistoryEntry(&actorID, actor.Role, req.Note, s.now()))
	}

	if err := s.caseRepo.SaveWithLock(ctx, next, c.Version); err != nil {
		return nil, err
	}
	return toCaseResponse(next), nil
}

// RecomputeFinancials refreshes accrued interest and the derived dates of
// a case as of now without changing its status
func (s *CaseService) RecomputeFinancials(ctx context.Context, actor collection.Actor, id uuid.UUID) (*CaseResponse, error) {
	c, err := s.visibleCase(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if actor.Role != identity.RoleAdmin && actor.Role != identity.RoleAgent {
		return nil, shared.NewDomainError(shared.CodeUnauthorizedRole, "Only staff may recompute case financials")
	}

	next, err := s.stateMachine.Recompute(c, s.now())
	if err != nil {
		return nil, err
	}
	next.IncrementVersion()

	if err := s.caseRepo.SaveWithLock(ctx, next, c.Version); err != nil {
		return nil, err
	}
	return toCaseResponse(next), nil
}

// UpdateCaseCosts replaces the cost components of a case
func (s *CaseService) UpdateCaseCosts(ctx context.Context, actor collection.Actor, id uuid.UUID, req UpdateCaseCostsRequest) (*CaseResponse, error) {
	c, err := s.visibleCase(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if actor.Role != identity.RoleAdmin && actor.Role != identity.RoleAgent {
		return nil, shared.NewDomainError(shared.CodeUnauthorizedRole, "Only staff may update case costs")
	}

	expected := c.Version
	if err := c.SetCosts(
		valueobject.NewMoneyEUR(req.Costs),
		valueobject.NewMoneyEUR(req.AdditionalCosts),
		valueobject.NewMoneyEUR(req.ProcedureCosts),
	); err != nil {
		return nil, err
	}

	if err := s.caseRepo.SaveWithLock(ctx, c, expected); err != nil {
		return nil, err
	}
	return toCaseResponse(c), nil
}

// AddCaseNote appends a free-text note to the case audit trail
func (s *CaseService) AddCaseNote(ctx context.Context, actor collection.Actor, id uuid.UUID, note string) (*CaseResponse, error) {
	if note == "" {
		return nil, shared.NewDomainError("INVALID_NOTE", "Note cannot be empty")
	}
	c, err := s.visibleCase(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	expected := c.Version
	actorID := actor.UserID
	c.History = append(c.History, collection.NewNoteHistoryEntry(&actorID, actor.Role, note, s.now()))
	c.IncrementVersion()

	if err := s.caseRepo.SaveWithLock(ctx, c, expected); err != nil {
		return nil, err
	}
	return toCaseResponse(c), nil
}

// visibleCase loads a case and applies actor scoping. Invisible cases are
// indistinguishable from missing ones.
func (s *CaseService) visibleCase(ctx context.Context, actor collection.Actor, id uuid.UUID) (*collection.Case, error) {
	c, err := s.caseRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if c == nil || !actor.CanSeeCase(c) {
		return nil, shared.NewDomainError(shared.CodeNotFound, "Case not found")
	}
	return c, nil
}

func toCaseResponse(c *collection.Case) *CaseResponse {
	history := make([]HistoryEntryResponse, len(c.History))
	for i, h := range c.History {
		history[i] = HistoryEntryResponse{
			ID:         h.ID,
			Action:     h.Action,
			ActorID:    h.ActorID,
			ActorRole:  h.ActorRole.String(),
			FromStatus: h.FromStatus.String(),
			ToStatus:   h.ToStatus.String(),
			Reason:     string(h.Reason),
			Note:       h.Note,
			OccurredAt: h.OccurredAt,
		}
	}

	return &CaseResponse{
		ID:                       c.ID,
		KreditorID:               c.TenantID,
		CaseNumber:               c.CaseNumber,
		DebtorID:                 c.DebtorID,
		AgentID:                  c.AgentID,
		PrincipalAmount:          c.PrincipalAmount,
		Costs:                    c.Costs,
		Interest:                 c.Interest,
		AdditionalCosts:          c.AdditionalCosts,
		ProcedureCosts:           c.ProcedureCosts,
		TotalAmount:              c.TotalAmount,
		Currency:                 string(c.Currency),
		InvoiceNumber:            c.InvoiceNumber,
		InvoiceDate:              c.InvoiceDate,
		DueDate:                  c.DueDate,
		DateOfOrigin:             c.DateOfOrigin,
		Status:                   c.Status.String(),
		NextActionDate:           c.NextActionDate,
		CourtFileNumber:          c.CourtFileNumber,
		StatuteOfLimitationsDate: c.StatuteOfLimitationsDate,
		InterestRate:             c.InterestRate,
		IsVariableInterest:       c.IsVariableInterest,
		InterestStartDate:        c.InterestStartDate,
		InterestEndDate:          c.InterestEndDate,
		InterestOnCosts:          c.InterestOnCosts,
		ClaimDescription:         c.ClaimDescription,
		PaymentAllocationNotes:   c.PaymentAllocationNotes,
		History:                  history,
		CreatedAt:                c.CreatedAt,
		UpdatedAt:                c.UpdatedAt,
		Version:                  c.Version,
	}
}
