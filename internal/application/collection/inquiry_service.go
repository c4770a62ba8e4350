package collection

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/inkasso/backend/internal/domain/collection"
	"github.com/inkasso/backend/internal/domain/identity"
	"github.com/inkasso/backend/internal/domain/shared"
)

// InquiryService provides application-level inquiry operations. Inquiry
// visibility always follows the parent case.
type InquiryService struct {
	inquiryRepo collection.InquiryRepository
	caseRepo    collection.CaseRepository
	now         func() time.Time
}

// InquiryServiceOption is a functional option for configuring InquiryService
type InquiryServiceOption func(*InquiryService)

// WithInquiryClock injects the time source, used by tests for determinism
func WithInquiryClock(now func() time.Time) InquiryServiceOption {
	return func(s *InquiryService) {
		s.now = now
	}
}

// NewInquiryService creates a new InquiryService
func NewInquiryService(inquiryRepo collection.InquiryRepository, caseRepo collection.CaseRepository, opts ...InquiryServiceOption) *InquiryService {
	s := &InquiryService{
		inquiryRepo: inquiryRepo,
		caseRepo:    caseRepo,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// InquiryResponse represents an inquiry in API responses
type InquiryResponse struct {
	ID         uuid.UUID  `json:"id"`
	CaseID     uuid.UUID  `json:"case_id"`
	AuthorID   uuid.UUID  `json:"author_id"`
	AuthorRole string     `json:"author_role"`
	Question   string     `json:"question"`
	Status     string     `json:"status"`
	Answer     *string    `json:"answer,omitempty"`
	ResolvedAt *time.Time `json:"resolved_at,omitempty"`
	ResolvedBy *uuid.UUID `json:"resolved_by,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

// OpenInquiryRequest carries the data for opening an inquiry on a case
type OpenInquiryRequest struct {
	Question string `json:"question" binding:"required,max=4000"`
}

// ResolveInquiryRequest carries the answer for resolving an inquiry
type ResolveInquiryRequest struct {
	Answer string `json:"answer" binding:"required,max=4000"`
}

// OpenInquiry opens an inquiry on a case the actor can see
func (s *InquiryService) OpenInquiry(ctx context.Context, actor collection.Actor, caseID uuid.UUID, req OpenInquiryRequest) (*InquiryResponse, error) {
	parent, err := s.visibleParent(ctx, actor, caseID)
	if err != nil {
		return nil, err
	}

	inq, err := collection.NewInquiry(parent, actor.UserID, actor.Role, req.Question)
	if err != nil {
		return nil, err
	}

	if err := s.inquiryRepo.Save(ctx, inq); err != nil {
		return nil, err
	}
	return toInquiryResponse(inq), nil
}

// ResolveInquiry answers an open inquiry. Only staff may resolve; the write
// is guarded by optimistic locking so two agents answering concurrently
// cannot both win.
func (s *InquiryService) ResolveInquiry(ctx context.Context, actor collection.Actor, inquiryID uuid.UUID, req ResolveInquiryRequest) (*InquiryResponse, error) {
	inq, err := s.inquiryRepo.FindByID(ctx, inquiryID)
	if err != nil {
		return nil, err
	}
	if inq == nil {
		return nil, shared.NewDomainError(shared.CodeNotFound, "Inquiry not found")
	}

	parent, err := s.visibleParent(ctx, actor, inq.CaseID)
	if err != nil {
		return nil, err
	}
	if !actor.CanSeeInquiry(inq, parent) {
		return nil, shared.NewDomainError(shared.CodeNotFound, "Inquiry not found")
	}

	expected := inq.Version
	if err := inq.Resolve(req.Answer, actor.UserID, actor.Role, s.now()); err != nil {
		return nil, err
	}

	if err := s.inquiryRepo.SaveWithLock(ctx, inq, expected); err != nil {
		return nil, err
	}
	return toInquiryResponse(inq), nil
}

// ListInquiries lists the inquiries of a case the actor can see
func (s *InquiryService) ListInquiries(ctx context.Context, actor collection.Actor, caseID uuid.UUID) ([]InquiryResponse, error) {
	if _, err := s.visibleParent(ctx, actor, caseID); err != nil {
		return nil, err
	}

	inquiries, err := s.inquiryRepo.FindByCaseID(ctx, caseID)
	if err != nil {
		return nil, err
	}

	responses := make([]InquiryResponse, len(inquiries))
	for i, inq := range inquiries {
		responses[i] = *toInquiryResponse(inq)
	}
	return responses, nil
}

// ListOpenInquiries lists all open inquiries of a creditor, for the staff
// work queue
func (s *InquiryService) ListOpenInquiries(ctx context.Context, actor collection.Actor, kreditorID uuid.UUID) ([]InquiryResponse, error) {
	allowed := actor.Role == identity.RoleAdmin
	if actor.Role == identity.RoleAgent {
		for _, kid := range actor.AssignedKreditorIDs {
			if kid == kreditorID {
				allowed = true
				break
			}
		}
	}
	if !allowed {
		return nil, shared.NewDomainError(shared.CodeNotFound, "Creditor not found")
	}

	inquiries, err := s.inquiryRepo.FindOpenByTenant(ctx, kreditorID)
	if err != nil {
		return nil, err
	}

	responses := make([]InquiryResponse, len(inquiries))
	for i, inq := range inquiries {
		responses[i] = *toInquiryResponse(inq)
	}
	return responses, nil
}

func (s *InquiryService) visibleParent(ctx context.Context, actor collection.Actor, caseID uuid.UUID) (*collection.Case, error) {
	parent, err := s.caseRepo.FindByID(ctx, caseID)
	if err != nil {
		return nil, err
	}
	if parent == nil || !actor.CanSeeCase(parent) {
		return nil, shared.NewDomainError(shared.CodeNotFound, "Case not found")
	}
	return parent, nil
}

func toInquiryResponse(i *collection.Inquiry) *InquiryResponse {
	return &InquiryResponse{
		ID:         i.ID,
		CaseID:     i.CaseID,
		AuthorID:   i.AuthorID,
		AuthorRole: i.AuthorRole.String(),
		Question:   i.Question,
		Status:     i.Status.String(),
		Answer:     i.Answer,
		ResolvedAt: i.ResolvedAt,
		ResolvedBy: i.ResolvedBy,
		CreatedAt:  i.CreatedAt,
		UpdatedAt:  i.UpdatedAt,
	}
}
