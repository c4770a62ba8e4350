package collection

import (
	"github.com/google/uuid"

	"github.com/inkasso/backend/internal/domain/identity"
	"github.com/inkasso/backend/internal/domain/shared"
)

// Event types for inquiries
const (
	EventTypeInquiryOpened   = "collection.inquiry.opened"
	EventTypeInquiryResolved = "collection.inquiry.resolved"
)

// InquiryOpenedEvent is raised when an inquiry is opened on a case
type InquiryOpenedEvent struct {
	shared.BaseDomainEvent
	CaseID     uuid.UUID     `json:"case_id"`
	AuthorID   uuid.UUID     `json:"author_id"`
	AuthorRole identity.Role `json:"author_role"`
}

// NewInquiryOpenedEvent creates a new InquiryOpenedEvent
func NewInquiryOpenedEvent(i *Inquiry) *InquiryOpenedEvent {
	return &InquiryOpenedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeInquiryOpened, "Inquiry", i.ID, i.TenantID),
		CaseID:          i.CaseID,
		AuthorID:        i.AuthorID,
		AuthorRole:      i.AuthorRole,
	}
}

// InquiryResolvedEvent is raised when an inquiry is answered
type InquiryResolvedEvent struct {
	shared.BaseDomainEvent
	CaseID     uuid.UUID  `json:"case_id"`
	ResolvedBy *uuid.UUID `json:"resolved_by,omitempty"`
}

// NewInquiryResolvedEvent creates a new InquiryResolvedEvent
func NewInquiryResolvedEvent(i *Inquiry) *InquiryResolvedEvent {
	return &InquiryResolvedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeInquiryResolved, "Inquiry", i.ID, i.TenantID),
		CaseID:          i.CaseID,
		ResolvedBy:      i.ResolvedBy,
	}
}
