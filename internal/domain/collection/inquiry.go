package collection

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/inkasso/backend/internal/domain/identity"
	"github.com/inkasso/backend/internal/domain/shared"
)

// InquiryStatus represents the lifecycle of an inquiry
type InquiryStatus string

const (
	InquiryStatusOpen     InquiryStatus = "OPEN"
	InquiryStatusResolved InquiryStatus = "RESOLVED"
)

// IsValid checks if the inquiry status is valid
func (s InquiryStatus) IsValid() bool {
	return s == InquiryStatusOpen || s == InquiryStatusResolved
}

// String returns the string representation
func (s InquiryStatus) String() string {
	return string(s)
}

const maxInquiryTextLength = 4000

// Inquiry is a question raised on a case by a client or debtor and answered
// by staff. It is its own aggregate: inquiries are created and resolved
// independently of case transitions, but visibility follows the parent case.
type Inquiry struct {
	shared.TenantAggregateRoot
	CaseID     uuid.UUID
	AuthorID   uuid.UUID
	AuthorRole identity.Role
	Question   string
	Status     InquiryStatus
	Answer     *string
	ResolvedAt *time.Time
	ResolvedBy *uuid.UUID
}

// NewInquiry opens an inquiry on a case. Only roles with the open-inquiries
// capability may author one; the question must be non-empty.
func NewInquiry(c *Case, authorID uuid.UUID, authorRole identity.Role, question string) (*Inquiry, error) {
	if authorID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_AUTHOR", "Author ID cannot be empty")
	}
	if !identity.CapabilityFor(authorRole).CanOpenInquiries {
		return nil, shared.NewDomainError(shared.CodeUnauthorizedRole,
			"Role "+authorRole.String()+" may not open inquiries")
	}
	question = strings.TrimSpace(question)
	if question == "" {
		return nil, shared.NewDomainError("INVALID_QUESTION", "Question cannot be empty")
	}
	if len(question) > maxInquiryTextLength {
		return nil, shared.NewDomainError("INVALID_QUESTION", "Question is too long")
	}

	inq := &Inquiry{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(c.TenantID),
		CaseID:              c.ID,
		AuthorID:            authorID,
		AuthorRole:          authorRole,
		Question:            question,
		Status:              InquiryStatusOpen,
	}
	inq.AddDomainEvent(NewInquiryOpenedEvent(inq))

	return inq, nil
}

// Resolve answers an open inquiry. Only roles with the resolve capability
// may resolve; a resolved inquiry stays resolved.
func (i *Inquiry) Resolve(answer string, resolverID uuid.UUID, resolverRole identity.Role, asOf time.Time) error {
	if i.Status == InquiryStatusResolved {
		return shared.NewDomainError(shared.CodeInvalidTransition, "Inquiry has already been resolved")
	}
	if !identity.CapabilityFor(resolverRole).CanResolveInquiries {
		return shared.NewDomainError(shared.CodeUnauthorizedRole,
			"Role "+resolverRole.String()+" may not resolve inquiries")
	}
	answer = strings.TrimSpace(answer)
	if answer == "" {
		return shared.NewDomainError("INVALID_ANSWER", "Answer cannot be empty")
	}
	if len(answer) > maxInquiryTextLength {
		return shared.NewDomainError("INVALID_ANSWER", "Answer is too long")
	}

	i.Status = InquiryStatusResolved
	i.Answer = &answer
	i.ResolvedAt = &asOf
	i.ResolvedBy = &resolverID
	i.IncrementVersion()
	i.UpdatedAt = asOf

	i.AddDomainEvent(NewInquiryResolvedEvent(i))

	return nil
}

// IsOpen reports whether the inquiry is still awaiting an answer
func (i *Inquiry) IsOpen() bool {
	return i.Status == InquiryStatusOpen
}
