package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/inkasso/backend/internal/domain/collection"
	"github.com/inkasso/backend/internal/domain/identity"
	"github.com/inkasso/backend/internal/domain/shared/valueobject"
)

// CaseModel is the persistence model for the Case aggregate root.
// TenantID is the creditor the case is collected for.
type CaseModel struct {
	TenantAggregateModel
	CaseNumber string     `gorm:"type:varchar(50);not null;uniqueIndex:idx_cases_tenant_number,priority:2"`
	DebtorID   uuid.UUID  `gorm:"type:uuid;not null;index"`
	AgentID    *uuid.UUID `gorm:"type:uuid;index"`

	PrincipalAmount decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	Costs           decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	Interest        decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	AdditionalCosts decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	ProcedureCosts  decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	TotalAmount     decimal.Decimal `gorm:"type:decimal(18,2);not null;index"`
	Currency        string          `gorm:"type:varchar(3);not null;default:'EUR'"`

	InvoiceNumber string     `gorm:"type:varchar(100)"`
	InvoiceDate   *time.Time `gorm:"type:date"`
	DueDate       *time.Time `gorm:"type:date"`
	DateOfOrigin  *time.Time `gorm:"type:date"`

	Status                   collection.CaseStatus `gorm:"type:varchar(30);not null;index"`
	NextActionDate           *time.Time            `gorm:"type:date;index"`
	CourtFileNumber          string                `gorm:"type:varchar(100)"`
	StatuteOfLimitationsDate *time.Time            `gorm:"type:date"`

	InterestRate       *decimal.Decimal `gorm:"type:decimal(8,4)"`
	IsVariableInterest bool             `gorm:"not null;default:false"`
	InterestStartDate  *time.Time       `gorm:"type:date"`
	InterestEndDate    *time.Time       `gorm:"type:date"`
	InterestOnCosts    bool             `gorm:"not null;default:false"`

	ClaimDescription       string `gorm:"type:text"`
	PaymentAllocationNotes string `gorm:"type:text"`

	History collection.HistoryEntries `gorm:"type:jsonb;default:'[]'"`
}

// TableName returns the table name for GORM
func (CaseModel) TableName() string {
	return "cases"
}

// ToDomain converts the persistence model to a domain Case aggregate.
func (m *CaseModel) ToDomain() *collection.Case {
	c := &collection.Case{
		CaseNumber:               m.CaseNumber,
		DebtorID:                 m.DebtorID,
		AgentID:                  m.AgentID,
		PrincipalAmount:          m.PrincipalAmount,
		Costs:                    m.Costs,
		Interest:                 m.Interest,
		AdditionalCosts:          m.AdditionalCosts,
		ProcedureCosts:           m.ProcedureCosts,
		TotalAmount:              m.TotalAmount,
		Currency:                 valueobject.Currency(m.Currency),
		InvoiceNumber:            m.InvoiceNumber,
		InvoiceDate:              m.InvoiceDate,
		DueDate:                  m.DueDate,
		DateOfOrigin:             m.DateOfOrigin,
		Status:                   m.Status,
		NextActionDate:           m.NextActionDate,
		CourtFileNumber:          m.CourtFileNumber,
		StatuteOfLimitationsDate: m.StatuteOfLimitationsDate,
		InterestRate:             m.InterestRate,
		IsVariableInterest:       m.IsVariableInterest,
		InterestStartDate:        m.InterestStartDate,
		InterestEndDate:          m.InterestEndDate,
		InterestOnCosts:          m.InterestOnCosts,
		ClaimDescription:         m.ClaimDescription,
		PaymentAllocationNotes:   m.PaymentAllocationNotes,
		History:                  m.History,
	}
	m.PopulateTenantAggregateRoot(&c.TenantAggregateRoot)
	return c
}

// FromDomain populates the persistence model from a domain Case aggregate.
func (m *CaseModel) FromDomain(c *collection.Case) {
	m.FromDomainTenantAggregateRoot(c.TenantAggregateRoot)
	m.CaseNumber = c.CaseNumber
	m.DebtorID = c.DebtorID
	m.AgentID = c.AgentID
	m.PrincipalAmount = c.PrincipalAmount
	m.Costs = c.Costs
	m.Interest = c.Interest
	m.AdditionalCosts = c.AdditionalCosts
	m.ProcedureCosts = c.ProcedureCosts
	m.TotalAmount = c.TotalAmount
	m.Currency = string(c.Currency)
	m.InvoiceNumber = c.InvoiceNumber
	m.InvoiceDate = c.InvoiceDate
	m.DueDate = c.DueDate
	m.DateOfOrigin = c.DateOfOrigin
	m.Status = c.Status
	m.NextActionDate = c.NextActionDate
	m.CourtFileNumber = c.CourtFileNumber
	m.StatuteOfLimitationsDate = c.StatuteOfLimitationsDate
	m.InterestRate = c.InterestRate
	m.IsVariableInterest = c.IsVariableInterest
	m.InterestStartDate = c.InterestStartDate
	m.InterestEndDate = c.InterestEndDate
	m.InterestOnCosts = c.InterestOnCosts
	m.ClaimDescription = c.ClaimDescription
	m.PaymentAllocationNotes = c.PaymentAllocationNotes
	m.History = c.History
}

// CaseModelFromDomain creates a persistence model from a domain Case
func CaseModelFromDomain(c *collection.Case) *CaseModel {
	m := &CaseModel{}
	m.FromDomain(c)
	return m
}

// InquiryModel is the persistence model for the Inquiry aggregate root.
type InquiryModel struct {
	TenantAggregateModel
	CaseID     uuid.UUID                `gorm:"type:uuid;not null;index"`
	AuthorID   uuid.UUID                `gorm:"type:uuid;not null;index"`
	AuthorRole identity.Role            `gorm:"type:varchar(20);not null"`
	Question   string                   `gorm:"type:text;not null"`
	Status     collection.InquiryStatus `gorm:"type:varchar(20);not null;index"`
	Answer     *string                  `gorm:"type:text"`
	ResolvedAt *time.Time
	ResolvedBy *uuid.UUID `gorm:"type:uuid"`
}

// TableName returns the table name for GORM
func (InquiryModel) TableName() string {
	return "inquiries"
}

// ToDomain converts the persistence model to a domain Inquiry aggregate.
func (m *InquiryModel) ToDomain() *collection.Inquiry {
	i := &collection.Inquiry{
		CaseID:     m.CaseID,
		AuthorID:   m.AuthorID,
		AuthorRole: m.AuthorRole,
		Question:   m.Question,
		Status:     m.Status,
		Answer:     m.Answer,
		ResolvedAt: m.ResolvedAt,
		ResolvedBy: m.ResolvedBy,
	}
	m.PopulateTenantAggregateRoot(&i.TenantAggregateRoot)
	return i
}

// FromDomain populates the persistence model from a domain Inquiry aggregate.
func (m *InquiryModel) FromDomain(i *collection.Inquiry) {
	m.FromDomainTenantAggregateRoot(i.TenantAggregateRoot)
	m.CaseID = i.CaseID
	m.AuthorID = i.AuthorID
	m.AuthorRole = i.AuthorRole
	m.Question = i.Question
	m.Status = i.Status
	m.Answer = i.Answer
	m.ResolvedAt = i.ResolvedAt
	m.ResolvedBy = i.ResolvedBy
}

// InquiryModelFromDomain creates a persistence model from a domain Inquiry
func InquiryModelFromDomain(i *collection.Inquiry) *InquiryModel {
	m := &InquiryModel{}
	m.FromDomain(i)
	return m
}
