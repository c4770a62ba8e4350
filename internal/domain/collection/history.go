package collection

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/inkasso/backend/internal/domain/identity"
)

// HistoryEntry records one action on a case for the audit trail.
// It is a value object within the Case aggregate, stored as JSONB.
type HistoryEntry struct {
	ID         uuid.UUID        `json:"id"`
	Action     string           `json:"action"`
	ActorID    *uuid.UUID       `json:"actor_id,omitempty"`
	ActorRole  identity.Role    `json:"actor_role"`
	FromStatus CaseStatus       `json:"from_status,omitempty"`
	ToStatus   CaseStatus       `json:"to_status,omitempty"`
	Reason     TransitionReason `json:"reason,omitempty"`
	Note       string           `json:"note,omitempty"`
	OccurredAt time.Time        `json:"occurred_at"`
}

// HistoryEntries is a slice of HistoryEntry that implements GORM Scanner/Valuer
// for JSONB storage
type HistoryEntries []HistoryEntry

// Value implements driver.Valuer interface for GORM to store as JSONB
func (h HistoryEntries) Value() (driver.Value, error) {
	if h == nil {
		return "[]", nil
	}
	return json.Marshal(h)
}

// Scan implements sql.Scanner interface for GORM to read from JSONB
func (h *HistoryEntries) Scan(value interface{}) error {
	if value == nil {
		*h = HistoryEntries{}
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return errors.New("failed to scan HistoryEntries: unsupported type")
	}

	if len(bytes) == 0 {
		*h = HistoryEntries{}
		return nil
	}

	return json.Unmarshal(bytes, h)
}

// NewTransitionHistoryEntry creates the audit entry for a status transition
func NewTransitionHistoryEntry(actorID *uuid.UUID, actorRole identity.Role, from, to CaseStatus, reason TransitionReason, occurredAt time.Time) HistoryEntry {
	return HistoryEntry{
		ID:         uuid.New(),
		Action:     "STATUS_TRANSITION",
		ActorID:    actorID,
		ActorRole:  actorRole,
		FromStatus: from,
		ToStatus:   to,
		Reason:     reason,
		OccurredAt: occurredAt,
	}
}

// NewNoteHistoryEntry creates an audit entry carrying a free-text note
func NewNoteHistoryEntry(actorID *uuid.UUID, actorRole identity.Role, note string, occurredAt time.Time) HistoryEntry {
	return HistoryEntry{
		ID:         uuid.New(),
		Action:     "NOTE",
		ActorID:    actorID,
		ActorRole:  actorRole,
		Note:       note,
		OccurredAt: occurredAt,
	}
}
