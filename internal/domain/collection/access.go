package collection

import (
	"github.com/google/uuid"

	"github.com/inkasso/backend/internal/domain/identity"
)

// Actor is the projection of an authenticated user used for visibility
// decisions. It carries only what scoping needs so the collection domain
// does not depend on the full user aggregate.
type Actor struct {
	UserID              uuid.UUID
	Role                identity.Role
	KreditorID          *uuid.UUID  // CLIENT: the creditor the user belongs to
	LinkedDebtorID      *uuid.UUID  // DEBTOR: the debtor record the user is bound to
	AssignedKreditorIDs []uuid.UUID // AGENT: creditors in the agent's portfolio
}

// ActorFromUser builds an Actor from a user aggregate
func ActorFromUser(u *identity.User) Actor {
	a := Actor{
		UserID:         u.ID,
		Role:           u.Role,
		LinkedDebtorID: u.LinkedDebtorID,
	}
	switch u.Role {
	case identity.RoleClient:
		tenantID := u.TenantID
		a.KreditorID = &tenantID
	case identity.RoleAgent:
		a.AssignedKreditorIDs = append([]uuid.UUID(nil), u.AssignedKreditorIDs...)
	}
	return a
}

// CanSeeCase reports whether the actor may see the given case.
//
// ADMIN sees everything. AGENT sees cases assigned to them, and only for
// creditors in their portfolio. CLIENT sees cases of their own creditor.
// DEBTOR sees only cases naming them as the debtor. Unknown roles and
// missing scope identifiers deny: visibility fails closed.
func (a Actor) CanSeeCase(c *Case) bool {
	switch a.Role {
	case identity.RoleAdmin:
		return true
	case identity.RoleAgent:
		if c.AgentID == nil || *c.AgentID != a.UserID {
			return false
		}
		for _, kid := range a.AssignedKreditorIDs {
			if kid == c.TenantID {
				return true
			}
		}
		return false
	case identity.RoleClient:
		return a.KreditorID != nil && *a.KreditorID == c.TenantID
	case identity.RoleDebtor:
		return a.LinkedDebtorID != nil && *a.LinkedDebtorID == c.DebtorID
	default:
		return false
	}
}

// VisibleCases filters cases down to those the actor may see, preserving
// order.
func (a Actor) VisibleCases(cases []*Case) []*Case {
	visible := make([]*Case, 0, len(cases))
	for _, c := range cases {
		if a.CanSeeCase(c) {
			visible = append(visible, c)
		}
	}
	return visible
}

// CanSeeInquiry reports whether the actor may see an inquiry. Inquiry
// visibility follows the parent case.
func (a Actor) CanSeeInquiry(inq *Inquiry, parent *Case) bool {
	if parent == nil || inq.CaseID != parent.ID {
		return false
	}
	return a.CanSeeCase(parent)
}
