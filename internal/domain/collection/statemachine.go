package collection

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/inkasso/backend/internal/domain/identity"
	"github.com/inkasso/backend/internal/domain/shared"
)

// StateMachine executes status transitions on cases. A transition is the
// single unit of change: it validates adjacency and authorization, then
// re-derives interest, total amount, next action date and the
// statute-of-limitations date in one step.
//
// Transition never mutates its input. On success it returns an updated
// clone; on failure the original case is untouched.
type StateMachine struct {
	ledger    *Ledger
	scheduler *Scheduler
}

// NewStateMachine creates a state machine with the given financial ledger
// and scheduler. Nil arguments fall back to defaults without a rate lookup.
func NewStateMachine(ledger *Ledger, scheduler *Scheduler) *StateMachine {
	if ledger == nil {
		ledger = NewLedger(nil)
	}
	if scheduler == nil {
		scheduler = NewScheduler(nil, 0)
	}
	return &StateMachine{ledger: ledger, scheduler: scheduler}
}

// Transition moves a case to the target status on behalf of an actor.
//
// Validation order is fixed: adjacency first, authorization second, so a
// caller probing a forbidden edge learns it is invalid before learning it
// is unauthorized. asOf is the effective time of the transition; all
// derived dates and accruals use it.
func (sm *StateMachine) Transition(
	c *Case,
	target CaseStatus,
	role identity.Role,
	actorID *uuid.UUID,
	reason TransitionReason,
	asOf time.Time,
) (*Case, error) {
	if !target.IsValid() {
		return nil, shared.NewDomainError(shared.CodeInvalidTransition,
			fmt.Sprintf("Unknown target status %q", string(target)))
	}
	if c.Status.IsTerminal() {
		return nil, shared.NewDomainError(shared.CodeInvalidTransition,
			fmt.Sprintf("Case is closed in status %s", c.Status))
	}
	if !c.Status.CanTransitionTo(target) {
		return nil, shared.NewDomainError(shared.CodeInvalidTransition,
			fmt.Sprintf("Transition %s -> %s is not allowed", c.Status, target))
	}

	caps := identity.CapabilityFor(role)
	if !caps.CanTransitionCases {
		return nil, shared.NewDomainError(shared.CodeUnauthorizedRole,
			fmt.Sprintf("Role %s may not transition cases", role))
	}
	if target.IsCourtStage() && !caps.CanReachCourtStages {
		return nil, shared.NewDomainError(shared.CodeUnauthorizedRole,
			fmt.Sprintf("Role %s may not move cases into court stages", role))
	}

	next := c.Clone()
	from := next.Status
	next.Status = target

	accrual, err := sm.ledger.Accrue(next, asOf)
	if err != nil {
		return nil, err
	}
	next.Interest = accrual.Interest
	next.TotalAmount = accrual.TotalAmount

	next.NextActionDate = sm.scheduler.NextAction(target, asOf)
	next.StatuteOfLimitationsDate = sm.scheduler.Limitations(next, asOf, reason.ResetsLimitations())

	next.History = append(next.History,
		NewTransitionHistoryEntry(actorID, role, from, target, reason, asOf))
	next.AddDomainEvent(NewCaseTransitionedEvent(next, from, reason, actorID))
	next.IncrementVersion()
	next.UpdatedAt = asOf

	return next, nil
}

// Recompute re-derives the financials and the statute-of-limitations date
// of a case at asOf without changing its status. Used for periodic accrual
// refreshes. Like Transition it operates on a clone.
//
// Closed cases come back unchanged: a terminal status ends the lifecycle,
// so interest never accrues past it.
func (sm *StateMachine) Recompute(c *Case, asOf time.Time) (*Case, error) {
	next := c.Clone()

	if next.Status.IsTerminal() {
		return next, nil
	}

	accrual, err := sm.ledger.Accrue(next, asOf)
	if err != nil {
		return nil, err
	}
	next.Interest = accrual.Interest
	next.TotalAmount = accrual.TotalAmount
	next.StatuteOfLimitationsDate = sm.scheduler.Limitations(next, asOf, false)
	next.UpdatedAt = asOf

	return next, nil
}
