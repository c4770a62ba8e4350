package collection

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inkasso/backend/internal/domain/identity"
	"github.com/inkasso/backend/internal/domain/shared"
)

func newStateMachine() *StateMachine {
	return NewStateMachine(NewLedger(nil), NewScheduler(nil, 0))
}

func TestStateMachine_Transition_HappyPath(t *testing.T) {
	sm := newStateMachine()
	c := newTestCase(t, "1000.00")
	actorID := uuid.New()
	asOf := date(2026, 8, 29)

	next, err := sm.Transition(c, CaseStatusReminder1, identity.RoleAgent, &actorID, ReasonNone, asOf)
	require.NoError(t, err)

	assert.Equal(t, CaseStatusReminder1, next.Status)
	assert.Equal(t, c.Version+1, next.Version)
	require.NotNil(t, next.NextActionDate)
	assert.Equal(t, date(2026, 9, 8), *next.NextActionDate)

	require.Len(t, next.History, 1)
	entry := next.History[0]
	assert.Equal(t, "STATUS_TRANSITION", entry.Action)
	assert.Equal(t, CaseStatusNew, entry.FromStatus)
	assert.Equal(t, CaseStatusReminder1, entry.ToStatus)
	assert.Equal(t, identity.RoleAgent, entry.ActorRole)
	require.NotNil(t, entry.ActorID)
	assert.Equal(t, actorID, *entry.ActorID)

	events := next.GetDomainEvents()
	require.Len(t, events, 1)
	assert.Equal(t, EventTypeCaseTransitioned, events[0].EventType())
}

func TestStateMachine_Transition_InputIsNeverMutated(t *testing.T) {
	sm := newStateMachine()
	c := newTestCase(t, "1000.00")
	statusBefore := c.Status
	versionBefore := c.Version

	_, err := sm.Transition(c, CaseStatusReminder1, identity.RoleAdmin, nil, ReasonNone, date(2026, 1, 1))
	require.NoError(t, err)

	assert.Equal(t, statusBefore, c.Status)
	assert.Equal(t, versionBefore, c.Version)
	assert.Empty(t, c.History)
}

func TestStateMachine_Transition_RejectsNonAdjacent(t *testing.T) {
	sm := newStateMachine()
	c := newTestCase(t, "1000.00")

	_, err := sm.Transition(c, CaseStatusMBIssued, identity.RoleAdmin, nil, ReasonNone, date(2026, 1, 1))
	require.Error(t, err)
	assert.True(t, shared.IsDomainErrorWithCode(err, shared.CodeInvalidTransition))

	// Failure leaves the input untouched.
	assert.Equal(t, CaseStatusNew, c.Status)
}

func TestStateMachine_Transition_RejectsUnknownTarget(t *testing.T) {
	sm := newStateMachine()
	c := newTestCase(t, "1000.00")

	_, err := sm.Transition(c, CaseStatus("BOGUS"), identity.RoleAdmin, nil, ReasonNone, date(2026, 1, 1))
	assert.True(t, shared.IsDomainErrorWithCode(err, shared.CodeInvalidTransition))
}

func TestStateMachine_Transition_TerminalIsFinal(t *testing.T) {
	sm := newStateMachine()
	c := newTestCase(t, "1000.00")

	closed, err := sm.Transition(c, CaseStatusPaid, identity.RoleAgent, nil, ReasonNone, date(2026, 1, 1))
	require.NoError(t, err)
	assert.Nil(t, closed.NextActionDate, "closed cases have no follow-up")

	for _, target := range AllCaseStatuses {
		_, err := sm.Transition(closed, target, identity.RoleAdmin, nil, ReasonNone, date(2026, 2, 1))
		require.Error(t, err, "PAID -> %s must fail", target)
		assert.True(t, shared.IsDomainErrorWithCode(err, shared.CodeInvalidTransition))
	}
}

func TestStateMachine_Transition_DirectSettlementFromEarlyStage(t *testing.T) {
	sm := newStateMachine()
	c := newTestCase(t, "250.00")

	// Debtor pays after the first contact: NEW closes directly as PAID.
	closed, err := sm.Transition(c, CaseStatusPaid, identity.RoleAgent, nil, ReasonNone, date(2026, 1, 1))
	require.NoError(t, err)
	assert.Equal(t, CaseStatusPaid, closed.Status)
	assert.True(t, closed.IsTerminal())
}

func TestStateMachine_Transition_RoleGating(t *testing.T) {
	asOf := date(2026, 1, 1)

	tests := []struct {
		name   string
		role   identity.Role
		from   CaseStatus
		target CaseStatus
		code   string
	}{
		{"client cannot transition at all", identity.RoleClient, CaseStatusNew, CaseStatusReminder1, shared.CodeUnauthorizedRole},
		{"debtor cannot transition at all", identity.RoleDebtor, CaseStatusNew, CaseStatusReminder1, shared.CodeUnauthorizedRole},
		{"unknown role denied", identity.Role("AUDITOR"), CaseStatusNew, CaseStatusReminder1, shared.CodeUnauthorizedRole},
		{"agent reaches court stages", identity.RoleAgent, CaseStatusReminder2, CaseStatusPrepareMB, ""},
		{"admin reaches court stages", identity.RoleAdmin, CaseStatusReminder2, CaseStatusPrepareMB, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sm := newStateMachine()
			c := newTestCase(t, "1000.00")
			c.Status = tt.from

			_, err := sm.Transition(c, tt.target, tt.role, nil, ReasonNone, asOf)
			if tt.code == "" {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.True(t, shared.IsDomainErrorWithCode(err, tt.code), "got %v", err)
			}
		})
	}
}

func TestStateMachine_Transition_AdjacencyCheckedBeforeAuthorization(t *testing.T) {
	sm := newStateMachine()
	c := newTestCase(t, "1000.00")

	// A debtor probing an illegal edge learns it is invalid, not that
	// they lack permission.
	_, err := sm.Transition(c, CaseStatusMBIssued, identity.RoleDebtor, nil, ReasonNone, date(2026, 1, 1))
	require.Error(t, err)
	assert.True(t, shared.IsDomainErrorWithCode(err, shared.CodeInvalidTransition))
}

func TestStateMachine_Transition_AccruesInterest(t *testing.T) {
	sm := newStateMachine()
	c := newTestCase(t, "1000.00")
	require.NoError(t, c.SetInterestTerms(decimal.NewFromInt(5), false, date(2023, 1, 1), nil, false))

	next, err := sm.Transition(c, CaseStatusReminder1, identity.RoleAgent, nil, ReasonNone, date(2024, 1, 1))
	require.NoError(t, err)

	assert.Equal(t, "50.00", next.Interest.StringFixed(2))
	assert.Equal(t, "1050.00", next.TotalAmount.StringFixed(2))
}

func TestStateMachine_Transition_SetsLimitationsDate(t *testing.T) {
	sm := newStateMachine()
	c := newTestCase(t, "1000.00")
	c.SetDateOfOrigin(date(2025, 4, 1))

	next, err := sm.Transition(c, CaseStatusReminder1, identity.RoleAgent, nil, ReasonNone, date(2026, 1, 10))
	require.NoError(t, err)

	require.NotNil(t, next.StatuteOfLimitationsDate)
	assert.Equal(t, date(2028, 12, 31), *next.StatuteOfLimitationsDate)
}

func TestStateMachine_Transition_AcknowledgementResetsLimitations(t *testing.T) {
	sm := newStateMachine()
	c := newTestCase(t, "1000.00")
	c.SetDateOfOrigin(date(2023, 4, 1))
	limit := date(2026, 12, 31)
	c.StatuteOfLimitationsDate = &limit

	next, err := sm.Transition(c, CaseStatusReminder1, identity.RoleAgent, nil, ReasonDebtAcknowledged, date(2026, 8, 29))
	require.NoError(t, err)

	require.NotNil(t, next.StatuteOfLimitationsDate)
	assert.Equal(t, date(2029, 12, 31), *next.StatuteOfLimitationsDate)
	assert.Equal(t, ReasonDebtAcknowledged, next.History[0].Reason)
}

func TestStateMachine_Transition_FullDunningRun(t *testing.T) {
	sm := newStateMachine()
	c, err := NewCase(uuid.New(), "INK-2026-0099", uuid.New(), mustMoney(t, "5000.00"), CaseStatusDraft)
	require.NoError(t, err)

	path := []CaseStatus{
		CaseStatusNew,
		CaseStatusReminder1,
		CaseStatusReminder2,
		CaseStatusPrepareMB,
		CaseStatusMBRequested,
		CaseStatusMBIssued,
		CaseStatusPrepareVB,
		CaseStatusVBRequested,
		CaseStatusVBIssued,
		CaseStatusTitleObtained,
		CaseStatusEnforcementPrep,
		CaseStatusGVMandated,
		CaseStatusEVTaken,
		CaseStatusPaid,
	}

	asOf := date(2026, 1, 1)
	for _, target := range path {
		c, err = sm.Transition(c, target, identity.RoleAdmin, nil, ReasonNone, asOf)
		require.NoError(t, err, "transition to %s", target)
		asOf = asOf.AddDate(0, 0, 14)
	}

	assert.Equal(t, CaseStatusPaid, c.Status)
	assert.Len(t, c.History, len(path))
	assert.Equal(t, 1+len(path), c.Version, "one version bump per transition")
}

func TestStateMachine_Recompute(t *testing.T) {
	sm := newStateMachine()
	c := newTestCase(t, "1000.00")
	require.NoError(t, c.SetInterestTerms(decimal.NewFromInt(5), false, date(2023, 1, 1), nil, false))
	versionBefore := c.Version

	refreshed, err := sm.Recompute(c, date(2024, 1, 1))
	require.NoError(t, err)

	assert.Equal(t, "50.00", refreshed.Interest.StringFixed(2))
	assert.Equal(t, CaseStatusNew, refreshed.Status, "recompute never changes status")
	assert.True(t, c.Interest.IsZero(), "input untouched")
	assert.Equal(t, versionBefore, c.Version)
}

func TestStateMachine_Recompute_ClosedCaseStopsAccruing(t *testing.T) {
	sm := newStateMachine()
	c := newTestCase(t, "1000.00")
	require.NoError(t, c.SetInterestTerms(decimal.NewFromInt(5), false, date(2023, 1, 1), nil, false))

	closed, err := sm.Transition(c, CaseStatusPaid, identity.RoleAgent, nil, ReasonNone, date(2024, 1, 1))
	require.NoError(t, err)
	require.Equal(t, "50.00", closed.Interest.StringFixed(2))

	refreshed, err := sm.Recompute(closed, date(2025, 1, 1))
	require.NoError(t, err)

	assert.Equal(t, "50.00", refreshed.Interest.StringFixed(2), "interest is frozen at closing")
	assert.Equal(t, closed.TotalAmount.StringFixed(2), refreshed.TotalAmount.StringFixed(2))
	assert.Equal(t, CaseStatusPaid, refreshed.Status)
}
