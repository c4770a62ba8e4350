package collection

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCaseStatus_IsValid(t *testing.T) {
	for _, s := range AllCaseStatuses {
		assert.True(t, s.IsValid(), "status %s should be valid", s)
	}
	assert.False(t, CaseStatus("BOGUS").IsValid())
	assert.False(t, CaseStatus("").IsValid())
}

func TestCaseStatus_IsTerminal(t *testing.T) {
	terminal := map[CaseStatus]bool{
		CaseStatusPaid:          true,
		CaseStatusSettled:       true,
		CaseStatusInsolvency:    true,
		CaseStatusUncollectible: true,
	}
	for _, s := range AllCaseStatuses {
		assert.Equal(t, terminal[s], s.IsTerminal(), "status %s", s)
	}
}

func TestCaseStatus_CanTransitionTo_ProcessGraph(t *testing.T) {
	tests := []struct {
		from    CaseStatus
		to      CaseStatus
		allowed bool
	}{
		{CaseStatusDraft, CaseStatusNew, true},
		{CaseStatusNew, CaseStatusReminder1, true},
		{CaseStatusReminder1, CaseStatusReminder2, true},
		{CaseStatusReminder2, CaseStatusAddressResearch, true},
		{CaseStatusReminder2, CaseStatusPrepareMB, true},
		{CaseStatusAddressResearch, CaseStatusReminder1, true},
		{CaseStatusAddressResearch, CaseStatusPrepareMB, true},
		{CaseStatusPrepareMB, CaseStatusMBRequested, true},
		{CaseStatusMBRequested, CaseStatusMBIssued, true},
		{CaseStatusMBIssued, CaseStatusMBObjection, true},
		{CaseStatusMBIssued, CaseStatusPrepareVB, true},
		{CaseStatusPrepareVB, CaseStatusVBRequested, true},
		{CaseStatusVBRequested, CaseStatusVBIssued, true},
		{CaseStatusVBIssued, CaseStatusTitleObtained, true},
		{CaseStatusTitleObtained, CaseStatusEnforcementPrep, true},
		{CaseStatusEnforcementPrep, CaseStatusGVMandated, true},
		{CaseStatusGVMandated, CaseStatusEVTaken, true},
		// Enforcement can be repeated after an EV.
		{CaseStatusEVTaken, CaseStatusEnforcementPrep, true},

		// No skipping stages.
		{CaseStatusDraft, CaseStatusReminder1, false},
		{CaseStatusNew, CaseStatusReminder2, false},
		{CaseStatusReminder1, CaseStatusPrepareMB, false},
		{CaseStatusPrepareMB, CaseStatusMBIssued, false},
		{CaseStatusMBRequested, CaseStatusPrepareVB, false},
		// No moving backwards through the dunning chain.
		{CaseStatusReminder2, CaseStatusReminder1, false},
		{CaseStatusMBIssued, CaseStatusMBRequested, false},
		// An objection ends the Mahnbescheid track.
		{CaseStatusMBObjection, CaseStatusPrepareVB, false},
		{CaseStatusMBObjection, CaseStatusMBIssued, false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.allowed, tt.from.CanTransitionTo(tt.to),
			"%s -> %s", tt.from, tt.to)
	}
}

func TestCaseStatus_CanTransitionTo_TerminalShortcuts(t *testing.T) {
	terminals := []CaseStatus{
		CaseStatusPaid, CaseStatusSettled, CaseStatusInsolvency, CaseStatusUncollectible,
	}

	for _, from := range AllCaseStatuses {
		for _, to := range terminals {
			got := from.CanTransitionTo(to)
			if from.IsTerminal() {
				assert.False(t, got, "terminal %s must not leave to %s", from, to)
			} else {
				assert.True(t, got, "%s should close directly as %s", from, to)
			}
		}
	}
}

func TestCaseStatus_CanTransitionTo_NeverSelfOrFromTerminal(t *testing.T) {
	for _, from := range AllCaseStatuses {
		assert.False(t, from.CanTransitionTo(from), "self transition %s", from)
		if from.IsTerminal() {
			for _, to := range AllCaseStatuses {
				assert.False(t, from.CanTransitionTo(to), "%s -> %s", from, to)
			}
		}
	}
}

func TestCaseStatus_CanTransitionTo_UnknownTarget(t *testing.T) {
	assert.False(t, CaseStatusNew.CanTransitionTo(CaseStatus("BOGUS")))
}

func TestCaseStatus_IsCourtStage(t *testing.T) {
	court := []CaseStatus{
		CaseStatusPrepareMB, CaseStatusMBRequested, CaseStatusMBIssued, CaseStatusMBObjection,
		CaseStatusPrepareVB, CaseStatusVBRequested, CaseStatusVBIssued, CaseStatusTitleObtained,
		CaseStatusEnforcementPrep, CaseStatusGVMandated, CaseStatusEVTaken,
	}
	courtSet := make(map[CaseStatus]bool, len(court))
	for _, s := range court {
		courtSet[s] = true
	}
	for _, s := range AllCaseStatuses {
		assert.Equal(t, courtSet[s], s.IsCourtStage(), "status %s", s)
	}
}

func TestTransitionReason_ResetsLimitations(t *testing.T) {
	assert.True(t, ReasonDebtAcknowledged.ResetsLimitations())
	assert.True(t, ReasonInstallmentPlan.ResetsLimitations())
	assert.True(t, ReasonPartialPayment.ResetsLimitations())
	assert.False(t, ReasonNone.ResetsLimitations())
	assert.False(t, TransitionReason("OTHER").ResetsLimitations())
}
