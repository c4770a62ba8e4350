package collection

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScheduler_NextAction(t *testing.T) {
	s := NewScheduler(nil, 0)
	asOf := time.Date(2026, 8, 29, 14, 30, 0, 0, time.UTC)

	tests := []struct {
		status CaseStatus
		days   int
	}{
		{CaseStatusNew, 3},
		{CaseStatusReminder1, 10},
		{CaseStatusReminder2, 7},
		{CaseStatusAddressResearch, 14},
		{CaseStatusMBRequested, 14},
		{CaseStatusGVMandated, 21},
		{CaseStatusEVTaken, 30},
	}
	for _, tt := range tests {
		next := s.NextAction(tt.status, asOf)
		require.NotNil(t, next, "status %s", tt.status)
		// The follow-up date is a calendar date, independent of the
		// time of day the transition happened.
		assert.Equal(t, date(2026, 8, 29).AddDate(0, 0, tt.days), *next,
			"status %s", tt.status)
	}
}

func TestScheduler_NextAction_TerminalIsNil(t *testing.T) {
	s := NewScheduler(nil, 0)
	asOf := time.Now()

	for _, status := range []CaseStatus{
		CaseStatusPaid, CaseStatusSettled, CaseStatusInsolvency, CaseStatusUncollectible,
	} {
		assert.Nil(t, s.NextAction(status, asOf), "status %s", status)
	}
}

func TestScheduler_NextAction_CustomPolicy(t *testing.T) {
	s := NewScheduler(SchedulePolicy{CaseStatusNew: 5}, 0)
	asOf := date(2026, 3, 1)

	next := s.NextAction(CaseStatusNew, asOf)
	require.NotNil(t, next)
	assert.Equal(t, date(2026, 3, 6), *next)

	// Statuses without a policy entry have no follow-up.
	assert.Nil(t, s.NextAction(CaseStatusReminder1, asOf))
}

func TestScheduler_Limitations_FromDateOfOrigin(t *testing.T) {
	s := NewScheduler(nil, 0)
	c := newTestCase(t, "100.00")
	origin := date(2024, 3, 15)
	c.SetDateOfOrigin(origin)

	got := s.Limitations(c, date(2026, 8, 29), false)
	require.NotNil(t, got)
	assert.Equal(t, date(2027, 12, 31), *got,
		"three years counted from the end of the origin year")
}

func TestScheduler_Limitations_FallsBackToDueDate(t *testing.T) {
	s := NewScheduler(nil, 0)
	c := newTestCase(t, "100.00")
	due := date(2025, 11, 2)
	require.NoError(t, c.SetInvoice("RE-1", nil, &due))

	got := s.Limitations(c, date(2026, 1, 1), false)
	require.NotNil(t, got)
	assert.Equal(t, date(2028, 12, 31), *got)
}

func TestScheduler_Limitations_NoOriginKeepsExisting(t *testing.T) {
	s := NewScheduler(nil, 0)
	c := newTestCase(t, "100.00")

	assert.Nil(t, s.Limitations(c, date(2026, 1, 1), false))

	existing := date(2028, 12, 31)
	c.StatuteOfLimitationsDate = &existing
	got := s.Limitations(c, date(2026, 1, 1), false)
	require.NotNil(t, got)
	assert.Equal(t, existing, *got)
}

func TestScheduler_Limitations_ResetOnAcknowledgement(t *testing.T) {
	s := NewScheduler(nil, 0)
	c := newTestCase(t, "100.00")
	c.SetDateOfOrigin(date(2023, 6, 1))
	limit := date(2026, 12, 31)
	c.StatuteOfLimitationsDate = &limit

	// Debtor acknowledges the debt mid-2026: the clock restarts from the
	// acknowledgement date.
	got := s.Limitations(c, date(2026, 5, 10), true)
	require.NotNil(t, got)
	assert.Equal(t, date(2029, 12, 31), *got)
}

func TestScheduler_Limitations_NeverMovesBackwards(t *testing.T) {
	s := NewScheduler(nil, 0)
	c := newTestCase(t, "100.00")
	c.SetDateOfOrigin(date(2024, 2, 1))
	later := date(2029, 12, 31)
	c.StatuteOfLimitationsDate = &later

	got := s.Limitations(c, date(2026, 8, 29), false)
	require.NotNil(t, got)
	assert.Equal(t, later, *got, "recomputation must not shorten the period")
}

func TestLimitationPeriodEnd(t *testing.T) {
	assert.Equal(t, date(2027, 12, 31), LimitationPeriodEnd(date(2024, 1, 1), 3))
	assert.Equal(t, date(2027, 12, 31), LimitationPeriodEnd(date(2024, 12, 31), 3))
}

func TestScheduler_DefaultsCoverAllNonTerminalStatuses(t *testing.T) {
	policy := DefaultSchedulePolicy()
	for _, status := range AllCaseStatuses {
		if status.IsTerminal() {
			_, ok := policy[status]
			assert.False(t, ok, "terminal %s must not be scheduled", status)
			continue
		}
		_, ok := policy[status]
		assert.True(t, ok, "non-terminal %s needs a lookahead", status)
	}
}
