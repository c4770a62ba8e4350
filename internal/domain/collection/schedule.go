package collection

import (
	"time"
)

// SchedulePolicy maps a case status to the follow-up lookahead in days.
// Values are operational policy, not law, and are loaded from configuration;
// the defaults below match current practice. Terminal statuses carry no
// entry: their next action date is always nil.
type SchedulePolicy map[CaseStatus]int

// DefaultSchedulePolicy returns the built-in lookahead policy
func DefaultSchedulePolicy() SchedulePolicy {
	return SchedulePolicy{
		CaseStatusDraft:           1,
		CaseStatusNew:             3,
		CaseStatusReminder1:       10,
		CaseStatusReminder2:       7,
		CaseStatusAddressResearch: 14,
		CaseStatusPrepareMB:       3,
		CaseStatusMBRequested:     14,
		CaseStatusMBIssued:        14,
		CaseStatusMBObjection:     7,
		CaseStatusPrepareVB:       3,
		CaseStatusVBRequested:     14,
		CaseStatusVBIssued:        14,
		CaseStatusTitleObtained:   7,
		CaseStatusEnforcementPrep: 3,
		CaseStatusGVMandated:      21,
		CaseStatusEVTaken:         30,
	}
}

// DefaultLimitationYears is the German general limitation period (BGB §195)
const DefaultLimitationYears = 3

// Scheduler derives operational follow-up dates and the statute-of-limitations
// date for a case. It is pure: all time inputs are explicit.
type Scheduler struct {
	Policy          SchedulePolicy
	LimitationYears int
}

// NewScheduler creates a scheduler with the given policy. A nil policy
// falls back to the defaults.
func NewScheduler(policy SchedulePolicy, limitationYears int) *Scheduler {
	if policy == nil {
		policy = DefaultSchedulePolicy()
	}
	if limitationYears <= 0 {
		limitationYears = DefaultLimitationYears
	}
	return &Scheduler{Policy: policy, LimitationYears: limitationYears}
}

// NextAction returns the next required follow-up date for a status, or nil
// for terminal statuses and statuses without a policy entry.
func (s *Scheduler) NextAction(status CaseStatus, asOf time.Time) *time.Time {
	if status.IsTerminal() {
		return nil
	}
	days, ok := s.Policy[status]
	if !ok {
		return nil
	}
	next := dateOnly(asOf).AddDate(0, 0, days)
	return &next
}

// Limitations computes the statute-of-limitations date for a case.
//
// The German general limitation period runs from the end of the calendar
// year in which the claim arose (BGB §199) and expires after
// LimitationYears (BGB §195): the end of the third calendar year following
// the year of origin. An acknowledgement of the debt restarts the clock
// from the acknowledgement date (BGB §212); that is the only event allowed
// to move the date, and even then it never moves backwards.
//
// Returns nil when neither a date of origin nor a due date is known.
func (s *Scheduler) Limitations(c *Case, asOf time.Time, reset bool) *time.Time {
	base := c.DateOfOrigin
	if base == nil {
		base = c.DueDate
	}
	if reset {
		base = &asOf
	}
	if base == nil {
		return c.StatuteOfLimitationsDate
	}

	candidate := LimitationPeriodEnd(*base, s.LimitationYears)

	// Monotonic: the date never decreases over a case's life.
	if c.StatuteOfLimitationsDate != nil && candidate.Before(*c.StatuteOfLimitationsDate) {
		return c.StatuteOfLimitationsDate
	}
	return &candidate
}

// LimitationPeriodEnd returns the end of the limitation period for a claim
// arising at base: December 31st of the year `years` after the base year.
func LimitationPeriodEnd(base time.Time, years int) time.Time {
	return time.Date(base.Year()+years, time.December, 31, 0, 0, 0, 0, time.UTC)
}
