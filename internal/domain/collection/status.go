package collection

// CaseStatus represents the dunning stage of a collection case.
// The string values are the stable persistence format; they are part of the
// storage and API contract and must never be renumbered or renamed.
type CaseStatus string

const (
	CaseStatusDraft           CaseStatus = "DRAFT"
	CaseStatusNew             CaseStatus = "NEW"
	CaseStatusReminder1       CaseStatus = "REMINDER_1"
	CaseStatusReminder2       CaseStatus = "REMINDER_2"
	CaseStatusAddressResearch CaseStatus = "ADDRESS_RESEARCH"
	CaseStatusPrepareMB       CaseStatus = "PREPARE_MB"       // Mahnbescheid being prepared
	CaseStatusMBRequested     CaseStatus = "MB_REQUESTED"     // Mahnbescheid filed with the court
	CaseStatusMBIssued        CaseStatus = "MB_ISSUED"        // Mahnbescheid served
	CaseStatusMBObjection     CaseStatus = "MB_OBJECTION"     // Debtor objected (Widerspruch)
	CaseStatusPrepareVB       CaseStatus = "PREPARE_VB"       // Vollstreckungsbescheid being prepared
	CaseStatusVBRequested     CaseStatus = "VB_REQUESTED"     // Vollstreckungsbescheid filed
	CaseStatusVBIssued        CaseStatus = "VB_ISSUED"        // Vollstreckungsbescheid served
	CaseStatusTitleObtained   CaseStatus = "TITLE_OBTAINED"   // Enforceable title exists
	CaseStatusEnforcementPrep CaseStatus = "ENFORCEMENT_PREP" // Enforcement measures being prepared
	CaseStatusGVMandated      CaseStatus = "GV_MANDATED"      // Gerichtsvollzieher mandated
	CaseStatusEVTaken         CaseStatus = "EV_TAKEN"         // Vermögensauskunft (EV) taken
	CaseStatusPaid            CaseStatus = "PAID"
	CaseStatusSettled         CaseStatus = "SETTLED"
	CaseStatusInsolvency      CaseStatus = "INSOLVENCY"
	CaseStatusUncollectible   CaseStatus = "UNCOLLECTIBLE"
)

// AllCaseStatuses lists every known status in legal progression order.
// Used for validation and enumeration, never for transition logic.
var AllCaseStatuses = []CaseStatus{
	CaseStatusDraft,
	CaseStatusNew,
	CaseStatusReminder1,
	CaseStatusReminder2,
	CaseStatusAddressResearch,
	CaseStatusPrepareMB,
	CaseStatusMBRequested,
	CaseStatusMBIssued,
	CaseStatusMBObjection,
	CaseStatusPrepareVB,
	CaseStatusVBRequested,
	CaseStatusVBIssued,
	CaseStatusTitleObtained,
	CaseStatusEnforcementPrep,
	CaseStatusGVMandated,
	CaseStatusEVTaken,
	CaseStatusPaid,
	CaseStatusSettled,
	CaseStatusInsolvency,
	CaseStatusUncollectible,
}

// transitionTable encodes the legal process graph. Terminal shortcuts
// (any non-terminal status -> PAID/SETTLED/INSOLVENCY/UNCOLLECTIBLE) are
// handled in CanTransitionTo, not listed here.
var transitionTable = map[CaseStatus][]CaseStatus{
	CaseStatusDraft:           {CaseStatusNew},
	CaseStatusNew:             {CaseStatusReminder1},
	CaseStatusReminder1:       {CaseStatusReminder2},
	CaseStatusReminder2:       {CaseStatusAddressResearch, CaseStatusPrepareMB},
	CaseStatusAddressResearch: {CaseStatusReminder1, CaseStatusPrepareMB},
	CaseStatusPrepareMB:       {CaseStatusMBRequested},
	CaseStatusMBRequested:     {CaseStatusMBIssued},
	CaseStatusMBIssued:        {CaseStatusMBObjection, CaseStatusPrepareVB},
	CaseStatusMBObjection:     {},
	CaseStatusPrepareVB:       {CaseStatusVBRequested},
	CaseStatusVBRequested:     {CaseStatusVBIssued},
	CaseStatusVBIssued:        {CaseStatusTitleObtained},
	CaseStatusTitleObtained:   {CaseStatusEnforcementPrep},
	CaseStatusEnforcementPrep: {CaseStatusGVMandated},
	CaseStatusGVMandated:      {CaseStatusEVTaken},
	CaseStatusEVTaken:         {CaseStatusEnforcementPrep},
}

// IsValid checks if the status is a known CaseStatus
func (s CaseStatus) IsValid() bool {
	if s.IsTerminal() {
		return true
	}
	_, ok := transitionTable[s]
	return ok
}

// String returns the string representation of CaseStatus
func (s CaseStatus) String() string {
	return string(s)
}

// IsTerminal returns true if no further transition is permitted from this status
func (s CaseStatus) IsTerminal() bool {
	switch s {
	case CaseStatusPaid, CaseStatusSettled, CaseStatusInsolvency, CaseStatusUncollectible:
		return true
	}
	return false
}

// IsCourtStage returns true for statuses at or beyond Mahnbescheid preparation.
// Transitions into these stages are restricted to ADMIN and AGENT actors.
func (s CaseStatus) IsCourtStage() bool {
	switch s {
	case CaseStatusPrepareMB, CaseStatusMBRequested, CaseStatusMBIssued, CaseStatusMBObjection,
		CaseStatusPrepareVB, CaseStatusVBRequested, CaseStatusVBIssued, CaseStatusTitleObtained,
		CaseStatusEnforcementPrep, CaseStatusGVMandated, CaseStatusEVTaken:
		return true
	}
	return false
}

// CanTransitionTo checks if the status can transition to the target status.
// Any non-terminal status may short-cut directly into a terminal status.
func (s CaseStatus) CanTransitionTo(target CaseStatus) bool {
	if s.IsTerminal() || s == target {
		return false
	}
	if target.IsTerminal() {
		return target.IsValid()
	}
	for _, next := range transitionTable[s] {
		if next == target {
			return true
		}
	}
	return false
}

// TransitionReason names why a transition was made. Certain reasons carry
// legal weight: an acknowledgement of the debt restarts the statute of
// limitations (BGB §212).
type TransitionReason string

const (
	ReasonNone             TransitionReason = ""
	ReasonDebtAcknowledged TransitionReason = "DEBT_ACKNOWLEDGED"
	ReasonInstallmentPlan  TransitionReason = "INSTALLMENT_PLAN"
	ReasonPartialPayment   TransitionReason = "PARTIAL_PAYMENT"
)

// ResetsLimitations returns true if the reason restarts the limitations clock
func (r TransitionReason) ResetsLimitations() bool {
	switch r {
	case ReasonDebtAcknowledged, ReasonInstallmentPlan, ReasonPartialPayment:
		return true
	}
	return false
}
