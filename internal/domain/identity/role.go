package identity

// Role represents the functional role of a user in the collection platform
type Role string

const (
	RoleAdmin  Role = "ADMIN"  // Platform operator, unrestricted
	RoleAgent  Role = "AGENT"  // Collection agent, works assigned cases
	RoleClient Role = "CLIENT" // Creditor-side user, read access to own creditor's cases
	RoleDebtor Role = "DEBTOR" // Debtor-side user, read access to own cases
)

// IsValid checks if the role is a known Role
func (r Role) IsValid() bool {
	switch r {
	case RoleAdmin, RoleAgent, RoleClient, RoleDebtor:
		return true
	}
	return false
}

// String returns the string representation of Role
func (r Role) String() string {
	return string(r)
}

// IsStaff returns true for roles acting on behalf of the collection platform
func (r Role) IsStaff() bool {
	return r == RoleAdmin || r == RoleAgent
}

// Capability is the authorization profile of a role. All role-based policy
// is dispatched through this struct instead of branching on role strings
// at call sites.
type Capability struct {
	CanTransitionCases  bool // may invoke case status transitions at all
	CanReachCourtStages bool // may transition into Mahnbescheid stages and beyond
	CanResolveInquiries bool
	CanOpenInquiries    bool
}

// CapabilityFor returns the capability set of a role.
// Unknown roles get an empty capability set (fail closed).
func CapabilityFor(r Role) Capability {
	switch r {
	case RoleAdmin, RoleAgent:
		return Capability{
			CanTransitionCases:  true,
			CanReachCourtStages: true,
			CanResolveInquiries: true,
			CanOpenInquiries:    true,
		}
	case RoleClient, RoleDebtor:
		return Capability{
			CanOpenInquiries: true,
		}
	}
	return Capability{}
}
