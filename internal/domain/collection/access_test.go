package collection

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inkasso/backend/internal/domain/identity"
)

func caseFor(t *testing.T, kreditorID, debtorID uuid.UUID) *Case {
	t.Helper()
	c, err := NewCase(kreditorID, "INK-"+uuid.NewString()[:8], debtorID, mustMoney(t, "100.00"), CaseStatusNew)
	require.NoError(t, err)
	return c
}

func TestActor_CanSeeCase(t *testing.T) {
	kreditorA := uuid.New()
	kreditorB := uuid.New()
	debtor1 := uuid.New()
	debtor2 := uuid.New()

	caseA1 := caseFor(t, kreditorA, debtor1)
	caseB2 := caseFor(t, kreditorB, debtor2)

	admin := Actor{UserID: uuid.New(), Role: identity.RoleAdmin}
	assert.True(t, admin.CanSeeCase(caseA1))
	assert.True(t, admin.CanSeeCase(caseB2))

	agentA := Actor{UserID: uuid.New(), Role: identity.RoleAgent, AssignedKreditorIDs: []uuid.UUID{kreditorA}}
	require.NoError(t, caseA1.AssignAgent(agentA.UserID))
	assert.True(t, agentA.CanSeeCase(caseA1))
	assert.False(t, agentA.CanSeeCase(caseB2), "creditor B is not in the agent's portfolio")

	clientA := Actor{UserID: uuid.New(), Role: identity.RoleClient, KreditorID: &kreditorA}
	assert.True(t, clientA.CanSeeCase(caseA1))
	assert.False(t, clientA.CanSeeCase(caseB2))

	debtorUser1 := Actor{UserID: uuid.New(), Role: identity.RoleDebtor, LinkedDebtorID: &debtor1}
	assert.True(t, debtorUser1.CanSeeCase(caseA1))
	assert.False(t, debtorUser1.CanSeeCase(caseB2), "a debtor never sees another debtor's case")
}

func TestActor_CanSeeCase_AgentNeedsAssignment(t *testing.T) {
	kreditor := uuid.New()
	agentA := Actor{UserID: uuid.New(), Role: identity.RoleAgent, AssignedKreditorIDs: []uuid.UUID{kreditor}}
	agentB := Actor{UserID: uuid.New(), Role: identity.RoleAgent, AssignedKreditorIDs: []uuid.UUID{kreditor}}

	unassigned := caseFor(t, kreditor, uuid.New())
	assert.False(t, agentA.CanSeeCase(unassigned), "portfolio alone does not grant visibility")

	assignedToB := caseFor(t, kreditor, uuid.New())
	require.NoError(t, assignedToB.AssignAgent(agentB.UserID))
	assert.False(t, agentA.CanSeeCase(assignedToB), "a colleague's case stays invisible")
	assert.True(t, agentB.CanSeeCase(assignedToB))

	// Assignment without the creditor in the portfolio also denies.
	outOfPortfolio := caseFor(t, uuid.New(), uuid.New())
	require.NoError(t, outOfPortfolio.AssignAgent(agentA.UserID))
	assert.False(t, agentA.CanSeeCase(outOfPortfolio))
}

func TestActor_CanSeeCase_FailsClosed(t *testing.T) {
	c := caseFor(t, uuid.New(), uuid.New())

	tests := []struct {
		name  string
		actor Actor
	}{
		{"unknown role", Actor{UserID: uuid.New(), Role: identity.Role("AUDITOR")}},
		{"empty role", Actor{UserID: uuid.New()}},
		{"client without creditor scope", Actor{UserID: uuid.New(), Role: identity.RoleClient}},
		{"debtor without linked record", Actor{UserID: uuid.New(), Role: identity.RoleDebtor}},
		{"agent with empty portfolio", Actor{UserID: uuid.New(), Role: identity.RoleAgent}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.False(t, tt.actor.CanSeeCase(c))
		})
	}
}

func TestActor_VisibleCases(t *testing.T) {
	kreditorA := uuid.New()
	kreditorB := uuid.New()
	debtor1 := uuid.New()

	caseA := caseFor(t, kreditorA, debtor1)
	caseB := caseFor(t, kreditorB, uuid.New())
	caseA2 := caseFor(t, kreditorA, uuid.New())

	all := []*Case{caseA, caseB, caseA2}

	clientA := Actor{UserID: uuid.New(), Role: identity.RoleClient, KreditorID: &kreditorA}
	visible := clientA.VisibleCases(all)
	require.Len(t, visible, 2)
	assert.Same(t, caseA, visible[0])
	assert.Same(t, caseA2, visible[1])

	debtorUser := Actor{UserID: uuid.New(), Role: identity.RoleDebtor, LinkedDebtorID: &debtor1}
	visible = debtorUser.VisibleCases(all)
	require.Len(t, visible, 1)
	assert.Same(t, caseA, visible[0])

	nobody := Actor{UserID: uuid.New()}
	assert.Empty(t, nobody.VisibleCases(all))
}

func TestActor_CanSeeInquiry_FollowsParentCase(t *testing.T) {
	kreditorA := uuid.New()
	debtor1 := uuid.New()
	parent := caseFor(t, kreditorA, debtor1)
	other := caseFor(t, kreditorA, uuid.New())

	inq, err := NewInquiry(parent, uuid.New(), identity.RoleDebtor, "Kann ich in Raten zahlen?")
	require.NoError(t, err)

	debtorUser := Actor{UserID: uuid.New(), Role: identity.RoleDebtor, LinkedDebtorID: &debtor1}
	assert.True(t, debtorUser.CanSeeInquiry(inq, parent))
	assert.False(t, debtorUser.CanSeeInquiry(inq, other), "mismatched parent denies")
	assert.False(t, debtorUser.CanSeeInquiry(inq, nil))
}

func TestActorFromUser(t *testing.T) {
	kreditorID := uuid.New()

	client, err := identity.NewActiveUser(kreditorID, "client1", "s3cret-pass", identity.RoleClient)
	require.NoError(t, err)
	a := ActorFromUser(client)
	require.NotNil(t, a.KreditorID)
	assert.Equal(t, kreditorID, *a.KreditorID)
	assert.Equal(t, identity.RoleClient, a.Role)

	agent, err := identity.NewActiveUser(uuid.New(), "agent1", "s3cret-pass", identity.RoleAgent)
	require.NoError(t, err)
	require.NoError(t, agent.AssignKreditor(kreditorID))
	a = ActorFromUser(agent)
	assert.Equal(t, []uuid.UUID{kreditorID}, a.AssignedKreditorIDs)
	assert.Nil(t, a.KreditorID)
}
