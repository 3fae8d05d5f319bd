package lead

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	cases := []struct {
		name    string
		role    Role
		editing bool
		target  string
		want    Policy
	}{
		{
			name: "agent creating",
			role: RoleAgent,
			want: Policy{UseSchemaPath: true, CanSelectSubAgent: true},
		},
		{
			name:    "agent editing",
			role:    RoleAgent,
			editing: true,
			want:    Policy{UseSchemaPath: true},
		},
		{
			name: "super admin",
			role: RoleSuperAdmin,
			want: Policy{CanSetCommission: true},
		},
		{
			name:   "relationship manager assigning to agent",
			role:   RoleRelationshipManager,
			target: "agent-1",
			want:   Policy{CanSetCommission: true, RequiresAssignment: true},
		},
		{
			name:   "relationship manager keeping lead",
			role:   RoleRelationshipManager,
			target: SelfAssignment,
			want: Policy{
				CanSetCommission:        true,
				CommissionBlockedReason: ReasonAssignedToSelf,
				RequiresAssignment:      true,
			},
		},
		{
			name:    "relationship manager editing",
			role:    RoleRelationshipManager,
			editing: true,
			target:  "agent-1",
			want:    Policy{CanSetCommission: true, CanAssignBank: true},
		},
		{
			name:   "franchise keeping lead",
			role:   RoleFranchise,
			target: SelfAssignment,
			want:   Policy{CanSetCommission: true, RequiresAssignment: true},
		},
		{
			name: "sub agent",
			role: RoleSubAgent,
			want: Policy{},
		},
		{
			name: "regional manager",
			role: RoleRegionalManager,
			want: Policy{},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Classify(tc.role, tc.editing, tc.target))
		})
	}
}

func TestCommissionAppliesOnSelfAssignment(t *testing.T) {
	assert.False(t, Classify(RoleRelationshipManager, false, SelfAssignment).CommissionApplies())
	assert.True(t, Classify(RoleFranchise, false, SelfAssignment).CommissionApplies())
	assert.True(t, Classify(RoleAccountsManager, false, "").CommissionApplies())
	assert.False(t, Classify(RoleAgent, false, "").CommissionApplies())
}

func TestNewDraftDefaultsToSelf(t *testing.T) {
	assert.Equal(t, SelfAssignment, NewDraft(Actor{Role: RoleFranchise}).AgentAssignment)
	assert.Equal(t, SelfAssignment, NewDraft(Actor{Role: RoleRelationshipManager}).AgentAssignment)
	assert.Empty(t, NewDraft(Actor{Role: RoleSuperAdmin}).AgentAssignment)
}
