package lead

// Role is the dashboard role of the acting user
type Role string

const (
	RoleSuperAdmin          Role = "super_admin"
	RoleAccountsManager     Role = "accounts_manager"
	RoleRelationshipManager Role = "relationship_manager"
	RoleFranchise           Role = "franchise"
	RoleRegionalManager     Role = "regional_manager"
	RoleAgent               Role = "agent"
	RoleSubAgent            Role = "sub_agent"
)

// AssignsAgents reports whether the role hands leads to agents.
func (r Role) AssignsAgents() bool {
	return r == RoleRelationshipManager || r == RoleFranchise
}

// Actor is the authenticated user a form session acts for.
type Actor struct {
	ID    string `json:"id" yaml:"id"`
	Role  Role   `json:"role" yaml:"role"`
	Name  string `json:"name,omitempty" yaml:"name,omitempty"`
	Email string `json:"email,omitempty" yaml:"email,omitempty"`
}

// SelfAssignment is the assignment target meaning "the acting user".
const SelfAssignment = "self"

// ReasonAssignedToSelf blocks commission for a relationship manager keeping the lead.
const ReasonAssignedToSelf = "assigned to self"

// Policy is what a role may see and do on the lead form
type Policy struct {
	UseSchemaPath           bool   `json:"useSchemaPath"`
	CanSetCommission        bool   `json:"canSetCommission"`
	CommissionBlockedReason string `json:"commissionBlockedReason,omitempty"`
	RequiresAssignment      bool   `json:"requiresAssignment"`
	CanSelectSubAgent       bool   `json:"canSelectSubAgent"`
	CanAssignBank           bool   `json:"canAssignBank"`
}

// Classify derives the form policy for a role. It never reads ambient state.
func Classify(role Role, isEditing bool, assignmentTarget string) Policy {
	p := Policy{
		UseSchemaPath:      role == RoleAgent,
		RequiresAssignment: role.AssignsAgents() && !isEditing,
		CanSelectSubAgent:  role == RoleAgent && !isEditing,
		CanAssignBank:      role == RoleRelationshipManager && isEditing,
	}

	switch role {
	case RoleSuperAdmin, RoleAccountsManager, RoleRelationshipManager, RoleFranchise:
		p.CanSetCommission = true
	}

	// franchise keeps commission rights on self-assigned leads
	if role == RoleRelationshipManager && assignmentTarget == SelfAssignment {
		p.CommissionBlockedReason = ReasonAssignedToSelf
	}

	return p
}

// CommissionApplies reports whether commission inputs are shown and sent.
func (p Policy) CommissionApplies() bool {
	return p.CanSetCommission && p.CommissionBlockedReason == ""
}

// LoadsAgents reports whether the agent list is needed to fill the form.
func (p Policy) LoadsAgents() bool {
	return p.RequiresAssignment
}
