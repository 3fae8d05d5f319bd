package lead

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func filledBankDraft(actor Actor) *Draft {
	d := NewDraft(actor)
	d.Select("bank-1")
	for k, v := range map[string]string{
		KeyCustomerName:    "Ravi Kumar",
		KeyApplicantMobile: "9999999999",
		KeyDSACode:         "DSA-7",
		KeyRemarks:         "walk-in",
		KeyLoanType:        "home_loan",
		KeyLoanAmount:      "100000",
	} {
		d.Standard[k] = v
	}
	return d
}

func agentSchema() *Schema {
	return &Schema{
		ID:       "form-1",
		LeadType: TypeBank,
		Fields: []FieldDefinition{
			{Key: "pan", Label: "PAN", Required: true},
			{Key: "city", Label: "City"},
		},
		DocumentTypes: []DocumentTypeDefinition{
			{Key: "aadhaar", Name: "Aadhaar", Required: true},
		},
	}
}

func TestValidate_AgentMissingFieldsAndDocuments(t *testing.T) {
	actor := Actor{ID: "agent-1", Role: RoleAgent}
	d := NewDraft(actor)
	d.Select("bank-1")

	errs := Validate(d, Context{Actor: actor, Schema: agentSchema()})

	assert.GreaterOrEqual(t, len(errs), 2)
	assert.Equal(t, ValidationErrors{
		"Required fields missing: PAN",
		"Required documents missing: Aadhaar",
	}, errs)
}

func TestValidate_AgentComplete(t *testing.T) {
	actor := Actor{ID: "agent-1", Role: RoleAgent}
	d := NewDraft(actor)
	d.Select("bank-1")
	d.SetField("pan", "ABCDE1234F")
	d.AddDocument(Document{DocumentType: "aadhaar", URL: "https://files/a.pdf"})

	assert.Empty(t, Validate(d, Context{Actor: actor, Schema: agentSchema()}))
}

func TestValidate_AgentWithoutSchema(t *testing.T) {
	actor := Actor{ID: "agent-1", Role: RoleAgent}

	bank := NewDraft(actor)
	bank.Select("bank-1")
	assert.Equal(t, ValidationErrors{"No Lead Form configured for this bank"}, Validate(bank, Context{Actor: actor}))

	newLead := NewDraft(actor)
	newLead.Select(NewLeadOption)
	assert.Equal(t,
		ValidationErrors{"No New Lead form configured. Ask Admin to set up in Lead Forms."},
		Validate(newLead, Context{Actor: actor}))

	assert.Empty(t, Validate(bank, Context{Actor: actor, SchemaLoading: true}))
}

func TestValidate_NothingSelected(t *testing.T) {
	actor := Actor{ID: "agent-1", Role: RoleAgent}

	errs := Validate(NewDraft(actor), Context{Actor: actor})

	assert.Equal(t, ValidationErrors{"Bank is required"}, errs)
}

func TestValidate_SuperAdminMissingCommission(t *testing.T) {
	actor := Actor{ID: "admin-1", Role: RoleSuperAdmin}
	d := filledBankDraft(actor)

	errs := Validate(d, Context{Actor: actor})

	assert.Equal(t, ValidationErrors{
		"Commission Percentage is required",
		"Commission Amount is required",
	}, errs)
	assert.Equal(t, "Commission Percentage is required", errs.First())
}

func TestValidate_CommissionOutOfBounds(t *testing.T) {
	actor := Actor{ID: "admin-1", Role: RoleSuperAdmin}
	d := filledBankDraft(actor)
	d.Standard[KeyCommissionPercentage] = "150"
	d.Standard[KeyCommissionAmount] = "-5"

	errs := Validate(d, Context{Actor: actor})

	assert.Equal(t, ValidationErrors{
		"Commission Percentage must be between 0 and 100",
		"Commission Amount must be a positive number",
	}, errs)
}

func TestValidate_StandardFieldsMissing(t *testing.T) {
	actor := Actor{ID: "am-1", Role: RoleAccountsManager}
	d := NewDraft(actor)
	d.Select("bank-1")
	d.Standard[KeyCommissionPercentage] = "1"
	d.Standard[KeyCommissionAmount] = "0"
	d.Standard[KeyLoanAmount] = "0"

	errs := Validate(d, Context{Actor: actor})

	assert.Equal(t, ValidationErrors{
		"Customer Name is required",
		"Mobile is required",
		"DSA Code is required",
		"Remark is required",
		"Loan Type is required",
		"Loan Amount must be greater than 0",
	}, errs)
}

func TestValidate_RelationshipManagerNeedsAssignment(t *testing.T) {
	actor := Actor{ID: "rm-1", Role: RoleRelationshipManager}
	d := filledBankDraft(actor)
	d.AgentAssignment = ""

	errs := Validate(d, Context{Actor: actor})

	require.NotEmpty(t, errs)
	assert.Equal(t, "Please select an agent to assign this lead to", errs.First())
}

func TestValidate_RelationshipManagerSelfSkipsCommission(t *testing.T) {
	actor := Actor{ID: "rm-1", Role: RoleRelationshipManager}
	d := filledBankDraft(actor)

	assert.Empty(t, Validate(d, Context{Actor: actor}))
}

func TestValidate_FranchiseLimit(t *testing.T) {
	actor := Actor{ID: "fr-1", Role: RoleFranchise}
	d := filledBankDraft(actor)
	d.Standard[KeyCommissionPercentage] = "5"
	d.Standard[KeyCommissionAmount] = "5000.00"
	limit := &CommissionLimit{LimitType: LimitPercentage, MaxCommissionValue: 3}

	errs := Validate(d, Context{Actor: actor, CommissionLimit: limit})
	assert.Equal(t, ValidationErrors{
		"Commission Limit Exceeded: Commission cannot exceed Admin maximum limit of 3%",
	}, errs)

	assert.Empty(t, Validate(d, Context{Actor: actor}), "no configured limit")
}

func TestValidate_EditWithStoredMobile(t *testing.T) {
	actor := Actor{ID: "admin-1", Role: RoleSuperAdmin}
	stored := &Lead{ID: "lead-1", LeadType: TypeBank, Bank: &Ref{ID: "bank-1"}, ApplicantMobile: "8888888888"}
	d := DraftFromLead(stored, actor)
	for k, v := range map[string]string{
		KeyCustomerName:    "Ravi Kumar",
		KeyApplicantMobile: "",
		KeyDSACode:         "DSA-7",
		KeyRemarks:         "walk-in",
		KeyLoanType:        "home_loan",
		KeyLoanAmount:      "100000",
	} {
		d.Standard[k] = v
	}

	assert.Empty(t, Validate(d, Context{Actor: actor}))

	d.Original = &Lead{ID: "lead-1", LeadType: TypeBank, Bank: &Ref{ID: "bank-1"}}
	assert.Contains(t, Validate(d, Context{Actor: actor}), "Mobile is required")
}

func TestValidationErrors_Error(t *testing.T) {
	errs := ValidationErrors{"a", "b"}
	assert.Equal(t, "a; b", errs.Error())
	assert.Empty(t, ValidationErrors(nil).First())
}
