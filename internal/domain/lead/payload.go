package lead

import (
	"maps"
	"strings"
)

// DocumentRef is an uploaded document as referenced in the create/update body
type DocumentRef struct {
	DocumentType string `json:"documentType"`
	URL          string `json:"url"`
}

// Payload is the create/update request body sent to the backend.
// Pointer and map members are omitted from the JSON when nil; this is the
// only way a key is left out, so a present zero commission is still sent.
type Payload struct {
	LeadType LeadType `json:"leadType"`

	BankID     *string           `json:"bankId,omitempty"`
	Bank       *string           `json:"bank,omitempty"`
	LeadForm   *string           `json:"leadForm,omitempty"`
	FormValues map[string]string `json:"formValues,omitempty"`

	Agent       *string `json:"agent,omitempty"`
	SubAgent    *string `json:"subAgent,omitempty"`
	BankManager *string `json:"bankManager,omitempty"`

	CustomerName    *string `json:"customerName,omitempty"`
	LeadName        *string `json:"leadName,omitempty"`
	ApplicantEmail  *string `json:"applicantEmail,omitempty"`
	ApplicantMobile *string `json:"applicantMobile,omitempty"`
	Address         *string `json:"address,omitempty"`
	Branch          *string `json:"branch,omitempty"`
	LoanAccountNo   *string `json:"loanAccountNo,omitempty"`
	DSACode         *string `json:"dsaCode,omitempty"`
	Remarks         *string `json:"remarks,omitempty"`
	SMBMEmail       *string `json:"smBmEmail,omitempty"`
	SMBMMobile      *string `json:"smBmMobile,omitempty"`

	LoanType             *string  `json:"loanType,omitempty"`
	LoanAmount           *float64 `json:"loanAmount,omitempty"`
	CommissionPercentage *float64 `json:"commissionPercentage,omitempty"`
	CommissionAmount     *float64 `json:"commissionAmount,omitempty"`

	Documents []DocumentRef `json:"documents"`
}

// Assemble builds the request body for d. It assumes Validate passed.
func Assemble(d *Draft, c Context) *Payload {
	policy := c.Policy(d)
	newLead := d.IsNewLead(c.Schema)

	p := &Payload{
		LeadType:  TypeBank,
		Documents: make([]DocumentRef, 0, len(d.Documents)),
	}
	if newLead {
		p.LeadType = TypeNewLead
	} else {
		p.BankID = optional(d.BankID)
		p.Bank = optional(d.BankID)
	}

	if policy.UseSchemaPath && c.Schema != nil {
		p.LeadForm = optional(c.Schema.ID)
		p.FormValues = maps.Clone(d.Dynamic)
		if p.FormValues == nil {
			p.FormValues = map[string]string{}
		}
	}

	for _, doc := range d.Documents {
		p.Documents = append(p.Documents, DocumentRef{DocumentType: doc.DocumentType, URL: doc.URL})
	}

	if policy.CanSelectSubAgent {
		p.SubAgent = optional(d.SubAgentAssignment)
	}
	if c.Actor.Role.AssignsAgents() {
		target := strings.TrimSpace(d.AgentAssignment)
		if target == SelfAssignment {
			target = c.Actor.ID
		}
		p.Agent = optional(target)
	}

	if !policy.UseSchemaPath {
		p.CustomerName = optional(firstNonEmpty(d.Std(KeyCustomerName), d.Std(KeyLeadName)))
		p.LeadName = optional(firstNonEmpty(d.Std(KeyLeadName), d.Std(KeyCustomerName)))
		p.ApplicantEmail = optional(d.Std(KeyApplicantEmail))
		mobile := d.Std(KeyApplicantMobile)
		if mobile == "" && d.IsEditing() {
			mobile = d.Original.StoredMobile()
		}
		p.ApplicantMobile = optional(mobile)
		p.Address = optional(d.Std(KeyAddress))
		p.Branch = optional(d.Std(KeyBranch))
		p.LoanAccountNo = optional(d.Std(KeyLoanAccountNo))
		p.DSACode = optional(d.Std(KeyDSACode))
		p.Remarks = optional(d.Std(KeyRemarks))
		p.SMBMEmail = optional(d.Std(KeySMBMEmail))
		p.SMBMMobile = optional(d.Std(KeySMBMMobile))
		p.BankManager = optional(d.BankManager)
	}

	switch {
	case !newLead:
		p.LoanType = optional(loanValue(d, KeyLoanType))
		p.LoanAmount = number(loanValue(d, KeyLoanAmount))
		if policy.CommissionApplies() {
			p.CommissionPercentage = number(d.Std(KeyCommissionPercentage))
			p.CommissionAmount = number(d.Std(KeyCommissionAmount))
		}

	case d.IsEditing() && policy.CanAssignBank && d.AssignBankID != "":
		// bank assigned to an existing new lead; leadType stays new_lead
		p.BankID = optional(d.AssignBankID)
		p.Bank = optional(d.AssignBankID)
		p.LoanType = optional(loanValue(d, KeyLoanType))
		p.LoanAmount = number(loanValue(d, KeyLoanAmount))
		p.LoanAccountNo = optional(loanValue(d, KeyLoanAccountNo))
		p.Branch = optional(loanValue(d, KeyBranch))
		if policy.CommissionApplies() {
			p.CommissionPercentage = number(d.Std(KeyCommissionPercentage))
			p.CommissionAmount = number(d.Std(KeyCommissionAmount))
		}
	}

	return p
}

func loanValue(d *Draft, key string) string {
	return firstNonEmpty(d.Std(key), strings.TrimSpace(d.Dynamic[key]))
}

func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

func number(s string) *float64 {
	v, ok := parseDecimal(s)
	if !ok {
		return nil
	}
	f := v.InexactFloat64()
	return &f
}
