package lead

import (
	"strings"
)

// ValidationErrors lists every failed check in checklist order
type ValidationErrors []string

func (v ValidationErrors) Error() string {
	return strings.Join(v, "; ")
}

// First returns the message shown when a single toast is displayed.
func (v ValidationErrors) First() string {
	if len(v) == 0 {
		return ""
	}
	return v[0]
}

// Context carries everything besides the draft that validation and assembly need.
type Context struct {
	Actor           Actor
	Schema          *Schema
	SchemaLoading   bool
	CommissionLimit *CommissionLimit
}

// Policy derives the role policy for d.
func (c Context) Policy(d *Draft) Policy {
	return Classify(c.Actor.Role, d.IsEditing(), d.AgentAssignment)
}

// Validate runs the submission checklist and returns every failure.
// An empty result means the draft may be submitted.
func Validate(d *Draft, c Context) ValidationErrors {
	var errs ValidationErrors
	policy := c.Policy(d)
	newLead := d.IsNewLead(c.Schema)

	if policy.RequiresAssignment && strings.TrimSpace(d.AgentAssignment) == "" {
		errs = append(errs, "Please select an agent to assign this lead to")
	}

	if !newLead && d.BankID == "" {
		errs = append(errs, "Bank is required")
	}

	selected := newLead || d.BankID != ""
	if policy.UseSchemaPath && c.Schema == nil && !c.SchemaLoading && selected {
		if newLead {
			errs = append(errs, "No New Lead form configured. Ask Admin to set up in Lead Forms.")
		} else {
			errs = append(errs, "No Lead Form configured for this bank")
		}
	}

	if policy.CommissionApplies() && !newLead {
		errs = append(errs, validateCommission(d, c)...)
	}

	switch {
	case policy.UseSchemaPath && c.Schema != nil:
		errs = append(errs, validateSchemaFields(d, c.Schema)...)
	case !policy.UseSchemaPath && !newLead:
		errs = append(errs, validateStandardFields(d)...)
	}

	return errs
}

func validateCommission(d *Draft, c Context) []string {
	var errs []string
	pct := d.Std(KeyCommissionPercentage)
	amount := d.Std(KeyCommissionAmount)

	if !d.IsEditing() {
		if pct == "" {
			errs = append(errs, "Commission Percentage is required")
		}
		if amount == "" {
			errs = append(errs, "Commission Amount is required")
		}
	}

	inBounds := true
	if pct != "" && !ValidPercentage(pct) {
		errs = append(errs, "Commission Percentage must be between 0 and 100")
		inBounds = false
	}
	if amount != "" && !ValidAmount(amount) {
		errs = append(errs, "Commission Amount must be a positive number")
		inBounds = false
	}

	if inBounds && c.Actor.Role == RoleFranchise && d.BankID != "" {
		if msg := CheckCommissionLimit(c.CommissionLimit, pct, amount); msg != "" {
			errs = append(errs, "Commission Limit Exceeded: "+msg)
		}
	}
	return errs
}

func validateSchemaFields(d *Draft, s *Schema) []string {
	var errs []string

	var missing []string
	for _, f := range s.EffectiveFields() {
		if !f.Required {
			continue
		}
		if strings.TrimSpace(d.Value(f.Key)) == "" {
			missing = append(missing, f.DisplayName())
		}
	}
	if len(missing) > 0 {
		errs = append(errs, "Required fields missing: "+strings.Join(missing, ", "))
	}

	var missingDocs []string
	for _, dt := range s.DocumentTypes {
		if !dt.Required {
			continue
		}
		if !hasUpload(d.Documents, dt.Key) {
			missingDocs = append(missingDocs, dt.DisplayName())
		}
	}
	if len(missingDocs) > 0 {
		errs = append(errs, "Required documents missing: "+strings.Join(missingDocs, ", "))
	}
	return errs
}

func validateStandardFields(d *Draft) []string {
	var errs []string

	if d.Std(KeyCustomerName) == "" {
		errs = append(errs, "Customer Name is required")
	}
	if d.Std(KeyApplicantMobile) == "" && (!d.IsEditing() || d.Original.StoredMobile() == "") {
		errs = append(errs, "Mobile is required")
	}
	if d.Std(KeyDSACode) == "" {
		errs = append(errs, "DSA Code is required")
	}
	if d.Std(KeyRemarks) == "" {
		errs = append(errs, "Remark is required")
	}
	if d.Std(KeyLoanType) == "" {
		errs = append(errs, "Loan Type is required")
	}
	if loan, ok := parseDecimal(d.Std(KeyLoanAmount)); !ok || !loan.IsPositive() {
		errs = append(errs, "Loan Amount must be greater than 0")
	}
	return errs
}

func hasUpload(docs []Document, docType string) bool {
	for _, doc := range docs {
		if doc.DocumentType == docType && strings.TrimSpace(doc.URL) != "" {
			return true
		}
	}
	return false
}
