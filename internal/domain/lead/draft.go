package lead

import (
	"maps"
	"slices"
	"strings"
)

// Standard field keys known to the fixed-field form.
const (
	KeyCustomerName         = "customerName"
	KeyLeadName             = "leadName"
	KeyApplicantMobile      = "applicantMobile"
	KeyApplicantEmail       = "applicantEmail"
	KeyLoanType             = "loanType"
	KeyLoanAmount           = "loanAmount"
	KeyBranch               = "branch"
	KeyLoanAccountNo        = "loanAccountNo"
	KeyDSACode              = "dsaCode"
	KeyRemarks              = "remarks"
	KeySMBMName             = "smBmName"
	KeySMBMEmail            = "smBmEmail"
	KeySMBMMobile           = "smBmMobile"
	KeyAddress              = "address"
	KeyCommissionPercentage = "commissionPercentage"
	KeyCommissionAmount     = "commissionAmount"
)

var standardKeys = []string{
	KeyCustomerName, KeyLeadName, KeyApplicantMobile, KeyApplicantEmail,
	KeyLoanType, KeyLoanAmount, KeyBranch, KeyLoanAccountNo, KeyDSACode,
	KeyRemarks, KeySMBMName, KeySMBMEmail, KeySMBMMobile, KeyAddress,
	KeyCommissionPercentage, KeyCommissionAmount,
}

// IsStandardKey reports whether key is one of the fixed form fields.
func IsStandardKey(key string) bool {
	return slices.Contains(standardKeys, key)
}

// StandardKeys returns the fixed form field keys in display order.
func StandardKeys() []string {
	return slices.Clone(standardKeys)
}

// Document is an uploaded file attached to a lead
type Document struct {
	DocumentType string `json:"documentType" yaml:"documentType"`
	URL          string `json:"url" yaml:"url"`
	FileName     string `json:"fileName,omitempty" yaml:"fileName,omitempty"`
	MimeType     string `json:"mimeType,omitempty" yaml:"mimeType,omitempty"`
	FileSize     int64  `json:"fileSize,omitempty" yaml:"fileSize,omitempty"`
}

// Draft is the in-memory state of one lead form. It is never persisted.
type Draft struct {
	LeadType LeadType `json:"leadType" yaml:"leadType"`
	BankID   string   `json:"bankId,omitempty" yaml:"bankId,omitempty"`

	Standard map[string]string `json:"standard" yaml:"standard"`
	Dynamic  map[string]string `json:"dynamic" yaml:"dynamic"`

	AgentAssignment    string `json:"agentAssignment,omitempty" yaml:"agentAssignment,omitempty"`
	SubAgentAssignment string `json:"subAgentAssignment,omitempty" yaml:"subAgentAssignment,omitempty"`
	AssignBankID       string `json:"assignBankId,omitempty" yaml:"assignBankId,omitempty"`
	BankManager        string `json:"bankManager,omitempty" yaml:"bankManager,omitempty"`

	Documents []Document `json:"documents" yaml:"documents"`

	// Original is the stored lead when the draft edits one.
	Original *Lead `json:"original,omitempty" yaml:"original,omitempty"`
}

// NewDraft opens an empty draft for actor.
func NewDraft(actor Actor) *Draft {
	d := &Draft{
		Standard:  make(map[string]string),
		Dynamic:   make(map[string]string),
		Documents: []Document{},
	}
	if actor.Role.AssignsAgents() {
		d.AgentAssignment = SelfAssignment
	}
	return d
}

// DraftFromLead pre-populates a draft from an existing lead.
func DraftFromLead(l *Lead, actor Actor) *Draft {
	d := NewDraft(actor)
	d.Original = l

	for k, v := range l.FormValues {
		d.Dynamic[k] = stringify(v)
	}
	fv := d.Dynamic

	if l.IsNewLead() {
		d.LeadType = TypeNewLead
	} else if bank := RefID(l.Bank); bank != "" {
		d.LeadType = TypeBank
		d.BankID = bank
	}
	d.AssignBankID = RefID(l.Bank)

	if agent := RefID(l.Agent); agent != "" {
		d.AgentAssignment = agent
	}
	d.SubAgentAssignment = RefID(l.SubAgent)

	s := d.Standard
	s[KeyCustomerName] = firstNonEmpty(l.CustomerName, l.LeadName, fv["customerName"], fv["leadName"])
	s[KeyLeadName] = firstNonEmpty(l.LeadName, l.CustomerName, fv["leadName"], fv["customerName"])
	s[KeyApplicantEmail] = firstNonEmpty(l.ApplicantEmail, l.Email, fv["email"], fv["applicantEmail"])
	s[KeyApplicantMobile] = l.StoredMobile()
	s[KeyAddress] = firstNonEmpty(l.Address, fv["address"])
	s[KeyLoanType] = firstNonEmpty(l.LoanType, fv["loanType"])
	s[KeyLoanAmount] = firstNonEmpty(formatOptional(l.LoanAmount), fv["loanAmount"])
	s[KeyBranch] = firstNonEmpty(l.Branch, fv["branch"])
	s[KeyLoanAccountNo] = firstNonEmpty(l.LoanAccountNo, fv["loanAccountNo"], fv["loanAccountNumber"])
	s[KeyDSACode] = firstNonEmpty(l.DSACode, l.CodeUse, fv["dsaCode"], fv["codeUse"])
	s[KeyRemarks] = firstNonEmpty(l.Remarks, fv["remark"], fv["remarks"])
	s[KeySMBMEmail] = firstNonEmpty(l.SMBMEmail, fv["smBmEmail"])
	s[KeySMBMMobile] = firstNonEmpty(l.SMBMMobile, fv["smBmMobile"])
	s[KeyCommissionPercentage] = formatOptional(l.CommissionPercent)
	s[KeyCommissionAmount] = formatOptional(l.CommissionAmount)

	if len(l.Documents) > 0 {
		d.Documents = slices.Clone(l.Documents)
	}
	return d
}

// IsEditing reports whether the draft edits a stored lead.
func (d *Draft) IsEditing() bool {
	return d.Original != nil
}

// IsNewLead reports whether the draft targets the generic new-lead form.
func (d *Draft) IsNewLead(schema *Schema) bool {
	return d.LeadType == TypeNewLead || (schema != nil && schema.LeadType == TypeNewLead)
}

// Selection returns the bank id, NewLeadOption, or "" when nothing is selected.
func (d *Draft) Selection() string {
	if d.LeadType == TypeNewLead {
		return NewLeadOption
	}
	return d.BankID
}

// Select switches the draft to a bank id or to NewLeadOption.
func (d *Draft) Select(selection string) {
	switch selection {
	case "":
		d.LeadType, d.BankID = "", ""
	case NewLeadOption:
		d.LeadType, d.BankID = TypeNewLead, ""
	default:
		d.LeadType, d.BankID = TypeBank, selection
	}
}

// SetField records a schema field edit, writing through to the standard
// value when the key is a standard key.
func (d *Draft) SetField(key, value string) {
	d.ensureMaps()
	d.Dynamic[key] = value
	if IsStandardKey(key) {
		d.Standard[key] = value
	}
}

// Value returns the display value for key: dynamic first, then standard.
func (d *Draft) Value(key string) string {
	if v, ok := d.Dynamic[key]; ok {
		return v
	}
	return d.Standard[key]
}

// Std returns the trimmed standard value for key.
func (d *Draft) Std(key string) string {
	return strings.TrimSpace(d.Standard[key])
}

// Clone returns a deep copy of d. Original is shared since it is read-only.
func (d *Draft) Clone() *Draft {
	c := *d
	c.Standard = maps.Clone(d.Standard)
	c.Dynamic = maps.Clone(d.Dynamic)
	c.Documents = slices.Clone(d.Documents)
	c.ensureMaps()
	return &c
}

// AddDocument appends an uploaded document.
func (d *Draft) AddDocument(doc Document) {
	d.Documents = append(d.Documents, doc)
}

// RemoveDocument drops the document at index, reporting whether it existed.
func (d *Draft) RemoveDocument(index int) bool {
	if index < 0 || index >= len(d.Documents) {
		return false
	}
	d.Documents = slices.Delete(d.Documents, index, index+1)
	return true
}

func (d *Draft) ensureMaps() {
	if d.Standard == nil {
		d.Standard = make(map[string]string)
	}
	if d.Dynamic == nil {
		d.Dynamic = make(map[string]string)
	}
	if d.Documents == nil {
		d.Documents = []Document{}
	}
}

// Edit applies a user edit and the derived commission recalculation.
// schemaField marks keys that belong to the active schema's fields.
func Edit(d *Draft, key, value string, schemaField bool) (*Draft, error) {
	if !schemaField && !IsStandardKey(key) {
		return nil, ErrUnknownField
	}
	next := d.Clone()
	if schemaField {
		next.SetField(key, value)
	}
	if IsStandardKey(key) {
		next = Recalculate(key, value, next)
	}
	return next, nil
}
