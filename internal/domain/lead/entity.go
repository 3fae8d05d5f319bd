package lead

import (
	"fmt"
	"strings"
	"time"

	"github.com/goccy/go-json"
)

// Status represents lead status
type Status string

const (
	StatusLogged     Status = "logged"
	StatusSanctioned Status = "sanctioned"
	StatusDisbursed  Status = "disbursed"
	StatusRejected   Status = "rejected"
)

// LeadType distinguishes bank-bound leads from generic intake leads
type LeadType string

const (
	TypeBank    LeadType = "bank"
	TypeNewLead LeadType = "new_lead"
)

// NewLeadOption is the selection value that picks the generic intake form instead of a bank.
const NewLeadOption = "new_lead"

// Ref is a reference to another backend record. The backend sends either a bare
// id string or a populated object keyed by "_id" or "id".
type Ref struct {
	ID     string `json:"id" yaml:"id"`
	Name   string `json:"name,omitempty" yaml:"name,omitempty"`
	Email  string `json:"email,omitempty" yaml:"email,omitempty"`
	Mobile string `json:"mobile,omitempty" yaml:"mobile,omitempty"`
}

func (r *Ref) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		return json.Unmarshal(b, &r.ID)
	}

	var aux struct {
		MongoID string `json:"_id"`
		ID      string `json:"id"`
		Name    string `json:"name"`
		Email   string `json:"email"`
		Mobile  string `json:"mobile"`
	}
	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}
	r.ID = aux.ID
	if r.ID == "" {
		r.ID = aux.MongoID
	}
	r.Name, r.Email, r.Mobile = aux.Name, aux.Email, aux.Mobile
	return nil
}

// RefID returns the id of r or "" when r is nil.
func RefID(r *Ref) string {
	if r == nil {
		return ""
	}
	return r.ID
}

// Lead is a lead record as returned by the backend
type Lead struct {
	ID       string   `json:"id"`
	LeadType LeadType `json:"leadType"`
	Status   Status   `json:"status,omitempty"`

	// Assignment
	Bank     *Ref `json:"bank,omitempty"`
	Agent    *Ref `json:"agent,omitempty"`
	SubAgent *Ref `json:"subAgent,omitempty"`
	LeadForm *Ref `json:"leadForm,omitempty"`

	// Applicant
	CustomerName    string `json:"customerName,omitempty"`
	LeadName        string `json:"leadName,omitempty"`
	ApplicantEmail  string `json:"applicantEmail,omitempty"`
	Email           string `json:"email,omitempty"`
	ApplicantMobile string `json:"applicantMobile,omitempty"`
	Phone           string `json:"phone,omitempty"`
	Mobile          string `json:"mobile,omitempty"`
	Address         string `json:"address,omitempty"`

	// Loan
	LoanType          string   `json:"loanType,omitempty"`
	LoanAmount        *float64 `json:"loanAmount,omitempty"`
	Branch            string   `json:"branch,omitempty"`
	LoanAccountNo     string   `json:"loanAccountNo,omitempty"`
	DSACode           string   `json:"dsaCode,omitempty"`
	CodeUse           string   `json:"codeUse,omitempty"`
	Remarks           string   `json:"remarks,omitempty"`
	SMBMEmail         string   `json:"smBmEmail,omitempty"`
	SMBMMobile        string   `json:"smBmMobile,omitempty"`
	CommissionPercent *float64 `json:"commissionPercentage,omitempty"`
	CommissionAmount  *float64 `json:"commissionAmount,omitempty"`

	FormValues map[string]any `json:"formValues,omitempty"`
	Documents  []Document     `json:"documents,omitempty"`

	CreatedAt *time.Time `json:"createdAt,omitempty"`
	UpdatedAt *time.Time `json:"updatedAt,omitempty"`
}

func (l *Lead) UnmarshalJSON(b []byte) error {
	type plain Lead
	aux := struct {
		*plain
		MongoID string `json:"_id"`
	}{plain: (*plain)(l)}
	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}
	if l.ID == "" {
		l.ID = aux.MongoID
	}
	return nil
}

// IsNewLead returns true if the lead is not tied to a bank
func (l *Lead) IsNewLead() bool {
	return l.LeadType == TypeNewLead
}

// StoredMobile returns the mobile number the backend already holds for the lead.
func (l *Lead) StoredMobile() string {
	if l == nil {
		return ""
	}
	return firstNonEmpty(
		l.ApplicantMobile,
		l.Phone,
		l.Mobile,
		l.formValue("mobile"),
		l.formValue("applicantMobile"),
	)
}

func (l *Lead) formValue(key string) string {
	v, ok := l.FormValues[key]
	if !ok || v == nil {
		return ""
	}
	return stringify(v)
}

func stringify(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return formatNumber(t)
	default:
		return fmt.Sprint(t)
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
