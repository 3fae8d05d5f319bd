package intake

import (
	"sync"
	"time"

	"leadintake/internal/domain"
	"leadintake/internal/domain/lead"
)

// Loan types offered on the fixed-field form.
var LoanTypes = []lead.Option{
	{Value: "personal_loan", Label: "Personal Loan"},
	{Value: "home_loan", Label: "Home Loan"},
	{Value: "business_loan", Label: "Business Loan"},
	{Value: "car_loan", Label: "Car Loan"},
	{Value: "education_loan", Label: "Education Loan"},
}

// Options are the dropdown lists a session needs besides the schema
type Options struct {
	Banks     []lead.Ref    `json:"banks"`
	Agents    []lead.Ref    `json:"agents"`
	SubAgents []lead.Ref    `json:"subAgents"`
	LoanTypes []lead.Option `json:"loanTypes"`
}

// Session is one open lead form owned by a single actor.
// All mutable state is guarded by mu; backend calls run without it.
type Session struct {
	ID            string
	Actor         lead.Actor
	CorrelationID string
	CreatedAt     time.Time

	mu            sync.Mutex
	draft         *lead.Draft
	schema        *lead.Schema
	schemaErr     error
	schemaLoading bool
	limitLoading  bool
	generation    uint64
	limit         *lead.CommissionLimit
	options       Options
	uploads       int
	submitting    bool
}

func newSession(id string, actor lead.Actor, correlationID string, draft *lead.Draft) *Session {
	return &Session{
		ID:            id,
		Actor:         actor,
		CorrelationID: correlationID,
		CreatedAt:     time.Now(),
		draft:         draft,
		options: Options{
			Banks:     []lead.Ref{},
			Agents:    []lead.Ref{},
			SubAgents: []lead.Ref{},
			LoanTypes: LoanTypes,
		},
	}
}

// context builds the validation context from the current session state.
// Callers hold mu.
func (s *Session) context() lead.Context {
	return lead.Context{
		Actor:           s.Actor,
		Schema:          s.schema,
		SchemaLoading:   s.schemaLoading,
		CommissionLimit: s.limit,
	}
}

func (s *Session) busy() bool {
	return s.uploads > 0 || s.submitting
}

// loading reports whether the form or commission limit for the current
// selection is still being fetched. Validation is incomplete until both land.
func (s *Session) loading() bool {
	return s.schemaLoading || s.limitLoading
}

// mode reports whether submitting creates a lead or updates the edited one.
func (s *Session) mode() domain.SubmissionMode {
	if s.draft.IsEditing() {
		return domain.SubmissionUpdate
	}
	return domain.SubmissionCreate
}

func (s *Session) entityID() string {
	if s.draft.IsEditing() && s.draft.Original.ID != "" {
		return s.draft.Original.ID
	}
	return s.CorrelationID
}
