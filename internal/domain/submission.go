package domain

import (
	"errors"
	"time"
)

var (
	ErrSubmissionNotFound  = errors.New("submission not found")
	ErrDuplicateSubmission = errors.New("identical lead already submitted")
)

type SubmissionMode string

const (
	SubmissionCreate SubmissionMode = "create"
	SubmissionUpdate SubmissionMode = "update"
)

type SubmissionStatus string

const (
	SubmissionSucceeded SubmissionStatus = "succeeded"
	SubmissionFailed    SubmissionStatus = "failed"
)

// Submission is one journaled attempt to create or update a lead on the backend.
// Drafts themselves are never stored; only the outcome and the payload fingerprint are.
type Submission struct {
	ID          string           `json:"id"`
	SessionID   string           `json:"session_id"`
	ActorID     string           `json:"actor_id"`
	ActorRole   string           `json:"actor_role"`
	Mode        SubmissionMode   `json:"mode"`
	LeadID      string           `json:"lead_id,omitempty"`
	LeadType    string           `json:"lead_type"`
	BankID      string           `json:"bank_id,omitempty"`
	Fingerprint string           `json:"fingerprint"`
	Status      SubmissionStatus `json:"status"`
	Error       string           `json:"error,omitempty"`
	CreatedAt   time.Time        `json:"created_at"`
}

func (s *Submission) Succeeded() bool {
	return s.Status == SubmissionSucceeded
}

// SubmissionFilter narrows a journal listing
type SubmissionFilter struct {
	ActorID string
	Status  SubmissionStatus
	Limit   int
	Offset  int
}
