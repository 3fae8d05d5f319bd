package intake

import (
	"time"

	"leadintake/internal/domain"
	"leadintake/internal/domain/lead"
)

// View is the renderable state of a session
type View struct {
	ID            string        `json:"id"`
	Mode          string        `json:"mode"`
	LeadID        string        `json:"leadId,omitempty"`
	CorrelationID string        `json:"correlationId"`
	Selection     string        `json:"selection"`
	LeadType      lead.LeadType `json:"leadType,omitempty"`
	Policy        lead.Policy   `json:"policy"`

	SchemaID           string                `json:"schemaId,omitempty"`
	SchemaLoading      bool                  `json:"schemaLoading"`
	ConfigurationError string                `json:"configurationError,omitempty"`
	Fields             []lead.Widget         `json:"fields"`
	DocumentTypes      []lead.DocumentSlot   `json:"documentTypes"`
	Documents          []lead.Document       `json:"documents"`
	Standard           map[string]string     `json:"standard"`
	CommissionLimit    *lead.CommissionLimit `json:"commissionLimit,omitempty"`

	Assignment Assignment `json:"assignment"`
	Options    Options    `json:"options"`

	Busy bool `json:"busy"`
}

// Assignment is who the lead goes to
type Assignment struct {
	Agent       string `json:"agent,omitempty"`
	SubAgent    string `json:"subAgent,omitempty"`
	AssignBank  string `json:"assignBank,omitempty"`
	BankManager string `json:"bankManager,omitempty"`
}

// OpenRequest opens a blank session or one editing leadId
type OpenRequest struct {
	LeadID string `json:"leadId" validate:"omitempty,max=64"`
}

type SelectionRequest struct {
	Selection string `json:"selection" validate:"max=64"`
}

type FieldRequest struct {
	Key   string `json:"key" validate:"required,max=128"`
	Value string `json:"value" validate:"max=4096"`
}

// AssignmentRequest changes only the members that are present
type AssignmentRequest struct {
	Agent      *string `json:"agent" validate:"omitempty,max=64"`
	SubAgent   *string `json:"subAgent" validate:"omitempty,max=64"`
	AssignBank *string `json:"assignBank" validate:"omitempty,max=64"`
}

type UploadRequest struct {
	DocumentType string `form:"documentType" validate:"required,max=128"`
	Description  string `form:"description" validate:"max=512"`
}

// ValidationResult is the outcome of a dry-run validation
type ValidationResult struct {
	Valid  bool     `json:"valid"`
	Errors []string `json:"errors"`
}

// PreviewRequest renders and checks a schema without a session
type PreviewRequest struct {
	Role            lead.Role             `json:"role" validate:"omitempty,oneof=super_admin accounts_manager relationship_manager franchise regional_manager agent sub_agent"`
	Schema          *lead.Schema          `json:"schema" validate:"required"`
	Draft           *lead.Draft           `json:"draft"`
	CommissionLimit *lead.CommissionLimit `json:"commissionLimit"`
}

// PreviewResult is what the form would show and send for a draft
type PreviewResult struct {
	Policy        lead.Policy         `json:"policy"`
	Fields        []lead.Widget       `json:"fields"`
	DocumentTypes []lead.DocumentSlot `json:"documentTypes"`
	Valid         bool                `json:"valid"`
	Errors        []string            `json:"errors"`
	Payload       *lead.Payload       `json:"payload,omitempty"`
}

// LiveMessage is an inbound websocket command
type LiveMessage struct {
	Type       string  `json:"type"`
	Key        string  `json:"key,omitempty"`
	Value      string  `json:"value,omitempty"`
	Selection  string  `json:"selection,omitempty"`
	Agent      *string `json:"agent,omitempty"`
	SubAgent   *string `json:"subAgent,omitempty"`
	AssignBank *string `json:"assignBank,omitempty"`
}

// LiveEvent is an outbound websocket message
type LiveEvent struct {
	Type    string `json:"type"`
	Session string `json:"session"`
	View    *View  `json:"view,omitempty"`
	Error   string `json:"error,omitempty"`
}

const (
	EventView   = "view"
	EventError  = "error"
	EventClosed = "closed"
)

// SubmissionResponse is one journal row as listed to admins
type SubmissionResponse struct {
	ID        string    `json:"id"`
	SessionID string    `json:"sessionId"`
	ActorID   string    `json:"actorId"`
	ActorRole string    `json:"actorRole"`
	Mode      string    `json:"mode"`
	LeadID    string    `json:"leadId,omitempty"`
	LeadType  string    `json:"leadType"`
	BankID    string    `json:"bankId,omitempty"`
	Status    string    `json:"status"`
	Error     string    `json:"error,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

func toSubmissionResponse(s *domain.Submission) SubmissionResponse {
	return SubmissionResponse{
		ID:        s.ID,
		SessionID: s.SessionID,
		ActorID:   s.ActorID,
		ActorRole: s.ActorRole,
		Mode:      string(s.Mode),
		LeadID:    s.LeadID,
		LeadType:  s.LeadType,
		BankID:    s.BankID,
		Status:    string(s.Status),
		Error:     s.Error,
		CreatedAt: s.CreatedAt,
	}
}
