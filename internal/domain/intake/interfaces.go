package intake

import (
	"context"
	"mime/multipart"
	"time"

	"leadintake/internal/domain"
	"leadintake/internal/domain/lead"
	"leadintake/internal/domain/staff"
	"leadintake/internal/domain/upload"
)

// Backend is the part of the lead backend a form session talks to
type Backend interface {
	SchemaForBank(ctx context.Context, bankID string) (*lead.Schema, error)
	SchemaForNewLead(ctx context.Context) (*lead.Schema, error)
	CommissionLimit(ctx context.Context, bankID string) (*lead.CommissionLimit, error)

	GetLead(ctx context.Context, id string) (*lead.Lead, error)
	CreateLead(ctx context.Context, p *lead.Payload) (*lead.Lead, error)
	UpdateLead(ctx context.Context, id string, p *lead.Payload) (*lead.Lead, error)

	ListBanks(ctx context.Context) ([]lead.Ref, error)
	ListAgents(ctx context.Context) ([]lead.Ref, error)
	ListSubAgents(ctx context.Context) ([]lead.Ref, error)
}

// Uploader forwards a document to storage
type Uploader interface {
	Forward(ctx context.Context, target upload.Target, fileHeader *multipart.FileHeader) (*lead.Document, error)
}

// ManagerResolver finds or creates the bank manager named on a draft
type ManagerResolver interface {
	ResolveOrCreate(ctx context.Context, bankID string, contact staff.Contact) (string, error)
}

// Journal records submission outcomes
type Journal interface {
	Record(ctx context.Context, s *domain.Submission) error
	// FindSucceeded returns a successful create with fingerprint recorded at or after since.
	FindSucceeded(ctx context.Context, fingerprint string, since time.Time) (*domain.Submission, error)
	List(ctx context.Context, f domain.SubmissionFilter) ([]*domain.Submission, int64, error)
}

// Publisher pushes session views to live subscribers
type Publisher interface {
	Publish(sessionID string, v *View)
	Close(sessionID string)
}
