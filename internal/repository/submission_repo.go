package repository

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"leadintake/internal/domain"
)

// SubmissionRepository journals lead submissions.
type SubmissionRepository struct {
	db *gorm.DB
}

func NewSubmissionRepository(db *gorm.DB) *SubmissionRepository {
	return &SubmissionRepository{db: db}
}

type submissionModel struct {
	ID          string    `gorm:"column:id;primaryKey;size:36"`
	SessionID   string    `gorm:"column:session_id;size:36;index"`
	ActorID     string    `gorm:"column:actor_id;size:64;index"`
	ActorRole   string    `gorm:"column:actor_role;size:32"`
	Mode        string    `gorm:"column:mode;size:16"`
	LeadID      *string   `gorm:"column:lead_id;size:64"`
	LeadType    string    `gorm:"column:lead_type;size:16"`
	BankID      *string   `gorm:"column:bank_id;size:64"`
	Fingerprint string    `gorm:"column:fingerprint;size:64;index"`
	CreatedBy   *string   `gorm:"column:created_by_session;size:36;uniqueIndex"`
	Status      string    `gorm:"column:status;size:16;index"`
	Error       *string   `gorm:"column:error"`
	CreatedAt   time.Time `gorm:"column:created_at;index"`
}

func (submissionModel) TableName() string { return "lead_submissions" }

// Models lists the tables owned by the repository package, for migration.
func Models() []any {
	return []any{&submissionModel{}}
}

func toDomainSubmission(m submissionModel) *domain.Submission {
	return &domain.Submission{
		ID:          m.ID,
		SessionID:   m.SessionID,
		ActorID:     m.ActorID,
		ActorRole:   m.ActorRole,
		Mode:        domain.SubmissionMode(m.Mode),
		LeadID:      deref(m.LeadID),
		LeadType:    m.LeadType,
		BankID:      deref(m.BankID),
		Fingerprint: m.Fingerprint,
		Status:      domain.SubmissionStatus(m.Status),
		Error:       deref(m.Error),
		CreatedAt:   m.CreatedAt,
	}
}

func toSubmissionModel(s *domain.Submission) submissionModel {
	m := submissionModel{
		ID:          s.ID,
		SessionID:   s.SessionID,
		ActorID:     s.ActorID,
		ActorRole:   s.ActorRole,
		Mode:        string(s.Mode),
		LeadID:      ptr(s.LeadID),
		LeadType:    s.LeadType,
		BankID:      ptr(s.BankID),
		Fingerprint: s.Fingerprint,
		Status:      string(s.Status),
		Error:       ptr(s.Error),
		CreatedAt:   s.CreatedAt,
	}
	// a session produces at most one successful create
	if s.Succeeded() && s.Mode == domain.SubmissionCreate && s.SessionID != "" {
		m.CreatedBy = ptr(s.SessionID)
	}
	return m
}

// Record stores s, assigning its id and timestamp when unset.
func (r *SubmissionRepository) Record(ctx context.Context, s *domain.Submission) error {
	if s.ID == "" {
		s.ID = uuid.New().String()
	}
	if s.CreatedAt.IsZero() {
		s.CreatedAt = time.Now().UTC()
	}

	m := toSubmissionModel(s)
	if err := r.db.WithContext(ctx).Create(&m).Error; err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicateSubmission
		}
		return err
	}
	return nil
}

// FindSucceeded returns the latest successful create with fingerprint recorded
// at or after since, or nil when there is none.
func (r *SubmissionRepository) FindSucceeded(ctx context.Context, fingerprint string, since time.Time) (*domain.Submission, error) {
	var m submissionModel
	err := r.db.WithContext(ctx).
		Where("fingerprint = ? AND status = ? AND mode = ? AND created_at >= ?",
			fingerprint, string(domain.SubmissionSucceeded), string(domain.SubmissionCreate), since.UTC()).
		Order("created_at DESC").
		First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return toDomainSubmission(m), nil
}

// List returns journal entries newest first along with the unpaged total.
func (r *SubmissionRepository) List(ctx context.Context, f domain.SubmissionFilter) ([]*domain.Submission, int64, error) {
	q := r.db.WithContext(ctx).Model(&submissionModel{})
	if f.ActorID != "" {
		q = q.Where("actor_id = ?", f.ActorID)
	}
	if f.Status != "" {
		q = q.Where("status = ?", string(f.Status))
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	limit := f.Limit
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	var rows []submissionModel
	if err := q.Order("created_at DESC").Limit(limit).Offset(max(f.Offset, 0)).Find(&rows).Error; err != nil {
		return nil, 0, err
	}

	out := make([]*domain.Submission, 0, len(rows))
	for _, m := range rows {
		out = append(out, toDomainSubmission(m))
	}
	return out, total, nil
}

// Prune deletes entries created before cutoff and reports how many went.
func (r *SubmissionRepository) Prune(ctx context.Context, cutoff time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("created_at < ?", cutoff.UTC()).
		Delete(&submissionModel{})
	return res.RowsAffected, res.Error
}

func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "sqlstate 23505") ||
		strings.Contains(msg, "duplicate key")
}

func ptr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
