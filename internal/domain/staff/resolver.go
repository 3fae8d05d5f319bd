package staff

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"leadintake/internal/domain/lead"
)

// Resolver finds or creates the bank manager a lead's SM/BM contact refers to.
type Resolver struct {
	dir Directory
	log *zap.Logger
}

func NewResolver(dir Directory, log *zap.Logger) *Resolver {
	if log == nil {
		log = zap.NewNop()
	}
	return &Resolver{dir: dir, log: log}
}

// ResolveOrCreate returns the id of the bank manager matching contact within
// bankID, creating one with role bm when none matches. It returns "" without
// error when the contact has neither email nor mobile.
func (r *Resolver) ResolveOrCreate(ctx context.Context, bankID string, contact Contact) (string, error) {
	if contact.IsEmpty() {
		return "", nil
	}
	if strings.TrimSpace(bankID) == "" {
		return "", ErrBankRequired
	}

	managers, err := r.dir.ListBankManagers(ctx, bankID)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrDirectoryFailed, err)
	}
	for _, m := range managers {
		if contact.Matches(m) {
			return m.ID, nil
		}
	}

	name := strings.TrimSpace(contact.Name)
	if name == "" {
		name = firstNonEmpty(contact.Email, contact.Mobile)
	}
	created, err := r.dir.CreateBankManager(ctx, &Manager{
		Name:   name,
		Email:  strings.TrimSpace(contact.Email),
		Mobile: strings.TrimSpace(contact.Mobile),
		Role:   RoleBM,
		Bank:   &lead.Ref{ID: bankID},
		Status: StatusActive,
	})
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrDirectoryFailed, err)
	}

	r.log.Info("bank manager created from lead form",
		zap.String("bank_id", bankID),
		zap.String("manager_id", created.ID),
	)
	return created.ID, nil
}

// ContactFromDraft extracts the SM/BM contact typed into d.
func ContactFromDraft(d *lead.Draft) Contact {
	return Contact{
		Name:   firstNonEmpty(d.Std(lead.KeySMBMName), d.Value(lead.KeySMBMName)),
		Email:  firstNonEmpty(d.Std(lead.KeySMBMEmail), d.Value(lead.KeySMBMEmail)),
		Mobile: firstNonEmpty(d.Std(lead.KeySMBMMobile), d.Value(lead.KeySMBMMobile)),
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
