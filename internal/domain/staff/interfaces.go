package staff

import "context"

// Directory is the backend's bank-manager directory
type Directory interface {
	ListBankManagers(ctx context.Context, bankID string) ([]Manager, error)
	CreateBankManager(ctx context.Context, m *Manager) (*Manager, error)
}
