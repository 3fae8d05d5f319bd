package intake

import (
	"context"
	"mime/multipart"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"leadintake/internal/domain"
	"leadintake/internal/domain/lead"
	"leadintake/internal/domain/staff"
	"leadintake/internal/domain/upload"
	"leadintake/internal/pkg/metrics"
)

type MockBackend struct {
	mock.Mock
}

func (m *MockBackend) SchemaForBank(ctx context.Context, bankID string) (*lead.Schema, error) {
	args := m.Called(ctx, bankID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*lead.Schema), args.Error(1)
}

func (m *MockBackend) SchemaForNewLead(ctx context.Context) (*lead.Schema, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*lead.Schema), args.Error(1)
}

func (m *MockBackend) CommissionLimit(ctx context.Context, bankID string) (*lead.CommissionLimit, error) {
	args := m.Called(ctx, bankID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*lead.CommissionLimit), args.Error(1)
}

func (m *MockBackend) GetLead(ctx context.Context, id string) (*lead.Lead, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*lead.Lead), args.Error(1)
}

func (m *MockBackend) CreateLead(ctx context.Context, p *lead.Payload) (*lead.Lead, error) {
	args := m.Called(ctx, p)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*lead.Lead), args.Error(1)
}

func (m *MockBackend) UpdateLead(ctx context.Context, id string, p *lead.Payload) (*lead.Lead, error) {
	args := m.Called(ctx, id, p)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*lead.Lead), args.Error(1)
}

func (m *MockBackend) ListBanks(ctx context.Context) ([]lead.Ref, error) {
	return m.refs(m.Called(ctx))
}

func (m *MockBackend) ListAgents(ctx context.Context) ([]lead.Ref, error) {
	return m.refs(m.Called(ctx))
}

func (m *MockBackend) ListSubAgents(ctx context.Context) ([]lead.Ref, error) {
	return m.refs(m.Called(ctx))
}

func (m *MockBackend) refs(args mock.Arguments) ([]lead.Ref, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]lead.Ref), args.Error(1)
}

type MockUploader struct {
	mock.Mock
}

func (m *MockUploader) Forward(ctx context.Context, target upload.Target, fileHeader *multipart.FileHeader) (*lead.Document, error) {
	args := m.Called(ctx, target, fileHeader)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*lead.Document), args.Error(1)
}

type MockResolver struct {
	mock.Mock
}

func (m *MockResolver) ResolveOrCreate(ctx context.Context, bankID string, contact staff.Contact) (string, error) {
	args := m.Called(ctx, bankID, contact)
	return args.String(0), args.Error(1)
}

type MockJournal struct {
	mock.Mock
}

func (m *MockJournal) Record(ctx context.Context, s *domain.Submission) error {
	args := m.Called(ctx, s)
	return args.Error(0)
}

func (m *MockJournal) FindSucceeded(ctx context.Context, fingerprint string, since time.Time) (*domain.Submission, error) {
	args := m.Called(ctx, fingerprint, since)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Submission), args.Error(1)
}

func (m *MockJournal) List(ctx context.Context, f domain.SubmissionFilter) ([]*domain.Submission, int64, error) {
	args := m.Called(ctx, f)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]*domain.Submission), args.Get(1).(int64), args.Error(2)
}

type fixture struct {
	svc      *Service
	store    *Store
	backend  *MockBackend
	uploader *MockUploader
	managers *MockResolver
	journal  *MockJournal
}

var (
	superAdmin = lead.Actor{ID: "u-admin", Role: lead.RoleSuperAdmin, Name: "Asha"}
	agent      = lead.Actor{ID: "u-agent", Role: lead.RoleAgent, Name: "Vikram"}
	franchise  = lead.Actor{ID: "u-fr", Role: lead.RoleFranchise, Name: "Meera"}

	banks = []lead.Ref{{ID: "bank-1", Name: "HDFC"}, {ID: "bank-2", Name: "ICICI"}}
)

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		store:    NewStore(time.Hour, nil, zap.NewNop()),
		backend:  new(MockBackend),
		uploader: new(MockUploader),
		managers: new(MockResolver),
		journal:  new(MockJournal),
	}
	f.svc = NewService(f.store, f.backend, f.uploader, f.managers, f.journal, metrics.NewNop(), zap.NewNop())

	f.backend.On("ListBanks", mock.Anything).Return(banks, nil).Maybe()
	f.backend.On("ListAgents", mock.Anything).Return([]lead.Ref{{ID: "ag-1", Name: "Kiran"}}, nil).Maybe()
	f.backend.On("ListSubAgents", mock.Anything).Return([]lead.Ref{{ID: "sa-1", Name: "Ritu"}}, nil).Maybe()
	return f
}

func (f *fixture) open(t *testing.T, actor lead.Actor) *View {
	t.Helper()
	v, err := f.svc.Open(context.Background(), actor, "")
	require.NoError(t, err)
	return v
}

// fillBankLead completes a fixed-field bank draft for actor.
func (f *fixture) fillBankLead(t *testing.T, id string, actor lead.Actor) *View {
	t.Helper()
	_, err := f.svc.Select(context.Background(), id, actor, "bank-1")
	require.NoError(t, err)

	var v *View
	for _, kv := range [][2]string{
		{lead.KeyCustomerName, "Ravi Kumar"},
		{lead.KeyApplicantMobile, "9876543210"},
		{lead.KeyDSACode, "DSA01"},
		{lead.KeyRemarks, "walk-in"},
		{lead.KeyLoanType, "home_loan"},
		{lead.KeyLoanAmount, "500000"},
		{lead.KeyCommissionPercentage, "2"},
	} {
		v, err = f.svc.EditField(id, actor, kv[0], kv[1])
		require.NoError(t, err)
	}
	return v
}
