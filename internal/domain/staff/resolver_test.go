package staff

import (
	"context"
	"errors"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"leadintake/internal/domain/lead"
)

type MockDirectory struct {
	mock.Mock
}

func (m *MockDirectory) ListBankManagers(ctx context.Context, bankID string) ([]Manager, error) {
	args := m.Called(ctx, bankID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]Manager), args.Error(1)
}

func (m *MockDirectory) CreateBankManager(ctx context.Context, manager *Manager) (*Manager, error) {
	args := m.Called(ctx, manager)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Manager), args.Error(1)
}

var existing = []Manager{
	{ID: "bm-1", Name: "Anil", Email: "Anil@Bank.com", Mobile: "98765 43210"},
	{ID: "bm-2", Name: "Sunita", Mobile: "9123456789"},
}

func TestResolveOrCreate_MatchesByEmail(t *testing.T) {
	dir := new(MockDirectory)
	dir.On("ListBankManagers", mock.Anything, "bank-1").Return(existing, nil)

	id, err := NewResolver(dir, nil).ResolveOrCreate(context.Background(), "bank-1", Contact{Email: " anil@bank.com "})

	require.NoError(t, err)
	assert.Equal(t, "bm-1", id)
	dir.AssertNotCalled(t, "CreateBankManager", mock.Anything, mock.Anything)
}

func TestResolveOrCreate_MatchesByMobile(t *testing.T) {
	dir := new(MockDirectory)
	dir.On("ListBankManagers", mock.Anything, "bank-1").Return(existing, nil)

	id, err := NewResolver(dir, nil).ResolveOrCreate(context.Background(), "bank-1", Contact{Mobile: "9876543210"})

	require.NoError(t, err)
	assert.Equal(t, "bm-1", id)
}

func TestResolveOrCreate_Creates(t *testing.T) {
	dir := new(MockDirectory)
	dir.On("ListBankManagers", mock.Anything, "bank-1").Return(existing, nil)
	dir.On("CreateBankManager", mock.Anything, mock.MatchedBy(func(m *Manager) bool {
		return m.Role == RoleBM && lead.RefID(m.Bank) == "bank-1" && m.Name == "new@bank.com" && m.Status == StatusActive
	})).Return(&Manager{ID: "bm-9"}, nil)

	id, err := NewResolver(dir, nil).ResolveOrCreate(context.Background(), "bank-1", Contact{Email: "new@bank.com"})

	require.NoError(t, err)
	assert.Equal(t, "bm-9", id)
	dir.AssertExpectations(t)
}

func TestResolveOrCreate_NoContact(t *testing.T) {
	dir := new(MockDirectory)

	id, err := NewResolver(dir, nil).ResolveOrCreate(context.Background(), "bank-1", Contact{Name: "Only a name"})

	require.NoError(t, err)
	assert.Empty(t, id)
	dir.AssertNotCalled(t, "ListBankManagers", mock.Anything, mock.Anything)
}

func TestResolveOrCreate_Errors(t *testing.T) {
	_, err := NewResolver(new(MockDirectory), nil).ResolveOrCreate(context.Background(), "", Contact{Email: "a@b.c"})
	assert.ErrorIs(t, err, ErrBankRequired)

	dir := new(MockDirectory)
	dir.On("ListBankManagers", mock.Anything, "bank-1").Return(nil, errors.New("timeout"))
	_, err = NewResolver(dir, nil).ResolveOrCreate(context.Background(), "bank-1", Contact{Email: "a@b.c"})
	assert.ErrorIs(t, err, ErrDirectoryFailed)
}

func TestContactFromDraft(t *testing.T) {
	d := lead.NewDraft(lead.Actor{Role: lead.RoleSuperAdmin})
	d.Standard[lead.KeySMBMEmail] = "sm@bank.com"
	d.SetField(lead.KeySMBMMobile, "9000000000")

	c := ContactFromDraft(d)

	assert.Equal(t, "sm@bank.com", c.Email)
	assert.Equal(t, "9000000000", c.Mobile)
}

func TestManager_JSON(t *testing.T) {
	var m Manager
	require.NoError(t, json.Unmarshal([]byte(`{"_id":"bm-3","name":"Ravi","bank":{"_id":"bank-2"}}`), &m))
	assert.Equal(t, "bm-3", m.ID)
	assert.Equal(t, "bank-2", lead.RefID(m.Bank))

	out, err := json.Marshal(Manager{Name: "Ravi", Role: RoleBM, Bank: &lead.Ref{ID: "bank-2"}})
	require.NoError(t, err)
	assert.JSONEq(t, `{"name":"Ravi","role":"bm","bank":"bank-2"}`, string(out))
}
