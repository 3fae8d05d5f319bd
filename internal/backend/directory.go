package backend

import (
	"context"
	"net/http"
	"net/url"

	"leadintake/internal/domain/lead"
	"leadintake/internal/domain/staff"
)

// ListBanks returns the banks a lead can be filed against.
func (c *Client) ListBanks(ctx context.Context) ([]lead.Ref, error) {
	return c.list(ctx, "list_banks", "/banks")
}

// ListAgents returns the agents visible to the caller.
func (c *Client) ListAgents(ctx context.Context) ([]lead.Ref, error) {
	return c.list(ctx, "list_agents", "/agents")
}

// ListSubAgents returns the caller's sub-agents.
func (c *Client) ListSubAgents(ctx context.Context) ([]lead.Ref, error) {
	return c.list(ctx, "list_sub_agents", "/sub-agents")
}

func (c *Client) list(ctx context.Context, op, path string) ([]lead.Ref, error) {
	var refs []lead.Ref
	if err := c.getJSON(ctx, op, path, &refs); err != nil {
		return nil, err
	}
	return refs, nil
}

// ListBankManagers returns the bank managers registered for bankID.
func (c *Client) ListBankManagers(ctx context.Context, bankID string) ([]staff.Manager, error) {
	var managers []staff.Manager
	q := url.Values{"bank": {bankID}, "limit": {"500"}}
	if err := c.getJSON(ctx, "list_bank_managers", "/bank-managers?"+q.Encode(), &managers); err != nil {
		return nil, err
	}
	return managers, nil
}

// CreateBankManager registers a new bank manager.
func (c *Client) CreateBankManager(ctx context.Context, m *staff.Manager) (*staff.Manager, error) {
	var created staff.Manager
	if err := c.doJSON(ctx, "create_bank_manager", http.MethodPost, "/bank-managers", m, &created); err != nil {
		return nil, err
	}
	return &created, nil
}
