package backend

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"leadintake/internal/domain/lead"
)

// SchemaForBank fetches the lead form configured for bankID.
func (c *Client) SchemaForBank(ctx context.Context, bankID string) (*lead.Schema, error) {
	return c.schema(ctx, "get_schema_bank", "/lead-forms/bank/"+url.PathEscape(bankID))
}

// SchemaForNewLead fetches the generic new-lead form.
func (c *Client) SchemaForNewLead(ctx context.Context) (*lead.Schema, error) {
	return c.schema(ctx, "get_schema_new_lead", "/lead-forms/new-lead")
}

func (c *Client) schema(ctx context.Context, op, path string) (*lead.Schema, error) {
	var s lead.Schema
	err := c.getJSON(ctx, op, path, &s)
	if errors.Is(err, ErrNotFound) || errors.Is(err, ErrNoData) {
		return nil, lead.ErrSchemaMissing
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// CommissionLimit fetches the franchise commission cap for bankID.
// It returns nil without error when no limit is configured.
func (c *Client) CommissionLimit(ctx context.Context, bankID string) (*lead.CommissionLimit, error) {
	var limit lead.CommissionLimit
	err := c.getJSON(ctx, "get_commission_limit", "/franchise-commission-limits/bank/"+url.PathEscape(bankID), &limit)
	if errors.Is(err, ErrNotFound) || errors.Is(err, ErrNoData) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if limit.LimitType == "" {
		return nil, nil
	}
	return &limit, nil
}

// GetLead fetches a stored lead.
func (c *Client) GetLead(ctx context.Context, id string) (*lead.Lead, error) {
	var l lead.Lead
	err := c.getJSON(ctx, "get_lead", "/leads/"+url.PathEscape(id), &l)
	if errors.Is(err, ErrNotFound) || errors.Is(err, ErrNoData) {
		return nil, lead.ErrLeadNotFound
	}
	if err != nil {
		return nil, err
	}
	return &l, nil
}

// CreateLead posts a new lead and returns the stored record.
func (c *Client) CreateLead(ctx context.Context, p *lead.Payload) (*lead.Lead, error) {
	var l lead.Lead
	if err := c.doJSON(ctx, "create_lead", http.MethodPost, "/leads", p, &l); err != nil {
		if errors.Is(err, ErrNoData) {
			return &lead.Lead{}, nil
		}
		return nil, err
	}
	return &l, nil
}

// UpdateLead replaces the lead id with p and returns the stored record.
func (c *Client) UpdateLead(ctx context.Context, id string, p *lead.Payload) (*lead.Lead, error) {
	if id == "" {
		return nil, fmt.Errorf("update lead: %w", lead.ErrLeadNotFound)
	}
	var l lead.Lead
	if err := c.doJSON(ctx, "update_lead", http.MethodPut, "/leads/"+url.PathEscape(id), p, &l); err != nil {
		if errors.Is(err, ErrNoData) {
			return &lead.Lead{ID: id}, nil
		}
		return nil, err
	}
	return &l, nil
}
