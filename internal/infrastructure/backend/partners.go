package backend

import (
	"context"
	"net/http"

	"github.com/papermill/portal/internal/domain/partner"
)

// ListClients returns every client
func (c *Client) ListClients(ctx context.Context) ([]partner.Client, error) {
	return getList[partner.Client](ctx, c, c.endpoints.Clients())
}

// CreateClient creates a client and returns it as stored
func (c *Client) CreateClient(ctx context.Context, in partner.ClientInput) (*partner.Client, error) {
	var out partner.Client
	if err := c.sendJSON(ctx, http.MethodPost, c.endpoints.Clients(), in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateClient replaces a client's details
func (c *Client) UpdateClient(ctx context.Context, id string, in partner.ClientInput) (*partner.Client, error) {
	var out partner.Client
	if err := c.sendJSON(ctx, http.MethodPut, c.endpoints.Client(id), in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteClient removes a client
func (c *Client) DeleteClient(ctx context.Context, id string) error {
	return c.delete(ctx, c.endpoints.Client(id))
}

// ListPapers returns every paper grade
func (c *Client) ListPapers(ctx context.Context) ([]partner.Paper, error) {
	return getList[partner.Paper](ctx, c, c.endpoints.Papers())
}

// CreatePaper creates a paper grade
func (c *Client) CreatePaper(ctx context.Context, in partner.PaperInput) (*partner.Paper, error) {
	var out partner.Paper
	if err := c.sendJSON(ctx, http.MethodPost, c.endpoints.Papers(), in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
