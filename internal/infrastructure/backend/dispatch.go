package backend

import (
	"context"
	"net/http"

	"github.com/papermill/portal/internal/domain/dispatch"
	"github.com/papermill/portal/internal/domain/partner"
)

// DispatchHistory fetches dispatch records
func (c *Client) DispatchHistory(ctx context.Context, query map[string]string) ([]dispatch.Record, error) {
	return getList[dispatch.Record](ctx, c, c.endpoints.DispatchHistory(query))
}

// DispatchDetails fetches one dispatch with its items
func (c *Client) DispatchDetails(ctx context.Context, id string) (*dispatch.Record, error) {
	var out dispatch.Record
	if err := c.getJSON(ctx, c.endpoints.DispatchDetails(id), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateDispatchStatus changes a dispatch's status
func (c *Client) UpdateDispatchStatus(ctx context.Context, id string, status dispatch.Status) error {
	return c.sendJSON(ctx, http.MethodPut, c.endpoints.DispatchStatus(id), statusBody{Status: string(status)}, nil)
}

// DispatchPDF fetches the backend-rendered dispatch PDF
func (c *Client) DispatchPDF(ctx context.Context, id string) ([]byte, string, error) {
	return c.GetBinary(ctx, c.endpoints.DispatchPDF(id))
}

// DispatchClients lists clients that have rolls ready for dispatch
func (c *Client) DispatchClients(ctx context.Context) ([]partner.Client, error) {
	return getList[partner.Client](ctx, c, c.endpoints.DispatchClients())
}

// CreateDispatch posts a dispatch
func (c *Client) CreateDispatch(ctx context.Context, f dispatch.CreateForm) (*dispatch.Record, error) {
	var out dispatch.Record
	if err := c.sendJSON(ctx, http.MethodPost, c.endpoints.DispatchCreate(), f, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
