package backend

import (
	"context"
	"net/http"

	"github.com/papermill/portal/internal/domain/planning"
)

// ListPlans fetches cutting plans
func (c *Client) ListPlans(ctx context.Context, query map[string]string) ([]planning.Plan, error) {
	return getList[planning.Plan](ctx, c, c.endpoints.Plans(query))
}

// GetPlan fetches one plan with its cut pattern
func (c *Client) GetPlan(ctx context.Context, id string) (*planning.Plan, error) {
	var out planning.Plan
	if err := c.getJSON(ctx, c.endpoints.Plan(id), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// PreviewPlan runs the optimizer without saving
func (c *Client) PreviewPlan(ctx context.Context, req planning.PreviewRequest) (*planning.PreviewResult, error) {
	var out planning.PreviewResult
	if err := c.sendJSON(ctx, http.MethodPost, c.endpoints.PlanPreview(), req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreatePlan saves a plan
func (c *Client) CreatePlan(ctx context.Context, req planning.CreateRequest) (*planning.Plan, error) {
	var out planning.Plan
	if err := c.sendJSON(ctx, http.MethodPost, c.endpoints.Plans(nil), req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdatePlanStatus changes a plan's status
func (c *Client) UpdatePlanStatus(ctx context.Context, id string, status planning.Status) error {
	return c.sendJSON(ctx, http.MethodPut, c.endpoints.PlanStatus(id), statusBody{Status: string(status)}, nil)
}

// StartProduction moves a plan into production, creating its rolls
func (c *Client) StartProduction(ctx context.Context, id string) (*planning.Plan, error) {
	var out planning.Plan
	if err := c.sendJSON(ctx, http.MethodPost, c.endpoints.PlanStartProduction(id), struct{}{}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
