package backend

import (
	"context"

	"github.com/papermill/portal/internal/domain/report"
)

// CutRollsReport fetches the all-cut-rolls report
func (c *Client) CutRollsReport(ctx context.Context, query map[string]string) ([]report.CutRollRow, error) {
	return getList[report.CutRollRow](ctx, c, c.endpoints.CutRollsReport(query))
}

// PendingOrdersReport fetches the pending-orders report
func (c *Client) PendingOrdersReport(ctx context.Context, query map[string]string) ([]report.PendingOrderRow, error) {
	return getList[report.PendingOrderRow](ctx, c, c.endpoints.PendingOrdersReport(query))
}

// ClientOrderSummary fetches per-client order totals
func (c *Client) ClientOrderSummary(ctx context.Context, query map[string]string) ([]report.ClientOrderSummaryRow, error) {
	return getList[report.ClientOrderSummaryRow](ctx, c, c.endpoints.ClientOrderSummary(query))
}
