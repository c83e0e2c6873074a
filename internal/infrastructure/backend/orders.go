package backend

import (
	"context"
	"net/http"

	"github.com/papermill/portal/internal/domain/order"
)

// ListOrders fetches orders. Query values are passed through as-is; the
// backend may ignore them, so callers filter again locally.
func (c *Client) ListOrders(ctx context.Context, query map[string]string) ([]order.Order, error) {
	return getList[order.Order](ctx, c, c.endpoints.Orders(query))
}

// GetOrder fetches one order with its items
func (c *Client) GetOrder(ctx context.Context, id string) (*order.Order, error) {
	var out order.Order
	if err := c.getJSON(ctx, c.endpoints.Order(id), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateOrder posts a new order
func (c *Client) CreateOrder(ctx context.Context, p order.Payload) (*order.Order, error) {
	var out order.Order
	if err := c.sendJSON(ctx, http.MethodPost, c.endpoints.Orders(nil), p, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateOrder replaces an order
func (c *Client) UpdateOrder(ctx context.Context, id string, p order.Payload) (*order.Order, error) {
	var out order.Order
	if err := c.sendJSON(ctx, http.MethodPut, c.endpoints.Order(id), p, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

type statusBody struct {
	Status string `json:"status"`
}

// UpdateOrderStatus changes an order's status
func (c *Client) UpdateOrderStatus(ctx context.Context, id string, status order.Status) error {
	return c.sendJSON(ctx, http.MethodPut, c.endpoints.OrderStatus(id), statusBody{Status: string(status)}, nil)
}

// DeleteOrder removes an order
func (c *Client) DeleteOrder(ctx context.Context, id string) error {
	return c.delete(ctx, c.endpoints.Order(id))
}

// ListPendingItems fetches pending order items
func (c *Client) ListPendingItems(ctx context.Context, query map[string]string) ([]order.PendingItem, error) {
	return getList[order.PendingItem](ctx, c, c.endpoints.PendingItems(query))
}
