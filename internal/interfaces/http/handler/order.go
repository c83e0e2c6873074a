package handler

import (
	"context"

	"github.com/gin-gonic/gin"

	orderapp "github.com/papermill/portal/internal/application/order"
	"github.com/papermill/portal/internal/domain/order"
	"github.com/papermill/portal/internal/domain/partner"
	"github.com/papermill/portal/internal/domain/shared"
)

// OrderService is what the order, client and paper endpoints need
type OrderService interface {
	ListOrders(ctx context.Context, req orderapp.ListOrdersRequest) (*orderapp.OrderList, error)
	GetOrder(ctx context.Context, id string) (*orderapp.OrderRow, error)
	CreateOrder(ctx context.Context, form order.Form, createdBy string) (*orderapp.OrderRow, error)
	UpdateOrder(ctx context.Context, id string, form order.Form, updatedBy string) (*orderapp.OrderRow, error)
	UpdateOrderStatus(ctx context.Context, id string, status order.Status) (*orderapp.OrderRow, error)
	DeleteOrder(ctx context.Context, id string) error

	AllClients(ctx context.Context) ([]partner.Client, error)
	ListClients(ctx context.Context, req orderapp.ListClientsRequest) (*shared.Page[orderapp.ClientRow], error)
	CreateClient(ctx context.Context, in partner.ClientInput) (*partner.Client, error)
	UpdateClient(ctx context.Context, id string, in partner.ClientInput) (*partner.Client, error)
	DeleteClient(ctx context.Context, id string) error
	ListPapers(ctx context.Context) ([]partner.Paper, error)
	CreatePaper(ctx context.Context, in partner.PaperInput) (*partner.Paper, error)
}

// OrderHandler handles orders and their reference data
type OrderHandler struct {
	BaseHandler
	orders OrderService
}

// NewOrderHandler creates a new OrderHandler
func NewOrderHandler(orders OrderService) *OrderHandler {
	return &OrderHandler{orders: orders}
}

// List handles GET /api/v1/orders
func (h *OrderHandler) List(c *gin.Context) {
	var req orderapp.ListOrdersRequest
	if !h.BindQuery(c, &req) {
		return
	}
	list, err := h.orders.ListOrders(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	respondPage(c, list.Page, list)
}

// Get handles GET /api/v1/orders/:id
func (h *OrderHandler) Get(c *gin.Context) {
	o, err := h.orders.GetOrder(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, o)
}

// Create handles POST /api/v1/orders
func (h *OrderHandler) Create(c *gin.Context) {
	var form order.Form
	if !h.Bind(c, &form) {
		return
	}
	o, err := h.orders.CreateOrder(c.Request.Context(), form, currentUserID(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, o)
}

// Update handles PUT /api/v1/orders/:id
func (h *OrderHandler) Update(c *gin.Context) {
	var form order.Form
	if !h.Bind(c, &form) {
		return
	}
	o, err := h.orders.UpdateOrder(c.Request.Context(), c.Param("id"), form, currentUserID(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, o)
}

// UpdateStatus handles PUT /api/v1/orders/:id/status
func (h *OrderHandler) UpdateStatus(c *gin.Context) {
	var req orderapp.StatusRequest
	if !h.Bind(c, &req) {
		return
	}
	o, err := h.orders.UpdateOrderStatus(c.Request.Context(), c.Param("id"), req.Status)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, o)
}

// Delete handles DELETE /api/v1/orders/:id
func (h *OrderHandler) Delete(c *gin.Context) {
	if err := h.orders.DeleteOrder(c.Request.Context(), c.Param("id")); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// ListClients handles GET /api/v1/clients
func (h *OrderHandler) ListClients(c *gin.Context) {
	var req orderapp.ListClientsRequest
	if !h.BindQuery(c, &req) {
		return
	}
	page, err := h.orders.ListClients(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	respondPage(c, *page, nil)
}

// CreateClient handles POST /api/v1/clients
func (h *OrderHandler) CreateClient(c *gin.Context) {
	var in partner.ClientInput
	if !h.Bind(c, &in) {
		return
	}
	client, err := h.orders.CreateClient(c.Request.Context(), in)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, client)
}

// UpdateClient handles PUT /api/v1/clients/:id
func (h *OrderHandler) UpdateClient(c *gin.Context) {
	var in partner.ClientInput
	if !h.Bind(c, &in) {
		return
	}
	client, err := h.orders.UpdateClient(c.Request.Context(), c.Param("id"), in)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, client)
}

// DeleteClient handles DELETE /api/v1/clients/:id
func (h *OrderHandler) DeleteClient(c *gin.Context) {
	if err := h.orders.DeleteClient(c.Request.Context(), c.Param("id")); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// ListPapers handles GET /api/v1/papers
func (h *OrderHandler) ListPapers(c *gin.Context) {
	papers, err := h.orders.ListPapers(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, papers)
}

// CreatePaper handles POST /api/v1/papers
func (h *OrderHandler) CreatePaper(c *gin.Context) {
	var in partner.PaperInput
	if !h.Bind(c, &in) {
		return
	}
	paper, err := h.orders.CreatePaper(c.Request.Context(), in)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, paper)
}
