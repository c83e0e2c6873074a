package handler

import (
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"github.com/papermill/portal/internal/domain/order"
	"github.com/papermill/portal/internal/domain/partner"
)

// orderFormView is what order_form.html receives
type orderFormView struct {
	ID      string
	Form    order.Form
	Rows    []order.ItemForm
	Clients []partner.Client
	Papers  []partner.Paper
}

// orderForm loads the dropdown data and renders the form. err, when set,
// is shown as the alert with its mapped status.
func (h *PageHandler) orderForm(c *gin.Context, d *pageData, id string, f order.Form, err error) {
	ctx := c.Request.Context()
	view := &orderFormView{ID: id, Form: f, Rows: orderRows(f)}
	d.Data = view

	clients, cerr := h.svc.Orders.AllClients(ctx)
	papers, perr := h.svc.Orders.ListPapers(ctx)
	view.Clients, view.Papers = clients, papers
	if err == nil {
		err = cerr
	}
	if err == nil {
		err = perr
	}
	if err != nil {
		h.fail(c, "order_form.html", d, err)
		return
	}
	h.render(c, http.StatusOK, "order_form.html", d)
}

// NewOrder handles GET /orders/new
func (h *PageHandler) NewOrder(c *gin.Context) {
	d := h.data(c, "New order", "orders")
	d.Live = ""
	h.orderForm(c, d, "", order.Form{ClientID: c.Query("client_id"), PaymentType: order.PaymentBill}, nil)
}

// CreateOrder handles POST /orders
func (h *PageHandler) CreateOrder(c *gin.Context) {
	d := h.data(c, "New order", "orders")
	d.Live = ""
	f, err := orderFormFromPost(c)
	if err != nil {
		h.orderForm(c, d, "", f, err)
		return
	}
	o, err := h.svc.Orders.CreateOrder(c.Request.Context(), f, currentUserID(c))
	if err != nil {
		h.orderForm(c, d, "", f, err)
		return
	}
	c.Redirect(http.StatusSeeOther, "/orders/"+url.PathEscape(o.ID)+"?saved=1")
}

// EditOrder handles GET /orders/:id/edit
func (h *PageHandler) EditOrder(c *gin.Context) {
	id := c.Param("id")
	d := h.data(c, "Edit order", "orders")
	d.Live = ""
	o, err := h.svc.Orders.GetOrder(c.Request.Context(), id)
	if err != nil {
		h.fail(c, "order_form.html", d, err)
		return
	}
	d.Title = "Edit order " + o.DisplayID()
	h.orderForm(c, d, id, order.FormFromOrder(o.Order), nil)
}

// UpdateOrder handles POST /orders/:id
func (h *PageHandler) UpdateOrder(c *gin.Context) {
	id := c.Param("id")
	d := h.data(c, "Edit order", "orders")
	d.Live = ""
	f, err := orderFormFromPost(c)
	if err == nil {
		_, err = h.svc.Orders.UpdateOrder(c.Request.Context(), id, f, currentUserID(c))
	}
	if err != nil {
		h.orderForm(c, d, id, f, err)
		return
	}
	c.Redirect(http.StatusSeeOther, "/orders/"+url.PathEscape(id)+"?saved=1")
}

// OrderStatus handles POST /orders/:id/status
func (h *PageHandler) OrderStatus(c *gin.Context) {
	id := c.Param("id")
	if _, err := h.svc.Orders.UpdateOrderStatus(c.Request.Context(), id, order.Status(c.PostForm("status"))); err != nil {
		d := h.data(c, "Order", "orders")
		d.follow("order", id)
		if o, gerr := h.svc.Orders.GetOrder(c.Request.Context(), id); gerr == nil {
			d.Title = "Order " + o.DisplayID()
			d.Data = gin.H{"Order": o, "Statuses": order.AllStatuses()}
		}
		h.fail(c, "order_detail.html", d, err)
		return
	}
	c.Redirect(http.StatusSeeOther, "/orders/"+url.PathEscape(id)+"?saved=1")
}

// DeleteOrder handles POST /orders/:id/delete
func (h *PageHandler) DeleteOrder(c *gin.Context) {
	id := c.Param("id")
	if err := h.svc.Orders.DeleteOrder(c.Request.Context(), id); err != nil {
		d := h.data(c, "Order", "orders")
		if o, gerr := h.svc.Orders.GetOrder(c.Request.Context(), id); gerr == nil {
			d.Title = "Order " + o.DisplayID()
			d.Data = gin.H{"Order": o, "Statuses": order.AllStatuses()}
		}
		h.fail(c, "order_detail.html", d, err)
		return
	}
	c.Redirect(http.StatusSeeOther, "/orders?saved=1")
}
