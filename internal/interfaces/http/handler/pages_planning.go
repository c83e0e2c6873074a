package handler

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"

	orderapp "github.com/papermill/portal/internal/application/order"
	planningapp "github.com/papermill/portal/internal/application/planning"
	"github.com/papermill/portal/internal/domain/order"
	"github.com/papermill/portal/internal/domain/planning"
	"github.com/papermill/portal/internal/domain/shared"
)

// planFormView is what plan_form.html receives
type planFormView struct {
	Name    string
	Orders  []orderapp.OrderRow
	Pending []order.PendingItem
	Checked map[string]bool
	Preview *planningapp.Preview
}

// planForm lists the orders awaiting a plan and the open pending items,
// ticking whatever was posted. err, when set, is shown as the alert.
func (h *PageHandler) planForm(c *gin.Context, d *pageData, view *planFormView, err error) {
	ctx := c.Request.Context()
	d.Live = ""
	d.Data = view
	if view.Checked == nil {
		view.Checked = map[string]bool{}
	}

	all := shared.Filter{Page: 1, PageSize: shared.MaxPageSize}
	orders, oerr := h.svc.Orders.ListOrders(ctx, orderapp.ListOrdersRequest{Filter: all, Status: string(order.StatusCreated)})
	if oerr == nil {
		view.Orders = orders.Items
	}
	pending, perr := h.svc.Plans.ListPendingItems(ctx, planningapp.ListPendingRequest{Filter: all, Status: string(order.PendingStatusPending)})
	if perr == nil {
		view.Pending = pending.Items
	}
	if err == nil {
		err = oerr
	}
	if err == nil {
		err = perr
	}
	if err != nil {
		h.fail(c, "plan_form.html", d, err)
		return
	}
	h.render(c, http.StatusOK, "plan_form.html", d)
}

// Plans handles GET /plans
func (h *PageHandler) Plans(c *gin.Context) {
	d := h.data(c, "Cutting plans", "plans")
	var req planningapp.ListPlansRequest
	_ = c.ShouldBindQuery(&req)
	plans, err := h.svc.Plans.ListPlans(c.Request.Context(), req)
	if err != nil {
		h.fail(c, "plans.html", d, err)
		return
	}
	d.Data = gin.H{"Page": plans, "Statuses": planning.AllStatuses()}
	h.render(c, http.StatusOK, "plans.html", d)
}

// NewPlan handles GET /plans/new
func (h *PageHandler) NewPlan(c *gin.Context) {
	d := h.data(c, "New cutting plan", "plans")
	h.planForm(c, d, &planFormView{Checked: checked(c.QueryArray("order_ids"))}, nil)
}

// PreviewPlan handles POST /plans/preview
func (h *PageHandler) PreviewPlan(c *gin.Context) {
	d := h.data(c, "New cutting plan", "plans")
	orderIDs, pendingIDs := planSelection(c)
	view := &planFormView{
		Name:    strings.TrimSpace(c.PostForm("name")),
		Checked: checked(orderIDs, pendingIDs),
	}
	preview, err := h.svc.Plans.PreviewPlan(c.Request.Context(), planning.PreviewRequest{OrderIDs: orderIDs, PendingItemIDs: pendingIDs})
	view.Preview = preview
	h.planForm(c, d, view, err)
}

// CreatePlan handles POST /plans
func (h *PageHandler) CreatePlan(c *gin.Context) {
	d := h.data(c, "New cutting plan", "plans")
	orderIDs, pendingIDs := planSelection(c)
	req := planning.CreateRequest{
		Name:           strings.TrimSpace(c.PostForm("name")),
		OrderIDs:       orderIDs,
		PendingItemIDs: pendingIDs,
	}
	p, err := h.svc.Plans.CreatePlan(c.Request.Context(), req, currentUserID(c))
	if err != nil {
		h.planForm(c, d, &planFormView{Name: req.Name, Checked: checked(orderIDs, pendingIDs)}, err)
		return
	}
	c.Redirect(http.StatusSeeOther, "/plans/"+url.PathEscape(p.ID)+"?saved=1")
}

// planDetail renders plan_detail.html for p; err, when set, is the alert
func (h *PageHandler) planDetail(c *gin.Context, d *pageData, p *planningapp.PlanDetail, err error) {
	if p != nil {
		d.Title = "Plan " + p.FrontendID
		d.Data = gin.H{"Plan": p, "Transitions": p.Status.Transitions()}
	}
	if err != nil {
		h.fail(c, "plan_detail.html", d, err)
		return
	}
	h.render(c, http.StatusOK, "plan_detail.html", d)
}

// PlanDetail handles GET /plans/:id
func (h *PageHandler) PlanDetail(c *gin.Context) {
	id := c.Param("id")
	d := h.data(c, "Plan", "plans")
	d.follow("plan", id)
	d.saved(c, "Plan saved")
	p, err := h.svc.Plans.GetPlan(c.Request.Context(), id)
	h.planDetail(c, d, p, err)
}

// planActionFailed re-renders the plan with the error of a failed action
func (h *PageHandler) planActionFailed(c *gin.Context, id string, err error) {
	d := h.data(c, "Plan", "plans")
	d.follow("plan", id)
	p, _ := h.svc.Plans.GetPlan(c.Request.Context(), id)
	h.planDetail(c, d, p, err)
}

// StartProduction handles POST /plans/:id/start-production
func (h *PageHandler) StartProduction(c *gin.Context) {
	id := c.Param("id")
	if _, err := h.svc.Plans.StartProduction(c.Request.Context(), id); err != nil {
		h.planActionFailed(c, id, err)
		return
	}
	c.Redirect(http.StatusSeeOther, "/plans/"+url.PathEscape(id)+"?saved=1")
}

// PlanStatus handles POST /plans/:id/status
func (h *PageHandler) PlanStatus(c *gin.Context) {
	id := c.Param("id")
	target := planning.Status(c.PostForm("status"))
	if _, err := h.svc.Plans.UpdatePlanStatus(c.Request.Context(), id, target); err != nil {
		h.planActionFailed(c, id, err)
		return
	}
	c.Redirect(http.StatusSeeOther, "/plans/"+url.PathEscape(id)+"?saved=1")
}

// PendingItems handles GET /pending-items
func (h *PageHandler) PendingItems(c *gin.Context) {
	d := h.data(c, "Pending items", "plans")
	var req planningapp.ListPendingRequest
	_ = c.ShouldBindQuery(&req)
	if _, ok := c.GetQuery("status"); !ok {
		req.Status = string(order.PendingStatusPending)
	}
	items, err := h.svc.Plans.ListPendingItems(c.Request.Context(), req)
	if err != nil {
		h.fail(c, "pending.html", d, err)
		return
	}
	d.Data = gin.H{"Page": items}
	h.render(c, http.StatusOK, "pending.html", d)
}
