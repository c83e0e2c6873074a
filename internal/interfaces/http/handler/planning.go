package handler

import (
	"context"

	"github.com/gin-gonic/gin"

	planningapp "github.com/papermill/portal/internal/application/planning"
	"github.com/papermill/portal/internal/domain/order"
	"github.com/papermill/portal/internal/domain/planning"
	"github.com/papermill/portal/internal/domain/shared"
)

// PlanningService is what the plan and pending-item endpoints need
type PlanningService interface {
	ListPlans(ctx context.Context, req planningapp.ListPlansRequest) (*shared.Page[planningapp.PlanRow], error)
	GetPlan(ctx context.Context, id string) (*planningapp.PlanDetail, error)
	PreviewPlan(ctx context.Context, req planning.PreviewRequest) (*planningapp.Preview, error)
	CreatePlan(ctx context.Context, req planning.CreateRequest, createdBy string) (*planningapp.PlanDetail, error)
	UpdatePlanStatus(ctx context.Context, id string, target planning.Status) (*planningapp.PlanDetail, error)
	StartProduction(ctx context.Context, id string) (*planningapp.PlanDetail, error)
	ListPendingItems(ctx context.Context, req planningapp.ListPendingRequest) (*shared.Page[order.PendingItem], error)
}

// PlanningHandler handles cutting plans and pending items
type PlanningHandler struct {
	BaseHandler
	plans PlanningService
}

// NewPlanningHandler creates a new PlanningHandler
func NewPlanningHandler(plans PlanningService) *PlanningHandler {
	return &PlanningHandler{plans: plans}
}

// PlanStatusRequest changes a plan's status
type PlanStatusRequest struct {
	Status planning.Status `json:"status" form:"status" binding:"required"`
}

// List handles GET /api/v1/plans
func (h *PlanningHandler) List(c *gin.Context) {
	var req planningapp.ListPlansRequest
	if !h.BindQuery(c, &req) {
		return
	}
	page, err := h.plans.ListPlans(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	respondPage(c, *page, nil)
}

// Get handles GET /api/v1/plans/:id
func (h *PlanningHandler) Get(c *gin.Context) {
	plan, err := h.plans.GetPlan(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, plan)
}

// Preview handles POST /api/v1/plans/preview
func (h *PlanningHandler) Preview(c *gin.Context) {
	var req planning.PreviewRequest
	if !h.Bind(c, &req) {
		return
	}
	preview, err := h.plans.PreviewPlan(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, preview)
}

// Create handles POST /api/v1/plans
func (h *PlanningHandler) Create(c *gin.Context) {
	var req planning.CreateRequest
	if !h.Bind(c, &req) {
		return
	}
	plan, err := h.plans.CreatePlan(c.Request.Context(), req, currentUserID(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, plan)
}

// UpdateStatus handles PUT /api/v1/plans/:id/status
func (h *PlanningHandler) UpdateStatus(c *gin.Context) {
	var req PlanStatusRequest
	if !h.Bind(c, &req) {
		return
	}
	plan, err := h.plans.UpdatePlanStatus(c.Request.Context(), c.Param("id"), req.Status)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, plan)
}

// StartProduction handles POST /api/v1/plans/:id/start-production
func (h *PlanningHandler) StartProduction(c *gin.Context) {
	plan, err := h.plans.StartProduction(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, plan)
}

// ListPending handles GET /api/v1/pending-items
func (h *PlanningHandler) ListPending(c *gin.Context) {
	var req planningapp.ListPendingRequest
	if !h.BindQuery(c, &req) {
		return
	}
	page, err := h.plans.ListPendingItems(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	respondPage(c, *page, nil)
}
