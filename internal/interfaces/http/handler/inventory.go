package handler

import (
	"context"

	"github.com/gin-gonic/gin"

	inventoryapp "github.com/papermill/portal/internal/application/inventory"
	"github.com/papermill/portal/internal/domain/inventory"
	"github.com/papermill/portal/internal/domain/shared"
)

// InventoryService is what the challan and stock endpoints need
type InventoryService interface {
	ListChallans(ctx context.Context, dir inventory.Direction, req inventoryapp.ListChallansRequest) (*shared.Page[inventory.MaterialChallan], error)
	GetChallan(ctx context.Context, dir inventory.Direction, id string) (*inventory.MaterialChallan, error)
	CreateChallan(ctx context.Context, dir inventory.Direction, form inventory.ChallanForm) (*inventory.MaterialChallan, error)
	UpdateChallan(ctx context.Context, dir inventory.Direction, id string, form inventory.ChallanForm) (*inventory.MaterialChallan, error)
	DeleteChallan(ctx context.Context, dir inventory.Direction, id string) error
	ListMaterials(ctx context.Context) ([]inventory.Material, error)

	ListWarehouseItems(ctx context.Context, req inventoryapp.StockRequest) (*inventoryapp.StockPage[inventory.WarehouseItem], error)
	ListWastageItems(ctx context.Context, req inventoryapp.StockRequest) (*inventoryapp.StockPage[inventory.WastageRoll], error)
	ListManualCutRolls(ctx context.Context, req inventoryapp.StockRequest) (*inventoryapp.StockPage[inventory.ManualCutRoll], error)
}

// InventoryHandler handles material challans and roll stock
type InventoryHandler struct {
	BaseHandler
	inventory InventoryService
}

// NewInventoryHandler creates a new InventoryHandler
func NewInventoryHandler(svc InventoryService) *InventoryHandler {
	return &InventoryHandler{inventory: svc}
}

// direction reads :direction, answering 400 when it is unknown
func (h *InventoryHandler) direction(c *gin.Context) (inventory.Direction, bool) {
	dir, err := inventory.ParseDirection(c.Param("direction"))
	if err != nil {
		h.HandleError(c, err)
		return "", false
	}
	return dir, true
}

// ListChallans handles GET /api/v1/challans/:direction
func (h *InventoryHandler) ListChallans(c *gin.Context) {
	dir, ok := h.direction(c)
	if !ok {
		return
	}
	var req inventoryapp.ListChallansRequest
	if !h.BindQuery(c, &req) {
		return
	}
	page, err := h.inventory.ListChallans(c.Request.Context(), dir, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	respondPage(c, *page, nil)
}

// GetChallan handles GET /api/v1/challans/:direction/:id
func (h *InventoryHandler) GetChallan(c *gin.Context) {
	dir, ok := h.direction(c)
	if !ok {
		return
	}
	ch, err := h.inventory.GetChallan(c.Request.Context(), dir, c.Param("id"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, ch)
}

// CreateChallan handles POST /api/v1/challans/:direction
func (h *InventoryHandler) CreateChallan(c *gin.Context) {
	dir, ok := h.direction(c)
	if !ok {
		return
	}
	var form inventory.ChallanForm
	if !h.Bind(c, &form) {
		return
	}
	ch, err := h.inventory.CreateChallan(c.Request.Context(), dir, form)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, ch)
}

// UpdateChallan handles PUT /api/v1/challans/:direction/:id
func (h *InventoryHandler) UpdateChallan(c *gin.Context) {
	dir, ok := h.direction(c)
	if !ok {
		return
	}
	var form inventory.ChallanForm
	if !h.Bind(c, &form) {
		return
	}
	ch, err := h.inventory.UpdateChallan(c.Request.Context(), dir, c.Param("id"), form)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, ch)
}

// DeleteChallan handles DELETE /api/v1/challans/:direction/:id
func (h *InventoryHandler) DeleteChallan(c *gin.Context) {
	dir, ok := h.direction(c)
	if !ok {
		return
	}
	if err := h.inventory.DeleteChallan(c.Request.Context(), dir, c.Param("id")); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// ListMaterials handles GET /api/v1/inventory/materials
func (h *InventoryHandler) ListMaterials(c *gin.Context) {
	materials, err := h.inventory.ListMaterials(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, materials)
}

// ListWarehouse handles GET /api/v1/inventory/warehouse
func (h *InventoryHandler) ListWarehouse(c *gin.Context) {
	var req inventoryapp.StockRequest
	if !h.BindQuery(c, &req) {
		return
	}
	page, err := h.inventory.ListWarehouseItems(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	respondPage(c, page.Page, page)
}

// ListWastage handles GET /api/v1/inventory/wastage
func (h *InventoryHandler) ListWastage(c *gin.Context) {
	var req inventoryapp.StockRequest
	if !h.BindQuery(c, &req) {
		return
	}
	page, err := h.inventory.ListWastageItems(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	respondPage(c, page.Page, page)
}

// ListManualCutRolls handles GET /api/v1/inventory/manual-cut-rolls
func (h *InventoryHandler) ListManualCutRolls(c *gin.Context) {
	var req inventoryapp.StockRequest
	if !h.BindQuery(c, &req) {
		return
	}
	page, err := h.inventory.ListManualCutRolls(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	respondPage(c, page.Page, page)
}
