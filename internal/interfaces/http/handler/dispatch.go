package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	dispatchapp "github.com/papermill/portal/internal/application/dispatch"
	"github.com/papermill/portal/internal/domain/dispatch"
	"github.com/papermill/portal/internal/infrastructure/export"
)

// DispatchService is what the dispatch endpoints need
type DispatchService interface {
	History(ctx context.Context, req dispatchapp.HistoryRequest) (*dispatchapp.History, error)
	ExportHistory(ctx context.Context, req dispatchapp.HistoryRequest) (export.Table, error)
	Details(ctx context.Context, id string) (*dispatchapp.Details, error)
	UpdateStatus(ctx context.Context, id string, status dispatch.Status) (*dispatchapp.Details, error)
	BackendPDF(ctx context.Context, id string) ([]byte, string, error)
	Candidates(ctx context.Context, clientID string) (*dispatchapp.Candidates, error)
	Create(ctx context.Context, form dispatch.CreateForm, createdBy string) (*dispatch.Record, error)
}

// DispatchHandler handles dispatch history, details and creation
type DispatchHandler struct {
	BaseHandler
	dispatches DispatchService
}

// NewDispatchHandler creates a new DispatchHandler
func NewDispatchHandler(svc DispatchService) *DispatchHandler {
	return &DispatchHandler{dispatches: svc}
}

// History handles GET /api/v1/dispatch/history. With ?format=csv|xlsx the
// whole filtered history is downloaded instead.
func (h *DispatchHandler) History(c *gin.Context) {
	var req dispatchapp.HistoryRequest
	if !h.BindQuery(c, &req) {
		return
	}

	format, download, err := h.exportFormat(c)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	if download {
		table, err := h.dispatches.ExportHistory(c.Request.Context(), req)
		if err != nil {
			h.HandleError(c, err)
			return
		}
		h.sendExport(c, "dispatch_history", format, table)
		return
	}

	history, err := h.dispatches.History(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	respondPage(c, history.Page, history)
}

// Details handles GET /api/v1/dispatch/:id
func (h *DispatchHandler) Details(c *gin.Context) {
	d, err := h.dispatches.Details(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, d)
}

// UpdateStatus handles PUT /api/v1/dispatch/:id/status
func (h *DispatchHandler) UpdateStatus(c *gin.Context) {
	var req dispatch.StatusUpdate
	if !h.Bind(c, &req) {
		return
	}
	d, err := h.dispatches.UpdateStatus(c.Request.Context(), c.Param("id"), req.Status)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, d)
}

// PDF handles GET /api/v1/dispatch/:id/pdf
func (h *DispatchHandler) PDF(c *gin.Context) {
	id := c.Param("id")
	data, contentType, err := h.dispatches.BackendPDF(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	c.Header("Content-Disposition", contentDisposition("inline", "dispatch_"+id+".pdf"))
	c.Data(http.StatusOK, contentType, data)
}

// Candidates handles GET /api/v1/dispatch/candidates
func (h *DispatchHandler) Candidates(c *gin.Context) {
	cands, err := h.dispatches.Candidates(c.Request.Context(), c.Query("client_id"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, cands)
}

// Create handles POST /api/v1/dispatch
func (h *DispatchHandler) Create(c *gin.Context) {
	var form dispatch.CreateForm
	if !h.Bind(c, &form) {
		return
	}
	rec, err := h.dispatches.Create(c.Request.Context(), form, currentUserID(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, rec)
}
