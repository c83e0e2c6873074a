package handler

import (
	"context"
	"net/url"

	"github.com/gin-gonic/gin"

	reportapp "github.com/papermill/portal/internal/application/report"
	"github.com/papermill/portal/internal/domain/shared"
	"github.com/papermill/portal/internal/infrastructure/export"
)

// ReportService is what the report endpoints need
type ReportService interface {
	CutRolls(ctx context.Context, req reportapp.CutRollsRequest) (*reportapp.CutRollsReport, error)
	PendingOrders(ctx context.Context, req reportapp.PendingOrdersRequest) (*reportapp.PendingOrdersReport, error)
	ClientOrderSummary(ctx context.Context, from, to string) (*reportapp.ClientSummaryReport, error)
	Export(ctx context.Context, name string, q url.Values) (export.Table, error)
}

// ReportHandler serves the production reports as JSON or downloads
type ReportHandler struct {
	BaseHandler
	reports ReportService
}

// NewReportHandler creates a new ReportHandler
func NewReportHandler(reports ReportService) *ReportHandler {
	return &ReportHandler{reports: reports}
}

// List handles GET /api/v1/reports
func (h *ReportHandler) List(c *gin.Context) {
	h.Success(c, reportapp.Names)
}

// Get handles GET /api/v1/reports/:name. ?format=csv|xlsx downloads the
// whole filtered report.
func (h *ReportHandler) Get(c *gin.Context) {
	name := c.Param("name")

	format, download, err := h.exportFormat(c)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	if download {
		table, err := h.reports.Export(c.Request.Context(), name, c.Request.URL.Query())
		if err != nil {
			h.HandleError(c, err)
			return
		}
		h.sendExport(c, name, format, table)
		return
	}

	switch name {
	case reportapp.CutRolls:
		var req reportapp.CutRollsRequest
		if !h.BindQuery(c, &req) {
			return
		}
		rep, err := h.reports.CutRolls(c.Request.Context(), req)
		if err != nil {
			h.HandleError(c, err)
			return
		}
		respondPage(c, rep.Page, rep)
	case reportapp.PendingOrders:
		var req reportapp.PendingOrdersRequest
		if !h.BindQuery(c, &req) {
			return
		}
		rep, err := h.reports.PendingOrders(c.Request.Context(), req)
		if err != nil {
			h.HandleError(c, err)
			return
		}
		respondPage(c, rep.Page, rep)
	case reportapp.ClientOrderSummary:
		rep, err := h.reports.ClientOrderSummary(c.Request.Context(), c.Query("from_date"), c.Query("to_date"))
		if err != nil {
			h.HandleError(c, err)
			return
		}
		h.Success(c, rep)
	default:
		h.HandleError(c, shared.NewDomainError("NOT_FOUND", "Unknown report: "+name))
	}
}
