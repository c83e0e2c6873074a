package handler

import (
	"net/http"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	reportapp "github.com/papermill/portal/internal/application/report"
	"github.com/papermill/portal/internal/domain/report"
	"github.com/papermill/portal/internal/infrastructure/export"
	"github.com/papermill/portal/internal/interfaces/http/dto"
)

func TestReportHandler_Get(t *testing.T) {
	svc := &mockReportService{}
	h := NewReportHandler(svc)
	svc.On("ClientOrderSummary", mock.Anything, "2026-01-01", "2026-01-31").Return(&reportapp.ClientSummaryReport{
		Rows: []report.ClientOrderSummaryRow{
			{ClientName: "Shree Packaging", TotalOrders: 3, TotalAmount: decimal.NewFromInt(150000)},
		},
		Totals: report.ClientOrderSummaryRow{ClientName: "Total", TotalOrders: 3, TotalAmount: decimal.NewFromInt(150000)},
	}, nil)

	c, w := newContext(http.MethodGet, "/api/v1/reports/client_order_summary?from_date=2026-01-01&to_date=2026-01-31", "")
	c.AddParam("name", reportapp.ClientOrderSummary)
	h.Get(c)

	require.Equal(t, http.StatusOK, w.Code)
	data := decode(t, w).Data.(map[string]any)
	assert.Len(t, data["rows"], 1)
	assert.Equal(t, "Total", data["totals"].(map[string]any)["client_name"])
}

func TestReportHandler_Get_Unknown(t *testing.T) {
	h := NewReportHandler(&mockReportService{})

	c, w := newContext(http.MethodGet, "/api/v1/reports/stock_ageing", "")
	c.AddParam("name", "stock_ageing")
	h.Get(c)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, dto.ErrCodeNotFound, decode(t, w).Error.Code)
}

func TestReportHandler_Get_Export(t *testing.T) {
	svc := &mockReportService{}
	h := NewReportHandler(svc)
	svc.On("Export", mock.Anything, reportapp.PendingOrders, mock.Anything).Return(export.Table{
		Sheet:   "Pending",
		Columns: []export.Column{{Header: "Order"}, {Header: "Pending"}},
		Rows:    [][]any{{"ORD-00012", 4}},
	}, nil)

	c, w := newContext(http.MethodGet, "/api/v1/reports/pending_orders?format=xlsx&client=Shree", "")
	c.AddParam("name", reportapp.PendingOrders)
	h.Get(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, export.FormatXLSX.ContentType(), w.Header().Get("Content-Type"))
	assert.Equal(t, "PK", w.Body.String()[:2], "xlsx is a zip archive")
	svc.AssertExpectations(t)
}
