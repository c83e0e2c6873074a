package report

import (
	"github.com/shopspring/decimal"

	"github.com/papermill/portal/internal/domain/partner"
	"github.com/papermill/portal/internal/domain/shared"
)

// CutRollRow is one roll in the all-cut-rolls report
type CutRollRow struct {
	ID              string           `json:"id"`
	BarcodeID       string           `json:"barcode_id"`
	QRCode          string           `json:"qr_code"`
	WidthInches     decimal.Decimal  `json:"width_inches"`
	WeightKg        decimal.Decimal  `json:"weight_kg"`
	GSM             int              `json:"gsm"`
	BF              decimal.Decimal  `json:"bf"`
	Shade           string           `json:"shade"`
	Status          string           `json:"status"`
	ClientName      string           `json:"client_name"`
	OrderFrontendID string           `json:"order_frontend_id"`
	PlanFrontendID  string           `json:"plan_frontend_id"`
	Location        string           `json:"location"`
	CreatedAt       shared.Timestamp `json:"created_at"`
}

// PaperSpec renders the roll's paper grade
func (r CutRollRow) PaperSpec() string {
	return partner.FormatSpec(r.GSM, r.BF, r.Shade)
}

// PendingOrderRow is one line of the pending-orders report
type PendingOrderRow struct {
	ID              string           `json:"id"`
	FrontendID      string           `json:"frontend_id"`
	OrderFrontendID string           `json:"order_frontend_id"`
	ClientName      string           `json:"client_name"`
	WidthInches     decimal.Decimal  `json:"width_inches"`
	GSM             int              `json:"gsm"`
	BF              decimal.Decimal  `json:"bf"`
	Shade           string           `json:"shade"`
	QuantityPending int              `json:"quantity_pending"`
	Reason          string           `json:"reason"`
	Status          string           `json:"status"`
	CreatedAt       shared.Timestamp `json:"created_at"`
}

// PaperSpec renders the line's paper grade
func (r PendingOrderRow) PaperSpec() string {
	return partner.FormatSpec(r.GSM, r.BF, r.Shade)
}

// ClientOrderSummaryRow aggregates one client's orders over a period
type ClientOrderSummaryRow struct {
	ClientID        string          `json:"client_id"`
	ClientName      string          `json:"client_name"`
	TotalOrders     int             `json:"total_orders"`
	CompletedOrders int             `json:"completed_orders"`
	PendingOrders   int             `json:"pending_orders"`
	TotalQuantity   int             `json:"total_quantity_rolls"`
	TotalWeightKg   decimal.Decimal `json:"total_weight_kg"`
	TotalAmount     decimal.Decimal `json:"total_amount"`
}
