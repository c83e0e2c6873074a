package order

import (
	"github.com/shopspring/decimal"

	"github.com/papermill/portal/internal/domain/shared"
)

// PendingStatus mirrors the backend pending-item lifecycle
type PendingStatus string

const (
	PendingStatusPending        PendingStatus = "pending"
	PendingStatusIncludedInPlan PendingStatus = "included_in_plan"
	PendingStatusResolved       PendingStatus = "resolved"
	PendingStatusCancelled      PendingStatus = "cancelled"
)

// PendingItem is an order quantity the optimizer could not fit into a plan
type PendingItem struct {
	ID              string           `json:"id"`
	FrontendID      string           `json:"frontend_id"`
	OriginalOrderID string           `json:"original_order_id"`
	OrderFrontendID string           `json:"order_frontend_id"`
	ClientName      string           `json:"client_name"`
	WidthInches     decimal.Decimal  `json:"width_inches"`
	GSM             int              `json:"gsm"`
	BF              decimal.Decimal  `json:"bf"`
	Shade           string           `json:"shade"`
	QuantityPending int              `json:"quantity_pending"`
	Reason          string           `json:"reason"`
	Status          PendingStatus    `json:"status"`
	CreatedAt       shared.Timestamp `json:"created_at"`
}
