package order

import (
	"github.com/shopspring/decimal"

	"github.com/papermill/portal/internal/domain/order"
	"github.com/papermill/portal/internal/domain/partner"
	"github.com/papermill/portal/internal/domain/shared"
)

// ListOrdersRequest holds the order listing query
type ListOrdersRequest struct {
	shared.Filter
	Status   string `form:"status"`
	ClientID string `form:"client_id"`
	FromDate string `form:"from_date"`
	ToDate   string `form:"to_date"`
}

// OrderRow is an order with the figures the listing shows
type OrderRow struct {
	order.Order
	ClientName      string          `json:"client_name"`
	TotalAmount     decimal.Decimal `json:"total_amount"`
	TotalRolls      int             `json:"total_rolls"`
	ProgressPercent int             `json:"progress_percent"`
}

// OrderList is one page of orders plus per-status counts over the
// filtered set
type OrderList struct {
	shared.Page[OrderRow]
	StatusCounts map[order.Status]int `json:"status_counts"`
}

// StatusRequest changes an order's status
type StatusRequest struct {
	Status order.Status `json:"status" form:"status" binding:"required"`
}

// ListClientsRequest holds the client listing query
type ListClientsRequest struct {
	shared.Filter
	Status string `form:"status"`
}

// ClientRow is a client with its derived GST state code
type ClientRow struct {
	partner.Client
	StateCode string `json:"state_code"`
}

func toOrderRow(o order.Order) OrderRow {
	return OrderRow{
		Order:           o,
		ClientName:      o.ClientName(),
		TotalAmount:     o.TotalAmount(),
		TotalRolls:      o.TotalRolls(),
		ProgressPercent: o.ProgressPercent(),
	}
}
