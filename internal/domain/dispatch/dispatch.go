package dispatch

import (
	"github.com/shopspring/decimal"

	"github.com/papermill/portal/internal/domain/partner"
	"github.com/papermill/portal/internal/domain/shared"
)

// Status mirrors the backend dispatch lifecycle
type Status string

const (
	StatusDispatched Status = "dispatched"
	StatusDelivered  Status = "delivered"
	StatusReturned   Status = "returned"
	StatusCancelled  Status = "cancelled"
)

// IsValid checks if the Status is a known value
func (s Status) IsValid() bool {
	switch s {
	case StatusDispatched, StatusDelivered, StatusReturned, StatusCancelled:
		return true
	}
	return false
}

// IsTerminal reports whether the dispatch can no longer change status
func (s Status) IsTerminal() bool {
	return s == StatusDelivered || s == StatusReturned || s == StatusCancelled
}

// CanTransitionTo reports whether the status change may be requested
func (s Status) CanTransitionTo(target Status) bool {
	return s == StatusDispatched && target.IsTerminal()
}

// Label is the human text shown in status badges
func (s Status) Label() string {
	switch s {
	case StatusDispatched:
		return "Dispatched"
	case StatusDelivered:
		return "Delivered"
	case StatusReturned:
		return "Returned"
	case StatusCancelled:
		return "Cancelled"
	}
	return string(s)
}

// AllStatuses lists every dispatch status
func AllStatuses() []Status {
	return []Status{StatusDispatched, StatusDelivered, StatusReturned, StatusCancelled}
}

// Record is an outbound shipment of cut rolls to one client
type Record struct {
	ID                   string           `json:"id"`
	FrontendID           string           `json:"frontend_id"`
	DispatchNumber       string           `json:"dispatch_number"`
	DispatchDate         shared.Timestamp `json:"dispatch_date"`
	ClientID             string           `json:"client_id"`
	Client               *partner.Client  `json:"client,omitempty"`
	PrimaryOrderID       string           `json:"primary_order_id,omitempty"`
	PrimaryOrderFrontend string           `json:"primary_order_frontend_id,omitempty"`
	VehicleNumber        string           `json:"vehicle_number"`
	DriverName           string           `json:"driver_name"`
	DriverMobile         string           `json:"driver_mobile"`
	LocketNumber         string           `json:"locket_no"`
	PaymentType          string           `json:"payment_type"`
	ReferenceNumber      string           `json:"reference_number"`
	Status               Status           `json:"status"`
	TotalItems           int              `json:"total_items"`
	TotalWeightKg        decimal.Decimal  `json:"total_weight_kg"`
	Items                []Item           `json:"items,omitempty"`
	CreatedBy            string           `json:"created_by_name,omitempty"`
	CreatedAt            shared.Timestamp `json:"created_at"`
}

// Item is one roll on a dispatch
type Item struct {
	ID              string          `json:"id"`
	InventoryID     string          `json:"inventory_id,omitempty"`
	QRCode          string          `json:"qr_code"`
	BarcodeID       string          `json:"barcode_id"`
	WidthInches     decimal.Decimal `json:"width_inches"`
	WeightKg        decimal.Decimal `json:"weight_kg"`
	GSM             int             `json:"gsm"`
	BF              decimal.Decimal `json:"bf"`
	Shade           string          `json:"shade"`
	PaperSpec       string          `json:"paper_spec"`
	OrderFrontendID string          `json:"order_frontend_id"`
	Rate            decimal.Decimal `json:"rate"`
	Source          string          `json:"source,omitempty"` // warehouse, wastage or manual
}

// ClientName returns the embedded client's company name
func (r Record) ClientName() string {
	if r.Client == nil {
		return ""
	}
	return r.Client.CompanyName
}

// ClientGSTIN returns the embedded client's GSTIN
func (r Record) ClientGSTIN() string {
	if r.Client == nil {
		return ""
	}
	return r.Client.GSTNumber
}

// Number prefers the dispatch number, then the frontend id
func (r Record) Number() string {
	switch {
	case r.DispatchNumber != "":
		return r.DispatchNumber
	case r.FrontendID != "":
		return r.FrontendID
	}
	return r.ID
}

// Spec returns the item's paper spec, deriving it when the backend omits it
func (it Item) Spec() string {
	if it.PaperSpec != "" {
		return it.PaperSpec
	}
	if it.GSM == 0 {
		return ""
	}
	return partner.FormatSpec(it.GSM, it.BF, it.Shade)
}

// Code is the code printed for the item
func (it Item) Code() string {
	if it.BarcodeID != "" {
		return it.BarcodeID
	}
	return it.QRCode
}

// Amount is weight x rate rounded to paise
func (it Item) Amount() decimal.Decimal {
	return it.WeightKg.Mul(it.Rate).Round(2)
}

// ItemWeight sums item weights, falling back to the record total when the
// items were not loaded.
func (r Record) ItemWeight() decimal.Decimal {
	if len(r.Items) == 0 {
		return r.TotalWeightKg
	}
	total := decimal.Zero
	for _, it := range r.Items {
		total = total.Add(it.WeightKg)
	}
	return total
}

// ItemCount is the loaded item count or the record total
func (r Record) ItemCount() int {
	if len(r.Items) == 0 {
		return r.TotalItems
	}
	return len(r.Items)
}
