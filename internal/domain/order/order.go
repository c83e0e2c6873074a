package order

import (
	"github.com/shopspring/decimal"

	"github.com/papermill/portal/internal/domain/partner"
	"github.com/papermill/portal/internal/domain/shared"
)

// Status mirrors the backend order lifecycle
type Status string

const (
	StatusCreated   Status = "created"
	StatusInProcess Status = "in_process"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

// IsValid checks if the Status is a known value
func (s Status) IsValid() bool {
	switch s {
	case StatusCreated, StatusInProcess, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// Label is the human text shown in status badges
func (s Status) Label() string {
	switch s {
	case StatusCreated:
		return "Created"
	case StatusInProcess:
		return "In Process"
	case StatusCompleted:
		return "Completed"
	case StatusCancelled:
		return "Cancelled"
	}
	return string(s)
}

// AllStatuses lists the statuses in lifecycle order
func AllStatuses() []Status {
	return []Status{StatusCreated, StatusInProcess, StatusCompleted, StatusCancelled}
}

// PaymentType distinguishes billed (GST) orders from cash orders
type PaymentType string

const (
	PaymentBill PaymentType = "bill"
	PaymentCash PaymentType = "cash"
)

// IsValid checks if the PaymentType is a known value
func (p PaymentType) IsValid() bool {
	return p == PaymentBill || p == PaymentCash
}

// Order is a client order for one or more paper widths
type Order struct {
	ID           string           `json:"id"`
	FrontendID   string           `json:"frontend_id"`
	ClientID     string           `json:"client_id"`
	Client       *partner.Client  `json:"client,omitempty"`
	Status       Status           `json:"status"`
	PaymentType  PaymentType      `json:"payment_type"`
	DeliveryDate shared.Timestamp `json:"delivery_date"`
	Items        []Item           `json:"order_items"`
	CreatedBy    string           `json:"created_by_name,omitempty"`
	CreatedAt    shared.Timestamp `json:"created_at"`
	UpdatedAt    shared.Timestamp `json:"updated_at"`
}

// Item is one order line: a width of a paper grade
type Item struct {
	ID                string          `json:"id"`
	FrontendID        string          `json:"frontend_id"`
	PaperID           string          `json:"paper_id"`
	Paper             *partner.Paper  `json:"paper,omitempty"`
	WidthInches       decimal.Decimal `json:"width_inches"`
	QuantityRolls     int             `json:"quantity_rolls"`
	QuantityKg        decimal.Decimal `json:"quantity_kg"`
	Rate              decimal.Decimal `json:"rate"`
	Amount            decimal.Decimal `json:"amount"`
	QuantityFulfilled int             `json:"quantity_fulfilled"`
	QuantityInPending int             `json:"quantity_in_pending"`
}

// ClientName returns the client's company name, if embedded
func (o Order) ClientName() string {
	if o.Client == nil {
		return ""
	}
	return o.Client.CompanyName
}

// DisplayID prefers the human-readable number
func (o Order) DisplayID() string {
	if o.FrontendID != "" {
		return o.FrontendID
	}
	return o.ID
}

// TotalAmount sums line amounts, computing missing ones from kg x rate
func (o Order) TotalAmount() decimal.Decimal {
	total := decimal.Zero
	for _, it := range o.Items {
		total = total.Add(it.LineAmount())
	}
	return total
}

// TotalRolls sums the ordered roll quantities
func (o Order) TotalRolls() int {
	n := 0
	for _, it := range o.Items {
		n += it.QuantityRolls
	}
	return n
}

// TotalFulfilled sums fulfilled roll quantities
func (o Order) TotalFulfilled() int {
	n := 0
	for _, it := range o.Items {
		n += min(it.QuantityFulfilled, it.QuantityRolls)
	}
	return n
}

// ProgressPercent is fulfilled/ordered rolls, 0..100
func (o Order) ProgressPercent() int {
	total := o.TotalRolls()
	if total == 0 {
		return 0
	}
	return o.TotalFulfilled() * 100 / total
}

// Remaining returns rolls still to be produced, never negative
func (it Item) Remaining() int {
	return max(it.QuantityRolls-it.QuantityFulfilled, 0)
}

// LineAmount returns the backend amount or kg x rate when absent
func (it Item) LineAmount() decimal.Decimal {
	if !it.Amount.IsZero() {
		return it.Amount
	}
	return it.QuantityKg.Mul(it.Rate).Round(2)
}

// PaperSpec renders the embedded paper spec, if any
func (it Item) PaperSpec() string {
	if it.Paper == nil {
		return ""
	}
	return it.Paper.Spec()
}
