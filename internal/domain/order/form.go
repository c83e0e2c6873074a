package order

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/papermill/portal/internal/domain/shared"
)

// MaxWidthInches is the widest cut a 118" set roll can yield
const MaxWidthInches = 118

// Form is the order create/update form
type Form struct {
	ClientID     string      `json:"client_id" form:"client_id" binding:"required"`
	PaymentType  PaymentType `json:"payment_type" form:"payment_type"`
	DeliveryDate string      `json:"delivery_date" form:"delivery_date"`
	Items        []ItemForm  `json:"order_items" binding:"dive"`
}

// ItemForm is one line on the order form
type ItemForm struct {
	PaperID       string          `json:"paper_id" binding:"required"`
	WidthInches   decimal.Decimal `json:"width_inches"`
	QuantityRolls int             `json:"quantity_rolls"`
	QuantityKg    decimal.Decimal `json:"quantity_kg"`
	Rate          decimal.Decimal `json:"rate"`
}

// Payload is the body posted to the backend
type Payload struct {
	ClientID     string        `json:"client_id"`
	PaymentType  PaymentType   `json:"payment_type"`
	DeliveryDate string        `json:"delivery_date,omitempty"`
	Items        []ItemPayload `json:"order_items"`
	CreatedByID  string        `json:"created_by_id,omitempty"`
}

// ItemPayload is one posted order line with its computed amount
type ItemPayload struct {
	PaperID       string          `json:"paper_id"`
	WidthInches   decimal.Decimal `json:"width_inches"`
	QuantityRolls int             `json:"quantity_rolls"`
	QuantityKg    decimal.Decimal `json:"quantity_kg"`
	Rate          decimal.Decimal `json:"rate"`
	Amount        decimal.Decimal `json:"amount"`
}

// Validate checks the form against today's date
func (f Form) Validate(today time.Time) error {
	if strings.TrimSpace(f.ClientID) == "" {
		return shared.InvalidInput("Client is required")
	}
	if f.PaymentType != "" && !f.PaymentType.IsValid() {
		return shared.InvalidInput("Payment type must be bill or cash")
	}
	if f.DeliveryDate != "" {
		d, err := time.Parse(time.DateOnly, f.DeliveryDate)
		if err != nil {
			return shared.InvalidInput("Delivery date must be YYYY-MM-DD")
		}
		y, m, dd := today.Date()
		if d.Before(time.Date(y, m, dd, 0, 0, 0, 0, time.UTC)) {
			return shared.InvalidInput("Delivery date cannot be in the past")
		}
	}
	if len(f.Items) == 0 {
		return shared.InvalidInput("Add at least one order item")
	}
	for i, it := range f.Items {
		if err := it.validate(); err != nil {
			return shared.InvalidInput(fmt.Sprintf("Item %d: %s", i+1, err.Error()))
		}
	}
	return nil
}

func (it ItemForm) validate() error {
	if strings.TrimSpace(it.PaperID) == "" {
		return shared.InvalidInput("paper is required")
	}
	if it.WidthInches.LessThan(decimal.NewFromInt(1)) || it.WidthInches.GreaterThan(decimal.NewFromInt(MaxWidthInches)) {
		return shared.InvalidInput(fmt.Sprintf("width must be between 1 and %d inches", MaxWidthInches))
	}
	if it.QuantityRolls < 0 || it.QuantityKg.IsNegative() {
		return shared.InvalidInput("quantities cannot be negative")
	}
	if it.QuantityRolls == 0 && !it.QuantityKg.IsPositive() {
		return shared.InvalidInput("enter a roll count or a weight")
	}
	if it.Rate.IsNegative() {
		return shared.InvalidInput("rate cannot be negative")
	}
	return nil
}

// FormFromOrder pre-fills the edit form with an existing order
func FormFromOrder(o Order) Form {
	f := Form{ClientID: o.ClientID, PaymentType: o.PaymentType}
	if !o.DeliveryDate.IsZero() {
		f.DeliveryDate = o.DeliveryDate.Format(time.DateOnly)
	}
	for _, it := range o.Items {
		f.Items = append(f.Items, ItemForm{
			PaperID:       it.PaperID,
			WidthInches:   it.WidthInches,
			QuantityRolls: it.QuantityRolls,
			QuantityKg:    it.QuantityKg,
			Rate:          it.Rate,
		})
	}
	return f
}

// Payload builds the backend body, computing each line amount as kg x rate
func (f Form) Payload(createdByID string) Payload {
	p := Payload{
		ClientID:     strings.TrimSpace(f.ClientID),
		PaymentType:  f.PaymentType,
		DeliveryDate: f.DeliveryDate,
		CreatedByID:  createdByID,
		Items:        make([]ItemPayload, 0, len(f.Items)),
	}
	if p.PaymentType == "" {
		p.PaymentType = PaymentBill
	}
	for _, it := range f.Items {
		p.Items = append(p.Items, ItemPayload{
			PaperID:       it.PaperID,
			WidthInches:   it.WidthInches,
			QuantityRolls: it.QuantityRolls,
			QuantityKg:    it.QuantityKg,
			Rate:          it.Rate,
			Amount:        it.QuantityKg.Mul(it.Rate).Round(2),
		})
	}
	return p
}

// Total is the sum of computed line amounts
func (p Payload) Total() decimal.Decimal {
	total := decimal.Zero
	for _, it := range p.Items {
		total = total.Add(it.Amount)
	}
	return total
}
