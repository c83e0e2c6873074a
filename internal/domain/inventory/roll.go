package inventory

import (
	"github.com/shopspring/decimal"

	"github.com/papermill/portal/internal/domain/partner"
	"github.com/papermill/portal/internal/domain/shared"
)

// RollType is the level of a roll in the production hierarchy
type RollType string

const (
	RollTypeJumbo RollType = "jumbo"
	RollTypeSet   RollType = "118"
	RollTypeCut   RollType = "cut"
)

// Rank orders roll types from the top of the hierarchy down
func (t RollType) Rank() int {
	switch t {
	case RollTypeJumbo:
		return 0
	case RollTypeSet:
		return 1
	case RollTypeCut:
		return 2
	}
	return 3
}

// Label is the display name of the roll type
func (t RollType) Label() string {
	switch t {
	case RollTypeJumbo:
		return "Jumbo Roll"
	case RollTypeSet:
		return `118" Set Roll`
	case RollTypeCut:
		return "Cut Roll"
	}
	return string(t)
}

// RollStatus mirrors the backend inventory status
type RollStatus string

const (
	RollStatusCutting    RollStatus = "cutting"
	RollStatusAvailable  RollStatus = "available"
	RollStatusAllocated  RollStatus = "allocated"
	RollStatusUsed       RollStatus = "used"
	RollStatusDamaged    RollStatus = "damaged"
	RollStatusDispatched RollStatus = "dispatched"
)

// Roll is a physical roll at any level of the hierarchy
type Roll struct {
	ID              string           `json:"id"`
	BarcodeID       string           `json:"barcode_id"`
	QRCode          string           `json:"qr_code"`
	RollType        RollType         `json:"roll_type"`
	ParentID        string           `json:"parent_id,omitempty"`
	WidthInches     decimal.Decimal  `json:"width_inches"`
	WeightKg        decimal.Decimal  `json:"weight_kg"`
	GSM             int              `json:"gsm"`
	BF              decimal.Decimal  `json:"bf"`
	Shade           string           `json:"shade"`
	Status          RollStatus       `json:"status"`
	Location        string           `json:"location"`
	ClientName      string           `json:"client_name,omitempty"`
	OrderFrontendID string           `json:"order_frontend_id,omitempty"`
	PlanFrontendID  string           `json:"plan_frontend_id,omitempty"`
	ProductionDate  shared.Timestamp `json:"production_date"`
}

// PaperSpec renders the roll's paper grade
func (r Roll) PaperSpec() string {
	return partner.FormatSpec(r.GSM, r.BF, r.Shade)
}

// Code is the code printed on the roll label
func (r Roll) Code() string {
	if r.BarcodeID != "" {
		return r.BarcodeID
	}
	return r.QRCode
}

// WarehouseItem is a finished cut roll waiting in the warehouse for dispatch
type WarehouseItem struct {
	Roll
	OrderID  string `json:"order_id,omitempty"`
	ClientID string `json:"client_id,omitempty"`
}

// WastageStatus mirrors the backend wastage inventory status
type WastageStatus string

const (
	WastageAvailable WastageStatus = "available"
	WastageUsed      WastageStatus = "used"
	WastageDamaged   WastageStatus = "damaged"
)

// WastageRoll is an off-cut kept for reuse
type WastageRoll struct {
	ID           string           `json:"id"`
	FrontendID   string           `json:"frontend_id"`
	BarcodeID    string           `json:"barcode_id"`
	WidthInches  decimal.Decimal  `json:"width_inches"`
	WeightKg     decimal.Decimal  `json:"weight_kg"`
	GSM          int              `json:"gsm"`
	BF           decimal.Decimal  `json:"bf"`
	Shade        string           `json:"shade"`
	Status       WastageStatus    `json:"status"`
	Location     string           `json:"location"`
	SourcePlanID string           `json:"source_plan_id,omitempty"`
	ReelNumber   string           `json:"reel_no,omitempty"`
	CreatedAt    shared.Timestamp `json:"created_at"`
}

// PaperSpec renders the off-cut's paper grade
func (w WastageRoll) PaperSpec() string {
	return partner.FormatSpec(w.GSM, w.BF, w.Shade)
}

// ManualCutRoll is a cut roll entered by hand rather than produced by a plan
type ManualCutRoll struct {
	ID          string           `json:"id"`
	FrontendID  string           `json:"frontend_id"`
	BarcodeID   string           `json:"barcode_id"`
	ClientID    string           `json:"client_id"`
	ClientName  string           `json:"client_name"`
	WidthInches decimal.Decimal  `json:"width_inches"`
	WeightKg    decimal.Decimal  `json:"weight_kg"`
	GSM         int              `json:"gsm"`
	BF          decimal.Decimal  `json:"bf"`
	Shade       string           `json:"shade"`
	ReelNumber  string           `json:"reel_number"`
	Status      RollStatus       `json:"status"`
	CreatedAt   shared.Timestamp `json:"created_at"`
}

// PaperSpec renders the roll's paper grade
func (m ManualCutRoll) PaperSpec() string {
	return partner.FormatSpec(m.GSM, m.BF, m.Shade)
}
