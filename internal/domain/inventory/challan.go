package inventory

import (
	"fmt"
	"slices"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/papermill/portal/internal/domain/shared"
)

// Direction distinguishes inward from outward material challans
type Direction string

const (
	DirectionInward  Direction = "in"
	DirectionOutward Direction = "out"
)

// ParseDirection accepts in/inward and out/outward
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "in", "inward":
		return DirectionInward, nil
	case "out", "outward":
		return DirectionOutward, nil
	}
	return "", shared.InvalidInput(fmt.Sprintf("unknown challan direction %q", s))
}

// Label is the page heading for the direction
func (d Direction) Label() string {
	if d == DirectionInward {
		return "Material Inward"
	}
	return "Material Outward"
}

// Units accepted on a material challan
var Units = []string{"kg", "ton", "pcs", "ltr", "bags", "rolls"}

// MaterialChallan records raw material or consumables entering or leaving the mill
type MaterialChallan struct {
	ID               string           `json:"id"`
	FrontendID       string           `json:"frontend_id"`
	MaterialID       string           `json:"material_id,omitempty"`
	MaterialName     string           `json:"material_name"`
	Quantity         decimal.Decimal  `json:"quantity"`
	Unit             string           `json:"unit"`
	PartyName        string           `json:"party_name"`
	VehicleNumber    string           `json:"vehicle_number"`
	ChallanReference string           `json:"bill_no"`
	Remarks          string           `json:"remarks"`
	Time             shared.Timestamp `json:"time"`
	CreatedBy        string           `json:"created_by_name,omitempty"`
}

// Material is a raw material master entry
type Material struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Unit string `json:"unit"`
}

// ChallanForm is the create/update form for a material challan
type ChallanForm struct {
	MaterialID       string          `json:"material_id" form:"material_id"`
	MaterialName     string          `json:"material_name" form:"material_name" binding:"required,max=200"`
	Quantity         decimal.Decimal `json:"quantity" form:"quantity"`
	Unit             string          `json:"unit" form:"unit" binding:"required"`
	PartyName        string          `json:"party_name" form:"party_name" binding:"required,max=200"`
	VehicleNumber    string          `json:"vehicle_number" form:"vehicle_number" binding:"max=20"`
	ChallanReference string          `json:"bill_no" form:"bill_no" binding:"max=50"`
	Remarks          string          `json:"remarks" form:"remarks" binding:"max=500"`
	Time             string          `json:"time" form:"time"`
}

// FormFromChallan prefills the edit form from a stored challan
func FormFromChallan(ch MaterialChallan) ChallanForm {
	f := ChallanForm{
		MaterialID:       ch.MaterialID,
		MaterialName:     ch.MaterialName,
		Quantity:         ch.Quantity,
		Unit:             ch.Unit,
		PartyName:        ch.PartyName,
		VehicleNumber:    ch.VehicleNumber,
		ChallanReference: ch.ChallanReference,
		Remarks:          ch.Remarks,
	}
	if !ch.Time.IsZero() {
		f.Time = ch.Time.Format(shared.DateTimeLocal)
	}
	return f
}

// Normalize trims text fields and upper-cases the vehicle number
func (f ChallanForm) Normalize() ChallanForm {
	f.MaterialName = strings.TrimSpace(f.MaterialName)
	f.PartyName = strings.TrimSpace(f.PartyName)
	f.Unit = strings.ToLower(strings.TrimSpace(f.Unit))
	f.VehicleNumber = strings.ToUpper(strings.TrimSpace(f.VehicleNumber))
	f.ChallanReference = strings.TrimSpace(f.ChallanReference)
	f.Remarks = strings.TrimSpace(f.Remarks)
	f.Time = strings.TrimSpace(f.Time)
	// the backend wants seconds; datetime-local inputs omit them
	if ts, err := shared.ParseTimestamp(f.Time); err == nil && !ts.IsZero() && len(f.Time) == len(shared.DateTimeLocal) {
		f.Time = ts.Format("2006-01-02T15:04:05")
	}
	return f
}

// Validate checks the challan form
func (f ChallanForm) Validate() error {
	if f.MaterialName == "" {
		return shared.InvalidInput("Material is required")
	}
	if !f.Quantity.IsPositive() {
		return shared.InvalidInput("Quantity must be greater than zero")
	}
	if !slices.Contains(Units, f.Unit) {
		return shared.InvalidInput("Unit must be one of " + strings.Join(Units, ", "))
	}
	if f.PartyName == "" {
		return shared.InvalidInput("Party name is required")
	}
	if f.Time != "" {
		if _, err := shared.ParseTimestamp(f.Time); err != nil {
			return shared.InvalidInput("Time must be an ISO date or date-time")
		}
	}
	return nil
}
