package dispatch

import (
	"regexp"
	"strings"

	"github.com/papermill/portal/internal/domain/shared"
)

var (
	mobilePattern = regexp.MustCompile(`^[0-9]{10}$`)
	// separators people type inside phone numbers
	mobileSeparators = strings.NewReplacer(" ", "", "-", "", ".", "", "(", "", ")", "")
)

// CreateForm is the dispatch creation form
type CreateForm struct {
	ClientID         string   `json:"client_id" form:"client_id" binding:"required"`
	PrimaryOrderID   string   `json:"primary_order_id" form:"primary_order_id"`
	VehicleNumber    string   `json:"vehicle_number" form:"vehicle_number" binding:"required,max=20"`
	DriverName       string   `json:"driver_name" form:"driver_name" binding:"required,max=100"`
	DriverMobile     string   `json:"driver_mobile" form:"driver_mobile"`
	LocketNumber     string   `json:"locket_no" form:"locket_no" binding:"max=50"`
	PaymentType      string   `json:"payment_type" form:"payment_type"`
	DispatchDate     string   `json:"dispatch_date" form:"dispatch_date"`
	ReferenceNumber  string   `json:"reference_number" form:"reference_number" binding:"max=50"`
	InventoryIDs     []string `json:"inventory_ids" form:"inventory_ids"`
	WastageIDs       []string `json:"wastage_ids" form:"wastage_ids"`
	ManualCutRollIDs []string `json:"manual_cut_roll_ids" form:"manual_cut_roll_ids"`
	CreatedByID      string   `json:"created_by_id,omitempty" form:"-"`
}

// Normalize trims fields, upper-cases the vehicle number and drops
// duplicate or blank ids
func (f CreateForm) Normalize() CreateForm {
	f.ClientID = strings.TrimSpace(f.ClientID)
	f.VehicleNumber = strings.ToUpper(strings.Join(strings.Fields(f.VehicleNumber), ""))
	f.DriverName = strings.TrimSpace(f.DriverName)
	f.DriverMobile = normalizeMobile(f.DriverMobile)
	f.LocketNumber = strings.TrimSpace(f.LocketNumber)
	f.ReferenceNumber = strings.TrimSpace(f.ReferenceNumber)
	if f.PaymentType == "" {
		f.PaymentType = "bill"
	}
	f.InventoryIDs = uniqueIDs(f.InventoryIDs)
	f.WastageIDs = uniqueIDs(f.WastageIDs)
	f.ManualCutRollIDs = uniqueIDs(f.ManualCutRollIDs)
	return f
}

// Validate checks the dispatch form
func (f CreateForm) Validate() error {
	if f.ClientID == "" {
		return shared.InvalidInput("Client is required")
	}
	if f.VehicleNumber == "" {
		return shared.InvalidInput("Vehicle number is required")
	}
	if f.DriverName == "" {
		return shared.InvalidInput("Driver name is required")
	}
	if f.DriverMobile != "" && !mobilePattern.MatchString(f.DriverMobile) {
		return shared.InvalidInput("Driver mobile must be 10 digits")
	}
	if f.PaymentType != "bill" && f.PaymentType != "cash" {
		return shared.InvalidInput("Payment type must be bill or cash")
	}
	if f.DispatchDate != "" {
		if _, err := shared.ParseTimestamp(f.DispatchDate); err != nil {
			return shared.InvalidInput("Dispatch date must be YYYY-MM-DD")
		}
	}
	if f.ItemCount() == 0 {
		return shared.InvalidInput("Select at least one roll to dispatch")
	}
	return nil
}

// normalizeMobile drops separators and a +91 country code
func normalizeMobile(s string) string {
	s = mobileSeparators.Replace(strings.TrimSpace(s))
	if strings.HasPrefix(s, "+91") {
		s = s[3:]
	}
	return s
}

// ItemCount is the number of selected rolls across all sources
func (f CreateForm) ItemCount() int {
	return len(f.InventoryIDs) + len(f.WastageIDs) + len(f.ManualCutRollIDs)
}

// StatusUpdate is the body of a status change
type StatusUpdate struct {
	Status Status `json:"status" form:"status" binding:"required"`
}

func uniqueIDs(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
