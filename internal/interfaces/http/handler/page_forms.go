package handler

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/papermill/portal/internal/domain/dispatch"
	"github.com/papermill/portal/internal/domain/inventory"
	"github.com/papermill/portal/internal/domain/order"
	"github.com/papermill/portal/internal/domain/shared"
)

// blankOrderRows is how many empty item rows the order form offers
const blankOrderRows = 3

// formDecimal parses an optional decimal field; blank is zero
func formDecimal(raw, label string) (decimal.Decimal, error) {
	raw = strings.ReplaceAll(strings.TrimSpace(raw), ",", "")
	if raw == "" {
		return decimal.Zero, nil
	}
	v, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, shared.InvalidInput(label + " must be a number")
	}
	return v, nil
}

func formInt(raw, label string) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, shared.InvalidInput(label + " must be a whole number")
	}
	return v, nil
}

// at returns values[i], or "" past the end
func at(values []string, i int) string {
	if i < len(values) {
		return values[i]
	}
	return ""
}

// orderFormFromPost reads the order form. Item fields are posted as
// parallel arrays, one entry per table row; rows left entirely blank are
// skipped. The returned form is always usable for re-rendering.
func orderFormFromPost(c *gin.Context) (order.Form, error) {
	f := order.Form{
		ClientID:     strings.TrimSpace(c.PostForm("client_id")),
		PaymentType:  order.PaymentType(c.PostForm("payment_type")),
		DeliveryDate: strings.TrimSpace(c.PostForm("delivery_date")),
	}
	papers := c.PostFormArray("item_paper_id")
	widths := c.PostFormArray("item_width")
	rolls := c.PostFormArray("item_rolls")
	kgs := c.PostFormArray("item_kg")
	rates := c.PostFormArray("item_rate")

	var firstErr error
	keep := func(err error) {
		if firstErr == nil && err != nil {
			firstErr = err
		}
	}
	n := max(len(papers), len(widths), len(rolls), len(kgs), len(rates))
	for i := range n {
		row := []string{at(papers, i), at(widths, i), at(rolls, i), at(kgs, i), at(rates, i)}
		if strings.TrimSpace(strings.Join(row, "")) == "" {
			continue
		}
		line := fmt.Sprintf("Item %d: ", len(f.Items)+1)
		var it order.ItemForm
		var err error
		it.PaperID = strings.TrimSpace(row[0])
		it.WidthInches, err = formDecimal(row[1], line+"width")
		keep(err)
		it.QuantityRolls, err = formInt(row[2], line+"rolls")
		keep(err)
		it.QuantityKg, err = formDecimal(row[3], line+"weight")
		keep(err)
		it.Rate, err = formDecimal(row[4], line+"rate")
		keep(err)
		f.Items = append(f.Items, it)
	}
	return f, firstErr
}

// orderRows pads the form's items with blank rows for the template
func orderRows(f order.Form) []order.ItemForm {
	rows := append([]order.ItemForm(nil), f.Items...)
	for range blankOrderRows {
		rows = append(rows, order.ItemForm{})
	}
	return rows
}

func challanFormFromPost(c *gin.Context) (inventory.ChallanForm, error) {
	f := inventory.ChallanForm{
		MaterialID:       c.PostForm("material_id"),
		MaterialName:     c.PostForm("material_name"),
		Unit:             c.PostForm("unit"),
		PartyName:        c.PostForm("party_name"),
		VehicleNumber:    c.PostForm("vehicle_number"),
		ChallanReference: c.PostForm("bill_no"),
		Remarks:          c.PostForm("remarks"),
		Time:             c.PostForm("time"),
	}
	var err error
	f.Quantity, err = formDecimal(c.PostForm("quantity"), "Quantity")
	return f, err
}

func dispatchFormFromPost(c *gin.Context) dispatch.CreateForm {
	return dispatch.CreateForm{
		ClientID:         c.PostForm("client_id"),
		PrimaryOrderID:   c.PostForm("primary_order_id"),
		VehicleNumber:    c.PostForm("vehicle_number"),
		DriverName:       c.PostForm("driver_name"),
		DriverMobile:     c.PostForm("driver_mobile"),
		LocketNumber:     c.PostForm("locket_no"),
		PaymentType:      c.PostForm("payment_type"),
		DispatchDate:     c.PostForm("dispatch_date"),
		ReferenceNumber:  c.PostForm("reference_number"),
		InventoryIDs:     c.PostFormArray("inventory_ids"),
		WastageIDs:       c.PostFormArray("wastage_ids"),
		ManualCutRollIDs: c.PostFormArray("manual_cut_roll_ids"),
	}
}

// planSelection reads the orders and pending items ticked on the plan form
func planSelection(c *gin.Context) (orderIDs, pendingIDs []string) {
	return nonBlank(c.PostFormArray("order_ids")), nonBlank(c.PostFormArray("pending_item_ids"))
}

func nonBlank(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

// checked builds a lookup of the posted ids for re-rendering checkboxes
func checked(ids ...[]string) map[string]bool {
	m := map[string]bool{}
	for _, list := range ids {
		for _, id := range list {
			m[id] = true
		}
	}
	return m
}
