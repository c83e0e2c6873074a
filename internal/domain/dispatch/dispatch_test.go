package dispatch

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func w(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestStatus_Transitions(t *testing.T) {
	assert.True(t, StatusDispatched.CanTransitionTo(StatusDelivered))
	assert.True(t, StatusDispatched.CanTransitionTo(StatusReturned))
	assert.True(t, StatusDispatched.CanTransitionTo(StatusCancelled))
	assert.False(t, StatusDispatched.CanTransitionTo(StatusDispatched))
	assert.False(t, StatusDelivered.CanTransitionTo(StatusReturned))
	assert.False(t, Status("lost").IsValid())
}

func TestRecord_Decode(t *testing.T) {
	raw := `{"id":"d1","dispatch_number":"DSP-2025-014","dispatch_date":"2025-04-01T08:30:00",
		"client":{"company_name":"Shree Packaging","gst_number":"24AAACC1206D1ZM"},
		"status":"dispatched","total_items":9,"total_weight_kg":"1234.5","locket_no":"L-7",
		"items":[{"barcode_id":"CR_1","weight_kg":100.5,"gsm":120,"bf":18,"shade":"Natural","rate":"40"},
		         {"qr_code":"QR2","weight_kg":"200","paper_spec":"100gsm, 16bf, Golden"}]}`
	var r Record
	require.NoError(t, json.Unmarshal([]byte(raw), &r))

	assert.Equal(t, "DSP-2025-014", r.Number())
	assert.Equal(t, "Shree Packaging", r.ClientName())
	assert.Equal(t, "24AAACC1206D1ZM", r.ClientGSTIN())
	assert.Equal(t, "L-7", r.LocketNumber)
	assert.Equal(t, 2, r.ItemCount())
	assert.Equal(t, "300.5", r.ItemWeight().String())
	assert.Equal(t, "120gsm, 18bf, Natural", r.Items[0].Spec())
	assert.Equal(t, "QR2", r.Items[1].Code())
	assert.Equal(t, "4020", r.Items[0].Amount().String())

	r.Items = nil
	assert.Equal(t, 9, r.ItemCount())
	assert.Equal(t, "1234.5", r.ItemWeight().String())
}

func TestCreateForm(t *testing.T) {
	f := CreateForm{
		ClientID:      "c1",
		VehicleNumber: " gj 05 ab 1234 ",
		DriverName:    "Ramesh",
		DriverMobile:  "+91 98765 43210",
		InventoryIDs:  []string{"a", "a", " ", "b"},
	}.Normalize()

	require.NoError(t, f.Validate())
	assert.Equal(t, "GJ05AB1234", f.VehicleNumber)
	assert.Equal(t, "9876543210", f.DriverMobile)
	assert.Equal(t, []string{"a", "b"}, f.InventoryIDs)
	assert.Equal(t, "bill", f.PaymentType)

	tests := []struct {
		name   string
		mutate func(*CreateForm)
		want   string
	}{
		{"no vehicle", func(f *CreateForm) { f.VehicleNumber = "" }, "Vehicle"},
		{"no driver", func(f *CreateForm) { f.DriverName = "" }, "Driver name"},
		{"bad mobile", func(f *CreateForm) { f.DriverMobile = "12345" }, "mobile"},
		{"no items", func(f *CreateForm) { f.InventoryIDs = nil }, "at least one roll"},
		{"bad payment", func(f *CreateForm) { f.PaymentType = "credit" }, "Payment"},
		{"bad date", func(f *CreateForm) { f.DispatchDate = "tomorrow" }, "Dispatch date"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := f
			tt.mutate(&g)
			err := g.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}

	for input, want := range map[string]string{
		"98765-43210":     "9876543210",
		"(98) 7654-3210":  "9876543210",
		"+91-98765.43210": "9876543210",
		" 040 2345 6789 ": "04023456789",
	} {
		g := f
		g.DriverMobile = input
		g = g.Normalize()
		assert.Equal(t, want, g.DriverMobile, input)
		if len(want) == 10 {
			assert.NoError(t, g.Validate(), input)
		} else {
			assert.Error(t, g.Validate(), input)
		}
	}

	wastageOnly := f
	wastageOnly.InventoryIDs = nil
	wastageOnly.WastageIDs = []string{"w1"}
	assert.NoError(t, wastageOnly.Validate())
}

func TestSummarize(t *testing.T) {
	s := Summarize([]Record{
		{Status: StatusDispatched, TotalItems: 3, TotalWeightKg: w("300")},
		{Status: StatusDelivered, TotalItems: 2, TotalWeightKg: w("150.25")},
		{Status: StatusDelivered, Items: []Item{{WeightKg: w("10")}}},
	})
	assert.Equal(t, 3, s.Count)
	assert.Equal(t, 6, s.TotalItems)
	assert.Equal(t, "460.25", s.TotalWeightKg)
	assert.Equal(t, 2, s.ByStatus[StatusDelivered])
	assert.Equal(t, 0, s.ByStatus[StatusCancelled])
}

func TestGroupItems(t *testing.T) {
	items := []Item{
		{OrderFrontendID: "ORD-1", PaperSpec: "A", WeightKg: w("10")},
		{OrderFrontendID: "ORD-2", PaperSpec: "A", WeightKg: w("5")},
		{OrderFrontendID: "ORD-1", PaperSpec: "A", WeightKg: w("15")},
		{OrderFrontendID: "ORD-1", PaperSpec: "B", WeightKg: w("1")},
	}
	groups := GroupItems(items)
	require.Len(t, groups, 3)
	assert.Equal(t, "ORD-1", groups[0].OrderFrontendID)
	assert.Len(t, groups[0].Items, 2)
	assert.Equal(t, "25", groups[0].WeightKg.String())
	assert.Equal(t, "ORD-2", groups[1].OrderFrontendID)
	assert.Equal(t, "B", groups[2].PaperSpec)
}
