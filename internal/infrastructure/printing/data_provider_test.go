package printing

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/papermill/portal/internal/domain/dispatch"
	"github.com/papermill/portal/internal/domain/inventory"
	"github.com/papermill/portal/internal/domain/partner"
	"github.com/papermill/portal/internal/domain/printing"
	"github.com/papermill/portal/internal/domain/shared"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func sampleDispatch() dispatch.Record {
	return dispatch.Record{
		ID:                   "disp-1",
		DispatchNumber:       "DSP-2025-014",
		DispatchDate:         shared.NewTimestamp(time.Date(2025, 4, 1, 9, 0, 0, 0, time.UTC)),
		PrimaryOrderFrontend: "ORD-2025-001",
		VehicleNumber:        "GJ05AB1234",
		DriverName:           "Ramesh",
		DriverMobile:         "9876543210",
		LocketNumber:         "L-7",
		PaymentType:          "bill",
		Status:               dispatch.StatusDispatched,
		Client: &partner.Client{
			CompanyName: "Shree Packaging",
			Address:     "GIDC, Vapi",
			GSTNumber:   "24AAACC1206D1ZM",
		},
		Items: []dispatch.Item{
			{BarcodeID: "CR_00001", OrderFrontendID: "ORD-2025-001", GSM: 120, BF: d("18"), Shade: "Natural", WidthInches: d("42"), WeightKg: d("510.5"), Rate: d("42")},
			{BarcodeID: "CR_00002", OrderFrontendID: "ORD-2025-001", GSM: 120, BF: d("18"), Shade: "Natural", WidthInches: d("42"), WeightKg: d("489.5"), Rate: d("42")},
			{BarcodeID: "CR_00003", OrderFrontendID: "ORD-2025-002", PaperSpec: "100gsm, 16bf, Golden", WidthInches: d("36"), WeightKg: d("300"), Rate: d("38.50")},
		},
	}
}

func sampleCompany() CompanyInfo {
	return CompanyInfo{Name: "Shree Paper Mills", GSTIN: "24AABCS1234F1Z5", StateCode: "24", StateName: "Gujarat"}
}

func challanSettings(stateCode string) ChallanSettings {
	return ChallanSettings{HSNCode: "4804", GSTRatePercent: d("18"), CompanyStateCode: stateCode}
}

// sampleDocumentData builds realistic data for any document type
func sampleDocumentData(t *testing.T, docType printing.DocType) *DocumentData {
	t.Helper()
	now := time.Date(2025, 4, 1, 12, 0, 0, 0, time.UTC)
	rec := sampleDispatch()
	data := NewDocumentData(docType, rec.Number(), sampleCompany(), now)

	switch docType {
	case printing.DocTypePackingSlip:
		data.Document = BuildPackingSlip(rec)
	case printing.DocTypeCashChallan:
		data.Document = BuildChallan(rec, challanSettings("24"), false)
	case printing.DocTypeGSTChallan:
		data.Document = BuildChallan(rec, challanSettings("24"), true)
	case printing.DocTypeMaterialInward, printing.DocTypeMaterialOutward:
		dir := inventory.DirectionInward
		if docType == printing.DocTypeMaterialOutward {
			dir = inventory.DirectionOutward
		}
		data.Document = BuildMaterialChallan(inventory.MaterialChallan{
			ID: "m1", FrontendID: "MIN-0042", MaterialName: "Waste paper", Quantity: d("12.5"), Unit: "ton",
			PartyName: "City Traders", Time: shared.NewTimestamp(now),
		}, dir)
	case printing.DocTypeDispatchSummary:
		data.Document = BuildDispatchSummary([]dispatch.Record{rec}, now, now)
	default:
		t.Fatalf("no sample for %s", docType)
	}
	return data
}

func TestBuildPackingSlip(t *testing.T) {
	slip := BuildPackingSlip(sampleDispatch())

	require.Len(t, slip.Groups, 2)
	assert.Equal(t, "ORD-2025-001", slip.Groups[0].OrderFrontendID)
	assert.Equal(t, "120gsm, 18bf, Natural", slip.Groups[0].PaperSpec)
	assert.Equal(t, 2, slip.Groups[0].Rolls)
	assert.Equal(t, "1000", slip.Groups[0].WeightKg.String())
	assert.Equal(t, 3, slip.Groups[1].Rows[0].Index, "rows numbered across groups")

	assert.Equal(t, 3, slip.TotalRolls)
	assert.Equal(t, "1300", slip.TotalWeightKg.String())
	assert.Equal(t, "L-7", slip.Transport.LocketNumber)
	assert.Equal(t, "24", slip.Client.StateCode)
}

func TestBuildChallan_Cash(t *testing.T) {
	c := BuildChallan(sampleDispatch(), challanSettings("24"), false)

	require.Len(t, c.Lines, 2, "same spec, width and rate collapse")
	assert.Equal(t, 2, c.Lines[0].Rolls)
	assert.Equal(t, "1000", c.Lines[0].QuantityKg.String())
	assert.Equal(t, "42000", c.Lines[0].Amount.String())
	assert.Equal(t, `120gsm, 18bf, Natural, 42" reel`, c.Lines[0].Description)
	assert.Equal(t, "4804", c.Lines[1].HSN)
	assert.Equal(t, "11550", c.Lines[1].Amount.String())

	assert.Nil(t, c.GST)
	assert.Equal(t, "53550", c.Total.String())
	assert.True(t, c.GrandTotal.Equal(c.Total))
	assert.Equal(t, "Rupees Fifty Three Thousand Five Hundred Fifty Only", c.AmountInWords)
}

func TestBuildChallan_GST(t *testing.T) {
	t.Run("intra-state splits CGST and SGST", func(t *testing.T) {
		c := BuildChallan(sampleDispatch(), challanSettings("24"), true)
		require.NotNil(t, c.GST)
		assert.False(t, c.GST.InterState)
		assert.Equal(t, "4819.5", c.GST.CGST.String())
		assert.Equal(t, "4819.5", c.GST.SGST.String())
		assert.True(t, c.GST.IGST.IsZero())
		assert.Equal(t, "63189", c.GrandTotal.String())
		assert.Equal(t, "Rupees Sixty Three Thousand One Hundred Eighty Nine Only", c.AmountInWords)
	})

	t.Run("inter-state uses IGST", func(t *testing.T) {
		c := BuildChallan(sampleDispatch(), challanSettings("27"), true)
		assert.True(t, c.GST.InterState)
		assert.Equal(t, "9639", c.GST.IGST.String())
	})

	t.Run("unregistered client is inter-state", func(t *testing.T) {
		rec := sampleDispatch()
		rec.Client.GSTNumber = ""
		c := BuildChallan(rec, challanSettings("24"), true)
		assert.True(t, c.GST.InterState)
	})

	t.Run("round off to the rupee", func(t *testing.T) {
		rec := sampleDispatch()
		rec.Items = []dispatch.Item{{PaperSpec: "x", WeightKg: d("10.5"), Rate: d("41.3")}}
		c := BuildChallan(rec, challanSettings("24"), true)
		// 433.65 + 2 x 39.03 = 511.71
		assert.Equal(t, "433.65", c.Total.String())
		assert.Equal(t, "512", c.GrandTotal.String())
		assert.Equal(t, "0.29", c.GST.RoundOff.String())
	})
}

func TestBuildMaterialChallan(t *testing.T) {
	ch := inventory.MaterialChallan{ID: "abc", MaterialName: "Starch", Quantity: d("20"), Unit: "bags", PartyName: "Om Chemicals"}

	in := BuildMaterialChallan(ch, inventory.DirectionInward)
	assert.Equal(t, "abc", in.Number, "falls back to id")
	assert.Equal(t, "Received from", in.PartyLabel)
	assert.Equal(t, "Material Inward", in.Direction)

	out := BuildMaterialChallan(ch, inventory.DirectionOutward)
	assert.Equal(t, "Sent to", out.PartyLabel)
}

func TestBuildDispatchSummary(t *testing.T) {
	a := sampleDispatch()
	b := sampleDispatch()
	b.DispatchNumber = "DSP-2025-015"
	b.Status = dispatch.StatusDelivered
	b.Items = nil
	b.TotalItems = 4
	b.TotalWeightKg = d("250.25")

	day := time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC)
	s := BuildDispatchSummary([]dispatch.Record{a, b}, day, day)

	assert.Equal(t, 2, s.Count)
	assert.Equal(t, 7, s.TotalItems)
	assert.Equal(t, "1550.25", s.TotalWeightKg.String())
	require.Len(t, s.Rows, 2)
	assert.Equal(t, "Shree Packaging", s.Rows[0].ClientName)
	assert.Equal(t, "Delivered", s.Rows[1].Status)
	assert.Equal(t, []DispatchStatusCount{{"Dispatched", 1}, {"Delivered", 1}}, s.ByStatus)
}

func TestNewDocumentData(t *testing.T) {
	data := NewDocumentData(printing.DocTypeGSTChallan, "DSP-1", sampleCompany(), time.Date(2025, 4, 1, 15, 4, 0, 0, time.UTC))
	assert.Equal(t, "Tax Invoice / GST Challan", data.Meta.DocTypeName)
	assert.Equal(t, "01-04-2025", data.PrintDate)
	assert.Equal(t, "01-04-2025 03:04 PM", data.PrintDateTime)
}
