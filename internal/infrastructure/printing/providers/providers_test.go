package providers

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/papermill/portal/internal/domain/dispatch"
	"github.com/papermill/portal/internal/domain/inventory"
	"github.com/papermill/portal/internal/domain/partner"
	"github.com/papermill/portal/internal/domain/printing"
	"github.com/papermill/portal/internal/domain/shared"
	infra "github.com/papermill/portal/internal/infrastructure/printing"
)

type mockBackend struct {
	mock.Mock
}

func (m *mockBackend) DispatchDetails(ctx context.Context, id string) (*dispatch.Record, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dispatch.Record), args.Error(1)
}

func (m *mockBackend) DispatchHistory(ctx context.Context, query map[string]string) ([]dispatch.Record, error) {
	args := m.Called(ctx, query)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]dispatch.Record), args.Error(1)
}

func (m *mockBackend) ListChallans(ctx context.Context, dir inventory.Direction, query map[string]string) ([]inventory.MaterialChallan, error) {
	args := m.Called(ctx, dir, query)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]inventory.MaterialChallan), args.Error(1)
}

var company = infra.CompanyInfo{Name: "Shree Paper Mills", StateCode: "24"}

var settings = infra.ChallanSettings{HSNCode: "4804", GSTRatePercent: decimal.NewFromInt(18), CompanyStateCode: "24"}

func at(day int) shared.Timestamp {
	return shared.NewTimestamp(time.Date(2025, 4, day, 10, 0, 0, 0, time.UTC))
}

func record(id, number string, day int) dispatch.Record {
	return dispatch.Record{
		ID:             id,
		DispatchNumber: number,
		DispatchDate:   at(day),
		Status:         dispatch.StatusDispatched,
		Client:         &partner.Client{CompanyName: "Shree Packaging", GSTNumber: "24AAACC1206D1ZM"},
		Items: []dispatch.Item{
			{BarcodeID: "CR_1", PaperSpec: "120gsm, 18bf, Natural", WeightKg: decimal.NewFromInt(100), Rate: decimal.NewFromInt(40)},
		},
	}
}

func TestDefaultRegistry_CoversEveryDocType(t *testing.T) {
	r := NewDefaultRegistry(&mockBackend{}, company, settings)
	assert.ElementsMatch(t, printing.AllDocTypes(), r.RegisteredTypes())
	for _, dt := range printing.AllDocTypes() {
		assert.True(t, r.HasProvider(dt))
	}

	_, err := NewDataProviderRegistry().LoadData(context.Background(), printing.DocTypePackingSlip, "x")
	assert.Error(t, err)
}

func TestDispatchDocumentProvider(t *testing.T) {
	ctx := context.Background()
	b := &mockBackend{}
	rec := record("d1", "DSP-001", 1)
	b.On("DispatchDetails", ctx, "d1").Return(&rec, nil)

	r := NewDefaultRegistry(b, company, settings)

	data, err := r.LoadData(ctx, printing.DocTypePackingSlip, " d1 ")
	require.NoError(t, err)
	assert.Equal(t, "DSP-001", data.Meta.DocNo)
	assert.Equal(t, "Dispatched", data.Meta.Status)
	slip, ok := data.Document.(infra.PackingSlipData)
	require.True(t, ok)
	assert.Equal(t, 1, slip.TotalRolls)

	data, err = r.LoadData(ctx, printing.DocTypeGSTChallan, "d1")
	require.NoError(t, err)
	challan := data.Document.(infra.ChallanData)
	require.NotNil(t, challan.GST)
	assert.Equal(t, "4720", challan.GrandTotal.String())

	data, err = r.LoadData(ctx, printing.DocTypeCashChallan, "d1")
	require.NoError(t, err)
	assert.Nil(t, data.Document.(infra.ChallanData).GST)

	b.AssertNumberOfCalls(t, "DispatchDetails", 3)
}

func TestDispatchDocumentProvider_Errors(t *testing.T) {
	ctx := context.Background()
	b := &mockBackend{}
	empty := record("d2", "DSP-002", 1)
	empty.Items = nil
	b.On("DispatchDetails", ctx, "d2").Return(&empty, nil)
	backendErr := errors.New("backend down")
	b.On("DispatchDetails", ctx, "d3").Return(nil, backendErr)

	p := NewDispatchDocumentProvider(printing.DocTypePackingSlip, b, company, settings)

	_, err := p.GetData(ctx, "  ")
	assert.ErrorIs(t, err, shared.ErrInvalidInput)

	_, err = p.GetData(ctx, "d2")
	assert.ErrorIs(t, err, shared.ErrInvalidState)

	_, err = p.GetData(ctx, "d3")
	assert.ErrorIs(t, err, backendErr)
}

func TestMaterialChallanProvider(t *testing.T) {
	ctx := context.Background()
	b := &mockBackend{}
	b.On("ListChallans", ctx, inventory.DirectionOutward, map[string]string(nil)).Return([]inventory.MaterialChallan{
		{ID: "c1", FrontendID: "MOUT-0001", MaterialName: "Reel cores", Quantity: decimal.NewFromInt(40), Unit: "pcs", PartyName: "Core Co"},
		{ID: "c2", FrontendID: "MOUT-0002", MaterialName: "Scrap", Quantity: decimal.NewFromInt(2), Unit: "ton", PartyName: "Kabadi"},
	}, nil)

	p := NewMaterialChallanProvider(inventory.DirectionOutward, b, company)
	assert.Equal(t, printing.DocTypeMaterialOutward, p.GetDocType())

	data, err := p.GetData(ctx, "mout-0002")
	require.NoError(t, err)
	doc := data.Document.(infra.MaterialChallanData)
	assert.Equal(t, "Scrap", doc.MaterialName)
	assert.Equal(t, "MOUT-0002", data.Meta.DocNo)

	data, err = p.GetData(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, "Sent to", data.Document.(infra.MaterialChallanData).PartyLabel)

	_, err = p.GetData(ctx, "c9")
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestParseSummaryRange(t *testing.T) {
	r, err := ParseSummaryRange("2025-04-01")
	require.NoError(t, err)
	assert.Equal(t, r.From, r.To)

	r, err = ParseSummaryRange("2025-04-01..2025-04-07")
	require.NoError(t, err)
	assert.Equal(t, 7, r.To.Day())

	for _, bad := range []string{"", "2025-04-01..", "..2025-04-01", "April", "2025-04-07..2025-04-01"} {
		_, err := ParseSummaryRange(bad)
		assert.Error(t, err, bad)
	}
}

func TestDispatchSummaryProvider(t *testing.T) {
	ctx := context.Background()
	b := &mockBackend{}
	b.On("DispatchHistory", ctx, map[string]string{"from_date": "2025-04-02", "to_date": "2025-04-03"}).Return([]dispatch.Record{
		record("a", "DSP-010", 3),
		record("b", "DSP-001", 1),
		record("c", "DSP-005", 2),
	}, nil)

	clock = func() time.Time { return time.Date(2025, 4, 4, 0, 0, 0, 0, time.UTC) }
	defer func() { clock = time.Now }()

	data, err := NewDispatchSummaryProvider(b, company).GetData(ctx, "2025-04-02..2025-04-03")
	require.NoError(t, err)
	doc := data.Document.(infra.DispatchSummaryData)
	require.Len(t, doc.Rows, 2, "out-of-range records dropped")
	assert.Equal(t, "DSP-005", doc.Rows[0].DispatchNumber)
	assert.Equal(t, "DSP-010", doc.Rows[1].DispatchNumber)
	assert.Equal(t, "04-04-2025", data.PrintDate)
}
