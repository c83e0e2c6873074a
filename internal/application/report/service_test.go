package report

import (
	"bytes"
	"context"
	"errors"
	"net/url"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/papermill/portal/internal/domain/report"
	"github.com/papermill/portal/internal/domain/shared"
	"github.com/papermill/portal/internal/infrastructure/export"
)

type stubBackend struct {
	cutRolls  []report.CutRollRow
	pending   []report.PendingOrderRow
	summary   []report.ClientOrderSummaryRow
	lastQuery map[string]string
	err       error
}

func (b *stubBackend) CutRollsReport(_ context.Context, q map[string]string) ([]report.CutRollRow, error) {
	b.lastQuery = q
	return b.cutRolls, b.err
}

func (b *stubBackend) PendingOrdersReport(context.Context, map[string]string) ([]report.PendingOrderRow, error) {
	return b.pending, b.err
}

func (b *stubBackend) ClientOrderSummary(_ context.Context, q map[string]string) ([]report.ClientOrderSummaryRow, error) {
	b.lastQuery = q
	return b.summary, b.err
}

func cutRoll(id, client, order string, gsm int, width, weight int64, status string) report.CutRollRow {
	return report.CutRollRow{
		ID: id, BarcodeID: "CR_" + id, ClientName: client, OrderFrontendID: order,
		GSM: gsm, BF: decimal.NewFromInt(18), Shade: "Natural",
		WidthInches: decimal.NewFromInt(width), WeightKg: decimal.NewFromInt(weight), Status: status,
	}
}

func cutRollFixture() []report.CutRollRow {
	return []report.CutRollRow{
		cutRoll("1", "Acme", "ORD-1", 120, 36, 100, "available"),
		cutRoll("2", "Acme", "ORD-1", 120, 40, 110, "dispatched"),
		cutRoll("3", "Acme", "ORD-2", 100, 36, 90, "available"),
		cutRoll("4", "Birla", "ORD-3", 120, 36, 120, "available"),
	}
}

func TestCutRolls_Cascade(t *testing.T) {
	b := &stubBackend{cutRolls: cutRollFixture()}
	svc := NewService(b, nil)

	rep, err := svc.CutRolls(context.Background(), CutRollsRequest{
		ClientID: "c-1",
		Status:   "available",
		FromDate: "2025-01-01",
		Client:   "Acme",
		Order:    "ORD-1",
	})
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"from_date": "2025-01-01", "client_id": "c-1", "status": "available"}, b.lastQuery)

	assert.Len(t, rep.Options[LevelClient], 2)
	assert.Len(t, rep.Options[LevelOrder], 2, "orders offered for the selected client")
	assert.Len(t, rep.Options[LevelWidth], 2)
	assert.Equal(t, 2, rep.Summary.Count)
	assert.Equal(t, "210.00", rep.Summary.TotalWeightKg)
	assert.Equal(t, 1, rep.Summary.ByStatus["dispatched"])
}

func TestCutRolls_ResetStaleSelection(t *testing.T) {
	svc := NewService(&stubBackend{cutRolls: cutRollFixture()}, nil)

	rep, err := svc.CutRolls(context.Background(), CutRollsRequest{Client: "Birla", Order: "ORD-1"})
	require.NoError(t, err)
	assert.Equal(t, []string{LevelOrder}, rep.Reset)
	assert.Equal(t, map[string]string{LevelClient: "Birla"}, rep.Selection)
	require.Len(t, rep.Items, 1)
	assert.Equal(t, "4", rep.Items[0].ID)
}

func TestCutRolls_SearchSortAndErrors(t *testing.T) {
	b := &stubBackend{cutRolls: cutRollFixture()}
	svc := NewService(b, nil)

	rep, err := svc.CutRolls(context.Background(), CutRollsRequest{Filter: shared.Filter{OrderBy: "weight", OrderDir: "desc", PageSize: 2}})
	require.NoError(t, err)
	assert.Equal(t, "4", rep.Items[0].ID)
	assert.Equal(t, int64(4), rep.Info.Total)
	assert.Equal(t, 4, rep.Summary.Count, "summary covers every page")

	rep, err = svc.CutRolls(context.Background(), CutRollsRequest{Filter: shared.Filter{Search: "cr_3"}})
	require.NoError(t, err)
	assert.Len(t, rep.Items, 1)

	_, err = svc.CutRolls(context.Background(), CutRollsRequest{ToDate: "31-01-2025"})
	assert.True(t, errors.Is(err, shared.ErrInvalidInput))
}

func TestPendingOrders(t *testing.T) {
	now := time.Date(2025, 6, 10, 15, 0, 0, 0, time.UTC)
	at := func(d int) shared.Timestamp { return shared.NewTimestamp(time.Date(2025, 6, d, 23, 0, 0, 0, time.UTC)) }
	b := &stubBackend{pending: []report.PendingOrderRow{
		{ID: "p1", FrontendID: "PND-1", ClientName: "Acme", GSM: 120, BF: decimal.NewFromInt(18), Shade: "Natural", QuantityPending: 3, Reason: "no_suitable_jumbo", CreatedAt: at(1)},
		{ID: "p2", FrontendID: "PND-2", ClientName: "Birla", GSM: 120, BF: decimal.NewFromInt(18), Shade: "Natural", QuantityPending: 2, Reason: "waste_limit", CreatedAt: at(9)},
		{ID: "p3", FrontendID: "PND-3", ClientName: "Acme", GSM: 100, BF: decimal.NewFromInt(16), Shade: "Golden", QuantityPending: 5, Reason: "waste_limit", CreatedAt: at(10)},
	}}
	svc := NewService(b, nil)
	svc.now = func() time.Time { return now }

	rep, err := svc.PendingOrders(context.Background(), PendingOrdersRequest{})
	require.NoError(t, err)
	require.Len(t, rep.Items, 3)
	assert.Equal(t, "p1", rep.Items[0].ID, "oldest first by default")
	assert.Equal(t, 9, rep.Items[0].AgeDays)
	assert.Equal(t, 0, rep.Items[2].AgeDays)
	assert.Equal(t, 10, rep.Summary.TotalQuantity)
	assert.Equal(t, 9, rep.Summary.OldestDays)
	assert.Equal(t, 2, rep.Summary.ByReason["waste_limit"])
	assert.Equal(t, []string{"Acme", "Birla"}, rep.Clients)

	rep, err = svc.PendingOrders(context.Background(), PendingOrdersRequest{Client: "acme", Reason: "WASTE_LIMIT"})
	require.NoError(t, err)
	require.Len(t, rep.Items, 1)
	assert.Equal(t, "p3", rep.Items[0].ID)
	assert.Len(t, rep.Clients, 2, "options come from the unfiltered report")
}

func TestClientOrderSummary(t *testing.T) {
	b := &stubBackend{summary: []report.ClientOrderSummaryRow{
		{ClientName: "Acme", TotalOrders: 2, TotalQuantity: 10, TotalWeightKg: decimal.NewFromInt(1000), TotalAmount: decimal.RequireFromString("45000.50")},
		{ClientName: "Birla", TotalOrders: 5, TotalQuantity: 30, TotalWeightKg: decimal.NewFromInt(3000), TotalAmount: decimal.RequireFromString("125000")},
	}}
	svc := NewService(b, nil)

	rep, err := svc.ClientOrderSummary(context.Background(), "2025-04-01", "2025-06-30")
	require.NoError(t, err)
	assert.Equal(t, "Birla", rep.Rows[0].ClientName)
	assert.Equal(t, 7, rep.Totals.TotalOrders)
	assert.Equal(t, "170000.5", rep.Totals.TotalAmount.String())
	assert.Equal(t, "Total", rep.Totals.ClientName)
	assert.Equal(t, "2025-06-30", b.lastQuery["to_date"])
}

func TestExport(t *testing.T) {
	b := &stubBackend{
		cutRolls: cutRollFixture(),
		summary:  []report.ClientOrderSummaryRow{{ClientName: "Acme", TotalAmount: decimal.NewFromInt(10)}},
	}
	svc := NewService(b, nil)

	table, err := svc.Export(context.Background(), CutRolls, url.Values{"client": {"Acme"}, "page_size": {"1"}})
	require.NoError(t, err)
	assert.Len(t, table.Rows, 3)
	assert.Equal(t, "Barcode", table.Headers()[0])

	var buf bytes.Buffer
	require.NoError(t, export.Write(&buf, export.FormatCSV, table))
	assert.Contains(t, buf.String(), "CR_1")

	table, err = svc.Export(context.Background(), ClientOrderSummary, url.Values{})
	require.NoError(t, err)
	require.Len(t, table.Rows, 2)
	assert.Equal(t, "Total", table.Rows[1][0])

	_, err = svc.Export(context.Background(), "payroll", url.Values{})
	assert.True(t, errors.Is(err, shared.ErrNotFound))
}
