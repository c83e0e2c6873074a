package report

import (
	"context"
	"net/url"

	"github.com/papermill/portal/internal/domain/report"
	"github.com/papermill/portal/internal/domain/shared"
	"github.com/papermill/portal/internal/infrastructure/export"
)

// Export renders a whole report, ignoring paging, as a table. Query values
// are read the way the report pages bind them.
func (s *Service) Export(ctx context.Context, name string, q url.Values) (export.Table, error) {
	f := shared.Filter{Search: q.Get("search"), OrderBy: q.Get("order_by"), OrderDir: q.Get("order_dir")}
	switch name {
	case CutRolls:
		_, rows, err := s.cutRolls(ctx, CutRollsRequest{
			Filter:   f,
			Status:   q.Get("status"),
			ClientID: q.Get("client_id"),
			FromDate: q.Get("from_date"),
			ToDate:   q.Get("to_date"),
			Client:   q.Get("client"),
			Order:    q.Get("order"),
			Paper:    q.Get("paper"),
			Width:    q.Get("width"),
		})
		if err != nil {
			return export.Table{}, err
		}
		return cutRollsTable(rows), nil
	case PendingOrders:
		rows, _, err := s.pendingOrders(ctx, PendingOrdersRequest{
			Filter: f,
			Client: q.Get("client"),
			Paper:  q.Get("paper"),
			Reason: q.Get("reason"),
		})
		if err != nil {
			return export.Table{}, err
		}
		return pendingTable(rows), nil
	case ClientOrderSummary:
		rep, err := s.ClientOrderSummary(ctx, q.Get("from_date"), q.Get("to_date"))
		if err != nil {
			return export.Table{}, err
		}
		return clientSummaryTable(rep), nil
	}
	return export.Table{}, shared.NewDomainError("NOT_FOUND", "Unknown report: "+name)
}

func cutRollsTable(rows []report.CutRollRow) export.Table {
	t := export.Table{
		Sheet: "Cut Rolls",
		Columns: []export.Column{
			{Header: "Barcode", Width: 16},
			{Header: "Client", Width: 28},
			{Header: "Order", Width: 14},
			{Header: "Plan", Width: 14},
			{Header: "Paper", Width: 24},
			{Header: "Width (in)"},
			{Header: "Weight (kg)"},
			{Header: "Status"},
			{Header: "Location"},
			{Header: "Created", Width: 18},
		},
	}
	for _, r := range rows {
		t.Rows = append(t.Rows, []any{
			r.BarcodeID, r.ClientName, r.OrderFrontendID, r.PlanFrontendID, r.PaperSpec(),
			r.WidthInches, r.WeightKg, r.Status, r.Location, r.CreatedAt,
		})
	}
	return t
}

func pendingTable(rows []PendingRow) export.Table {
	t := export.Table{
		Sheet: "Pending Orders",
		Columns: []export.Column{
			{Header: "Pending ID", Width: 14},
			{Header: "Order", Width: 14},
			{Header: "Client", Width: 28},
			{Header: "Paper", Width: 24},
			{Header: "Width (in)"},
			{Header: "Qty Pending"},
			{Header: "Reason", Width: 20},
			{Header: "Age (days)"},
			{Header: "Created", Width: 18},
		},
	}
	for _, r := range rows {
		t.Rows = append(t.Rows, []any{
			r.FrontendID, r.OrderFrontendID, r.ClientName, r.PaperSpec,
			r.WidthInches, r.QuantityPending, r.Reason, r.AgeDays, r.CreatedAt,
		})
	}
	return t
}

func clientSummaryTable(rep *ClientSummaryReport) export.Table {
	t := export.Table{
		Sheet: "Client Summary",
		Columns: []export.Column{
			{Header: "Client", Width: 30},
			{Header: "Orders"},
			{Header: "Completed"},
			{Header: "Pending"},
			{Header: "Rolls"},
			{Header: "Weight (kg)", Width: 14},
			{Header: "Amount", Width: 16},
		},
	}
	row := func(r report.ClientOrderSummaryRow) []any {
		return []any{r.ClientName, r.TotalOrders, r.CompletedOrders, r.PendingOrders, r.TotalQuantity, r.TotalWeightKg, r.TotalAmount}
	}
	for _, r := range rep.Rows {
		t.Rows = append(t.Rows, row(r))
	}
	t.Rows = append(t.Rows, row(rep.Totals))
	return t
}
