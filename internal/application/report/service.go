// Package report backs the report pages and their CSV/XLSX exports.
package report

import (
	"context"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/papermill/portal/internal/domain/report"
	"github.com/papermill/portal/internal/domain/shared"
	"github.com/papermill/portal/internal/infrastructure/backend"
	"github.com/papermill/portal/internal/infrastructure/telemetry"
)

// Backend is the part of the ERP API the reports read
type Backend interface {
	CutRollsReport(ctx context.Context, query map[string]string) ([]report.CutRollRow, error)
	PendingOrdersReport(ctx context.Context, query map[string]string) ([]report.PendingOrderRow, error)
	ClientOrderSummary(ctx context.Context, query map[string]string) ([]report.ClientOrderSummaryRow, error)
}

// Report names used in URLs and export filenames
const (
	CutRolls           = "cut_rolls"
	PendingOrders      = "pending_orders"
	ClientOrderSummary = "client_order_summary"
)

// Names lists the exportable reports
var Names = []string{CutRolls, PendingOrders, ClientOrderSummary}

// Service builds reports from backend rows
type Service struct {
	backend Backend
	now     func() time.Time
	logger  *zap.Logger
}

// NewService creates the report service
func NewService(b Backend, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{backend: b, now: time.Now, logger: logger}
}

// Cascade level names of the cut-rolls report, outermost first
const (
	LevelClient = "client"
	LevelOrder  = "order"
	LevelPaper  = "paper"
	LevelWidth  = "width"
)

var cutRollLevels = []report.Level[report.CutRollRow]{
	{Name: LevelClient, Value: func(r report.CutRollRow) string { return r.ClientName }},
	{Name: LevelOrder, Value: func(r report.CutRollRow) string { return r.OrderFrontendID }},
	{Name: LevelPaper, Value: func(r report.CutRollRow) string { return r.PaperSpec() }},
	{Name: LevelWidth, Value: func(r report.CutRollRow) string { return r.WidthInches.String() }, Compare: report.CompareNumeric},
}

// CutRollsRequest carries the server-side filters passed to the backend and
// the cascading selections applied locally
type CutRollsRequest struct {
	shared.Filter
	Status   string `form:"status"`
	ClientID string `form:"client_id"`
	FromDate string `form:"from_date"`
	ToDate   string `form:"to_date"`

	Client string `form:"client"`
	Order  string `form:"order"`
	Paper  string `form:"paper"`
	Width  string `form:"width"`
}

// CutRollsSummary totals the rows left after every filter
type CutRollsSummary struct {
	Count         int            `json:"count"`
	TotalWeightKg string         `json:"total_weight_kg"`
	ByStatus      map[string]int `json:"by_status"`
}

// CutRollsReport is a page of the cut-rolls report
type CutRollsReport struct {
	shared.Page[report.CutRollRow]
	Options   map[string][]report.Option `json:"options"`
	Selection map[string]string          `json:"selection"`
	Reset     []string                   `json:"reset,omitempty"`
	Summary   CutRollsSummary            `json:"summary"`
}

var cutRollSort = shared.SortSpec[report.CutRollRow]{
	Default:    "created_at",
	DefaultDir: "desc",
	Keys: map[string]shared.Comparator[report.CutRollRow]{
		"created_at": func(a, b report.CutRollRow) int { return a.CreatedAt.Compare(b.CreatedAt.Time) },
		"barcode":    func(a, b report.CutRollRow) int { return shared.CompareFold(a.BarcodeID, b.BarcodeID) },
		"client":     func(a, b report.CutRollRow) int { return shared.CompareFold(a.ClientName, b.ClientName) },
		"width":      func(a, b report.CutRollRow) int { return a.WidthInches.Cmp(b.WidthInches) },
		"weight":     func(a, b report.CutRollRow) int { return a.WeightKg.Cmp(b.WeightKg) },
		"status":     func(a, b report.CutRollRow) int { return shared.CompareFold(a.Status, b.Status) },
	},
}

// CutRolls runs the all-cut-rolls report
func (s *Service) CutRolls(ctx context.Context, req CutRollsRequest) (*CutRollsReport, error) {
	f := req.Filter.Normalize()
	res, rows, err := s.cutRolls(ctx, req)
	if err != nil {
		return nil, err
	}

	summary := CutRollsSummary{ByStatus: map[string]int{}}
	weight := decimal.Zero
	for _, r := range rows {
		summary.Count++
		weight = weight.Add(r.WeightKg)
		summary.ByStatus[r.Status]++
	}
	summary.TotalWeightKg = weight.StringFixed(2)

	return &CutRollsReport{
		Page:      shared.Paginate(rows, f.Page, f.PageSize),
		Options:   res.Options,
		Selection: res.Selection,
		Reset:     res.Reset,
		Summary:   summary,
	}, nil
}

func (s *Service) cutRolls(ctx context.Context, req CutRollsRequest) (report.CascadeResult[report.CutRollRow], []report.CutRollRow, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "report", "cut_rolls", telemetry.AttrReport, CutRolls)
	defer span.End()

	var empty report.CascadeResult[report.CutRollRow]
	f := req.Filter.Normalize()
	dates, err := shared.ParseDateRange(req.FromDate, req.ToDate)
	if err != nil {
		return empty, nil, err
	}
	query := dates.Query()
	if v := strings.TrimSpace(req.ClientID); v != "" {
		query["client_id"] = v
	}
	if v := strings.TrimSpace(req.Status); v != "" {
		query["status"] = v
	}

	all, err := s.backend.CutRollsReport(ctx, query)
	if err != nil {
		telemetry.RecordError(span, err)
		return empty, nil, backend.ToDomainError(err)
	}

	res := report.Cascade(all, cutRollLevels, map[string]string{
		LevelClient: strings.TrimSpace(req.Client),
		LevelOrder:  strings.TrimSpace(req.Order),
		LevelPaper:  strings.TrimSpace(req.Paper),
		LevelWidth:  strings.TrimSpace(req.Width),
	})
	if len(res.Reset) > 0 {
		s.logger.Debug("cut rolls cascade reset", zap.Strings("levels", res.Reset))
	}
	rows := shared.FilterSlice(res.Rows, func(r report.CutRollRow) bool {
		return shared.MatchesSearch(f.Search, r.BarcodeID, r.QRCode, r.ClientName, r.OrderFrontendID, r.PlanFrontendID)
	})
	cutRollSort.Sort(rows, f.OrderBy, f.OrderDir)
	telemetry.SetAttributes(span, "report.rows", len(rows))
	return res, rows, nil
}

// PendingOrdersRequest narrows the pending-orders report
type PendingOrdersRequest struct {
	shared.Filter
	Client string `form:"client"`
	Paper  string `form:"paper"`
	Reason string `form:"reason"`
}

// PendingRow is a pending line with its age
type PendingRow struct {
	report.PendingOrderRow
	PaperSpec string `json:"paper_spec"`
	AgeDays   int    `json:"age_days"`
}

// PendingSummary totals the filtered pending lines
type PendingSummary struct {
	Lines         int            `json:"lines"`
	TotalQuantity int            `json:"total_quantity"`
	OldestDays    int            `json:"oldest_days"`
	ByReason      map[string]int `json:"by_reason"`
}

// PendingOrdersReport is a page of the pending-orders report
type PendingOrdersReport struct {
	shared.Page[PendingRow]
	Clients []string       `json:"clients"`
	Papers  []string       `json:"papers"`
	Reasons []string       `json:"reasons"`
	Summary PendingSummary `json:"summary"`
}

var pendingSort = shared.SortSpec[PendingRow]{
	Default:    "age",
	DefaultDir: "desc",
	Keys: map[string]shared.Comparator[PendingRow]{
		"age":      func(a, b PendingRow) int { return a.AgeDays - b.AgeDays },
		"client":   func(a, b PendingRow) int { return shared.CompareFold(a.ClientName, b.ClientName) },
		"quantity": func(a, b PendingRow) int { return a.QuantityPending - b.QuantityPending },
		"width":    func(a, b PendingRow) int { return a.WidthInches.Cmp(b.WidthInches) },
		"order":    func(a, b PendingRow) int { return shared.CompareFold(a.OrderFrontendID, b.OrderFrontendID) },
	},
}

// PendingOrders runs the pending-orders report
func (s *Service) PendingOrders(ctx context.Context, req PendingOrdersRequest) (*PendingOrdersReport, error) {
	f := req.Filter.Normalize()
	rows, all, err := s.pendingOrders(ctx, req)
	if err != nil {
		return nil, err
	}

	out := &PendingOrdersReport{Summary: PendingSummary{ByReason: map[string]int{}}}
	out.Clients = distinct(all, func(r PendingRow) string { return r.ClientName })
	out.Papers = distinct(all, func(r PendingRow) string { return r.PaperSpec })
	out.Reasons = distinct(all, func(r PendingRow) string { return r.Reason })
	for _, r := range rows {
		out.Summary.Lines++
		out.Summary.TotalQuantity += r.QuantityPending
		out.Summary.OldestDays = max(out.Summary.OldestDays, r.AgeDays)
		out.Summary.ByReason[r.Reason]++
	}
	out.Page = shared.Paginate(rows, f.Page, f.PageSize)
	return out, nil
}

// pendingOrders returns the filtered, sorted rows and every row before the
// local filters
func (s *Service) pendingOrders(ctx context.Context, req PendingOrdersRequest) ([]PendingRow, []PendingRow, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "report", "pending_orders", telemetry.AttrReport, PendingOrders)
	defer span.End()

	f := req.Filter.Normalize()
	lines, err := s.backend.PendingOrdersReport(ctx, nil)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, nil, backend.ToDomainError(err)
	}

	now := s.now()
	all := make([]PendingRow, len(lines))
	for i, l := range lines {
		all[i] = PendingRow{PendingOrderRow: l, PaperSpec: l.PaperSpec(), AgeDays: ageDays(l.CreatedAt.Time, now)}
	}

	client, paper, reason := strings.TrimSpace(req.Client), strings.TrimSpace(req.Paper), strings.TrimSpace(req.Reason)
	rows := shared.FilterSlice(all, func(r PendingRow) bool {
		if client != "" && !strings.EqualFold(r.ClientName, client) {
			return false
		}
		if paper != "" && !strings.EqualFold(r.PaperSpec, paper) {
			return false
		}
		if reason != "" && !strings.EqualFold(r.Reason, reason) {
			return false
		}
		return shared.MatchesSearch(f.Search, r.FrontendID, r.OrderFrontendID, r.ClientName)
	})
	pendingSort.Sort(rows, f.OrderBy, f.OrderDir)
	return rows, all, nil
}

// ageDays counts whole calendar days between created and now
func ageDays(created, now time.Time) int {
	if created.IsZero() {
		return 0
	}
	y1, m1, d1 := created.Date()
	y2, m2, d2 := now.In(created.Location()).Date()
	from := time.Date(y1, m1, d1, 0, 0, 0, 0, time.UTC)
	to := time.Date(y2, m2, d2, 0, 0, 0, 0, time.UTC)
	return max(0, int(to.Sub(from).Hours()/24))
}

func distinct[T any](rows []T, value func(T) string) []string {
	seen := map[string]bool{}
	out := []string{}
	for _, r := range rows {
		v := value(r)
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	return out
}

// ClientSummaryReport lists clients by order value with a totals row
type ClientSummaryReport struct {
	Rows   []report.ClientOrderSummaryRow `json:"rows"`
	Totals report.ClientOrderSummaryRow   `json:"totals"`
}

// ClientOrderSummary runs the per-client order summary for a date range
func (s *Service) ClientOrderSummary(ctx context.Context, from, to string) (*ClientSummaryReport, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "report", "client_order_summary", telemetry.AttrReport, ClientOrderSummary)
	defer span.End()

	dates, err := shared.ParseDateRange(from, to)
	if err != nil {
		return nil, err
	}
	rows, err := s.backend.ClientOrderSummary(ctx, dates.Query())
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, backend.ToDomainError(err)
	}

	summarySort.Sort(rows, "total_amount", "desc")
	totals := report.ClientOrderSummaryRow{ClientName: "Total", TotalWeightKg: decimal.Zero, TotalAmount: decimal.Zero}
	for _, r := range rows {
		totals.TotalOrders += r.TotalOrders
		totals.CompletedOrders += r.CompletedOrders
		totals.PendingOrders += r.PendingOrders
		totals.TotalQuantity += r.TotalQuantity
		totals.TotalWeightKg = totals.TotalWeightKg.Add(r.TotalWeightKg)
		totals.TotalAmount = totals.TotalAmount.Add(r.TotalAmount)
	}
	return &ClientSummaryReport{Rows: rows, Totals: totals}, nil
}

var summarySort = shared.SortSpec[report.ClientOrderSummaryRow]{
	Default:    "total_amount",
	DefaultDir: "desc",
	Keys: map[string]shared.Comparator[report.ClientOrderSummaryRow]{
		"total_amount": func(a, b report.ClientOrderSummaryRow) int { return a.TotalAmount.Cmp(b.TotalAmount) },
	},
}
