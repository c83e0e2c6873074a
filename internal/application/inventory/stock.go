package inventory

import (
	"context"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/papermill/portal/internal/domain/inventory"
	"github.com/papermill/portal/internal/domain/shared"
	"github.com/papermill/portal/internal/infrastructure/backend"
	"github.com/papermill/portal/internal/infrastructure/telemetry"
)

// StockRequest narrows a stock listing. Width matches exactly; PaperSpec
// and Status ignore case.
type StockRequest struct {
	shared.Filter
	PaperSpec string `form:"paper_spec"`
	Width     string `form:"width"`
	Status    string `form:"status"`
	ClientID  string `form:"client_id"`
}

type stockCriteria struct {
	f      shared.Filter
	spec   string
	width  decimal.Decimal
	hasW   bool
	status string
	client string
}

func (r StockRequest) criteria() (stockCriteria, error) {
	c := stockCriteria{
		f:      r.Filter.Normalize(),
		spec:   strings.TrimSpace(r.PaperSpec),
		status: strings.TrimSpace(r.Status),
		client: strings.TrimSpace(r.ClientID),
	}
	if w := strings.TrimSpace(r.Width); w != "" {
		d, err := decimal.NewFromString(w)
		if err != nil || !d.IsPositive() {
			return c, shared.InvalidInput("Width must be a positive number")
		}
		c.width, c.hasW = d, true
	}
	return c, nil
}

func (c stockCriteria) match(spec string, width decimal.Decimal, status, client string) bool {
	if c.spec != "" && !strings.EqualFold(c.spec, spec) {
		return false
	}
	if c.hasW && !c.width.Equal(width) {
		return false
	}
	if c.status != "" && !strings.EqualFold(c.status, status) {
		return false
	}
	if c.client != "" && c.client != client {
		return false
	}
	return true
}

// StockPage is one page of stock plus the weight of the whole filtered set
type StockPage[T any] struct {
	shared.Page[T]
	TotalWeight decimal.Decimal `json:"total_weight"`
	PaperSpecs  []string        `json:"paper_specs"`
}

func stockPage[T any](rows []T, f shared.Filter, weight func(T) decimal.Decimal, spec func(T) string) *StockPage[T] {
	total := decimal.Zero
	seen := map[string]bool{}
	var specs []string
	for _, r := range rows {
		total = total.Add(weight(r))
		if s := spec(r); !seen[s] {
			seen[s] = true
			specs = append(specs, s)
		}
	}
	return &StockPage[T]{Page: shared.Paginate(rows, f.Page, f.PageSize), TotalWeight: total, PaperSpecs: specs}
}

var warehouseSort = shared.SortSpec[inventory.WarehouseItem]{
	Default:    "production_date",
	DefaultDir: "desc",
	Keys: map[string]shared.Comparator[inventory.WarehouseItem]{
		"production_date": func(a, b inventory.WarehouseItem) int { return a.ProductionDate.Compare(b.ProductionDate.Time) },
		"barcode":         func(a, b inventory.WarehouseItem) int { return shared.CompareFold(a.BarcodeID, b.BarcodeID) },
		"width":           func(a, b inventory.WarehouseItem) int { return a.WidthInches.Cmp(b.WidthInches) },
		"weight":          func(a, b inventory.WarehouseItem) int { return a.WeightKg.Cmp(b.WeightKg) },
		"client":          func(a, b inventory.WarehouseItem) int { return shared.CompareFold(a.ClientName, b.ClientName) },
	},
}

// ListWarehouseItems lists finished cut rolls awaiting dispatch
func (s *Service) ListWarehouseItems(ctx context.Context, req StockRequest) (*StockPage[inventory.WarehouseItem], error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "stock", "warehouse")
	defer span.End()

	c, err := req.criteria()
	if err != nil {
		return nil, err
	}
	items, err := s.backend.ListWarehouseItems(ctx, nil)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, backend.ToDomainError(err)
	}
	rows := shared.FilterSlice(items, func(it inventory.WarehouseItem) bool {
		return c.match(it.PaperSpec(), it.WidthInches, string(it.Status), it.ClientID) &&
			shared.MatchesSearch(c.f.Search, it.BarcodeID, it.QRCode, it.ClientName, it.OrderFrontendID, it.Location)
	})
	warehouseSort.Sort(rows, c.f.OrderBy, c.f.OrderDir)
	return stockPage(rows, c.f,
		func(it inventory.WarehouseItem) decimal.Decimal { return it.WeightKg },
		func(it inventory.WarehouseItem) string { return it.PaperSpec() },
	), nil
}

var wastageSort = shared.SortSpec[inventory.WastageRoll]{
	Default:    "created_at",
	DefaultDir: "desc",
	Keys: map[string]shared.Comparator[inventory.WastageRoll]{
		"created_at":  func(a, b inventory.WastageRoll) int { return a.CreatedAt.Compare(b.CreatedAt.Time) },
		"frontend_id": func(a, b inventory.WastageRoll) int { return shared.CompareFold(a.FrontendID, b.FrontendID) },
		"width":       func(a, b inventory.WastageRoll) int { return a.WidthInches.Cmp(b.WidthInches) },
		"weight":      func(a, b inventory.WastageRoll) int { return a.WeightKg.Cmp(b.WeightKg) },
	},
}

// ListWastageItems lists reusable off-cuts
func (s *Service) ListWastageItems(ctx context.Context, req StockRequest) (*StockPage[inventory.WastageRoll], error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "stock", "wastage")
	defer span.End()

	c, err := req.criteria()
	if err != nil {
		return nil, err
	}
	items, err := s.backend.ListWastageItems(ctx, nil)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, backend.ToDomainError(err)
	}
	// off-cuts belong to no client
	c.client = ""
	rows := shared.FilterSlice(items, func(w inventory.WastageRoll) bool {
		return c.match(w.PaperSpec(), w.WidthInches, string(w.Status), "") &&
			shared.MatchesSearch(c.f.Search, w.FrontendID, w.BarcodeID, w.ReelNumber, w.Location)
	})
	wastageSort.Sort(rows, c.f.OrderBy, c.f.OrderDir)
	return stockPage(rows, c.f,
		func(w inventory.WastageRoll) decimal.Decimal { return w.WeightKg },
		func(w inventory.WastageRoll) string { return w.PaperSpec() },
	), nil
}

var manualSort = shared.SortSpec[inventory.ManualCutRoll]{
	Default:    "created_at",
	DefaultDir: "desc",
	Keys: map[string]shared.Comparator[inventory.ManualCutRoll]{
		"created_at":  func(a, b inventory.ManualCutRoll) int { return a.CreatedAt.Compare(b.CreatedAt.Time) },
		"frontend_id": func(a, b inventory.ManualCutRoll) int { return shared.CompareFold(a.FrontendID, b.FrontendID) },
		"client":      func(a, b inventory.ManualCutRoll) int { return shared.CompareFold(a.ClientName, b.ClientName) },
		"width":       func(a, b inventory.ManualCutRoll) int { return a.WidthInches.Cmp(b.WidthInches) },
		"weight":      func(a, b inventory.ManualCutRoll) int { return a.WeightKg.Cmp(b.WeightKg) },
	},
}

// ListManualCutRolls lists hand-entered cut rolls
func (s *Service) ListManualCutRolls(ctx context.Context, req StockRequest) (*StockPage[inventory.ManualCutRoll], error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "stock", "manual")
	defer span.End()

	c, err := req.criteria()
	if err != nil {
		return nil, err
	}
	items, err := s.backend.ListManualCutRolls(ctx, nil)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, backend.ToDomainError(err)
	}
	rows := shared.FilterSlice(items, func(m inventory.ManualCutRoll) bool {
		return c.match(m.PaperSpec(), m.WidthInches, string(m.Status), m.ClientID) &&
			shared.MatchesSearch(c.f.Search, m.FrontendID, m.BarcodeID, m.ClientName, m.ReelNumber)
	})
	manualSort.Sort(rows, c.f.OrderBy, c.f.OrderDir)
	return stockPage(rows, c.f,
		func(m inventory.ManualCutRoll) decimal.Decimal { return m.WeightKg },
		func(m inventory.ManualCutRoll) string { return m.PaperSpec() },
	), nil
}
