// Package dispatch backs the dispatch history, detail and creation pages.
package dispatch

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/papermill/portal/internal/domain/dispatch"
	"github.com/papermill/portal/internal/domain/inventory"
	"github.com/papermill/portal/internal/domain/partner"
	"github.com/papermill/portal/internal/domain/shared"
	"github.com/papermill/portal/internal/infrastructure/backend"
	"github.com/papermill/portal/internal/infrastructure/export"
	"github.com/papermill/portal/internal/infrastructure/realtime"
	"github.com/papermill/portal/internal/infrastructure/telemetry"
)

// Backend is the part of the ERP API the dispatch pages use
type Backend interface {
	DispatchHistory(ctx context.Context, query map[string]string) ([]dispatch.Record, error)
	DispatchDetails(ctx context.Context, id string) (*dispatch.Record, error)
	UpdateDispatchStatus(ctx context.Context, id string, status dispatch.Status) error
	DispatchPDF(ctx context.Context, id string) ([]byte, string, error)
	DispatchClients(ctx context.Context) ([]partner.Client, error)
	CreateDispatch(ctx context.Context, f dispatch.CreateForm) (*dispatch.Record, error)

	ListWarehouseItems(ctx context.Context, query map[string]string) ([]inventory.WarehouseItem, error)
	ListWastageItems(ctx context.Context, query map[string]string) ([]inventory.WastageRoll, error)
	ListManualCutRolls(ctx context.Context, query map[string]string) ([]inventory.ManualCutRoll, error)
}

// Service backs the dispatch pages
type Service struct {
	backend   Backend
	publisher realtime.Publisher
	logger    *zap.Logger
}

// NewService creates the dispatch service
func NewService(b Backend, pub realtime.Publisher, logger *zap.Logger) *Service {
	if pub == nil {
		pub = realtime.NopPublisher{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{backend: b, publisher: pub, logger: logger}
}

// HistoryRequest holds the dispatch history query
type HistoryRequest struct {
	shared.Filter
	Status   string `form:"status"`
	ClientID string `form:"client_id"`
	FromDate string `form:"from_date"`
	ToDate   string `form:"to_date"`
}

// History is one page of dispatches plus the summary of the filtered set.
// Summary.ByStatus ignores the status filter so every tab shows its count.
type History struct {
	shared.Page[dispatch.Record]
	Summary dispatch.Summary `json:"summary"`
}

var historySort = shared.SortSpec[dispatch.Record]{
	Default:    "dispatch_date",
	DefaultDir: "desc",
	Keys: map[string]shared.Comparator[dispatch.Record]{
		"dispatch_date":   func(a, b dispatch.Record) int { return a.DispatchDate.Compare(b.DispatchDate.Time) },
		"dispatch_number": func(a, b dispatch.Record) int { return shared.CompareFold(a.Number(), b.Number()) },
		"client":          func(a, b dispatch.Record) int { return shared.CompareFold(a.ClientName(), b.ClientName()) },
		"total_weight":    func(a, b dispatch.Record) int { return a.ItemWeight().Cmp(b.ItemWeight()) },
		"total_items":     func(a, b dispatch.Record) int { return a.ItemCount() - b.ItemCount() },
	},
}

// History lists dispatches
func (s *Service) History(ctx context.Context, req HistoryRequest) (*History, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "dispatch", "history")
	defer span.End()

	f := req.Filter.Normalize()
	rows, byStatus, err := s.history(ctx, req)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	summary := dispatch.Summarize(rows)
	summary.ByStatus = byStatus
	return &History{Page: shared.Paginate(rows, f.Page, f.PageSize), Summary: summary}, nil
}

// history returns every matching record, sorted, plus the per-status counts
// taken before the status filter
func (s *Service) history(ctx context.Context, req HistoryRequest) ([]dispatch.Record, map[dispatch.Status]int, error) {
	f := req.Filter.Normalize()
	status := dispatch.Status(strings.ToLower(strings.TrimSpace(req.Status)))
	if status != "" && !status.IsValid() {
		return nil, nil, shared.InvalidInput("Unknown dispatch status: " + req.Status)
	}
	dates, err := shared.ParseDateRange(req.FromDate, req.ToDate)
	if err != nil {
		return nil, nil, err
	}

	records, err := s.backend.DispatchHistory(ctx, dates.Query())
	if err != nil {
		return nil, nil, backend.ToDomainError(err)
	}

	byStatus := make(map[dispatch.Status]int, 4)
	for _, st := range dispatch.AllStatuses() {
		byStatus[st] = 0
	}
	rows := make([]dispatch.Record, 0, len(records))
	for _, r := range records {
		if req.ClientID != "" && r.ClientID != req.ClientID {
			continue
		}
		if !dates.Contains(r.DispatchDate.Time) {
			continue
		}
		if !shared.MatchesSearch(f.Search, r.DispatchNumber, r.FrontendID, r.ClientName(), r.VehicleNumber, r.DriverName) {
			continue
		}
		byStatus[r.Status]++
		if status != "" && r.Status != status {
			continue
		}
		rows = append(rows, r)
	}
	historySort.Sort(rows, f.OrderBy, f.OrderDir)
	return rows, byStatus, nil
}

// ExportHistory renders the whole filtered history as an export table
func (s *Service) ExportHistory(ctx context.Context, req HistoryRequest) (export.Table, error) {
	rows, _, err := s.history(ctx, req)
	if err != nil {
		return export.Table{}, err
	}
	t := export.Table{
		Sheet: "Dispatch History",
		Columns: []export.Column{
			{Header: "Dispatch No", Width: 16},
			{Header: "Date", Width: 18},
			{Header: "Client", Width: 30},
			{Header: "Vehicle"},
			{Header: "Driver", Width: 20},
			{Header: "Mobile"},
			{Header: "Payment"},
			{Header: "Status"},
			{Header: "Items"},
			{Header: "Weight (kg)", Width: 14},
		},
	}
	for _, r := range rows {
		t.Rows = append(t.Rows, []any{
			r.Number(), r.DispatchDate, r.ClientName(), r.VehicleNumber, r.DriverName,
			r.DriverMobile, r.PaymentType, r.Status.Label(), r.ItemCount(), r.ItemWeight(),
		})
	}
	return t, nil
}

// Details is a dispatch with its items grouped for display
type Details struct {
	dispatch.Record
	Groups []dispatch.OrderGroup `json:"groups"`
	// Transitions are the statuses the dispatch may still move to
	Transitions []dispatch.Status `json:"transitions"`
}

// Details fetches one dispatch
func (s *Service) Details(ctx context.Context, id string) (*Details, error) {
	if strings.TrimSpace(id) == "" {
		return nil, shared.InvalidInput("Dispatch id is required")
	}
	ctx, span := telemetry.StartServiceSpan(ctx, "dispatch", "details", telemetry.AttrDispatchID, id)
	defer span.End()

	r, err := s.backend.DispatchDetails(ctx, id)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, backend.ToDomainError(err)
	}
	d := &Details{Record: *r, Groups: dispatch.GroupItems(r.Items)}
	for _, st := range dispatch.AllStatuses() {
		if r.Status.CanTransitionTo(st) {
			d.Transitions = append(d.Transitions, st)
		}
	}
	return d, nil
}

// UpdateStatus moves a dispatch to status. Requesting the current status
// is a no-op; terminal dispatches cannot change.
func (s *Service) UpdateStatus(ctx context.Context, id string, status dispatch.Status) (*Details, error) {
	if !status.IsValid() {
		return nil, shared.InvalidInput("Unknown dispatch status: " + string(status))
	}
	current, err := s.Details(ctx, id)
	if err != nil {
		return nil, err
	}
	if current.Status == status {
		return current, nil
	}
	if !current.Status.CanTransitionTo(status) {
		if current.Status.IsTerminal() {
			return nil, shared.NewDomainError("INVALID_STATE", "Dispatch is already "+strings.ToLower(current.Status.Label()))
		}
		return nil, shared.NewDomainError("INVALID_STATE", "Cannot change dispatch from "+current.Status.Label()+" to "+status.Label())
	}

	if err := s.backend.UpdateDispatchStatus(ctx, id, status); err != nil {
		return nil, backend.ToDomainError(err)
	}
	s.logger.Info("dispatch status changed",
		zap.String("dispatch_id", id),
		zap.String("from", string(current.Status)),
		zap.String("to", string(status)),
	)
	s.publish(ctx, id, realtime.ActionUpdated)
	return s.Details(ctx, id)
}

// BackendPDF passes the backend's own dispatch PDF through
func (s *Service) BackendPDF(ctx context.Context, id string) ([]byte, string, error) {
	data, contentType, err := s.backend.DispatchPDF(ctx, id)
	if err != nil {
		return nil, "", backend.ToDomainError(err)
	}
	if contentType == "" {
		contentType = "application/pdf"
	}
	return data, contentType, nil
}

// Candidates is everything the dispatch form offers for selection
type Candidates struct {
	Warehouse []inventory.WarehouseItem `json:"warehouse_items"`
	Wastage   []inventory.WastageRoll   `json:"wastage_items"`
	Manual    []inventory.ManualCutRoll `json:"manual_cut_rolls"`
	Clients   []partner.Client          `json:"clients"`
}

// Candidates fetches the four selection lists concurrently. Warehouse and
// manual rolls are narrowed to clientID when given; only available off-cuts
// are offered.
func (s *Service) Candidates(ctx context.Context, clientID string) (*Candidates, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "dispatch", "candidates")
	defer span.End()

	var out Candidates
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		items, err := s.backend.ListWarehouseItems(gctx, nil)
		out.Warehouse = shared.FilterSlice(items, func(it inventory.WarehouseItem) bool {
			return clientID == "" || it.ClientID == clientID
		})
		return err
	})
	g.Go(func() error {
		items, err := s.backend.ListWastageItems(gctx, nil)
		out.Wastage = shared.FilterSlice(items, func(w inventory.WastageRoll) bool {
			return w.Status == "" || w.Status == inventory.WastageAvailable
		})
		return err
	})
	g.Go(func() error {
		items, err := s.backend.ListManualCutRolls(gctx, nil)
		out.Manual = shared.FilterSlice(items, func(m inventory.ManualCutRoll) bool {
			return clientID == "" || m.ClientID == clientID
		})
		return err
	})
	g.Go(func() error {
		clients, err := s.backend.DispatchClients(gctx)
		out.Clients = clients
		return err
	})
	if err := g.Wait(); err != nil {
		telemetry.RecordError(span, err)
		return nil, backend.ToDomainError(err)
	}
	return &out, nil
}

// Create validates and posts a new dispatch
func (s *Service) Create(ctx context.Context, form dispatch.CreateForm, createdBy string) (*dispatch.Record, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "dispatch", "create")
	defer span.End()

	form = form.Normalize()
	if err := form.Validate(); err != nil {
		return nil, err
	}
	if form.DispatchDate == "" {
		form.DispatchDate = time.Now().Format(time.DateOnly)
	}
	form.CreatedByID = createdBy

	r, err := s.backend.CreateDispatch(ctx, form)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, backend.ToDomainError(err)
	}
	telemetry.SetAttributes(span, telemetry.AttrDispatchID, r.ID)
	s.logger.Info("dispatch created",
		zap.String("dispatch_id", r.ID),
		zap.String("dispatch_number", r.Number()),
		zap.Int("items", form.ItemCount()),
	)
	s.publish(ctx, r.ID, realtime.ActionCreated)
	return r, nil
}

func (s *Service) publish(ctx context.Context, id, action string) {
	s.publisher.Publish(ctx, realtime.Event{Type: "dispatch", ID: id, Action: action})
}
