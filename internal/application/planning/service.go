package planning

import (
	"context"
	"slices"
	"strings"

	"go.uber.org/zap"

	"github.com/papermill/portal/internal/domain/order"
	"github.com/papermill/portal/internal/domain/planning"
	"github.com/papermill/portal/internal/domain/shared"
	"github.com/papermill/portal/internal/infrastructure/backend"
	"github.com/papermill/portal/internal/infrastructure/realtime"
	"github.com/papermill/portal/internal/infrastructure/telemetry"
)

// Backend is the part of the ERP API the planning pages use
type Backend interface {
	ListPlans(ctx context.Context, query map[string]string) ([]planning.Plan, error)
	GetPlan(ctx context.Context, id string) (*planning.Plan, error)
	PreviewPlan(ctx context.Context, req planning.PreviewRequest) (*planning.PreviewResult, error)
	CreatePlan(ctx context.Context, req planning.CreateRequest) (*planning.Plan, error)
	UpdatePlanStatus(ctx context.Context, id string, status planning.Status) error
	StartProduction(ctx context.Context, id string) (*planning.Plan, error)
	ListPendingItems(ctx context.Context, query map[string]string) ([]order.PendingItem, error)
}

// ListPlansRequest holds the plan listing query
type ListPlansRequest struct {
	shared.Filter
	Status string `form:"status"`
}

// PlanRow is a plan with its pattern summary
type PlanRow struct {
	planning.Plan
	Summary planning.Summary `json:"summary"`
}

// PlanDetail is a plan with its patterns grouped by jumbo roll
type PlanDetail struct {
	planning.Plan
	Summary planning.Summary      `json:"summary"`
	Jumbos  []planning.JumboGroup `json:"jumbos"`
}

// Preview is the optimizer's proposal plus local totals
type Preview struct {
	planning.PreviewResult
	Summary planning.Summary      `json:"summary"`
	Jumbos  []planning.JumboGroup `json:"jumbos"`
}

// ListPendingRequest holds the pending-items query
type ListPendingRequest struct {
	shared.Filter
	Reason string `form:"reason"`
	Status string `form:"status"`
}

// Service backs the planning and pending-items pages
type Service struct {
	backend   Backend
	publisher realtime.Publisher
	logger    *zap.Logger
}

// NewService creates the planning service
func NewService(b Backend, pub realtime.Publisher, logger *zap.Logger) *Service {
	if pub == nil {
		pub = realtime.NopPublisher{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{backend: b, publisher: pub, logger: logger}
}

var planSort = shared.SortSpec[PlanRow]{
	Default:    "created_at",
	DefaultDir: "desc",
	Keys: map[string]shared.Comparator[PlanRow]{
		"created_at": func(a, b PlanRow) int { return a.CreatedAt.Compare(b.CreatedAt.Time) },
		"name":       func(a, b PlanRow) int { return shared.CompareFold(a.Name, b.Name) },
		"waste": func(a, b PlanRow) int {
			return a.ExpectedWastePercentage.Cmp(b.ExpectedWastePercentage)
		},
		"status": func(a, b PlanRow) int { return strings.Compare(string(a.Status), string(b.Status)) },
	},
}

// ListPlans fetches plans and narrows them locally
func (s *Service) ListPlans(ctx context.Context, req ListPlansRequest) (*shared.Page[PlanRow], error) {
	f := req.Filter.Normalize()
	status := planning.Status(req.Status)
	if status != "" && !status.IsValid() {
		return nil, shared.InvalidInput("Unknown plan status: " + req.Status)
	}

	plans, err := s.backend.ListPlans(ctx, nil)
	if err != nil {
		return nil, backend.ToDomainError(err)
	}

	rows := make([]PlanRow, 0, len(plans))
	for _, p := range plans {
		if status != "" && p.Status != status {
			continue
		}
		if !shared.MatchesSearch(f.Search, p.FrontendID, p.Name, p.CreatedBy) {
			continue
		}
		rows = append(rows, PlanRow{Plan: p, Summary: planning.Summarize(p.CutPattern)})
	}
	planSort.Sort(rows, f.OrderBy, f.OrderDir)
	page := shared.Paginate(rows, f.Page, f.PageSize)
	return &page, nil
}

// GetPlan fetches a plan and groups its cut patterns
func (s *Service) GetPlan(ctx context.Context, id string) (*PlanDetail, error) {
	if strings.TrimSpace(id) == "" {
		return nil, shared.InvalidInput("Plan id is required")
	}
	p, err := s.backend.GetPlan(ctx, id)
	if err != nil {
		return nil, backend.ToDomainError(err)
	}
	return &PlanDetail{
		Plan:    *p,
		Summary: planning.Summarize(p.CutPattern),
		Jumbos:  planning.GroupByJumbo(p.CutPattern),
	}, nil
}

// PreviewPlan asks the optimizer for a plan over the selected orders
func (s *Service) PreviewPlan(ctx context.Context, req planning.PreviewRequest) (*Preview, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "plan", "preview")
	defer span.End()

	req.OrderIDs = compactIDs(req.OrderIDs)
	req.PendingItemIDs = compactIDs(req.PendingItemIDs)
	if len(req.OrderIDs) == 0 {
		return nil, shared.InvalidInput("Select at least one order to plan")
	}
	telemetry.SetAttributes(span, "plan.order_count", len(req.OrderIDs))

	res, err := s.backend.PreviewPlan(ctx, req)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, backend.ToDomainError(err)
	}
	return &Preview{
		PreviewResult: *res,
		Summary:       planning.Summarize(res.CutPatterns),
		Jumbos:        planning.GroupByJumbo(res.CutPatterns),
	}, nil
}

// CreatePlan saves a plan for the selected orders and pending items
func (s *Service) CreatePlan(ctx context.Context, req planning.CreateRequest, createdBy string) (*PlanDetail, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.OrderIDs = compactIDs(req.OrderIDs)
	req.PendingItemIDs = compactIDs(req.PendingItemIDs)
	req.CreatedByID = createdBy
	if len(req.OrderIDs) == 0 {
		return nil, shared.InvalidInput("Select at least one order to plan")
	}

	p, err := s.backend.CreatePlan(ctx, req)
	if err != nil {
		return nil, backend.ToDomainError(err)
	}
	s.logger.Info("plan created", zap.String("plan_id", p.ID), zap.Int("orders", len(req.OrderIDs)))
	s.publisher.Publish(ctx, realtime.Event{Type: "plan", ID: p.ID, Action: realtime.ActionCreated})
	return s.GetPlan(ctx, p.ID)
}

// UpdatePlanStatus moves a plan along its lifecycle. The current status is
// fetched first so an impossible transition is refused locally.
func (s *Service) UpdatePlanStatus(ctx context.Context, id string, target planning.Status) (*PlanDetail, error) {
	if !target.IsValid() {
		return nil, shared.InvalidInput("Unknown plan status: " + string(target))
	}
	current, err := s.backend.GetPlan(ctx, id)
	if err != nil {
		return nil, backend.ToDomainError(err)
	}
	if current.Status == target {
		return s.GetPlan(ctx, id)
	}
	if !current.Status.CanTransitionTo(target) {
		return nil, shared.NewDomainError("INVALID_STATE",
			"Plan cannot move from "+string(current.Status)+" to "+string(target))
	}
	if err := s.backend.UpdatePlanStatus(ctx, id, target); err != nil {
		return nil, backend.ToDomainError(err)
	}
	s.publisher.Publish(ctx, realtime.Event{Type: "plan", ID: id, Action: realtime.ActionUpdated})
	return s.GetPlan(ctx, id)
}

// StartProduction starts cutting for a planned plan
func (s *Service) StartProduction(ctx context.Context, id string) (*PlanDetail, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "plan", "start_production")
	defer span.End()

	p, err := s.backend.StartProduction(ctx, id)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, backend.ToDomainError(err)
	}
	s.logger.Info("production started", zap.String("plan_id", id))
	s.publisher.Publish(ctx, realtime.Event{Type: "plan", ID: id, Action: realtime.ActionUpdated})
	return &PlanDetail{
		Plan:    *p,
		Summary: planning.Summarize(p.CutPattern),
		Jumbos:  planning.GroupByJumbo(p.CutPattern),
	}, nil
}

var pendingSort = shared.SortSpec[order.PendingItem]{
	Default:    "created_at",
	DefaultDir: "desc",
	Keys: map[string]shared.Comparator[order.PendingItem]{
		"created_at": func(a, b order.PendingItem) int { return a.CreatedAt.Compare(b.CreatedAt.Time) },
		"width":      func(a, b order.PendingItem) int { return a.WidthInches.Cmp(b.WidthInches) },
		"quantity":   func(a, b order.PendingItem) int { return a.QuantityPending - b.QuantityPending },
		"client":     func(a, b order.PendingItem) int { return shared.CompareFold(a.ClientName, b.ClientName) },
		"gsm":        func(a, b order.PendingItem) int { return a.GSM - b.GSM },
	},
}

// ListPendingItems fetches pending order items and narrows them locally
func (s *Service) ListPendingItems(ctx context.Context, req ListPendingRequest) (*shared.Page[order.PendingItem], error) {
	f := req.Filter.Normalize()
	items, err := s.backend.ListPendingItems(ctx, nil)
	if err != nil {
		return nil, backend.ToDomainError(err)
	}

	out := shared.FilterSlice(items, func(it order.PendingItem) bool {
		if req.Status != "" && string(it.Status) != req.Status {
			return false
		}
		if req.Reason != "" && !strings.EqualFold(it.Reason, req.Reason) {
			return false
		}
		return shared.MatchesSearch(f.Search, it.FrontendID, it.OrderFrontendID, it.ClientName, it.Shade)
	})
	pendingSort.Sort(out, f.OrderBy, f.OrderDir)
	page := shared.Paginate(out, f.Page, f.PageSize)
	return &page, nil
}

// compactIDs trims, drops blanks and de-duplicates, keeping first order
func compactIDs(ids []string) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id != "" && !slices.Contains(out, id) {
			out = append(out, id)
		}
	}
	return out
}
