package order

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/papermill/portal/internal/domain/order"
	"github.com/papermill/portal/internal/domain/partner"
	"github.com/papermill/portal/internal/domain/shared"
	"github.com/papermill/portal/internal/infrastructure/backend"
	"github.com/papermill/portal/internal/infrastructure/cache"
	"github.com/papermill/portal/internal/infrastructure/realtime"
	"github.com/papermill/portal/internal/infrastructure/telemetry"
)

// Backend is the part of the ERP API the order pages use
type Backend interface {
	ListOrders(ctx context.Context, query map[string]string) ([]order.Order, error)
	GetOrder(ctx context.Context, id string) (*order.Order, error)
	CreateOrder(ctx context.Context, p order.Payload) (*order.Order, error)
	UpdateOrder(ctx context.Context, id string, p order.Payload) (*order.Order, error)
	UpdateOrderStatus(ctx context.Context, id string, status order.Status) error
	DeleteOrder(ctx context.Context, id string) error

	ListClients(ctx context.Context) ([]partner.Client, error)
	CreateClient(ctx context.Context, in partner.ClientInput) (*partner.Client, error)
	UpdateClient(ctx context.Context, id string, in partner.ClientInput) (*partner.Client, error)
	DeleteClient(ctx context.Context, id string) error
	ListPapers(ctx context.Context) ([]partner.Paper, error)
	CreatePaper(ctx context.Context, in partner.PaperInput) (*partner.Paper, error)
}

// Reference data cache keys
const (
	clientsCacheKey = "ref:clients"
	papersCacheKey  = "ref:papers"
)

// Service backs the order, client and paper pages
type Service struct {
	backend   Backend
	cache     cache.ReferenceCache
	cacheTTL  time.Duration
	publisher realtime.Publisher
	now       func() time.Time
	logger    *zap.Logger
}

// NewService creates the order service. A nil cache disables reference
// caching; a nil publisher drops change events.
func NewService(b Backend, c cache.ReferenceCache, cacheTTL time.Duration, pub realtime.Publisher, logger *zap.Logger) *Service {
	if pub == nil {
		pub = realtime.NopPublisher{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		backend:   b,
		cache:     c,
		cacheTTL:  cacheTTL,
		publisher: pub,
		now:       time.Now,
		logger:    logger,
	}
}

var orderSort = shared.SortSpec[OrderRow]{
	Default:    "created_at",
	DefaultDir: "desc",
	Keys: map[string]shared.Comparator[OrderRow]{
		"created_at":    func(a, b OrderRow) int { return a.CreatedAt.Compare(b.CreatedAt.Time) },
		"delivery_date": func(a, b OrderRow) int { return a.DeliveryDate.Compare(b.DeliveryDate.Time) },
		"client":        func(a, b OrderRow) int { return shared.CompareFold(a.ClientName, b.ClientName) },
		"frontend_id":   func(a, b OrderRow) int { return shared.CompareFold(a.FrontendID, b.FrontendID) },
		"total_amount":  func(a, b OrderRow) int { return a.TotalAmount.Cmp(b.TotalAmount) },
	},
}

// ListOrders fetches all orders and narrows them locally
func (s *Service) ListOrders(ctx context.Context, req ListOrdersRequest) (*OrderList, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "order", "list")
	defer span.End()

	f := req.Filter.Normalize()
	status := order.Status(strings.TrimSpace(req.Status))
	if status != "" && !status.IsValid() {
		return nil, shared.InvalidInput("Unknown order status: " + req.Status)
	}
	dates, err := shared.ParseDateRange(req.FromDate, req.ToDate)
	if err != nil {
		return nil, err
	}

	orders, err := s.backend.ListOrders(ctx, nil)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, backend.ToDomainError(err)
	}

	counts := make(map[order.Status]int)
	rows := make([]OrderRow, 0, len(orders))
	for _, o := range orders {
		if req.ClientID != "" && o.ClientID != req.ClientID {
			continue
		}
		if !dates.Contains(o.CreatedAt.Time) {
			continue
		}
		if !shared.MatchesSearch(f.Search, o.FrontendID, o.ClientName()) {
			continue
		}
		counts[o.Status]++
		if status != "" && o.Status != status {
			continue
		}
		rows = append(rows, toOrderRow(o))
	}

	orderSort.Sort(rows, f.OrderBy, f.OrderDir)
	return &OrderList{Page: shared.Paginate(rows, f.Page, f.PageSize), StatusCounts: counts}, nil
}

// GetOrder fetches one order
func (s *Service) GetOrder(ctx context.Context, id string) (*OrderRow, error) {
	if strings.TrimSpace(id) == "" {
		return nil, shared.InvalidInput("Order id is required")
	}
	o, err := s.backend.GetOrder(ctx, id)
	if err != nil {
		return nil, backend.ToDomainError(err)
	}
	row := toOrderRow(*o)
	return &row, nil
}

// CreateOrder validates the form, posts it and returns the stored order
func (s *Service) CreateOrder(ctx context.Context, form order.Form, createdBy string) (*OrderRow, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "order", "create")
	defer span.End()

	if err := form.Validate(s.now()); err != nil {
		return nil, err
	}
	created, err := s.backend.CreateOrder(ctx, form.Payload(createdBy))
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, backend.ToDomainError(err)
	}
	telemetry.SetAttributes(span, telemetry.AttrOrderID, created.ID)

	s.logger.Info("order created", zap.String("order_id", created.ID), zap.String("frontend_id", created.FrontendID))
	s.publish(ctx, created.ID, realtime.ActionCreated)
	return s.GetOrder(ctx, created.ID)
}

// UpdateOrder re-posts the edited form
func (s *Service) UpdateOrder(ctx context.Context, id string, form order.Form, updatedBy string) (*OrderRow, error) {
	if err := form.Validate(s.now()); err != nil {
		return nil, err
	}
	if _, err := s.backend.UpdateOrder(ctx, id, form.Payload(updatedBy)); err != nil {
		return nil, backend.ToDomainError(err)
	}
	s.publish(ctx, id, realtime.ActionUpdated)
	return s.GetOrder(ctx, id)
}

// UpdateOrderStatus moves an order to status
func (s *Service) UpdateOrderStatus(ctx context.Context, id string, status order.Status) (*OrderRow, error) {
	if !status.IsValid() {
		return nil, shared.InvalidInput("Unknown order status: " + string(status))
	}
	if err := s.backend.UpdateOrderStatus(ctx, id, status); err != nil {
		return nil, backend.ToDomainError(err)
	}
	s.publish(ctx, id, realtime.ActionUpdated)
	return s.GetOrder(ctx, id)
}

// DeleteOrder removes an order
func (s *Service) DeleteOrder(ctx context.Context, id string) error {
	if err := s.backend.DeleteOrder(ctx, id); err != nil {
		return backend.ToDomainError(err)
	}
	s.publish(ctx, id, realtime.ActionDeleted)
	return nil
}

func (s *Service) publish(ctx context.Context, id, action string) {
	s.publisher.Publish(ctx, realtime.Event{Type: "order", ID: id, Action: action})
}
