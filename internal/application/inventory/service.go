// Package inventory backs the material challan and stock pages.
package inventory

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/papermill/portal/internal/domain/inventory"
	"github.com/papermill/portal/internal/domain/shared"
	"github.com/papermill/portal/internal/infrastructure/backend"
	"github.com/papermill/portal/internal/infrastructure/cache"
	"github.com/papermill/portal/internal/infrastructure/realtime"
	"github.com/papermill/portal/internal/infrastructure/telemetry"
)

// Backend is the part of the ERP API the inventory pages use
type Backend interface {
	ListChallans(ctx context.Context, dir inventory.Direction, query map[string]string) ([]inventory.MaterialChallan, error)
	CreateChallan(ctx context.Context, dir inventory.Direction, f inventory.ChallanForm) (*inventory.MaterialChallan, error)
	UpdateChallan(ctx context.Context, dir inventory.Direction, id string, f inventory.ChallanForm) (*inventory.MaterialChallan, error)
	DeleteChallan(ctx context.Context, dir inventory.Direction, id string) error
	ListMaterials(ctx context.Context) ([]inventory.Material, error)

	ListWarehouseItems(ctx context.Context, query map[string]string) ([]inventory.WarehouseItem, error)
	ListWastageItems(ctx context.Context, query map[string]string) ([]inventory.WastageRoll, error)
	ListManualCutRolls(ctx context.Context, query map[string]string) ([]inventory.ManualCutRoll, error)
}

const materialsCacheKey = "ref:materials"

// Service backs the challan and stock pages
type Service struct {
	backend   Backend
	cache     cache.ReferenceCache
	cacheTTL  time.Duration
	publisher realtime.Publisher
	logger    *zap.Logger
}

// NewService creates the inventory service
func NewService(b Backend, c cache.ReferenceCache, cacheTTL time.Duration, pub realtime.Publisher, logger *zap.Logger) *Service {
	if pub == nil {
		pub = realtime.NopPublisher{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{backend: b, cache: c, cacheTTL: cacheTTL, publisher: pub, logger: logger}
}

// ListChallansRequest holds the challan listing query
type ListChallansRequest struct {
	shared.Filter
	FromDate string `form:"from_date"`
	ToDate   string `form:"to_date"`
}

var challanSort = shared.SortSpec[inventory.MaterialChallan]{
	Default:    "time",
	DefaultDir: "desc",
	Keys: map[string]shared.Comparator[inventory.MaterialChallan]{
		"time":     func(a, b inventory.MaterialChallan) int { return a.Time.Compare(b.Time.Time) },
		"material": func(a, b inventory.MaterialChallan) int { return shared.CompareFold(a.MaterialName, b.MaterialName) },
		"party":    func(a, b inventory.MaterialChallan) int { return shared.CompareFold(a.PartyName, b.PartyName) },
		"quantity": func(a, b inventory.MaterialChallan) int { return a.Quantity.Cmp(b.Quantity) },
	},
}

// ListChallans lists inward or outward challans
func (s *Service) ListChallans(ctx context.Context, dir inventory.Direction, req ListChallansRequest) (*shared.Page[inventory.MaterialChallan], error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "challan", "list", "challan.direction", string(dir))
	defer span.End()

	f := req.Filter.Normalize()
	dates, err := shared.ParseDateRange(req.FromDate, req.ToDate)
	if err != nil {
		return nil, err
	}

	challans, err := s.backend.ListChallans(ctx, dir, dates.Query())
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, backend.ToDomainError(err)
	}

	rows := shared.FilterSlice(challans, func(c inventory.MaterialChallan) bool {
		return dates.Contains(c.Time.Time) &&
			shared.MatchesSearch(f.Search, c.PartyName, c.MaterialName, c.VehicleNumber, c.FrontendID, c.ChallanReference)
	})
	challanSort.Sort(rows, f.OrderBy, f.OrderDir)
	page := shared.Paginate(rows, f.Page, f.PageSize)
	return &page, nil
}

// GetChallan finds one challan in the direction's list. The backend has no
// single-challan endpoint.
func (s *Service) GetChallan(ctx context.Context, dir inventory.Direction, id string) (*inventory.MaterialChallan, error) {
	challans, err := s.backend.ListChallans(ctx, dir, nil)
	if err != nil {
		return nil, backend.ToDomainError(err)
	}
	for i := range challans {
		if challans[i].ID == id {
			return &challans[i], nil
		}
	}
	return nil, shared.NewDomainError("NOT_FOUND", "Challan not found")
}

// CreateChallan validates and records a challan
func (s *Service) CreateChallan(ctx context.Context, dir inventory.Direction, form inventory.ChallanForm) (*inventory.MaterialChallan, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "challan", "create", "challan.direction", string(dir))
	defer span.End()

	form = form.Normalize()
	if err := form.Validate(); err != nil {
		return nil, err
	}
	c, err := s.backend.CreateChallan(ctx, dir, form)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, backend.ToDomainError(err)
	}
	s.logger.Info("challan recorded",
		zap.String("direction", string(dir)),
		zap.String("challan_id", c.ID),
		zap.String("material", c.MaterialName),
	)
	s.publish(ctx, dir, c.ID, realtime.ActionCreated)
	return c, nil
}

// UpdateChallan re-posts an edited challan
func (s *Service) UpdateChallan(ctx context.Context, dir inventory.Direction, id string, form inventory.ChallanForm) (*inventory.MaterialChallan, error) {
	if strings.TrimSpace(id) == "" {
		return nil, shared.InvalidInput("Challan id is required")
	}
	form = form.Normalize()
	if err := form.Validate(); err != nil {
		return nil, err
	}
	c, err := s.backend.UpdateChallan(ctx, dir, id, form)
	if err != nil {
		return nil, backend.ToDomainError(err)
	}
	s.publish(ctx, dir, id, realtime.ActionUpdated)
	return c, nil
}

// DeleteChallan removes a challan
func (s *Service) DeleteChallan(ctx context.Context, dir inventory.Direction, id string) error {
	if err := s.backend.DeleteChallan(ctx, dir, id); err != nil {
		return backend.ToDomainError(err)
	}
	s.publish(ctx, dir, id, realtime.ActionDeleted)
	return nil
}

// ListMaterials returns the material master, cached
func (s *Service) ListMaterials(ctx context.Context) ([]inventory.Material, error) {
	ms, err := cache.Remember(ctx, s.cache, materialsCacheKey, s.cacheTTL, s.backend.ListMaterials)
	if err != nil {
		return nil, backend.ToDomainError(err)
	}
	return ms, nil
}

func (s *Service) publish(ctx context.Context, dir inventory.Direction, id, action string) {
	s.publisher.Publish(ctx, realtime.Event{Type: "challan_" + string(dir), ID: id, Action: action})
}
