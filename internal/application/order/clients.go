package order

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/papermill/portal/internal/domain/partner"
	"github.com/papermill/portal/internal/domain/shared"
	"github.com/papermill/portal/internal/infrastructure/backend"
	"github.com/papermill/portal/internal/infrastructure/cache"
	"github.com/papermill/portal/internal/infrastructure/realtime"
)

var clientSort = shared.SortSpec[ClientRow]{
	Default:    "company_name",
	DefaultDir: "asc",
	Keys: map[string]shared.Comparator[ClientRow]{
		"company_name": func(a, b ClientRow) int { return shared.CompareFold(a.CompanyName, b.CompanyName) },
		"created_at":   func(a, b ClientRow) int { return a.CreatedAt.Compare(b.CreatedAt.Time) },
		"status":       func(a, b ClientRow) int { return strings.Compare(string(a.Status), string(b.Status)) },
	},
}

// AllClients returns every client, served from the reference cache
func (s *Service) AllClients(ctx context.Context) ([]partner.Client, error) {
	clients, err := cache.Remember(ctx, s.cache, clientsCacheKey, s.cacheTTL, s.backend.ListClients)
	if err != nil {
		return nil, backend.ToDomainError(err)
	}
	return clients, nil
}

// ListClients filters, sorts and pages the cached client list
func (s *Service) ListClients(ctx context.Context, req ListClientsRequest) (*shared.Page[ClientRow], error) {
	f := req.Filter.Normalize()
	clients, err := s.AllClients(ctx)
	if err != nil {
		return nil, err
	}

	rows := make([]ClientRow, 0, len(clients))
	for _, c := range clients {
		if req.Status != "" && string(c.Status) != req.Status {
			continue
		}
		if !shared.MatchesSearch(f.Search, c.CompanyName, c.ContactPerson, c.GSTNumber, c.Phone, c.Email) {
			continue
		}
		rows = append(rows, ClientRow{Client: c, StateCode: c.StateCode()})
	}
	clientSort.Sort(rows, f.OrderBy, f.OrderDir)
	page := shared.Paginate(rows, f.Page, f.PageSize)
	return &page, nil
}

// CreateClient validates and posts a new client
func (s *Service) CreateClient(ctx context.Context, in partner.ClientInput) (*partner.Client, error) {
	in = in.Normalize()
	if err := in.Validate(); err != nil {
		return nil, err
	}
	c, err := s.backend.CreateClient(ctx, in)
	if err != nil {
		return nil, backend.ToDomainError(err)
	}
	s.invalidate(ctx, clientsCacheKey)
	s.publisher.Publish(ctx, realtime.Event{Type: "client", ID: c.ID, Action: realtime.ActionCreated})
	return c, nil
}

// UpdateClient validates and re-posts a client
func (s *Service) UpdateClient(ctx context.Context, id string, in partner.ClientInput) (*partner.Client, error) {
	in = in.Normalize()
	if err := in.Validate(); err != nil {
		return nil, err
	}
	c, err := s.backend.UpdateClient(ctx, id, in)
	if err != nil {
		return nil, backend.ToDomainError(err)
	}
	s.invalidate(ctx, clientsCacheKey)
	s.publisher.Publish(ctx, realtime.Event{Type: "client", ID: id, Action: realtime.ActionUpdated})
	return c, nil
}

// DeleteClient removes a client
func (s *Service) DeleteClient(ctx context.Context, id string) error {
	if err := s.backend.DeleteClient(ctx, id); err != nil {
		return backend.ToDomainError(err)
	}
	s.invalidate(ctx, clientsCacheKey)
	s.publisher.Publish(ctx, realtime.Event{Type: "client", ID: id, Action: realtime.ActionDeleted})
	return nil
}

// ListPapers returns the paper grades, served from the reference cache
func (s *Service) ListPapers(ctx context.Context) ([]partner.Paper, error) {
	papers, err := cache.Remember(ctx, s.cache, papersCacheKey, s.cacheTTL, s.backend.ListPapers)
	if err != nil {
		return nil, backend.ToDomainError(err)
	}
	return papers, nil
}

// CreatePaper validates and posts a new paper grade
func (s *Service) CreatePaper(ctx context.Context, in partner.PaperInput) (*partner.Paper, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Shade = strings.TrimSpace(in.Shade)
	if err := in.Validate(); err != nil {
		return nil, err
	}
	p, err := s.backend.CreatePaper(ctx, in)
	if err != nil {
		return nil, backend.ToDomainError(err)
	}
	s.invalidate(ctx, papersCacheKey)
	return p, nil
}

func (s *Service) invalidate(ctx context.Context, keys ...string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, keys...); err != nil {
		s.logger.Warn("failed to invalidate reference cache", zap.Strings("keys", keys), zap.Error(err))
	}
}
