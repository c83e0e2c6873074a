package handler

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	planningapp "github.com/papermill/portal/internal/application/planning"
	"github.com/papermill/portal/internal/domain/order"
	"github.com/papermill/portal/internal/domain/planning"
	"github.com/papermill/portal/internal/domain/shared"
)

type mockPlanningService struct {
	mock.Mock
}

func (m *mockPlanningService) ListPlans(ctx context.Context, req planningapp.ListPlansRequest) (*shared.Page[planningapp.PlanRow], error) {
	args := m.Called(ctx, req)
	if p := args.Get(0); p != nil {
		return p.(*shared.Page[planningapp.PlanRow]), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockPlanningService) GetPlan(ctx context.Context, id string) (*planningapp.PlanDetail, error) {
	return m.detail(m.Called(ctx, id))
}

func (m *mockPlanningService) PreviewPlan(ctx context.Context, req planning.PreviewRequest) (*planningapp.Preview, error) {
	args := m.Called(ctx, req)
	if p := args.Get(0); p != nil {
		return p.(*planningapp.Preview), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockPlanningService) CreatePlan(ctx context.Context, req planning.CreateRequest, createdBy string) (*planningapp.PlanDetail, error) {
	return m.detail(m.Called(ctx, req, createdBy))
}

func (m *mockPlanningService) UpdatePlanStatus(ctx context.Context, id string, target planning.Status) (*planningapp.PlanDetail, error) {
	return m.detail(m.Called(ctx, id, target))
}

func (m *mockPlanningService) StartProduction(ctx context.Context, id string) (*planningapp.PlanDetail, error) {
	return m.detail(m.Called(ctx, id))
}

func (m *mockPlanningService) ListPendingItems(ctx context.Context, req planningapp.ListPendingRequest) (*shared.Page[order.PendingItem], error) {
	args := m.Called(ctx, req)
	if p := args.Get(0); p != nil {
		return p.(*shared.Page[order.PendingItem]), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockPlanningService) detail(args mock.Arguments) (*planningapp.PlanDetail, error) {
	if d := args.Get(0); d != nil {
		return d.(*planningapp.PlanDetail), args.Error(1)
	}
	return nil, args.Error(1)
}

func TestPlanningHandler_List(t *testing.T) {
	svc := &mockPlanningService{}
	h := NewPlanningHandler(svc)
	rows := []planningapp.PlanRow{
		{Plan: planning.Plan{ID: "pl1", Name: "Morning run", Status: planning.StatusPlanned}},
		{Plan: planning.Plan{ID: "pl2", Name: "Night run", Status: planning.StatusPlanned}},
	}
	svc.On("ListPlans", mock.Anything, mock.MatchedBy(func(r planningapp.ListPlansRequest) bool {
		return r.Status == "planned"
	})).Return(func() *shared.Page[planningapp.PlanRow] {
		p := shared.Paginate(rows, 1, 20)
		return &p
	}(), nil)

	c, w := newContext(http.MethodGet, "/api/v1/plans?status=planned", "")
	h.List(c)

	require.Equal(t, http.StatusOK, w.Code)
	resp := decode(t, w)
	require.NotNil(t, resp.Meta)
	assert.Equal(t, int64(2), resp.Meta.Total)
}

func TestPlanningHandler_Preview_RequiresOrders(t *testing.T) {
	svc := &mockPlanningService{}
	h := NewPlanningHandler(svc)

	c, w := newContext(http.MethodPost, "/api/v1/plans/preview", `{"order_ids":[]}`)
	h.Preview(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	svc.AssertNotCalled(t, "PreviewPlan", mock.Anything, mock.Anything)
}

func TestPlanningHandler_Create(t *testing.T) {
	svc := &mockPlanningService{}
	h := NewPlanningHandler(svc)
	svc.On("CreatePlan", mock.Anything, mock.MatchedBy(func(r planning.CreateRequest) bool {
		return r.Name == "Morning run" && len(r.OrderIDs) == 2
	}), "").Return(&planningapp.PlanDetail{Plan: planning.Plan{ID: "pl1", Status: planning.StatusPlanned}}, nil)

	c, w := newContext(http.MethodPost, "/api/v1/plans", `{"name":"Morning run","order_ids":["o1","o2"]}`)
	h.Create(c)

	assert.Equal(t, http.StatusCreated, w.Code)
	svc.AssertExpectations(t)
}

func TestPlanningHandler_StartProduction_InvalidState(t *testing.T) {
	svc := &mockPlanningService{}
	h := NewPlanningHandler(svc)
	svc.On("StartProduction", mock.Anything, "pl1").
		Return(nil, shared.NewDomainError("INVALID_STATE", "Only planned plans can start production"))

	c, w := newContext(http.MethodPost, "/api/v1/plans/pl1/start-production", "")
	c.AddParam("id", "pl1")
	h.StartProduction(c)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, "Only planned plans can start production", decode(t, w).Error.Message)
}

func TestPlanningHandler_UpdateStatus(t *testing.T) {
	svc := &mockPlanningService{}
	h := NewPlanningHandler(svc)
	svc.On("UpdatePlanStatus", mock.Anything, "pl1", planning.StatusCompleted).
		Return(&planningapp.PlanDetail{Plan: planning.Plan{ID: "pl1", Status: planning.StatusCompleted}}, nil)

	c, w := newContext(http.MethodPut, "/api/v1/plans/pl1/status", `{"status":"completed"}`)
	c.AddParam("id", "pl1")
	h.UpdateStatus(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "completed", decode(t, w).Data.(map[string]any)["status"])
}
