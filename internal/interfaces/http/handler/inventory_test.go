package handler

import (
	"context"
	"net/http"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	inventoryapp "github.com/papermill/portal/internal/application/inventory"
	"github.com/papermill/portal/internal/domain/inventory"
	"github.com/papermill/portal/internal/domain/shared"
)

type mockInventoryService struct {
	mock.Mock
}

func (m *mockInventoryService) ListChallans(ctx context.Context, dir inventory.Direction, req inventoryapp.ListChallansRequest) (*shared.Page[inventory.MaterialChallan], error) {
	args := m.Called(ctx, dir, req)
	if p := args.Get(0); p != nil {
		return p.(*shared.Page[inventory.MaterialChallan]), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockInventoryService) GetChallan(ctx context.Context, dir inventory.Direction, id string) (*inventory.MaterialChallan, error) {
	return m.challan(m.Called(ctx, dir, id))
}

func (m *mockInventoryService) CreateChallan(ctx context.Context, dir inventory.Direction, form inventory.ChallanForm) (*inventory.MaterialChallan, error) {
	return m.challan(m.Called(ctx, dir, form))
}

func (m *mockInventoryService) UpdateChallan(ctx context.Context, dir inventory.Direction, id string, form inventory.ChallanForm) (*inventory.MaterialChallan, error) {
	return m.challan(m.Called(ctx, dir, id, form))
}

func (m *mockInventoryService) DeleteChallan(ctx context.Context, dir inventory.Direction, id string) error {
	return m.Called(ctx, dir, id).Error(0)
}

func (m *mockInventoryService) ListMaterials(ctx context.Context) ([]inventory.Material, error) {
	args := m.Called(ctx)
	list, _ := args.Get(0).([]inventory.Material)
	return list, args.Error(1)
}

func (m *mockInventoryService) ListWarehouseItems(ctx context.Context, req inventoryapp.StockRequest) (*inventoryapp.StockPage[inventory.WarehouseItem], error) {
	args := m.Called(ctx, req)
	if p := args.Get(0); p != nil {
		return p.(*inventoryapp.StockPage[inventory.WarehouseItem]), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockInventoryService) ListWastageItems(ctx context.Context, req inventoryapp.StockRequest) (*inventoryapp.StockPage[inventory.WastageRoll], error) {
	args := m.Called(ctx, req)
	if p := args.Get(0); p != nil {
		return p.(*inventoryapp.StockPage[inventory.WastageRoll]), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockInventoryService) ListManualCutRolls(ctx context.Context, req inventoryapp.StockRequest) (*inventoryapp.StockPage[inventory.ManualCutRoll], error) {
	args := m.Called(ctx, req)
	if p := args.Get(0); p != nil {
		return p.(*inventoryapp.StockPage[inventory.ManualCutRoll]), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockInventoryService) challan(args mock.Arguments) (*inventory.MaterialChallan, error) {
	if ch := args.Get(0); ch != nil {
		return ch.(*inventory.MaterialChallan), args.Error(1)
	}
	return nil, args.Error(1)
}

func TestInventoryHandler_ListChallans(t *testing.T) {
	svc := &mockInventoryService{}
	h := NewInventoryHandler(svc)
	challans := []inventory.MaterialChallan{{ID: "ch1", MaterialName: "Waste paper", PartyName: "Kumar Traders"}}
	page := shared.Paginate(challans, 1, 20)
	svc.On("ListChallans", mock.Anything, inventory.DirectionInward, mock.Anything).Return(&page, nil)

	c, w := newContext(http.MethodGet, "/api/v1/challans/inward", "")
	c.AddParam("direction", "inward")
	h.ListChallans(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, int64(1), decode(t, w).Meta.Total)
}

func TestInventoryHandler_UnknownDirection(t *testing.T) {
	svc := &mockInventoryService{}
	h := NewInventoryHandler(svc)

	c, w := newContext(http.MethodGet, "/api/v1/challans/sideways", "")
	c.AddParam("direction", "sideways")
	h.ListChallans(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	svc.AssertNotCalled(t, "ListChallans", mock.Anything, mock.Anything, mock.Anything)
}

func TestInventoryHandler_CreateChallan(t *testing.T) {
	svc := &mockInventoryService{}
	h := NewInventoryHandler(svc)
	svc.On("CreateChallan", mock.Anything, inventory.DirectionOutward, mock.MatchedBy(func(f inventory.ChallanForm) bool {
		return f.PartyName == "Kumar Traders" && f.Quantity.Equal(decimal.NewFromInt(1200))
	})).Return(&inventory.MaterialChallan{ID: "ch7", FrontendID: "MOC-007"}, nil)

	body := `{"material_name":"Core pipes","quantity":"1200","unit":"kg","party_name":"Kumar Traders","vehicle_number":"GJ05AB1234"}`
	c, w := newContext(http.MethodPost, "/api/v1/challans/out", body)
	c.AddParam("direction", "out")
	h.CreateChallan(c)

	assert.Equal(t, http.StatusCreated, w.Code)
	svc.AssertExpectations(t)
}

func TestInventoryHandler_CreateChallan_MissingFields(t *testing.T) {
	svc := &mockInventoryService{}
	h := NewInventoryHandler(svc)

	c, w := newContext(http.MethodPost, "/api/v1/challans/in", `{"quantity":"10"}`)
	c.AddParam("direction", "in")
	h.CreateChallan(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	resp := decode(t, w)
	require.NotNil(t, resp.Error)
	assert.NotEmpty(t, resp.Error.Details)
}

func TestInventoryHandler_ListWastage(t *testing.T) {
	svc := &mockInventoryService{}
	h := NewInventoryHandler(svc)
	rolls := []inventory.WastageRoll{{ID: "w1"}, {ID: "w2"}}
	svc.On("ListWastageItems", mock.Anything, mock.Anything).Return(&inventoryapp.StockPage[inventory.WastageRoll]{
		Page:        shared.Paginate(rolls, 1, 20),
		TotalWeight: decimal.NewFromInt(340),
	}, nil)

	c, w := newContext(http.MethodGet, "/api/v1/inventory/wastage", "")
	h.ListWastage(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, int64(2), decode(t, w).Meta.Total)
}
