package traceability

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/papermill/portal/internal/domain/inventory"
	"github.com/papermill/portal/internal/domain/shared"
	"github.com/papermill/portal/internal/infrastructure/backend"
)

type mockBackend struct {
	mock.Mock
}

func (m *mockBackend) BarcodeHierarchy(ctx context.Context, code string) ([]inventory.Roll, error) {
	args := m.Called(ctx, code)
	if rolls := args.Get(0); rolls != nil {
		return rolls.([]inventory.Roll), args.Error(1)
	}
	return nil, args.Error(1)
}

func family() []inventory.Roll {
	return []inventory.Roll{
		{ID: "j1", BarcodeID: "JR_00001", RollType: inventory.RollTypeJumbo},
		{ID: "s1", BarcodeID: "SET_00001", RollType: inventory.RollTypeSet, ParentID: "j1"},
		{ID: "c1", BarcodeID: "CR_00001", RollType: inventory.RollTypeCut, ParentID: "s1", WeightKg: decimal.NewFromInt(80)},
		{ID: "c2", BarcodeID: "CR_00002", RollType: inventory.RollTypeCut, ParentID: "s1", WeightKg: decimal.NewFromInt(70)},
	}
}

func TestLookup(t *testing.T) {
	b := new(mockBackend)
	b.On("BarcodeHierarchy", mock.Anything, "CR_00002").Return(family(), nil)
	svc := NewService(b, nil)

	res, err := svc.Lookup(context.Background(), "  CR_00002 ")
	require.NoError(t, err)

	assert.Equal(t, "c2", res.Matched.ID)
	assert.Equal(t, 4, res.RollCount)
	require.Len(t, res.Breadcrumb, 3)
	assert.Equal(t, "JR_00001", res.Breadcrumb[0].Code)
	assert.Equal(t, "Jumbo Roll", res.Breadcrumb[0].Label)
	assert.Equal(t, "CR_00002", res.Breadcrumb[2].Code)
	assert.Equal(t, 0, res.Lines[0].Depth)
	assert.Equal(t, 2, res.Lines[3].Depth)
	assert.Equal(t, "150", res.Roots[0].CutRollWeight.String())
	b.AssertExpectations(t)
}

func TestLookup_Errors(t *testing.T) {
	t.Run("empty code never reaches the backend", func(t *testing.T) {
		b := new(mockBackend)
		_, err := NewService(b, nil).Lookup(context.Background(), "   ")
		assert.True(t, errors.Is(err, shared.ErrInvalidInput))
		b.AssertNotCalled(t, "BarcodeHierarchy", mock.Anything, mock.Anything)
	})

	t.Run("backend 404 is not found", func(t *testing.T) {
		b := new(mockBackend)
		b.On("BarcodeHierarchy", mock.Anything, "XX").Return(nil, &backend.APIError{Status: 404, Message: "missing"})
		_, err := NewService(b, nil).Lookup(context.Background(), "XX")
		require.True(t, errors.Is(err, shared.ErrNotFound))
		assert.Contains(t, err.Error(), "No roll found for code XX")
	})

	t.Run("family without the code is not found", func(t *testing.T) {
		b := new(mockBackend)
		b.On("BarcodeHierarchy", mock.Anything, "CR_99999").Return(family(), nil)
		_, err := NewService(b, nil).Lookup(context.Background(), "CR_99999")
		assert.True(t, errors.Is(err, shared.ErrNotFound))
	})

	t.Run("unreachable backend", func(t *testing.T) {
		b := new(mockBackend)
		b.On("BarcodeHierarchy", mock.Anything, "CR_00001").Return(nil, backend.ErrBackendUnreachable)
		_, err := NewService(b, nil).Lookup(context.Background(), "CR_00001")
		assert.True(t, errors.Is(err, shared.ErrBackendUnavailable))
	})
}
