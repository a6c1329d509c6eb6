package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"storefront/internal/model"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockProductService is a mock implementation of service.ProductService.
type MockProductService struct {
	mock.Mock
}

func (m *MockProductService) GetAll(ctx context.Context, limit, offset int) ([]model.Product, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Product), args.Error(1)
}

func (m *MockProductService) GetByID(ctx context.Context, id string) (*model.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Product), args.Error(1)
}

func TestProductHandler_GetAll(t *testing.T) {
	logger := zerolog.Nop()

	products := []model.Product{
		{ID: "P001", Name: "Tote Bag", Price: 24.50, Stock: 120},
		{ID: "P002", Name: "Bottle", Price: 18.00, Stock: 200},
	}

	svc := new(MockProductService)
	svc.On("GetAll", mock.Anything, 10, 20).Return(products, nil)

	h := NewProductHandler(svc, logger)

	req := httptest.NewRequest(http.MethodGet, "/api/products?limit=10&offset=20", nil)
	rec := httptest.NewRecorder()
	h.GetAll(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var got []model.Product
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
	assert.Len(t, got, 2)
	assert.Equal(t, "P001", got[0].ID)
}

func TestProductHandler_GetByID(t *testing.T) {
	logger := zerolog.Nop()

	svc := new(MockProductService)
	svc.On("GetByID", mock.Anything, "P001").Return(&model.Product{ID: "P001", Name: "Tote Bag"}, nil)

	h := NewProductHandler(svc, logger)

	req := httptest.NewRequest(http.MethodGet, "/api/products/P001", nil)
	rec := httptest.NewRecorder()
	h.GetByID(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestProductHandler_GetByID_NotFound(t *testing.T) {
	logger := zerolog.Nop()

	svc := new(MockProductService)
	svc.On("GetByID", mock.Anything, "NOPE").Return(nil, nil)

	h := NewProductHandler(svc, logger)

	req := httptest.NewRequest(http.MethodGet, "/api/products/NOPE", nil)
	rec := httptest.NewRecorder()
	h.GetByID(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestProductHandler_MethodNotAllowed(t *testing.T) {
	logger := zerolog.Nop()
	h := NewProductHandler(new(MockProductService), logger)

	req := httptest.NewRequest(http.MethodPost, "/api/products", nil)
	rec := httptest.NewRecorder()
	h.GetAll(rec, req)

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
