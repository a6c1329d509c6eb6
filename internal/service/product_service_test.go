package service

import (
	"context"
	"errors"
	"testing"

	"storefront/internal/model"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProductService_GetAll(t *testing.T) {
	logger := zerolog.Nop()
	ctx := context.Background()

	products := []model.Product{
		{ID: "P001", Name: "Tote Bag", Price: 24.50, Stock: 120},
		{ID: "P002", Name: "Bottle", Price: 18.00, Stock: 200},
	}

	repo := new(MockProductRepository)
	repo.On("GetAll", ctx, 20, 0).Return(products, nil)

	svc := NewProductService(repo, logger)

	result, err := svc.GetAll(ctx, 20, 0)

	require.NoError(t, err)
	assert.Equal(t, products, result)
}

func TestProductService_GetAll_NormalizesPagination(t *testing.T) {
	logger := zerolog.Nop()
	ctx := context.Background()

	repo := new(MockProductRepository)
	// Out-of-range inputs fall back to the defaults.
	repo.On("GetAll", ctx, 20, 0).Return([]model.Product{}, nil)

	svc := NewProductService(repo, logger)

	_, err := svc.GetAll(ctx, -5, -10)

	require.NoError(t, err)
	repo.AssertExpectations(t)
}

func TestProductService_GetByID(t *testing.T) {
	logger := zerolog.Nop()
	ctx := context.Background()

	product := &model.Product{ID: "P001", Name: "Tote Bag", Price: 24.50}

	repo := new(MockProductRepository)
	repo.On("GetByID", ctx, "P001").Return(product, nil)

	svc := NewProductService(repo, logger)

	result, err := svc.GetByID(ctx, "P001")

	require.NoError(t, err)
	assert.Equal(t, product, result)
}

func TestProductService_GetByID_NotFound(t *testing.T) {
	logger := zerolog.Nop()
	ctx := context.Background()

	repo := new(MockProductRepository)
	repo.On("GetByID", ctx, "NOPE").Return(nil, nil)

	svc := NewProductService(repo, logger)

	result, err := svc.GetByID(ctx, "NOPE")

	require.NoError(t, err)
	assert.Nil(t, result)
}

func TestProductService_GetAll_RepoError(t *testing.T) {
	logger := zerolog.Nop()
	ctx := context.Background()

	repo := new(MockProductRepository)
	repo.On("GetAll", ctx, 20, 0).Return(nil, errors.New("connection refused"))

	svc := NewProductService(repo, logger)

	result, err := svc.GetAll(ctx, 20, 0)

	assert.Nil(t, result)
	assert.Error(t, err)
}
