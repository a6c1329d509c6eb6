package integration

import (
	"context"
	"testing"

	"storefront/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCart_GuestToUserMerge(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	db := SetupTestDB(t)
	env := newTestEnv(t, db)
	ctx := context.Background()
	userID := uuid.New()

	seedProduct(t, db.Pool, "P001", "Tote Bag", 24.50, 100)
	seedProduct(t, db.Pool, "P002", "Bottle", 18.00, 100)
	seedProduct(t, db.Pool, "P003", "Lamp", 42.00, 100)

	// Guest shops anonymously.
	guestCart, err := env.CartSvc.Resolve(ctx, nil, nil)
	require.NoError(t, err)
	require.True(t, guestCart.IsGuest())
	require.NoError(t, env.CartSvc.AddItem(ctx, guestCart.ID, &model.CartItemRequest{ProductID: "P001", Quantity: 2}))
	require.NoError(t, env.CartSvc.AddItem(ctx, guestCart.ID, &model.CartItemRequest{ProductID: "P003", Quantity: 1}))

	// The user already had a cart with an overlapping line.
	userCart, err := env.CartSvc.Resolve(ctx, &userID, nil)
	require.NoError(t, err)
	require.NoError(t, env.CartSvc.AddItem(ctx, userCart.ID, &model.CartItemRequest{ProductID: "P001", Quantity: 1}))
	require.NoError(t, env.CartSvc.AddItem(ctx, userCart.ID, &model.CartItemRequest{ProductID: "P002", Quantity: 1}))

	merged, err := env.CartSvc.MergeGuestIntoUser(ctx, guestCart.ID, userID)
	require.NoError(t, err)
	assert.Equal(t, userCart.ID, merged.ID)

	priced, err := env.CartSvc.GetPricedCart(ctx, merged.ID)
	require.NoError(t, err)
	require.Len(t, priced.Items, 3)

	byProduct := make(map[string]model.PricedCartItem)
	for _, item := range priced.Items {
		byProduct[item.ProductID] = item
	}
	// Shared line quantities sum; distinct lines carry over.
	assert.Equal(t, 3, byProduct["P001"].Quantity)
	assert.Equal(t, 1, byProduct["P002"].Quantity)
	assert.Equal(t, 1, byProduct["P003"].Quantity)

	// The guest cart is gone, so its id can no longer be resolved.
	resolved, err := env.CartSvc.Resolve(ctx, nil, &guestCart.ID)
	require.NoError(t, err)
	assert.NotEqual(t, guestCart.ID, resolved.ID)

	_, err = env.CartSvc.MergeGuestIntoUser(ctx, guestCart.ID, userID)
	assert.ErrorIs(t, err, model.ErrCartNotFound)
}

func TestCart_GuestCookieCannotClaimUserCart(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	db := SetupTestDB(t)
	env := newTestEnv(t, db)
	ctx := context.Background()
	userID := uuid.New()

	seedProduct(t, db.Pool, "P001", "Tote Bag", 24.50, 100)

	userCart, err := env.CartSvc.Resolve(ctx, &userID, nil)
	require.NoError(t, err)
	require.NoError(t, env.CartSvc.AddItem(ctx, userCart.ID, &model.CartItemRequest{ProductID: "P001", Quantity: 5}))

	// A guest presenting the user's cart id gets a fresh empty cart instead.
	resolved, err := env.CartSvc.Resolve(ctx, nil, &userCart.ID)
	require.NoError(t, err)
	assert.NotEqual(t, userCart.ID, resolved.ID)
	assert.True(t, resolved.IsGuest())

	priced, err := env.CartSvc.GetPricedCart(ctx, resolved.ID)
	require.NoError(t, err)
	assert.Empty(t, priced.Items)
}

func TestCart_EffectiveProductDiscountApplied(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	db := SetupTestDB(t)
	env := newTestEnv(t, db)
	ctx := context.Background()

	seedProduct(t, db.Pool, "P001", "Tote Bag", 50.00, 100)
	_, err := db.Pool.Exec(ctx, `
		UPDATE products
		SET discount_type = 'percentage', discount_value = 20,
			discount_starts_at = NOW() - INTERVAL '1 hour',
			discount_ends_at = NOW() + INTERVAL '1 hour'
		WHERE id = 'P001'
	`)
	require.NoError(t, err)

	cart, err := env.CartSvc.Resolve(ctx, nil, nil)
	require.NoError(t, err)
	require.NoError(t, env.CartSvc.AddItem(ctx, cart.ID, &model.CartItemRequest{ProductID: "P001", Quantity: 2}))

	priced, err := env.CartSvc.GetPricedCart(ctx, cart.ID)
	require.NoError(t, err)
	require.Len(t, priced.Items, 1)
	assert.Equal(t, 40.0, priced.Items[0].UnitPrice)
	assert.Equal(t, 80.0, priced.Subtotal)
}
