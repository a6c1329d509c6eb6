package service

import (
	"context"

	"storefront/internal/followup"
	"storefront/internal/model"

	"github.com/google/uuid"
)

// ProductService defines operations for catalogue reads.
type ProductService interface {
	// GetAll retrieves all products with pagination.
	GetAll(ctx context.Context, limit, offset int) ([]model.Product, error)

	// GetByID retrieves a single product by ID.
	GetByID(ctx context.Context, id string) (*model.Product, error)
}

// CartService defines the cart aggregator operations.
type CartService interface {
	// Resolve finds the caller's cart, creating one when needed. An
	// authenticated user gets their single cart; a guest gets the cart named
	// by their cookie only if that cart is ownerless, otherwise a fresh one.
	Resolve(ctx context.Context, userID, guestCartID *uuid.UUID) (*model.Cart, error)

	// GetPricedCart resolves a cart into priced line items, applying any
	// active product discounts.
	GetPricedCart(ctx context.Context, cartID uuid.UUID) (*model.PricedCart, error)

	// AddItem upserts a cart line, accumulating quantity.
	AddItem(ctx context.Context, cartID uuid.UUID, req *model.CartItemRequest) error

	// SetItemQuantity replaces a line's quantity; zero or less removes it.
	SetItemQuantity(ctx context.Context, cartID uuid.UUID, productID string, quantity int) error

	// RemoveItem removes a cart line.
	RemoveItem(ctx context.Context, cartID uuid.UUID, productID string) error

	// MergeGuestIntoUser folds a guest cart into the user's cart in one
	// transaction and deletes the guest cart. Returns the user's cart.
	MergeGuestIntoUser(ctx context.Context, guestCartID, userID uuid.UUID) (*model.Cart, error)

	// ClearUserCart empties the user's cart. Used as a post-commit follow-up
	// after order placement; absence of a cart is not an error.
	ClearUserCart(ctx context.Context, userID uuid.UUID) error
}

// OrderService defines the order transaction coordinator operations.
type OrderService interface {
	// PlaceOrder executes the atomic placement sequence: voucher validation,
	// order aggregate creation, guarded stock decrements and voucher
	// redemption, all in one transaction.
	PlaceOrder(ctx context.Context, userID uuid.UUID, req *model.OrderRequest) (*model.OrderResponse, error)

	// GetByID retrieves an order aggregate. Returns nil when absent.
	GetByID(ctx context.Context, id uuid.UUID) (*model.OrderResponse, error)

	// CancelOrder deletes an undelivered order, restoring stock for every
	// line item when the order was paid. Delivered orders are refused.
	CancelOrder(ctx context.Context, id uuid.UUID) error
}

// PaymentService defines the payment/invoice finalizer operations.
type PaymentService interface {
	// MarkPaid stamps the order paid and generates its invoice in one
	// transaction. Idempotent: repeating the callback returns the existing
	// invoice without creating a second one.
	MarkPaid(ctx context.Context, orderID uuid.UUID, req *model.PaymentRequest) (*model.Invoice, error)

	// MarkDelivered transitions the order to its terminal delivered state.
	MarkDelivered(ctx context.Context, orderID uuid.UUID) error
}

// FollowupQueue accepts post-commit actions. Satisfied by *followup.Queue.
type FollowupQueue interface {
	Enqueue(action followup.Action)
}
