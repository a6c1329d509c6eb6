package repository

import (
	"context"

	"storefront/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// ProductRepository defines product data access, including the guarded stock
// mutations used inside the order transaction.
type ProductRepository interface {
	// GetAll retrieves all products with pagination support.
	GetAll(ctx context.Context, limit, offset int) ([]model.Product, error)

	// GetByID retrieves a single product by its ID. Returns nil when absent.
	GetByID(ctx context.Context, id string) (*model.Product, error)

	// GetByIDs retrieves multiple products by their IDs.
	GetByIDs(ctx context.Context, ids []string) ([]model.Product, error)

	// ValidateProductsExist checks if all provided product IDs exist in the
	// database. Returns model.ErrProductNotFound if any does not.
	ValidateProductsExist(ctx context.Context, ids []string) error

	// DecrementStock conditionally decrements stock within the transaction.
	// Returns model.ErrInsufficientStock when the product does not hold the
	// requested quantity; the caller must abort the whole transaction.
	DecrementStock(ctx context.Context, tx pgx.Tx, productID string, quantity int) error

	// RestoreStock returns quantity units to saleable inventory within the
	// transaction. Used when a paid, undelivered order is cancelled.
	RestoreStock(ctx context.Context, tx pgx.Tx, productID string, quantity int) error
}

// CartRepository defines cart and cart-item data access.
type CartRepository interface {
	// BeginTx starts a new database transaction (used by the guest merge).
	BeginTx(ctx context.Context) (pgx.Tx, error)

	// GetByUserID retrieves the user's single cart. Returns nil when absent.
	GetByUserID(ctx context.Context, userID uuid.UUID) (*model.Cart, error)

	// GetGuest retrieves a guest cart by id, only if it is ownerless. A cart
	// id belonging to a user is treated as absent.
	GetGuest(ctx context.Context, cartID uuid.UUID) (*model.Cart, error)

	// Create inserts a new cart row.
	Create(ctx context.Context, cart *model.Cart) error

	// GetItems retrieves all items in a cart.
	GetItems(ctx context.Context, cartID uuid.UUID) ([]model.CartItem, error)

	// UpsertItem adds quantity to the cart line, creating it if needed.
	UpsertItem(ctx context.Context, cartID uuid.UUID, productID string, quantity int) error

	// SetItemQuantity replaces the quantity of an existing cart line.
	SetItemQuantity(ctx context.Context, cartID uuid.UUID, productID string, quantity int) error

	// DeleteItem removes a cart line.
	DeleteItem(ctx context.Context, cartID uuid.UUID, productID string) error

	// ClearItems removes all lines from a cart.
	ClearItems(ctx context.Context, cartID uuid.UUID) error

	// Merge folds the guest cart's lines into the user cart within the
	// transaction, summing quantities for shared products, then deletes the
	// guest cart.
	Merge(ctx context.Context, tx pgx.Tx, guestCartID, userCartID uuid.UUID) error
}

// VoucherRepository defines voucher ledger data access.
type VoucherRepository interface {
	// GetByCode retrieves a voucher by its code. Returns nil when absent.
	GetByCode(ctx context.Context, code string) (*model.Voucher, error)

	// CountUsageByUser counts the user's prior redemptions of the voucher.
	CountUsageByUser(ctx context.Context, voucherID, userID uuid.UUID) (int, error)

	// Redeem records one redemption inside the order transaction: it locks
	// the voucher row, re-checks both usage caps, inserts the usage row and
	// increments the usage counter. Returns model.ErrVoucherExhausted or
	// model.ErrVoucherUserLimit when a concurrent order won the race.
	Redeem(ctx context.Context, tx pgx.Tx, voucherID, userID, orderID uuid.UUID) error

	// Release returns one redemption to the voucher's global capacity within
	// the transaction. Used when an order that redeemed the voucher is
	// cancelled; the per-user count frees up on its own because the usage
	// rows are deleted with the order.
	Release(ctx context.Context, tx pgx.Tx, voucherID uuid.UUID) error
}

// OrderRepository defines order aggregate data access.
type OrderRepository interface {
	// BeginTx starts a new database transaction.
	BeginTx(ctx context.Context) (pgx.Tx, error)

	// CreateOrder inserts a new order within the provided transaction.
	CreateOrder(ctx context.Context, tx pgx.Tx, order *model.Order) error

	// CreateOrderItems inserts the order's item snapshots within the
	// provided transaction.
	CreateOrderItems(ctx context.Context, tx pgx.Tx, items []model.OrderItem) error

	// CreateShippingAddress inserts the order's shipping address within the
	// provided transaction.
	CreateShippingAddress(ctx context.Context, tx pgx.Tx, addr *model.ShippingAddress) error

	// GetByID retrieves an order with its items and shipping address.
	// Returns a nil order when absent.
	GetByID(ctx context.Context, id uuid.UUID) (*model.Order, []model.OrderItem, *model.ShippingAddress, error)

	// GetForUpdate retrieves and row-locks an order within the transaction.
	// Returns nil when absent.
	GetForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*model.Order, error)

	// GetItemsTx retrieves the order's items within the transaction.
	GetItemsTx(ctx context.Context, tx pgx.Tx, orderID uuid.UUID) ([]model.OrderItem, error)

	// GetShippingAddressTx retrieves the order's shipping address within the
	// transaction. Returns nil when absent.
	GetShippingAddressTx(ctx context.Context, tx pgx.Tx, orderID uuid.UUID) (*model.ShippingAddress, error)

	// MarkPaid stamps the order paid with its payment metadata within the
	// provided transaction.
	MarkPaid(ctx context.Context, tx pgx.Tx, order *model.Order) error

	// MarkDelivered stamps the order delivered. Returns
	// model.ErrOrderNotFound when no undelivered order matches.
	MarkDelivered(ctx context.Context, id uuid.UUID) error

	// Delete removes the order aggregate within the provided transaction.
	Delete(ctx context.Context, tx pgx.Tx, id uuid.UUID) error
}

// InvoiceRepository defines invoice data access.
type InvoiceRepository interface {
	// Create inserts the invoice within the provided transaction. Returns
	// false without error when an invoice already exists for the order.
	Create(ctx context.Context, tx pgx.Tx, invoice *model.Invoice) (bool, error)

	// GetByOrderID retrieves the order's invoice. Returns nil when absent.
	GetByOrderID(ctx context.Context, orderID uuid.UUID) (*model.Invoice, error)

	// MarkEmailSent flags the invoice as delivered by email.
	MarkEmailSent(ctx context.Context, id uuid.UUID) error
}
