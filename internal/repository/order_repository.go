package repository

import (
	"context"
	"fmt"
	"time"

	"storefront/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// orderRepository implements the OrderRepository interface using PostgreSQL.
type orderRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewOrderRepository creates a new PostgreSQL-backed order repository.
func NewOrderRepository(pool *pgxpool.Pool, logger zerolog.Logger) OrderRepository {
	return &orderRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "order").Logger(),
	}
}

const orderColumns = `id, order_number, user_id, voucher_id, voucher_discount, payment_method,
		tax_price, shipping_price, total_price, is_paid, paid_at, is_delivered, delivered_at,
		payment_result_id, payment_status, payment_email, created_at, updated_at`

func scanOrder(row pgx.Row, o *model.Order) error {
	return row.Scan(
		&o.ID,
		&o.OrderNumber,
		&o.UserID,
		&o.VoucherID,
		&o.VoucherDiscount,
		&o.PaymentMethod,
		&o.TaxPrice,
		&o.ShippingPrice,
		&o.TotalPrice,
		&o.IsPaid,
		&o.PaidAt,
		&o.IsDelivered,
		&o.DeliveredAt,
		&o.PaymentResultID,
		&o.PaymentStatus,
		&o.PaymentEmail,
		&o.CreatedAt,
		&o.UpdatedAt,
	)
}

// BeginTx starts a new database transaction.
func (r *orderRepository) BeginTx(ctx context.Context) (pgx.Tx, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to begin transaction")
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	return tx, nil
}

// CreateOrder inserts a new order within the provided transaction.
func (r *orderRepository) CreateOrder(ctx context.Context, tx pgx.Tx, order *model.Order) error {
	query := `
		INSERT INTO orders (id, order_number, user_id, voucher_id, voucher_discount, payment_method,
			tax_price, shipping_price, total_price, is_paid, is_delivered, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`

	_, err := tx.Exec(ctx, query,
		order.ID,
		order.OrderNumber,
		order.UserID,
		order.VoucherID,
		order.VoucherDiscount,
		order.PaymentMethod,
		order.TaxPrice,
		order.ShippingPrice,
		order.TotalPrice,
		order.IsPaid,
		order.IsDelivered,
		order.CreatedAt,
		order.UpdatedAt,
	)
	if err != nil {
		r.logger.Error().
			Err(err).
			Str("order_id", order.ID.String()).
			Str("order_number", order.OrderNumber).
			Msg("failed to create order")
		return fmt.Errorf("failed to create order: %w", err)
	}

	r.logger.Debug().
		Str("order_id", order.ID.String()).
		Str("order_number", order.OrderNumber).
		Msg("order created")

	return nil
}

// CreateOrderItems inserts the order's item snapshots within the provided transaction.
func (r *orderRepository) CreateOrderItems(ctx context.Context, tx pgx.Tx, items []model.OrderItem) error {
	if len(items) == 0 {
		return nil
	}

	query := `
		INSERT INTO order_items (id, order_id, product_id, name, image_url, price, quantity)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	batch := &pgx.Batch{}
	for _, item := range items {
		batch.Queue(query, item.ID, item.OrderID, item.ProductID, item.Name, item.ImageURL, item.Price, item.Quantity)
	}

	results := tx.SendBatch(ctx, batch)
	defer results.Close()

	for i := 0; i < len(items); i++ {
		_, err := results.Exec()
		if err != nil {
			r.logger.Error().
				Err(err).
				Str("order_id", items[i].OrderID.String()).
				Str("product_id", items[i].ProductID).
				Msg("failed to create order item")
			return fmt.Errorf("failed to create order item: %w", err)
		}
	}

	r.logger.Debug().
		Int("count", len(items)).
		Msg("order items created")

	return nil
}

// CreateShippingAddress inserts the order's shipping address within the provided transaction.
func (r *orderRepository) CreateShippingAddress(ctx context.Context, tx pgx.Tx, addr *model.ShippingAddress) error {
	query := `
		INSERT INTO shipping_addresses (id, order_id, address, city, postal_code, country)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := tx.Exec(ctx, query, addr.ID, addr.OrderID, addr.Address, addr.City, addr.PostalCode, addr.Country)
	if err != nil {
		r.logger.Error().
			Err(err).
			Str("order_id", addr.OrderID.String()).
			Msg("failed to create shipping address")
		return fmt.Errorf("failed to create shipping address: %w", err)
	}

	return nil
}

// GetByID retrieves an order with its items and shipping address.
func (r *orderRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Order, []model.OrderItem, *model.ShippingAddress, error) {
	orderQuery := `
		SELECT ` + orderColumns + `
		FROM orders
		WHERE id = $1
	`

	var order model.Order
	err := scanOrder(r.pool.QueryRow(ctx, orderQuery, id), &order)
	if err != nil {
		if err == pgx.ErrNoRows {
			r.logger.Debug().Str("order_id", id.String()).Msg("order not found")
			return nil, nil, nil, nil
		}
		r.logger.Error().Err(err).Str("order_id", id.String()).Msg("failed to query order")
		return nil, nil, nil, fmt.Errorf("failed to query order: %w", err)
	}

	items, err := r.queryItems(ctx, r.pool, id)
	if err != nil {
		return nil, nil, nil, err
	}

	addrQuery := `
		SELECT id, order_id, address, city, postal_code, country
		FROM shipping_addresses
		WHERE order_id = $1
	`

	var addr model.ShippingAddress
	err = r.pool.QueryRow(ctx, addrQuery, id).Scan(&addr.ID, &addr.OrderID, &addr.Address, &addr.City, &addr.PostalCode, &addr.Country)
	if err != nil {
		if err == pgx.ErrNoRows {
			return &order, items, nil, nil
		}
		r.logger.Error().Err(err).Str("order_id", id.String()).Msg("failed to query shipping address")
		return nil, nil, nil, fmt.Errorf("failed to query shipping address: %w", err)
	}

	return &order, items, &addr, nil
}

// GetForUpdate retrieves and row-locks an order within the transaction.
func (r *orderRepository) GetForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*model.Order, error) {
	query := `
		SELECT ` + orderColumns + `
		FROM orders
		WHERE id = $1
		FOR UPDATE
	`

	var order model.Order
	err := scanOrder(tx.QueryRow(ctx, query, id), &order)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		r.logger.Error().Err(err).Str("order_id", id.String()).Msg("failed to lock order row")
		return nil, fmt.Errorf("failed to lock order row: %w", err)
	}

	return &order, nil
}

// GetItemsTx retrieves the order's items within the transaction.
func (r *orderRepository) GetItemsTx(ctx context.Context, tx pgx.Tx, orderID uuid.UUID) ([]model.OrderItem, error) {
	return r.queryItems(ctx, tx, orderID)
}

// GetShippingAddressTx retrieves the order's shipping address within the transaction.
func (r *orderRepository) GetShippingAddressTx(ctx context.Context, tx pgx.Tx, orderID uuid.UUID) (*model.ShippingAddress, error) {
	query := `
		SELECT id, order_id, address, city, postal_code, country
		FROM shipping_addresses
		WHERE order_id = $1
	`

	var addr model.ShippingAddress
	err := tx.QueryRow(ctx, query, orderID).Scan(&addr.ID, &addr.OrderID, &addr.Address, &addr.City, &addr.PostalCode, &addr.Country)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		r.logger.Error().Err(err).Str("order_id", orderID.String()).Msg("failed to query shipping address")
		return nil, fmt.Errorf("failed to query shipping address: %w", err)
	}

	return &addr, nil
}

// querier is the subset of pgxpool.Pool and pgx.Tx used by shared reads.
type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

func (r *orderRepository) queryItems(ctx context.Context, q querier, orderID uuid.UUID) ([]model.OrderItem, error) {
	query := `
		SELECT id, order_id, product_id, name, image_url, price, quantity
		FROM order_items
		WHERE order_id = $1
		ORDER BY id
	`

	rows, err := q.Query(ctx, query, orderID)
	if err != nil {
		r.logger.Error().Err(err).Str("order_id", orderID.String()).Msg("failed to query order items")
		return nil, fmt.Errorf("failed to query order items: %w", err)
	}
	defer rows.Close()

	var items []model.OrderItem
	for rows.Next() {
		var item model.OrderItem
		err := rows.Scan(&item.ID, &item.OrderID, &item.ProductID, &item.Name, &item.ImageURL, &item.Price, &item.Quantity)
		if err != nil {
			r.logger.Error().Err(err).Msg("failed to scan order item row")
			return nil, fmt.Errorf("failed to scan order item: %w", err)
		}
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating order item rows")
		return nil, fmt.Errorf("error iterating order items: %w", err)
	}

	return items, nil
}

// MarkPaid stamps the order paid with its payment metadata within the provided transaction.
func (r *orderRepository) MarkPaid(ctx context.Context, tx pgx.Tx, order *model.Order) error {
	query := `
		UPDATE orders
		SET is_paid = TRUE, paid_at = $2, payment_result_id = $3, payment_status = $4,
			payment_email = $5, updated_at = $6
		WHERE id = $1
	`

	tag, err := tx.Exec(ctx, query,
		order.ID,
		order.PaidAt,
		order.PaymentResultID,
		order.PaymentStatus,
		order.PaymentEmail,
		time.Now(),
	)
	if err != nil {
		r.logger.Error().Err(err).Str("order_id", order.ID.String()).Msg("failed to mark order paid")
		return fmt.Errorf("failed to mark order paid: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return model.ErrOrderNotFound
	}

	return nil
}

// MarkDelivered stamps the order delivered. Delivered is terminal, so the
// update matches only undelivered orders.
func (r *orderRepository) MarkDelivered(ctx context.Context, id uuid.UUID) error {
	query := `
		UPDATE orders
		SET is_delivered = TRUE, delivered_at = NOW(), updated_at = NOW()
		WHERE id = $1 AND is_delivered = FALSE
	`

	tag, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		r.logger.Error().Err(err).Str("order_id", id.String()).Msg("failed to mark order delivered")
		return fmt.Errorf("failed to mark order delivered: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return model.ErrOrderNotFound
	}

	r.logger.Info().Str("order_id", id.String()).Msg("order marked delivered")

	return nil
}

// Delete removes the order aggregate within the provided transaction. Items,
// shipping address and voucher usage rows cascade; an invoice is detached
// (order_id set null), never deleted.
func (r *orderRepository) Delete(ctx context.Context, tx pgx.Tx, id uuid.UUID) error {
	query := `
		DELETE FROM orders
		WHERE id = $1
	`

	tag, err := tx.Exec(ctx, query, id)
	if err != nil {
		r.logger.Error().Err(err).Str("order_id", id.String()).Msg("failed to delete order")
		return fmt.Errorf("failed to delete order: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return model.ErrOrderNotFound
	}

	r.logger.Info().Str("order_id", id.String()).Msg("order deleted")

	return nil
}
