package repository

import (
	"context"
	"fmt"

	"storefront/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// cartRepository implements the CartRepository interface using PostgreSQL.
type cartRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewCartRepository creates a new PostgreSQL-backed cart repository.
func NewCartRepository(pool *pgxpool.Pool, logger zerolog.Logger) CartRepository {
	return &cartRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "cart").Logger(),
	}
}

// BeginTx starts a new database transaction.
func (r *cartRepository) BeginTx(ctx context.Context) (pgx.Tx, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to begin transaction")
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	return tx, nil
}

// GetByUserID retrieves the user's single cart.
func (r *cartRepository) GetByUserID(ctx context.Context, userID uuid.UUID) (*model.Cart, error) {
	query := `
		SELECT id, user_id, created_at
		FROM carts
		WHERE user_id = $1
	`

	var cart model.Cart
	err := r.pool.QueryRow(ctx, query, userID).Scan(&cart.ID, &cart.UserID, &cart.CreatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		r.logger.Error().Err(err).Str("user_id", userID.String()).Msg("failed to query user cart")
		return nil, fmt.Errorf("failed to query user cart: %w", err)
	}

	return &cart, nil
}

// GetGuest retrieves a guest cart by id. The user_id IS NULL predicate is the
// defense against a client presenting another user's cart id.
func (r *cartRepository) GetGuest(ctx context.Context, cartID uuid.UUID) (*model.Cart, error) {
	query := `
		SELECT id, user_id, created_at
		FROM carts
		WHERE id = $1 AND user_id IS NULL
	`

	var cart model.Cart
	err := r.pool.QueryRow(ctx, query, cartID).Scan(&cart.ID, &cart.UserID, &cart.CreatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		r.logger.Error().Err(err).Str("cart_id", cartID.String()).Msg("failed to query guest cart")
		return nil, fmt.Errorf("failed to query guest cart: %w", err)
	}

	return &cart, nil
}

// Create inserts a new cart row.
func (r *cartRepository) Create(ctx context.Context, cart *model.Cart) error {
	query := `
		INSERT INTO carts (id, user_id, created_at)
		VALUES ($1, $2, $3)
	`

	_, err := r.pool.Exec(ctx, query, cart.ID, cart.UserID, cart.CreatedAt)
	if err != nil {
		r.logger.Error().Err(err).Str("cart_id", cart.ID.String()).Msg("failed to create cart")
		return fmt.Errorf("failed to create cart: %w", err)
	}

	r.logger.Debug().
		Str("cart_id", cart.ID.String()).
		Bool("guest", cart.IsGuest()).
		Msg("cart created")

	return nil
}

// GetItems retrieves all items in a cart.
func (r *cartRepository) GetItems(ctx context.Context, cartID uuid.UUID) ([]model.CartItem, error) {
	query := `
		SELECT id, cart_id, product_id, quantity
		FROM cart_items
		WHERE cart_id = $1
		ORDER BY product_id
	`

	rows, err := r.pool.Query(ctx, query, cartID)
	if err != nil {
		r.logger.Error().Err(err).Str("cart_id", cartID.String()).Msg("failed to query cart items")
		return nil, fmt.Errorf("failed to query cart items: %w", err)
	}
	defer rows.Close()

	var items []model.CartItem
	for rows.Next() {
		var item model.CartItem
		if err := rows.Scan(&item.ID, &item.CartID, &item.ProductID, &item.Quantity); err != nil {
			r.logger.Error().Err(err).Msg("failed to scan cart item row")
			return nil, fmt.Errorf("failed to scan cart item: %w", err)
		}
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating cart item rows")
		return nil, fmt.Errorf("error iterating cart items: %w", err)
	}

	return items, nil
}

// UpsertItem adds quantity to the cart line, creating it if needed.
func (r *cartRepository) UpsertItem(ctx context.Context, cartID uuid.UUID, productID string, quantity int) error {
	query := `
		INSERT INTO cart_items (id, cart_id, product_id, quantity)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (cart_id, product_id)
		DO UPDATE SET quantity = cart_items.quantity + EXCLUDED.quantity
	`

	_, err := r.pool.Exec(ctx, query, uuid.New(), cartID, productID, quantity)
	if err != nil {
		r.logger.Error().
			Err(err).
			Str("cart_id", cartID.String()).
			Str("product_id", productID).
			Msg("failed to upsert cart item")
		return fmt.Errorf("failed to upsert cart item: %w", err)
	}

	return nil
}

// SetItemQuantity replaces the quantity of an existing cart line.
func (r *cartRepository) SetItemQuantity(ctx context.Context, cartID uuid.UUID, productID string, quantity int) error {
	query := `
		UPDATE cart_items
		SET quantity = $3
		WHERE cart_id = $1 AND product_id = $2
	`

	tag, err := r.pool.Exec(ctx, query, cartID, productID, quantity)
	if err != nil {
		r.logger.Error().
			Err(err).
			Str("cart_id", cartID.String()).
			Str("product_id", productID).
			Msg("failed to set cart item quantity")
		return fmt.Errorf("failed to set cart item quantity: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return model.ErrProductNotFound
	}

	return nil
}

// DeleteItem removes a cart line.
func (r *cartRepository) DeleteItem(ctx context.Context, cartID uuid.UUID, productID string) error {
	query := `
		DELETE FROM cart_items
		WHERE cart_id = $1 AND product_id = $2
	`

	_, err := r.pool.Exec(ctx, query, cartID, productID)
	if err != nil {
		r.logger.Error().
			Err(err).
			Str("cart_id", cartID.String()).
			Str("product_id", productID).
			Msg("failed to delete cart item")
		return fmt.Errorf("failed to delete cart item: %w", err)
	}

	return nil
}

// ClearItems removes all lines from a cart.
func (r *cartRepository) ClearItems(ctx context.Context, cartID uuid.UUID) error {
	query := `
		DELETE FROM cart_items
		WHERE cart_id = $1
	`

	_, err := r.pool.Exec(ctx, query, cartID)
	if err != nil {
		r.logger.Error().Err(err).Str("cart_id", cartID.String()).Msg("failed to clear cart items")
		return fmt.Errorf("failed to clear cart items: %w", err)
	}

	return nil
}

// Merge folds the guest cart into the user cart within the transaction.
// Quantities are summed for products present in both carts, remaining guest
// lines are moved over, and the guest cart row is deleted.
func (r *cartRepository) Merge(ctx context.Context, tx pgx.Tx, guestCartID, userCartID uuid.UUID) error {
	sumShared := `
		UPDATE cart_items u
		SET quantity = u.quantity + g.quantity
		FROM cart_items g
		WHERE u.cart_id = $1 AND g.cart_id = $2 AND u.product_id = g.product_id
	`
	if _, err := tx.Exec(ctx, sumShared, userCartID, guestCartID); err != nil {
		r.logger.Error().Err(err).Msg("failed to sum shared cart lines")
		return fmt.Errorf("failed to sum shared cart lines: %w", err)
	}

	dropMerged := `
		DELETE FROM cart_items g
		WHERE g.cart_id = $2
		AND EXISTS (
			SELECT 1 FROM cart_items u
			WHERE u.cart_id = $1 AND u.product_id = g.product_id
		)
	`
	if _, err := tx.Exec(ctx, dropMerged, userCartID, guestCartID); err != nil {
		r.logger.Error().Err(err).Msg("failed to drop merged guest lines")
		return fmt.Errorf("failed to drop merged guest lines: %w", err)
	}

	moveRest := `
		UPDATE cart_items
		SET cart_id = $1
		WHERE cart_id = $2
	`
	if _, err := tx.Exec(ctx, moveRest, userCartID, guestCartID); err != nil {
		r.logger.Error().Err(err).Msg("failed to move guest cart lines")
		return fmt.Errorf("failed to move guest cart lines: %w", err)
	}

	dropCart := `
		DELETE FROM carts
		WHERE id = $1 AND user_id IS NULL
	`
	if _, err := tx.Exec(ctx, dropCart, guestCartID); err != nil {
		r.logger.Error().Err(err).Msg("failed to delete guest cart")
		return fmt.Errorf("failed to delete guest cart: %w", err)
	}

	r.logger.Debug().
		Str("guest_cart_id", guestCartID.String()).
		Str("user_cart_id", userCartID.String()).
		Msg("guest cart merged")

	return nil
}
