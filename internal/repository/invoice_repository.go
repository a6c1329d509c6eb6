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

// invoiceRepository implements the InvoiceRepository interface using PostgreSQL.
type invoiceRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewInvoiceRepository creates a new PostgreSQL-backed invoice repository.
func NewInvoiceRepository(pool *pgxpool.Pool, logger zerolog.Logger) InvoiceRepository {
	return &invoiceRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "invoice").Logger(),
	}
}

// Create inserts the invoice within the provided transaction. ON CONFLICT on
// the unique order_id makes invoice generation idempotent under retried
// payment callbacks: the second attempt inserts nothing and returns false.
func (r *invoiceRepository) Create(ctx context.Context, tx pgx.Tx, invoice *model.Invoice) (bool, error) {
	query := `
		INSERT INTO invoices (id, order_id, invoice_number, subtotal, tax, shipping, total,
			payment_status, billing_address, shipping_address, email_sent, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (order_id) DO NOTHING
	`

	tag, err := tx.Exec(ctx, query,
		invoice.ID,
		invoice.OrderID,
		invoice.InvoiceNumber,
		invoice.Subtotal,
		invoice.Tax,
		invoice.Shipping,
		invoice.Total,
		invoice.PaymentStatus,
		invoice.BillingAddress,
		invoice.ShippingAddress,
		invoice.EmailSent,
		invoice.CreatedAt,
	)
	if err != nil {
		r.logger.Error().
			Err(err).
			Str("order_id", invoice.OrderID.String()).
			Msg("failed to create invoice")
		return false, fmt.Errorf("failed to create invoice: %w", err)
	}

	created := tag.RowsAffected() > 0
	if !created {
		r.logger.Warn().
			Str("order_id", invoice.OrderID.String()).
			Msg("invoice already exists for order, skipping creation")
	} else {
		r.logger.Info().
			Str("order_id", invoice.OrderID.String()).
			Str("invoice_number", invoice.InvoiceNumber).
			Msg("invoice created")
	}

	return created, nil
}

// GetByOrderID retrieves the order's invoice.
func (r *invoiceRepository) GetByOrderID(ctx context.Context, orderID uuid.UUID) (*model.Invoice, error) {
	query := `
		SELECT id, order_id, invoice_number, subtotal, tax, shipping, total,
			payment_status, billing_address, shipping_address, email_sent, created_at
		FROM invoices
		WHERE order_id = $1
	`

	var inv model.Invoice
	err := r.pool.QueryRow(ctx, query, orderID).Scan(
		&inv.ID,
		&inv.OrderID,
		&inv.InvoiceNumber,
		&inv.Subtotal,
		&inv.Tax,
		&inv.Shipping,
		&inv.Total,
		&inv.PaymentStatus,
		&inv.BillingAddress,
		&inv.ShippingAddress,
		&inv.EmailSent,
		&inv.CreatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		r.logger.Error().Err(err).Str("order_id", orderID.String()).Msg("failed to query invoice")
		return nil, fmt.Errorf("failed to query invoice: %w", err)
	}

	return &inv, nil
}

// MarkEmailSent flags the invoice as delivered by email.
func (r *invoiceRepository) MarkEmailSent(ctx context.Context, id uuid.UUID) error {
	query := `
		UPDATE invoices
		SET email_sent = TRUE
		WHERE id = $1
	`

	_, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		r.logger.Error().Err(err).Str("invoice_id", id.String()).Msg("failed to mark invoice email sent")
		return fmt.Errorf("failed to mark invoice email sent: %w", err)
	}

	return nil
}
