package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"storefront/internal/email"
	"storefront/internal/followup"
	"storefront/internal/model"
	"storefront/internal/numbering"
	"storefront/internal/repository"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// paymentService implements PaymentService. Marking an order paid and
// generating its invoice happen in one transaction so the two never diverge.
type paymentService struct {
	orderRepo   repository.OrderRepository
	invoiceRepo repository.InvoiceRepository
	sender      email.Sender
	queue       FollowupQueue
	logger      zerolog.Logger
}

// NewPaymentService creates a new payment service.
func NewPaymentService(
	orderRepo repository.OrderRepository,
	invoiceRepo repository.InvoiceRepository,
	sender email.Sender,
	queue FollowupQueue,
	logger zerolog.Logger,
) PaymentService {
	return &paymentService{
		orderRepo:   orderRepo,
		invoiceRepo: invoiceRepo,
		sender:      sender,
		queue:       queue,
		logger:      logger.With().Str("service", "payment").Logger(),
	}
}

// MarkPaid stamps the order paid and generates its invoice. A repeated
// callback for an already-paid order returns the existing invoice; the unique
// constraint on invoices.order_id backs this up at the database level.
func (s *paymentService) MarkPaid(ctx context.Context, orderID uuid.UUID, req *model.PaymentRequest) (*model.Invoice, error) {
	tx, err := s.orderRepo.BeginTx(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to begin transaction")
		return nil, fmt.Errorf("failed to mark order paid: %w", err)
	}

	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				s.logger.Error().Err(rbErr).Msg("failed to rollback transaction")
			}
		}
	}()

	order, err := s.orderRepo.GetForUpdate(ctx, tx, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to mark order paid: %w", err)
	}
	if order == nil {
		err = model.ErrOrderNotFound
		return nil, err
	}

	if order.IsPaid {
		// Retried payment callback. Release the lock and hand back the
		// invoice that was generated with the original payment.
		if rbErr := tx.Rollback(ctx); rbErr != nil {
			s.logger.Error().Err(rbErr).Msg("failed to rollback transaction")
		}

		s.logger.Info().
			Str("order_id", orderID.String()).
			Msg("order already paid, returning existing invoice")

		invoice, getErr := s.invoiceRepo.GetByOrderID(ctx, orderID)
		if getErr != nil {
			return nil, fmt.Errorf("failed to load existing invoice: %w", getErr)
		}
		return invoice, nil
	}

	now := time.Now()
	order.IsPaid = true
	order.PaidAt = &now
	if req != nil {
		order.PaymentResultID = req.PaymentResultID
		order.PaymentStatus = req.PaymentStatus
		order.PaymentEmail = req.PaymentEmail
	}

	if err = s.orderRepo.MarkPaid(ctx, tx, order); err != nil {
		return nil, fmt.Errorf("failed to mark order paid: %w", err)
	}

	var invoice *model.Invoice
	invoice, err = s.buildInvoice(ctx, tx, order, now)
	if err != nil {
		return nil, err
	}

	var created bool
	created, err = s.invoiceRepo.Create(ctx, tx, invoice)
	if err != nil {
		return nil, fmt.Errorf("failed to generate invoice: %w", err)
	}

	if err = tx.Commit(ctx); err != nil {
		s.logger.Error().Err(err).Str("order_id", orderID.String()).Msg("failed to commit payment")
		return nil, fmt.Errorf("failed to mark order paid: %w", err)
	}

	if !created {
		// The transaction is already committed; a lookup failure here must
		// not reach the deferred rollback.
		existing, getErr := s.invoiceRepo.GetByOrderID(ctx, orderID)
		if getErr != nil {
			return nil, fmt.Errorf("failed to load existing invoice: %w", getErr)
		}
		return existing, nil
	}

	s.logger.Info().
		Str("order_id", orderID.String()).
		Str("invoice_number", invoice.InvoiceNumber).
		Msg("order paid and invoiced")

	// Invoice delivery is fire-and-forget relative to the committed payment.
	if s.queue != nil && order.PaymentEmail != nil && *order.PaymentEmail != "" {
		recipient := *order.PaymentEmail
		inv := invoice
		s.queue.Enqueue(followup.Action{
			Name: "send-invoice-email",
			Run: func(ctx context.Context) error {
				if sendErr := s.sender.SendInvoice(ctx, recipient, inv); sendErr != nil {
					return sendErr
				}
				return s.invoiceRepo.MarkEmailSent(ctx, inv.ID)
			},
		})
	}

	return invoice, nil
}

// buildInvoice snapshots the order's financials and addresses. Subtotal is
// derived as total - tax - shipping, so the invoice mirrors exactly what the
// customer was charged, discount included.
func (s *paymentService) buildInvoice(ctx context.Context, tx pgx.Tx, order *model.Order, now time.Time) (*model.Invoice, error) {
	total := decimal.NewFromFloat(order.TotalPrice)
	tax := decimal.NewFromFloat(order.TaxPrice)
	shipping := decimal.NewFromFloat(order.ShippingPrice)
	subtotal, _ := total.Sub(tax).Sub(shipping).Round(2).Float64()

	addr, err := s.orderRepo.GetShippingAddressTx(ctx, tx, order.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to snapshot shipping address: %w", err)
	}

	addrJSON := json.RawMessage(`{}`)
	if addr != nil {
		raw, marshalErr := json.Marshal(addr)
		if marshalErr != nil {
			return nil, fmt.Errorf("failed to snapshot shipping address: %w", marshalErr)
		}
		addrJSON = raw
	}

	status := ""
	if order.PaymentStatus != nil {
		status = *order.PaymentStatus
	}

	return &model.Invoice{
		ID:            uuid.New(),
		OrderID:       &order.ID,
		InvoiceNumber: numbering.InvoiceNumber(now),
		Subtotal:      subtotal,
		Tax:           order.TaxPrice,
		Shipping:      order.ShippingPrice,
		Total:         order.TotalPrice,
		PaymentStatus: status,
		// Billing details are not collected separately; the shipping
		// snapshot doubles as the billing snapshot.
		BillingAddress:  addrJSON,
		ShippingAddress: addrJSON,
		CreatedAt:       now,
	}, nil
}

// MarkDelivered transitions the order to its terminal delivered state.
func (s *paymentService) MarkDelivered(ctx context.Context, orderID uuid.UUID) error {
	if err := s.orderRepo.MarkDelivered(ctx, orderID); err != nil {
		if err == model.ErrOrderNotFound {
			return err
		}
		return fmt.Errorf("failed to mark order delivered: %w", err)
	}

	return nil
}
