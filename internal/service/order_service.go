package service

import (
	"context"
	"fmt"
	"time"

	"storefront/internal/followup"
	"storefront/internal/model"
	"storefront/internal/numbering"
	"storefront/internal/pricing"
	"storefront/internal/repository"
	"storefront/internal/voucher"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// orderService implements OrderService. PlaceOrder is the order transaction
// coordinator: every write between BeginTx and Commit either lands together
// or not at all.
type orderService struct {
	orderRepo   repository.OrderRepository
	productRepo repository.ProductRepository
	voucherRepo repository.VoucherRepository
	cartService CartService
	queue       FollowupQueue
	logger      zerolog.Logger
}

// NewOrderService creates a new order service.
func NewOrderService(
	orderRepo repository.OrderRepository,
	productRepo repository.ProductRepository,
	voucherRepo repository.VoucherRepository,
	cartService CartService,
	queue FollowupQueue,
	logger zerolog.Logger,
) OrderService {
	return &orderService{
		orderRepo:   orderRepo,
		productRepo: productRepo,
		voucherRepo: voucherRepo,
		cartService: cartService,
		queue:       queue,
		logger:      logger.With().Str("service", "order").Logger(),
	}
}

// PlaceOrder executes the atomic placement sequence.
//
// Line prices come from the request, which carries the cart snapshot taken at
// the last cart read; they are deliberately not re-fetched here. That trades
// a small staleness window for a simpler transaction — a reviewed trade-off,
// since prices rarely change within a checkout session.
func (s *orderService) PlaceOrder(ctx context.Context, userID uuid.UUID, req *model.OrderRequest) (*model.OrderResponse, error) {
	if err := s.validateOrderRequest(req); err != nil {
		return nil, err
	}

	subtotal := pricing.Subtotal(req.Items)

	// Voucher validation is a pure pre-check; the caps are re-checked under
	// a row lock at redemption time inside the transaction.
	var applied *model.Voucher
	var discount float64
	if req.VoucherCode != nil && *req.VoucherCode != "" {
		v, err := s.resolveVoucher(ctx, *req.VoucherCode, userID, subtotal)
		if err != nil {
			return nil, err
		}
		applied = v
		discount = voucher.ComputeDiscount(v, subtotal)
		s.logger.Debug().
			Str("voucher_code", v.Code).
			Float64("discount", discount).
			Msg("voucher validated")
	}

	productIDs := make([]string, len(req.Items))
	for i, item := range req.Items {
		productIDs[i] = item.ProductID
	}

	if err := s.productRepo.ValidateProductsExist(ctx, productIDs); err != nil {
		s.logger.Warn().
			Int("product_count", len(productIDs)).
			Err(err).
			Msg("product validation failed")
		return nil, err
	}

	quote := pricing.Compute(subtotal, discount)

	tx, err := s.orderRepo.BeginTx(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to begin transaction")
		return nil, fmt.Errorf("failed to place order: %w", err)
	}

	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				s.logger.Error().Err(rbErr).Msg("failed to rollback transaction")
			}
		}
	}()

	now := time.Now()
	order := &model.Order{
		ID:              uuid.New(),
		OrderNumber:     numbering.OrderNumber(now),
		UserID:          userID,
		VoucherDiscount: quote.VoucherDiscount,
		PaymentMethod:   req.PaymentMethod,
		TaxPrice:        quote.TaxPrice,
		ShippingPrice:   quote.ShippingPrice,
		TotalPrice:      quote.TotalPrice,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if applied != nil {
		order.VoucherID = &applied.ID
	}

	if err = s.orderRepo.CreateOrder(ctx, tx, order); err != nil {
		return nil, fmt.Errorf("failed to place order: %w", err)
	}

	orderItems := make([]model.OrderItem, len(req.Items))
	for i, item := range req.Items {
		orderItems[i] = model.OrderItem{
			ID:        uuid.New(),
			OrderID:   order.ID,
			ProductID: item.ProductID,
			Name:      item.Name,
			ImageURL:  item.ImageURL,
			Price:     item.Price,
			Quantity:  item.Quantity,
		}
	}

	if err = s.orderRepo.CreateOrderItems(ctx, tx, orderItems); err != nil {
		return nil, fmt.Errorf("failed to place order: %w", err)
	}

	// Guarded decrement per line. A failure here aborts everything above.
	for _, item := range req.Items {
		if err = s.productRepo.DecrementStock(ctx, tx, item.ProductID, item.Quantity); err != nil {
			s.logger.Warn().
				Str("order_id", order.ID.String()).
				Str("product_id", item.ProductID).
				Int("quantity", item.Quantity).
				Err(err).
				Msg("stock decrement failed, aborting order")
			return nil, err
		}
	}

	addr := &model.ShippingAddress{
		ID:         uuid.New(),
		OrderID:    order.ID,
		Address:    req.ShippingAddress.Address,
		City:       req.ShippingAddress.City,
		PostalCode: req.ShippingAddress.PostalCode,
		Country:    req.ShippingAddress.Country,
	}

	if err = s.orderRepo.CreateShippingAddress(ctx, tx, addr); err != nil {
		return nil, fmt.Errorf("failed to place order: %w", err)
	}

	if applied != nil {
		if err = s.voucherRepo.Redeem(ctx, tx, applied.ID, userID, order.ID); err != nil {
			s.logger.Warn().
				Str("order_id", order.ID.String()).
				Str("voucher_code", applied.Code).
				Err(err).
				Msg("voucher redemption failed, aborting order")
			return nil, err
		}
	}

	if err = tx.Commit(ctx); err != nil {
		s.logger.Error().Err(err).Str("order_id", order.ID.String()).Msg("failed to commit transaction")
		return nil, fmt.Errorf("failed to place order: %w", err)
	}

	// Post-commit: clearing the cart is best-effort and must never unwind
	// the committed order.
	if s.queue != nil {
		uid := userID
		s.queue.Enqueue(followup.Action{
			Name: "clear-cart",
			Run: func(ctx context.Context) error {
				return s.cartService.ClearUserCart(ctx, uid)
			},
		})
	}

	s.logger.Info().
		Str("order_id", order.ID.String()).
		Str("order_number", order.OrderNumber).
		Int("item_count", len(orderItems)).
		Float64("total_price", order.TotalPrice).
		Msg("order placed")

	return &model.OrderResponse{
		Order:           order,
		Items:           orderItems,
		ShippingAddress: addr,
	}, nil
}

// GetByID retrieves an order aggregate.
func (s *orderService) GetByID(ctx context.Context, id uuid.UUID) (*model.OrderResponse, error) {
	order, items, addr, err := s.orderRepo.GetByID(ctx, id)
	if err != nil {
		s.logger.Error().Err(err).Str("order_id", id.String()).Msg("failed to get order")
		return nil, fmt.Errorf("failed to get order: %w", err)
	}

	if order == nil {
		return nil, nil
	}

	return &model.OrderResponse{
		Order:           order,
		Items:           items,
		ShippingAddress: addr,
	}, nil
}

// CancelOrder deletes an undelivered order, restoring stock when it was paid.
func (s *orderService) CancelOrder(ctx context.Context, id uuid.UUID) error {
	tx, err := s.orderRepo.BeginTx(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to begin transaction")
		return fmt.Errorf("failed to cancel order: %w", err)
	}

	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				s.logger.Error().Err(rbErr).Msg("failed to rollback transaction")
			}
		}
	}()

	order, err := s.orderRepo.GetForUpdate(ctx, tx, id)
	if err != nil {
		return fmt.Errorf("failed to cancel order: %w", err)
	}
	if order == nil {
		err = model.ErrOrderNotFound
		return err
	}

	if order.IsDelivered {
		s.logger.Warn().Str("order_id", id.String()).Msg("refusing to cancel delivered order")
		err = model.ErrOrderDelivered
		return err
	}

	// Paid orders hold reserved units; return them before deletion.
	if order.IsPaid {
		var items []model.OrderItem
		items, err = s.orderRepo.GetItemsTx(ctx, tx, id)
		if err != nil {
			return fmt.Errorf("failed to cancel order: %w", err)
		}
		for _, item := range items {
			if err = s.productRepo.RestoreStock(ctx, tx, item.ProductID, item.Quantity); err != nil {
				return fmt.Errorf("failed to cancel order: %w", err)
			}
		}
	}

	// A redeemed voucher gets its global capacity back; the usage rows are
	// deleted with the order, which frees the per-user count the same way.
	if order.VoucherID != nil {
		if err = s.voucherRepo.Release(ctx, tx, *order.VoucherID); err != nil {
			return fmt.Errorf("failed to cancel order: %w", err)
		}
	}

	if err = s.orderRepo.Delete(ctx, tx, id); err != nil {
		return fmt.Errorf("failed to cancel order: %w", err)
	}

	if err = tx.Commit(ctx); err != nil {
		s.logger.Error().Err(err).Str("order_id", id.String()).Msg("failed to commit cancellation")
		return fmt.Errorf("failed to cancel order: %w", err)
	}

	s.logger.Info().
		Str("order_id", id.String()).
		Bool("was_paid", order.IsPaid).
		Msg("order cancelled")

	return nil
}

// resolveVoucher loads the voucher and runs the ordered validation checks.
func (s *orderService) resolveVoucher(ctx context.Context, code string, userID uuid.UUID, subtotal float64) (*model.Voucher, error) {
	v, err := s.voucherRepo.GetByCode(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to look up voucher: %w", err)
	}
	if v == nil {
		return nil, model.ErrVoucherNotFound
	}

	userCount, err := s.voucherRepo.CountUsageByUser(ctx, v.ID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to count voucher usage: %w", err)
	}

	if err := voucher.Validate(v, userCount, subtotal, time.Now()); err != nil {
		s.logger.Warn().
			Str("voucher_code", code).
			Err(err).
			Msg("voucher validation failed")
		return nil, err
	}

	return v, nil
}

// validateOrderRequest validates the order request.
func (s *orderService) validateOrderRequest(req *model.OrderRequest) error {
	if req == nil || len(req.Items) == 0 {
		return model.ErrEmptyOrder
	}

	if req.ShippingAddress == nil ||
		req.ShippingAddress.Address == "" ||
		req.ShippingAddress.City == "" ||
		req.ShippingAddress.PostalCode == "" ||
		req.ShippingAddress.Country == "" {
		return model.ErrMissingAddress
	}

	for i, item := range req.Items {
		if item.ProductID == "" {
			return model.NewDomainError(model.ErrCodeMissingField, fmt.Sprintf("item %d: product ID is required", i))
		}

		if item.Quantity <= 0 {
			s.logger.Warn().
				Int("item_index", i).
				Str("product_id", item.ProductID).
				Int("quantity", item.Quantity).
				Msg("invalid quantity")
			return model.ErrInvalidQuantity
		}

		if item.Price < 0 {
			return model.NewDomainError(model.ErrCodeMissingField, fmt.Sprintf("item %d: price cannot be negative", i))
		}
	}

	return nil
}
