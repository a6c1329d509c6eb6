package service

import (
	"context"
	"fmt"
	"time"

	"storefront/internal/model"
	"storefront/internal/pricing"
	"storefront/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// cartService implements CartService.
type cartService struct {
	cartRepo    repository.CartRepository
	productRepo repository.ProductRepository
	logger      zerolog.Logger
}

// NewCartService creates a new cart service.
func NewCartService(
	cartRepo repository.CartRepository,
	productRepo repository.ProductRepository,
	logger zerolog.Logger,
) CartService {
	return &cartService{
		cartRepo:    cartRepo,
		productRepo: productRepo,
		logger:      logger.With().Str("service", "cart").Logger(),
	}
}

// Resolve finds the caller's cart, creating one lazily when needed.
func (s *cartService) Resolve(ctx context.Context, userID, guestCartID *uuid.UUID) (*model.Cart, error) {
	if userID != nil {
		cart, err := s.cartRepo.GetByUserID(ctx, *userID)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve user cart: %w", err)
		}
		if cart != nil {
			return cart, nil
		}
		return s.create(ctx, userID)
	}

	if guestCartID != nil {
		// Honour the client-held id only for an ownerless cart; anything
		// else gets a fresh guest cart.
		cart, err := s.cartRepo.GetGuest(ctx, *guestCartID)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve guest cart: %w", err)
		}
		if cart != nil {
			return cart, nil
		}
	}

	return s.create(ctx, nil)
}

func (s *cartService) create(ctx context.Context, userID *uuid.UUID) (*model.Cart, error) {
	cart := &model.Cart{
		ID:        uuid.New(),
		UserID:    userID,
		CreatedAt: time.Now(),
	}
	if err := s.cartRepo.Create(ctx, cart); err != nil {
		return nil, fmt.Errorf("failed to create cart: %w", err)
	}

	s.logger.Debug().
		Str("cart_id", cart.ID.String()).
		Bool("guest", cart.IsGuest()).
		Msg("cart created")

	return cart, nil
}

// GetPricedCart resolves a cart into priced line items.
func (s *cartService) GetPricedCart(ctx context.Context, cartID uuid.UUID) (*model.PricedCart, error) {
	items, err := s.cartRepo.GetItems(ctx, cartID)
	if err != nil {
		return nil, fmt.Errorf("failed to get cart items: %w", err)
	}

	priced := &model.PricedCart{
		ID:    cartID,
		Items: []model.PricedCartItem{},
	}

	if len(items) == 0 {
		return priced, nil
	}

	productIDs := make([]string, len(items))
	for i, item := range items {
		productIDs[i] = item.ProductID
	}

	products, err := s.productRepo.GetByIDs(ctx, productIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to get cart products: %w", err)
	}

	byID := make(map[string]*model.Product, len(products))
	for i := range products {
		byID[products[i].ID] = &products[i]
	}

	now := time.Now()
	var lines []model.OrderItemRequest
	for _, item := range items {
		product, ok := byID[item.ProductID]
		if !ok {
			// Product removed from the catalogue since it was added.
			s.logger.Warn().
				Str("cart_id", cartID.String()).
				Str("product_id", item.ProductID).
				Msg("cart references missing product, skipping line")
			continue
		}

		unit := pricing.EffectivePrice(product, now)
		line := model.PricedCartItem{
			ProductID: product.ID,
			Name:      product.Name,
			ImageURL:  product.ImageURL,
			UnitPrice: unit,
			Quantity:  item.Quantity,
			LineTotal: pricing.Subtotal([]model.OrderItemRequest{{Price: unit, Quantity: item.Quantity}}),
		}
		priced.Items = append(priced.Items, line)
		lines = append(lines, model.OrderItemRequest{Price: unit, Quantity: item.Quantity})
	}

	priced.Subtotal = pricing.Subtotal(lines)

	return priced, nil
}

// AddItem upserts a cart line, accumulating quantity.
func (s *cartService) AddItem(ctx context.Context, cartID uuid.UUID, req *model.CartItemRequest) error {
	if req == nil || req.ProductID == "" {
		return model.ErrProductNotFound
	}
	if req.Quantity <= 0 {
		return model.ErrInvalidQuantity
	}

	product, err := s.productRepo.GetByID(ctx, req.ProductID)
	if err != nil {
		return fmt.Errorf("failed to look up product: %w", err)
	}
	if product == nil {
		return model.ErrProductNotFound
	}

	if err := s.cartRepo.UpsertItem(ctx, cartID, req.ProductID, req.Quantity); err != nil {
		return fmt.Errorf("failed to add cart item: %w", err)
	}

	return nil
}

// SetItemQuantity replaces a line's quantity; zero or less removes it.
func (s *cartService) SetItemQuantity(ctx context.Context, cartID uuid.UUID, productID string, quantity int) error {
	if quantity <= 0 {
		return s.RemoveItem(ctx, cartID, productID)
	}

	if err := s.cartRepo.SetItemQuantity(ctx, cartID, productID, quantity); err != nil {
		return err
	}

	return nil
}

// RemoveItem removes a cart line.
func (s *cartService) RemoveItem(ctx context.Context, cartID uuid.UUID, productID string) error {
	if err := s.cartRepo.DeleteItem(ctx, cartID, productID); err != nil {
		return fmt.Errorf("failed to remove cart item: %w", err)
	}
	return nil
}

// MergeGuestIntoUser folds a guest cart into the user's cart in one
// transaction, so an interruption can never leave a half-merged state.
func (s *cartService) MergeGuestIntoUser(ctx context.Context, guestCartID, userID uuid.UUID) (*model.Cart, error) {
	guest, err := s.cartRepo.GetGuest(ctx, guestCartID)
	if err != nil {
		return nil, fmt.Errorf("failed to look up guest cart: %w", err)
	}
	if guest == nil {
		return nil, model.ErrCartNotFound
	}

	userCart, err := s.Resolve(ctx, &userID, nil)
	if err != nil {
		return nil, err
	}

	tx, err := s.cartRepo.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to merge carts: %w", err)
	}

	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				s.logger.Error().Err(rbErr).Msg("failed to rollback cart merge")
			}
		}
	}()

	if err = s.cartRepo.Merge(ctx, tx, guestCartID, userCart.ID); err != nil {
		return nil, fmt.Errorf("failed to merge carts: %w", err)
	}

	if err = tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit cart merge: %w", err)
	}

	s.logger.Info().
		Str("guest_cart_id", guestCartID.String()).
		Str("user_id", userID.String()).
		Msg("guest cart merged into user cart")

	return userCart, nil
}

// ClearUserCart empties the user's cart if one exists.
func (s *cartService) ClearUserCart(ctx context.Context, userID uuid.UUID) error {
	cart, err := s.cartRepo.GetByUserID(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to look up user cart: %w", err)
	}
	if cart == nil {
		return nil
	}

	if err := s.cartRepo.ClearItems(ctx, cart.ID); err != nil {
		return fmt.Errorf("failed to clear user cart: %w", err)
	}

	return nil
}
