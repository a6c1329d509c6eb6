package model

import (
	"time"

	"github.com/google/uuid"
)

// Cart is a shopping cart. A nil UserID marks a guest cart, identified only
// by the cart id carried in the client's cookie.
type Cart struct {
	ID        uuid.UUID  `json:"id" db:"id"`
	UserID    *uuid.UUID `json:"userId,omitempty" db:"user_id"`
	CreatedAt time.Time  `json:"createdAt" db:"created_at"`
}

// IsGuest reports whether the cart has no owning user.
func (c *Cart) IsGuest() bool {
	return c.UserID == nil
}

// CartItem is a line in a cart. (cart_id, product_id) is unique; adding the
// same product again accumulates quantity.
type CartItem struct {
	ID        uuid.UUID `json:"-" db:"id"`
	CartID    uuid.UUID `json:"-" db:"cart_id"`
	ProductID string    `json:"productId" db:"product_id"`
	Quantity  int       `json:"quantity" db:"quantity"`
}

// CartItemRequest is the payload for adding or updating a cart line.
type CartItemRequest struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

// PricedCartItem is a cart line joined with its product and priced with any
// active product discount applied. UnitPrice is the price a subsequent order
// snapshot will carry.
type PricedCartItem struct {
	ProductID string  `json:"productId"`
	Name      string  `json:"name"`
	ImageURL  string  `json:"imageUrl"`
	UnitPrice float64 `json:"unitPrice"`
	Quantity  int     `json:"quantity"`
	LineTotal float64 `json:"lineTotal"`
}

// PricedCart is the cart as presented to the client and consumed by order
// placement.
type PricedCart struct {
	ID       uuid.UUID        `json:"id"`
	UserID   *uuid.UUID       `json:"userId,omitempty"`
	Items    []PricedCartItem `json:"items"`
	Subtotal float64          `json:"subtotal"`
}
