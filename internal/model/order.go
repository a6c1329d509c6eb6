package model

import (
	"time"

	"github.com/google/uuid"
)

// Order is the order header. Money fields are frozen at placement time:
// product price changes after placement never alter a committed order.
type Order struct {
	ID              uuid.UUID  `json:"id" db:"id"`
	OrderNumber     string     `json:"orderNumber" db:"order_number"`
	UserID          uuid.UUID  `json:"userId" db:"user_id"`
	VoucherID       *uuid.UUID `json:"voucherId,omitempty" db:"voucher_id"`
	VoucherDiscount float64    `json:"voucherDiscount" db:"voucher_discount"`
	PaymentMethod   string     `json:"paymentMethod" db:"payment_method"`
	TaxPrice        float64    `json:"taxPrice" db:"tax_price"`
	ShippingPrice   float64    `json:"shippingPrice" db:"shipping_price"`
	TotalPrice      float64    `json:"totalPrice" db:"total_price"`
	IsPaid          bool       `json:"isPaid" db:"is_paid"`
	PaidAt          *time.Time `json:"paidAt,omitempty" db:"paid_at"`
	IsDelivered     bool       `json:"isDelivered" db:"is_delivered"`
	DeliveredAt     *time.Time `json:"deliveredAt,omitempty" db:"delivered_at"`
	PaymentResultID *string    `json:"paymentResultId,omitempty" db:"payment_result_id"`
	PaymentStatus   *string    `json:"paymentStatus,omitempty" db:"payment_status"`
	PaymentEmail    *string    `json:"paymentEmail,omitempty" db:"payment_email"`
	CreatedAt       time.Time  `json:"createdAt" db:"created_at"`
	UpdatedAt       time.Time  `json:"updatedAt" db:"updated_at"`
}

// OrderItem is a denormalized snapshot of a product at purchase time.
type OrderItem struct {
	ID        uuid.UUID `json:"-" db:"id"`
	OrderID   uuid.UUID `json:"-" db:"order_id"`
	ProductID string    `json:"productId" db:"product_id"`
	Name      string    `json:"name" db:"name"`
	ImageURL  string    `json:"imageUrl" db:"image_url"`
	Price     float64   `json:"price" db:"price"`
	Quantity  int       `json:"quantity" db:"quantity"`
}

// ShippingAddress is the one-to-one delivery address for an order.
type ShippingAddress struct {
	ID         uuid.UUID `json:"-" db:"id"`
	OrderID    uuid.UUID `json:"-" db:"order_id"`
	Address    string    `json:"address" db:"address"`
	City       string    `json:"city" db:"city"`
	PostalCode string    `json:"postalCode" db:"postal_code"`
	Country    string    `json:"country" db:"country"`
}

// OrderRequest is the payload for placing an order. Line prices are the cart
// snapshot taken at the last cart read; they are not re-priced here.
type OrderRequest struct {
	Items           []OrderItemRequest      `json:"orderItems"`
	ShippingAddress *ShippingAddressRequest `json:"shippingAddress"`
	PaymentMethod   string                  `json:"paymentMethod"`
	VoucherCode     *string                 `json:"voucher_code,omitempty"`
}

// OrderItemRequest is a single priced line in an order request.
type OrderItemRequest struct {
	ProductID string  `json:"product_id"`
	Name      string  `json:"name"`
	ImageURL  string  `json:"image_url"`
	Price     float64 `json:"price"`
	Quantity  int     `json:"quantity"`
}

// ShippingAddressRequest is the address payload within an order request.
type ShippingAddressRequest struct {
	Address    string `json:"address"`
	City       string `json:"city"`
	PostalCode string `json:"postalCode"`
	Country    string `json:"country"`
}

// OrderResponse is the order aggregate returned to the client.
type OrderResponse struct {
	Order           *Order           `json:"order"`
	Items           []OrderItem      `json:"items"`
	ShippingAddress *ShippingAddress `json:"shippingAddress,omitempty"`
}

// PaymentRequest is the mock payment-confirmation callback payload.
type PaymentRequest struct {
	PaymentResultID   *string `json:"payment_result_id,omitempty"`
	PaymentStatus     *string `json:"payment_status,omitempty"`
	PaymentUpdateTime *string `json:"payment_update_time,omitempty"`
	PaymentEmail      *string `json:"payment_email,omitempty"`
}
