package model

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Invoice is the permanent financial record generated when an order is paid.
// It is never recomputed from live order state; addresses are stored as JSON
// snapshots. invoices.order_id is unique, which is the guard against double
// generation under retried payment callbacks. OrderID is nil once the order
// has been cancelled; the invoice itself survives the deletion.
type Invoice struct {
	ID              uuid.UUID       `json:"id" db:"id"`
	OrderID         *uuid.UUID      `json:"orderId,omitempty" db:"order_id"`
	InvoiceNumber   string          `json:"invoiceNumber" db:"invoice_number"`
	Subtotal        float64         `json:"subtotal" db:"subtotal"`
	Tax             float64         `json:"tax" db:"tax"`
	Shipping        float64         `json:"shipping" db:"shipping"`
	Total           float64         `json:"total" db:"total"`
	PaymentStatus   string          `json:"paymentStatus" db:"payment_status"`
	BillingAddress  json.RawMessage `json:"billingAddress" db:"billing_address"`
	ShippingAddress json.RawMessage `json:"shippingAddress" db:"shipping_address"`
	EmailSent       bool            `json:"emailSent" db:"email_sent"`
	CreatedAt       time.Time       `json:"createdAt" db:"created_at"`
}
