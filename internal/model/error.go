package model

// ErrorResponse represents a standardised error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// Standard error codes for API responses
const (
	ErrCodeInvalidJSON        = "INVALID_JSON"
	ErrCodeMissingField       = "MISSING_FIELD"
	ErrCodeEmptyOrder         = "EMPTY_ORDER"
	ErrCodeMissingAddress     = "MISSING_SHIPPING_ADDRESS"
	ErrCodeProductNotFound    = "PRODUCT_NOT_FOUND"
	ErrCodeInvalidQuantity    = "INVALID_QUANTITY"
	ErrCodeInsufficientStock  = "INSUFFICIENT_STOCK"
	ErrCodeVoucherNotFound    = "VOUCHER_NOT_FOUND"
	ErrCodeVoucherInactive    = "VOUCHER_INACTIVE"
	ErrCodeVoucherNotStarted  = "VOUCHER_NOT_STARTED"
	ErrCodeVoucherExpired     = "VOUCHER_EXPIRED"
	ErrCodeVoucherMinPurchase = "VOUCHER_MIN_PURCHASE"
	ErrCodeVoucherExhausted   = "VOUCHER_EXHAUSTED"
	ErrCodeVoucherUserLimit   = "VOUCHER_USER_LIMIT"
	ErrCodeOrderNotFound      = "ORDER_NOT_FOUND"
	ErrCodeOrderDelivered     = "ORDER_DELIVERED"
	ErrCodeCartNotFound       = "CART_NOT_FOUND"
	ErrCodeUnauthorised       = "UNAUTHORIZED"
	ErrCodeForbidden          = "FORBIDDEN"
	ErrCodeInternalError      = "INTERNAL_ERROR"
)

// DomainError is a business-rule failure with a stable machine-readable code.
type DomainError struct {
	Code    string
	Message string
}

func (e *DomainError) Error() string {
	return e.Message
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// Common domain errors
var (
	ErrEmptyOrder         = NewDomainError(ErrCodeEmptyOrder, "Order must contain at least one item")
	ErrMissingAddress     = NewDomainError(ErrCodeMissingAddress, "Shipping address is required")
	ErrProductNotFound    = NewDomainError(ErrCodeProductNotFound, "One or more products not found")
	ErrInvalidQuantity    = NewDomainError(ErrCodeInvalidQuantity, "Quantity must be greater than zero")
	ErrInsufficientStock  = NewDomainError(ErrCodeInsufficientStock, "Insufficient stock for one or more products, please try again")
	ErrVoucherNotFound    = NewDomainError(ErrCodeVoucherNotFound, "Voucher code not found")
	ErrVoucherInactive    = NewDomainError(ErrCodeVoucherInactive, "Voucher is not active")
	ErrVoucherNotStarted  = NewDomainError(ErrCodeVoucherNotStarted, "Voucher is not valid yet")
	ErrVoucherExpired     = NewDomainError(ErrCodeVoucherExpired, "Voucher has expired")
	ErrVoucherMinPurchase = NewDomainError(ErrCodeVoucherMinPurchase, "Order subtotal is below the voucher minimum purchase amount")
	ErrVoucherExhausted   = NewDomainError(ErrCodeVoucherExhausted, "Voucher usage limit has been reached")
	ErrVoucherUserLimit   = NewDomainError(ErrCodeVoucherUserLimit, "You have already used this voucher the maximum number of times")
	ErrOrderNotFound      = NewDomainError(ErrCodeOrderNotFound, "Order not found")
	ErrOrderDelivered     = NewDomainError(ErrCodeOrderDelivered, "Delivered orders cannot be modified or deleted")
	ErrCartNotFound       = NewDomainError(ErrCodeCartNotFound, "Cart not found")
)
