package model

import (
	"time"

	"github.com/google/uuid"
)

// Voucher is a promotional code with validity window and usage caps.
// CurrentUsageCount is mutated only inside the order transaction, under a row
// lock, so it never exceeds TotalUsageLimit at a committed state.
type Voucher struct {
	ID                uuid.UUID `json:"id" db:"id"`
	Code              string    `json:"code" db:"code"`
	DiscountType      string    `json:"discountType" db:"discount_type"`
	DiscountValue     float64   `json:"discountValue" db:"discount_value"`
	MinPurchaseAmount float64   `json:"minPurchaseAmount" db:"min_purchase_amount"`
	MaxDiscountAmount *float64  `json:"maxDiscountAmount,omitempty" db:"max_discount_amount"`
	StartDate         time.Time `json:"startDate" db:"start_date"`
	EndDate           time.Time `json:"endDate" db:"end_date"`
	UsageLimitPerUser int       `json:"usageLimitPerUser" db:"usage_limit_per_user"`
	TotalUsageLimit   *int      `json:"totalUsageLimit,omitempty" db:"total_usage_limit"`
	CurrentUsageCount int       `json:"currentUsageCount" db:"current_usage_count"`
	IsActive          bool      `json:"isActive" db:"is_active"`
	CreatedAt         time.Time `json:"createdAt" db:"created_at"`
}

// VoucherUsage is the append-only record of one redemption: this user spent
// this voucher on this order.
type VoucherUsage struct {
	ID        uuid.UUID `json:"-" db:"id"`
	VoucherID uuid.UUID `json:"voucherId" db:"voucher_id"`
	UserID    uuid.UUID `json:"userId" db:"user_id"`
	OrderID   uuid.UUID `json:"orderId" db:"order_id"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}
