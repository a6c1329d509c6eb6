package model

import "time"

// Discount types shared by product discounts and vouchers.
const (
	DiscountTypePercentage = "percentage"
	DiscountTypeFixed      = "fixed"
)

// Product represents a catalogue product with its saleable stock.
type Product struct {
	ID               string     `json:"id" db:"id"`
	Name             string     `json:"name" db:"name"`
	ImageURL         string     `json:"imageUrl" db:"image_url"`
	Price            float64    `json:"price" db:"price"`
	Stock            int        `json:"stock" db:"stock"`
	DiscountType     *string    `json:"discountType,omitempty" db:"discount_type"`
	DiscountValue    *float64   `json:"discountValue,omitempty" db:"discount_value"`
	DiscountStartsAt *time.Time `json:"discountStartsAt,omitempty" db:"discount_starts_at"`
	DiscountEndsAt   *time.Time `json:"discountEndsAt,omitempty" db:"discount_ends_at"`
	CreatedAt        time.Time  `json:"createdAt" db:"created_at"`
}

// DiscountActiveAt reports whether the product carries a discount that is
// active at the given instant.
func (p *Product) DiscountActiveAt(now time.Time) bool {
	if p.DiscountType == nil || p.DiscountValue == nil {
		return false
	}
	if p.DiscountStartsAt != nil && now.Before(*p.DiscountStartsAt) {
		return false
	}
	if p.DiscountEndsAt != nil && now.After(*p.DiscountEndsAt) {
		return false
	}
	return true
}
