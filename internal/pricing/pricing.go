// Package pricing implements the checkout money arithmetic. All intermediate
// math runs on decimals; every published figure is rounded to cents before it
// leaves this package.
package pricing

import (
	"time"

	"storefront/internal/model"

	"github.com/shopspring/decimal"
)

// Checkout constants. Shipping is free only when the post-discount subtotal
// is strictly greater than the threshold.
var (
	TaxRate               = decimal.NewFromFloat(0.10)
	FreeShippingThreshold = decimal.NewFromInt(100)
	FlatShippingFee       = decimal.NewFromInt(10)
)

// Quote is the fully computed pricing of an order.
type Quote struct {
	Subtotal        float64
	VoucherDiscount float64
	TaxPrice        float64
	ShippingPrice   float64
	TotalPrice      float64
}

// Subtotal sums the cart-supplied line prices. Prices are the point-in-time
// snapshot from the last cart read and are deliberately not re-fetched here.
func Subtotal(items []model.OrderItemRequest) float64 {
	total := decimal.Zero
	for _, item := range items {
		line := decimal.NewFromFloat(item.Price).Mul(decimal.NewFromInt(int64(item.Quantity)))
		total = total.Add(line)
	}
	return round(total)
}

// Compute derives tax, shipping and total from a subtotal and an
// already-computed voucher discount.
func Compute(subtotal, voucherDiscount float64) Quote {
	sub := decimal.NewFromFloat(subtotal)
	discount := decimal.NewFromFloat(voucherDiscount)

	post := sub.Sub(discount)
	if post.IsNegative() {
		post = decimal.Zero
	}

	tax := post.Mul(TaxRate).Round(2)

	shipping := FlatShippingFee
	if post.GreaterThan(FreeShippingThreshold) {
		shipping = decimal.Zero
	}

	total := post.Add(tax).Add(shipping)

	return Quote{
		Subtotal:        round(sub),
		VoucherDiscount: round(discount),
		TaxPrice:        round(tax),
		ShippingPrice:   round(shipping),
		TotalPrice:      round(total),
	}
}

// EffectivePrice returns the product's unit price with any active product
// discount applied, as of the given instant.
func EffectivePrice(p *model.Product, now time.Time) float64 {
	price := decimal.NewFromFloat(p.Price)
	if !p.DiscountActiveAt(now) {
		return round(price)
	}

	value := decimal.NewFromFloat(*p.DiscountValue)
	switch *p.DiscountType {
	case model.DiscountTypePercentage:
		price = price.Sub(price.Mul(value).Div(decimal.NewFromInt(100)))
	case model.DiscountTypeFixed:
		price = price.Sub(value)
	}
	if price.IsNegative() {
		price = decimal.Zero
	}
	return round(price)
}

func round(d decimal.Decimal) float64 {
	f, _ := d.Round(2).Float64()
	return f
}
