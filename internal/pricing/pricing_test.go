package pricing

import (
	"testing"
	"time"

	"storefront/internal/model"

	"github.com/stretchr/testify/assert"
)

func TestSubtotal(t *testing.T) {
	tests := []struct {
		name     string
		items    []model.OrderItemRequest
		expected float64
	}{
		{
			name:     "Empty order",
			items:    nil,
			expected: 0,
		},
		{
			name: "Single line",
			items: []model.OrderItemRequest{
				{Price: 50, Quantity: 2},
			},
			expected: 100,
		},
		{
			name: "Multiple lines",
			items: []model.OrderItemRequest{
				{Price: 24.50, Quantity: 2},
				{Price: 18.00, Quantity: 1},
			},
			expected: 67,
		},
		{
			name: "Fractional cents round cleanly",
			items: []model.OrderItemRequest{
				{Price: 0.10, Quantity: 3},
			},
			expected: 0.30,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Subtotal(tt.items))
		})
	}
}

func TestCompute(t *testing.T) {
	tests := []struct {
		name             string
		subtotal         float64
		voucherDiscount  float64
		expectedTax      float64
		expectedShipping float64
		expectedTotal    float64
	}{
		{
			// Reference scenario: 100 - 10 = 90, tax 9, 90 is not > 100 so
			// shipping is the flat fee.
			name:             "Percentage voucher below free shipping threshold",
			subtotal:         100,
			voucherDiscount:  10,
			expectedTax:      9,
			expectedShipping: 10,
			expectedTotal:    109,
		},
		{
			name:             "No discount above threshold",
			subtotal:         150,
			voucherDiscount:  0,
			expectedTax:      15,
			expectedShipping: 0,
			expectedTotal:    165,
		},
		{
			name:             "Exactly at threshold still pays shipping",
			subtotal:         100,
			voucherDiscount:  0,
			expectedTax:      10,
			expectedShipping: 10,
			expectedTotal:    120,
		},
		{
			name:             "Just over threshold ships free",
			subtotal:         100.01,
			voucherDiscount:  0,
			expectedTax:      10,
			expectedShipping: 0,
			expectedTotal:    110.01,
		},
		{
			name:             "Discount exceeding subtotal clamps to zero",
			subtotal:         20,
			voucherDiscount:  30,
			expectedTax:      0,
			expectedShipping: 10,
			expectedTotal:    10,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			quote := Compute(tt.subtotal, tt.voucherDiscount)

			assert.Equal(t, tt.expectedTax, quote.TaxPrice)
			assert.Equal(t, tt.expectedShipping, quote.ShippingPrice)
			assert.Equal(t, tt.expectedTotal, quote.TotalPrice)
		})
	}
}

func TestEffectivePrice(t *testing.T) {
	now := time.Now()
	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)
	pct := model.DiscountTypePercentage
	fixed := model.DiscountTypeFixed
	twenty := 20.0
	large := 150.0

	tests := []struct {
		name     string
		product  model.Product
		expected float64
	}{
		{
			name:     "No discount",
			product:  model.Product{Price: 50},
			expected: 50,
		},
		{
			name: "Active percentage discount",
			product: model.Product{
				Price:            50,
				DiscountType:     &pct,
				DiscountValue:    &twenty,
				DiscountStartsAt: &past,
				DiscountEndsAt:   &future,
			},
			expected: 40,
		},
		{
			name: "Active fixed discount",
			product: model.Product{
				Price:            50,
				DiscountType:     &fixed,
				DiscountValue:    &twenty,
				DiscountStartsAt: &past,
				DiscountEndsAt:   &future,
			},
			expected: 30,
		},
		{
			name: "Expired discount ignored",
			product: model.Product{
				Price:          50,
				DiscountType:   &pct,
				DiscountValue:  &twenty,
				DiscountEndsAt: &past,
			},
			expected: 50,
		},
		{
			name: "Fixed discount never goes negative",
			product: model.Product{
				Price:         50,
				DiscountType:  &fixed,
				DiscountValue: &large,
			},
			expected: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, EffectivePrice(&tt.product, now))
		})
	}
}
