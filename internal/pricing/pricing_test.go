package pricing

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestQuoteFor(t *testing.T) {
	tests := []struct {
		name     string
		subtotal float64
		want     Quote
	}{
		{
			name:     "below free shipping threshold",
			subtotal: 90.00, // two $45 bottles
			want:     Quote{Subtotal: 90.00, Shipping: 10.00, Tax: 7.20, Total: 107.20},
		},
		{
			name:     "above free shipping threshold",
			subtotal: 120.00,
			want:     Quote{Subtotal: 120.00, Shipping: 0, Tax: 9.60, Total: 129.60},
		},
		{
			name:     "exactly at threshold ships free",
			subtotal: 100.00,
			want:     Quote{Subtotal: 100.00, Shipping: 0, Tax: 8.00, Total: 108.00},
		},
		{
			name:     "just under threshold pays flat rate",
			subtotal: 99.99,
			want:     Quote{Subtotal: 99.99, Shipping: 10.00, Tax: 8.00, Total: 117.99},
		},
		{
			name:     "tax rounds to cents",
			subtotal: 33.33, // 33.33 * 0.08 = 2.6664 -> 2.67
			want:     Quote{Subtotal: 33.33, Shipping: 10.00, Tax: 2.67, Total: 46.00},
		},
		{
			name:     "empty cart",
			subtotal: 0,
			want:     Quote{Subtotal: 0, Shipping: 10.00, Tax: 0, Total: 10.00},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := QuoteFor(tt.subtotal)
			assert.InDelta(t, tt.want.Subtotal, got.Subtotal, 0.001)
			assert.InDelta(t, tt.want.Shipping, got.Shipping, 0.001)
			assert.InDelta(t, tt.want.Tax, got.Tax, 0.001)
			assert.InDelta(t, tt.want.Total, got.Total, 0.001)
		})
	}
}
