// Package pricing holds the one shipping/tax calculation shared by the cart
// page, the checkout page, and order placement, so the three can never drift.
package pricing

import "math"

const (
	// Orders at or above this subtotal ship free.
	FreeShippingThreshold = 100.0
	FlatShippingRate      = 10.0
	TaxRate               = 0.08
)

type Quote struct {
	Subtotal float64
	Shipping float64
	Tax      float64
	Total    float64
}

// QuoteFor computes shipping, tax, and the grand total for a cart subtotal.
// Tax is rounded to cents.
func QuoteFor(subtotal float64) Quote {
	shipping := FlatShippingRate
	if subtotal >= FreeShippingThreshold {
		shipping = 0
	}
	tax := roundCents(subtotal * TaxRate)
	return Quote{
		Subtotal: subtotal,
		Shipping: shipping,
		Tax:      tax,
		Total:    roundCents(subtotal + shipping + tax),
	}
}

func roundCents(v float64) float64 {
	return math.Round(v*100) / 100
}
