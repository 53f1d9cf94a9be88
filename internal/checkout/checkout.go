// Package checkout turns a cart into a persisted order: input validation, one
// all-or-nothing transaction covering the order row, its items, and the stock
// decrements, then a best-effort confirmation email.
package checkout

import (
	"crypto/rand"
	"errors"
	"fmt"
	"time"

	"github.com/Rehtse11/Essence-Luxe/internal/cart"
	"github.com/Rehtse11/Essence-Luxe/internal/mail"
	"github.com/Rehtse11/Essence-Luxe/internal/models"
	"github.com/Rehtse11/Essence-Luxe/internal/pricing"
	"github.com/Rehtse11/Essence-Luxe/internal/store"
)

var ErrEmptyCart = errors.New("checkout: cart is empty")

// orderNumberAttempts bounds the regenerate-and-retry loop when a generated
// order number collides with an existing one.
const orderNumberAttempts = 3

type Service struct {
	Store    *store.Store
	Mailer   mail.Mailer
	SiteName string
}

func NewService(s *store.Store, m mail.Mailer, siteName string) *Service {
	return &Service{Store: s, Mailer: m, SiteName: siteName}
}

// ShippingInput is the checkout form. Payment details beyond the method choice
// never touch this system.
type ShippingInput struct {
	Address       string
	City          string
	State         string
	Zip           string
	Country       string
	PaymentMethod string
	Notes         string
}

var paymentMethods = map[string]bool{
	"credit_card": true,
	"paypal":      true,
	"cod":         true,
}

// Validate returns per-field errors; an empty map means the input is good. No
// side effects happen until validation passes.
func (in *ShippingInput) Validate() map[string]string {
	errs := make(map[string]string)
	if in.Address == "" {
		errs["shipping_address"] = "Shipping address is required"
	}
	if in.City == "" {
		errs["shipping_city"] = "City is required"
	}
	if in.State == "" {
		errs["shipping_state"] = "State is required"
	}
	if in.Zip == "" {
		errs["shipping_zip"] = "ZIP code is required"
	}
	if in.Country == "" {
		errs["shipping_country"] = "Country is required"
	}
	if in.PaymentMethod == "" {
		errs["payment_method"] = "Payment method is required"
	} else if !paymentMethods[in.PaymentMethod] {
		errs["payment_method"] = "Invalid payment method"
	}
	return errs
}

// PlaceOrder converts the cart into an order. Line prices are re-read from the
// catalog inside this call, so the order snapshots current pricing. On success
// the caller clears the session cart; the confirmation email is dispatched
// here, after commit, fire-and-forget.
//
// Failure modes: ErrEmptyCart before any work, *store.InsufficientStockError
// when a line no longer fits remaining stock (the whole transaction rolls
// back), or a generic error for anything else.
func (s *Service) PlaceOrder(user *models.User, c cart.Cart, in ShippingInput) (*models.Order, error) {
	if c.Count() == 0 {
		return nil, ErrEmptyCart
	}

	products, err := s.Store.GetActiveProductsByIDs(c.ProductIDs())
	if err != nil {
		return nil, err
	}
	if len(products) == 0 {
		return nil, ErrEmptyCart
	}

	var subtotal float64
	items := make([]models.OrderItem, 0, len(products))
	for _, p := range products {
		qty := c[p.ID]
		lineTotal := p.Price * float64(qty)
		subtotal += lineTotal
		items = append(items, models.OrderItem{
			ProductID: p.ID,
			Quantity:  qty,
			Price:     p.Price,
			Subtotal:  lineTotal,
		})
	}
	quote := pricing.QuoteFor(subtotal)

	order := &models.Order{
		UserID:          user.ID,
		TotalAmount:     quote.Total,
		PaymentMethod:   in.PaymentMethod,
		ShippingAddress: in.Address,
		ShippingCity:    in.City,
		ShippingState:   in.State,
		ShippingZip:     in.Zip,
		ShippingCountry: in.Country,
		Status:          models.OrderStatusPending,
		Notes:           in.Notes,
	}

	for attempt := 0; ; attempt++ {
		order.OrderNumber = GenerateOrderNumber()
		err = s.Store.CreateOrder(order, items)
		if err == nil {
			break
		}
		if store.IsOrderNumberConflict(err) && attempt < orderNumberAttempts-1 {
			continue
		}
		return nil, err
	}
	order.Items = items

	s.sendConfirmation(user, order, quote)
	return order, nil
}

func (s *Service) sendConfirmation(user *models.User, order *models.Order, quote pricing.Quote) {
	subject := "Order Confirmation - " + order.OrderNumber
	body := fmt.Sprintf(`
		<h2>Thank you for your order!</h2>
		<p>Your order number is: <strong>%s</strong></p>
		<p>Subtotal: $%.2f<br>Shipping: $%.2f<br>Tax: $%.2f</p>
		<p>Total: <strong>$%.2f</strong></p>
		<p>We'll send you a shipping confirmation when your order ships.</p>
	`, order.OrderNumber, quote.Subtotal, quote.Shipping, quote.Tax, quote.Total)
	mail.SendAsync(s.Mailer, user.Email, subject, body)
}

// Removed I, O, 0, 1 to keep the number readable over the phone.
const orderNumberCharset = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// GenerateOrderNumber produces the public order id: ORD-<date>-<6 chars>.
// Uniqueness is enforced by the database constraint; PlaceOrder retries on
// collision.
func GenerateOrderNumber() string {
	suffix := make([]byte, 6)
	if _, err := rand.Read(suffix); err != nil {
		return fmt.Sprintf("ORD-%s-%06d", time.Now().Format("20060102"), time.Now().UnixNano()%1000000)
	}
	for i := range suffix {
		suffix[i] = orderNumberCharset[int(suffix[i])%len(orderNumberCharset)]
	}
	return "ORD-" + time.Now().Format("20060102") + "-" + string(suffix)
}
