package handlers

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/Rehtse11/Essence-Luxe/internal/cart"
	"github.com/Rehtse11/Essence-Luxe/internal/checkout"
	"github.com/Rehtse11/Essence-Luxe/internal/models"
	"github.com/Rehtse11/Essence-Luxe/internal/pricing"
	"github.com/Rehtse11/Essence-Luxe/internal/store"
	"github.com/gorilla/csrf"
	"github.com/gorilla/sessions"
)

type CheckoutHandler struct {
	Store        *store.Store
	Carts        *cart.Manager
	Checkout     *checkout.Service
	Templates    *TemplateCache
	SessionStore *sessions.CookieStore
}

// Form renders the checkout page with the order summary and the user's saved
// address prefilled. Routed behind RequireLogin.
func (h *CheckoutHandler) Form(w http.ResponseWriter, r *http.Request) {
	session, _ := h.SessionStore.Get(r, SessionName)

	c := getCart(session)
	if c.Count() == 0 {
		session.AddFlash(FlashMessage{Type: "error", Message: "Your cart is empty"})
		session.Save(r, w)
		http.Redirect(w, r, "/cart", http.StatusSeeOther)
		return
	}

	user, err := h.Store.GetUserByID(sessionUserID(session))
	if err != nil {
		http.Error(w, "Error fetching account", http.StatusInternalServerError)
		return
	}

	lines, subtotal, err := h.Carts.Items(c)
	if err != nil {
		http.Error(w, "Error fetching cart", http.StatusInternalServerError)
		return
	}

	h.renderForm(w, r, session, user, lines, pricing.QuoteFor(subtotal), nil, checkout.ShippingInput{
		Address: user.Address,
		City:    user.City,
		State:   user.State,
		Zip:     user.ZipCode,
		Country: user.Country,
	})
}

// Submit validates the shipping/payment input and places the order. Validation
// failures re-render the form with field errors and cause no side effects; a
// placed order clears the cart and redirects to the account orders tab.
func (h *CheckoutHandler) Submit(w http.ResponseWriter, r *http.Request) {
	session, _ := h.SessionStore.Get(r, SessionName)

	c := getCart(session)
	if c.Count() == 0 {
		session.AddFlash(FlashMessage{Type: "error", Message: "Your cart is empty"})
		session.Save(r, w)
		http.Redirect(w, r, "/cart", http.StatusSeeOther)
		return
	}

	user, err := h.Store.GetUserByID(sessionUserID(session))
	if err != nil {
		http.Error(w, "Error fetching account", http.StatusInternalServerError)
		return
	}

	if err := r.ParseForm(); err != nil {
		session.AddFlash(FlashMessage{Type: "error", Message: "Invalid form data."})
		session.Save(r, w)
		http.Redirect(w, r, "/checkout", http.StatusSeeOther)
		return
	}

	input := checkout.ShippingInput{
		Address:       r.FormValue("shipping_address"),
		City:          r.FormValue("shipping_city"),
		State:         r.FormValue("shipping_state"),
		Zip:           r.FormValue("shipping_zip"),
		Country:       r.FormValue("shipping_country"),
		PaymentMethod: r.FormValue("payment_method"),
		Notes:         r.FormValue("notes"),
	}

	if fieldErrors := input.Validate(); len(fieldErrors) > 0 {
		lines, subtotal, err := h.Carts.Items(c)
		if err != nil {
			http.Error(w, "Error fetching cart", http.StatusInternalServerError)
			return
		}
		h.renderForm(w, r, session, user, lines, pricing.QuoteFor(subtotal), fieldErrors, input)
		return
	}

	order, err := h.Checkout.PlaceOrder(user, c, input)
	if err != nil {
		var stockErr *store.InsufficientStockError
		if errors.As(err, &stockErr) {
			session.AddFlash(FlashMessage{
				Type:    "error",
				Message: fmt.Sprintf("An item in your cart no longer has enough stock (only %d left). Please adjust your cart.", stockErr.Available),
			})
			session.Save(r, w)
			http.Redirect(w, r, "/cart", http.StatusSeeOther)
			return
		}
		// Transaction already rolled back; the cart is untouched.
		slog.Error("Failed to process order", "user_id", user.ID, "error", err)
		session.AddFlash(FlashMessage{Type: "error", Message: "Failed to process order. Please try again."})
		session.Save(r, w)
		http.Redirect(w, r, "/checkout", http.StatusSeeOther)
		return
	}

	// Only after commit: empty the cart, both layers.
	if warn := h.Carts.Clear(c, user.ID); warn != nil {
		slog.Warn("Cart sync warning", "error", warn)
	}
	setCart(session, c)

	session.AddFlash(FlashMessage{
		Type:    "success",
		Message: "Order placed successfully! Order number: " + order.OrderNumber,
	})
	session.Save(r, w)
	http.Redirect(w, r, "/account?tab=orders", http.StatusSeeOther)
}

func (h *CheckoutHandler) renderForm(w http.ResponseWriter, r *http.Request, session *sessions.Session,
	user *models.User, lines []cart.Line, quote pricing.Quote,
	fieldErrors map[string]string, input checkout.ShippingInput) {

	data := baseData(session)
	data["User"] = user
	data["Lines"] = lines
	data["Quote"] = quote
	data["Errors"] = fieldErrors
	data["Input"] = input
	data["CsrfField"] = csrf.TemplateField(r)
	session.Save(r, w)
	render(w, h.Templates, "checkout.html", data)
}
