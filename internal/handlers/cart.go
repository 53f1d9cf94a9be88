package handlers

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/Rehtse11/Essence-Luxe/internal/cart"
	"github.com/Rehtse11/Essence-Luxe/internal/pricing"
	"github.com/Rehtse11/Essence-Luxe/internal/store"
	"github.com/gorilla/csrf"
	"github.com/gorilla/sessions"
)

type CartHandler struct {
	Carts        *cart.Manager
	Templates    *TemplateCache
	SessionStore *sessions.CookieStore
}

// Add handles POST /add-to-cart from the shop and product pages. The session
// must be saved before any redirect: a Save after WriteHeader cannot set the
// cookie anymore.
func (h *CartHandler) Add(w http.ResponseWriter, r *http.Request) {
	session, _ := h.SessionStore.Get(r, SessionName)

	if err := r.ParseForm(); err != nil {
		session.AddFlash(FlashMessage{Type: "error", Message: "Invalid form data."})
		session.Save(r, w)
		http.Redirect(w, r, "/shop", http.StatusSeeOther)
		return
	}

	productID, err := strconv.ParseInt(r.FormValue("product_id"), 10, 64)
	if err != nil || productID <= 0 {
		session.AddFlash(FlashMessage{Type: "error", Message: "Invalid product."})
		session.Save(r, w)
		http.Redirect(w, r, "/shop", http.StatusSeeOther)
		return
	}
	quantity, err := strconv.Atoi(r.FormValue("quantity"))
	if err != nil || quantity < 1 {
		quantity = 1
	}

	c := getCart(session)
	warn, err := h.Carts.Add(c, sessionUserID(session), productID, quantity)
	if err != nil {
		var stockErr *store.InsufficientStockError
		switch {
		case errors.Is(err, store.ErrNotFound):
			session.AddFlash(FlashMessage{Type: "error", Message: "Product not found"})
		case errors.As(err, &stockErr):
			session.AddFlash(FlashMessage{
				Type:    "error",
				Message: fmt.Sprintf("Insufficient stock. Only %d items available.", stockErr.Available),
			})
		default:
			slog.Error("Failed to add to cart", "product_id", productID, "error", err)
			session.AddFlash(FlashMessage{Type: "error", Message: "Failed to add item to cart"})
		}
		session.Save(r, w)
		http.Redirect(w, r, backTo(r, "/shop"), http.StatusSeeOther)
		return
	}
	if warn != nil {
		slog.Warn("Cart sync warning", "error", warn)
	}
	setCart(session, c)

	session.AddFlash(FlashMessage{Type: "success", Message: "Added to cart!"})
	session.Save(r, w)
	if r.FormValue("buy_now") != "" {
		http.Redirect(w, r, "/cart", http.StatusSeeOther)
		return
	}
	http.Redirect(w, r, backTo(r, "/shop"), http.StatusSeeOther)
}

// View renders the cart page, and on POST applies one of the cart actions
// (update_quantity, remove_item, clear_cart) before redirecting back.
func (h *CartHandler) View(w http.ResponseWriter, r *http.Request) {
	session, _ := h.SessionStore.Get(r, SessionName)

	if r.Method == http.MethodPost {
		h.mutate(w, r, session)
		return
	}

	c := getCart(session)
	lines, subtotal, err := h.Carts.Items(c)
	if err != nil {
		http.Error(w, "Error fetching cart", http.StatusInternalServerError)
		return
	}
	quote := pricing.QuoteFor(subtotal)

	data := baseData(session)
	data["Lines"] = lines
	data["Quote"] = quote
	data["CsrfField"] = csrf.TemplateField(r)
	session.Save(r, w)
	render(w, h.Templates, "cart.html", data)
}

func (h *CartHandler) mutate(w http.ResponseWriter, r *http.Request, session *sessions.Session) {
	if err := r.ParseForm(); err != nil {
		session.AddFlash(FlashMessage{Type: "error", Message: "Invalid form data."})
		session.Save(r, w)
		http.Redirect(w, r, "/cart", http.StatusSeeOther)
		return
	}

	c := getCart(session)
	userID := sessionUserID(session)
	var warn *cart.SyncWarning

	switch {
	case r.PostForm.Has("update_quantity"):
		productID, err := strconv.ParseInt(r.FormValue("product_id"), 10, 64)
		if err != nil || productID <= 0 {
			session.AddFlash(FlashMessage{Type: "error", Message: "Invalid product."})
			session.Save(r, w)
			http.Redirect(w, r, "/cart", http.StatusSeeOther)
			return
		}
		quantity, err := strconv.Atoi(r.FormValue("quantity"))
		if err != nil {
			session.AddFlash(FlashMessage{Type: "error", Message: "Invalid quantity."})
			session.Save(r, w)
			http.Redirect(w, r, "/cart", http.StatusSeeOther)
			return
		}
		warn = h.Carts.Update(c, userID, productID, quantity)
		session.AddFlash(FlashMessage{Type: "success", Message: "Cart updated"})

	case r.PostForm.Has("remove_item"):
		productID, err := strconv.ParseInt(r.FormValue("product_id"), 10, 64)
		if err != nil || productID <= 0 {
			session.AddFlash(FlashMessage{Type: "error", Message: "Invalid product."})
			session.Save(r, w)
			http.Redirect(w, r, "/cart", http.StatusSeeOther)
			return
		}
		warn = h.Carts.Remove(c, userID, productID)
		session.AddFlash(FlashMessage{Type: "success", Message: "Item removed from cart"})

	case r.PostForm.Has("clear_cart"):
		warn = h.Carts.Clear(c, userID)
		session.AddFlash(FlashMessage{Type: "success", Message: "Cart cleared"})

	default:
		session.AddFlash(FlashMessage{Type: "error", Message: "Unknown cart action."})
	}

	if warn != nil {
		slog.Warn("Cart sync warning", "error", warn)
	}
	setCart(session, c)
	session.Save(r, w)
	http.Redirect(w, r, "/cart", http.StatusSeeOther)
}

// backTo prefers the referring page for post-action redirects, falling back
// when the referer is absent.
func backTo(r *http.Request, fallback string) string {
	if ref := r.Referer(); ref != "" {
		return ref
	}
	return fallback
}
