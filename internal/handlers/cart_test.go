package handlers

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/Rehtse11/Essence-Luxe/internal/cart"
	"github.com/Rehtse11/Essence-Luxe/internal/models"
	"github.com/Rehtse11/Essence-Luxe/internal/store"
	"github.com/gorilla/sessions"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	require.NoError(t, s.Migrate(filepath.Join("..", "..", "migrations")))
	return s
}

func newSessionStore() *sessions.CookieStore {
	return sessions.NewCookieStore([]byte("0123456789abcdef0123456789abcdef"))
}

func seedProduct(t *testing.T, s *store.Store, name string, price float64, stock int) *models.Product {
	t.Helper()
	p := &models.Product{
		CategoryID:    1,
		Name:          name,
		Slug:          name,
		Description:   "test fragrance",
		Price:         price,
		StockQuantity: stock,
		IsActive:      true,
	}
	require.NoError(t, s.CreateProduct(p))
	return p
}

func postForm(path string, form url.Values, cookies []*http.Cookie) *http.Request {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	for _, c := range cookies {
		req.AddCookie(c)
	}
	return req
}

// sessionCart decodes the cart a client would send on its next request.
func sessionCart(t *testing.T, ss *sessions.CookieStore, cookies []*http.Cookie) cart.Cart {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	session, err := ss.Get(req, SessionName)
	require.NoError(t, err)
	return getCart(session)
}

func newCartHandler(t *testing.T) (*CartHandler, *store.Store, *sessions.CookieStore) {
	t.Helper()
	s := newTestStore(t)
	ss := newSessionStore()
	h := &CartHandler{
		Carts:        cart.NewManager(s),
		Templates:    NewTemplateCache(),
		SessionStore: ss,
	}
	return h, s, ss
}

// The session cookie must be on the redirect response itself; a Save attempted
// after the 303 header is flushed never reaches the client.
func TestAddToCartSetsSessionCookieOnRedirect(t *testing.T) {
	h, s, ss := newCartHandler(t)
	p := seedProduct(t, s, "velvet-rose", 45.00, 10)

	form := url.Values{
		"product_id": {strconv.FormatInt(p.ID, 10)},
		"quantity":   {"2"},
	}
	w := httptest.NewRecorder()
	h.Add(w, postForm("/add-to-cart", form, nil))

	res := w.Result()
	assert.Equal(t, http.StatusSeeOther, res.StatusCode)

	var sessionCookie *http.Cookie
	for _, c := range res.Cookies() {
		if c.Name == SessionName {
			sessionCookie = c
		}
	}
	require.NotNil(t, sessionCookie, "redirect response must carry the session cookie")

	c := sessionCart(t, ss, res.Cookies())
	assert.Equal(t, 2, c[p.ID])
	assert.Equal(t, 2, c.Count())
}

func TestCartActionsPersistAcrossRequests(t *testing.T) {
	h, s, ss := newCartHandler(t)
	p := seedProduct(t, s, "amber-noir", 80.00, 10)
	id := strconv.FormatInt(p.ID, 10)

	w := httptest.NewRecorder()
	h.Add(w, postForm("/add-to-cart", url.Values{"product_id": {id}, "quantity": {"1"}}, nil))
	cookies := w.Result().Cookies()

	// Update the quantity on the cart page; the next request must see it.
	w = httptest.NewRecorder()
	h.View(w, postForm("/cart", url.Values{
		"update_quantity": {"1"},
		"product_id":      {id},
		"quantity":        {"5"},
	}, cookies))
	cookies = w.Result().Cookies()
	assert.Equal(t, cart.Cart{p.ID: 5}, sessionCart(t, ss, cookies))

	// Remove the line entirely.
	w = httptest.NewRecorder()
	h.View(w, postForm("/cart", url.Values{
		"remove_item": {"1"},
		"product_id":  {id},
	}, cookies))
	cookies = w.Result().Cookies()
	assert.Equal(t, 0, sessionCart(t, ss, cookies).Count())
}

// A garbage product id must not leave a phantom zero-id line inflating the
// cart count.
func TestCartUpdateRejectsBadProductID(t *testing.T) {
	h, s, ss := newCartHandler(t)
	p := seedProduct(t, s, "citrus-dawn", 25.00, 10)
	id := strconv.FormatInt(p.ID, 10)

	w := httptest.NewRecorder()
	h.Add(w, postForm("/add-to-cart", url.Values{"product_id": {id}, "quantity": {"2"}}, nil))
	cookies := w.Result().Cookies()

	for _, bad := range []string{"garbage", "0", "-7"} {
		w = httptest.NewRecorder()
		h.View(w, postForm("/cart", url.Values{
			"update_quantity": {"1"},
			"product_id":      {bad},
			"quantity":        {"5"},
		}, cookies))

		res := w.Result()
		assert.Equal(t, http.StatusSeeOther, res.StatusCode)
		c := sessionCart(t, ss, res.Cookies())
		assert.Equal(t, cart.Cart{p.ID: 2}, c, "cart must be unchanged for product_id %q", bad)
		assert.NotContains(t, c, int64(0))
	}
}
