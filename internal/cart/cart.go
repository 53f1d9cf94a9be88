// Package cart manages the shopping cart: a session-held quantity map backed,
// for logged-in users, by the persisted cart table. The session copy is
// authoritative for the current request; database writes are best-effort and
// reported as typed warnings rather than failures.
package cart

import (
	"encoding/gob"
	"fmt"

	"github.com/Rehtse11/Essence-Luxe/internal/models"
	"github.com/Rehtse11/Essence-Luxe/internal/store"
)

// Cart maps product id to quantity. It lives in the session cookie, so it must
// be gob-encodable.
type Cart map[int64]int

func init() {
	gob.Register(Cart{})
}

// Count is the badge number in the nav: the sum of all quantities.
func (c Cart) Count() int {
	total := 0
	for _, qty := range c {
		total += qty
	}
	return total
}

func (c Cart) ProductIDs() []int64 {
	ids := make([]int64, 0, len(c))
	for id := range c {
		ids = append(ids, id)
	}
	return ids
}

// SyncWarning reports a failed best-effort write to the persisted cart table.
// The session cart already holds the requested state, so callers log the
// warning and carry on; the durable copy catches up on the next sync.
type SyncWarning struct {
	Op  string
	Err error
}

func (w *SyncWarning) Error() string {
	return fmt.Sprintf("cart: %s: durable sync failed: %v", w.Op, w.Err)
}

func (w *SyncWarning) Unwrap() error {
	return w.Err
}

type Manager struct {
	Store *store.Store
}

func NewManager(s *store.Store) *Manager {
	return &Manager{Store: s}
}

// Add increments the cart quantity for a product after checking that it is
// active and that the combined quantity fits the current stock. A userID of 0
// means anonymous; anything else also upserts the persisted row.
func (m *Manager) Add(c Cart, userID, productID int64, quantity int) (*SyncWarning, error) {
	if quantity < 1 {
		quantity = 1
	}

	product, err := m.Store.GetActiveProduct(productID)
	if err != nil {
		return nil, err
	}

	newQty := c[productID] + quantity
	if newQty > product.StockQuantity {
		return nil, &store.InsufficientStockError{
			ProductID: productID,
			Available: product.StockQuantity,
			Requested: newQty,
		}
	}

	c[productID] = newQty

	if userID != 0 {
		if err := m.Store.UpsertCartItem(userID, productID, newQty); err != nil {
			return &SyncWarning{Op: "add", Err: err}, nil
		}
	}
	return nil, nil
}

// Update overwrites the quantity unconditionally; no stock re-check happens at
// update time. A quantity of zero or less removes the line.
func (m *Manager) Update(c Cart, userID, productID int64, quantity int) *SyncWarning {
	if quantity <= 0 {
		return m.Remove(c, userID, productID)
	}

	c[productID] = quantity

	if userID != 0 {
		if err := m.Store.UpsertCartItem(userID, productID, quantity); err != nil {
			return &SyncWarning{Op: "update", Err: err}
		}
	}
	return nil
}

// Remove deletes the line from both layers. Removing an absent product is a
// no-op.
func (m *Manager) Remove(c Cart, userID, productID int64) *SyncWarning {
	delete(c, productID)

	if userID != 0 {
		if err := m.Store.DeleteCartItem(userID, productID); err != nil {
			return &SyncWarning{Op: "remove", Err: err}
		}
	}
	return nil
}

// Clear empties the session cart and deletes every persisted row for the user.
func (m *Manager) Clear(c Cart, userID int64) *SyncWarning {
	for id := range c {
		delete(c, id)
	}

	if userID != 0 {
		if err := m.Store.ClearCart(userID); err != nil {
			return &SyncWarning{Op: "clear", Err: err}
		}
	}
	return nil
}

// LoadFromDB builds a fresh cart from the user's persisted rows. Called once
// at login; whatever was in the anonymous session cart is discarded, not
// merged.
func (m *Manager) LoadFromDB(userID int64) (Cart, error) {
	items, err := m.Store.GetCartItems(userID)
	if err != nil {
		return nil, err
	}
	c := make(Cart, len(items))
	for _, item := range items {
		c[item.ProductID] = item.Quantity
	}
	return c, nil
}

// Line is one cart row joined with its live product for display and totals.
type Line struct {
	Product   models.Product
	Quantity  int
	LineTotal float64
}

// Items resolves the cart against current catalog prices. Prices are
// re-queried on every call rather than cached, so totals always reflect live
// pricing. Products deactivated since being carted are skipped.
func (m *Manager) Items(c Cart) ([]Line, float64, error) {
	if len(c) == 0 {
		return nil, 0, nil
	}

	products, err := m.Store.GetActiveProductsByIDs(c.ProductIDs())
	if err != nil {
		return nil, 0, err
	}

	var lines []Line
	var subtotal float64
	for _, p := range products {
		qty := c[p.ID]
		lineTotal := p.Price * float64(qty)
		subtotal += lineTotal
		lines = append(lines, Line{Product: p, Quantity: qty, LineTotal: lineTotal})
	}
	return lines, subtotal, nil
}
