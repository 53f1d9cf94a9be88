package cart

import (
	"path/filepath"
	"testing"

	"github.com/Rehtse11/Essence-Luxe/internal/models"
	"github.com/Rehtse11/Essence-Luxe/internal/store"
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

func seedProduct(t *testing.T, s *store.Store, name string, price float64, stock int) *models.Product {
	t.Helper()
	p := &models.Product{
		CategoryID:    1, // seeded "Floral"
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

func seedUser(t *testing.T, s *store.Store, email string) *models.User {
	t.Helper()
	u := &models.User{FirstName: "Test", LastName: "User", Email: email, Password: "x"}
	require.NoError(t, s.CreateUser(u))
	return u
}

func TestAddAccumulatesQuantity(t *testing.T) {
	s := newTestStore(t)
	m := NewManager(s)
	p := seedProduct(t, s, "velvet-rose", 45.00, 10)

	c := Cart{}
	_, err := m.Add(c, 0, p.ID, 2)
	require.NoError(t, err)
	_, err = m.Add(c, 0, p.ID, 3)
	require.NoError(t, err)

	assert.Equal(t, 5, c[p.ID])
	assert.Equal(t, 5, c.Count())
}

func TestAddRejectsOverStock(t *testing.T) {
	s := newTestStore(t)
	m := NewManager(s)
	p := seedProduct(t, s, "amber-noir", 80.00, 3)

	c := Cart{}
	_, err := m.Add(c, 0, p.ID, 2)
	require.NoError(t, err)

	// 2 already carted + 2 more would exceed the 3 in stock.
	_, err = m.Add(c, 0, p.ID, 2)
	var stockErr *store.InsufficientStockError
	require.ErrorAs(t, err, &stockErr)
	assert.Equal(t, 3, stockErr.Available)
	assert.Equal(t, 4, stockErr.Requested)

	// The failed add left the cart untouched.
	assert.Equal(t, 2, c[p.ID])
}

func TestAddUnknownProduct(t *testing.T) {
	s := newTestStore(t)
	m := NewManager(s)

	c := Cart{}
	_, err := m.Add(c, 0, 9999, 1)
	assert.ErrorIs(t, err, store.ErrNotFound)
	assert.Empty(t, c)
}

func TestAddInactiveProduct(t *testing.T) {
	s := newTestStore(t)
	m := NewManager(s)
	p := seedProduct(t, s, "discontinued", 30.00, 5)
	require.NoError(t, s.DeactivateProduct(p.ID))

	c := Cart{}
	_, err := m.Add(c, 0, p.ID, 1)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestUpdateZeroRemovesLine(t *testing.T) {
	s := newTestStore(t)
	m := NewManager(s)
	p := seedProduct(t, s, "citrus-dawn", 25.00, 10)

	c := Cart{p.ID: 2}
	warn := m.Update(c, 0, p.ID, 0)
	assert.Nil(t, warn)
	assert.NotContains(t, c, p.ID)
}

func TestRemoveAbsentProductIsNoop(t *testing.T) {
	s := newTestStore(t)
	m := NewManager(s)

	c := Cart{}
	warn := m.Remove(c, 0, 42)
	assert.Nil(t, warn)
	assert.Empty(t, c)
}

func TestClearEmptiesCart(t *testing.T) {
	s := newTestStore(t)
	m := NewManager(s)
	p1 := seedProduct(t, s, "oud-royal", 150.00, 5)
	p2 := seedProduct(t, s, "sea-salt", 40.00, 5)

	c := Cart{p1.ID: 1, p2.ID: 2}
	warn := m.Clear(c, 0)
	assert.Nil(t, warn)
	assert.Equal(t, 0, c.Count())
}

func TestPersistedCartRoundTrip(t *testing.T) {
	s := newTestStore(t)
	m := NewManager(s)
	u := seedUser(t, s, "shopper@example.com")
	p1 := seedProduct(t, s, "iris-bloom", 60.00, 10)
	p2 := seedProduct(t, s, "cedar-smoke", 75.00, 10)

	c := Cart{}
	_, err := m.Add(c, u.ID, p1.ID, 2)
	require.NoError(t, err)
	_, err = m.Add(c, u.ID, p2.ID, 1)
	require.NoError(t, err)
	warn := m.Update(c, u.ID, p1.ID, 3)
	assert.Nil(t, warn)

	// Simulates a fresh login on another device.
	loaded, err := m.LoadFromDB(u.ID)
	require.NoError(t, err)
	assert.Equal(t, Cart{p1.ID: 3, p2.ID: 1}, loaded)

	warn = m.Clear(c, u.ID)
	assert.Nil(t, warn)
	loaded, err = m.LoadFromDB(u.ID)
	require.NoError(t, err)
	assert.Empty(t, loaded)
}

func TestItemsUsesLivePrices(t *testing.T) {
	s := newTestStore(t)
	m := NewManager(s)
	p := seedProduct(t, s, "noir-intense", 50.00, 10)

	c := Cart{p.ID: 2}
	_, subtotal, err := m.Items(c)
	require.NoError(t, err)
	assert.InDelta(t, 100.00, subtotal, 0.001)

	// Catalog price change shows up on the next call, no caching.
	p.Price = 65.00
	require.NoError(t, s.UpdateProduct(p))

	lines, subtotal, err := m.Items(c)
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.InDelta(t, 130.00, subtotal, 0.001)
	assert.InDelta(t, 130.00, lines[0].LineTotal, 0.001)
}

func TestItemsSkipsDeactivatedProducts(t *testing.T) {
	s := newTestStore(t)
	m := NewManager(s)
	p1 := seedProduct(t, s, "keeper", 20.00, 10)
	p2 := seedProduct(t, s, "goner", 30.00, 10)
	require.NoError(t, s.DeactivateProduct(p2.ID))

	c := Cart{p1.ID: 1, p2.ID: 1}
	lines, subtotal, err := m.Items(c)
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Equal(t, p1.ID, lines[0].Product.ID)
	assert.InDelta(t, 20.00, subtotal, 0.001)
}
