package store

import (
	"path/filepath"
	"testing"

	"github.com/Rehtse11/Essence-Luxe/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	require.NoError(t, s.Migrate(filepath.Join("..", "..", "migrations")))
	return s
}

func seedProduct(t *testing.T, s *Store, p models.Product) *models.Product {
	t.Helper()
	if p.Description == "" {
		p.Description = "test fragrance"
	}
	if p.Slug == "" {
		p.Slug = p.Name
	}
	p.IsActive = true
	require.NoError(t, s.CreateProduct(&p))
	return &p
}

func TestGetProductsFilters(t *testing.T) {
	s := newTestStore(t)
	// Seeded categories: 1=Floral, 2=Woody.
	rose := seedProduct(t, s, models.Product{CategoryID: 1, Name: "Velvet Rose", Price: 45, StockQuantity: 10, IsFeatured: true})
	seedProduct(t, s, models.Product{CategoryID: 1, Name: "Iris Bloom", Price: 60, StockQuantity: 10})
	cedar := seedProduct(t, s, models.Product{CategoryID: 2, Name: "Cedar Smoke", Price: 120, StockQuantity: 10, Notes: "cedar, vetiver"})

	t.Run("by category", func(t *testing.T) {
		got, err := s.GetProducts(ProductFilter{CategoryID: 2})
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, cedar.ID, got[0].ID)
		assert.Equal(t, "Woody", got[0].CategoryName)
	})

	t.Run("search matches notes too", func(t *testing.T) {
		got, err := s.GetProducts(ProductFilter{Search: "vetiver"})
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, cedar.ID, got[0].ID)
	})

	t.Run("featured only", func(t *testing.T) {
		got, err := s.GetProducts(ProductFilter{FeaturedOnly: true})
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, rose.ID, got[0].ID)
	})

	t.Run("price range", func(t *testing.T) {
		got, err := s.GetProducts(ProductFilter{MinPrice: 50, MaxPrice: 100})
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, "Iris Bloom", got[0].Name)
	})

	t.Run("count matches filter", func(t *testing.T) {
		n, err := s.CountProducts(ProductFilter{CategoryID: 1})
		require.NoError(t, err)
		assert.Equal(t, 2, n)
	})

	t.Run("inactive products are hidden", func(t *testing.T) {
		require.NoError(t, s.DeactivateProduct(cedar.ID))
		got, err := s.GetProducts(ProductFilter{})
		require.NoError(t, err)
		assert.Len(t, got, 2)
	})
}

func TestGetProductsSort(t *testing.T) {
	s := newTestStore(t)
	seedProduct(t, s, models.Product{CategoryID: 1, Name: "Bravo", Price: 30, StockQuantity: 1})
	seedProduct(t, s, models.Product{CategoryID: 1, Name: "Alpha", Price: 90, StockQuantity: 1})

	got, err := s.GetProducts(ProductFilter{Sort: "price_low"})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "Bravo", got[0].Name)

	got, err = s.GetProducts(ProductFilter{Sort: "name_az"})
	require.NoError(t, err)
	assert.Equal(t, "Alpha", got[0].Name)

	// Unknown sort keys fall back to newest instead of erroring.
	got, err = s.GetProducts(ProductFilter{Sort: "price; DROP TABLE products"})
	require.NoError(t, err)
	assert.Len(t, got, 2)
}

func TestGetProductsPaginationPastEnd(t *testing.T) {
	s := newTestStore(t)
	seedProduct(t, s, models.Product{CategoryID: 1, Name: "Only One", Price: 10, StockQuantity: 1})

	got, err := s.GetProducts(ProductFilter{Limit: 12, Offset: 120})
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestGetProductBySlug(t *testing.T) {
	s := newTestStore(t)
	p := seedProduct(t, s, models.Product{CategoryID: 1, Name: "Velvet Rose", Slug: "velvet-rose", Price: 45, StockQuantity: 10})

	got, err := s.GetProductBySlug("velvet-rose")
	require.NoError(t, err)
	assert.Equal(t, p.ID, got.ID)

	_, err = s.GetProductBySlug("no-such-scent")
	assert.ErrorIs(t, err, ErrNotFound)
}

// The ids come from a map, so two renders of the same cart must not shuffle
// the lines.
func TestGetActiveProductsByIDsOrdersByName(t *testing.T) {
	s := newTestStore(t)
	cedar := seedProduct(t, s, models.Product{CategoryID: 2, Name: "Cedar Smoke", Price: 120, StockQuantity: 5})
	amber := seedProduct(t, s, models.Product{CategoryID: 1, Name: "Amber Noir", Price: 80, StockQuantity: 5})
	velvet := seedProduct(t, s, models.Product{CategoryID: 1, Name: "Velvet Rose", Price: 45, StockQuantity: 5})

	for _, ids := range [][]int64{
		{velvet.ID, cedar.ID, amber.ID},
		{cedar.ID, amber.ID, velvet.ID},
	} {
		got, err := s.GetActiveProductsByIDs(ids)
		require.NoError(t, err)
		require.Len(t, got, 3)
		assert.Equal(t, "Amber Noir", got[0].Name)
		assert.Equal(t, "Cedar Smoke", got[1].Name)
		assert.Equal(t, "Velvet Rose", got[2].Name)
	}
}

func TestIncrementProductViews(t *testing.T) {
	s := newTestStore(t)
	p := seedProduct(t, s, models.Product{CategoryID: 1, Name: "Counted", Price: 10, StockQuantity: 1})

	require.NoError(t, s.IncrementProductViews(p.ID))
	require.NoError(t, s.IncrementProductViews(p.ID))

	got, err := s.GetActiveProduct(p.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, got.Views)
}

func TestDiscountFields(t *testing.T) {
	s := newTestStore(t)
	p := seedProduct(t, s, models.Product{CategoryID: 1, Name: "Marked Down", Price: 75, OriginalPrice: 100, StockQuantity: 1})

	got, err := s.GetActiveProduct(p.ID)
	require.NoError(t, err)
	assert.Equal(t, 25, got.DiscountPercent())
}
