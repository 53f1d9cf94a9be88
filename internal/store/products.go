package store

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/Rehtse11/Essence-Luxe/internal/models"
)

// ProductFilter narrows the catalog listing. Zero values mean "no filter";
// MaxPrice of 0 means no price ceiling.
type ProductFilter struct {
	CategoryID   int64
	Search       string
	MinPrice     float64
	MaxPrice     float64
	FeaturedOnly bool
	Sort         string
	Limit        int
	Offset       int
}

// sortColumns whitelists the ORDER BY clause. Raw sort strings from the query
// string never reach the SQL.
var sortColumns = map[string]string{
	"newest":     "p.created_at DESC",
	"oldest":     "p.created_at ASC",
	"price_low":  "p.price ASC",
	"price_high": "p.price DESC",
	"name_az":    "p.name ASC",
	"name_za":    "p.name DESC",
}

// SortKeys lists the accepted sort values for the shop page dropdown.
var SortKeys = []string{"newest", "oldest", "price_low", "price_high", "name_az", "name_za"}

func sortClause(key string) string {
	if col, ok := sortColumns[key]; ok {
		return col
	}
	return sortColumns["newest"]
}

const productColumns = `p.id, p.category_id, COALESCE(c.name, '') as category_name,
	COALESCE(c.slug, '') as category_slug, p.name, p.slug, p.description,
	COALESCE(p.notes, '') as notes, COALESCE(p.sizes, '') as sizes, p.price,
	COALESCE(p.original_price, 0) as original_price, p.stock_quantity,
	COALESCE(p.image, '') as image, p.is_featured, p.is_active, p.views, p.created_at`

func scanProduct(row interface{ Scan(...any) error }) (*models.Product, error) {
	var p models.Product
	err := row.Scan(&p.ID, &p.CategoryID, &p.CategoryName, &p.CategorySlug, &p.Name,
		&p.Slug, &p.Description, &p.Notes, &p.Sizes, &p.Price, &p.OriginalPrice,
		&p.StockQuantity, &p.Image, &p.IsFeatured, &p.IsActive, &p.Views, &p.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// filterSQL builds the shared WHERE fragment for listing and counting.
func (f ProductFilter) filterSQL() (string, []any) {
	var sb strings.Builder
	var args []any
	sb.WriteString(" WHERE p.is_active = 1")

	if f.CategoryID > 0 {
		sb.WriteString(" AND p.category_id = ?")
		args = append(args, f.CategoryID)
	}
	if f.Search != "" {
		sb.WriteString(" AND (p.name LIKE ? OR p.description LIKE ? OR p.notes LIKE ?)")
		term := "%" + f.Search + "%"
		args = append(args, term, term, term)
	}
	if f.MinPrice > 0 {
		sb.WriteString(" AND p.price >= ?")
		args = append(args, f.MinPrice)
	}
	if f.MaxPrice > 0 {
		sb.WriteString(" AND p.price <= ?")
		args = append(args, f.MaxPrice)
	}
	if f.FeaturedOnly {
		sb.WriteString(" AND p.is_featured = 1")
	}
	return sb.String(), args
}

// GetProducts returns active products matching the filter, joined with their
// category. Pages past the end simply come back empty.
func (s *Store) GetProducts(f ProductFilter) ([]models.Product, error) {
	where, args := f.filterSQL()
	query := `SELECT ` + productColumns + `
		FROM products p
		LEFT JOIN categories c ON p.category_id = c.id` +
		where + " ORDER BY " + sortClause(f.Sort)

	if f.Limit > 0 {
		query += " LIMIT ? OFFSET ?"
		args = append(args, f.Limit, f.Offset)
	}

	rows, err := s.DB.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var products []models.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, *p)
	}
	return products, rows.Err()
}

// CountProducts returns the total matching the filter, ignoring Limit/Offset.
// Pagination math is totalPages = ceil(count / pageSize) at the handler.
func (s *Store) CountProducts(f ProductFilter) (int, error) {
	where, args := f.filterSQL()
	query := "SELECT COUNT(*) FROM products p" + where

	var count int
	if err := s.DB.QueryRow(query, args...).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

// GetProductBySlug looks up one active product for the detail page.
func (s *Store) GetProductBySlug(slug string) (*models.Product, error) {
	query := `SELECT ` + productColumns + `
		FROM products p
		LEFT JOIN categories c ON p.category_id = c.id
		WHERE p.slug = ? AND p.is_active = 1`
	p, err := scanProduct(s.DB.QueryRow(query, slug))
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	return p, err
}

// GetActiveProduct returns one product by id, restricted to active rows.
// Cart operations use this so inactive products fail with ErrNotFound.
func (s *Store) GetActiveProduct(id int64) (*models.Product, error) {
	query := `SELECT ` + productColumns + `
		FROM products p
		LEFT JOIN categories c ON p.category_id = c.id
		WHERE p.id = ? AND p.is_active = 1`
	p, err := scanProduct(s.DB.QueryRow(query, id))
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	return p, err
}

// GetProductByID returns one product regardless of active flag, for the admin
// edit form.
func (s *Store) GetProductByID(id int64) (*models.Product, error) {
	query := `SELECT ` + productColumns + `
		FROM products p
		LEFT JOIN categories c ON p.category_id = c.id
		WHERE p.id = ?`
	p, err := scanProduct(s.DB.QueryRow(query, id))
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	return p, err
}

// GetActiveProductsByIDs fetches the active subset of the given ids, for cart
// display and checkout. Products deactivated since being carted drop out. The
// ids come from map iteration, so the query orders by name to keep cart and
// checkout lines stable between renders.
func (s *Store) GetActiveProductsByIDs(ids []int64) ([]models.Product, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	placeholders := strings.Repeat("?,", len(ids)-1) + "?"
	query := fmt.Sprintf(`SELECT `+productColumns+`
		FROM products p
		LEFT JOIN categories c ON p.category_id = c.id
		WHERE p.id IN (%s) AND p.is_active = 1
		ORDER BY p.name ASC`, placeholders)

	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	rows, err := s.DB.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var products []models.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, *p)
	}
	return products, rows.Err()
}

// IncrementProductViews bumps the view counter on the detail page. Plain
// non-transactional write; lost updates under concurrent views are tolerated.
func (s *Store) IncrementProductViews(id int64) error {
	_, err := s.DB.Exec(`UPDATE products SET views = views + 1 WHERE id = ?`, id)
	return err
}

func (s *Store) CreateProduct(p *models.Product) error {
	query := `
		INSERT INTO products (category_id, name, slug, description, notes, sizes, price,
			original_price, stock_quantity, image, is_featured, is_active, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
	`
	res, err := s.DB.Exec(query, p.CategoryID, p.Name, p.Slug, p.Description, p.Notes,
		p.Sizes, p.Price, p.OriginalPrice, p.StockQuantity, p.Image, p.IsFeatured, p.IsActive)
	if err != nil {
		return err
	}
	p.ID, err = res.LastInsertId()
	return err
}

func (s *Store) UpdateProduct(p *models.Product) error {
	query := `
		UPDATE products
		SET category_id = ?, name = ?, slug = ?, description = ?, notes = ?, sizes = ?,
			price = ?, original_price = ?, stock_quantity = ?, is_featured = ?, is_active = ?
		WHERE id = ?
	`
	_, err := s.DB.Exec(query, p.CategoryID, p.Name, p.Slug, p.Description, p.Notes,
		p.Sizes, p.Price, p.OriginalPrice, p.StockQuantity, p.IsFeatured, p.IsActive, p.ID)
	return err
}

func (s *Store) UpdateProductImage(id int64, image string) error {
	_, err := s.DB.Exec(`UPDATE products SET image = ? WHERE id = ?`, image, id)
	return err
}

// DeactivateProduct hides a product from the catalog without deleting the row,
// so historical order items keep a valid reference.
func (s *Store) DeactivateProduct(id int64) error {
	_, err := s.DB.Exec(`UPDATE products SET is_active = 0 WHERE id = ?`, id)
	return err
}

// GetAllProducts lists every product, active or not, for the admin table.
func (s *Store) GetAllProducts(limit, offset int) ([]models.Product, error) {
	query := `SELECT ` + productColumns + `
		FROM products p
		LEFT JOIN categories c ON p.category_id = c.id
		ORDER BY p.created_at DESC
		LIMIT ? OFFSET ?`
	rows, err := s.DB.Query(query, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var products []models.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, *p)
	}
	return products, rows.Err()
}

func (s *Store) GetTotalProductsCount() (int, error) {
	var count int
	err := s.DB.QueryRow(`SELECT COUNT(*) FROM products`).Scan(&count)
	return count, err
}
