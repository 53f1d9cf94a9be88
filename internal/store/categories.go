package store

import (
	"database/sql"

	"github.com/Rehtse11/Essence-Luxe/internal/models"
)

// GetActiveCategories returns the categories shown in the shop sidebar and
// home page tiles, ordered by name.
func (s *Store) GetActiveCategories() ([]models.Category, error) {
	query := `SELECT id, name, slug, COALESCE(description, '') as description, is_active
		FROM categories WHERE is_active = 1 ORDER BY name`
	rows, err := s.DB.Query(query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var categories []models.Category
	for rows.Next() {
		var c models.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Slug, &c.Description, &c.IsActive); err != nil {
			return nil, err
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

func (s *Store) GetCategoryBySlug(slug string) (*models.Category, error) {
	query := `SELECT id, name, slug, COALESCE(description, '') as description, is_active
		FROM categories WHERE slug = ?`
	var c models.Category
	err := s.DB.QueryRow(query, slug).Scan(&c.ID, &c.Name, &c.Slug, &c.Description, &c.IsActive)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}
