package store

import (
	"github.com/Rehtse11/Essence-Luxe/internal/models"
)

// The cart table is the durable copy of a logged-in user's cart. The session
// holds the working copy; these writes are best-effort (see cart.Manager).

// UpsertCartItem inserts the row or overwrites its quantity if one already
// exists for this user/product pair.
func (s *Store) UpsertCartItem(userID, productID int64, quantity int) error {
	query := `
		INSERT INTO cart (user_id, product_id, quantity, created_at, updated_at)
		VALUES (?, ?, ?, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)
		ON CONFLICT(user_id, product_id)
		DO UPDATE SET quantity = excluded.quantity, updated_at = CURRENT_TIMESTAMP
	`
	_, err := s.DB.Exec(query, userID, productID, quantity)
	return err
}

// DeleteCartItem is idempotent; removing an absent row is a no-op.
func (s *Store) DeleteCartItem(userID, productID int64) error {
	_, err := s.DB.Exec(`DELETE FROM cart WHERE user_id = ? AND product_id = ?`, userID, productID)
	return err
}

func (s *Store) ClearCart(userID int64) error {
	_, err := s.DB.Exec(`DELETE FROM cart WHERE user_id = ?`, userID)
	return err
}

// GetCartItems returns the persisted cart rows for a user, loaded into the
// session once at login.
func (s *Store) GetCartItems(userID int64) ([]models.CartItem, error) {
	query := `SELECT id, user_id, product_id, quantity, updated_at FROM cart WHERE user_id = ?`
	rows, err := s.DB.Query(query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []models.CartItem
	for rows.Next() {
		var ci models.CartItem
		if err := rows.Scan(&ci.ID, &ci.UserID, &ci.ProductID, &ci.Quantity, &ci.UpdatedAt); err != nil {
			return nil, err
		}
		items = append(items, ci)
	}
	return items, rows.Err()
}
