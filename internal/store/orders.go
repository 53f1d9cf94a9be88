package store

import (
	"database/sql"
	"fmt"

	"github.com/Rehtse11/Essence-Luxe/internal/models"
)

// CreateOrder writes the order, its line items, and the stock decrements in a
// single transaction. The decrement is conditional on remaining stock and the
// affected-row count is checked, so two orders racing for the last unit cannot
// both commit; the loser rolls back with an InsufficientStockError.
func (s *Store) CreateOrder(order *models.Order, items []models.OrderItem) error {
	tx, err := s.DB.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	res, err := tx.Exec(`
		INSERT INTO orders (order_number, user_id, total_amount, payment_method,
			shipping_address, shipping_city, shipping_state, shipping_zip,
			shipping_country, status, notes, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
	`, order.OrderNumber, order.UserID, order.TotalAmount, order.PaymentMethod,
		order.ShippingAddress, order.ShippingCity, order.ShippingState,
		order.ShippingZip, order.ShippingCountry, order.Status, order.Notes)
	if err != nil {
		return err
	}
	orderID, err := res.LastInsertId()
	if err != nil {
		return err
	}

	for i := range items {
		item := &items[i]
		item.OrderID = orderID
		if _, err := tx.Exec(`
			INSERT INTO order_items (order_id, product_id, quantity, price, subtotal)
			VALUES (?, ?, ?, ?, ?)
		`, item.OrderID, item.ProductID, item.Quantity, item.Price, item.Subtotal); err != nil {
			return err
		}

		res, err := tx.Exec(`
			UPDATE products SET stock_quantity = stock_quantity - ?
			WHERE id = ? AND stock_quantity >= ?
		`, item.Quantity, item.ProductID, item.Quantity)
		if err != nil {
			return err
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if affected == 0 {
			var available int
			if err := tx.QueryRow(`SELECT stock_quantity FROM products WHERE id = ?`,
				item.ProductID).Scan(&available); err != nil && err != sql.ErrNoRows {
				return err
			}
			return &InsufficientStockError{
				ProductID: item.ProductID,
				Available: available,
				Requested: item.Quantity,
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	order.ID = orderID
	return nil
}

// IsOrderNumberConflict reports whether CreateOrder failed because the
// generated order number already exists; the caller regenerates and retries.
func IsOrderNumberConflict(err error) bool {
	return isUniqueViolation(err)
}

const orderColumns = `id, order_number, user_id, total_amount, payment_method,
	shipping_address, shipping_city, shipping_state, shipping_zip, shipping_country,
	status, COALESCE(notes, '') as notes, created_at`

func scanOrder(row interface{ Scan(...any) error }) (*models.Order, error) {
	var o models.Order
	err := row.Scan(&o.ID, &o.OrderNumber, &o.UserID, &o.TotalAmount, &o.PaymentMethod,
		&o.ShippingAddress, &o.ShippingCity, &o.ShippingState, &o.ShippingZip,
		&o.ShippingCountry, &o.Status, &o.Notes, &o.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &o, nil
}

// GetOrdersByUser returns the user's most recent orders for the account page.
func (s *Store) GetOrdersByUser(userID int64, limit int) ([]models.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE user_id = ?
		ORDER BY created_at DESC LIMIT ?`
	rows, err := s.DB.Query(query, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orders []models.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, *o)
	}
	return orders, rows.Err()
}

// GetOrderForUser fetches one order with its items, scoped to the owner so a
// user cannot read another customer's order by id.
func (s *Store) GetOrderForUser(orderID, userID int64) (*models.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE id = ? AND user_id = ?`
	o, err := scanOrder(s.DB.QueryRow(query, orderID, userID))
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	o.Items, err = s.GetOrderItems(o.ID)
	return o, err
}

func (s *Store) GetOrderItems(orderID int64) ([]models.OrderItem, error) {
	query := `
		SELECT oi.id, oi.order_id, oi.product_id, p.name, oi.quantity, oi.price, oi.subtotal
		FROM order_items oi
		JOIN products p ON oi.product_id = p.id
		WHERE oi.order_id = ?
	`
	rows, err := s.DB.Query(query, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []models.OrderItem
	for rows.Next() {
		var i models.OrderItem
		if err := rows.Scan(&i.ID, &i.OrderID, &i.ProductID, &i.ProductName,
			&i.Quantity, &i.Price, &i.Subtotal); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	return items, rows.Err()
}

// UserOrderStats feeds the account dashboard.
type UserOrderStats struct {
	TotalOrders int
	TotalSpent  float64
}

func (s *Store) GetUserOrderStats(userID int64) (*UserOrderStats, error) {
	stats := &UserOrderStats{}
	err := s.DB.QueryRow(`
		SELECT COUNT(*), COALESCE(SUM(total_amount), 0)
		FROM orders WHERE user_id = ?
	`, userID).Scan(&stats.TotalOrders, &stats.TotalSpent)
	if err != nil {
		return nil, err
	}
	return stats, nil
}

// GetAllOrders pages through every order for the admin list, newest first.
func (s *Store) GetAllOrders(limit, offset int) ([]models.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders
		ORDER BY created_at DESC LIMIT ? OFFSET ?`
	rows, err := s.DB.Query(query, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orders []models.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, *o)
	}
	return orders, rows.Err()
}

func (s *Store) GetTotalOrdersCount() (int, error) {
	var count int
	err := s.DB.QueryRow(`SELECT COUNT(*) FROM orders`).Scan(&count)
	return count, err
}

func (s *Store) UpdateOrderStatus(id int64, status string) error {
	res, err := s.DB.Exec(`UPDATE orders SET status = ? WHERE id = ?`, status, id)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("order %d: %w", id, ErrNotFound)
	}
	return nil
}
