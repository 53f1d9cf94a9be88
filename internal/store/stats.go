package store

import "database/sql"

type DashboardStats struct {
	TotalProducts  int
	TotalOrders    int
	TotalCustomers int
	Revenue        float64
	OrdersByStatus map[string]int
	TopSellers     []ProductSales
}

type ProductSales struct {
	ProductID int64
	Name      string
	UnitsSold int
}

// GetDashboardStats aggregates the numbers shown on the admin dashboard.
func (s *Store) GetDashboardStats() (*DashboardStats, error) {
	stats := &DashboardStats{
		OrdersByStatus: make(map[string]int),
	}

	err := s.DB.QueryRow(`SELECT COUNT(*) FROM products WHERE is_active = 1`).Scan(&stats.TotalProducts)
	if err != nil && err != sql.ErrNoRows {
		return nil, err
	}

	err = s.DB.QueryRow(`SELECT COUNT(*) FROM orders`).Scan(&stats.TotalOrders)
	if err != nil && err != sql.ErrNoRows {
		return nil, err
	}

	err = s.DB.QueryRow(`SELECT COUNT(*) FROM users WHERE role = 'customer'`).Scan(&stats.TotalCustomers)
	if err != nil && err != sql.ErrNoRows {
		return nil, err
	}

	// Cancelled orders do not count toward revenue.
	err = s.DB.QueryRow(`SELECT COALESCE(SUM(total_amount), 0) FROM orders
		WHERE status != 'cancelled'`).Scan(&stats.Revenue)
	if err != nil && err != sql.ErrNoRows {
		return nil, err
	}

	rows, err := s.DB.Query(`SELECT status, COUNT(*) FROM orders GROUP BY status`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, err
		}
		stats.OrdersByStatus[status] = count
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	sellerRows, err := s.DB.Query(`
		SELECT p.id, p.name, COALESCE(SUM(oi.quantity), 0) as units_sold
		FROM products p
		LEFT JOIN order_items oi ON p.id = oi.product_id
		GROUP BY p.id
		ORDER BY units_sold DESC
		LIMIT 5
	`)
	if err != nil {
		return nil, err
	}
	defer sellerRows.Close()
	for sellerRows.Next() {
		var ps ProductSales
		if err := sellerRows.Scan(&ps.ProductID, &ps.Name, &ps.UnitsSold); err != nil {
			return nil, err
		}
		stats.TopSellers = append(stats.TopSellers, ps)
	}
	return stats, sellerRows.Err()
}
