package models

import (
	"time"
)

type User struct {
	ID        int64     `json:"id"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	Password  string    `json:"-"` // bcrypt hash
	Address   string    `json:"address"`
	City      string    `json:"city"`
	State     string    `json:"state"`
	ZipCode   string    `json:"zip_code"`
	Country   string    `json:"country"`
	Role      string    `json:"role"` // "customer" or "admin"
	IsActive  bool      `json:"is_active"`
	LastLogin time.Time `json:"last_login"`
	CreatedAt time.Time `json:"created_at"`
}

func (u *User) FullName() string {
	return u.FirstName + " " + u.LastName
}

func (u *User) IsAdmin() bool {
	return u.Role == "admin"
}

type Category struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Slug        string `json:"slug"`
	Description string `json:"description"`
	IsActive    bool   `json:"is_active"`
}

type Product struct {
	ID            int64     `json:"id"`
	CategoryID    int64     `json:"category_id"`
	CategoryName  string    `json:"category_name"` // joined for display
	CategorySlug  string    `json:"category_slug"`
	Name          string    `json:"name"`
	Slug          string    `json:"slug"`
	Description   string    `json:"description"`
	Notes         string    `json:"notes"` // comma-separated fragrance notes
	Sizes         string    `json:"sizes"`
	Price         float64   `json:"price"`
	OriginalPrice float64   `json:"original_price"` // 0 when not discounted
	StockQuantity int       `json:"stock_quantity"`
	Image         string    `json:"image"`
	IsFeatured    bool      `json:"is_featured"`
	IsActive      bool      `json:"is_active"`
	Views         int       `json:"views"`
	CreatedAt     time.Time `json:"created_at"`
}

// DiscountPercent returns the rounded markdown from OriginalPrice, 0 if none.
func (p *Product) DiscountPercent() int {
	if p.OriginalPrice <= p.Price {
		return 0
	}
	return int((p.OriginalPrice-p.Price)/p.OriginalPrice*100 + 0.5)
}

func (p *Product) InStock() bool {
	return p.StockQuantity > 0
}

// CartItem is one persisted cart row for a logged-in user. The session map is
// the working copy; these rows are the durable one.
type CartItem struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	ProductID int64     `json:"product_id"`
	Quantity  int       `json:"quantity"`
	UpdatedAt time.Time `json:"updated_at"`
}

type Order struct {
	ID              int64       `json:"id"`
	OrderNumber     string      `json:"order_number"` // public "ORD-..." id
	UserID          int64       `json:"user_id"`
	TotalAmount     float64     `json:"total_amount"`
	PaymentMethod   string      `json:"payment_method"`
	ShippingAddress string      `json:"shipping_address"`
	ShippingCity    string      `json:"shipping_city"`
	ShippingState   string      `json:"shipping_state"`
	ShippingZip     string      `json:"shipping_zip"`
	ShippingCountry string      `json:"shipping_country"`
	Status          string      `json:"status"`
	Notes           string      `json:"notes"`
	CreatedAt       time.Time   `json:"created_at"`
	Items           []OrderItem `json:"items,omitempty"`
}

// OrderItem snapshots the price at purchase time so historical orders are
// immune to later catalog price changes.
type OrderItem struct {
	ID          int64   `json:"id"`
	OrderID     int64   `json:"order_id"`
	ProductID   int64   `json:"product_id"`
	ProductName string  `json:"product_name"` // joined for display
	Quantity    int     `json:"quantity"`
	Price       float64 `json:"price"`
	Subtotal    float64 `json:"subtotal"`
}

type ContactMessage struct {
	ID        int64     `json:"id"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Email     string    `json:"email"`
	Subject   string    `json:"subject"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}

// Order statuses, in lifecycle order.
const (
	OrderStatusPending    = "pending"
	OrderStatusProcessing = "processing"
	OrderStatusShipped    = "shipped"
	OrderStatusDelivered  = "delivered"
	OrderStatusCancelled  = "cancelled"
)

// OrderStatuses is the whitelist for the admin status update form.
var OrderStatuses = []string{
	OrderStatusPending,
	OrderStatusProcessing,
	OrderStatusShipped,
	OrderStatusDelivered,
	OrderStatusCancelled,
}
