package store

import (
	"database/sql"
	"errors"
	"strings"

	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

// ErrNotFound is returned when a lookup matches no row. Handlers turn it into
// a flash message + redirect rather than a 500.
var ErrNotFound = errors.New("store: not found")

// InsufficientStockError is returned when a cart or checkout operation asks
// for more units than the catalog has.
type InsufficientStockError struct {
	ProductID int64
	Available int
	Requested int
}

func (e *InsufficientStockError) Error() string {
	return "store: insufficient stock"
}

type Store struct {
	DB *sql.DB
}

func NewStore(dataSourceName string) (*Store, error) {
	db, err := sql.Open("sqlite", dataSourceName)
	if err != nil {
		return nil, err
	}

	if err := db.Ping(); err != nil {
		return nil, err
	}

	// Session-cart sync and the checkout transaction can race on the same
	// connection pool; sqlite only supports one writer.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(`PRAGMA foreign_keys = ON;`); err != nil {
		return nil, err
	}

	return &Store{DB: db}, nil
}

func (s *Store) Close() error {
	return s.DB.Close()
}

// isUniqueViolation reports whether err is a UNIQUE constraint failure from
// the sqlite driver. Used by checkout to retry order number generation.
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
