package store

import (
	"database/sql"

	"github.com/Rehtse11/Essence-Luxe/internal/models"
)

const userColumns = `id, first_name, last_name, email, COALESCE(phone, '') as phone, password,
	COALESCE(address, '') as address, COALESCE(city, '') as city, COALESCE(state, '') as state,
	COALESCE(zip_code, '') as zip_code, COALESCE(country, '') as country, role, is_active,
	COALESCE(last_login, created_at) as last_login, created_at`

func scanUser(row interface{ Scan(...any) error }) (*models.User, error) {
	var u models.User
	err := row.Scan(&u.ID, &u.FirstName, &u.LastName, &u.Email, &u.Phone, &u.Password,
		&u.Address, &u.City, &u.State, &u.ZipCode, &u.Country, &u.Role, &u.IsActive,
		&u.LastLogin, &u.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// GetUserByEmail returns (nil, nil) when no active user matches, so login can
// show the same generic message for unknown emails and bad passwords.
func (s *Store) GetUserByEmail(email string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = ? AND is_active = 1`
	u, err := scanUser(s.DB.QueryRow(query, email))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return u, err
}

func (s *Store) GetUserByID(id int64) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = ?`
	u, err := scanUser(s.DB.QueryRow(query, id))
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	return u, err
}

// EmailTaken checks registration uniqueness before inserting.
func (s *Store) EmailTaken(email string) (bool, error) {
	var id int64
	err := s.DB.QueryRow(`SELECT id FROM users WHERE email = ?`, email).Scan(&id)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (s *Store) CreateUser(u *models.User) error {
	query := `
		INSERT INTO users (first_name, last_name, email, phone, password, role, is_active, created_at)
		VALUES (?, ?, ?, ?, ?, ?, 1, CURRENT_TIMESTAMP)
	`
	role := u.Role
	if role == "" {
		role = "customer"
	}
	res, err := s.DB.Exec(query, u.FirstName, u.LastName, u.Email, u.Phone, u.Password, role)
	if err != nil {
		return err
	}
	u.ID, err = res.LastInsertId()
	return err
}

func (s *Store) UpdateUserProfile(u *models.User) error {
	query := `
		UPDATE users
		SET first_name = ?, last_name = ?, phone = ?, address = ?, city = ?, state = ?,
			zip_code = ?, country = ?
		WHERE id = ?
	`
	_, err := s.DB.Exec(query, u.FirstName, u.LastName, u.Phone, u.Address, u.City,
		u.State, u.ZipCode, u.Country, u.ID)
	return err
}

func (s *Store) UpdateUserPassword(id int64, hashedPassword string) error {
	_, err := s.DB.Exec(`UPDATE users SET password = ? WHERE id = ?`, hashedPassword, id)
	return err
}

func (s *Store) TouchLastLogin(id int64) error {
	_, err := s.DB.Exec(`UPDATE users SET last_login = CURRENT_TIMESTAMP WHERE id = ?`, id)
	return err
}
