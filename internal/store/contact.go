package store

import (
	"github.com/Rehtse11/Essence-Luxe/internal/models"
)

func (s *Store) CreateContactMessage(m *models.ContactMessage) error {
	query := `
		INSERT INTO contact_messages (first_name, last_name, email, subject, message, created_at)
		VALUES (?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
	`
	res, err := s.DB.Exec(query, m.FirstName, m.LastName, m.Email, m.Subject, m.Message)
	if err != nil {
		return err
	}
	m.ID, err = res.LastInsertId()
	return err
}
