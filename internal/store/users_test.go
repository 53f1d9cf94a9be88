package store

import (
	"testing"

	"github.com/Rehtse11/Essence-Luxe/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetUserByEmailUnknownIsNilNil(t *testing.T) {
	s := newTestStore(t)

	u, err := s.GetUserByEmail("nobody@example.com")
	require.NoError(t, err)
	assert.Nil(t, u)
}

func TestCreateUserAndLookup(t *testing.T) {
	s := newTestStore(t)

	u := &models.User{FirstName: "Ada", LastName: "Lovelace", Email: "ada@example.com", Password: "hash"}
	require.NoError(t, s.CreateUser(u))
	assert.NotZero(t, u.ID)

	got, err := s.GetUserByEmail("ada@example.com")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Ada Lovelace", got.FullName())
	assert.Equal(t, "customer", got.Role)
	assert.False(t, got.IsAdmin())

	taken, err := s.EmailTaken("ada@example.com")
	require.NoError(t, err)
	assert.True(t, taken)
	taken, err = s.EmailTaken("other@example.com")
	require.NoError(t, err)
	assert.False(t, taken)
}

func TestUpdateUserProfile(t *testing.T) {
	s := newTestStore(t)
	u := &models.User{FirstName: "Ada", LastName: "Lovelace", Email: "ada@example.com", Password: "hash"}
	require.NoError(t, s.CreateUser(u))

	u.City = "London"
	u.Country = "UK"
	require.NoError(t, s.UpdateUserProfile(u))

	got, err := s.GetUserByID(u.ID)
	require.NoError(t, err)
	assert.Equal(t, "London", got.City)
	assert.Equal(t, "UK", got.Country)
}
