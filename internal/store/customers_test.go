package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shopbot/internal/models"
)

func TestRegisterCustomer(t *testing.T) {
	s := newTestStore(t)

	customer, err := s.RegisterCustomer("123", "alice#0", "Alice", "a@x.com")
	require.NoError(t, err)
	assert.Equal(t, "Alice", customer.Name)
	assert.Equal(t, "a@x.com", customer.Email)
	assert.Equal(t, models.DiscordID("123"), customer.DiscordID)

	registered, err := s.IsRegistered("123")
	require.NoError(t, err)
	assert.True(t, registered)
}

func TestRegisterTwiceKeepsFirstRecord(t *testing.T) {
	s := newTestStore(t)

	_, err := s.RegisterCustomer("123", "alice#0", "Alice", "a@x.com")
	require.NoError(t, err)

	_, err = s.RegisterCustomer("123", "alice#0", "Alice2", "b@x.com")
	assert.ErrorIs(t, err, ErrAlreadyRegistered)

	got, err := s.GetCustomer("123")
	require.NoError(t, err)
	assert.Equal(t, "Alice", got.Name)
	assert.Equal(t, "a@x.com", got.Email)
}

func TestRegisterWithoutEmail(t *testing.T) {
	s := newTestStore(t)

	customer, err := s.RegisterCustomer("123", "alice#0", "Alice", "")
	require.NoError(t, err)
	assert.Equal(t, "N/A", customer.Email)
}

func TestRegisterInvalidEmail(t *testing.T) {
	s := newTestStore(t)

	_, err := s.RegisterCustomer("123", "alice#0", "Alice", "not-an-email")
	assert.ErrorIs(t, err, ErrInvalidEmail)

	registered, err := s.IsRegistered("123")
	require.NoError(t, err)
	assert.False(t, registered)
}

func TestUpdateCustomer(t *testing.T) {
	s := newTestStore(t)

	_, err := s.RegisterCustomer("123", "alice#0", "Alice", "")
	require.NoError(t, err)

	require.NoError(t, s.UpdateCustomer("123", "Alicia", "new@x.com"))

	got, err := s.GetCustomer("123")
	require.NoError(t, err)
	assert.Equal(t, "Alicia", got.Name)
	assert.Equal(t, "new@x.com", got.Email)

	assert.ErrorIs(t, s.UpdateCustomer("999", "x", ""), ErrCustomerNotFound)
	assert.ErrorIs(t, s.UpdateCustomer("123", "", "bad-email"), ErrInvalidEmail)
}
