package store

import (
	"regexp"
	"time"

	"shopbot/internal/models"
)

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9_.+-]+@[a-zA-Z0-9-]+\.[a-zA-Z0-9-.]+$`)

// RegisterCustomer creates a customer record. Registration happens once per
// discord id; a second attempt reports ErrAlreadyRegistered and leaves the
// existing record untouched. Email is optional but validated when given.
func (s *Store) RegisterCustomer(discordID, discordTag, name, email string) (*models.Customer, error) {
	if email != "" && !emailRegex.MatchString(email) {
		return nil, ErrInvalidEmail
	}

	s.customersMu.Lock()
	defer s.customersMu.Unlock()

	customers, err := s.loadCustomers()
	if err != nil {
		return nil, err
	}
	if _, ok := customers[discordID]; ok {
		return nil, ErrAlreadyRegistered
	}

	if email == "" {
		email = "N/A"
	}
	customer := &models.Customer{
		Name:       name,
		Email:      email,
		Joined:     time.Now().Format(models.JoinedLayout),
		DiscordTag: discordTag,
		DiscordID:  models.DiscordID(discordID),
	}
	customers[discordID] = customer

	if err := s.saveCustomers(customers); err != nil {
		return nil, err
	}
	return customer, nil
}

func (s *Store) GetCustomer(discordID string) (*models.Customer, error) {
	s.customersMu.Lock()
	defer s.customersMu.Unlock()

	customers, err := s.loadCustomers()
	if err != nil {
		return nil, err
	}
	customer, ok := customers[discordID]
	if !ok {
		return nil, ErrCustomerNotFound
	}
	return customer, nil
}

func (s *Store) IsRegistered(discordID string) (bool, error) {
	_, err := s.GetCustomer(discordID)
	if err == ErrCustomerNotFound {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// UpdateCustomer edits the mutable fields of a registration. The discord id
// itself is immutable.
func (s *Store) UpdateCustomer(discordID, name, email string) error {
	if email != "" && email != "N/A" && !emailRegex.MatchString(email) {
		return ErrInvalidEmail
	}

	s.customersMu.Lock()
	defer s.customersMu.Unlock()

	customers, err := s.loadCustomers()
	if err != nil {
		return err
	}
	customer, ok := customers[discordID]
	if !ok {
		return ErrCustomerNotFound
	}
	if name != "" {
		customer.Name = name
	}
	if email != "" {
		customer.Email = email
	}
	return s.saveCustomers(customers)
}

func (s *Store) ListCustomers() (map[string]*models.Customer, error) {
	s.customersMu.Lock()
	defer s.customersMu.Unlock()
	return s.loadCustomers()
}
