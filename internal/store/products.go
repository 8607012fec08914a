package store

import (
	"time"

	"github.com/shopspring/decimal"

	"shopbot/internal/models"
)

func (s *Store) AddProduct(name string, price decimal.Decimal, description string, stock int) (*models.Product, error) {
	s.productsMu.Lock()
	defer s.productsMu.Unlock()

	doc, err := s.loadProducts()
	if err != nil {
		return nil, err
	}

	product := &models.Product{
		Price:       price,
		Description: description,
		Stock:       stock,
		AddedAt:     time.Now().UTC(),
	}
	doc.Products[name] = product

	if err := s.saveProducts(doc); err != nil {
		return nil, err
	}
	return product, nil
}

// RemoveProduct deletes a product by name. Removing an unknown product
// reports false rather than an error.
func (s *Store) RemoveProduct(name string) (bool, error) {
	s.productsMu.Lock()
	defer s.productsMu.Unlock()

	doc, err := s.loadProducts()
	if err != nil {
		return false, err
	}
	if _, ok := doc.Products[name]; !ok {
		return false, nil
	}
	delete(doc.Products, name)

	if err := s.saveProducts(doc); err != nil {
		return false, err
	}
	return true, nil
}

func (s *Store) GetProduct(name string) (*models.Product, error) {
	s.productsMu.Lock()
	defer s.productsMu.Unlock()

	doc, err := s.loadProducts()
	if err != nil {
		return nil, err
	}
	product, ok := doc.Products[name]
	if !ok {
		return nil, ErrProductNotFound
	}
	return product, nil
}

func (s *Store) ListProducts() (map[string]*models.Product, error) {
	s.productsMu.Lock()
	defer s.productsMu.Unlock()

	doc, err := s.loadProducts()
	if err != nil {
		return nil, err
	}
	return doc.Products, nil
}

func (s *Store) SetPrice(name string, price decimal.Decimal) error {
	s.productsMu.Lock()
	defer s.productsMu.Unlock()

	doc, err := s.loadProducts()
	if err != nil {
		return err
	}
	product, ok := doc.Products[name]
	if !ok {
		return ErrProductNotFound
	}
	product.Price = price
	return s.saveProducts(doc)
}

func (s *Store) SetStock(name string, amount int) error {
	s.productsMu.Lock()
	defer s.productsMu.Unlock()

	doc, err := s.loadProducts()
	if err != nil {
		return err
	}
	product, ok := doc.Products[name]
	if !ok {
		return ErrProductNotFound
	}
	product.Stock = amount
	return s.saveProducts(doc)
}

// DecrementStock reduces the product's stock by one, floored at zero. A
// missing product is a no-op: an order may reference a product that was
// deleted while the payment was in flight.
func (s *Store) DecrementStock(name string) error {
	s.productsMu.Lock()
	defer s.productsMu.Unlock()

	doc, err := s.loadProducts()
	if err != nil {
		return err
	}
	product, ok := doc.Products[name]
	if !ok {
		return nil
	}
	if product.Stock > 0 {
		product.Stock--
	}
	return s.saveProducts(doc)
}
