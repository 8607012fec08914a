// Package store implements the shop's file-backed state: product catalog,
// order ledger, payment records and customer registry.
//
// Each entity lives in its own JSON document under <dataDir>/database/. Every
// mutation of a document goes through a single mutex owned by the Store, so
// there is exactly one writer per file. The bot commands, the dashboard API
// and the reconciliation worker all share one Store instance.
package store

import (
	"errors"
	"os"
	"path/filepath"
	"sync"

	"shopbot/internal/jsonstore"
	"shopbot/internal/models"
)

const (
	ordersFile    = "orders_database.json"
	paymentsFile  = "receive_ltc_database.json"
	productsFile  = "products_database.json"
	customersFile = "customers_database.json"
)

type Store struct {
	dir string

	ordersMu    sync.Mutex
	paymentsMu  sync.Mutex
	productsMu  sync.Mutex
	customersMu sync.Mutex
}

func New(dataDir string) *Store {
	return &Store{dir: filepath.Join(dataDir, "database")}
}

func (s *Store) path(file string) string {
	return filepath.Join(s.dir, file)
}

// loadOrders reads the orders document, seeding an empty one when the file
// does not exist yet. Callers must hold ordersMu.
func (s *Store) loadOrders() (*models.OrdersDoc, error) {
	doc := &models.OrdersDoc{}
	if err := jsonstore.Load(s.path(ordersFile), doc); err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
	}
	if doc.PendingPayment == nil {
		doc.PendingPayment = map[string]*models.Order{}
	}
	if doc.PendingDelivery == nil {
		doc.PendingDelivery = map[string]*models.Order{}
	}
	if doc.Delivered == nil {
		doc.Delivered = map[string]*models.Order{}
	}
	return doc, nil
}

func (s *Store) saveOrders(doc *models.OrdersDoc) error {
	return jsonstore.Save(s.path(ordersFile), doc)
}

func (s *Store) loadPayments() (*models.PaymentsDoc, error) {
	doc := &models.PaymentsDoc{}
	if err := jsonstore.Load(s.path(paymentsFile), doc); err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
	}
	if doc.Payments == nil {
		doc.Payments = map[string]*models.Payment{}
	}
	return doc, nil
}

func (s *Store) savePayments(doc *models.PaymentsDoc) error {
	return jsonstore.Save(s.path(paymentsFile), doc)
}

func (s *Store) loadProducts() (*models.ProductsDoc, error) {
	doc := &models.ProductsDoc{}
	if err := jsonstore.Load(s.path(productsFile), doc); err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
	}
	if doc.Products == nil {
		doc.Products = map[string]*models.Product{}
	}
	return doc, nil
}

func (s *Store) saveProducts(doc *models.ProductsDoc) error {
	return jsonstore.Save(s.path(productsFile), doc)
}

func (s *Store) loadCustomers() (map[string]*models.Customer, error) {
	customers := map[string]*models.Customer{}
	if err := jsonstore.Load(s.path(customersFile), &customers); err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
	}
	return customers, nil
}

func (s *Store) saveCustomers(customers map[string]*models.Customer) error {
	return jsonstore.Save(s.path(customersFile), customers)
}
