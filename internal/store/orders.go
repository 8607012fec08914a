package store

import (
	"fmt"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"shopbot/internal/models"
)

// Order buckets as they appear in orders_database.json.
const (
	BucketPendingPayment  = "pending_payment_orders"
	BucketPendingDelivery = "pending_delivery_orders"
	BucketDelivered       = "delivered_orders"
)

// nextOrderID allocates the next zero-padded order id. The original scheme
// (count of live orders + 1) could hand out a duplicate after a deletion;
// taking max(existing numeric ids)+1 across every bucket keeps the same
// 4-digit format while never colliding with an id still on file.
func nextOrderID(doc *models.OrdersDoc) string {
	max := 0
	for _, bucket := range []map[string]*models.Order{doc.PendingPayment, doc.PendingDelivery, doc.Delivered} {
		for id := range bucket {
			if n, err := strconv.Atoi(id); err == nil && n > max {
				max = n
			}
		}
	}
	return fmt.Sprintf("%04d", max+1)
}

func (s *Store) CreateOrder(userID, userName, item string, amount decimal.Decimal) (*models.Order, error) {
	s.ordersMu.Lock()
	defer s.ordersMu.Unlock()

	doc, err := s.loadOrders()
	if err != nil {
		return nil, err
	}

	order := &models.Order{
		OrderID:   nextOrderID(doc),
		UserID:    models.DiscordID(userID),
		UserName:  userName,
		Item:      item,
		Amount:    amount,
		Status:    models.OrderPendingPayment,
		Timestamp: models.Stamp(time.Now()),
	}
	doc.PendingPayment[order.OrderID] = order

	if err := s.saveOrders(doc); err != nil {
		return nil, err
	}
	return order, nil
}

// SetPendingStatus updates the status of an order still awaiting payment.
func (s *Store) SetPendingStatus(orderID string, status models.OrderStatus) error {
	s.ordersMu.Lock()
	defer s.ordersMu.Unlock()

	doc, err := s.loadOrders()
	if err != nil {
		return err
	}
	order, ok := doc.PendingPayment[orderID]
	if !ok {
		return ErrOrderNotFound
	}
	order.Status = status
	return s.saveOrders(doc)
}

// CompleteOrder moves an order from pending-payment to pending-delivery,
// stamping it Completed and recording the payment that settled it. The move
// is a pop-and-insert, never a copy.
func (s *Store) CompleteOrder(orderID, paymentID string) (*models.Order, error) {
	s.ordersMu.Lock()
	defer s.ordersMu.Unlock()

	doc, err := s.loadOrders()
	if err != nil {
		return nil, err
	}
	order, ok := doc.PendingPayment[orderID]
	if !ok {
		return nil, ErrOrderNotFound
	}
	delete(doc.PendingPayment, orderID)

	order.Status = models.OrderCompleted
	order.PaymentID = paymentID
	order.Timestamp = models.Stamp(time.Now())
	doc.PendingDelivery[orderID] = order

	if err := s.saveOrders(doc); err != nil {
		return nil, err
	}
	return order, nil
}

// MoveToDelivery is the dashboard's manual counterpart of CompleteOrder: it
// promotes a pending-payment order without a settled payment attached.
func (s *Store) MoveToDelivery(orderID string) (*models.Order, error) {
	s.ordersMu.Lock()
	defer s.ordersMu.Unlock()

	doc, err := s.loadOrders()
	if err != nil {
		return nil, err
	}
	order, ok := doc.PendingPayment[orderID]
	if !ok {
		return nil, ErrOrderNotFound
	}
	delete(doc.PendingPayment, orderID)

	order.Status = models.OrderCompleted
	order.Timestamp = models.Stamp(time.Now())
	doc.PendingDelivery[orderID] = order

	if err := s.saveOrders(doc); err != nil {
		return nil, err
	}
	return order, nil
}

// MarkDelivered moves an order into the delivered bucket. It prefers
// pending-delivery but accepts a pending-payment order too, matching the
// dashboard's defensive behavior.
func (s *Store) MarkDelivered(orderID string) (*models.Order, error) {
	s.ordersMu.Lock()
	defer s.ordersMu.Unlock()

	doc, err := s.loadOrders()
	if err != nil {
		return nil, err
	}

	order, ok := doc.PendingDelivery[orderID]
	if ok {
		delete(doc.PendingDelivery, orderID)
	} else if order, ok = doc.PendingPayment[orderID]; ok {
		delete(doc.PendingPayment, orderID)
	} else {
		return nil, ErrOrderNotFound
	}

	order.Status = models.OrderDelivered
	order.DeliveredAt = models.Stamp(time.Now())
	doc.Delivered[orderID] = order

	if err := s.saveOrders(doc); err != nil {
		return nil, err
	}
	return order, nil
}

// DeletePendingOrder removes an order from the pending-payment or
// pending-delivery bucket. Deleting an unknown id reports false, not an
// error.
func (s *Store) DeletePendingOrder(orderID string) (bool, error) {
	s.ordersMu.Lock()
	defer s.ordersMu.Unlock()

	doc, err := s.loadOrders()
	if err != nil {
		return false, err
	}

	removed := false
	if _, ok := doc.PendingPayment[orderID]; ok {
		delete(doc.PendingPayment, orderID)
		removed = true
	}
	if _, ok := doc.PendingDelivery[orderID]; ok {
		delete(doc.PendingDelivery, orderID)
		removed = true
	}
	if !removed {
		return false, nil
	}
	return true, s.saveOrders(doc)
}

// DeleteOrder sweeps every bucket, delivered history included. Dashboard
// only.
func (s *Store) DeleteOrder(orderID string) (bool, error) {
	s.ordersMu.Lock()
	defer s.ordersMu.Unlock()

	doc, err := s.loadOrders()
	if err != nil {
		return false, err
	}

	removed := false
	for _, bucket := range []map[string]*models.Order{doc.PendingPayment, doc.PendingDelivery, doc.Delivered} {
		if _, ok := bucket[orderID]; ok {
			delete(bucket, orderID)
			removed = true
		}
	}
	if !removed {
		return false, nil
	}
	return true, s.saveOrders(doc)
}

// GetOrder looks an order up across all buckets and reports which bucket
// holds it.
func (s *Store) GetOrder(orderID string) (*models.Order, string, error) {
	s.ordersMu.Lock()
	defer s.ordersMu.Unlock()

	doc, err := s.loadOrders()
	if err != nil {
		return nil, "", err
	}
	if order, ok := doc.PendingPayment[orderID]; ok {
		return order, BucketPendingPayment, nil
	}
	if order, ok := doc.PendingDelivery[orderID]; ok {
		return order, BucketPendingDelivery, nil
	}
	if order, ok := doc.Delivered[orderID]; ok {
		return order, BucketDelivered, nil
	}
	return nil, "", ErrOrderNotFound
}

func (s *Store) ListOrders() (*models.OrdersDoc, error) {
	s.ordersMu.Lock()
	defer s.ordersMu.Unlock()
	return s.loadOrders()
}

func (s *Store) ListPendingDelivery() (map[string]*models.Order, error) {
	s.ordersMu.Lock()
	defer s.ordersMu.Unlock()

	doc, err := s.loadOrders()
	if err != nil {
		return nil, err
	}
	return doc.PendingDelivery, nil
}
