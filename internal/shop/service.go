// Package shop drives a purchase from the buy command through payment
// settlement to delivery hand-off.
package shop

import (
	"context"
	"fmt"
	"log"
	"sync"

	"shopbot/internal/models"
	"shopbot/internal/store"
)

// Notifier delivers the payment confirmation to the customer's registered
// email. Implementations must be safe for concurrent use.
type Notifier interface {
	PaymentConfirmed(email string, order *models.Order, product *models.Product) error
}

type Service struct {
	store    *store.Store
	tracker  *Tracker
	notifier Notifier

	mu       sync.Mutex
	inflight map[string]string // order id -> payment id, while the poll runs
}

// NewService wires the orchestrator. notifier may be nil when email delivery
// is not configured.
func NewService(st *store.Store, tracker *Tracker, notifier Notifier) *Service {
	return &Service{
		store:    st,
		tracker:  tracker,
		notifier: notifier,
		inflight: make(map[string]string),
	}
}

// Purchase is an order with its in-flight payment.
type Purchase struct {
	Order   *models.Order
	Payment *models.Payment
}

// BeginPurchase validates the buyer and the product, creates the order and
// requests a pay address from the gateway.
//
// Validation failures (unregistered buyer, unknown product, empty stock)
// mutate nothing. A gateway failure leaves the order on file in
// Pending Payment for an admin to clean up; the payment never existed, so
// there is nothing to poll.
func (s *Service) BeginPurchase(ctx context.Context, userID, userName, productName string) (*Purchase, error) {
	registered, err := s.store.IsRegistered(userID)
	if err != nil {
		return nil, err
	}
	if !registered {
		return nil, store.ErrCustomerNotFound
	}

	product, err := s.store.GetProduct(productName)
	if err != nil {
		return nil, err
	}
	if product.Stock <= 0 {
		return nil, store.ErrOutOfStock
	}

	order, err := s.store.CreateOrder(userID, userName, productName, product.Price)
	if err != nil {
		return nil, err
	}

	payment, err := s.tracker.RequestPayment(ctx, userID, userName, product.Price)
	if err != nil {
		return nil, fmt.Errorf("order %s: %w", order.OrderID, err)
	}

	if err := s.store.SetPendingStatus(order.OrderID, models.OrderWaitingForPayment); err != nil {
		return nil, err
	}
	order.Status = models.OrderWaitingForPayment

	s.mu.Lock()
	s.inflight[order.OrderID] = payment.PaymentID
	s.mu.Unlock()

	return &Purchase{Order: order, Payment: payment}, nil
}

// AwaitPayment blocks until the purchase's payment turns terminal, then
// settles the ledger:
//
//   - finished: the order moves to pending-delivery and the product's stock
//     drops by one (floored at zero);
//   - failed: the order is stamped Failed and stays in pending-payment;
//   - timeout: the order is left in Waiting for Payment for manual review.
func (s *Service) AwaitPayment(ctx context.Context, purchase *Purchase) (models.PaymentStatus, error) {
	orderID := purchase.Order.OrderID
	defer func() {
		s.mu.Lock()
		delete(s.inflight, orderID)
		s.mu.Unlock()
	}()

	status, err := s.tracker.Track(ctx, purchase.Payment.PaymentID)
	if err != nil {
		return status, err
	}

	switch status {
	case models.PaymentFinished:
		order, err := s.store.CompleteOrder(orderID, purchase.Payment.PaymentID)
		if err != nil {
			return status, fmt.Errorf("complete order %s: %w", orderID, err)
		}
		if err := s.store.DecrementStock(order.Item); err != nil {
			return status, fmt.Errorf("decrement stock for %s: %w", order.Item, err)
		}
		s.notifyConfirmed(order)

	case models.PaymentFailed:
		if err := s.store.SetPendingStatus(orderID, models.OrderFailed); err != nil {
			return status, fmt.Errorf("mark order %s failed: %w", orderID, err)
		}
	}

	return status, nil
}

func (s *Service) notifyConfirmed(order *models.Order) {
	if s.notifier == nil {
		return
	}
	customer, err := s.store.GetCustomer(string(order.UserID))
	if err != nil || customer.Email == "N/A" {
		return
	}
	product, _ := s.store.GetProduct(order.Item)
	if err := s.notifier.PaymentConfirmed(customer.Email, order, product); err != nil {
		log.Printf("shop: confirmation email for order %s: %v", order.OrderID, err)
	}
}

// DeletePendingOrder cancels any in-flight poll for the order's payment and
// removes the order from its pending bucket.
func (s *Service) DeletePendingOrder(orderID string) (bool, error) {
	s.mu.Lock()
	paymentID, ok := s.inflight[orderID]
	s.mu.Unlock()
	if ok {
		s.tracker.Cancel(paymentID)
	}
	return s.store.DeletePendingOrder(orderID)
}
