package store

import (
	"time"

	"shopbot/internal/models"
)

// AddPayment records a freshly minted gateway payment. The status starts at
// waiting and updated_at stays null until the first status change.
func (s *Store) AddPayment(payment *models.Payment) error {
	s.paymentsMu.Lock()
	defer s.paymentsMu.Unlock()

	doc, err := s.loadPayments()
	if err != nil {
		return err
	}

	if payment.Status == "" {
		payment.Status = models.PaymentWaiting
	}
	if payment.CreatedAt == "" {
		payment.CreatedAt = models.Stamp(time.Now())
	}
	doc.Payments[payment.PaymentID] = payment

	return s.savePayments(doc)
}

func (s *Store) GetPayment(paymentID string) (*models.Payment, error) {
	s.paymentsMu.Lock()
	defer s.paymentsMu.Unlock()

	doc, err := s.loadPayments()
	if err != nil {
		return nil, err
	}
	payment, ok := doc.Payments[paymentID]
	if !ok {
		return nil, ErrPaymentNotFound
	}
	return payment, nil
}

// UpdatePaymentStatus advances a payment's status. Status is monotonic: once
// a payment is finished, failed or timed out it never changes again, and an
// attempt to do so reports ErrTerminalStatus.
func (s *Store) UpdatePaymentStatus(paymentID string, status models.PaymentStatus) error {
	s.paymentsMu.Lock()
	defer s.paymentsMu.Unlock()

	doc, err := s.loadPayments()
	if err != nil {
		return err
	}
	payment, ok := doc.Payments[paymentID]
	if !ok {
		return ErrPaymentNotFound
	}
	if payment.Status.Terminal() {
		return ErrTerminalStatus
	}

	payment.Status = status
	updated := models.Stamp(time.Now())
	payment.UpdatedAt = &updated

	return s.savePayments(doc)
}

func (s *Store) ListPayments() (map[string]*models.Payment, error) {
	s.paymentsMu.Lock()
	defer s.paymentsMu.Unlock()

	doc, err := s.loadPayments()
	if err != nil {
		return nil, err
	}
	return doc.Payments, nil
}

// FindWaitingBefore returns payments still in waiting whose creation time is
// older than the cutoff. Records with an unparseable timestamp are skipped.
func (s *Store) FindWaitingBefore(cutoff time.Time) ([]*models.Payment, error) {
	s.paymentsMu.Lock()
	defer s.paymentsMu.Unlock()

	doc, err := s.loadPayments()
	if err != nil {
		return nil, err
	}

	var stuck []*models.Payment
	for _, payment := range doc.Payments {
		if payment.Status != models.PaymentWaiting {
			continue
		}
		created, err := time.ParseInLocation(models.StampLayout, payment.CreatedAt, models.IST)
		if err != nil {
			continue
		}
		if created.Before(cutoff) {
			stuck = append(stuck, payment)
		}
	}
	return stuck, nil
}
