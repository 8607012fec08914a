// Package worker re-checks payments that outlived their poll loop. A bot
// restart or a poll timeout can leave a payment in waiting even though the
// gateway settled it; the reconciliation loop is the safety net that brings
// the ledger back in line with the gateway's answer.
package worker

import (
	"context"
	"log"
	"time"

	"shopbot/internal/gateway"
	"shopbot/internal/models"
)

// Ledger is the slice of the store the worker needs. *store.Store satisfies
// it; tests substitute a failing implementation.
type Ledger interface {
	FindWaitingBefore(cutoff time.Time) ([]*models.Payment, error)
	UpdatePaymentStatus(paymentID string, status models.PaymentStatus) error
	ListOrders() (*models.OrdersDoc, error)
	CompleteOrder(orderID, paymentID string) (*models.Order, error)
	DecrementStock(name string) error
}

type ReconciliationWorker struct {
	store    Ledger
	gateway  gateway.Client
	interval time.Duration
	// olderThan is how stale a waiting payment must be before it is
	// re-checked; fresh ones still have a live poll loop.
	olderThan time.Duration
}

func NewReconciliationWorker(st Ledger, gw gateway.Client, interval, olderThan time.Duration) *ReconciliationWorker {
	return &ReconciliationWorker{
		store:     st,
		gateway:   gw,
		interval:  interval,
		olderThan: olderThan,
	}
}

func (w *ReconciliationWorker) Run(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	log.Println("reconciliation worker started")

	for {
		select {
		case <-ctx.Done():
			log.Println("reconciliation worker stopped")
			return
		case <-ticker.C:
			if err := w.Process(ctx); err != nil {
				log.Printf("reconciliation pass failed: %v", err)
			}
		}
	}
}

// Process runs one reconciliation pass. Gateway errors on individual
// payments are logged and skipped; the next pass retries them.
func (w *ReconciliationWorker) Process(ctx context.Context) error {
	stuck, err := w.store.FindWaitingBefore(time.Now().Add(-w.olderThan))
	if err != nil {
		return err
	}
	if len(stuck) == 0 {
		return nil
	}

	log.Printf("reconciliation: found %d stuck payment(s)", len(stuck))

	for _, payment := range stuck {
		status, err := w.gateway.PaymentStatus(ctx, payment.PaymentID)
		if err != nil {
			log.Printf("reconciliation: check payment %s: %v", payment.PaymentID, err)
			continue
		}

		switch status {
		case gateway.StatusFinished:
			if err := w.settle(payment); err != nil {
				log.Printf("reconciliation: settle payment %s: %v", payment.PaymentID, err)
			}
		case gateway.StatusFailed:
			if err := w.store.UpdatePaymentStatus(payment.PaymentID, models.PaymentFailed); err != nil {
				log.Printf("reconciliation: mark payment %s failed: %v", payment.PaymentID, err)
			}
		}
	}
	return nil
}

// settle completes the order the payment paid for, then marks the payment
// finished. The order is matched by buyer and amount, the same association
// the buy flow uses; a payment with no matching order (manual top-up, order
// deleted, or already completed on an earlier pass) just gets its status
// fixed.
//
// The payment is marked finished last: if completing the order fails the
// payment stays waiting and the next pass retries the whole settlement.
func (w *ReconciliationWorker) settle(payment *models.Payment) error {
	doc, err := w.store.ListOrders()
	if err != nil {
		return err
	}

	for id, order := range doc.PendingPayment {
		if order.UserID != payment.UserID || order.Status != models.OrderWaitingForPayment {
			continue
		}
		if !order.Amount.Equal(payment.AmountUSD) {
			continue
		}

		completed, err := w.store.CompleteOrder(id, payment.PaymentID)
		if err != nil {
			return err
		}
		if err := w.store.DecrementStock(completed.Item); err != nil {
			return err
		}
		log.Printf("reconciliation: order %s settled by payment %s", id, payment.PaymentID)
		break
	}

	return w.store.UpdatePaymentStatus(payment.PaymentID, models.PaymentFinished)
}
