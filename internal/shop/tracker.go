package shop

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"shopbot/internal/gateway"
	"shopbot/internal/models"
	"shopbot/internal/store"
)

// Tracker mints payment requests against the gateway and polls them to a
// terminal status. Every tracked payment carries a cancel function so that
// order deletion or shutdown can stop an in-flight poll deterministically.
type Tracker struct {
	store       *store.Store
	gateway     gateway.Client
	interval    time.Duration
	maxAttempts int

	mu      sync.Mutex
	cancels map[string]context.CancelFunc
}

func NewTracker(st *store.Store, gw gateway.Client, interval time.Duration, maxAttempts int) *Tracker {
	return &Tracker{
		store:       st,
		gateway:     gw,
		interval:    interval,
		maxAttempts: maxAttempts,
		cancels:     make(map[string]context.CancelFunc),
	}
}

// RequestPayment asks the gateway for a pay address and persists the new
// payment record with status waiting.
func (t *Tracker) RequestPayment(ctx context.Context, userID, userName string, amountUSD decimal.Decimal) (*models.Payment, error) {
	req := gateway.CreatePaymentRequest{
		PriceAmount:      amountUSD,
		PriceCurrency:    "usd",
		PayCurrency:      "ltc",
		OrderID:          fmt.Sprintf("ORDER_%s_%d", userID, time.Now().Unix()),
		OrderDescription: fmt.Sprintf("LTC Payment by %s", userName),
	}

	minted, err := t.gateway.CreatePayment(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("request payment: %w", err)
	}

	payment := &models.Payment{
		UserID:     models.DiscordID(userID),
		PurchaseID: minted.PurchaseID,
		PaymentID:  minted.PaymentID,
		AmountUSD:  amountUSD,
		LtcAmount:  minted.PayAmount,
		Address:    minted.PayAddress,
		Status:     models.PaymentWaiting,
	}
	if err := t.store.AddPayment(payment); err != nil {
		return nil, fmt.Errorf("persist payment %s: %w", minted.PaymentID, err)
	}
	return payment, nil
}

// Track polls the gateway until the payment reaches a terminal status, the
// attempt budget runs out, or the poll is cancelled. Poll errors are treated
// as transient: the loop logs them and retries on the same fixed interval.
// A payment that never turns terminal is marked timeout.
func (t *Tracker) Track(ctx context.Context, paymentID string) (models.PaymentStatus, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	t.mu.Lock()
	t.cancels[paymentID] = cancel
	t.mu.Unlock()
	defer func() {
		t.mu.Lock()
		delete(t.cancels, paymentID)
		t.mu.Unlock()
	}()

	for attempt := 0; attempt < t.maxAttempts; attempt++ {
		status, err := t.gateway.PaymentStatus(ctx, paymentID)
		if err != nil {
			if ctx.Err() != nil {
				return models.PaymentWaiting, ctx.Err()
			}
			log.Printf("tracker: error checking payment %s: %v", paymentID, err)
		} else {
			switch status {
			case gateway.StatusFinished:
				t.finalize(paymentID, models.PaymentFinished)
				return models.PaymentFinished, nil
			case gateway.StatusFailed:
				t.finalize(paymentID, models.PaymentFailed)
				return models.PaymentFailed, nil
			}
		}

		select {
		case <-ctx.Done():
			return models.PaymentWaiting, ctx.Err()
		case <-time.After(t.interval):
		}
	}

	t.finalize(paymentID, models.PaymentTimeout)
	return models.PaymentTimeout, nil
}

func (t *Tracker) finalize(paymentID string, status models.PaymentStatus) {
	if err := t.store.UpdatePaymentStatus(paymentID, status); err != nil {
		log.Printf("tracker: could not mark payment %s %s: %v", paymentID, status, err)
	}
}

// Cancel stops the poll loop for a payment, if one is running.
func (t *Tracker) Cancel(paymentID string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	cancel, ok := t.cancels[paymentID]
	if ok {
		cancel()
	}
	return ok
}

// CancelAll stops every in-flight poll. Used during shutdown.
func (t *Tracker) CancelAll() {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, cancel := range t.cancels {
		cancel()
	}
}
