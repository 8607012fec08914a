package gateway

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Mock is an in-process gateway for tests and dry runs. Each payment answers
// status polls from a scripted sequence; once the script is exhausted the
// last entry repeats.
type Mock struct {
	mu          sync.Mutex
	script      []string
	remaining   map[string][]string
	statusCalls map[string]int
	created     []CreatePaymentRequest
	createErr   error
}

// NewMock builds a mock whose payments walk through the given status script.
// An empty script means every poll answers waiting.
func NewMock(script ...string) *Mock {
	if len(script) == 0 {
		script = []string{StatusWaiting}
	}
	return &Mock{
		script:      script,
		remaining:   make(map[string][]string),
		statusCalls: make(map[string]int),
	}
}

// FailCreates makes every CreatePayment call return err.
func (m *Mock) FailCreates(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.createErr = err
}

func (m *Mock) CreatePayment(ctx context.Context, req CreatePaymentRequest) (*Payment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.createErr != nil {
		return nil, m.createErr
	}

	id := uuid.NewString()
	m.remaining[id] = append([]string(nil), m.script...)
	m.created = append(m.created, req)

	return &Payment{
		PaymentID:  id,
		PurchaseID: uuid.NewString(),
		PayAddress: "ltc1q" + id[:8],
		PayAmount:  req.PriceAmount.Div(decimal.NewFromInt(80)).Round(8),
	}, nil
}

func (m *Mock) PaymentStatus(ctx context.Context, paymentID string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.statusCalls[paymentID]++

	seq, ok := m.remaining[paymentID]
	if !ok {
		return "", ErrUnknownPayment
	}
	status := seq[0]
	if len(seq) > 1 {
		m.remaining[paymentID] = seq[1:]
	}
	return status, nil
}

// StatusCalls reports how many times the payment's status was polled.
func (m *Mock) StatusCalls(paymentID string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.statusCalls[paymentID]
}

// Created returns every create-payment request seen so far.
func (m *Mock) Created() []CreatePaymentRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]CreatePaymentRequest(nil), m.created...)
}
