package shop

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shopbot/internal/gateway"
	"shopbot/internal/models"
	"shopbot/internal/store"
)

func newTracker(t *testing.T, mock *gateway.Mock, maxAttempts int) (*Tracker, *store.Store) {
	t.Helper()
	st := store.New(t.TempDir())
	return NewTracker(st, mock, time.Millisecond, maxAttempts), st
}

func requestPayment(t *testing.T, tracker *Tracker) *models.Payment {
	t.Helper()
	payment, err := tracker.RequestPayment(context.Background(), "123", "alice#0", decimal.NewFromInt(10))
	require.NoError(t, err)
	return payment
}

func TestRequestPaymentPersistsWaitingRecord(t *testing.T) {
	mock := gateway.NewMock()
	tracker, st := newTracker(t, mock, 30)

	payment := requestPayment(t, tracker)

	stored, err := st.GetPayment(payment.PaymentID)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentWaiting, stored.Status)
	assert.Equal(t, models.DiscordID("123"), stored.UserID)
	assert.NotEmpty(t, stored.Address)
	assert.True(t, stored.AmountUSD.Equal(decimal.NewFromInt(10)))

	created := mock.Created()
	require.Len(t, created, 1)
	assert.Equal(t, "usd", created[0].PriceCurrency)
	assert.Equal(t, "ltc", created[0].PayCurrency)
	assert.Contains(t, created[0].OrderID, "ORDER_123_")
}

func TestTrackFinishedOnFirstCheck(t *testing.T) {
	mock := gateway.NewMock(gateway.StatusFinished)
	tracker, st := newTracker(t, mock, 30)
	payment := requestPayment(t, tracker)

	status, err := tracker.Track(context.Background(), payment.PaymentID)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentFinished, status)

	// Terminal on the first poll: no further checks happen.
	assert.Equal(t, 1, mock.StatusCalls(payment.PaymentID))

	stored, err := st.GetPayment(payment.PaymentID)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentFinished, stored.Status)
}

func TestTrackFailed(t *testing.T) {
	mock := gateway.NewMock(gateway.StatusWaiting, gateway.StatusFailed)
	tracker, st := newTracker(t, mock, 30)
	payment := requestPayment(t, tracker)

	status, err := tracker.Track(context.Background(), payment.PaymentID)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentFailed, status)

	stored, err := st.GetPayment(payment.PaymentID)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentFailed, stored.Status)
}

func TestTrackTimesOutAfterMaxAttempts(t *testing.T) {
	mock := gateway.NewMock(gateway.StatusWaiting)
	tracker, st := newTracker(t, mock, 5)
	payment := requestPayment(t, tracker)

	status, err := tracker.Track(context.Background(), payment.PaymentID)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentTimeout, status)
	assert.Equal(t, 5, mock.StatusCalls(payment.PaymentID))

	stored, err := st.GetPayment(payment.PaymentID)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentTimeout, stored.Status)
}

func TestTrackCancellation(t *testing.T) {
	mock := gateway.NewMock(gateway.StatusWaiting)
	tracker, st := newTracker(t, mock, 1000)
	payment := requestPayment(t, tracker)

	done := make(chan models.PaymentStatus, 1)
	go func() {
		status, _ := tracker.Track(context.Background(), payment.PaymentID)
		done <- status
	}()

	require.Eventually(t, func() bool {
		return tracker.Cancel(payment.PaymentID)
	}, time.Second, time.Millisecond)

	select {
	case status := <-done:
		assert.Equal(t, models.PaymentWaiting, status)
	case <-time.After(time.Second):
		t.Fatal("cancelled poll did not stop")
	}

	// Cancellation is not a terminal gateway answer: the record stays waiting.
	stored, err := st.GetPayment(payment.PaymentID)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentWaiting, stored.Status)

	assert.False(t, tracker.Cancel(payment.PaymentID))
}

func TestTrackRequestPaymentGatewayDown(t *testing.T) {
	mock := gateway.NewMock()
	mock.FailCreates(assert.AnError)
	tracker, _ := newTracker(t, mock, 30)

	_, err := tracker.RequestPayment(context.Background(), "123", "alice#0", decimal.NewFromInt(10))
	require.Error(t, err)
}
