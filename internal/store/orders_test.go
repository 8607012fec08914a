package store

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shopbot/internal/models"
)

func createOrder(t *testing.T, s *Store) *models.Order {
	t.Helper()
	order, err := s.CreateOrder("123456789", "alice#0", "Nitro", decimal.NewFromInt(10))
	require.NoError(t, err)
	return order
}

// countBuckets reports how many buckets hold the given order id.
func countBuckets(t *testing.T, s *Store, orderID string) int {
	t.Helper()
	doc, err := s.ListOrders()
	require.NoError(t, err)

	n := 0
	for _, bucket := range []map[string]*models.Order{doc.PendingPayment, doc.PendingDelivery, doc.Delivered} {
		if _, ok := bucket[orderID]; ok {
			n++
		}
	}
	return n
}

func TestCreateOrderSequentialIDs(t *testing.T) {
	s := newTestStore(t)

	first := createOrder(t, s)
	second := createOrder(t, s)

	assert.Equal(t, "0001", first.OrderID)
	assert.Equal(t, "0002", second.OrderID)
	assert.Equal(t, models.OrderPendingPayment, first.Status)
}

func TestOrderIDNotReusedAfterDeletion(t *testing.T) {
	s := newTestStore(t)

	createOrder(t, s)
	second := createOrder(t, s)
	third := createOrder(t, s)

	removed, err := s.DeletePendingOrder(second.OrderID)
	require.NoError(t, err)
	require.True(t, removed)

	fourth := createOrder(t, s)
	assert.NotEqual(t, third.OrderID, fourth.OrderID)
	assert.Equal(t, "0004", fourth.OrderID)
}

func TestOrderLivesInExactlyOneBucket(t *testing.T) {
	s := newTestStore(t)
	order := createOrder(t, s)

	assert.Equal(t, 1, countBuckets(t, s, order.OrderID))

	_, err := s.CompleteOrder(order.OrderID, "pay-1")
	require.NoError(t, err)
	assert.Equal(t, 1, countBuckets(t, s, order.OrderID))

	_, err = s.MarkDelivered(order.OrderID)
	require.NoError(t, err)
	assert.Equal(t, 1, countBuckets(t, s, order.OrderID))
}

func TestCompleteOrderMovesAndStamps(t *testing.T) {
	s := newTestStore(t)
	order := createOrder(t, s)

	completed, err := s.CompleteOrder(order.OrderID, "pay-42")
	require.NoError(t, err)
	assert.Equal(t, models.OrderCompleted, completed.Status)
	assert.Equal(t, "pay-42", completed.PaymentID)

	_, bucket, err := s.GetOrder(order.OrderID)
	require.NoError(t, err)
	assert.Equal(t, BucketPendingDelivery, bucket)

	_, err = s.CompleteOrder(order.OrderID, "pay-42")
	assert.ErrorIs(t, err, ErrOrderNotFound)
}

func TestMarkDeliveredFromEitherBucket(t *testing.T) {
	s := newTestStore(t)

	inPayment := createOrder(t, s)
	inDelivery := createOrder(t, s)
	_, err := s.CompleteOrder(inDelivery.OrderID, "pay-1")
	require.NoError(t, err)

	for _, id := range []string{inPayment.OrderID, inDelivery.OrderID} {
		order, err := s.MarkDelivered(id)
		require.NoError(t, err)
		assert.Equal(t, models.OrderDelivered, order.Status)
		assert.NotEmpty(t, order.DeliveredAt)

		_, bucket, err := s.GetOrder(id)
		require.NoError(t, err)
		assert.Equal(t, BucketDelivered, bucket)
	}
}

func TestMoveToDelivery(t *testing.T) {
	s := newTestStore(t)
	order := createOrder(t, s)

	moved, err := s.MoveToDelivery(order.OrderID)
	require.NoError(t, err)
	assert.Equal(t, models.OrderCompleted, moved.Status)
	assert.Empty(t, moved.PaymentID)
}

func TestDeletePendingOrder(t *testing.T) {
	s := newTestStore(t)
	order := createOrder(t, s)

	removed, err := s.DeletePendingOrder(order.OrderID)
	require.NoError(t, err)
	assert.True(t, removed)

	pending, err := s.ListPendingDelivery()
	require.NoError(t, err)
	assert.NotContains(t, pending, order.OrderID)

	removed, err = s.DeletePendingOrder("9999")
	require.NoError(t, err)
	assert.False(t, removed)
}

func TestDeleteOrderSweepsDeliveredToo(t *testing.T) {
	s := newTestStore(t)
	order := createOrder(t, s)

	_, err := s.MarkDelivered(order.OrderID)
	require.NoError(t, err)

	removed, err := s.DeleteOrder(order.OrderID)
	require.NoError(t, err)
	assert.True(t, removed)
	assert.Equal(t, 0, countBuckets(t, s, order.OrderID))
}

func TestSetPendingStatus(t *testing.T) {
	s := newTestStore(t)
	order := createOrder(t, s)

	require.NoError(t, s.SetPendingStatus(order.OrderID, models.OrderWaitingForPayment))

	got, _, err := s.GetOrder(order.OrderID)
	require.NoError(t, err)
	assert.Equal(t, models.OrderWaitingForPayment, got.Status)

	assert.ErrorIs(t, s.SetPendingStatus("9999", models.OrderFailed), ErrOrderNotFound)
}
