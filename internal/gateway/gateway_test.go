package gateway

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreatePayment(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/payment", r.URL.Path)
		require.Equal(t, "test-key", r.Header.Get("x-api-key"))

		var req CreatePaymentRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "usd", req.PriceCurrency)
		assert.Equal(t, "ltc", req.PayCurrency)

		w.WriteHeader(http.StatusCreated)
		// payment_id comes back as a bare number from the sandbox.
		w.Write([]byte(`{"payment_id": 4945313421, "purchase_id": 5837122679, "pay_address": "LTC1qabc", "pay_amount": 0.1352}`))
	}))
	defer srv.Close()

	client := NewHTTPClient(srv.URL, "test-key")
	payment, err := client.CreatePayment(context.Background(), CreatePaymentRequest{
		PriceAmount:   decimal.NewFromInt(10),
		PriceCurrency: "usd",
		PayCurrency:   "ltc",
		OrderID:       "ORDER_123_1700000000",
	})
	require.NoError(t, err)

	assert.Equal(t, "4945313421", payment.PaymentID)
	assert.Equal(t, "5837122679", payment.PurchaseID)
	assert.Equal(t, "LTC1qabc", payment.PayAddress)
	assert.Equal(t, "0.1352", payment.PayAmount.String())
}

func TestCreatePaymentGatewayError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"message":"invalid api key"}`, http.StatusForbidden)
	}))
	defer srv.Close()

	client := NewHTTPClient(srv.URL, "bad-key")
	_, err := client.CreatePayment(context.Background(), CreatePaymentRequest{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "403")
}

func TestPaymentStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/payment/4945313421", r.URL.Path)
		require.Equal(t, "test-key", r.Header.Get("x-api-key"))
		w.Write([]byte(`{"payment_status": "finished"}`))
	}))
	defer srv.Close()

	client := NewHTTPClient(srv.URL, "test-key")
	status, err := client.PaymentStatus(context.Background(), "4945313421")
	require.NoError(t, err)
	assert.Equal(t, StatusFinished, status)
}

func TestSimplePrice(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/simple/price", r.URL.Path)
		require.Equal(t, "litecoin", r.URL.Query().Get("ids"))
		require.Equal(t, "usd,inr", r.URL.Query().Get("vs_currencies"))
		w.Write([]byte(`{"litecoin": {"usd": 83.52, "inr": 6973.12}}`))
	}))
	defer srv.Close()

	client := NewRateClient(srv.URL)
	rates, err := client.SimplePrice(context.Background(), "litecoin", "usd", "inr")
	require.NoError(t, err)
	assert.Equal(t, "83.52", rates["usd"].String())
	assert.Equal(t, "6973.12", rates["inr"].String())
}

func TestMockScript(t *testing.T) {
	mock := NewMock(StatusWaiting, StatusFinished)

	payment, err := mock.CreatePayment(context.Background(), CreatePaymentRequest{
		PriceAmount: decimal.NewFromInt(80),
	})
	require.NoError(t, err)

	status, err := mock.PaymentStatus(context.Background(), payment.PaymentID)
	require.NoError(t, err)
	assert.Equal(t, StatusWaiting, status)

	status, err = mock.PaymentStatus(context.Background(), payment.PaymentID)
	require.NoError(t, err)
	assert.Equal(t, StatusFinished, status)

	// Script exhausted: last entry repeats.
	status, err = mock.PaymentStatus(context.Background(), payment.PaymentID)
	require.NoError(t, err)
	assert.Equal(t, StatusFinished, status)

	assert.Equal(t, 3, mock.StatusCalls(payment.PaymentID))

	_, err = mock.PaymentStatus(context.Background(), "ghost")
	assert.ErrorIs(t, err, ErrUnknownPayment)
}
