// Package gateway talks to the NowPayments-style payment API and to the
// coin price API.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/shopspring/decimal"
)

var ErrUnknownPayment = errors.New("unknown payment id")

// Gateway payment statuses. Anything that is not finished or failed keeps
// the poll loop going.
const (
	StatusWaiting  = "waiting"
	StatusFinished = "finished"
	StatusFailed   = "failed"
)

type CreatePaymentRequest struct {
	PriceAmount      decimal.Decimal `json:"price_amount"`
	PriceCurrency    string          `json:"price_currency"`
	PayCurrency      string          `json:"pay_currency"`
	OrderID          string          `json:"order_id"`
	OrderDescription string          `json:"order_description"`
	IPNCallbackURL   string          `json:"ipn_callback_url,omitempty"`
}

// Payment is the gateway's answer to a create-payment call: a minted pay
// address and the amount of coin to send to it.
type Payment struct {
	PaymentID  string
	PurchaseID string
	PayAddress string
	PayAmount  decimal.Decimal
}

type Client interface {
	CreatePayment(ctx context.Context, req CreatePaymentRequest) (*Payment, error)
	PaymentStatus(ctx context.Context, paymentID string) (string, error)
}

type HTTPClient struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

func NewHTTPClient(baseURL, apiKey string) *HTTPClient {
	return &HTTPClient{
		baseURL: baseURL,
		apiKey:  apiKey,
		http:    &http.Client{Timeout: 15 * time.Second},
	}
}

// createPaymentResponse tolerates the gateway sending ids as either numbers
// or strings.
type createPaymentResponse struct {
	PaymentID  json.Number     `json:"payment_id"`
	PurchaseID json.Number     `json:"purchase_id"`
	PayAddress string          `json:"pay_address"`
	PayAmount  decimal.Decimal `json:"pay_amount"`
}

func (c *HTTPClient) CreatePayment(ctx context.Context, req CreatePaymentRequest) (*Payment, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal payment request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/payment", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build payment request: %w", err)
	}
	httpReq.Header.Set("x-api-key", c.apiKey)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("create payment: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("create payment: gateway returned %d: %s", resp.StatusCode, snippet)
	}

	var out createPaymentResponse
	dec := json.NewDecoder(resp.Body)
	dec.UseNumber()
	if err := dec.Decode(&out); err != nil {
		return nil, fmt.Errorf("decode payment response: %w", err)
	}
	if out.PaymentID.String() == "" || out.PayAddress == "" {
		return nil, fmt.Errorf("create payment: gateway response missing payment_id or pay_address")
	}

	return &Payment{
		PaymentID:  out.PaymentID.String(),
		PurchaseID: out.PurchaseID.String(),
		PayAddress: out.PayAddress,
		PayAmount:  out.PayAmount,
	}, nil
}

func (c *HTTPClient) PaymentStatus(ctx context.Context, paymentID string) (string, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/payment/"+paymentID, nil)
	if err != nil {
		return "", fmt.Errorf("build status request: %w", err)
	}
	httpReq.Header.Set("x-api-key", c.apiKey)

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("payment status: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("payment status: gateway returned %d: %s", resp.StatusCode, snippet)
	}

	var out struct {
		PaymentStatus string `json:"payment_status"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("decode status response: %w", err)
	}
	return out.PaymentStatus, nil
}
