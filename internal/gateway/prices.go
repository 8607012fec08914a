package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// RateClient looks up spot prices from a coingecko-style simple-price API.
type RateClient struct {
	baseURL string
	http    *http.Client
}

func NewRateClient(baseURL string) *RateClient {
	return &RateClient{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 10 * time.Second},
	}
}

// SimplePrice returns the coin's price in each requested fiat currency,
// e.g. SimplePrice(ctx, "litecoin", "usd", "inr").
func (c *RateClient) SimplePrice(ctx context.Context, coin string, currencies ...string) (map[string]decimal.Decimal, error) {
	url := fmt.Sprintf("%s/simple/price?ids=%s&vs_currencies=%s", c.baseURL, coin, strings.Join(currencies, ","))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build price request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("price lookup: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("price lookup: API returned %d: %s", resp.StatusCode, snippet)
	}

	var out map[string]map[string]decimal.Decimal
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode price response: %w", err)
	}

	rates, ok := out[coin]
	if !ok {
		return nil, fmt.Errorf("price lookup: no rates for %q", coin)
	}
	return rates, nil
}
