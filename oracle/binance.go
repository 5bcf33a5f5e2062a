package oracle

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/shopspring/decimal"
)

const defaultTimeout = 10 * time.Second

type tickerPrice struct {
	Symbol string `json:"symbol"`
	Price  string `json:"price"`
}

// BinanceClient reads spot prices from the public Binance ticker endpoint
type BinanceClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewBinanceClient creates a client against baseURL, e.g. https://api.binance.com
func NewBinanceClient(baseURL string) *BinanceClient {
	return &BinanceClient{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: defaultTimeout,
		},
	}
}

// FetchPrice returns the last traded price of symbol
func (c *BinanceClient) FetchPrice(ctx context.Context, symbol string) (decimal.Decimal, error) {
	endpoint, err := url.JoinPath(c.baseURL, "/api/v3/ticker/price")
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid base url: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"?"+url.Values{"symbol": {symbol}}.Encode(), nil)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return decimal.Zero, fmt.Errorf("ticker request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return decimal.Zero, fmt.Errorf("ticker returned status %d: %s", resp.StatusCode, body)
	}

	var ticker tickerPrice
	if err := json.NewDecoder(resp.Body).Decode(&ticker); err != nil {
		return decimal.Zero, fmt.Errorf("failed to decode ticker: %w", err)
	}

	price, err := decimal.NewFromString(ticker.Price)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid ticker price %q: %w", ticker.Price, err)
	}
	if !price.IsPositive() {
		return decimal.Zero, fmt.Errorf("non-positive ticker price %s for %s", price, symbol)
	}
	return price, nil
}
