// Package pricing fetches spot prices from the CoinGecko simple price API.
package pricing

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/pricofy/crypto-price-api/internal/apperr"
)

const (
	simplePricePath = "/simple/price"
	apiKeyHeader    = "x-cg-demo-api-key"
)

// KeySource supplies the CoinGecko API key.
type KeySource interface {
	Get(ctx context.Context) (string, error)
}

// Options parameterise the CoinGecko client.
type Options struct {
	BaseURL string
	Timeout time.Duration
}

// CoinGecko fetches prices from the CoinGecko API.
type CoinGecko struct {
	keys    KeySource
	baseURL string
	client  *http.Client
	logger  zerolog.Logger
}

// NewCoinGecko constructs a CoinGecko client.
func NewCoinGecko(opts Options, keys KeySource, logger zerolog.Logger) *CoinGecko {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = "https://api.coingecko.com/api/v3"
	}

	return &CoinGecko{
		keys:    keys,
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
		logger:  logger.With().Str("component", "coingecko").Logger(),
	}
}

// FetchPrice returns the current price of cryptoID in currency. The id is
// lower-cased for the lookup only.
func (c *CoinGecko) FetchPrice(ctx context.Context, cryptoID, currency string) (decimal.Decimal, error) {
	lookupID := strings.ToLower(cryptoID)

	key, err := c.keys.Get(ctx)
	if err != nil {
		return decimal.Decimal{}, err
	}

	prices, err := c.simplePrice(ctx, lookupID, currency, key)
	if err != nil {
		c.logger.Error().Err(err).Str("crypto_id", cryptoID).Msg("coingecko request failed")
		return decimal.Decimal{}, apperr.New(apperr.ErrPriceFetchFailed, err, "failed to fetch price from CoinGecko")
	}

	price := prices[lookupID][currency]
	if price == nil {
		c.logger.Warn().Str("crypto_id", cryptoID).Str("currency", currency).Msg("price data not found in response")
		return decimal.Decimal{}, apperr.New(apperr.ErrPriceNotFound, nil, "price data not found for %s in %s", cryptoID, currency)
	}

	c.logger.Info().Str("crypto_id", cryptoID).Str("price", price.String()).Str("currency", currency).Msg("fetched price")
	return *price, nil
}

// simplePriceResponse is keyed by coin id, then by currency. A null price
// decodes to nil.
type simplePriceResponse map[string]map[string]*decimal.Decimal

func (c *CoinGecko) simplePrice(ctx context.Context, id, currency, key string) (simplePriceResponse, error) {
	q := url.Values{}
	q.Set("ids", id)
	q.Set("vs_currencies", currency)
	endpoint := c.baseURL + simplePricePath + "?" + q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set(apiKeyHeader, key)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, parseHTTPError(resp.StatusCode, payload)
	}

	var out simplePriceResponse
	if err := json.Unmarshal(payload, &out); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return out, nil
}

type errorResponse struct {
	Error  string `json:"error"`
	Status struct {
		ErrorMessage string `json:"error_message"`
	} `json:"status"`
}

func parseHTTPError(status int, payload []byte) error {
	var apiErr errorResponse
	if err := json.Unmarshal(payload, &apiErr); err == nil {
		if apiErr.Status.ErrorMessage != "" {
			return fmt.Errorf("coingecko api error (%d): %s", status, apiErr.Status.ErrorMessage)
		}
		if apiErr.Error != "" {
			return fmt.Errorf("coingecko api error (%d): %s", status, apiErr.Error)
		}
	}
	return fmt.Errorf("coingecko api error (%d)", status)
}
