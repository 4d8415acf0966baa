// Package razorpay implements the payment bridge against a Razorpay-style
// gateway: intents are created via the provider's orders endpoint and
// callbacks are verified with an HMAC-SHA256 signature over
// "providerOrderID|providerPaymentID".
package razorpay

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/bazarly/storefront/internal/domain/payment"
)

// DefaultBaseURL is the production Razorpay API endpoint.
const DefaultBaseURL = "https://api.razorpay.com"

var _ payment.Bridge = (*Client)(nil)

// Config holds the gateway credentials and endpoint.
type Config struct {
	// KeyID is the public API key, also handed to clients for checkout.
	KeyID string
	// KeySecret signs callback verification HMACs and authenticates API calls.
	KeySecret string
	// BaseURL overrides the provider endpoint, e.g. for a local stub.
	// Empty means DefaultBaseURL.
	BaseURL string
}

// Client implements payment.Bridge over the provider's HTTP API.
type Client struct {
	cfg  Config
	http *http.Client
}

// NewClient creates a gateway client with the given credentials.
func NewClient(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	return &Client{
		cfg:  cfg,
		http: &http.Client{Timeout: 10 * time.Second},
	}
}

type createOrderRequest struct {
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Receipt  string `json:"receipt"`
}

type createOrderResponse struct {
	ID       string `json:"id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
}

// CreateIntent registers the order total with the gateway. The amount is
// converted to the currency's minor unit, as the provider expects.
func (c *Client) CreateIntent(ctx context.Context, orderID string, amount decimal.Decimal, currency string) (*payment.Intent, error) {
	minor := amount.Mul(decimal.NewFromInt(100)).Round(0).IntPart()

	body, err := json.Marshal(createOrderRequest{
		Amount:   minor,
		Currency: currency,
		Receipt:  orderID,
	})
	if err != nil {
		return nil, errors.Wrap(err, "marshal request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+"/v1/orders", bytes.NewReader(body))
	if err != nil {
		return nil, errors.Wrap(err, "build request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.SetBasicAuth(c.cfg.KeyID, c.cfg.KeySecret)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "call provider")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		// The body may carry provider error details; keep only the status to
		// avoid leaking it upstream.
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4<<10))
		return nil, errors.Errorf("provider returned status %d", resp.StatusCode)
	}

	var out createOrderResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, errors.Wrap(err, "decode response")
	}
	if out.ID == "" {
		return nil, errors.New("provider returned empty order id")
	}

	return &payment.Intent{
		ProviderOrderID: out.ID,
		AmountMinor:     out.Amount,
		Currency:        out.Currency,
		ClientKey:       c.cfg.KeyID,
	}, nil
}

// VerifyCallback checks the HMAC-SHA256 signature over the canonical
// "providerOrderID|providerPaymentID" string in constant time.
func (c *Client) VerifyCallback(providerOrderID, providerPaymentID, signature string) bool {
	mac := hmac.New(sha256.New, []byte(c.cfg.KeySecret))
	fmt.Fprintf(mac, "%s|%s", providerOrderID, providerPaymentID)
	expected := hex.EncodeToString(mac.Sum(nil))

	return hmac.Equal([]byte(expected), []byte(signature))
}
