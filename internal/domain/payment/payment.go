// Package payment defines the narrow contract against the external payment
// gateway: create a remote payment intent for an order total, and verify a
// callback signature. The bridge never decides order status itself.
package payment

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// ErrInvalidSignature is returned when a payment callback carries a
// signature that does not match the expected HMAC. Callers must treat it as
// a potential forgery attempt, never as an ordinary input error.
var ErrInvalidSignature = errors.New("invalid payment signature")

// Intent is a remote gateway object representing an authorized-but-unconfirmed
// charge, correlated to exactly one order.
type Intent struct {
	// ProviderOrderID is the gateway-assigned id for this intent.
	ProviderOrderID string
	// AmountMinor is the charge amount in the currency's minor unit.
	AmountMinor int64
	Currency    string
	// ClientKey is the public key the client needs to open the provider's
	// checkout flow.
	ClientKey string
}

// Bridge is the external payment gateway capability.
type Bridge interface {
	// CreateIntent registers amount (major units) with the gateway and
	// returns the created intent.
	CreateIntent(ctx context.Context, orderID string, amount decimal.Decimal, currency string) (*Intent, error)
	// VerifyCallback reports whether signature is the valid keyed hash for
	// the (providerOrderID, providerPaymentID) pair.
	VerifyCallback(providerOrderID, providerPaymentID, signature string) bool
}
