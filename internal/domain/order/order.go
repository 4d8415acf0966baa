package order

import (
	"context"
	"fmt"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// Status is the order state machine:
//
//	PENDING --markPaid--> PLACED --delivery--> DELIVERED
//	PENDING/PLACED --cancel--> CANCELLED
//
// CANCELLED and DELIVERED are terminal.
type Status string

const (
	StatusPending   Status = "PENDING"
	StatusPlaced    Status = "PLACED"
	StatusCancelled Status = "CANCELLED"
	StatusDelivered Status = "DELIVERED"
)

// Cancellable reports whether an order in this status may still be cancelled.
func (s Status) Cancellable() bool {
	return s == StatusPending || s == StatusPlaced
}

var (
	// ErrNotFound is returned when an order does not exist or belongs to
	// another user. The two cases are deliberately indistinguishable.
	ErrNotFound = errors.New("order not found")
	// ErrEmptyCart is returned when placing an order with no cart lines.
	ErrEmptyCart = errors.New("cart is empty")
	// ErrInvalidTransition is returned for illegal status changes, including
	// cancelling a terminal order.
	ErrInvalidTransition = errors.New("invalid order status transition")
	// ErrConcurrentModification is returned when the cart changed between the
	// snapshot read and the order commit.
	ErrConcurrentModification = errors.New("cart changed during order placement")
)

// ProductUnavailableError indicates a cart line references a product that no
// longer exists in the catalog.
type ProductUnavailableError struct {
	ProductID string
}

func (e *ProductUnavailableError) Error() string {
	return fmt.Sprintf("product %s is no longer available", e.ProductID)
}

// ShippingAddress is the shipping destination copied from the address book
// at order creation. It is immutable once written.
type ShippingAddress struct {
	Line    string
	City    string
	State   string
	Country string
	Zipcode string
}

// Line is an immutable per-product record of what was charged. UnitPrice is
// the discounted price captured at order creation and is never recomputed
// from later catalog state.
type Line struct {
	ProductID string
	Title     string
	Quantity  int
	UnitPrice decimal.Decimal
}

// Order is a placed customer order. Total equals the sum of its lines'
// UnitPrice x Quantity at creation time, rounded to 2 decimal places.
type Order struct {
	ID              string
	UserID          string
	AddressID       string
	Shipping        ShippingAddress
	Lines           []Line
	Total           decimal.Decimal
	Status          Status
	PaymentRef      string
	ProviderOrderID string
	CreatedAt       time.Time
}

// SellerLine is one sold order line from a seller's perspective.
type SellerLine struct {
	OrderID   string
	Status    Status
	ProductID string
	Title     string
	Quantity  int
	UnitPrice decimal.Decimal
	CreatedAt time.Time
}

// CartLineRef identifies a cart line as it looked when the order was priced.
// The quantity pins the snapshot: a line whose quantity changed since the
// read no longer matches and must fail the clear.
type CartLineRef struct {
	ID       string
	Quantity int
}

// Ledger defines persistence for orders. Implementations must make
// CreateWithCartClear atomic: the order, its lines, and the cart deletion
// commit together or not at all.
type Ledger interface {
	// CreateWithCartClear persists the order and deletes exactly the cart
	// lines it was priced from. Returns ErrConcurrentModification when any
	// referenced line no longer exists with the snapshotted quantity at
	// commit time.
	CreateWithCartClear(ctx context.Context, o *Order, cartLines []CartLineRef) error
	GetByUser(ctx context.Context, userID, id string) (*Order, error)
	ListByUser(ctx context.Context, userID string) ([]Order, error)
	ListSoldBySeller(ctx context.Context, sellerID string) ([]SellerLine, error)
	// Cancel transitions the user's order to CANCELLED when it is still
	// cancellable. Returns ErrNotFound or ErrInvalidTransition otherwise.
	Cancel(ctx context.Context, userID, id string) (*Order, error)
	// MarkPaid transitions PENDING to PLACED, recording the payment
	// reference. A repeat call with the same reference returns the order
	// unchanged; any other mismatch returns ErrInvalidTransition.
	MarkPaid(ctx context.Context, providerOrderID, paymentRef string) (*Order, error)
	// AttachProviderOrder stores the payment provider's order id for later
	// webhook correlation.
	AttachProviderOrder(ctx context.Context, id, providerOrderID string) error
}
