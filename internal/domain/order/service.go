package order

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/google/uuid"

	"github.com/bazarly/storefront/internal/domain/address"
	"github.com/bazarly/storefront/internal/domain/cart"
	"github.com/bazarly/storefront/internal/domain/catalog"
	"github.com/bazarly/storefront/internal/domain/payment"
	"github.com/bazarly/storefront/internal/domain/pricing"
)

// PlaceOrderRequest holds the input for placing an order.
type PlaceOrderRequest struct {
	UserID    string
	AddressID string
	// AwaitPayment creates the order in PENDING for an asynchronous payment
	// flow. When false the order is PLACED immediately (cash on delivery).
	AwaitPayment bool
}

// Service coordinates cart, address book, catalog, pricing, and the ledger
// into the customer-facing order operations.
type Service struct {
	carts     cart.Repository
	products  catalog.Reader
	addresses address.Repository
	ledger    Ledger
	bridge    payment.Bridge
}

// NewService creates an order Service with the required domain dependencies.
func NewService(
	carts cart.Repository,
	products catalog.Reader,
	addresses address.Repository,
	ledger Ledger,
	bridge payment.Bridge,
) *Service {
	return &Service{
		carts:     carts,
		products:  products,
		addresses: addresses,
		ledger:    ledger,
		bridge:    bridge,
	}
}

// PlaceOrder turns the user's cart into an order. It snapshots the cart,
// validates address ownership, prices every line against the current
// catalog, and atomically persists the order while clearing exactly the
// snapshotted cart lines.
func (s *Service) PlaceOrder(ctx context.Context, req PlaceOrderRequest) (*Order, error) {
	lines, err := s.carts.ListByUser(ctx, req.UserID)
	if err != nil {
		return nil, errors.Wrap(err, "read cart")
	}
	if len(lines) == 0 {
		return nil, ErrEmptyCart
	}

	addr, err := s.addresses.GetByUser(ctx, req.UserID, req.AddressID)
	if err != nil {
		if errors.Is(err, address.ErrNotFound) {
			return nil, address.ErrNotFound
		}
		return nil, errors.Wrap(err, "resolve address")
	}

	// Batch fetch current catalog state; this is the authoritative price read.
	ids := make([]string, len(lines))
	for i, l := range lines {
		ids[i] = l.ProductID
	}
	products, err := s.products.GetByIDs(ctx, ids)
	if err != nil {
		return nil, errors.Wrap(err, "resolve products")
	}
	byID := make(map[string]catalog.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}

	orderLines := make([]Line, len(lines))
	priced := make([]pricing.Line, len(lines))
	lineRefs := make([]CartLineRef, len(lines))
	for i, l := range lines {
		p, ok := byID[l.ProductID]
		if !ok {
			return nil, &ProductUnavailableError{ProductID: l.ProductID}
		}
		unit := pricing.UnitPrice(p.Price, p.DiscountPercent)
		orderLines[i] = Line{
			ProductID: p.ID,
			Title:     p.Title,
			Quantity:  l.Quantity,
			UnitPrice: unit,
		}
		priced[i] = pricing.Line{UnitPrice: unit, Quantity: l.Quantity}
		lineRefs[i] = CartLineRef{ID: l.ID, Quantity: l.Quantity}
	}

	status := StatusPlaced
	if req.AwaitPayment {
		status = StatusPending
	}

	o := &Order{
		ID:        uuid.New().String(),
		UserID:    req.UserID,
		AddressID: addr.ID,
		Shipping: ShippingAddress{
			Line:    addr.Line,
			City:    addr.City,
			State:   addr.State,
			Country: addr.Country,
			Zipcode: addr.Zipcode,
		},
		Lines:  orderLines,
		Total:  pricing.OrderTotal(priced),
		Status: status,
	}

	if err := s.ledger.CreateWithCartClear(ctx, o, lineRefs); err != nil {
		if errors.Is(err, ErrConcurrentModification) {
			return nil, ErrConcurrentModification
		}
		return nil, errors.Wrap(err, "create order")
	}
	return o, nil
}

// PlaceOrderWithIntent places a PENDING order and registers a payment intent
// for its total with the gateway. The provider's order id is stored on the
// order so the later callback can be correlated.
func (s *Service) PlaceOrderWithIntent(ctx context.Context, userID, addressID, currency string) (*Order, *payment.Intent, error) {
	o, err := s.PlaceOrder(ctx, PlaceOrderRequest{
		UserID:       userID,
		AddressID:    addressID,
		AwaitPayment: true,
	})
	if err != nil {
		return nil, nil, err
	}

	intent, err := s.bridge.CreateIntent(ctx, o.ID, o.Total, currency)
	if err != nil {
		// The order stays PENDING; a payment intent can be requested again.
		return nil, nil, errors.Wrap(err, "create payment intent")
	}
	if err := s.ledger.AttachProviderOrder(ctx, o.ID, intent.ProviderOrderID); err != nil {
		return nil, nil, errors.Wrap(err, "attach provider order")
	}
	o.ProviderOrderID = intent.ProviderOrderID
	return o, intent, nil
}

// ConfirmPayment validates the callback signature and transitions the
// referenced order from PENDING to PLACED. Replayed callbacks with the same
// payment id are no-ops.
func (s *Service) ConfirmPayment(ctx context.Context, providerOrderID, providerPaymentID, signature string) (*Order, error) {
	if !s.bridge.VerifyCallback(providerOrderID, providerPaymentID, signature) {
		return nil, payment.ErrInvalidSignature
	}

	o, err := s.ledger.MarkPaid(ctx, providerOrderID, providerPaymentID)
	if err != nil {
		if errors.Is(err, ErrNotFound) || errors.Is(err, ErrInvalidTransition) {
			return nil, err
		}
		return nil, errors.Wrap(err, "mark order paid")
	}
	return o, nil
}

// Cancel transitions one of the user's orders to CANCELLED. Only PENDING and
// PLACED orders can be cancelled; a second cancel reports ErrInvalidTransition.
func (s *Service) Cancel(ctx context.Context, userID, orderID string) (*Order, error) {
	o, err := s.ledger.Cancel(ctx, userID, orderID)
	if err != nil {
		if errors.Is(err, ErrNotFound) || errors.Is(err, ErrInvalidTransition) {
			return nil, err
		}
		return nil, errors.Wrap(err, "cancel order")
	}
	return o, nil
}

// Get returns one of the user's orders with its lines.
func (s *Service) Get(ctx context.Context, userID, orderID string) (*Order, error) {
	o, err := s.ledger.GetByUser(ctx, userID, orderID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, errors.Wrap(err, "get order")
	}
	return o, nil
}

// List returns the user's orders, newest first.
func (s *Service) List(ctx context.Context, userID string) ([]Order, error) {
	out, err := s.ledger.ListByUser(ctx, userID)
	if err != nil {
		return nil, errors.Wrap(err, "list orders")
	}
	return out, nil
}

// SoldLines returns the order lines referencing the seller's products,
// newest first.
func (s *Service) SoldLines(ctx context.Context, sellerID string) ([]SellerLine, error) {
	out, err := s.ledger.ListSoldBySeller(ctx, sellerID)
	if err != nil {
		return nil, errors.Wrap(err, "list sold lines")
	}
	return out, nil
}
