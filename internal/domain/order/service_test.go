package order

import (
	"context"
	"testing"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bazarly/storefront/internal/domain/address"
	"github.com/bazarly/storefront/internal/domain/cart"
	"github.com/bazarly/storefront/internal/domain/catalog"
	"github.com/bazarly/storefront/internal/domain/payment"
)

// Function-field mocks so each test overrides only what it needs.

type cartRepoMock struct {
	listByUser func(ctx context.Context, userID string) ([]cart.Line, error)
}

func (m *cartRepoMock) Upsert(context.Context, string, string, int) (*cart.Line, error) {
	panic("unexpected Upsert")
}

func (m *cartRepoMock) UpdateQuantity(context.Context, string, string, int) (*cart.Line, error) {
	panic("unexpected UpdateQuantity")
}

func (m *cartRepoMock) Remove(context.Context, string, string) error {
	panic("unexpected Remove")
}

func (m *cartRepoMock) ListByUser(ctx context.Context, userID string) ([]cart.Line, error) {
	return m.listByUser(ctx, userID)
}

type catalogReaderMock struct {
	getByIDs func(ctx context.Context, ids []string) ([]catalog.Product, error)
}

func (m *catalogReaderMock) List(context.Context) ([]catalog.Product, error) {
	panic("unexpected List")
}

func (m *catalogReaderMock) GetByID(context.Context, string) (*catalog.Product, error) {
	panic("unexpected GetByID")
}

func (m *catalogReaderMock) GetByIDs(ctx context.Context, ids []string) ([]catalog.Product, error) {
	return m.getByIDs(ctx, ids)
}

type addressRepoMock struct {
	getByUser func(ctx context.Context, userID, id string) (*address.Address, error)
}

func (m *addressRepoMock) Create(context.Context, *address.Address) error {
	panic("unexpected Create")
}

func (m *addressRepoMock) GetByUser(ctx context.Context, userID, id string) (*address.Address, error) {
	return m.getByUser(ctx, userID, id)
}

func (m *addressRepoMock) ListByUser(context.Context, string) ([]address.Address, error) {
	panic("unexpected ListByUser")
}

func (m *addressRepoMock) Update(context.Context, *address.Address) error {
	panic("unexpected Update")
}

func (m *addressRepoMock) Delete(context.Context, string, string) error {
	panic("unexpected Delete")
}

type ledgerMock struct {
	createWithCartClear func(ctx context.Context, o *Order, cartLines []CartLineRef) error
	markPaid            func(ctx context.Context, providerOrderID, paymentRef string) (*Order, error)
	attachProviderOrder func(ctx context.Context, id, providerOrderID string) error
	cancel              func(ctx context.Context, userID, id string) (*Order, error)
}

func (m *ledgerMock) CreateWithCartClear(ctx context.Context, o *Order, cartLines []CartLineRef) error {
	return m.createWithCartClear(ctx, o, cartLines)
}

func (m *ledgerMock) GetByUser(context.Context, string, string) (*Order, error) {
	panic("unexpected GetByUser")
}

func (m *ledgerMock) ListByUser(context.Context, string) ([]Order, error) {
	panic("unexpected ListByUser")
}

func (m *ledgerMock) ListSoldBySeller(context.Context, string) ([]SellerLine, error) {
	panic("unexpected ListSoldBySeller")
}

func (m *ledgerMock) Cancel(ctx context.Context, userID, id string) (*Order, error) {
	return m.cancel(ctx, userID, id)
}

func (m *ledgerMock) MarkPaid(ctx context.Context, providerOrderID, paymentRef string) (*Order, error) {
	return m.markPaid(ctx, providerOrderID, paymentRef)
}

func (m *ledgerMock) AttachProviderOrder(ctx context.Context, id, providerOrderID string) error {
	return m.attachProviderOrder(ctx, id, providerOrderID)
}

type bridgeMock struct {
	createIntent   func(ctx context.Context, orderID string, amount decimal.Decimal, currency string) (*payment.Intent, error)
	verifyCallback func(providerOrderID, providerPaymentID, signature string) bool
}

func (m *bridgeMock) CreateIntent(ctx context.Context, orderID string, amount decimal.Decimal, currency string) (*payment.Intent, error) {
	return m.createIntent(ctx, orderID, amount, currency)
}

func (m *bridgeMock) VerifyCallback(providerOrderID, providerPaymentID, signature string) bool {
	return m.verifyCallback(providerOrderID, providerPaymentID, signature)
}

// Shared fixture: two cart lines priced 1000 at 10% off x2 and 500 x1.

func fixtureCart() *cartRepoMock {
	return &cartRepoMock{
		listByUser: func(_ context.Context, userID string) ([]cart.Line, error) {
			return []cart.Line{
				{ID: "line-1", UserID: userID, ProductID: "prod-a", Quantity: 2},
				{ID: "line-2", UserID: userID, ProductID: "prod-b", Quantity: 1},
			}, nil
		},
	}
}

func fixtureCatalog() *catalogReaderMock {
	return &catalogReaderMock{
		getByIDs: func(_ context.Context, ids []string) ([]catalog.Product, error) {
			all := map[string]catalog.Product{
				"prod-a": {
					ID: "prod-a", SellerID: "seller-1", Title: "Kurta",
					Price:           decimal.NewFromInt(1000),
					DiscountPercent: decimal.NewFromInt(10),
				},
				"prod-b": {
					ID: "prod-b", SellerID: "seller-1", Title: "Scarf",
					Price: decimal.NewFromInt(500),
				},
			}
			out := make([]catalog.Product, 0, len(ids))
			for _, id := range ids {
				if p, ok := all[id]; ok {
					out = append(out, p)
				}
			}
			return out, nil
		},
	}
}

func fixtureAddresses() *addressRepoMock {
	return &addressRepoMock{
		getByUser: func(_ context.Context, userID, id string) (*address.Address, error) {
			if userID != "user-1" || id != "addr-1" {
				return nil, address.ErrNotFound
			}
			return &address.Address{
				ID: "addr-1", UserID: "user-1",
				Line: "1 Main St", City: "Pune", State: "MH", Country: "IN", Zipcode: "411001",
			}, nil
		},
	}
}

func TestPlaceOrder(t *testing.T) {
	var created *Order
	var cleared []CartLineRef
	ledger := &ledgerMock{
		createWithCartClear: func(_ context.Context, o *Order, cartLines []CartLineRef) error {
			created = o
			cleared = cartLines
			return nil
		},
	}
	svc := NewService(fixtureCart(), fixtureCatalog(), fixtureAddresses(), ledger, nil)

	o, err := svc.PlaceOrder(t.Context(), PlaceOrderRequest{UserID: "user-1", AddressID: "addr-1"})
	require.NoError(t, err)
	require.NotNil(t, created)
	assert.Same(t, created, o)

	assert.Equal(t, StatusPlaced, o.Status)
	assert.Equal(t, "2300", o.Total.String())
	assert.Equal(t, []CartLineRef{{ID: "line-1", Quantity: 2}, {ID: "line-2", Quantity: 1}}, cleared,
		"clears exactly the snapshotted lines at their snapshotted quantities")

	require.Len(t, o.Lines, 2)
	assert.Equal(t, "900", o.Lines[0].UnitPrice.String())
	assert.Equal(t, 2, o.Lines[0].Quantity)
	assert.Equal(t, "500", o.Lines[1].UnitPrice.String())

	assert.Equal(t, "1 Main St", o.Shipping.Line, "shipping is copied from the address")
	assert.Equal(t, "411001", o.Shipping.Zipcode)
}

func TestPlaceOrderEmptyCart(t *testing.T) {
	carts := &cartRepoMock{
		listByUser: func(context.Context, string) ([]cart.Line, error) { return nil, nil },
	}
	ledger := &ledgerMock{
		createWithCartClear: func(context.Context, *Order, []CartLineRef) error {
			t.Fatal("ledger must not be touched for an empty cart")
			return nil
		},
	}
	svc := NewService(carts, fixtureCatalog(), fixtureAddresses(), ledger, nil)

	_, err := svc.PlaceOrder(t.Context(), PlaceOrderRequest{UserID: "user-1", AddressID: "addr-1"})
	assert.ErrorIs(t, err, ErrEmptyCart)
}

func TestPlaceOrderForeignAddress(t *testing.T) {
	ledger := &ledgerMock{
		createWithCartClear: func(context.Context, *Order, []CartLineRef) error {
			t.Fatal("no order may be created for a foreign address")
			return nil
		},
	}
	svc := NewService(fixtureCart(), fixtureCatalog(), fixtureAddresses(), ledger, nil)

	_, err := svc.PlaceOrder(t.Context(), PlaceOrderRequest{UserID: "user-1", AddressID: "someone-elses"})
	assert.ErrorIs(t, err, address.ErrNotFound)
}

func TestPlaceOrderProductVanished(t *testing.T) {
	products := &catalogReaderMock{
		getByIDs: func(_ context.Context, ids []string) ([]catalog.Product, error) {
			return []catalog.Product{{
				ID: "prod-a", Price: decimal.NewFromInt(1000), DiscountPercent: decimal.NewFromInt(10),
			}}, nil
		},
	}
	ledger := &ledgerMock{
		createWithCartClear: func(context.Context, *Order, []CartLineRef) error {
			t.Fatal("no order may be created with an unavailable product")
			return nil
		},
	}
	svc := NewService(fixtureCart(), products, fixtureAddresses(), ledger, nil)

	_, err := svc.PlaceOrder(t.Context(), PlaceOrderRequest{UserID: "user-1", AddressID: "addr-1"})
	var unavailable *ProductUnavailableError
	require.ErrorAs(t, err, &unavailable)
	assert.Equal(t, "prod-b", unavailable.ProductID)
}

func TestPlaceOrderConcurrentModification(t *testing.T) {
	ledger := &ledgerMock{
		createWithCartClear: func(context.Context, *Order, []CartLineRef) error {
			return ErrConcurrentModification
		},
	}
	svc := NewService(fixtureCart(), fixtureCatalog(), fixtureAddresses(), ledger, nil)

	_, err := svc.PlaceOrder(t.Context(), PlaceOrderRequest{UserID: "user-1", AddressID: "addr-1"})
	assert.ErrorIs(t, err, ErrConcurrentModification)
}

func TestPlaceOrderWithIntent(t *testing.T) {
	attached := map[string]string{}
	ledger := &ledgerMock{
		createWithCartClear: func(context.Context, *Order, []CartLineRef) error { return nil },
		attachProviderOrder: func(_ context.Context, id, providerOrderID string) error {
			attached[id] = providerOrderID
			return nil
		},
	}
	bridge := &bridgeMock{
		createIntent: func(_ context.Context, orderID string, amount decimal.Decimal, currency string) (*payment.Intent, error) {
			assert.Equal(t, "2300", amount.String())
			assert.Equal(t, "INR", currency)
			return &payment.Intent{
				ProviderOrderID: "prov_123",
				AmountMinor:     230000,
				Currency:        currency,
				ClientKey:       "rzp_test",
			}, nil
		},
	}
	svc := NewService(fixtureCart(), fixtureCatalog(), fixtureAddresses(), ledger, bridge)

	o, intent, err := svc.PlaceOrderWithIntent(t.Context(), "user-1", "addr-1", "INR")
	require.NoError(t, err)
	assert.Equal(t, StatusPending, o.Status, "payment-first orders start pending")
	assert.Equal(t, "prov_123", intent.ProviderOrderID)
	assert.Equal(t, "prov_123", o.ProviderOrderID)
	assert.Equal(t, "prov_123", attached[o.ID])
}

func TestPlaceOrderWithIntentGatewayDown(t *testing.T) {
	ledger := &ledgerMock{
		createWithCartClear: func(context.Context, *Order, []CartLineRef) error { return nil },
	}
	bridge := &bridgeMock{
		createIntent: func(context.Context, string, decimal.Decimal, string) (*payment.Intent, error) {
			return nil, errors.New("gateway unreachable")
		},
	}
	svc := NewService(fixtureCart(), fixtureCatalog(), fixtureAddresses(), ledger, bridge)

	_, _, err := svc.PlaceOrderWithIntent(t.Context(), "user-1", "addr-1", "INR")
	require.Error(t, err)
}

func TestConfirmPayment(t *testing.T) {
	t.Run("bad signature never reaches the ledger", func(t *testing.T) {
		ledger := &ledgerMock{
			markPaid: func(context.Context, string, string) (*Order, error) {
				t.Fatal("markPaid must not run for an invalid signature")
				return nil, nil
			},
		}
		bridge := &bridgeMock{
			verifyCallback: func(string, string, string) bool { return false },
		}
		svc := NewService(nil, nil, nil, ledger, bridge)

		_, err := svc.ConfirmPayment(t.Context(), "prov_123", "pay_1", "forged")
		assert.ErrorIs(t, err, payment.ErrInvalidSignature)
	})

	t.Run("valid signature marks paid", func(t *testing.T) {
		ledger := &ledgerMock{
			markPaid: func(_ context.Context, providerOrderID, paymentRef string) (*Order, error) {
				assert.Equal(t, "prov_123", providerOrderID)
				assert.Equal(t, "pay_1", paymentRef)
				return &Order{ID: "order-1", Status: StatusPlaced, PaymentRef: paymentRef}, nil
			},
		}
		bridge := &bridgeMock{
			verifyCallback: func(string, string, string) bool { return true },
		}
		svc := NewService(nil, nil, nil, ledger, bridge)

		o, err := svc.ConfirmPayment(t.Context(), "prov_123", "pay_1", "good")
		require.NoError(t, err)
		assert.Equal(t, StatusPlaced, o.Status)
	})
}

func TestCancelPassesThroughTransitionErrors(t *testing.T) {
	ledger := &ledgerMock{
		cancel: func(context.Context, string, string) (*Order, error) {
			return nil, ErrInvalidTransition
		},
	}
	svc := NewService(nil, nil, nil, ledger, nil)

	_, err := svc.Cancel(t.Context(), "user-1", "order-1")
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestStatusCancellable(t *testing.T) {
	assert.True(t, StatusPending.Cancellable())
	assert.True(t, StatusPlaced.Cancellable())
	assert.False(t, StatusCancelled.Cancellable())
	assert.False(t, StatusDelivered.Cancellable())
}
