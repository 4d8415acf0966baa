package handler

import (
	"context"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/bazarly/storefront/internal/domain/address"
	"github.com/bazarly/storefront/internal/domain/cart"
	"github.com/bazarly/storefront/internal/domain/catalog"
	"github.com/bazarly/storefront/internal/domain/order"
	"github.com/bazarly/storefront/internal/domain/payment"
	"github.com/bazarly/storefront/internal/domain/user"
)

// In-memory fakes implementing the domain repository contracts, including
// the ownership and transition rules the handlers rely on.

type memUsers struct {
	mu   sync.Mutex
	byID map[string]*user.User
}

func newMemUsers() *memUsers {
	return &memUsers{byID: make(map[string]*user.User)}
}

func (m *memUsers) Create(_ context.Context, u *user.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.byID {
		if existing.Email == u.Email {
			return user.ErrEmailTaken
		}
	}
	cp := *u
	cp.CreatedAt = time.Now()
	m.byID[u.ID] = &cp
	return nil
}

func (m *memUsers) GetByID(_ context.Context, id string) (*user.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.byID[id]
	if !ok {
		return nil, user.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (m *memUsers) GetByEmail(_ context.Context, email string) (*user.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.byID {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, user.ErrNotFound
}

func (m *memUsers) Update(_ context.Context, u *user.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byID[u.ID]; !ok {
		return user.ErrNotFound
	}
	cp := *u
	m.byID[u.ID] = &cp
	return nil
}

type memCatalog struct {
	mu   sync.Mutex
	byID map[string]catalog.Product
}

func newMemCatalog() *memCatalog {
	return &memCatalog{byID: make(map[string]catalog.Product)}
}

func (m *memCatalog) List(context.Context) ([]catalog.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]catalog.Product, 0, len(m.byID))
	for _, p := range m.byID {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memCatalog) GetByID(_ context.Context, id string) (*catalog.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.byID[id]
	if !ok {
		return nil, catalog.ErrNotFound
	}
	return &p, nil
}

func (m *memCatalog) GetByIDs(_ context.Context, ids []string) ([]catalog.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]catalog.Product, 0, len(ids))
	for _, id := range ids {
		if p, ok := m.byID[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *memCatalog) ListBySeller(_ context.Context, sellerID string) ([]catalog.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []catalog.Product
	for _, p := range m.byID {
		if p.SellerID == sellerID {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memCatalog) Create(_ context.Context, p *catalog.Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p.CreatedAt = time.Now()
	m.byID[p.ID] = *p
	return nil
}

func (m *memCatalog) Update(_ context.Context, p *catalog.Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	existing, ok := m.byID[p.ID]
	if !ok || existing.SellerID != p.SellerID {
		return catalog.ErrNotFound
	}
	m.byID[p.ID] = *p
	return nil
}

func (m *memCatalog) Delete(_ context.Context, sellerID, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	existing, ok := m.byID[id]
	if !ok || existing.SellerID != sellerID {
		return catalog.ErrNotFound
	}
	delete(m.byID, id)
	return nil
}

type memAddresses struct {
	mu   sync.Mutex
	byID map[string]address.Address
}

func newMemAddresses() *memAddresses {
	return &memAddresses{byID: make(map[string]address.Address)}
}

func (m *memAddresses) Create(_ context.Context, a *address.Address) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	a.CreatedAt = time.Now()
	m.byID[a.ID] = *a
	return nil
}

func (m *memAddresses) GetByUser(_ context.Context, userID, id string) (*address.Address, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.byID[id]
	if !ok || a.UserID != userID {
		return nil, address.ErrNotFound
	}
	return &a, nil
}

func (m *memAddresses) ListByUser(_ context.Context, userID string) ([]address.Address, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []address.Address
	for _, a := range m.byID {
		if a.UserID == userID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (m *memAddresses) Update(_ context.Context, a *address.Address) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	existing, ok := m.byID[a.ID]
	if !ok || existing.UserID != a.UserID {
		return address.ErrNotFound
	}
	m.byID[a.ID] = *a
	return nil
}

func (m *memAddresses) Delete(_ context.Context, userID, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	existing, ok := m.byID[id]
	if !ok || existing.UserID != userID {
		return address.ErrNotFound
	}
	delete(m.byID, id)
	return nil
}

type memCarts struct {
	mu    sync.Mutex
	next  int
	lines []cart.Line
}

func newMemCarts() *memCarts {
	return &memCarts{}
}

func (m *memCarts) Upsert(_ context.Context, userID, productID string, quantity int) (*cart.Line, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.lines {
		l := &m.lines[i]
		if l.UserID == userID && l.ProductID == productID {
			l.Quantity += quantity
			cp := *l
			return &cp, nil
		}
	}
	m.next++
	l := cart.Line{
		ID:        "line-" + strconv.Itoa(m.next),
		UserID:    userID,
		ProductID: productID,
		Quantity:  quantity,
		CreatedAt: time.Now(),
	}
	m.lines = append(m.lines, l)
	return &l, nil
}

func (m *memCarts) UpdateQuantity(_ context.Context, userID, lineID string, quantity int) (*cart.Line, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.lines {
		l := &m.lines[i]
		if l.ID == lineID && l.UserID == userID {
			l.Quantity = quantity
			cp := *l
			return &cp, nil
		}
	}
	return nil, cart.ErrLineNotFound
}

func (m *memCarts) Remove(_ context.Context, userID, lineID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.lines {
		if m.lines[i].ID == lineID && m.lines[i].UserID == userID {
			m.lines = append(m.lines[:i], m.lines[i+1:]...)
			return nil
		}
	}
	return cart.ErrLineNotFound
}

func (m *memCarts) ListByUser(_ context.Context, userID string) ([]cart.Line, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []cart.Line
	for _, l := range m.lines {
		if l.UserID == userID {
			out = append(out, l)
		}
	}
	return out, nil
}

// removeByRefs mimics the transactional cart clear: it deletes exactly the
// lines matching the given (id, quantity) pairs and reports how many did.
func (m *memCarts) removeByRefs(userID string, refs []order.CartLineRef) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	deleted := 0
	kept := m.lines[:0]
	want := make(map[string]int, len(refs))
	for _, ref := range refs {
		want[ref.ID] = ref.Quantity
	}
	for _, l := range m.lines {
		if q, ok := want[l.ID]; ok && l.UserID == userID && l.Quantity == q {
			deleted++
			continue
		}
		kept = append(kept, l)
	}
	m.lines = kept
	return deleted
}

type memLedger struct {
	mu    sync.Mutex
	carts *memCarts
	byID  map[string]*order.Order
}

func newMemLedger(carts *memCarts) *memLedger {
	return &memLedger{carts: carts, byID: make(map[string]*order.Order)}
}

func (m *memLedger) CreateWithCartClear(_ context.Context, o *order.Order, cartLines []order.CartLineRef) error {
	if m.carts.removeByRefs(o.UserID, cartLines) != len(cartLines) {
		return order.ErrConcurrentModification
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *o
	cp.CreatedAt = time.Now()
	m.byID[o.ID] = &cp
	o.CreatedAt = cp.CreatedAt
	return nil
}

func (m *memLedger) GetByUser(_ context.Context, userID, id string) (*order.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.byID[id]
	if !ok || o.UserID != userID {
		return nil, order.ErrNotFound
	}
	cp := *o
	return &cp, nil
}

func (m *memLedger) ListByUser(_ context.Context, userID string) ([]order.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []order.Order
	for _, o := range m.byID {
		if o.UserID == userID {
			out = append(out, *o)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *memLedger) ListSoldBySeller(context.Context, string) ([]order.SellerLine, error) {
	return nil, nil
}

func (m *memLedger) Cancel(_ context.Context, userID, id string) (*order.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.byID[id]
	if !ok || o.UserID != userID {
		return nil, order.ErrNotFound
	}
	if !o.Status.Cancellable() {
		return nil, order.ErrInvalidTransition
	}
	o.Status = order.StatusCancelled
	cp := *o
	return &cp, nil
}

func (m *memLedger) MarkPaid(_ context.Context, providerOrderID, paymentRef string) (*order.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, o := range m.byID {
		if o.ProviderOrderID != providerOrderID {
			continue
		}
		switch {
		case o.Status == order.StatusPending:
			o.Status = order.StatusPlaced
			o.PaymentRef = paymentRef
		case o.Status == order.StatusPlaced && o.PaymentRef == paymentRef:
			// Idempotent replay.
		default:
			return nil, order.ErrInvalidTransition
		}
		cp := *o
		return &cp, nil
	}
	return nil, order.ErrNotFound
}

func (m *memLedger) AttachProviderOrder(_ context.Context, id, providerOrderID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.byID[id]
	if !ok {
		return order.ErrNotFound
	}
	o.ProviderOrderID = providerOrderID
	return nil
}

// fakeBridge accepts exactly one signature per (order, payment) pair:
// "sig:<providerOrderID>|<providerPaymentID>".
type fakeBridge struct {
	intents int
}

func (b *fakeBridge) CreateIntent(_ context.Context, orderID string, amount decimal.Decimal, currency string) (*payment.Intent, error) {
	b.intents++
	return &payment.Intent{
		ProviderOrderID: "prov_" + orderID,
		AmountMinor:     amount.Mul(decimal.NewFromInt(100)).IntPart(),
		Currency:        currency,
		ClientKey:       "rzp_test_key",
	}, nil
}

func (b *fakeBridge) VerifyCallback(providerOrderID, providerPaymentID, signature string) bool {
	return signature == "sig:"+providerOrderID+"|"+providerPaymentID
}
