package postgres

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/bazarly/storefront/internal/domain/order"
)

const (
	orderColumns = `id, user_id, address_id, ship_line, ship_city, ship_state, ship_country,
		ship_zipcode, total, status, payment_ref, provider_order_id, created_at`

	insertOrderSQL = `INSERT INTO orders (id, user_id, address_id, ship_line, ship_city, ship_state,
		ship_country, ship_zipcode, total, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	insertOrderLineSQL = `INSERT INTO order_lines (order_id, product_id, title, quantity, unit_price)
		VALUES ($1, $2, $3, $4, $5)`

	clearCartLinesSQL = `DELETE FROM cart_lines
		WHERE user_id = $1
		  AND (id, quantity) IN (SELECT * FROM unnest($2::text[], $3::int[]))`

	getOrderSQL = `SELECT ` + orderColumns + ` FROM orders WHERE id = $1 AND user_id = $2`

	listOrdersSQL = `SELECT ` + orderColumns + ` FROM orders
		WHERE user_id = $1 ORDER BY created_at DESC`

	getOrderLinesSQL = `SELECT order_id, product_id, title, quantity, unit_price
		FROM order_lines WHERE order_id = ANY($1)`

	cancelOrderSQL = `UPDATE orders SET status = 'CANCELLED'
		WHERE id = $1 AND user_id = $2 AND status IN ('PENDING', 'PLACED')`

	orderStatusSQL = `SELECT status FROM orders WHERE id = $1 AND user_id = $2`

	markPaidSQL = `UPDATE orders SET status = 'PLACED', payment_ref = $2
		WHERE provider_order_id = $1 AND status = 'PENDING'
		RETURNING id, user_id`

	paymentStateSQL = `SELECT id, user_id, status, payment_ref FROM orders
		WHERE provider_order_id = $1`

	attachProviderSQL = `UPDATE orders SET provider_order_id = $2 WHERE id = $1`

	listSoldSQL = `SELECT ol.order_id, o.status, ol.product_id, ol.title, ol.quantity,
		ol.unit_price, o.created_at
		FROM order_lines ol
		JOIN orders o ON o.id = ol.order_id
		JOIN products p ON p.id = ol.product_id
		WHERE p.seller_id = $1
		ORDER BY o.created_at DESC`
)

var _ order.Ledger = (*OrderRepository)(nil)

// OrderRepository implements order.Ledger backed by PostgreSQL.
type OrderRepository struct {
	pool *pgxpool.Pool
}

// NewOrderRepository returns an OrderRepository that uses the given pool.
func NewOrderRepository(pool *pgxpool.Pool) *OrderRepository {
	return &OrderRepository{pool: pool}
}

// CreateWithCartClear persists the order, its lines, and the cart deletion in
// one transaction. The delete is scoped to the exact (id, quantity) pairs the
// order was priced from: if a concurrent placement consumed a line, or a
// quantity changed after the snapshot, the affected-row count comes up short
// and the whole transaction rolls back with order.ErrConcurrentModification.
func (r *OrderRepository) CreateWithCartClear(ctx context.Context, o *order.Order, cartLines []order.CartLineRef) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return errors.Wrap(err, "begin transaction")
	}
	defer func() { _ = tx.Rollback(ctx) }()

	_, err = tx.Exec(ctx, insertOrderSQL,
		o.ID, o.UserID, o.AddressID,
		o.Shipping.Line, o.Shipping.City, o.Shipping.State, o.Shipping.Country, o.Shipping.Zipcode,
		o.Total, string(o.Status),
	)
	if err != nil {
		return errors.Wrapf(err, "inserting order %q", o.ID)
	}

	batch := &pgx.Batch{}
	for _, l := range o.Lines {
		batch.Queue(insertOrderLineSQL, o.ID, l.ProductID, l.Title, l.Quantity, l.UnitPrice)
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return errors.Wrapf(err, "inserting lines for order %q", o.ID)
	}

	lineIDs := make([]string, len(cartLines))
	quantities := make([]int, len(cartLines))
	for i, l := range cartLines {
		lineIDs[i] = l.ID
		quantities[i] = l.Quantity
	}
	tag, err := tx.Exec(ctx, clearCartLinesSQL, o.UserID, lineIDs, quantities)
	if err != nil {
		return errors.Wrap(err, "clearing cart")
	}
	if tag.RowsAffected() != int64(len(cartLines)) {
		return order.ErrConcurrentModification
	}

	if err := tx.Commit(ctx); err != nil {
		return errors.Wrapf(err, "committing order %q", o.ID)
	}
	return nil
}

// GetByUser returns an order with its lines, scoped to the owning user.
func (r *OrderRepository) GetByUser(ctx context.Context, userID, id string) (*order.Order, error) {
	rows, err := r.pool.Query(ctx, getOrderSQL, id, userID)
	if err != nil {
		return nil, errors.Wrapf(err, "getting order %q", id)
	}

	o, err := pgx.CollectExactlyOneRow(rows, scanOrder)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, order.ErrNotFound
		}
		return nil, errors.Wrapf(err, "getting order %q", id)
	}

	lines, err := r.loadLines(ctx, []string{o.ID})
	if err != nil {
		return nil, err
	}
	o.Lines = lines[o.ID]
	return &o, nil
}

// ListByUser returns the user's orders with lines, newest first.
func (r *OrderRepository) ListByUser(ctx context.Context, userID string) ([]order.Order, error) {
	rows, err := r.pool.Query(ctx, listOrdersSQL, userID)
	if err != nil {
		return nil, errors.Wrap(err, "listing orders")
	}
	orders, err := pgx.CollectRows(rows, scanOrder)
	if err != nil {
		return nil, errors.Wrap(err, "listing orders")
	}
	if len(orders) == 0 {
		return orders, nil
	}

	ids := make([]string, len(orders))
	for i := range orders {
		ids[i] = orders[i].ID
	}
	lines, err := r.loadLines(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range orders {
		orders[i].Lines = lines[orders[i].ID]
	}
	return orders, nil
}

// ListSoldBySeller returns order lines referencing the seller's products,
// newest first.
func (r *OrderRepository) ListSoldBySeller(ctx context.Context, sellerID string) ([]order.SellerLine, error) {
	rows, err := r.pool.Query(ctx, listSoldSQL, sellerID)
	if err != nil {
		return nil, errors.Wrapf(err, "listing sold lines for seller %q", sellerID)
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (order.SellerLine, error) {
		var (
			sl     order.SellerLine
			status string
		)
		err := row.Scan(&sl.OrderID, &status, &sl.ProductID, &sl.Title, &sl.Quantity, &sl.UnitPrice, &sl.CreatedAt)
		sl.Status = order.Status(status)
		return sl, err
	})
}

// Cancel transitions a cancellable order to CANCELLED via a guarded update.
// When the guard matches no row, the current status decides between NotFound
// and InvalidTransition.
func (r *OrderRepository) Cancel(ctx context.Context, userID, id string) (*order.Order, error) {
	tag, err := r.pool.Exec(ctx, cancelOrderSQL, id, userID)
	if err != nil {
		return nil, errors.Wrapf(err, "cancelling order %q", id)
	}
	if tag.RowsAffected() == 0 {
		var status string
		err := r.pool.QueryRow(ctx, orderStatusSQL, id, userID).Scan(&status)
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, order.ErrNotFound
		}
		if err != nil {
			return nil, errors.Wrapf(err, "checking order %q", id)
		}
		return nil, order.ErrInvalidTransition
	}
	return r.GetByUser(ctx, userID, id)
}

// MarkPaid transitions PENDING to PLACED for the order correlated to the
// provider's order id. A replay with the same payment reference returns the
// already-PLACED order unchanged.
func (r *OrderRepository) MarkPaid(ctx context.Context, providerOrderID, paymentRef string) (*order.Order, error) {
	var id, userID string
	err := r.pool.QueryRow(ctx, markPaidSQL, providerOrderID, paymentRef).Scan(&id, &userID)
	if err == nil {
		return r.GetByUser(ctx, userID, id)
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, errors.Wrap(err, "marking order paid")
	}

	// The guard did not match: the order is unknown, already PLACED
	// (idempotent replay), or in a state that cannot accept payment.
	var status, ref string
	err = r.pool.QueryRow(ctx, paymentStateSQL, providerOrderID).Scan(&id, &userID, &status, &ref)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, order.ErrNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "checking payment state")
	}
	if order.Status(status) == order.StatusPlaced && ref == paymentRef {
		return r.GetByUser(ctx, userID, id)
	}
	return nil, order.ErrInvalidTransition
}

// AttachProviderOrder stores the gateway's order id on the order row.
func (r *OrderRepository) AttachProviderOrder(ctx context.Context, id, providerOrderID string) error {
	tag, err := r.pool.Exec(ctx, attachProviderSQL, id, providerOrderID)
	if err != nil {
		return errors.Wrapf(err, "attaching provider order to %q", id)
	}
	if tag.RowsAffected() == 0 {
		return order.ErrNotFound
	}
	return nil
}

// loadLines fetches lines for the given orders and groups them by order id.
func (r *OrderRepository) loadLines(ctx context.Context, orderIDs []string) (map[string][]order.Line, error) {
	rows, err := r.pool.Query(ctx, getOrderLinesSQL, orderIDs)
	if err != nil {
		return nil, errors.Wrap(err, "loading order lines")
	}

	type keyedLine struct {
		orderID string
		line    order.Line
	}
	lines, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (keyedLine, error) {
		var kl keyedLine
		err := row.Scan(&kl.orderID, &kl.line.ProductID, &kl.line.Title, &kl.line.Quantity, &kl.line.UnitPrice)
		return kl, err
	})
	if err != nil {
		return nil, errors.Wrap(err, "loading order lines")
	}

	out := make(map[string][]order.Line, len(orderIDs))
	for _, kl := range lines {
		out[kl.orderID] = append(out[kl.orderID], kl.line)
	}
	return out, nil
}

func scanOrder(row pgx.CollectableRow) (order.Order, error) {
	var (
		o      order.Order
		status string
	)
	err := row.Scan(
		&o.ID, &o.UserID, &o.AddressID,
		&o.Shipping.Line, &o.Shipping.City, &o.Shipping.State, &o.Shipping.Country, &o.Shipping.Zipcode,
		&o.Total, &status, &o.PaymentRef, &o.ProviderOrderID, &o.CreatedAt,
	)
	o.Status = order.Status(status)
	return o, err
}
