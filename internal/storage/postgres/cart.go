package postgres

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/bazarly/storefront/internal/domain/cart"
)

const (
	cartColumns = `id, user_id, product_id, quantity, created_at, updated_at`

	upsertCartLineSQL = `INSERT INTO cart_lines (id, user_id, product_id, quantity)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id, product_id)
		DO UPDATE SET quantity = cart_lines.quantity + EXCLUDED.quantity, updated_at = now()
		RETURNING ` + cartColumns

	updateCartLineSQL = `UPDATE cart_lines SET quantity = $3, updated_at = now()
		WHERE id = $1 AND user_id = $2
		RETURNING ` + cartColumns

	removeCartLineSQL = `DELETE FROM cart_lines WHERE id = $1 AND user_id = $2`

	listCartLinesSQL = `SELECT ` + cartColumns + ` FROM cart_lines
		WHERE user_id = $1 ORDER BY created_at`
)

var _ cart.Repository = (*CartRepository)(nil)

// CartRepository implements cart.Repository backed by PostgreSQL.
type CartRepository struct {
	pool *pgxpool.Pool
}

// NewCartRepository returns a CartRepository that uses the given pool.
func NewCartRepository(pool *pgxpool.Pool) *CartRepository {
	return &CartRepository{pool: pool}
}

// Upsert inserts a (user, product) line or increments the existing one.
// The UNIQUE (user_id, product_id) constraint makes the increment race-free.
func (r *CartRepository) Upsert(ctx context.Context, userID, productID string, quantity int) (*cart.Line, error) {
	rows, err := r.pool.Query(ctx, upsertCartLineSQL, uuid.New().String(), userID, productID, quantity)
	if err != nil {
		return nil, errors.Wrap(err, "upserting cart line")
	}

	l, err := pgx.CollectExactlyOneRow(rows, scanCartLine)
	if err != nil {
		return nil, errors.Wrap(err, "upserting cart line")
	}
	return &l, nil
}

// UpdateQuantity replaces the quantity of a line owned by userID.
func (r *CartRepository) UpdateQuantity(ctx context.Context, userID, lineID string, quantity int) (*cart.Line, error) {
	rows, err := r.pool.Query(ctx, updateCartLineSQL, lineID, userID, quantity)
	if err != nil {
		return nil, errors.Wrapf(err, "updating cart line %q", lineID)
	}

	l, err := pgx.CollectExactlyOneRow(rows, scanCartLine)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, cart.ErrLineNotFound
		}
		return nil, errors.Wrapf(err, "updating cart line %q", lineID)
	}
	return &l, nil
}

// Remove deletes a line owned by userID.
func (r *CartRepository) Remove(ctx context.Context, userID, lineID string) error {
	tag, err := r.pool.Exec(ctx, removeCartLineSQL, lineID, userID)
	if err != nil {
		return errors.Wrapf(err, "removing cart line %q", lineID)
	}
	if tag.RowsAffected() == 0 {
		return cart.ErrLineNotFound
	}
	return nil
}

// ListByUser returns the user's cart lines, oldest first.
func (r *CartRepository) ListByUser(ctx context.Context, userID string) ([]cart.Line, error) {
	rows, err := r.pool.Query(ctx, listCartLinesSQL, userID)
	if err != nil {
		return nil, errors.Wrap(err, "listing cart lines")
	}
	return pgx.CollectRows(rows, scanCartLine)
}

func scanCartLine(row pgx.CollectableRow) (cart.Line, error) {
	var l cart.Line
	err := row.Scan(&l.ID, &l.UserID, &l.ProductID, &l.Quantity, &l.CreatedAt, &l.UpdatedAt)
	return l, err
}
