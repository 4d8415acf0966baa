package postgres

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/bazarly/storefront/internal/domain/address"
)

const (
	addressColumns = `id, user_id, line, city, state, country, zipcode, created_at`

	createAddressSQL = `INSERT INTO addresses (id, user_id, line, city, state, country, zipcode)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	getAddressSQL = `SELECT ` + addressColumns + ` FROM addresses
		WHERE id = $1 AND user_id = $2`

	listAddressesSQL = `SELECT ` + addressColumns + ` FROM addresses
		WHERE user_id = $1 ORDER BY created_at`

	updateAddressSQL = `UPDATE addresses
		SET line = $3, city = $4, state = $5, country = $6, zipcode = $7
		WHERE id = $1 AND user_id = $2`

	deleteAddressSQL = `DELETE FROM addresses WHERE id = $1 AND user_id = $2`
)

var _ address.Repository = (*AddressRepository)(nil)

// AddressRepository implements address.Repository backed by PostgreSQL.
type AddressRepository struct {
	pool *pgxpool.Pool
}

// NewAddressRepository returns an AddressRepository that uses the given pool.
func NewAddressRepository(pool *pgxpool.Pool) *AddressRepository {
	return &AddressRepository{pool: pool}
}

// Create persists a new address.
func (r *AddressRepository) Create(ctx context.Context, a *address.Address) error {
	_, err := r.pool.Exec(ctx, createAddressSQL,
		a.ID, a.UserID, a.Line, a.City, a.State, a.Country, a.Zipcode,
	)
	if err != nil {
		return errors.Wrapf(err, "creating address %q", a.ID)
	}
	return nil
}

// GetByUser returns an address owned by userID, or address.ErrNotFound.
func (r *AddressRepository) GetByUser(ctx context.Context, userID, id string) (*address.Address, error) {
	rows, err := r.pool.Query(ctx, getAddressSQL, id, userID)
	if err != nil {
		return nil, errors.Wrapf(err, "getting address %q", id)
	}

	a, err := pgx.CollectExactlyOneRow(rows, scanAddress)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, address.ErrNotFound
		}
		return nil, errors.Wrapf(err, "getting address %q", id)
	}
	return &a, nil
}

// ListByUser returns the user's addresses, oldest first.
func (r *AddressRepository) ListByUser(ctx context.Context, userID string) ([]address.Address, error) {
	rows, err := r.pool.Query(ctx, listAddressesSQL, userID)
	if err != nil {
		return nil, errors.Wrap(err, "listing addresses")
	}
	return pgx.CollectRows(rows, scanAddress)
}

// Update persists address changes, guarded by the owning user.
func (r *AddressRepository) Update(ctx context.Context, a *address.Address) error {
	tag, err := r.pool.Exec(ctx, updateAddressSQL,
		a.ID, a.UserID, a.Line, a.City, a.State, a.Country, a.Zipcode,
	)
	if err != nil {
		return errors.Wrapf(err, "updating address %q", a.ID)
	}
	if tag.RowsAffected() == 0 {
		return address.ErrNotFound
	}
	return nil
}

// Delete removes an address owned by userID.
func (r *AddressRepository) Delete(ctx context.Context, userID, id string) error {
	tag, err := r.pool.Exec(ctx, deleteAddressSQL, id, userID)
	if err != nil {
		return errors.Wrapf(err, "deleting address %q", id)
	}
	if tag.RowsAffected() == 0 {
		return address.ErrNotFound
	}
	return nil
}

func scanAddress(row pgx.CollectableRow) (address.Address, error) {
	var a address.Address
	err := row.Scan(&a.ID, &a.UserID, &a.Line, &a.City, &a.State, &a.Country, &a.Zipcode, &a.CreatedAt)
	return a, err
}
