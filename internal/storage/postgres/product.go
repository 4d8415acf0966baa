package postgres

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/bazarly/storefront/internal/domain/catalog"
)

const (
	productColumns = `id, seller_id, title, description, image_url, price, discount_percent, created_at`

	listProductsSQL = `SELECT ` + productColumns + ` FROM products ORDER BY created_at DESC`

	getProductByIDSQL = `SELECT ` + productColumns + ` FROM products WHERE id = $1`

	getProductsByIDsSQL = `SELECT ` + productColumns + ` FROM products WHERE id = ANY($1)`

	listProductsBySellerSQL = `SELECT ` + productColumns + ` FROM products
		WHERE seller_id = $1 ORDER BY created_at DESC`

	createProductSQL = `INSERT INTO products (id, seller_id, title, description, image_url, price, discount_percent)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	updateProductSQL = `UPDATE products
		SET title = $3, description = $4, image_url = $5, price = $6, discount_percent = $7
		WHERE id = $1 AND seller_id = $2`

	deleteProductSQL = `DELETE FROM products WHERE id = $1 AND seller_id = $2`
)

var _ catalog.Repository = (*ProductRepository)(nil)

// ProductRepository implements catalog.Repository backed by PostgreSQL.
type ProductRepository struct {
	pool *pgxpool.Pool
}

// NewProductRepository returns a ProductRepository that uses the given pool.
func NewProductRepository(pool *pgxpool.Pool) *ProductRepository {
	return &ProductRepository{pool: pool}
}

// List returns all products, newest first.
func (r *ProductRepository) List(ctx context.Context) ([]catalog.Product, error) {
	rows, err := r.pool.Query(ctx, listProductsSQL)
	if err != nil {
		return nil, errors.Wrap(err, "listing products")
	}
	return pgx.CollectRows(rows, scanProduct)
}

// GetByID returns a single product by its identifier.
func (r *ProductRepository) GetByID(ctx context.Context, id string) (*catalog.Product, error) {
	rows, err := r.pool.Query(ctx, getProductByIDSQL, id)
	if err != nil {
		return nil, errors.Wrapf(err, "getting product %q", id)
	}

	p, err := pgx.CollectExactlyOneRow(rows, scanProduct)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, catalog.ErrNotFound
		}
		return nil, errors.Wrapf(err, "getting product %q", id)
	}
	return &p, nil
}

// GetByIDs returns products matching any of the given IDs.
func (r *ProductRepository) GetByIDs(ctx context.Context, ids []string) ([]catalog.Product, error) {
	rows, err := r.pool.Query(ctx, getProductsByIDsSQL, ids)
	if err != nil {
		return nil, errors.Wrap(err, "getting products by ids")
	}
	return pgx.CollectRows(rows, scanProduct)
}

// ListBySeller returns the seller's products, newest first.
func (r *ProductRepository) ListBySeller(ctx context.Context, sellerID string) ([]catalog.Product, error) {
	rows, err := r.pool.Query(ctx, listProductsBySellerSQL, sellerID)
	if err != nil {
		return nil, errors.Wrapf(err, "listing products for seller %q", sellerID)
	}
	return pgx.CollectRows(rows, scanProduct)
}

// Create persists a new product.
func (r *ProductRepository) Create(ctx context.Context, p *catalog.Product) error {
	_, err := r.pool.Exec(ctx, createProductSQL,
		p.ID, p.SellerID, p.Title, p.Description, p.ImageURL, p.Price, p.DiscountPercent,
	)
	if err != nil {
		return errors.Wrapf(err, "creating product %q", p.ID)
	}
	return nil
}

// Update persists product changes, guarded by the owning seller.
// Returns catalog.ErrNotFound when the product is absent or foreign.
func (r *ProductRepository) Update(ctx context.Context, p *catalog.Product) error {
	tag, err := r.pool.Exec(ctx, updateProductSQL,
		p.ID, p.SellerID, p.Title, p.Description, p.ImageURL, p.Price, p.DiscountPercent,
	)
	if err != nil {
		return errors.Wrapf(err, "updating product %q", p.ID)
	}
	if tag.RowsAffected() == 0 {
		return catalog.ErrNotFound
	}
	return nil
}

// Delete removes a product, guarded by the owning seller.
func (r *ProductRepository) Delete(ctx context.Context, sellerID, id string) error {
	tag, err := r.pool.Exec(ctx, deleteProductSQL, id, sellerID)
	if err != nil {
		return errors.Wrapf(err, "deleting product %q", id)
	}
	if tag.RowsAffected() == 0 {
		return catalog.ErrNotFound
	}
	return nil
}

func scanProduct(row pgx.CollectableRow) (catalog.Product, error) {
	var p catalog.Product
	err := row.Scan(
		&p.ID, &p.SellerID, &p.Title, &p.Description, &p.ImageURL,
		&p.Price, &p.DiscountPercent, &p.CreatedAt,
	)
	return p, err
}
