package catalog

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// ErrNotFound is returned when a requested product does not exist.
var ErrNotFound = errors.New("product not found")

// Product is a catalog item offered by a seller. Price is the list price;
// DiscountPercent is an optional percentage discount in [0, 100].
type Product struct {
	ID              string
	SellerID        string
	Title           string
	Description     string
	ImageURL        string
	Price           decimal.Decimal
	DiscountPercent decimal.Decimal
	CreatedAt       time.Time
}

// Reader resolves products to their current price and availability.
// The cart and order flows read through this interface so that order-time
// pricing always reflects the latest committed catalog state.
type Reader interface {
	List(ctx context.Context) ([]Product, error)
	GetByID(ctx context.Context, id string) (*Product, error)
	GetByIDs(ctx context.Context, ids []string) ([]Product, error)
}

// Repository extends Reader with seller-facing catalog mutations.
type Repository interface {
	Reader
	ListBySeller(ctx context.Context, sellerID string) ([]Product, error)
	Create(ctx context.Context, p *Product) error
	Update(ctx context.Context, p *Product) error
	Delete(ctx context.Context, sellerID, id string) error
}
