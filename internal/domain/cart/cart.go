package cart

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/bazarly/storefront/internal/domain/catalog"
)

var (
	// ErrLineNotFound is returned when a cart line does not exist or belongs
	// to another user.
	ErrLineNotFound = errors.New("cart line not found")
	// ErrInvalidQuantity is returned for quantities below 1. Lines with zero
	// or negative quantity are never stored.
	ErrInvalidQuantity = errors.New("quantity must be at least 1")
)

// Line is one (user, product) entry in a cart. The pair is unique; repeat
// adds increment Quantity instead of creating a second line.
type Line struct {
	ID        string
	UserID    string
	ProductID string
	Quantity  int
	CreatedAt time.Time
	UpdatedAt time.Time
}

// DisplayLine joins a cart line with the product's current catalog state.
// The join happens at read time: displayed totals follow catalog price
// changes, while a placed order snapshots prices instead.
type DisplayLine struct {
	Line
	Product   catalog.Product
	UnitPrice decimal.Decimal
	LineTotal decimal.Decimal
}

// Repository defines persistence operations for cart lines.
type Repository interface {
	// Upsert creates the (userID, productID) line with the given quantity, or
	// increments the existing line's quantity by it.
	Upsert(ctx context.Context, userID, productID string, quantity int) (*Line, error)
	// UpdateQuantity replaces the quantity of a line owned by userID.
	// Returns ErrLineNotFound if the line is absent or foreign.
	UpdateQuantity(ctx context.Context, userID, lineID string, quantity int) (*Line, error)
	// Remove deletes a line owned by userID. Returns ErrLineNotFound if the
	// line is absent or foreign.
	Remove(ctx context.Context, userID, lineID string) error
	// ListByUser returns the user's cart lines, oldest first.
	ListByUser(ctx context.Context, userID string) ([]Line, error)
}
