package address

import (
	"context"
	"time"

	"github.com/go-faster/errors"
)

// ErrNotFound is returned when an address does not exist or does not belong
// to the requesting user. The two cases are deliberately indistinguishable.
var ErrNotFound = errors.New("address not found")

// Address is a shipping destination owned by exactly one user. Orders copy
// these fields at creation time, so editing an address never rewrites
// shipping data on historical orders.
type Address struct {
	ID        string
	UserID    string
	Line      string
	City      string
	State     string
	Country   string
	Zipcode   string
	CreatedAt time.Time
}

// Repository defines persistence operations for the address book.
// All lookups are scoped to the owning user.
type Repository interface {
	Create(ctx context.Context, a *Address) error
	GetByUser(ctx context.Context, userID, id string) (*Address, error)
	ListByUser(ctx context.Context, userID string) ([]Address, error)
	Update(ctx context.Context, a *Address) error
	Delete(ctx context.Context, userID, id string) error
}
