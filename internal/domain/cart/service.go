package cart

import (
	"context"

	"github.com/go-faster/errors"

	"github.com/bazarly/storefront/internal/domain/catalog"
	"github.com/bazarly/storefront/internal/domain/pricing"
)

// Service implements the customer-facing cart operations on top of the line
// repository and the catalog reader.
type Service struct {
	lines    Repository
	products catalog.Reader
}

// NewService creates a cart Service with the required dependencies.
func NewService(lines Repository, products catalog.Reader) *Service {
	return &Service{
		lines:    lines,
		products: products,
	}
}

// AddItem adds quantity units of a product to the user's cart, incrementing
// the existing line when one is present. The product must exist in the
// catalog at add time.
func (s *Service) AddItem(ctx context.Context, userID, productID string, quantity int) (*Line, error) {
	if quantity < 1 {
		return nil, ErrInvalidQuantity
	}

	if _, err := s.products.GetByID(ctx, productID); err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			return nil, catalog.ErrNotFound
		}
		return nil, errors.Wrapf(err, "resolve product %s", productID)
	}

	line, err := s.lines.Upsert(ctx, userID, productID, quantity)
	if err != nil {
		return nil, errors.Wrap(err, "upsert cart line")
	}
	return line, nil
}

// UpdateQuantity replaces the quantity of one of the user's cart lines.
func (s *Service) UpdateQuantity(ctx context.Context, userID, lineID string, quantity int) (*Line, error) {
	if quantity < 1 {
		return nil, ErrInvalidQuantity
	}

	line, err := s.lines.UpdateQuantity(ctx, userID, lineID, quantity)
	if err != nil {
		if errors.Is(err, ErrLineNotFound) {
			return nil, ErrLineNotFound
		}
		return nil, errors.Wrap(err, "update cart line")
	}
	return line, nil
}

// RemoveItem deletes one of the user's cart lines.
func (s *Service) RemoveItem(ctx context.Context, userID, lineID string) error {
	if err := s.lines.Remove(ctx, userID, lineID); err != nil {
		if errors.Is(err, ErrLineNotFound) {
			return ErrLineNotFound
		}
		return errors.Wrap(err, "remove cart line")
	}
	return nil
}

// ListItems returns the user's cart joined with current catalog prices.
// Lines whose product has been removed from the catalog are skipped rather
// than failing the whole read.
func (s *Service) ListItems(ctx context.Context, userID string) ([]DisplayLine, error) {
	lines, err := s.lines.ListByUser(ctx, userID)
	if err != nil {
		return nil, errors.Wrap(err, "list cart lines")
	}
	if len(lines) == 0 {
		return nil, nil
	}

	ids := make([]string, len(lines))
	for i, l := range lines {
		ids[i] = l.ProductID
	}
	products, err := s.products.GetByIDs(ctx, ids)
	if err != nil {
		return nil, errors.Wrap(err, "resolve cart products")
	}

	byID := make(map[string]catalog.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}

	out := make([]DisplayLine, 0, len(lines))
	for _, l := range lines {
		p, ok := byID[l.ProductID]
		if !ok {
			continue
		}
		unit := pricing.UnitPrice(p.Price, p.DiscountPercent)
		out = append(out, DisplayLine{
			Line:      l,
			Product:   p,
			UnitPrice: unit,
			LineTotal: pricing.LineTotal(p.Price, p.DiscountPercent, l.Quantity),
		})
	}
	return out, nil
}
