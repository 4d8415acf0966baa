// Command seed-db migrates the database and loads demo data: a seller and a
// customer account, the seller's products from a JSON file, and one shipping
// address for the customer.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"log/slog"
	"os"
	"os/signal"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/bazarly/storefront/internal/auth"
	"github.com/bazarly/storefront/internal/domain/address"
	"github.com/bazarly/storefront/internal/domain/catalog"
	"github.com/bazarly/storefront/internal/domain/user"
	"github.com/bazarly/storefront/internal/storage/postgres"
)

type productJSON struct {
	Title           string          `json:"title"`
	Description     string          `json:"description"`
	ImageURL        string          `json:"imageUrl"`
	Price           decimal.Decimal `json:"price"`
	DiscountPercent decimal.Decimal `json:"discountPercent"`
}

func main() {
	var (
		databaseURL  string
		productsFile string
		password     string
	)

	flag.StringVar(&databaseURL, "database-url", "", "PostgreSQL connection URL (or DATABASE_URL env)")
	flag.StringVar(&productsFile, "products-file", "db/seed/products.json", "path to products JSON file")
	flag.StringVar(&password, "password", "", "password for the demo accounts (or STORE_SEED_PASSWORD env)")
	flag.Parse()

	if databaseURL == "" {
		databaseURL = os.Getenv("DATABASE_URL")
	}
	if databaseURL == "" {
		slog.Error("database URL is required: set --database-url or DATABASE_URL")
		os.Exit(1)
	}
	if password == "" {
		password = os.Getenv("STORE_SEED_PASSWORD")
	}
	if password == "" {
		slog.Error("demo password is required: set --password or STORE_SEED_PASSWORD")
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx, databaseURL, productsFile, password); err != nil {
		slog.Error("seed failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("seed completed successfully")
}

func run(ctx context.Context, databaseURL, productsFile, password string) error {
	slog.Info("connecting to database")

	pool, err := postgres.NewPool(ctx, databaseURL)
	if err != nil {
		return errors.Wrap(err, "connect to database")
	}
	defer pool.Close()

	slog.Info("running migrations")

	if err := postgres.RunMigrations(ctx, pool); err != nil {
		return errors.Wrap(err, "run migrations")
	}

	users := postgres.NewUserRepository(pool)
	products := postgres.NewProductRepository(pool)
	addresses := postgres.NewAddressRepository(pool)

	seller, err := seedUser(ctx, users, "Demo Seller", "seller@demo.local", password, user.RoleSeller)
	if err != nil {
		return errors.Wrap(err, "seed seller")
	}
	customer, err := seedUser(ctx, users, "Demo Customer", "customer@demo.local", password, user.RoleCustomer)
	if err != nil {
		return errors.Wrap(err, "seed customer")
	}

	if err := seedProducts(ctx, products, seller.ID, productsFile); err != nil {
		return errors.Wrap(err, "seed products")
	}

	if err := seedAddress(ctx, addresses, customer.ID); err != nil {
		return errors.Wrap(err, "seed address")
	}

	return nil
}

// seedUser creates the account, or returns the existing one when the email
// is already registered so the seeder stays rerunnable.
func seedUser(ctx context.Context, users user.Repository, name, email, password string, role user.Role) (*user.User, error) {
	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, errors.Wrap(err, "hash password")
	}

	u := &user.User{
		ID:           uuid.NewString(),
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Role:         role,
	}
	if err := users.Create(ctx, u); err != nil {
		if errors.Is(err, user.ErrEmailTaken) {
			slog.Info("user already seeded", slog.String("email", email))
			return users.GetByEmail(ctx, email)
		}
		return nil, err
	}

	slog.Info("seeded user", slog.String("email", email), slog.String("role", string(role)))
	return u, nil
}

func seedProducts(ctx context.Context, products catalog.Repository, sellerID, productsFile string) error {
	slog.Info("reading products file", slog.String("path", productsFile))

	data, err := os.ReadFile(productsFile)
	if err != nil {
		return errors.Wrap(err, "read products file")
	}

	var in []productJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return errors.Wrap(err, "parse products JSON")
	}

	existing, err := products.ListBySeller(ctx, sellerID)
	if err != nil {
		return errors.Wrap(err, "list existing products")
	}
	seeded := make(map[string]struct{}, len(existing))
	for _, p := range existing {
		seeded[p.Title] = struct{}{}
	}

	count := 0
	for _, p := range in {
		if _, ok := seeded[p.Title]; ok {
			continue
		}
		err := products.Create(ctx, &catalog.Product{
			ID:              uuid.NewString(),
			SellerID:        sellerID,
			Title:           p.Title,
			Description:     p.Description,
			ImageURL:        p.ImageURL,
			Price:           p.Price,
			DiscountPercent: p.DiscountPercent,
		})
		if err != nil {
			return errors.Wrapf(err, "create product %q", p.Title)
		}
		count++
	}

	slog.Info("seeded products", slog.Int("created", count), slog.Int("skipped", len(in)-count))
	return nil
}

func seedAddress(ctx context.Context, addresses address.Repository, customerID string) error {
	existing, err := addresses.ListByUser(ctx, customerID)
	if err != nil {
		return errors.Wrap(err, "list existing addresses")
	}
	if len(existing) > 0 {
		slog.Info("address already seeded")
		return nil
	}

	err = addresses.Create(ctx, &address.Address{
		ID:      uuid.NewString(),
		UserID:  customerID,
		Line:    "221B Demo Street",
		City:    "Pune",
		State:   "Maharashtra",
		Country: "IN",
		Zipcode: "411001",
	})
	if err != nil {
		return err
	}

	slog.Info("seeded address")
	return nil
}
