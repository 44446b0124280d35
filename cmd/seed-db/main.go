// Command seed-db loads the product catalog from a JSON file and creates the
// initial admin account and delivery settings.
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
	"golang.org/x/crypto/bcrypt"

	"github.com/dokanhq/dokan-api/internal/domain/catalog"
	"github.com/dokanhq/dokan-api/internal/domain/user"
	"github.com/dokanhq/dokan-api/internal/repository"
)

func main() {
	var (
		databaseURL   string
		productsFile  string
		adminEmail    string
		adminPhone    string
		adminPassword string
	)

	flag.StringVar(&databaseURL, "database-url", "", "PostgreSQL connection URL (or DATABASE_URL env)")
	flag.StringVar(&productsFile, "products-file", "db/seed/products.json", "path to products JSON file")
	flag.StringVar(&adminEmail, "admin-email", "admin@dokan.example", "admin account email")
	flag.StringVar(&adminPhone, "admin-phone", "01700000000", "admin account phone")
	flag.StringVar(&adminPassword, "admin-password", "", "admin account password (or DOKAN_SEED_ADMIN_PASSWORD env)")
	flag.Parse()

	if databaseURL == "" {
		databaseURL = os.Getenv("DATABASE_URL")
	}
	if databaseURL == "" {
		slog.Error("database URL is required: set --database-url or DATABASE_URL")
		os.Exit(1)
	}
	if adminPassword == "" {
		adminPassword = os.Getenv("DOKAN_SEED_ADMIN_PASSWORD")
	}
	if adminPassword == "" {
		slog.Error("admin password is required: set --admin-password or DOKAN_SEED_ADMIN_PASSWORD")
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx, databaseURL, productsFile, adminEmail, adminPhone, adminPassword); err != nil {
		slog.Error("seed failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("seed completed successfully")
}

func run(ctx context.Context, databaseURL, productsFile, adminEmail, adminPhone, adminPassword string) error {
	slog.Info("connecting to database")

	pool, err := repository.NewPool(ctx, databaseURL)
	if err != nil {
		return errors.Wrap(err, "connect to database")
	}
	defer pool.Close()

	slog.Info("running migrations")

	if err := repository.RunMigrations(ctx, pool); err != nil {
		return errors.Wrap(err, "run migrations")
	}

	if err := seedProducts(ctx, repository.NewProductRepository(pool), productsFile); err != nil {
		return errors.Wrap(err, "seed products")
	}

	if err := seedAdmin(ctx, repository.NewUserRepository(pool), adminEmail, adminPhone, adminPassword); err != nil {
		return errors.Wrap(err, "seed admin")
	}

	return nil
}

func seedProducts(ctx context.Context, repo *repository.ProductRepository, productsFile string) error {
	slog.Info("reading products file", slog.String("path", productsFile))

	data, err := os.ReadFile(productsFile)
	if err != nil {
		return errors.Wrap(err, "read products file")
	}

	var products []catalog.Product
	if err := json.Unmarshal(data, &products); err != nil {
		return errors.Wrap(err, "parse products JSON")
	}

	slog.Info("inserting products", slog.Int("count", len(products)))

	for i := range products {
		p := &products[i]
		if p.ID == "" {
			p.ID = uuid.New().String()
		}

		err := repo.Create(ctx, p)
		if err != nil {
			// Re-running the seed against an existing catalog replaces rows.
			if updateErr := repo.Update(ctx, p); updateErr != nil {
				return errors.Wrapf(err, "upsert product %s", p.ID)
			}
		}

		slog.Info("seeded product", slog.String("id", p.ID), slog.String("name", p.Name))
	}

	return nil
}

func seedAdmin(ctx context.Context, repo *repository.UserRepository, email, phone, password string) error {
	slog.Info("seeding admin account", slog.String("email", email))

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return errors.Wrap(err, "hash admin password")
	}

	admin := &user.User{
		ID:        uuid.New().String(),
		Name:      "Store Admin",
		Email:     email,
		Phone:     phone,
		Addresses: []user.Address{},
		IsAdmin:   true,
	}

	err = repo.Create(ctx, admin, string(hash))
	switch {
	case err == nil:
		slog.Info("admin account created", slog.String("id", admin.ID))
	case errors.Is(err, user.ErrEmailTaken), errors.Is(err, user.ErrPhoneTaken):
		slog.Info("admin account already exists, skipping")
	default:
		return errors.Wrap(err, "create admin")
	}

	return nil
}
