package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/dokanhq/dokan-api/internal/domain/catalog"
)

// Products are read together with their review aggregate so avgRating and
// reviewCount never need a second query. The static rating is the fallback
// when no reviews exist.
const (
	productColumns = `p.id, p.name, p.description, p.price, p.discount_price,
		p.images, p.category, p.stock, p.rating, p.is_featured, p.variants,
		COALESCE(r.avg_rating, p.rating), COALESCE(r.review_count, 0)`

	productReviewJoin = `LEFT JOIN (
			SELECT product_id, AVG(rating)::double precision AS avg_rating, COUNT(*) AS review_count
			FROM reviews GROUP BY product_id
		) r ON r.product_id = p.id`

	listProductsSQL = `SELECT ` + productColumns + ` FROM products p ` + productReviewJoin + ` ORDER BY p.id`

	getProductByIDSQL = `SELECT ` + productColumns + ` FROM products p ` + productReviewJoin + ` WHERE p.id = $1`

	insertProductSQL = `INSERT INTO products
		(id, name, description, price, discount_price, images, category, stock, rating, is_featured, variants)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

	updateProductSQL = `UPDATE products SET
		name = $2, description = $3, price = $4, discount_price = $5, images = $6,
		category = $7, stock = $8, rating = $9, is_featured = $10, variants = $11
		WHERE id = $1`

	deleteProductSQL = `DELETE FROM products WHERE id = $1`

	listCategoriesSQL = `SELECT DISTINCT category FROM products WHERE category <> '' ORDER BY category`
)

var _ catalog.Repository = (*ProductRepository)(nil)

// ProductRepository implements catalog.Repository backed by PostgreSQL.
// Variants and image lists are stored as JSONB; products are validated before
// every write instead of being backfilled on read.
type ProductRepository struct {
	pool *pgxpool.Pool
}

// NewProductRepository returns a ProductRepository that uses the given pool.
func NewProductRepository(pool *pgxpool.Pool) *ProductRepository {
	return &ProductRepository{pool: pool}
}

// List returns all products with review aggregates, ordered by ID.
func (r *ProductRepository) List(ctx context.Context) ([]catalog.Product, error) {
	rows, err := r.pool.Query(ctx, listProductsSQL)
	if err != nil {
		return nil, fmt.Errorf("listing products: %w", err)
	}

	products, err := pgx.CollectRows(rows, scanProduct)
	if err != nil {
		return nil, fmt.Errorf("listing products: %w", err)
	}
	return products, nil
}

// GetByID returns a single product, or catalog.ErrNotFound.
func (r *ProductRepository) GetByID(ctx context.Context, id string) (*catalog.Product, error) {
	rows, err := r.pool.Query(ctx, getProductByIDSQL, id)
	if err != nil {
		return nil, fmt.Errorf("getting product %q: %w", id, err)
	}

	p, err := pgx.CollectExactlyOneRow(rows, scanProduct)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, catalog.ErrNotFound
		}
		return nil, fmt.Errorf("getting product %q: %w", id, err)
	}
	return &p, nil
}

// Create validates and inserts a new product.
func (r *ProductRepository) Create(ctx context.Context, p *catalog.Product) error {
	if err := p.Validate(); err != nil {
		return err
	}

	images, variants, err := encodeProductJSON(p)
	if err != nil {
		return err
	}

	_, err = r.pool.Exec(ctx, insertProductSQL,
		p.ID, p.Name, p.Description, p.Price, discountPtr(p), images,
		p.Category, p.Stock, p.Rating, p.IsFeatured, variants,
	)
	if err != nil {
		return fmt.Errorf("creating product %q: %w", p.ID, err)
	}
	return nil
}

// Update validates and replaces an existing product. Returns
// catalog.ErrNotFound when no row matched.
func (r *ProductRepository) Update(ctx context.Context, p *catalog.Product) error {
	if err := p.Validate(); err != nil {
		return err
	}

	images, variants, err := encodeProductJSON(p)
	if err != nil {
		return err
	}

	tag, err := r.pool.Exec(ctx, updateProductSQL,
		p.ID, p.Name, p.Description, p.Price, discountPtr(p), images,
		p.Category, p.Stock, p.Rating, p.IsFeatured, variants,
	)
	if err != nil {
		return fmt.Errorf("updating product %q: %w", p.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return catalog.ErrNotFound
	}
	return nil
}

// Delete removes a product from the catalog.
func (r *ProductRepository) Delete(ctx context.Context, id string) error {
	_, err := r.pool.Exec(ctx, deleteProductSQL, id)
	if err != nil {
		return fmt.Errorf("deleting product %q: %w", id, err)
	}
	return nil
}

// Categories returns the distinct product categories, sorted.
func (r *ProductRepository) Categories(ctx context.Context) ([]string, error) {
	rows, err := r.pool.Query(ctx, listCategoriesSQL)
	if err != nil {
		return nil, fmt.Errorf("listing categories: %w", err)
	}

	categories, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("listing categories: %w", err)
	}
	return categories, nil
}

func scanProduct(row pgx.CollectableRow) (catalog.Product, error) {
	var (
		p             catalog.Product
		discountPrice *decimal.Decimal
		imagesJSON    []byte
		variantsJSON  []byte
	)
	err := row.Scan(
		&p.ID, &p.Name, &p.Description, &p.Price, &discountPrice,
		&imagesJSON, &p.Category, &p.Stock, &p.Rating, &p.IsFeatured,
		&variantsJSON, &p.AvgRating, &p.ReviewCount,
	)
	if err != nil {
		return catalog.Product{}, err
	}

	p.DiscountPrice = discountPrice
	if err := json.Unmarshal(imagesJSON, &p.Images); err != nil {
		return catalog.Product{}, fmt.Errorf("decoding product images: %w", err)
	}
	if err := json.Unmarshal(variantsJSON, &p.Variants); err != nil {
		return catalog.Product{}, fmt.Errorf("decoding product variants: %w", err)
	}
	return p, nil
}

func encodeProductJSON(p *catalog.Product) (images, variants []byte, err error) {
	if p.Images == nil {
		p.Images = []string{}
	}
	if p.Variants == nil {
		p.Variants = []catalog.Variant{}
	}

	images, err = json.Marshal(p.Images)
	if err != nil {
		return nil, nil, fmt.Errorf("encoding product images: %w", err)
	}
	variants, err = json.Marshal(p.Variants)
	if err != nil {
		return nil, nil, fmt.Errorf("encoding product variants: %w", err)
	}
	return images, variants, nil
}

func discountPtr(p *catalog.Product) any {
	if p.DiscountPrice == nil {
		return nil
	}
	return *p.DiscountPrice
}
