package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dokanhq/dokan-api/internal/domain/review"
)

const (
	reviewColumns = `id, product_id, product_name, user_id, user_name, rating, comment, created_at`

	listReviewsSQL = `SELECT ` + reviewColumns + ` FROM reviews ORDER BY created_at DESC`

	listReviewsByProductSQL = `SELECT ` + reviewColumns + ` FROM reviews
		WHERE product_id = $1 ORDER BY created_at DESC`

	insertReviewSQL = `INSERT INTO reviews (` + reviewColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	deleteReviewSQL = `DELETE FROM reviews WHERE id = $1`
)

var _ review.Repository = (*ReviewRepository)(nil)

// ReviewRepository implements review.Repository backed by PostgreSQL.
type ReviewRepository struct {
	pool *pgxpool.Pool
}

// NewReviewRepository returns a ReviewRepository that uses the given pool.
func NewReviewRepository(pool *pgxpool.Pool) *ReviewRepository {
	return &ReviewRepository{pool: pool}
}

// ListAll returns every review, newest first.
func (r *ReviewRepository) ListAll(ctx context.Context) ([]review.Review, error) {
	rows, err := r.pool.Query(ctx, listReviewsSQL)
	if err != nil {
		return nil, fmt.Errorf("listing reviews: %w", err)
	}

	reviews, err := pgx.CollectRows(rows, scanReview)
	if err != nil {
		return nil, fmt.Errorf("listing reviews: %w", err)
	}
	return reviews, nil
}

// ListByProduct returns a product's reviews, newest first.
func (r *ReviewRepository) ListByProduct(ctx context.Context, productID string) ([]review.Review, error) {
	rows, err := r.pool.Query(ctx, listReviewsByProductSQL, productID)
	if err != nil {
		return nil, fmt.Errorf("listing reviews for product %q: %w", productID, err)
	}

	reviews, err := pgx.CollectRows(rows, scanReview)
	if err != nil {
		return nil, fmt.Errorf("listing reviews for product %q: %w", productID, err)
	}
	return reviews, nil
}

// Add inserts a new review.
func (r *ReviewRepository) Add(ctx context.Context, rev *review.Review) error {
	_, err := r.pool.Exec(ctx, insertReviewSQL,
		rev.ID, rev.ProductID, rev.ProductName, rev.UserID, rev.UserName,
		rev.Rating, rev.Comment, rev.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("creating review %q: %w", rev.ID, err)
	}
	return nil
}

// Delete removes a review.
func (r *ReviewRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, deleteReviewSQL, id)
	if err != nil {
		return fmt.Errorf("deleting review %q: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return review.ErrNotFound
	}
	return nil
}

func scanReview(row pgx.CollectableRow) (review.Review, error) {
	var rev review.Review
	err := row.Scan(
		&rev.ID, &rev.ProductID, &rev.ProductName, &rev.UserID, &rev.UserName,
		&rev.Rating, &rev.Comment, &rev.CreatedAt,
	)
	return rev, err
}
