// Package review models product reviews and the rating aggregates derived
// from them.
package review

import (
	"context"
	"time"

	"github.com/go-faster/errors"
)

// ErrNotFound is returned when a requested review does not exist.
var ErrNotFound = errors.New("review not found")

// Review is one customer review of a product.
type Review struct {
	ID          string    `json:"id"`
	ProductID   string    `json:"productId"`
	ProductName string    `json:"productName"`
	UserID      string    `json:"userId"`
	UserName    string    `json:"userName"`
	Rating      int       `json:"rating"`
	Comment     string    `json:"comment"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Repository defines persistence operations for reviews.
type Repository interface {
	// ListAll returns every review, newest first.
	ListAll(ctx context.Context) ([]Review, error)
	ListByProduct(ctx context.Context, productID string) ([]Review, error)
	Add(ctx context.Context, r *Review) error
	Delete(ctx context.Context, id string) error
}

// Summarize computes the average rating and count over reviews. With no
// reviews it falls back to the product's static rating and a zero count.
func Summarize(reviews []Review, fallback float64) (avg float64, count int) {
	if len(reviews) == 0 {
		return fallback, 0
	}
	total := 0
	for _, r := range reviews {
		total += r.Rating
	}
	return float64(total) / float64(len(reviews)), len(reviews)
}
