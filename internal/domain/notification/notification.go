// Package notification implements the per-user inbox that checkout and admin
// flows write user-facing messages to.
package notification

import (
	"context"
	"fmt"
	"time"

	"github.com/go-faster/sdk/zctx"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/dokanhq/dokan-api/internal/domain/order"
)

// Notification is one inbox entry for a user.
type Notification struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Message   string    `json:"message"`
	Link      string    `json:"link,omitempty"`
	IsRead    bool      `json:"isRead"`
	CreatedAt time.Time `json:"createdAt"`
}

// Repository defines persistence operations for the inbox.
type Repository interface {
	// ListByUser returns a user's notifications, newest first.
	ListByUser(ctx context.Context, userID string) ([]Notification, error)
	UnreadCount(ctx context.Context, userID string) (int, error)
	Add(ctx context.Context, n *Notification) error
	MarkRead(ctx context.Context, id string) error
	MarkAllRead(ctx context.Context, userID string) error
}

// Inbox writes order events to the user's notification inbox. Delivery is
// fire-and-forget: a failed write is logged and never fails the order.
type Inbox struct {
	repo Repository
}

// NewInbox creates an Inbox backed by the given repository.
func NewInbox(repo Repository) *Inbox {
	return &Inbox{repo: repo}
}

// OrderPlaced enqueues the order confirmation message. Orders placed with a
// payment transaction get the verification wording.
func (i *Inbox) OrderPlaced(ctx context.Context, o *order.Order) {
	short := o.ID
	if len(short) > 6 {
		short = short[len(short)-6:]
	}

	msg := fmt.Sprintf("Your order #%s has been placed successfully.", short)
	if o.TransactionID != "" {
		msg = fmt.Sprintf("Your order #%s has been placed. We will verify your payment shortly.", short)
	}

	n := &Notification{
		ID:        uuid.New().String(),
		UserID:    o.UserID,
		Message:   msg,
		Link:      "/order-confirmation/" + o.ID,
		CreatedAt: o.CreatedAt,
	}
	if err := i.repo.Add(ctx, n); err != nil {
		zctx.From(ctx).Warn("Failed to enqueue order notification",
			zap.String("order_id", o.ID),
			zap.Error(err),
		)
	}
}
