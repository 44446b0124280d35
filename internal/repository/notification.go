package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dokanhq/dokan-api/internal/domain/notification"
)

const (
	notificationColumns = `id, user_id, message, link, is_read, created_at`

	listNotificationsByUserSQL = `SELECT ` + notificationColumns + ` FROM user_notifications
		WHERE user_id = $1 ORDER BY created_at DESC`

	unreadNotificationCountSQL = `SELECT COUNT(*) FROM user_notifications
		WHERE user_id = $1 AND NOT is_read`

	insertNotificationSQL = `INSERT INTO user_notifications (` + notificationColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6)`

	markNotificationReadSQL = `UPDATE user_notifications SET is_read = TRUE WHERE id = $1`

	markAllNotificationsReadSQL = `UPDATE user_notifications SET is_read = TRUE
		WHERE user_id = $1 AND NOT is_read`
)

var _ notification.Repository = (*NotificationRepository)(nil)

// NotificationRepository implements notification.Repository backed by
// PostgreSQL.
type NotificationRepository struct {
	pool *pgxpool.Pool
}

// NewNotificationRepository returns a NotificationRepository that uses the
// given pool.
func NewNotificationRepository(pool *pgxpool.Pool) *NotificationRepository {
	return &NotificationRepository{pool: pool}
}

// ListByUser returns a user's notifications, newest first.
func (r *NotificationRepository) ListByUser(ctx context.Context, userID string) ([]notification.Notification, error) {
	rows, err := r.pool.Query(ctx, listNotificationsByUserSQL, userID)
	if err != nil {
		return nil, fmt.Errorf("listing notifications for user %q: %w", userID, err)
	}

	notifications, err := pgx.CollectRows(rows, scanNotification)
	if err != nil {
		return nil, fmt.Errorf("listing notifications for user %q: %w", userID, err)
	}
	return notifications, nil
}

// UnreadCount returns how many of a user's notifications are unread.
func (r *NotificationRepository) UnreadCount(ctx context.Context, userID string) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, unreadNotificationCountSQL, userID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("counting unread notifications for user %q: %w", userID, err)
	}
	return count, nil
}

// Add inserts a new notification.
func (r *NotificationRepository) Add(ctx context.Context, n *notification.Notification) error {
	_, err := r.pool.Exec(ctx, insertNotificationSQL,
		n.ID, n.UserID, n.Message, n.Link, n.IsRead, n.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("creating notification %q: %w", n.ID, err)
	}
	return nil
}

// MarkRead marks a single notification as read.
func (r *NotificationRepository) MarkRead(ctx context.Context, id string) error {
	_, err := r.pool.Exec(ctx, markNotificationReadSQL, id)
	if err != nil {
		return fmt.Errorf("marking notification %q read: %w", id, err)
	}
	return nil
}

// MarkAllRead marks every unread notification of a user as read.
func (r *NotificationRepository) MarkAllRead(ctx context.Context, userID string) error {
	_, err := r.pool.Exec(ctx, markAllNotificationsReadSQL, userID)
	if err != nil {
		return fmt.Errorf("marking notifications read for user %q: %w", userID, err)
	}
	return nil
}

func scanNotification(row pgx.CollectableRow) (notification.Notification, error) {
	var n notification.Notification
	err := row.Scan(&n.ID, &n.UserID, &n.Message, &n.Link, &n.IsRead, &n.CreatedAt)
	return n, err
}
