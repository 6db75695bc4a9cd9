package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jengzang/taste-records-go/internal/models"
)

// NotificationRepository handles database operations for notifications
type NotificationRepository struct {
	db DBTX
}

// NewNotificationRepository creates a new notification repository
func NewNotificationRepository(db DBTX) *NotificationRepository {
	return &NotificationRepository{db: db}
}

// WithTx returns a repository bound to tx
func (r *NotificationRepository) WithTx(tx *sql.Tx) *NotificationRepository {
	return &NotificationRepository{db: tx}
}

// Create inserts a notification and returns its ID
func (r *NotificationRepository) Create(ctx context.Context, n *models.Notification) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO notifications (user_id, type, message, ref_id) VALUES (?, ?, ?, ?)`,
		n.UserID, n.Type, n.Message, n.RefID)
	if err != nil {
		return 0, fmt.Errorf("failed to insert notification: %w", err)
	}
	return res.LastInsertId()
}

// List returns a user's notifications, newest first
func (r *NotificationRepository) List(ctx context.Context, userID int64, unreadOnly bool, limit int) ([]models.Notification, error) {
	query := `SELECT id, user_id, type, message, ref_id, is_read, created_at FROM notifications WHERE user_id = ?`
	if unreadOnly {
		query += ` AND is_read = 0`
	}
	query += ` ORDER BY id DESC LIMIT ?`

	rows, err := r.db.QueryContext(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query notifications: %w", err)
	}
	defer rows.Close()

	notifications := []models.Notification{}
	for rows.Next() {
		var n models.Notification
		var refID sql.NullInt64
		if err := rows.Scan(&n.ID, &n.UserID, &n.Type, &n.Message, &refID, &n.IsRead, &n.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan notification: %w", err)
		}
		if refID.Valid {
			n.RefID = &refID.Int64
		}
		notifications = append(notifications, n)
	}
	return notifications, rows.Err()
}

// CountUnread returns the number of unread notifications of a user
func (r *NotificationRepository) CountUnread(ctx context.Context, userID int64) (int64, error) {
	var n int64
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM notifications WHERE user_id = ? AND is_read = 0`, userID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count unread notifications: %w", err)
	}
	return n, nil
}

// MarkRead marks one notification of a user as read and reports whether it existed
func (r *NotificationRepository) MarkRead(ctx context.Context, id, userID int64) (bool, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE notifications SET is_read = 1 WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return false, fmt.Errorf("failed to mark notification read: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// MarkAllRead marks every notification of a user as read
func (r *NotificationRepository) MarkAllRead(ctx context.Context, userID int64) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE notifications SET is_read = 1 WHERE user_id = ? AND is_read = 0`, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to mark notifications read: %w", err)
	}
	return res.RowsAffected()
}
