package pgwarehouse

import (
	"context"
	"time"

	"github.com/antonkhm/warelog/internal/models"
	"github.com/pkg/errors"
)

func (s *Storage) InsertNotification(ctx context.Context, n *models.Notification) error {
	now := time.Now().UTC()
	_, err := s.db.Exec(ctx, `
INSERT INTO notifications (id, type, title, message, order_id, read, created_at)
VALUES ($1,$2,$3,$4,$5,FALSE,$6)
`, n.ID, n.Type, n.Title, n.Message, n.OrderID, now)
	if err != nil {
		return errors.Wrap(err, "insert notification")
	}
	n.CreatedAt = now
	return nil
}

func (s *Storage) ListNotifications(ctx context.Context, limit int) ([]models.Notification, error) {
	rows, err := s.db.Query(ctx, `
SELECT id, type, title, message, order_id, read, created_at
FROM notifications
ORDER BY created_at DESC
LIMIT $1
`, limit)
	if err != nil {
		return nil, errors.Wrap(err, "select notifications")
	}
	defer rows.Close()

	out := []models.Notification{}
	for rows.Next() {
		var n models.Notification
		if err := rows.Scan(&n.ID, &n.Type, &n.Title, &n.Message, &n.OrderID, &n.Read, &n.CreatedAt); err != nil {
			return nil, errors.Wrap(err, "scan notification")
		}
		out = append(out, n)
	}
	if rows.Err() != nil {
		return nil, errors.Wrap(rows.Err(), "rows")
	}
	return out, nil
}

func (s *Storage) MarkNotificationRead(ctx context.Context, id string) error {
	tag, err := s.db.Exec(ctx, `UPDATE notifications SET read = TRUE WHERE id = $1`, id)
	if err != nil {
		return errors.Wrap(err, "mark notification read")
	}
	if tag.RowsAffected() == 0 {
		return errors.Errorf("notification %s not found", id)
	}
	return nil
}

func (s *Storage) MarkAllNotificationsRead(ctx context.Context) error {
	_, err := s.db.Exec(ctx, `UPDATE notifications SET read = TRUE WHERE read = FALSE`)
	return errors.Wrap(err, "mark all read")
}

func (s *Storage) DeleteNotification(ctx context.Context, id string) error {
	tag, err := s.db.Exec(ctx, `DELETE FROM notifications WHERE id = $1`, id)
	if err != nil {
		return errors.Wrap(err, "delete notification")
	}
	if tag.RowsAffected() == 0 {
		return errors.Errorf("notification %s not found", id)
	}
	return nil
}

func (s *Storage) ClearNotifications(ctx context.Context) error {
	_, err := s.db.Exec(ctx, `DELETE FROM notifications`)
	return errors.Wrap(err, "clear notifications")
}

func (s *Storage) CountUnreadNotifications(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRow(ctx, `SELECT count(*) FROM notifications WHERE read = FALSE`).Scan(&n)
	return n, errors.Wrap(err, "count unread")
}
