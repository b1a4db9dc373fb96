package notifications

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/antonkhm/warelog/internal/broker/messages"
	"github.com/antonkhm/warelog/internal/models"
	"github.com/google/uuid"
	"github.com/pkg/errors"
)

const defaultListLimit = 50

type Repository interface {
	InsertNotification(ctx context.Context, n *models.Notification) error
	ListNotifications(ctx context.Context, limit int) ([]models.Notification, error)
	MarkNotificationRead(ctx context.Context, id string) error
	MarkAllNotificationsRead(ctx context.Context) error
	DeleteNotification(ctx context.Context, id string) error
	ClearNotifications(ctx context.Context) error
	CountUnreadNotifications(ctx context.Context) (int, error)
}

type Producer interface {
	Publish(ctx context.Context, topic string, key, value []byte) error
}

type Service struct {
	repo     Repository
	producer Producer
	topic    string
}

func New(repo Repository, producer Producer, topic string) *Service {
	return &Service{repo: repo, producer: producer, topic: topic}
}

// Push создаёт уведомление и публикует событие изменения строки, чтобы
// открытые сессии трекинга обновились.
func (s *Service) Push(ctx context.Context, typ models.NotificationType, title, message string, orderID *string) error {
	if title == "" {
		return errors.New("title is required")
	}

	n := &models.Notification{
		ID:      uuid.NewString(),
		Type:    typ,
		Title:   title,
		Message: message,
		OrderID: orderID,
	}
	if err := s.repo.InsertNotification(ctx, n); err != nil {
		return err
	}

	if s.producer != nil {
		rowFields := map[string]any{"id": n.ID}
		if orderID != nil {
			rowFields["order_id"] = *orderID
		}
		row, _ := json.Marshal(rowFields)
		b, err := json.Marshal(messages.RowChange{
			Table: "notifications",
			Op:    messages.OpInsert,
			At:    time.Now().UTC(),
			Row:   row,
		})
		if err == nil {
			if err := s.producer.Publish(ctx, s.topic, []byte(n.ID), b); err != nil {
				slog.Warn("publish row change", "notification_id", n.ID, "error", err.Error())
			}
		}
	}
	return nil
}

func (s *Service) List(ctx context.Context) ([]models.Notification, error) {
	return s.repo.ListNotifications(ctx, defaultListLimit)
}

func (s *Service) UnreadCount(ctx context.Context) (int, error) {
	return s.repo.CountUnreadNotifications(ctx)
}

func (s *Service) MarkRead(ctx context.Context, id string) error {
	if id == "" {
		return errors.New("id is required")
	}
	return s.repo.MarkNotificationRead(ctx, id)
}

func (s *Service) MarkAllRead(ctx context.Context) error {
	return s.repo.MarkAllNotificationsRead(ctx)
}

func (s *Service) Remove(ctx context.Context, id string) error {
	if id == "" {
		return errors.New("id is required")
	}
	return s.repo.DeleteNotification(ctx, id)
}

func (s *Service) Clear(ctx context.Context) error {
	return s.repo.ClearNotifications(ctx)
}
