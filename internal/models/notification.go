package models

import "time"

type NotificationType string

const (
	NotificationInfo              NotificationType = "info"
	NotificationSuccess           NotificationType = "success"
	NotificationWarning           NotificationType = "warning"
	NotificationError             NotificationType = "error"
	NotificationOrderStatusChange NotificationType = "order_status_change"
	NotificationDeliveryCompleted NotificationType = "delivery_completed"
)

type Notification struct {
	ID        string           `json:"id"`
	Type      NotificationType `json:"type"`
	Title     string           `json:"title"`
	Message   string           `json:"message"`
	OrderID   *string          `json:"orderId,omitempty"`
	Read      bool             `json:"read"`
	CreatedAt time.Time        `json:"createdAt"`
}
