package models

import (
	"fmt"
	"time"
)

type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusConfirmed  OrderStatus = "confirmed"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusShipped    OrderStatus = "shipped"
	OrderStatusDelivered  OrderStatus = "delivered"
	OrderStatusCancelled  OrderStatus = "cancelled"
)

// orderStatusRank задаёт порядок жизненного цикла заказа.
var orderStatusRank = map[OrderStatus]int{
	OrderStatusPending:    0,
	OrderStatusConfirmed:  1,
	OrderStatusProcessing: 2,
	OrderStatusShipped:    3,
	OrderStatusDelivered:  4,
}

// ValidateOrderTransition разрешает только движение вперёд по жизненному циклу.
// Отмена возможна из любого статуса до delivered; обратных переходов нет.
func ValidateOrderTransition(from, to OrderStatus) error {
	if from == to {
		return fmt.Errorf("order already has status %q", from)
	}
	if from == OrderStatusCancelled || from == OrderStatusDelivered {
		return fmt.Errorf("order status %q is terminal", from)
	}
	if to == OrderStatusCancelled {
		return nil
	}
	fromRank, ok := orderStatusRank[from]
	if !ok {
		return fmt.Errorf("unknown order status %q", from)
	}
	toRank, ok := orderStatusRank[to]
	if !ok {
		return fmt.Errorf("unknown order status %q", to)
	}
	if toRank != fromRank+1 {
		return fmt.Errorf("cannot move order from %q to %q", from, to)
	}
	return nil
}

type Order struct {
	ID                 string      `json:"id"`
	CustomerID         string      `json:"customerId"`
	Status             OrderStatus `json:"status"`
	TotalAmount        float64     `json:"totalAmount"`
	ShippingAddress    string      `json:"shippingAddress"`
	ShippingCity       string      `json:"shippingCity"`
	ShippingState      string      `json:"shippingState"`
	ShippingPostalCode string      `json:"shippingPostalCode"`
	ShippingCountry    string      `json:"shippingCountry"`
	Notes              *string     `json:"notes,omitempty"`
	CreatedAt          time.Time   `json:"createdAt"`
	UpdatedAt          time.Time   `json:"updatedAt"`
}

type OrderItem struct {
	ID          string    `json:"id"`
	OrderID     string    `json:"orderId"`
	ProductID   string    `json:"productId"`
	WarehouseID string    `json:"warehouseId"`
	Quantity    float64   `json:"quantity"`
	UnitPrice   float64   `json:"unitPrice"`
	TotalPrice  float64   `json:"totalPrice"`
	CreatedAt   time.Time `json:"createdAt"`
}

type OrderStatusHistory struct {
	ID        string      `json:"id"`
	OrderID   string      `json:"orderId"`
	Status    OrderStatus `json:"status"`
	Notes     *string     `json:"notes,omitempty"`
	ChangedBy string      `json:"changedBy"`
	CreatedAt time.Time   `json:"createdAt"`
}

type OrderCreateInput struct {
	CustomerID         string
	ShippingAddress    string
	ShippingCity       string
	ShippingState      string
	ShippingPostalCode string
	ShippingCountry    string
	// Координаты точки доставки; без них предварительный маршрут не строится.
	DeliveryLatitude  *float64
	DeliveryLongitude *float64
	Notes             *string
}

// OrderInventorySummary — строка представления order_inventory_summary.
type OrderInventorySummary struct {
	OrderID         string      `json:"orderId"`
	OrderStatus     OrderStatus `json:"orderStatus"`
	OrderDate       time.Time   `json:"orderDate"`
	CustomerID      string      `json:"customerId"`
	CustomerName    string      `json:"customerName"`
	OrderItemID     string      `json:"orderItemId"`
	ProductID       string      `json:"productId"`
	ProductName     string      `json:"productName"`
	ProductSKU      string      `json:"productSku"`
	OrderedQuantity float64     `json:"orderedQuantity"`
	UnitPrice       float64     `json:"unitPrice"`
	TotalPrice      float64     `json:"totalPrice"`
	WarehouseName   string      `json:"warehouseName"`
	CurrentStock    float64     `json:"currentStock"`
	ShippedDate     *time.Time  `json:"shippedDate,omitempty"`
}
