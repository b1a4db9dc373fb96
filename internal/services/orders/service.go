package orders

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/antonkhm/warelog/internal/broker/messages"
	"github.com/antonkhm/warelog/internal/integrations/functions"
	"github.com/antonkhm/warelog/internal/models"
	"github.com/google/uuid"
	"github.com/pkg/errors"
)

type Repository interface {
	CreateOrder(ctx context.Context, order *models.Order, items []models.OrderItem, historyID string) error
	GetOrder(ctx context.Context, id string) (models.Order, bool, error)
	ListOrdersByCustomer(ctx context.Context, customerID string) ([]models.Order, error)
	UpdateOrderStatus(ctx context.Context, orderID string, status models.OrderStatus, historyID, changedBy string, notes *string) error
	ListOrderItems(ctx context.Context, orderID string) ([]models.OrderItem, error)
	AddOrderItem(ctx context.Context, item models.OrderItem) error
	UpdateOrderItemQuantity(ctx context.Context, itemID string, quantity float64) (models.OrderItem, error)
	RemoveOrderItem(ctx context.Context, itemID string) (models.OrderItem, error)
	ListOrderStatusHistory(ctx context.Context, orderID string) ([]models.OrderStatusHistory, error)
	ListOrderInventorySummary(ctx context.Context, orderID string) ([]models.OrderInventorySummary, error)
	GetProduct(ctx context.Context, id string) (models.Product, bool, error)
	AdjustInventory(ctx context.Context, productID, warehouseID string, delta float64) (models.InventoryLevel, error)
}

type Producer interface {
	Publish(ctx context.Context, topic string, key, value []byte) error
}

type Notifier interface {
	Push(ctx context.Context, typ models.NotificationType, title, message string, orderID *string) error
}

type ItemInput struct {
	ProductID   string
	WarehouseID string
	Quantity    float64
}

type Service struct {
	repo     Repository
	producer Producer
	topic    string
	notifier Notifier
	routes   functions.RouteOptimizer
}

func New(repo Repository, producer Producer, topic string, notifier Notifier, routes functions.RouteOptimizer) *Service {
	return &Service{repo: repo, producer: producer, topic: topic, notifier: notifier, routes: routes}
}

// Create создаёт заказ: резервирует остатки, пишет заказ с позициями и
// запрашивает предварительный маршрут. Неудача подбора маршрута заказ
// не блокирует.
func (s *Service) Create(ctx context.Context, in models.OrderCreateInput, items []ItemInput) (*models.Order, *functions.RouteResponse, error) {
	if in.CustomerID == "" {
		return nil, nil, errors.New("customerId is required")
	}
	if len(items) == 0 {
		return nil, nil, errors.New("items is empty")
	}

	orderItems := make([]models.OrderItem, 0, len(items))
	var total float64
	for _, it := range items {
		if it.Quantity <= 0 {
			return nil, nil, errors.New("quantity must be positive")
		}
		p, found, err := s.repo.GetProduct(ctx, it.ProductID)
		if err != nil {
			return nil, nil, err
		}
		if !found {
			return nil, nil, errors.Errorf("product %s not found", it.ProductID)
		}

		if _, err := s.repo.AdjustInventory(ctx, it.ProductID, it.WarehouseID, -it.Quantity); err != nil {
			return nil, nil, err
		}

		line := models.OrderItem{
			ID:          uuid.NewString(),
			ProductID:   it.ProductID,
			WarehouseID: it.WarehouseID,
			Quantity:    it.Quantity,
			UnitPrice:   p.Price,
			TotalPrice:  p.Price * it.Quantity,
		}
		total += line.TotalPrice
		orderItems = append(orderItems, line)
	}

	order := &models.Order{
		ID:                 uuid.NewString(),
		CustomerID:         in.CustomerID,
		Status:             models.OrderStatusPending,
		TotalAmount:        total,
		ShippingAddress:    in.ShippingAddress,
		ShippingCity:       in.ShippingCity,
		ShippingState:      in.ShippingState,
		ShippingPostalCode: in.ShippingPostalCode,
		ShippingCountry:    in.ShippingCountry,
		Notes:              in.Notes,
	}
	if err := s.repo.CreateOrder(ctx, order, orderItems, uuid.NewString()); err != nil {
		return nil, nil, err
	}

	s.publishRowChange(ctx, messages.OpInsert, order.ID, order.Status)

	var preview *functions.RouteResponse
	if s.routes != nil && in.DeliveryLatitude != nil && in.DeliveryLongitude != nil {
		res, err := s.routes.OptimizeRoute(ctx, functions.RouteRequest{
			OrderID: order.ID,
			DeliveryAddress: functions.Coordinates{
				Latitude:  *in.DeliveryLatitude,
				Longitude: *in.DeliveryLongitude,
			},
			ProductID: orderItems[0].ProductID,
			Quantity:  orderItems[0].Quantity,
		})
		if err != nil {
			slog.Warn("route preview failed", "order_id", order.ID, "error", err.Error())
		} else {
			preview = &res
		}
	}

	return order, preview, nil
}

func (s *Service) Get(ctx context.Context, id string) (models.Order, bool, error) {
	return s.repo.GetOrder(ctx, id)
}

func (s *Service) ListByCustomer(ctx context.Context, customerID string) ([]models.Order, error) {
	return s.repo.ListOrdersByCustomer(ctx, customerID)
}

// UpdateStatus проверяет допустимость перехода, пишет историю, создаёт
// уведомление и публикует событие изменения строки.
func (s *Service) UpdateStatus(ctx context.Context, orderID string, to models.OrderStatus, changedBy string, notes *string) error {
	order, found, err := s.repo.GetOrder(ctx, orderID)
	if err != nil {
		return err
	}
	if !found {
		return errors.Errorf("order %s not found", orderID)
	}
	if err := models.ValidateOrderTransition(order.Status, to); err != nil {
		return err
	}

	if err := s.repo.UpdateOrderStatus(ctx, orderID, to, uuid.NewString(), changedBy, notes); err != nil {
		return err
	}

	if s.notifier != nil {
		typ := models.NotificationOrderStatusChange
		if to == models.OrderStatusDelivered {
			typ = models.NotificationDeliveryCompleted
		}
		title := "Статус замовлення: " + string(to)
		if err := s.notifier.Push(ctx, typ, title, "", &orderID); err != nil {
			slog.Warn("push notification failed", "order_id", orderID, "error", err.Error())
		}
	}

	s.publishRowChange(ctx, messages.OpUpdate, orderID, to)
	return nil
}

func (s *Service) ListItems(ctx context.Context, orderID string) ([]models.OrderItem, error) {
	return s.repo.ListOrderItems(ctx, orderID)
}

// Позиции можно менять только до отправки заказа.
func itemsMutable(st models.OrderStatus) bool {
	switch st {
	case models.OrderStatusPending, models.OrderStatusConfirmed, models.OrderStatusProcessing:
		return true
	}
	return false
}

func (s *Service) mutableOrder(ctx context.Context, orderID string) (models.Order, error) {
	order, found, err := s.repo.GetOrder(ctx, orderID)
	if err != nil {
		return models.Order{}, err
	}
	if !found {
		return models.Order{}, errors.Errorf("order %s not found", orderID)
	}
	if !itemsMutable(order.Status) {
		return models.Order{}, errors.Errorf("order %s is %s, items are frozen", orderID, order.Status)
	}
	return order, nil
}

// AddItem резервирует остаток и дописывает позицию; сумма заказа
// пересчитывается в хранилище.
func (s *Service) AddItem(ctx context.Context, orderID string, in ItemInput) (models.OrderItem, error) {
	if in.Quantity <= 0 {
		return models.OrderItem{}, errors.New("quantity must be positive")
	}
	order, err := s.mutableOrder(ctx, orderID)
	if err != nil {
		return models.OrderItem{}, err
	}

	p, found, err := s.repo.GetProduct(ctx, in.ProductID)
	if err != nil {
		return models.OrderItem{}, err
	}
	if !found {
		return models.OrderItem{}, errors.Errorf("product %s not found", in.ProductID)
	}

	if _, err := s.repo.AdjustInventory(ctx, in.ProductID, in.WarehouseID, -in.Quantity); err != nil {
		return models.OrderItem{}, err
	}

	item := models.OrderItem{
		ID:          uuid.NewString(),
		OrderID:     orderID,
		ProductID:   in.ProductID,
		WarehouseID: in.WarehouseID,
		Quantity:    in.Quantity,
		UnitPrice:   p.Price,
		TotalPrice:  p.Price * in.Quantity,
	}
	if err := s.repo.AddOrderItem(ctx, item); err != nil {
		return models.OrderItem{}, err
	}

	s.publishRowChange(ctx, messages.OpUpdate, orderID, order.Status)
	return item, nil
}

// UpdateItemQuantity двигает резерв на разницу количеств.
func (s *Service) UpdateItemQuantity(ctx context.Context, orderID, itemID string, quantity float64) (models.OrderItem, error) {
	if quantity <= 0 {
		return models.OrderItem{}, errors.New("quantity must be positive")
	}
	order, err := s.mutableOrder(ctx, orderID)
	if err != nil {
		return models.OrderItem{}, err
	}

	current, err := s.findItem(ctx, orderID, itemID)
	if err != nil {
		return models.OrderItem{}, err
	}

	if delta := quantity - current.Quantity; delta != 0 {
		if _, err := s.repo.AdjustInventory(ctx, current.ProductID, current.WarehouseID, -delta); err != nil {
			return models.OrderItem{}, err
		}
	}

	item, err := s.repo.UpdateOrderItemQuantity(ctx, itemID, quantity)
	if err != nil {
		return models.OrderItem{}, err
	}

	s.publishRowChange(ctx, messages.OpUpdate, orderID, order.Status)
	return item, nil
}

// RemoveItem возвращает резерв на склад.
func (s *Service) RemoveItem(ctx context.Context, orderID, itemID string) error {
	order, err := s.mutableOrder(ctx, orderID)
	if err != nil {
		return err
	}

	if _, err := s.findItem(ctx, orderID, itemID); err != nil {
		return err
	}

	removed, err := s.repo.RemoveOrderItem(ctx, itemID)
	if err != nil {
		return err
	}
	if _, err := s.repo.AdjustInventory(ctx, removed.ProductID, removed.WarehouseID, removed.Quantity); err != nil {
		slog.Warn("return reserved stock failed", "order_id", orderID, "item_id", itemID, "error", err.Error())
	}

	s.publishRowChange(ctx, messages.OpUpdate, orderID, order.Status)
	return nil
}

func (s *Service) findItem(ctx context.Context, orderID, itemID string) (models.OrderItem, error) {
	items, err := s.repo.ListOrderItems(ctx, orderID)
	if err != nil {
		return models.OrderItem{}, err
	}
	for _, it := range items {
		if it.ID == itemID {
			return it, nil
		}
	}
	return models.OrderItem{}, errors.Errorf("order item %s not found in order %s", itemID, orderID)
}

func (s *Service) ListStatusHistory(ctx context.Context, orderID string) ([]models.OrderStatusHistory, error) {
	return s.repo.ListOrderStatusHistory(ctx, orderID)
}

func (s *Service) ListInventorySummary(ctx context.Context, orderID string) ([]models.OrderInventorySummary, error) {
	return s.repo.ListOrderInventorySummary(ctx, orderID)
}

// publishRowChange — лучшее усилие: лента обновлений не обязана быть всегда,
// поллинг всё равно догонит состояние.
func (s *Service) publishRowChange(ctx context.Context, op messages.Op, orderID string, status models.OrderStatus) {
	if s.producer == nil {
		return
	}
	row, _ := json.Marshal(map[string]any{"id": orderID, "status": status})
	b, err := json.Marshal(messages.RowChange{
		Table: "orders",
		Op:    op,
		At:    time.Now().UTC(),
		Row:   row,
	})
	if err != nil {
		return
	}
	if err := s.producer.Publish(ctx, s.topic, []byte(orderID), b); err != nil {
		slog.Warn("publish row change", "order_id", orderID, "error", err.Error())
	}
}
