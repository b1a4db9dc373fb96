package orders

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/antonkhm/warelog/internal/broker/messages"
	"github.com/antonkhm/warelog/internal/integrations/functions"
	"github.com/antonkhm/warelog/internal/models"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
)

type fakeRepo struct {
	products  map[string]models.Product
	stock     map[string]float64 // productID|warehouseID -> quantity
	orders    map[string]models.Order
	items     map[string][]models.OrderItem // orderID -> items
	histories int
	updates   []models.OrderStatus
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		products: map[string]models.Product{},
		stock:    map[string]float64{},
		orders:   map[string]models.Order{},
		items:    map[string][]models.OrderItem{},
	}
}

func (r *fakeRepo) CreateOrder(ctx context.Context, order *models.Order, items []models.OrderItem, historyID string) error {
	r.orders[order.ID] = *order
	for _, it := range items {
		it.OrderID = order.ID
		r.items[order.ID] = append(r.items[order.ID], it)
	}
	r.histories++
	return nil
}

func (r *fakeRepo) GetOrder(ctx context.Context, id string) (models.Order, bool, error) {
	o, ok := r.orders[id]
	return o, ok, nil
}

func (r *fakeRepo) ListOrdersByCustomer(ctx context.Context, customerID string) ([]models.Order, error) {
	return nil, nil
}

func (r *fakeRepo) UpdateOrderStatus(ctx context.Context, orderID string, status models.OrderStatus, historyID, changedBy string, notes *string) error {
	o := r.orders[orderID]
	o.Status = status
	r.orders[orderID] = o
	r.updates = append(r.updates, status)
	r.histories++
	return nil
}

func (r *fakeRepo) ListOrderItems(ctx context.Context, orderID string) ([]models.OrderItem, error) {
	return r.items[orderID], nil
}

func (r *fakeRepo) AddOrderItem(ctx context.Context, item models.OrderItem) error {
	r.items[item.OrderID] = append(r.items[item.OrderID], item)
	r.recomputeTotal(item.OrderID)
	return nil
}

func (r *fakeRepo) UpdateOrderItemQuantity(ctx context.Context, itemID string, quantity float64) (models.OrderItem, error) {
	for orderID, items := range r.items {
		for i, it := range items {
			if it.ID == itemID {
				it.Quantity = quantity
				it.TotalPrice = it.UnitPrice * quantity
				r.items[orderID][i] = it
				r.recomputeTotal(orderID)
				return it, nil
			}
		}
	}
	return models.OrderItem{}, errors.Errorf("order item %s not found", itemID)
}

func (r *fakeRepo) RemoveOrderItem(ctx context.Context, itemID string) (models.OrderItem, error) {
	for orderID, items := range r.items {
		for i, it := range items {
			if it.ID == itemID {
				r.items[orderID] = append(items[:i:i], items[i+1:]...)
				r.recomputeTotal(orderID)
				return it, nil
			}
		}
	}
	return models.OrderItem{}, errors.Errorf("order item %s not found", itemID)
}

func (r *fakeRepo) recomputeTotal(orderID string) {
	var total float64
	for _, it := range r.items[orderID] {
		total += it.TotalPrice
	}
	o := r.orders[orderID]
	o.TotalAmount = total
	r.orders[orderID] = o
}

func (r *fakeRepo) ListOrderStatusHistory(ctx context.Context, orderID string) ([]models.OrderStatusHistory, error) {
	return nil, nil
}

func (r *fakeRepo) ListOrderInventorySummary(ctx context.Context, orderID string) ([]models.OrderInventorySummary, error) {
	return nil, nil
}

func (r *fakeRepo) GetProduct(ctx context.Context, id string) (models.Product, bool, error) {
	p, ok := r.products[id]
	return p, ok, nil
}

func (r *fakeRepo) AdjustInventory(ctx context.Context, productID, warehouseID string, delta float64) (models.InventoryLevel, error) {
	key := productID + "|" + warehouseID
	if r.stock[key]+delta < 0 {
		return models.InventoryLevel{}, errors.New("not enough stock")
	}
	r.stock[key] += delta
	return models.InventoryLevel{ProductID: productID, WarehouseID: warehouseID, Quantity: r.stock[key]}, nil
}

type fakeProducer struct {
	published [][]byte
}

func (p *fakeProducer) Publish(ctx context.Context, topic string, key, value []byte) error {
	p.published = append(p.published, value)
	return nil
}

type fakeNotifier struct {
	pushed []models.NotificationType
}

func (n *fakeNotifier) Push(ctx context.Context, typ models.NotificationType, title, message string, orderID *string) error {
	n.pushed = append(n.pushed, typ)
	return nil
}

type fakeOptimizer struct {
	err   error
	calls int
}

func (o *fakeOptimizer) OptimizeRoute(ctx context.Context, req functions.RouteRequest) (functions.RouteResponse, error) {
	o.calls++
	if o.err != nil {
		return functions.RouteResponse{}, o.err
	}
	return functions.RouteResponse{WarehouseID: "wh-1", Distance: 1000}, nil
}

func createInput() (models.OrderCreateInput, []ItemInput) {
	lat, lon := 50.4, 30.6
	in := models.OrderCreateInput{
		CustomerID:        "cust-1",
		ShippingAddress:   "вул. Хрещатик, 1",
		ShippingCity:      "Київ",
		DeliveryLatitude:  &lat,
		DeliveryLongitude: &lon,
	}
	items := []ItemInput{{ProductID: "prod-1", WarehouseID: "wh-1", Quantity: 2}}
	return in, items
}

func TestService_Create(t *testing.T) {
	repo := newFakeRepo()
	repo.products["prod-1"] = models.Product{ID: "prod-1", Price: 120}
	repo.stock["prod-1|wh-1"] = 10

	prod := &fakeProducer{}
	opt := &fakeOptimizer{}
	svc := New(repo, prod, "warelog.rowchange", &fakeNotifier{}, opt)

	in, items := createInput()
	order, preview, err := svc.Create(context.Background(), in, items)
	require.NoError(t, err)
	require.Equal(t, models.OrderStatusPending, order.Status)
	require.InDelta(t, 240, order.TotalAmount, 1e-9)
	require.Equal(t, float64(8), repo.stock["prod-1|wh-1"])
	require.NotNil(t, preview)
	require.Len(t, prod.published, 1)

	var rc messages.RowChange
	require.NoError(t, json.Unmarshal(prod.published[0], &rc))
	require.Equal(t, "orders", rc.Table)
	require.Equal(t, messages.OpInsert, rc.Op)
}

func TestService_Create_routePreviewFailureDoesNotBlock(t *testing.T) {
	repo := newFakeRepo()
	repo.products["prod-1"] = models.Product{ID: "prod-1", Price: 120}
	repo.stock["prod-1|wh-1"] = 10

	opt := &fakeOptimizer{err: errors.New("mapbox down")}
	svc := New(repo, &fakeProducer{}, "warelog.rowchange", &fakeNotifier{}, opt)

	in, items := createInput()
	order, preview, err := svc.Create(context.Background(), in, items)
	require.NoError(t, err)
	require.NotNil(t, order)
	require.Nil(t, preview)
	require.Equal(t, 1, opt.calls)
}

func TestService_Create_notEnoughStock(t *testing.T) {
	repo := newFakeRepo()
	repo.products["prod-1"] = models.Product{ID: "prod-1", Price: 120}
	repo.stock["prod-1|wh-1"] = 1

	svc := New(repo, nil, "", nil, nil)

	in, items := createInput()
	_, _, err := svc.Create(context.Background(), in, items)
	require.Error(t, err)
	require.Empty(t, repo.orders)
}

func TestService_ItemMutations(t *testing.T) {
	repo := newFakeRepo()
	repo.products["prod-1"] = models.Product{ID: "prod-1", Price: 120}
	repo.products["prod-2"] = models.Product{ID: "prod-2", Price: 50}
	repo.stock["prod-1|wh-1"] = 10
	repo.stock["prod-2|wh-1"] = 10

	svc := New(repo, &fakeProducer{}, "warelog.rowchange", nil, nil)

	in, items := createInput()
	order, _, err := svc.Create(context.Background(), in, items)
	require.NoError(t, err)

	added, err := svc.AddItem(context.Background(), order.ID, ItemInput{ProductID: "prod-2", WarehouseID: "wh-1", Quantity: 3})
	require.NoError(t, err)
	require.InDelta(t, 150, added.TotalPrice, 1e-9)
	require.Equal(t, float64(7), repo.stock["prod-2|wh-1"])
	require.InDelta(t, 390, repo.orders[order.ID].TotalAmount, 1e-9)

	updated, err := svc.UpdateItemQuantity(context.Background(), order.ID, added.ID, 5)
	require.NoError(t, err)
	require.InDelta(t, 250, updated.TotalPrice, 1e-9)
	require.Equal(t, float64(5), repo.stock["prod-2|wh-1"])

	require.NoError(t, svc.RemoveItem(context.Background(), order.ID, added.ID))
	require.Equal(t, float64(10), repo.stock["prod-2|wh-1"])
	require.InDelta(t, 240, repo.orders[order.ID].TotalAmount, 1e-9)
	require.Len(t, repo.items[order.ID], 1)
}

func TestService_ItemMutations_frozenAfterShipment(t *testing.T) {
	repo := newFakeRepo()
	repo.orders["order-1"] = models.Order{ID: "order-1", Status: models.OrderStatusShipped}

	svc := New(repo, nil, "", nil, nil)

	_, err := svc.AddItem(context.Background(), "order-1", ItemInput{ProductID: "prod-1", WarehouseID: "wh-1", Quantity: 1})
	require.Error(t, err)
	require.Contains(t, err.Error(), "frozen")
}

func TestService_UpdateStatus(t *testing.T) {
	repo := newFakeRepo()
	repo.orders["order-1"] = models.Order{ID: "order-1", Status: models.OrderStatusPending}

	prod := &fakeProducer{}
	ntf := &fakeNotifier{}
	svc := New(repo, prod, "warelog.rowchange", ntf, nil)

	err := svc.UpdateStatus(context.Background(), "order-1", models.OrderStatusConfirmed, "manager-1", nil)
	require.NoError(t, err)
	require.Equal(t, []models.OrderStatus{models.OrderStatusConfirmed}, repo.updates)
	require.Equal(t, []models.NotificationType{models.NotificationOrderStatusChange}, ntf.pushed)
	require.Len(t, prod.published, 1)
}

func TestService_UpdateStatus_invalidTransition(t *testing.T) {
	repo := newFakeRepo()
	repo.orders["order-1"] = models.Order{ID: "order-1", Status: models.OrderStatusPending}

	svc := New(repo, nil, "", nil, nil)

	err := svc.UpdateStatus(context.Background(), "order-1", models.OrderStatusShipped, "manager-1", nil)
	require.Error(t, err)
	require.Empty(t, repo.updates)
}

func TestService_UpdateStatus_deliveredNotification(t *testing.T) {
	repo := newFakeRepo()
	repo.orders["order-1"] = models.Order{ID: "order-1", Status: models.OrderStatusShipped}

	ntf := &fakeNotifier{}
	svc := New(repo, nil, "", ntf, nil)

	err := svc.UpdateStatus(context.Background(), "order-1", models.OrderStatusDelivered, "driver-1", nil)
	require.NoError(t, err)
	require.Equal(t, []models.NotificationType{models.NotificationDeliveryCompleted}, ntf.pushed)
}
