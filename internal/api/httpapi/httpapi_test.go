package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/antonkhm/warelog/internal/models"
	"github.com/antonkhm/warelog/internal/services/orders"
	"github.com/antonkhm/warelog/internal/services/tracking"
	"github.com/golang-jwt/jwt/v5"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"
)

const (
	testSecret  = "test-secret"
	testAnonKey = "anon-key"
)

type fakeStore struct {
	orders map[string]models.Order
	rows   map[string]models.TrackingRow
}

func newFakeStore() *fakeStore {
	return &fakeStore{orders: map[string]models.Order{}, rows: map[string]models.TrackingRow{}}
}

func (f *fakeStore) CreateOrder(ctx context.Context, order *models.Order, items []models.OrderItem, historyID string) error {
	f.orders[order.ID] = *order
	return nil
}

func (f *fakeStore) GetOrder(ctx context.Context, id string) (models.Order, bool, error) {
	o, ok := f.orders[id]
	return o, ok, nil
}

func (f *fakeStore) ListOrdersByCustomer(ctx context.Context, customerID string) ([]models.Order, error) {
	out := []models.Order{}
	for _, o := range f.orders {
		if o.CustomerID == customerID {
			out = append(out, o)
		}
	}
	return out, nil
}

func (f *fakeStore) UpdateOrderStatus(ctx context.Context, orderID string, status models.OrderStatus, historyID, changedBy string, notes *string) error {
	o := f.orders[orderID]
	o.Status = status
	f.orders[orderID] = o
	return nil
}

func (f *fakeStore) ListOrderItems(ctx context.Context, orderID string) ([]models.OrderItem, error) {
	return nil, nil
}

func (f *fakeStore) AddOrderItem(ctx context.Context, item models.OrderItem) error {
	return nil
}

func (f *fakeStore) UpdateOrderItemQuantity(ctx context.Context, itemID string, quantity float64) (models.OrderItem, error) {
	return models.OrderItem{}, nil
}

func (f *fakeStore) RemoveOrderItem(ctx context.Context, itemID string) (models.OrderItem, error) {
	return models.OrderItem{}, nil
}

func (f *fakeStore) ListOrderStatusHistory(ctx context.Context, orderID string) ([]models.OrderStatusHistory, error) {
	return nil, nil
}

func (f *fakeStore) ListOrderInventorySummary(ctx context.Context, orderID string) ([]models.OrderInventorySummary, error) {
	return nil, nil
}

func (f *fakeStore) GetProduct(ctx context.Context, id string) (models.Product, bool, error) {
	return models.Product{ID: id, Price: 100}, true, nil
}

func (f *fakeStore) AdjustInventory(ctx context.Context, productID, warehouseID string, delta float64) (models.InventoryLevel, error) {
	return models.InventoryLevel{}, nil
}

func (f *fakeStore) GetTrackingRow(ctx context.Context, orderID string) (models.TrackingRow, bool, error) {
	r, ok := f.rows[orderID]
	return r, ok, nil
}

func newTestServer(store *fakeStore) *Server {
	ordersSvc := orders.New(store, nil, "", nil, nil)
	tracker := tracking.New(store, nil).WithSettings(time.Hour, time.Second)
	return New(ordersSvc, nil, nil, nil, tracker, store, NewAuth(testSecret, testAnonKey))
}

func signedToken(t *testing.T, sub string) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": sub,
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	s, err := tok.SignedString([]byte(testSecret))
	require.NoError(t, err)
	return s
}

func TestAuth_required(t *testing.T) {
	srv := httptest.NewServer(newTestServer(newFakeStore()).Router())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/api/orders")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	req, _ := http.NewRequest(http.MethodGet, srv.URL+"/api/orders", nil)
	req.Header.Set("Authorization", "Bearer not-a-jwt")
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestOrders_listWithToken(t *testing.T) {
	store := newFakeStore()
	store.orders["order-1"] = models.Order{ID: "order-1", CustomerID: "cust-1", Status: models.OrderStatusPending}

	srv := httptest.NewServer(newTestServer(store).Router())
	defer srv.Close()

	req, _ := http.NewRequest(http.MethodGet, srv.URL+"/api/orders", nil)
	req.Header.Set("Authorization", "Bearer "+signedToken(t, "cust-1"))
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out []models.Order
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	require.Len(t, out, 1)
	require.Equal(t, "order-1", out[0].ID)
}

func TestOrders_create(t *testing.T) {
	store := newFakeStore()
	srv := httptest.NewServer(newTestServer(store).Router())
	defer srv.Close()

	body := `{"shippingAddress":"вул. Хрещатик, 1","items":[{"productId":"prod-1","warehouseId":"wh-1","quantity":2}]}`
	req, _ := http.NewRequest(http.MethodPost, srv.URL+"/api/orders", strings.NewReader(body))
	req.Header.Set("Authorization", "Bearer "+signedToken(t, "cust-1"))
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var out struct {
		Order models.Order `json:"order"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	require.Equal(t, "cust-1", out.Order.CustomerID)
	require.Equal(t, models.OrderStatusPending, out.Order.Status)
	require.InDelta(t, 200, out.Order.TotalAmount, 1e-9)
}

func TestTracking_anonAllowed(t *testing.T) {
	store := newFakeStore()
	store.orders["abc123"] = models.Order{ID: "abc123", Status: models.OrderStatusShipped}
	lat, lon, progress := 50.45, 30.52, 0.42
	store.rows["abc123"] = models.TrackingRow{
		OrderID: "abc123", RouteID: "route-1", DeliveryStatus: models.RouteStatusInProgress,
		VehiclePlate: "AA1234BB", CurrentLatitude: &lat, CurrentLongitude: &lon, RouteProgress: &progress,
	}

	srv := httptest.NewServer(newTestServer(store).Router())
	defer srv.Close()

	req, _ := http.NewRequest(http.MethodGet, srv.URL+"/api/tracking/abc123", nil)
	req.Header.Set("Authorization", "Bearer "+testAnonKey)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var vm tracking.ViewModel
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&vm))
	require.Equal(t, "Відправлено", vm.StatusLabel)
	require.True(t, vm.HasActiveDelivery)
	require.Equal(t, 42, vm.Delivery.Percentage)
}

func TestTracking_noDeliveryYet(t *testing.T) {
	store := newFakeStore()
	store.orders["xyz789"] = models.Order{ID: "xyz789", Status: models.OrderStatusPending}

	srv := httptest.NewServer(newTestServer(store).Router())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/api/tracking/xyz789")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var vm tracking.ViewModel
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&vm))
	require.False(t, vm.HasActiveDelivery)
	require.Equal(t, "Очікує підтвердження", vm.StatusLabel)
}

func TestTracking_orderNotFound(t *testing.T) {
	srv := httptest.NewServer(newTestServer(newFakeStore()).Router())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/api/tracking/missing")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusNotFound, resp.StatusCode)

	var out map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	require.NotEmpty(t, out["error"])
}

func TestTrackingWS_streamsSnapshots(t *testing.T) {
	store := newFakeStore()
	store.orders["order-1"] = models.Order{ID: "order-1", Status: models.OrderStatusProcessing}

	srv := httptest.NewServer(newTestServer(store).Router())
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/tracking/order-1?token=" + testAnonKey
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer resp.Body.Close()
	defer conn.Close()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var vm tracking.ViewModel
	require.NoError(t, conn.ReadJSON(&vm))
	require.Equal(t, "order-1", vm.OrderID)
	require.Equal(t, "В обробці", vm.StatusLabel)
}

func TestTrackingWS_rejectsMissingOrBadToken(t *testing.T) {
	store := newFakeStore()
	store.orders["order-1"] = models.Order{ID: "order-1", Status: models.OrderStatusProcessing}

	srv := httptest.NewServer(newTestServer(store).Router())
	defer srv.Close()

	base := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/tracking/order-1"

	_, resp, err := websocket.DefaultDialer.Dial(base, nil)
	require.Error(t, err)
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	resp.Body.Close()

	_, resp, err = websocket.DefaultDialer.Dial(base+"?token=not-a-jwt", nil)
	require.Error(t, err)
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	resp.Body.Close()

	conn, resp, err := websocket.DefaultDialer.Dial(base+"?token="+signedToken(t, "cust-1"), nil)
	require.NoError(t, err)
	resp.Body.Close()
	conn.Close()
}
