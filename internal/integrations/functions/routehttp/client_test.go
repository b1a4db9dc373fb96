package routehttp

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/antonkhm/warelog/internal/integrations/functions"
	"github.com/stretchr/testify/require"
)

func TestClient_OptimizeRoute(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/functions/v1/route-optimization", r.URL.Path)

		var req functions.RouteRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Equal(t, "order-1", req.OrderID)
		require.Equal(t, "mb-token", req.MapboxToken)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"warehouseId":"wh-1","warehouseName":"Склад №1",
			"distance":12500,"duration":1800,
			"route":{"type":"Feature","geometry":{"type":"LineString","coordinates":[[30.52,50.45],[30.6,50.4]]}},
			"alternativeRoutes":[{"warehouseId":"wh-2","distance":20000,"duration":2400}]
		}`))
	}))
	defer srv.Close()

	c := New(srv.URL, "anon-key", "mb-token", nil)
	res, err := c.OptimizeRoute(context.Background(), functions.RouteRequest{
		OrderID:         "order-1",
		DeliveryAddress: functions.Coordinates{Latitude: 50.4, Longitude: 30.6},
		ProductID:       "prod-1",
		Quantity:        2,
	})
	require.NoError(t, err)
	require.Equal(t, "wh-1", res.WarehouseID)
	require.Equal(t, "LineString", res.Route.Geometry.Type)
	require.Len(t, res.AlternativeRoutes, 1)
}

func TestClient_OptimizeRoute_httpError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	c := New(srv.URL, "anon-key", "mb-token", nil)
	_, err := c.OptimizeRoute(context.Background(), functions.RouteRequest{OrderID: "order-1"})
	require.Error(t, err)
}
