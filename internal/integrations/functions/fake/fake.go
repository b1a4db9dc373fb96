package fake

import (
	"context"
	"hash/fnv"

	"github.com/antonkhm/warelog/internal/integrations/functions"
)

// FakeClient — локальная заглушка внешних функций для разработки без
// развёрнутого бэкенда. Детерминированный результат по входным данным.
type FakeClient struct{}

func New() *FakeClient { return &FakeClient{} }

func (f *FakeClient) SimulateGPS(ctx context.Context) (functions.SimResult, error) {
	return functions.SimResult{UpdatedVehicles: 1, Message: "fake gps tick"}, nil
}

func (f *FakeClient) OptimizeRoute(ctx context.Context, req functions.RouteRequest) (functions.RouteResponse, error) {
	h := fnv.New32a()
	_, _ = h.Write([]byte(req.OrderID))
	_, _ = h.Write([]byte("|"))
	_, _ = h.Write([]byte(req.ProductID))
	v := h.Sum32()

	res := functions.RouteResponse{
		WarehouseID:   "fake-warehouse",
		WarehouseName: "Центральний склад",
		Distance:      float64(1000 + v%9000),
		Duration:      float64(600 + v%1800),
	}
	res.Route.Type = "Feature"
	res.Route.Geometry.Type = "LineString"
	res.Route.Geometry.Coordinates = [][]float64{
		{30.52, 50.45},
		{req.DeliveryAddress.Longitude, req.DeliveryAddress.Latitude},
	}
	return res, nil
}
