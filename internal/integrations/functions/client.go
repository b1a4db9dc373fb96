package functions

import "context"

// SimResult — ответ функции симуляции GPS: сколько позиций сдвинуто.
type SimResult struct {
	UpdatedVehicles int    `json:"updated_vehicles"`
	Message         string `json:"message,omitempty"`
}

// Coordinates — точка доставки для подбора маршрута.
type Coordinates struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

type RouteRequest struct {
	OrderID         string      `json:"orderId"`
	DeliveryAddress Coordinates `json:"deliveryAddress"`
	ProductID       string      `json:"productId"`
	Quantity        float64     `json:"quantity"`
	MapboxToken     string      `json:"mapboxToken"`
}

// GeoJSONLineString — геометрия маршрута в формате GeoJSON Feature.
type GeoJSONLineString struct {
	Type     string `json:"type"`
	Geometry struct {
		Type        string      `json:"type"`
		Coordinates [][]float64 `json:"coordinates"`
	} `json:"geometry"`
}

type AlternativeRoute struct {
	WarehouseID string  `json:"warehouseId"`
	Distance    float64 `json:"distance"`
	Duration    float64 `json:"duration"`
}

type RouteResponse struct {
	WarehouseID       string             `json:"warehouseId"`
	WarehouseName     string             `json:"warehouseName"`
	Distance          float64            `json:"distance"`
	Duration          float64            `json:"duration"`
	Route             GeoJSONLineString  `json:"route"`
	AlternativeRoutes []AlternativeRoute `json:"alternativeRoutes"`
}

// Simulator продвигает симулированные позиции транспорта на стороне бэкенда.
type Simulator interface {
	SimulateGPS(ctx context.Context) (SimResult, error)
}

// RouteOptimizer подбирает склад и маршрут доставки для нового заказа.
type RouteOptimizer interface {
	OptimizeRoute(ctx context.Context, req RouteRequest) (RouteResponse, error)
}

// TokenSource отдаёт bearer-токен текущей сессии; пустая строка
// означает "сессии нет, используй анонимный ключ".
type TokenSource func() string
