package models

import "time"

// TrackingRow — строка представления customer_order_tracking: заказ,
// маршрут и последняя позиция транспорта одной строкой.
type TrackingRow struct {
	OrderID     string
	OrderStatus OrderStatus
	OrderDate   time.Time

	RouteID           string
	DeliveryStatus    RouteStatus
	DeliveryStart     *time.Time
	EstimatedDelivery *time.Time

	VehiclePlate string
	VehicleInfo  string

	CurrentLatitude    *float64
	CurrentLongitude   *float64
	RouteProgress      *float64
	CurrentSpeed       *float64
	LastLocationUpdate *time.Time

	PlannedArrival *time.Time
	ActualArrival  *time.Time
	StopStatus     StopStatus
}

// TrackingSnapshot — текущее объединённое состояние доставки одного заказа.
// Delivery == nil означает "доставка ещё не началась" — это не ошибка.
type TrackingSnapshot struct {
	Order    Order
	Delivery *TrackingRow
	Err      error
	Seq      uint64
	FetchedAt time.Time
}

// HasActiveDelivery — маршрут назначен и есть текущие координаты транспорта.
func (s TrackingSnapshot) HasActiveDelivery() bool {
	return s.Delivery != nil &&
		s.Delivery.RouteID != "" &&
		s.Delivery.CurrentLatitude != nil &&
		s.Delivery.CurrentLongitude != nil
}
