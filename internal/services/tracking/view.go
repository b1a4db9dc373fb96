package tracking

import (
	"math"
	"time"

	"github.com/antonkhm/warelog/internal/models"
)

// Подписи статусов для клиента. Неизвестное значение отдаём как есть.
var orderStatusLabels = map[models.OrderStatus]string{
	models.OrderStatusPending:    "Очікує підтвердження",
	models.OrderStatusConfirmed:  "Підтверджено",
	models.OrderStatusProcessing: "В обробці",
	models.OrderStatusShipped:    "Відправлено",
	models.OrderStatusDelivered:  "Доставлено",
	models.OrderStatusCancelled:  "Скасовано",
}

var routeStatusLabels = map[models.RouteStatus]string{
	models.RouteStatusPlanned:    "Заплановано",
	models.RouteStatusInProgress: "В дорозі",
	models.RouteStatusCompleted:  "Завершено",
	models.RouteStatusCancelled:  "Скасовано",
}

func OrderStatusLabel(st models.OrderStatus) string {
	if l, ok := orderStatusLabels[st]; ok {
		return l
	}
	return string(st)
}

func RouteStatusLabel(st models.RouteStatus) string {
	if l, ok := routeStatusLabels[st]; ok {
		return l
	}
	return string(st)
}

// ProgressPercentage переводит долю маршрута в проценты с зажимом в [0,100].
func ProgressPercentage(progress float64) int {
	p := int(math.Round(progress * 100))
	if p < 0 {
		return 0
	}
	if p > 100 {
		return 100
	}
	return p
}

type DeliveryView struct {
	RouteID            string     `json:"routeId"`
	StatusLabel        string     `json:"statusLabel"`
	Percentage         int        `json:"percentage"`
	VehiclePlate       string     `json:"vehiclePlate"`
	VehicleInfo        string     `json:"vehicleInfo"`
	CurrentLatitude    *float64   `json:"currentLatitude,omitempty"`
	CurrentLongitude   *float64   `json:"currentLongitude,omitempty"`
	CurrentSpeed       *float64   `json:"currentSpeed,omitempty"`
	LastLocationUpdate *time.Time `json:"lastLocationUpdate,omitempty"`
	EstimatedDelivery  *time.Time `json:"estimatedDelivery,omitempty"`
	PlannedArrival     *time.Time `json:"plannedArrival,omitempty"`
	ActualArrival      *time.Time `json:"actualArrival,omitempty"`
}

type ViewModel struct {
	OrderID           string        `json:"orderId"`
	OrderStatus       string        `json:"orderStatus"`
	StatusLabel       string        `json:"statusLabel"`
	OrderDate         time.Time     `json:"orderDate"`
	HasActiveDelivery bool          `json:"hasActiveDelivery"`
	Delivery          *DeliveryView `json:"delivery,omitempty"`
	Error             string        `json:"error,omitempty"`
	Seq               uint64        `json:"seq"`
	FetchedAt         time.Time     `json:"fetchedAt"`
}

// BuildView собирает модель для клиента из снапшота. Чистая функция.
func BuildView(snap models.TrackingSnapshot) ViewModel {
	vm := ViewModel{
		OrderID:           snap.Order.ID,
		OrderStatus:       string(snap.Order.Status),
		StatusLabel:       OrderStatusLabel(snap.Order.Status),
		OrderDate:         snap.Order.CreatedAt,
		HasActiveDelivery: snap.HasActiveDelivery(),
		Seq:               snap.Seq,
		FetchedAt:         snap.FetchedAt,
	}
	if snap.Err != nil {
		vm.Error = snap.Err.Error()
	}
	if d := snap.Delivery; d != nil {
		dv := &DeliveryView{
			RouteID:            d.RouteID,
			StatusLabel:        RouteStatusLabel(d.DeliveryStatus),
			VehiclePlate:       d.VehiclePlate,
			VehicleInfo:        d.VehicleInfo,
			CurrentLatitude:    d.CurrentLatitude,
			CurrentLongitude:   d.CurrentLongitude,
			CurrentSpeed:       d.CurrentSpeed,
			LastLocationUpdate: d.LastLocationUpdate,
			EstimatedDelivery:  d.EstimatedDelivery,
			PlannedArrival:     d.PlannedArrival,
			ActualArrival:      d.ActualArrival,
		}
		if d.RouteProgress != nil {
			dv.Percentage = ProgressPercentage(*d.RouteProgress)
		}
		vm.Delivery = dv
	}
	return vm
}
