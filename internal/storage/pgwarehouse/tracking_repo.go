package pgwarehouse

import (
	"context"

	"github.com/antonkhm/warelog/internal/models"
	"github.com/jackc/pgx/v5"
	"github.com/pkg/errors"
)

// GetTrackingRow читает строку представления customer_order_tracking.
// Отсутствие строки — штатный случай: доставка ещё не началась.
func (s *Storage) GetTrackingRow(ctx context.Context, orderID string) (models.TrackingRow, bool, error) {
	var r models.TrackingRow
	err := s.db.QueryRow(ctx, `
SELECT
  route_id, delivery_status, delivery_start, estimated_delivery,
  vehicle_plate, vehicle_info,
  current_latitude, current_longitude, route_progress, current_speed, last_location_update,
  planned_arrival, actual_arrival, stop_status,
  order_id, order_status, order_date
FROM customer_order_tracking
WHERE order_id = $1
ORDER BY delivery_start DESC
LIMIT 1
`, orderID).Scan(
		&r.RouteID, &r.DeliveryStatus, &r.DeliveryStart, &r.EstimatedDelivery,
		&r.VehiclePlate, &r.VehicleInfo,
		&r.CurrentLatitude, &r.CurrentLongitude, &r.RouteProgress, &r.CurrentSpeed, &r.LastLocationUpdate,
		&r.PlannedArrival, &r.ActualArrival, &r.StopStatus,
		&r.OrderID, &r.OrderStatus, &r.OrderDate,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.TrackingRow{}, false, nil
	}
	if err != nil {
		return models.TrackingRow{}, false, errors.Wrap(err, "select tracking row")
	}
	return r, true, nil
}
