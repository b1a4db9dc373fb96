package pgwarehouse

import (
	"context"
	"time"

	"github.com/antonkhm/warelog/internal/models"
	"github.com/jackc/pgx/v5"
	"github.com/pkg/errors"
)

func (s *Storage) CreateVehicle(ctx context.Context, v *models.Vehicle) error {
	now := time.Now().UTC()
	_, err := s.db.Exec(ctx, `
INSERT INTO vehicles (id, license_plate, make, model, year, capacity, status, notes, created_at, updated_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$9)
`, v.ID, v.LicensePlate, v.Make, v.Model, v.Year, v.Capacity, v.Status, v.Notes, now)
	if err != nil {
		return errors.Wrap(err, "insert vehicle")
	}
	v.CreatedAt = now
	v.UpdatedAt = now
	return nil
}

func (s *Storage) ListVehicles(ctx context.Context) ([]models.Vehicle, error) {
	rows, err := s.db.Query(ctx, `
SELECT id, license_plate, make, model, year, capacity, status, notes, created_at, updated_at
FROM vehicles
ORDER BY license_plate
`)
	if err != nil {
		return nil, errors.Wrap(err, "select vehicles")
	}
	defer rows.Close()

	out := []models.Vehicle{}
	for rows.Next() {
		var v models.Vehicle
		if err := rows.Scan(&v.ID, &v.LicensePlate, &v.Make, &v.Model, &v.Year, &v.Capacity, &v.Status, &v.Notes, &v.CreatedAt, &v.UpdatedAt); err != nil {
			return nil, errors.Wrap(err, "scan vehicle")
		}
		out = append(out, v)
	}
	if rows.Err() != nil {
		return nil, errors.Wrap(rows.Err(), "rows")
	}
	return out, nil
}

func (s *Storage) UpdateVehicleStatus(ctx context.Context, vehicleID string, status models.VehicleStatus) error {
	tag, err := s.db.Exec(ctx, `UPDATE vehicles SET status = $2, updated_at = now() WHERE id = $1`, vehicleID, status)
	if err != nil {
		return errors.Wrap(err, "update vehicle status")
	}
	if tag.RowsAffected() == 0 {
		return errors.Errorf("vehicle %s not found", vehicleID)
	}
	return nil
}

// CreateRoute создаёт маршрут вместе с остановками одной транзакцией.
func (s *Storage) CreateRoute(ctx context.Context, route *models.DeliveryRoute, stops []models.DeliveryStop) error {
	now := time.Now().UTC()

	tx, err := s.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return errors.Wrap(err, "begin tx")
	}
	defer func() { _ = tx.Rollback(ctx) }()

	_, err = tx.Exec(ctx, `
INSERT INTO delivery_routes (id, vehicle_id, driver_id, status, start_time, end_time, total_distance, total_stops, notes, created_at, updated_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$10)
`, route.ID, route.VehicleID, route.DriverID, route.Status, route.StartTime, route.EndTime,
		route.TotalDistance, len(stops), route.Notes, now)
	if err != nil {
		return errors.Wrap(err, "insert route")
	}

	for _, st := range stops {
		_, err = tx.Exec(ctx, `
INSERT INTO delivery_stops (id, route_id, order_id, sequence_number, status, planned_arrival, actual_arrival, latitude, longitude, address, created_at, updated_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$11)
`, st.ID, route.ID, st.OrderID, st.SequenceNumber, st.Status, st.PlannedArrival, st.ActualArrival,
			st.Latitude, st.Longitude, st.Address, now)
		if err != nil {
			return errors.Wrap(err, "insert stop")
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return errors.Wrap(err, "commit tx")
	}

	route.TotalStops = len(stops)
	route.CreatedAt = now
	route.UpdatedAt = now
	return nil
}

func (s *Storage) GetRoute(ctx context.Context, id string) (models.DeliveryRoute, bool, error) {
	var r models.DeliveryRoute
	err := s.db.QueryRow(ctx, `
SELECT id, vehicle_id, driver_id, status, start_time, end_time, total_distance, total_stops, notes, created_at, updated_at
FROM delivery_routes
WHERE id = $1
`, id).Scan(&r.ID, &r.VehicleID, &r.DriverID, &r.Status, &r.StartTime, &r.EndTime, &r.TotalDistance, &r.TotalStops, &r.Notes, &r.CreatedAt, &r.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.DeliveryRoute{}, false, nil
	}
	if err != nil {
		return models.DeliveryRoute{}, false, errors.Wrap(err, "select route")
	}
	return r, true, nil
}

func (s *Storage) ListRoutes(ctx context.Context) ([]models.DeliveryRoute, error) {
	rows, err := s.db.Query(ctx, `
SELECT id, vehicle_id, driver_id, status, start_time, end_time, total_distance, total_stops, notes, created_at, updated_at
FROM delivery_routes
ORDER BY start_time DESC
`)
	if err != nil {
		return nil, errors.Wrap(err, "select routes")
	}
	defer rows.Close()

	out := []models.DeliveryRoute{}
	for rows.Next() {
		var r models.DeliveryRoute
		if err := rows.Scan(&r.ID, &r.VehicleID, &r.DriverID, &r.Status, &r.StartTime, &r.EndTime, &r.TotalDistance, &r.TotalStops, &r.Notes, &r.CreatedAt, &r.UpdatedAt); err != nil {
			return nil, errors.Wrap(err, "scan route")
		}
		out = append(out, r)
	}
	if rows.Err() != nil {
		return nil, errors.Wrap(rows.Err(), "rows")
	}
	return out, nil
}

func (s *Storage) UpdateRouteStatus(ctx context.Context, routeID string, status models.RouteStatus, endTime *time.Time) error {
	tag, err := s.db.Exec(ctx, `
UPDATE delivery_routes SET status = $2, end_time = COALESCE($3, end_time), updated_at = now() WHERE id = $1
`, routeID, status, endTime)
	if err != nil {
		return errors.Wrap(err, "update route status")
	}
	if tag.RowsAffected() == 0 {
		return errors.Errorf("route %s not found", routeID)
	}
	return nil
}

func (s *Storage) ListRouteStops(ctx context.Context, routeID string) ([]models.DeliveryStop, error) {
	rows, err := s.db.Query(ctx, `
SELECT id, route_id, order_id, sequence_number, status, planned_arrival, actual_arrival, latitude, longitude, address, created_at, updated_at
FROM delivery_stops
WHERE route_id = $1
ORDER BY sequence_number
`, routeID)
	if err != nil {
		return nil, errors.Wrap(err, "select stops")
	}
	defer rows.Close()

	out := []models.DeliveryStop{}
	for rows.Next() {
		var st models.DeliveryStop
		if err := rows.Scan(&st.ID, &st.RouteID, &st.OrderID, &st.SequenceNumber, &st.Status, &st.PlannedArrival, &st.ActualArrival, &st.Latitude, &st.Longitude, &st.Address, &st.CreatedAt, &st.UpdatedAt); err != nil {
			return nil, errors.Wrap(err, "scan stop")
		}
		out = append(out, st)
	}
	if rows.Err() != nil {
		return nil, errors.Wrap(rows.Err(), "rows")
	}
	return out, nil
}

func (s *Storage) UpdateStopStatus(ctx context.Context, stopID string, status models.StopStatus, actualArrival *time.Time) error {
	tag, err := s.db.Exec(ctx, `
UPDATE delivery_stops SET status = $2, actual_arrival = COALESCE($3, actual_arrival), updated_at = now() WHERE id = $1
`, stopID, status, actualArrival)
	if err != nil {
		return errors.Wrap(err, "update stop status")
	}
	if tag.RowsAffected() == 0 {
		return errors.Errorf("stop %s not found", stopID)
	}
	return nil
}

// UpsertVehicleLocation заменяет позицию транспорта: для каждого vehicle_id
// хранится ровно одна, последняя, точка.
func (s *Storage) UpsertVehicleLocation(ctx context.Context, loc *models.VehicleLocation) error {
	now := time.Now().UTC()
	_, err := s.db.Exec(ctx, `
INSERT INTO vehicle_locations (id, vehicle_id, latitude, longitude, heading, speed, route_progress, updated_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
ON CONFLICT (vehicle_id) DO UPDATE SET
  latitude = EXCLUDED.latitude,
  longitude = EXCLUDED.longitude,
  heading = EXCLUDED.heading,
  speed = EXCLUDED.speed,
  route_progress = EXCLUDED.route_progress,
  updated_at = EXCLUDED.updated_at
`, loc.ID, loc.VehicleID, loc.Latitude, loc.Longitude, loc.Heading, loc.Speed, loc.RouteProgress, now)
	if err != nil {
		return errors.Wrap(err, "upsert vehicle location")
	}
	loc.UpdatedAt = now
	return nil
}

func (s *Storage) GetVehicleLocation(ctx context.Context, vehicleID string) (models.VehicleLocation, bool, error) {
	var l models.VehicleLocation
	err := s.db.QueryRow(ctx, `
SELECT id, vehicle_id, latitude, longitude, heading, speed, route_progress, updated_at
FROM vehicle_locations
WHERE vehicle_id = $1
`, vehicleID).Scan(&l.ID, &l.VehicleID, &l.Latitude, &l.Longitude, &l.Heading, &l.Speed, &l.RouteProgress, &l.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.VehicleLocation{}, false, nil
	}
	if err != nil {
		return models.VehicleLocation{}, false, errors.Wrap(err, "select vehicle location")
	}
	return l, true, nil
}
