package logistics

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/antonkhm/warelog/internal/broker/messages"
	"github.com/antonkhm/warelog/internal/models"
	"github.com/google/uuid"
	"github.com/pkg/errors"
)

type Repository interface {
	CreateVehicle(ctx context.Context, v *models.Vehicle) error
	ListVehicles(ctx context.Context) ([]models.Vehicle, error)
	UpdateVehicleStatus(ctx context.Context, vehicleID string, status models.VehicleStatus) error
	CreateRoute(ctx context.Context, route *models.DeliveryRoute, stops []models.DeliveryStop) error
	GetRoute(ctx context.Context, id string) (models.DeliveryRoute, bool, error)
	ListRoutes(ctx context.Context) ([]models.DeliveryRoute, error)
	UpdateRouteStatus(ctx context.Context, routeID string, status models.RouteStatus, endTime *time.Time) error
	ListRouteStops(ctx context.Context, routeID string) ([]models.DeliveryStop, error)
	UpdateStopStatus(ctx context.Context, stopID string, status models.StopStatus, actualArrival *time.Time) error
	UpsertVehicleLocation(ctx context.Context, loc *models.VehicleLocation) error
	GetVehicleLocation(ctx context.Context, vehicleID string) (models.VehicleLocation, bool, error)
}

type Producer interface {
	Publish(ctx context.Context, topic string, key, value []byte) error
}

type Service struct {
	repo     Repository
	producer Producer
	topic    string
}

func New(repo Repository, producer Producer, topic string) *Service {
	return &Service{repo: repo, producer: producer, topic: topic}
}

func (s *Service) CreateVehicle(ctx context.Context, v models.Vehicle) (models.Vehicle, error) {
	if v.LicensePlate == "" {
		return models.Vehicle{}, errors.New("licensePlate is required")
	}
	if v.Status == "" {
		v.Status = models.VehicleStatusAvailable
	}
	v.ID = uuid.NewString()
	if err := s.repo.CreateVehicle(ctx, &v); err != nil {
		return models.Vehicle{}, err
	}
	return v, nil
}

func (s *Service) ListVehicles(ctx context.Context) ([]models.Vehicle, error) {
	return s.repo.ListVehicles(ctx)
}

func (s *Service) UpdateVehicleStatus(ctx context.Context, vehicleID string, status models.VehicleStatus) error {
	return s.repo.UpdateVehicleStatus(ctx, vehicleID, status)
}

// CreateRoute создаёт маршрут с остановками; vehicle переводится в in_delivery.
func (s *Service) CreateRoute(ctx context.Context, route models.DeliveryRoute, stops []models.DeliveryStop) (models.DeliveryRoute, error) {
	if len(stops) == 0 {
		return models.DeliveryRoute{}, errors.New("stops is empty")
	}
	if route.Status == "" {
		route.Status = models.RouteStatusPlanned
	}
	if route.StartTime.IsZero() {
		route.StartTime = time.Now().UTC()
	}
	route.ID = uuid.NewString()
	for i := range stops {
		stops[i].ID = uuid.NewString()
		if stops[i].SequenceNumber == 0 {
			stops[i].SequenceNumber = i + 1
		}
		if stops[i].Status == "" {
			stops[i].Status = models.StopStatusPending
		}
	}

	if err := s.repo.CreateRoute(ctx, &route, stops); err != nil {
		return models.DeliveryRoute{}, err
	}

	if route.VehicleID != nil {
		if err := s.repo.UpdateVehicleStatus(ctx, *route.VehicleID, models.VehicleStatusInDelivery); err != nil {
			slog.Warn("vehicle status update failed", "vehicle_id", *route.VehicleID, "error", err.Error())
		}
	}

	s.publishRowChange(ctx, "delivery_routes", messages.OpInsert, route.ID, map[string]any{"id": route.ID, "status": route.Status})
	return route, nil
}

func (s *Service) GetRoute(ctx context.Context, id string) (models.DeliveryRoute, bool, error) {
	return s.repo.GetRoute(ctx, id)
}

func (s *Service) ListRoutes(ctx context.Context) ([]models.DeliveryRoute, error) {
	return s.repo.ListRoutes(ctx)
}

func (s *Service) UpdateRouteStatus(ctx context.Context, routeID string, status models.RouteStatus) error {
	var endTime *time.Time
	if status == models.RouteStatusCompleted || status == models.RouteStatusCancelled {
		t := time.Now().UTC()
		endTime = &t
	}
	if err := s.repo.UpdateRouteStatus(ctx, routeID, status, endTime); err != nil {
		return err
	}

	// Завершённый маршрут возвращает транспорт в парк.
	if endTime != nil {
		if route, found, err := s.repo.GetRoute(ctx, routeID); err == nil && found && route.VehicleID != nil {
			if err := s.repo.UpdateVehicleStatus(ctx, *route.VehicleID, models.VehicleStatusAvailable); err != nil {
				slog.Warn("vehicle status update failed", "vehicle_id", *route.VehicleID, "error", err.Error())
			}
		}
	}

	s.publishRowChange(ctx, "delivery_routes", messages.OpUpdate, routeID, map[string]any{"id": routeID, "status": status})
	return nil
}

func (s *Service) ListRouteStops(ctx context.Context, routeID string) ([]models.DeliveryStop, error) {
	return s.repo.ListRouteStops(ctx, routeID)
}

func (s *Service) UpdateStopStatus(ctx context.Context, stopID string, status models.StopStatus) error {
	var arrival *time.Time
	if status == models.StopStatusCompleted {
		t := time.Now().UTC()
		arrival = &t
	}
	if err := s.repo.UpdateStopStatus(ctx, stopID, status, arrival); err != nil {
		return err
	}
	s.publishRowChange(ctx, "delivery_stops", messages.OpUpdate, stopID, map[string]any{"id": stopID, "status": status})
	return nil
}

// RecordLocation сохраняет GPS-тик транспорта и публикует событие.
func (s *Service) RecordLocation(ctx context.Context, loc models.VehicleLocation) (models.VehicleLocation, error) {
	if loc.VehicleID == "" {
		return models.VehicleLocation{}, errors.New("vehicleId is required")
	}
	if loc.Latitude < -90 || loc.Latitude > 90 || loc.Longitude < -180 || loc.Longitude > 180 {
		return models.VehicleLocation{}, errors.New("coordinates out of range")
	}
	if loc.RouteProgress != nil {
		p := *loc.RouteProgress
		if p < 0 {
			p = 0
		}
		if p > 1 {
			p = 1
		}
		loc.RouteProgress = &p
	}
	if loc.ID == "" {
		loc.ID = uuid.NewString()
	}

	if err := s.repo.UpsertVehicleLocation(ctx, &loc); err != nil {
		return models.VehicleLocation{}, err
	}

	s.publishRowChange(ctx, "vehicle_locations", messages.OpUpdate, loc.VehicleID, map[string]any{"vehicle_id": loc.VehicleID})
	return loc, nil
}

func (s *Service) GetLocation(ctx context.Context, vehicleID string) (models.VehicleLocation, bool, error) {
	return s.repo.GetVehicleLocation(ctx, vehicleID)
}

func (s *Service) publishRowChange(ctx context.Context, table string, op messages.Op, key string, rowFields map[string]any) {
	if s.producer == nil {
		return
	}
	row, _ := json.Marshal(rowFields)
	b, err := json.Marshal(messages.RowChange{
		Table: table,
		Op:    op,
		At:    time.Now().UTC(),
		Row:   row,
	})
	if err != nil {
		return
	}
	if err := s.producer.Publish(ctx, s.topic, []byte(key), b); err != nil {
		slog.Warn("publish row change", "table", table, "error", err.Error())
	}
}
