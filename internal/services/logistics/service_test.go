package logistics

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/antonkhm/warelog/internal/broker/messages"
	"github.com/antonkhm/warelog/internal/models"
	"github.com/stretchr/testify/require"
)

type fakeRepo struct {
	vehicles       map[string]models.Vehicle
	vehicleStatus  map[string]models.VehicleStatus
	routes         map[string]models.DeliveryRoute
	stops          map[string][]models.DeliveryStop
	locations      map[string]models.VehicleLocation
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		vehicles:      map[string]models.Vehicle{},
		vehicleStatus: map[string]models.VehicleStatus{},
		routes:        map[string]models.DeliveryRoute{},
		stops:         map[string][]models.DeliveryStop{},
		locations:     map[string]models.VehicleLocation{},
	}
}

func (r *fakeRepo) CreateVehicle(ctx context.Context, v *models.Vehicle) error {
	r.vehicles[v.ID] = *v
	return nil
}

func (r *fakeRepo) ListVehicles(ctx context.Context) ([]models.Vehicle, error) { return nil, nil }

func (r *fakeRepo) UpdateVehicleStatus(ctx context.Context, vehicleID string, status models.VehicleStatus) error {
	r.vehicleStatus[vehicleID] = status
	return nil
}

func (r *fakeRepo) CreateRoute(ctx context.Context, route *models.DeliveryRoute, stops []models.DeliveryStop) error {
	route.TotalStops = len(stops)
	r.routes[route.ID] = *route
	r.stops[route.ID] = stops
	return nil
}

func (r *fakeRepo) GetRoute(ctx context.Context, id string) (models.DeliveryRoute, bool, error) {
	route, ok := r.routes[id]
	return route, ok, nil
}

func (r *fakeRepo) ListRoutes(ctx context.Context) ([]models.DeliveryRoute, error) { return nil, nil }

func (r *fakeRepo) UpdateRouteStatus(ctx context.Context, routeID string, status models.RouteStatus, endTime *time.Time) error {
	route := r.routes[routeID]
	route.Status = status
	route.EndTime = endTime
	r.routes[routeID] = route
	return nil
}

func (r *fakeRepo) ListRouteStops(ctx context.Context, routeID string) ([]models.DeliveryStop, error) {
	return r.stops[routeID], nil
}

func (r *fakeRepo) UpdateStopStatus(ctx context.Context, stopID string, status models.StopStatus, actualArrival *time.Time) error {
	return nil
}

func (r *fakeRepo) UpsertVehicleLocation(ctx context.Context, loc *models.VehicleLocation) error {
	r.locations[loc.VehicleID] = *loc
	return nil
}

func (r *fakeRepo) GetVehicleLocation(ctx context.Context, vehicleID string) (models.VehicleLocation, bool, error) {
	l, ok := r.locations[vehicleID]
	return l, ok, nil
}

type fakeProducer struct {
	published [][]byte
}

func (p *fakeProducer) Publish(ctx context.Context, topic string, key, value []byte) error {
	p.published = append(p.published, value)
	return nil
}

func (p *fakeProducer) lastChange(t *testing.T) messages.RowChange {
	t.Helper()
	require.NotEmpty(t, p.published)
	var rc messages.RowChange
	require.NoError(t, json.Unmarshal(p.published[len(p.published)-1], &rc))
	return rc
}

func TestService_CreateRoute(t *testing.T) {
	repo := newFakeRepo()
	prod := &fakeProducer{}
	svc := New(repo, prod, "warelog.rowchange")

	vehID := "veh-1"
	orderID := "order-1"
	route, err := svc.CreateRoute(context.Background(), models.DeliveryRoute{VehicleID: &vehID}, []models.DeliveryStop{
		{OrderID: &orderID, Latitude: 50.4, Longitude: 30.6},
	})
	require.NoError(t, err)
	require.NotEmpty(t, route.ID)
	require.Equal(t, models.RouteStatusPlanned, route.Status)
	require.Equal(t, 1, route.TotalStops)
	require.Equal(t, models.VehicleStatusInDelivery, repo.vehicleStatus["veh-1"])

	rc := prod.lastChange(t)
	require.Equal(t, "delivery_routes", rc.Table)
	require.Equal(t, messages.OpInsert, rc.Op)
}

func TestService_CreateRoute_noStops(t *testing.T) {
	svc := New(newFakeRepo(), nil, "")
	_, err := svc.CreateRoute(context.Background(), models.DeliveryRoute{}, nil)
	require.Error(t, err)
}

func TestService_UpdateRouteStatus_completedFreesVehicle(t *testing.T) {
	repo := newFakeRepo()
	vehID := "veh-1"
	repo.routes["route-1"] = models.DeliveryRoute{ID: "route-1", VehicleID: &vehID, Status: models.RouteStatusInProgress}

	svc := New(repo, &fakeProducer{}, "warelog.rowchange")
	require.NoError(t, svc.UpdateRouteStatus(context.Background(), "route-1", models.RouteStatusCompleted))

	require.Equal(t, models.RouteStatusCompleted, repo.routes["route-1"].Status)
	require.NotNil(t, repo.routes["route-1"].EndTime)
	require.Equal(t, models.VehicleStatusAvailable, repo.vehicleStatus["veh-1"])
}

func TestService_RecordLocation(t *testing.T) {
	repo := newFakeRepo()
	prod := &fakeProducer{}
	svc := New(repo, prod, "warelog.rowchange")

	progress := 1.7
	loc, err := svc.RecordLocation(context.Background(), models.VehicleLocation{
		VehicleID: "veh-1", Latitude: 50.45, Longitude: 30.52, RouteProgress: &progress,
	})
	require.NoError(t, err)
	require.NotEmpty(t, loc.ID)
	// Прогресс зажат в [0,1].
	require.InDelta(t, 1.0, *loc.RouteProgress, 1e-9)

	rc := prod.lastChange(t)
	require.Equal(t, "vehicle_locations", rc.Table)
	val, ok := rc.Column("vehicle_id")
	require.True(t, ok)
	require.Equal(t, "veh-1", val)
}

func TestService_RecordLocation_badCoordinates(t *testing.T) {
	svc := New(newFakeRepo(), nil, "")
	_, err := svc.RecordLocation(context.Background(), models.VehicleLocation{VehicleID: "veh-1", Latitude: 123})
	require.Error(t, err)
}
