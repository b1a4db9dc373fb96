package tracking

import (
	"testing"
	"time"

	"github.com/antonkhm/warelog/internal/models"
	"github.com/stretchr/testify/require"
)

func TestStatusLabels_complete(t *testing.T) {
	orderStatuses := []models.OrderStatus{
		models.OrderStatusPending, models.OrderStatusConfirmed, models.OrderStatusProcessing,
		models.OrderStatusShipped, models.OrderStatusDelivered, models.OrderStatusCancelled,
	}
	for _, st := range orderStatuses {
		require.NotEmpty(t, OrderStatusLabel(st), "order status %q", st)
	}

	routeStatuses := []models.RouteStatus{
		models.RouteStatusPlanned, models.RouteStatusInProgress,
		models.RouteStatusCompleted, models.RouteStatusCancelled,
	}
	for _, st := range routeStatuses {
		require.NotEmpty(t, RouteStatusLabel(st), "route status %q", st)
	}

	// Неизвестное значение отдаётся как есть.
	require.Equal(t, "weird", OrderStatusLabel(models.OrderStatus("weird")))
	require.Equal(t, "weird", RouteStatusLabel(models.RouteStatus("weird")))
}

func TestOrderStatusLabel_values(t *testing.T) {
	require.Equal(t, "Очікує підтвердження", OrderStatusLabel(models.OrderStatusPending))
	require.Equal(t, "Відправлено", OrderStatusLabel(models.OrderStatusShipped))
	require.Equal(t, "В дорозі", RouteStatusLabel(models.RouteStatusInProgress))
}

func TestProgressPercentage_clamped(t *testing.T) {
	cases := []struct {
		in   float64
		want int
	}{
		{-0.1, 0},
		{0, 0},
		{0.5, 50},
		{1.0, 100},
		{1.2, 100},
	}
	for _, c := range cases {
		require.Equal(t, c.want, ProgressPercentage(c.in), "progress %v", c.in)
	}
}

func TestBuildView_activeDelivery(t *testing.T) {
	lat, lon, progress := 50.45, 30.52, 0.42
	snap := models.TrackingSnapshot{
		Order: models.Order{ID: "abc123", Status: models.OrderStatusShipped, CreatedAt: time.Now().UTC()},
		Delivery: &models.TrackingRow{
			OrderID:          "abc123",
			RouteID:          "route-1",
			DeliveryStatus:   models.RouteStatusInProgress,
			VehiclePlate:     "AA1234BB",
			CurrentLatitude:  &lat,
			CurrentLongitude: &lon,
			RouteProgress:    &progress,
		},
	}

	vm := BuildView(snap)
	require.Equal(t, "Відправлено", vm.StatusLabel)
	require.True(t, vm.HasActiveDelivery)
	require.NotNil(t, vm.Delivery)
	require.Equal(t, 42, vm.Delivery.Percentage)
	require.Equal(t, "AA1234BB", vm.Delivery.VehiclePlate)
	require.Equal(t, "В дорозі", vm.Delivery.StatusLabel)
}

func TestBuildView_noDelivery(t *testing.T) {
	snap := models.TrackingSnapshot{
		Order: models.Order{ID: "xyz789", Status: models.OrderStatusPending},
	}

	vm := BuildView(snap)
	require.False(t, vm.HasActiveDelivery)
	require.Nil(t, vm.Delivery)
	require.Equal(t, "Очікує підтвердження", vm.StatusLabel)
	require.Empty(t, vm.Error)
}
