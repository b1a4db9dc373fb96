package models

import "time"

type VehicleStatus string

const (
	VehicleStatusAvailable    VehicleStatus = "available"
	VehicleStatusInDelivery   VehicleStatus = "in_delivery"
	VehicleStatusMaintenance  VehicleStatus = "maintenance"
	VehicleStatusOutOfService VehicleStatus = "out_of_service"
)

type Vehicle struct {
	ID           string        `json:"id"`
	LicensePlate string        `json:"licensePlate"`
	Make         string        `json:"make"`
	Model        string        `json:"model"`
	Year         int           `json:"year"`
	Capacity     float64       `json:"capacity"`
	Status       VehicleStatus `json:"status"`
	Notes        *string       `json:"notes,omitempty"`
	CreatedAt    time.Time     `json:"createdAt"`
	UpdatedAt    time.Time     `json:"updatedAt"`
}

type RouteStatus string

const (
	RouteStatusPlanned    RouteStatus = "planned"
	RouteStatusInProgress RouteStatus = "in_progress"
	RouteStatusCompleted  RouteStatus = "completed"
	RouteStatusCancelled  RouteStatus = "cancelled"
)

type DeliveryRoute struct {
	ID            string      `json:"id"`
	VehicleID     *string     `json:"vehicleId,omitempty"`
	DriverID      *string     `json:"driverId,omitempty"`
	Status        RouteStatus `json:"status"`
	StartTime     time.Time   `json:"startTime"`
	EndTime       *time.Time  `json:"endTime,omitempty"`
	TotalDistance float64     `json:"totalDistance"`
	TotalStops    int         `json:"totalStops"`
	Notes         *string     `json:"notes,omitempty"`
	CreatedAt     time.Time   `json:"createdAt"`
	UpdatedAt     time.Time   `json:"updatedAt"`
}

type StopStatus string

const (
	StopStatusPending   StopStatus = "pending"
	StopStatusCompleted StopStatus = "completed"
	StopStatusFailed    StopStatus = "failed"
	StopStatusSkipped   StopStatus = "skipped"
)

type DeliveryStop struct {
	ID             string     `json:"id"`
	RouteID        string     `json:"routeId"`
	OrderID        *string    `json:"orderId,omitempty"`
	SequenceNumber int        `json:"sequenceNumber"`
	Status         StopStatus `json:"status"`
	PlannedArrival *time.Time `json:"plannedArrival,omitempty"`
	ActualArrival  *time.Time `json:"actualArrival,omitempty"`
	Latitude       float64    `json:"latitude"`
	Longitude      float64    `json:"longitude"`
	Address        string     `json:"address"`
	CreatedAt      time.Time  `json:"createdAt"`
	UpdatedAt      time.Time  `json:"updatedAt"`
}

// VehicleLocation — единственная сущность с высокой частотой обновлений
// (симулированные GPS-тики).
type VehicleLocation struct {
	ID            string    `json:"id"`
	VehicleID     string    `json:"vehicleId"`
	Latitude      float64   `json:"latitude"`
	Longitude     float64   `json:"longitude"`
	Heading       *float64  `json:"heading,omitempty"`
	Speed         *float64  `json:"speed,omitempty"`
	RouteProgress *float64  `json:"routeProgress,omitempty"`
	UpdatedAt     time.Time `json:"updatedAt"`
}
