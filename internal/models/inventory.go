package models

import "time"

type UnitType string

const (
	UnitTypePiece    UnitType = "piece"
	UnitTypeKilogram UnitType = "kilogram"
	UnitTypeLiter    UnitType = "liter"
)

type Product struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	SKU          string    `json:"sku"`
	Description  *string   `json:"description,omitempty"`
	Price        float64   `json:"price"`
	Cost         float64   `json:"cost"`
	UnitType     UnitType  `json:"unitType"`
	UnitValue    float64   `json:"unitValue"`
	MinimumStock float64   `json:"minimumStock"`
	MaximumStock float64   `json:"maximumStock"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

type Warehouse struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Address       string    `json:"address"`
	City          string    `json:"city"`
	Country       string    `json:"country"`
	PostalCode    string    `json:"postalCode"`
	Latitude      float64   `json:"latitude"`
	Longitude     float64   `json:"longitude"`
	TotalCapacity float64   `json:"totalCapacity"`
	Status        string    `json:"status"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

type InventoryLevel struct {
	ID              string    `json:"id"`
	ProductID       string    `json:"productId"`
	WarehouseID     string    `json:"warehouseId"`
	Quantity        float64   `json:"quantity"`
	MinimumQuantity float64   `json:"minimumQuantity"`
	MaximumQuantity float64   `json:"maximumQuantity"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

// LowStock — запас на складе опустился ниже минимального уровня.
func (l InventoryLevel) LowStock() bool {
	return l.Quantity < l.MinimumQuantity
}
