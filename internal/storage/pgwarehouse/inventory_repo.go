package pgwarehouse

import (
	"context"
	"time"

	"github.com/antonkhm/warelog/internal/models"
	"github.com/jackc/pgx/v5"
	"github.com/pkg/errors"
)

func (s *Storage) CreateProduct(ctx context.Context, p *models.Product) error {
	now := time.Now().UTC()
	_, err := s.db.Exec(ctx, `
INSERT INTO products (id, name, sku, description, price, cost, unit_type, unit_value, minimum_stock, maximum_stock, created_at, updated_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$11)
`, p.ID, p.Name, p.SKU, p.Description, p.Price, p.Cost, p.UnitType, p.UnitValue, p.MinimumStock, p.MaximumStock, now)
	if err != nil {
		return errors.Wrap(err, "insert product")
	}
	p.CreatedAt = now
	p.UpdatedAt = now
	return nil
}

func (s *Storage) GetProduct(ctx context.Context, id string) (models.Product, bool, error) {
	var p models.Product
	err := s.db.QueryRow(ctx, `
SELECT id, name, sku, description, price, cost, unit_type, unit_value, minimum_stock, maximum_stock, created_at, updated_at
FROM products
WHERE id = $1
`, id).Scan(&p.ID, &p.Name, &p.SKU, &p.Description, &p.Price, &p.Cost, &p.UnitType, &p.UnitValue, &p.MinimumStock, &p.MaximumStock, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.Product{}, false, nil
	}
	if err != nil {
		return models.Product{}, false, errors.Wrap(err, "select product")
	}
	return p, true, nil
}

func (s *Storage) ListProducts(ctx context.Context) ([]models.Product, error) {
	rows, err := s.db.Query(ctx, `
SELECT id, name, sku, description, price, cost, unit_type, unit_value, minimum_stock, maximum_stock, created_at, updated_at
FROM products
ORDER BY name
`)
	if err != nil {
		return nil, errors.Wrap(err, "select products")
	}
	defer rows.Close()

	out := []models.Product{}
	for rows.Next() {
		var p models.Product
		if err := rows.Scan(&p.ID, &p.Name, &p.SKU, &p.Description, &p.Price, &p.Cost, &p.UnitType, &p.UnitValue, &p.MinimumStock, &p.MaximumStock, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, errors.Wrap(err, "scan product")
		}
		out = append(out, p)
	}
	if rows.Err() != nil {
		return nil, errors.Wrap(rows.Err(), "rows")
	}
	return out, nil
}

func (s *Storage) CreateWarehouse(ctx context.Context, w *models.Warehouse) error {
	now := time.Now().UTC()
	_, err := s.db.Exec(ctx, `
INSERT INTO warehouses (id, name, address, city, country, postal_code, latitude, longitude, total_capacity, status, created_at, updated_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$11)
`, w.ID, w.Name, w.Address, w.City, w.Country, w.PostalCode, w.Latitude, w.Longitude, w.TotalCapacity, w.Status, now)
	if err != nil {
		return errors.Wrap(err, "insert warehouse")
	}
	w.CreatedAt = now
	w.UpdatedAt = now
	return nil
}

func (s *Storage) ListWarehouses(ctx context.Context) ([]models.Warehouse, error) {
	rows, err := s.db.Query(ctx, `
SELECT id, name, address, city, country, postal_code, latitude, longitude, total_capacity, status, created_at, updated_at
FROM warehouses
ORDER BY name
`)
	if err != nil {
		return nil, errors.Wrap(err, "select warehouses")
	}
	defer rows.Close()

	out := []models.Warehouse{}
	for rows.Next() {
		var w models.Warehouse
		if err := rows.Scan(&w.ID, &w.Name, &w.Address, &w.City, &w.Country, &w.PostalCode, &w.Latitude, &w.Longitude, &w.TotalCapacity, &w.Status, &w.CreatedAt, &w.UpdatedAt); err != nil {
			return nil, errors.Wrap(err, "scan warehouse")
		}
		out = append(out, w)
	}
	if rows.Err() != nil {
		return nil, errors.Wrap(rows.Err(), "rows")
	}
	return out, nil
}

func (s *Storage) UpsertInventoryLevel(ctx context.Context, l *models.InventoryLevel) error {
	now := time.Now().UTC()
	_, err := s.db.Exec(ctx, `
INSERT INTO inventory_levels (id, product_id, warehouse_id, quantity, minimum_quantity, maximum_quantity, created_at, updated_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$7)
ON CONFLICT (product_id, warehouse_id) DO UPDATE SET
  quantity = EXCLUDED.quantity,
  minimum_quantity = EXCLUDED.minimum_quantity,
  maximum_quantity = EXCLUDED.maximum_quantity,
  updated_at = EXCLUDED.updated_at
`, l.ID, l.ProductID, l.WarehouseID, l.Quantity, l.MinimumQuantity, l.MaximumQuantity, now)
	return errors.Wrap(err, "upsert inventory level")
}

// AdjustInventory атомарно меняет остаток на delta; уход в минус запрещён.
func (s *Storage) AdjustInventory(ctx context.Context, productID, warehouseID string, delta float64) (models.InventoryLevel, error) {
	var l models.InventoryLevel
	err := s.db.QueryRow(ctx, `
UPDATE inventory_levels
SET quantity = quantity + $3, updated_at = now()
WHERE product_id = $1 AND warehouse_id = $2 AND quantity + $3 >= 0
RETURNING id, product_id, warehouse_id, quantity, minimum_quantity, maximum_quantity, created_at, updated_at
`, productID, warehouseID, delta).Scan(&l.ID, &l.ProductID, &l.WarehouseID, &l.Quantity, &l.MinimumQuantity, &l.MaximumQuantity, &l.CreatedAt, &l.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.InventoryLevel{}, errors.Errorf("not enough stock of %s at %s", productID, warehouseID)
	}
	if err != nil {
		return models.InventoryLevel{}, errors.Wrap(err, "adjust inventory")
	}
	return l, nil
}

func (s *Storage) ListInventoryLevels(ctx context.Context, warehouseID string) ([]models.InventoryLevel, error) {
	rows, err := s.db.Query(ctx, `
SELECT id, product_id, warehouse_id, quantity, minimum_quantity, maximum_quantity, created_at, updated_at
FROM inventory_levels
WHERE ($1 = '' OR warehouse_id = $1)
ORDER BY product_id
`, warehouseID)
	if err != nil {
		return nil, errors.Wrap(err, "select inventory levels")
	}
	defer rows.Close()

	out := []models.InventoryLevel{}
	for rows.Next() {
		var l models.InventoryLevel
		if err := rows.Scan(&l.ID, &l.ProductID, &l.WarehouseID, &l.Quantity, &l.MinimumQuantity, &l.MaximumQuantity, &l.CreatedAt, &l.UpdatedAt); err != nil {
			return nil, errors.Wrap(err, "scan inventory level")
		}
		out = append(out, l)
	}
	if rows.Err() != nil {
		return nil, errors.Wrap(rows.Err(), "rows")
	}
	return out, nil
}

func (s *Storage) ListLowStock(ctx context.Context) ([]models.InventoryLevel, error) {
	rows, err := s.db.Query(ctx, `
SELECT id, product_id, warehouse_id, quantity, minimum_quantity, maximum_quantity, created_at, updated_at
FROM inventory_levels
WHERE quantity < minimum_quantity
ORDER BY product_id
`)
	if err != nil {
		return nil, errors.Wrap(err, "select low stock")
	}
	defer rows.Close()

	out := []models.InventoryLevel{}
	for rows.Next() {
		var l models.InventoryLevel
		if err := rows.Scan(&l.ID, &l.ProductID, &l.WarehouseID, &l.Quantity, &l.MinimumQuantity, &l.MaximumQuantity, &l.CreatedAt, &l.UpdatedAt); err != nil {
			return nil, errors.Wrap(err, "scan low stock")
		}
		out = append(out, l)
	}
	if rows.Err() != nil {
		return nil, errors.Wrap(rows.Err(), "rows")
	}
	return out, nil
}
