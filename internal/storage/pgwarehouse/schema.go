package pgwarehouse

import (
	"context"

	"github.com/pkg/errors"
)

func (s *Storage) initSchema(ctx context.Context) error {
	stmts := []string{
		`
CREATE TABLE IF NOT EXISTS customers (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  email TEXT NOT NULL DEFAULT '',
  created_at TIMESTAMPTZ NOT NULL
)`,
		`
CREATE TABLE IF NOT EXISTS products (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  sku TEXT NOT NULL UNIQUE,
  description TEXT NULL,
  price DOUBLE PRECISION NOT NULL,
  cost DOUBLE PRECISION NOT NULL DEFAULT 0,
  unit_type TEXT NOT NULL DEFAULT 'piece',
  unit_value DOUBLE PRECISION NOT NULL DEFAULT 1,
  minimum_stock DOUBLE PRECISION NOT NULL DEFAULT 0,
  maximum_stock DOUBLE PRECISION NOT NULL DEFAULT 0,
  created_at TIMESTAMPTZ NOT NULL,
  updated_at TIMESTAMPTZ NOT NULL
)`,
		`
CREATE TABLE IF NOT EXISTS warehouses (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  address TEXT NOT NULL DEFAULT '',
  city TEXT NOT NULL DEFAULT '',
  country TEXT NOT NULL DEFAULT '',
  postal_code TEXT NOT NULL DEFAULT '',
  latitude DOUBLE PRECISION NOT NULL DEFAULT 0,
  longitude DOUBLE PRECISION NOT NULL DEFAULT 0,
  total_capacity DOUBLE PRECISION NOT NULL DEFAULT 0,
  status TEXT NOT NULL DEFAULT 'active',
  created_at TIMESTAMPTZ NOT NULL,
  updated_at TIMESTAMPTZ NOT NULL
)`,
		`
CREATE TABLE IF NOT EXISTS inventory_levels (
  id TEXT PRIMARY KEY,
  product_id TEXT NOT NULL REFERENCES products(id) ON DELETE CASCADE,
  warehouse_id TEXT NOT NULL REFERENCES warehouses(id) ON DELETE CASCADE,
  quantity DOUBLE PRECISION NOT NULL DEFAULT 0,
  minimum_quantity DOUBLE PRECISION NOT NULL DEFAULT 0,
  maximum_quantity DOUBLE PRECISION NOT NULL DEFAULT 0,
  created_at TIMESTAMPTZ NOT NULL,
  updated_at TIMESTAMPTZ NOT NULL,
  UNIQUE (product_id, warehouse_id)
)`,
		`
CREATE TABLE IF NOT EXISTS orders (
  id TEXT PRIMARY KEY,
  customer_id TEXT NOT NULL REFERENCES customers(id),
  status TEXT NOT NULL DEFAULT 'pending',
  total_amount DOUBLE PRECISION NOT NULL DEFAULT 0,
  shipping_address TEXT NOT NULL DEFAULT '',
  shipping_city TEXT NOT NULL DEFAULT '',
  shipping_state TEXT NOT NULL DEFAULT '',
  shipping_postal_code TEXT NOT NULL DEFAULT '',
  shipping_country TEXT NOT NULL DEFAULT '',
  notes TEXT NULL,
  created_at TIMESTAMPTZ NOT NULL,
  updated_at TIMESTAMPTZ NOT NULL
)`,
		`CREATE INDEX IF NOT EXISTS idx_orders_customer_id ON orders(customer_id)`,
		`
CREATE TABLE IF NOT EXISTS order_items (
  id TEXT PRIMARY KEY,
  order_id TEXT NOT NULL REFERENCES orders(id) ON DELETE CASCADE,
  product_id TEXT NOT NULL REFERENCES products(id),
  warehouse_id TEXT NOT NULL REFERENCES warehouses(id),
  quantity DOUBLE PRECISION NOT NULL,
  unit_price DOUBLE PRECISION NOT NULL,
  total_price DOUBLE PRECISION NOT NULL,
  created_at TIMESTAMPTZ NOT NULL
)`,
		`CREATE INDEX IF NOT EXISTS idx_order_items_order_id ON order_items(order_id)`,
		`
CREATE TABLE IF NOT EXISTS order_status_history (
  id TEXT PRIMARY KEY,
  order_id TEXT NOT NULL REFERENCES orders(id) ON DELETE CASCADE,
  status TEXT NOT NULL,
  notes TEXT NULL,
  changed_by TEXT NOT NULL DEFAULT '',
  created_at TIMESTAMPTZ NOT NULL
)`,
		`CREATE INDEX IF NOT EXISTS idx_order_status_history_order_id ON order_status_history(order_id, created_at)`,
		`
CREATE TABLE IF NOT EXISTS vehicles (
  id TEXT PRIMARY KEY,
  license_plate TEXT NOT NULL UNIQUE,
  make TEXT NOT NULL DEFAULT '',
  model TEXT NOT NULL DEFAULT '',
  year INT NOT NULL DEFAULT 0,
  capacity DOUBLE PRECISION NOT NULL DEFAULT 0,
  status TEXT NOT NULL DEFAULT 'available',
  notes TEXT NULL,
  created_at TIMESTAMPTZ NOT NULL,
  updated_at TIMESTAMPTZ NOT NULL
)`,
		`
CREATE TABLE IF NOT EXISTS delivery_routes (
  id TEXT PRIMARY KEY,
  vehicle_id TEXT NULL REFERENCES vehicles(id),
  driver_id TEXT NULL,
  status TEXT NOT NULL DEFAULT 'planned',
  start_time TIMESTAMPTZ NOT NULL,
  end_time TIMESTAMPTZ NULL,
  total_distance DOUBLE PRECISION NOT NULL DEFAULT 0,
  total_stops INT NOT NULL DEFAULT 0,
  notes TEXT NULL,
  created_at TIMESTAMPTZ NOT NULL,
  updated_at TIMESTAMPTZ NOT NULL
)`,
		`
CREATE TABLE IF NOT EXISTS delivery_stops (
  id TEXT PRIMARY KEY,
  route_id TEXT NOT NULL REFERENCES delivery_routes(id) ON DELETE CASCADE,
  order_id TEXT NULL REFERENCES orders(id),
  sequence_number INT NOT NULL,
  status TEXT NOT NULL DEFAULT 'pending',
  planned_arrival TIMESTAMPTZ NULL,
  actual_arrival TIMESTAMPTZ NULL,
  latitude DOUBLE PRECISION NOT NULL DEFAULT 0,
  longitude DOUBLE PRECISION NOT NULL DEFAULT 0,
  address TEXT NOT NULL DEFAULT '',
  created_at TIMESTAMPTZ NOT NULL,
  updated_at TIMESTAMPTZ NOT NULL
)`,
		`CREATE INDEX IF NOT EXISTS idx_delivery_stops_order_id ON delivery_stops(order_id)`,
		`CREATE INDEX IF NOT EXISTS idx_delivery_stops_route_id ON delivery_stops(route_id, sequence_number)`,
		// Храним только последнюю позицию транспорта: GPS-тики идут часто,
		// история не нужна.
		`
CREATE TABLE IF NOT EXISTS vehicle_locations (
  id TEXT PRIMARY KEY,
  vehicle_id TEXT NOT NULL UNIQUE REFERENCES vehicles(id) ON DELETE CASCADE,
  latitude DOUBLE PRECISION NOT NULL,
  longitude DOUBLE PRECISION NOT NULL,
  heading DOUBLE PRECISION NULL,
  speed DOUBLE PRECISION NULL,
  route_progress DOUBLE PRECISION NULL,
  updated_at TIMESTAMPTZ NOT NULL
)`,
		`
CREATE TABLE IF NOT EXISTS notifications (
  id TEXT PRIMARY KEY,
  type TEXT NOT NULL,
  title TEXT NOT NULL,
  message TEXT NOT NULL DEFAULT '',
  order_id TEXT NULL,
  read BOOLEAN NOT NULL DEFAULT FALSE,
  created_at TIMESTAMPTZ NOT NULL
)`,
		`CREATE INDEX IF NOT EXISTS idx_notifications_created_at ON notifications(created_at DESC)`,
		`
CREATE OR REPLACE VIEW customer_order_tracking AS
SELECT
  r.id AS route_id,
  r.status AS delivery_status,
  r.start_time AS delivery_start,
  r.end_time AS estimated_delivery,
  COALESCE(v.license_plate, '') AS vehicle_plate,
  COALESCE(NULLIF(TRIM(v.make || ' ' || v.model), ''), '') AS vehicle_info,
  vl.latitude AS current_latitude,
  vl.longitude AS current_longitude,
  vl.route_progress AS route_progress,
  vl.speed AS current_speed,
  vl.updated_at AS last_location_update,
  st.planned_arrival AS planned_arrival,
  st.actual_arrival AS actual_arrival,
  st.status AS stop_status,
  o.id AS order_id,
  o.status AS order_status,
  o.created_at AS order_date
FROM orders o
JOIN delivery_stops st ON st.order_id = o.id
JOIN delivery_routes r ON r.id = st.route_id
LEFT JOIN vehicles v ON v.id = r.vehicle_id
LEFT JOIN vehicle_locations vl ON vl.vehicle_id = r.vehicle_id
WHERE r.status <> 'cancelled'
`,
		`
CREATE OR REPLACE VIEW order_inventory_summary AS
SELECT
  o.id AS order_id,
  o.status AS order_status,
  o.created_at AS order_date,
  c.id AS customer_id,
  c.name AS customer_name,
  oi.id AS order_item_id,
  p.id AS product_id,
  p.name AS product_name,
  p.sku AS product_sku,
  oi.quantity AS ordered_quantity,
  oi.unit_price AS unit_price,
  oi.total_price AS total_price,
  w.name AS warehouse_name,
  COALESCE(il.quantity, 0) AS current_stock,
  (
    SELECT MIN(h.created_at)
    FROM order_status_history h
    WHERE h.order_id = o.id AND h.status = 'shipped'
  ) AS shipped_date
FROM orders o
JOIN customers c ON c.id = o.customer_id
JOIN order_items oi ON oi.order_id = o.id
JOIN products p ON p.id = oi.product_id
JOIN warehouses w ON w.id = oi.warehouse_id
LEFT JOIN inventory_levels il ON il.product_id = oi.product_id AND il.warehouse_id = oi.warehouse_id
`,
	}

	for _, q := range stmts {
		if _, err := s.db.Exec(ctx, q); err != nil {
			return errors.Wrap(err, "init schema")
		}
	}
	return nil
}
