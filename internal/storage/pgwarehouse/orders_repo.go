package pgwarehouse

import (
	"context"
	"time"

	"github.com/antonkhm/warelog/internal/models"
	"github.com/jackc/pgx/v5"
	"github.com/pkg/errors"
)

func (s *Storage) UpsertCustomer(ctx context.Context, id, name, email string) error {
	_, err := s.db.Exec(ctx, `
INSERT INTO customers (id, name, email, created_at)
VALUES ($1, $2, $3, now())
ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name, email = EXCLUDED.email
`, id, name, email)
	return errors.Wrap(err, "upsert customer")
}

// CreateOrder создаёт заказ вместе с позициями и первой записью истории
// статусов одной транзакцией.
func (s *Storage) CreateOrder(ctx context.Context, order *models.Order, items []models.OrderItem, historyID string) error {
	now := time.Now().UTC()

	tx, err := s.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return errors.Wrap(err, "begin tx")
	}
	defer func() { _ = tx.Rollback(ctx) }()

	_, err = tx.Exec(ctx, `
INSERT INTO orders (
  id, customer_id, status, total_amount,
  shipping_address, shipping_city, shipping_state, shipping_postal_code, shipping_country,
  notes, created_at, updated_at
)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$11)
`, order.ID, order.CustomerID, order.Status, order.TotalAmount,
		order.ShippingAddress, order.ShippingCity, order.ShippingState, order.ShippingPostalCode, order.ShippingCountry,
		order.Notes, now)
	if err != nil {
		return errors.Wrap(err, "insert order")
	}

	for _, it := range items {
		_, err = tx.Exec(ctx, `
INSERT INTO order_items (id, order_id, product_id, warehouse_id, quantity, unit_price, total_price, created_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
`, it.ID, order.ID, it.ProductID, it.WarehouseID, it.Quantity, it.UnitPrice, it.TotalPrice, now)
		if err != nil {
			return errors.Wrap(err, "insert order item")
		}
	}

	_, err = tx.Exec(ctx, `
INSERT INTO order_status_history (id, order_id, status, notes, changed_by, created_at)
VALUES ($1,$2,$3,NULL,$4,$5)
`, historyID, order.ID, order.Status, order.CustomerID, now)
	if err != nil {
		return errors.Wrap(err, "insert status history")
	}

	if err := tx.Commit(ctx); err != nil {
		return errors.Wrap(err, "commit tx")
	}

	order.CreatedAt = now
	order.UpdatedAt = now
	return nil
}

func (s *Storage) GetOrder(ctx context.Context, id string) (models.Order, bool, error) {
	var o models.Order
	err := s.db.QueryRow(ctx, `
SELECT
  id, customer_id, status, total_amount,
  shipping_address, shipping_city, shipping_state, shipping_postal_code, shipping_country,
  notes, created_at, updated_at
FROM orders
WHERE id = $1
`, id).Scan(
		&o.ID, &o.CustomerID, &o.Status, &o.TotalAmount,
		&o.ShippingAddress, &o.ShippingCity, &o.ShippingState, &o.ShippingPostalCode, &o.ShippingCountry,
		&o.Notes, &o.CreatedAt, &o.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.Order{}, false, nil
	}
	if err != nil {
		return models.Order{}, false, errors.Wrap(err, "select order")
	}
	return o, true, nil
}

func (s *Storage) ListOrdersByCustomer(ctx context.Context, customerID string) ([]models.Order, error) {
	rows, err := s.db.Query(ctx, `
SELECT
  id, customer_id, status, total_amount,
  shipping_address, shipping_city, shipping_state, shipping_postal_code, shipping_country,
  notes, created_at, updated_at
FROM orders
WHERE customer_id = $1
ORDER BY created_at DESC
`, customerID)
	if err != nil {
		return nil, errors.Wrap(err, "select orders")
	}
	defer rows.Close()

	out := []models.Order{}
	for rows.Next() {
		var o models.Order
		if err := rows.Scan(
			&o.ID, &o.CustomerID, &o.Status, &o.TotalAmount,
			&o.ShippingAddress, &o.ShippingCity, &o.ShippingState, &o.ShippingPostalCode, &o.ShippingCountry,
			&o.Notes, &o.CreatedAt, &o.UpdatedAt,
		); err != nil {
			return nil, errors.Wrap(err, "scan order")
		}
		out = append(out, o)
	}
	if rows.Err() != nil {
		return nil, errors.Wrap(rows.Err(), "rows")
	}
	return out, nil
}

// UpdateOrderStatus меняет статус заказа и дописывает историю одной транзакцией.
// Проверку допустимости перехода делает сервисный слой.
func (s *Storage) UpdateOrderStatus(ctx context.Context, orderID string, status models.OrderStatus, historyID, changedBy string, notes *string) error {
	now := time.Now().UTC()

	tx, err := s.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return errors.Wrap(err, "begin tx")
	}
	defer func() { _ = tx.Rollback(ctx) }()

	tag, err := tx.Exec(ctx, `UPDATE orders SET status = $2, updated_at = $3 WHERE id = $1`, orderID, status, now)
	if err != nil {
		return errors.Wrap(err, "update order status")
	}
	if tag.RowsAffected() == 0 {
		return errors.Errorf("order %s not found", orderID)
	}

	_, err = tx.Exec(ctx, `
INSERT INTO order_status_history (id, order_id, status, notes, changed_by, created_at)
VALUES ($1,$2,$3,$4,$5,$6)
`, historyID, orderID, status, notes, changedBy, now)
	if err != nil {
		return errors.Wrap(err, "insert status history")
	}

	return errors.Wrap(tx.Commit(ctx), "commit tx")
}

// AddOrderItem добавляет позицию и пересчитывает сумму заказа одной транзакцией.
func (s *Storage) AddOrderItem(ctx context.Context, it models.OrderItem) error {
	tx, err := s.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return errors.Wrap(err, "begin tx")
	}
	defer func() { _ = tx.Rollback(ctx) }()

	_, err = tx.Exec(ctx, `
INSERT INTO order_items (id, order_id, product_id, warehouse_id, quantity, unit_price, total_price, created_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,now())
`, it.ID, it.OrderID, it.ProductID, it.WarehouseID, it.Quantity, it.UnitPrice, it.TotalPrice)
	if err != nil {
		return errors.Wrap(err, "insert order item")
	}

	if err := recomputeOrderTotal(ctx, tx, it.OrderID); err != nil {
		return err
	}
	return errors.Wrap(tx.Commit(ctx), "commit tx")
}

func (s *Storage) UpdateOrderItemQuantity(ctx context.Context, itemID string, quantity float64) (models.OrderItem, error) {
	tx, err := s.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return models.OrderItem{}, errors.Wrap(err, "begin tx")
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var it models.OrderItem
	err = tx.QueryRow(ctx, `
UPDATE order_items
SET quantity = $2, total_price = unit_price * $2
WHERE id = $1
RETURNING id, order_id, product_id, warehouse_id, quantity, unit_price, total_price, created_at
`, itemID, quantity).Scan(&it.ID, &it.OrderID, &it.ProductID, &it.WarehouseID, &it.Quantity, &it.UnitPrice, &it.TotalPrice, &it.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.OrderItem{}, errors.Errorf("order item %s not found", itemID)
	}
	if err != nil {
		return models.OrderItem{}, errors.Wrap(err, "update order item")
	}

	if err := recomputeOrderTotal(ctx, tx, it.OrderID); err != nil {
		return models.OrderItem{}, err
	}
	return it, errors.Wrap(tx.Commit(ctx), "commit tx")
}

func (s *Storage) RemoveOrderItem(ctx context.Context, itemID string) (models.OrderItem, error) {
	tx, err := s.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return models.OrderItem{}, errors.Wrap(err, "begin tx")
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var it models.OrderItem
	err = tx.QueryRow(ctx, `
DELETE FROM order_items
WHERE id = $1
RETURNING id, order_id, product_id, warehouse_id, quantity, unit_price, total_price, created_at
`, itemID).Scan(&it.ID, &it.OrderID, &it.ProductID, &it.WarehouseID, &it.Quantity, &it.UnitPrice, &it.TotalPrice, &it.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.OrderItem{}, errors.Errorf("order item %s not found", itemID)
	}
	if err != nil {
		return models.OrderItem{}, errors.Wrap(err, "delete order item")
	}

	if err := recomputeOrderTotal(ctx, tx, it.OrderID); err != nil {
		return models.OrderItem{}, err
	}
	return it, errors.Wrap(tx.Commit(ctx), "commit tx")
}

func recomputeOrderTotal(ctx context.Context, tx pgx.Tx, orderID string) error {
	_, err := tx.Exec(ctx, `
UPDATE orders
SET total_amount = COALESCE((SELECT SUM(total_price) FROM order_items WHERE order_id = $1), 0),
    updated_at = now()
WHERE id = $1
`, orderID)
	return errors.Wrap(err, "recompute order total")
}

func (s *Storage) ListOrderItems(ctx context.Context, orderID string) ([]models.OrderItem, error) {
	rows, err := s.db.Query(ctx, `
SELECT id, order_id, product_id, warehouse_id, quantity, unit_price, total_price, created_at
FROM order_items
WHERE order_id = $1
ORDER BY created_at
`, orderID)
	if err != nil {
		return nil, errors.Wrap(err, "select order items")
	}
	defer rows.Close()

	out := []models.OrderItem{}
	for rows.Next() {
		var it models.OrderItem
		if err := rows.Scan(&it.ID, &it.OrderID, &it.ProductID, &it.WarehouseID, &it.Quantity, &it.UnitPrice, &it.TotalPrice, &it.CreatedAt); err != nil {
			return nil, errors.Wrap(err, "scan order item")
		}
		out = append(out, it)
	}
	if rows.Err() != nil {
		return nil, errors.Wrap(rows.Err(), "rows")
	}
	return out, nil
}

func (s *Storage) ListOrderStatusHistory(ctx context.Context, orderID string) ([]models.OrderStatusHistory, error) {
	rows, err := s.db.Query(ctx, `
SELECT id, order_id, status, notes, changed_by, created_at
FROM order_status_history
WHERE order_id = $1
ORDER BY created_at
`, orderID)
	if err != nil {
		return nil, errors.Wrap(err, "select status history")
	}
	defer rows.Close()

	out := []models.OrderStatusHistory{}
	for rows.Next() {
		var h models.OrderStatusHistory
		if err := rows.Scan(&h.ID, &h.OrderID, &h.Status, &h.Notes, &h.ChangedBy, &h.CreatedAt); err != nil {
			return nil, errors.Wrap(err, "scan status history")
		}
		out = append(out, h)
	}
	if rows.Err() != nil {
		return nil, errors.Wrap(rows.Err(), "rows")
	}
	return out, nil
}

func (s *Storage) ListOrderInventorySummary(ctx context.Context, orderID string) ([]models.OrderInventorySummary, error) {
	rows, err := s.db.Query(ctx, `
SELECT
  order_id, order_status, order_date,
  customer_id, customer_name,
  order_item_id, product_id, product_name, product_sku,
  ordered_quantity, unit_price, total_price,
  warehouse_name, current_stock, shipped_date
FROM order_inventory_summary
WHERE order_id = $1
`, orderID)
	if err != nil {
		return nil, errors.Wrap(err, "select order summary")
	}
	defer rows.Close()

	out := []models.OrderInventorySummary{}
	for rows.Next() {
		var r models.OrderInventorySummary
		if err := rows.Scan(
			&r.OrderID, &r.OrderStatus, &r.OrderDate,
			&r.CustomerID, &r.CustomerName,
			&r.OrderItemID, &r.ProductID, &r.ProductName, &r.ProductSKU,
			&r.OrderedQuantity, &r.UnitPrice, &r.TotalPrice,
			&r.WarehouseName, &r.CurrentStock, &r.ShippedDate,
		); err != nil {
			return nil, errors.Wrap(err, "scan order summary")
		}
		out = append(out, r)
	}
	if rows.Err() != nil {
		return nil, errors.Wrap(rows.Err(), "rows")
	}
	return out, nil
}
