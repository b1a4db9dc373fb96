package inventory

import (
	"context"
	"testing"

	"github.com/antonkhm/warelog/internal/models"
	"github.com/stretchr/testify/require"
)

type fakeRepo struct {
	products   map[string]models.Product
	warehouses map[string]models.Warehouse
	levels     map[string]models.InventoryLevel
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		products:   map[string]models.Product{},
		warehouses: map[string]models.Warehouse{},
		levels:     map[string]models.InventoryLevel{},
	}
}

func (r *fakeRepo) CreateProduct(ctx context.Context, p *models.Product) error {
	r.products[p.ID] = *p
	return nil
}

func (r *fakeRepo) GetProduct(ctx context.Context, id string) (models.Product, bool, error) {
	p, ok := r.products[id]
	return p, ok, nil
}

func (r *fakeRepo) ListProducts(ctx context.Context) ([]models.Product, error) { return nil, nil }

func (r *fakeRepo) CreateWarehouse(ctx context.Context, w *models.Warehouse) error {
	r.warehouses[w.ID] = *w
	return nil
}

func (r *fakeRepo) ListWarehouses(ctx context.Context) ([]models.Warehouse, error) { return nil, nil }

func (r *fakeRepo) UpsertInventoryLevel(ctx context.Context, l *models.InventoryLevel) error {
	r.levels[l.ProductID+"|"+l.WarehouseID] = *l
	return nil
}

func (r *fakeRepo) AdjustInventory(ctx context.Context, productID, warehouseID string, delta float64) (models.InventoryLevel, error) {
	l := r.levels[productID+"|"+warehouseID]
	l.Quantity += delta
	r.levels[productID+"|"+warehouseID] = l
	return l, nil
}

func (r *fakeRepo) ListInventoryLevels(ctx context.Context, warehouseID string) ([]models.InventoryLevel, error) {
	return nil, nil
}

func (r *fakeRepo) ListLowStock(ctx context.Context) ([]models.InventoryLevel, error) {
	out := []models.InventoryLevel{}
	for _, l := range r.levels {
		if l.LowStock() {
			out = append(out, l)
		}
	}
	return out, nil
}

func TestService_CreateProduct(t *testing.T) {
	repo := newFakeRepo()
	svc := New(repo)

	p, err := svc.CreateProduct(context.Background(), models.Product{Name: "Насіння", SKU: "SEED-1", Price: 120})
	require.NoError(t, err)
	require.NotEmpty(t, p.ID)
	require.Equal(t, models.UnitTypePiece, p.UnitType)

	_, err = svc.CreateProduct(context.Background(), models.Product{SKU: "X"})
	require.Error(t, err)
	_, err = svc.CreateProduct(context.Background(), models.Product{Name: "X"})
	require.Error(t, err)
}

func TestService_SetLevel_validation(t *testing.T) {
	svc := New(newFakeRepo())

	err := svc.SetLevel(context.Background(), models.InventoryLevel{ProductID: "p", WarehouseID: "w", Quantity: -1})
	require.Error(t, err)

	err = svc.SetLevel(context.Background(), models.InventoryLevel{ProductID: "p", WarehouseID: "w", MinimumQuantity: 10, MaximumQuantity: 5})
	require.Error(t, err)

	err = svc.SetLevel(context.Background(), models.InventoryLevel{ProductID: "p", WarehouseID: "w", Quantity: 3, MinimumQuantity: 1, MaximumQuantity: 10})
	require.NoError(t, err)
}

func TestService_LowStock(t *testing.T) {
	repo := newFakeRepo()
	svc := New(repo)

	require.NoError(t, svc.SetLevel(context.Background(), models.InventoryLevel{ProductID: "p1", WarehouseID: "w", Quantity: 2, MinimumQuantity: 5}))
	require.NoError(t, svc.SetLevel(context.Background(), models.InventoryLevel{ProductID: "p2", WarehouseID: "w", Quantity: 50, MinimumQuantity: 5}))

	low, err := svc.ListLowStock(context.Background())
	require.NoError(t, err)
	require.Len(t, low, 1)
	require.Equal(t, "p1", low[0].ProductID)
}
