package inventory

import (
	"context"

	"github.com/antonkhm/warelog/internal/models"
	"github.com/google/uuid"
	"github.com/pkg/errors"
)

type Repository interface {
	CreateProduct(ctx context.Context, p *models.Product) error
	GetProduct(ctx context.Context, id string) (models.Product, bool, error)
	ListProducts(ctx context.Context) ([]models.Product, error)
	CreateWarehouse(ctx context.Context, w *models.Warehouse) error
	ListWarehouses(ctx context.Context) ([]models.Warehouse, error)
	UpsertInventoryLevel(ctx context.Context, l *models.InventoryLevel) error
	AdjustInventory(ctx context.Context, productID, warehouseID string, delta float64) (models.InventoryLevel, error)
	ListInventoryLevels(ctx context.Context, warehouseID string) ([]models.InventoryLevel, error)
	ListLowStock(ctx context.Context) ([]models.InventoryLevel, error)
}

type Service struct {
	repo Repository
}

func New(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) CreateProduct(ctx context.Context, p models.Product) (models.Product, error) {
	if p.Name == "" {
		return models.Product{}, errors.New("name is required")
	}
	if p.SKU == "" {
		return models.Product{}, errors.New("sku is required")
	}
	if p.UnitType == "" {
		p.UnitType = models.UnitTypePiece
	}
	p.ID = uuid.NewString()
	if err := s.repo.CreateProduct(ctx, &p); err != nil {
		return models.Product{}, err
	}
	return p, nil
}

func (s *Service) GetProduct(ctx context.Context, id string) (models.Product, bool, error) {
	return s.repo.GetProduct(ctx, id)
}

func (s *Service) ListProducts(ctx context.Context) ([]models.Product, error) {
	return s.repo.ListProducts(ctx)
}

func (s *Service) CreateWarehouse(ctx context.Context, w models.Warehouse) (models.Warehouse, error) {
	if w.Name == "" {
		return models.Warehouse{}, errors.New("name is required")
	}
	if w.Status == "" {
		w.Status = "active"
	}
	w.ID = uuid.NewString()
	if err := s.repo.CreateWarehouse(ctx, &w); err != nil {
		return models.Warehouse{}, err
	}
	return w, nil
}

func (s *Service) ListWarehouses(ctx context.Context) ([]models.Warehouse, error) {
	return s.repo.ListWarehouses(ctx)
}

// SetLevel задаёт остаток по паре товар-склад.
func (s *Service) SetLevel(ctx context.Context, l models.InventoryLevel) error {
	if l.ProductID == "" || l.WarehouseID == "" {
		return errors.New("productId and warehouseId are required")
	}
	if l.Quantity < 0 {
		return errors.New("quantity must not be negative")
	}
	if l.MaximumQuantity > 0 && l.MinimumQuantity > l.MaximumQuantity {
		return errors.New("minimum exceeds maximum")
	}
	if l.ID == "" {
		l.ID = uuid.NewString()
	}
	return s.repo.UpsertInventoryLevel(ctx, &l)
}

func (s *Service) Adjust(ctx context.Context, productID, warehouseID string, delta float64) (models.InventoryLevel, error) {
	return s.repo.AdjustInventory(ctx, productID, warehouseID, delta)
}

func (s *Service) ListLevels(ctx context.Context, warehouseID string) ([]models.InventoryLevel, error) {
	return s.repo.ListInventoryLevels(ctx, warehouseID)
}

func (s *Service) ListLowStock(ctx context.Context) ([]models.InventoryLevel, error) {
	return s.repo.ListLowStock(ctx)
}
