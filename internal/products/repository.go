package products

import (
	"context"

	"github.com/dmarrero/stockpilot-backend/pkg/db/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository wires together product persistence helpers.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

// Create inserts a new product.
func (r *Repository) Create(ctx context.Context, product *models.Product) (*models.Product, error) {
	if err := r.db.WithContext(ctx).Create(product).Error; err != nil {
		return nil, err
	}
	return product, nil
}

// Update persists the mutable product fields.
func (r *Repository) Update(ctx context.Context, product *models.Product) (*models.Product, error) {
	err := r.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("id = ?", product.ID).
		Updates(map[string]any{
			"sku":             product.SKU,
			"name":            product.Name,
			"description":     product.Description,
			"price":           product.Price,
			"min_stock_level": product.MinStockLevel,
		}).Error
	if err != nil {
		return nil, err
	}
	return product, nil
}

// Delete removes the product; stock levels cascade at the database level.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.Product{}, "id = ?", id).Error
}

// FindByID loads the product without associations.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var product models.Product
	if err := r.db.WithContext(ctx).First(&product, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

// FindBySKU resolves a tenant's product by SKU.
func (r *Repository) FindBySKU(ctx context.Context, userID uuid.UUID, sku string) (*models.Product, error) {
	var product models.Product
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND sku = ?", userID, sku).
		First(&product).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

// FindAnyBySKU resolves a SKU across tenants. External sales carry no
// session, so the owning tenant is implied by the product row. The oldest
// match wins when two tenants share a SKU.
func (r *Repository) FindAnyBySKU(ctx context.Context, sku string) (*models.Product, error) {
	var product models.Product
	if err := r.db.WithContext(ctx).
		Where("sku = ?", sku).
		Order("created_at ASC").
		First(&product).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

// ListByUser returns the tenant's products with stock levels preloaded.
func (r *Repository) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Product, error) {
	var rows []models.Product
	err := r.db.WithContext(ctx).
		Preload("StockLevels").
		Where("user_id = ?", userID).
		Order("name ASC").
		Find(&rows).Error
	return rows, err
}

// DeleteByUser removes every product for the tenant. Used only by the account
// data reset.
func (r *Repository) DeleteByUser(ctx context.Context, userID uuid.UUID) error {
	return r.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&models.Product{}).Error
}
