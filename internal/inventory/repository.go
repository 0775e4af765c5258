package inventory

import (
	"context"
	"errors"

	"github.com/dmarrero/stockpilot-backend/pkg/db/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repository owns the stock_levels table. All mutations are guarded so a
// quantity can never be driven below zero, even under concurrent writers.
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

// Quantity returns the stored quantity for the cell, and whether a row exists.
func (r *Repository) Quantity(ctx context.Context, productID, locationID uuid.UUID) (int, bool, error) {
	var level models.StockLevel
	err := r.db.WithContext(ctx).
		Where("product_id = ? AND location_id = ?", productID, locationID).
		First(&level).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, false, nil
		}
		return 0, false, err
	}
	return level.Quantity, true, nil
}

// SetQuantity upserts the cell to an exact quantity. Callers must have
// rejected negative values already; the guard here is a backstop.
func (r *Repository) SetQuantity(ctx context.Context, productID, locationID uuid.UUID, quantity int) error {
	if quantity < 0 {
		return errors.New("quantity cannot be negative")
	}
	level := models.StockLevel{
		ID:         uuid.New(),
		ProductID:  productID,
		LocationID: locationID,
		Quantity:   quantity,
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "product_id"}, {Name: "location_id"}},
			DoUpdates: clause.Assignments(map[string]any{"quantity": quantity}),
		}).
		Create(&level).Error
}

// DecrementIfAvailable atomically subtracts quantity from the cell only when
// enough stock is present. Returns false when the guard rejects the write;
// the row is left untouched in that case.
func (r *Repository) DecrementIfAvailable(ctx context.Context, productID, locationID uuid.UUID, quantity int) (bool, error) {
	if quantity <= 0 {
		return false, errors.New("quantity must be positive")
	}
	res := r.db.WithContext(ctx).
		Model(&models.StockLevel{}).
		Where("product_id = ? AND location_id = ? AND quantity >= ?", productID, locationID, quantity).
		Update("quantity", gorm.Expr("quantity - ?", quantity))
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

// IncrementOrCreate adds quantity to the cell, creating the row when absent.
func (r *Repository) IncrementOrCreate(ctx context.Context, productID, locationID uuid.UUID, quantity int) error {
	if quantity <= 0 {
		return errors.New("quantity must be positive")
	}
	level := models.StockLevel{
		ID:         uuid.New(),
		ProductID:  productID,
		LocationID: locationID,
		Quantity:   quantity,
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "product_id"}, {Name: "location_id"}},
			DoUpdates: clause.Assignments(map[string]any{"quantity": gorm.Expr("stock_levels.quantity + ?", quantity)}),
		}).
		Create(&level).Error
}

// LevelsForProduct lists every cell for the product.
func (r *Repository) LevelsForProduct(ctx context.Context, productID uuid.UUID) ([]models.StockLevel, error) {
	var rows []models.StockLevel
	err := r.db.WithContext(ctx).
		Where("product_id = ?", productID).
		Order("location_id ASC").
		Find(&rows).Error
	return rows, err
}

// LocationQuantity pairs a location with the quantity it holds for a product.
type LocationQuantity struct {
	Location models.Location
	Quantity int
}

// CandidatesForProduct returns each of the tenant's locations with its
// quantity for the product. Locations with no stock row report zero.
func (r *Repository) CandidatesForProduct(ctx context.Context, userID, productID uuid.UUID) ([]LocationQuantity, error) {
	var locations []models.Location
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at ASC").
		Find(&locations).Error; err != nil {
		return nil, err
	}

	levels, err := r.LevelsForProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	byLocation := make(map[uuid.UUID]int, len(levels))
	for _, lvl := range levels {
		byLocation[lvl.LocationID] = lvl.Quantity
	}

	out := make([]LocationQuantity, 0, len(locations))
	for _, loc := range locations {
		out = append(out, LocationQuantity{Location: loc, Quantity: byLocation[loc.ID]})
	}
	return out, nil
}

// LevelWithMostStock returns the cell holding the largest quantity for the
// product that can cover the requested amount. Ties and ordering are resolved
// by quantity descending then location_id ascending so the pick is stable.
func (r *Repository) LevelWithMostStock(ctx context.Context, productID uuid.UUID, atLeast int) (*models.StockLevel, error) {
	var level models.StockLevel
	err := r.db.WithContext(ctx).
		Where("product_id = ? AND quantity >= ?", productID, atLeast).
		Order("quantity DESC").
		Order("location_id ASC").
		First(&level).Error
	if err != nil {
		return nil, err
	}
	return &level, nil
}
