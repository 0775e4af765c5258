package models

import (
	"time"

	"github.com/google/uuid"
)

// StockLevel is the on-hand quantity of one product at one location. The
// (product_id, location_id) pair is unique; quantity never goes negative.
type StockLevel struct {
	ID         uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	ProductID  uuid.UUID `gorm:"column:product_id;type:uuid;not null;uniqueIndex:idx_stock_levels_product_location"`
	LocationID uuid.UUID `gorm:"column:location_id;type:uuid;not null;uniqueIndex:idx_stock_levels_product_location"`
	Quantity   int       `gorm:"column:quantity;not null;default:0"`
	CreatedAt  time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt  time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
