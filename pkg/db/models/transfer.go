package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/dmarrero/stockpilot-backend/pkg/enums"
)

// Transfer records a completed movement of stock between two locations.
type Transfer struct {
	ID             uuid.UUID            `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID         uuid.UUID            `gorm:"column:user_id;type:uuid;not null;index"`
	ProductID      uuid.UUID            `gorm:"column:product_id;type:uuid;not null"`
	FromLocationID uuid.UUID            `gorm:"column:from_location_id;type:uuid;not null"`
	ToLocationID   uuid.UUID            `gorm:"column:to_location_id;type:uuid;not null"`
	Quantity       int                  `gorm:"column:quantity;not null"`
	Status         enums.TransferStatus `gorm:"column:status;type:transfer_status;not null"`
	CreatedAt      time.Time            `gorm:"column:created_at;autoCreateTime"`
}
