package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/dmarrero/stockpilot-backend/pkg/enums"
)

// Location is a physical site (warehouse or store) owned by a tenant.
// Coordinates are optional; routing treats a location without coordinates as
// infinitely far away.
type Location struct {
	ID        uuid.UUID          `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID    uuid.UUID          `gorm:"column:user_id;type:uuid;not null;index"`
	Name      string             `gorm:"column:name;not null"`
	Kind      enums.LocationKind `gorm:"column:kind;type:location_kind;not null"`
	Latitude  *float64           `gorm:"column:latitude;type:numeric(9,6)"`
	Longitude *float64           `gorm:"column:longitude;type:numeric(9,6)"`
	CreatedAt time.Time          `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time          `gorm:"column:updated_at;autoUpdateTime"`
}

// HasCoordinates reports whether both latitude and longitude are set.
func (l Location) HasCoordinates() bool {
	return l.Latitude != nil && l.Longitude != nil
}
