package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/dmarrero/stockpilot-backend/pkg/enums"
)

// AuditLog is an append-only trail entry for every stock mutation. ActorID is
// the acting user's ID, or a system marker such as "SYSTEM_WEBHOOK" for
// mutations not driven by a signed-in user.
type AuditLog struct {
	ID         uuid.UUID         `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID     uuid.UUID         `gorm:"column:user_id;type:uuid;not null;index"`
	ActorID    string            `gorm:"column:actor_id;not null"`
	Action     enums.AuditAction `gorm:"column:action;type:audit_action;not null"`
	ProductID  uuid.UUID         `gorm:"column:product_id;type:uuid;not null"`
	LocationID *uuid.UUID        `gorm:"column:location_id;type:uuid"`
	Details    string            `gorm:"column:details;not null"`
	CreatedAt  time.Time         `gorm:"column:created_at;autoCreateTime"`
}
