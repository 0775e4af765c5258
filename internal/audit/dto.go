package audit

import (
	"time"

	"github.com/google/uuid"

	"github.com/dmarrero/stockpilot-backend/pkg/db/models"
	"github.com/dmarrero/stockpilot-backend/pkg/enums"
)

// View is the public representation of an audit entry.
type View struct {
	ID         uuid.UUID         `json:"id"`
	ActorID    string            `json:"actorId"`
	Action     enums.AuditAction `json:"action"`
	ProductID  uuid.UUID         `json:"productId"`
	LocationID *uuid.UUID        `json:"locationId,omitempty"`
	Details    string            `json:"details"`
	CreatedAt  time.Time         `json:"createdAt"`
}

// FromModel maps the persistence model onto the API view.
func FromModel(e *models.AuditLog) View {
	return View{
		ID:         e.ID,
		ActorID:    e.ActorID,
		Action:     e.Action,
		ProductID:  e.ProductID,
		LocationID: e.LocationID,
		Details:    e.Details,
		CreatedAt:  e.CreatedAt,
	}
}
