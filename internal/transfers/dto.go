package transfers

import (
	"time"

	"github.com/google/uuid"

	"github.com/dmarrero/stockpilot-backend/pkg/db/models"
	"github.com/dmarrero/stockpilot-backend/pkg/enums"
)

// View is the public representation of a completed transfer.
type View struct {
	ID             uuid.UUID            `json:"id"`
	ProductID      uuid.UUID            `json:"productId"`
	FromLocationID uuid.UUID            `json:"fromLocationId"`
	ToLocationID   uuid.UUID            `json:"toLocationId"`
	Quantity       int                  `json:"quantity"`
	Status         enums.TransferStatus `json:"status"`
	CreatedAt      time.Time            `json:"createdAt"`
}

// FromModel maps the persistence model onto the API view.
func FromModel(t *models.Transfer) View {
	return View{
		ID:             t.ID,
		ProductID:      t.ProductID,
		FromLocationID: t.FromLocationID,
		ToLocationID:   t.ToLocationID,
		Quantity:       t.Quantity,
		Status:         t.Status,
		CreatedAt:      t.CreatedAt,
	}
}
