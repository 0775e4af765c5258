package orders

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/dmarrero/stockpilot-backend/pkg/db/models"
	"github.com/dmarrero/stockpilot-backend/pkg/enums"
)

// View is the public representation of an order.
type View struct {
	ID           uuid.UUID         `json:"id"`
	CustomerName string            `json:"customerName"`
	Status       enums.OrderStatus `json:"status"`
	Total        decimal.Decimal   `json:"total"`
	Items        []ItemView        `json:"items"`
	CreatedAt    time.Time         `json:"createdAt"`
}

// ItemView is one line of an order.
type ItemView struct {
	ProductID uuid.UUID       `json:"productId"`
	Quantity  int             `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
}

// FromModel maps the persistence model onto the API view.
func FromModel(o *models.Order) View {
	items := make([]ItemView, 0, len(o.Items))
	for _, item := range o.Items {
		items = append(items, ItemView{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			Price:     item.Price,
		})
	}
	return View{
		ID:           o.ID,
		CustomerName: o.CustomerName,
		Status:       o.Status,
		Total:        o.Total,
		Items:        items,
		CreatedAt:    o.CreatedAt,
	}
}
