package products

import (
	"time"

	"github.com/dmarrero/stockpilot-backend/pkg/db/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CreateRequest carries the payload for a new product.
type CreateRequest struct {
	SKU           string          `json:"sku" validate:"required,min=1,max=64"`
	Name          string          `json:"name" validate:"required,min=1,max=200"`
	Description   *string         `json:"description,omitempty"`
	Price         decimal.Decimal `json:"price" validate:"required"`
	MinStockLevel int             `json:"minStockLevel" validate:"gte=0"`
}

// UpdateRequest carries the mutable fields for an existing product.
type UpdateRequest struct {
	SKU           string          `json:"sku" validate:"required,min=1,max=64"`
	Name          string          `json:"name" validate:"required,min=1,max=200"`
	Description   *string         `json:"description,omitempty"`
	Price         decimal.Decimal `json:"price" validate:"required"`
	MinStockLevel int             `json:"minStockLevel" validate:"gte=0"`
}

// StockLevelView is the per-location quantity included on product reads.
type StockLevelView struct {
	LocationID uuid.UUID `json:"locationId"`
	Quantity   int       `json:"quantity"`
}

// View is the public representation of a product.
type View struct {
	ID            uuid.UUID        `json:"id"`
	SKU           string           `json:"sku"`
	Name          string           `json:"name"`
	Description   *string          `json:"description,omitempty"`
	Price         decimal.Decimal  `json:"price"`
	MinStockLevel int              `json:"minStockLevel"`
	TotalStock    int              `json:"totalStock"`
	LowStock      bool             `json:"lowStock"`
	StockLevels   []StockLevelView `json:"stockLevels"`
	CreatedAt     time.Time        `json:"createdAt"`
	UpdatedAt     time.Time        `json:"updatedAt"`
}

// FromModel maps the persistence model onto the API view. Total stock sums
// across all locations; low stock compares against min_stock_level inclusive.
func FromModel(p *models.Product) View {
	view := View{
		ID:            p.ID,
		SKU:           p.SKU,
		Name:          p.Name,
		Description:   p.Description,
		Price:         p.Price,
		MinStockLevel: p.MinStockLevel,
		StockLevels:   make([]StockLevelView, 0, len(p.StockLevels)),
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
	}
	for _, lvl := range p.StockLevels {
		view.TotalStock += lvl.Quantity
		view.StockLevels = append(view.StockLevels, StockLevelView{
			LocationID: lvl.LocationID,
			Quantity:   lvl.Quantity,
		})
	}
	view.LowStock = view.TotalStock <= p.MinStockLevel
	return view
}
