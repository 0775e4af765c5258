package inventory

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AdjustRequest sets a cell to an exact quantity.
type AdjustRequest struct {
	ProductID  uuid.UUID `json:"productId" validate:"required"`
	LocationID uuid.UUID `json:"locationId" validate:"required"`
	Quantity   int       `json:"quantity" validate:"gte=0"`
}

// AdjustResult reports the quantity after a manual adjustment.
type AdjustResult struct {
	ProductID  uuid.UUID `json:"productId"`
	LocationID uuid.UUID `json:"locationId"`
	Quantity   int       `json:"quantity"`
}

// SellRequest records a point-of-sale item sale. UnitPrice overrides the
// catalog price when set. When LocationID is omitted the sale is taken from
// the location holding the most stock that can cover it.
type SellRequest struct {
	ProductID  uuid.UUID        `json:"productId" validate:"required"`
	LocationID uuid.UUID        `json:"locationId,omitempty"`
	Quantity   int              `json:"quantity" validate:"required,gt=0"`
	UnitPrice  *decimal.Decimal `json:"unitPrice,omitempty"`
}

// SellResult reports the order created by a sale and the remaining stock.
type SellResult struct {
	OrderID     uuid.UUID       `json:"orderId"`
	NewQuantity int             `json:"newQuantity"`
	Total       decimal.Decimal `json:"total"`
}

// TransferRequest moves stock between two locations of the same tenant.
type TransferRequest struct {
	ProductID      uuid.UUID `json:"productId" validate:"required"`
	FromLocationID uuid.UUID `json:"fromLocationId" validate:"required"`
	ToLocationID   uuid.UUID `json:"toLocationId" validate:"required"`
	Quantity       int       `json:"quantity" validate:"required,gt=0"`
}

// TransferResult reports both cells after a completed transfer.
type TransferResult struct {
	TransferID   uuid.UUID `json:"transferId"`
	FromQuantity int       `json:"fromQuantity"`
	ToQuantity   int       `json:"toQuantity"`
}

// ExternalSaleRequest is the webhook-driven stock decrement. ExternalID keys
// replay deduplication.
type ExternalSaleRequest struct {
	SKU        string    `json:"sku" validate:"required"`
	Quantity   int       `json:"quantity" validate:"required,gt=0"`
	LocationID uuid.UUID `json:"locationId" validate:"required"`
	ExternalID string    `json:"externalId" validate:"required"`
}

// ExternalSaleResult mirrors the webhook response contract.
type ExternalSaleResult struct {
	Success     bool `json:"success"`
	NewQuantity int  `json:"newQuantity"`
}

// RouteItem is one line of an order to be routed.
type RouteItem struct {
	ProductID uuid.UUID `json:"productId" validate:"required"`
	Quantity  int       `json:"quantity" validate:"required,gt=0"`
}

// RouteRequest asks for the best fulfillment location given the customer's
// position. Only the first item drives the decision today.
type RouteRequest struct {
	Items     []RouteItem `json:"items" validate:"required,min=1,dive"`
	Latitude  float64     `json:"latitude" validate:"gte=-90,lte=90"`
	Longitude float64     `json:"longitude" validate:"gte=-180,lte=180"`
}

// RouteResult names the chosen fulfillment location.
type RouteResult struct {
	LocationID   uuid.UUID `json:"locationId"`
	LocationName string    `json:"locationName"`
}
