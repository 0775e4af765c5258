package reports

import (
	"github.com/shopspring/decimal"
)

// Dashboard is the tenant-wide summary shown on the home screen.
type Dashboard struct {
	TotalProducts int               `json:"totalProducts"`
	TotalStock    int               `json:"totalStock"`
	TotalValue    decimal.Decimal   `json:"totalValue"`
	LowStockCount int               `json:"lowStockCount"`
	Revenue24h    decimal.Decimal   `json:"revenue24h"`
	Movement      []MonthlyMovement `json:"movement"`
}

// MonthlyMovement counts units sold and transferred in one calendar month.
// Months with no activity are present with zero counts.
type MonthlyMovement struct {
	Month       string `json:"month"`
	Sold        int    `json:"sold"`
	Transferred int    `json:"transferred"`
}
