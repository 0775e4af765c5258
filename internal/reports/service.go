package reports

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/dmarrero/stockpilot-backend/internal/orders"
	"github.com/dmarrero/stockpilot-backend/internal/products"
	"github.com/dmarrero/stockpilot-backend/internal/transfers"
	pkgerrors "github.com/dmarrero/stockpilot-backend/pkg/errors"
	"github.com/dmarrero/stockpilot-backend/pkg/logger"
)

// movementMonths is how far back the dashboard movement chart reaches,
// including the current month.
const movementMonths = 6

// Service builds read-only reports over the tenant's inventory and sales.
type Service interface {
	InventoryCSV(ctx context.Context, userID uuid.UUID) ([]byte, error)
	Dashboard(ctx context.Context, userID uuid.UUID) (*Dashboard, error)
}

type service struct {
	products  *products.Repository
	orders    *orders.Repository
	transfers *transfers.Repository
	now       func() time.Time
	logg      *logger.Logger
}

// ServiceParams bundles the dependencies required to build the report service.
type ServiceParams struct {
	ProductRepo  *products.Repository
	OrderRepo    *orders.Repository
	TransferRepo *transfers.Repository
	Now          func() time.Time
	Logger       *logger.Logger
}

// NewService constructs the report service. Now is optional and defaults to
// time.Now.
func NewService(params ServiceParams) (Service, error) {
	if params.ProductRepo == nil {
		return nil, fmt.Errorf("product repository is required")
	}
	if params.OrderRepo == nil {
		return nil, fmt.Errorf("order repository is required")
	}
	if params.TransferRepo == nil {
		return nil, fmt.Errorf("transfer repository is required")
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &service{
		products:  params.ProductRepo,
		orders:    params.OrderRepo,
		transfers: params.TransferRepo,
		now:       now,
		logg:      params.Logger,
	}, nil
}

// InventoryCSV renders the tenant's catalog as CSV. Value is the catalog price
// multiplied by total stock, fixed to two decimals.
func (s *service) InventoryCSV(ctx context.Context, userID uuid.UUID) ([]byte, error) {
	rows, err := s.products.ListByUser(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list products")
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write([]string{"SKU", "Product Name", "Total Stock", "Value", "Low Stock?"}); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "write csv header")
	}
	for _, product := range rows {
		total := 0
		for _, level := range product.StockLevels {
			total += level.Quantity
		}
		value := product.Price.Mul(decimal.NewFromInt(int64(total)))
		lowStock := "NO"
		if total <= product.MinStockLevel {
			lowStock = "YES"
		}
		record := []string{
			product.SKU,
			product.Name,
			strconv.Itoa(total),
			value.StringFixed(2),
			lowStock,
		}
		if err := w.Write(record); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "write csv row")
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "flush csv")
	}
	return buf.Bytes(), nil
}

// Dashboard aggregates stock totals, low-stock counts, 24h revenue, and the
// recent monthly movement series.
func (s *service) Dashboard(ctx context.Context, userID uuid.UUID) (*Dashboard, error) {
	rows, err := s.products.ListByUser(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list products")
	}

	dash := &Dashboard{
		TotalProducts: len(rows),
		TotalValue:    decimal.Zero,
	}
	for _, product := range rows {
		total := 0
		for _, level := range product.StockLevels {
			total += level.Quantity
		}
		dash.TotalStock += total
		dash.TotalValue = dash.TotalValue.Add(product.Price.Mul(decimal.NewFromInt(int64(total))))
		if total <= product.MinStockLevel {
			dash.LowStockCount++
		}
	}

	now := s.now()
	revenue, err := s.orders.RevenueSince(ctx, userID, now.Add(-24*time.Hour))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "sum revenue")
	}
	dash.Revenue24h = revenue

	movement, err := s.movementSeries(ctx, userID, now)
	if err != nil {
		return nil, err
	}
	dash.Movement = movement

	return dash, nil
}

func (s *service) movementSeries(ctx context.Context, userID uuid.UUID, now time.Time) ([]MonthlyMovement, error) {
	start := monthStart(now).AddDate(0, -(movementMonths - 1), 0)

	items, err := s.orders.ItemsSince(ctx, userID, start)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list sold items")
	}
	moved, err := s.transfers.Since(ctx, userID, start)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list transfers")
	}

	soldByMonth := map[string]int{}
	for _, item := range items {
		soldByMonth[item.CreatedAt.Format("2006-01")] += item.Quantity
	}
	transferredByMonth := map[string]int{}
	for _, transfer := range moved {
		transferredByMonth[transfer.CreatedAt.Format("2006-01")] += transfer.Quantity
	}

	series := make([]MonthlyMovement, 0, movementMonths)
	for i := 0; i < movementMonths; i++ {
		month := start.AddDate(0, i, 0).Format("2006-01")
		series = append(series, MonthlyMovement{
			Month:       month,
			Sold:        soldByMonth[month],
			Transferred: transferredByMonth[month],
		})
	}
	return series, nil
}

func monthStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
}
