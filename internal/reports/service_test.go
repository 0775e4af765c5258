package reports

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/dmarrero/stockpilot-backend/internal/orders"
	"github.com/dmarrero/stockpilot-backend/internal/products"
	"github.com/dmarrero/stockpilot-backend/internal/transfers"
	"github.com/dmarrero/stockpilot-backend/pkg/db/models"
	"github.com/dmarrero/stockpilot-backend/pkg/enums"
)

var reportsSchema = []string{
	`CREATE TABLE IF NOT EXISTS products (
  id TEXT PRIMARY KEY,
  user_id TEXT NOT NULL,
  sku TEXT NOT NULL,
  name TEXT NOT NULL,
  description TEXT,
  price NUMERIC NOT NULL,
  min_stock_level INTEGER NOT NULL DEFAULT 0,
  created_at DATETIME,
  updated_at DATETIME
);`,
	`CREATE TABLE IF NOT EXISTS stock_levels (
  id TEXT PRIMARY KEY,
  product_id TEXT NOT NULL,
  location_id TEXT NOT NULL,
  quantity INTEGER NOT NULL DEFAULT 0,
  created_at DATETIME,
  updated_at DATETIME
);`,
	`CREATE TABLE IF NOT EXISTS orders (
  id TEXT PRIMARY KEY,
  user_id TEXT NOT NULL,
  customer_name TEXT NOT NULL,
  status TEXT NOT NULL,
  total NUMERIC NOT NULL,
  created_at DATETIME,
  updated_at DATETIME
);`,
	`CREATE TABLE IF NOT EXISTS order_items (
  id TEXT PRIMARY KEY,
  order_id TEXT NOT NULL,
  product_id TEXT NOT NULL,
  quantity INTEGER NOT NULL,
  price NUMERIC NOT NULL,
  created_at DATETIME
);`,
	`CREATE TABLE IF NOT EXISTS transfers (
  id TEXT PRIMARY KEY,
  user_id TEXT NOT NULL,
  product_id TEXT NOT NULL,
  from_location_id TEXT NOT NULL,
  to_location_id TEXT NOT NULL,
  quantity INTEGER NOT NULL,
  status TEXT NOT NULL,
  created_at DATETIME
);`,
}

func setupReportsTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{SkipDefaultTransaction: true})
	require.NoError(t, err)
	for _, stmt := range reportsSchema {
		require.NoError(t, conn.Exec(stmt).Error)
	}
	return conn
}

func newReportService(t *testing.T, conn *gorm.DB, now time.Time) Service {
	t.Helper()
	svc, err := NewService(ServiceParams{
		ProductRepo:  products.NewRepository(conn),
		OrderRepo:    orders.NewRepository(conn),
		TransferRepo: transfers.NewRepository(conn),
		Now:          func() time.Time { return now },
	})
	require.NoError(t, err)
	return svc
}

func seedProduct(t *testing.T, conn *gorm.DB, userID uuid.UUID, sku, name string, price float64, minStock int, quantities ...int) *models.Product {
	t.Helper()
	product := &models.Product{
		ID:            uuid.New(),
		UserID:        userID,
		SKU:           sku,
		Name:          name,
		Price:         decimal.NewFromFloat(price),
		MinStockLevel: minStock,
	}
	require.NoError(t, conn.Create(product).Error)
	for _, qty := range quantities {
		require.NoError(t, conn.Create(&models.StockLevel{
			ID:         uuid.New(),
			ProductID:  product.ID,
			LocationID: uuid.New(),
			Quantity:   qty,
		}).Error)
	}
	return product
}

func TestInventoryCSVFormatsRows(t *testing.T) {
	conn := setupReportsTestDB(t)
	userID := uuid.New()
	seedProduct(t, conn, userID, "LAP-001", "Laptop, 15 inch", 999.5, 2, 3, 4)
	seedProduct(t, conn, userID, "MOU-002", "Mouse", 25, 10, 5)

	svc := newReportService(t, conn, time.Now())
	out, err := svc.InventoryCSV(context.Background(), userID)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(out)), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "SKU,Product Name,Total Stock,Value,Low Stock?", lines[0])
	// products list alphabetically by name; the comma in the name forces quoting
	assert.Equal(t, `LAP-001,"Laptop, 15 inch",7,6996.50,NO`, lines[1])
	assert.Equal(t, "MOU-002,Mouse,5,125.00,YES", lines[2])
}

func TestInventoryCSVEmptyCatalog(t *testing.T) {
	conn := setupReportsTestDB(t)
	svc := newReportService(t, conn, time.Now())

	out, err := svc.InventoryCSV(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.Equal(t, "SKU,Product Name,Total Stock,Value,Low Stock?", strings.TrimSpace(string(out)))
}

func TestDashboardAggregates(t *testing.T) {
	conn := setupReportsTestDB(t)
	userID := uuid.New()
	now := time.Date(2026, time.August, 28, 12, 0, 0, 0, time.UTC)

	seedProduct(t, conn, userID, "LAP-001", "Laptop", 100, 2, 6)
	seedProduct(t, conn, userID, "MOU-002", "Mouse", 10, 10, 3)

	// recent order inside the 24h revenue window
	require.NoError(t, conn.Create(&models.Order{
		ID: uuid.New(), UserID: userID, CustomerName: orders.WalkInCustomer,
		Status: enums.OrderStatusFulfilled, Total: decimal.NewFromInt(200),
		CreatedAt: now.Add(-2 * time.Hour),
	}).Error)
	// stale order outside the window
	require.NoError(t, conn.Create(&models.Order{
		ID: uuid.New(), UserID: userID, CustomerName: orders.WalkInCustomer,
		Status: enums.OrderStatusFulfilled, Total: decimal.NewFromInt(999),
		CreatedAt: now.Add(-48 * time.Hour),
	}).Error)

	svc := newReportService(t, conn, now)
	dash, err := svc.Dashboard(context.Background(), userID)
	require.NoError(t, err)

	assert.Equal(t, 2, dash.TotalProducts)
	assert.Equal(t, 9, dash.TotalStock)
	assert.True(t, dash.TotalValue.Equal(decimal.NewFromInt(630)), "value was %s", dash.TotalValue)
	assert.Equal(t, 1, dash.LowStockCount, "only the mouse sits at or below its minimum")
	assert.True(t, dash.Revenue24h.Equal(decimal.NewFromInt(200)), "revenue was %s", dash.Revenue24h)
	require.Len(t, dash.Movement, 6)
	assert.Equal(t, "2026-03", dash.Movement[0].Month)
	assert.Equal(t, "2026-08", dash.Movement[5].Month)
}

func TestDashboardMovementZeroFillsQuietMonths(t *testing.T) {
	conn := setupReportsTestDB(t)
	userID := uuid.New()
	now := time.Date(2026, time.August, 28, 12, 0, 0, 0, time.UTC)
	product := seedProduct(t, conn, userID, "LAP-001", "Laptop", 100, 0, 10)

	order := &models.Order{
		ID: uuid.New(), UserID: userID, CustomerName: orders.WalkInCustomer,
		Status: enums.OrderStatusFulfilled, Total: decimal.NewFromInt(300),
		CreatedAt: now.AddDate(0, -2, 0),
	}
	require.NoError(t, conn.Create(order).Error)
	require.NoError(t, conn.Create(&models.OrderItem{
		ID: uuid.New(), OrderID: order.ID, ProductID: product.ID,
		Quantity: 3, Price: decimal.NewFromInt(100),
		CreatedAt: now.AddDate(0, -2, 0),
	}).Error)
	require.NoError(t, conn.Create(&models.Transfer{
		ID: uuid.New(), UserID: userID, ProductID: product.ID,
		FromLocationID: uuid.New(), ToLocationID: uuid.New(),
		Quantity: 2, Status: enums.TransferStatusCompleted,
		CreatedAt: now.AddDate(0, -1, 0),
	}).Error)

	svc := newReportService(t, conn, now)
	dash, err := svc.Dashboard(context.Background(), userID)
	require.NoError(t, err)

	require.Len(t, dash.Movement, 6)
	byMonth := map[string]MonthlyMovement{}
	for _, m := range dash.Movement {
		byMonth[m.Month] = m
	}
	assert.Equal(t, 3, byMonth["2026-06"].Sold)
	assert.Equal(t, 2, byMonth["2026-07"].Transferred)
	assert.Equal(t, 0, byMonth["2026-04"].Sold)
	assert.Equal(t, 0, byMonth["2026-04"].Transferred)
}
