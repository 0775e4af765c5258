package account

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/dmarrero/stockpilot-backend/internal/audit"
	"github.com/dmarrero/stockpilot-backend/internal/locations"
	"github.com/dmarrero/stockpilot-backend/internal/orders"
	"github.com/dmarrero/stockpilot-backend/internal/products"
	"github.com/dmarrero/stockpilot-backend/internal/transfers"
	dbpkg "github.com/dmarrero/stockpilot-backend/pkg/db"
	"github.com/dmarrero/stockpilot-backend/pkg/db/models"
	"github.com/dmarrero/stockpilot-backend/pkg/enums"
)

var accountSchema = []string{
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
	`CREATE TABLE IF NOT EXISTS locations (
  id TEXT PRIMARY KEY,
  user_id TEXT NOT NULL,
  name TEXT NOT NULL,
  kind TEXT NOT NULL,
  latitude REAL,
  longitude REAL,
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
	`CREATE TABLE IF NOT EXISTS audit_logs (
  id TEXT PRIMARY KEY,
  user_id TEXT NOT NULL,
  actor_id TEXT NOT NULL,
  action TEXT NOT NULL,
  product_id TEXT NOT NULL,
  location_id TEXT,
  details TEXT NOT NULL,
  created_at DATETIME
);`,
}

func setupAccountTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{SkipDefaultTransaction: true})
	require.NoError(t, err)
	for _, stmt := range accountSchema {
		require.NoError(t, conn.Exec(stmt).Error)
	}
	return conn
}

func seedTenant(t *testing.T, conn *gorm.DB, userID uuid.UUID) {
	t.Helper()
	product := &models.Product{ID: uuid.New(), UserID: userID, SKU: "SKU-1", Name: "Widget", Price: decimal.NewFromInt(10)}
	location := &models.Location{ID: uuid.New(), UserID: userID, Name: "Shop", Kind: enums.LocationKindStore}
	require.NoError(t, conn.Create(product).Error)
	require.NoError(t, conn.Create(location).Error)
	require.NoError(t, conn.Create(&models.StockLevel{ID: uuid.New(), ProductID: product.ID, LocationID: location.ID, Quantity: 5}).Error)
	require.NoError(t, conn.Create(&models.Order{
		ID: uuid.New(), UserID: userID, CustomerName: orders.WalkInCustomer,
		Status: enums.OrderStatusFulfilled, Total: decimal.NewFromInt(20),
		Items: []models.OrderItem{{ID: uuid.New(), ProductID: product.ID, Quantity: 2, Price: decimal.NewFromInt(10)}},
	}).Error)
	require.NoError(t, conn.Create(&models.Transfer{
		ID: uuid.New(), UserID: userID, ProductID: product.ID,
		FromLocationID: location.ID, ToLocationID: location.ID,
		Quantity: 1, Status: enums.TransferStatusCompleted,
	}).Error)
	require.NoError(t, conn.Create(&models.AuditLog{
		ID: uuid.New(), UserID: userID, ActorID: userID.String(),
		Action: enums.AuditActionSale, ProductID: product.ID, Details: "Sold 2 units",
	}).Error)
}

func TestDeleteAllDataWipesOnlyTheTenant(t *testing.T) {
	conn := setupAccountTestDB(t)

	victim := uuid.New()
	bystander := uuid.New()
	seedTenant(t, conn, victim)
	seedTenant(t, conn, bystander)

	svc, err := NewService(ServiceParams{
		Runner:       dbpkg.NewWithConn(conn),
		ProductRepo:  products.NewRepository(conn),
		LocationRepo: locations.NewRepository(conn),
		OrderRepo:    orders.NewRepository(conn),
		TransferRepo: transfers.NewRepository(conn),
		AuditRepo:    audit.NewRepository(conn),
	})
	require.NoError(t, err)

	require.NoError(t, svc.DeleteAllData(context.Background(), victim))

	counts := map[string]int64{}
	for _, table := range []string{"products", "locations", "stock_levels", "transfers", "orders", "order_items", "audit_logs"} {
		var n int64
		require.NoError(t, conn.Table(table).Count(&n).Error)
		counts[table] = n
	}
	// the bystander keeps exactly one row per table
	for table, n := range counts {
		assert.EqualValues(t, 1, n, "table %s", table)
	}

	var leftover int64
	require.NoError(t, conn.Model(&models.Product{}).Where("user_id = ?", victim).Count(&leftover).Error)
	assert.EqualValues(t, 0, leftover)
}

func TestNewServiceRequiresDependencies(t *testing.T) {
	_, err := NewService(ServiceParams{})
	require.Error(t, err)
}
