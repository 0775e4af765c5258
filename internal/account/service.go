package account

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/dmarrero/stockpilot-backend/internal/audit"
	"github.com/dmarrero/stockpilot-backend/internal/locations"
	"github.com/dmarrero/stockpilot-backend/internal/orders"
	"github.com/dmarrero/stockpilot-backend/internal/products"
	"github.com/dmarrero/stockpilot-backend/internal/transfers"
	"github.com/dmarrero/stockpilot-backend/pkg/db/models"
	pkgerrors "github.com/dmarrero/stockpilot-backend/pkg/errors"
	"github.com/dmarrero/stockpilot-backend/pkg/logger"
)

// Service wipes a tenant's operational data while keeping the account itself.
type Service interface {
	DeleteAllData(ctx context.Context, userID uuid.UUID) error
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type service struct {
	runner    txRunner
	products  *products.Repository
	locations *locations.Repository
	orders    *orders.Repository
	transfers *transfers.Repository
	audit     *audit.Repository
	logg      *logger.Logger
}

// ServiceParams bundles the dependencies required to build the account service.
type ServiceParams struct {
	Runner       txRunner
	ProductRepo  *products.Repository
	LocationRepo *locations.Repository
	OrderRepo    *orders.Repository
	TransferRepo *transfers.Repository
	AuditRepo    *audit.Repository
	Logger       *logger.Logger
}

// NewService constructs the account service with the provided dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Runner == nil {
		return nil, fmt.Errorf("tx runner is required")
	}
	if params.ProductRepo == nil {
		return nil, fmt.Errorf("product repository is required")
	}
	if params.LocationRepo == nil {
		return nil, fmt.Errorf("location repository is required")
	}
	if params.OrderRepo == nil {
		return nil, fmt.Errorf("order repository is required")
	}
	if params.TransferRepo == nil {
		return nil, fmt.Errorf("transfer repository is required")
	}
	if params.AuditRepo == nil {
		return nil, fmt.Errorf("audit repository is required")
	}
	return &service{
		runner:    params.Runner,
		products:  params.ProductRepo,
		locations: params.LocationRepo,
		orders:    params.OrderRepo,
		transfers: params.TransferRepo,
		audit:     params.AuditRepo,
		logg:      params.Logger,
	}, nil
}

// DeleteAllData removes every transfer, order, product, stock level, location,
// and audit entry belonging to the tenant in one transaction. The user row and
// its credentials stay.
func (s *service) DeleteAllData(ctx context.Context, userID uuid.UUID) error {
	err := s.runner.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.transfers.WithTx(tx).DeleteByUser(ctx, userID); err != nil {
			return fmt.Errorf("delete transfers: %w", err)
		}

		// children first: items and stock levels do not cascade everywhere
		orderIDs := tx.Model(&models.Order{}).Select("id").Where("user_id = ?", userID)
		if err := tx.WithContext(ctx).Where("order_id IN (?)", orderIDs).Delete(&models.OrderItem{}).Error; err != nil {
			return fmt.Errorf("delete order items: %w", err)
		}
		if err := s.orders.WithTx(tx).DeleteByUser(ctx, userID); err != nil {
			return fmt.Errorf("delete orders: %w", err)
		}

		productIDs := tx.Model(&models.Product{}).Select("id").Where("user_id = ?", userID)
		if err := tx.WithContext(ctx).Where("product_id IN (?)", productIDs).Delete(&models.StockLevel{}).Error; err != nil {
			return fmt.Errorf("delete stock levels: %w", err)
		}
		if err := s.products.WithTx(tx).DeleteByUser(ctx, userID); err != nil {
			return fmt.Errorf("delete products: %w", err)
		}

		if err := s.locations.WithTx(tx).DeleteByUser(ctx, userID); err != nil {
			return fmt.Errorf("delete locations: %w", err)
		}
		if err := s.audit.WithTx(tx).DeleteByUser(ctx, userID); err != nil {
			return fmt.Errorf("delete audit logs: %w", err)
		}
		return nil
	})
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete account data")
	}
	if s.logg != nil {
		s.logg.Info(s.logg.WithTenantID(ctx, userID.String()), "account data deleted")
	}
	return nil
}
