package products

import (
	"context"
	"errors"
	"fmt"
	"strings"

	dbpkg "github.com/dmarrero/stockpilot-backend/pkg/db"
	"github.com/dmarrero/stockpilot-backend/pkg/db/models"
	pkgerrors "github.com/dmarrero/stockpilot-backend/pkg/errors"
	"github.com/dmarrero/stockpilot-backend/pkg/logger"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Service defines the catalog operations exposed to controllers.
type Service interface {
	Create(ctx context.Context, userID uuid.UUID, req CreateRequest) (*View, error)
	Update(ctx context.Context, userID, productID uuid.UUID, req UpdateRequest) (*View, error)
	Delete(ctx context.Context, userID, productID uuid.UUID) error
	Get(ctx context.Context, userID, productID uuid.UUID) (*View, error)
	List(ctx context.Context, userID uuid.UUID) ([]View, error)
}

type repository interface {
	Create(ctx context.Context, product *models.Product) (*models.Product, error)
	Update(ctx context.Context, product *models.Product) (*models.Product, error)
	Delete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Product, error)
}

type levelsRepository interface {
	LevelsForProduct(ctx context.Context, productID uuid.UUID) ([]models.StockLevel, error)
}

type service struct {
	repo   repository
	levels levelsRepository
	logg   *logger.Logger
}

// ServiceParams bundles the dependencies required to build a product service.
type ServiceParams struct {
	Repo       repository
	LevelsRepo levelsRepository
	Logger     *logger.Logger
}

// NewService constructs a product service with the provided dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("product repository is required")
	}
	if params.LevelsRepo == nil {
		return nil, fmt.Errorf("stock level repository is required")
	}
	return &service{repo: params.Repo, levels: params.LevelsRepo, logg: params.Logger}, nil
}

func (s *service) Create(ctx context.Context, userID uuid.UUID, req CreateRequest) (*View, error) {
	if req.Price.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "price cannot be negative")
	}

	product := &models.Product{
		UserID:        userID,
		SKU:           strings.TrimSpace(req.SKU),
		Name:          strings.TrimSpace(req.Name),
		Description:   req.Description,
		Price:         req.Price,
		MinStockLevel: req.MinStockLevel,
	}
	created, err := s.repo.Create(ctx, product)
	if err != nil {
		if dbpkg.IsUniqueViolation(err, "idx_products_user_sku") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "sku already in use")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create product")
	}

	view := FromModel(created)
	return &view, nil
}

func (s *service) Update(ctx context.Context, userID, productID uuid.UUID, req UpdateRequest) (*View, error) {
	if req.Price.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "price cannot be negative")
	}

	product, err := s.owned(ctx, userID, productID)
	if err != nil {
		return nil, err
	}

	product.SKU = strings.TrimSpace(req.SKU)
	product.Name = strings.TrimSpace(req.Name)
	product.Description = req.Description
	product.Price = req.Price
	product.MinStockLevel = req.MinStockLevel

	updated, err := s.repo.Update(ctx, product)
	if err != nil {
		if dbpkg.IsUniqueViolation(err, "idx_products_user_sku") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "sku already in use")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update product")
	}

	return s.hydrate(ctx, updated)
}

func (s *service) Delete(ctx context.Context, userID, productID uuid.UUID) error {
	if _, err := s.owned(ctx, userID, productID); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, productID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete product")
	}
	return nil
}

func (s *service) Get(ctx context.Context, userID, productID uuid.UUID) (*View, error) {
	product, err := s.owned(ctx, userID, productID)
	if err != nil {
		return nil, err
	}
	return s.hydrate(ctx, product)
}

func (s *service) List(ctx context.Context, userID uuid.UUID) ([]View, error) {
	rows, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list products")
	}
	views := make([]View, 0, len(rows))
	for i := range rows {
		views = append(views, FromModel(&rows[i]))
	}
	return views, nil
}

// owned loads the product and verifies tenant ownership. Products belonging to
// another tenant read as not found.
func (s *service) owned(ctx context.Context, userID, productID uuid.UUID) (*models.Product, error) {
	product, err := s.repo.FindByID(ctx, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load product")
	}
	if product.UserID != userID {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}
	return product, nil
}

func (s *service) hydrate(ctx context.Context, product *models.Product) (*View, error) {
	levels, err := s.levels.LevelsForProduct(ctx, product.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load stock levels")
	}
	product.StockLevels = levels
	view := FromModel(product)
	return &view, nil
}
