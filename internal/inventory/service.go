package inventory

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/dmarrero/stockpilot-backend/internal/audit"
	"github.com/dmarrero/stockpilot-backend/internal/locations"
	"github.com/dmarrero/stockpilot-backend/internal/orders"
	"github.com/dmarrero/stockpilot-backend/internal/products"
	"github.com/dmarrero/stockpilot-backend/internal/routing"
	"github.com/dmarrero/stockpilot-backend/internal/transfers"
	"github.com/dmarrero/stockpilot-backend/pkg/db/models"
	"github.com/dmarrero/stockpilot-backend/pkg/enums"
	pkgerrors "github.com/dmarrero/stockpilot-backend/pkg/errors"
	"github.com/dmarrero/stockpilot-backend/pkg/logger"
	"github.com/dmarrero/stockpilot-backend/pkg/metrics"
	"github.com/dmarrero/stockpilot-backend/pkg/outbox"
)

// Service is the stock ledger: every quantity mutation flows through one of
// these operations, each a single transaction covering the guard, the counter
// write, the side records, the audit append, and the outbox event.
type Service interface {
	AdjustStock(ctx context.Context, userID uuid.UUID, actor string, req AdjustRequest) (*AdjustResult, error)
	Sell(ctx context.Context, userID uuid.UUID, actor string, req SellRequest) (*SellResult, error)
	Transfer(ctx context.Context, userID uuid.UUID, actor string, req TransferRequest) (*TransferResult, error)
	ProcessExternalSale(ctx context.Context, req ExternalSaleRequest) (*ExternalSaleResult, error)
	RouteOrder(ctx context.Context, userID uuid.UUID, req RouteRequest) (*RouteResult, error)
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type dedupeStore interface {
	SetNX(ctx context.Context, key string, value any, ttl time.Duration) (bool, error)
	Del(ctx context.Context, keys ...string) error
	IdempotencyKey(scope, id string) string
}

type eventEmitter interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

type service struct {
	runner    txRunner
	stock     *Repository
	products  *products.Repository
	locations *locations.Repository
	orders    *orders.Repository
	transfers *transfers.Repository
	audit     *audit.Repository
	events    eventEmitter
	dedupe    dedupeStore
	dedupeTTL time.Duration
	metrics   *metrics.LedgerMetrics
	logg      *logger.Logger
}

// ServiceParams bundles the dependencies required to build the ledger service.
type ServiceParams struct {
	Runner        txRunner
	StockRepo     *Repository
	ProductRepo   *products.Repository
	LocationRepo  *locations.Repository
	OrderRepo     *orders.Repository
	TransferRepo  *transfers.Repository
	AuditRepo     *audit.Repository
	Events        eventEmitter
	Dedupe        dedupeStore
	DedupeTTL     time.Duration
	LedgerMetrics *metrics.LedgerMetrics
	Logger        *logger.Logger
}

// NewService constructs the ledger service with the provided dependencies.
// Events, Dedupe, and LedgerMetrics are optional.
func NewService(params ServiceParams) (Service, error) {
	if params.Runner == nil {
		return nil, fmt.Errorf("tx runner is required")
	}
	if params.StockRepo == nil {
		return nil, fmt.Errorf("stock repository is required")
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
		stock:     params.StockRepo,
		products:  params.ProductRepo,
		locations: params.LocationRepo,
		orders:    params.OrderRepo,
		transfers: params.TransferRepo,
		audit:     params.AuditRepo,
		events:    params.Events,
		dedupe:    params.Dedupe,
		dedupeTTL: params.DedupeTTL,
		metrics:   params.LedgerMetrics,
		logg:      params.Logger,
	}, nil
}

func (s *service) AdjustStock(ctx context.Context, userID uuid.UUID, actor string, req AdjustRequest) (*AdjustResult, error) {
	if req.Quantity < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity cannot be negative")
	}

	start := time.Now()
	var result *AdjustResult
	err := s.runner.WithTx(ctx, func(tx *gorm.DB) error {
		product, err := s.ownedProduct(ctx, tx, userID, req.ProductID)
		if err != nil {
			return err
		}
		location, err := s.ownedLocation(ctx, tx, userID, req.LocationID)
		if err != nil {
			return err
		}

		if err := s.stock.WithTx(tx).SetQuantity(ctx, product.ID, location.ID, req.Quantity); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "set stock level")
		}

		details := fmt.Sprintf("Stock set to %d at %s", req.Quantity, location.Name)
		if err := s.appendAudit(ctx, tx, userID, actor, enums.AuditActionManualUpdate, product.ID, &location.ID, details); err != nil {
			return err
		}

		if err := s.emit(ctx, tx, enums.EventStockAdjusted, userID, actor, map[string]any{
			"productId":  product.ID,
			"locationId": location.ID,
			"quantity":   req.Quantity,
		}); err != nil {
			return err
		}

		result = &AdjustResult{ProductID: product.ID, LocationID: location.ID, Quantity: req.Quantity}
		return nil
	})
	s.observe("adjust_stock", start, err)
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *service) Sell(ctx context.Context, userID uuid.UUID, actor string, req SellRequest) (*SellResult, error) {
	if req.Quantity <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be a positive integer")
	}

	start := time.Now()
	var result *SellResult
	err := s.runner.WithTx(ctx, func(tx *gorm.DB) error {
		product, err := s.ownedProduct(ctx, tx, userID, req.ProductID)
		if err != nil {
			return err
		}

		stock := s.stock.WithTx(tx)
		locationID := req.LocationID
		if locationID == uuid.Nil {
			level, err := stock.LevelWithMostStock(ctx, product.ID, req.Quantity)
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return pkgerrors.New(pkgerrors.CodeInsufficientStock, "insufficient stock")
				}
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "pick sale location")
			}
			locationID = level.LocationID
		}
		location, err := s.ownedLocation(ctx, tx, userID, locationID)
		if err != nil {
			return err
		}

		ok, err := stock.DecrementIfAvailable(ctx, product.ID, location.ID, req.Quantity)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "decrement stock")
		}
		if !ok {
			return pkgerrors.New(pkgerrors.CodeInsufficientStock, "insufficient stock")
		}

		price := product.Price
		if req.UnitPrice != nil {
			price = *req.UnitPrice
		}
		total := price.Mul(decimal.NewFromInt(int64(req.Quantity)))

		order := &models.Order{
			ID:           uuid.New(),
			UserID:       userID,
			CustomerName: orders.WalkInCustomer,
			Status:       enums.OrderStatusFulfilled,
			Total:        total,
			Items: []models.OrderItem{{
				ID:        uuid.New(),
				ProductID: product.ID,
				Quantity:  req.Quantity,
				Price:     price,
			}},
		}
		if _, err := s.orders.WithTx(tx).Create(ctx, order); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create order")
		}

		details := fmt.Sprintf("Sold %d units", req.Quantity)
		if err := s.appendAudit(ctx, tx, userID, actor, enums.AuditActionSale, product.ID, &location.ID, details); err != nil {
			return err
		}

		if err := s.emit(ctx, tx, enums.EventStockSold, userID, actor, map[string]any{
			"productId":  product.ID,
			"locationId": location.ID,
			"quantity":   req.Quantity,
			"orderId":    order.ID,
		}); err != nil {
			return err
		}

		remaining, _, err := stock.Quantity(ctx, product.ID, location.ID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "read stock level")
		}

		result = &SellResult{OrderID: order.ID, NewQuantity: remaining, Total: total}
		return nil
	})
	s.observe("sell", start, err)
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *service) Transfer(ctx context.Context, userID uuid.UUID, actor string, req TransferRequest) (*TransferResult, error) {
	if req.Quantity <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be a positive integer")
	}
	if req.FromLocationID == req.ToLocationID {
		return nil, pkgerrors.New(pkgerrors.CodeInvalidTransfer, "source and destination must differ")
	}

	start := time.Now()
	var result *TransferResult
	err := s.runner.WithTx(ctx, func(tx *gorm.DB) error {
		product, err := s.ownedProduct(ctx, tx, userID, req.ProductID)
		if err != nil {
			return err
		}
		from, err := s.ownedLocation(ctx, tx, userID, req.FromLocationID)
		if err != nil {
			return err
		}
		to, err := s.ownedLocation(ctx, tx, userID, req.ToLocationID)
		if err != nil {
			return err
		}

		stock := s.stock.WithTx(tx)
		ok, err := stock.DecrementIfAvailable(ctx, product.ID, from.ID, req.Quantity)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "decrement source stock")
		}
		if !ok {
			return pkgerrors.New(pkgerrors.CodeInsufficientStock, "insufficient stock")
		}
		if err := stock.IncrementOrCreate(ctx, product.ID, to.ID, req.Quantity); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "increment destination stock")
		}

		transfer := &models.Transfer{
			ID:             uuid.New(),
			UserID:         userID,
			ProductID:      product.ID,
			FromLocationID: from.ID,
			ToLocationID:   to.ID,
			Quantity:       req.Quantity,
			Status:         enums.TransferStatusCompleted,
		}
		if _, err := s.transfers.WithTx(tx).Create(ctx, transfer); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create transfer")
		}

		details := fmt.Sprintf("Moved %d from %s to %s", req.Quantity, from.Name, to.Name)
		if err := s.appendAudit(ctx, tx, userID, actor, enums.AuditActionTransfer, product.ID, &from.ID, details); err != nil {
			return err
		}

		if err := s.emit(ctx, tx, enums.EventStockTransferred, userID, actor, map[string]any{
			"productId":      product.ID,
			"fromLocationId": from.ID,
			"toLocationId":   to.ID,
			"quantity":       req.Quantity,
			"transferId":     transfer.ID,
		}); err != nil {
			return err
		}

		fromQty, _, err := stock.Quantity(ctx, product.ID, from.ID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "read source stock")
		}
		toQty, _, err := stock.Quantity(ctx, product.ID, to.ID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "read destination stock")
		}

		result = &TransferResult{TransferID: transfer.ID, FromQuantity: fromQty, ToQuantity: toQty}
		return nil
	})
	s.observe("transfer", start, err)
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *service) ProcessExternalSale(ctx context.Context, req ExternalSaleRequest) (*ExternalSaleResult, error) {
	if req.Quantity <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be a positive integer")
	}

	var dedupeKey string
	if s.dedupe != nil {
		dedupeKey = s.dedupe.IdempotencyKey("external_sale", req.ExternalID)
		fresh, err := s.dedupe.SetNX(ctx, dedupeKey, "1", s.dedupeTTL)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check external sale replay")
		}
		if !fresh {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "external sale already processed")
		}
	}

	start := time.Now()
	var result *ExternalSaleResult
	err := s.runner.WithTx(ctx, func(tx *gorm.DB) error {
		product, err := s.products.WithTx(tx).FindAnyBySKU(ctx, req.SKU)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "unknown sku")
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "resolve sku")
		}

		location, err := s.ownedLocation(ctx, tx, product.UserID, req.LocationID)
		if err != nil {
			return err
		}

		stock := s.stock.WithTx(tx)
		ok, err := stock.DecrementIfAvailable(ctx, product.ID, location.ID, req.Quantity)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "decrement stock")
		}
		if !ok {
			return pkgerrors.New(pkgerrors.CodeInsufficientStock, "insufficient stock")
		}

		details := fmt.Sprintf("Sold %d units (Ext: %s)", req.Quantity, req.ExternalID)
		if err := s.appendAudit(ctx, tx, product.UserID, audit.SystemWebhookActor, enums.AuditActionSale, product.ID, &location.ID, details); err != nil {
			return err
		}

		if err := s.emit(ctx, tx, enums.EventStockSold, product.UserID, audit.SystemWebhookActor, map[string]any{
			"productId":  product.ID,
			"locationId": location.ID,
			"quantity":   req.Quantity,
			"externalId": req.ExternalID,
		}); err != nil {
			return err
		}

		remaining, _, err := stock.Quantity(ctx, product.ID, location.ID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "read stock level")
		}

		result = &ExternalSaleResult{Success: true, NewQuantity: remaining}
		return nil
	})
	s.observe("external_sale", start, err)
	if err != nil {
		// The marker must not outlive a rolled-back delivery, or the
		// storefront's redelivery would be rejected as a replay.
		if s.dedupe != nil && dedupeKey != "" {
			if delErr := s.dedupe.Del(ctx, dedupeKey); delErr != nil && s.logg != nil {
				logCtx := s.logg.WithField(ctx, "externalId", req.ExternalID)
				s.logg.Warn(logCtx, "failed to release external sale dedupe marker")
			}
		}
		return nil, err
	}
	return result, nil
}

// RouteOrder picks the fulfillment location for the order's first line item.
// Routing reads a stock snapshot; it does not reserve or mutate anything.
func (s *service) RouteOrder(ctx context.Context, userID uuid.UUID, req RouteRequest) (*RouteResult, error) {
	if len(req.Items) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "at least one item is required")
	}
	item := req.Items[0]
	if item.Quantity <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be a positive integer")
	}

	product, err := s.products.FindByID(ctx, item.ProductID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load product")
	}
	if product.UserID != userID {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}

	pairs, err := s.stock.CandidatesForProduct(ctx, userID, product.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load candidates")
	}

	candidates := make([]routing.Candidate, 0, len(pairs))
	byID := make(map[uuid.UUID]models.Location, len(pairs))
	for _, p := range pairs {
		candidates = append(candidates, routing.Candidate{Location: p.Location, Quantity: p.Quantity})
		byID[p.Location.ID] = p.Location
	}

	dest := routing.Destination{Latitude: req.Latitude, Longitude: req.Longitude}
	locationID, ok := routing.Route(dest, item.Quantity, candidates)
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeOutOfStock, "no location can fulfill the order")
	}

	return &RouteResult{LocationID: locationID, LocationName: byID[locationID].Name}, nil
}

func (s *service) ownedProduct(ctx context.Context, tx *gorm.DB, userID, productID uuid.UUID) (*models.Product, error) {
	product, err := s.products.WithTx(tx).FindByID(ctx, productID)
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

func (s *service) ownedLocation(ctx context.Context, tx *gorm.DB, userID, locationID uuid.UUID) (*models.Location, error) {
	location, err := s.locations.WithTx(tx).FindByID(ctx, locationID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "location not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load location")
	}
	if location.UserID != userID {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "location not found")
	}
	return location, nil
}

func (s *service) appendAudit(ctx context.Context, tx *gorm.DB, userID uuid.UUID, actor string, action enums.AuditAction, productID uuid.UUID, locationID *uuid.UUID, details string) error {
	entry := &models.AuditLog{
		ID:         uuid.New(),
		UserID:     userID,
		ActorID:    actor,
		Action:     action,
		ProductID:  productID,
		LocationID: locationID,
		Details:    details,
	}
	if err := s.audit.WithTx(tx).Insert(ctx, entry); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "append audit log")
	}
	return nil
}

func (s *service) emit(ctx context.Context, tx *gorm.DB, eventType enums.OutboxEventType, userID uuid.UUID, actor string, data map[string]any) error {
	if s.events == nil {
		return nil
	}
	productID, _ := data["productId"].(uuid.UUID)
	err := s.events.Emit(ctx, tx, outbox.DomainEvent{
		EventType:     eventType,
		AggregateType: enums.AggregateProduct,
		AggregateID:   productID,
		Actor:         &outbox.ActorRef{UserID: userID, Actor: actor},
		Data:          data,
		Version:       1,
	})
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "queue outbox event")
	}
	return nil
}

func (s *service) observe(operation string, start time.Time, err error) {
	if s.metrics == nil {
		return
	}
	s.metrics.ObserveDuration(operation, time.Since(start))
	if err != nil {
		reason := "internal"
		if typed := pkgerrors.As(err); typed != nil {
			reason = string(typed.Code())
		}
		s.metrics.IncFailure(operation, reason)
		return
	}
	s.metrics.IncSuccess(operation)
}
