package locations

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/dmarrero/stockpilot-backend/pkg/db/models"
	"github.com/dmarrero/stockpilot-backend/pkg/enums"
	pkgerrors "github.com/dmarrero/stockpilot-backend/pkg/errors"
	"github.com/dmarrero/stockpilot-backend/pkg/logger"
	"github.com/dmarrero/stockpilot-backend/pkg/maps"
	"github.com/google/uuid"
)

// DefaultLocationName is seeded for tenants that have no locations yet so
// stock operations always have somewhere to land.
const DefaultLocationName = "Main Warehouse"

// CreateRequest carries the payload for a new location. Address is geocoded
// into coordinates when they are not given explicitly.
type CreateRequest struct {
	Name      string   `json:"name" validate:"required,min=1,max=200"`
	Kind      string   `json:"kind" validate:"required"`
	Address   *string  `json:"address,omitempty" validate:"omitempty,min=3,max=300"`
	Latitude  *float64 `json:"latitude,omitempty" validate:"omitempty,gte=-90,lte=90"`
	Longitude *float64 `json:"longitude,omitempty" validate:"omitempty,gte=-180,lte=180"`
}

// View is the public representation of a location.
type View struct {
	ID        uuid.UUID          `json:"id"`
	Name      string             `json:"name"`
	Kind      enums.LocationKind `json:"kind"`
	Latitude  *float64           `json:"latitude,omitempty"`
	Longitude *float64           `json:"longitude,omitempty"`
	CreatedAt time.Time          `json:"createdAt"`
}

// FromModel maps the persistence model onto the API view.
func FromModel(l *models.Location) View {
	return View{
		ID:        l.ID,
		Name:      l.Name,
		Kind:      l.Kind,
		Latitude:  l.Latitude,
		Longitude: l.Longitude,
		CreatedAt: l.CreatedAt,
	}
}

// Service defines the location operations exposed to controllers.
type Service interface {
	Create(ctx context.Context, userID uuid.UUID, req CreateRequest) (*View, error)
	List(ctx context.Context, userID uuid.UUID) ([]View, error)
}

type repository interface {
	Create(ctx context.Context, location *models.Location) (*models.Location, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Location, error)
	CountByUser(ctx context.Context, userID uuid.UUID) (int64, error)
}

type geocoder interface {
	Geocode(ctx context.Context, address string) (*maps.GeocodeResult, error)
}

type service struct {
	repo     repository
	geocoder geocoder
	logg     *logger.Logger
}

// ServiceParams bundles the dependencies required to build a location service.
// Geocoder is optional; without one, address-only locations are stored with no
// coordinates.
type ServiceParams struct {
	Repo     repository
	Geocoder geocoder
	Logger   *logger.Logger
}

// NewService constructs a location service with the provided dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("location repository is required")
	}
	return &service{repo: params.Repo, geocoder: params.Geocoder, logg: params.Logger}, nil
}

func (s *service) Create(ctx context.Context, userID uuid.UUID, req CreateRequest) (*View, error) {
	kind, err := enums.ParseLocationKind(strings.ToUpper(strings.TrimSpace(req.Kind)))
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "kind must be WAREHOUSE or STORE")
	}
	if (req.Latitude == nil) != (req.Longitude == nil) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "latitude and longitude must be set together")
	}

	latitude, longitude := req.Latitude, req.Longitude
	if latitude == nil && req.Address != nil && s.geocoder != nil {
		resolved, err := s.geocoder.Geocode(ctx, *req.Address)
		if err != nil {
			return nil, err
		}
		latitude = &resolved.Location.Latitude
		longitude = &resolved.Location.Longitude
		if s.logg != nil {
			s.logg.Info(s.logg.WithFields(ctx, map[string]any{
				"address": resolved.FormattedAddress,
			}), "geocoded location address")
		}
	}

	location := &models.Location{
		UserID:    userID,
		Name:      strings.TrimSpace(req.Name),
		Kind:      kind,
		Latitude:  latitude,
		Longitude: longitude,
	}
	created, err := s.repo.Create(ctx, location)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create location")
	}

	view := FromModel(created)
	return &view, nil
}

// List returns the tenant's locations, seeding the default warehouse when the
// tenant has none yet.
func (s *service) List(ctx context.Context, userID uuid.UUID) ([]View, error) {
	count, err := s.repo.CountByUser(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "count locations")
	}
	if count == 0 {
		seeded, err := s.repo.Create(ctx, &models.Location{
			UserID: userID,
			Name:   DefaultLocationName,
			Kind:   enums.LocationKindWarehouse,
		})
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "seed default location")
		}
		if s.logg != nil {
			s.logg.Info(s.logg.WithLocationID(ctx, seeded.ID.String()), "seeded default location")
		}
	}

	rows, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list locations")
	}
	views := make([]View, 0, len(rows))
	for i := range rows {
		views = append(views, FromModel(&rows[i]))
	}
	return views, nil
}
