package locations

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmarrero/stockpilot-backend/pkg/db/models"
	"github.com/dmarrero/stockpilot-backend/pkg/enums"
	pkgerrors "github.com/dmarrero/stockpilot-backend/pkg/errors"
	"github.com/dmarrero/stockpilot-backend/pkg/maps"
)

type fakeLocationRepo struct {
	rows []models.Location
}

func (f *fakeLocationRepo) Create(ctx context.Context, location *models.Location) (*models.Location, error) {
	if location.ID == uuid.Nil {
		location.ID = uuid.New()
	}
	f.rows = append(f.rows, *location)
	return location, nil
}

func (f *fakeLocationRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Location, error) {
	out := []models.Location{}
	for _, row := range f.rows {
		if row.UserID == userID {
			out = append(out, row)
		}
	}
	return out, nil
}

func (f *fakeLocationRepo) CountByUser(ctx context.Context, userID uuid.UUID) (int64, error) {
	rows, _ := f.ListByUser(ctx, userID)
	return int64(len(rows)), nil
}

type fakeGeocoder struct {
	calls   []string
	results map[string]*maps.GeocodeResult
}

func (f *fakeGeocoder) Geocode(ctx context.Context, address string) (*maps.GeocodeResult, error) {
	f.calls = append(f.calls, address)
	if result, ok := f.results[address]; ok {
		return result, nil
	}
	return nil, pkgerrors.New(pkgerrors.CodeNotFound, "address could not be resolved")
}

func ptr[T any](v T) *T { return &v }

func TestCreateGeocodesAddressWhenCoordinatesMissing(t *testing.T) {
	repo := &fakeLocationRepo{}
	geo := &fakeGeocoder{results: map[string]*maps.GeocodeResult{
		"1 Harbor Way": {
			FormattedAddress: "1 Harbor Way, Portsville",
			Location:         maps.LatLng{Latitude: 40.7, Longitude: -74.0},
		},
	}}
	svc, err := NewService(ServiceParams{Repo: repo, Geocoder: geo})
	require.NoError(t, err)

	view, err := svc.Create(context.Background(), uuid.New(), CreateRequest{
		Name:    "Harbor Store",
		Kind:    "store",
		Address: ptr("1 Harbor Way"),
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"1 Harbor Way"}, geo.calls)
	require.NotNil(t, view.Latitude)
	require.NotNil(t, view.Longitude)
	assert.InDelta(t, 40.7, *view.Latitude, 0.0001)
	assert.InDelta(t, -74.0, *view.Longitude, 0.0001)
	assert.Equal(t, enums.LocationKindStore, view.Kind)
}

func TestCreateSkipsGeocodingWhenCoordinatesProvided(t *testing.T) {
	repo := &fakeLocationRepo{}
	geo := &fakeGeocoder{}
	svc, err := NewService(ServiceParams{Repo: repo, Geocoder: geo})
	require.NoError(t, err)

	view, err := svc.Create(context.Background(), uuid.New(), CreateRequest{
		Name:      "Pinned Warehouse",
		Kind:      "WAREHOUSE",
		Address:   ptr("ignored because coordinates win"),
		Latitude:  ptr(51.5),
		Longitude: ptr(-0.12),
	})
	require.NoError(t, err)

	assert.Empty(t, geo.calls)
	assert.InDelta(t, 51.5, *view.Latitude, 0.0001)
}

func TestCreateWithoutGeocoderStoresNoCoordinates(t *testing.T) {
	repo := &fakeLocationRepo{}
	svc, err := NewService(ServiceParams{Repo: repo})
	require.NoError(t, err)

	view, err := svc.Create(context.Background(), uuid.New(), CreateRequest{
		Name:    "Offline Depot",
		Kind:    "WAREHOUSE",
		Address: ptr("somewhere without a resolver"),
	})
	require.NoError(t, err)
	assert.Nil(t, view.Latitude)
	assert.Nil(t, view.Longitude)
}

func TestCreateSurfacesGeocodeFailure(t *testing.T) {
	svc, err := NewService(ServiceParams{Repo: &fakeLocationRepo{}, Geocoder: &fakeGeocoder{}})
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), uuid.New(), CreateRequest{
		Name:    "Ghost Store",
		Kind:    "STORE",
		Address: ptr("no such place"),
	})
	require.Error(t, err)
	coded := pkgerrors.As(err)
	require.NotNil(t, coded)
	assert.Equal(t, pkgerrors.CodeNotFound, coded.Code())
}

func TestCreateRejectsUnknownKind(t *testing.T) {
	svc, err := NewService(ServiceParams{Repo: &fakeLocationRepo{}})
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), uuid.New(), CreateRequest{Name: "X", Kind: "garage"})
	require.Error(t, err)
	coded := pkgerrors.As(err)
	require.NotNil(t, coded)
	assert.Equal(t, pkgerrors.CodeValidation, coded.Code())
}

func TestCreateRejectsHalfCoordinates(t *testing.T) {
	svc, err := NewService(ServiceParams{Repo: &fakeLocationRepo{}})
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), uuid.New(), CreateRequest{
		Name:     "Half Pin",
		Kind:     "STORE",
		Latitude: ptr(10.0),
	})
	require.Error(t, err)
	coded := pkgerrors.As(err)
	require.NotNil(t, coded)
	assert.Equal(t, pkgerrors.CodeValidation, coded.Code())
}

func TestListSeedsDefaultWarehouseOnce(t *testing.T) {
	repo := &fakeLocationRepo{}
	svc, err := NewService(ServiceParams{Repo: repo})
	require.NoError(t, err)

	userID := uuid.New()
	first, err := svc.List(context.Background(), userID)
	require.NoError(t, err)
	require.Len(t, first, 1)
	assert.Equal(t, DefaultLocationName, first[0].Name)
	assert.Equal(t, enums.LocationKindWarehouse, first[0].Kind)

	second, err := svc.List(context.Background(), userID)
	require.NoError(t, err)
	assert.Len(t, second, 1)
}
