package controllers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/dmarrero/stockpilot-backend/api/middleware"
	inventorysvc "github.com/dmarrero/stockpilot-backend/internal/inventory"
	pkgerrors "github.com/dmarrero/stockpilot-backend/pkg/errors"
)

type stubLedgerService struct {
	adjustResult *inventorysvc.AdjustResult
	adjustErr    error
	sellResult   *inventorysvc.SellResult
	sellErr      error

	lastUserID uuid.UUID
	lastActor  string
}

func (s *stubLedgerService) AdjustStock(ctx context.Context, userID uuid.UUID, actor string, req inventorysvc.AdjustRequest) (*inventorysvc.AdjustResult, error) {
	s.lastUserID = userID
	s.lastActor = actor
	return s.adjustResult, s.adjustErr
}

func (s *stubLedgerService) Sell(ctx context.Context, userID uuid.UUID, actor string, req inventorysvc.SellRequest) (*inventorysvc.SellResult, error) {
	s.lastUserID = userID
	s.lastActor = actor
	return s.sellResult, s.sellErr
}

func (s *stubLedgerService) Transfer(ctx context.Context, userID uuid.UUID, actor string, req inventorysvc.TransferRequest) (*inventorysvc.TransferResult, error) {
	return nil, nil
}

func (s *stubLedgerService) ProcessExternalSale(ctx context.Context, req inventorysvc.ExternalSaleRequest) (*inventorysvc.ExternalSaleResult, error) {
	return nil, nil
}

func (s *stubLedgerService) RouteOrder(ctx context.Context, userID uuid.UUID, req inventorysvc.RouteRequest) (*inventorysvc.RouteResult, error) {
	return nil, nil
}

func authedRequest(method, target, body string, userID uuid.UUID) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req.WithContext(middleware.WithUserID(req.Context(), userID.String()))
}

func TestStockAdjustSuccess(t *testing.T) {
	userID := uuid.New()
	productID := uuid.New()
	locationID := uuid.New()
	svc := &stubLedgerService{adjustResult: &inventorysvc.AdjustResult{
		ProductID:  productID,
		LocationID: locationID,
		Quantity:   12,
	}}
	handler := StockAdjust(svc, nil)

	body := fmt.Sprintf(`{"productId":%q,"locationId":%q,"quantity":12}`, productID, locationID)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, authedRequest(http.MethodPost, "/api/stock/adjust", body, userID))

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", resp.Code, resp.Body.String())
	}

	var envelope struct {
		Data inventorysvc.AdjustResult `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data.Quantity != 12 {
		t.Fatalf("unexpected quantity %d", envelope.Data.Quantity)
	}
	if svc.lastUserID != userID {
		t.Fatalf("service saw user %s, expected %s", svc.lastUserID, userID)
	}
	if svc.lastActor != userID.String() {
		t.Fatalf("actor should default to the acting user, got %q", svc.lastActor)
	}
}

func TestStockAdjustMissingUserContext(t *testing.T) {
	handler := StockAdjust(&stubLedgerService{}, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/stock/adjust", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", resp.Code)
	}
}

func TestSaleCreateReturnsCreated(t *testing.T) {
	userID := uuid.New()
	svc := &stubLedgerService{sellResult: &inventorysvc.SellResult{OrderID: uuid.New(), NewQuantity: 2}}
	handler := SaleCreate(svc, nil)

	body := fmt.Sprintf(`{"productId":%q,"locationId":%q,"quantity":3}`, uuid.New(), uuid.New())
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, authedRequest(http.MethodPost, "/api/sales", body, userID))

	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d: %s", resp.Code, resp.Body.String())
	}
}

func TestSaleCreateInsufficientStock(t *testing.T) {
	svc := &stubLedgerService{sellErr: pkgerrors.New(pkgerrors.CodeInsufficientStock, "not enough stock")}
	handler := SaleCreate(svc, nil)

	body := fmt.Sprintf(`{"productId":%q,"locationId":%q,"quantity":3}`, uuid.New(), uuid.New())
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, authedRequest(http.MethodPost, "/api/sales", body, uuid.New()))

	if resp.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 got %d", resp.Code)
	}
}

func TestSaleCreateRejectsInvalidBody(t *testing.T) {
	svc := &stubLedgerService{}
	handler := SaleCreate(svc, nil)

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, authedRequest(http.MethodPost, "/api/sales", `{"quantity":0}`, uuid.New()))

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}
