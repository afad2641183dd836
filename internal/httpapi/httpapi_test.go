package httpapi

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/oneedge/orderengine/internal/apperrors"
	"github.com/oneedge/orderengine/internal/domain"
	"github.com/oneedge/orderengine/internal/registry"
)

type fakeRegistry struct {
	created []*domain.Order
	createErr error
	cancelErr error
}

func (f *fakeRegistry) Create(o *domain.Order) (*domain.Order, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	o.ID = "new-id"
	f.created = append(f.created, o)
	return o, nil
}

func (f *fakeRegistry) Cancel(id string) error { return f.cancelErr }

func (f *fakeRegistry) Modify(id string, patch registry.OrderPatch) (string, error) {
	return "modified-id", nil
}

func (f *fakeRegistry) Get(id string) (*domain.Order, error) { return nil, apperrors.ErrOrderNotFound }

func (f *fakeRegistry) ListByMaker(maker string) ([]*domain.Order, error) {
	return []*domain.Order{{ID: "a", Maker: maker, Status: domain.StatusActive}}, nil
}

func (f *fakeRegistry) ListActive() ([]*domain.Order, error) {
	return []*domain.Order{{ID: "a", Status: domain.StatusActive}, {ID: "b", Status: domain.StatusCompleted}}, nil
}

func TestHandleCreateReturns201(t *testing.T) {
	reg := &fakeRegistry{}
	srv := NewServer(reg)

	body, _ := json.Marshal(domain.Order{
		Type: domain.OrderTypeStopLimit,
		Size: decimal.NewFromInt(1),
	})
	req := httptest.NewRequest(http.MethodPost, "/orders", bytes.NewReader(body))
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}
	var resp map[string]string
	json.Unmarshal(w.Body.Bytes(), &resp)
	if resp["id"] != "new-id" {
		t.Fatalf("expected created id, got %v", resp)
	}
}

func TestHandleCreateReturns400OnInvalidSignature(t *testing.T) {
	reg := &fakeRegistry{createErr: apperrors.ErrSignatureInvalid}
	srv := NewServer(reg)

	body, _ := json.Marshal(domain.Order{Type: domain.OrderTypeStopLimit})
	req := httptest.NewRequest(http.MethodPost, "/orders", bytes.NewReader(body))
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}

func TestHandleCancelReturns404ForUnknownOrder(t *testing.T) {
	reg := &fakeRegistry{cancelErr: apperrors.ErrOrderNotFound}
	srv := NewServer(reg)

	req := httptest.NewRequest(http.MethodDelete, "/orders/missing", nil)
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
}

func TestHandleCancelReturns204OnSuccess(t *testing.T) {
	reg := &fakeRegistry{}
	srv := NewServer(reg)

	req := httptest.NewRequest(http.MethodDelete, "/orders/ord-1", nil)
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, req)

	if w.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", w.Code)
	}
}

func TestHandleListFiltersbyStatus(t *testing.T) {
	reg := &fakeRegistry{}
	srv := NewServer(reg)

	req := httptest.NewRequest(http.MethodGet, "/orders?status=COMPLETED", nil)
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, req)

	var orders []domain.Order
	json.Unmarshal(w.Body.Bytes(), &orders)
	if len(orders) != 1 || orders[0].ID != "b" {
		t.Fatalf("expected only the COMPLETED order, got %v", orders)
	}
}

func TestHandleModifyReturnsNewID(t *testing.T) {
	reg := &fakeRegistry{}
	srv := NewServer(reg)

	req := httptest.NewRequest(http.MethodPatch, "/orders/ord-1", bytes.NewReader([]byte(`{}`)))
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, req)

	var resp map[string]string
	json.Unmarshal(w.Body.Bytes(), &resp)
	if resp["newId"] != "modified-id" {
		t.Fatalf("expected modified-id, got %v", resp)
	}
}
