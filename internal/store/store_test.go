package store

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/oneedge/orderengine/internal/domain"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(":memory:")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return s
}

func sampleOrder(id string) *domain.Order {
	return &domain.Order{
		ID:            id,
		Type:          domain.OrderTypeTWAP,
		Maker:         "0xMaker",
		MakerAsset:    "0xWETH",
		TakerAsset:    "0xUSDC",
		Size:          decimal.NewFromFloat(1.0),
		RemainingSize: decimal.NewFromFloat(1.0),
		Params:        domain.Params{Amount: decimal.NewFromFloat(1.0)},
		Status:        domain.StatusPending,
		CreatedAt:     time.Now(),
		StrategyState: map[string]string{},
	}
}

func TestSaveAndGet(t *testing.T) {
	s := newTestStore(t)
	o := sampleOrder("order-1")

	if err := s.Save(o); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := s.Get("order-1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got == nil {
		t.Fatal("expected order, got nil")
	}
	if !got.Size.Equal(o.Size) {
		t.Fatalf("size mismatch: got %s want %s", got.Size, o.Size)
	}
	if got.Status != domain.StatusPending {
		t.Fatalf("status mismatch: got %s", got.Status)
	}
}

func TestGetMissing(t *testing.T) {
	s := newTestStore(t)
	got, err := s.Get("does-not-exist")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got != nil {
		t.Fatalf("expected nil, got %+v", got)
	}
}

func TestGetActiveOrdersByStatus(t *testing.T) {
	s := newTestStore(t)

	active := sampleOrder("active-1")
	active.Status = domain.StatusActive
	cancelled := sampleOrder("cancelled-1")
	cancelled.Status = domain.StatusCancelled

	if err := s.Save(active); err != nil {
		t.Fatal(err)
	}
	if err := s.Save(cancelled); err != nil {
		t.Fatal(err)
	}

	got, err := s.GetActive()
	if err != nil {
		t.Fatalf("GetActive: %v", err)
	}
	if len(got) != 1 || got[0].ID != "active-1" {
		t.Fatalf("expected only active-1, got %+v", got)
	}
}

func TestAppendEventPreservesOrder(t *testing.T) {
	s := newTestStore(t)
	o := sampleOrder("order-evt")
	if err := s.Save(o); err != nil {
		t.Fatal(err)
	}

	for i, kind := range []domain.EventKind{domain.EventPending, domain.EventSubmitted, domain.EventCompleted} {
		evt := &domain.OrderEvent{
			OrderID:      o.ID,
			Kind:         kind,
			Status:       domain.StatusActive,
			Timestamp:    time.Now().Add(time.Duration(i) * time.Millisecond),
			FilledAmount: decimal.Zero,
		}
		if err := s.AppendEvent(evt); err != nil {
			t.Fatalf("AppendEvent %d: %v", i, err)
		}
	}

	events, err := s.Events(o.ID)
	if err != nil {
		t.Fatalf("Events: %v", err)
	}
	if len(events) != 3 {
		t.Fatalf("expected 3 events, got %d", len(events))
	}
	if events[0].Kind != domain.EventPending || events[2].Kind != domain.EventCompleted {
		t.Fatalf("events out of order: %+v", events)
	}
}

func TestMarketDataCacheTTL(t *testing.T) {
	s := newTestStore(t)

	if err := s.CacheMarketData("k1", "v1", time.Hour); err != nil {
		t.Fatalf("cache: %v", err)
	}
	v, ok := s.GetMarketDataCache("k1")
	if !ok || v != "v1" {
		t.Fatalf("expected cache hit, got %q %v", v, ok)
	}

	if err := s.CacheMarketData("k2", "v2", -time.Hour); err != nil {
		t.Fatalf("cache: %v", err)
	}
	if _, ok := s.GetMarketDataCache("k2"); ok {
		t.Fatal("expected expired cache miss")
	}
}
