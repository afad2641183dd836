package strategy

import (
	"testing"

	"github.com/oneedge/orderengine/internal/domain"
)

func TestRegistryCoversEveryOrderType(t *testing.T) {
	r := NewRegistry()
	types := []domain.OrderType{
		domain.OrderTypeStopLimit,
		domain.OrderTypeChaseLimit,
		domain.OrderTypeTWAP,
		domain.OrderTypeDCA,
		domain.OrderTypeRange,
		domain.OrderTypeIceberg,
		domain.OrderTypeGridTrading,
		domain.OrderTypeMomentumReversal,
		domain.OrderTypeRangeBreakout,
	}
	for _, ty := range types {
		if _, ok := r.Lookup(ty); !ok {
			t.Fatalf("expected a strategy registered for %s", ty)
		}
	}
}

func TestRegistryRejectsUnknownType(t *testing.T) {
	r := NewRegistry()
	if _, ok := r.Lookup(domain.OrderTypeLimit); ok {
		t.Fatal("LIMIT has no strategy; expected no mapping")
	}
}
