// Package priceview implements the Price View (C2): a read-only,
// non-suspending cache of the latest aggregated ticker and indicator
// series per symbol. Grounded on internal/arbitrage/engine.go's
// map[string]*WindowState + sync.RWMutex snapshot-read pattern, which
// this package generalizes from arbitrage windows to ticker symbols.
package priceview

import (
	"sync"
	"time"

	"github.com/oneedge/orderengine/internal/domain"
)

// View is the read-only market-data cache strategies evaluate against.
// getPrice never blocks: it is a pure in-memory map read, as required
// by spec §5 ("getPrice is a non-suspending memory read").
type View struct {
	mu                 sync.RWMutex
	snapshots          map[string]*domain.TickerSnapshot
	stalenessThreshold time.Duration
}

func New(stalenessThreshold time.Duration) *View {
	return &View{
		snapshots:          make(map[string]*domain.TickerSnapshot),
		stalenessThreshold: stalenessThreshold,
	}
}

// GetPrice returns the latest snapshot for a symbol, or nil if none has
// ever been written. The caller is responsible for staleness checks
// (use Fresh) since some callers (admin reads) want the last-known value
// regardless of age.
func (v *View) GetPrice(symbol string) *domain.TickerSnapshot {
	v.mu.RLock()
	defer v.mu.RUnlock()

	snap, ok := v.snapshots[symbol]
	if !ok {
		return nil
	}
	cp := *snap
	return &cp
}

// Fresh returns the snapshot only if it is not older than the configured
// staleness threshold (default 60s per spec §4.2), and a bool indicating
// freshness. Strategies requiring freshness call this rather than
// GetPrice directly.
func (v *View) Fresh(symbol string) (*domain.TickerSnapshot, bool) {
	snap := v.GetPrice(symbol)
	if snap == nil {
		return nil, false
	}
	if time.Since(snap.Timestamp) > v.stalenessThreshold {
		return snap, false
	}
	return snap, true
}

// Update is called by the collector (the out-of-core writer side; see
// Feed in feed.go) to publish a new sample. It is the only mutating
// entry point, matching spec §5's "written by the collector" policy.
func (v *View) Update(snap *domain.TickerSnapshot) {
	v.mu.Lock()
	defer v.mu.Unlock()
	cp := *snap
	v.snapshots[snap.Symbol] = &cp
}
