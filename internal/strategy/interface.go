// Package strategy implements the Strategy Registry (C5): the
// OrderType -> Strategy dispatch table and the nine per-order-type
// trigger algorithms of spec.md §4.5. Generalized from
// strategy/interface.go's Strategy/SignalBuilder shape into the
// shouldTrigger/submit/updateNextTrigger/shouldComplete contract the
// Watcher Scheduler drives.
package strategy

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/oneedge/orderengine/internal/domain"
)

// PriceReader is the Price View's read surface as consumed by
// strategies: a non-blocking, possibly-stale snapshot lookup.
type PriceReader interface {
	GetPrice(symbol string) *domain.TickerSnapshot
	Fresh(symbol string) (*domain.TickerSnapshot, bool)
}

// Submitter is the Submission Client's surface as consumed by
// strategies' Submit implementations.
type Submitter interface {
	Submit(ctx context.Context, maker, receiver, makerAsset, takerAsset string, childAmount, limitPrice decimal.Decimal, expiry *time.Time) (string, error)
}

// Strategy implements the capability set spec §4.5 requires: an
// optional Initialize hook invoked once after creation, ShouldTrigger,
// Submit, and the optional UpdateNextTrigger/ShouldComplete hooks. A
// strategy with no use for a given optional hook implements it as a
// no-op / always-false, never nil — the Registry always has something
// safe to call.
type Strategy interface {
	// Initialize prepares strategy-private state (e.g. CHASE_LIMIT's
	// triggerPrice). The Watcher Scheduler calls it once, on the order's
	// first evaluation, and records that in StrategyState so it is not
	// called again after a restart.
	Initialize(o *domain.Order, view PriceReader, now time.Time) error

	// ShouldTrigger evaluates the order's predicate against the current
	// price view and time. Must return false on stale/missing price data
	// (spec §4.5 "Determinism & tie-breaks: Staleness").
	ShouldTrigger(o *domain.Order, view PriceReader, now time.Time) bool

	// Submit computes and submits one child order via submitter
	// (GRID_TRADING may also arm a take-profit child), returning the
	// primary child's opaque hash. Invoked at most once per tick per order.
	Submit(ctx context.Context, o *domain.Order, view PriceReader, submitter Submitter, now time.Time) (hash string, err error)

	// UpdateNextTrigger advances the order's nextTriggerValue after a
	// successful submit. No-op for strategies without a trigger ladder.
	UpdateNextTrigger(o *domain.Order, now time.Time)

	// ShouldComplete decides whether the order has reached its terminal
	// condition after a successful submit.
	ShouldComplete(o *domain.Order, now time.Time) bool
}

// Registry maps OrderType -> Strategy. A missing mapping is a
// programming error; the Scheduler treats it as FAILED for that order
// (spec §4.5).
type Registry struct {
	strategies map[domain.OrderType]Strategy
}

func NewRegistry() *Registry {
	r := &Registry{strategies: make(map[domain.OrderType]Strategy)}
	r.strategies[domain.OrderTypeStopLimit] = &StopLimit{}
	r.strategies[domain.OrderTypeChaseLimit] = &ChaseLimit{}
	r.strategies[domain.OrderTypeTWAP] = &TWAP{}
	r.strategies[domain.OrderTypeDCA] = &DCA{}
	r.strategies[domain.OrderTypeRange] = &Range{}
	r.strategies[domain.OrderTypeIceberg] = &Iceberg{}
	r.strategies[domain.OrderTypeGridTrading] = &GridTrading{}
	r.strategies[domain.OrderTypeMomentumReversal] = &MomentumReversal{}
	r.strategies[domain.OrderTypeRangeBreakout] = &RangeBreakout{}
	return r
}

// Lookup returns the strategy for an order type, or (nil, false) if
// unregistered.
func (r *Registry) Lookup(t domain.OrderType) (Strategy, bool) {
	s, ok := r.strategies[t]
	return s, ok
}

// expiryDeadline converts an ExpiryDays param to an absolute deadline
// from createdAt, used by STOP_LIMIT/CHASE_LIMIT/RANGE/ICEBERG.
func expiryDeadline(createdAt time.Time, expiryDays decimal.Decimal) time.Time {
	days, _ := expiryDays.Float64()
	return createdAt.Add(time.Duration(days * float64(24*time.Hour)))
}
