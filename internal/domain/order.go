// Package domain defines the core entities the rest of the order engine
// operates on: the advanced-order intent (Order), its audit trail
// (OrderEvent) and the read-only market sample strategies evaluate
// against (TickerSnapshot).
package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderType is the discriminator for the Strategy Registry dispatch
// table (OrderType -> Strategy).
type OrderType string

const (
	OrderTypeStopLimit        OrderType = "STOP_LIMIT"
	OrderTypeChaseLimit       OrderType = "CHASE_LIMIT"
	OrderTypeTWAP             OrderType = "TWAP"
	OrderTypeRange            OrderType = "RANGE"
	OrderTypeIceberg          OrderType = "ICEBERG"
	OrderTypeDCA              OrderType = "DCA"
	OrderTypeGridTrading      OrderType = "GRID_TRADING"
	OrderTypeMomentumReversal OrderType = "MOMENTUM_REVERSAL"
	OrderTypeRangeBreakout    OrderType = "RANGE_BREAKOUT"
	OrderTypeLimit            OrderType = "LIMIT"
)

// Status is the order lifecycle state. PENDING is the only creation
// state; signature validation is a precondition of PENDING and the
// engine never promotes an order above PENDING without it.
type Status string

const (
	StatusPending          Status = "PENDING"
	StatusActive           Status = "ACTIVE"
	StatusPartiallyFilled  Status = "PARTIALLY_FILLED"
	StatusFilled           Status = "FILLED"
	StatusCompleted        Status = "COMPLETED"
	StatusCancelled        Status = "CANCELLED"
	StatusFailed           Status = "FAILED"
	StatusExpired          Status = "EXPIRED"
)

// ActiveStatuses are the statuses a live watcher is expected for; see
// Store.GetActive and the Watcher Scheduler's restart rule.
var ActiveStatuses = map[Status]bool{
	StatusPending:         true,
	StatusActive:          true,
	StatusPartiallyFilled: true,
}

// TerminalStatuses have no further mutations once reached (testable
// property #4).
var TerminalStatuses = map[Status]bool{
	StatusCompleted: true,
	StatusFilled:    true,
	StatusCancelled: true,
	StatusFailed:    true,
	StatusExpired:   true,
}

func (s Status) IsActive() bool   { return ActiveStatuses[s] }
func (s Status) IsTerminal() bool { return TerminalStatuses[s] }

// Order is the central entity. Ownership is exclusive to the Store; the
// Scheduler and Strategies manipulate in-memory snapshots and write
// back through the Store.
type Order struct {
	ID         string
	Type       OrderType
	Maker      string
	Receiver   string
	MakerAsset string
	TakerAsset string

	// Symbol addresses the Price View (spec §6: "source:instrumentType:pair",
	// e.g. "agg:spot:ETHUSDT"). It is supplied with the order; Create does
	// not derive it from the asset pair.
	Symbol string

	Size          decimal.Decimal
	RemainingSize decimal.Decimal

	Params Params

	Signature         string
	UserSignedPayload string

	Status           Status
	TriggerCount     int
	NextTriggerValue string // opaque: timestamp, price level or grid index, serialized

	OrderHashes []string // oneInchOrderHashes: ordered, append-only

	CreatedAt   time.Time
	ExecutedAt  *time.Time
	CancelledAt *time.Time

	// StrategyState carries strategy-private working state across ticks
	// (e.g. CHASE_LIMIT's triggerPrice, GRID_TRADING's placed levels)
	// that doesn't belong in the user-supplied Params but must survive a
	// restart. Stored alongside params as an opaque JSON blob.
	StrategyState map[string]string
}

// Clone returns a deep-enough copy for safe in-memory mutation before
// writing back through the Store; the scheduler treats every read as a
// snapshot it owns exclusively until the next store.save.
func (o *Order) Clone() *Order {
	if o == nil {
		return nil
	}
	cp := *o
	cp.OrderHashes = append([]string(nil), o.OrderHashes...)
	cp.StrategyState = make(map[string]string, len(o.StrategyState))
	for k, v := range o.StrategyState {
		cp.StrategyState[k] = v
	}
	cp.Params = o.Params.clone()
	return &cp
}

// EventKind enumerates the per-transition audit events appended by the
// Scheduler and the Registry API.
type EventKind string

const (
	EventPending   EventKind = "PENDING"
	EventSubmitted EventKind = "SUBMITTED"
	EventCompleted EventKind = "COMPLETED"
	EventCancelled EventKind = "CANCELLED"
	EventFailed    EventKind = "FAILED"
)

// OrderEvent is an append-only audit record: one event per lifecycle
// transition and per submit.
type OrderEvent struct {
	ID            uint
	OrderID       string
	OrderHash     string
	Kind          EventKind
	Status        Status
	Timestamp     time.Time
	FilledAmount  decimal.Decimal
	TxHash        string
	Error         string
}

// TickerSnapshot is the external Price View's read model: a market
// sample plus optional precomputed indicator series.
type TickerSnapshot struct {
	Symbol    string
	Mid       decimal.Decimal
	Bid       decimal.Decimal
	Ask       decimal.Decimal
	Last      decimal.Decimal
	Timestamp time.Time

	Analysis *Analysis
}

// Analysis carries the indicator series the collector precomputes.
type Analysis struct {
	RSI  []float64
	EMA  []float64
	SMA  []float64
	ADX  []float64
	ADXMA []float64
	MACD MACD
	BB   BollingerBands
}

type MACD struct {
	Line      []float64
	Signal    []float64
	Histogram []float64
}

type BollingerBands struct {
	Upper  []float64
	Middle []float64
	Lower  []float64
}
