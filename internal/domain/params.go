package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Params is the strategy-specific parameter record. The stored `params`
// blob carries the order's Type as its discriminator (see Order.Type);
// every strategy implementation reads only the fields it recognizes and
// ignores the rest, so a single flat struct serializes cleanly to JSON
// without needing an interface{}-typed union.
type Params struct {
	// STOP_LIMIT
	StopPrice  decimal.Decimal `json:"stopPrice,omitempty"`
	LimitPrice decimal.Decimal `json:"limitPrice,omitempty"`
	ExpiryDays decimal.Decimal `json:"expiry,omitempty"`

	// CHASE_LIMIT
	DistancePct decimal.Decimal `json:"distancePct,omitempty"`
	MaxPrice    decimal.Decimal `json:"maxPrice,omitempty"`

	// TWAP / DCA / RANGE / ICEBERG / GRID_TRADING shared sizing
	Amount    decimal.Decimal `json:"amount,omitempty"`
	StartDate time.Time       `json:"startDate,omitempty"`
	EndDate   time.Time       `json:"endDate,omitempty"`

	// TWAP: interval is milliseconds. DCA: interval is days. The
	// canonical unit per strategy is declared in SPEC_FULL §11. TWAP
	// adds IntervalMs as a time.Duration on each UpdateNextTrigger; DCA
	// advances by IntervalDays calendar days with time.AddDate.
	IntervalMs   int64 `json:"intervalMs,omitempty"`
	IntervalDays int64 `json:"intervalDays,omitempty"`

	// RANGE / ICEBERG / GRID_TRADING
	StartPrice     decimal.Decimal `json:"startPrice,omitempty"`
	EndPrice       decimal.Decimal `json:"endPrice,omitempty"`
	StepPct        decimal.Decimal `json:"stepPct,omitempty"`
	Steps          int             `json:"steps,omitempty"`
	StepMultiplier decimal.Decimal `json:"stepMultiplier,omitempty"`
	SingleSide     bool            `json:"singleSide,omitempty"`
	TPPct          decimal.Decimal `json:"tpPct,omitempty"`

	// MOMENTUM_REVERSAL / RANGE_BREAKOUT
	RSIPeriod   int             `json:"rsiPeriod,omitempty"`
	RSIMAPeriod int             `json:"rsimaPeriod,omitempty"`
	SLPct       decimal.Decimal `json:"slPct,omitempty"`
	ADXPeriod   int             `json:"adxPeriod,omitempty"`
	ADXMAPeriod int             `json:"adxmaPeriod,omitempty"`
	EMAPeriod   int             `json:"emaPeriod,omitempty"`
	BreakoutPct decimal.Decimal `json:"breakoutPct,omitempty"`
}

func (p Params) clone() Params {
	return p // all fields are value types (decimal.Decimal, time.Time, primitives)
}
