package strategy

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/oneedge/orderengine/internal/domain"
)

const defaultADXThreshold = 25

// RangeBreakout implements spec §4.5 RANGE_BREAKOUT: fires once adx is
// above both its own moving average and a trend-strength threshold, and
// price has moved breakoutPct above ema.
type RangeBreakout struct{}

func (s *RangeBreakout) Initialize(o *domain.Order, view PriceReader, now time.Time) error {
	return nil
}

func (s *RangeBreakout) ShouldTrigger(o *domain.Order, view PriceReader, now time.Time) bool {
	snap, fresh := view.Fresh(o.Symbol)
	if !fresh || snap.Analysis == nil {
		return false
	}
	adx := snap.Analysis.ADX
	adxma := snap.Analysis.ADXMA
	ema := snap.Analysis.EMA
	if len(adx) == 0 || len(adxma) == 0 || len(ema) == 0 {
		return false
	}

	adxNow := adx[len(adx)-1]
	adxmaNow := adxma[len(adxma)-1]
	emaNow := ema[len(ema)-1]

	if adxNow <= adxmaNow || adxNow <= defaultADXThreshold {
		return false
	}

	breakoutPct := o.Params.BreakoutPct
	if breakoutPct.IsZero() {
		breakoutPct = decimal.NewFromInt(1)
	}
	emaDec := decimal.NewFromFloat(emaNow)
	threshold := emaDec.Mul(decimal.NewFromInt(1).Add(breakoutPct.Div(decimal.NewFromInt(100))))
	return snap.Mid.GreaterThan(threshold)
}

func (s *RangeBreakout) Submit(ctx context.Context, o *domain.Order, view PriceReader, submitter Submitter, now time.Time) (string, error) {
	snap := view.GetPrice(o.Symbol)
	return submitter.Submit(ctx, o.Maker, o.Receiver, o.MakerAsset, o.TakerAsset, o.Params.Amount, snap.Mid, nil)
}

func (s *RangeBreakout) UpdateNextTrigger(o *domain.Order, now time.Time) {}

func (s *RangeBreakout) ShouldComplete(o *domain.Order, now time.Time) bool {
	return o.TriggerCount >= 1
}
