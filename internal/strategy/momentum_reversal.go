package strategy

import (
	"context"
	"time"

	"github.com/oneedge/orderengine/internal/indicators"

	"github.com/oneedge/orderengine/internal/domain"
)

// oversoldLookback is how many prior rsi samples are searched; at least
// one of them must be under the oversold threshold for an upward cross
// to count as a reversal.
const oversoldLookback = 5
const oversoldThreshold = 30

// MomentumReversal implements spec §4.5 MOMENTUM_REVERSAL: fires once
// when rsi crosses upward over its rsima after having been oversold
// (buy-side convention, matching STOP_LIMIT's stopPrice comparison).
type MomentumReversal struct{}

func (s *MomentumReversal) Initialize(o *domain.Order, view PriceReader, now time.Time) error {
	return nil
}

func (s *MomentumReversal) ShouldTrigger(o *domain.Order, view PriceReader, now time.Time) bool {
	snap, fresh := view.Fresh(o.Symbol)
	if !fresh || snap.Analysis == nil {
		return false
	}
	rsi := snap.Analysis.RSI
	rsimaPeriod := o.Params.RSIMAPeriod
	if rsimaPeriod <= 0 || len(rsi) < rsimaPeriod+oversoldLookback+1 {
		return false
	}

	rsiNow := rsi[len(rsi)-1]
	rsiPrev := rsi[len(rsi)-2]
	rsimaNow := indicators.SMA(rsi, rsimaPeriod)
	rsimaPrev := indicators.SMA(rsi[:len(rsi)-1], rsimaPeriod)

	crossedUp := rsiPrev <= rsimaPrev && rsiNow > rsimaNow
	if !crossedUp {
		return false
	}

	window := rsi[len(rsi)-oversoldLookback-1 : len(rsi)-1]
	wasOversold := false
	for _, v := range window {
		if v < oversoldThreshold {
			wasOversold = true
			break
		}
	}
	return wasOversold
}

func (s *MomentumReversal) Submit(ctx context.Context, o *domain.Order, view PriceReader, submitter Submitter, now time.Time) (string, error) {
	snap := view.GetPrice(o.Symbol)
	return submitter.Submit(ctx, o.Maker, o.Receiver, o.MakerAsset, o.TakerAsset, o.Params.Amount, snap.Mid, nil)
}

func (s *MomentumReversal) UpdateNextTrigger(o *domain.Order, now time.Time) {}

func (s *MomentumReversal) ShouldComplete(o *domain.Order, now time.Time) bool {
	return o.TriggerCount >= 1
}
