package strategy

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/oneedge/orderengine/internal/domain"
)

const stateKeyTriggerPrice = "triggerPrice"

// ChaseLimit implements spec §4.5 CHASE_LIMIT: a trailing child order
// that re-places itself whenever price has moved distancePct away from
// the last placement price.
type ChaseLimit struct{}

func (s *ChaseLimit) Initialize(o *domain.Order, view PriceReader, now time.Time) error {
	snap := view.GetPrice(o.Symbol)
	if snap != nil {
		o.StrategyState[stateKeyTriggerPrice] = snap.Mid.String()
	}
	return nil
}

func (s *ChaseLimit) ShouldTrigger(o *domain.Order, view PriceReader, now time.Time) bool {
	if !o.Params.ExpiryDays.IsZero() && now.After(expiryDeadline(o.CreatedAt, o.Params.ExpiryDays)) {
		return false
	}
	snap, fresh := view.Fresh(o.Symbol)
	if !fresh {
		return false
	}
	if !o.Params.MaxPrice.IsZero() && snap.Mid.GreaterThan(o.Params.MaxPrice) {
		return false
	}
	triggerPrice := s.triggerPrice(o, snap.Mid)
	if triggerPrice.IsZero() {
		return false
	}
	moved := snap.Mid.Sub(triggerPrice).Abs().Div(triggerPrice)
	return moved.GreaterThanOrEqual(o.Params.DistancePct.Div(decimal.NewFromInt(100)))
}

func (s *ChaseLimit) Submit(ctx context.Context, o *domain.Order, view PriceReader, submitter Submitter, now time.Time) (string, error) {
	snap := view.GetPrice(o.Symbol)
	hash, err := submitter.Submit(ctx, o.Maker, o.Receiver, o.MakerAsset, o.TakerAsset, o.RemainingSize, snap.Mid, nil)
	if err != nil {
		return "", err
	}
	o.StrategyState[stateKeyTriggerPrice] = snap.Mid.String()
	return hash, nil
}

func (s *ChaseLimit) UpdateNextTrigger(o *domain.Order, now time.Time) {}

func (s *ChaseLimit) ShouldComplete(o *domain.Order, now time.Time) bool {
	if !o.Params.ExpiryDays.IsZero() && now.After(expiryDeadline(o.CreatedAt, o.Params.ExpiryDays)) {
		return true
	}
	return o.RemainingSize.IsZero()
}

func (s *ChaseLimit) triggerPrice(o *domain.Order, fallback decimal.Decimal) decimal.Decimal {
	raw, ok := o.StrategyState[stateKeyTriggerPrice]
	if !ok {
		return fallback
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return fallback
	}
	return d
}
