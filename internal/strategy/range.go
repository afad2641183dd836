package strategy

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/oneedge/orderengine/internal/domain"
)

// Range implements spec §4.5 RANGE: a ladder of submits across
// [startPrice, endPrice] with step size |endPrice-startPrice|*stepPct/100,
// one submit per step crossed in the direction of travel.
type Range struct{}

func (s *Range) Initialize(o *domain.Order, view PriceReader, now time.Time) error {
	o.NextTriggerValue = o.Params.StartPrice.String()
	return nil
}

func (s *Range) stepSize(o *domain.Order) decimal.Decimal {
	return o.Params.EndPrice.Sub(o.Params.StartPrice).Abs().Mul(o.Params.StepPct).Div(decimal.NewFromInt(100))
}

func (s *Range) ascending(o *domain.Order) bool {
	return o.Params.EndPrice.GreaterThan(o.Params.StartPrice)
}

func (s *Range) ShouldTrigger(o *domain.Order, view PriceReader, now time.Time) bool {
	if !o.Params.ExpiryDays.IsZero() && now.After(expiryDeadline(o.CreatedAt, o.Params.ExpiryDays)) {
		return false
	}
	snap, fresh := view.Fresh(o.Symbol)
	if !fresh {
		return false
	}
	next := s.nextPrice(o)
	if s.ascending(o) {
		if snap.Mid.GreaterThan(o.Params.EndPrice) {
			return false
		}
		return snap.Mid.GreaterThanOrEqual(next)
	}
	if snap.Mid.LessThan(o.Params.EndPrice) {
		return false
	}
	return snap.Mid.LessThanOrEqual(next)
}

func (s *Range) Submit(ctx context.Context, o *domain.Order, view PriceReader, submitter Submitter, now time.Time) (string, error) {
	snap := view.GetPrice(o.Symbol)
	return submitter.Submit(ctx, o.Maker, o.Receiver, o.MakerAsset, o.TakerAsset, o.RemainingSize, snap.Mid, nil)
}

func (s *Range) UpdateNextTrigger(o *domain.Order, now time.Time) {
	next := s.nextPrice(o)
	step := s.stepSize(o)
	if s.ascending(o) {
		next = next.Add(step)
	} else {
		next = next.Sub(step)
	}
	o.NextTriggerValue = next.String()
}

func (s *Range) ShouldComplete(o *domain.Order, now time.Time) bool {
	if !o.Params.ExpiryDays.IsZero() && now.After(expiryDeadline(o.CreatedAt, o.Params.ExpiryDays)) {
		return true
	}
	next := s.nextPrice(o)
	if s.ascending(o) {
		return next.GreaterThan(o.Params.EndPrice)
	}
	return next.LessThan(o.Params.EndPrice)
}

func (s *Range) nextPrice(o *domain.Order) decimal.Decimal {
	d, err := decimal.NewFromString(o.NextTriggerValue)
	if err != nil {
		return o.Params.StartPrice
	}
	return d
}
