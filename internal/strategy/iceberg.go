package strategy

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/oneedge/orderengine/internal/domain"
)

// Iceberg implements spec §4.5 ICEBERG: like RANGE but with a fixed
// step count — amount/steps submitted per level crossed.
type Iceberg struct{}

func (s *Iceberg) Initialize(o *domain.Order, view PriceReader, now time.Time) error {
	o.NextTriggerValue = o.Params.StartPrice.String()
	return nil
}

func (s *Iceberg) stepSize(o *domain.Order) decimal.Decimal {
	if o.Params.Steps <= 0 {
		return decimal.Zero
	}
	return o.Params.EndPrice.Sub(o.Params.StartPrice).Abs().Div(decimal.NewFromInt(int64(o.Params.Steps)))
}

func (s *Iceberg) ascending(o *domain.Order) bool {
	return o.Params.EndPrice.GreaterThan(o.Params.StartPrice)
}

func (s *Iceberg) ShouldTrigger(o *domain.Order, view PriceReader, now time.Time) bool {
	if !o.Params.ExpiryDays.IsZero() && now.After(expiryDeadline(o.CreatedAt, o.Params.ExpiryDays)) {
		return false
	}
	if o.TriggerCount >= o.Params.Steps {
		return false
	}
	snap, fresh := view.Fresh(o.Symbol)
	if !fresh {
		return false
	}
	next := s.nextPrice(o)
	if s.ascending(o) {
		return snap.Mid.GreaterThanOrEqual(next)
	}
	return snap.Mid.LessThanOrEqual(next)
}

func (s *Iceberg) Submit(ctx context.Context, o *domain.Order, view PriceReader, submitter Submitter, now time.Time) (string, error) {
	snap := view.GetPrice(o.Symbol)
	sliceSize := o.Params.Amount
	if o.Params.Steps > 0 {
		sliceSize = o.Params.Amount.Div(decimal.NewFromInt(int64(o.Params.Steps)))
	}
	return submitter.Submit(ctx, o.Maker, o.Receiver, o.MakerAsset, o.TakerAsset, sliceSize, snap.Mid, nil)
}

func (s *Iceberg) UpdateNextTrigger(o *domain.Order, now time.Time) {
	next := s.nextPrice(o)
	step := s.stepSize(o)
	if s.ascending(o) {
		next = next.Add(step)
	} else {
		next = next.Sub(step)
	}
	o.NextTriggerValue = next.String()
}

func (s *Iceberg) ShouldComplete(o *domain.Order, now time.Time) bool {
	if !o.Params.ExpiryDays.IsZero() && now.After(expiryDeadline(o.CreatedAt, o.Params.ExpiryDays)) {
		return true
	}
	return o.TriggerCount >= o.Params.Steps
}

func (s *Iceberg) nextPrice(o *domain.Order) decimal.Decimal {
	d, err := decimal.NewFromString(o.NextTriggerValue)
	if err != nil {
		return o.Params.StartPrice
	}
	return d
}
