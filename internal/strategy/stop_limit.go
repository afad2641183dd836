package strategy

import (
	"context"
	"time"

	"github.com/oneedge/orderengine/internal/domain"
)

// StopLimit implements spec §4.5 STOP_LIMIT: a single child order fired
// once the mid price crosses stopPrice, placed at limitPrice.
type StopLimit struct{}

func (s *StopLimit) Initialize(o *domain.Order, view PriceReader, now time.Time) error {
	return nil
}

func (s *StopLimit) ShouldTrigger(o *domain.Order, view PriceReader, now time.Time) bool {
	if !o.Params.ExpiryDays.IsZero() && now.After(expiryDeadline(o.CreatedAt, o.Params.ExpiryDays)) {
		return false
	}
	snap, fresh := view.Fresh(o.Symbol)
	if !fresh {
		return false
	}
	return snap.Mid.GreaterThanOrEqual(o.Params.StopPrice)
}

func (s *StopLimit) Submit(ctx context.Context, o *domain.Order, view PriceReader, submitter Submitter, now time.Time) (string, error) {
	return submitter.Submit(ctx, o.Maker, o.Receiver, o.MakerAsset, o.TakerAsset, o.RemainingSize, o.Params.LimitPrice, nil)
}

func (s *StopLimit) UpdateNextTrigger(o *domain.Order, now time.Time) {}

func (s *StopLimit) ShouldComplete(o *domain.Order, now time.Time) bool {
	return o.TriggerCount >= 1
}
