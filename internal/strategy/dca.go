package strategy

import (
	"context"
	"strconv"
	"time"

	"github.com/oneedge/orderengine/internal/domain"
)

// DCA implements spec §4.5 DCA: same shape as TWAP but the interval is
// in days and there is no fixed endDate — it runs until remainingSize
// hits zero or the maker cancels.
type DCA struct{}

func (s *DCA) Initialize(o *domain.Order, view PriceReader, now time.Time) error {
	o.NextTriggerValue = strconv.FormatInt(o.Params.StartDate.UnixMilli(), 10)
	return nil
}

func (s *DCA) ShouldTrigger(o *domain.Order, view PriceReader, now time.Time) bool {
	next, ok := parseMillis(o.NextTriggerValue)
	if !ok || now.Before(next) {
		return false
	}
	snap, fresh := view.Fresh(o.Symbol)
	if !fresh {
		return false
	}
	if !o.Params.MaxPrice.IsZero() && snap.Mid.GreaterThan(o.Params.MaxPrice) {
		return false
	}
	return true
}

func (s *DCA) Submit(ctx context.Context, o *domain.Order, view PriceReader, submitter Submitter, now time.Time) (string, error) {
	snap := view.GetPrice(o.Symbol)
	sliceSize := o.Params.Amount
	if sliceSize.GreaterThan(o.RemainingSize) {
		sliceSize = o.RemainingSize
	}
	hash, err := submitter.Submit(ctx, o.Maker, o.Receiver, o.MakerAsset, o.TakerAsset, sliceSize, snap.Mid, nil)
	if err != nil {
		return "", err
	}
	o.RemainingSize = o.RemainingSize.Sub(sliceSize)
	return hash, nil
}

func (s *DCA) UpdateNextTrigger(o *domain.Order, now time.Time) {
	next, ok := parseMillis(o.NextTriggerValue)
	if !ok {
		next = now
	}
	next = next.AddDate(0, 0, int(o.Params.IntervalDays))
	o.NextTriggerValue = strconv.FormatInt(next.UnixMilli(), 10)
}

func (s *DCA) ShouldComplete(o *domain.Order, now time.Time) bool {
	return o.RemainingSize.IsZero()
}
