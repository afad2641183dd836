package strategy

import (
	"context"
	"math"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"github.com/oneedge/orderengine/internal/domain"
)

// TWAP implements spec §4.5 TWAP: evenly sized slices submitted every
// interval (milliseconds, per SPEC_FULL §11) between startDate and
// endDate.
type TWAP struct{}

func (s *TWAP) Initialize(o *domain.Order, view PriceReader, now time.Time) error {
	o.NextTriggerValue = strconv.FormatInt(o.Params.StartDate.UnixMilli(), 10)
	return nil
}

func (s *TWAP) ShouldTrigger(o *domain.Order, view PriceReader, now time.Time) bool {
	if now.After(o.Params.EndDate) {
		return false
	}
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

func (s *TWAP) Submit(ctx context.Context, o *domain.Order, view PriceReader, submitter Submitter, now time.Time) (string, error) {
	snap := view.GetPrice(o.Symbol)
	sliceSize := s.sliceSize(o)
	return submitter.Submit(ctx, o.Maker, o.Receiver, o.MakerAsset, o.TakerAsset, sliceSize, snap.Mid, nil)
}

func (s *TWAP) UpdateNextTrigger(o *domain.Order, now time.Time) {
	next, ok := parseMillis(o.NextTriggerValue)
	if !ok {
		next = now
	}
	next = next.Add(time.Duration(o.Params.IntervalMs) * time.Millisecond)
	o.NextTriggerValue = strconv.FormatInt(next.UnixMilli(), 10)
}

func (s *TWAP) ShouldComplete(o *domain.Order, now time.Time) bool {
	if !now.Before(o.Params.EndDate) {
		return true
	}
	return o.TriggerCount >= s.totalSlices(o)
}

func (s *TWAP) sliceSize(o *domain.Order) decimal.Decimal {
	total := s.totalSlices(o)
	if total <= 0 {
		return o.Params.Amount
	}
	return o.Params.Amount.Div(decimal.NewFromInt(int64(total)))
}

func (s *TWAP) totalSlices(o *domain.Order) int {
	span := o.Params.EndDate.Sub(o.Params.StartDate).Milliseconds()
	if o.Params.IntervalMs <= 0 || span <= 0 {
		return 1
	}
	return int(math.Ceil(float64(span) / float64(o.Params.IntervalMs)))
}

func parseMillis(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	ms, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return time.Time{}, false
	}
	return time.UnixMilli(ms), true
}
