package strategy

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/oneedge/orderengine/internal/domain"
)

const (
	stateKeyGridLevels  = "gridLevels"
	stateKeyGridPlaced  = "gridPlaced"
)

// GridTrading implements spec §4.5 GRID_TRADING: a static ladder of
// levels across [startPrice, endPrice] with spacing stepPct (optionally
// geometric via stepMultiplier). A level fires once, on a tick whose mid
// is within 0.1% of it; a level the price moves past between two ticks
// without landing in that band does not fire.
type GridTrading struct{}

func (s *GridTrading) Initialize(o *domain.Order, view PriceReader, now time.Time) error {
	levels := s.buildLevels(o)
	strs := make([]string, len(levels))
	for i, l := range levels {
		strs[i] = l.String()
	}
	o.StrategyState[stateKeyGridLevels] = strings.Join(strs, ",")
	o.StrategyState[stateKeyGridPlaced] = ""
	return nil
}

func (s *GridTrading) buildLevels(o *domain.Order) []decimal.Decimal {
	var levels []decimal.Decimal
	ascending := o.Params.EndPrice.GreaterThan(o.Params.StartPrice)
	step := o.Params.StartPrice.Mul(o.Params.StepPct).Div(decimal.NewFromInt(100))
	cur := o.Params.StartPrice
	multiplier := o.Params.StepMultiplier
	if multiplier.IsZero() {
		multiplier = decimal.NewFromInt(1)
	}
	for i := 0; i < 1000; i++ {
		levels = append(levels, cur)
		if ascending && cur.GreaterThanOrEqual(o.Params.EndPrice) {
			break
		}
		if !ascending && cur.LessThanOrEqual(o.Params.EndPrice) {
			break
		}
		if ascending {
			cur = cur.Add(step)
		} else {
			cur = cur.Sub(step)
		}
		step = step.Mul(multiplier)
	}
	return levels
}

func (s *GridTrading) levels(o *domain.Order) []decimal.Decimal {
	raw := o.StrategyState[stateKeyGridLevels]
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]decimal.Decimal, 0, len(parts))
	for _, p := range parts {
		d, err := decimal.NewFromString(p)
		if err != nil {
			continue
		}
		out = append(out, d)
	}
	return out
}

func (s *GridTrading) placedSet(o *domain.Order) map[int]bool {
	raw := o.StrategyState[stateKeyGridPlaced]
	out := map[int]bool{}
	if raw == "" {
		return out
	}
	for _, p := range strings.Split(raw, ",") {
		idx, err := strconv.Atoi(p)
		if err == nil {
			out[idx] = true
		}
	}
	return out
}

func (s *GridTrading) markPlaced(o *domain.Order, idx int) {
	placed := s.placedSet(o)
	placed[idx] = true
	strs := make([]string, 0, len(placed))
	for k := range placed {
		strs = append(strs, strconv.Itoa(k))
	}
	o.StrategyState[stateKeyGridPlaced] = strings.Join(strs, ",")
}

// crossedLevel returns the index of a not-yet-placed level the mid is
// within 0.1% of, or -1 if none.
func (s *GridTrading) crossedLevel(o *domain.Order, mid decimal.Decimal) int {
	levels := s.levels(o)
	placed := s.placedSet(o)
	for i, lvl := range levels {
		if placed[i] {
			continue
		}
		tolerance := lvl.Mul(decimal.NewFromFloat(0.001)).Abs()
		if mid.Sub(lvl).Abs().LessThanOrEqual(tolerance) {
			return i
		}
	}
	return -1
}

func (s *GridTrading) ShouldTrigger(o *domain.Order, view PriceReader, now time.Time) bool {
	snap, fresh := view.Fresh(o.Symbol)
	if !fresh {
		return false
	}
	return s.crossedLevel(o, snap.Mid) >= 0
}

func (s *GridTrading) Submit(ctx context.Context, o *domain.Order, view PriceReader, submitter Submitter, now time.Time) (string, error) {
	snap := view.GetPrice(o.Symbol)
	idx := s.crossedLevel(o, snap.Mid)
	if idx < 0 {
		return "", nil
	}
	levels := s.levels(o)
	levelPrice := levels[idx]

	hash, err := submitter.Submit(ctx, o.Maker, o.Receiver, o.MakerAsset, o.TakerAsset, o.Params.Amount, levelPrice, nil)
	if err != nil {
		return "", err
	}
	s.markPlaced(o, idx)

	if !o.Params.TPPct.IsZero() {
		tpPrice := levelPrice.Mul(decimal.NewFromInt(1).Add(o.Params.TPPct.Div(decimal.NewFromInt(100))))
		_, _ = submitter.Submit(ctx, o.Maker, o.Receiver, o.TakerAsset, o.MakerAsset, o.Params.Amount, tpPrice, nil)
	}

	return hash, nil
}

func (s *GridTrading) UpdateNextTrigger(o *domain.Order, now time.Time) {}

func (s *GridTrading) ShouldComplete(o *domain.Order, now time.Time) bool {
	return len(s.placedSet(o)) >= len(s.levels(o))
}
