package strategy

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/oneedge/orderengine/internal/domain"
)

type fakeView struct {
	snap  *domain.TickerSnapshot
	stale bool
}

func (f *fakeView) GetPrice(symbol string) *domain.TickerSnapshot { return f.snap }

func (f *fakeView) Fresh(symbol string) (*domain.TickerSnapshot, bool) {
	if f.snap == nil || f.stale {
		return f.snap, false
	}
	return f.snap, true
}

type fakeSubmitter struct {
	hash string
	err  error
	n    int
}

func (f *fakeSubmitter) Submit(ctx context.Context, maker, receiver, makerAsset, takerAsset string, childAmount, limitPrice decimal.Decimal, expiry *time.Time) (string, error) {
	f.n++
	return f.hash, f.err
}

func mid(v float64) *fakeView {
	return &fakeView{snap: &domain.TickerSnapshot{Mid: decimal.NewFromFloat(v), Timestamp: time.Now()}}
}

func baseOrder(typ domain.OrderType) *domain.Order {
	return &domain.Order{
		ID:            "order-1",
		Type:          typ,
		Maker:         "0xMaker",
		Receiver:      "0xReceiver",
		MakerAsset:    "0xWETH",
		TakerAsset:    "0xUSDC",
		Symbol:        "agg:spot:ETHUSDT",
		Size:          decimal.NewFromInt(10),
		RemainingSize: decimal.NewFromInt(10),
		CreatedAt:     time.Now(),
		StrategyState: map[string]string{},
	}
}

// S2: Stop-Limit triggers once mid crosses stopPrice, submits once, then
// completes.
func TestStopLimitTriggersAtStopPrice(t *testing.T) {
	o := baseOrder(domain.OrderTypeStopLimit)
	o.Params.StopPrice = decimal.NewFromInt(4000)
	o.Params.LimitPrice = decimal.NewFromInt(4010)

	s := &StopLimit{}
	view := mid(3990)
	if s.ShouldTrigger(o, view, time.Now()) {
		t.Fatal("should not trigger below stopPrice")
	}

	view = mid(4001)
	if !s.ShouldTrigger(o, view, time.Now()) {
		t.Fatal("expected trigger at/above stopPrice")
	}

	sub := &fakeSubmitter{hash: "0xabc"}
	hash, err := s.Submit(context.Background(), o, view, sub, time.Now())
	if err != nil || hash != "0xabc" {
		t.Fatalf("unexpected submit result: %v %v", hash, err)
	}
	o.TriggerCount = 1
	if !s.ShouldComplete(o, time.Now()) {
		t.Fatal("expected completion after first submit")
	}
}

func TestStopLimitExpires(t *testing.T) {
	o := baseOrder(domain.OrderTypeStopLimit)
	o.Params.StopPrice = decimal.NewFromInt(4000)
	o.Params.ExpiryDays = decimal.NewFromInt(1)
	o.CreatedAt = time.Now().Add(-48 * time.Hour)

	s := &StopLimit{}
	if s.ShouldTrigger(o, mid(5000), time.Now()) {
		t.Fatal("expected expiry to suppress trigger")
	}
}

// S3: Chase-Limit re-places whenever price has moved distancePct away
// from the last placement.
func TestChaseLimitTracksPrice(t *testing.T) {
	o := baseOrder(domain.OrderTypeChaseLimit)
	o.Params.DistancePct = decimal.NewFromInt(2)

	s := &ChaseLimit{}
	if err := s.Initialize(o, mid(100), time.Now()); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	if got := o.StrategyState[stateKeyTriggerPrice]; got != "100" {
		t.Fatalf("expected triggerPrice seeded to 100, got %s", got)
	}

	if s.ShouldTrigger(o, mid(101), time.Now()) {
		t.Fatal("1%% move should not trigger at 2%% distance")
	}
	view := mid(103)
	if !s.ShouldTrigger(o, view, time.Now()) {
		t.Fatal("3%% move should trigger at 2%% distance")
	}

	sub := &fakeSubmitter{hash: "0xchase1"}
	if _, err := s.Submit(context.Background(), o, view, sub, time.Now()); err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if o.StrategyState[stateKeyTriggerPrice] != "103" {
		t.Fatalf("expected triggerPrice to advance to 103, got %s", o.StrategyState[stateKeyTriggerPrice])
	}
}

func TestChaseLimitRespectsMaxPrice(t *testing.T) {
	o := baseOrder(domain.OrderTypeChaseLimit)
	o.Params.DistancePct = decimal.NewFromInt(1)
	o.Params.MaxPrice = decimal.NewFromInt(100)
	o.StrategyState[stateKeyTriggerPrice] = "90"

	s := &ChaseLimit{}
	if s.ShouldTrigger(o, mid(200), time.Now()) {
		t.Fatal("expected maxPrice ceiling to suppress trigger")
	}
}

// S1: TWAP slices evenly across startDate..endDate at interval.
func TestTWAPSlicesAndCompletes(t *testing.T) {
	o := baseOrder(domain.OrderTypeTWAP)
	now := time.Now()
	o.Params.Amount = decimal.NewFromInt(100)
	o.Params.StartDate = now
	o.Params.EndDate = now.Add(4 * time.Second)
	o.Params.IntervalMs = 1000

	s := &TWAP{}
	if err := s.Initialize(o, mid(10), now); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	if !s.ShouldTrigger(o, mid(10), now) {
		t.Fatal("expected immediate trigger at startDate")
	}

	sub := &fakeSubmitter{hash: "0xtwap"}
	hash, err := s.Submit(context.Background(), o, mid(10), sub, now)
	if err != nil || hash != "0xtwap" {
		t.Fatalf("unexpected submit: %v %v", hash, err)
	}

	total := s.totalSlices(o)
	if total != 4 {
		t.Fatalf("expected 4 slices for a 4s window at 1s interval, got %d", total)
	}

	s.UpdateNextTrigger(o, now)
	o.TriggerCount = 1
	if s.ShouldComplete(o, now.Add(500*time.Millisecond)) {
		t.Fatal("should not complete after first slice")
	}

	o.TriggerCount = 4
	if !s.ShouldComplete(o, now.Add(500*time.Millisecond)) {
		t.Fatal("expected completion once triggerCount reaches total slices")
	}
}

func TestTWAPDoesNotTriggerAfterEndDate(t *testing.T) {
	o := baseOrder(domain.OrderTypeTWAP)
	now := time.Now()
	o.Params.StartDate = now.Add(-10 * time.Second)
	o.Params.EndDate = now.Add(-1 * time.Second)
	o.Params.IntervalMs = 1000
	o.NextTriggerValue = "0"

	s := &TWAP{}
	if s.ShouldTrigger(o, mid(10), now) {
		t.Fatal("expected no trigger past endDate")
	}
}

// S4: Range submits one step at a time as price advances through the
// configured band.
func TestRangeAdvancesSteps(t *testing.T) {
	o := baseOrder(domain.OrderTypeRange)
	o.Params.StartPrice = decimal.NewFromInt(100)
	o.Params.EndPrice = decimal.NewFromInt(120)
	o.Params.StepPct = decimal.NewFromInt(10) // step = 20*10/100 = 2

	s := &Range{}
	if err := s.Initialize(o, mid(100), time.Now()); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	if !s.ShouldTrigger(o, mid(100), time.Now()) {
		t.Fatal("expected trigger at startPrice")
	}

	s.UpdateNextTrigger(o, time.Now())
	if o.NextTriggerValue != "102" {
		t.Fatalf("expected next step at 102, got %s", o.NextTriggerValue)
	}
	if s.ShouldTrigger(o, mid(101), time.Now()) {
		t.Fatal("should not trigger before reaching next step")
	}
	if !s.ShouldTrigger(o, mid(102), time.Now()) {
		t.Fatal("expected trigger once price reaches next step")
	}
}

func TestRangeCompletesBeyondEndPrice(t *testing.T) {
	o := baseOrder(domain.OrderTypeRange)
	o.Params.StartPrice = decimal.NewFromInt(100)
	o.Params.EndPrice = decimal.NewFromInt(110)
	o.Params.StepPct = decimal.NewFromInt(100) // single giant step
	o.NextTriggerValue = "111"

	s := &Range{}
	if !s.ShouldComplete(o, time.Now()) {
		t.Fatal("expected completion once next step passes endPrice")
	}
}

func TestGridTradingBuildsLevelsAndFiresOnce(t *testing.T) {
	o := baseOrder(domain.OrderTypeGridTrading)
	o.Params.Amount = decimal.NewFromInt(1)
	o.Params.StartPrice = decimal.NewFromInt(100)
	o.Params.EndPrice = decimal.NewFromInt(110)
	o.Params.StepPct = decimal.NewFromInt(5) // 100 -> 105 -> 110

	s := &GridTrading{}
	if err := s.Initialize(o, mid(100), time.Now()); err != nil {
		t.Fatalf("Initialize: %v", err)
	}

	view := mid(100)
	if !s.ShouldTrigger(o, view, time.Now()) {
		t.Fatal("expected trigger at first level")
	}
	sub := &fakeSubmitter{hash: "0xgrid"}
	if _, err := s.Submit(context.Background(), o, view, sub, time.Now()); err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if s.ShouldTrigger(o, view, time.Now()) {
		t.Fatal("level already placed should not re-trigger")
	}
}

func TestDCACompletesWhenRemainingExhausted(t *testing.T) {
	o := baseOrder(domain.OrderTypeDCA)
	o.RemainingSize = decimal.Zero
	s := &DCA{}
	if !s.ShouldComplete(o, time.Now()) {
		t.Fatal("expected DCA completion once remainingSize is zero")
	}
}
