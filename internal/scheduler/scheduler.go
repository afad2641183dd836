// Package scheduler implements the Watcher Scheduler (C6): one
// cooperative goroutine per active order, evaluating its strategy on a
// fixed poll interval. Grounded on internal/arbitrage/engine.go's
// ticker+stopCh+select loop, generalized from one engine-wide loop to
// one loop per order.
package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/oneedge/orderengine/internal/apperrors"
	"github.com/oneedge/orderengine/internal/domain"
	"github.com/oneedge/orderengine/internal/strategy"
)

// OrderStore is the persistence surface the Scheduler needs: the
// minimal slice of internal/store.Store's API.
type OrderStore interface {
	Get(id string) (*domain.Order, error)
	Save(o *domain.Order) error
	AppendEvent(ev *domain.OrderEvent) error
	GetPending() ([]*domain.Order, error)
}

// Notifier is the optional operator-notification sink, satisfied by
// *internal/ops.Notifier. A nil Notifier is valid.
type Notifier interface {
	OrderSubmitted(o *domain.Order, hash string)
	OrderCompleted(o *domain.Order)
	OrderFailed(o *domain.Order, reason string)
}

// Scheduler owns the set of running watchers and the shared collaborators
// every watcher evaluates against.
type Scheduler struct {
	store        OrderStore
	registry     *strategy.Registry
	view         strategy.PriceReader
	submitter    strategy.Submitter
	notifier     Notifier
	pollInterval time.Duration

	mu        sync.Mutex
	watchers  map[string]chan struct{} // orderID -> stop channel
	isRunning bool
	wg        sync.WaitGroup
}

func New(store OrderStore, registry *strategy.Registry, view strategy.PriceReader, submitter strategy.Submitter, pollInterval time.Duration) *Scheduler {
	return &Scheduler{
		store:        store,
		registry:     registry,
		view:         view,
		submitter:    submitter,
		pollInterval: pollInterval,
		watchers:     make(map[string]chan struct{}),
	}
}

// SetNotifier wires an optional operator-notification sink.
func (s *Scheduler) SetNotifier(n Notifier) {
	s.notifier = n
}

// Start flips the scheduler live and restarts a watcher for every order
// the Store reports PENDING/ACTIVE/PARTIALLY_FILLED — the crash-safe
// restart rule (spec §7, scenario S6).
func (s *Scheduler) Start() error {
	s.mu.Lock()
	s.isRunning = true
	s.mu.Unlock()

	pending, err := s.store.GetPending()
	if err != nil {
		return err
	}
	for _, o := range pending {
		s.StartWatcher(o.ID)
	}
	log.Info().Int("restarted", len(pending)).Msg("scheduler started")
	return nil
}

// Stop flips isRunning off and closes every watcher's stop channel; it
// blocks until all in-flight submits complete before returning.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	s.isRunning = false
	for id, ch := range s.watchers {
		close(ch)
		delete(s.watchers, id)
	}
	s.mu.Unlock()
	s.wg.Wait()
	log.Info().Msg("scheduler stopped")
}

// StartWatcher is idempotent: calling it twice for the same order id is
// a no-op on the second call.
func (s *Scheduler) StartWatcher(orderID string) {
	s.mu.Lock()
	if _, exists := s.watchers[orderID]; exists {
		s.mu.Unlock()
		return
	}
	stopCh := make(chan struct{})
	s.watchers[orderID] = stopCh
	s.mu.Unlock()

	s.wg.Add(1)
	go s.watch(orderID, stopCh)
}

// CancelOrder stops the watcher (if any) for orderID; the caller is
// responsible for persisting the CANCELLED status transition.
func (s *Scheduler) CancelOrder(orderID string) {
	s.mu.Lock()
	ch, exists := s.watchers[orderID]
	if exists {
		close(ch)
		delete(s.watchers, orderID)
	}
	s.mu.Unlock()
}

// watch is the per-order loop: snapshot read -> status check ->
// shouldTrigger -> submit/advance-state/appendEvent -> shouldComplete ->
// sleep(pollInterval), matching spec §4.6's pseudocode.
func (s *Scheduler) watch(orderID string, stopCh chan struct{}) {
	defer s.wg.Done()

	ticker := time.NewTicker(s.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-stopCh:
			return
		case <-ticker.C:
			if done := s.tick(orderID); done {
				return
			}
		}
	}
}

// tick runs exactly one evaluation for orderID and reports whether the
// watcher should exit (order reached a terminal status).
func (s *Scheduler) tick(orderID string) bool {
	o, err := s.store.Get(orderID)
	if err != nil && apperrors.IsStorageError(err) {
		log.Warn().Err(err).Str("order", orderID).Msg("watcher: order read failed, retrying next tick")
		return false
	}
	if err != nil || o == nil {
		log.Error().Err(err).Str("order", orderID).Msg("watcher: order not found, stopping")
		return true
	}
	if o.Status.IsTerminal() {
		return true
	}
	if o.StrategyState == nil {
		o.StrategyState = map[string]string{}
	}

	strat, ok := s.registry.Lookup(o.Type)
	if !ok {
		s.fail(o, "no strategy registered for order type "+string(o.Type))
		return true
	}

	// Run the strategy's one-time Initialize hook on the first evaluation
	// and persist the result, so it is not repeated on later ticks or
	// after a restart.
	if o.StrategyState["initialized"] == "" {
		if err := strat.Initialize(o, s.view, time.Now()); err != nil {
			s.fail(o, err.Error())
			return true
		}
		o.StrategyState["initialized"] = "true"
		if err := s.store.Save(o); err != nil {
			log.Warn().Err(err).Str("order", orderID).Msg("watcher: failed to persist strategy initialization, retrying next tick")
			return false
		}
	}

	now := time.Now()
	if !strat.ShouldTrigger(o, s.view, now) {
		return false
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	hash, err := strat.Submit(ctx, o, s.view, s.submitter, now)
	cancel()
	if err != nil {
		s.fail(o, err.Error())
		return true
	}

	o.TriggerCount++
	if hash != "" {
		o.OrderHashes = append(o.OrderHashes, hash)
	}
	if o.Status == domain.StatusPending {
		o.Status = domain.StatusActive
	}
	strat.UpdateNextTrigger(o, now)

	if err := s.store.Save(o); err != nil {
		log.Error().Err(err).Str("order", orderID).Msg("watcher: failed to persist submit")
		s.fail(o, err.Error())
		return true
	}
	s.appendEvent(o, domain.EventSubmitted, hash, "")
	if s.notifier != nil {
		s.notifier.OrderSubmitted(o, hash)
	}

	if strat.ShouldComplete(o, now) {
		o.Status = domain.StatusCompleted
		completedAt := now
		o.ExecutedAt = &completedAt
		if err := s.store.Save(o); err != nil {
			log.Error().Err(err).Str("order", orderID).Msg("watcher: failed to persist completion")
			return true
		}
		s.appendEvent(o, domain.EventCompleted, "", "")
		if s.notifier != nil {
			s.notifier.OrderCompleted(o)
		}
		return true
	}

	return false
}

func (s *Scheduler) fail(o *domain.Order, reason string) {
	o.Status = domain.StatusFailed
	if err := s.store.Save(o); err != nil {
		log.Error().Err(err).Str("order", o.ID).Msg("failed to persist FAILED status")
	}
	s.appendEvent(o, domain.EventFailed, "", reason)
	if s.notifier != nil {
		s.notifier.OrderFailed(o, reason)
	}
}

func (s *Scheduler) appendEvent(o *domain.Order, kind domain.EventKind, hash, errMsg string) {
	ev := &domain.OrderEvent{
		OrderID:   o.ID,
		OrderHash: hash,
		Kind:      kind,
		Status:    o.Status,
		Timestamp: time.Now(),
		Error:     errMsg,
	}
	if err := s.store.AppendEvent(ev); err != nil {
		log.Error().Err(err).Str("order", o.ID).Msg("failed to append order event")
	}
}

