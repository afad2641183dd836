// Package registry implements the Registry API (C7): the Create/Cancel/
// Modify/Get/List surface the HTTP layer and any other caller drives.
// Generalized from internal/arbitrage/engine.go's engine-as-facade
// pattern, wired to the Store, Signature Verifier, and Scheduler.
package registry

import (
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/oneedge/orderengine/internal/apperrors"
	"github.com/oneedge/orderengine/internal/domain"
	"github.com/oneedge/orderengine/internal/strategy"
)

// Store is the persistence surface the Registry needs.
type Store interface {
	Save(o *domain.Order) error
	Get(id string) (*domain.Order, error)
	GetByMaker(maker string) ([]*domain.Order, error)
	GetActive() ([]*domain.Order, error)
	AppendEvent(ev *domain.OrderEvent) error
}

// StrategyLookup reports whether a strategy exists for an order type,
// satisfied by *strategy.Registry.
type StrategyLookup interface {
	Lookup(t domain.OrderType) (strategy.Strategy, bool)
}

// Watchers is the Scheduler surface the Registry drives on create/cancel.
type Watchers interface {
	StartWatcher(orderID string)
	CancelOrder(orderID string)
}

// Verifier validates a maker's signature over an order, satisfied by
// internal/signer.Verify.
type Verifier func(o *domain.Order) error

// Registry is the Registry API: idempotent Create/Cancel/Modify plus
// read-through Get/ListByMaker/ListActive.
type Registry struct {
	store      Store
	verify     Verifier
	strategies StrategyLookup
	watchers   Watchers
}

func New(store Store, verify Verifier, strategies StrategyLookup, watchers Watchers) *Registry {
	return &Registry{
		store:      store,
		verify:     verify,
		strategies: strategies,
		watchers:   watchers,
	}
}

// Create validates the signature, rejects unknown order types,
// initializes lifecycle fields and starts a watcher. Idempotent by
// order id: a second Create for an id already persisted is a no-op
// that returns the existing order.
func (r *Registry) Create(o *domain.Order) (*domain.Order, error) {
	if o.ID == "" {
		o.ID = generateID(o.Type)
	}

	if existing, err := r.store.Get(o.ID); err == nil && existing != nil {
		return existing, nil
	}

	if err := r.verify(o); err != nil {
		return nil, apperrors.ErrSignatureInvalid
	}
	if _, ok := r.strategies.Lookup(o.Type); !ok {
		return nil, apperrors.ErrUnknownOrderType
	}

	o.Status = domain.StatusPending
	o.TriggerCount = 0
	o.RemainingSize = o.Size
	o.CreatedAt = time.Now()
	if o.StrategyState == nil {
		o.StrategyState = map[string]string{}
	}

	if err := r.store.Save(o); err != nil {
		return nil, apperrors.NewStorageError("create", err)
	}
	r.appendEvent(o, domain.EventPending, "")
	r.watchers.StartWatcher(o.ID)

	log.Info().Str("order", o.ID).Str("type", string(o.Type)).Str("maker", o.Maker).Msg("order created")
	return o, nil
}

// Cancel stops the watcher and marks the order CANCELLED. Idempotent:
// cancelling an already-terminal order is a no-op.
func (r *Registry) Cancel(id string) error {
	o, err := r.store.Get(id)
	if err != nil || o == nil {
		return apperrors.ErrOrderNotFound
	}
	if o.Status.IsTerminal() {
		return nil
	}

	r.watchers.CancelOrder(id)
	o.Status = domain.StatusCancelled
	now := time.Now()
	o.CancelledAt = &now
	if err := r.store.Save(o); err != nil {
		return apperrors.NewStorageError("cancel", err)
	}
	r.appendEvent(o, domain.EventCancelled, "")
	return nil
}

// OrderPatch carries the mutable subset of an order a maker may modify.
type OrderPatch struct {
	Params *domain.Params
	Size   *string
}

// Modify cancels the existing order and creates a fresh one with a new
// id (spec §4.6/§11: modify resets triggerCount and friends — a fresh
// id implies fresh counters). Returns the new order's id.
func (r *Registry) Modify(id string, patch OrderPatch) (string, error) {
	o, err := r.store.Get(id)
	if err != nil || o == nil {
		return "", apperrors.ErrOrderNotFound
	}
	if o.Status.IsTerminal() {
		return "", fmt.Errorf("cannot modify terminal order %s", id)
	}

	if err := r.Cancel(id); err != nil {
		return "", err
	}

	next := o.Clone()
	next.ID = generateID(o.Type)
	next.Status = domain.StatusPending
	next.TriggerCount = 0
	next.NextTriggerValue = ""
	next.OrderHashes = nil
	next.ExecutedAt = nil
	next.CancelledAt = nil
	next.StrategyState = map[string]string{}
	if patch.Params != nil {
		next.Params = *patch.Params
	}
	if patch.Size != nil {
		size, perr := decimalFromString(*patch.Size)
		if perr != nil {
			return "", apperrors.ErrInvalidParams
		}
		next.Size = size
		next.RemainingSize = size
	} else {
		next.RemainingSize = next.Size
	}

	created, err := r.Create(next)
	if err != nil {
		return "", err
	}
	return created.ID, nil
}

func (r *Registry) Get(id string) (*domain.Order, error) {
	o, err := r.store.Get(id)
	if err != nil || o == nil {
		return nil, apperrors.ErrOrderNotFound
	}
	return o, nil
}

func (r *Registry) ListByMaker(maker string) ([]*domain.Order, error) {
	return r.store.GetByMaker(maker)
}

func (r *Registry) ListActive() ([]*domain.Order, error) {
	return r.store.GetActive()
}

func (r *Registry) appendEvent(o *domain.Order, kind domain.EventKind, errMsg string) {
	ev := &domain.OrderEvent{
		OrderID:   o.ID,
		Kind:      kind,
		Status:    o.Status,
		Timestamp: time.Now(),
		Error:     errMsg,
	}
	if err := r.store.AppendEvent(ev); err != nil {
		log.Error().Err(err).Str("order", o.ID).Msg("failed to append order event")
	}
}

// generateID mints an order id, grounded on the teacher's own
// fmt.Sprintf("<prefix>_%d", time.Now().UnixNano()) convention
// (internal/arbitrage/engine.go's Opportunity/Trade ids,
// internal/trading/btc_trader.go's position ids).
func generateID(t domain.OrderType) string {
	return fmt.Sprintf("ord_%s_%d", string(t), time.Now().UnixNano())
}

func decimalFromString(s string) (decimal.Decimal, error) {
	return decimal.NewFromString(s)
}
