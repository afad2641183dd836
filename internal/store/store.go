// Package store implements the Order Store (C1): durable persistence of
// orders and events, plus TTL-keyed caches for market data and token
// decimals. Grounded on internal/database/database.go's dual
// Postgres/SQLite GORM setup.
package store

import (
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/oneedge/orderengine/internal/apperrors"
	"github.com/oneedge/orderengine/internal/domain"
)

// Store is the Order Store. The scheduler is the sole writer per order
// at runtime; writes are atomic per order record (last-writer-wins).
type Store struct {
	db *gorm.DB
}

// New opens a connection, choosing the Postgres or SQLite driver from
// the DSN shape, exactly as internal/database/database.go does.
func New(dsn string) (*Store, error) {
	if dsn == "" {
		dsn = "file::memory:?cache=shared"
	}

	var dialector gorm.Dialector
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") {
		dialector = postgres.Open(dsn)
	} else {
		dialector = sqlite.Open(dsn)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	if err := db.AutoMigrate(
		&orderRecord{},
		&eventRecord{},
		&marketDataCacheRecord{},
		&tokenDecimalsCacheRecord{},
	); err != nil {
		return nil, fmt.Errorf("migrate store: %w", err)
	}

	log.Info().Str("dsn", redactDSN(dsn)).Msg("order store ready")

	return &Store{db: db}, nil
}

// Save persists an order record, last-writer-wins.
func (s *Store) Save(o *domain.Order) error {
	rec, err := toRecord(o)
	if err != nil {
		return apperrors.NewStorageError("save:encode", err)
	}
	if err := s.db.Save(rec).Error; err != nil {
		return apperrors.NewStorageError("save", err)
	}
	return nil
}

// Get returns an order by id, or (nil, nil) if it does not exist.
func (s *Store) Get(id string) (*domain.Order, error) {
	var rec orderRecord
	err := s.db.First(&rec, "id = ?", id).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, apperrors.NewStorageError("get", err)
	}
	return fromRecord(&rec)
}

// GetByHash looks up the order that produced a given submitted hash.
func (s *Store) GetByHash(hash string) (*domain.Order, error) {
	var rec orderRecord
	err := s.db.Where("order_hashes_json LIKE ?", "%"+hash+"%").First(&rec).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, apperrors.NewStorageError("getByHash", err)
	}
	return fromRecord(&rec)
}

// GetActive returns every order whose status is PENDING, ACTIVE or
// PARTIALLY_FILLED, ordered by creation time descending.
func (s *Store) GetActive() ([]*domain.Order, error) {
	return s.queryByStatuses(domain.StatusPending, domain.StatusActive, domain.StatusPartiallyFilled)
}

// GetPending is used on startup to restart watchers; it returns every
// order the engine is still responsible for, matching GetActive's set
// (PENDING/ACTIVE/PARTIALLY_FILLED) per the §4.6 restart rule.
func (s *Store) GetPending() ([]*domain.Order, error) {
	return s.GetActive()
}

func (s *Store) queryByStatuses(statuses ...domain.Status) ([]*domain.Order, error) {
	strs := make([]string, len(statuses))
	for i, st := range statuses {
		strs[i] = string(st)
	}

	var recs []orderRecord
	err := s.db.Where("status IN ?", strs).Order("created_at DESC").Find(&recs).Error
	if err != nil {
		return nil, apperrors.NewStorageError("queryByStatuses", err)
	}

	out := make([]*domain.Order, 0, len(recs))
	for i := range recs {
		o, err := fromRecord(&recs[i])
		if err != nil {
			return nil, apperrors.NewStorageError("queryByStatuses:decode", err)
		}
		out = append(out, o)
	}
	return out, nil
}

// GetByMaker returns every order (any status) created by a maker
// address.
func (s *Store) GetByMaker(addr string) ([]*domain.Order, error) {
	var recs []orderRecord
	err := s.db.Where("maker = ?", addr).Order("created_at DESC").Find(&recs).Error
	if err != nil {
		return nil, apperrors.NewStorageError("getByMaker", err)
	}
	out := make([]*domain.Order, 0, len(recs))
	for i := range recs {
		o, err := fromRecord(&recs[i])
		if err != nil {
			return nil, apperrors.NewStorageError("getByMaker:decode", err)
		}
		out = append(out, o)
	}
	return out, nil
}

// AppendEvent inserts an audit record; insertion order is preserved
// when read back by Events(orderId).
func (s *Store) AppendEvent(evt *domain.OrderEvent) error {
	rec := &eventRecord{
		OrderID:      evt.OrderID,
		OrderHash:    evt.OrderHash,
		Kind:         string(evt.Kind),
		Status:       string(evt.Status),
		Timestamp:    evt.Timestamp,
		FilledAmount: evt.FilledAmount.String(),
		TxHash:       evt.TxHash,
		Error:        evt.Error,
	}
	if err := s.db.Create(rec).Error; err != nil {
		return apperrors.NewStorageError("appendEvent", err)
	}
	return nil
}

// Events returns every event for an order, oldest first.
func (s *Store) Events(orderID string) ([]*domain.OrderEvent, error) {
	var recs []eventRecord
	err := s.db.Where("order_id = ?", orderID).Order("id ASC").Find(&recs).Error
	if err != nil {
		return nil, apperrors.NewStorageError("events", err)
	}

	out := make([]*domain.OrderEvent, 0, len(recs))
	for _, r := range recs {
		filled, _ := decimal.NewFromString(r.FilledAmount)
		out = append(out, &domain.OrderEvent{
			ID:           r.ID,
			OrderID:      r.OrderID,
			OrderHash:    r.OrderHash,
			Kind:         domain.EventKind(r.Kind),
			Status:       domain.Status(r.Status),
			Timestamp:    r.Timestamp,
			FilledAmount: filled,
			TxHash:       r.TxHash,
			Error:        r.Error,
		})
	}
	return out, nil
}

// CacheMarketData stores an opaque, TTL-keyed market-data blob; callers
// rebuild it freely once expired.
func (s *Store) CacheMarketData(key, value string, ttl time.Duration) error {
	rec := &marketDataCacheRecord{Key: key, Value: value, ExpiresAt: time.Now().Add(ttl)}
	if err := s.db.Save(rec).Error; err != nil {
		return apperrors.NewStorageError("cacheMarketData", err)
	}
	return nil
}

// GetMarketDataCache returns ("", false) if absent or expired.
func (s *Store) GetMarketDataCache(key string) (string, bool) {
	var rec marketDataCacheRecord
	err := s.db.Where("key = ? AND expires_at > ?", key, time.Now()).First(&rec).Error
	if err != nil {
		return "", false
	}
	return rec.Value, true
}

// CacheTokenDecimals stores the ERC20 decimals for a token address.
func (s *Store) CacheTokenDecimals(tokenAddress string, decimals int, ttl time.Duration) error {
	rec := &tokenDecimalsCacheRecord{TokenAddress: tokenAddress, Decimals: decimals, ExpiresAt: time.Now().Add(ttl)}
	if err := s.db.Save(rec).Error; err != nil {
		return apperrors.NewStorageError("cacheTokenDecimals", err)
	}
	return nil
}

// GetTokenDecimals returns (0, false) if absent or expired.
func (s *Store) GetTokenDecimals(tokenAddress string) (int, bool) {
	var rec tokenDecimalsCacheRecord
	err := s.db.Where("token_address = ? AND expires_at > ?", tokenAddress, time.Now()).First(&rec).Error
	if err != nil {
		return 0, false
	}
	return rec.Decimals, true
}

// CleanExpiredCaches sweeps both TTL caches of expired rows; may be run
// on an arbitrary schedule since the caches "may be rebuilt at any
// time" (spec §6).
func (s *Store) CleanExpiredCaches() {
	now := time.Now()
	s.db.Where("expires_at <= ?", now).Delete(&marketDataCacheRecord{})
	s.db.Where("expires_at <= ?", now).Delete(&tokenDecimalsCacheRecord{})
}

func parseDecimal(s string) (decimal.Decimal, error) {
	if s == "" {
		return decimal.Zero, nil
	}
	return decimal.NewFromString(s)
}

func redactDSN(dsn string) string {
	if i := strings.Index(dsn, "@"); i != -1 {
		return "***" + dsn[i:]
	}
	return dsn
}
