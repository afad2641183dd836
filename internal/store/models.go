package store

import (
	"encoding/json"
	"time"

	"github.com/oneedge/orderengine/internal/domain"
)

// orderRecord is the GORM-mapped row for the `orders` table, grounded on
// the teacher's internal/database/database.go model-struct conventions
// (string-backed decimal columns, explicit TableName, index tags).
type orderRecord struct {
	ID         string `gorm:"primaryKey"`
	Type       string `gorm:"index"`
	Maker      string `gorm:"index"`
	Receiver   string
	MakerAsset string
	TakerAsset string
	Symbol     string

	Size          string
	RemainingSize string

	ParamsJSON        string `gorm:"type:text"`
	StrategyStateJSON string `gorm:"type:text"`

	Signature         string
	UserSignedPayload string `gorm:"type:text"`

	Status           string `gorm:"index"`
	TriggerCount     int
	NextTriggerValue string

	OrderHashesJSON string `gorm:"type:text;index:idx_order_hash"`

	CreatedAt   time.Time `gorm:"index:idx_status_created"`
	ExecutedAt  *time.Time
	CancelledAt *time.Time
}

func (orderRecord) TableName() string { return "orders" }

// eventRecord is the GORM-mapped row for the append-only `order_events`
// table.
type eventRecord struct {
	ID           uint `gorm:"primaryKey;autoIncrement"`
	OrderID      string `gorm:"index"`
	OrderHash    string
	Kind         string
	Status       string
	Timestamp    time.Time
	FilledAmount string
	TxHash       string
	Error        string
}

func (eventRecord) TableName() string { return "order_events" }

// marketDataCacheRecord and tokenDecimalsCacheRecord are TTL-keyed
// auxiliary caches (spec §6: "may be rebuilt at any time"), grounded on
// the teacher's WindowPrice tolerance-window model.
type marketDataCacheRecord struct {
	Key       string `gorm:"primaryKey"`
	Value     string `gorm:"type:text"`
	ExpiresAt time.Time `gorm:"index"`
}

func (marketDataCacheRecord) TableName() string { return "market_data_cache" }

type tokenDecimalsCacheRecord struct {
	TokenAddress string `gorm:"primaryKey"`
	Decimals     int
	ExpiresAt    time.Time `gorm:"index"`
}

func (tokenDecimalsCacheRecord) TableName() string { return "token_decimals_cache" }

func toRecord(o *domain.Order) (*orderRecord, error) {
	paramsJSON, err := json.Marshal(o.Params)
	if err != nil {
		return nil, err
	}
	stateJSON, err := json.Marshal(o.StrategyState)
	if err != nil {
		return nil, err
	}
	hashesJSON, err := json.Marshal(o.OrderHashes)
	if err != nil {
		return nil, err
	}

	return &orderRecord{
		ID:                o.ID,
		Type:              string(o.Type),
		Maker:             o.Maker,
		Receiver:          o.Receiver,
		MakerAsset:        o.MakerAsset,
		TakerAsset:        o.TakerAsset,
		Symbol:            o.Symbol,
		Size:              o.Size.String(),
		RemainingSize:     o.RemainingSize.String(),
		ParamsJSON:        string(paramsJSON),
		StrategyStateJSON: string(stateJSON),
		Signature:         o.Signature,
		UserSignedPayload: o.UserSignedPayload,
		Status:            string(o.Status),
		TriggerCount:      o.TriggerCount,
		NextTriggerValue:  o.NextTriggerValue,
		OrderHashesJSON:   string(hashesJSON),
		CreatedAt:         o.CreatedAt,
		ExecutedAt:        o.ExecutedAt,
		CancelledAt:       o.CancelledAt,
	}, nil
}

func fromRecord(r *orderRecord) (*domain.Order, error) {
	var params domain.Params
	if r.ParamsJSON != "" {
		if err := json.Unmarshal([]byte(r.ParamsJSON), &params); err != nil {
			return nil, err
		}
	}
	state := map[string]string{}
	if r.StrategyStateJSON != "" {
		if err := json.Unmarshal([]byte(r.StrategyStateJSON), &state); err != nil {
			return nil, err
		}
	}
	var hashes []string
	if r.OrderHashesJSON != "" {
		if err := json.Unmarshal([]byte(r.OrderHashesJSON), &hashes); err != nil {
			return nil, err
		}
	}

	size, err := parseDecimal(r.Size)
	if err != nil {
		return nil, err
	}
	remaining, err := parseDecimal(r.RemainingSize)
	if err != nil {
		return nil, err
	}

	return &domain.Order{
		ID:                r.ID,
		Type:              domain.OrderType(r.Type),
		Maker:             r.Maker,
		Receiver:          r.Receiver,
		MakerAsset:        r.MakerAsset,
		TakerAsset:        r.TakerAsset,
		Symbol:            r.Symbol,
		Size:              size,
		RemainingSize:     remaining,
		Params:            params,
		Signature:         r.Signature,
		UserSignedPayload: r.UserSignedPayload,
		Status:            domain.Status(r.Status),
		TriggerCount:      r.TriggerCount,
		NextTriggerValue:  r.NextTriggerValue,
		OrderHashes:       hashes,
		CreatedAt:         r.CreatedAt,
		ExecutedAt:        r.ExecutedAt,
		CancelledAt:       r.CancelledAt,
		StrategyState:     state,
	}, nil
}
