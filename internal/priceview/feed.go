package priceview

import (
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/oneedge/orderengine/internal/domain"
	"github.com/oneedge/orderengine/internal/indicators"
)

const (
	reconnectDelay = 5 * time.Second
	pingInterval   = 30 * time.Second
)

// Feed is the reference collector: it connects to an upstream
// aggregated-ticker websocket and keeps a View warm. It is the
// out-of-core "price-collector service" spec §1 treats as an external
// collaborator consumed via the View's read interface; this
// implementation is the optional writer side the engine ships so the
// View isn't left empty in a live deployment. Grounded on
// feeds/polymarket_ws.go's connection-loop/ping-loop shape.
type Feed struct {
	wsURL  string
	view   *View
	stopCh chan struct{}

	history map[string][]float64 // symbol -> trailing mid prices, for indicator computation
}

func NewFeed(wsURL string, view *View) *Feed {
	return &Feed{
		wsURL:   wsURL,
		view:    view,
		stopCh:  make(chan struct{}),
		history: make(map[string][]float64),
	}
}

// Start connects and begins processing in the background. It never
// blocks the caller; errors are logged and the connection is retried.
func (f *Feed) Start() {
	go f.connectionLoop()
}

func (f *Feed) Stop() {
	close(f.stopCh)
}

func (f *Feed) connectionLoop() {
	for {
		select {
		case <-f.stopCh:
			return
		default:
		}

		conn, _, err := websocket.DefaultDialer.Dial(f.wsURL, nil)
		if err != nil {
			log.Error().Err(err).Msg("price feed connection failed, retrying")
			time.Sleep(reconnectDelay)
			continue
		}

		f.readLoop(conn)
		conn.Close()
		time.Sleep(reconnectDelay)
	}
}

type tickMessage struct {
	Symbol string  `json:"symbol"`
	Bid    float64 `json:"bid"`
	Ask    float64 `json:"ask"`
	Last   float64 `json:"last"`
}

func (f *Feed) readLoop(conn *websocket.Conn) {
	for {
		select {
		case <-f.stopCh:
			return
		default:
		}

		var msg tickMessage
		if err := conn.ReadJSON(&msg); err != nil {
			log.Warn().Err(err).Msg("price feed read failed")
			return
		}
		f.ingest(msg)
	}
}

func (f *Feed) ingest(msg tickMessage) {
	mid := (msg.Bid + msg.Ask) / 2
	if mid == 0 {
		mid = msg.Last
	}

	hist := append(f.history[msg.Symbol], mid)
	if len(hist) > 500 {
		hist = hist[len(hist)-500:]
	}
	f.history[msg.Symbol] = hist

	snap := &domain.TickerSnapshot{
		Symbol:    msg.Symbol,
		Bid:       decimal.NewFromFloat(msg.Bid),
		Ask:       decimal.NewFromFloat(msg.Ask),
		Last:      decimal.NewFromFloat(msg.Last),
		Mid:       decimal.NewFromFloat(mid),
		Timestamp: time.Now(),
		Analysis:  analyze(hist),
	}

	f.view.Update(snap)
}

// analyze computes the indicator series the Strategy Registry's
// MOMENTUM_REVERSAL and RANGE_BREAKOUT families read. The RSI, EMA, ADX
// and ADXMA series stay nil until enough history accumulates (SMA always
// holds one value, averaged over what is available); strategies treat a
// short series as "not enough data" rather than an error.
func analyze(prices []float64) *domain.Analysis {
	if len(prices) < 2 {
		return nil
	}
	adx := indicators.ADX(prices, prices, prices, 14)
	a := &domain.Analysis{
		RSI: indicators.RSISeries(prices, 14),
		EMA: indicators.EMASeries(prices, 20),
		SMA: []float64{indicators.SMA(prices, 20)},
		ADX: adx,
	}
	if len(adx) > 0 {
		a.ADXMA = indicators.ADXMA(adx, 14)
	}
	return a
}
