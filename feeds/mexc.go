package feeds

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// ═══════════════════════════════════════════════════════════════════════════════
// MEXC CONTRACT WEBSOCKET FEED
// ═══════════════════════════════════════════════════════════════════════════════
//
// Connects to the MEXC futures edge endpoint, subscribes to the deal
// (trade print) channel for one symbol and broadcasts each new distinct
// price to subscribers. Reconnects forever on failure with a fixed
// delay; sends an application-level ping every interval regardless of
// subscribe state.
//
// ═══════════════════════════════════════════════════════════════════════════════

// Tick is a deduplicated trade-print price update.
type Tick struct {
	Symbol string
	Price  decimal.Decimal
	Time   time.Time
}

// MexcFeed manages the websocket connection and tick distribution.
type MexcFeed struct {
	mu sync.RWMutex

	wsURL          string
	symbol         string
	pingInterval   time.Duration
	reconnectDelay time.Duration

	conn      *websocket.Conn
	writeMu   sync.Mutex // gorilla conns allow a single concurrent writer
	connected bool
	running   bool
	stopCh    chan struct{}

	subscribers []chan Tick

	lastPrice decimal.Decimal
	dropped   int64 // malformed messages discarded
}

// NewMexcFeed creates a feed for one symbol.
func NewMexcFeed(wsURL, symbol string, pingInterval, reconnectDelay time.Duration) *MexcFeed {
	return &MexcFeed{
		wsURL:          wsURL,
		symbol:         symbol,
		pingInterval:   pingInterval,
		reconnectDelay: reconnectDelay,
		stopCh:         make(chan struct{}),
		subscribers:    make([]chan Tick, 0),
	}
}

// Start connects and begins processing.
func (f *MexcFeed) Start() {
	f.mu.Lock()
	if f.running {
		f.mu.Unlock()
		return
	}
	f.running = true
	f.mu.Unlock()

	go f.connectionLoop()
	log.Info().Str("symbol", f.symbol).Msg("📡 Feed started")
}

// Stop closes the connection and halts reconnects.
func (f *MexcFeed) Stop() {
	f.mu.Lock()
	defer f.mu.Unlock()

	if !f.running {
		return
	}

	f.running = false
	close(f.stopCh)

	if f.conn != nil {
		f.conn.Close()
	}

	log.Info().Msg("Feed stopped")
}

// Subscribe returns a channel that receives ticks.
func (f *MexcFeed) Subscribe() chan Tick {
	f.mu.Lock()
	defer f.mu.Unlock()

	ch := make(chan Tick, 1000)
	f.subscribers = append(f.subscribers, ch)
	return ch
}

// Dropped returns the count of malformed messages discarded so far.
func (f *MexcFeed) Dropped() int64 {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.dropped
}

// connectionLoop maintains the websocket connection, retrying forever.
func (f *MexcFeed) connectionLoop() {
	for {
		select {
		case <-f.stopCh:
			return
		default:
		}

		if err := f.connect(); err != nil {
			log.Error().Err(err).Dur("retry_in", f.reconnectDelay).Msg("Connection failed, retrying...")
			f.sleep(f.reconnectDelay)
			continue
		}

		f.readLoop()
		f.sleep(f.reconnectDelay)
	}
}

// connect dials, subscribes to the deal channel and starts the ping loop.
func (f *MexcFeed) connect() error {
	conn, _, err := websocket.DefaultDialer.Dial(f.wsURL, nil)
	if err != nil {
		return err
	}

	f.mu.Lock()
	f.conn = conn
	f.connected = true
	f.mu.Unlock()

	log.Info().Str("symbol", f.symbol).Msg("🔌 WebSocket connected")

	sub := map[string]interface{}{
		"method": "sub.deal",
		"param":  map[string]string{"symbol": f.symbol},
	}
	if err := f.writeJSON(sub); err != nil {
		conn.Close()
		return err
	}

	go f.pingLoop(conn)

	return nil
}

// pingLoop sends the app-level keepalive every interval. It exits when
// the feed stops or this connection is replaced.
func (f *MexcFeed) pingLoop(conn *websocket.Conn) {
	ticker := time.NewTicker(f.pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-f.stopCh:
			return
		case <-ticker.C:
			f.mu.RLock()
			current := f.conn
			connected := f.connected
			f.mu.RUnlock()

			if current != conn {
				return
			}
			if connected {
				if err := f.writeJSON(map[string]string{"method": "ping"}); err != nil {
					return
				}
			}
		}
	}
}

// writeJSON serializes writes, shared by subscribe and ping.
func (f *MexcFeed) writeJSON(v interface{}) error {
	f.mu.RLock()
	conn := f.conn
	f.mu.RUnlock()

	if conn == nil {
		return nil
	}

	f.writeMu.Lock()
	defer f.writeMu.Unlock()
	return conn.WriteJSON(v)
}

// readLoop reads messages until the connection drops.
func (f *MexcFeed) readLoop() {
	for {
		select {
		case <-f.stopCh:
			return
		default:
		}

		f.mu.RLock()
		conn := f.conn
		f.mu.RUnlock()

		if conn == nil {
			return
		}

		_, message, err := conn.ReadMessage()
		if err != nil {
			log.Warn().Err(err).Msg("Read error")
			f.mu.Lock()
			f.connected = false
			f.mu.Unlock()
			return
		}

		f.processMessage(message)
	}
}

// wsMessage is an inbound frame from the edge endpoint. Pong
// acknowledgements arrive with channel "pong" and are ignored.
type wsMessage struct {
	Channel string          `json:"channel"`
	Data    json.RawMessage `json:"data"`
}

// dealRecord is one trade print. The exchange sends the price as a
// JSON number or string depending on the symbol, decimal accepts both.
type dealRecord struct {
	Price decimal.Decimal `json:"p"`
}

// processMessage handles one inbound message. Malformed payloads are
// dropped per message with a counted warn, never a crash.
func (f *MexcFeed) processMessage(data []byte) {
	var msg wsMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		f.drop(err)
		return
	}

	if msg.Channel != "push.deal" {
		return
	}

	var deals []dealRecord
	if err := json.Unmarshal(msg.Data, &deals); err != nil {
		f.drop(err)
		return
	}
	if len(deals) == 0 {
		return
	}

	// Only the most recent print in the batch becomes the tick.
	price := deals[len(deals)-1].Price
	if !price.IsPositive() {
		f.drop(nil)
		return
	}

	f.mu.Lock()
	if price.Equal(f.lastPrice) {
		f.mu.Unlock()
		return
	}
	f.lastPrice = price
	f.mu.Unlock()

	f.broadcast(Tick{
		Symbol: f.symbol,
		Price:  price,
		Time:   time.Now(),
	})
}

// drop counts and logs a discarded message.
func (f *MexcFeed) drop(err error) {
	f.mu.Lock()
	f.dropped++
	n := f.dropped
	f.mu.Unlock()

	log.Warn().Err(err).Int64("dropped_total", n).Msg("Dropped malformed message")
}

// broadcast sends the tick to all subscribers.
func (f *MexcFeed) broadcast(tick Tick) {
	f.mu.RLock()
	subs := f.subscribers
	f.mu.RUnlock()

	for _, ch := range subs {
		select {
		case ch <- tick:
		default:
			// Skip if channel full
		}
	}
}

// sleep waits for d or until Stop.
func (f *MexcFeed) sleep(d time.Duration) {
	select {
	case <-f.stopCh:
	case <-time.After(d):
	}
}
